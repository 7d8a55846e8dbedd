package graphql

import "regexp"

const ProductFields = `
  id
  title
  price
  description
  category
  image
  rating {
    rate
    count
  }
`

const (
	OpGetProducts           = "GetProducts"
	OpGetProduct            = "GetProduct"
	OpGetProductsByCategory = "GetProductsByCategory"
	OpGetCategories         = "GetCategories"
	OpSearchProducts        = "SearchProducts"
)

const GetProducts = `
  query GetProducts($limit: Int, $offset: Int) {
    products(limit: $limit, offset: $offset) {
` + ProductFields + `
    }
  }
`

const GetProduct = `
  query GetProduct($id: Int!) {
    product(id: $id) {
` + ProductFields + `
    }
  }
`

const GetProductsByCategory = `
  query GetProductsByCategory($category: String!) {
    productsByCategory(category: $category) {
` + ProductFields + `
    }
  }
`

const SearchProducts = `
  query SearchProducts($query: String!, $limit: Int, $offset: Int) {
    searchProducts(query: $query, limit: $limit, offset: $offset) {
` + ProductFields + `
    }
  }
`

const GetCategories = `
  query GetCategories {
    categories
  }
`

var operationRe = regexp.MustCompile(`(query|mutation)\s+(\w+)`)

// OperationName returns the named operation in a query document, or "".
func OperationName(query string) string {
	m := operationRe.FindStringSubmatch(query)
	if m == nil {
		return ""
	}
	return m[2]
}
