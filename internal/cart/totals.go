package cart

import "github.com/Skotchmaster/storefront/internal/models"

func TotalItems(entries []models.CartEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Quantity
	}
	return total
}

func TotalPrice(entries []models.CartEntry) float64 {
	total := 0.0
	for _, e := range entries {
		total += e.Product.Price * float64(e.Quantity)
	}
	return total
}
