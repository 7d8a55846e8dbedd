package models

type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

type Product struct {
	ID          int     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title       string  `gorm:"not null"                       json:"title"`
	Price       float64 `gorm:"not null;check:price>=0"        json:"price"`
	Description string  `json:"description"`
	Category    string  `gorm:"index"                          json:"category"`
	Image       string  `json:"image"`
	Rating      Rating  `gorm:"embedded;embeddedPrefix:rating_" json:"rating"`
}

// CartEntry pairs a product with a positive quantity.
type CartEntry struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

type User struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	BirthDate       string `json:"birthDate"`
}

func DefaultUser() User {
	return User{}
}

// UserPatch holds the fields supplied at login. Nil fields keep the current value.
type UserPatch struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	BirthDate *string `json:"birthDate,omitempty"`
}

func (p UserPatch) Apply(u User) User {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.FirstName, p.FirstName)
	set(&u.LastName, p.LastName)
	set(&u.Email, p.Email)
	set(&u.Phone, p.Phone)
	set(&u.Address, p.Address)
	set(&u.BirthDate, p.BirthDate)
	return u
}

type Notification struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title,omitempty"`
	Message   string `json:"message"`
	ProductID *int   `json:"productId,omitempty"`
	Timestamp string `json:"timestamp"`
}
