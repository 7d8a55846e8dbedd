// Package seed provides the initial product set of the mock catalog.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
)

// Fetch loads products from a fakestoreapi-compatible endpoint.
func Fetch(ctx context.Context, url string) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("products source status: %d", resp.StatusCode)
	}
	var products []models.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// Load returns products from url when set, falling back to Builtin.
func Load(ctx context.Context, url string) ([]models.Product, error) {
	if url == "" {
		return Builtin(), nil
	}
	return Fetch(ctx, url)
}

func p(id int, title string, price float64, category string, rate float64, count int) models.Product {
	return models.Product{
		ID:          id,
		Title:       title,
		Price:       price,
		Description: title,
		Category:    category,
		Image:       fmt.Sprintf("https://fakestoreapi.com/img/%d.jpg", id),
		Rating:      models.Rating{Rate: rate, Count: count},
	}
}

// Builtin is a twenty-product catalog shaped like fakestoreapi.
func Builtin() []models.Product {
	const (
		men      = "men's clothing"
		women    = "women's clothing"
		jewelery = "jewelery"
		tech     = "electronics"
	)
	return []models.Product{
		p(1, "Foldsack No. 1 Backpack", 109.95, men, 3.9, 120),
		p(2, "Slim Fit T-Shirt", 22.3, men, 4.1, 259),
		p(3, "Cotton Jacket", 55.99, men, 4.7, 500),
		p(4, "Casual Slim Fit", 15.99, men, 2.1, 430),
		p(5, "Dragon Station Chain Bracelet", 695, jewelery, 4.6, 400),
		p(6, "Solid Gold Petite Micropave", 168, jewelery, 3.9, 70),
		p(7, "White Gold Plated Princess Ring", 9.99, jewelery, 3, 400),
		p(8, "Rose Gold Plated Double Flared Tunnel Plug Earrings", 10.99, jewelery, 1.9, 100),
		p(9, "Portable External Hard Drive 2TB", 64, tech, 3.3, 203),
		p(10, "Internal SSD 1TB", 109, tech, 2.9, 470),
		p(11, "Silicon Power 256GB SSD", 109, tech, 4.8, 319),
		p(12, "Gaming Drive 4TB", 114, tech, 4.8, 400),
		p(13, "21.5 inch Full HD Monitor", 599, tech, 2.9, 250),
		p(14, "49 inch Curved Gaming Monitor", 999.99, tech, 2.2, 140),
		p(15, "Women's Snowboard Jacket", 56.99, women, 2.6, 235),
		p(16, "Faux Leather Moto Biker Jacket", 29.95, women, 2.9, 340),
		p(17, "Striped Climbing Raincoat", 39.99, women, 3.8, 679),
		p(18, "Boat Neck Short Sleeve Top", 9.85, women, 4.7, 130),
		p(19, "Short Sleeve Moisture Tee", 7.95, women, 4.5, 146),
		p(20, "Casual Cotton T-Shirt", 12.99, women, 3.6, 145),
	}
}
