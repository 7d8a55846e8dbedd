package repo

import (
	"context"
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

var ErrNotFound = errors.New("product not found")

type GormRepo struct{ DB *gorm.DB }

func (r *GormRepo) Migrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(&models.Product{})
}

// Seed upserts the given products by id.
func (r *GormRepo) Seed(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&products).Error
}

func (r *GormRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error
	return total, err
}

// ListProducts returns products in id order. A limit of zero means no limit.
func (r *GormRepo) ListProducts(ctx context.Context, offset, limit int) ([]models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Order("id ASC")
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	items := []models.Product{}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) ProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	items := []models.Product{}
	err := r.DB.WithContext(ctx).
		Where("LOWER(category) = ?", strings.ToLower(category)).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// SearchProducts matches query against titles and descriptions, ignoring
// case. A limit of zero means no limit.
func (r *GormRepo) SearchProducts(ctx context.Context, query string, offset, limit int) ([]models.Product, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	q := r.DB.WithContext(ctx).
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like).
		Order("id ASC")
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	items := []models.Product{}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Distinct().Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	sort.Strings(categories)
	return categories, nil
}

// UpdatePrice sets a new price and returns the product with its old price.
func (r *GormRepo) UpdatePrice(ctx context.Context, id int, price float64) (*models.Product, float64, error) {
	var (
		p   models.Product
		old float64
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		old = p.Price
		p.Price = price
		return tx.Model(&models.Product{}).Where("id = ?", id).Update("price", price).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return &p, old, nil
}
