package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Entry struct {
	Key       string    `gorm:"column:item_key;primaryKey;size:191"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Entry) TableName() string {
	return "storage_entries"
}

type GormStorage struct {
	DB *gorm.DB
}

func NewGorm(ctx context.Context, db *gorm.DB) (*GormStorage, error) {
	if err := db.WithContext(ctx).AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &GormStorage{DB: db}, nil
}

func (s *GormStorage) GetItem(ctx context.Context, key string) (string, error) {
	var e Entry
	if err := s.DB.WithContext(ctx).Where("item_key = ?", key).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return e.Value, nil
}

func (s *GormStorage) SetItem(ctx context.Context, key, value string) error {
	e := Entry{Key: key, Value: value}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

func (s *GormStorage) RemoveItem(ctx context.Context, key string) error {
	return s.DB.WithContext(ctx).Where("item_key = ?", key).Delete(&Entry{}).Error
}
