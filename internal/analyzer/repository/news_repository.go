package repository

import (
	"context"
	"time"

	"golang-stock-advisor/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewsRepository stores ingested articles and serves them to the classifier.
type NewsRepository interface {
	CreateIgnoreConflict(ctx context.Context, article *entity.NewsArticle) (bool, error)
	FindRecentByStock(ctx context.Context, stockID uint, since time.Time) ([]entity.NewsArticle, error)
	FindExistingHashes(ctx context.Context, hashes []string) (map[string]bool, error)
}

type newsRepository struct {
	db *gorm.DB
}

// NewNewsRepository creates a new NewsRepository.
func NewNewsRepository(db *gorm.DB) NewsRepository {
	return &newsRepository{db: db}
}

// CreateIgnoreConflict inserts an article, skipping silently when the hash
// identifier already exists. Returns whether a row was actually written.
func (r *newsRepository) CreateIgnoreConflict(ctx context.Context, article *entity.NewsArticle) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hash_identifier"}},
		DoNothing: true,
	}).Create(article)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *newsRepository) FindRecentByStock(ctx context.Context, stockID uint, since time.Time) ([]entity.NewsArticle, error) {
	var articles []entity.NewsArticle
	err := r.db.WithContext(ctx).
		Where("stock_id = ? AND created_at >= ?", stockID, since).
		Order("published_at DESC NULLS LAST").
		Find(&articles).Error
	if err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *newsRepository) FindExistingHashes(ctx context.Context, hashes []string) (map[string]bool, error) {
	if len(hashes) == 0 {
		return map[string]bool{}, nil
	}
	var existing []entity.NewsArticle
	err := r.db.WithContext(ctx).Select("hash_identifier").
		Where("hash_identifier IN ?", hashes).
		Find(&existing).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]bool, len(existing))
	for _, article := range existing {
		result[article.HashIdentifier] = true
	}
	return result, nil
}
