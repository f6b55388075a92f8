package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todayiwatched/internal/metrics"
	"todayiwatched/internal/models"
)

// votesLove DESC, id DESC；驼峰列名需要加引号
var loveOrder = clause.OrderBy{Columns: []clause.OrderByColumn{
	{Column: clause.Column{Name: models.CounterLove.Column()}, Desc: true},
	{Column: clause.Column{Name: "id"}, Desc: true},
}}

// Gorm stores recommendations in Postgres through gorm.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) Select(ctx context.Context, q Query) ([]models.Recommendation, error) {
	query := s.db.WithContext(ctx).Model(&models.Recommendation{})
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}

	var rows []models.Recommendation
	err := query.
		Order(loveOrder).
		Limit(q.limit()).
		Find(&rows).Error

	metrics.StoreRequests.WithLabelValues("postgres", "select", metrics.Result(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("select recommendations: %w", err)
	}
	return rows, nil
}

func (s *Gorm) Insert(ctx context.Context, rec models.Recommendation) (models.Recommendation, error) {
	row := models.Recommendation{
		Text:     rec.Text,
		Source:   rec.Source,
		Category: rec.Category,
	}
	err := s.db.WithContext(ctx).Create(&row).Error

	metrics.StoreRequests.WithLabelValues("postgres", "insert", metrics.Result(err)).Inc()
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("insert recommendation: %w", err)
	}
	return row, nil
}

func (s *Gorm) Increment(ctx context.Context, id int64, counter models.Counter) (models.Recommendation, error) {
	if !counter.Valid() {
		return models.Recommendation{}, fmt.Errorf("%w: %q", models.ErrUnknownCounter, counter)
	}
	column := counter.Column()

	var row models.Recommendation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recommendation{}).
			Where("id = ?", id).
			UpdateColumn(column, gorm.Expr("? + ?", clause.Column{Name: column}, 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		// 回读服务端权威数据
		return tx.First(&row, id).Error
	})

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		metrics.StoreRequests.WithLabelValues("postgres", "increment", "not_found").Inc()
		return models.Recommendation{}, ErrNotFound
	case err != nil:
		metrics.StoreRequests.WithLabelValues("postgres", "increment", "error").Inc()
		return models.Recommendation{}, fmt.Errorf("increment %s: %w", counter, err)
	}
	metrics.StoreRequests.WithLabelValues("postgres", "increment", "ok").Inc()
	return row, nil
}
