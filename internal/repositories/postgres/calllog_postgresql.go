package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/BMS-2026/crm-service/internal/cache"
	"github.com/BMS-2026/crm-service/internal/models"
	"github.com/BMS-2026/crm-service/internal/repositories"
)

type CallLogPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewCallLogPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CallLogRepository {
	return &CallLogPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (r *CallLogPostgreSQL) Create(ctx context.Context, log *models.CallLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to create call log: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Stats, "*")
	return nil
}

func (r *CallLogPostgreSQL) GetByID(ctx context.Context, id uint) (*models.CallLog, error) {
	var log models.CallLog
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("User").
		First(&log, id).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// Update persists status and notes only; call_date is immutable after
// creation.
func (r *CallLogPostgreSQL) Update(ctx context.Context, log *models.CallLog) error {
	err := r.db.WithContext(ctx).
		Model(&models.CallLog{}).
		Where("id = ?", log.ID).
		Updates(map[string]interface{}{
			"status":     log.Status,
			"notes":      log.Notes,
			"updated_at": log.UpdatedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update call log: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Stats, "*")
	return nil
}

func (r *CallLogPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.CallLog{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete call log: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Stats, "*")
	return nil
}

func (r *CallLogPostgreSQL) List(ctx context.Context, filters repositories.CallLogFilters) ([]*models.CallLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.CallLog{})
	q = ApplyCallLogFilters(q, filters)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// The service resolves the window before calling; a zero limit is
	// never treated as "no limit".
	q = q.Limit(filters.Limit)
	if filters.Offset > 0 {
		q = q.Offset(filters.Offset)
	}

	var logs []*models.CallLog
	err := q.
		Preload("Customer").
		Preload("User").
		Order("call_date DESC").
		Order("id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// StatusCounts aggregates per-status totals under the same filters the list
// path uses, so a SALES caller's injected scope applies here too.
func (r *CallLogPostgreSQL) StatusCounts(ctx context.Context, filters repositories.CallLogFilters) (map[models.CallStatus]int64, error) {
	q := r.db.WithContext(ctx).Model(&models.CallLog{})
	filters.Limit = 0
	filters.Offset = 0
	q = ApplyCallLogFilters(q, filters)

	var rows []struct {
		Status models.CallStatus
		Count  int64
	}
	if err := q.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate call statuses: %w", err)
	}

	counts := make(map[models.CallStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
