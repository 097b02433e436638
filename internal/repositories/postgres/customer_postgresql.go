package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/BMS-2026/crm-service/internal/cache"
	"github.com/BMS-2026/crm-service/internal/models"
	"github.com/BMS-2026/crm-service/internal/query"
	"github.com/BMS-2026/crm-service/internal/repositories"
)

type CustomerPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewCustomerPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CustomerRepository {
	return &CustomerPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (r *CustomerPostgreSQL) Create(ctx context.Context, customer *models.Customer) error {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Customer, "list:*")
	return nil
}

// GetByID retrieves a customer by internal id with caching.
func (r *CustomerPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var customer models.Customer

	err := r.cacheManager.Customer.CacheOrExecute(ctx, cacheKey, &customer, cache.CustomerCacheConfig.TTL, func() (interface{}, error) {
		var dbCustomer models.Customer
		if err := r.db.WithContext(ctx).First(&dbCustomer, id).Error; err != nil {
			return nil, err
		}
		return &dbCustomer, nil
	})
	if err != nil {
		return nil, err
	}

	return &customer, nil
}

func (r *CustomerPostgreSQL) GetByOriginalID(ctx context.Context, originalID uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("original_id = ?", originalID).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerPostgreSQL) Update(ctx context.Context, customer *models.Customer) error {
	if err := r.db.WithContext(ctx).Save(customer).Error; err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	cache.InvalidateCustomerCache(ctx, r.cacheManager, customer.ID)
	return nil
}

// Delete hard deletes a customer and its call logs.
func (r *CustomerPostgreSQL) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&models.CallLog{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Customer{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateCustomerCache(ctx, r.cacheManager, id)
	return nil
}

// List interprets the normalized query descriptor: predicate tree, ordering,
// page window. The count runs before ordering/paging are applied.
func (r *CustomerPostgreSQL) List(ctx context.Context, filter query.Expr, order query.OrderSpec, page query.Page) ([]*models.Customer, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Customer{})
	q = ApplyFilter(q, filter)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = ApplyOrder(q, order)
	q = ApplyPage(q, page)

	var customers []*models.Customer
	if err := q.Preload("Sales").Find(&customers).Error; err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}

func (r *CustomerPostgreSQL) SetSales(ctx context.Context, id uint, salesID *uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Update("sales_id", salesID)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to set assignment: %w", result.Error)
	}

	cache.InvalidateCustomerCache(ctx, r.cacheManager, id)
	return result.RowsAffected, nil
}

// BulkSetSales updates the assignment column for every existing id in ids;
// missing ids are skipped and only the affected count is reported.
func (r *CustomerPostgreSQL) BulkSetSales(ctx context.Context, ids []uint, salesID *uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id IN ?", ids).
		Update("sales_id", salesID)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to bulk set assignment: %w", result.Error)
	}

	for _, id := range ids {
		cache.SafeDelete(ctx, r.cacheManager.Customer, fmt.Sprintf("id:%d", id))
	}
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Customer, "list:*")
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Stats, "*")

	return result.RowsAffected, nil
}

// UnassignBySales clears the whole book of one representative.
func (r *CustomerPostgreSQL) UnassignBySales(ctx context.Context, salesID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("sales_id = ?", salesID).
		Update("sales_id", nil)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to release book: %w", result.Error)
	}

	cache.SafeInvalidatePattern(ctx, r.cacheManager.Customer, "*")
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Stats, "*")

	return result.RowsAffected, nil
}

// CountBySales returns book sizes per assigned representative.
func (r *CustomerPostgreSQL) CountBySales(ctx context.Context) ([]repositories.SalesBookCount, error) {
	var counts []repositories.SalesBookCount
	err := r.db.WithContext(ctx).
		Table("customers c").
		Select("c.sales_id AS sales_id, u.name AS sales_name, COUNT(c.id) AS count").
		Joins("JOIN users u ON u.id = c.sales_id").
		Where("c.sales_id IS NOT NULL").
		Group("c.sales_id, u.name").
		Order("count DESC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}
	return counts, nil
}

// ScoreBands buckets the visible customers by propensity score. Unscored
// rows land in their own band.
func (r *CustomerPostgreSQL) ScoreBands(ctx context.Context, visibility query.Expr) ([]repositories.ScoreBandCount, error) {
	q := r.db.WithContext(ctx).Table("customers")
	q = ApplyFilter(q, visibility)

	var bands []repositories.ScoreBandCount
	err := q.
		Select(`CASE
			WHEN score IS NULL THEN 'unscored'
			WHEN score >= 0.75 THEN 'high'
			WHEN score >= 0.5 THEN 'medium'
			ELSE 'low'
		END AS band, COUNT(*) AS count`).
		Group("band").
		Scan(&bands).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate score bands: %w", err)
	}
	return bands, nil
}
