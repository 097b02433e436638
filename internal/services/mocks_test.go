package services

import (
	"context"
	"log/slog"
	"testing"

	"gorm.io/gorm"

	"github.com/BMS-2026/crm-service/internal/models"
	"github.com/BMS-2026/crm-service/internal/query"
	"github.com/BMS-2026/crm-service/internal/repositories"
)

// In-memory repository fakes. They return gorm.ErrRecordNotFound for
// missing rows so the services' not-found translation is exercised for
// real.

type mockCustomerRepo struct {
	customers map[uint]*models.Customer

	lastFilter query.Expr
	lastOrder  query.OrderSpec
	lastPage   query.Page
	listTotal  int64

	setSalesCalls []setSalesCall
	bulkAffected  int64

	scoreBands []repositories.ScoreBandCount
	salesBooks []repositories.SalesBookCount
}

type setSalesCall struct {
	IDs     []uint
	SalesID *uint
}

func newMockCustomerRepo(customers ...*models.Customer) *mockCustomerRepo {
	m := &mockCustomerRepo{customers: make(map[uint]*models.Customer)}
	for _, c := range customers {
		m.customers[c.ID] = c
	}
	return m
}

func (m *mockCustomerRepo) Create(ctx context.Context, customer *models.Customer) error {
	if customer.ID == 0 {
		customer.ID = uint(len(m.customers) + 1)
	}
	m.customers[customer.ID] = customer
	return nil
}

func (m *mockCustomerRepo) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	if c, ok := m.customers[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCustomerRepo) GetByOriginalID(ctx context.Context, originalID uint) (*models.Customer, error) {
	for _, c := range m.customers {
		if c.OriginalID == originalID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCustomerRepo) Update(ctx context.Context, customer *models.Customer) error {
	if _, ok := m.customers[customer.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.customers[customer.ID] = customer
	return nil
}

func (m *mockCustomerRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.customers[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.customers, id)
	return nil
}

func (m *mockCustomerRepo) List(ctx context.Context, filter query.Expr, order query.OrderSpec, page query.Page) ([]*models.Customer, int64, error) {
	m.lastFilter = filter
	m.lastOrder = order
	m.lastPage = page

	out := make([]*models.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		out = append(out, c)
	}
	total := m.listTotal
	if total == 0 {
		total = int64(len(out))
	}
	return out, total, nil
}

func (m *mockCustomerRepo) SetSales(ctx context.Context, id uint, salesID *uint) (int64, error) {
	m.setSalesCalls = append(m.setSalesCalls, setSalesCall{IDs: []uint{id}, SalesID: salesID})
	c, ok := m.customers[id]
	if !ok {
		return 0, nil
	}
	c.SalesID = salesID
	return 1, nil
}

func (m *mockCustomerRepo) BulkSetSales(ctx context.Context, ids []uint, salesID *uint) (int64, error) {
	m.setSalesCalls = append(m.setSalesCalls, setSalesCall{IDs: ids, SalesID: salesID})
	if m.bulkAffected > 0 {
		return m.bulkAffected, nil
	}
	var affected int64
	for _, id := range ids {
		if c, ok := m.customers[id]; ok {
			c.SalesID = salesID
			affected++
		}
	}
	return affected, nil
}

func (m *mockCustomerRepo) UnassignBySales(ctx context.Context, salesID uint) (int64, error) {
	var n int64
	for _, c := range m.customers {
		if c.SalesID != nil && *c.SalesID == salesID {
			c.SalesID = nil
			n++
		}
	}
	return n, nil
}

func (m *mockCustomerRepo) CountBySales(ctx context.Context) ([]repositories.SalesBookCount, error) {
	return m.salesBooks, nil
}

func (m *mockCustomerRepo) ScoreBands(ctx context.Context, visibility query.Expr) ([]repositories.ScoreBandCount, error) {
	m.lastFilter = visibility
	return m.scoreBands, nil
}

type mockUserRepo struct {
	users map[uint]*models.User
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[uint]*models.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		user.ID = uint(len(m.users) + 1)
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	out := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		if filters.Role != nil && u.Role != *filters.Role {
			continue
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

type mockCallLogRepo struct {
	logs        map[uint]*models.CallLog
	lastFilters repositories.CallLogFilters
	counts      map[models.CallStatus]int64
}

func newMockCallLogRepo(logs ...*models.CallLog) *mockCallLogRepo {
	m := &mockCallLogRepo{logs: make(map[uint]*models.CallLog)}
	for _, l := range logs {
		m.logs[l.ID] = l
	}
	return m
}

func (m *mockCallLogRepo) Create(ctx context.Context, log *models.CallLog) error {
	if log.ID == 0 {
		log.ID = uint(len(m.logs) + 1)
	}
	m.logs[log.ID] = log
	return nil
}

func (m *mockCallLogRepo) GetByID(ctx context.Context, id uint) (*models.CallLog, error) {
	if l, ok := m.logs[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCallLogRepo) Update(ctx context.Context, log *models.CallLog) error {
	if _, ok := m.logs[log.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.logs[log.ID] = log
	return nil
}

func (m *mockCallLogRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.logs[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.logs, id)
	return nil
}

func (m *mockCallLogRepo) List(ctx context.Context, filters repositories.CallLogFilters) ([]*models.CallLog, int64, error) {
	m.lastFilters = filters
	out := make([]*models.CallLog, 0, len(m.logs))
	for _, l := range m.logs {
		if filters.UserID != nil && l.UserID != *filters.UserID {
			continue
		}
		if filters.CustomerID != nil && l.CustomerID != *filters.CustomerID {
			continue
		}
		out = append(out, l)
	}
	return out, int64(len(out)), nil
}

func (m *mockCallLogRepo) StatusCounts(ctx context.Context, filters repositories.CallLogFilters) (map[models.CallStatus]int64, error) {
	m.lastFilters = filters
	return m.counts, nil
}

type mockRepository struct {
	customer *mockCustomerRepo
	user     *mockUserRepo
	callLog  *mockCallLogRepo
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		customer: newMockCustomerRepo(),
		user:     newMockUserRepo(),
		callLog:  newMockCallLogRepo(),
	}
}

func (m *mockRepository) Customer() repositories.CustomerRepository { return m.customer }
func (m *mockRepository) User() repositories.UserRepository         { return m.user }
func (m *mockRepository) CallLog() repositories.CallLogRepository   { return m.callLog }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.DiscardHandler)
}

func admin() *models.User {
	return &models.User{ID: 1, Email: "admin@bank.local", Role: models.RoleAdmin}
}

func manager() *models.User {
	return &models.User{ID: 2, Email: "manager@bank.local", Role: models.RoleSalesManager}
}

func salesRep(id uint) *models.User {
	return &models.User{ID: id, Email: "rep@bank.local", Role: models.RoleSales}
}
