package services

import (
	"log/slog"

	"github.com/BMS-2026/crm-service/internal/auth"
	"github.com/BMS-2026/crm-service/internal/events"
	"github.com/BMS-2026/crm-service/internal/repositories"
	"github.com/BMS-2026/crm-service/internal/validator"
)

// ServiceManager wires every service behind one injection point so the
// handlers take a single dependency.
type ServiceManager struct {
	auth      AuthService
	user      UserService
	customer  CustomerService
	callLog   CallLogService
	guide     GuideService
	dashboard DashboardService
	importer  ImportService
}

// ServiceManagerDeps carries everything the services need. GuideGenerator
// is optional; absent it, the guide endpoint serves the rule-based guide.
type ServiceManagerDeps struct {
	Repo           repositories.Repository
	Logger         *slog.Logger
	Validator      *validator.BusinessValidator
	JWT            *auth.JWTService
	Publisher      events.EventPublisher
	GuideGenerator GuideGenerator
	MaxPageLimit   int
}

func NewServiceManager(deps ServiceManagerDeps) *ServiceManager {
	if deps.Publisher == nil {
		deps.Publisher = events.NopEventPublisher{}
	}

	return &ServiceManager{
		auth:      NewAuthService(deps.Repo, deps.Logger, deps.Validator, deps.JWT),
		user:      NewUserService(deps.Repo, deps.Logger, deps.Validator),
		customer:  NewCustomerService(deps.Repo, deps.Logger, deps.Validator, deps.Publisher, deps.MaxPageLimit),
		callLog:   NewCallLogService(deps.Repo, deps.Logger, deps.Validator, deps.Publisher, deps.MaxPageLimit),
		guide:     NewGuideService(deps.Repo, deps.Logger, deps.GuideGenerator),
		dashboard: NewDashboardService(deps.Repo, deps.Logger),
		importer:  NewImportService(deps.Repo, deps.Logger, deps.Publisher),
	}
}

func (m *ServiceManager) Auth() AuthService           { return m.auth }
func (m *ServiceManager) User() UserService           { return m.user }
func (m *ServiceManager) Customer() CustomerService   { return m.customer }
func (m *ServiceManager) CallLog() CallLogService     { return m.callLog }
func (m *ServiceManager) Guide() GuideService         { return m.guide }
func (m *ServiceManager) Dashboard() DashboardService { return m.dashboard }
func (m *ServiceManager) Import() ImportService       { return m.importer }
