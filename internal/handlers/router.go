package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BMS-2026/crm-service/internal/auth"
	"github.com/BMS-2026/crm-service/internal/models"
	"github.com/BMS-2026/crm-service/internal/repositories"
	"github.com/BMS-2026/crm-service/internal/services"
	"github.com/BMS-2026/crm-service/internal/utils"
)

type HandlerManager struct {
	authHandler      *AuthHandler
	userHandler      *UserHandler
	customerHandler  *CustomerHandler
	callLogHandler   *CallLogHandler
	dashboardHandler *DashboardHandler
	authMiddleware   *JWTAuthMiddleware
	repo             repositories.Repository
}

func NewHandlerManager(
	serviceManager *services.ServiceManager,
	jwtService *auth.JWTService,
	logger utils.Logger,
	repo repositories.Repository,
) *HandlerManager {
	return &HandlerManager{
		authHandler:      NewAuthHandler(serviceManager.Auth(), logger),
		userHandler:      NewUserHandler(serviceManager.User(), logger),
		customerHandler:  NewCustomerHandler(serviceManager.Customer(), serviceManager.Guide(), serviceManager.Import(), logger),
		callLogHandler:   NewCallLogHandler(serviceManager.CallLog(), logger),
		dashboardHandler: NewDashboardHandler(serviceManager.Dashboard(), logger),
		authMiddleware:   NewJWTAuthMiddleware(jwtService, repo.User()),
		repo:             repo,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")

	// Login is the only route outside authentication
	v1.POST("/auth/login", hm.authHandler.Login)

	authed := v1.Group("")
	authed.Use(hm.authMiddleware.AuthMiddleware())
	{
		authed.GET("/auth/me", hm.authHandler.Me)

		authed.GET("/dashboard", hm.dashboardHandler.GetOverview)

		// Customer routes. Per-record rules (ownership, visibility) live in
		// the service layer; the role middleware gates only operations that
		// are categorically closed to a role.
		customers := authed.Group("/customers")
		{
			customers.GET("", hm.customerHandler.ListCustomers)
			customers.GET("/:id", hm.customerHandler.GetCustomer)
			customers.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin, models.RoleSalesManager), hm.customerHandler.CreateCustomer)
			customers.PUT("/:id", hm.customerHandler.UpdateCustomer)
			customers.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.customerHandler.DeleteCustomer)

			customers.POST("/:id/assign", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin, models.RoleSalesManager), hm.customerHandler.AssignCustomer)
			customers.POST("/:id/unassign", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin, models.RoleSalesManager), hm.customerHandler.UnassignCustomer)
			customers.POST("/bulk-assign", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin, models.RoleSalesManager), hm.customerHandler.BulkAssignCustomers)
			customers.POST("/bulk-unassign", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin, models.RoleSalesManager), hm.customerHandler.BulkUnassignCustomers)

			customers.GET("/:id/guide", hm.authMiddleware.RequireRoleMiddleware(models.RoleSalesManager, models.RoleSales), hm.customerHandler.GetConversationGuide)
			customers.GET("/:id/call-logs", hm.authMiddleware.RequireRoleMiddleware(models.RoleSalesManager, models.RoleSales), hm.callLogHandler.GetCustomerCallLogs)

			customers.POST("/import", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin, models.RoleSalesManager), hm.customerHandler.ImportCustomers)
		}

		// Call logs are operational data for the sales floor; ADMIN is
		// excluded from the whole group.
		callLogs := authed.Group("/call-logs")
		callLogs.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleSalesManager, models.RoleSales))
		{
			callLogs.POST("", hm.callLogHandler.CreateCallLog)
			callLogs.GET("", hm.callLogHandler.ListCallLogs)
			callLogs.GET("/stats", hm.callLogHandler.GetCallStats)
			callLogs.GET("/:id", hm.callLogHandler.GetCallLog)
			callLogs.PUT("/:id", hm.callLogHandler.UpdateCallLog)
			callLogs.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleSalesManager), hm.callLogHandler.DeleteCallLog)
		}

		// User management. Listing stays open to managers so the assignment
		// picker can load sales reps; the service enforces the exact rule.
		users := authed.Group("/users")
		{
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
			users.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.CreateUser)
			users.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.UpdateUser)
			users.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.DeleteUser)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK

	if err := hm.repo.Ping(c.Request.Context()); err != nil {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "crm-service",
	})
}
