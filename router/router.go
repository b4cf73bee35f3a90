package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservations/controllers"
	"github.com/yeremiapane/table-reservations/floor"
	"github.com/yeremiapane/table-reservations/layout"
	"github.com/yeremiapane/table-reservations/middlewares"
	"github.com/yeremiapane/table-reservations/services"
	"github.com/yeremiapane/table-reservations/utils"
)

// Dependencies is everything the HTTP layer needs, built once at startup.
type Dependencies struct {
	Tables       *services.TableService
	Reservations *services.ReservationService
	Sweeper      *services.Sweeper
	Reports      *services.ReportService
	Plan         layout.Provider
	Clock        utils.Clock
	Hub          *floor.Hub

	Timezone          string
	ReportTitle       string
	CORSOrigin        string
	AdminPasswordHash string
	HostPasswordHash  string
	// RateLimit is requests per second per client IP, 0 disables limiting.
	RateLimit float64
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.CORSOrigin))
	if deps.RateLimit > 0 {
		r.Use(middlewares.NewRateLimiter(deps.RateLimit, int(deps.RateLimit*2)+1).RateLimit())
	}

	tableCtrl := controllers.NewTableController(deps.Tables, deps.Plan, deps.Hub)
	reservationCtrl := controllers.NewReservationController(deps.Reservations, deps.Tables, deps.Hub)
	adminCtrl := controllers.NewAdminController(deps.Reservations, deps.Clock)
	sweepCtrl := controllers.NewSweepController(deps.Sweeper, deps.Hub)
	reportCtrl := controllers.NewReportController(deps.Reports, deps.ReportTitle)
	clockCtrl := controllers.NewClockController(deps.Clock, deps.Timezone)
	authCtrl := controllers.NewAuthController(deps.AdminPasswordHash, deps.HostPasswordHash)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.POST("/login", middlewares.NewStrictRateLimiter().RateLimit(), authCtrl.Login)
	r.POST("/logout", middlewares.AuthMiddleware(), authCtrl.Logout)

	r.GET("/ws/floor",
		middlewares.WebSocketAuthMiddleware(),
		middlewares.RequireRole(middlewares.RoleHost),
		controllers.FloorHandler(deps.Hub),
	)

	api := r.Group("/api")
	{
		api.GET("/current-date", clockCtrl.GetCurrentDate)
		api.GET("/layout", tableCtrl.GetLayout)

		api.GET("/tables", tableCtrl.GetAllTables)
		api.GET("/tables/:table_id", tableCtrl.GetTableByID)
		api.GET("/tables/area/:area", tableCtrl.GetTablesByArea)
		api.PUT("/tables/:table_id", tableCtrl.UpdateTableStatus)
		api.POST("/tables/group", tableCtrl.GroupTables)
		api.DELETE("/tables/group/:table_id", tableCtrl.UngroupTable)

		api.GET("/reservations", reservationCtrl.GetReservations)
		api.POST("/reservations", reservationCtrl.CreateReservation)
		api.GET("/reservations/:reservation_id", reservationCtrl.GetReservationByID)
		api.DELETE("/reservations/:reservation_id", reservationCtrl.DeleteReservation)
		api.POST("/reservations/:reservation_id/release", reservationCtrl.ReleaseReservation)
		api.GET("/reservations/table/:table_id", reservationCtrl.GetReservationsByTable)
	}

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := api.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequireRole(middlewares.RoleAdmin), middlewares.AuditLogger())
	{
		admin.GET("/history", adminCtrl.GetHistory)

		admin.POST("/sweep", sweepCtrl.RunSweep)
		admin.POST("/sweep/expire", sweepCtrl.ExpireStale)
		admin.POST("/sweep/promote", sweepCtrl.PromoteToday)
		admin.GET("/sweep/metrics", sweepCtrl.GetMetrics)

		admin.POST("/reports/export", reportCtrl.ExportReport)
	}

	return r
}
