package router

import (
	"database/sql"
	"net/http"

	"billiard_pos_backend/internal/config"
	"billiard_pos_backend/internal/handlers"
	"billiard_pos_backend/internal/middleware"
	"billiard_pos_backend/internal/repositories"
	"billiard_pos_backend/internal/services"
	"billiard_pos_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Users       *handlers.UserHandler
	Tables      *handlers.TableHandler
	Orders      *handlers.OrderHandler
	Members     *handlers.MemberHandler
	Reservation *handlers.ReservationHandler
	Shifts      *handlers.ShiftHandler
	Products    *handlers.ProductHandler
	Promos      *handlers.PromoHandler
	Settings    *handlers.SettingHandler
	Reports     *handlers.ReportHandler
}

// BuildHandlers wires repositories, services and handlers over one database.
func BuildHandlers(db *sql.DB, cfg *config.Config, clock services.Clock) *Handlers {
	userRepo := repositories.NewUserRepository(db)
	tableRepo := repositories.NewTableRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	productRepo := repositories.NewProductRepository(db)
	promoRepo := repositories.NewPromoRepository(db)
	reservationRepo := repositories.NewReservationRepository(db)
	shiftRepo := repositories.NewShiftRepository(db)
	settingRepo := repositories.NewSettingRepository(db)
	reportRepo := repositories.NewReportRepository(db)

	loc := cfg.Location

	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, db)
	tableService := services.NewTableService(tableRepo, sessionRepo, orderRepo, memberRepo, db, loc, clock)
	orderService := services.NewOrderService(orderRepo, productRepo, sessionRepo, memberRepo, promoRepo, settingRepo, db, loc, clock)
	memberService := services.NewMemberService(memberRepo, db)
	reservationService := services.NewReservationService(reservationRepo, tableRepo, sessionRepo, orderRepo, memberRepo, db, loc, clock)
	shiftService := services.NewShiftService(shiftRepo, orderRepo, db, loc, clock)
	productService := services.NewProductService(productRepo, db)
	promoService := services.NewPromoService(promoRepo, db, clock)
	settingService := services.NewSettingService(settingRepo, db)
	reportService := services.NewReportService(reportRepo, shiftRepo, loc, clock)

	return &Handlers{
		Auth: handlers.NewAuthHandler(authService, handlers.CookieSettings{
			Name:   cfg.AuthCookieName,
			Secure: cfg.AuthCookieSecure,
		}),
		Users:       handlers.NewUserHandler(userService),
		Tables:      handlers.NewTableHandler(tableService),
		Orders:      handlers.NewOrderHandler(orderService),
		Members:     handlers.NewMemberHandler(memberService),
		Reservation: handlers.NewReservationHandler(reservationService),
		Shifts:      handlers.NewShiftHandler(shiftService),
		Products:    handlers.NewProductHandler(productService),
		Promos:      handlers.NewPromoHandler(promoService),
		Settings:    handlers.NewSettingHandler(settingService),
		Reports:     handlers.NewReportHandler(reportService),
	}
}

// Setup installs the global middleware and every route on engine.
func Setup(engine *gin.Engine, h *Handlers, cfg *config.Config) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{middleware.HeaderRequestID}
	corsConfig.AllowCredentials = true

	engine.Use(gin.Recovery(), middleware.RequestID(), utils.GinLogger(), cors.New(corsConfig))

	engine.NoRoute(func(c *gin.Context) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Route not found.", nil))
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := engine.Group("/api")

	SetupAuthRoutes(api, h.Auth, cfg.AuthCookieName, middleware.NewIPRateLimiter(cfg.LoginRatePerMinute))

	authenticated := api.Group("")
	authenticated.Use(middleware.Gatekeeper(cfg.AuthCookieName))
	{
		SetupTableRoutes(authenticated, h.Tables)
		SetupOrderRoutes(authenticated, h.Orders)
		SetupMemberRoutes(authenticated, h.Members)
		SetupReservationRoutes(authenticated, h.Reservation)
		SetupShiftRoutes(authenticated, h.Shifts)
		SetupProductRoutes(authenticated, h.Products)
		SetupPromoRoutes(authenticated, h.Promos)
		SetupUserRoutes(authenticated, h.Users)
		SetupConfigRoutes(authenticated, h.Settings)
		SetupReportRoutes(authenticated, h.Reports)
	}
}
