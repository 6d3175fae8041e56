package router

import (
	"billiard_pos_backend/internal/handlers"
	"billiard_pos_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authentication routes. Login is public and rate limited.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler, cookieName string, limiter *middleware.IPRateLimiter) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/login", limiter.Middleware(), authHandler.Login)
		authRoutes.POST("/logout", authHandler.Logout)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.Gatekeeper(cookieName))
		{
			authRequiredRoutes.GET("/me", middleware.Authorize(middleware.RouteAuthMe), authHandler.Me)
		}
	}
}

// SetupTableRoutes sets up the table and session routes.
func SetupTableRoutes(authenticatedGroup *gin.RouterGroup, tableHandler *handlers.TableHandler) {
	read := middleware.Authorize(middleware.RouteTablesRead)
	write := middleware.Authorize(middleware.RouteTablesWrite)
	lifecycle := middleware.Authorize(middleware.RouteSessionLifecycle)

	tableRoutes := authenticatedGroup.Group("/tables")
	{
		tableRoutes.GET("", read, tableHandler.ListTables)
		tableRoutes.GET("/:id", read, tableHandler.GetTable)
		tableRoutes.GET("/:id/bill", read, tableHandler.GetLiveBill)
		tableRoutes.POST("", write, tableHandler.CreateTable)
		tableRoutes.PATCH("/:id", write, tableHandler.UpdateTable)
		tableRoutes.DELETE("/:id", write, tableHandler.DeleteTable)

		tableRoutes.POST("/:id/start", lifecycle, tableHandler.StartTable)
		tableRoutes.POST("/:id/stop", lifecycle, tableHandler.StopTable)
		tableRoutes.POST("/:id/pause", lifecycle, tableHandler.TogglePause)
		tableRoutes.POST("/:id/ready", lifecycle, tableHandler.MarkReady)
		tableRoutes.POST("/:id/transfer", lifecycle, tableHandler.TransferTable)
	}

	authenticatedGroup.GET("/sessions", middleware.Authorize(middleware.RouteSessionsRead), tableHandler.ListSessions)
}

// SetupOrderRoutes sets up the order routes.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	{
		orderRoutes.POST("", middleware.Authorize(middleware.RouteOrdersWrite), orderHandler.CreateOrder)
		orderRoutes.GET("", middleware.Authorize(middleware.RouteOrdersRead), orderHandler.GetOrders)
		orderRoutes.GET("/:id", middleware.Authorize(middleware.RouteOrdersRead), orderHandler.GetOrderByID)
		orderRoutes.POST("/:id/pay", middleware.Authorize(middleware.RouteOrdersWrite), orderHandler.PayOrder)
		orderRoutes.POST("/:id/cancel", middleware.Authorize(middleware.RouteOrdersWrite), orderHandler.CancelOrder)
	}
}

// SetupMemberRoutes sets up the member, wallet and points routes.
func SetupMemberRoutes(authenticatedGroup *gin.RouterGroup, memberHandler *handlers.MemberHandler) {
	read := middleware.Authorize(middleware.RouteMembersRead)
	write := middleware.Authorize(middleware.RouteMembersWrite)
	wallet := middleware.Authorize(middleware.RouteMemberWallet)

	memberRoutes := authenticatedGroup.Group("/members")
	{
		memberRoutes.GET("", read, memberHandler.GetMembers)
		memberRoutes.POST("", write, memberHandler.CreateMember)
		memberRoutes.GET("/:id", read, memberHandler.GetMemberByID)
		memberRoutes.PATCH("/:id", write, memberHandler.UpdateMember)
		memberRoutes.DELETE("/:id", middleware.Authorize(middleware.RouteMembersDelete), memberHandler.DeleteMember)
		memberRoutes.GET("/:id/qr", read, memberHandler.GetMemberQR)

		memberRoutes.POST("/:id/topup", wallet, memberHandler.TopUp)
		memberRoutes.POST("/:id/points/redeem", wallet, memberHandler.RedeemPoints)
		memberRoutes.GET("/:id/wallet-transactions", wallet, memberHandler.GetWalletTransactions)
		memberRoutes.GET("/:id/point-transactions", wallet, memberHandler.GetPointTransactions)
	}
}

// SetupReservationRoutes sets up the reservation routes.
func SetupReservationRoutes(authenticatedGroup *gin.RouterGroup, reservationHandler *handlers.ReservationHandler) {
	read := middleware.Authorize(middleware.RouteReservationsRead)
	write := middleware.Authorize(middleware.RouteReservationsWrite)

	reservationRoutes := authenticatedGroup.Group("/reservations")
	{
		reservationRoutes.GET("", read, reservationHandler.GetReservations)
		reservationRoutes.POST("", write, reservationHandler.CreateReservation)
		reservationRoutes.GET("/check", middleware.Authorize(middleware.RouteReservationsCheck), reservationHandler.CheckReservations)
		reservationRoutes.GET("/:id", read, reservationHandler.GetReservationByID)
		reservationRoutes.PATCH("/:id", write, reservationHandler.UpdateReservation)
		reservationRoutes.DELETE("/:id", write, reservationHandler.DeleteReservation)
		reservationRoutes.PATCH("/:id/status", write, reservationHandler.UpdateReservationStatus)
		reservationRoutes.POST("/:id/check-in", write, reservationHandler.CheckIn)
	}
}

// SetupShiftRoutes sets up the cash drawer shift routes.
func SetupShiftRoutes(authenticatedGroup *gin.RouterGroup, shiftHandler *handlers.ShiftHandler) {
	own := middleware.Authorize(middleware.RouteShiftsOwn)

	shiftRoutes := authenticatedGroup.Group("/shifts")
	{
		shiftRoutes.POST("/open", own, shiftHandler.OpenShift)
		shiftRoutes.GET("/current", own, shiftHandler.GetCurrentShift)
		shiftRoutes.POST("/:id/close", own, shiftHandler.CloseShift)
		shiftRoutes.GET("", middleware.Authorize(middleware.RouteShiftsList), shiftHandler.ListShifts)
	}
}

// SetupProductRoutes sets up the product catalogue and stock adjustment routes.
func SetupProductRoutes(authenticatedGroup *gin.RouterGroup, productHandler *handlers.ProductHandler) {
	read := middleware.Authorize(middleware.RouteProductsRead)
	write := middleware.Authorize(middleware.RouteProductsWrite)

	productRoutes := authenticatedGroup.Group("/products")
	{
		productRoutes.GET("", read, productHandler.GetProducts)
		productRoutes.GET("/low-stock", read, productHandler.GetLowStockProducts)
		productRoutes.GET("/:id", read, productHandler.GetProductByID)
		productRoutes.POST("", write, productHandler.CreateProduct)
		productRoutes.PATCH("/:id", write, productHandler.UpdateProduct)
		productRoutes.DELETE("/:id", write, productHandler.DeleteProduct)
	}

	stockRoutes := authenticatedGroup.Group("/stock-adjustments")
	stockRoutes.Use(middleware.Authorize(middleware.RouteStockAdjustments))
	{
		stockRoutes.GET("", productHandler.GetStockAdjustments)
		stockRoutes.POST("", productHandler.CreateStockAdjustment)
	}
}

// SetupPromoRoutes sets up the promo routes. Validation is open to every role.
func SetupPromoRoutes(authenticatedGroup *gin.RouterGroup, promoHandler *handlers.PromoHandler) {
	manage := middleware.Authorize(middleware.RoutePromosManage)

	promoRoutes := authenticatedGroup.Group("/promos")
	{
		promoRoutes.GET("", manage, promoHandler.GetPromos)
		promoRoutes.POST("", manage, promoHandler.CreatePromo)
		promoRoutes.POST("/validate", middleware.Authorize(middleware.RoutePromosValidate), promoHandler.ValidatePromo)
		promoRoutes.PATCH("/:id", manage, promoHandler.UpdatePromo)
		promoRoutes.DELETE("/:id", manage, promoHandler.DeletePromo)
	}
}

// SetupUserRoutes sets up the staff account routes.
func SetupUserRoutes(authenticatedGroup *gin.RouterGroup, userHandler *handlers.UserHandler) {
	userRoutes := authenticatedGroup.Group("/users")
	userRoutes.Use(middleware.Authorize(middleware.RouteUsersManage))
	{
		userRoutes.GET("", userHandler.GetUsers)
		userRoutes.POST("", userHandler.CreateUser)
		userRoutes.PATCH("/:id", userHandler.UpdateUser)
		userRoutes.DELETE("/:id", userHandler.DeleteUser)
	}
}

// SetupConfigRoutes sets up the settings routes.
func SetupConfigRoutes(authenticatedGroup *gin.RouterGroup, settingHandler *handlers.SettingHandler) {
	configRoutes := authenticatedGroup.Group("/config")
	{
		configRoutes.GET("", middleware.Authorize(middleware.RouteConfigRead), settingHandler.GetSettings)
		configRoutes.PUT("/:key", middleware.Authorize(middleware.RouteConfigWrite), settingHandler.UpdateSetting)
	}
}

// SetupReportRoutes sets up the manager report routes.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	reportRoutes := authenticatedGroup.Group("/reports/manager")
	reportRoutes.Use(middleware.Authorize(middleware.RouteManagerReports))
	{
		reportRoutes.GET("/summary", reportHandler.GetSummary)
		reportRoutes.GET("/hourly", reportHandler.GetHourly)
		reportRoutes.GET("/top-products", reportHandler.GetTopProducts)
		reportRoutes.GET("/tables", reportHandler.GetTables)
		reportRoutes.GET("/shifts", reportHandler.GetShifts)
	}
}
