package rest

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"strizh/config"
	"strizh/internal/service"
)

type Handler struct {
	services *service.Services
	logger   *zap.Logger
	config   *config.Config
}

func NewHandler(services *service.Services, logger *zap.Logger, config *config.Config) *Handler {
	return &Handler{
		services: services,
		logger:   logger,
		config:   config,
	}
}

func (h *Handler) InitRoutes(router *gin.Engine) {
	router.Use(h.loggerMiddleware())

	router.Use(h.errorMiddleware())

	router.Use(h.corsMiddleware())

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", h.login)
			auth.POST("/refresh", h.refreshTokens)
			auth.POST("/logout", h.logout)
		}

		users := api.Group("/users")
		users.Use(h.authMiddleware())
		{
			users.GET("/me", h.getCurrentUser)
			users.GET("/:id", h.getUserByID)
			users.PUT("/:id", h.updateUser)
			users.PUT("/:id/password", h.updatePassword)

			admin := users.Group("/")
			admin.Use(h.adminMiddleware())
			{
				admin.POST("/", h.createUser)
				admin.GET("/", h.getUsers)
			}
		}

		masters := api.Group("/masters")
		{
			masters.GET("/", h.getMasters)
			masters.GET("/:id", h.getMasterByID)
			masters.GET("/:id/schedule", h.getMasterSchedule)
			masters.GET("/:id/free-slots", h.getFreeSlots)
			masters.GET("/me", h.authMiddleware(), h.getMyMasterProfile)

			auth := masters.Group("/", h.authMiddleware())
			{
				auth.POST("/", h.adminMiddleware(), h.createMaster)
				auth.PUT("/:id", h.updateMaster)

				auth.PUT("/:id/schedule", h.upsertMasterSchedule)
				auth.GET("/:id/time-off", h.getMasterTimeOff)
				auth.POST("/:id/time-off", h.markMasterUnavailable)

				auth.POST("/:id/photo", h.uploadMasterPhoto)
				auth.DELETE("/:id/photo", h.deleteMasterPhoto)
			}
		}

		services := api.Group("/services")
		{
			services.GET("/", h.getServices)
			services.GET("/:id", h.getServiceByID)

			admin := services.Group("/")
			admin.Use(h.authMiddleware(), h.adminMiddleware())
			{
				admin.POST("/", h.createService)
				admin.PUT("/:id", h.updateService)
			}
		}

		addons := api.Group("/addons")
		{
			addons.GET("/", h.getAddons)

			admin := addons.Group("/")
			admin.Use(h.authMiddleware(), h.adminMiddleware())
			{
				admin.POST("/", h.createAddon)
				admin.PUT("/:id", h.updateAddon)
			}
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("/", h.initiateBooking)
			bookings.GET("/status", h.getBookingByReference)
			bookings.GET("/payment/confirm", h.confirmPayment)

			auth := bookings.Group("/")
			auth.Use(h.authMiddleware())
			{
				auth.GET("/", h.getBookings)
				auth.GET("/:id", h.getBookingByID)
				auth.POST("/:id/cancel", h.cancelBooking)
				auth.POST("/:id/complete", h.completeBooking)
			}
		}

		internal := api.Group("/internal")
		internal.Use(h.sweepAuthMiddleware())
		{
			internal.POST("/reminders/sweep", h.runReminderSweep)
		}
	}
}
