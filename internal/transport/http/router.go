package httptransport

import (
	"log/slog"

	"github.com/clubciclismoepn/backend/internal/domain"
	"github.com/clubciclismoepn/backend/internal/repository"
	"github.com/clubciclismoepn/backend/internal/session"
	"github.com/clubciclismoepn/backend/internal/transport/http/handler"
	"github.com/clubciclismoepn/backend/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
)

func NewRouter(
	logger *slog.Logger,
	authHandler *handler.AuthHandler,
	notificationHandler *handler.NotificationHandler,
	issuer *session.Issuer,
	users repository.UserRepository,
) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		sloggin.New(logger),
		gin.Recovery(),
		middleware.Metrics(),
	)

	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/token", authHandler.Token)
		auth.POST("/reset_password/send", authHandler.SendResetCode)
		auth.POST("/reset_password/verify", authHandler.VerifyResetCode)
		auth.POST("/reset_password/reset", authHandler.ResetPassword)
	}

	authed := r.Group("", middleware.Auth(issuer), middleware.EnsureUser(users, logger))
	{
		authed.GET("/notifications", notificationHandler.List)
		authed.POST("/notifications/:id/read", notificationHandler.MarkRead)

		admin := authed.Group("/auth", middleware.RequireRole(domain.RoleAdmin))
		{
			admin.GET("/users", authHandler.ListUsers)
			admin.PUT("/users/:id/role", authHandler.UpdateRole)
		}
	}

	return r
}
