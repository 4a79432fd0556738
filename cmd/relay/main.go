package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/heapdog/heapdog/internal/backend"
	"github.com/heapdog/heapdog/internal/config"
	"github.com/heapdog/heapdog/internal/relay"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client := backend.New(cfg.BackendURL, cfg.HTTPTimeout)

	cookie := relay.CookieConfig{Name: cfg.CookieName, Secure: cfg.CookieSecure}
	authHandler := relay.NewAuthHandler(client, cookie)
	notificationHandler := relay.NewNotificationHandler(client)
	organizationHandler := relay.NewOrganizationHandler(client)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = relay.HTTPErrorHandler
	e.Validator = relay.NewAppValidator()

	e.Use(middleware.RequestID())
	e.Use(relay.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentType},
		ExposeHeaders:    []string{echo.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")

	// Public auth routes
	api.POST("/auth/signin", authHandler.Signin)
	api.POST("/auth/signout", authHandler.Signout)
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/verify-email", authHandler.VerifyEmail)

	// Session-protected routes
	session := api.Group("", relay.SessionAuth(cfg.CookieName))
	session.GET("/auth/me", authHandler.Me)

	session.GET("/sse-token", notificationHandler.StreamToken)
	session.GET("/notifications", notificationHandler.List)
	session.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	session.PATCH("/notifications/read", notificationHandler.MarkRead)

	session.POST("/organizations", organizationHandler.Create)
	session.PATCH("/organizations/switch", organizationHandler.Switch)
	session.GET("/organizations/check-slug", organizationHandler.CheckSlug)
	session.POST("/organizations/invite", organizationHandler.Invite)
	session.GET("/organizations/:slug/basic-info", organizationHandler.BasicInfo)
	session.PATCH("/organizations/:slug/basic-info", organizationHandler.UpdateBasicInfo)
	session.PATCH("/organizations/:slug/membership/:membershipId/role", organizationHandler.UpdateMemberRole)
	session.GET("/organizations/:slug/membership-status", organizationHandler.MembershipStatus)
	session.PATCH("/organizations/:slug/invitations/:invitationId/revoke", organizationHandler.RevokeInvitation)
	session.POST("/invitations/accept", organizationHandler.AcceptInvitation)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("relay starting", "port", cfg.Port, "backend", cfg.BackendURL)
		errCh <- e.Start(fmt.Sprintf(":%d", cfg.Port))
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("relay stopped gracefully")
	return nil
}
