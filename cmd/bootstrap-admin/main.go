package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	userpostgres "github.com/Apurer/go-gin-commerce-api/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/go-gin-commerce-api/internal/domains/users/application"
	usertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/users/application/types"
	userports "github.com/Apurer/go-gin-commerce-api/internal/domains/users/ports"
	"github.com/Apurer/go-gin-commerce-api/internal/platform/migrations"
	platformpostgres "github.com/Apurer/go-gin-commerce-api/internal/platform/postgres"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
)

// bootstrap-admin creates the first administrator, since only admins can create staff.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	username := strings.TrimSpace(os.Getenv("ADMIN_USERNAME"))
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		log.Fatal("ADMIN_USERNAME and ADMIN_PASSWORD must be set")
	}

	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot create admin")
	}
	if err := migrations.Run(db); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	service := userapp.NewService(userpostgres.NewRepository(db), userpostgres.NewSessionStore(db), nil)
	admin, err := service.CreateEmployee(ctx, usertypes.EmployeeInput{
		Username: username,
		Password: password,
		Roles:    []authz.Role{authz.RoleAdmin},
	})
	switch {
	case errors.Is(err, userports.ErrDuplicateUsername):
		logger.Info("admin already exists", slog.String("username", username))
	case err != nil:
		log.Fatalf("failed to create admin: %v", err)
	default:
		logger.Info("admin created", slog.String("id", admin.ID), slog.String("username", admin.Username))
	}
}
