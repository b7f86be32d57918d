package main

import (
	"os"
	"strings"

	"github.com/playmatatu/minigolf/internal/admin"
	"github.com/playmatatu/minigolf/internal/config"
	"github.com/playmatatu/minigolf/internal/database"
	"github.com/playmatatu/minigolf/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg)
	log := logger.For("seed-admin")

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
		log.Info().Str("username", username).Msg("using default admin username")
	}

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		adminToken = "change-me-in-production"
		log.Warn().Msg("using default admin token; set ADMIN_TOKEN in production")
	}

	displayName := os.Getenv("ADMIN_DISPLAY_NAME")
	if displayName == "" {
		displayName = "Admin"
	}
	roles := []string{"super_admin"}
	if r := os.Getenv("ADMIN_ROLES"); r != "" {
		roles = strings.Split(r, ",")
	}

	if err := admin.CreateAdminAccount(db, username, displayName, adminToken, roles); err != nil {
		log.Fatal().Err(err).Msg("failed to create admin account")
	}

	log.Info().Str("username", username).Str("display_name", displayName).Strs("roles", roles).
		Msg("admin account created or updated; send X-Admin-User and X-Admin-Token on /api/v1/admin requests")
}
