package app

import (
	"strings"

	"github.com/tbamaint/hogrisk-backend/internal/access"
	"github.com/tbamaint/hogrisk-backend/internal/logger"
	"github.com/tbamaint/hogrisk-backend/internal/utils"
)

type Config struct {
	JWTSecretKey          string
	Port                  string
	AllowedOrigins        []string
	PendingRecipientRoles []access.Role
	ChecklistCatalogPath  string
	Environment           string
	Version               string
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	port := utils.GetEnv("PORT", "8080", log)
	originsRaw := utils.GetEnv("ALLOWED_ORIGINS", "", log)
	rolesRaw := utils.GetEnv("PENDING_RECIPIENT_ROLES", "", log)
	catalogPath := utils.GetEnv("CHECKLIST_CATALOG_PATH", "", log)
	environment := utils.GetEnv("ENVIRONMENT", "development", log)
	version := utils.GetEnv("SERVICE_VERSION", "dev", log)

	var origins []string
	for _, o := range strings.Split(originsRaw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	recipientRoles := access.DefaultPendingRecipientRoles()
	if rolesRaw != "" {
		if parsed := access.ParseRoles(rolesRaw); len(parsed) > 0 {
			recipientRoles = parsed
		} else {
			log.Warn("PENDING_RECIPIENT_ROLES contains no known roles, using default", "value", rolesRaw)
		}
	}

	return Config{
		JWTSecretKey:          jwtSecretKey,
		Port:                  port,
		AllowedOrigins:        origins,
		PendingRecipientRoles: recipientRoles,
		ChecklistCatalogPath:  catalogPath,
		Environment:           environment,
		Version:               version,
	}
}
