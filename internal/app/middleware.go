package app

import (
	"github.com/tbamaint/hogrisk-backend/internal/logger"
	"github.com/tbamaint/hogrisk-backend/internal/middleware"
)

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config, reposet Repos) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, cfg.JWTSecretKey, reposet.User),
	}
}
