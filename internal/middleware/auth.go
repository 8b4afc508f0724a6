package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tbamaint/hogrisk-backend/internal/access"
	"github.com/tbamaint/hogrisk-backend/internal/logger"
	"github.com/tbamaint/hogrisk-backend/internal/repos"
	"github.com/tbamaint/hogrisk-backend/internal/requestdata"
	"github.com/tbamaint/hogrisk-backend/internal/types"
)

// IdentityClaims is the token payload issued by the identity provider. The
// subject carries the provider-side account id; Name and Role are asserted
// by the provider and mirrored locally on every request.
type IdentityClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	log          *logger.Logger
	jwtSecretKey string
	userRepo     repos.UserRepo
}

func NewAuthMiddleware(log *logger.Logger, jwtSecretKey string, userRepo repos.UserRepo) *AuthMiddleware {
	middlewareLogger := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, jwtSecretKey: jwtSecretKey, userRepo: userRepo}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}

		claims := &IdentityClaims{}
		parsedToken, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(am.jwtSecretKey), nil
		})
		if err != nil || !parsedToken.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid subject in token"})
			return
		}
		role := access.Role(claims.Role)
		if !access.Valid(role) {
			am.log.Warn("token carries unknown role", "role", claims.Role, "user_id", userID)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unknown role"})
			return
		}

		ctx := c.Request.Context()
		user := &types.User{
			ID:         userID,
			Subject:    claims.Subject,
			Name:       claims.Name,
			Role:       string(role),
			Active:     true,
			LastSeenAt: time.Now().UTC(),
		}
		if err := am.userRepo.Upsert(ctx, nil, user); err != nil {
			am.log.Error("failed to mirror user record", "user_id", userID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		rd := &requestdata.RequestData{
			UserID: userID,
			Name:   claims.Name,
			Role:   role,
		}
		c.Request = c.Request.WithContext(requestdata.WithRequestData(ctx, rd))
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
