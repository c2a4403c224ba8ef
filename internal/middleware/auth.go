package middleware

import (
	"strings"

	"learning_points_backend/internal/config"
	"learning_points_backend/internal/model"
	"learning_points_backend/internal/util"
	"learning_points_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// tokenFromRequest 依次从 Authorization 头、Cookie、查询参数读取令牌
func tokenFromRequest(c *gin.Context, cookieName string) string {
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, util.BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, util.BearerPrefix))
	}
	if cookieName != "" {
		if v, err := c.Cookie(cookieName); err == nil && v != "" {
			return v
		}
	}
	return c.Query("token")
}

func AuthMiddleware(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c, cfg.CookieName)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.Secret)
		if err != nil {
			logger.Log.Debug("jwt rejected", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

// RoleMiddleware 管理员放行所有角色限制
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := user.Role == model.Admin
		for _, role := range roles {
			if user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
