package controller

import (
	"errors"
	"net/http"

	"learning_points_backend/internal/service"
	"learning_points_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 将业务错误映射为 HTTP 状态码
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrScoreNotFound),
		errors.Is(err, service.ErrLevelNotFound),
		errors.Is(err, service.ErrPointsConfigNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

func currentUserID(ctx *gin.Context) (uint, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil || claims.UserID == 0 {
		return 0, false
	}
	return claims.UserID, true
}
