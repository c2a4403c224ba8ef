package controller

import (
	"learning_points_backend/internal/service"
	"learning_points_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReadingStateController struct {
	ReadingState *service.ReadingStateService
}

func NewReadingStateController(readingState *service.ReadingStateService) *ReadingStateController {
	return &ReadingStateController{ReadingState: readingState}
}

// RecordAccess godoc
// @Summary 记录模块访问
// @Tags 阅读状态
// @Produce json
// @Security ApiKeyAuth
// @Param moduleId path string true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/reading-state/access/{moduleId} [post]
func (c *ReadingStateController) RecordAccess(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	if err := c.ReadingState.RecordModuleAccess(ctx.Request.Context(), userID, ctx.Param("moduleId")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Module access updated successfully"})
}

// GetLastAccessed godoc
// @Summary 最近访问的模块（最多两个）
// @Tags 阅读状态
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.ReadingState}
// @Router /api/reading-state/last-accessed [get]
func (c *ReadingStateController) GetLastAccessed(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	states, err := c.ReadingState.GetLastAccessed(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, states)
}
