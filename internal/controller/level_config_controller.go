package controller

import (
	"errors"

	"learning_points_backend/internal/service"
	"learning_points_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LevelConfigController struct {
	Service *service.LevelConfigService
}

func NewLevelConfigController(s *service.LevelConfigService) *LevelConfigController {
	return &LevelConfigController{Service: s}
}

// ListLevels godoc
// @Summary 启用中的等级门槛，includeInactive=true 时返回全部（管理员）
// @Tags 等级配置
// @Produce json
// @Success 200 {object} util.Response{data=[]model.LevelThreshold}
// @Router /api/level-config/levels [get]
func (c *LevelConfigController) ListLevels(ctx *gin.Context) {
	levels, err := c.Service.GetActiveLevels(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, levels)
}

func (c *LevelConfigController) ListAllLevels(ctx *gin.Context) {
	levels, err := c.Service.ListLevels(ctx.Request.Context(), true)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, levels)
}

// CreateLevel godoc
// @Summary 新增等级门槛
// @Tags 等级配置
// @Accept json
// @Produce json
// @Param body body service.LevelRequest true "等级信息"
// @Success 201 {object} util.Response{data=model.LevelThreshold}
// @Router /api/level-config/levels [post]
func (c *LevelConfigController) CreateLevel(ctx *gin.Context) {
	var req service.LevelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	level, err := c.Service.CreateLevel(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, level)
}

func (c *LevelConfigController) UpdateLevel(ctx *gin.Context) {
	var req service.LevelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	level, err := c.Service.UpdateLevel(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, level)
}

func (c *LevelConfigController) DeleteLevel(ctx *gin.Context) {
	if err := c.Service.DeleteLevel(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": ctx.Param("id")})
}

// GetPointsConfig 返回当前生效的积分表，未配置时返回默认值
func (c *LevelConfigController) GetPointsConfig(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	cfg, err := c.Service.GetPointsConfig(reqCtx)
	if err != nil {
		if !errors.Is(err, service.ErrPointsConfigNotFound) {
			respondError(ctx, err)
			return
		}
		util.Success(ctx, gin.H{"id": nil, "rates": c.Service.EffectiveRates(reqCtx), "isDefault": true})
		return
	}
	util.Success(ctx, gin.H{"id": cfg.ID, "rates": c.Service.EffectiveRates(reqCtx), "isDefault": false})
}

// UpdatePointsConfig godoc
// @Summary 修改积分表，未传 id 时修改当前生效的配置
// @Tags 等级配置
// @Accept json
// @Produce json
// @Param body body service.PointsConfigRequest true "积分配置"
// @Success 200 {object} util.Response{data=model.PointsConfig}
// @Router /api/level-config/points [put]
func (c *LevelConfigController) UpdatePointsConfig(ctx *gin.Context) {
	var req service.PointsConfigRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	cfg, err := c.Service.UpdatePointsConfig(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	rates, err := cfg.Rates()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": cfg.ID, "rates": rates})
}
