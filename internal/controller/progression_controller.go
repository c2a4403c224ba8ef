package controller

import (
	"learning_points_backend/internal/service"
	"learning_points_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressionController struct {
	Progression *service.ProgressionService
	LevelConfig *service.LevelConfigService
}

func NewProgressionController(progression *service.ProgressionService, levelConfig *service.LevelConfigService) *ProgressionController {
	return &ProgressionController{
		Progression: progression,
		LevelConfig: levelConfig,
	}
}

type SectionAwardRequest struct {
	SectionID        string `json:"sectionId" binding:"required"`
	ModuleDifficulty string `json:"moduleDifficulty"`
}

type QuizAwardRequest struct {
	QuizID           string `json:"quizId" binding:"required"`
	ModuleDifficulty string `json:"moduleDifficulty"`
	Score            int    `json:"score" binding:"min=0"`
	MaxScore         int    `json:"maxScore" binding:"required,min=1"`
}

type FinalQuizAwardRequest struct {
	FinalQuizID string `json:"finalQuizId" binding:"required"`
	Difficulty  string `json:"difficulty"`
	Score       int    `json:"score" binding:"min=0"`
	MaxScore    int    `json:"maxScore" binding:"required,min=1"`
}

// GetMyProgression godoc
// @Summary 当前用户的积分、等级、排名与连续天数
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.UserProgression}
// @Router /api/progression/me [get]
func (c *ProgressionController) GetMyProgression(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	progression, err := c.Progression.GetUserProgression(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progression)
}

// AwardSection godoc
// @Summary 阅读章节获得积分
// @Tags 进度
// @Accept json
// @Produce json
// @Param body body SectionAwardRequest true "章节信息"
// @Success 200 {object} util.Response{data=service.AwardResult}
// @Router /api/progression/award-points/section [post]
func (c *ProgressionController) AwardSection(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req SectionAwardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Progression.AwardSectionPoints(ctx.Request.Context(), userID, req.SectionID, req.ModuleDifficulty)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// AwardQuiz godoc
// @Summary 模块测验获得积分，score 为答对题数，maxScore 为题目总数
// @Tags 进度
// @Accept json
// @Produce json
// @Param body body QuizAwardRequest true "测验结果"
// @Success 200 {object} util.Response{data=service.AwardResult}
// @Router /api/progression/award-points/quiz [post]
func (c *ProgressionController) AwardQuiz(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req QuizAwardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Progression.AwardQuizPoints(ctx.Request.Context(), userID, req.QuizID, req.ModuleDifficulty, req.Score, req.MaxScore)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// AwardFinalQuiz godoc
// @Summary 期末测验获得积分，难度缺省为 intermediate
// @Tags 进度
// @Accept json
// @Produce json
// @Param body body FinalQuizAwardRequest true "测验结果"
// @Success 200 {object} util.Response{data=service.AwardResult}
// @Router /api/progression/award-points/final-quiz [post]
func (c *ProgressionController) AwardFinalQuiz(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req FinalQuizAwardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Progression.AwardFinalQuizPoints(ctx.Request.Context(), userID, req.FinalQuizID, req.Difficulty, req.Score, req.MaxScore)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetLeaderboard godoc
// @Summary 积分排行榜
// @Tags 进度
// @Produce json
// @Param limit query int false "返回条数"
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry}
// @Router /api/progression/leaderboard [get]
func (c *ProgressionController) GetLeaderboard(ctx *gin.Context) {
	limit := util.ParseLimit(ctx.Query("limit"), 0)

	board, err := c.Progression.GetLeaderboard(ctx.Request.Context(), limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, board)
}

// GetAttemptStatus 查询某来源是否仍可获得首次作答积分
func (c *ProgressionController) GetAttemptStatus(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	status, err := c.Progression.GetAttemptStatus(ctx.Request.Context(), userID, ctx.Query("source"), ctx.Query("sourceId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, status)
}

// GetHistory godoc
// @Summary 当前用户的积分流水（分页）
// @Tags 进度
// @Produce json
// @Param page query int false "页码，从1开始"
// @Param limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/progression/history [get]
func (c *ProgressionController) GetHistory(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	page := util.ParseLimit(ctx.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	limit := util.ParseLimit(ctx.Query("limit"), util.DefaultHistoryLimit)
	if limit <= 0 || limit > util.MaxHistoryLimit {
		limit = util.DefaultHistoryLimit
	}
	history, total, err := c.Progression.GetPointsHistory(ctx.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Page(ctx, history, total, page, limit)
}

// InitDefaults godoc
// @Summary 初始化默认等级与积分配置（管理员）
// @Tags 进度
// @Produce json
// @Success 200 {object} util.Response{data=service.InitResult}
// @Router /api/progression/init-defaults [post]
func (c *ProgressionController) InitDefaults(ctx *gin.Context) {
	result, err := c.LevelConfig.InitializeDefaults(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
