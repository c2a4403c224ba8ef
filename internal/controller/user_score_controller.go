package controller

import (
	"strconv"

	"learning_points_backend/internal/service"
	"learning_points_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UserScoreController 管理员维护积分记录
type UserScoreController struct {
	Scores *service.ScoreService
}

func NewUserScoreController(scores *service.ScoreService) *UserScoreController {
	return &UserScoreController{Scores: scores}
}

type SetScoreRequest struct {
	Score int `json:"score" binding:"min=0"`
}

type AddScoreRequest struct {
	Delta int `json:"delta" binding:"min=0"`
}

func parseUserID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("userId"), 10, 32)
	if err != nil || id == 0 {
		util.BadRequest(ctx, "invalid userId")
		return 0, false
	}
	return uint(id), true
}

func (c *UserScoreController) List(ctx *gin.Context) {
	scores, err := c.Scores.ListScores(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, scores)
}

// Get 不存在时创建零分记录
func (c *UserScoreController) Get(ctx *gin.Context) {
	userID, ok := parseUserID(ctx)
	if !ok {
		return
	}
	score, err := c.Scores.GetScore(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"userId": userID, "score": score})
}

func (c *UserScoreController) Set(ctx *gin.Context) {
	userID, ok := parseUserID(ctx)
	if !ok {
		return
	}
	var req SetScoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rec, err := c.Scores.SetScore(ctx.Request.Context(), userID, req.Score)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, rec)
}

func (c *UserScoreController) Add(ctx *gin.Context) {
	userID, ok := parseUserID(ctx)
	if !ok {
		return
	}
	var req AddScoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	score, err := c.Scores.AddScore(ctx.Request.Context(), userID, req.Delta)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"userId": userID, "score": score})
}

func (c *UserScoreController) Delete(ctx *gin.Context) {
	userID, ok := parseUserID(ctx)
	if !ok {
		return
	}
	if err := c.Scores.DeleteScore(ctx.Request.Context(), userID); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"userId": userID})
}

func (c *UserScoreController) ResetAll(ctx *gin.Context) {
	n, err := c.Scores.ResetAll(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"reset": n})
}
