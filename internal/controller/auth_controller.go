package controller

import (
	"errors"
	"net/http"

	"learning_points_backend/internal/config"
	"learning_points_backend/internal/service"
	"learning_points_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	JWT         config.JWTConfig
}

func NewAuthController(authService *service.AuthService, jwtCfg config.JWTConfig) *AuthController {
	return &AuthController{
		AuthService: authService,
		JWT:         jwtCfg,
	}
}

// Register godoc
// @Summary 注册新用户
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterRequest true "用户注册信息"
// @Success 201 {object} util.Response{data=object} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "邮箱已被注册"
// @Router /api/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(ctx.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrEmailRegistered):
			util.Error(ctx, http.StatusConflict, err.Error())
		case errors.Is(err, util.ErrMissingRegisterInfo):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"id": user.ID, "username": user.Username})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary 用户登录
// @Description 返回JWT令牌，同时写入 HttpOnly Cookie
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "用户登录凭据"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, user, err := c.AuthService.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, util.ErrInvalidCredentials) {
			util.Unauthorized(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.JWT.CookieName, token, int(c.JWT.ExpireTime.Seconds()), "/", "", c.JWT.Secure, true)
	util.Success(ctx, gin.H{"token": token, "user": user})
}

// Logout 清除登录 Cookie
func (c *AuthController) Logout(ctx *gin.Context) {
	ctx.SetCookie(c.JWT.CookieName, "", -1, "/", "", c.JWT.Secure, true)
	util.Success(ctx, nil)
}

// GetProfile godoc
// @Summary 获取当前用户资料
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/auth/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.AuthService.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// ChangePassword godoc
// @Summary 修改密码
// @Tags 认证
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body ChangePasswordRequest true "当前密码与新密码"
// @Success 200 {object} util.Response "成功"
// @Failure 400 {object} util.Response "当前密码错误或新密码不合法"
// @Router /api/auth/change-password [post]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.AuthService.ChangePassword(ctx.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, util.ErrWrongPassword) {
			util.BadRequest(ctx, err.Error())
			return
		}
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Password changed successfully"})
}

// UpdateProfile godoc
// @Summary 更新当前用户资料
// @Tags 认证
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ProfileRequest true "资料字段，缺省字段不修改"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Router /api/auth/me [post]
func (c *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req service.ProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.UpdateProfile(ctx.Request.Context(), userID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}
