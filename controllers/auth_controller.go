package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nordblog/blogapi/engine"
	"github.com/nordblog/blogapi/utils"
)

const tokenLifetime = 20 * time.Hour

// AuthController handles signup, login and everything operating on the
// caller's own account.
type AuthController struct {
	engine *engine.Engine
}

// NewAuthController creates an AuthController.
func NewAuthController(e *engine.Engine) *AuthController {
	return &AuthController{engine: e}
}

// Signup handles public account registration. Accepts JSON or multipart
// form data with an optional avatar file.
func (a *AuthController) Signup(ctx *gin.Context) {
	var req struct {
		FirstName       string `form:"first_name" json:"first_name" binding:"required"`
		LastName        string `form:"last_name" json:"last_name" binding:"required"`
		Email           string `form:"email" json:"email" binding:"required,email"`
		DOB             string `form:"dob" json:"dob" binding:"required"`
		Password        string `form:"password" json:"password" binding:"required"`
		PasswordConfirm string `form:"password_confirm" json:"password_confirm" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	dob, err := time.Parse("2006-01-02", strings.TrimSpace(req.DOB))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "date of birth has to be specified as YYYY-MM-DD")
		return
	}

	avatar, err := formImage(ctx, "avatar")
	if err != nil {
		respondImageError(ctx, err)
		return
	}

	user, err := a.engine.Signup(ctx.Request.Context(), engine.SignupInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		DOB:             dob,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Avatar:          avatar,
	})
	if err != nil {
		respondEngineError(ctx, err)
		return
	}

	utils.Created(ctx, gin.H{"user": user})
}

// Login verifies credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `form:"email" json:"email" binding:"required"`
		Password string `form:"password" json:"password" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	user, err := a.engine.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondEngineError(ctx, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user": gin.H{
			"id":        user.ID,
			"full_name": user.FullName(),
		},
	})
}

// Logout revokes the presented token until its natural expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusBadRequest, 40005, "invalid authorization header")
		return
	}
	token := strings.TrimSpace(parts[1])

	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(tokenLifetime)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(token, expiresAt)

	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the caller's record with authored post and comment counts.
func (a *AuthController) Me(ctx *gin.Context) {
	profile, err := a.engine.GetProfile(ctx.Request.Context(), identityFrom(ctx))
	if err != nil {
		respondEngineError(ctx, err)
		return
	}
	utils.Success(ctx, profile)
}

// UpdateBasicInfo updates the caller's name, email, date of birth and
// optionally the avatar.
func (a *AuthController) UpdateBasicInfo(ctx *gin.Context) {
	var req struct {
		FirstName string `form:"first_name" json:"first_name" binding:"required"`
		LastName  string `form:"last_name" json:"last_name" binding:"required"`
		Email     string `form:"email" json:"email" binding:"required,email"`
		DOB       string `form:"dob" json:"dob" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	dob, err := time.Parse("2006-01-02", strings.TrimSpace(req.DOB))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "date of birth has to be specified as YYYY-MM-DD")
		return
	}

	avatar, err := formImage(ctx, "avatar")
	if err != nil {
		respondImageError(ctx, err)
		return
	}

	user, err := a.engine.UpdateUserInfo(ctx.Request.Context(), identityFrom(ctx), engine.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		DOB:       dob,
		Avatar:    avatar,
	})
	if err != nil {
		respondEngineError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"user": user})
}

// UpdatePassword changes the caller's password after re-verifying the old one.
func (a *AuthController) UpdatePassword(ctx *gin.Context) {
	var req struct {
		OldPassword     string `form:"old_password" json:"old_password" binding:"required"`
		Password        string `form:"password" json:"password" binding:"required"`
		PasswordConfirm string `form:"password_confirm" json:"password_confirm" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request payload")
		return
	}

	if err := a.engine.UpdatePassword(ctx.Request.Context(), identityFrom(ctx), req.OldPassword, req.Password, req.PasswordConfirm); err != nil {
		respondEngineError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"message": "the password was updated successfully"})
}

// DeleteAccount removes the caller's account and everything it owns. The
// current password must be supplied again.
func (a *AuthController) DeleteAccount(ctx *gin.Context) {
	var req struct {
		Password string `form:"password" json:"password" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid request payload")
		return
	}

	if err := a.engine.DeleteAccount(ctx.Request.Context(), identityFrom(ctx), req.Password); err != nil {
		if engine.CleanupFailed(err) {
			// the records are gone; drop every cached post view anyway
			utils.InvalidateByPrefix("cache:post")
		}
		respondEngineError(ctx, err)
		return
	}

	// authored posts are gone; drop every cached post view
	utils.InvalidateByPrefix("cache:post")

	utils.Success(ctx, gin.H{"message": "the user information was deleted successfully"})
}
