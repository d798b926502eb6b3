package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/suPer8Hu/luna-backend/internal/account"
	"github.com/suPer8Hu/luna-backend/internal/auth"
	"github.com/suPer8Hu/luna-backend/internal/common"
	"github.com/suPer8Hu/luna-backend/internal/metrics"
)

type createUserReq struct {
	UserName string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "user_name, password and a valid email required")
		return
	}

	user, err := h.Accounts.Create(c.Request.Context(), req.UserName, req.Password, req.Email)
	switch {
	case errors.Is(err, account.ErrUsernameTaken):
		common.Fail(c, http.StatusBadRequest, 10003, "Username already exists.")
		return
	case errors.Is(err, account.ErrEmailTaken):
		common.Fail(c, http.StatusBadRequest, 10004, "Email already exists.")
		return
	case auth.IsTooLong(err):
		common.Fail(c, http.StatusBadRequest, 10005, "password too long")
		return
	case err != nil:
		h.internalError(c, "CreateUser", err)
		return
	}

	h.Log.Infof("[CreateUser] request_id=%s user_id=%d", requestID(c), user.ID)
	common.OK(c, userOut(user))
}

type signInReq struct {
	UserName string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) SignIn(c *gin.Context) {
	var req signInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	user, err := h.Accounts.Authenticate(c.Request.Context(), req.UserName, req.Password)
	if err != nil {
		metrics.SignInsTotal.WithLabelValues("rejected").Inc()
		if errors.Is(err, account.ErrInvalidCredentials) {
			common.Fail(c, http.StatusBadRequest, 10010, "Invalid username or password.")
			return
		}
		h.internalError(c, "SignIn", err)
		return
	}

	token, err := auth.SignJWT(user.ID, h.Cfg.JWTSecret, h.Cfg.JWTTTL)
	if err != nil {
		h.internalError(c, "SignIn", err)
		return
	}
	metrics.SignInsTotal.WithLabelValues("ok").Inc()

	h.Notifier.SignIn(user.Email, user.Username, time.Now())

	common.OK(c, gin.H{
		"message": "Sign in successful",
		"token":   token,
		"user":    userOut(user),
	})
}

type changePasswordReq struct {
	UserName    string `json:"user_name" binding:"required"`
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	err := h.Accounts.ChangePassword(c.Request.Context(), req.UserName, req.OldPassword, req.NewPassword)
	switch {
	case errors.Is(err, account.ErrInvalidCredentials):
		common.Fail(c, http.StatusBadRequest, 10010, "Old password is incorrect or user not found.")
		return
	case auth.IsTooLong(err):
		common.Fail(c, http.StatusBadRequest, 10005, "password too long")
		return
	case err != nil:
		h.internalError(c, "ChangePassword", err)
		return
	}

	common.OK(c, gin.H{"message": "Password changed successfully"})
}

type updateProfileReq struct {
	UserName string `json:"user_name" binding:"required"`
	account.ProfilePatch
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if v, ok := req.Email.Get(); ok && !validEmail(v) {
		common.Fail(c, http.StatusBadRequest, 10002, "invalid email")
		return
	}

	user, err := h.Accounts.UpdateProfile(c.Request.Context(), req.UserName, req.ProfilePatch)
	switch {
	case errors.Is(err, account.ErrNotFound):
		common.Fail(c, http.StatusNotFound, 40401, "User not found.")
		return
	case errors.Is(err, account.ErrEmailTaken):
		common.Fail(c, http.StatusBadRequest, 10004, "Email already exists.")
		return
	case err != nil:
		h.internalError(c, "UpdateProfile", err)
		return
	}

	common.OK(c, userOut(user))
}

type updateUsernameReq struct {
	CurrentUserName string `json:"current_user_name" binding:"required"`
	NewUserName     string `json:"new_user_name" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

func (h *Handler) UpdateUsername(c *gin.Context) {
	var req updateUsernameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	user, err := h.Accounts.RenameUsername(c.Request.Context(), req.CurrentUserName, req.NewUserName, req.Password)
	switch {
	case errors.Is(err, account.ErrInvalidCredentials):
		common.Fail(c, http.StatusBadRequest, 10010, "Invalid username or password.")
		return
	case errors.Is(err, account.ErrUsernameTaken):
		common.Fail(c, http.StatusBadRequest, 10011, "New username already exists.")
		return
	case err != nil:
		h.internalError(c, "UpdateUsername", err)
		return
	}

	common.OK(c, userOut(user))
}

func (h *Handler) Me(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	user, err := h.Accounts.FindByID(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "User not found.")
			return
		}
		h.internalError(c, "Me", err)
		return
	}
	common.OK(c, userOut(user))
}

func validEmail(v string) bool {
	if v == "" {
		return false
	}
	if validate, ok := binding.Validator.Engine().(*validator.Validate); ok {
		return validate.Var(v, "email") == nil
	}
	return true
}
