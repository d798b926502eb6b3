package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/luna-backend/internal/account"
	"github.com/suPer8Hu/luna-backend/internal/auth"
	"github.com/suPer8Hu/luna-backend/internal/common"
	"github.com/suPer8Hu/luna-backend/internal/metrics"
	"github.com/suPer8Hu/luna-backend/internal/passwordreset"
)

type passwordResetRequestReq struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req passwordResetRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "a valid email is required")
		return
	}
	ctx := c.Request.Context()

	user, err := h.Accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			metrics.PasswordResetsTotal.WithLabelValues("request", "unknown_email").Inc()
			common.Fail(c, http.StatusNotFound, 40402, "Email not found.")
			return
		}
		h.internalError(c, "RequestPasswordReset", err)
		return
	}

	throttled := h.Cooldown != nil && h.Cfg.ResetRequestCooldown > 0
	if throttled {
		acquired, err := h.Cooldown.AcquireResetCooldown(ctx, user.Email, h.Cfg.ResetRequestCooldown)
		switch {
		case err != nil:
			// fail open: a broken cache must not block resets
			h.Log.Warnf("[RequestPasswordReset] request_id=%s cooldown check failed: %v", requestID(c), err)
			throttled = false
		case !acquired:
			metrics.PasswordResetsTotal.WithLabelValues("request", "throttled").Inc()
			common.Fail(c, http.StatusTooManyRequests, 42901, "A reset link was sent recently. Please wait before requesting another.")
			return
		}
	}

	token, err := h.Resets.Issue(ctx, user.ID)
	if err != nil {
		if throttled {
			_ = h.Cooldown.ReleaseResetCooldown(ctx, user.Email)
		}
		h.internalError(c, "RequestPasswordReset", err)
		return
	}
	metrics.PasswordResetsTotal.WithLabelValues("request", "ok").Inc()

	h.Notifier.PasswordReset(user.Email, user.Username, token)

	common.OK(c, gin.H{"message": "Password reset link sent to your email."})
}

type passwordResetReq struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req passwordResetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	err := h.Resets.Redeem(c.Request.Context(), req.Token, req.NewPassword)
	switch {
	case errors.Is(err, passwordreset.ErrInvalidToken):
		metrics.PasswordResetsTotal.WithLabelValues("redeem", "invalid_token").Inc()
		common.Fail(c, http.StatusBadRequest, 10020, "Invalid or expired token.")
		return
	case auth.IsTooLong(err):
		common.Fail(c, http.StatusBadRequest, 10005, "password too long")
		return
	case err != nil:
		h.internalError(c, "ResetPassword", err)
		return
	}
	metrics.PasswordResetsTotal.WithLabelValues("redeem", "ok").Inc()

	common.OK(c, gin.H{"message": "Password reset successfully."})
}
