package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/labstack/gommon/log"
	"github.com/suPer8Hu/luna-backend/internal/account"
	"github.com/suPer8Hu/luna-backend/internal/ai"
	"github.com/suPer8Hu/luna-backend/internal/auth"
	"github.com/suPer8Hu/luna-backend/internal/chat"
	"github.com/suPer8Hu/luna-backend/internal/common"
	"github.com/suPer8Hu/luna-backend/internal/config"
	"github.com/suPer8Hu/luna-backend/internal/email"
	"github.com/suPer8Hu/luna-backend/internal/httpapi/middleware"
	"github.com/suPer8Hu/luna-backend/internal/models"
	"github.com/suPer8Hu/luna-backend/internal/passwordreset"
	"gorm.io/gorm"
)

// Notifier sends account emails without blocking the request.
type Notifier interface {
	SignIn(to, username string, at time.Time)
	PasswordReset(to, username, token string)
}

// ResetCooldown throttles reset requests per email.
type ResetCooldown interface {
	AcquireResetCooldown(ctx context.Context, email string, ttl time.Duration) (bool, error)
	ReleaseResetCooldown(ctx context.Context, email string) error
}

type Handler struct {
	Cfg      config.Config
	Log      *log.Logger
	Accounts *account.Service
	Resets   *passwordreset.Ledger
	ChatSvc  *chat.Service
	Notifier Notifier
	// nil disables the reset-request cooldown
	Cooldown ResetCooldown
}

func NewHandler(db *gorm.DB, cfg config.Config, l *log.Logger, reg *ai.Registry, mailer email.Mailer, cooldown ResetCooldown) *Handler {
	passwords := auth.NewPasswords(cfg.BcryptCost)

	chatSvc := chat.NewService(chat.NewRepo(db), reg, chat.Options{
		Provider:          cfg.AIProvider,
		ContextWindowSize: cfg.ChatContextWindowSize,
		Persona: chat.Persona{
			Name:     cfg.AssistantName,
			Birthday: cfg.AssistantBirthday,
		},
	})

	resets := passwordreset.NewLedger(db, passwords, cfg.ResetTokenTTL)

	return &Handler{
		Cfg:      cfg,
		Log:      l,
		Accounts: account.NewService(account.NewRepo(db), passwords),
		Resets:   resets,
		ChatSvc:  chatSvc,
		// the email states the validity the ledger actually enforces
		Notifier: email.NewNotifier(mailer, l, cfg.AssistantName, cfg.FrontendBaseURL, resets.TTL()),
		Cooldown: cooldown,
	}
}

// AllModels lists the tables the handlers need migrated.
func AllModels() []any {
	return []any{&models.User{}, &models.PasswordResetToken{}, &chat.Message{}}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

func requestID(c *gin.Context) string {
	return c.GetString(middleware.RequestIDKey)
}

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

func userOut(u *models.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"user_name":   u.Username,
		"email":       u.Email,
		"name":        u.Name,
		"age":         u.Age,
		"designation": u.Designation,
	}
}

func (h *Handler) internalError(c *gin.Context, op string, err error) {
	h.Log.Errorf("[%s] request_id=%s err=%v", op, requestID(c), err)
	common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
}
