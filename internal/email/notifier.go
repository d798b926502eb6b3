package email

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/suPer8Hu/luna-backend/internal/metrics"
)

const sendTimeout = 30 * time.Second

// Notifier composes account emails and sends them in the background. Send
// failures are logged and never reach the caller.
type Notifier struct {
	mailer      Mailer
	log         *log.Logger
	appName     string
	frontendURL string
	resetTTL    time.Duration
}

func NewNotifier(mailer Mailer, l *log.Logger, appName, frontendURL string, resetTTL time.Duration) *Notifier {
	return &Notifier{
		mailer:      mailer,
		log:         l,
		appName:     appName,
		frontendURL: frontendURL,
		resetTTL:    resetTTL,
	}
}

func (n *Notifier) SignIn(to, username string, at time.Time) {
	body := fmt.Sprintf("Dear %s,\n\n"+
		"You have successfully signed in to %s Chatbot at %s UTC.\n\n"+
		"If this was not you, please secure your account immediately.\n\n"+
		"Best regards,\n%s Team",
		username, n.appName, at.UTC().Format("2006-01-02 15:04:05"), n.appName)
	n.dispatch(Message{To: to, Subject: "Sign-In Notification", Body: body, Kind: "signin"})
}

func (n *Notifier) PasswordReset(to, username, token string) {
	body := fmt.Sprintf("Dear %s,\n\n"+
		"You requested a password reset. Click the link below to reset your password:\n"+
		"%s\n\n"+
		"This link is valid for %s.\n\n"+
		"Best regards,\n%s Team",
		username, n.ResetLink(token), humanDuration(n.resetTTL), n.appName)
	n.dispatch(Message{To: to, Subject: "Password Reset Request", Body: body, Kind: "password_reset"})
}

func (n *Notifier) ResetLink(token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", n.frontendURL, token)
}

func (n *Notifier) dispatch(msg Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		err := n.mailer.Send(ctx, msg)
		metrics.EmailsTotal.WithLabelValues(msg.Kind, metrics.Result(err)).Inc()
		if err != nil {
			n.log.Errorf("failed to send %s email to %s: %v", msg.Kind, msg.To, err)
			return
		}
		n.log.Debugf("%s email sent to %s", msg.Kind, msg.To)
	}()
}

func humanDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
