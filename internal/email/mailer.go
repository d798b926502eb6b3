package email

import (
	"context"
	"errors"

	"github.com/labstack/gommon/log"
	"gopkg.in/gomail.v2"
)

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	// Kind labels the message for metrics, e.g. "signin" or "password_reset".
	Kind string `json:"kind,omitempty"`
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

var ErrNoRecipient = errors.New("recipient email is missing")

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// SMTPMailer delivers mail directly over SMTP with STARTTLS when offered.
type SMTPMailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.cfg.From)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)
	return m.dialer.DialAndSend(gm)
}

// Publisher is the queue side of QueueMailer.
type Publisher interface {
	Publish(ctx context.Context, v any) error
}

// QueueMailer hands messages to a broker; cmd/mailer performs the delivery.
type QueueMailer struct {
	pub Publisher
}

func NewQueueMailer(pub Publisher) *QueueMailer {
	return &QueueMailer{pub: pub}
}

func (m *QueueMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	return m.pub.Publish(ctx, msg)
}

// LogMailer only logs; used when no transport is configured.
type LogMailer struct {
	log *log.Logger
}

func NewLogMailer(l *log.Logger) *LogMailer {
	return &LogMailer{log: l}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	m.log.Infof("email (not sent) to=%s subject=%q\n%s", msg.To, msg.Subject, msg.Body)
	return nil
}
