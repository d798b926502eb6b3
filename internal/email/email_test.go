package email

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanMailer struct {
	sent chan Message
	err  error
}

func (m *chanMailer) Send(_ context.Context, msg Message) error {
	m.sent <- msg
	return m.err
}

type recordingPublisher struct {
	got []any
}

func (p *recordingPublisher) Publish(_ context.Context, v any) error {
	p.got = append(p.got, v)
	return nil
}

func quietLogger() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

func receive(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for email")
		return Message{}
	}
}

func TestNotifier_PasswordReset(t *testing.T) {
	m := &chanMailer{sent: make(chan Message, 1)}
	n := NewNotifier(m, quietLogger(), "Luna", "http://localhost:5173", time.Hour)

	n.PasswordReset("a@example.com", "alice", "tok-123")

	msg := receive(t, m.sent)
	assert.Equal(t, "a@example.com", msg.To)
	assert.Equal(t, "Password Reset Request", msg.Subject)
	assert.Contains(t, msg.Body, "http://localhost:5173/reset-password?token=tok-123")
	assert.Contains(t, msg.Body, "valid for 1 hour")
	assert.Contains(t, msg.Body, "Dear alice")
}

func TestNotifier_SignInFailureIsSwallowed(t *testing.T) {
	m := &chanMailer{sent: make(chan Message, 1), err: errors.New("smtp down")}
	n := NewNotifier(m, quietLogger(), "Luna", "http://x", time.Hour)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	n.SignIn("a@example.com", "alice", at)

	msg := receive(t, m.sent)
	assert.Equal(t, "Sign-In Notification", msg.Subject)
	assert.Contains(t, msg.Body, "2026-01-02 03:04:05 UTC")
}

func TestQueueMailer(t *testing.T) {
	pub := &recordingPublisher{}
	m := NewQueueMailer(pub)

	require.NoError(t, m.Send(context.Background(), Message{To: "a@example.com", Subject: "s"}))
	assert.ErrorIs(t, m.Send(context.Background(), Message{}), ErrNoRecipient)
	require.Len(t, pub.got, 1)
	assert.Equal(t, "a@example.com", pub.got[0].(Message).To)
}

func TestLogMailer(t *testing.T) {
	var sb strings.Builder
	l := log.New("test")
	l.SetOutput(&sb)
	m := NewLogMailer(l)

	require.NoError(t, m.Send(context.Background(), Message{To: "a@example.com", Subject: "hello"}))
	assert.Contains(t, sb.String(), "a@example.com")
	assert.ErrorIs(t, m.Send(context.Background(), Message{}), ErrNoRecipient)
}

func TestSMTPMailer_RequiresRecipient(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: 1})
	assert.ErrorIs(t, m.Send(context.Background(), Message{}), ErrNoRecipient)
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "1 hour", humanDuration(time.Hour))
	assert.Equal(t, "2 hours", humanDuration(2*time.Hour))
	assert.Equal(t, "30 minutes", humanDuration(30*time.Minute))
}
