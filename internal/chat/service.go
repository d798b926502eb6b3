package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/suPer8Hu/luna-backend/internal/ai"
)

// ErrInference wraps any failure of the remote model call.
var ErrInference = errors.New("inference failed")

type Persona struct {
	Name     string
	Birthday string
}

type Options struct {
	Provider          string
	Model             string
	ContextWindowSize int
	Persona           Persona
}

// Turn is the outcome of one chat message.
type Turn struct {
	Reply  string
	Canned bool
}

type Service struct {
	repo              *Repo
	registry          *ai.Registry
	provider          string
	model             string
	contextWindowSize int
	canned            map[string]string
}

func NewService(repo *Repo, registry *ai.Registry, opts Options) *Service {
	if opts.ContextWindowSize <= 0 || opts.ContextWindowSize > 100 {
		opts.ContextWindowSize = DefaultWindow
	}
	if opts.Persona.Name == "" {
		opts.Persona.Name = "Luna"
	}
	if opts.Persona.Birthday == "" {
		opts.Persona.Birthday = "18th June 2025"
	}
	return &Service{
		repo:              repo,
		registry:          registry,
		provider:          opts.Provider,
		model:             opts.Model,
		contextWindowSize: opts.ContextWindowSize,
		canned:            cannedReplies(opts.Persona),
	}
}

func cannedReplies(p Persona) map[string]string {
	name := "My name is " + p.Name
	return map[string]string{
		"what is your name":      name,
		"what's your name":       name,
		"who are you":            name,
		"when was your birthday": p.Birthday,
		"your date of birth":     p.Birthday,
		"your dob":               p.Birthday,
	}
}

func normalizeInput(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// cleanReply collapses every run of whitespace, newlines included, to one space.
func cleanReply(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SendMessage answers content and then records the user message and the
// reply. Nothing is recorded when no reply could be produced.
func (s *Service) SendMessage(ctx context.Context, content string) (Turn, error) {
	turn, err := s.reply(ctx, content)
	if err != nil {
		return Turn{}, err
	}
	if err := s.repo.AppendTurn(ctx, content, turn.Reply); err != nil {
		return Turn{}, fmt.Errorf("store turn: %w", err)
	}
	return turn, nil
}

func (s *Service) reply(ctx context.Context, content string) (Turn, error) {
	if r, ok := s.canned[normalizeInput(content)]; ok {
		return Turn{Reply: r, Canned: true}, nil
	}

	window, err := s.repo.RecentWindow(ctx, s.contextWindowSize)
	if err != nil {
		return Turn{}, fmt.Errorf("load history: %w", err)
	}

	providerMsgs := make([]ai.Message, 0, len(window)+1)
	for _, e := range window {
		providerMsgs = append(providerMsgs, ai.Message{Role: string(e.Role), Content: e.Content})
	}
	providerMsgs = append(providerMsgs, ai.Message{Role: string(RoleUser), Content: content})

	provider, err := s.registry.Get(ctx, s.provider, s.model)
	if err != nil {
		return Turn{}, fmt.Errorf("%w: %v", ErrInference, err)
	}
	out, err := provider.Chat(ctx, providerMsgs)
	if err != nil {
		return Turn{}, fmt.Errorf("%w: %v", ErrInference, err)
	}
	return Turn{Reply: cleanReply(out)}, nil
}

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// History returns up to limit of the newest history entries, oldest first.
// A non-positive limit selects 50; larger limits are clamped to 100.
func (s *Service) History(ctx context.Context, limit int) ([]Entry, error) {
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	return s.repo.RecentWindow(ctx, limit)
}
