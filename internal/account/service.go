package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/suPer8Hu/luna-backend/internal/models"
	"github.com/suPer8Hu/luna-backend/internal/optional"
	"gorm.io/gorm"
)

type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// ProfilePatch carries the fields of a profile update. Unset fields are left
// untouched; set fields overwrite, including with zero values.
type ProfilePatch struct {
	Name        optional.Field[string] `json:"name"`
	Age         optional.Field[int]    `json:"age"`
	Designation optional.Field[string] `json:"designation"`
	Email       optional.Field[string] `json:"email"`
}

type Service struct {
	repo   *Repo
	hasher Hasher
}

func NewService(repo *Repo, hasher Hasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

func (s *Service) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	return notFound(s.repo.GetByID(ctx, id))
}

func (s *Service) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return notFound(s.repo.GetByUsername(ctx, username))
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return notFound(s.repo.GetByEmail(ctx, email))
}

func (s *Service) Create(ctx context.Context, username, password, email string) (*models.User, error) {
	if err := s.ensureFree(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race with a concurrent signup; report which field collided
			if err := s.ensureFree(ctx, username, email); err != nil {
				return nil, err
			}
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

// Authenticate does not distinguish an unknown username from a wrong password.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	u, err := s.Authenticate(ctx, username, oldPassword)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.Update(ctx, u.ID, map[string]any{"password_hash": hash})
}

func (s *Service) UpdateProfile(ctx context.Context, username string, patch ProfilePatch) (*models.User, error) {
	u, err := s.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if v, ok := patch.Name.Get(); ok {
		fields["name"] = v
	}
	if v, ok := patch.Age.Get(); ok {
		fields["age"] = v
	}
	if v, ok := patch.Designation.Get(); ok {
		fields["designation"] = v
	}
	if v, ok := patch.Email.Get(); ok && v != u.Email {
		other, err := s.FindByEmail(ctx, v)
		switch {
		case err == nil && other.ID != u.ID:
			return nil, ErrEmailTaken
		case err != nil && !errors.Is(err, ErrNotFound):
			return nil, err
		}
		fields["email"] = v
	}
	if len(fields) == 0 {
		return u, nil
	}

	if err := s.repo.Update(ctx, u.ID, fields); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.FindByID(ctx, u.ID)
}

// RenameUsername returns ErrInvalidCredentials when the password check fails
// and ErrUsernameTaken when newUsername belongs to any account.
func (s *Service) RenameUsername(ctx context.Context, currentUsername, newUsername, password string) (*models.User, error) {
	u, err := s.Authenticate(ctx, currentUsername, password)
	if err != nil {
		return nil, err
	}

	if _, err := s.FindByUsername(ctx, newUsername); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if err := s.repo.Update(ctx, u.ID, map[string]any{"username": newUsername}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return s.FindByID(ctx, u.ID)
}

func (s *Service) ensureFree(ctx context.Context, username, email string) error {
	if _, err := s.FindByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if _, err := s.FindByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

func notFound(u *models.User, err error) (*models.User, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return u, err
}
