package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bikurim/procurement-backend/pkg/db/models"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
)

type Service interface {
	ListActive(ctx context.Context) ([]UserDTO, error)
	// EnsureExists fails with a validation error unless id is an active user.
	EnsureExists(ctx context.Context, id uuid.UUID) error
}

type userStore interface {
	ListActive(ctx context.Context) ([]models.User, error)
	IsActive(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo userStore
}

func NewService(repo userStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListActive(ctx context.Context) ([]UserDTO, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	out := make([]UserDTO, len(rows))
	for i, u := range rows {
		out[i] = toDTO(u)
	}
	return out, nil
}

func (s *service) EnsureExists(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.IsActive(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "user does not exist or is inactive").
			WithDetails(map[string]any{"user_id": id})
	}
	return nil
}
