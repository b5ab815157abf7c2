package service

import (
	"context"
	"errors"

	"github.com/Skotchmaster/storefront/internal/apperr"
	"github.com/Skotchmaster/storefront/internal/authz"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type UserService struct {
	Repo   repo.Users
	Policy authz.Policy
	Events events.Publisher
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

// Delete removes the user with id on behalf of actor. Admin accounts are never removed.
func (s *UserService) Delete(ctx context.Context, actor *models.User, id string) error {
	l := logging.FromContext(ctx).With("svc", "user.delete", "target_id", id)

	target, err := s.Repo.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("user_delete_error", "status", 404, "reason", "user not found")
			return apperr.NotFound("User not found")
		}
		return err
	}
	if err := s.Policy.CanDeleteUser(actor, target); err != nil {
		l.Warn("user_delete_error", "status", apperr.Status(err), "reason", apperr.Detail(err))
		return err
	}
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return err
	}

	events.Emit(ctx, s.Events, events.TopicUsers, events.NewEvent(events.UserDeleted, id, nil))
	l.Info("user_delete_success")
	return nil
}
