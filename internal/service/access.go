package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vsbaha/ENASGame-new/internal/models"
	"github.com/vsbaha/ENASGame-new/internal/repository"
)

// AccessService resolves roles and gates every privileged operation. The
// super-admin allow-list comes from configuration, is applied idempotently on
// contact and overrides any persisted lesser role; all other role changes go
// through the explicit promotion operations below.
type AccessService interface {
	Resolve(ctx context.Context, tgID int64) (*models.User, error)
	Require(ctx context.Context, tgID int64, min models.UserRole) (*models.User, error)
	RegisterOrGreet(ctx context.Context, tgID int64, fullName string, username *string) (*models.User, bool, error)
	PromoteByUsername(ctx context.Context, actorTgID int64, username string) (*models.User, error)
	ToggleAdmin(ctx context.Context, actorTgID int64, targetID int64) (*models.User, error)
	ListAdmins(ctx context.Context, actorTgID int64) ([]models.User, error)
}

type accessService struct {
	users       repository.UsersRepository
	superAdmins map[int64]struct{}
}

func NewAccessService(users repository.UsersRepository, superAdminIDs []int64) AccessService {
	allow := make(map[int64]struct{}, len(superAdminIDs))
	for _, id := range superAdminIDs {
		allow[id] = struct{}{}
	}
	return &accessService{users: users, superAdmins: allow}
}

func (s *accessService) bootstrapped(tgID int64) bool {
	_, ok := s.superAdmins[tgID]
	return ok
}

func (s *accessService) Resolve(ctx context.Context, tgID int64) (*models.User, error) {
	user, err := s.users.GetByTelegramID(ctx, tgID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotRegistered
		}
		return nil, err
	}
	if s.bootstrapped(tgID) && user.Role != models.RoleSuperAdmin {
		if err := s.users.UpdateRole(ctx, user.ID, models.RoleSuperAdmin, nil); err != nil {
			return nil, err
		}
		user.Role = models.RoleSuperAdmin
	}
	return user, nil
}

func (s *accessService) Require(ctx context.Context, tgID int64, min models.UserRole) (*models.User, error) {
	user, err := s.Resolve(ctx, tgID)
	if err != nil {
		return nil, err
	}
	if !user.Role.AtLeast(min) {
		return nil, fmt.Errorf("role %s below %s: %w", user.Role, min, models.ErrForbidden)
	}
	return user, nil
}

func (s *accessService) RegisterOrGreet(ctx context.Context, tgID int64, fullName string, username *string) (*models.User, bool, error) {
	if existing, err := s.Resolve(ctx, tgID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, models.ErrNotRegistered) {
		return nil, false, err
	}

	role := models.RoleUser
	if s.bootstrapped(tgID) {
		role = models.RoleSuperAdmin
	}
	user := models.User{
		TelegramID: tgID,
		FullName:   fullName,
		Username:   username,
		Role:       role,
	}
	id, err := s.users.Create(ctx, user)
	if err != nil {
		// Lost a race with a concurrent first contact.
		if errors.Is(err, models.ErrConflict) {
			existing, rerr := s.Resolve(ctx, tgID)
			return existing, false, rerr
		}
		return nil, false, err
	}
	user.ID = id
	return &user, true, nil
}

func (s *accessService) PromoteByUsername(ctx context.Context, actorTgID int64, username string) (*models.User, error) {
	actor, err := s.Require(ctx, actorTgID, models.RoleSuperAdmin)
	if err != nil {
		return nil, err
	}
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, fmt.Errorf("username: %w", models.ErrValidation)
	}
	target, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target.Role == models.RoleSuperAdmin {
		return nil, fmt.Errorf("cannot change super admin: %w", models.ErrForbidden)
	}
	if err := s.users.UpdateRole(ctx, target.ID, models.RoleAdmin, &actor.ID); err != nil {
		return nil, err
	}
	target.Role = models.RoleAdmin
	target.AddedBy = &actor.ID
	return target, nil
}

func (s *accessService) ToggleAdmin(ctx context.Context, actorTgID int64, targetID int64) (*models.User, error) {
	actor, err := s.Require(ctx, actorTgID, models.RoleSuperAdmin)
	if err != nil {
		return nil, err
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == models.RoleSuperAdmin {
		return nil, fmt.Errorf("cannot change super admin: %w", models.ErrForbidden)
	}
	next := models.RoleAdmin
	if target.Role == models.RoleAdmin {
		next = models.RoleUser
	}
	if err := s.users.UpdateRole(ctx, target.ID, next, &actor.ID); err != nil {
		return nil, err
	}
	target.Role = next
	return target, nil
}

func (s *accessService) ListAdmins(ctx context.Context, actorTgID int64) ([]models.User, error) {
	if _, err := s.Require(ctx, actorTgID, models.RoleSuperAdmin); err != nil {
		return nil, err
	}
	return s.users.ListByRoles(ctx, models.RoleAdmin, models.RoleSuperAdmin)
}
