// Package access decides what a team member may see and change.
package access

import (
	"context"
	"errors"
	"fmt"

	"ascend/internal/model"

	"github.com/rs/zerolog"
)

// Client permissions.
const (
	PermView    = "view"
	PermEdit    = "edit"
	PermInvoice = "invoice"
	PermRevenue = "revenue"
)

// UserRepository looks up team members.
type UserRepository interface {
	Get(ctx context.Context, id string) (model.User, error)
}

// RoleRepository looks up role definitions.
type RoleRepository interface {
	Role(ctx context.Context, id string) (model.Role, error)
}

// Service implements access checks on top of the directory.
type Service struct {
	users  UserRepository
	roles  RoleRepository
	logger zerolog.Logger
}

// NewService creates a new access control service.
func NewService(users UserRepository, roles RoleRepository, logger zerolog.Logger) *Service {
	return &Service{
		users:  users,
		roles:  roles,
		logger: logger.With().Str("component", "access").Logger(),
	}
}

// HasClientAccess reports whether user holds permission on clientID.
// Owners hold every permission. Revenue is visible to owners, designers and
// editors with an access entry for the client.
func HasClientAccess(user *model.User, clientID, permission string) bool {
	if user == nil {
		return false
	}
	if user.IsOwner() {
		return true
	}
	a, ok := user.AccessFor(clientID)
	if !ok {
		return false
	}
	switch permission {
	case PermView:
		return a.CanView
	case PermEdit:
		return a.CanEdit
	case PermInvoice:
		return a.CanInvoice
	case PermRevenue:
		switch user.Role {
		case model.RoleOwner, "designer", "editor":
			return true
		}
	}
	return false
}

// HasPermission checks if the user's role enables permissionID.
func (s *Service) HasPermission(ctx context.Context, user model.User, permissionID string) (bool, error) {
	if user.IsOwner() {
		return true, nil
	}
	role, err := s.roles.Role(ctx, user.Role)
	if err != nil {
		return false, fmt.Errorf("looking up role %s: %w", user.Role, err)
	}
	return role.Allows(permissionID), nil
}

// Resolve returns the acting user, or an AccessDeniedError when unknown.
func (s *Service) Resolve(ctx context.Context, userID string) (model.User, error) {
	if userID == "" {
		return model.User{}, &AccessDeniedError{Reason: "no acting user"}
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		s.logger.Debug().Err(err).Str("user_id", userID).Msg("unknown acting user")
		return model.User{}, &AccessDeniedError{Reason: "unknown user"}
	}
	return u, nil
}

// RequireOwner allows only the owner account.
func (s *Service) RequireOwner(ctx context.Context, userID string) (model.User, error) {
	u, err := s.Resolve(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	if !u.IsOwner() {
		return model.User{}, &AccessDeniedError{Reason: "only the owner can do this"}
	}
	return u, nil
}

// RequirePermission allows users whose role enables permissionID.
func (s *Service) RequirePermission(ctx context.Context, userID, permissionID string) (model.User, error) {
	u, err := s.Resolve(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	ok, err := s.HasPermission(ctx, u, permissionID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("permission lookup failed")
		return model.User{}, &AccessDeniedError{Reason: fmt.Sprintf("missing permission %s", permissionID)}
	}
	if !ok {
		return model.User{}, &AccessDeniedError{Reason: fmt.Sprintf("missing permission %s", permissionID)}
	}
	return u, nil
}

// RequireClientAccess allows users holding permission on clientID.
func (s *Service) RequireClientAccess(ctx context.Context, userID, clientID, permission string) (model.User, error) {
	u, err := s.Resolve(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	if !HasClientAccess(&u, clientID, permission) {
		return model.User{}, &AccessDeniedError{Reason: fmt.Sprintf("no %s access to client %s", permission, clientID)}
	}
	return u, nil
}

// AccessDeniedError is returned when user access is denied.
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string {
	return e.Reason
}

// IsAccessDenied checks if err is, or wraps, an access denial.
func IsAccessDenied(err error) bool {
	var denied *AccessDeniedError
	return errors.As(err, &denied)
}
