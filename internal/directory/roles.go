package directory

import (
	"context"
	"strings"

	"ascend/internal/model"
	"ascend/internal/storage"
)

func (s *Service) Roles(ctx context.Context) ([]model.Role, error) {
	return storage.LoadList[model.Role](ctx, s.slots, RolesKey)
}

// Role returns the role with id.
func (s *Service) Role(ctx context.Context, id string) (model.Role, error) {
	roles, err := s.Roles(ctx)
	if err != nil {
		return model.Role{}, err
	}
	for _, r := range roles {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Role{}, ErrRoleNotFound
}

// SaveRole creates or replaces a role by id.
func (s *Service) SaveRole(ctx context.Context, role model.Role) (model.Role, error) {
	role.ID = strings.TrimSpace(role.ID)
	if role.ID == "" {
		return model.Role{}, model.Invalid("id", "role id is required")
	}
	if role.Name == "" {
		role.Name = role.ID
	}
	if role.Permissions == nil {
		role.Permissions = []model.Permission{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	roles, err := s.Roles(ctx)
	if err != nil {
		return model.Role{}, err
	}
	roles = mergeByID(roles, []model.Role{role}, func(r model.Role) string { return r.ID })
	if err := s.slots.Save(ctx, RolesKey, roles); err != nil {
		return model.Role{}, err
	}
	return role, nil
}

// DeleteRole removes a role. The owner role is refused.
func (s *Service) DeleteRole(ctx context.Context, id string) error {
	if id == model.RoleOwner {
		return ErrOwnerRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	roles, err := s.Roles(ctx)
	if err != nil {
		return err
	}
	for i, r := range roles {
		if r.ID == id {
			roles = append(roles[:i], roles[i+1:]...)
			return s.slots.Save(ctx, RolesKey, roles)
		}
	}
	return ErrRoleNotFound
}

// Clients returns every client account.
func (s *Service) Clients(ctx context.Context) ([]model.Client, error) {
	return storage.LoadList[model.Client](ctx, s.slots, ClientsKey)
}

// Client returns the client with id, if any.
func (s *Service) Client(ctx context.Context, id string) (model.Client, bool, error) {
	clients, err := s.Clients(ctx)
	if err != nil {
		return model.Client{}, false, err
	}
	for _, c := range clients {
		if c.ID == id {
			return c, true, nil
		}
	}
	return model.Client{}, false, nil
}
