// Package directory owns the team roster, role definitions and client
// accounts. It is constructed once at startup and always reads the slots
// fresh.
package directory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"ascend/internal/config"
	"ascend/internal/model"
	"ascend/internal/storage"

	"github.com/rs/zerolog"
)

const (
	UsersKey   = "users"
	RolesKey   = "roles"
	ClientsKey = "clients"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrOwnerDelete  = errors.New("the owner account cannot be deleted")
	ErrSelfDelete   = errors.New("you cannot delete your own account")
	ErrRoleNotFound = errors.New("role not found")
	ErrOwnerRole    = errors.New("the owner role cannot be deleted")
)

type Service struct {
	slots  *storage.Slots
	logger zerolog.Logger
	mu     sync.Mutex
}

func NewService(slots *storage.Slots, logger *zerolog.Logger) *Service {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "directory").Logger()
	}
	return &Service{slots: slots, logger: l}
}

// Seed stores the seed users, roles and clients for every slot that is
// missing, empty or unreadable. Stored data is never overwritten.
func (s *Service) Seed(ctx context.Context, seed *config.DirectoryConfig) error {
	if seed == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := seedList(ctx, s, UsersKey, seed.Users); err != nil {
		return err
	}
	if err := seedList(ctx, s, RolesKey, seed.Roles); err != nil {
		return err
	}
	return seedList(ctx, s, ClientsKey, seed.Clients)
}

func seedList[T any](ctx context.Context, s *Service, key string, seed []T) error {
	if len(seed) == 0 {
		return nil
	}
	current, err := storage.LoadList[T](ctx, s.slots, key)
	if err != nil {
		return err
	}
	if len(current) > 0 {
		return nil
	}
	s.logger.Info().Str("slot", key).Int("count", len(seed)).Msg("seeding directory")
	return s.slots.Save(ctx, key, seed)
}

// Reload merges roles and clients from a changed seed file. Entries in the
// file replace stored entries with the same id; others are kept.
func (s *Service) Reload(ctx context.Context, seed *config.DirectoryConfig) error {
	if seed == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	roles, err := storage.LoadList[model.Role](ctx, s.slots, RolesKey)
	if err != nil {
		return err
	}
	roles = mergeByID(roles, seed.Roles, func(r model.Role) string { return r.ID })
	if err := s.slots.Save(ctx, RolesKey, roles); err != nil {
		return err
	}

	clients, err := storage.LoadList[model.Client](ctx, s.slots, ClientsKey)
	if err != nil {
		return err
	}
	clients = mergeByID(clients, seed.Clients, func(c model.Client) string { return c.ID })
	if err := s.slots.Save(ctx, ClientsKey, clients); err != nil {
		return err
	}

	s.logger.Info().Int("roles", len(roles)).Int("clients", len(clients)).Msg("directory reloaded")
	return nil
}

func mergeByID[T any](current, incoming []T, id func(T) string) []T {
	pos := make(map[string]int, len(current))
	for i, c := range current {
		pos[id(c)] = i
	}
	for _, in := range incoming {
		if i, ok := pos[id(in)]; ok {
			current[i] = in
			continue
		}
		pos[id(in)] = len(current)
		current = append(current, in)
	}
	return current
}

// List returns every user.
func (s *Service) List(ctx context.Context) ([]model.User, error) {
	return storage.LoadList[model.User](ctx, s.slots, UsersKey)
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, id string) (model.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return model.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

// Create adds a user with a generated id. Emails are unique ignoring case.
func (s *Service) Create(ctx context.Context, in model.User) (model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Role = strings.TrimSpace(in.Role)
	if in.Name == "" {
		return model.User{}, model.Invalid("name", "name is required")
	}
	if in.Email == "" {
		return model.User{}, model.Invalid("email", "email is required")
	}
	if in.Role == "" {
		return model.User{}, model.Invalid("role", "role is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.List(ctx)
	if err != nil {
		return model.User{}, err
	}
	if emailTaken(users, in.Email, "") {
		return model.User{}, model.Invalid("email", "a user with this email already exists")
	}

	in.ID = storage.NewID()
	if in.ClientAccess == nil {
		in.ClientAccess = []model.ClientAccess{}
	}
	users = append(users, in)
	if err := s.slots.Save(ctx, UsersKey, users); err != nil {
		return model.User{}, err
	}
	s.logger.Info().Str("user_id", in.ID).Str("role", in.Role).Msg("user created")
	return in, nil
}

// UserPatch holds optional replacements. SocialMedia is merged field by
// field; empty fields keep the stored value.
type UserPatch struct {
	Name         *string                 `json:"name"`
	Email        *string                 `json:"email"`
	Role         *string                 `json:"role"`
	Avatar       *string                 `json:"avatar"`
	Bio          *string                 `json:"bio"`
	ClientAccess *[]model.ClientAccess   `json:"client_access"`
	SocialMedia  *model.SocialMediaLinks `json:"social_media"`
}

// Update applies patch to user id.
func (s *Service) Update(ctx context.Context, id string, patch UserPatch) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.List(ctx)
	if err != nil {
		return model.User{}, err
	}
	idx := -1
	for i := range users {
		if users[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.User{}, ErrNotFound
	}

	u := users[idx]
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return model.User{}, model.Invalid("name", "name is required")
		}
		u.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if email == "" {
			return model.User{}, model.Invalid("email", "email is required")
		}
		if emailTaken(users, email, id) {
			return model.User{}, model.Invalid("email", "a user with this email already exists")
		}
		u.Email = email
	}
	if patch.Role != nil {
		if strings.TrimSpace(*patch.Role) == "" {
			return model.User{}, model.Invalid("role", "role is required")
		}
		u.Role = strings.TrimSpace(*patch.Role)
	}
	if patch.Avatar != nil {
		u.Avatar = *patch.Avatar
	}
	if patch.Bio != nil {
		u.Bio = *patch.Bio
	}
	if patch.ClientAccess != nil {
		u.ClientAccess = append([]model.ClientAccess{}, (*patch.ClientAccess)...)
	}
	if patch.SocialMedia != nil {
		u.SocialMedia = mergeSocial(u.SocialMedia, *patch.SocialMedia)
	}

	users[idx] = u
	if err := s.slots.Save(ctx, UsersKey, users); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func mergeSocial(current *model.SocialMediaLinks, patch model.SocialMediaLinks) *model.SocialMediaLinks {
	out := model.SocialMediaLinks{}
	if current != nil {
		out = *current
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&out.Facebook, patch.Facebook)
	set(&out.Twitter, patch.Twitter)
	set(&out.LinkedIn, patch.LinkedIn)
	set(&out.Instagram, patch.Instagram)
	set(&out.YouTube, patch.YouTube)
	if patch.CustomLinks != nil {
		out.CustomLinks = append([]model.CustomLink{}, patch.CustomLinks...)
	}
	return &out
}

// Delete removes user id on behalf of actorID. The owner account and the
// actor's own account are refused.
func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.List(ctx)
	if err != nil {
		return err
	}
	for i, u := range users {
		if u.ID != id {
			continue
		}
		if u.IsOwner() {
			return ErrOwnerDelete
		}
		if id == actorID {
			return ErrSelfDelete
		}
		users = append(users[:i], users[i+1:]...)
		if err := s.slots.Save(ctx, UsersKey, users); err != nil {
			return err
		}
		s.logger.Info().Str("user_id", id).Str("by", actorID).Msg("user deleted")
		return nil
	}
	return ErrNotFound
}

// MembersForClient returns users with an access entry for clientID that
// allows viewing.
func (s *Service) MembersForClient(ctx context.Context, clientID string) ([]model.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []model.User{}
	for _, u := range users {
		if a, ok := u.AccessFor(clientID); ok && a.CanView {
			out = append(out, u)
		}
	}
	return out, nil
}

func emailTaken(users []model.User, email, exceptID string) bool {
	for _, u := range users {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}
