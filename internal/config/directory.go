package config

import (
	"fmt"
	"os"
	"strings"

	"ascend/internal/model"

	"gopkg.in/yaml.v3"
)

// DirectoryConfig is the root of directory.yaml: the seed team, roles and
// client accounts.
type DirectoryConfig struct {
	Users   []model.User   `yaml:"users"`
	Roles   []model.Role   `yaml:"roles"`
	Clients []model.Client `yaml:"clients"`
}

// LoadDirectoryConfig loads and validates the directory seed from YAML.
func LoadDirectoryConfig(path string) (*DirectoryConfig, error) {
	if path == "" {
		path = "configs/directory.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read directory config: %w", err)
	}

	var cfg DirectoryConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse directory config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate directory config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the seed for errors.
func (c *DirectoryConfig) Validate() error {
	ids := make(map[string]bool)
	emails := make(map[string]bool)
	hasOwner := false

	for i, u := range c.Users {
		if u.ID == "" {
			return fmt.Errorf("users[%d]: id is required", i)
		}
		if ids[u.ID] {
			return fmt.Errorf("users[%d]: duplicate id '%s'", i, u.ID)
		}
		ids[u.ID] = true

		if u.Name == "" {
			return fmt.Errorf("users[%d]: name is required", i)
		}
		email := strings.ToLower(u.Email)
		if email == "" {
			return fmt.Errorf("users[%d]: email is required", i)
		}
		if emails[email] {
			return fmt.Errorf("users[%d]: duplicate email '%s'", i, u.Email)
		}
		emails[email] = true

		if u.Role == model.RoleOwner {
			hasOwner = true
		}
	}
	if len(c.Users) > 0 && !hasOwner {
		return fmt.Errorf("users: at least one user must have role '%s'", model.RoleOwner)
	}

	roleIDs := make(map[string]bool)
	for i, r := range c.Roles {
		if r.ID == "" {
			return fmt.Errorf("roles[%d]: id is required", i)
		}
		if roleIDs[r.ID] {
			return fmt.Errorf("roles[%d]: duplicate id '%s'", i, r.ID)
		}
		roleIDs[r.ID] = true
	}

	clientIDs := make(map[string]bool)
	for i, cl := range c.Clients {
		if cl.ID == "" {
			return fmt.Errorf("clients[%d]: id is required", i)
		}
		if clientIDs[cl.ID] {
			return fmt.Errorf("clients[%d]: duplicate id '%s'", i, cl.ID)
		}
		clientIDs[cl.ID] = true
	}

	return nil
}
