package model

const RoleOwner = "owner"

// ClientAccess grants a user rights on one client account.
type ClientAccess struct {
	ClientID   string `json:"client_id" yaml:"client_id"`
	CanView    bool   `json:"can_view" yaml:"can_view"`
	CanEdit    bool   `json:"can_edit" yaml:"can_edit"`
	CanInvoice bool   `json:"can_invoice" yaml:"can_invoice"`
}

type CustomLink struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

type SocialMediaLinks struct {
	Facebook    string       `json:"facebook,omitempty" yaml:"facebook,omitempty"`
	Twitter     string       `json:"twitter,omitempty" yaml:"twitter,omitempty"`
	LinkedIn    string       `json:"linkedin,omitempty" yaml:"linkedin,omitempty"`
	Instagram   string       `json:"instagram,omitempty" yaml:"instagram,omitempty"`
	YouTube     string       `json:"youtube,omitempty" yaml:"youtube,omitempty"`
	CustomLinks []CustomLink `json:"custom_links,omitempty" yaml:"custom_links,omitempty"`
}

type User struct {
	ID           string            `json:"id" yaml:"id"`
	Name         string            `json:"name" yaml:"name"`
	Email        string            `json:"email" yaml:"email"`
	Role         string            `json:"role" yaml:"role"`
	Avatar       string            `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Bio          string            `json:"bio,omitempty" yaml:"bio,omitempty"`
	ClientAccess []ClientAccess    `json:"client_access" yaml:"client_access"`
	SocialMedia  *SocialMediaLinks `json:"social_media,omitempty" yaml:"social_media,omitempty"`
}

func (u *User) IsOwner() bool {
	return u != nil && u.Role == RoleOwner
}

// AccessFor returns the access entry for a client, if any.
func (u *User) AccessFor(clientID string) (ClientAccess, bool) {
	for _, a := range u.ClientAccess {
		if a.ClientID == clientID {
			return a, true
		}
	}
	return ClientAccess{}, false
}

type Permission struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

type Role struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Permissions []Permission `json:"permissions" yaml:"permissions"`
}

// Allows reports whether the role carries an enabled permission.
func (r *Role) Allows(permissionID string) bool {
	for _, p := range r.Permissions {
		if p.ID == permissionID {
			return p.Enabled
		}
	}
	return false
}

type Client struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}
