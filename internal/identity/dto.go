package identity

import (
	"strings"
	"time"

	"github.com/ctrlfund/ctrlfund/internal"
	"github.com/ctrlfund/ctrlfund/internal/permission"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	if d.Email == "" {
		return internal.NewValidationFieldError("email", "email is required", internal.ErrCodeValidationFailed)
	}
	if d.Password == "" {
		return internal.NewValidationFieldError("password", "password is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// SignupDTO accepts self-service registrations. The requested role is
// an application-facing alias, not the stored role.
type SignupDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

const (
	SignupRoleAdmin          = "admin"
	SignupRoleDepartmentUser = "department-user"
)

func (d SignupDTO) Validate() error {
	if d.Email == "" || !strings.Contains(d.Email, "@") {
		return internal.NewValidationFieldError("email", "a valid email is required", internal.ErrCodeValidationFailed)
	}
	if len(d.Password) < 8 {
		return internal.NewValidationFieldError("password", "password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if d.Role != SignupRoleAdmin && d.Role != SignupRoleDepartmentUser {
		return internal.NewValidationFieldError("role", "role must be admin or department-user", internal.ErrCodeValidationFailed)
	}
	return nil
}

// StoredRole maps the signup alias onto the stored role.
func (d SignupDTO) StoredRole() permission.Role {
	if d.Role == SignupRoleAdmin {
		return permission.RoleAdmin
	}
	return permission.RoleMember
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (d RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return internal.NewValidationFieldError("refresh_token", "refresh_token is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type SetActiveDTO struct {
	IsActive bool `json:"is_active"`
}

type SetRoleDTO struct {
	Role permission.Role `json:"role"`
}

func (d SetRoleDTO) Validate() error {
	if !d.Role.Valid() {
		return internal.NewValidationFieldError("role", "role must be admin, member or viewer", internal.ErrCodeValidationFailed)
	}
	return nil
}

type SetOverridesDTO struct {
	EditTransactions *bool `json:"canEditTransactions"`
	UploadReceipts   *bool `json:"canUploadReceipts"`
	EditNotes        *bool `json:"canEditNotes"`
}

func (d SetOverridesDTO) Overrides() permission.Overrides {
	return permission.Overrides{
		EditTransactions: d.EditTransactions,
		UploadReceipts:   d.UploadReceipts,
		EditNotes:        d.EditNotes,
	}
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserResponse is the identity as serialized to clients: no credential
// material, permissions resolved at read time.
type UserResponse struct {
	ID             string            `json:"id"`
	Email          string            `json:"email"`
	Name           string            `json:"name"`
	Role           permission.Role   `json:"role"`
	IsActive       bool              `json:"is_active"`
	IsProtected    bool              `json:"is_protected"`
	Permissions    permission.Set    `json:"permissions"`
	AvailableRoles []permission.Role `json:"available_roles"`
	CreatedAt      time.Time         `json:"created_at"`
	LastLoginAt    *time.Time        `json:"last_login_at,omitempty"`
}

func toUserResponse(i *Identity) UserResponse {
	return UserResponse{
		ID:             i.ID,
		Email:          i.Email,
		Name:           i.Name,
		Role:           i.Role,
		IsActive:       i.IsActive,
		IsProtected:    i.IsProtected,
		Permissions:    i.Permissions(),
		AvailableRoles: permission.AvailableRoles(i.Role),
		CreatedAt:      i.CreatedAt,
		LastLoginAt:    i.LastLoginAt,
	}
}

func toUserResponses(identities []*Identity) []UserResponse {
	out := make([]UserResponse, len(identities))
	for i, id := range identities {
		out[i] = toUserResponse(id)
	}
	return out
}

type LoginResponse struct {
	User   UserResponse `json:"user"`
	Tokens AuthTokens   `json:"tokens"`
}

type SignupResponse struct {
	Message string `json:"message"`
}
