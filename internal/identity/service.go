package identity

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ctrlfund/ctrlfund/internal"
	"github.com/ctrlfund/ctrlfund/internal/core/events"
	"github.com/ctrlfund/ctrlfund/internal/notification"
	"github.com/ctrlfund/ctrlfund/internal/permission"
)

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (*LoginResponse, error)
	AuthenticateFederated(ctx context.Context) (*LoginResponse, error)
	Register(dto SignupDTO) (*SignupResponse, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetByID(id string) (*Identity, error)
	CurrentUser(id string) (*UserResponse, error)
	SetActive(id string, active bool) ([]UserResponse, error)
	SetRole(id string, role permission.Role) ([]UserResponse, error)
	SetOverrides(id string, overrides permission.Overrides) ([]UserResponse, error)
	Delete(id string) ([]UserResponse, error)
	Roster() ([]UserResponse, error)
}

type Service struct {
	repo       Repository
	tokens     TokenGenerator
	provider   Provider
	notifier   notification.Notifier
	eventBus   *events.EventBus
	logger     *slog.Logger
	bcryptCost int
}

func NewService(repo Repository, tokens TokenGenerator, provider Provider, notifier notification.Notifier, eventBus *events.EventBus, logger *slog.Logger, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		tokens:     tokens,
		provider:   provider,
		notifier:   notifier,
		eventBus:   eventBus,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// Authenticate checks credentials and opens a session. The inactive
// check runs after the credential check so an attacker cannot probe
// which addresses exist, and the message matches what administrators
// tell users to expect.
func (s *Service) Authenticate(dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ident, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		s.notifier.Notify("Login failed: invalid credentials", notification.SeverityError)
		return nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(ident.PasswordHash), []byte(dto.Password)); err != nil {
		s.notifier.Notify("Login failed: invalid credentials", notification.SeverityError)
		return nil, internal.ErrInvalidCredentials
	}

	if !ident.IsActive {
		s.notifier.Notify("Login refused: account awaiting activation", notification.SeverityError)
		return nil, internal.ErrAccountInactive
	}

	return s.openSession(ident)
}

// AuthenticateFederated logs in through the configured identity
// provider. Unknown subjects are registered pending activation and
// refused, matching the credential flow.
func (s *Service) AuthenticateFederated(ctx context.Context) (*LoginResponse, error) {
	if s.provider == nil {
		return nil, internal.NewExternalError("No identity provider configured", internal.ErrCodeUploadFailed)
	}

	profile, err := s.provider.Profile(ctx)
	if err != nil {
		s.notifier.Notify("Federated login failed", notification.SeverityError)
		return nil, internal.NewExternalError("Identity provider rejected the request", "PROVIDER_ERROR").WithCause(err)
	}

	ident, err := s.repo.GetByEmail(profile.Email)
	if err != nil {
		// first sight of this subject: create a pending member account
		ident = &Identity{
			ID:       uuid.New().String(),
			Email:    profile.Email,
			Name:     profile.Name,
			Role:     permission.RoleMember,
			IsActive: false,
		}
		ident.SetOverrides(permission.Defaults(permission.RoleMember))
		if err := s.repo.Create(ident); err != nil {
			return nil, internal.NewInternalError("failed to register federated user", err)
		}
		s.notifier.Notify("Account created and awaiting activation", notification.SeverityInfo)
		return nil, internal.ErrAccountInactive
	}

	if !ident.IsActive {
		s.notifier.Notify("Login refused: account awaiting activation", notification.SeverityError)
		return nil, internal.ErrAccountInactive
	}

	return s.openSession(ident)
}

func (s *Service) openSession(ident *Identity) (*LoginResponse, error) {
	now := time.Now()
	ident.LastLoginAt = &now
	if err := s.repo.Update(ident); err != nil {
		s.logger.Error("failed to record login time", "user_id", ident.ID, "error", err)
	}

	accessToken, err := s.tokens.GenerateAccessToken(ident.ID, ident.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to generate access token", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(ident.ID, ident.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to generate refresh token", err)
	}

	s.notifier.Notify("Welcome back, "+ident.Name, notification.SeveritySuccess)

	return &LoginResponse{
		User: toUserResponse(ident),
		Tokens: AuthTokens{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
	}, nil
}

// Register creates an account pending administrator approval. It never
// opens a session.
func (s *Service) Register(dto SignupDTO) (*SignupResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(dto.Email); err == nil {
		s.notifier.Notify("Signup failed: email already registered", notification.SeverityError)
		return nil, internal.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	role := dto.StoredRole()
	ident := &Identity{
		ID:           uuid.New().String(),
		Email:        dto.Email,
		Name:         dto.Name,
		Role:         role,
		IsActive:     false,
		PasswordHash: string(hash),
	}
	ident.SetOverrides(permission.Defaults(role))

	if err := s.repo.Create(ident); err != nil {
		s.notifier.Notify("Signup failed", notification.SeverityError)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.publishChange(ident.ID, events.ChangeKindCreated)
	s.notifier.Notify("Account created. An administrator will review your request.", notification.SeveritySuccess)

	return &SignupResponse{
		Message: "Your account has been created and is awaiting administrator approval.",
	}, nil
}

func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	// the account may have been deactivated since the token was issued
	ident, err := s.repo.GetByID(claims.UserID)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}
	if !ident.IsActive {
		return AuthTokens{}, internal.ErrAccountInactive
	}

	accessToken, err := s.tokens.GenerateAccessToken(ident.ID, ident.Email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to generate access token", err)
	}
	newRefreshToken, err := s.tokens.GenerateRefreshToken(ident.ID, ident.Email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to generate refresh token", err)
	}

	return AuthTokens{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateToken(tokenString)
}

func (s *Service) GetByID(id string) (*Identity, error) {
	ident, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrIdentityNotFound
	}
	return ident, nil
}

// CurrentUser returns the caller's profile. A valid session whose
// profile row has disappeared is a data integrity problem, not a
// credentials problem.
func (s *Service) CurrentUser(id string) (*UserResponse, error) {
	ident, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrProfileMissing
	}
	resp := toUserResponse(ident)
	return &resp, nil
}

func (s *Service) SetActive(id string, active bool) ([]UserResponse, error) {
	ident, err := s.repo.GetByID(id)
	if err != nil {
		s.notifier.Notify("User update failed: user not found", notification.SeverityError)
		return nil, internal.ErrIdentityNotFound
	}

	ident.IsActive = active
	if err := s.repo.Update(ident); err != nil {
		s.notifier.Notify("User update failed", notification.SeverityError)
		return nil, internal.NewInternalError("failed to update user", err)
	}

	s.publishChange(ident.ID, events.ChangeKindUpdated)
	if active {
		s.notifier.Notify(ident.Name+" has been activated", notification.SeveritySuccess)
	} else {
		s.notifier.Notify(ident.Name+" has been deactivated", notification.SeveritySuccess)
	}

	return s.Roster()
}

// SetRole overwrites the role and resets overrides to the new role's
// defaults. The protected admin's role can never change.
func (s *Service) SetRole(id string, role permission.Role) ([]UserResponse, error) {
	if !role.Valid() {
		return nil, internal.NewValidationFieldError("role", "role must be admin, member or viewer", internal.ErrCodeValidationFailed)
	}

	ident, err := s.repo.GetByID(id)
	if err != nil {
		s.notifier.Notify("Role change failed: user not found", notification.SeverityError)
		return nil, internal.ErrIdentityNotFound
	}

	if ident.IsProtected {
		s.notifier.Notify("Role change refused for the main admin", notification.SeverityError)
		return nil, internal.ErrProtectedRoleChange
	}

	ident.Role = role
	ident.SetOverrides(permission.Defaults(role))
	if err := s.repo.Update(ident); err != nil {
		s.notifier.Notify("Role change failed", notification.SeverityError)
		return nil, internal.NewInternalError("failed to update user", err)
	}

	s.publishChange(ident.ID, events.ChangeKindUpdated)
	s.notifier.Notify(ident.Name+" is now a "+string(role), notification.SeveritySuccess)

	return s.Roster()
}

func (s *Service) SetOverrides(id string, overrides permission.Overrides) ([]UserResponse, error) {
	ident, err := s.repo.GetByID(id)
	if err != nil {
		s.notifier.Notify("Permission update failed: user not found", notification.SeverityError)
		return nil, internal.ErrIdentityNotFound
	}

	ident.SetOverrides(overrides)
	if err := s.repo.Update(ident); err != nil {
		s.notifier.Notify("Permission update failed", notification.SeverityError)
		return nil, internal.NewInternalError("failed to update user", err)
	}

	s.publishChange(ident.ID, events.ChangeKindUpdated)
	s.notifier.Notify("Permissions updated for "+ident.Name, notification.SeveritySuccess)

	return s.Roster()
}

func (s *Service) Delete(id string) ([]UserResponse, error) {
	ident, err := s.repo.GetByID(id)
	if err != nil {
		s.notifier.Notify("Deletion failed: user not found", notification.SeverityError)
		return nil, internal.ErrIdentityNotFound
	}

	if ident.IsProtected {
		s.notifier.Notify("Deletion refused for the main admin", notification.SeverityError)
		return nil, internal.ErrProtectedDelete
	}

	if err := s.repo.Delete(id); err != nil {
		s.notifier.Notify("Deletion failed", notification.SeverityError)
		return nil, internal.NewInternalError("failed to delete user", err)
	}

	s.publishChange(id, events.ChangeKindDeleted)
	s.notifier.Notify(ident.Name+" has been removed", notification.SeveritySuccess)

	return s.Roster()
}

// Roster lists every identity. An empty store bootstraps the protected
// default admin so the application is never without one; the bootstrap
// account has no credentials until the seeder assigns them.
func (s *Service) Roster() ([]UserResponse, error) {
	count, err := s.repo.Count()
	if err != nil {
		return nil, internal.NewInternalError("failed to read users", err)
	}

	if count == 0 {
		admin := &Identity{
			ID:          uuid.New().String(),
			Email:       DefaultAdminEmail,
			Name:        DefaultAdminName,
			Role:        permission.RoleAdmin,
			IsActive:    true,
			IsProtected: true,
		}
		admin.SetOverrides(permission.Defaults(permission.RoleAdmin))
		if err := s.repo.Create(admin); err != nil {
			return nil, internal.NewInternalError("failed to bootstrap default admin", err)
		}
		s.logger.Info("bootstrapped protected default admin", "email", admin.Email)
	}

	identities, err := s.repo.GetAll()
	if err != nil {
		return nil, internal.NewInternalError("failed to read users", err)
	}

	return toUserResponses(identities), nil
}

func (s *Service) publishChange(identityID, kind string) {
	if s.eventBus == nil {
		return
	}
	event := events.NewIdentityChangedEvent(identityID, kind)
	if err := s.eventBus.Publish(context.Background(), event); err != nil {
		s.logger.Error("failed to publish identity change", "error", err)
	}
}

// IsProtectedIdentity reports whether id belongs to the protected
// admin. Receipt and document deletion is restricted to it.
func (s *Service) IsProtectedIdentity(id string) bool {
	ident, err := s.repo.GetByID(id)
	if err != nil {
		return false
	}
	return ident.IsProtected
}
