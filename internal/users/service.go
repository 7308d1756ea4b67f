package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/luzza07/artist-management-backend/internal/apperr"
	"github.com/luzza07/artist-management-backend/internal/auth"
	"github.com/luzza07/artist-management-backend/internal/realtime"
)

// Service implements signup, login and the account administration around the approval workflow.
type Service struct {
	store  Store
	tokens *auth.TokenService
	events realtime.Publisher
	log    *log.Logger
}

func NewService(store Store, tokens *auth.TokenService, events realtime.Publisher, logger *log.Logger) *Service {
	if events == nil {
		events = realtime.NopPublisher{}
	}
	return &Service{store: store, tokens: tokens, events: events, log: logger}
}

// classify turns store sentinels into client-facing errors.
func classify(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("user not found")
	}
	if errors.Is(err, ErrEmailTaken) {
		return apperr.Conflict("a user with this email already exists", err)
	}
	return err
}

// Signup registers an account. Artists are approved immediately and receive tokens; other roles
// wait for a super admin. requester is the authenticated caller, if any.
func (s *Service) Signup(ctx context.Context, req SignupRequest, requester *auth.Identity) (SignupResult, error) {
	req.normalize()
	if err := req.Validate(); err != nil {
		return SignupResult{}, err
	}
	role := auth.Role(req.RoleType)

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return SignupResult{}, fmt.Errorf("signup: %w", err)
	}

	requestedBy := ""
	if requester != nil {
		requestedBy = requester.UserID
	}
	u, err := s.store.CreateUser(ctx, NewUser{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		DOB:          req.DOB,
		Gender:       req.Gender,
		Address:      req.Address,
		Role:         role,
		IsApproved:   role.AutoApproved(),
	}, requestedBy)
	if err != nil {
		return SignupResult{}, classify(err)
	}
	s.log.Info("user registered", "user_id", u.ID, "role", u.Role, "approved", u.IsApproved)
	s.events.Publish(ctx, realtime.Event{Type: realtime.EventUserCreated, UserID: u.ID})

	res := SignupResult{Message: "User created successfully.", UserID: u.ID, IsApproved: u.IsApproved}
	if !u.IsApproved {
		res.Message += " Pending approval by a super admin."
		return res, nil
	}
	tokens, err := s.tokens.Issue(u.ID)
	if err != nil {
		return SignupResult{}, err
	}
	res.AccessToken, res.RefreshToken = tokens.AccessToken, tokens.RefreshToken
	return res, nil
}

// CreateArtistAccount is the administrator path for registering an artist together with its profile.
func (s *Service) CreateArtistAccount(ctx context.Context, req SignupRequest, requester auth.Identity) (SignupResult, error) {
	req.RoleType = string(auth.RoleArtist)
	return s.Signup(ctx, req, &requester)
}

// Login checks credentials. Unknown emails and wrong passwords are indistinguishable.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return LoginResult{}, apperr.Validation("email and password are required", nil)
	}
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		return LoginResult{}, apperr.Authentication("invalid email or password")
	}
	if !u.IsApproved {
		return LoginResult{}, apperr.Authorization("your account is pending approval")
	}
	tokens, err := s.tokens.Issue(u.ID)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Tokens: tokens, User: u}, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (auth.Tokens, error) {
	if refreshToken == "" {
		return auth.Tokens{}, apperr.Validation("refresh token is required", map[string]string{"refresh_token": "cannot be blank"})
	}
	return s.tokens.Refresh(ctx, refreshToken, s.store)
}

func (s *Service) ApproveUser(ctx context.Context, userID string) error {
	if err := s.store.ApproveUser(ctx, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("user not found or already approved")
		}
		return err
	}
	s.log.Info("user approved", "user_id", userID)
	s.events.Publish(ctx, realtime.Event{Type: realtime.EventUserApproved, UserID: userID})
	return nil
}

func (s *Service) ApproveRequest(ctx context.Context, requestID string) (string, error) {
	userID, err := s.store.ApproveRequest(ctx, requestID)
	if errors.Is(err, ErrNotFound) {
		return "", apperr.NotFound("approval request not found or already approved")
	}
	if err != nil {
		return "", err
	}
	s.log.Info("approval request granted", "request_id", requestID, "user_id", userID)
	s.events.Publish(ctx, realtime.Event{Type: realtime.EventUserApproved, UserID: userID})
	return userID, nil
}

func (s *Service) PendingUsers(ctx context.Context) ([]User, error) {
	return s.store.PendingUsers(ctx)
}

func (s *Service) PendingRequests(ctx context.Context) ([]ApprovalRequest, error) {
	return s.store.PendingRequests(ctx)
}

func (s *Service) SuperAdminDashboard(ctx context.Context) (SuperAdminStats, error) {
	return s.store.SuperAdminStats(ctx)
}

func (s *Service) ManagerDashboard(ctx context.Context) (ManagerStats, error) {
	return s.store.ManagerStats(ctx)
}

func (s *Service) ArtistDashboard(ctx context.Context, id auth.Identity) (ArtistStats, error) {
	return s.store.ArtistStats(ctx, id.UserID)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]User, int, error) {
	return s.store.ListUsers(ctx, limit, offset)
}

func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	u, err := s.store.FindByID(ctx, id)
	return u, classify(err)
}

// UpdateUser applies a partial update. A new password is hashed before it reaches the store.
func (s *Service) UpdateUser(ctx context.Context, id string, upd UserUpdate) (User, error) {
	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		upd.Email = &email
	}
	if err := upd.Validate(); err != nil {
		return User{}, err
	}
	if upd.Password != nil {
		hash, err := auth.HashPassword(*upd.Password)
		if err != nil {
			return User{}, fmt.Errorf("update user: %w", err)
		}
		upd.Password = &hash
	}
	u, err := s.store.UpdateUser(ctx, id, upd)
	return u, classify(err)
}

// DeleteUser removes an account. Super admins cannot delete themselves.
func (s *Service) DeleteUser(ctx context.Context, caller auth.Identity, id string) error {
	if caller.UserID == id {
		return apperr.Validation("you cannot delete your own account", nil)
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return classify(err)
	}
	s.log.Info("user deleted", "user_id", id, "by", caller.UserID)
	s.events.Publish(ctx, realtime.Event{Type: realtime.EventUserDeleted, UserID: id})
	return nil
}
