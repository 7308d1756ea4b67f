package users

import (
	"errors"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/luzza07/artist-management-backend/internal/apperr"
	"github.com/luzza07/artist-management-backend/internal/auth"
)

type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	DOB          string    `json:"dob,omitempty"`
	Gender       string    `json:"gender"`
	Address      string    `json:"address"`
	Role         auth.Role `json:"role_type"`
	IsApproved   bool      `json:"is_approved"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ApprovalRequest struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	RequestedByID string    `json:"requested_by_id,omitempty"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	Role          auth.Role `json:"role_type"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewUser is a validated account ready to be stored.
type NewUser struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Phone        string
	DOB          string
	Gender       string
	Address      string
	Role         auth.Role
	IsApproved   bool
}

type SignupRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Phone           string `json:"phone"`
	DOB             string `json:"dob"`
	Gender          string `json:"gender"`
	Address         string `json:"address"`
	RoleType        string `json:"role_type"`
}

// UserUpdate carries the fields an administrator may change; nil means unchanged.
type UserUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupResult struct {
	Message      string `json:"message"`
	UserID       string `json:"user_id"`
	IsApproved   bool   `json:"is_approved"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type LoginResult struct {
	auth.Tokens
	User User `json:"user"`
}

type SuperAdminStats struct {
	TotalUsers           int `json:"total_users"`
	TotalApprovedArtists int `json:"total_approved_artists"`
}

type ManagerStats struct {
	TotalArtists     int `json:"total_artists"`
	PendingApprovals int `json:"pending_approvals"`
}

type ArtistStats struct {
	TotalWorks  int      `json:"total_works"`
	RecentWorks []string `json:"recent_works"`
}

// bcrypt ignores anything past 72 bytes and refuses to hash longer input.
// validation.Length counts bytes for strings.
const (
	minPasswordLen = 8
	maxPasswordLen = 72
)

var errPasswordMismatch = errors.New("passwords do not match")

var (
	phoneRule   = validation.Match(regexp.MustCompile(`^\+?[0-9][0-9 \-]*$`))
	genderRule  = validation.In("m", "f", "o")
	roleChoices = []any{string(auth.RoleSuperAdmin), string(auth.RoleArtistManager), string(auth.RoleArtist)}
)

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// matches is satisfied when the value equals want.
func matches(want string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != want {
			return errPasswordMismatch
		}
		return nil
	}
}

func (r *SignupRequest) normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = normalizeEmail(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Address = strings.TrimSpace(r.Address)
	r.Gender = strings.ToLower(strings.TrimSpace(r.Gender))
	r.RoleType = strings.TrimSpace(r.RoleType)
}

func (r SignupRequest) Validate() error {
	return apperr.FromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, is.Email, validation.Length(1, 255)),
		validation.Field(&r.Password, validation.Required, validation.Length(minPasswordLen, maxPasswordLen)),
		validation.Field(&r.ConfirmPassword, validation.Required, validation.By(matches(r.Password))),
		validation.Field(&r.Phone, validation.Length(0, 15), phoneRule),
		validation.Field(&r.DOB, validation.Date("2006-01-02")),
		validation.Field(&r.Gender, validation.Required, genderRule),
		validation.Field(&r.Address, validation.Length(0, 255)),
		validation.Field(&r.RoleType, validation.Required, validation.In(roleChoices...)),
	))
}

func (u UserUpdate) Validate() error {
	return apperr.FromValidation(validation.ValidateStruct(&u,
		validation.Field(&u.FirstName, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&u.LastName, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&u.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&u.Password, validation.NilOrNotEmpty, validation.Length(minPasswordLen, maxPasswordLen)),
		validation.Field(&u.Phone, validation.Length(0, 15), phoneRule),
		validation.Field(&u.Address, validation.Length(0, 255)),
	))
}
