package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/luzza07/artist-management-backend/internal/auth"
	"github.com/luzza07/artist-management-backend/internal/database"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

const emailConstraint = "users_email_key"

// Store defines the persistence operations for accounts and their approval workflow.
type Store interface {
	auth.IdentityLoader
	// CreateUser stores the account together with its artist profile (artists) or a pending
	// approval request (everyone else). requestedBy may be empty.
	CreateUser(ctx context.Context, u NewUser, requestedBy string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	ApproveUser(ctx context.Context, id string) error
	ApproveRequest(ctx context.Context, requestID string) (string, error)
	PendingUsers(ctx context.Context) ([]User, error)
	PendingRequests(ctx context.Context) ([]ApprovalRequest, error)
	ListUsers(ctx context.Context, limit, offset int) ([]User, int, error)
	UpdateUser(ctx context.Context, id string, upd UserUpdate) (User, error)
	DeleteUser(ctx context.Context, id string) error
	SuperAdminStats(ctx context.Context) (SuperAdminStats, error)
	ManagerStats(ctx context.Context) (ManagerStats, error)
	ArtistStats(ctx context.Context, userID string) (ArtistStats, error)
}

const userCols = `id, first_name, last_name, email, password, phone,
       COALESCE(to_char(dob, 'YYYY-MM-DD'), ''), gender, address, role_type, is_approved,
       created_at, updated_at`

type PostgresStore struct {
	db database.DB
}

func NewPostgresStore(db database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	var role string
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Phone, &u.DOB,
		&u.Gender, &u.Address, &role, &u.IsApproved, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.Role = auth.Role(role)
	return u, nil
}

func (s *PostgresStore) LoadIdentity(ctx context.Context, userID string) (auth.Identity, error) {
	var id auth.Identity
	var role string
	err := s.db.QueryRow(ctx,
		`SELECT id, email, role_type, is_approved FROM users WHERE id = $1`, userID,
	).Scan(&id.UserID, &id.Email, &role, &id.Approved)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Identity{}, auth.ErrUnknownUser
	}
	if err != nil {
		return auth.Identity{}, fmt.Errorf("load identity: %w", err)
	}
	id.Role = auth.Role(role)
	return id, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, nu NewUser, requestedBy string) (User, error) {
	var created User
	err := database.InTx(ctx, s.db, func(tx pgx.Tx) error {
		u, err := scanUser(tx.QueryRow(ctx, `
			INSERT INTO users (first_name, last_name, email, password, phone, dob, gender, address, role_type, is_approved)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::date, $7, $8, $9, $10)
			RETURNING `+userCols,
			nu.FirstName, nu.LastName, nu.Email, nu.PasswordHash, nu.Phone, nu.DOB,
			nu.Gender, nu.Address, string(nu.Role), nu.IsApproved))
		if database.IsUniqueViolation(err, emailConstraint) {
			return ErrEmailTaken
		}
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}

		if nu.Role == auth.RoleArtist {
			_, err = tx.Exec(ctx,
				`INSERT INTO artist (user_id, name) VALUES ($1, $2)`,
				u.ID, nu.FirstName+" "+nu.LastName)
			if err != nil {
				return fmt.Errorf("insert artist profile: %w", err)
			}
		} else {
			_, err = tx.Exec(ctx,
				`INSERT INTO approval_requests (user_id, requested_by_id) VALUES ($1, NULLIF($2, '')::uuid)`,
				u.ID, requestedBy)
			if err != nil {
				return fmt.Errorf("insert approval request: %w", err)
			}
		}
		created = u
		return nil
	})
	return created, err
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email))
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

// ApproveUser marks an unapproved user approved along with every request still pending for them.
func (s *PostgresStore) ApproveUser(ctx context.Context, id string) error {
	return database.InTx(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE users SET is_approved = TRUE, updated_at = now() WHERE id = $1 AND is_approved = FALSE`, id)
		if err != nil {
			return fmt.Errorf("approve user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx,
			`UPDATE approval_requests SET is_approved = TRUE, updated_at = now()
			 WHERE user_id = $1 AND is_approved = FALSE`, id)
		if err != nil {
			return fmt.Errorf("approve pending requests: %w", err)
		}
		return nil
	})
}

// ApproveRequest approves a pending request and the user it belongs to, returning the user id.
func (s *PostgresStore) ApproveRequest(ctx context.Context, requestID string) (string, error) {
	var userID string
	err := database.InTx(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE approval_requests SET is_approved = TRUE, updated_at = now()
			WHERE id = $1 AND is_approved = FALSE
			RETURNING user_id::text`, requestID).Scan(&userID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("approve request: %w", err)
		}
		_, err = tx.Exec(ctx,
			`UPDATE users SET is_approved = TRUE, updated_at = now() WHERE id = $1`, userID)
		if err != nil {
			return fmt.Errorf("approve requested user: %w", err)
		}
		return nil
	})
	return userID, err
}

func (s *PostgresStore) PendingUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+userCols+` FROM users
		WHERE is_approved = FALSE AND role_type IN ('super_admin', 'artist_manager')
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("pending users: %w", err)
	}
	return collectUsers(rows)
}

func (s *PostgresStore) PendingRequests(ctx context.Context) ([]ApprovalRequest, error) {
	rows, err := s.db.Query(ctx, `
		SELECT r.id, r.user_id, COALESCE(r.requested_by_id::text, ''),
		       u.first_name, u.last_name, u.email, u.role_type, r.created_at
		FROM approval_requests r
		JOIN users u ON u.id = r.user_id
		WHERE r.is_approved = FALSE
		ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("pending requests: %w", err)
	}
	defer rows.Close()

	out := []ApprovalRequest{}
	for rows.Next() {
		var req ApprovalRequest
		var role string
		if err := rows.Scan(&req.ID, &req.UserID, &req.RequestedByID,
			&req.FirstName, &req.LastName, &req.Email, &role, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan approval request: %w", err)
		}
		req.Role = auth.Role(role)
		out = append(out, req)
	}
	return out, rows.Err()
}

// ListUsers pages through approved accounts. Pending ones are listed by PendingUsers.
func (s *PostgresStore) ListUsers(ctx context.Context, limit, offset int) ([]User, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*)::int FROM users WHERE is_approved`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+userCols+` FROM users WHERE is_approved ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	users, err := collectUsers(rows)
	return users, total, err
}

// UpdateUser applies the non-nil fields. upd.Password must already hold a hash.
func (s *PostgresStore) UpdateUser(ctx context.Context, id string, upd UserUpdate) (User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `
		UPDATE users SET
		    first_name = COALESCE($2::text, first_name),
		    last_name  = COALESCE($3::text, last_name),
		    email      = COALESCE($4::text, email),
		    password   = COALESCE($5::text, password),
		    phone      = COALESCE($6::text, phone),
		    address    = COALESCE($7::text, address),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+userCols,
		id, upd.FirstName, upd.LastName, upd.Email, upd.Password, upd.Phone, upd.Address))
	if database.IsUniqueViolation(err, emailConstraint) {
		return User{}, ErrEmailTaken
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return u, err
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SuperAdminStats(ctx context.Context) (SuperAdminStats, error) {
	var st SuperAdminStats
	err := s.db.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM users)::int,
		       (SELECT COUNT(*) FROM users WHERE role_type = 'artist' AND is_approved)::int`,
	).Scan(&st.TotalUsers, &st.TotalApprovedArtists)
	if err != nil {
		return SuperAdminStats{}, fmt.Errorf("super admin stats: %w", err)
	}
	return st, nil
}

func (s *PostgresStore) ManagerStats(ctx context.Context) (ManagerStats, error) {
	var st ManagerStats
	err := s.db.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM artist)::int,
		       (SELECT COUNT(*) FROM approval_requests WHERE is_approved = FALSE)::int`,
	).Scan(&st.TotalArtists, &st.PendingApprovals)
	if err != nil {
		return ManagerStats{}, fmt.Errorf("manager stats: %w", err)
	}
	return st, nil
}

// ArtistStats counts the tracks across the caller's albums and lists the five newest titles.
func (s *PostgresStore) ArtistStats(ctx context.Context, userID string) (ArtistStats, error) {
	st := ArtistStats{RecentWorks: []string{}}
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*)::int
		FROM tracks t
		JOIN albums al ON al.id = t.album_id
		JOIN artist ar ON ar.id = al.artist_id
		WHERE ar.user_id = $1`, userID).Scan(&st.TotalWorks)
	if err != nil {
		return ArtistStats{}, fmt.Errorf("count works: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT t.title
		FROM tracks t
		JOIN albums al ON al.id = t.album_id
		JOIN artist ar ON ar.id = al.artist_id
		WHERE ar.user_id = $1
		ORDER BY t.created_at DESC
		LIMIT 5`, userID)
	if err != nil {
		return ArtistStats{}, fmt.Errorf("recent works: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return ArtistStats{}, fmt.Errorf("scan recent work: %w", err)
		}
		st.RecentWorks = append(st.RecentWorks, title)
	}
	return st, rows.Err()
}

func collectUsers(rows pgx.Rows) ([]User, error) {
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
