package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luzza07/artist-management-backend/internal/auth"
)

var userColumns = []string{
	"id", "first_name", "last_name", "email", "password", "phone", "dob",
	"gender", "address", "role_type", "is_approved", "created_at", "updated_at",
}

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresStore(mock), mock
}

func userRow(role string, approved bool) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(userColumns).AddRow(
		testUserID, "Nina", "Simone", "nina@example.com", "hash", "", "", "f", "", role, approved, now, now)
}

func newArtist() NewUser {
	return NewUser{
		FirstName: "Nina", LastName: "Simone", Email: "nina@example.com", PasswordHash: "hash",
		Gender: "f", Role: auth.RoleArtist, IsApproved: true,
	}
}

func TestPostgres_CreateArtistInsertsProfile(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Nina", "Simone", "nina@example.com", "hash", "", "", "f", "", "artist", true).
		WillReturnRows(userRow("artist", true))
	mock.ExpectExec(`INSERT INTO artist \(user_id, name\) VALUES \(\$1, \$2\)`).
		WithArgs(testUserID, "Nina Simone").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	u, err := store.CreateUser(context.Background(), newArtist(), "")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleArtist, u.Role)
	assert.True(t, u.IsApproved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateManagerInsertsApprovalRequest(t *testing.T) {
	store, mock := newMockStore(t)
	nu := newArtist()
	nu.Role, nu.IsApproved = auth.RoleArtistManager, false

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Nina", "Simone", "nina@example.com", "hash", "", "", "f", "", "artist_manager", false).
		WillReturnRows(userRow("artist_manager", false))
	mock.ExpectExec(`INSERT INTO approval_requests \(user_id, requested_by_id\)`).
		WithArgs(testUserID, testAdminID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	u, err := store.CreateUser(context.Background(), nu, testAdminID)
	require.NoError(t, err)
	assert.False(t, u.IsApproved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateUserDuplicateEmail(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Nina", "Simone", "nina@example.com", "hash", "", "", "f", "", "artist", true).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	mock.ExpectRollback()

	_, err := store.CreateUser(context.Background(), newArtist(), "")
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateUserProfileFailureRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Nina", "Simone", "nina@example.com", "hash", "", "", "f", "", "artist", true).
		WillReturnRows(userRow("artist", true))
	mock.ExpectExec(`INSERT INTO artist`).
		WithArgs(testUserID, "Nina Simone").
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	_, err := store.CreateUser(context.Background(), newArtist(), "")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ApproveUserCascadesToRequests(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET is_approved = TRUE, updated_at = now\(\) WHERE id = \$1 AND is_approved = FALSE`).
		WithArgs(testUserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE approval_requests SET is_approved = TRUE`).
		WithArgs(testUserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	require.NoError(t, store.ApproveUser(context.Background(), testUserID))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET is_approved = TRUE`).
		WithArgs(testUserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()
	assert.ErrorIs(t, store.ApproveUser(context.Background(), testUserID), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ApproveRequestApprovesUser(t *testing.T) {
	store, mock := newMockStore(t)
	const reqID = "6f1d3f0e-2c55-4b8e-9d7a-5a1f000000aa"

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE approval_requests SET is_approved = TRUE`).
		WithArgs(reqID).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(testUserID))
	mock.ExpectExec(`UPDATE users SET is_approved = TRUE`).
		WithArgs(testUserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	uid, err := store.ApproveRequest(context.Background(), reqID)
	require.NoError(t, err)
	assert.Equal(t, testUserID, uid)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE approval_requests`).
		WithArgs(reqID).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}))
	mock.ExpectRollback()

	_, err = store.ApproveRequest(context.Background(), reqID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_LoadIdentity(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT id, email, role_type, is_approved FROM users WHERE id = \$1`).
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "role_type", "is_approved"}).
			AddRow(testUserID, "nina@example.com", "artist", true))

	id, err := store.LoadIdentity(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleArtist, id.Role)
	assert.True(t, id.Approved)

	mock.ExpectQuery(`SELECT id, email, role_type, is_approved FROM users`).
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "role_type", "is_approved"}))

	_, err = store.LoadIdentity(context.Background(), testUserID)
	assert.ErrorIs(t, err, auth.ErrUnknownUser)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListUsersPaginates(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\)::int FROM users WHERE is_approved`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`FROM users WHERE is_approved ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 10).
		WillReturnRows(userRow("artist", true))

	users, total, err := store.ListUsers(context.Background(), 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, users, 1)
	assert.Equal(t, "hash", users[0].PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ArtistStats(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\)::int\s+FROM tracks t`).
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`SELECT t.title`).
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{"title"}).AddRow("Sinnerman").AddRow("Feeling Good"))

	st, err := store.ArtistStats(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, 7, st.TotalWorks)
	assert.Equal(t, []string{"Sinnerman", "Feeling Good"}, st.RecentWorks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DeleteUser(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(testUserID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, store.DeleteUser(context.Background(), testUserID), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
