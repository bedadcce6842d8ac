package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/and161185/salesgate/internal/errs"
	"github.com/and161185/salesgate/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "email", "customer_code", "pwd_hash", "created_at"}

func TestUserRepo_Create_OK_and_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	u := &model.User{
		ID:           uuid.Must(uuid.NewV4()),
		Email:        "a@b.c",
		CustomerCode: "C-1",
		PwdHash:      "$argon2id$...",
	}
	created := time.Now().UTC().Truncate(time.Second)

	mock.ExpectQuery(`INSERT INTO users \(id, email, customer_code, pwd_hash\) VALUES \(\$1, \$2, \$3, \$4\) RETURNING created_at`).
		WithArgs(u.ID, u.Email, u.CustomerCode, u.PwdHash).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))
	require.NoError(t, r.Create(ctx, u))
	require.Equal(t, created, u.CreatedAt)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(u.ID, u.Email, u.CustomerCode, u.PwdHash).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, r.Create(ctx, u), errs.ErrAlreadyExists)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, email, customer_code, pwd_hash, created_at FROM users WHERE id=\$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(id, "a@b.c", "C-1", "h", time.Now()))
	u, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	require.Equal(t, "C-1", u.CustomerCode)

	mock.ExpectQuery(`SELECT id, email, customer_code, pwd_hash, created_at FROM users WHERE id=\$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)

	boom := errors.New("conn reset")
	mock.ExpectQuery(`SELECT id, email, customer_code, pwd_hash, created_at FROM users WHERE id=\$1`).
		WithArgs(id).
		WillReturnError(boom)
	_, err = r.GetByID(ctx, id)
	require.ErrorIs(t, err, boom)
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, email, customer_code, pwd_hash, created_at FROM users WHERE email=\$1`).
		WithArgs("a@b.c").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(id, "a@b.c", "C-1", "h", time.Now()))
	u, err := r.GetByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	require.Equal(t, "a@b.c", u.Email)

	mock.ExpectQuery(`SELECT id, email, customer_code, pwd_hash, created_at FROM users WHERE email=\$1`).
		WithArgs("x@y.z").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByEmail(ctx, "x@y.z")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_SetResetToken(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	exp := time.Now().Add(time.Hour)

	mock.ExpectExec(`UPDATE users SET reset_token = \$2, reset_expires_at = \$3 WHERE id = \$1`).
		WithArgs(id, "tok", exp).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.SetResetToken(ctx, id, "tok", exp))

	mock.ExpectExec(`UPDATE users SET reset_token = \$2, reset_expires_at = \$3 WHERE id = \$1`).
		WithArgs(id, "tok", exp).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.SetResetToken(ctx, id, "tok", exp), errs.ErrNotFound)
}

func TestUserRepo_ConsumeResetToken(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	now := time.Now()

	mock.ExpectQuery(`UPDATE users SET pwd_hash = \$2, reset_token = NULL, reset_expires_at = NULL WHERE reset_token = \$1 AND reset_expires_at > \$3 RETURNING id`).
		WithArgs("tok", "newhash", now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))
	got, err := r.ConsumeResetToken(ctx, "tok", "newhash", now)
	require.NoError(t, err)
	require.Equal(t, id, got)

	mock.ExpectQuery(`UPDATE users SET pwd_hash = \$2`).
		WithArgs("tok", "newhash", now).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.ConsumeResetToken(ctx, "tok", "newhash", now)
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
