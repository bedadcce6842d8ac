package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/and161185/salesgate/internal/errs"
	"github.com/and161185/salesgate/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// FieldCipher encrypts single column values.
type FieldCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(value string) (string, error)
}

// SaleRepo implements SaleRepository using PostgreSQL, keeping card numbers encrypted at rest.
type SaleRepo struct {
	db     *DB
	cipher FieldCipher
	log    *zap.Logger
}

// NewSaleRepo constructs a sale repository.
func NewSaleRepo(db *DB, cipher FieldCipher, log *zap.Logger) *SaleRepo {
	return &SaleRepo{db: db, cipher: cipher, log: log}
}

// Create encrypts the card number and inserts the sale.
func (r *SaleRepo) Create(ctx context.Context, s *model.Sale) error {
	enc, err := r.cipher.Encrypt(s.CardNumber)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrSensitiveData, err)
	}
	const q = `
INSERT INTO sales (id, customer_code, amount_cents, card_number_enc)
VALUES ($1, $2, $3, $4)
RETURNING created_at`
	err = r.db.Pool.QueryRow(ctx, q, s.ID, s.CustomerCode, s.AmountCents, enc).Scan(&s.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID loads and decrypts one sale.
func (r *SaleRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	const q = `
SELECT id, customer_code, amount_cents, card_number_enc, created_at
FROM sales WHERE id=$1`
	var (
		s   model.Sale
		enc string
	)
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(&s.ID, &s.CustomerCode, &s.AmountCents, &enc, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	if s.CardNumber, err = r.revealCard(s.ID, enc); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByCustomer returns a customer's sales, newest first.
func (r *SaleRepo) ListByCustomer(ctx context.Context, customerCode string) ([]model.Sale, error) {
	const q = `
SELECT id, customer_code, amount_cents, card_number_enc, created_at
FROM sales
WHERE customer_code=$1
ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, customerCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Sale
	for rows.Next() {
		var (
			s   model.Sale
			enc string
		)
		if err = rows.Scan(&s.ID, &s.CustomerCode, &s.AmountCents, &enc, &s.CreatedAt); err != nil {
			return nil, err
		}
		if s.CardNumber, err = r.revealCard(s.ID, enc); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// revealCard decrypts a stored card number.
// A bare 12-19 digit value predates encryption and is returned as stored.
// Anything else must decrypt; failures are never passed through.
func (r *SaleRepo) revealCard(id uuid.UUID, stored string) (string, error) {
	if isLegacyCard(stored) {
		r.log.Warn("sale card number is not encrypted, returning stored value", zap.String("sale_id", id.String()))
		return stored, nil
	}
	pt, err := r.cipher.Decrypt(stored)
	if err != nil {
		r.log.Error("sale card number failed to decrypt", zap.String("sale_id", id.String()), zap.Error(err))
		return "", fmt.Errorf("%w: %w", errs.ErrSensitiveData, err)
	}
	return pt, nil
}

func isLegacyCard(s string) bool {
	if len(s) < 12 || len(s) > 19 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
