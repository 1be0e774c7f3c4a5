package requests

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/JaimeStill/courier-sign/pkg/database"
	"github.com/JaimeStill/courier-sign/pkg/repository"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the signing request schema to db.
func Migrate(db *sql.DB) error {
	return database.Migrate(db, migrations, "migrations")
}

type postgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a Store keeping each request as a JSONB document.
func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

func scanRequest(s repository.Scanner) (*Request, error) {
	var doc []byte
	if err := s.Scan(&doc); err != nil {
		return nil, err
	}
	return decodeRequest(doc)
}

func (s *postgresStore) Get(ctx context.Context, token string) (*Request, error) {
	q := `SELECT document FROM signing_requests WHERE token = $1`

	req, err := repository.QueryOne(ctx, s.db, q, []any{token}, scanRequest)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return req, nil
}

func (s *postgresStore) Put(ctx context.Context, req *Request) error {
	doc, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	q := `
		INSERT INTO signing_requests(token, document, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token) DO UPDATE
		SET document = EXCLUDED.document,
		    status = EXCLUDED.status,
		    updated_at = EXCLUDED.updated_at`

	_, err = repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		_, err := tx.ExecContext(ctx, q, req.Token, string(doc), string(req.Status), req.CreatedAt, req.UpdatedAt)
		return struct{}{}, err
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

func (s *postgresStore) ListAll(ctx context.Context) ([]*Request, error) {
	q := `SELECT document FROM signing_requests ORDER BY created_at DESC, token DESC`

	reqs, err := repository.QueryMany(ctx, s.db, q, nil, scanRequest)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	return reqs, nil
}

func (s *postgresStore) Delete(ctx context.Context, token string) error {
	q := `DELETE FROM signing_requests WHERE token = $1`

	if err := repository.ExecExpectOne(ctx, s.db, q, token); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}
