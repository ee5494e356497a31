package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/CLL-Web-App-Development/secrets-security-authentication/internal/auth"
)

const defaultOpTimeout = 5 * time.Second

// Postgres is the relational Store implementation. Uniqueness is
// enforced by the schema (users_username_unique, identities provider
// pair constraint); find-or-create runs inside a transaction with
// ON CONFLICT handling rather than an unguarded read-then-write.
type Postgres struct {
	db        *sql.DB
	opTimeout time.Duration
}

// NewPostgres wraps an open database handle. opTimeout bounds every
// store call; zero selects the default.
func NewPostgres(db *sql.DB, opTimeout time.Duration) *Postgres {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &Postgres{db: db, opTimeout: opTimeout}
}

func (s *Postgres) Create(ctx context.Context, rec NewIdentity) (*auth.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.wrap("create", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()

	var created, updated time.Time
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (id, username, credential_secret, secret_scheme)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''))
		RETURNING created_at, updated_at
	`, id, rec.Username, rec.CredentialSecret, rec.SecretScheme).Scan(&created, &updated)
	if err != nil {
		return nil, s.wrap("create", err)
	}

	for provider, externalID := range rec.ProviderLinks {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO identities (user_id, provider, provider_user_id)
			VALUES ($1, $2, $3)
		`, id, provider, externalID)
		if err != nil {
			return nil, s.wrap("create", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, s.wrap("create", err)
	}

	identity := &auth.Identity{
		ID:               id,
		Username:         rec.Username,
		CredentialSecret: rec.CredentialSecret,
		SecretScheme:     rec.SecretScheme,
		SecretNote:       "",
		CreatedAt:        created,
		UpdatedAt:        updated,
	}
	if len(rec.ProviderLinks) > 0 {
		identity.ProviderLinks = make(map[string]string, len(rec.ProviderLinks))
		for k, v := range rec.ProviderLinks {
			identity.ProviderLinks[k] = v
		}
	}
	return identity, nil
}

func (s *Postgres) FindByID(ctx context.Context, id string) (*auth.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *Postgres) FindByUsername(ctx context.Context, username string) (*auth.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	return s.findOne(ctx, `WHERE LOWER(username) = LOWER($1)`, username)
}

func (s *Postgres) FindByProviderID(ctx context.Context, provider, externalID string) (*auth.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	var userID string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id FROM identities
		WHERE provider = $1 AND provider_user_id = $2
	`, provider, externalID).Scan(&userID)
	if err != nil {
		return nil, s.wrap("find by provider id", err)
	}

	return s.findOne(ctx, `WHERE id = $1`, userID)
}

func (s *Postgres) FindOrCreateByProviderID(ctx context.Context, provider, externalID string, profile auth.Profile) (*auth.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	identity, err := s.tryInsertProviderIdentity(ctx, provider, externalID)
	if err != nil {
		return nil, err
	}
	if identity != nil {
		return identity, nil
	}

	// Another callback won the insert between our lookup and commit.
	// The constraint guarantees the winner's row exists now.
	return s.FindByProviderID(ctx, provider, externalID)
}

// tryInsertProviderIdentity returns the owning identity, or nil when a
// concurrent insert claimed the pair first and the caller should
// re-read.
func (s *Postgres) tryInsertProviderIdentity(ctx context.Context, provider, externalID string) (*auth.Identity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.wrap("find or create", err)
	}
	defer tx.Rollback()

	var userID string
	err = tx.QueryRowContext(ctx, `
		SELECT user_id FROM identities
		WHERE provider = $1 AND provider_user_id = $2
	`, provider, externalID).Scan(&userID)
	if err == nil {
		if err := tx.Commit(); err != nil {
			return nil, s.wrap("find or create", err)
		}
		return s.findOne(ctx, `WHERE id = $1`, userID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, s.wrap("find or create", err)
	}

	userID = uuid.NewString()
	var created, updated time.Time
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (id) VALUES ($1)
		RETURNING created_at, updated_at
	`, userID).Scan(&created, &updated)
	if err != nil {
		return nil, s.wrap("find or create", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO identities (user_id, provider, provider_user_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider, provider_user_id) DO NOTHING
	`, userID, provider, externalID)
	if err != nil {
		return nil, s.wrap("find or create", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, s.wrap("find or create", err)
	}
	if rows == 0 {
		// Lost the race; rollback discards the provisional user row.
		return nil, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, s.wrap("find or create", err)
	}

	return &auth.Identity{
		ID:            userID,
		ProviderLinks: map[string]string{provider: externalID},
		CreatedAt:     created,
		UpdatedAt:     updated,
	}, nil
}

func (s *Postgres) Update(ctx context.Context, id string, patch Patch) (*auth.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.wrap("update", err)
	}
	defer tx.Rollback()

	if patch.SecretNote != nil {
		res, err := tx.ExecContext(ctx, `
			UPDATE users SET secret_note = $2, updated_at = NOW()
			WHERE id = $1
		`, id, *patch.SecretNote)
		if err != nil {
			return nil, s.wrap("update", err)
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return nil, fmt.Errorf("store: update: %w", auth.ErrNoSuchUser)
		}
	}

	if link := patch.AddProviderLink; link != nil {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO identities (user_id, provider, provider_user_id)
			VALUES ($1, $2, $3)
		`, id, link.Provider, link.ExternalID)
		if err != nil {
			return nil, s.wrap("update", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, s.wrap("update", err)
	}

	return s.findOne(ctx, `WHERE id = $1`, id)
}

// findOne loads one users row plus its provider links.
func (s *Postgres) findOne(ctx context.Context, where string, arg any) (*auth.Identity, error) {
	var (
		identity auth.Identity
		username sql.NullString
		cred     sql.NullString
		scheme   sql.NullString
		note     sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, credential_secret, secret_scheme, secret_note,
		       created_at, updated_at
		FROM users `+where,
		arg,
	).Scan(&identity.ID, &username, &cred, &scheme, &note,
		&identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		return nil, s.wrap("find", err)
	}

	identity.Username = username.String
	identity.CredentialSecret = cred.String
	identity.SecretScheme = scheme.String
	identity.SecretNote = note.String

	rows, err := s.db.QueryContext(ctx, `
		SELECT provider, provider_user_id FROM identities
		WHERE user_id = $1
	`, identity.ID)
	if err != nil {
		return nil, s.wrap("find", err)
	}
	defer rows.Close()

	for rows.Next() {
		var provider, externalID string
		if err := rows.Scan(&provider, &externalID); err != nil {
			return nil, s.wrap("find", err)
		}
		if identity.ProviderLinks == nil {
			identity.ProviderLinks = make(map[string]string)
		}
		identity.ProviderLinks[provider] = externalID
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("find", err)
	}

	return &identity, nil
}

// wrap maps driver-level failures onto the shared taxonomy.
func (s *Postgres) wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("store: %s: %w", op, auth.ErrNoSuchUser)
	case isUniqueViolation(err):
		return fmt.Errorf("store: %s: %w", op, auth.ErrDuplicateKey)
	case isForeignKeyViolation(err):
		// A dangling reference means the target users row is gone.
		return fmt.Errorf("store: %s: %w", op, auth.ErrNoSuchUser)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return fmt.Errorf("store: %s: timed out: %w", op, auth.ErrAuthUnavailable)
	default:
		return fmt.Errorf("store: %s: %v: %w", op, err, auth.ErrAuthUnavailable)
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
