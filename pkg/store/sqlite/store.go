package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/perf-tools/report-lens/pkg/models/domain"
	"github.com/perf-tools/report-lens/pkg/store/ident"
)

// Store is the local, file-backed report store. It lets the CLI persist and
// re-open reports without any remote service.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &Store{db: db}, nil
}

func (s *Store) FetchByID(ctx context.Context, id string) (domain.ReportPayload, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM reports WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ReportPayload{}, fmt.Errorf("%w: report %s not found", domain.ErrFetch, id)
	}
	if err != nil {
		return domain.ReportPayload{}, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	return domain.ParseReport([]byte(body))
}

func (s *Store) Create(ctx context.Context, payload domain.ReportPayload) (string, error) {
	id := ident.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (id, version, body) VALUES (?, ?, ?)`,
		id, payload.Version, string(payload.Raw),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	return id, nil
}
