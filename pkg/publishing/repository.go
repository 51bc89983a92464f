package publishing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	CreateYear(ctx context.Context, year FiscalYear, revision Revision) (FiscalYear, error)
	GetYear(ctx context.Context, id int) (FiscalYear, error)
	GetByYear(ctx context.Context, year int) (FiscalYear, error)
	ListYears(ctx context.Context) ([]FiscalYear, error)
	// ListDue returns approved years whose scheduled publication is at or before now.
	ListDue(ctx context.Context, now time.Time) ([]FiscalYear, error)
	// ApplyTransition sets the status only if it still equals change.Expected and
	// appends the revision in the same transaction.
	ApplyTransition(ctx context.Context, change StatusChange) (FiscalYear, error)
	ListRevisions(ctx context.Context, fiscalYearId int) ([]Revision, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const uniqueViolation = "23505"

const fiscalYearColumns = `id, year, status, scheduled_publish_at, created_at, updated_at`

func (r *RepositoryImpl) CreateYear(ctx context.Context, year FiscalYear, revision Revision) (FiscalYear, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return FiscalYear{}, err
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO fiscal_year (year, status, scheduled_publish_at, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $4) RETURNING ` + fiscalYearColumns
	created, err := scanFiscalYear(tx.QueryRow(ctx, query, year.Year, year.Status, year.ScheduledPublishAt, year.CreatedAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return FiscalYear{}, fmt.Errorf("%w: %d", ErrYearExists, year.Year)
		}
		err = fmt.Errorf("could not insert fiscal year: %w", err)
		log.Error(err)
		return FiscalYear{}, err
	}

	revision.FiscalYearId = created.Id
	if err := insertRevision(ctx, tx, revision); err != nil {
		return FiscalYear{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		log.Errorf("failed to commit fiscal year creation: %v", err)
		return FiscalYear{}, err
	}
	return created, nil
}

func (r *RepositoryImpl) GetYear(ctx context.Context, id int) (FiscalYear, error) {
	query := `SELECT ` + fiscalYearColumns + ` FROM fiscal_year WHERE id = $1`
	year, err := scanFiscalYear(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return FiscalYear{}, fmt.Errorf("%w: %d", ErrYearNotFound, id)
	} else if err != nil {
		log.Errorf("failed to get fiscal year %d: %v", id, err)
		return FiscalYear{}, err
	}
	return year, nil
}

func (r *RepositoryImpl) GetByYear(ctx context.Context, year int) (FiscalYear, error) {
	query := `SELECT ` + fiscalYearColumns + ` FROM fiscal_year WHERE year = $1`
	fiscalYear, err := scanFiscalYear(r.db.QueryRow(ctx, query, year))
	if errors.Is(err, pgx.ErrNoRows) {
		return FiscalYear{}, fmt.Errorf("%w: year %d", ErrYearNotFound, year)
	} else if err != nil {
		log.Errorf("failed to get fiscal year %d: %v", year, err)
		return FiscalYear{}, err
	}
	return fiscalYear, nil
}

func (r *RepositoryImpl) ListYears(ctx context.Context) ([]FiscalYear, error) {
	query := `SELECT ` + fiscalYearColumns + ` FROM fiscal_year ORDER BY year DESC`
	return r.queryYears(ctx, query)
}

func (r *RepositoryImpl) ListDue(ctx context.Context, now time.Time) ([]FiscalYear, error) {
	query := `SELECT ` + fiscalYearColumns + ` FROM fiscal_year
				WHERE status = $1 AND scheduled_publish_at IS NOT NULL AND scheduled_publish_at <= $2
				ORDER BY scheduled_publish_at, id`
	return r.queryYears(ctx, query, StatusApproved, now)
}

func (r *RepositoryImpl) queryYears(ctx context.Context, query string, args ...any) ([]FiscalYear, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("could not query fiscal years: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	years := make([]FiscalYear, 0)
	for rows.Next() {
		year, err := scanFiscalYear(rows)
		if err != nil {
			err = fmt.Errorf("error scanning fiscal year: %w", err)
			log.Error(err)
			return nil, err
		}
		years = append(years, year)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("error iterating over fiscal years: %v", err)
		return nil, err
	}
	return years, nil
}

func (r *RepositoryImpl) ApplyTransition(ctx context.Context, change StatusChange) (FiscalYear, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return FiscalYear{}, err
	}
	defer tx.Rollback(ctx)

	query := `UPDATE fiscal_year SET status = $1, scheduled_publish_at = $2, updated_at = $3
				WHERE id = $4 AND status = $5 RETURNING ` + fiscalYearColumns
	updated, err := scanFiscalYear(tx.QueryRow(ctx, query,
		change.Next,
		change.ScheduledPublishAt,
		change.Revision.Timestamp,
		change.FiscalYearId,
		change.Expected,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM fiscal_year WHERE id = $1)`, change.FiscalYearId).Scan(&exists); err != nil {
			log.Errorf("failed to check fiscal year %d: %v", change.FiscalYearId, err)
			return FiscalYear{}, err
		}
		if !exists {
			return FiscalYear{}, fmt.Errorf("%w: %d", ErrYearNotFound, change.FiscalYearId)
		}
		return FiscalYear{}, fmt.Errorf("%w: fiscal year %d is no longer %s", ErrConcurrentModification, change.FiscalYearId, change.Expected)
	} else if err != nil {
		err = fmt.Errorf("could not update fiscal year status: %w", err)
		log.Error(err)
		return FiscalYear{}, err
	}

	revision := change.Revision
	revision.FiscalYearId = change.FiscalYearId
	if err := insertRevision(ctx, tx, revision); err != nil {
		return FiscalYear{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		log.Errorf("failed to commit status change of fiscal year %d: %v", change.FiscalYearId, err)
		return FiscalYear{}, err
	}
	return updated, nil
}

func (r *RepositoryImpl) ListRevisions(ctx context.Context, fiscalYearId int) ([]Revision, error) {
	query := `SELECT id, fiscal_year_id, action, from_status, to_status, actor_id, created_at, scheduled_publish_at, automatic
				FROM revision WHERE fiscal_year_id = $1 ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, fiscalYearId)
	if err != nil {
		err = fmt.Errorf("could not query revisions: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	revisions := make([]Revision, 0)
	for rows.Next() {
		var (
			revision   Revision
			fromStatus *string
		)
		if err := rows.Scan(
			&revision.Id,
			&revision.FiscalYearId,
			&revision.Action,
			&fromStatus,
			&revision.ToStatus,
			&revision.ActorId,
			&revision.Timestamp,
			&revision.ScheduledPublishAt,
			&revision.Automatic,
		); err != nil {
			err = fmt.Errorf("error scanning revision: %w", err)
			log.Error(err)
			return nil, err
		}
		if fromStatus != nil {
			revision.FromStatus = Status(*fromStatus)
		}
		revisions = append(revisions, revision)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("error iterating over revisions: %v", err)
		return nil, err
	}
	return revisions, nil
}

func insertRevision(ctx context.Context, tx pgx.Tx, revision Revision) error {
	var fromStatus *string
	if revision.FromStatus != "" {
		s := string(revision.FromStatus)
		fromStatus = &s
	}
	query := `INSERT INTO revision (fiscal_year_id, action, from_status, to_status, actor_id, created_at, scheduled_publish_at, automatic)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := tx.Exec(ctx, query,
		revision.FiscalYearId,
		revision.Action,
		fromStatus,
		revision.ToStatus,
		revision.ActorId,
		revision.Timestamp,
		revision.ScheduledPublishAt,
		revision.Automatic,
	)
	if err != nil {
		err = fmt.Errorf("could not append revision: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func scanFiscalYear(row pgx.Row) (FiscalYear, error) {
	var year FiscalYear
	err := row.Scan(
		&year.Id,
		&year.Year,
		&year.Status,
		&year.ScheduledPublishAt,
		&year.CreatedAt,
		&year.UpdatedAt,
	)
	return year, err
}
