package keyfigure

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Repository stores key figures. Every write appends its revision in the same
// transaction; the repository fills in the revision's figure and year ids.
type Repository interface {
	Create(ctx context.Context, figure StoredFigure, revision Revision) (StoredFigure, error)
	Update(ctx context.Context, figure StoredFigure, revision Revision) (StoredFigure, error)
	Delete(ctx context.Context, id int, revision Revision) (StoredFigure, error)
	Get(ctx context.Context, id int) (StoredFigure, error)
	ListForFiscalYear(ctx context.Context, fiscalYearId int) ([]StoredFigure, error)
	// ListForYear lists the figures of the fiscal year for a budget year.
	ListForYear(ctx context.Context, year int) ([]StoredFigure, error)
	ListRevisions(ctx context.Context, fiscalYearId int) ([]Revision, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const foreignKeyViolation = "23503"

const figureColumns = `id, fiscal_year_id, sort_order, label, value, unit, indicator, data_ref, created_at, updated_at`

func (r *RepositoryImpl) Create(ctx context.Context, figure StoredFigure, revision Revision) (StoredFigure, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return StoredFigure{}, err
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO key_figure (fiscal_year_id, sort_order, label, value, unit, indicator, data_ref, created_at, updated_at)
				VALUES ($1, (SELECT COALESCE(MAX(sort_order) + 1, 0) FROM key_figure WHERE fiscal_year_id = $1),
						$2, $3, $4, $5, $6, $7, $7)
				RETURNING ` + figureColumns
	created, err := scanFigure(tx.QueryRow(ctx, query,
		figure.FiscalYearId,
		figure.Label,
		figure.Value,
		figure.Unit,
		figure.Indicator,
		figure.Ref,
		figure.CreatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return StoredFigure{}, fmt.Errorf("%w: %d", ErrFiscalYearNotFound, figure.FiscalYearId)
		}
		err = fmt.Errorf("could not insert key figure: %w", err)
		log.Error(err)
		return StoredFigure{}, err
	}

	if err := appendRevision(ctx, tx, created, revision); err != nil {
		return StoredFigure{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		log.Errorf("failed to commit key figure creation: %v", err)
		return StoredFigure{}, err
	}
	return created, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, figure StoredFigure, revision Revision) (StoredFigure, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return StoredFigure{}, err
	}
	defer tx.Rollback(ctx)

	query := `UPDATE key_figure SET label = $1, value = $2, unit = $3, indicator = $4, data_ref = $5, updated_at = $6
				WHERE id = $7 RETURNING ` + figureColumns
	updated, err := scanFigure(tx.QueryRow(ctx, query,
		figure.Label,
		figure.Value,
		figure.Unit,
		figure.Indicator,
		figure.Ref,
		figure.UpdatedAt,
		figure.Id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return StoredFigure{}, fmt.Errorf("%w: %d", ErrFigureNotFound, figure.Id)
	} else if err != nil {
		err = fmt.Errorf("could not update key figure: %w", err)
		log.Error(err)
		return StoredFigure{}, err
	}

	if err := appendRevision(ctx, tx, updated, revision); err != nil {
		return StoredFigure{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		log.Errorf("failed to commit key figure %d update: %v", figure.Id, err)
		return StoredFigure{}, err
	}
	return updated, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id int, revision Revision) (StoredFigure, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return StoredFigure{}, err
	}
	defer tx.Rollback(ctx)

	deleted, err := scanFigure(tx.QueryRow(ctx, `DELETE FROM key_figure WHERE id = $1 RETURNING `+figureColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return StoredFigure{}, fmt.Errorf("%w: %d", ErrFigureNotFound, id)
	} else if err != nil {
		err = fmt.Errorf("could not delete key figure: %w", err)
		log.Error(err)
		return StoredFigure{}, err
	}

	if err := appendRevision(ctx, tx, deleted, revision); err != nil {
		return StoredFigure{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		log.Errorf("failed to commit key figure %d deletion: %v", id, err)
		return StoredFigure{}, err
	}
	return deleted, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, id int) (StoredFigure, error) {
	figure, err := scanFigure(r.db.QueryRow(ctx, `SELECT `+figureColumns+` FROM key_figure WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return StoredFigure{}, fmt.Errorf("%w: %d", ErrFigureNotFound, id)
	} else if err != nil {
		log.Errorf("failed to get key figure %d: %v", id, err)
		return StoredFigure{}, err
	}
	return figure, nil
}

func (r *RepositoryImpl) ListForFiscalYear(ctx context.Context, fiscalYearId int) ([]StoredFigure, error) {
	query := `SELECT ` + figureColumns + ` FROM key_figure WHERE fiscal_year_id = $1 ORDER BY sort_order, id`
	return r.queryFigures(ctx, query, fiscalYearId)
}

func (r *RepositoryImpl) ListForYear(ctx context.Context, year int) ([]StoredFigure, error) {
	query := `SELECT ` + figureColumns + ` FROM key_figure
				WHERE fiscal_year_id = (SELECT id FROM fiscal_year WHERE year = $1)
				ORDER BY sort_order, id`
	return r.queryFigures(ctx, query, year)
}

func (r *RepositoryImpl) queryFigures(ctx context.Context, query string, args ...any) ([]StoredFigure, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("could not query key figures: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	figures := make([]StoredFigure, 0)
	for rows.Next() {
		figure, err := scanFigure(rows)
		if err != nil {
			err = fmt.Errorf("error scanning key figure: %w", err)
			log.Error(err)
			return nil, err
		}
		figures = append(figures, figure)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("error iterating over key figures: %v", err)
		return nil, err
	}
	return figures, nil
}

func (r *RepositoryImpl) ListRevisions(ctx context.Context, fiscalYearId int) ([]Revision, error) {
	query := `SELECT id, key_figure_id, fiscal_year_id, action, snapshot, actor_id, created_at
				FROM key_figure_revision WHERE fiscal_year_id = $1 ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, fiscalYearId)
	if err != nil {
		err = fmt.Errorf("could not query key figure revisions: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	revisions := make([]Revision, 0)
	for rows.Next() {
		var revision Revision
		if err := rows.Scan(
			&revision.Id,
			&revision.KeyFigureId,
			&revision.FiscalYearId,
			&revision.Action,
			&revision.Snapshot,
			&revision.ActorId,
			&revision.Timestamp,
		); err != nil {
			err = fmt.Errorf("error scanning key figure revision: %w", err)
			log.Error(err)
			return nil, err
		}
		revisions = append(revisions, revision)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("error iterating over key figure revisions: %v", err)
		return nil, err
	}
	return revisions, nil
}

func appendRevision(ctx context.Context, tx pgx.Tx, figure StoredFigure, revision Revision) error {
	query := `INSERT INTO key_figure_revision (key_figure_id, fiscal_year_id, action, snapshot, actor_id, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := tx.Exec(ctx, query,
		figure.Id,
		figure.FiscalYearId,
		revision.Action,
		figure.Figure,
		revision.ActorId,
		revision.Timestamp,
	)
	if err != nil {
		err = fmt.Errorf("could not append key figure revision: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func scanFigure(row pgx.Row) (StoredFigure, error) {
	var figure StoredFigure
	err := row.Scan(
		&figure.Id,
		&figure.FiscalYearId,
		&figure.Position,
		&figure.Label,
		&figure.Value,
		&figure.Unit,
		&figure.Indicator,
		&figure.Ref,
		&figure.CreatedAt,
		&figure.UpdatedAt,
	)
	return figure, err
}
