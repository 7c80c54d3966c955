package repository

import (
	"database/sql"
	"fmt"
	"time"
)

type RunKind string

const (
	RunKindExport  RunKind = "export"
	RunKindImport  RunKind = "import"
	RunKindMigrate RunKind = "migrate"
)

type Run struct {
	ID             string
	Kind           RunKind
	SourceItem     string
	DestItem       string
	Directory      string
	Status         string
	SucceededItems int
	SkippedItems   int
	FailedItems    int
	StartedAt      time.Time
	CompletedAt    *time.Time
}

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Create(run *Run) error {
	query := `
	INSERT INTO runs (id, kind, source_item, dest_item, directory, status)
        VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		run.ID,
		run.Kind,
		run.SourceItem,
		run.DestItem,
		run.Directory,
		run.Status,
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

func (r *RunRepository) Complete(id string, status string, succeeded, skipped, failed int) error {
	query := `
		UPDATE runs
		SET status = ?, succeeded_items = ?, skipped_items = ?, failed_items = ?,
		    completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, status, succeeded, skipped, failed, id)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	return nil
}

func (r *RunRepository) GetRun(id string) (Run, error) {
	query := `
		SELECT id, kind, source_item, dest_item, directory, status,
		       succeeded_items, skipped_items, failed_items, started_at, completed_at
		FROM runs WHERE id = ?
	`

	var run Run
	err := r.db.QueryRow(query, id).Scan(
		&run.ID,
		&run.Kind,
		&run.SourceItem,
		&run.DestItem,
		&run.Directory,
		&run.Status,
		&run.SucceededItems,
		&run.SkippedItems,
		&run.FailedItems,
		&run.StartedAt,
		&run.CompletedAt,
	)
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

func (r *RunRepository) GetRuns() ([]Run, error) {
	query := `
		SELECT id, kind, source_item, dest_item, directory, status,
		       succeeded_items, skipped_items, failed_items, started_at, completed_at
		FROM runs ORDER BY started_at DESC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("get runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		err := rows.Scan(
			&run.ID,
			&run.Kind,
			&run.SourceItem,
			&run.DestItem,
			&run.Directory,
			&run.Status,
			&run.SucceededItems,
			&run.SkippedItems,
			&run.FailedItems,
			&run.StartedAt,
			&run.CompletedAt,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
