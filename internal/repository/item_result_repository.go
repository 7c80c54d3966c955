package repository

import (
	"database/sql"
	"fmt"
	"time"
)

type ItemStatus string

const (
	ItemStatusSucceeded ItemStatus = "succeeded"
	ItemStatusSkipped   ItemStatus = "skipped"
	ItemStatusFailed    ItemStatus = "failed"
)

type ItemResult struct {
	ID           int64
	RunID        string
	Step         string
	ObjectType   string
	ObjectName   string
	SourceID     string
	DestID       string
	Status       ItemStatus
	ErrorMessage string
	CreatedAt    time.Time
}

type ItemResultRepository struct {
	db *sql.DB
}

func NewItemResultRepository(db *sql.DB) *ItemResultRepository {
	return &ItemResultRepository{db: db}
}

func (r *ItemResultRepository) Create(result *ItemResult) error {
	query := `
		INSERT INTO item_results (run_id, step, object_type, object_name, source_id, dest_id, status, error_message)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		result.RunID,
		result.Step,
		result.ObjectType,
		result.ObjectName,
		result.SourceID,
		result.DestID,
		result.Status,
		result.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("create item result: %w", err)
	}
	return nil
}

func (r *ItemResultRepository) GetByRunID(runID string) ([]ItemResult, error) {
	query := `
		SELECT id, run_id, step, object_type, object_name, source_id, dest_id, status, error_message, created_at
		FROM item_results
		WHERE run_id = ?
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("get item results: %w", err)
	}
	defer rows.Close()

	var results []ItemResult
	for rows.Next() {
		var result ItemResult
		err := rows.Scan(
			&result.ID,
			&result.RunID,
			&result.Step,
			&result.ObjectType,
			&result.ObjectName,
			&result.SourceID,
			&result.DestID,
			&result.Status,
			&result.ErrorMessage,
			&result.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
