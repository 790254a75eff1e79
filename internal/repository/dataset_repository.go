package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jengzang/epidash-backend-go/internal/database"
	"github.com/jengzang/epidash-backend-go/internal/models"
)

// DatasetRepository stores the raw rows of uploaded datasets for the
// paged data tables
type DatasetRepository struct {
	db *sql.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sql.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

// SaveDataset stores the rows of a dataset, replacing any previous rows
// stored under the same ID
func (r *DatasetRepository) SaveDataset(ctx context.Context, id string, ts []models.TimeseriesRecord, ob []models.OutbreakRecord) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		if err := deleteDataset(ctx, tx, id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO datasets (id, timeseries_rows, outbreak_rows) VALUES (?, ?, ?)",
			id, len(ts), len(ob)); err != nil {
			return fmt.Errorf("failed to insert dataset: %w", err)
		}

		tsStmt, err := tx.PrepareContext(ctx, `INSERT INTO timeseries_rows
			(dataset_id, row_num, iso_code, location, date, year, total_cases, total_deaths, population)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare timeseries insert: %w", err)
		}
		defer tsStmt.Close()

		for i, rec := range ts {
			_, err := tsStmt.ExecContext(ctx, id, i, rec.ISOCode, rec.Location,
				rec.Date.Format(time.RFC3339), rec.Year(), rec.TotalCases,
				nullFloat(rec.TotalDeaths), nullFloat(rec.Population))
			if err != nil {
				return fmt.Errorf("failed to insert timeseries row %d: %w", i, err)
			}
		}

		obStmt, err := tx.PrepareContext(ctx, `INSERT INTO outbreak_rows
			(dataset_id, row_num, year, country, cases, deaths)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare outbreak insert: %w", err)
		}
		defer obStmt.Close()

		for i, rec := range ob {
			if _, err := obStmt.ExecContext(ctx, id, i, rec.Year, rec.Country, rec.Cases, rec.Deaths); err != nil {
				return fmt.Errorf("failed to insert outbreak row %d: %w", i, err)
			}
		}

		return nil
	})
}

// DeleteDataset removes a dataset and its rows. It reports whether the
// dataset existed.
func (r *DatasetRepository) DeleteDataset(ctx context.Context, id string) (bool, error) {
	var existed bool
	err := database.Transaction(r.db, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM datasets WHERE id = ?", id).Scan(&n); err != nil {
			return fmt.Errorf("failed to look up dataset: %w", err)
		}
		existed = n > 0
		return deleteDataset(ctx, tx, id)
	})
	return existed, err
}

func deleteDataset(ctx context.Context, tx *sql.Tx, id string) error {
	for _, table := range []string{"timeseries_rows", "outbreak_rows"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE dataset_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM datasets WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	return nil
}

// ListOutbreakRows retrieves outbreak rows in file order with filtering and pagination
func (r *DatasetRepository) ListOutbreakRows(ctx context.Context, id string, filter models.RowFilter) ([]models.OutbreakRecord, int64, error) {
	filter.Normalize()

	conditions := []string{"dataset_id = ?"}
	args := []interface{}{id}
	if filter.Country != "" {
		conditions = append(conditions, "country = ?")
		args = append(args, filter.Country)
	}
	if filter.Year > 0 {
		conditions = append(conditions, "year = ?")
		args = append(args, filter.Year)
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM outbreak_rows"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count outbreak rows: %w", err)
	}

	query := "SELECT year, country, cases, deaths FROM outbreak_rows" + where +
		" ORDER BY row_num LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, filter.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query outbreak rows: %w", err)
	}
	defer rows.Close()

	out := []models.OutbreakRecord{}
	for rows.Next() {
		var rec models.OutbreakRecord
		if err := rows.Scan(&rec.Year, &rec.Country, &rec.Cases, &rec.Deaths); err != nil {
			return nil, 0, fmt.Errorf("failed to scan outbreak row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read outbreak rows: %w", err)
	}

	return out, total, nil
}

// ListTimeseriesRows retrieves timeseries rows in file order with filtering and pagination
func (r *DatasetRepository) ListTimeseriesRows(ctx context.Context, id string, filter models.RowFilter) ([]models.TimeseriesRecord, int64, error) {
	filter.Normalize()

	conditions := []string{"dataset_id = ?"}
	args := []interface{}{id}
	if filter.Location != "" {
		conditions = append(conditions, "location = ?")
		args = append(args, filter.Location)
	}
	if filter.Year > 0 {
		conditions = append(conditions, "year = ?")
		args = append(args, filter.Year)
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM timeseries_rows"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count timeseries rows: %w", err)
	}

	query := `SELECT iso_code, location, date, total_cases, total_deaths, population
		FROM timeseries_rows` + where + " ORDER BY row_num LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, filter.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query timeseries rows: %w", err)
	}
	defer rows.Close()

	out := []models.TimeseriesRecord{}
	for rows.Next() {
		var (
			rec                models.TimeseriesRecord
			date               string
			deaths, population sql.NullFloat64
		)
		if err := rows.Scan(&rec.ISOCode, &rec.Location, &date, &rec.TotalCases, &deaths, &population); err != nil {
			return nil, 0, fmt.Errorf("failed to scan timeseries row: %w", err)
		}
		rec.Date, err = time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to parse stored date %q: %w", date, err)
		}
		rec.TotalDeaths = floatPtr(deaths)
		rec.Population = floatPtr(population)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read timeseries rows: %w", err)
	}

	return out, total, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
