package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lueurxax/scam-shield/internal/core/domain"
)

// GetCyberCellReport returns the most recent official report whose
// related patterns include the hash, or nil when none exists. Callers
// tolerate up to five minutes of ingestion lag.
func (db *DB) GetCyberCellReport(ctx context.Context, patternHash string) (*domain.CyberCellReport, error) {
	var report domain.CyberCellReport

	err := db.Pool.QueryRow(ctx, `
		SELECT id, official_status, related_patterns, public_warning, received_at
		FROM cyber_cell_reports
		WHERE $1 = ANY(related_patterns)
		ORDER BY updated_at DESC
		LIMIT 1
	`, patternHash).Scan(
		&report.ID,
		&report.OfficialStatus,
		&report.RelatedPatterns,
		&report.PublicWarning,
		&report.ReceivedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil //nolint:nilnil // nil,nil indicates no report exists for this pattern
		}

		return nil, wrapErr("get cyber cell report", err)
	}

	return &report, nil
}

// UpsertCyberCellReport writes an official report. This is the external
// ingestion path; the analysis engine itself only reads.
func (db *DB) UpsertCyberCellReport(ctx context.Context, report domain.CyberCellReport) error {
	if report.ID == "" {
		_, err := db.Pool.Exec(ctx, `
			INSERT INTO cyber_cell_reports (official_status, related_patterns, public_warning)
			VALUES ($1, $2, $3)
		`, report.OfficialStatus, report.RelatedPatterns, report.PublicWarning)
		if err != nil {
			return wrapErr("insert cyber cell report", err)
		}

		return nil
	}

	_, err := db.Pool.Exec(ctx, `
		UPDATE cyber_cell_reports
		SET official_status = $2,
			related_patterns = $3,
			public_warning = $4,
			updated_at = now()
		WHERE id = $1
	`, toUUID(report.ID), report.OfficialStatus, report.RelatedPatterns, report.PublicWarning)
	if err != nil {
		return wrapErr("update cyber cell report", err)
	}

	return nil
}
