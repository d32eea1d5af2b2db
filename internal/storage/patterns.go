package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lueurxax/scam-shield/internal/core/domain"
)

// GetPatterns returns active and historical patterns matching the
// fingerprint within the district, newest first.
func (db *DB) GetPatterns(ctx context.Context, patternHash, district string) ([]domain.ScamPattern, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, pattern_hash, district, scam_type, language,
		       first_seen, last_seen, report_count, status, severity, expires_at
		FROM scam_patterns
		WHERE pattern_hash = $1 AND district = $2
		  AND (expires_at IS NULL OR expires_at > now())
		ORDER BY last_seen DESC
	`, patternHash, district)
	if err != nil {
		return nil, wrapErr("query patterns", err)
	}
	defer rows.Close()

	return scanPatterns(rows)
}

// UpsertPattern records one more observation of a pattern in a district.
// A new row starts with report_count 1; an existing row is bumped and its
// last_seen refreshed. Status is never moved back from historical here.
func (db *DB) UpsertPattern(ctx context.Context, p domain.ScamPattern) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO scam_patterns
			(pattern_hash, district, scam_type, language, first_seen, last_seen,
			 report_count, status, severity, expires_at)
		VALUES ($1, $2, $3, $4, now(), now(), 1, $5, $6, $7)
		ON CONFLICT (pattern_hash, district) DO UPDATE SET
			report_count = scam_patterns.report_count + 1,
			last_seen = now(),
			severity = EXCLUDED.severity,
			expires_at = EXCLUDED.expires_at
	`, p.PatternHash, p.District, string(p.ScamType), p.Language,
		domain.PatternStatusActive, p.Severity, p.ExpiresAt)
	if err != nil {
		return wrapErr("upsert pattern", err)
	}

	return nil
}

// MarkInactive transitions all district rows for the hash from active to
// historical. Rows are retained until expiry TTL; nothing is deleted.
func (db *DB) MarkInactive(ctx context.Context, patternHash string) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE scam_patterns
		SET status = $2
		WHERE pattern_hash = $1 AND status = $3
	`, patternHash, domain.PatternStatusHistorical, domain.PatternStatusActive)
	if err != nil {
		return wrapErr("mark pattern inactive", err)
	}

	return nil
}

// QueryTrend returns the total report count for a district since the
// given time, across all patterns.
func (db *DB) QueryTrend(ctx context.Context, district string, since time.Time) (int, error) {
	var count int

	err := db.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(report_count), 0)
		FROM scam_patterns
		WHERE district = $1 AND last_seen >= $2
	`, district, since).Scan(&count)
	if err != nil {
		return 0, wrapErr("query trend", err)
	}

	return count, nil
}

// MarkStaleInactive ages active rows not seen since the cutoff to
// historical. Returns the number of rows transitioned.
func (db *DB) MarkStaleInactive(ctx context.Context, lastSeenBefore time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE scam_patterns
		SET status = $2
		WHERE status = $3 AND last_seen < $1
	`, lastSeenBefore, domain.PatternStatusHistorical, domain.PatternStatusActive)
	if err != nil {
		return 0, wrapErr("mark stale patterns inactive", err)
	}

	return tag.RowsAffected(), nil
}

// ExpirePatterns removes rows whose expiry TTL has passed. This is the
// only path that deletes pattern rows.
func (db *DB) ExpirePatterns(ctx context.Context, before time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM scam_patterns
		WHERE expires_at IS NOT NULL AND expires_at <= $1
	`, before)
	if err != nil {
		return 0, wrapErr("expire patterns", err)
	}

	return tag.RowsAffected(), nil
}

func scanPatterns(rows pgx.Rows) ([]domain.ScamPattern, error) {
	var patterns []domain.ScamPattern

	for rows.Next() {
		var (
			p         domain.ScamPattern
			scamType  string
			expiresAt *time.Time
		)

		if err := rows.Scan(&p.ID, &p.PatternHash, &p.District, &scamType, &p.Language,
			&p.FirstSeen, &p.LastSeen, &p.ReportCount, &p.Status, &p.Severity, &expiresAt); err != nil {
			return nil, wrapErr("scan pattern", err)
		}

		p.ScamType = domain.ScamType(scamType)
		p.ExpiresAt = expiresAt
		patterns = append(patterns, p)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate patterns", err)
	}

	return patterns, nil
}
