package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lueurxax/scam-shield/internal/core/domain"
)

const secondsPerTTLUnit = time.Second

// GetDomainTrust returns the stored trust record for a domain, or nil
// when the record is missing or has outlived its TTL. Stale rows are
// left in place; a fresh lookup overwrites them last-write-wins.
func (db *DB) GetDomainTrust(ctx context.Context, domainName string) (*domain.DomainTrustRecord, error) {
	var (
		rec        domain.DomainTrustRecord
		tier       string
		ttlSeconds int64
	)

	err := db.Pool.QueryRow(ctx, `
		SELECT domain, trust_score, reputation_tier, last_checked, ttl_seconds
		FROM domain_trust_records
		WHERE domain = $1
	`, domainName).Scan(&rec.Domain, &rec.TrustScore, &tier, &rec.LastChecked, &ttlSeconds)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil //nolint:nilnil // nil,nil indicates no cached record
		}

		return nil, wrapErr("get domain trust", err)
	}

	rec.ReputationTier = domain.ReputationTier(tier)
	rec.TTL = time.Duration(ttlSeconds) * secondsPerTTLUnit

	if rec.Stale(time.Now()) {
		return nil, nil //nolint:nilnil // stale record treated as a miss
	}

	return &rec, nil
}

// PutDomainTrust stores a trust record with its TTL, last write wins.
func (db *DB) PutDomainTrust(ctx context.Context, rec domain.DomainTrustRecord) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO domain_trust_records (domain, trust_score, reputation_tier, last_checked, ttl_seconds)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (domain) DO UPDATE SET
			trust_score = EXCLUDED.trust_score,
			reputation_tier = EXCLUDED.reputation_tier,
			last_checked = EXCLUDED.last_checked,
			ttl_seconds = EXCLUDED.ttl_seconds
	`, rec.Domain, rec.TrustScore, string(rec.ReputationTier), rec.LastChecked, int64(rec.TTL/secondsPerTTLUnit))
	if err != nil {
		return wrapErr("put domain trust", err)
	}

	return nil
}
