package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/backdesk/backdesk/internal/domain"
)

type challengesRepo struct {
	db dbtx
}

func (r *challengesRepo) CreateChallenge(ctx context.Context, c domain.Challenge) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO challenges (id, user_id, proof, key_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Proof, c.KeyID, c.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *challengesRepo) GetChallenge(ctx context.Context, id string) (domain.Challenge, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, proof, key_id, created_at, consumed_at, outcome
		FROM challenges WHERE id = ?`, id)

	var (
		c          domain.Challenge
		consumedAt sql.NullTime
		outcome    sql.NullInt64
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Proof, &c.KeyID, &c.CreatedAt, &consumedAt, &outcome)
	if err != nil {
		return domain.Challenge{}, mapNotFound(err)
	}

	c.ConsumedAt = mapNullTimePtr(consumedAt)
	if outcome.Valid {
		o := domain.Outcome(outcome.Int64)
		c.Outcome = &o
	}

	return c, nil
}

// ConsumeChallenge is the single point where a challenge transitions from open
// to consumed. The WHERE clause makes the transition conditional, so when
// several verifies race only the first sees rows-affected = 1.
func (r *challengesRepo) ConsumeChallenge(
	ctx context.Context,
	id string,
	outcome domain.Outcome,
	at time.Time,
) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE challenges SET consumed_at = ?, outcome = ?
		WHERE id = ? AND consumed_at IS NULL`,
		at.UTC(), int64(outcome), id,
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *challengesRepo) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM challenges WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
