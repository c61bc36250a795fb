package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bountyhunter/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type referralTracking struct {
	ID             string     `db:"id"`
	ReferrerID     int64      `db:"referrer_id"`
	RefereeID      int64      `db:"referee_id"`
	CodeUsed       string     `db:"code_used"`
	Status         string     `db:"status"`
	ReferrerPoints int        `db:"referrer_points"`
	RefereePoints  int        `db:"referee_points"`
	CreatedAt      time.Time  `db:"created_at"`
	CompletedAt    *time.Time `db:"completed_at"`
}

// CreateReferral records a pending referrer->referee edge and pays the
// referee welcome bonus in the same transaction.
func (r *Repository) CreateReferral(ctx context.Context, ref *model.ReferralTracking) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		existsQuery, existsArgs, err := squirrel.
			Select("count(*)").
			From("referral_tracking").
			Where(squirrel.Eq{"referee_id": ref.RefereeID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		var existing int
		if err := tx.GetContext(ctx, &existing, existsQuery, existsArgs...); err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyReferred
		}

		query, args, err := squirrel.
			Insert("referral_tracking").
			SetMap(map[string]interface{}{
				"id":              ref.ID,
				"referrer_id":     ref.ReferrerID,
				"referee_id":      ref.RefereeID,
				"code_used":       ref.CodeUsed,
				"status":          ref.Status,
				"referrer_points": ref.ReferrerPoints,
				"referee_points":  ref.RefereePoints,
				"created_at":      ref.CreatedAt,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build referral insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert referral: %w", err)
		}

		if ref.RefereePoints > 0 {
			if err := r.incrementPointsTx(ctx, tx, ref.RefereeID, ref.RefereePoints); err != nil {
				return fmt.Errorf("failed to pay referee bonus: %w", err)
			}
		}

		return nil
	})
}

func (r *Repository) GetReferralByReferee(ctx context.Context, refereeID int64) (*model.ReferralTracking, error) {
	query, args, err := squirrel.
		Select("*").
		From("referral_tracking").
		Where(squirrel.Eq{"referee_id": refereeID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row referralTracking
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return rowToReferral(&row)
}

// CompleteReferral flips a pending edge to completed and pays the referrer
// bonus. Completing an already completed edge is a no-op.
func (r *Repository) CompleteReferral(ctx context.Context, refereeID int64, referrerBonus int, completedAt time.Time) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Update("referral_tracking").
			Set("status", model.ReferralStatusCompleted).
			Set("completed_at", completedAt).
			Set("referrer_points", squirrel.Expr("referrer_points + ?", referrerBonus)).
			Where(squirrel.Eq{
				"referee_id": refereeID,
				"status":     model.ReferralStatusPending,
			}).
			Suffix("RETURNING referrer_id").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		var referrerID int64
		err = tx.QueryRowxContext(ctx, query, args...).Scan(&referrerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to complete referral: %w", err)
		}

		return r.incrementPointsTx(ctx, tx, referrerID, referrerBonus)
	})
}

type refereeSummary struct {
	Username      string    `db:"username"`
	WalletAddress string    `db:"wallet_address"`
	Status        string    `db:"status"`
	PointsEarned  int       `db:"points_earned"`
	JoinedAt      time.Time `db:"created_at"`
}

func (r *Repository) GetReferralsByReferrer(ctx context.Context, referrerID int64) ([]*model.RefereeSummary, error) {
	query, args, err := squirrel.
		Select(
			"u.username",
			"u.wallet_address",
			"rt.status",
			"rt.referrer_points AS points_earned",
			"rt.created_at",
		).
		From("referral_tracking rt").
		Join("users u ON u.id = rt.referee_id").
		Where(squirrel.Eq{"rt.referrer_id": referrerID}).
		OrderBy("rt.created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []*refereeSummary
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get referrals: %w", err)
	}

	referees := make([]*model.RefereeSummary, len(rows))
	for i, row := range rows {
		referees[i] = &model.RefereeSummary{
			Username:      row.Username,
			WalletAddress: row.WalletAddress,
			Status:        model.ReferralStatus(row.Status),
			PointsEarned:  row.PointsEarned,
			JoinedAt:      row.JoinedAt,
		}
	}

	return referees, nil
}

type referralStats struct {
	Total        int `db:"total"`
	Pending      int `db:"pending"`
	Completed    int `db:"completed"`
	PointsEarned int `db:"points_earned"`
}

func (r *Repository) GetReferralStats(ctx context.Context, referrerID int64) (*model.ReferralStats, error) {
	query, args, err := squirrel.
		Select(
			"count(*) AS total",
			"count(*) FILTER (WHERE status = 'pending') AS pending",
			"count(*) FILTER (WHERE status = 'completed') AS completed",
			"coalesce(sum(referrer_points), 0) AS points_earned",
		).
		From("referral_tracking").
		Where(squirrel.Eq{"referrer_id": referrerID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row referralStats
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get referral stats: %w", err)
	}

	return &model.ReferralStats{
		TotalReferrals:     row.Total,
		PendingReferrals:   row.Pending,
		CompletedReferrals: row.Completed,
		PointsEarned:       row.PointsEarned,
	}, nil
}

func rowToReferral(row *referralTracking) (*model.ReferralTracking, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse referral id: %w", err)
	}

	return &model.ReferralTracking{
		ID:             id,
		ReferrerID:     row.ReferrerID,
		RefereeID:      row.RefereeID,
		CodeUsed:       row.CodeUsed,
		Status:         model.ReferralStatus(row.Status),
		ReferrerPoints: row.ReferrerPoints,
		RefereePoints:  row.RefereePoints,
		CreatedAt:      row.CreatedAt,
		CompletedAt:    row.CompletedAt,
	}, nil
}
