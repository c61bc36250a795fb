package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"bountyhunter/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const pgUniqueViolation = "23505"

type user struct {
	ID            int64     `db:"id"`
	WalletAddress string    `db:"wallet_address"`
	Username      string    `db:"username"`
	ReferralCode  string    `db:"referral_code"`
	Points        int       `db:"points"`
	IsAdmin       bool      `db:"is_admin"`
	CreatedAt     time.Time `db:"created_at"`
	LastSeenAt    time.Time `db:"last_seen_at"`
}

func (u *user) toModel() *model.User {
	return &model.User{
		ID:            u.ID,
		WalletAddress: u.WalletAddress,
		Username:      u.Username,
		ReferralCode:  u.ReferralCode,
		Points:        u.Points,
		IsAdmin:       u.IsAdmin,
		CreatedAt:     u.CreatedAt,
		LastSeenAt:    u.LastSeenAt,
	}
}

func (r *Repository) CreateUser(ctx context.Context, u *model.User) error {
	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"wallet_address": u.WalletAddress,
			"username":       u.Username,
			"referral_code":  u.ReferralCode,
			"points":         u.Points,
			"created_at":     u.CreatedAt,
			"last_seen_at":   u.LastSeenAt,
		}).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build user insert query: %w", err)
	}

	err = r.db.QueryRowxContext(ctx, query, args...).Scan(&u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation &&
			strings.Contains(pgErr.ConstraintName, "referral_code") {
			return ErrReferralCodeTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *Repository) getUserWhere(ctx context.Context, pred squirrel.Eq) (*model.User, error) {
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(pred).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var u user
	err = r.db.GetContext(ctx, &u, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return u.toModel(), nil
}

func (r *Repository) GetUserByWallet(ctx context.Context, walletAddress string) (*model.User, error) {
	return r.getUserWhere(ctx, squirrel.Eq{"wallet_address": walletAddress})
}

func (r *Repository) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	return r.getUserWhere(ctx, squirrel.Eq{"id": userID})
}

func (r *Repository) GetUserByReferralCode(ctx context.Context, code string) (*model.User, error) {
	return r.getUserWhere(ctx, squirrel.Eq{"referral_code": code})
}

func (r *Repository) TouchLastSeen(ctx context.Context, userID int64, seenAt time.Time) error {
	query, args, err := squirrel.
		Update("users").
		Set("last_seen_at", seenAt).
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *Repository) UpdateUsername(ctx context.Context, userID int64, username string) error {
	query, args, err := squirrel.
		Update("users").
		Set("username", username).
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// incrementPointsTx adds points to a single user, no kickback.
func (r *Repository) incrementPointsTx(ctx context.Context, tx *sqlx.Tx, userID int64, points int) error {
	query, args, err := squirrel.
		Update("users").
		Set("points", squirrel.Expr("points + ?", points)).
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// updateUserPointsTx adds points and streams a 10% kickback to the user's
// referrer, if any.
func (r *Repository) updateUserPointsTx(ctx context.Context, tx *sqlx.Tx, userID int64, points int) error {
	if err := r.incrementPointsTx(ctx, tx, userID, points); err != nil {
		return err
	}

	referrerQuery, referrerArgs, err := squirrel.
		Select("referrer_id").
		From("referral_tracking").
		Where(squirrel.Eq{"referee_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	var referrerID int64
	err = tx.GetContext(ctx, &referrerID, referrerQuery, referrerArgs...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	kickback := int(math.Ceil(float64(points) * 0.1))
	return r.incrementPointsTx(ctx, tx, referrerID, kickback)
}

func (r *Repository) UpdateUserPoints(ctx context.Context, userID int64, points int) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		return r.updateUserPointsTx(ctx, tx, userID, points)
	})
}

type leaderboardRow struct {
	Rank          int    `db:"rank"`
	Username      string `db:"username"`
	WalletAddress string `db:"wallet_address"`
	Points        int    `db:"points"`
	Referrals     int    `db:"referrals"`
}

func (r *Repository) GetTopUsers(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	query, args, err := squirrel.
		Select(
			"dense_rank() OVER (ORDER BY u.points DESC) AS rank",
			"u.username",
			"u.wallet_address",
			"u.points",
			"count(rt.referee_id) AS referrals",
		).
		From("users u").
		LeftJoin("referral_tracking rt ON rt.referrer_id = u.id").
		GroupBy("u.id").
		OrderBy("u.points DESC", "u.created_at ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []leaderboardRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}

	entries := make([]*model.LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = &model.LeaderboardEntry{
			Rank:          row.Rank,
			Username:      row.Username,
			WalletAddress: row.WalletAddress,
			Points:        row.Points,
			Referrals:     row.Referrals,
		}
	}

	return entries, nil
}

func (r *Repository) GetUserRank(ctx context.Context, userID int64) (*model.UserRank, error) {
	user, err := r.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	rank := &model.UserRank{
		UserID: userID,
		Points: user.Points,
	}

	err = r.Transaction(ctx, func(tx *sqlx.Tx) error {
		rankQuery, rankArgs, err := squirrel.
			Select("count(DISTINCT points) + 1").
			From("users").
			Where(squirrel.Gt{"points": user.Points}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		if err := tx.GetContext(ctx, &rank.Rank, rankQuery, rankArgs...); err != nil {
			return err
		}

		totalQuery, totalArgs, err := squirrel.
			Select("count(*)").
			From("users").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		return tx.GetContext(ctx, &rank.TotalUsers, totalQuery, totalArgs...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user rank: %w", err)
	}

	if rank.TotalUsers > 0 {
		rank.Percentile = float64(rank.Rank) / float64(rank.TotalUsers) * 100
	}

	return rank, nil
}

func (r *Repository) GetProgramStats(ctx context.Context) (*model.ProgramStats, error) {
	stats := &model.ProgramStats{}

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		usersQuery, _, err := squirrel.
			Select("count(*)", "coalesce(sum(points), 0)").
			From("users").
			ToSql()
		if err != nil {
			return err
		}
		row := tx.QueryRowxContext(ctx, usersQuery)
		if err := row.Scan(&stats.TotalUsers, &stats.TotalPointsAwarded); err != nil {
			return err
		}

		tasksQuery, tasksArgs, err := squirrel.
			Select("count(*)").
			From("user_tasks").
			Where(squirrel.Eq{"status": model.TaskCompleted}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		if err := tx.GetContext(ctx, &stats.CompletedTasks, tasksQuery, tasksArgs...); err != nil {
			return err
		}

		referralsQuery, referralsArgs, err := squirrel.
			Select("count(*)").
			From("referral_tracking").
			Where(squirrel.Eq{"status": model.ReferralStatusCompleted}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		return tx.GetContext(ctx, &stats.CompletedReferrals, referralsQuery, referralsArgs...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get program stats: %w", err)
	}

	return stats, nil
}

// GetCompletedTaskIDs returns the ids of every task the user has finished,
// oldest first.
func (r *Repository) GetCompletedTaskIDs(ctx context.Context, userID int64) ([]string, error) {
	query, args, err := squirrel.
		Select("coalesce(array_agg(task_id ORDER BY completed_at), '{}') AS task_ids").
		From("user_tasks").
		Where(squirrel.Eq{
			"user_id": userID,
			"status":  model.TaskCompleted,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var taskIDs pq.StringArray
	err = r.db.GetContext(ctx, &taskIDs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed task ids: %w", err)
	}

	return []string(taskIDs), nil
}
