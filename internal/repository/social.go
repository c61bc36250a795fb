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

type socialConnection struct {
	ID               string    `db:"id"`
	UserID           int64     `db:"user_id"`
	Platform         string    `db:"platform"`
	PlatformUserID   string    `db:"platform_user_id"`
	PlatformUsername string    `db:"platform_username"`
	IsActive         bool      `db:"is_active"`
	ConnectedAt      time.Time `db:"connected_at"`
}

func (c *socialConnection) toModel() (*model.SocialConnection, error) {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection id: %w", err)
	}

	return &model.SocialConnection{
		ID:               id,
		UserID:           c.UserID,
		Platform:         model.SocialPlatform(c.Platform),
		PlatformUserID:   c.PlatformUserID,
		PlatformUsername: c.PlatformUsername,
		IsActive:         c.IsActive,
		ConnectedAt:      c.ConnectedAt,
	}, nil
}

// UpsertConnection deactivates any previous connection the user holds on the
// platform and inserts the new one. A platform account active on another
// user causes ErrConnectionTaken.
func (r *Repository) UpsertConnection(ctx context.Context, conn *model.SocialConnection) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		takenQuery, takenArgs, err := squirrel.
			Select("count(*)").
			From("social_connections").
			Where(squirrel.Eq{
				"platform":         conn.Platform,
				"platform_user_id": conn.PlatformUserID,
				"is_active":        true,
			}).
			Where(squirrel.NotEq{"user_id": conn.UserID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		var taken int
		if err := tx.GetContext(ctx, &taken, takenQuery, takenArgs...); err != nil {
			return err
		}
		if taken > 0 {
			return ErrConnectionTaken
		}

		deactivateQuery, deactivateArgs, err := squirrel.
			Update("social_connections").
			Set("is_active", false).
			Where(squirrel.Eq{
				"user_id":   conn.UserID,
				"platform":  conn.Platform,
				"is_active": true,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, deactivateQuery, deactivateArgs...); err != nil {
			return fmt.Errorf("failed to deactivate previous connection: %w", err)
		}

		insertQuery, insertArgs, err := squirrel.
			Insert("social_connections").
			SetMap(map[string]interface{}{
				"id":                conn.ID,
				"user_id":           conn.UserID,
				"platform":          conn.Platform,
				"platform_user_id":  conn.PlatformUserID,
				"platform_username": conn.PlatformUsername,
				"is_active":         conn.IsActive,
				"connected_at":      conn.ConnectedAt,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build connection insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, insertQuery, insertArgs...)
		if err != nil {
			return fmt.Errorf("failed to insert connection: %w", err)
		}

		return nil
	})
}

func (r *Repository) DeactivateConnection(ctx context.Context, userID int64, platform model.SocialPlatform) error {
	query, args, err := squirrel.
		Update("social_connections").
		Set("is_active", false).
		Where(squirrel.Eq{
			"user_id":   userID,
			"platform":  platform,
			"is_active": true,
		}).
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

func (r *Repository) GetConnections(ctx context.Context, userID int64) ([]*model.SocialConnection, error) {
	query, args, err := squirrel.
		Select("*").
		From("social_connections").
		Where(squirrel.Eq{
			"user_id":   userID,
			"is_active": true,
		}).
		OrderBy("connected_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []*socialConnection
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get connections: %w", err)
	}

	conns := make([]*model.SocialConnection, 0, len(rows))
	for _, row := range rows {
		conn, err := row.toModel()
		if err != nil {
			return nil, err
		}
		conns = append(conns, conn)
	}

	return conns, nil
}

func (r *Repository) GetActiveConnection(ctx context.Context, userID int64, platform model.SocialPlatform) (*model.SocialConnection, error) {
	query, args, err := squirrel.
		Select("*").
		From("social_connections").
		Where(squirrel.Eq{
			"user_id":   userID,
			"platform":  platform,
			"is_active": true,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row socialConnection
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return row.toModel()
}
