package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/findmypet/internal/core/domain"
)

// WatcherRepo implements ports.WatcherRepository and ports.WatcherWriter
// over the users table.
type WatcherRepo struct {
	db *DB
}

// NewWatcherRepo creates a new WatcherRepo.
func NewWatcherRepo(db *DB) *WatcherRepo {
	return &WatcherRepo{db: db}
}

// FindInBox returns opted-in users whose notification centre lies in box.
func (r *WatcherRepo) FindInBox(ctx context.Context, box domain.BoundingBox) ([]domain.Watcher, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, full_name, firebase_token,
		       notification_lat, notification_lng, notification_radius_km
		FROM users
		WHERE receive_notifications
		  AND firebase_token IS NOT NULL AND firebase_token <> ''
		  AND notification_radius_km IS NOT NULL
		  AND notification_lat BETWEEN $1 AND $2
		  AND notification_lng BETWEEN $3 AND $4
		ORDER BY id
	`, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
	if err != nil {
		return nil, fmt.Errorf("query watchers: %w", err)
	}

	watchers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Watcher, error) {
		var w domain.Watcher
		err := row.Scan(&w.UserID, &w.FullName, &w.PushToken, &w.Center.Lat, &w.Center.Lng, &w.RadiusKm)
		return w, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan watchers: %w", err)
	}
	return watchers, nil
}

// SaveWatcher inserts a user with a notification area. An empty push token
// is stored as NULL, which keeps the user out of FindInBox.
func (r *WatcherRepo) SaveWatcher(ctx context.Context, w *domain.Watcher) error {
	var token *string
	if w.PushToken != "" {
		token = &w.PushToken
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO users (full_name, firebase_token, notification_lat, notification_lng, notification_radius_km)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, w.FullName, token, w.Center.Lat, w.Center.Lng, w.RadiusKm).Scan(&w.UserID)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}
