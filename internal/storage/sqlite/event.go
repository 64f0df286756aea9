package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/influence-hub/community-bot/internal/model"
)

type EventStorage struct {
	db *sql.DB
}

func NewEventStorage(db *sql.DB) *EventStorage {
	return &EventStorage{db: db}
}

func (s *EventStorage) CreateEvent(ctx context.Context, event *model.Event) error {
	const query = `INSERT INTO events (title, description, event_date, user_id) VALUES (?, ?, ?, ?)`

	var userID sql.NullInt64
	if event.UserID != 0 {
		userID.Int64 = int64(event.UserID)
		userID.Valid = true
	}

	result, err := s.db.ExecContext(ctx, query, event.Title, event.Description, event.EventDate, userID)
	if err != nil {
		return fmt.Errorf("could not create event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get last insert id: %w", err)
	}
	event.ID = int(id)
	return nil
}

func (s *EventStorage) FetchUpcomingEvents(ctx context.Context, after time.Time, limit int) ([]model.Event, error) {
	const query = `
		SELECT id, title, description, event_date, COALESCE(user_id, 0), created_at
		FROM events
		WHERE event_date >= ?
		ORDER BY event_date ASC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, after, limit)
	if err != nil {
		return nil, fmt.Errorf("could not fetch events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var event model.Event
		err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Description,
			&event.EventDate,
			&event.UserID,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("could not scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate events: %w", err)
	}
	return events, nil
}
