package model

import (
	"context"
	"errors"
	"time"
)

type Event struct {
	ID          int
	Title       string
	Description string
	EventDate   time.Time
	UserID      int
	CreatedAt   time.Time
}

var ErrEventNotFound = errors.New("event not found")

type EventRepository interface {
	CreateEvent(ctx context.Context, event *Event) error
	FetchUpcomingEvents(ctx context.Context, after time.Time, limit int) ([]Event, error)
}
