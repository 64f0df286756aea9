package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/influence-hub/community-bot/internal/model"
)

type EventService struct {
	users  model.UserRepository
	events model.EventRepository

	now func() time.Time
}

func NewEventService(users model.UserRepository, events model.EventRepository) *EventService {
	return &EventService{
		users:  users,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *EventService) Create(ctx context.Context, title, description string, date time.Time, creatorTgID int64) (*model.Event, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("event title is required")
	}

	event := &model.Event{
		Title:       title,
		Description: strings.TrimSpace(description),
		EventDate:   date,
	}
	// An unknown creator is tolerated, the event is stored without one.
	if creator, err := s.users.FetchUserByTgID(ctx, creatorTgID); err == nil {
		event.UserID = creator.ID
	}

	if err := s.events.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) Upcoming(ctx context.Context, limit int) ([]model.Event, error) {
	return s.events.FetchUpcomingEvents(ctx, s.now(), limit)
}
