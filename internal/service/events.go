package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/raphaelgruber/mailbrief/internal/db"
	"github.com/raphaelgruber/mailbrief/internal/models"
)

// EventService handles user-scoped calendar event CRUD.
type EventService struct {
	db     *db.Client
	logger *slog.Logger
}

// NewEventService creates an event service.
func NewEventService(database *db.Client, logger *slog.Logger) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{db: database, logger: logger}
}

// Create stores a manually created event.
func (s *EventService) Create(ctx context.Context, userID string, in models.EventInput) (*models.CalendarEvent, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("create event: empty title")
	}
	if in.EndTime.Before(in.StartTime) {
		return nil, fmt.Errorf("create event: end before start")
	}
	return s.db.QueryCreateEvent(ctx, uuid.NewString(), userID, "", "", in, "manual", "")
}

// List returns events overlapping the optional [from, to) range, RFC 3339
// strings, ordered by start time.
func (s *EventService) List(ctx context.Context, userID string, from, to *string) ([]models.CalendarEvent, error) {
	return s.db.QueryListEvents(ctx, userID, from, to)
}

// Update replaces the user-editable fields of an event.
func (s *EventService) Update(ctx context.Context, userID, id string, in models.EventInput) (*models.CalendarEvent, error) {
	if in.EndTime.Before(in.StartTime) {
		return nil, fmt.Errorf("update event: end before start")
	}
	return s.db.QueryUpdateEvent(ctx, id, userID, in)
}

// Delete removes an event. Missing events are not an error.
func (s *EventService) Delete(ctx context.Context, userID, id string) error {
	_, err := s.db.QueryDeleteEvent(ctx, id, userID)
	return err
}
