package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/raphaelgruber/mailbrief/internal/db"
	"github.com/raphaelgruber/mailbrief/internal/models"
)

// TodoService handles user-scoped todo CRUD.
type TodoService struct {
	db     *db.Client
	logger *slog.Logger
}

// NewTodoService creates a todo service.
func NewTodoService(database *db.Client, logger *slog.Logger) *TodoService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TodoService{db: database, logger: logger}
}

// Create stores a manually created todo (not tied to an analysis).
func (s *TodoService) Create(ctx context.Context, userID string, in models.TodoInput) (*models.Todo, error) {
	if in.Description == "" {
		return nil, fmt.Errorf("create todo: empty description")
	}
	return s.db.QueryCreateTodo(ctx, uuid.NewString(), userID, "", "",
		in.Description, in.Assignee, in.Priority, nil)
}

// List returns the user's todos, incomplete first.
func (s *TodoService) List(ctx context.Context, userID string) ([]models.Todo, error) {
	return s.db.QueryListTodos(ctx, userID)
}

// SetCompleted toggles a todo's completion state.
func (s *TodoService) SetCompleted(ctx context.Context, userID, id string, completed bool) (*models.Todo, error) {
	return s.db.QuerySetTodoCompleted(ctx, id, userID, completed)
}

// Delete removes a todo. Missing todos are not an error.
func (s *TodoService) Delete(ctx context.Context, userID, id string) error {
	_, err := s.db.QueryDeleteTodo(ctx, id, userID)
	return err
}
