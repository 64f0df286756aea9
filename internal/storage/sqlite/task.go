package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/influence-hub/community-bot/internal/model"
)

type TaskStorage struct {
	db *sql.DB
}

func NewTaskStorage(db *sql.DB) *TaskStorage {
	return &TaskStorage{db: db}
}

func (s *TaskStorage) CreateTask(ctx context.Context, task *model.Task) error {
	const query = `
		INSERT INTO tasks (title, description, difficulty, reward_coins, deadline_hours, is_published, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		string(task.Difficulty),
		task.RewardCoins,
		int(task.Deadline/time.Hour),
		task.IsPublished,
		string(task.Status),
	)
	if err != nil {
		return fmt.Errorf("could not create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get last insert id: %w", err)
	}

	task.ID = int(id)
	return nil
}

func (s *TaskStorage) GetTaskByID(ctx context.Context, id int) (*model.Task, error) {
	const query = `
		SELECT id, title, description, difficulty, reward_coins, deadline_hours, is_published, status
		FROM tasks
		WHERE id = ?
	`
	var task model.Task
	var difficulty, status string
	var deadlineHours int
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&difficulty,
		&task.RewardCoins,
		&deadlineHours,
		&task.IsPublished,
		&status,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrTaskNotFound
		}
		return nil, fmt.Errorf("could not get task: %w", err)
	}
	task.Difficulty = model.TaskDifficulty(difficulty)
	task.Status = model.TaskStatus(status)
	task.Deadline = time.Duration(deadlineHours) * time.Hour
	return &task, nil
}

func (s *TaskStorage) FilterTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	query := `
		SELECT id, title, description, difficulty, reward_coins, deadline_hours, is_published, status
		FROM tasks
		WHERE status = 'active'
	`
	args := []any{}

	if filter.OnlyPublished {
		query += " AND is_published = 1"
	}
	if filter.Difficulty != "" {
		query += " AND difficulty = ?"
		args = append(args, string(filter.Difficulty))
	}

	query += " ORDER BY id ASC"

	if filter.PerPage > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.PerPage, (page-1)*filter.PerPage)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not filter tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var task model.Task
		var difficulty, status string
		var deadlineHours int
		err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&difficulty,
			&task.RewardCoins,
			&deadlineHours,
			&task.IsPublished,
			&status,
		)
		if err != nil {
			return nil, fmt.Errorf("could not scan task: %w", err)
		}
		task.Difficulty = model.TaskDifficulty(difficulty)
		task.Status = model.TaskStatus(status)
		task.Deadline = time.Duration(deadlineHours) * time.Hour
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskStorage) TogglePublished(ctx context.Context, id int) (bool, error) {
	const query = `UPDATE tasks SET is_published = NOT is_published WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("could not toggle task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, model.ErrTaskNotFound
	}

	var published bool
	if err := s.db.QueryRowContext(ctx, `SELECT is_published FROM tasks WHERE id = ?`, id).Scan(&published); err != nil {
		return false, fmt.Errorf("could not read publish flag: %w", err)
	}
	return published, nil
}

func (s *TaskStorage) DeleteTask(ctx context.Context, id int) error {
	const query = `DELETE FROM tasks WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("could not delete task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrTaskNotFound
	}
	return nil
}

func (s *TaskStorage) CountTasks(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("could not count tasks: %w", err)
	}
	return count, nil
}
