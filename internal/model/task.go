package model

import (
	"context"
	"errors"
	"time"
)

type Task struct {
	ID          int
	Title       string
	Description string
	Difficulty  TaskDifficulty
	RewardCoins int
	Deadline    time.Duration
	IsPublished bool
	Status      TaskStatus
}

// NewTask creates an unpublished task. An empty difficulty is derived
// from the reward.
func NewTask(title string, description string, reward int, deadline time.Duration, difficulty TaskDifficulty) *Task {
	if difficulty == "" {
		difficulty = DifficultyForReward(reward)
	}
	return &Task{
		Title:       title,
		Description: description,
		Difficulty:  difficulty,
		RewardCoins: reward,
		Deadline:    deadline,
		Status:      TaskStatusActive,
	}
}

type TaskStatus string

const (
	TaskStatusActive   TaskStatus = "active"
	TaskStatusArchived TaskStatus = "archived"
)

type TaskDifficulty string

const (
	TaskDifficultyEasy   TaskDifficulty = "easy"
	TaskDifficultyMedium TaskDifficulty = "medium"
	TaskDifficultyHard   TaskDifficulty = "hard"
)

func (d TaskDifficulty) Valid() bool {
	switch d {
	case TaskDifficultyEasy, TaskDifficultyMedium, TaskDifficultyHard:
		return true
	}
	return false
}

func (d TaskDifficulty) StringLocalized() string {
	switch d {
	case TaskDifficultyEasy:
		return "🟢 Легкие"
	case TaskDifficultyMedium:
		return "🟡 Средние"
	case TaskDifficultyHard:
		return "🔴 Сложные"
	default:
		return "🗂 Все"
	}
}

// DifficultyForReward maps a coin reward to a difficulty tier.
// Boundaries are closed: reward of 5 is still easy, 10 is still medium.
func DifficultyForReward(reward int) TaskDifficulty {
	switch {
	case reward <= 5:
		return TaskDifficultyEasy
	case reward <= 10:
		return TaskDifficultyMedium
	default:
		return TaskDifficultyHard
	}
}

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskHasAssignments = errors.New("task has unfinished assignments")
)

type TaskFilter struct {
	Difficulty    TaskDifficulty
	OnlyPublished bool
	Page          int
	PerPage       int
}

type TaskRepository interface {
	FilterTasks(ctx context.Context, filter TaskFilter) ([]Task, error)
	GetTaskByID(ctx context.Context, id int) (*Task, error)
	CreateTask(ctx context.Context, task *Task) error
	TogglePublished(ctx context.Context, id int) (bool, error)
	DeleteTask(ctx context.Context, id int) error
	CountTasks(ctx context.Context) (int, error)
}
