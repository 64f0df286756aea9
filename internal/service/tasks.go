// Package service holds the business rules between the Telegram surface
// and the storage layer: the task catalog, the assignment lifecycle,
// progression side effects and read projections.
package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/influence-hub/community-bot/internal/model"
)

type TaskService struct {
	tasks       model.TaskRepository
	assignments model.AssignmentRepository
}

func NewTaskService(tasks model.TaskRepository, assignments model.AssignmentRepository) *TaskService {
	return &TaskService{tasks: tasks, assignments: assignments}
}

func (s *TaskService) ListPublished(ctx context.Context, difficulty model.TaskDifficulty, page, perPage int) ([]model.Task, error) {
	return s.tasks.FilterTasks(ctx, model.TaskFilter{
		Difficulty:    difficulty,
		OnlyPublished: true,
		Page:          page,
		PerPage:       perPage,
	})
}

func (s *TaskService) ListAll(ctx context.Context) ([]model.Task, error) {
	return s.tasks.FilterTasks(ctx, model.TaskFilter{})
}

func (s *TaskService) Get(ctx context.Context, id int) (*model.Task, error) {
	return s.tasks.GetTaskByID(ctx, id)
}

// Create registers a new unpublished task. An empty difficulty is derived
// from the reward, an invalid one is an error.
func (s *TaskService) Create(
	ctx context.Context,
	title string,
	description string,
	reward int,
	deadline time.Duration,
	difficulty model.TaskDifficulty,
) (int, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, fmt.Errorf("task title is required")
	}
	if reward < 0 {
		return 0, fmt.Errorf("task reward must not be negative")
	}
	if difficulty != "" && !difficulty.Valid() {
		return 0, fmt.Errorf("unknown difficulty %q", difficulty)
	}

	task := model.NewTask(title, strings.TrimSpace(description), reward, deadline, difficulty)
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return 0, err
	}
	log.Printf("DEBUG created task id=%d difficulty=%s reward=%d", task.ID, task.Difficulty, task.RewardCoins)
	return task.ID, nil
}

func (s *TaskService) TogglePublish(ctx context.Context, id int) (bool, error) {
	return s.tasks.TogglePublished(ctx, id)
}

// Delete removes a task unless someone still has an open assignment on it.
// History of finished attempts does not block deletion.
func (s *TaskService) Delete(ctx context.Context, id int) error {
	busy, err := s.assignments.HasUnfinishedForTask(ctx, id)
	if err != nil {
		return err
	}
	if busy {
		return model.ErrTaskHasAssignments
	}
	return s.tasks.DeleteTask(ctx, id)
}

// SeedIfEmpty inserts the demo catalog on first run. Calling it again is a
// no-op as long as at least one task exists.
func (s *TaskService) SeedIfEmpty(ctx context.Context) (int, error) {
	count, err := s.tasks.CountTasks(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	demo := []model.Task{
		{Title: "Репост события", Description: "Поделись анонсом в соцсетях", Difficulty: model.TaskDifficultyEasy, RewardCoins: 3, Deadline: 24 * time.Hour},
		{Title: "Участие в опросе", Description: "Ответь на 5 вопросов", Difficulty: model.TaskDifficultyEasy, RewardCoins: 2, Deadline: 24 * time.Hour},
		{Title: "Написать пост для блога", Description: "Пост 1500+ знаков", Difficulty: model.TaskDifficultyMedium, RewardCoins: 8, Deadline: 48 * time.Hour},
		{Title: "Снять короткий обзор", Description: "Видео до 60 секунд", Difficulty: model.TaskDifficultyMedium, RewardCoins: 10, Deadline: 72 * time.Hour},
		{Title: "Организовать митап", Description: "Подготовка и проведение", Difficulty: model.TaskDifficultyHard, RewardCoins: 15, Deadline: 168 * time.Hour},
	}
	for i := range demo {
		demo[i].IsPublished = true
		demo[i].Status = model.TaskStatusActive
		if err := s.tasks.CreateTask(ctx, &demo[i]); err != nil {
			return 0, fmt.Errorf("could not seed task %q: %w", demo[i].Title, err)
		}
	}
	log.Printf("INFO seeded %d demo tasks", len(demo))
	return len(demo), nil
}
