package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/influence-hub/community-bot/internal/model"
)

func TestSeedIfEmptyIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	n, err := env.tasks.SeedIfEmpty(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 seeded tasks, got %d", n)
	}

	n, err = env.tasks.SeedIfEmpty(ctx)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if n != 0 {
		t.Fatalf("second seed must be a no-op, got %d", n)
	}

	all, err := env.tasks.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 tasks after double seed, got %d", len(all))
	}
}

func TestDifficultyDerivedFromReward(t *testing.T) {
	cases := []struct {
		reward int
		want   model.TaskDifficulty
	}{
		{0, model.TaskDifficultyEasy},
		{5, model.TaskDifficultyEasy},
		{6, model.TaskDifficultyMedium},
		{10, model.TaskDifficultyMedium},
		{11, model.TaskDifficultyHard},
		{1000, model.TaskDifficultyHard},
	}
	for _, c := range cases {
		if got := model.DifficultyForReward(c.reward); got != c.want {
			t.Fatalf("reward=%d: expected %s, got %s", c.reward, c.want, got)
		}
	}

	// The mapping is applied on create when no difficulty is given.
	env := newTestEnv(t)
	ctx := context.Background()
	id, err := env.tasks.Create(ctx, "Авто", "", 7, time.Hour, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	task, err := env.tasks.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if task.Difficulty != model.TaskDifficultyMedium {
		t.Fatalf("expected derived medium, got %s", task.Difficulty)
	}
	if task.IsPublished {
		t.Fatalf("new tasks must start unpublished")
	}
}

func TestListPublishedFiltersAndOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	easy := env.mustPublishedTask(t, "Лёгкое", 2)
	hard := env.mustPublishedTask(t, "Сложное", 20)
	if _, err := env.tasks.Create(ctx, "Черновик", "", 1, time.Hour, ""); err != nil {
		t.Fatalf("create draft: %v", err)
	}

	all, err := env.tasks.ListPublished(ctx, "", 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected only published tasks, got %d", len(all))
	}
	if all[0].ID != easy || all[1].ID != hard {
		t.Fatalf("expected stable ordering by id, got %+v", all)
	}

	hardOnly, err := env.tasks.ListPublished(ctx, model.TaskDifficultyHard, 1, 10)
	if err != nil {
		t.Fatalf("list hard: %v", err)
	}
	if len(hardOnly) != 1 || hardOnly[0].ID != hard {
		t.Fatalf("unexpected difficulty filter result: %+v", hardOnly)
	}
}

func TestTogglePublish(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.tasks.Create(ctx, "Переключатель", "", 3, time.Hour, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	published, err := env.tasks.TogglePublish(ctx, id)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !published {
		t.Fatalf("expected published after first toggle")
	}
	published, err = env.tasks.TogglePublish(ctx, id)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if published {
		t.Fatalf("expected unpublished after second toggle")
	}

	if _, err := env.tasks.TogglePublish(ctx, 777); !errors.Is(err, model.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestDeleteGuardedByOpenAssignments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustUser(t, 201, "kate")
	taskID := env.mustPublishedTask(t, "Удаляемое", 4)

	if _, err := env.lifecycle.Take(ctx, user.TgUserID, taskID); err != nil {
		t.Fatalf("take: %v", err)
	}
	if err := env.tasks.Delete(ctx, taskID); !errors.Is(err, model.ErrTaskHasAssignments) {
		t.Fatalf("expected ErrTaskHasAssignments, got %v", err)
	}

	a, err := env.lifecycle.Submit(ctx, user.TgUserID, taskID, "proof", "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := env.tasks.Delete(ctx, taskID); !errors.Is(err, model.ErrTaskHasAssignments) {
		t.Fatalf("submitted must still block deletion, got %v", err)
	}

	if _, err := env.lifecycle.Reject(ctx, a.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if err := env.tasks.Delete(ctx, taskID); err != nil {
		t.Fatalf("delete after terminal status: %v", err)
	}

	if err := env.tasks.Delete(ctx, taskID); !errors.Is(err, model.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound on re-delete, got %v", err)
	}
}
