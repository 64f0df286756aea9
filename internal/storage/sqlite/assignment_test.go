package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/influence-hub/community-bot/internal/model"
)

func newTestStore(t *testing.T) (*AssignmentStorage, *UserStorage, *TaskStorage) {
	t.Helper()
	db, err := Connect(":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	// One connection, otherwise each pooled connection gets its own
	// empty in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return NewAssignmentStorage(db), NewUserStorage(db), NewTaskStorage(db)
}

func seedUserAndTask(t *testing.T, users *UserStorage, tasks *TaskStorage, reward int) (int, int) {
	t.Helper()
	ctx := context.Background()

	user := model.NewUser(12345, "tester")
	if err := users.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	task := model.NewTask("задание", "", reward, 24*time.Hour, "")
	task.IsPublished = true
	if err := tasks.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	return user.ID, task.ID
}

var openStatuses = []model.AssignmentStatus{
	model.AssignmentStatusActive,
	model.AssignmentStatusSubmitted,
}

func TestTakeUniquenessInsideTransaction(t *testing.T) {
	store, users, tasks := newTestStore(t)
	ctx := context.Background()
	userID, taskID := seedUserAndTask(t, users, tasks, 5)

	due := time.Now().UTC().Add(24 * time.Hour)
	if _, err := store.Take(ctx, userID, taskID, due, openStatuses); err != nil {
		t.Fatalf("first take: %v", err)
	}
	if _, err := store.Take(ctx, userID, taskID, due, openStatuses); !errors.Is(err, model.ErrAssignmentExists) {
		t.Fatalf("expected ErrAssignmentExists, got %v", err)
	}

	counts, err := store.CountByStatusForUser(ctx, userID)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts.Active != 1 {
		t.Fatalf("expected exactly one row, got %+v", counts)
	}
}

func TestDecideGuardedUpdate(t *testing.T) {
	store, users, tasks := newTestStore(t)
	ctx := context.Background()
	userID, taskID := seedUserAndTask(t, users, tasks, 7)

	due := time.Now().UTC().Add(24 * time.Hour)
	a, err := store.Take(ctx, userID, taskID, due, openStatuses)
	if err != nil {
		t.Fatalf("take: %v", err)
	}

	// Deciding an active assignment fails, the flip requires submitted.
	if _, err := store.Decide(ctx, a.ID, true); !errors.Is(err, model.ErrWrongStatus) {
		t.Fatalf("expected ErrWrongStatus, got %v", err)
	}

	if _, err := store.Submit(ctx, userID, taskID, "proof", ""); err != nil {
		t.Fatalf("submit: %v", err)
	}

	res, err := store.Decide(ctx, a.ID, true)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.Reward != 7 || res.CoinsAfter != 7 {
		t.Fatalf("expected single credit of 7, got %+v", res)
	}

	// The second decision loses the race on the guarded update.
	if _, err := store.Decide(ctx, a.ID, true); !errors.Is(err, model.ErrWrongStatus) {
		t.Fatalf("expected ErrWrongStatus on double approve, got %v", err)
	}

	user, err := users.FetchUserByID(ctx, userID)
	if err != nil {
		t.Fatalf("fetch user: %v", err)
	}
	if user.Coins != 7 {
		t.Fatalf("expected coins=7 after double approve attempt, got %d", user.Coins)
	}

	if _, err := store.Decide(ctx, 98765, true); !errors.Is(err, model.ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
	}
}

func TestOverdueIsInformational(t *testing.T) {
	store, users, tasks := newTestStore(t)
	ctx := context.Background()
	userID, taskID := seedUserAndTask(t, users, tasks, 1)

	due := time.Now().UTC().Add(-time.Hour)
	a, err := store.Take(ctx, userID, taskID, due, openStatuses)
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if !a.Overdue(time.Now().UTC()) {
		t.Fatalf("expected assignment to be overdue")
	}

	// A past deadline does not expire the assignment, submit still works.
	if _, err := store.Submit(ctx, userID, taskID, "late proof", ""); err != nil {
		t.Fatalf("submit after deadline: %v", err)
	}
}
