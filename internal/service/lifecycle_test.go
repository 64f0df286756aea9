package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/influence-hub/community-bot/internal/model"
	"github.com/influence-hub/community-bot/internal/storage/sqlite"
)

type testEnv struct {
	users       *UserService
	tasks       *TaskService
	lifecycle   *LifecycleService
	rating      *RatingService
	mentorship  *MentorshipService
	events      *EventService
	stats       *StatsService
	assignments *sqlite.AssignmentStorage
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithConfig(t, LifecycleConfig{RetakeAfterRejection: true})
}

func newTestEnvWithConfig(t *testing.T, cfg LifecycleConfig) *testEnv {
	t.Helper()

	db, err := sqlite.Connect(":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	// The pool must stay on one connection, otherwise every pooled
	// connection would see its own empty in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	userStorage := sqlite.NewUserStorage(db)
	taskStorage := sqlite.NewTaskStorage(db)
	assignmentStorage := sqlite.NewAssignmentStorage(db)

	return &testEnv{
		users:       NewUserService(userStorage),
		tasks:       NewTaskService(taskStorage, assignmentStorage),
		lifecycle:   NewLifecycleService(cfg, taskStorage, userStorage, assignmentStorage),
		rating:      NewRatingService(userStorage),
		mentorship:  NewMentorshipService(userStorage, sqlite.NewMentorshipStorage(db)),
		events:      NewEventService(userStorage, sqlite.NewEventStorage(db)),
		stats:       NewStatsService(sqlite.NewStatsStorage(db)),
		assignments: assignmentStorage,
	}
}

func (e *testEnv) mustUser(t *testing.T, tgID int64, username string) *model.User {
	t.Helper()
	user, err := e.users.GetOrCreate(context.Background(), tgID, username)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) mustPublishedTask(t *testing.T, title string, reward int) int {
	t.Helper()
	ctx := context.Background()
	id, err := e.tasks.Create(ctx, title, "", reward, 48*time.Hour, "")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := e.tasks.TogglePublish(ctx, id); err != nil {
		t.Fatalf("publish task: %v", err)
	}
	return id
}

func TestTakeSubmitApproveHappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustUser(t, 100, "alice")
	taskID := env.mustPublishedTask(t, "Написать пост", 8)

	a, err := env.lifecycle.Take(ctx, user.TgUserID, taskID)
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if a.Status != model.AssignmentStatusActive {
		t.Fatalf("expected active, got %s", a.Status)
	}
	if !a.DueAt.After(a.TakenAt) {
		t.Fatalf("due_at %v must be after taken_at %v", a.DueAt, a.TakenAt)
	}

	a, err = env.lifecycle.Submit(ctx, user.TgUserID, taskID, "done", "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if a.Status != model.AssignmentStatusSubmitted || a.ProofText != "done" {
		t.Fatalf("unexpected assignment after submit: %+v", a)
	}

	out, err := env.lifecycle.Approve(ctx, a.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if out.Assignment.Status != model.AssignmentStatusApproved {
		t.Fatalf("expected approved, got %s", out.Assignment.Status)
	}
	if out.Reward != 8 || out.CoinsAfter != 8 {
		t.Fatalf("expected 8 coins credited, got reward=%d coins=%d", out.Reward, out.CoinsAfter)
	}

	got, err := env.users.Get(ctx, user.TgUserID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Coins != 8 {
		t.Fatalf("expected balance 8, got %d", got.Coins)
	}
}

func TestDuplicateTakeRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustUser(t, 101, "bob")
	taskID := env.mustPublishedTask(t, "Опрос", 2)

	if _, err := env.lifecycle.Take(ctx, user.TgUserID, taskID); err != nil {
		t.Fatalf("first take: %v", err)
	}
	if _, err := env.lifecycle.Take(ctx, user.TgUserID, taskID); !errors.Is(err, model.ErrAssignmentExists) {
		t.Fatalf("expected ErrAssignmentExists, got %v", err)
	}

	// Submitted still blocks a second take.
	if _, err := env.lifecycle.Submit(ctx, user.TgUserID, taskID, "proof", ""); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.lifecycle.Take(ctx, user.TgUserID, taskID); !errors.Is(err, model.ErrAssignmentExists) {
		t.Fatalf("expected ErrAssignmentExists after submit, got %v", err)
	}

	counts, err := env.lifecycle.UserStatusCounts(ctx, user.TgUserID)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts.Active+counts.Submitted != 1 {
		t.Fatalf("expected exactly one open assignment, got %+v", counts)
	}
}

func TestRejectLeavesBalanceUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustUser(t, 102, "carol")
	taskID := env.mustPublishedTask(t, "Обзор", 5)

	if _, err := env.lifecycle.Take(ctx, user.TgUserID, taskID); err != nil {
		t.Fatalf("take: %v", err)
	}
	a, err := env.lifecycle.Submit(ctx, user.TgUserID, taskID, "link", "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	res, err := env.lifecycle.Reject(ctx, a.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if res.Assignment.Status != model.AssignmentStatusRejected {
		t.Fatalf("expected rejected, got %s", res.Assignment.Status)
	}

	got, err := env.users.Get(ctx, user.TgUserID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Coins != 0 {
		t.Fatalf("expected unchanged balance, got %d", got.Coins)
	}
}

func TestApproveRequiresSubmittedStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustUser(t, 103, "dave")
	taskID := env.mustPublishedTask(t, "Митап", 15)

	a, err := env.lifecycle.Take(ctx, user.TgUserID, taskID)
	if err != nil {
		t.Fatalf("take: %v", err)
	}

	// Approving an un-submitted assignment must fail.
	if _, err := env.lifecycle.Approve(ctx, a.ID); !errors.Is(err, model.ErrWrongStatus) {
		t.Fatalf("expected ErrWrongStatus for active assignment, got %v", err)
	}

	if _, err := env.lifecycle.Submit(ctx, user.TgUserID, taskID, "готово", ""); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.lifecycle.Approve(ctx, a.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// Second approve hits the guarded update and must not credit again.
	if _, err := env.lifecycle.Approve(ctx, a.ID); !errors.Is(err, model.ErrWrongStatus) {
		t.Fatalf("expected ErrWrongStatus on double approve, got %v", err)
	}
	got, err := env.users.Get(ctx, user.TgUserID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Coins != 15 {
		t.Fatalf("expected a single credit of 15, got %d", got.Coins)
	}
}

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustUser(t, 104, "erin")
	taskID := env.mustPublishedTask(t, "Репост", 3)

	// Submit without a take.
	if _, err := env.lifecycle.Submit(ctx, user.TgUserID, taskID, "text", ""); !errors.Is(err, model.ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
	}

	if _, err := env.lifecycle.Take(ctx, user.TgUserID, taskID); err != nil {
		t.Fatalf("take: %v", err)
	}

	// Empty payload is rejected.
	if _, err := env.lifecycle.Submit(ctx, user.TgUserID, taskID, "   ", ""); !errors.Is(err, model.ErrEmptySubmission) {
		t.Fatalf("expected ErrEmptySubmission, got %v", err)
	}

	// Attachment alone is enough.
	a, err := env.lifecycle.Submit(ctx, user.TgUserID, taskID, "", "file-abc")
	if err != nil {
		t.Fatalf("submit with file: %v", err)
	}
	if a.ProofFileID != "file-abc" {
		t.Fatalf("expected stored file id, got %q", a.ProofFileID)
	}

	// Resubmission overwrites the payload, latest wins.
	a, err = env.lifecycle.Submit(ctx, user.TgUserID, taskID, "better proof", "")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if a.ProofText != "better proof" || a.Status != model.AssignmentStatusSubmitted {
		t.Fatalf("unexpected assignment after resubmit: %+v", a)
	}
}

func TestRetakePolicy(t *testing.T) {
	ctx := context.Background()

	run := func(t *testing.T, allowRetake bool) error {
		env := newTestEnvWithConfig(t, LifecycleConfig{RetakeAfterRejection: allowRetake})
		user := env.mustUser(t, 105, "frank")
		taskID := env.mustPublishedTask(t, "Задание", 4)

		if _, err := env.lifecycle.Take(ctx, user.TgUserID, taskID); err != nil {
			t.Fatalf("take: %v", err)
		}
		a, err := env.lifecycle.Submit(ctx, user.TgUserID, taskID, "proof", "")
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if _, err := env.lifecycle.Reject(ctx, a.ID); err != nil {
			t.Fatalf("reject: %v", err)
		}

		_, err = env.lifecycle.Take(ctx, user.TgUserID, taskID)
		return err
	}

	t.Run("allowed", func(t *testing.T) {
		if err := run(t, true); err != nil {
			t.Fatalf("expected retake to pass, got %v", err)
		}
	})
	t.Run("forbidden", func(t *testing.T) {
		if err := run(t, false); !errors.Is(err, model.ErrAssignmentExists) {
			t.Fatalf("expected ErrAssignmentExists, got %v", err)
		}
	})
}

func TestTakeUnpublishedTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustUser(t, 106, "grace")
	id, err := env.tasks.Create(ctx, "Черновик", "", 1, time.Hour, "")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := env.lifecycle.Take(ctx, user.TgUserID, id); !errors.Is(err, model.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound for unpublished task, got %v", err)
	}
	if _, err := env.lifecycle.Take(ctx, user.TgUserID, 9999); !errors.Is(err, model.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound for missing task, got %v", err)
	}
}

func TestModerationQueue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustUser(t, 107, "heidi")
	first := env.mustPublishedTask(t, "Первое", 2)
	second := env.mustPublishedTask(t, "Второе", 3)

	for _, taskID := range []int{first, second} {
		if _, err := env.lifecycle.Take(ctx, user.TgUserID, taskID); err != nil {
			t.Fatalf("take %d: %v", taskID, err)
		}
		if _, err := env.lifecycle.Submit(ctx, user.TgUserID, taskID, "proof", ""); err != nil {
			t.Fatalf("submit %d: %v", taskID, err)
		}
	}

	pending, err := env.lifecycle.ListPending(ctx, 1, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if pending[0].TgUserID != user.TgUserID || pending[0].Username != "heidi" {
		t.Fatalf("unexpected pending detail: %+v", pending[0])
	}

	detail, err := env.lifecycle.GetAssignment(ctx, pending[0].Assignment.ID)
	if err != nil {
		t.Fatalf("get assignment: %v", err)
	}
	if detail.TaskTitle == "" || detail.Reward == 0 {
		t.Fatalf("expected joined task info, got %+v", detail)
	}

	if _, err := env.lifecycle.GetAssignment(ctx, 424242); !errors.Is(err, model.ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
	}
}

func TestUserHistoryGroups(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustUser(t, 108, "ivan")
	active := env.mustPublishedTask(t, "Активное", 1)
	finished := env.mustPublishedTask(t, "Завершённое", 2)

	if _, err := env.lifecycle.Take(ctx, user.TgUserID, active); err != nil {
		t.Fatalf("take: %v", err)
	}
	if _, err := env.lifecycle.Take(ctx, user.TgUserID, finished); err != nil {
		t.Fatalf("take: %v", err)
	}
	a, err := env.lifecycle.Submit(ctx, user.TgUserID, finished, "done", "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.lifecycle.Approve(ctx, a.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	activeList, err := env.lifecycle.UserHistory(ctx, user.TgUserID, HistoryGroupActive, 1, 10)
	if err != nil {
		t.Fatalf("history active: %v", err)
	}
	if len(activeList) != 1 || activeList[0].Assignment.TaskID != active {
		t.Fatalf("unexpected active history: %+v", activeList)
	}

	doneList, err := env.lifecycle.UserHistory(ctx, user.TgUserID, HistoryGroupDone, 1, 10)
	if err != nil {
		t.Fatalf("history done: %v", err)
	}
	if len(doneList) != 1 || doneList[0].Assignment.Status != model.AssignmentStatusApproved {
		t.Fatalf("unexpected done history: %+v", doneList)
	}

	counts, err := env.lifecycle.UserStatusCounts(ctx, user.TgUserID)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts.Active != 1 || counts.Approved != 1 || counts.Done() != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestApproveProgressionOutcome(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustUser(t, 109, "judy")
	// Reward 25 jumps from level 1 straight to level 3 and unlocks the
	// level-3 badge.
	taskID := env.mustPublishedTask(t, "Большое дело", 25)

	if _, err := env.lifecycle.Take(ctx, user.TgUserID, taskID); err != nil {
		t.Fatalf("take: %v", err)
	}
	a, err := env.lifecycle.Submit(ctx, user.TgUserID, taskID, "proof", "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	out, err := env.lifecycle.Approve(ctx, a.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if out.LevelBefore != 1 || out.LevelAfter != 3 {
		t.Fatalf("expected level 1 -> 3, got %d -> %d", out.LevelBefore, out.LevelAfter)
	}
	if !out.BadgeWon || out.Badge.Level != 3 {
		t.Fatalf("expected the level-3 badge, got %+v won=%v", out.Badge, out.BadgeWon)
	}
}
