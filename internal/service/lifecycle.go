package service

import (
	"context"
	"strings"
	"time"

	"github.com/influence-hub/community-bot/internal/model"
	"github.com/influence-hub/community-bot/internal/progression"
)

// LifecycleConfig carries the policy knobs of the assignment state machine.
type LifecycleConfig struct {
	// RetakeAfterRejection allows taking a task again after a rejected
	// attempt. When false the rejection is final for that task.
	RetakeAfterRejection bool
}

// LifecycleService drives assignments through
// active -> submitted -> approved | rejected.
type LifecycleService struct {
	cfg         LifecycleConfig
	tasks       model.TaskRepository
	users       model.UserRepository
	assignments model.AssignmentRepository

	now func() time.Time
}

func NewLifecycleService(
	cfg LifecycleConfig,
	tasks model.TaskRepository,
	users model.UserRepository,
	assignments model.AssignmentRepository,
) *LifecycleService {
	return &LifecycleService{
		cfg:         cfg,
		tasks:       tasks,
		users:       users,
		assignments: assignments,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *LifecycleService) blockingStatuses() []model.AssignmentStatus {
	blocking := []model.AssignmentStatus{
		model.AssignmentStatusActive,
		model.AssignmentStatusSubmitted,
	}
	if !s.cfg.RetakeAfterRejection {
		blocking = append(blocking, model.AssignmentStatusRejected)
	}
	return blocking
}

// Take creates an active assignment for the user on a published task.
// Returns model.ErrAssignmentExists when the user already has a blocking
// attempt on this task.
func (s *LifecycleService) Take(ctx context.Context, tgUserID int64, taskID int) (*model.Assignment, error) {
	user, err := s.users.FetchUserByTgID(ctx, tgUserID)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsPublished || task.Status != model.TaskStatusActive {
		return nil, model.ErrTaskNotFound
	}

	dueAt := s.now().Add(task.Deadline)
	return s.assignments.Take(ctx, user.ID, task.ID, dueAt, s.blockingStatuses())
}

// Submit attaches the proof to the user's open assignment on the task.
// At least one of text or fileID is required. A repeated submit replaces
// the previous payload.
func (s *LifecycleService) Submit(ctx context.Context, tgUserID int64, taskID int, text string, fileID string) (*model.Assignment, error) {
	text = strings.TrimSpace(text)
	if text == "" && fileID == "" {
		return nil, model.ErrEmptySubmission
	}

	user, err := s.users.FetchUserByTgID(ctx, tgUserID)
	if err != nil {
		return nil, err
	}
	return s.assignments.Submit(ctx, user.ID, taskID, text, fileID)
}

// ApproveOutcome reports an approval together with its progression side
// effects, so the caller can notify about level-ups and badges.
type ApproveOutcome struct {
	Assignment  model.Assignment
	TgUserID    int64
	Reward      int
	CoinsAfter  int
	LevelBefore int
	LevelAfter  int
	Badge       progression.Badge
	BadgeWon    bool
}

// Approve finalizes a submitted assignment and credits the reward. The
// status flip and the credit are one storage transaction, so a concurrent
// double approve fails with model.ErrWrongStatus instead of paying twice.
func (s *LifecycleService) Approve(ctx context.Context, assignmentID int) (*ApproveOutcome, error) {
	res, err := s.assignments.Decide(ctx, assignmentID, true)
	if err != nil {
		return nil, err
	}

	out := ApproveOutcome{
		Assignment: res.Assignment,
		TgUserID:   res.TgUserID,
		Reward:     res.Reward,
		CoinsAfter: res.CoinsAfter,
	}
	out.LevelBefore = progression.LevelByCoins(res.CoinsAfter - res.Reward).Level
	out.LevelAfter = progression.LevelByCoins(res.CoinsAfter).Level
	out.Badge, out.BadgeWon = progression.NewlyUnlocked(out.LevelBefore, out.LevelAfter)
	return &out, nil
}

// Reject finalizes a submitted assignment without touching the balance.
func (s *LifecycleService) Reject(ctx context.Context, assignmentID int) (*model.DecideResult, error) {
	return s.assignments.Decide(ctx, assignmentID, false)
}

func (s *LifecycleService) ListPending(ctx context.Context, page, perPage int) ([]model.AssignmentDetail, error) {
	return s.assignments.FetchPending(ctx, page, perPage)
}

func (s *LifecycleService) GetAssignment(ctx context.Context, id int) (*model.AssignmentDetail, error) {
	return s.assignments.GetAssignmentByID(ctx, id)
}

// HistoryGroup selects a slice of the user's activity log.
type HistoryGroup string

const (
	HistoryGroupActive    HistoryGroup = "active"
	HistoryGroupSubmitted HistoryGroup = "submitted"
	HistoryGroupDone      HistoryGroup = "done"
)

func (g HistoryGroup) statuses() []model.AssignmentStatus {
	switch g {
	case HistoryGroupActive:
		return []model.AssignmentStatus{model.AssignmentStatusActive}
	case HistoryGroupSubmitted:
		return []model.AssignmentStatus{model.AssignmentStatusSubmitted}
	case HistoryGroupDone:
		return []model.AssignmentStatus{model.AssignmentStatusApproved, model.AssignmentStatusRejected}
	default:
		return nil
	}
}

func (s *LifecycleService) UserHistory(ctx context.Context, tgUserID int64, group HistoryGroup, page, perPage int) ([]model.AssignmentDetail, error) {
	user, err := s.users.FetchUserByTgID(ctx, tgUserID)
	if err != nil {
		return nil, err
	}
	return s.assignments.FetchUserAssignments(ctx, user.ID, group.statuses(), page, perPage)
}

func (s *LifecycleService) UserStatusCounts(ctx context.Context, tgUserID int64) (model.StatusCounts, error) {
	user, err := s.users.FetchUserByTgID(ctx, tgUserID)
	if err != nil {
		return model.StatusCounts{}, err
	}
	return s.assignments.CountByStatusForUser(ctx, user.ID)
}
