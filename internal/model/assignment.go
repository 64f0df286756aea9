package model

import (
	"context"
	"errors"
	"time"
)

type Assignment struct {
	ID          int
	TaskID      int
	UserID      int
	TakenAt     time.Time
	DueAt       time.Time
	ProofText   string
	ProofFileID string
	SubmittedAt time.Time
	Status      AssignmentStatus
}

// Overdue reports whether an assignment is still awaiting submission past
// its deadline. Deadlines are informational, nothing expires assignments
// automatically.
func (a *Assignment) Overdue(now time.Time) bool {
	return a.Status == AssignmentStatusActive && now.After(a.DueAt)
}

type AssignmentStatus string

const (
	AssignmentStatusActive    AssignmentStatus = "active"
	AssignmentStatusSubmitted AssignmentStatus = "submitted"
	AssignmentStatusApproved  AssignmentStatus = "approved"
	AssignmentStatusRejected  AssignmentStatus = "rejected"
)

func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentStatusApproved || s == AssignmentStatusRejected
}

func (s AssignmentStatus) StringLocalized() string {
	switch s {
	case AssignmentStatusActive:
		return "в работе"
	case AssignmentStatusSubmitted:
		return "на проверке"
	case AssignmentStatusApproved:
		return "принято"
	case AssignmentStatusRejected:
		return "отклонено"
	default:
		return string(s)
	}
}

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrAssignmentExists   = errors.New("assignment already exists")
	ErrWrongStatus        = errors.New("assignment in wrong status")
	ErrEmptySubmission    = errors.New("submission payload is empty")
)

// AssignmentDetail is the moderation read projection: an assignment joined
// with its task and the user who took it.
type AssignmentDetail struct {
	Assignment Assignment
	TaskTitle  string
	Difficulty TaskDifficulty
	Reward     int
	TgUserID   int64
	Username   string
}

// DecideResult reports an executed moderation decision. Reward and
// CoinsAfter are only meaningful for approvals.
type DecideResult struct {
	Assignment Assignment
	TgUserID   int64
	Reward     int
	CoinsAfter int
}

type StatusCounts struct {
	Active    int
	Submitted int
	Approved  int
	Rejected  int
}

func (c StatusCounts) Done() int { return c.Approved + c.Rejected }

type AssignmentRepository interface {
	// Take atomically checks for a blocking assignment and inserts a new one.
	// blocking lists statuses which forbid a duplicate take.
	Take(ctx context.Context, userID int, taskID int, dueAt time.Time, blocking []AssignmentStatus) (*Assignment, error)
	// Submit sets the proof payload on the non-terminal assignment of
	// (user, task). A repeated submit overwrites the payload.
	Submit(ctx context.Context, userID int, taskID int, proofText string, proofFileID string) (*Assignment, error)
	// Decide flips a submitted assignment to approved or rejected. An
	// approval credits the task reward to the user in the same transaction.
	Decide(ctx context.Context, assignmentID int, approve bool) (*DecideResult, error)

	GetAssignmentByID(ctx context.Context, id int) (*AssignmentDetail, error)
	FetchPending(ctx context.Context, page int, perPage int) ([]AssignmentDetail, error)
	FetchUserAssignments(ctx context.Context, userID int, statuses []AssignmentStatus, page int, perPage int) ([]AssignmentDetail, error)
	CountByStatusForUser(ctx context.Context, userID int) (StatusCounts, error)
	CountByStatus(ctx context.Context) (StatusCounts, error)
	HasUnfinishedForTask(ctx context.Context, taskID int) (bool, error)
}
