package model

import (
	"context"
	"errors"
	"time"
)

type MentorApplication struct {
	ID        int
	UserID    int
	MentorID  int
	Topic     string
	Status    ApplicationStatus
	CreatedAt time.Time
}

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

var ErrApplicationNotFound = errors.New("mentor application not found")

// MentorApplicationDetail joins an application with applicant info for
// the mentor's inbox.
type MentorApplicationDetail struct {
	Application MentorApplication
	TgUserID    int64
	Username    string
}

type MentorshipRepository interface {
	CreateApplication(ctx context.Context, app *MentorApplication) error
	FetchApplicationsForMentor(ctx context.Context, mentorID int) ([]MentorApplicationDetail, error)
	// DecideApplication flips a pending application to a terminal status.
	DecideApplication(ctx context.Context, id int, approve bool) (*MentorApplicationDetail, error)
}
