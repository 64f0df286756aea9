package service

import (
	"context"
	"strings"

	"github.com/influence-hub/community-bot/internal/model"
)

type MentorshipService struct {
	users        model.UserRepository
	applications model.MentorshipRepository
}

func NewMentorshipService(users model.UserRepository, applications model.MentorshipRepository) *MentorshipService {
	return &MentorshipService{users: users, applications: applications}
}

func (s *MentorshipService) Mentors(ctx context.Context) ([]model.User, error) {
	return s.users.FetchUsersByRole(ctx, model.UserRoleGuru)
}

// Apply files a pending application from the user to the mentor.
func (s *MentorshipService) Apply(ctx context.Context, applicantTgID int64, mentorID int, topic string) (*model.MentorApplication, error) {
	applicant, err := s.users.FetchUserByTgID(ctx, applicantTgID)
	if err != nil {
		return nil, err
	}
	mentor, err := s.users.FetchUserByID(ctx, mentorID)
	if err != nil {
		return nil, err
	}

	app := &model.MentorApplication{
		UserID:   applicant.ID,
		MentorID: mentor.ID,
		Topic:    strings.TrimSpace(topic),
	}
	if err := s.applications.CreateApplication(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// Inbox lists applications addressed to the mentor.
func (s *MentorshipService) Inbox(ctx context.Context, mentorTgID int64) ([]model.MentorApplicationDetail, error) {
	mentor, err := s.users.FetchUserByTgID(ctx, mentorTgID)
	if err != nil {
		return nil, err
	}
	return s.applications.FetchApplicationsForMentor(ctx, mentor.ID)
}

func (s *MentorshipService) Decide(ctx context.Context, applicationID int, approve bool) (*model.MentorApplicationDetail, error) {
	return s.applications.DecideApplication(ctx, applicationID, approve)
}
