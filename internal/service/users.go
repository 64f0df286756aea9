package service

import (
	"context"
	"errors"
	"log"

	"github.com/influence-hub/community-bot/internal/model"
)

type UserService struct {
	users model.UserRepository
}

func NewUserService(users model.UserRepository) *UserService {
	return &UserService{users: users}
}

// GetOrCreate registers the user on first contact and refreshes a changed
// username on later ones.
func (s *UserService) GetOrCreate(ctx context.Context, tgUserID int64, username string) (*model.User, error) {
	user, err := s.users.FetchUserByTgID(ctx, tgUserID)
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			return nil, err
		}
		user = model.NewUser(tgUserID, username)
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		log.Printf("DEBUG created user id=%d tg_id=%d", user.ID, tgUserID)
		return user, nil
	}

	if username != "" && username != user.Username {
		if err := s.users.UpdateUsername(ctx, user.ID, username); err != nil {
			return nil, err
		}
		user.Username = username
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, tgUserID int64) (*model.User, error) {
	return s.users.FetchUserByTgID(ctx, tgUserID)
}

func (s *UserService) SetRole(ctx context.Context, tgUserID int64, role model.UserRole) error {
	return s.users.SetRole(ctx, tgUserID, role)
}

func (s *UserService) GrantAdmin(ctx context.Context, tgUserID int64) error {
	return s.users.SetAdmin(ctx, tgUserID, true)
}

func (s *UserService) RevokeAdmin(ctx context.Context, tgUserID int64) error {
	return s.users.SetAdmin(ctx, tgUserID, false)
}

func (s *UserService) Mentors(ctx context.Context) ([]model.User, error) {
	return s.users.FetchUsersByRole(ctx, model.UserRoleGuru)
}

// AllTgIDs feeds the broadcast loop.
func (s *UserService) AllTgIDs(ctx context.Context) ([]int64, error) {
	return s.users.FetchAllTgIDs(ctx)
}
