package service

import (
	"context"

	"github.com/influence-hub/community-bot/internal/model"
)

type RatingService struct {
	users model.UserRepository
}

func NewRatingService(users model.UserRepository) *RatingService {
	return &RatingService{users: users}
}

// Top returns up to n users ordered by coins descending, ties broken by
// the lower internal id.
func (s *RatingService) Top(ctx context.Context, n int) ([]model.User, error) {
	return s.users.FetchTop(ctx, n)
}

// Position computes the rank as 1 plus the number of users with strictly
// more coins. Equal balances share the same rank.
func (s *RatingService) Position(ctx context.Context, tgUserID int64) (rank int, coins int, err error) {
	user, err := s.users.FetchUserByTgID(ctx, tgUserID)
	if err != nil {
		return 0, 0, err
	}
	above, err := s.users.CountWithMoreCoins(ctx, user.Coins)
	if err != nil {
		return 0, 0, err
	}
	return above + 1, user.Coins, nil
}
