package service

import (
	"context"
	"errors"
	"testing"

	"github.com/influence-hub/community-bot/internal/model"
)

// creditCoins walks a user through a full approved assignment so the
// balance only ever changes through the lifecycle.
func creditCoins(t *testing.T, env *testEnv, tgID int64, amount int) {
	t.Helper()
	ctx := context.Background()

	taskID := env.mustPublishedTask(t, "Начисление", amount)
	if _, err := env.lifecycle.Take(ctx, tgID, taskID); err != nil {
		t.Fatalf("take: %v", err)
	}
	a, err := env.lifecycle.Submit(ctx, tgID, taskID, "proof", "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.lifecycle.Approve(ctx, a.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
}

func TestRatingPositions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Users with balances [50, 50, 30, 10] rank [1, 1, 3, 4].
	balances := []int{50, 50, 30, 10}
	tgIDs := make([]int64, len(balances))
	for i, coins := range balances {
		tgIDs[i] = int64(300 + i)
		env.mustUser(t, tgIDs[i], "")
		creditCoins(t, env, tgIDs[i], coins)
	}

	wantRanks := []int{1, 1, 3, 4}
	for i, tgID := range tgIDs {
		rank, coins, err := env.rating.Position(ctx, tgID)
		if err != nil {
			t.Fatalf("position of %d: %v", tgID, err)
		}
		if rank != wantRanks[i] || coins != balances[i] {
			t.Fatalf("user %d: expected rank=%d coins=%d, got rank=%d coins=%d",
				tgID, wantRanks[i], balances[i], rank, coins)
		}
	}

	if _, _, err := env.rating.Position(ctx, 999999); !errors.Is(err, model.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRatingTopOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.mustUser(t, 310, "first")
	second := env.mustUser(t, 311, "second")
	third := env.mustUser(t, 312, "third")

	creditCoins(t, env, first.TgUserID, 10)
	creditCoins(t, env, second.TgUserID, 10)
	creditCoins(t, env, third.TgUserID, 40)

	top, err := env.rating.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 users, got %d", len(top))
	}
	if top[0].TgUserID != third.TgUserID {
		t.Fatalf("expected the richest user first, got %+v", top[0])
	}
	// Equal balances keep insertion order.
	if top[1].TgUserID != first.TgUserID || top[2].TgUserID != second.TgUserID {
		t.Fatalf("expected tie broken by id, got %+v", top[1:])
	}

	limited, err := env.rating.Top(ctx, 2)
	if err != nil {
		t.Fatalf("top limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected limit respected, got %d", len(limited))
	}
}

func TestCoinsNeverDecrease(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.mustUser(t, 320, "mono")
	creditCoins(t, env, user.TgUserID, 7)

	// A rejection afterwards must not touch the balance.
	taskID := env.mustPublishedTask(t, "Ещё одно", 9)
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

	got, err := env.users.Get(ctx, user.TgUserID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Coins != 7 {
		t.Fatalf("expected balance to stay at 7, got %d", got.Coins)
	}
}
