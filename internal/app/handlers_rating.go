package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/influence-hub/community-bot/internal/model"
)

const ratingTopSize = 10

func (b *Bot) sendRating(ctx context.Context, chatID int64, tgUserID int64) error {
	top, err := b.rating.Top(ctx, ratingTopSize)
	if err != nil {
		return fmt.Errorf("could not load leaderboard: %w", err)
	}

	lines := []string{"🏆 <b>Топ-10</b>"}
	if len(top) == 0 {
		lines = append(lines, "Пока пусто.")
	}
	for i, user := range top {
		name := fmt.Sprintf("id:%d", user.TgUserID)
		if user.Username != "" {
			name = "@" + user.Username
		}
		crown := ""
		if i == 0 {
			crown = " 👑"
		}
		lines = append(lines, fmt.Sprintf("%d. %s — <b>%d</b> coins%s", i+1, name, user.Coins, crown))
	}

	youLine := "—"
	rank, coins, err := b.rating.Position(ctx, tgUserID)
	if err == nil {
		youLine = fmt.Sprintf("Ваше место: <b>#%d</b> · <b>%d</b> coins", rank, coins)
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return fmt.Errorf("could not compute position: %w", err)
	}

	msg := tgbotapi.NewMessage(chatID, strings.Join(lines, "\n")+"\n\n"+youLine)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = ratingKeyboard()
	return b.send(msg)
}
