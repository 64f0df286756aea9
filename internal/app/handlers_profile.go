package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/influence-hub/community-bot/internal/model"
	"github.com/influence-hub/community-bot/internal/progression"
	"github.com/influence-hub/community-bot/internal/service"
)

func (b *Bot) openProfile(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	user, err := b.users.Get(ctx, cb.From.ID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return b.editText(cb, "Профиль не найден. Нажмите /start ещё раз.",
				mainMenuKeyboard(false))
		}
		return err
	}

	rank, coins, err := b.rating.Position(ctx, cb.From.ID)
	if err != nil {
		return fmt.Errorf("could not compute rating position: %w", err)
	}

	counts, err := b.lifecycle.UserStatusCounts(ctx, cb.From.ID)
	if err != nil {
		return fmt.Errorf("could not count assignments: %w", err)
	}

	return b.editText(cb, profileCard(user, rank, coins), profileKeyboard(counts))
}

func profileCard(user *model.User, rank int, coins int) string {
	name := "<b>без никнейма</b>"
	if user.Username != "" {
		name = fmt.Sprintf("<b>@%s</b>", user.Username)
	}

	role := cases.Title(language.Russian).String(user.Role.StringLocalized())

	li := progression.LevelByCoins(coins)
	var levelLine, progressLine string
	if !li.HasNext {
		levelLine = fmt.Sprintf("🏅 Уровень: <b>%d</b> (MAX)", li.Level)
		progressLine = progression.ProgressBar(100, 10) + " 100%"
	} else {
		levelLine = fmt.Sprintf("🏅 Уровень: <b>%d</b> · %d/%d coins", li.Level, coins, li.NextFloor)
		progressLine = fmt.Sprintf("%s %d%%  (до следующего: %d)",
			progression.ProgressBar(li.ProgressPercent, 10), li.ProgressPercent, li.ToNext)
	}

	created := "—"
	if !user.CreatedAt.IsZero() {
		created = user.CreatedAt.Format("2006-01-02")
	}

	return fmt.Sprintf(
		"👤 <b>Профиль</b>\n%s\n\n"+
			"🎭 Роль: <b>%s</b>\n"+
			"🪙 Баллы: <b>%d</b>\n"+
			"%s\n%s\n"+
			"🏆 Рейтинг: <b>%d место</b>\n"+
			"🎖 Бейджи: %s\n"+
			"📅 С нами с: %s",
		name, role, coins, levelLine, progressLine, rank,
		progression.BadgesLine(coins), created,
	)
}

func (b *Bot) handleProfileCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	// profile:history:<group>:<page>
	parts := strings.Split(cb.Data, ":")
	if len(parts) != 4 || parts[1] != "history" {
		return nil
	}
	group := service.HistoryGroup(parts[2])
	page, err := strconv.Atoi(parts[3])
	if err != nil || page < 1 {
		page = 1
	}

	items, err := b.lifecycle.UserHistory(ctx, cb.From.ID, group, page, b.cfg.PageSize+1)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return b.editText(cb, "Профиль не найден. Нажмите /start ещё раз.", mainMenuKeyboard(false))
		}
		return err
	}
	hasMore := len(items) > b.cfg.PageSize
	if hasMore {
		items = items[:b.cfg.PageSize]
	}

	title := map[service.HistoryGroup]string{
		service.HistoryGroupActive:    "🚧 Активные",
		service.HistoryGroupSubmitted: "🕒 На проверке",
		service.HistoryGroupDone:      "✅ Завершённые",
	}[group]

	lines := []string{fmt.Sprintf("📜 <b>%s</b> (стр. %d)", title, page)}
	if len(items) == 0 {
		lines = append(lines, "Пока пусто. Возвращайся после первых заданий 🙂")
	}
	now := time.Now().UTC()
	for _, d := range items {
		line := fmt.Sprintf("%s %s · +%dc · %s",
			difficultyIcon(d.Difficulty), d.TaskTitle, d.Reward, d.Assignment.Status.StringLocalized())
		if d.Assignment.Overdue(now) {
			line += " ⚠️ просрочено"
		}
		lines = append(lines, line)
	}

	return b.editText(cb, strings.Join(lines, "\n"), historyKeyboard(string(group), page, hasMore))
}

func difficultyIcon(d model.TaskDifficulty) string {
	switch d {
	case model.TaskDifficultyEasy:
		return "🟢"
	case model.TaskDifficultyMedium:
		return "🟡"
	case model.TaskDifficultyHard:
		return "🔴"
	default:
		return "•"
	}
}
