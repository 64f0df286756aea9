package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/influence-hub/community-bot/internal/model"
)

func (b *Bot) openMentors(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	mentors, err := b.mentorship.Mentors(ctx)
	if err != nil {
		return fmt.Errorf("could not list mentors: %w", err)
	}

	text := "🧑‍🏫 <b>Менторы</b>\nВыбери, к кому записаться:"
	if len(mentors) == 0 {
		text = "🧑‍🏫 <b>Менторы</b>\nПока никого нет."
	}
	return b.editText(cb, text, mentorListKeyboard(mentors))
}

func (b *Bot) handleMentorCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	data := cb.Data
	switch {
	case strings.HasPrefix(data, "mentor:apply:"):
		return b.mentorApplyStart(ctx, cb)
	case data == "mentor:inbox":
		return b.mentorInbox(ctx, cb)
	case strings.HasPrefix(data, "mentor:app:"):
		return b.mentorDecide(ctx, cb)
	default:
		return nil
	}
}

func (b *Bot) mentorApplyStart(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	mentorID, err := parseTrailingID(cb.Data)
	if err != nil {
		return nil
	}

	if _, err := b.users.GetOrCreate(ctx, cb.From.ID, cb.From.UserName); err != nil {
		return fmt.Errorf("could not register user: %w", err)
	}

	b.states.set(cb.Message.Chat.ID, &convState{Kind: stateMentorTopic, MentorID: mentorID})
	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID,
		"Опишите тему, с которой нужна помощь.\n\nОтмена: /cancel")
	return b.send(edit)
}

func (b *Bot) mentorTopicMessage(ctx context.Context, msg *tgbotapi.Message, state *convState) error {
	topic := strings.TrimSpace(msg.Text)
	if topic == "" {
		return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Нужен текст с темой. Попробуйте ещё раз."))
	}

	_, err := b.mentorship.Apply(ctx, msg.From.ID, state.MentorID, topic)
	b.states.clear(msg.Chat.ID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Ментор не найден."))
		}
		return fmt.Errorf("could not create application: %w", err)
	}
	return b.send(tgbotapi.NewMessage(msg.Chat.ID, "✅ Заявка отправлена. Ментор ответит решением."))
}

// mentorInbox shows pending applications addressed to the caller.
func (b *Bot) mentorInbox(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	apps, err := b.mentorship.Inbox(ctx, cb.From.ID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return b.alert(cb.ID, "Профиль не найден. Нажмите /start ещё раз.")
		}
		return err
	}

	lines := []string{"📥 <b>Заявки на менторство</b>"}
	pending := 0
	for _, a := range apps {
		if a.Application.Status != model.ApplicationStatusPending {
			continue
		}
		pending++
		name := a.Username
		if name == "" {
			name = fmt.Sprintf("id:%d", a.TgUserID)
		}
		lines = append(lines, fmt.Sprintf("#%d @%s — %s", a.Application.ID, name, a.Application.Topic))
	}
	if pending == 0 {
		lines = append(lines, "Новых заявок нет.")
	}

	return b.editText(cb, strings.Join(lines, "\n"), mentorInboxKeyboard(apps))
}

func (b *Bot) mentorDecide(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	// mentor:app:<id>:approve|reject
	parts := strings.Split(cb.Data, ":")
	if len(parts) != 4 {
		return nil
	}
	appID, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil
	}
	approve := parts[3] == "approve"

	decided, err := b.mentorship.Decide(ctx, appID, approve)
	if err != nil {
		if errors.Is(err, model.ErrApplicationNotFound) {
			return b.alert(cb.ID, "Заявка не найдена или уже обработана.")
		}
		return err
	}

	if approve {
		b.notify(decided.TgUserID, "🎉 Ментор принял вашу заявку!")
	} else {
		b.notify(decided.TgUserID, "Ментор отклонил заявку. Попробуйте другую тему или ментора.")
	}
	return b.alert(cb.ID, "Решение сохранено.")
}
