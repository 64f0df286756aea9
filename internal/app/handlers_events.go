package app

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const upcomingEventsLimit = 10

func (b *Bot) openEvents(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	events, err := b.events.Upcoming(ctx, upcomingEventsLimit)
	if err != nil {
		return fmt.Errorf("could not list events: %w", err)
	}

	lines := []string{"📅 <b>Ближайшие события</b>"}
	if len(events) == 0 {
		lines = append(lines, "Пока ничего не запланировано.")
	}
	for _, e := range events {
		line := fmt.Sprintf("• %s — %s", e.EventDate.Format(eventDateLayout), e.Title)
		if e.Description != "" {
			line += "\n  " + e.Description
		}
		lines = append(lines, line)
	}

	isAdmin := b.isAdmin(ctx, cb.From.ID)
	return b.editText(cb, strings.Join(lines, "\n"), eventsKeyboard(isAdmin))
}

func (b *Bot) handleEventCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.Data != "events:add" {
		return nil
	}
	if !b.isAdmin(ctx, cb.From.ID) {
		return b.alert(cb.ID, "Недостаточно прав.")
	}

	b.states.set(cb.Message.Chat.ID, &convState{Kind: stateEventTitle})
	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID,
		"Введите название события:\n\nОтмена: /cancel")
	return b.send(edit)
}

func (b *Bot) eventCreateMessage(ctx context.Context, msg *tgbotapi.Message, state *convState) error {
	text := strings.TrimSpace(msg.Text)

	switch state.Kind {
	case stateEventTitle:
		if text == "" {
			return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Нужно название. Введите ещё раз."))
		}
		state.EventDraft.Title = text
		state.Kind = stateEventDate
		b.states.set(msg.Chat.ID, state)
		return b.send(tgbotapi.NewMessage(msg.Chat.ID,
			fmt.Sprintf("Введите дату и время в формате %s:", eventDateLayout)))

	case stateEventDate:
		date, err := parseEventDate(text)
		if err != nil {
			return b.send(tgbotapi.NewMessage(msg.Chat.ID,
				fmt.Sprintf("Не понял дату. Формат: %s. Введите ещё раз.", eventDateLayout)))
		}

		event, err := b.events.Create(ctx, state.EventDraft.Title, "", date, msg.From.ID)
		b.states.clear(msg.Chat.ID)
		if err != nil {
			return fmt.Errorf("could not create event: %w", err)
		}
		return b.send(tgbotapi.NewMessage(msg.Chat.ID,
			fmt.Sprintf("✅ Событие создано: %s — %s", event.EventDate.Format(eventDateLayout), event.Title)))
	}
	return nil
}
