package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/influence-hub/community-bot/version"
)

func (b *Bot) mainMenuText() string {
	return fmt.Sprintf("🤖 <b>INFLUENCE.HUB</b>\nЗадания, coins и уровни.\n\n<i>Версия: %s</i>", version.String())
}

func (b *Bot) showMainMenu(ctx context.Context, chatID int64, tgUserID int64) error {
	msg := tgbotapi.NewMessage(chatID, b.mainMenuText())
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard(b.isAdmin(ctx, tgUserID))
	return b.send(msg)
}

func (b *Bot) editMainMenu(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	b.states.clear(cb.Message.Chat.ID)
	return b.editText(cb, b.mainMenuText(), mainMenuKeyboard(b.isAdmin(ctx, cb.From.ID)))
}

// handleConversation routes plain messages into whatever dialogue the
// chat is currently in.
func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state, ok := b.states.get(msg.Chat.ID)
	if !ok || state.Kind == stateNone {
		return nil
	}

	switch state.Kind {
	case stateAwaitProof:
		return b.proofMessage(ctx, msg, state)
	case stateAdminTaskTitle, stateAdminTaskDescription, stateAdminTaskReward,
		stateAdminTaskDifficulty, stateAdminTaskDeadline:
		return b.adminTaskCreateMessage(ctx, msg, state)
	case stateBroadcastCompose:
		return b.broadcastComposeMessage(ctx, msg, state)
	case stateMentorTopic:
		return b.mentorTopicMessage(ctx, msg, state)
	case stateEventTitle, stateEventDate:
		return b.eventCreateMessage(ctx, msg, state)
	default:
		return nil
	}
}
