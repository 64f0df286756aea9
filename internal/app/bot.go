// Package app is the Telegram surface of the bot: the update loop,
// command and callback routing and message rendering. Business rules
// live in internal/service, this layer only translates them to chat.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/influence-hub/community-bot/internal/model"
	"github.com/influence-hub/community-bot/internal/service"
	"github.com/influence-hub/community-bot/version"
)

type BotConfig struct {
	UpdateTimeout int
	AdminIDs      []int64
	PageSize      int
}

type Bot struct {
	api *tgbotapi.BotAPI
	cfg BotConfig

	users      *service.UserService
	tasks      *service.TaskService
	lifecycle  *service.LifecycleService
	rating     *service.RatingService
	mentorship *service.MentorshipService
	events     *service.EventService
	stats      *service.StatsService

	states *conversations
}

type Services struct {
	Users      *service.UserService
	Tasks      *service.TaskService
	Lifecycle  *service.LifecycleService
	Rating     *service.RatingService
	Mentorship *service.MentorshipService
	Events     *service.EventService
	Stats      *service.StatsService
}

func NewBot(cfg BotConfig, token string, logger tgbotapi.BotLogger, svc Services) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	tgbotapi.SetLogger(logger)

	if cfg.PageSize <= 0 {
		cfg.PageSize = 5
	}

	states, err := newConversations()
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:        api,
		cfg:        cfg,
		users:      svc.Users,
		tasks:      svc.Tasks,
		lifecycle:  svc.Lifecycle,
		rating:     svc.Rating,
		mentorship: svc.Mentorship,
		events:     svc.Events,
		stats:      svc.Stats,
		states:     states,
	}, nil
}

func (b *Bot) SetDebug(debug bool) {
	b.api.Debug = debug
}

func (b *Bot) GetSelf() tgbotapi.User {
	return b.api.Self
}

// Start consumes updates via long polling until the context is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	updates := b.api.GetUpdatesChan(u)
	b.Run(ctx, updates)
}

// Run consumes a prepared updates channel. The webhook server feeds the
// same channel, so both transports share one dispatch path.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case update := <-updates:
			b.handleUpdate(ctx, update)
		case <-ctx.Done():
			log.Printf("DEBUG stopped: %s", ctx.Err())
			return
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		if err := b.handleCallbackQuery(ctx, update); err != nil {
			log.Printf("ERROR handling callback query: %s", err)
		}
		return
	}

	if update.Message == nil { // ignore any non-Message updates
		return
	}

	if update.Message.IsCommand() {
		if err := b.handleCommand(ctx, update); err != nil {
			log.Printf("ERROR handling command: %s", err)
		}
		return
	}

	// Plain messages only matter while a conversation expects input.
	if err := b.handleConversation(ctx, update.Message); err != nil {
		log.Printf("ERROR handling message: %s", err)
	}
}

func (b *Bot) handleCommand(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	switch msg.Command() {
	case "start":
		return b.startCommand(ctx, msg)
	case "help", "menu":
		return b.showMainMenu(ctx, msg.Chat.ID, msg.From.ID)
	case "rating":
		return b.sendRating(ctx, msg.Chat.ID, msg.From.ID)
	case "admin":
		return b.adminPanelCommand(ctx, msg)
	case "grant":
		return b.grantCommand(ctx, msg)
	case "setrole":
		return b.setroleCommand(ctx, msg)
	case "status":
		return b.statusCommand(msg)
	case "cancel":
		b.states.clear(msg.Chat.ID)
		return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Отменено. Возвращаюсь в главное меню."))
	default:
		return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Незнакомая команда. Попробуйте /help."))
	}
}

func (b *Bot) startCommand(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.users.GetOrCreate(ctx, msg.From.ID, msg.From.UserName)
	if err != nil {
		return fmt.Errorf("could not register user: %w", err)
	}
	log.Printf("DEBUG start from user id=%d tg_id=%d", user.ID, user.TgUserID)

	if _, err := b.tasks.SeedIfEmpty(ctx); err != nil {
		log.Printf("WARN could not seed demo tasks: %s", err)
	}

	return b.showMainMenu(ctx, msg.Chat.ID, msg.From.ID)
}

func (b *Bot) statusCommand(msg *tgbotapi.Message) error {
	text := fmt.Sprintf("🤖 *Статус бота*\n\n✅ Работаю\n📊 Версия: %s", version.String())
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ParseMode = tgbotapi.ModeMarkdown
	return b.send(reply)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) error {
	cb := update.CallbackQuery

	// Handlers may have answered already with an alert, in which case the
	// empty answer is rejected. That is fine, the spinner is gone either way.
	defer func() {
		_, _ = b.api.Request(tgbotapi.NewCallback(cb.ID, ""))
	}()

	data := cb.Data
	switch {
	case data == "menu":
		return b.editMainMenu(ctx, cb)
	case data == "menu:tasks":
		return b.openTaskCatalog(ctx, cb)
	case data == "menu:profile":
		return b.openProfile(ctx, cb)
	case data == "menu:rating":
		return b.sendRating(ctx, cb.Message.Chat.ID, cb.From.ID)
	case data == "menu:mentors":
		return b.openMentors(ctx, cb)
	case data == "menu:events":
		return b.openEvents(ctx, cb)
	case strings.HasPrefix(data, "tasks:"):
		return b.handleTaskCallback(ctx, cb)
	case strings.HasPrefix(data, "profile:"):
		return b.handleProfileCallback(ctx, cb)
	case strings.HasPrefix(data, "mentor:"):
		return b.handleMentorCallback(ctx, cb)
	case strings.HasPrefix(data, "events:"):
		return b.handleEventCallback(ctx, cb)
	case data == "admin" || strings.HasPrefix(data, "admin:"):
		return b.handleAdminCallback(ctx, cb)
	default:
		return nil
	}
}

// isAdmin checks the configured super-admin list first, then the stored
// admin flag.
func (b *Bot) isAdmin(ctx context.Context, tgUserID int64) bool {
	for _, id := range b.cfg.AdminIDs {
		if id == tgUserID {
			return true
		}
	}
	user, err := b.users.Get(ctx, tgUserID)
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			log.Printf("WARN could not check admin flag: %s", err)
		}
		return false
	}
	return user.IsAdmin
}

func (b *Bot) send(c tgbotapi.Chattable) error {
	_, err := b.api.Send(c)
	return err
}

// notify delivers a side-channel message to a user and swallows delivery
// failures: a blocked bot must never affect the state transition that
// already happened.
func (b *Bot) notify(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if err := b.send(msg); err != nil {
		log.Printf("WARN could not notify user tg_id=%d: %s", chatID, err)
	}
}

func (b *Bot) alert(cbID string, text string) error {
	_, err := b.api.Request(tgbotapi.NewCallbackWithAlert(cbID, text))
	return err
}

func (b *Bot) editText(cb *tgbotapi.CallbackQuery, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(cb.Message.Chat.ID, cb.Message.MessageID, text, keyboard)
	edit.ParseMode = tgbotapi.ModeHTML
	return b.send(edit)
}

func parseTrailingID(data string) (int, error) {
	parts := strings.Split(data, ":")
	return strconv.Atoi(parts[len(parts)-1])
}
