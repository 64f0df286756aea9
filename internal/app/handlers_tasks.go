package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/influence-hub/community-bot/internal/model"
	"github.com/influence-hub/community-bot/internal/service"
)

func (b *Bot) openTaskCatalog(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	text := "📚 <b>Каталог заданий</b>\nВыбери сложность:"
	return b.editText(cb, text, taskFiltersKeyboard())
}

func (b *Bot) handleTaskCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	data := cb.Data
	switch {
	case strings.HasPrefix(data, "tasks:filter:"):
		return b.taskList(ctx, cb)
	case strings.HasPrefix(data, "tasks:view:"):
		return b.taskView(ctx, cb)
	case strings.HasPrefix(data, "tasks:take:"):
		return b.taskTake(ctx, cb)
	case strings.HasPrefix(data, "tasks:submit:"):
		return b.taskSubmitStart(ctx, cb)
	default:
		return nil
	}
}

// taskList renders one catalog page: tasks:filter:<difficulty|all>:<page>
func (b *Bot) taskList(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	parts := strings.Split(cb.Data, ":")
	if len(parts) != 4 {
		return nil
	}
	diff := parts[2]
	page, err := strconv.Atoi(parts[3])
	if err != nil || page < 1 {
		page = 1
	}

	var difficulty model.TaskDifficulty
	if diff != "all" {
		difficulty = model.TaskDifficulty(diff)
	}

	// Ask for one extra row to know whether a next page exists.
	tasks, err := b.tasks.ListPublished(ctx, difficulty, page, b.cfg.PageSize+1)
	if err != nil {
		return fmt.Errorf("could not list tasks: %w", err)
	}
	hasMore := len(tasks) > b.cfg.PageSize
	if hasMore {
		tasks = tasks[:b.cfg.PageSize]
	}

	header := fmt.Sprintf("Каталог → %s (стр. %d)", difficulty.StringLocalized(), page)
	body := "Выберите задание:"
	if len(tasks) == 0 {
		body = "Пока пусто."
	}
	text := fmt.Sprintf("📚 <b>%s</b>\n%s", header, body)
	return b.editText(cb, text, taskListKeyboard(diff, page, tasks, hasMore))
}

func (b *Bot) taskView(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	taskID, err := parseTrailingID(cb.Data)
	if err != nil {
		return nil
	}

	task, err := b.tasks.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, model.ErrTaskNotFound) {
			return b.editText(cb, "Задание не найдено.", mainMenuKeyboard(b.isAdmin(ctx, cb.From.ID)))
		}
		return err
	}

	description := task.Description
	if description == "" {
		description = "Без описания"
	}
	text := fmt.Sprintf(
		"📌 <b>%s</b>\n\n%s\n\nСложность: %s\nНаграда: <b>+%d coins</b>\nДедлайн: %d ч",
		task.Title, description, task.Difficulty.StringLocalized(),
		task.RewardCoins, int(task.Deadline.Hours()),
	)

	taken := b.hasOpenAssignment(ctx, cb.From.ID, taskID)
	return b.editText(cb, text, taskViewKeyboard(taskID, taken))
}

func (b *Bot) hasOpenAssignment(ctx context.Context, tgUserID int64, taskID int) bool {
	groups := []service.HistoryGroup{service.HistoryGroupActive, service.HistoryGroupSubmitted}
	for _, group := range groups {
		items, err := b.lifecycle.UserHistory(ctx, tgUserID, group, 1, 100)
		if err != nil {
			return false
		}
		for _, d := range items {
			if d.Assignment.TaskID == taskID {
				return true
			}
		}
	}
	return false
}

func (b *Bot) taskTake(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	taskID, err := parseTrailingID(cb.Data)
	if err != nil {
		return nil
	}

	if _, err := b.users.GetOrCreate(ctx, cb.From.ID, cb.From.UserName); err != nil {
		return fmt.Errorf("could not register user: %w", err)
	}

	_, err = b.lifecycle.Take(ctx, cb.From.ID, taskID)
	switch {
	case err == nil:
		return b.alert(cb.ID, "Задание добавлено в ваши активные.")
	case errors.Is(err, model.ErrAssignmentExists):
		return b.alert(cb.ID, "У тебя уже есть это задание в работе.")
	case errors.Is(err, model.ErrTaskNotFound):
		return b.alert(cb.ID, "Задание не найдено.")
	default:
		return err
	}
}

func (b *Bot) taskSubmitStart(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	taskID, err := parseTrailingID(cb.Data)
	if err != nil {
		return nil
	}

	if !b.hasOpenAssignment(ctx, cb.From.ID, taskID) {
		return b.alert(cb.ID, "Сначала возьмите задание.")
	}

	b.states.set(cb.Message.Chat.ID, &convState{Kind: stateAwaitProof, TaskID: taskID})
	text := "📤 <b>Сдать задание</b>\n" +
		"Пришлите ссылку/описание (текст) или фото-доказательство.\n" +
		"• Текст: отправьте одним сообщением\n" +
		"• Фото: приложите как изображение\n\n" +
		"Отмена: /cancel"
	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	return b.send(edit)
}

// proofMessage finishes the submission dialogue with either text or the
// largest size of an attached photo.
func (b *Bot) proofMessage(ctx context.Context, msg *tgbotapi.Message, state *convState) error {
	var text, fileID string
	if len(msg.Photo) > 0 {
		fileID = msg.Photo[len(msg.Photo)-1].FileID
		text = msg.Caption
	} else {
		text = msg.Text
	}

	_, err := b.lifecycle.Submit(ctx, msg.From.ID, state.TaskID, text, fileID)
	switch {
	case err == nil:
		b.states.clear(msg.Chat.ID)
		reply := tgbotapi.NewMessage(msg.Chat.ID,
			"✅ Доказательство принято! Статус: <b>на проверке</b>\nОжидайте решения модератора.")
		reply.ParseMode = tgbotapi.ModeHTML
		return b.send(reply)
	case errors.Is(err, model.ErrEmptySubmission):
		return b.send(tgbotapi.NewMessage(msg.Chat.ID,
			"Пожалуйста, отправьте текст (ссылку/описание) или фото. Для отмены — /cancel"))
	case errors.Is(err, model.ErrAssignmentNotFound):
		b.states.clear(msg.Chat.ID)
		return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Сначала возьмите задание."))
	default:
		return err
	}
}
