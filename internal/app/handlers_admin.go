package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/influence-hub/community-bot/internal/model"
	"github.com/influence-hub/community-bot/internal/service"
)

func (b *Bot) adminPanelCommand(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isAdmin(ctx, msg.From.ID) {
		return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Недостаточно прав."))
	}
	reply := tgbotapi.NewMessage(msg.Chat.ID, "🛠 <b>Админка</b>")
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyMarkup = adminPanelKeyboard()
	return b.send(reply)
}

// grantCommand toggles the stored admin flag: /grant <tg_id> [off]
func (b *Bot) grantCommand(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isAdmin(ctx, msg.From.ID) {
		return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Недостаточно прав."))
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Использование: /grant <tg_id> [off]"))
	}
	tgID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Нужен числовой Telegram ID."))
	}

	revoke := len(args) > 1 && args[1] == "off"
	if revoke {
		err = b.users.RevokeAdmin(ctx, tgID)
	} else {
		err = b.users.GrantAdmin(ctx, tgID)
	}
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Пользователь не найден."))
		}
		return err
	}

	log.Printf("INFO admin flag set tg_id=%d revoke=%v by=%d", tgID, revoke, msg.From.ID)
	return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Готово."))
}

// setroleCommand assigns a community role: /setrole <tg_id> <active|guru|helper|none>
func (b *Bot) setroleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isAdmin(ctx, msg.From.ID) {
		return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Недостаточно прав."))
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Использование: /setrole <tg_id> <active|guru|helper|none>"))
	}
	tgID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Нужен числовой Telegram ID."))
	}

	role := model.UserRole(args[1])
	if args[1] == "none" {
		role = model.UserRoleNone
	} else if role != model.UserRoleActive && role != model.UserRoleGuru && role != model.UserRoleHelper {
		return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Роль: active | guru | helper | none."))
	}

	if err := b.users.SetRole(ctx, tgID, role); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Пользователь не найден."))
		}
		return err
	}
	return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Роль обновлена."))
}

func (b *Bot) handleAdminCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if !b.isAdmin(ctx, cb.From.ID) {
		return b.alert(cb.ID, "Недостаточно прав.")
	}

	data := cb.Data
	switch {
	case data == "admin":
		return b.editText(cb, "🛠 <b>Админка</b>", adminPanelKeyboard())
	case data == "admin:stats":
		return b.adminStats(ctx, cb)
	case data == "admin:tasks":
		return b.editText(cb, "📚 Управление заданиями", adminTasksKeyboard())
	case data == "admin:tasks:list":
		return b.adminTaskList(ctx, cb)
	case data == "admin:tasks:add":
		return b.adminTaskCreateStart(cb)
	case data == "admin:tasks:seed":
		return b.adminTaskSeed(ctx, cb)
	case strings.HasPrefix(data, "admin:tasks:toggle:"):
		return b.adminTaskToggle(ctx, cb)
	case strings.HasPrefix(data, "admin:tasks:delete:"):
		return b.adminTaskDelete(ctx, cb)
	case data == "admin:broadcast":
		return b.broadcastStart(cb)
	case data == "admin:broadcast:send":
		return b.broadcastSend(ctx, cb)
	case data == "admin:broadcast:cancel":
		b.states.clear(cb.Message.Chat.ID)
		return b.editText(cb, "Рассылка отменена.", adminPanelKeyboard())
	case strings.HasPrefix(data, "admin:review:view:"):
		return b.reviewView(ctx, cb)
	case strings.HasSuffix(data, ":approve") || strings.HasSuffix(data, ":reject"):
		return b.reviewDecide(ctx, cb)
	case strings.HasPrefix(data, "admin:review:"):
		return b.reviewList(ctx, cb)
	default:
		return nil
	}
}

// --- moderation -----------------------------------------------------------

func (b *Bot) reviewList(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	page, err := parseTrailingID(cb.Data)
	if err != nil || page < 1 {
		page = 1
	}

	pending, err := b.lifecycle.ListPending(ctx, page, b.cfg.PageSize+1)
	if err != nil {
		return fmt.Errorf("could not list pending: %w", err)
	}
	hasMore := len(pending) > b.cfg.PageSize
	if hasMore {
		pending = pending[:b.cfg.PageSize]
	}

	text := fmt.Sprintf("🕒 <b>На проверке</b> (стр. %d)", page)
	if len(pending) == 0 {
		text += "\nОчередь пуста."
	}
	return b.editText(cb, text, reviewListKeyboard(page, pending, hasMore))
}

func (b *Bot) reviewView(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	id, err := parseTrailingID(cb.Data)
	if err != nil {
		return nil
	}

	detail, err := b.lifecycle.GetAssignment(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrAssignmentNotFound) {
			return b.alert(cb.ID, "Элемент не найден.")
		}
		return err
	}

	name := detail.Username
	if name == "" {
		name = fmt.Sprintf("id:%d", detail.TgUserID)
	}
	proof := detail.Assignment.ProofText
	if proof == "" && detail.Assignment.ProofFileID != "" {
		proof = "📎 фото-доказательство"
	}
	if proof == "" {
		proof = "—"
	}

	text := fmt.Sprintf(
		"📄 <b>Заявка #%d</b>\n\n"+
			"Задание: <b>%s</b> (+%dc)\n"+
			"От: @%s\n"+
			"Статус: %s\n"+
			"Сдано: %s\n\n"+
			"Доказательство:\n%s",
		detail.Assignment.ID, detail.TaskTitle, detail.Reward, name,
		detail.Assignment.Status.StringLocalized(),
		detail.Assignment.SubmittedAt.Format("2006-01-02 15:04"),
		proof,
	)

	if detail.Assignment.ProofFileID != "" {
		photo := tgbotapi.NewPhoto(cb.Message.Chat.ID, tgbotapi.FileID(detail.Assignment.ProofFileID))
		if err := b.send(photo); err != nil {
			log.Printf("WARN could not send proof photo: %s", err)
		}
	}
	return b.editText(cb, text, reviewDecisionKeyboard(detail.Assignment.ID))
}

// reviewDecide executes admin:review:<id>:(approve|reject).
func (b *Bot) reviewDecide(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	parts := strings.Split(cb.Data, ":")
	if len(parts) != 4 {
		return b.alert(cb.ID, "Некорректные данные.")
	}
	id, err := strconv.Atoi(parts[2])
	if err != nil {
		return b.alert(cb.ID, "Некорректные данные.")
	}

	switch parts[3] {
	case "approve":
		out, err := b.lifecycle.Approve(ctx, id)
		if err != nil {
			return b.decideError(cb, err)
		}
		b.notifyApproval(out)
		return b.editText(cb,
			fmt.Sprintf("Готово: заявка #%d принята, +%d coins.", id, out.Reward),
			adminPanelKeyboard())
	case "reject":
		res, err := b.lifecycle.Reject(ctx, id)
		if err != nil {
			return b.decideError(cb, err)
		}
		b.notify(res.TgUserID, "😔 Задание отклонено модератором. Загляните в историю активности.")
		return b.editText(cb,
			fmt.Sprintf("Готово: заявка #%d отклонена.", id),
			adminPanelKeyboard())
	default:
		return b.alert(cb.ID, "Неизвестное действие.")
	}
}

func (b *Bot) decideError(cb *tgbotapi.CallbackQuery, err error) error {
	if errors.Is(err, model.ErrAssignmentNotFound) || errors.Is(err, model.ErrWrongStatus) {
		return b.alert(cb.ID, "Элемент не найден или уже обработан.")
	}
	return err
}

// notifyApproval tells the user about the credit and any level-up. Send
// failures are logged and dropped, the approval already happened.
func (b *Bot) notifyApproval(out *service.ApproveOutcome) {
	text := fmt.Sprintf("🎉 Задание принято! Начислено <b>+%d coins</b>.", out.Reward)
	if out.LevelAfter > out.LevelBefore {
		text += fmt.Sprintf("\n🏅 Новый уровень: <b>%d</b>!", out.LevelAfter)
	}
	if out.BadgeWon {
		text += fmt.Sprintf("\n🎖 Открыт бейдж: %s <b>%s</b>", out.Badge.Icon, out.Badge.Title)
	}

	msg := tgbotapi.NewMessage(out.TgUserID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if err := b.send(msg); err != nil {
		log.Printf("WARN could not notify user tg_id=%d about approval: %s", out.TgUserID, err)
	}
}

// --- task management ------------------------------------------------------

func (b *Bot) adminTaskList(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	items, err := b.tasks.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("could not list tasks: %w", err)
	}
	if len(items) == 0 {
		return b.editText(cb, "Заданий пока нет.", adminTasksKeyboard())
	}
	return b.editText(cb, "📋 Список заданий:", adminTaskListKeyboard(items))
}

func (b *Bot) adminTaskToggle(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	id, err := parseTrailingID(cb.Data)
	if err != nil {
		return nil
	}
	if _, err := b.tasks.TogglePublish(ctx, id); err != nil {
		if errors.Is(err, model.ErrTaskNotFound) {
			return b.alert(cb.ID, "Задание не найдено.")
		}
		return err
	}
	return b.adminTaskList(ctx, cb)
}

func (b *Bot) adminTaskDelete(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	id, err := parseTrailingID(cb.Data)
	if err != nil {
		return nil
	}
	switch err := b.tasks.Delete(ctx, id); {
	case err == nil:
		return b.adminTaskList(ctx, cb)
	case errors.Is(err, model.ErrTaskNotFound):
		return b.alert(cb.ID, "Задание не найдено.")
	case errors.Is(err, model.ErrTaskHasAssignments):
		return b.alert(cb.ID, "Нельзя удалить: у кого-то это задание в работе.")
	default:
		return err
	}
}

func (b *Bot) adminTaskSeed(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if _, err := b.tasks.SeedIfEmpty(ctx); err != nil {
		return fmt.Errorf("could not seed demo tasks: %w", err)
	}
	return b.adminTaskList(ctx, cb)
}

func (b *Bot) adminTaskCreateStart(cb *tgbotapi.CallbackQuery) error {
	b.states.set(cb.Message.Chat.ID, &convState{Kind: stateAdminTaskTitle})
	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID,
		"Введите заголовок задания:\n\nОтмена: /cancel")
	return b.send(edit)
}

// adminTaskCreateMessage walks the create dialogue:
// title -> description -> reward -> difficulty -> deadline.
func (b *Bot) adminTaskCreateMessage(ctx context.Context, msg *tgbotapi.Message, state *convState) error {
	text := strings.TrimSpace(msg.Text)

	switch state.Kind {
	case stateAdminTaskTitle:
		if text == "" {
			return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Нужен заголовок. Введите ещё раз."))
		}
		state.TaskDraft.Title = text
		state.Kind = stateAdminTaskDescription
		b.states.set(msg.Chat.ID, state)
		return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Введите описание задания:"))

	case stateAdminTaskDescription:
		state.TaskDraft.Description = text
		state.Kind = stateAdminTaskReward
		b.states.set(msg.Chat.ID, state)
		return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Введите награду (целое число coins):"))

	case stateAdminTaskReward:
		reward, err := strconv.Atoi(text)
		if err != nil || reward < 0 {
			return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Нужно целое число. Введите награду ещё раз."))
		}
		state.TaskDraft.Reward = reward
		state.Kind = stateAdminTaskDifficulty
		b.states.set(msg.Chat.ID, state)
		return b.send(tgbotapi.NewMessage(msg.Chat.ID,
			"Введите сложность: easy | medium | hard (или auto):"))

	case stateAdminTaskDifficulty:
		diff := model.TaskDifficulty(strings.ToLower(text))
		if text == "auto" || text == "" {
			diff = ""
		} else if !diff.Valid() {
			return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Допустимо: easy | medium | hard | auto. Введите ещё раз."))
		}
		state.TaskDraft.Difficulty = diff
		state.Kind = stateAdminTaskDeadline
		b.states.set(msg.Chat.ID, state)
		return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Введите дедлайн в часах:"))

	case stateAdminTaskDeadline:
		hours, err := strconv.Atoi(text)
		if err != nil || hours < 0 {
			return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Нужно целое число часов. Введите ещё раз."))
		}

		draft := state.TaskDraft
		id, err := b.tasks.Create(ctx, draft.Title, draft.Description, draft.Reward,
			time.Duration(hours)*time.Hour, draft.Difficulty)
		b.states.clear(msg.Chat.ID)
		if err != nil {
			return fmt.Errorf("could not create task: %w", err)
		}

		reply := tgbotapi.NewMessage(msg.Chat.ID,
			fmt.Sprintf("✅ Задание создано (id=%d). По умолчанию <b>скрыто</b>, опубликуйте в списке.", id))
		reply.ParseMode = tgbotapi.ModeHTML
		reply.ReplyMarkup = adminTasksKeyboard()
		return b.send(reply)
	}
	return nil
}

// --- stats ----------------------------------------------------------------

func (b *Bot) adminStats(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	stats, err := b.stats.Collect(ctx)
	if err != nil {
		return fmt.Errorf("could not collect stats: %w", err)
	}

	text := fmt.Sprintf(
		"📊 <b>Статистика</b>\n\n"+
			"👥 Пользователи: %d (админов: %d)\n"+
			"📚 Задания: %d (опубликовано: %d)\n\n"+
			"Заявки:\n"+
			"• в работе: %d\n"+
			"• на проверке: %d\n"+
			"• приняты: %d\n"+
			"• отклонены: %d",
		stats.TotalUsers, stats.AdminsCount,
		stats.TasksTotal, stats.TasksPublished,
		stats.Assignments.Active, stats.Assignments.Submitted,
		stats.Assignments.Approved, stats.Assignments.Rejected,
	)
	return b.editText(cb, text, adminPanelKeyboard())
}

// --- broadcast ------------------------------------------------------------

func (b *Bot) broadcastStart(cb *tgbotapi.CallbackQuery) error {
	b.states.set(cb.Message.Chat.ID, &convState{Kind: stateBroadcastCompose})
	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID,
		"✉️ Рассылка\n\nОтправьте текст сообщения для всех пользователей.\n\nОтмена: /cancel")
	return b.send(edit)
}

func (b *Bot) broadcastComposeMessage(ctx context.Context, msg *tgbotapi.Message, state *convState) error {
	if strings.TrimSpace(msg.Text) == "" {
		return b.send(tgbotapi.NewMessage(msg.Chat.ID, "Нужен текст для рассылки. Попробуйте ещё раз."))
	}

	state.BroadcastText = msg.Text
	b.states.set(msg.Chat.ID, state)

	preview := tgbotapi.NewMessage(msg.Chat.ID, "Вот так будет выглядеть рассылка:\n\n"+msg.Text)
	preview.ReplyMarkup = broadcastPreviewKeyboard()
	return b.send(preview)
}

// broadcastSend delivers the composed text to every known user with a
// small delay between sends to stay under flood limits. Individual
// failures (blocked bot, deleted account) are logged and skipped.
func (b *Bot) broadcastSend(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	state, ok := b.states.get(cb.Message.Chat.ID)
	if !ok || state.BroadcastText == "" {
		return b.alert(cb.ID, "Нет текста для рассылки.")
	}
	text := state.BroadcastText
	b.states.clear(cb.Message.Chat.ID)

	ids, err := b.users.AllTgIDs(ctx)
	if err != nil {
		return fmt.Errorf("could not load recipients: %w", err)
	}

	log.Printf("INFO broadcast started recipients=%d by=%d", len(ids), cb.From.ID)

	sent := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if err := b.send(tgbotapi.NewMessage(id, text)); err != nil {
			log.Printf("WARN broadcast to tg_id=%d failed: %s", id, err)
			continue
		}
		sent++
		time.Sleep(50 * time.Millisecond)
	}

	log.Printf("INFO broadcast finished total=%d sent=%d", len(ids), sent)
	return b.editText(cb,
		fmt.Sprintf("📢 Рассылка завершена.\n\nВсего пользователей: %d\nУспешно отправлено: %d", len(ids), sent),
		adminPanelKeyboard())
}
