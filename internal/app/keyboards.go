package app

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/influence-hub/community-bot/internal/model"
)

func mainMenuKeyboard(isAdmin bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📚 Задания", "menu:tasks"),
			tgbotapi.NewInlineKeyboardButtonData("👤 Профиль", "menu:profile"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏆 Рейтинг", "menu:rating"),
			tgbotapi.NewInlineKeyboardButtonData("🧑‍🏫 Менторы", "menu:mentors"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Календарь", "menu:events"),
		),
	}
	if isAdmin {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛠 Админка", "admin"),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func taskFiltersKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🟢 Легкие", "tasks:filter:easy:1"),
			tgbotapi.NewInlineKeyboardButtonData("🟡 Средние", "tasks:filter:medium:1"),
			tgbotapi.NewInlineKeyboardButtonData("🔴 Сложные", "tasks:filter:hard:1"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗂 Все", "tasks:filter:all:1"),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Меню", "menu"),
		),
	)
}

func taskListKeyboard(diff string, page int, tasks []model.Task, hasMore bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range tasks {
		label := fmt.Sprintf("%s · +%dc", t.Title, t.RewardCoins)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("tasks:view:%d", t.ID)),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page > 1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️", fmt.Sprintf("tasks:filter:%s:%d", diff, page-1)))
	}
	if hasMore {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("➡️", fmt.Sprintf("tasks:filter:%s:%d", diff, page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Фильтры", "menu:tasks"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func taskViewKeyboard(taskID int, alreadyTaken bool) tgbotapi.InlineKeyboardMarkup {
	var first tgbotapi.InlineKeyboardButton
	if alreadyTaken {
		first = tgbotapi.NewInlineKeyboardButtonData("📤 Сдать", fmt.Sprintf("tasks:submit:%d", taskID))
	} else {
		first = tgbotapi.NewInlineKeyboardButtonData("✋ Взять", fmt.Sprintf("tasks:take:%d", taskID))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(first),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ К каталогу", "menu:tasks"),
		),
	)
}

func profileKeyboard(counts model.StatusCounts) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🚧 Активные (%d)", counts.Active), "profile:history:active:1"),
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🕒 На проверке (%d)", counts.Submitted), "profile:history:submitted:1"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✅ Завершённые (%d)", counts.Done()), "profile:history:done:1"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Меню", "menu"),
		),
	)
}

func historyKeyboard(group string, page int, hasMore bool) tgbotapi.InlineKeyboardMarkup {
	var nav []tgbotapi.InlineKeyboardButton
	if page > 1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️", fmt.Sprintf("profile:history:%s:%d", group, page-1)))
	}
	if hasMore {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("➡️", fmt.Sprintf("profile:history:%s:%d", group, page+1)))
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Профиль", "menu:profile"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func ratingKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Меню", "menu"),
		),
	)
}

func mentorListKeyboard(mentors []model.User) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range mentors {
		name := m.Username
		if name == "" {
			name = fmt.Sprintf("id:%d", m.TgUserID)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧑‍🏫 "+name, fmt.Sprintf("mentor:apply:%d", m.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📥 Мои заявки", "mentor:inbox"),
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Меню", "menu"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func mentorInboxKeyboard(apps []model.MentorApplicationDetail) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, a := range apps {
		if a.Application.Status != model.ApplicationStatusPending {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅", fmt.Sprintf("mentor:app:%d:approve", a.Application.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌", fmt.Sprintf("mentor:app:%d:reject", a.Application.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Меню", "menu"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func eventsKeyboard(isAdmin bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	if isAdmin {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Событие", "events:add"),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Меню", "menu"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func adminPanelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🕒 Модерация", "admin:review:1"),
			tgbotapi.NewInlineKeyboardButtonData("📚 Задания", "admin:tasks"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", "admin:stats"),
			tgbotapi.NewInlineKeyboardButtonData("📢 Рассылка", "admin:broadcast"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Меню", "menu"),
		),
	)
}

func adminTasksKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Список", "admin:tasks:list"),
			tgbotapi.NewInlineKeyboardButtonData("➕ Создать", "admin:tasks:add"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌱 Демо-набор", "admin:tasks:seed"),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "admin"),
		),
	)
}

func adminTaskListKeyboard(tasks []model.Task) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range tasks {
		mark := "🚫"
		if t.IsPublished {
			mark = "✅"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s %s · +%dc", mark, t.Title, t.RewardCoins),
				fmt.Sprintf("admin:tasks:toggle:%d", t.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("admin:tasks:delete:%d", t.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "admin:tasks"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func reviewListKeyboard(page int, pending []model.AssignmentDetail, hasMore bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, d := range pending {
		label := fmt.Sprintf("#%d %s — @%s", d.Assignment.ID, d.TaskTitle, d.Username)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("admin:review:view:%d", d.Assignment.ID)),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page > 1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️", fmt.Sprintf("admin:review:%d", page-1)))
	}
	if hasMore {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("➡️", fmt.Sprintf("admin:review:%d", page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "admin"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func reviewDecisionKeyboard(assignmentID int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Принять", fmt.Sprintf("admin:review:%d:approve", assignmentID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", fmt.Sprintf("admin:review:%d:reject", assignmentID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ К списку", "admin:review:1"),
		),
	)
}

func broadcastPreviewKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Отправить", "admin:broadcast:send"),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Изменить", "admin:broadcast"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Отмена", "admin:broadcast:cancel"),
		),
	)
}
