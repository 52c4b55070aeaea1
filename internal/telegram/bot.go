package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vsbaha/ENASGame-new/internal/models"
	"github.com/vsbaha/ENASGame-new/internal/repository"
	"github.com/vsbaha/ENASGame-new/internal/service"
	"github.com/vsbaha/ENASGame-new/internal/session"
	"github.com/vsbaha/ENASGame-new/internal/storage"
)

const (
	btnTournaments = "🏆 Турниры"
	btnMyTeams     = "👥 Мои команды"
	btnHelp        = "ℹ️ Помощь"
)

type Services struct {
	Access      service.AccessService
	Games       service.GamesService
	Tournaments service.TournamentsService
	Teams       service.TeamsService
	Stats       service.StatsService
	Sessions    *session.Store
}

type Bot struct {
	api    *tgbotapi.BotAPI
	svc    Services
	files  *storage.Files
	logger repository.Logger
}

func NewBot(api *tgbotapi.BotAPI, svc Services, files *storage.Files, logger repository.Logger) *Bot {
	return &Bot{
		api:    api,
		svc:    svc,
		files:  files,
		logger: logger,
	}
}

// Sender adapts the bot API to the notification dispatcher.
type Sender struct {
	api *tgbotapi.BotAPI
}

func NewSender(api *tgbotapi.BotAPI) *Sender {
	return &Sender{api: api}
}

func (s *Sender) SendText(chatID int64, text string) error {
	_, err := s.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			if err := b.handleUpdate(ctx, update); err != nil {
				b.logger.Error(err, "handle_update", "update", int64(update.UpdateID), 0)
			}
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.Message != nil {
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.replyError(update.Message.Chat.ID, err)
			return err
		}
		return nil
	}
	if update.CallbackQuery != nil {
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			if update.CallbackQuery.Message != nil {
				b.replyError(update.CallbackQuery.Message.Chat.ID, err)
			}
			return err
		}
		return nil
	}
	return nil
}

// replyError maps the error taxonomy to user-visible refusals; anything
// unexpected becomes a generic failure notice and is left for the caller to log.
func (b *Bot) replyError(chatID int64, err error) {
	switch {
	case errors.Is(err, models.ErrNotRegistered):
		b.sendSimple(chatID, "Сначала зарегистрируйтесь: отправьте /start.")
	case errors.Is(err, models.ErrForbidden):
		b.sendSimple(chatID, "🚫 Недостаточно прав.")
	case errors.Is(err, models.ErrNotFound):
		b.sendSimple(chatID, "Запись больше не существует.")
	case errors.Is(err, models.ErrValidation):
		b.sendSimple(chatID, "❌ "+strings.TrimSuffix(err.Error(), ": "+models.ErrValidation.Error()))
	case errors.Is(err, models.ErrConflict):
		b.sendSimple(chatID, "Действие уже выполнено.")
	default:
		b.sendSimple(chatID, "⚠️ Произошла ошибка, попробуйте позже.")
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			return b.handleStart(ctx, msg)
		case "admin":
			if _, err := b.svc.Access.Require(ctx, userID, models.RoleAdmin); err != nil {
				return err
			}
			return b.sendAdminPanel(ctx, chatID, userID, 0)
		case "cancel":
			if err := b.svc.Sessions.Clear(ctx, userID); err != nil {
				return err
			}
			b.sendSimple(chatID, "❌ Действие отменено.")
			return nil
		default:
			b.sendSimple(chatID, "Неизвестная команда.")
			return nil
		}
	}

	switch msg.Text {
	case btnTournaments:
		return b.sendGamesList(ctx, chatID, 0)
	case btnMyTeams:
		return b.sendMyTeams(ctx, chatID, userID)
	case btnHelp:
		b.sendSimple(chatID, "Бот для регистрации на киберспортивные турниры.\n"+
			"🏆 Турниры — активные турниры по играм.\n"+
			"👥 Мои команды — ваши заявки.\n"+
			"/cancel — прервать текущее действие.")
		return nil
	}

	// Everything else may only continue an active wizard.
	state := &wizardState{}
	stored, err := b.svc.Sessions.Load(ctx, userID, state)
	if err != nil {
		return err
	}
	if stored == nil || state.Flow == "" {
		return nil
	}
	return b.advanceWizard(ctx, msg, state)
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	var username *string
	if msg.From.UserName != "" {
		name := msg.From.UserName
		username = &name
	}
	fullName := strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
	user, created, err := b.svc.Access.RegisterOrGreet(ctx, msg.From.ID, fullName, username)
	if err != nil {
		return err
	}
	if created {
		b.logger.Info("register", "user", user.ID, user.TelegramID, string(user.Role))
		b.sendSimple(msg.Chat.ID, "🎉 Добро пожаловать! Вы зарегистрированы.")
	} else {
		b.sendSimple(msg.Chat.ID, "👋 С возвращением!")
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, "Главное меню:")
	reply.ReplyMarkup = mainMenuKeyboard()
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.From == nil || cb.Message == nil {
		return nil
	}
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	payload, err := parseCallback(cb.Data)
	if err != nil {
		_, _ = b.api.Request(tgbotapi.NewCallback(cb.ID, "Некорректная кнопка"))
		return nil
	}
	_, _ = b.api.Request(tgbotapi.NewCallback(cb.ID, ""))

	switch payload.Action {
	// User surface ------------------------------------------------------
	case "games":
		return b.sendGamesList(ctx, chatID, messageID)
	case "game_tournaments":
		return b.sendGameTournaments(ctx, chatID, messageID, parseInt64(payload.Params["id"]))
	case "tournament_view":
		return b.sendTournamentCard(ctx, chatID, parseInt64(payload.Params["id"]))
	case "tournament_rules":
		return b.sendTournamentRules(ctx, chatID, parseInt64(payload.Params["id"]))
	case "register_team":
		return b.startTeamWizard(ctx, chatID, userID, parseInt64(payload.Params["id"]))
	case "my_team":
		return b.sendMyTeamCard(ctx, chatID, userID, parseInt64(payload.Params["id"]))
	case "team_edit":
		return b.startTeamEditWizard(ctx, chatID, userID, parseInt64(payload.Params["id"]))
	case "team_edit_choice":
		return b.chooseTeamEditField(ctx, chatID, userID, payload.Params["field"])
	case "team_delete":
		teamID := parseInt64(payload.Params["id"])
		if err := b.svc.Teams.Delete(ctx, userID, teamID); err != nil {
			return err
		}
		b.sendSimple(chatID, "Команда удалена.")
		return b.sendMyTeams(ctx, chatID, userID)

	// Admin surface -----------------------------------------------------
	case "admin_panel":
		return b.sendAdminPanel(ctx, chatID, userID, messageID)
	case "stats":
		return b.sendStats(ctx, chatID, userID, messageID)
	case "manage_tournaments":
		return b.sendManagedTournaments(ctx, chatID, userID, messageID)
	case "tournament_manage":
		return b.sendManageCard(ctx, chatID, userID, parseInt64(payload.Params["id"]))
	case "tournament_toggle":
		id := parseInt64(payload.Params["id"])
		active, err := b.svc.Tournaments.ToggleActive(ctx, userID, id)
		if err != nil {
			return err
		}
		if active {
			b.sendSimple(chatID, "Турнир активирован: регистрация открыта.")
		} else {
			b.sendSimple(chatID, "Турнир деактивирован: регистрация закрыта.")
		}
		return b.sendManageCard(ctx, chatID, userID, id)
	case "tournament_delete":
		if err := b.svc.Tournaments.Delete(ctx, userID, parseInt64(payload.Params["id"])); err != nil {
			return err
		}
		b.sendSimple(chatID, "✅ Турнир и все его файлы удалены.")
		return b.sendManagedTournaments(ctx, chatID, userID, 0)
	case "tournament_create":
		return b.startTournamentWizard(ctx, chatID, userID)
	case "wizard_game":
		return b.wizardSelectGame(ctx, chatID, userID, parseInt64(payload.Params["id"]))
	case "wizard_format":
		return b.wizardSelectFormat(ctx, chatID, userID, parseInt64(payload.Params["id"]))
	case "moderate_teams":
		return b.sendPendingTeams(ctx, chatID, userID, messageID)
	case "team_moderate":
		return b.sendTeamModerationCard(ctx, chatID, userID, parseInt64(payload.Params["id"]))
	case "team_approve":
		if err := b.svc.Teams.Approve(ctx, userID, parseInt64(payload.Params["id"])); err != nil {
			return err
		}
		b.sendSimple(chatID, "✅ Команда допущена, капитан уведомлён.")
		return b.sendPendingTeams(ctx, chatID, userID, 0)
	case "team_reject":
		if err := b.svc.Teams.Reject(ctx, userID, parseInt64(payload.Params["id"])); err != nil {
			return err
		}
		b.sendSimple(chatID, "❌ Заявка отклонена и удалена, капитан уведомлён.")
		return b.sendPendingTeams(ctx, chatID, userID, 0)

	// Super-admin surface ----------------------------------------------
	case "pending_tournaments":
		return b.sendPendingTournaments(ctx, chatID, userID, messageID)
	case "tournament_approve":
		if err := b.svc.Tournaments.Approve(ctx, userID, parseInt64(payload.Params["id"])); err != nil {
			return err
		}
		b.sendSimple(chatID, "✅ Турнир одобрен, создатель уведомлён.")
		return b.sendPendingTournaments(ctx, chatID, userID, 0)
	case "tournament_reject":
		if err := b.svc.Tournaments.Reject(ctx, userID, parseInt64(payload.Params["id"])); err != nil {
			return err
		}
		b.sendSimple(chatID, "❌ Турнир отклонён, создатель уведомлён.")
		return b.sendPendingTournaments(ctx, chatID, userID, 0)
	case "manage_admins":
		return b.sendAdminsList(ctx, chatID, userID, messageID)
	case "admin_toggle":
		target, err := b.svc.Access.ToggleAdmin(ctx, userID, parseInt64(payload.Params["id"]))
		if err != nil {
			return err
		}
		b.sendSimple(chatID, fmt.Sprintf("✅ Роль %s изменена: %s.", escape(target.FullName), roleLabel(target.Role)))
		return b.sendAdminsList(ctx, chatID, userID, 0)
	case "admin_add":
		return b.startAddAdminWizard(ctx, chatID, userID)
	default:
		b.sendSimple(chatID, "Кнопка устарела.")
		return nil
	}
}

// ----------------------------------------------------------------------------
// Renderers

func (b *Bot) sendSimple(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	_, _ = b.api.Send(msg)
}

// sendOrEdit renders a keyboarded screen either as a fresh message or, when
// triggered from a button, as an edit of the originating message.
func (b *Bot) sendOrEdit(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	if messageID != 0 {
		msg := tgbotapi.NewEditMessageText(chatID, messageID, text)
		msg.ParseMode = "Markdown"
		msg.ReplyMarkup = &keyboard
		_, err := b.api.Send(msg)
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboard
	_, err := b.api.Send(msg)
	return err
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnTournaments),
			tgbotapi.NewKeyboardButton(btnMyTeams),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnHelp),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

func (b *Bot) sendGamesList(ctx context.Context, chatID int64, messageID int) error {
	games, err := b.svc.Games.List(ctx)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		b.sendSimple(chatID, "Пока нет доступных игр.")
		return nil
	}
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, game := range games {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(game.Name, fmt.Sprintf("game_tournaments|id=%d", game.ID)),
		})
	}
	return b.sendOrEdit(chatID, messageID, "🎮 Выберите игру:", tgbotapi.NewInlineKeyboardMarkup(keyboard...))
}

func (b *Bot) sendGameTournaments(ctx context.Context, chatID int64, messageID int, gameID int64) error {
	tournaments, err := b.svc.Tournaments.ListActiveByGame(ctx, gameID)
	if err != nil {
		return err
	}
	if len(tournaments) == 0 {
		b.sendSimple(chatID, "😞 Нет активных турниров для этой игры.")
		return nil
	}
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, t := range tournaments {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(t.Name+" 🏆", fmt.Sprintf("tournament_view|id=%d", t.ID)),
		})
	}
	keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("◀️ Назад", "games"),
	})
	return b.sendOrEdit(chatID, messageID, "🏆 Активные турниры:", tgbotapi.NewInlineKeyboardMarkup(keyboard...))
}

func (b *Bot) sendTournamentCard(ctx context.Context, chatID int64, id int64) error {
	tournament, err := b.svc.Tournaments.Get(ctx, id)
	if err != nil {
		return err
	}
	if tournament.LogoPath != "" {
		logo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(tournament.LogoPath))
		logo.Caption = "🏆 " + tournament.Name
		_, _ = b.api.Send(logo)
	}
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🏅 *%s*\n", escape(tournament.Name)))
	builder.WriteString(fmt.Sprintf("🕒 Дата начала: %s\n", tournament.StartDate.Format("02.01.2006 15:04")))
	builder.WriteString(fmt.Sprintf("📝 Описание: %s\n", escape(tournament.Description)))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("📜 Регламент", fmt.Sprintf("tournament_rules|id=%d", tournament.ID)),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("✅ Зарегистрировать команду", fmt.Sprintf("register_team|id=%d", tournament.ID)),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("◀️ Назад", fmt.Sprintf("game_tournaments|id=%d", tournament.GameID)),
		},
	)
	return b.sendOrEdit(chatID, 0, builder.String(), keyboard)
}

func (b *Bot) sendTournamentRules(ctx context.Context, chatID int64, id int64) error {
	tournament, err := b.svc.Tournaments.Get(ctx, id)
	if err != nil {
		return err
	}
	if tournament.RegulationsPath == "" {
		b.sendSimple(chatID, "Регламент не загружен.")
		return nil
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(tournament.RegulationsPath))
	doc.Caption = "📄 Регламент турнира " + tournament.Name
	_, err = b.api.Send(doc)
	return err
}

func (b *Bot) sendMyTeams(ctx context.Context, chatID, userID int64) error {
	teams, err := b.svc.Teams.ListByCaptain(ctx, userID)
	if err != nil {
		return err
	}
	if len(teams) == 0 {
		b.sendSimple(chatID, "У вас пока нет команд. Зарегистрируйте команду через раздел «Турниры».")
		return nil
	}
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, team := range teams {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s %s", team.Name, teamStatusBadge(team.Status)),
				fmt.Sprintf("my_team|id=%d", team.ID)),
		})
	}
	return b.sendOrEdit(chatID, 0, "👥 Ваши команды:", tgbotapi.NewInlineKeyboardMarkup(keyboard...))
}

func (b *Bot) sendMyTeamCard(ctx context.Context, chatID, userID, teamID int64) error {
	team, err := b.svc.Teams.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if team.CaptainTgID != userID {
		return fmt.Errorf("only the captain may view the team: %w", models.ErrForbidden)
	}
	tournament, err := b.svc.Tournaments.Get(ctx, team.TournamentID)
	if err != nil {
		return err
	}
	roster, err := b.svc.Teams.Roster(ctx, teamID)
	if err != nil {
		return err
	}
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("*%s* %s\n", escape(team.Name), teamStatusBadge(team.Status)))
	builder.WriteString(fmt.Sprintf("Турнир: %s\n", escape(tournament.Name)))
	builder.WriteString(fmt.Sprintf("Игроков: %d (включая капитана)\n", len(roster)))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("✏️ Редактировать", fmt.Sprintf("team_edit|id=%d", team.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", fmt.Sprintf("team_delete|id=%d", team.ID)),
		},
	)
	return b.sendOrEdit(chatID, 0, builder.String(), keyboard)
}

func (b *Bot) sendAdminPanel(ctx context.Context, chatID, userID int64, messageID int) error {
	actor, err := b.svc.Access.Require(ctx, userID, models.RoleAdmin)
	if err != nil {
		return err
	}
	keyboard := [][]tgbotapi.InlineKeyboardButton{
		{tgbotapi.NewInlineKeyboardButtonData("🏆 Управление турнирами", "manage_tournaments")},
		{tgbotapi.NewInlineKeyboardButtonData("📝 Модерация команд", "moderate_teams")},
		{tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", "stats")},
	}
	title := "⚙️ Админ-панель:"
	if actor.Role == models.RoleSuperAdmin {
		keyboard = append(keyboard,
			[]tgbotapi.InlineKeyboardButton{tgbotapi.NewInlineKeyboardButtonData("🕒 Турниры на модерации", "pending_tournaments")},
			[]tgbotapi.InlineKeyboardButton{tgbotapi.NewInlineKeyboardButtonData("👥 Управление админами", "manage_admins")},
		)
		title = "⚡️ Супер-админ панель:"
	}
	return b.sendOrEdit(chatID, messageID, title, tgbotapi.NewInlineKeyboardMarkup(keyboard...))
}

func (b *Bot) sendStats(ctx context.Context, chatID, userID int64, messageID int) error {
	if _, err := b.svc.Access.Require(ctx, userID, models.RoleAdmin); err != nil {
		return err
	}
	stats, err := b.svc.Stats.Collect(ctx)
	if err != nil {
		return err
	}
	text := fmt.Sprintf("📊 Статистика:\n👥 Пользователей: %d\n🏆 Активных турниров: %d\n👥 Зарегистрированных команд: %d",
		stats.Users, stats.ActiveTournaments, stats.Teams)
	keyboard := tgbotapi.NewInlineKeyboardMarkup([]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("◀️ В админ-панель", "admin_panel"),
	})
	return b.sendOrEdit(chatID, messageID, text, keyboard)
}

func (b *Bot) sendManagedTournaments(ctx context.Context, chatID, userID int64, messageID int) error {
	tournaments, err := b.svc.Tournaments.ListManaged(ctx, userID)
	if err != nil {
		return err
	}
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, t := range tournaments {
		label := fmt.Sprintf("%s %s", t.Name, tournamentBadge(&t))
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("tournament_manage|id=%d", t.ID)),
		})
	}
	keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("➕ Создать турнир", "tournament_create"),
		tgbotapi.NewInlineKeyboardButtonData("◀️ Назад", "admin_panel"),
	})
	return b.sendOrEdit(chatID, messageID, "Управление турнирами:", tgbotapi.NewInlineKeyboardMarkup(keyboard...))
}

func (b *Bot) sendManageCard(ctx context.Context, chatID, userID, id int64) error {
	actor, err := b.svc.Access.Require(ctx, userID, models.RoleAdmin)
	if err != nil {
		return err
	}
	tournament, err := b.svc.Tournaments.GetManaged(ctx, userID, id)
	if err != nil {
		return err
	}
	game, err := b.svc.Games.Get(ctx, tournament.GameID)
	if err != nil {
		return err
	}
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🏆 *%s*\n", escape(tournament.Name)))
	builder.WriteString(fmt.Sprintf("🎮 Игра: %s\n", escape(game.Name)))
	builder.WriteString(fmt.Sprintf("🕒 Старт: %s\n", tournament.StartDate.Format("02.01.2006 15:04")))
	builder.WriteString(fmt.Sprintf("Модерация: %s\n", tournamentStatusLabel(tournament.Status)))
	if tournament.IsActive {
		builder.WriteString("🔄 Статус: Активен ✅\n")
	} else {
		builder.WriteString("🔄 Статус: Неактивен ❌\n")
	}

	toggleLabel := "⏸ Деактивировать"
	if !tournament.IsActive {
		toggleLabel = "▶️ Активировать"
	}
	keyboard := [][]tgbotapi.InlineKeyboardButton{
		{
			tgbotapi.NewInlineKeyboardButtonData(toggleLabel, fmt.Sprintf("tournament_toggle|id=%d", id)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", fmt.Sprintf("tournament_delete|id=%d", id)),
		},
	}
	if actor.Role == models.RoleSuperAdmin && tournament.Status == models.TournamentPending {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("✅ Одобрить", fmt.Sprintf("tournament_approve|id=%d", id)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", fmt.Sprintf("tournament_reject|id=%d", id)),
		})
	}
	keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("◀️ К списку", "manage_tournaments"),
	})
	return b.sendOrEdit(chatID, 0, builder.String(), tgbotapi.NewInlineKeyboardMarkup(keyboard...))
}

func (b *Bot) sendPendingTournaments(ctx context.Context, chatID, userID int64, messageID int) error {
	tournaments, err := b.svc.Tournaments.ListPending(ctx, userID)
	if err != nil {
		return err
	}
	if len(tournaments) == 0 {
		return b.sendOrEdit(chatID, messageID, "📭 Нет турниров на модерации.", tgbotapi.NewInlineKeyboardMarkup(
			[]tgbotapi.InlineKeyboardButton{tgbotapi.NewInlineKeyboardButtonData("◀️ Назад", "admin_panel")},
		))
	}
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, t := range tournaments {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(t.Name, fmt.Sprintf("tournament_manage|id=%d", t.ID)),
		})
	}
	keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("◀️ Назад", "admin_panel"),
	})
	return b.sendOrEdit(chatID, messageID, "🕒 Турниры на модерации:", tgbotapi.NewInlineKeyboardMarkup(keyboard...))
}

func (b *Bot) sendPendingTeams(ctx context.Context, chatID, userID int64, messageID int) error {
	teams, err := b.svc.Teams.ListModerated(ctx, userID)
	if err != nil {
		return err
	}
	if len(teams) == 0 {
		return b.sendOrEdit(chatID, messageID, "📭 Нет новых заявок на участие в турнирах.", tgbotapi.NewInlineKeyboardMarkup(
			[]tgbotapi.InlineKeyboardButton{tgbotapi.NewInlineKeyboardButtonData("◀️ В админ-панель", "admin_panel")},
		))
	}
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, team := range teams {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s (турнир ID: %d)", team.Name, team.TournamentID),
				fmt.Sprintf("team_moderate|id=%d", team.ID)),
		})
	}
	keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("◀️ Назад", "admin_panel"),
	})
	return b.sendOrEdit(chatID, messageID, "📝 Заявки команд на модерации:", tgbotapi.NewInlineKeyboardMarkup(keyboard...))
}

func (b *Bot) sendTeamModerationCard(ctx context.Context, chatID, userID, teamID int64) error {
	team, err := b.svc.Teams.GetModerated(ctx, userID, teamID)
	if err != nil {
		return err
	}
	tournament, err := b.svc.Tournaments.Get(ctx, team.TournamentID)
	if err != nil {
		return err
	}
	roster, err := b.svc.Teams.Roster(ctx, teamID)
	if err != nil {
		return err
	}
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Команда: *%s*\n", escape(team.Name)))
	builder.WriteString(fmt.Sprintf("Турнир: %s\n", escape(tournament.Name)))
	builder.WriteString(fmt.Sprintf("Капитан: [%d](tg://user?id=%d)\n", team.CaptainTgID, team.CaptainTgID))
	builder.WriteString(fmt.Sprintf("Участников: %d\n", len(roster)))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("✅ Одобрить", fmt.Sprintf("team_approve|id=%d", team.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", fmt.Sprintf("team_reject|id=%d", team.ID)),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("◀️ Назад", "moderate_teams"),
		},
	)
	return b.sendOrEdit(chatID, 0, builder.String(), keyboard)
}

func (b *Bot) sendAdminsList(ctx context.Context, chatID, userID int64, messageID int) error {
	admins, err := b.svc.Access.ListAdmins(ctx, userID)
	if err != nil {
		return err
	}
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, admin := range admins {
		label := fmt.Sprintf("%s (%s)", admin.FullName, roleLabel(admin.Role))
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("admin_toggle|id=%d", admin.ID)),
		})
	}
	keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("➕ Добавить админа", "admin_add"),
		tgbotapi.NewInlineKeyboardButtonData("◀️ Назад", "admin_panel"),
	})
	return b.sendOrEdit(chatID, messageID, "👥 Нажмите на админа, чтобы сменить его роль:", tgbotapi.NewInlineKeyboardMarkup(keyboard...))
}

// ----------------------------------------------------------------------------
// Small helpers

type callbackPayload struct {
	Action string
	Params map[string]string
}

func parseCallback(data string) (*callbackPayload, error) {
	parts := strings.Split(data, "|")
	if parts[0] == "" {
		return nil, errors.New("empty callback")
	}
	payload := &callbackPayload{
		Action: parts[0],
		Params: map[string]string{},
	}
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		payload.Params[kv[0]] = kv[1]
	}
	return payload, nil
}

func escape(s string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"`", "\\`",
		"[", "\\[",
	)
	return replacer.Replace(s)
}

func parseInt64(value string) int64 {
	if value == "" {
		return 0
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func roleLabel(role models.UserRole) string {
	switch role {
	case models.RoleSuperAdmin:
		return "супер-админ"
	case models.RoleAdmin:
		return "админ"
	default:
		return "пользователь"
	}
}

func tournamentStatusLabel(status models.TournamentStatus) string {
	switch status {
	case models.TournamentApproved:
		return "одобрен"
	case models.TournamentRejected:
		return "отклонён"
	default:
		return "на модерации"
	}
}

func tournamentBadge(t *models.Tournament) string {
	if t.Status == models.TournamentPending {
		return "🕒"
	}
	if t.Status == models.TournamentRejected {
		return "🚫"
	}
	if t.IsActive {
		return "✅"
	}
	return "❌"
}

func teamStatusBadge(status models.TeamStatus) string {
	if status == models.TeamApproved {
		return "✅"
	}
	return "🕒"
}
