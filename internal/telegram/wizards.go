package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vsbaha/ENASGame-new/internal/models"
	"github.com/vsbaha/ENASGame-new/internal/service"
)

const (
	flowCreateTournament = "create_tournament"
	flowRegisterTeam     = "register_team"
	flowEditTeam         = "edit_team"
	flowAddAdmin         = "add_admin"
)

// Tournament creation steps. Game and format arrive as callbacks, the rest as
// messages.
const (
	stepTournamentGame = iota
	stepTournamentFormat
	stepTournamentName
	stepTournamentLogo
	stepTournamentDate
	stepTournamentDescription
	stepTournamentRegulations
)

const (
	stepTeamName = iota
	stepTeamLogo
	stepTeamPlayers
)

const (
	stepEditChoice = iota
	stepEditValue
)

const startDateLayout = "02.01.2006 15:04"

// wizardState is the persisted multi-step dialog slot. One per user; starting
// a new flow overwrites whatever was in progress.
type wizardState struct {
	Flow string            `json:"flow"`
	Step int               `json:"step"`
	Data map[string]string `json:"data"`
}

func (b *Bot) saveWizard(ctx context.Context, userID int64, state *wizardState) error {
	return b.svc.Sessions.Save(ctx, userID, &state.Flow, state)
}

// loadWizard returns the active state for the flow, or nil if the user has no
// session, is in another flow, or is on a different step. Stale callbacks from
// old keyboards land here and are answered with a shrug.
func (b *Bot) loadWizard(ctx context.Context, userID int64, flow string, step int) (*wizardState, error) {
	state := &wizardState{}
	stored, err := b.svc.Sessions.Load(ctx, userID, state)
	if err != nil {
		return nil, err
	}
	if stored == nil || state.Flow != flow || state.Step != step {
		return nil, nil
	}
	return state, nil
}

func (b *Bot) advanceWizard(ctx context.Context, msg *tgbotapi.Message, state *wizardState) error {
	switch state.Flow {
	case flowCreateTournament:
		return b.advanceTournamentWizard(ctx, msg, state)
	case flowRegisterTeam:
		return b.advanceTeamWizard(ctx, msg, state)
	case flowEditTeam:
		return b.advanceEditWizard(ctx, msg, state)
	case flowAddAdmin:
		return b.advanceAddAdminWizard(ctx, msg, state)
	default:
		return b.svc.Sessions.Clear(ctx, msg.From.ID)
	}
}

// ----------------------------------------------------------------------------
// Tournament creation

func (b *Bot) startTournamentWizard(ctx context.Context, chatID, userID int64) error {
	if _, err := b.svc.Access.Require(ctx, userID, models.RoleAdmin); err != nil {
		return err
	}
	games, err := b.svc.Games.List(ctx)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		b.sendSimple(chatID, "Нет доступных игр, турнир создать нельзя.")
		return nil
	}
	state := &wizardState{Flow: flowCreateTournament, Step: stepTournamentGame, Data: map[string]string{}}
	if err := b.saveWizard(ctx, userID, state); err != nil {
		return err
	}
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, game := range games {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(game.Name, fmt.Sprintf("wizard_game|id=%d", game.ID)),
		})
	}
	return b.sendOrEdit(chatID, 0, "🎮 Выберите игру для турнира:", tgbotapi.NewInlineKeyboardMarkup(keyboard...))
}

func (b *Bot) wizardSelectGame(ctx context.Context, chatID, userID, gameID int64) error {
	state, err := b.loadWizard(ctx, userID, flowCreateTournament, stepTournamentGame)
	if err != nil {
		return err
	}
	if state == nil {
		b.sendSimple(chatID, "Кнопка устарела.")
		return nil
	}
	game, err := b.svc.Games.Get(ctx, gameID)
	if err != nil {
		return err
	}
	state.Data["game_id"] = fmt.Sprintf("%d", game.ID)

	formats, err := b.svc.Games.ListFormats(ctx, game.ID)
	if err != nil {
		return err
	}
	if len(formats) == 0 {
		// No formats for this game: the step is skipped entirely.
		state.Step = stepTournamentName
		if err := b.saveWizard(ctx, userID, state); err != nil {
			return err
		}
		b.sendSimple(chatID, "Введите название турнира:")
		return nil
	}
	state.Step = stepTournamentFormat
	if err := b.saveWizard(ctx, userID, state); err != nil {
		return err
	}
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, format := range formats {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(format.FormatName, fmt.Sprintf("wizard_format|id=%d", format.ID)),
		})
	}
	return b.sendOrEdit(chatID, 0, "Выберите формат турнира:", tgbotapi.NewInlineKeyboardMarkup(keyboard...))
}

func (b *Bot) wizardSelectFormat(ctx context.Context, chatID, userID, formatID int64) error {
	state, err := b.loadWizard(ctx, userID, flowCreateTournament, stepTournamentFormat)
	if err != nil {
		return err
	}
	if state == nil {
		b.sendSimple(chatID, "Кнопка устарела.")
		return nil
	}
	format, err := b.svc.Games.GetFormat(ctx, formatID)
	if err != nil {
		return err
	}
	if fmt.Sprintf("%d", format.GameID) != state.Data["game_id"] {
		b.sendSimple(chatID, "Кнопка устарела.")
		return nil
	}
	state.Data["format_id"] = fmt.Sprintf("%d", format.ID)
	state.Step = stepTournamentName
	if err := b.saveWizard(ctx, userID, state); err != nil {
		return err
	}
	b.sendSimple(chatID, "Введите название турнира:")
	return nil
}

func (b *Bot) advanceTournamentWizard(ctx context.Context, msg *tgbotapi.Message, state *wizardState) error {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	switch state.Step {
	case stepTournamentGame, stepTournamentFormat:
		b.sendSimple(chatID, "Выберите вариант кнопкой выше или отправьте /cancel.")
		return nil

	case stepTournamentName:
		name := strings.TrimSpace(msg.Text)
		if name == "" {
			b.sendSimple(chatID, "Название не может быть пустым, попробуйте снова:")
			return nil
		}
		state.Data["name"] = name
		state.Step = stepTournamentLogo
		if err := b.saveWizard(ctx, userID, state); err != nil {
			return err
		}
		b.sendSimple(chatID, "Отправьте логотип турнира (фото):")
		return nil

	case stepTournamentLogo:
		if len(msg.Photo) == 0 {
			b.sendSimple(chatID, "Нужно отправить фото. Попробуйте снова:")
			return nil
		}
		logoPath, err := b.savePhoto(msg.Photo, "tournaments")
		if err != nil {
			return err
		}
		state.Data["logo_path"] = logoPath
		state.Step = stepTournamentDate
		if err := b.saveWizard(ctx, userID, state); err != nil {
			return err
		}
		b.sendSimple(chatID, "Введите дату и время начала в формате ДД.ММ.ГГГГ ЧЧ:ММ\nНапример: 25.12.2026 18:00")
		return nil

	case stepTournamentDate:
		start, err := parseStartDate(msg.Text)
		if err != nil {
			b.sendSimple(chatID, "❌ Неверный формат даты. Пример: 25.12.2026 18:00\nПопробуйте снова:")
			return nil
		}
		state.Data["start_date"] = start.Format(time.RFC3339)
		state.Step = stepTournamentDescription
		if err := b.saveWizard(ctx, userID, state); err != nil {
			return err
		}
		b.sendSimple(chatID, "Введите описание турнира:")
		return nil

	case stepTournamentDescription:
		state.Data["description"] = strings.TrimSpace(msg.Text)
		state.Step = stepTournamentRegulations
		if err := b.saveWizard(ctx, userID, state); err != nil {
			return err
		}
		b.sendSimple(chatID, "Прикрепите регламент турнира (PDF-файл):")
		return nil

	case stepTournamentRegulations:
		if msg.Document == nil || msg.Document.MimeType != "application/pdf" {
			b.sendSimple(chatID, "Регламент должен быть PDF-файлом. Попробуйте снова:")
			return nil
		}
		regulationsPath, err := b.saveDocument(msg.Document, "regulations")
		if err != nil {
			return err
		}

		start, err := time.Parse(time.RFC3339, state.Data["start_date"])
		if err != nil {
			return err
		}
		input := service.CreateTournamentInput{
			CreatorTgID:     userID,
			GameID:          parseInt64(state.Data["game_id"]),
			Name:            state.Data["name"],
			LogoPath:        state.Data["logo_path"],
			StartDate:       start,
			Description:     state.Data["description"],
			RegulationsPath: regulationsPath,
		}
		if raw, ok := state.Data["format_id"]; ok {
			formatID := parseInt64(raw)
			input.FormatID = &formatID
		}
		tournament, err := b.svc.Tournaments.Create(ctx, input)
		if err != nil {
			_ = b.svc.Sessions.Clear(ctx, userID)
			return err
		}
		if err := b.svc.Sessions.Clear(ctx, userID); err != nil {
			return err
		}
		if tournament.Status == models.TournamentPending {
			b.sendSimple(chatID, "✅ Турнир отправлен на модерацию. Вы получите уведомление о решении.")
		} else {
			b.sendSimple(chatID, "✅ Турнир создан и опубликован!")
		}
		return nil
	}
	return nil
}

// ----------------------------------------------------------------------------
// Team registration

func (b *Bot) startTeamWizard(ctx context.Context, chatID, userID, tournamentID int64) error {
	if _, err := b.svc.Access.Resolve(ctx, userID); err != nil {
		return err
	}
	tournament, err := b.svc.Tournaments.Get(ctx, tournamentID)
	if err != nil {
		return err
	}
	if tournament.Status != models.TournamentApproved || !tournament.IsActive {
		b.sendSimple(chatID, "❌ Регистрация на этот турнир закрыта.")
		return nil
	}
	state := &wizardState{
		Flow: flowRegisterTeam,
		Step: stepTeamName,
		Data: map[string]string{"tournament_id": fmt.Sprintf("%d", tournamentID)},
	}
	if err := b.saveWizard(ctx, userID, state); err != nil {
		return err
	}
	b.sendSimple(chatID, "Введите название команды:")
	return nil
}

func (b *Bot) advanceTeamWizard(ctx context.Context, msg *tgbotapi.Message, state *wizardState) error {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	switch state.Step {
	case stepTeamName:
		name := strings.TrimSpace(msg.Text)
		if name == "" {
			b.sendSimple(chatID, "Название не может быть пустым, попробуйте снова:")
			return nil
		}
		state.Data["name"] = name
		state.Step = stepTeamLogo
		if err := b.saveWizard(ctx, userID, state); err != nil {
			return err
		}
		b.sendSimple(chatID, "Отправьте логотип команды (фото):")
		return nil

	case stepTeamLogo:
		if len(msg.Photo) == 0 {
			b.sendSimple(chatID, "Нужно отправить фото. Попробуйте снова:")
			return nil
		}
		logoPath, err := b.savePhoto(msg.Photo, "teams")
		if err != nil {
			return err
		}
		state.Data["logo_path"] = logoPath

		tournament, err := b.svc.Tournaments.Get(ctx, parseInt64(state.Data["tournament_id"]))
		if err != nil {
			_ = b.svc.Sessions.Clear(ctx, userID)
			return err
		}
		limit, err := b.svc.Teams.RosterLimit(ctx, tournament)
		if err != nil {
			return err
		}
		if limit == 1 {
			// Solo tournament: the roster is just the captain.
			return b.finishTeamRegistration(ctx, chatID, userID, state, nil)
		}
		state.Step = stepTeamPlayers
		if err := b.saveWizard(ctx, userID, state); err != nil {
			return err
		}
		prompt := "Перечислите @юзернеймы остальных игроков через запятую.\nКапитан добавляется в состав автоматически."
		if limit > 0 {
			prompt += fmt.Sprintf("\nПомимо вас можно добавить ещё %d.", limit-1)
		}
		b.sendSimple(chatID, prompt)
		return nil

	case stepTeamPlayers:
		return b.finishTeamRegistration(ctx, chatID, userID, state, splitHandles(msg.Text))
	}
	return nil
}

func (b *Bot) finishTeamRegistration(ctx context.Context, chatID, userID int64, state *wizardState, handles []string) error {
	_, err := b.svc.Teams.Register(ctx, service.RegisterTeamInput{
		TournamentID: parseInt64(state.Data["tournament_id"]),
		CaptainTgID:  userID,
		Name:         state.Data["name"],
		LogoPath:     state.Data["logo_path"],
		Handles:      handles,
	})
	if err != nil {
		// Roster problems are correctable: keep the slot and let the captain
		// resend the list. Anything else aborts the flow.
		if state.Step == stepTeamPlayers && errors.Is(err, models.ErrValidation) {
			b.sendSimple(chatID, "❌ "+strings.TrimSuffix(err.Error(), ": "+models.ErrValidation.Error())+"\nПопробуйте снова:")
			return nil
		}
		_ = b.svc.Sessions.Clear(ctx, userID)
		return err
	}
	if err := b.svc.Sessions.Clear(ctx, userID); err != nil {
		return err
	}
	b.sendSimple(chatID, "✅ Заявка команды отправлена на модерацию! Вы получите уведомление о решении.")
	return nil
}

// ----------------------------------------------------------------------------
// Team editing

func (b *Bot) startTeamEditWizard(ctx context.Context, chatID, userID, teamID int64) error {
	team, err := b.svc.Teams.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if team.CaptainTgID != userID {
		return fmt.Errorf("only the captain may edit the team: %w", models.ErrForbidden)
	}
	state := &wizardState{
		Flow: flowEditTeam,
		Step: stepEditChoice,
		Data: map[string]string{"team_id": fmt.Sprintf("%d", teamID)},
	}
	if err := b.saveWizard(ctx, userID, state); err != nil {
		return err
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("Название", "team_edit_choice|field=name"),
			tgbotapi.NewInlineKeyboardButtonData("Логотип", "team_edit_choice|field=logo"),
			tgbotapi.NewInlineKeyboardButtonData("Состав", "team_edit_choice|field=players"),
		},
	)
	return b.sendOrEdit(chatID, 0, "Что изменить?", keyboard)
}

func (b *Bot) chooseTeamEditField(ctx context.Context, chatID, userID int64, field string) error {
	state, err := b.loadWizard(ctx, userID, flowEditTeam, stepEditChoice)
	if err != nil {
		return err
	}
	if state == nil {
		b.sendSimple(chatID, "Кнопка устарела.")
		return nil
	}
	switch field {
	case "name":
		b.sendSimple(chatID, "Введите новое название команды:")
	case "logo":
		b.sendSimple(chatID, "Отправьте новый логотип (фото):")
	case "players":
		b.sendSimple(chatID, "Перечислите новый состав: @юзернеймы через запятую.\nКапитан добавляется автоматически.")
	default:
		b.sendSimple(chatID, "Кнопка устарела.")
		return nil
	}
	state.Data["field"] = field
	state.Step = stepEditValue
	return b.saveWizard(ctx, userID, state)
}

func (b *Bot) advanceEditWizard(ctx context.Context, msg *tgbotapi.Message, state *wizardState) error {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if state.Step == stepEditChoice {
		b.sendSimple(chatID, "Выберите поле кнопкой выше или отправьте /cancel.")
		return nil
	}

	teamID := parseInt64(state.Data["team_id"])
	var err error
	switch state.Data["field"] {
	case "name":
		name := strings.TrimSpace(msg.Text)
		err = b.svc.Teams.EditName(ctx, userID, teamID, name)
	case "logo":
		if len(msg.Photo) == 0 {
			b.sendSimple(chatID, "Нужно отправить фото. Попробуйте снова:")
			return nil
		}
		var logoPath string
		logoPath, err = b.savePhoto(msg.Photo, "teams")
		if err != nil {
			return err
		}
		err = b.svc.Teams.EditLogo(ctx, userID, teamID, logoPath)
	case "players":
		err = b.svc.Teams.EditPlayers(ctx, userID, teamID, splitHandles(msg.Text))
	default:
		return b.svc.Sessions.Clear(ctx, userID)
	}

	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			b.sendSimple(chatID, "❌ "+strings.TrimSuffix(err.Error(), ": "+models.ErrValidation.Error())+"\nПопробуйте снова:")
			return nil
		}
		_ = b.svc.Sessions.Clear(ctx, userID)
		return err
	}
	if err := b.svc.Sessions.Clear(ctx, userID); err != nil {
		return err
	}
	b.sendSimple(chatID, "✅ Команда обновлена.")
	return nil
}

// ----------------------------------------------------------------------------
// Admin management

func (b *Bot) startAddAdminWizard(ctx context.Context, chatID, userID int64) error {
	if _, err := b.svc.Access.Require(ctx, userID, models.RoleSuperAdmin); err != nil {
		return err
	}
	state := &wizardState{Flow: flowAddAdmin, Step: 0, Data: map[string]string{}}
	if err := b.saveWizard(ctx, userID, state); err != nil {
		return err
	}
	b.sendSimple(chatID, "Отправьте @username пользователя, которого нужно назначить админом:")
	return nil
}

func (b *Bot) advanceAddAdminWizard(ctx context.Context, msg *tgbotapi.Message, state *wizardState) error {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	target, err := b.svc.Access.PromoteByUsername(ctx, userID, msg.Text)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			b.sendSimple(chatID, "❌ Пользователь не найден. Он должен сначала запустить бота.")
			return b.svc.Sessions.Clear(ctx, userID)
		}
		_ = b.svc.Sessions.Clear(ctx, userID)
		return err
	}
	if err := b.svc.Sessions.Clear(ctx, userID); err != nil {
		return err
	}
	b.sendSimple(chatID, fmt.Sprintf("✅ %s назначен(а) админом.", escape(target.FullName)))
	return nil
}

// ----------------------------------------------------------------------------
// File download

// savePhoto downloads the largest rendition of a Telegram photo into the
// asset store.
func (b *Bot) savePhoto(sizes []tgbotapi.PhotoSize, folder string) (string, error) {
	best := sizes[len(sizes)-1]
	body, ext, err := b.downloadTelegramFile(best.FileID)
	if err != nil {
		return "", err
	}
	defer body.Close()
	if ext == "" {
		ext = "jpg"
	}
	return b.files.Save(folder, ext, body)
}

func (b *Bot) saveDocument(doc *tgbotapi.Document, folder string) (string, error) {
	body, ext, err := b.downloadTelegramFile(doc.FileID)
	if err != nil {
		return "", err
	}
	defer body.Close()
	if ext == "" {
		ext = "pdf"
	}
	return b.files.Save(folder, ext, body)
}

func (b *Bot) downloadTelegramFile(fileID string) (io.ReadCloser, string, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("get file: %w", err)
	}
	resp, err := http.Get(file.Link(b.api.Token))
	if err != nil {
		return nil, "", fmt.Errorf("download file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", fmt.Errorf("download file: status %d", resp.StatusCode)
	}
	ext := strings.TrimPrefix(path.Ext(file.FilePath), ".")
	return resp.Body, ext, nil
}

// ----------------------------------------------------------------------------
// Parsing helpers

func parseStartDate(text string) (time.Time, error) {
	return time.Parse(startDateLayout, strings.TrimSpace(text))
}

// splitHandles breaks a comma-separated list of usernames into trimmed
// entries. Empty entries are dropped; the @ prefix is tolerated.
func splitHandles(text string) []string {
	var handles []string
	for _, part := range strings.Split(text, ",") {
		handle := strings.TrimSpace(part)
		if handle == "" {
			continue
		}
		handles = append(handles, handle)
	}
	return handles
}
