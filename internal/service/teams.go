package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vsbaha/ENASGame-new/internal/models"
	"github.com/vsbaha/ENASGame-new/internal/repository"
)

type TeamsService interface {
	Register(ctx context.Context, input RegisterTeamInput) (*models.Team, error)
	Approve(ctx context.Context, actorTgID, teamID int64) error
	Reject(ctx context.Context, actorTgID, teamID int64) error
	EditName(ctx context.Context, captainTgID, teamID int64, name string) error
	EditLogo(ctx context.Context, captainTgID, teamID int64, logoPath string) error
	EditPlayers(ctx context.Context, captainTgID, teamID int64, handles []string) error
	Delete(ctx context.Context, captainTgID, teamID int64) error
	ListModerated(ctx context.Context, actorTgID int64) ([]models.Team, error)
	GetModerated(ctx context.Context, actorTgID, teamID int64) (*models.Team, error)
	ListByCaptain(ctx context.Context, captainTgID int64) ([]models.Team, error)
	Get(ctx context.Context, id int64) (*models.Team, error)
	Roster(ctx context.Context, teamID int64) ([]models.Player, error)
	// RosterLimit resolves the squad-size ceiling for a tournament: its
	// format's cap when a format is set, otherwise the game's direct
	// max-players range, otherwise 0 (unlimited).
	RosterLimit(ctx context.Context, tournament *models.Tournament) (int, error)
}

type RegisterTeamInput struct {
	TournamentID int64
	CaptainTgID  int64
	Name         string
	LogoPath     string
	Handles      []string
}

type teamsService struct {
	repo        repository.TeamsRepository
	players     repository.PlayersRepository
	tournaments repository.TournamentsRepository
	games       repository.GamesRepository
	users       repository.UsersRepository
	access      AccessService
	notifier    Notifier
	assets      AssetRemover
	logger      repository.Logger
}

func NewTeamsService(
	repo repository.TeamsRepository,
	players repository.PlayersRepository,
	tournaments repository.TournamentsRepository,
	games repository.GamesRepository,
	users repository.UsersRepository,
	access AccessService,
	notifier Notifier,
	assets AssetRemover,
	logger repository.Logger,
) TeamsService {
	return &teamsService{
		repo:        repo,
		players:     players,
		tournaments: tournaments,
		games:       games,
		users:       users,
		access:      access,
		notifier:    notifier,
		assets:      assets,
		logger:      logger,
	}
}

func (s *teamsService) RosterLimit(ctx context.Context, tournament *models.Tournament) (int, error) {
	if tournament.FormatID != nil {
		format, err := s.games.GetFormat(ctx, *tournament.FormatID)
		if err != nil {
			return 0, err
		}
		return format.MaxPlayersPerTeam, nil
	}
	game, err := s.games.Get(ctx, tournament.GameID)
	if err != nil {
		return 0, err
	}
	if game.MaxPlayers != nil {
		return *game.MaxPlayers, nil
	}
	return 0, nil
}

// buildRoster resolves handles into player rows with the captain implicit at
// the head. Unknown handles, a repeated captain and cap violations are all
// validation errors; nothing is written.
func (s *teamsService) buildRoster(ctx context.Context, captain *models.User, handles []string, limit int) ([]models.Player, error) {
	players := []models.Player{{UserID: captain.TelegramID}}
	seen := map[int64]struct{}{captain.TelegramID: {}}
	for _, raw := range handles {
		handle := strings.TrimPrefix(strings.TrimSpace(raw), "@")
		if handle == "" {
			continue
		}
		user, err := s.users.GetByUsername(ctx, handle)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, fmt.Errorf("пользователь @%s не найден, он должен сначала запустить бота: %w", handle, models.ErrValidation)
			}
			return nil, err
		}
		if _, dup := seen[user.TelegramID]; dup {
			if user.TelegramID == captain.TelegramID {
				return nil, fmt.Errorf("капитан включается в состав автоматически, не указывайте его в списке: %w", models.ErrValidation)
			}
			return nil, fmt.Errorf("@%s указан дважды: %w", handle, models.ErrValidation)
		}
		seen[user.TelegramID] = struct{}{}
		players = append(players, models.Player{UserID: user.TelegramID})
	}
	if limit > 0 && len(players) > limit {
		return nil, fmt.Errorf("в команде может быть не более %d игроков, помимо капитана можно добавить ещё %d: %w",
			limit, limit-1, models.ErrValidation)
	}
	return players, nil
}

func (s *teamsService) Register(ctx context.Context, input RegisterTeamInput) (*models.Team, error) {
	captain, err := s.access.Resolve(ctx, input.CaptainTgID)
	if err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, fmt.Errorf("team_name: %w", models.ErrValidation)
	}
	tournament, err := s.tournaments.Get(ctx, input.TournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.TournamentApproved || !tournament.IsActive {
		return nil, fmt.Errorf("регистрация на турнир закрыта: %w", models.ErrValidation)
	}
	limit, err := s.RosterLimit(ctx, tournament)
	if err != nil {
		return nil, err
	}
	handles := input.Handles
	if limit == 1 {
		// Solo format: only the captain is registered.
		handles = nil
	}
	roster, err := s.buildRoster(ctx, captain, handles, limit)
	if err != nil {
		return nil, err
	}

	team := models.Team{
		TournamentID: tournament.ID,
		Name:         input.Name,
		LogoPath:     input.LogoPath,
		CaptainTgID:  captain.TelegramID,
		Status:       models.TeamPending,
	}
	id, err := s.repo.CreateWithRoster(ctx, team, roster)
	if err != nil {
		return nil, err
	}
	team.ID = id
	s.logger.Info("register", "team", id, captain.TelegramID, string(models.TeamPending))

	notice := fmt.Sprintf("📝 Новая команда хочет зарегистрироваться на турнир %s\nКоманда: %s", tournament.Name, team.Name)
	if creator, err := s.users.GetByID(ctx, tournament.CreatedBy); err == nil {
		s.notifier.Notify(ctx, []int64{creator.TelegramID}, notice)
	}
	s.notifier.NotifySuperAdmins(ctx, notice)
	return &team, nil
}

// moderator loads the team plus its tournament and checks the actor may
// moderate it: a super-admin, or the admin who created the tournament.
func (s *teamsService) moderator(ctx context.Context, actorTgID, teamID int64) (*models.User, *models.Team, error) {
	actor, err := s.access.Require(ctx, actorTgID, models.RoleAdmin)
	if err != nil {
		return nil, nil, err
	}
	team, err := s.repo.Get(ctx, teamID)
	if err != nil {
		return nil, nil, err
	}
	tournament, err := s.tournaments.Get(ctx, team.TournamentID)
	if err != nil {
		return nil, nil, err
	}
	if !ownedBy(actor, tournament) {
		return nil, nil, fmt.Errorf("not the tournament creator: %w", models.ErrForbidden)
	}
	return actor, team, nil
}

func (s *teamsService) Approve(ctx context.Context, actorTgID, teamID int64) error {
	actor, team, err := s.moderator(ctx, actorTgID, teamID)
	if err != nil {
		return err
	}
	if team.Status != models.TeamPending {
		return fmt.Errorf("team already %s: %w", team.Status, models.ErrConflict)
	}
	status := models.TeamApproved
	if err := s.repo.Update(ctx, teamID, models.TeamPatch{Status: &status}); err != nil {
		return err
	}
	s.logger.Info("moderate", "team", teamID, actor.TelegramID, string(status))
	s.notifier.Notify(ctx, []int64{team.CaptainTgID}, fmt.Sprintf("✅ Ваша команда «%s» допущена к турниру!", team.Name))
	return nil
}

// Reject is destructive: the team and its players are deleted outright, so a
// rejected team has to be re-submitted from scratch.
func (s *teamsService) Reject(ctx context.Context, actorTgID, teamID int64) error {
	actor, team, err := s.moderator(ctx, actorTgID, teamID)
	if err != nil {
		return err
	}
	if team.Status != models.TeamPending {
		return fmt.Errorf("team already %s: %w", team.Status, models.ErrConflict)
	}
	if err := s.repo.Delete(ctx, teamID); err != nil {
		return err
	}
	if err := s.assets.Remove(team.LogoPath); err != nil {
		s.logger.Error(err, "delete_asset", "team", teamID, actor.TelegramID)
	}
	s.logger.Info("moderate", "team", teamID, actor.TelegramID, "rejected")
	s.notifier.Notify(ctx, []int64{team.CaptainTgID}, fmt.Sprintf("❌ Заявка команды «%s» отклонена.", team.Name))
	return nil
}

// captained re-verifies the acting user is still the team's captain; the
// check is repeated at the point of every mutation, never carried over from a
// previous wizard step.
func (s *teamsService) captained(ctx context.Context, captainTgID, teamID int64) (*models.Team, error) {
	team, err := s.repo.Get(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.CaptainTgID != captainTgID {
		return nil, fmt.Errorf("only the captain may edit the team: %w", models.ErrForbidden)
	}
	return team, nil
}

func (s *teamsService) EditName(ctx context.Context, captainTgID, teamID int64, name string) error {
	if _, err := s.captained(ctx, captainTgID, teamID); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("team_name: %w", models.ErrValidation)
	}
	return s.repo.Update(ctx, teamID, models.TeamPatch{Name: &name})
}

func (s *teamsService) EditLogo(ctx context.Context, captainTgID, teamID int64, logoPath string) error {
	team, err := s.captained(ctx, captainTgID, teamID)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, teamID, models.TeamPatch{LogoPath: &logoPath}); err != nil {
		return err
	}
	if err := s.assets.Remove(team.LogoPath); err != nil {
		s.logger.Error(err, "delete_asset", "team", teamID, captainTgID)
	}
	return nil
}

func (s *teamsService) EditPlayers(ctx context.Context, captainTgID, teamID int64, handles []string) error {
	team, err := s.captained(ctx, captainTgID, teamID)
	if err != nil {
		return err
	}
	captain, err := s.access.Resolve(ctx, captainTgID)
	if err != nil {
		return err
	}
	tournament, err := s.tournaments.Get(ctx, team.TournamentID)
	if err != nil {
		return err
	}
	limit, err := s.RosterLimit(ctx, tournament)
	if err != nil {
		return err
	}
	roster, err := s.buildRoster(ctx, captain, handles, limit)
	if err != nil {
		return err
	}
	return s.players.Replace(ctx, teamID, roster)
}

func (s *teamsService) Delete(ctx context.Context, captainTgID, teamID int64) error {
	team, err := s.captained(ctx, captainTgID, teamID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, teamID); err != nil {
		return err
	}
	if err := s.assets.Remove(team.LogoPath); err != nil {
		s.logger.Error(err, "delete_asset", "team", teamID, captainTgID)
	}
	s.logger.Info("delete", "team", teamID, captainTgID, "ok")
	return nil
}

func (s *teamsService) ListModerated(ctx context.Context, actorTgID int64) ([]models.Team, error) {
	actor, err := s.access.Require(ctx, actorTgID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleSuperAdmin {
		return s.repo.ListPending(ctx)
	}
	return s.repo.ListPendingByCreator(ctx, actor.ID)
}

// GetModerated loads a team for the moderation card under the same ownership
// rule as the verdicts.
func (s *teamsService) GetModerated(ctx context.Context, actorTgID, teamID int64) (*models.Team, error) {
	_, team, err := s.moderator(ctx, actorTgID, teamID)
	return team, err
}

func (s *teamsService) ListByCaptain(ctx context.Context, captainTgID int64) ([]models.Team, error) {
	return s.repo.ListByCaptain(ctx, captainTgID)
}

func (s *teamsService) Get(ctx context.Context, id int64) (*models.Team, error) {
	return s.repo.Get(ctx, id)
}

func (s *teamsService) Roster(ctx context.Context, teamID int64) ([]models.Player, error) {
	return s.players.ListByTeam(ctx, teamID)
}
