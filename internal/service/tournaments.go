package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vsbaha/ENASGame-new/internal/models"
	"github.com/vsbaha/ENASGame-new/internal/repository"
)

// Notifier fans out moderation notifications after the triggering mutation is
// committed. Delivery failures never surface to the caller.
type Notifier interface {
	Notify(ctx context.Context, tgIDs []int64, text string) int
	NotifySuperAdmins(ctx context.Context, text string) int
}

// AssetRemover deletes stored logo/regulations files when their owner goes away.
type AssetRemover interface {
	Remove(path string) error
}

type TournamentsService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	Approve(ctx context.Context, actorTgID, id int64) error
	Reject(ctx context.Context, actorTgID, id int64) error
	ToggleActive(ctx context.Context, actorTgID, id int64) (bool, error)
	Delete(ctx context.Context, actorTgID, id int64) error
	ListManaged(ctx context.Context, actorTgID int64) ([]models.Tournament, error)
	ListPending(ctx context.Context, actorTgID int64) ([]models.Tournament, error)
	ListActiveByGame(ctx context.Context, gameID int64) ([]models.Tournament, error)
	Get(ctx context.Context, id int64) (*models.Tournament, error)
	GetManaged(ctx context.Context, actorTgID, id int64) (*models.Tournament, error)
}

type CreateTournamentInput struct {
	CreatorTgID     int64
	GameID          int64
	FormatID        *int64
	Name            string
	LogoPath        string
	StartDate       time.Time
	Description     string
	RegulationsPath string
}

type tournamentsService struct {
	repo     repository.TournamentsRepository
	games    repository.GamesRepository
	users    repository.UsersRepository
	access   AccessService
	notifier Notifier
	assets   AssetRemover
	logger   repository.Logger
}

func NewTournamentsService(
	repo repository.TournamentsRepository,
	games repository.GamesRepository,
	users repository.UsersRepository,
	access AccessService,
	notifier Notifier,
	assets AssetRemover,
	logger repository.Logger,
) TournamentsService {
	return &tournamentsService{
		repo:     repo,
		games:    games,
		users:    users,
		access:   access,
		notifier: notifier,
		assets:   assets,
		logger:   logger,
	}
}

func (s *tournamentsService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	creator, err := s.access.Require(ctx, input.CreatorTgID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, fmt.Errorf("name: %w", models.ErrValidation)
	}
	if input.StartDate.IsZero() {
		return nil, fmt.Errorf("start_date: %w", models.ErrValidation)
	}
	if _, err := s.games.Get(ctx, input.GameID); err != nil {
		return nil, err
	}
	if input.FormatID != nil {
		format, err := s.games.GetFormat(ctx, *input.FormatID)
		if err != nil {
			return nil, err
		}
		if format.GameID != input.GameID {
			return nil, fmt.Errorf("format belongs to another game: %w", models.ErrValidation)
		}
	}

	// Super-admin proposals skip moderation.
	status := models.TournamentPending
	if creator.Role == models.RoleSuperAdmin {
		status = models.TournamentApproved
	}
	tournament := models.Tournament{
		GameID:          input.GameID,
		FormatID:        input.FormatID,
		Name:            input.Name,
		LogoPath:        input.LogoPath,
		StartDate:       input.StartDate,
		Description:     input.Description,
		RegulationsPath: input.RegulationsPath,
		IsActive:        true,
		Status:          status,
		CreatedBy:       creator.ID,
	}
	id, err := s.repo.Create(ctx, tournament)
	if err != nil {
		return nil, err
	}
	tournament.ID = id
	s.logger.Info("create", "tournament", id, creator.TelegramID, string(status))

	if status == models.TournamentPending {
		s.notifier.NotifySuperAdmins(ctx, fmt.Sprintf("Новый турнир на модерации: %s", tournament.Name))
	}
	return &tournament, nil
}

func (s *tournamentsService) moderate(ctx context.Context, actorTgID, id int64, next models.TournamentStatus, notice string) error {
	actor, err := s.access.Require(ctx, actorTgID, models.RoleSuperAdmin)
	if err != nil {
		return err
	}
	tournament, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if tournament.Status != models.TournamentPending {
		return fmt.Errorf("tournament already %s: %w", tournament.Status, models.ErrConflict)
	}
	status := next
	if err := s.repo.Update(ctx, id, models.TournamentPatch{Status: &status}); err != nil {
		return err
	}
	s.logger.Info("moderate", "tournament", id, actor.TelegramID, string(next))

	if creator, err := s.users.GetByID(ctx, tournament.CreatedBy); err == nil {
		s.notifier.Notify(ctx, []int64{creator.TelegramID}, fmt.Sprintf(notice, tournament.Name))
	}
	return nil
}

func (s *tournamentsService) Approve(ctx context.Context, actorTgID, id int64) error {
	return s.moderate(ctx, actorTgID, id, models.TournamentApproved, "✅ Ваш турнир «%s» одобрен!")
}

func (s *tournamentsService) Reject(ctx context.Context, actorTgID, id int64) error {
	return s.moderate(ctx, actorTgID, id, models.TournamentRejected, "❌ Ваш турнир «%s» отклонён.")
}

// ownedBy reports whether the actor may administer this tournament: any
// super-admin, or the admin who created it.
func ownedBy(actor *models.User, tournament *models.Tournament) bool {
	return actor.Role == models.RoleSuperAdmin || tournament.CreatedBy == actor.ID
}

func (s *tournamentsService) ToggleActive(ctx context.Context, actorTgID, id int64) (bool, error) {
	actor, err := s.access.Require(ctx, actorTgID, models.RoleAdmin)
	if err != nil {
		return false, err
	}
	tournament, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if !ownedBy(actor, tournament) {
		return false, fmt.Errorf("not the tournament creator: %w", models.ErrForbidden)
	}
	next := !tournament.IsActive
	if err := s.repo.Update(ctx, id, models.TournamentPatch{IsActive: &next}); err != nil {
		return false, err
	}
	s.logger.Info("toggle_active", "tournament", id, actor.TelegramID, fmt.Sprintf("%t", next))
	return next, nil
}

func (s *tournamentsService) Delete(ctx context.Context, actorTgID, id int64) error {
	actor, err := s.access.Require(ctx, actorTgID, models.RoleAdmin)
	if err != nil {
		return err
	}
	tournament, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ownedBy(actor, tournament) {
		return fmt.Errorf("not the tournament creator: %w", models.ErrForbidden)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	// Teams and players cascade in the store; assets are cleaned up after.
	if err := s.assets.Remove(tournament.LogoPath); err != nil {
		s.logger.Error(err, "delete_asset", "tournament", id, actor.TelegramID)
	}
	if err := s.assets.Remove(tournament.RegulationsPath); err != nil {
		s.logger.Error(err, "delete_asset", "tournament", id, actor.TelegramID)
	}
	s.logger.Info("delete", "tournament", id, actor.TelegramID, "ok")
	return nil
}

func (s *tournamentsService) ListManaged(ctx context.Context, actorTgID int64) ([]models.Tournament, error) {
	actor, err := s.access.Require(ctx, actorTgID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleSuperAdmin {
		return s.repo.List(ctx)
	}
	// Admins only see their own approved tournaments, so a pending proposal
	// cannot be edited into visibility.
	status := models.TournamentApproved
	return s.repo.ListByCreator(ctx, actor.ID, &status)
}

func (s *tournamentsService) ListPending(ctx context.Context, actorTgID int64) ([]models.Tournament, error) {
	if _, err := s.access.Require(ctx, actorTgID, models.RoleSuperAdmin); err != nil {
		return nil, err
	}
	return s.repo.ListByStatus(ctx, models.TournamentPending)
}

func (s *tournamentsService) ListActiveByGame(ctx context.Context, gameID int64) ([]models.Tournament, error) {
	return s.repo.ListActiveByGame(ctx, gameID)
}

func (s *tournamentsService) Get(ctx context.Context, id int64) (*models.Tournament, error) {
	return s.repo.Get(ctx, id)
}

// GetManaged loads a tournament for the admin surface. The ownership rule is
// the same one the mutations apply, so foreign tournaments are invisible even
// to a crafted callback.
func (s *tournamentsService) GetManaged(ctx context.Context, actorTgID, id int64) (*models.Tournament, error) {
	actor, err := s.access.Require(ctx, actorTgID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	tournament, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownedBy(actor, tournament) {
		return nil, fmt.Errorf("not the tournament creator: %w", models.ErrForbidden)
	}
	return tournament, nil
}
