package service

import (
	"context"

	"github.com/vsbaha/ENASGame-new/internal/models"
	"github.com/vsbaha/ENASGame-new/internal/repository"
)

type GamesService interface {
	List(ctx context.Context) ([]models.Game, error)
	Get(ctx context.Context, id int64) (*models.Game, error)
	ListFormats(ctx context.Context, gameID int64) ([]models.GameFormat, error)
	GetFormat(ctx context.Context, id int64) (*models.GameFormat, error)
}

type gamesService struct {
	repo repository.GamesRepository
}

func NewGamesService(repo repository.GamesRepository) GamesService {
	return &gamesService{repo: repo}
}

func (s *gamesService) List(ctx context.Context) ([]models.Game, error) {
	return s.repo.List(ctx)
}

func (s *gamesService) Get(ctx context.Context, id int64) (*models.Game, error) {
	return s.repo.Get(ctx, id)
}

func (s *gamesService) ListFormats(ctx context.Context, gameID int64) ([]models.GameFormat, error) {
	return s.repo.ListFormats(ctx, gameID)
}

func (s *gamesService) GetFormat(ctx context.Context, id int64) (*models.GameFormat, error) {
	return s.repo.GetFormat(ctx, id)
}

// Stats ----------------------------------------------------------------------

type StatsService interface {
	Collect(ctx context.Context) (models.Statistics, error)
}

type statsService struct {
	users       repository.UsersRepository
	tournaments repository.TournamentsRepository
	teams       repository.TeamsRepository
}

func NewStatsService(users repository.UsersRepository, tournaments repository.TournamentsRepository, teams repository.TeamsRepository) StatsService {
	return &statsService{users: users, tournaments: tournaments, teams: teams}
}

func (s *statsService) Collect(ctx context.Context) (models.Statistics, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return models.Statistics{}, err
	}
	active, err := s.tournaments.CountActive(ctx)
	if err != nil {
		return models.Statistics{}, err
	}
	teams, err := s.teams.Count(ctx)
	if err != nil {
		return models.Statistics{}, err
	}
	return models.Statistics{
		Users:             users,
		ActiveTournaments: active,
		Teams:             teams,
	}, nil
}
