package repository

import (
	"context"

	"github.com/vsbaha/ENASGame-new/internal/models"
)

type UsersRepository interface {
	GetByTelegramID(ctx context.Context, tgID int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, user models.User) (int64, error)
	UpdateRole(ctx context.Context, id int64, role models.UserRole, addedBy *int64) error
	ListByRoles(ctx context.Context, roles ...models.UserRole) ([]models.User, error)
	Count(ctx context.Context) (int, error)
}

type GamesRepository interface {
	List(ctx context.Context) ([]models.Game, error)
	Get(ctx context.Context, id int64) (*models.Game, error)
	ListFormats(ctx context.Context, gameID int64) ([]models.GameFormat, error)
	GetFormat(ctx context.Context, id int64) (*models.GameFormat, error)
}

type TournamentsRepository interface {
	List(ctx context.Context) ([]models.Tournament, error)
	ListByStatus(ctx context.Context, status models.TournamentStatus) ([]models.Tournament, error)
	ListByCreator(ctx context.Context, createdBy int64, status *models.TournamentStatus) ([]models.Tournament, error)
	ListActiveByGame(ctx context.Context, gameID int64) ([]models.Tournament, error)
	Get(ctx context.Context, id int64) (*models.Tournament, error)
	Create(ctx context.Context, tournament models.Tournament) (int64, error)
	Update(ctx context.Context, id int64, patch models.TournamentPatch) error
	Delete(ctx context.Context, id int64) error
	CountActive(ctx context.Context) (int, error)
}

type TeamsRepository interface {
	Get(ctx context.Context, id int64) (*models.Team, error)
	// CreateWithRoster inserts the team and its players in one transaction.
	CreateWithRoster(ctx context.Context, team models.Team, players []models.Player) (int64, error)
	Update(ctx context.Context, id int64, patch models.TeamPatch) error
	Delete(ctx context.Context, id int64) error
	ListPending(ctx context.Context) ([]models.Team, error)
	ListPendingByCreator(ctx context.Context, creatorUserID int64) ([]models.Team, error)
	ListByCaptain(ctx context.Context, captainTgID int64) ([]models.Team, error)
	Count(ctx context.Context) (int, error)
}

type PlayersRepository interface {
	ListByTeam(ctx context.Context, teamID int64) ([]models.Player, error)
	// Replace swaps the whole roster of a team in one transaction.
	Replace(ctx context.Context, teamID int64, players []models.Player) error
}

type SessionsRepository interface {
	Get(ctx context.Context, userID int64) (*models.UserSession, error)
	Upsert(ctx context.Context, session models.UserSession) error
	Delete(ctx context.Context, userID int64) error
}

type Logger interface {
	Info(action string, entity string, entityID int64, userID int64, status string)
	Error(err error, action string, entity string, entityID int64, userID int64)
}
