package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vsbaha/ENASGame-new/internal/models"
	"github.com/vsbaha/ENASGame-new/internal/repository"
)

type GamesRepo struct {
	pool *pgxpool.Pool
}

func NewGamesRepo(pool *pgxpool.Pool) repository.GamesRepository {
	return &GamesRepo{pool: pool}
}

func (r *GamesRepo) List(ctx context.Context) ([]models.Game, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, min_players, max_players
		FROM games
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Game
	for rows.Next() {
		var (
			game models.Game
			min  *int
			max  *int
		)
		if err := rows.Scan(&game.ID, &game.Name, &min, &max); err != nil {
			return nil, err
		}
		game.MinPlayers = min
		game.MaxPlayers = max
		items = append(items, game)
	}
	return items, rows.Err()
}

func (r *GamesRepo) Get(ctx context.Context, id int64) (*models.Game, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, min_players, max_players
		FROM games WHERE id = $1`, id)

	var (
		game models.Game
		min  *int
		max  *int
	)
	if err := row.Scan(&game.ID, &game.Name, &min, &max); err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	game.MinPlayers = min
	game.MaxPlayers = max
	return &game, nil
}

func (r *GamesRepo) ListFormats(ctx context.Context, gameID int64) ([]models.GameFormat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, game_id, format_name, max_players_per_team
		FROM game_formats
		WHERE game_id = $1
		ORDER BY max_players_per_team`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.GameFormat
	for rows.Next() {
		var format models.GameFormat
		if err := rows.Scan(&format.ID, &format.GameID, &format.FormatName, &format.MaxPlayersPerTeam); err != nil {
			return nil, err
		}
		items = append(items, format)
	}
	return items, rows.Err()
}

func (r *GamesRepo) GetFormat(ctx context.Context, id int64) (*models.GameFormat, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, game_id, format_name, max_players_per_team
		FROM game_formats WHERE id = $1`, id)

	var format models.GameFormat
	if err := row.Scan(&format.ID, &format.GameID, &format.FormatName, &format.MaxPlayersPerTeam); err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &format, nil
}
