package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vsbaha/ENASGame-new/internal/models"
	"github.com/vsbaha/ENASGame-new/internal/repository"
)

type TournamentsRepo struct {
	pool *pgxpool.Pool
}

func NewTournamentsRepo(pool *pgxpool.Pool) repository.TournamentsRepository {
	return &TournamentsRepo{pool: pool}
}

const tournamentColumns = `id, game_id, format_id, name, logo_path, start_date,
	description, regulations_path, is_active, status, created_by, created_at`

func scanTournament(row pgx.Row) (*models.Tournament, error) {
	var (
		tournament models.Tournament
		formatID   *int64
	)
	if err := row.Scan(
		&tournament.ID,
		&tournament.GameID,
		&formatID,
		&tournament.Name,
		&tournament.LogoPath,
		&tournament.StartDate,
		&tournament.Description,
		&tournament.RegulationsPath,
		&tournament.IsActive,
		&tournament.Status,
		&tournament.CreatedBy,
		&tournament.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	tournament.FormatID = formatID
	return &tournament, nil
}

func (r *TournamentsRepo) list(ctx context.Context, query string, args ...any) ([]models.Tournament, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Tournament
	for rows.Next() {
		tournament, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *tournament)
	}
	return items, rows.Err()
}

func (r *TournamentsRepo) List(ctx context.Context) ([]models.Tournament, error) {
	return r.list(ctx, `
		SELECT `+tournamentColumns+`
		FROM tournaments
		ORDER BY start_date`)
}

func (r *TournamentsRepo) ListByStatus(ctx context.Context, status models.TournamentStatus) ([]models.Tournament, error) {
	return r.list(ctx, `
		SELECT `+tournamentColumns+`
		FROM tournaments
		WHERE status = $1
		ORDER BY start_date`, status)
}

func (r *TournamentsRepo) ListByCreator(ctx context.Context, createdBy int64, status *models.TournamentStatus) ([]models.Tournament, error) {
	if status != nil {
		return r.list(ctx, `
			SELECT `+tournamentColumns+`
			FROM tournaments
			WHERE created_by = $1 AND status = $2
			ORDER BY start_date`, createdBy, *status)
	}
	return r.list(ctx, `
		SELECT `+tournamentColumns+`
		FROM tournaments
		WHERE created_by = $1
		ORDER BY start_date`, createdBy)
}

func (r *TournamentsRepo) ListActiveByGame(ctx context.Context, gameID int64) ([]models.Tournament, error) {
	return r.list(ctx, `
		SELECT `+tournamentColumns+`
		FROM tournaments
		WHERE game_id = $1 AND is_active = TRUE AND status = $2
		ORDER BY start_date`, gameID, models.TournamentApproved)
}

func (r *TournamentsRepo) Get(ctx context.Context, id int64) (*models.Tournament, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+tournamentColumns+`
		FROM tournaments WHERE id = $1`, id)
	return scanTournament(row)
}

func (r *TournamentsRepo) Create(ctx context.Context, tournament models.Tournament) (int64, error) {
	var id int64
	if err := r.pool.QueryRow(ctx, `
		INSERT INTO tournaments (game_id, format_id, name, logo_path, start_date,
			description, regulations_path, is_active, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		tournament.GameID,
		tournament.FormatID,
		tournament.Name,
		tournament.LogoPath,
		tournament.StartDate,
		tournament.Description,
		tournament.RegulationsPath,
		tournament.IsActive,
		tournament.Status,
		tournament.CreatedBy,
	).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *TournamentsRepo) Update(ctx context.Context, id int64, patch models.TournamentPatch) error {
	set, args := buildUpdateSet([]column{
		{name: "name", value: patch.Name},
		{name: "logo_path", value: patch.LogoPath},
		{name: "description", value: patch.Description},
		{name: "start_date", value: patch.StartDate},
		{name: "is_active", value: patch.IsActive},
		{name: "status", value: patch.Status},
	})
	if len(set) == 0 {
		return nil
	}
	query := fmt.Sprintf("UPDATE tournaments SET %s WHERE id=$%d", set, len(args)+1)
	args = append(args, id)
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *TournamentsRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *TournamentsRepo) CountActive(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM tournaments WHERE is_active = TRUE`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
