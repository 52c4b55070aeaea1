package pg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vsbaha/ENASGame-new/internal/models"
	"github.com/vsbaha/ENASGame-new/internal/repository"
)

// Teams ----------------------------------------------------------------------

type TeamsRepo struct {
	pool *pgxpool.Pool
}

func NewTeamsRepo(pool *pgxpool.Pool) repository.TeamsRepository {
	return &TeamsRepo{pool: pool}
}

const teamColumns = `id, tournament_id, team_name, logo_path, captain_tg_id, status, created_at`

func scanTeam(row pgx.Row) (*models.Team, error) {
	var team models.Team
	if err := row.Scan(
		&team.ID,
		&team.TournamentID,
		&team.Name,
		&team.LogoPath,
		&team.CaptainTgID,
		&team.Status,
		&team.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &team, nil
}

func (r *TeamsRepo) Get(ctx context.Context, id int64) (*models.Team, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+teamColumns+`
		FROM teams WHERE id = $1`, id)
	return scanTeam(row)
}

func (r *TeamsRepo) CreateWithRoster(ctx context.Context, team models.Team, players []models.Player) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO teams (tournament_id, team_name, logo_path, captain_tg_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		team.TournamentID,
		team.Name,
		team.LogoPath,
		team.CaptainTgID,
		team.Status,
	).Scan(&id); err != nil {
		return 0, err
	}
	for _, player := range players {
		if _, err := tx.Exec(ctx, `
			INSERT INTO players (team_id, user_id, is_substitute)
			VALUES ($1, $2, $3)`,
			id, player.UserID, player.IsSubstitute,
		); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *TeamsRepo) Update(ctx context.Context, id int64, patch models.TeamPatch) error {
	set, args := buildUpdateSet([]column{
		{name: "team_name", value: patch.Name},
		{name: "logo_path", value: patch.LogoPath},
		{name: "status", value: patch.Status},
	})
	if len(set) == 0 {
		return nil
	}
	query := fmt.Sprintf("UPDATE teams SET %s WHERE id=$%d", set, len(args)+1)
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

func (r *TeamsRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *TeamsRepo) listTeams(ctx context.Context, query string, args ...any) ([]models.Team, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *team)
	}
	return items, rows.Err()
}

func (r *TeamsRepo) ListPending(ctx context.Context) ([]models.Team, error) {
	return r.listTeams(ctx, `
		SELECT `+teamColumns+`
		FROM teams
		WHERE status = $1
		ORDER BY created_at`, models.TeamPending)
}

func (r *TeamsRepo) ListPendingByCreator(ctx context.Context, creatorUserID int64) ([]models.Team, error) {
	return r.listTeams(ctx, `
		SELECT t.id, t.tournament_id, t.team_name, t.logo_path, t.captain_tg_id, t.status, t.created_at
		FROM teams t
		JOIN tournaments tr ON tr.id = t.tournament_id
		WHERE t.status = $1 AND tr.created_by = $2
		ORDER BY t.created_at`, models.TeamPending, creatorUserID)
}

func (r *TeamsRepo) ListByCaptain(ctx context.Context, captainTgID int64) ([]models.Team, error) {
	return r.listTeams(ctx, `
		SELECT `+teamColumns+`
		FROM teams
		WHERE captain_tg_id = $1
		ORDER BY created_at`, captainTgID)
}

func (r *TeamsRepo) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM teams`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Players --------------------------------------------------------------------

type PlayersRepo struct {
	pool *pgxpool.Pool
}

func NewPlayersRepo(pool *pgxpool.Pool) repository.PlayersRepository {
	return &PlayersRepo{pool: pool}
}

func (r *PlayersRepo) ListByTeam(ctx context.Context, teamID int64) ([]models.Player, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, team_id, user_id, is_substitute
		FROM players
		WHERE team_id = $1
		ORDER BY id`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Player
	for rows.Next() {
		var player models.Player
		if err := rows.Scan(&player.ID, &player.TeamID, &player.UserID, &player.IsSubstitute); err != nil {
			return nil, err
		}
		items = append(items, player)
	}
	return items, rows.Err()
}

func (r *PlayersRepo) Replace(ctx context.Context, teamID int64, players []models.Player) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM players WHERE team_id = $1`, teamID); err != nil {
		return err
	}
	for _, player := range players {
		if _, err := tx.Exec(ctx, `
			INSERT INTO players (team_id, user_id, is_substitute)
			VALUES ($1, $2, $3)`,
			teamID, player.UserID, player.IsSubstitute,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Sessions -------------------------------------------------------------------

type SessionsRepo struct {
	pool *pgxpool.Pool
}

func NewSessionsRepo(pool *pgxpool.Pool) repository.SessionsRepository {
	return &SessionsRepo{pool: pool}
}

func (r *SessionsRepo) Get(ctx context.Context, userID int64) (*models.UserSession, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT user_tg_id, current_flow, flow_state, updated_at
		FROM user_sessions
		WHERE user_tg_id = $1`, userID)
	var (
		session models.UserSession
		flow    *string
		state   []byte
	)
	if err := row.Scan(
		&session.UserID,
		&flow,
		&state,
		&session.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	session.CurrentFlow = flow
	session.FlowState = state
	return &session, nil
}

func (r *SessionsRepo) Upsert(ctx context.Context, session models.UserSession) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_sessions (user_tg_id, current_flow, flow_state, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_tg_id)
		DO UPDATE SET current_flow = EXCLUDED.current_flow,
		              flow_state = EXCLUDED.flow_state,
		              updated_at = NOW()`,
		session.UserID,
		session.CurrentFlow,
		session.FlowState,
	)
	return err
}

func (r *SessionsRepo) Delete(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM user_sessions WHERE user_tg_id = $1`, userID)
	return err
}

// Shared helpers -------------------------------------------------------------

type column struct {
	name  string
	value any
}

func buildUpdateSet(cols []column) (string, []any) {
	var (
		clauses []string
		args    []any
		idx     = 1
	)
	for _, col := range cols {
		switch v := col.value.(type) {
		case nil:
			continue
		case *string:
			if v == nil {
				continue
			}
			clauses = append(clauses, fmt.Sprintf("%s=$%d", col.name, idx))
			args = append(args, *v)
			idx++
		case *bool:
			if v == nil {
				continue
			}
			clauses = append(clauses, fmt.Sprintf("%s=$%d", col.name, idx))
			args = append(args, *v)
			idx++
		case *time.Time:
			if v == nil {
				continue
			}
			clauses = append(clauses, fmt.Sprintf("%s=$%d", col.name, idx))
			args = append(args, *v)
			idx++
		case *models.TournamentStatus:
			if v == nil {
				continue
			}
			clauses = append(clauses, fmt.Sprintf("%s=$%d", col.name, idx))
			args = append(args, *v)
			idx++
		case *models.TeamStatus:
			if v == nil {
				continue
			}
			clauses = append(clauses, fmt.Sprintf("%s=$%d", col.name, idx))
			args = append(args, *v)
			idx++
		default:
			clauses = append(clauses, fmt.Sprintf("%s=$%d", col.name, idx))
			args = append(args, v)
			idx++
		}
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return strings.Join(clauses, ", "), args
}
