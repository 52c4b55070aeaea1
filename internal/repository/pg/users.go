package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vsbaha/ENASGame-new/internal/models"
	"github.com/vsbaha/ENASGame-new/internal/repository"
)

type UsersRepo struct {
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool) repository.UsersRepository {
	return &UsersRepo{pool: pool}
}

const userColumns = `id, telegram_id, full_name, username, role, added_by, registered_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		user     models.User
		username *string
		addedBy  *int64
	)
	if err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.FullName,
		&username,
		&user.Role,
		&addedBy,
		&user.RegisteredAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	user.Username = username
	user.AddedBy = addedBy
	return &user, nil
}

func (r *UsersRepo) GetByTelegramID(ctx context.Context, tgID int64) (*models.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE telegram_id = $1`, tgID)
	return scanUser(row)
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1`, username)
	return scanUser(row)
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UsersRepo) Create(ctx context.Context, user models.User) (int64, error) {
	var id int64
	if err := r.pool.QueryRow(ctx, `
		INSERT INTO users (telegram_id, full_name, username, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_id) DO NOTHING
		RETURNING id`,
		user.TelegramID,
		user.FullName,
		user.Username,
		user.Role,
	).Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return 0, models.ErrConflict
		}
		return 0, err
	}
	return id, nil
}

func (r *UsersRepo) UpdateRole(ctx context.Context, id int64, role models.UserRole, addedBy *int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET role = $2, added_by = COALESCE($3, added_by)
		WHERE id = $1`, id, role, addedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) ListByRoles(ctx context.Context, roles ...models.UserRole) ([]models.User, error) {
	values := make([]string, 0, len(roles))
	for _, role := range roles {
		values = append(values, string(role))
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE role = ANY($1)
		ORDER BY registered_at`, values)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *user)
	}
	return items, rows.Err()
}

func (r *UsersRepo) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
