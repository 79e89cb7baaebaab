package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	infraDB "github.com/davicafu/tasksense/internal/infra/db"
	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	"github.com/davicafu/tasksense/internal/user/domain"
)

const userColumns = "id, name, email, created_at"

// allChunk es el tamaño de página de ListAll.
const allChunk = 500

// UserRepo implementa UserRepository sobre SQLite o Postgres; las consultas se
// escriben con '?' y sqlx las adapta al dialecto.
type UserRepo struct {
	db *sqlx.DB
}

var _ domain.UserRepository = (*UserRepo)(nil)

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	query := r.db.Rebind(`INSERT INTO users (name, email, created_at) VALUES (?, ?, ?) RETURNING id`)
	if err := r.db.QueryRowxContext(ctx, query, u.Name, u.Email, u.CreatedAt).Scan(&u.ID); err != nil {
		if infraDB.IsUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("fetching user %d: %w", id, err)
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context, page sharedQuery.OffsetPagination) ([]*domain.User, error) {
	users := []*domain.User{}
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &users, query, page.Limit, page.Offset); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// ListAll pagina por id para no cargar un único result set enorme.
func (r *UserRepo) ListAll(ctx context.Context) ([]*domain.User, error) {
	var all []*domain.User
	var lastID int64
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id > ? ORDER BY id LIMIT ?`)
	for {
		var chunk []*domain.User
		if err := r.db.SelectContext(ctx, &chunk, query, lastID, allChunk); err != nil {
			return nil, fmt.Errorf("listing all users: %w", err)
		}
		all = append(all, chunk...)
		if len(chunk) < allChunk {
			return all, nil
		}
		lastID = chunk[len(chunk)-1].ID
	}
}
