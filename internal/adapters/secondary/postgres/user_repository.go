package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
	"github.com/lorrc/helpdesk-portal/internal/core/utils"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(pool *pgxpool.Pool) ports.UserRepository {
	return &UserRepository{pool: pool}
}

const userSelect = `
SELECT u.id, u.full_name, u.email, u.phone, u.password_hash, u.role,
       u.department_id, d.name, u.is_first_login, u.is_network_engineer,
       u.locations, u.is_active, u.created_at, u.last_active_at
FROM users u
LEFT JOIN departments d ON d.id = u.department_id`

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user         domain.User
		phone        pgtype.Text
		role         string
		departmentID pgtype.UUID
		department   pgtype.Text
		locations    []byte
		lastActive   pgtype.Timestamptz
	)
	err := row.Scan(
		&user.ID, &user.FullName, &user.Email, &phone, &user.HashedPassword, &role,
		&departmentID, &department, &user.IsFirstLogin, &user.IsNetworkEngineer,
		&locations, &user.IsActive, &user.CreatedAt, &lastActive,
	)
	if err != nil {
		return nil, err
	}

	user.Phone = utils.FromString(phone)
	user.Role = domain.Role(role)
	user.DepartmentID = utils.FromNullUUID(departmentID)
	user.DepartmentName = utils.FromString(department)
	user.LastActiveAt = utils.FromNullTime(lastActive)
	if len(locations) > 0 {
		if err := json.Unmarshal(locations, &user.Locations); err != nil {
			return nil, fmt.Errorf("decode locations of user %s: %w", user.ID, err)
		}
	}
	return &user, nil
}

func encodeLocations(locations []domain.AdminLocation) ([]byte, error) {
	if locations == nil {
		locations = []domain.AdminLocation{}
	}
	return json.Marshal(locations)
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	const query = `
INSERT INTO users (id, full_name, email, phone, password_hash, role, department_id,
                   is_first_login, is_network_engineer, locations, is_active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	locations, err := encodeLocations(user.Locations)
	if err != nil {
		return nil, err
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err = GetDBTX(ctx, r.pool).Exec(ctx, query,
		user.ID, user.FullName, user.Email, utils.ToString(user.Phone), user.HashedPassword,
		string(user.Role), utils.ToNullUUID(user.DepartmentID), user.IsFirstLogin,
		user.IsNetworkEngineer, locations, user.IsActive, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrUserExists
		}
		if isForeignKeyViolation(err) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, user.ID)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := GetDBTX(ctx, r.pool).QueryRow(ctx, userSelect+` WHERE u.email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := GetDBTX(ctx, r.pool).QueryRow(ctx, userSelect+` WHERE u.id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	return user, nil
}

func (r *UserRepository) ListByDepartment(ctx context.Context, departmentID uuid.UUID, role domain.Role) ([]*domain.User, error) {
	rows, err := GetDBTX(ctx, r.pool).Query(ctx,
		userSelect+` WHERE u.department_id = $1 AND u.role = $2 ORDER BY u.full_name, u.email`,
		departmentID, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string, isFirstLogin bool) error {
	return r.execOne(ctx, `UPDATE users SET password_hash = $2, is_first_login = $3 WHERE id = $1`,
		id, hashedPassword, isFirstLogin)
}

func (r *UserRepository) UpdateLocations(ctx context.Context, id uuid.UUID, locations []domain.AdminLocation) error {
	encoded, err := encodeLocations(locations)
	if err != nil {
		return err
	}
	return r.execOne(ctx, `UPDATE users SET locations = $2 WHERE id = $1`, id, encoded)
}

func (r *UserRepository) SetActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	return r.execOne(ctx, `UPDATE users SET is_active = $2 WHERE id = $1`, id, isActive)
}

func (r *UserRepository) UpdateLastActive(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.execOne(ctx, `UPDATE users SET last_active_at = $2 WHERE id = $1`, id, at)
}

func (r *UserRepository) ExistsByRole(ctx context.Context, role domain.Role) (bool, error) {
	var exists bool
	err := GetDBTX(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE role = $1)`, string(role)).Scan(&exists)
	return exists, err
}

func (r *UserRepository) execOne(ctx context.Context, query string, args ...interface{}) error {
	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
