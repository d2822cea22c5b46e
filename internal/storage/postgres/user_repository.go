package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/domain/identity"
	"github.com/gravadigital/wisha-api/internal/domain/user"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/storage/migrations"
)

// PostgresUserRepository implements UserRepository using GORM
type PostgresUserRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresUserRepository creates a new PostgreSQL user repository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{
		db:  db,
		log: logger.Repository("user"),
	}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	u.Email = identity.NormalizeEmail(u.Email)
	r.log.Debug("Creating user", "email", u.Email, "name", u.Name)

	if u.ID == uuid.Nil {
		return errors.New("user id must be the identity id")
	}
	if u.Name == "" || u.Email == "" {
		return errors.New("name and email are required")
	}

	row := userToRow(u)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			r.log.Error("User with email already exists", "email", u.Email)
			return common.ErrEmailTaken
		}
		r.log.Error("Failed to create user", "error", err, "email", u.Email)
		return fmt.Errorf("failed to create user: %w", err)
	}

	*u = *userFromRow(row)
	r.log.Info("User created successfully", "id", u.ID, "email", u.Email)
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	r.log.Debug("retrieving user by ID", "user_id", id)

	var row migrations.User
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("User not found", "id", id)
			return nil, common.ErrNotFound
		}
		r.log.Error("Failed to get user by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return userFromRow(&row), nil
}

// GetByIDs resolves many profiles in a single round trip. Missing ids are
// simply absent from the result.
func (r *PostgresUserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*user.User, error) {
	out := make(map[uuid.UUID]*user.User, len(ids))
	keys := uuidStrings(ids)
	if len(keys) == 0 {
		return out, nil
	}

	var rows []migrations.User
	if err := r.db.WithContext(ctx).Where("id = ANY(?)", pq.Array(keys)).Find(&rows).Error; err != nil {
		r.log.Error("Failed to batch load users", "count", len(keys), "error", err)
		return nil, fmt.Errorf("failed to batch load users: %w", err)
	}

	for i := range rows {
		out[rows[i].ID] = userFromRow(&rows[i])
	}
	r.log.Debug("batch loaded users", "requested", len(keys), "found", len(out))
	return out, nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	email = identity.NormalizeEmail(email)
	r.log.Debug("retrieving user by email", "email", email)

	if email == "" {
		r.log.Error("empty email provided")
		return nil, errors.New("email cannot be empty")
	}

	var row migrations.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("User not found", "email", email)
			return nil, common.ErrNotFound
		}
		r.log.Error("Failed to get user by email", "email", email, "error", err)
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return userFromRow(&row), nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, id uuid.UUID, patch user.Patch) (*user.User, error) {
	r.log.Debug("Updating user", "id", id)

	if patch.Name != nil && *patch.Name == "" {
		return nil, errors.New("name cannot be empty")
	}

	var row migrations.User
	res := r.db.WithContext(ctx).Model(&row).
		Clauses(returningAll()).
		Where("id = ?", id).
		Updates(userPatchToUpdates(patch))
	if res.Error != nil {
		r.log.Error("Failed to update user", "error", res.Error, "id", id)
		return nil, fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.Error("User not found for update", "id", id)
		return nil, common.ErrNotFound
	}

	r.log.Info("User updated successfully", "id", id)
	return userFromRow(&row), nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.log.Debug("deleting user", "user_id", id)

	res := r.db.WithContext(ctx).Delete(&migrations.User{}, "id = ?", id)
	if res.Error != nil {
		r.log.Error("failed to delete user", "user_id", id, "error", res.Error)
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.Warn("attempted to delete non-existent user", "user_id", id)
		return common.ErrNotFound
	}

	r.log.Info("user deleted successfully", "user_id", id)
	return nil
}
