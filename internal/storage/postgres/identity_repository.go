package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/domain/identity"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/storage/migrations"
)

// PostgresIdentityRepository implements IdentityRepository using GORM
type PostgresIdentityRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresIdentityRepository creates a new PostgreSQL identity repository
func NewPostgresIdentityRepository(db *gorm.DB) *PostgresIdentityRepository {
	return &PostgresIdentityRepository{
		db:  db,
		log: logger.Repository("identity"),
	}
}

func (r *PostgresIdentityRepository) Create(ctx context.Context, ident *identity.Identity) error {
	ident.Email = identity.NormalizeEmail(ident.Email)
	r.log.Debug("creating identity", "email", ident.Email)

	if ident.Email == "" || ident.PasswordHash == "" {
		return errors.New("email and password hash are required")
	}
	if common.IsGuest(ident.ID) {
		ident.ID = uuid.New()
	}

	row := identityToRow(ident)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			r.log.Warn("identity email already registered", "email", ident.Email)
			return common.ErrEmailTaken
		}
		r.log.Error("failed to create identity", "email", ident.Email, "error", err)
		return fmt.Errorf("failed to create identity: %w", err)
	}

	*ident = *identityFromRow(row)
	r.log.Info("identity created successfully", "id", ident.ID)
	return nil
}

func (r *PostgresIdentityRepository) GetByID(ctx context.Context, id uuid.UUID) (*identity.Identity, error) {
	r.log.Debug("retrieving identity by ID", "identity_id", id)

	var row migrations.AuthIdentity
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		r.log.Error("failed to get identity by ID", "identity_id", id, "error", err)
		return nil, fmt.Errorf("failed to get identity by ID: %w", err)
	}
	return identityFromRow(&row), nil
}

func (r *PostgresIdentityRepository) GetByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	email = identity.NormalizeEmail(email)
	r.log.Debug("retrieving identity by email", "email", email)

	if email == "" {
		return nil, errors.New("email cannot be empty")
	}

	var row migrations.AuthIdentity
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("identity not found", "email", email)
			return nil, common.ErrNotFound
		}
		r.log.Error("failed to get identity by email", "email", email, "error", err)
		return nil, fmt.Errorf("failed to get identity by email: %w", err)
	}
	return identityFromRow(&row), nil
}

// EmailExists checks whether an identity is registered under email
func (r *PostgresIdentityRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	email = identity.NormalizeEmail(email)
	if email == "" {
		return false, errors.New("email cannot be empty")
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&migrations.AuthIdentity{}).Where("email = ?", email).Count(&count).Error; err != nil {
		r.log.Error("failed to check email existence", "email", email, "error", err)
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	r.log.Debug("email existence check completed", "email", email, "exists", count > 0)
	return count > 0, nil
}

func (r *PostgresIdentityRepository) TouchSignIn(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&migrations.AuthIdentity{}).
		Where("id = ?", id).
		Update("last_sign_in_at", time.Now().UTC())
	if res.Error != nil {
		r.log.Error("failed to record sign-in", "identity_id", id, "error", res.Error)
		return fmt.Errorf("failed to record sign-in: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresIdentityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.log.Debug("deleting identity", "identity_id", id)

	res := r.db.WithContext(ctx).Delete(&migrations.AuthIdentity{}, "id = ?", id)
	if res.Error != nil {
		r.log.Error("failed to delete identity", "identity_id", id, "error", res.Error)
		return fmt.Errorf("failed to delete identity: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}

	r.log.Info("identity deleted successfully", "identity_id", id)
	return nil
}
