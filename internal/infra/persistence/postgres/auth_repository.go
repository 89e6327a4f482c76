// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"radar/internal/domain/entity"
	"radar/internal/domain/repository"
	"radar/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// authRepository implements the domain.AuthRepository interface.
type authRepository struct {
	db *gorm.DB
}

// NewAuthRepository is the constructor for authRepository.
func NewAuthRepository(db *gorm.DB) repository.AuthRepository {
	return &authRepository{db: db}
}

// CreateAuthentication persists a new authentication method record.
func (r *authRepository) CreateAuthentication(ctx context.Context, auth *entity.Authentication) error {
	authM := fromAuthenticationDomain(auth)
	if err := r.db.WithContext(ctx).Create(authM).Error; err != nil {
		return err
	}
	auth.ID = authM.ID
	auth.CreatedAt = authM.CreatedAt
	return nil
}

// FindAuthenticationByUserID retrieves the credential belonging to a user.
func (r *authRepository) FindAuthenticationByUserID(ctx context.Context, userID uuid.UUID) (*entity.Authentication, error) {
	var authM model.AuthenticationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&authM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAuthNotFound
		}
		return nil, err
	}
	return toAuthenticationDomain(&authM), nil
}

// --- Mapper Functions ---

// toAuthenticationDomain converts a GORM AuthenticationModel to a domain Authentication entity.
func toAuthenticationDomain(m *model.AuthenticationModel) *entity.Authentication {
	if m == nil {
		return nil
	}
	return &entity.Authentication{
		ID:           m.ID,
		UserID:       m.UserID,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

// fromAuthenticationDomain converts a domain Authentication entity to a GORM AuthenticationModel.
func fromAuthenticationDomain(e *entity.Authentication) *model.AuthenticationModel {
	if e == nil {
		return nil
	}
	return &model.AuthenticationModel{
		ID:           e.ID,
		UserID:       e.UserID,
		PasswordHash: e.PasswordHash,
	}
}
