package store

import (
	"context"

	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/google/uuid"
)

func (s *GormStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	return translate(s.db.WithContext(ctx).Create(token).Error, "store refresh token")
}

func (s *GormStore) RefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := s.db.WithContext(ctx).
		Where("token_hash = ? AND revoked = ?", hash, false).
		First(&token).Error
	if err != nil {
		return nil, translate(err, "fetch refresh token")
	}
	return &token, nil
}

func (s *GormStore) RevokeRefreshToken(ctx context.Context, id uuid.UUID) (bool, error) {
	result := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = ?", id, false).
		Update("revoked", true)
	if result.Error != nil {
		return false, translate(result.Error, "revoke refresh token")
	}
	return result.RowsAffected > 0, nil
}

func (s *GormStore) RevokeRefreshTokenByHash(ctx context.Context, hash string) error {
	err := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", hash).
		Update("revoked", true).Error
	return translate(err, "revoke refresh token")
}

func (s *GormStore) RevokeUserTokens(ctx context.Context, userID uuid.UUID) error {
	err := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
	return translate(err, "revoke user tokens")
}
