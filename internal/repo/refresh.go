package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/danabekov/techstore/internal/models"
)

// IssueRefreshToken replaces the user's refresh chain: every prior row is
// deleted and the new one inserted in a single transaction, so a crash cannot
// leave the user with zero or duplicate live tokens. A second login therefore
// invalidates the first login's refresh token even though that token was
// already returned to its client; last writer wins under the
// single-active-session policy.
func (r *GormRepo) IssueRefreshToken(ctx context.Context, userID uint, token string, expiresAt time.Time) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.RefreshToken{
			Token:     token,
			UserID:    userID,
			ExpiresAt: expiresAt,
		}).Error
	})
}

func (r *GormRepo) RevokeAllRefreshTokens(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.RefreshToken{}).Error
}

// RefreshTokenValid reports whether a matching, non-revoked, non-expired row exists.
func (r *GormRepo) RefreshTokenValid(ctx context.Context, token string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ? AND revoked = ? AND expires_at > ?", token, false, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RevokeRefreshToken removes the matching row and reports whether one existed.
func (r *GormRepo) RevokeRefreshToken(ctx context.Context, token string) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("token = ?", token).
		Delete(&models.RefreshToken{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
