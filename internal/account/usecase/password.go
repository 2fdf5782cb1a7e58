package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/account/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenBytes = 32

var errInvalidResetToken = apperror.FieldInvalid("token", "the reset link is invalid or has expired")

func (uc *accountUseCase) ChangePassword(ctx context.Context, userID string, input *dto.ChangePasswordInput) error {
	user, err := uc.repo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NotFound("user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)) != nil {
		return apperror.FieldInvalid("old_password", "old password is not correct")
	}

	hash, err := uc.preparePassword(user.Email, input.NewPassword, input.NewPasswordConfirm, "new_password")
	if err != nil {
		return err
	}
	if err := uc.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	uc.logger.Info("password changed", zap.String("user_id", userID))
	return nil
}

// RequestPasswordReset stores the SHA-256 of a fresh random token and hands
// the raw token to the notifier as part of the reset link.
func (uc *accountUseCase) RequestPasswordReset(ctx context.Context, input *dto.PasswordResetRequestInput) error {
	user, err := uc.repo.FindUserByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return err
	}
	if user == nil || !user.IsActive {
		return apperror.FieldInvalid("email", "no active account uses this email address")
	}

	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	now := uc.now()
	record := &model.PasswordResetToken{
		TokenHash: hashToken(token),
		UserID:    user.ID,
		ExpiresAt: now.Add(uc.cfg.ResetTTL),
		CreatedAt: now,
	}
	if err := uc.repo.CreateResetToken(ctx, record); err != nil {
		return err
	}

	link := uc.cfg.ResetLinkURL + "?" + url.Values{"token": {token}}.Encode()
	if err := uc.notifier.NotifyPasswordReset(ctx, user, link, record.ExpiresAt); err != nil {
		uc.logger.Error("failed to deliver password reset", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}
	return nil
}

func (uc *accountUseCase) CheckResetToken(ctx context.Context, token string) error {
	_, err := uc.validResetToken(ctx, token, uc.now())
	return err
}

func (uc *accountUseCase) ResetPassword(ctx context.Context, input *dto.PasswordResetInput) error {
	now := uc.now()
	record, err := uc.validResetToken(ctx, input.Token, now)
	if err != nil {
		return err
	}

	user, err := uc.repo.FindUserByID(ctx, record.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return errInvalidResetToken
	}

	if err := validatePassword("new_password", input.NewPassword, user.Email); err != nil {
		return err
	}
	hash, err := uc.hash("new_password", input.NewPassword)
	if err != nil {
		return err
	}

	ok, err := uc.repo.ConsumeResetToken(ctx, record.TokenHash, hash, now)
	if err != nil {
		return err
	}
	if !ok {
		return errInvalidResetToken
	}

	uc.logger.Info("password reset", zap.String("user_id", user.ID))
	return nil
}

func (uc *accountUseCase) validResetToken(ctx context.Context, token string, now time.Time) (*model.PasswordResetToken, error) {
	if token == "" {
		return nil, errInvalidResetToken
	}
	record, err := uc.repo.FindResetToken(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}
	if record == nil || record.UsedAt != nil || !now.Before(record.ExpiresAt) {
		return nil, errInvalidResetToken
	}
	return record, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
