package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/account"
	"github.com/fekuna/omnipos-marketplace-service/internal/account/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/identifier"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	ResetTTL     time.Duration
	ResetLinkURL string
	BcryptCost   int
}

type accountUseCase struct {
	repo      account.Repository
	allocator *identifier.Allocator
	tokens    account.TokenIssuer
	notifier  account.ResetNotifier
	cfg       Config
	logger    logger.ZapLogger
	now       func() time.Time
}

func NewAccountUseCase(repo account.Repository, allocator *identifier.Allocator, tokens account.TokenIssuer, notifier account.ResetNotifier, cfg Config, log logger.ZapLogger) account.UseCase {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.ResetTTL == 0 {
		cfg.ResetTTL = time.Hour
	}
	return &accountUseCase{
		repo:      repo,
		allocator: allocator,
		tokens:    tokens,
		notifier:  notifier,
		cfg:       cfg,
		logger:    log,
		now:       time.Now,
	}
}

func (uc *accountUseCase) RegisterCustomer(ctx context.Context, input *dto.RegisterCustomerInput) (*dto.AuthResult, error) {
	email := normalizeEmail(input.Email)
	hash, err := uc.preparePassword(email, input.Password, input.Password2, "password")
	if err != nil {
		return nil, err
	}
	if err := uc.ensureEmailAvailable(ctx, email); err != nil {
		return nil, err
	}

	now := uc.now()
	var (
		user     *model.User
		customer *model.Customer
	)
	err = uc.allocator.Commit(ctx, "username", func(ctx context.Context) error {
		username, err := uc.allocator.Slug(ctx, localPart(email), uc.repo.UsernameExists)
		if err != nil {
			return err
		}

		user = &model.User{
			ID:           uuid.New().String(),
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			IsActive:     true,
			IsCustomer:   true,
			DateJoined:   now,
		}
		customer = &model.Customer{
			UserID:      user.ID,
			FirstName:   input.Customer.FirstName,
			LastName:    input.Customer.LastName,
			PhoneNumber: input.Customer.PhoneNumber,
		}
		return uc.repo.CreateCustomer(ctx, user, customer)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("customer registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return uc.authResult(user, customer, nil)
}

func (uc *accountUseCase) RegisterSeller(ctx context.Context, input *dto.RegisterSellerInput) (*dto.AuthResult, error) {
	email := normalizeEmail(input.Email)
	companyName := strings.TrimSpace(input.CompanyName)
	if companyName == "" {
		return nil, apperror.FieldInvalid("company_name", "this field is required")
	}
	hash, err := uc.preparePassword(email, input.Password, input.Password2, "password")
	if err != nil {
		return nil, err
	}
	if err := uc.ensureEmailAvailable(ctx, email); err != nil {
		return nil, err
	}

	now := uc.now()
	var (
		user   *model.User
		seller *model.Seller
	)
	err = uc.allocator.Commit(ctx, "seller identifiers", func(ctx context.Context) error {
		username, err := uc.allocator.Slug(ctx, companyName, uc.repo.UsernameExists)
		if err != nil {
			return err
		}
		slug, err := uc.allocator.Slug(ctx, companyName, uc.repo.SellerSlugExists)
		if err != nil {
			return err
		}
		code, err := uc.allocator.Code(ctx, companyName, uc.repo.SellerCodeExists)
		if err != nil {
			return err
		}

		user = &model.User{
			ID:           uuid.New().String(),
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			IsActive:     true,
			IsSeller:     true,
			DateJoined:   now,
		}
		seller = &model.Seller{
			UserID:      user.ID,
			CompanyName: companyName,
			SellerSlug:  slug,
			Code:        code,
			Description: input.Description,
			WebsiteURL:  input.WebsiteURL,
			PhoneNumber: input.PhoneNumber,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		seller.Verify()
		return uc.repo.CreateSeller(ctx, user, seller)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("seller registered",
		zap.String("user_id", user.ID),
		zap.String("seller_slug", seller.SellerSlug),
		zap.String("code", seller.Code),
	)
	return uc.authResult(user, nil, seller)
}

func (uc *accountUseCase) Login(ctx context.Context, input *dto.LoginInput) (*dto.AuthResult, error) {
	user, err := uc.repo.FindUserByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	now := uc.now()
	if err := uc.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		uc.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}
	user.LastLogin = &now

	var customer *model.Customer
	var seller *model.Seller
	if user.IsCustomer {
		if customer, err = uc.repo.FindCustomer(ctx, user.ID); err != nil {
			return nil, err
		}
	}
	if user.IsSeller {
		if seller, err = uc.repo.FindSeller(ctx, user.ID); err != nil {
			return nil, err
		}
	}
	return uc.authResult(user, customer, seller)
}

func (uc *accountUseCase) GetProfile(ctx context.Context, userID string) (*dto.Profile, error) {
	user, err := uc.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("user")
	}

	p := &dto.Profile{User: user}
	if user.IsCustomer {
		if p.Customer, err = uc.repo.FindCustomer(ctx, userID); err != nil {
			return nil, err
		}
		if p.Addresses, err = uc.repo.ListAddresses(ctx, userID); err != nil {
			return nil, err
		}
	}
	if user.IsSeller {
		if p.Seller, err = uc.repo.FindSeller(ctx, userID); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (uc *accountUseCase) authResult(user *model.User, customer *model.Customer, seller *model.Seller) (*dto.AuthResult, error) {
	token, expires, err := uc.tokens.Issue(user.ID, user.Username, user.Role())
	if err != nil {
		return nil, err
	}
	return &dto.AuthResult{
		User:        user,
		Customer:    customer,
		Seller:      seller,
		AccessToken: token,
		ExpiresAt:   expires,
	}, nil
}

// preparePassword checks the confirmation and strength rules and returns the
// bcrypt hash. field names the input the errors are reported against.
func (uc *accountUseCase) preparePassword(email, password, confirm, field string) (string, error) {
	if password != confirm {
		return "", apperror.FieldInvalid(field, "password fields didn't match")
	}
	if err := validatePassword(field, password, email); err != nil {
		return "", err
	}
	return uc.hash(field, password)
}

func (uc *accountUseCase) ensureEmailAvailable(ctx context.Context, email string) error {
	existing, err := uc.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperror.Conflict("email is already registered")
	}
	return nil
}

func (uc *accountUseCase) hash(field, password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), uc.cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperror.FieldInvalid(field, "must be at most 72 bytes")
		}
		return "", err
	}
	return string(b), nil
}

func validatePassword(field, password, email string) error {
	switch {
	case len([]rune(password)) < 8:
		return apperror.FieldInvalid(field, "must be at least 8 characters")
	case isNumeric(password):
		return apperror.FieldInvalid(field, "must not be entirely numeric")
	case email != "" && strings.EqualFold(password, localPart(email)):
		return apperror.FieldInvalid(field, "is too similar to the email address")
	}
	return nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func localPart(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}
