package account

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/account/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

type UseCase interface {
	RegisterCustomer(ctx context.Context, input *dto.RegisterCustomerInput) (*dto.AuthResult, error)
	RegisterSeller(ctx context.Context, input *dto.RegisterSellerInput) (*dto.AuthResult, error)
	Login(ctx context.Context, input *dto.LoginInput) (*dto.AuthResult, error)
	GetProfile(ctx context.Context, userID string) (*dto.Profile, error)

	UpdateCustomer(ctx context.Context, userID string, input *dto.UpdateCustomerInput) (*model.Customer, error)
	ListAddresses(ctx context.Context, userID string) ([]model.Address, error)
	CreateAddress(ctx context.Context, userID string, input *dto.AddressInput) (*model.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID string, input *dto.AddressInput) (*model.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID string) error
	SetDefaultAddress(ctx context.Context, userID, addressID string) (*model.Customer, error)

	UpdateSeller(ctx context.Context, userID string, input *dto.UpdateSellerInput) (*model.Seller, error)
	UpdateSellerSlug(ctx context.Context, userID string, input *dto.SellerLabelInput) (*model.Seller, error)
	UpdateSellerCode(ctx context.Context, userID string, input *dto.SellerLabelInput) (*model.Seller, error)
	UpdateSellerContact(ctx context.Context, userID string, input *dto.SellerContactInput) (*model.Seller, error)
	UpdateSellerLocation(ctx context.Context, userID string, input *dto.SellerLocationInput) (*model.Seller, error)

	ChangePassword(ctx context.Context, userID string, input *dto.ChangePasswordInput) error
	RequestPasswordReset(ctx context.Context, input *dto.PasswordResetRequestInput) error
	CheckResetToken(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, input *dto.PasswordResetInput) error
}

// TokenIssuer issues bearer tokens after registration and login.
type TokenIssuer interface {
	Issue(userID, username, role string) (string, time.Time, error)
}

// ResetNotifier delivers a password reset link to the user.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, user *model.User, link string, expiresAt time.Time) error
}
