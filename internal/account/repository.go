package account

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

// Repository persists users and their customer or seller profiles. Unique
// violations on allocated identifiers come back as apperror.UniquenessRaceLost.
type Repository interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	SellerSlugExists(ctx context.Context, slug string) (bool, error)
	SellerCodeExists(ctx context.Context, code string) (bool, error)

	CreateCustomer(ctx context.Context, user *model.User, customer *model.Customer) error
	CreateSeller(ctx context.Context, user *model.User, seller *model.Seller) error

	FindUserByID(ctx context.Context, id string) (*model.User, error)
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	FindCustomer(ctx context.Context, userID string) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, customer *model.Customer) error
	FindSeller(ctx context.Context, userID string) (*model.Seller, error)
	UpdateSeller(ctx context.Context, seller *model.Seller) error

	// CreateAddress inserts the address and makes it the default shipping
	// address when the customer has none.
	CreateAddress(ctx context.Context, address *model.Address) error
	FindAddress(ctx context.Context, id string) (*model.Address, error)
	ListAddresses(ctx context.Context, customerID string) ([]model.Address, error)
	UpdateAddress(ctx context.Context, address *model.Address) error
	DeleteAddress(ctx context.Context, id string) error
	SetDefaultAddress(ctx context.Context, customerID, addressID string) error

	CreateResetToken(ctx context.Context, token *model.PasswordResetToken) error
	FindResetToken(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error)
	// ConsumeResetToken marks the token used and stores the new password in
	// one transaction. It returns false when the token was already used.
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, at time.Time) (bool, error)
}
