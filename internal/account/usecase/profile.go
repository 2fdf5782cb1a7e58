package usecase

import (
	"context"
	"strings"

	"github.com/fekuna/omnipos-marketplace-service/internal/account/dto"
	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/identifier"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	maxLatitude  = decimal.NewFromInt(90)
	maxLongitude = decimal.NewFromInt(180)
)

func (uc *accountUseCase) customer(ctx context.Context, userID string) (*model.Customer, error) {
	c, err := uc.repo.FindCustomer(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperror.Forbidden("customer account required")
	}
	return c, nil
}

func (uc *accountUseCase) seller(ctx context.Context, userID string) (*model.Seller, error) {
	s, err := uc.repo.FindSeller(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, apperror.Forbidden("seller account required")
	}
	return s, nil
}

func (uc *accountUseCase) UpdateCustomer(ctx context.Context, userID string, input *dto.UpdateCustomerInput) (*model.Customer, error) {
	c, err := uc.customer(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.FirstName = input.FirstName
	c.LastName = input.LastName
	c.PhoneNumber = input.PhoneNumber
	if err := uc.repo.UpdateCustomer(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *accountUseCase) ListAddresses(ctx context.Context, userID string) ([]model.Address, error) {
	if _, err := uc.customer(ctx, userID); err != nil {
		return nil, err
	}
	return uc.repo.ListAddresses(ctx, userID)
}

func (uc *accountUseCase) CreateAddress(ctx context.Context, userID string, input *dto.AddressInput) (*model.Address, error) {
	if _, err := uc.customer(ctx, userID); err != nil {
		return nil, err
	}

	now := uc.now()
	a := &model.Address{
		BaseModel:  model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		CustomerID: userID,
	}
	applyAddress(a, input)
	if err := uc.repo.CreateAddress(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (uc *accountUseCase) UpdateAddress(ctx context.Context, userID, addressID string, input *dto.AddressInput) (*model.Address, error) {
	a, err := uc.ownedAddress(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	applyAddress(a, input)
	a.UpdatedAt = uc.now()
	if err := uc.repo.UpdateAddress(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (uc *accountUseCase) DeleteAddress(ctx context.Context, userID, addressID string) error {
	if _, err := uc.ownedAddress(ctx, userID, addressID); err != nil {
		return err
	}
	return uc.repo.DeleteAddress(ctx, addressID)
}

// SetDefaultAddress only accepts one of the customer's own addresses.
func (uc *accountUseCase) SetDefaultAddress(ctx context.Context, userID, addressID string) (*model.Customer, error) {
	c, err := uc.customer(ctx, userID)
	if err != nil {
		return nil, err
	}

	a, err := uc.repo.FindAddress(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if a == nil || a.CustomerID != userID {
		return nil, apperror.DanglingReference("address", addressID)
	}

	if err := uc.repo.SetDefaultAddress(ctx, userID, addressID); err != nil {
		return nil, err
	}
	c.DefaultShippingAddressID = &a.ID
	return c, nil
}

func (uc *accountUseCase) ownedAddress(ctx context.Context, userID, addressID string) (*model.Address, error) {
	if _, err := uc.customer(ctx, userID); err != nil {
		return nil, err
	}
	a, err := uc.repo.FindAddress(ctx, addressID)
	if err != nil {
		return nil, err
	}
	// someone else's address is reported as missing
	if a == nil || a.CustomerID != userID {
		return nil, apperror.NotFound("address")
	}
	return a, nil
}

func applyAddress(a *model.Address, in *dto.AddressInput) {
	a.AddressName = in.AddressName
	a.FirstName = in.FirstName
	a.LastName = in.LastName
	a.CompanyName = in.CompanyName
	a.PhoneNumber = in.PhoneNumber
	a.StreetAddress1 = in.StreetAddress1
	a.StreetAddress2 = in.StreetAddress2
	a.PostalCode = in.PostalCode
	a.City = in.City
	a.CityArea = in.CityArea
	a.CountryCode = upper(in.CountryCode)
}

func (uc *accountUseCase) UpdateSeller(ctx context.Context, userID string, input *dto.UpdateSellerInput) (*model.Seller, error) {
	s, err := uc.seller(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.CompanyName = strings.TrimSpace(input.CompanyName)
	s.Description = input.Description
	s.WebsiteURL = input.WebsiteURL
	return s, uc.saveSeller(ctx, s)
}

// UpdateSellerSlug re-allocates the public slug from label. A label that
// already maps to the current slug leaves the seller untouched.
func (uc *accountUseCase) UpdateSellerSlug(ctx context.Context, userID string, input *dto.SellerLabelInput) (*model.Seller, error) {
	s, err := uc.seller(ctx, userID)
	if err != nil {
		return nil, err
	}
	if identifier.Slugify(input.Label) == s.SellerSlug {
		return s, nil
	}

	err = uc.allocator.Commit(ctx, "seller slug", func(ctx context.Context) error {
		slug, err := uc.allocator.Slug(ctx, input.Label, uc.repo.SellerSlugExists)
		if err != nil {
			return err
		}
		s.SellerSlug = slug
		return uc.saveSeller(ctx, s)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("seller slug changed", zap.String("user_id", userID), zap.String("seller_slug", s.SellerSlug))
	return s, nil
}

func (uc *accountUseCase) UpdateSellerCode(ctx context.Context, userID string, input *dto.SellerLabelInput) (*model.Seller, error) {
	s, err := uc.seller(ctx, userID)
	if err != nil {
		return nil, err
	}
	if derived := identifier.DeriveCode(input.Label); derived != "" && derived == s.Code {
		return s, nil
	}

	err = uc.allocator.Commit(ctx, "seller code", func(ctx context.Context) error {
		code, err := uc.allocator.Code(ctx, input.Label, uc.repo.SellerCodeExists)
		if err != nil {
			return err
		}
		s.Code = code
		return uc.saveSeller(ctx, s)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("seller code changed", zap.String("user_id", userID), zap.String("code", s.Code))
	return s, nil
}

func (uc *accountUseCase) UpdateSellerContact(ctx context.Context, userID string, input *dto.SellerContactInput) (*model.Seller, error) {
	s, err := uc.seller(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.PhoneNumber = input.PhoneNumber
	s.PublicPhoneNumber = input.PublicPhoneNumber
	s.PublicEmail = input.PublicEmail
	s.FaxNumber = input.FaxNumber
	return s, uc.saveSeller(ctx, s)
}

func (uc *accountUseCase) UpdateSellerLocation(ctx context.Context, userID string, input *dto.SellerLocationInput) (*model.Seller, error) {
	fields := map[string]string{}
	if input.Latitude != nil && input.Latitude.Abs().GreaterThan(maxLatitude) {
		fields["latitude"] = "must be between -90 and 90"
	}
	if input.Longitude != nil && input.Longitude.Abs().GreaterThan(maxLongitude) {
		fields["longitude"] = "must be between -180 and 180"
	}
	if len(fields) > 0 {
		return nil, apperror.Validation("invalid location", fields)
	}

	s, err := uc.seller(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.StreetAddress1 = input.StreetAddress1
	s.StreetAddress2 = input.StreetAddress2
	s.PostalCode = input.PostalCode
	s.City = input.City
	s.CityArea = input.CityArea
	s.CountryCode = upper(input.CountryCode)
	s.Latitude = nullDecimal(input.Latitude)
	s.Longitude = nullDecimal(input.Longitude)
	return s, uc.saveSeller(ctx, s)
}

// saveSeller recomputes the verification flag before every write.
func (uc *accountUseCase) saveSeller(ctx context.Context, s *model.Seller) error {
	s.Verify()
	s.UpdatedAt = uc.now()
	return uc.repo.UpdateSeller(ctx, s)
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func upper(s *string) *string {
	if s == nil {
		return nil
	}
	u := strings.ToUpper(*s)
	return &u
}
