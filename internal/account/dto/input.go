package dto

import "github.com/shopspring/decimal"

type CustomerProfileInput struct {
	FirstName   string  `json:"first_name" binding:"required,max=64"`
	LastName    string  `json:"last_name" binding:"required,max=64"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=32"`
}

type RegisterCustomerInput struct {
	Email     string               `json:"email" binding:"required,email,max=254"`
	Password  string               `json:"password" binding:"required"`
	Password2 string               `json:"password2" binding:"required"`
	Customer  CustomerProfileInput `json:"customer"`
}

type RegisterSellerInput struct {
	Email       string  `json:"email" binding:"required,email,max=254"`
	Password    string  `json:"password" binding:"required"`
	Password2   string  `json:"password2" binding:"required"`
	CompanyName string  `json:"company_name" binding:"required,max=128"`
	Description *string `json:"description"`
	WebsiteURL  *string `json:"website_url" binding:"omitempty,url,max=200"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=32"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateCustomerInput struct {
	FirstName   string  `json:"first_name" binding:"required,max=64"`
	LastName    string  `json:"last_name" binding:"required,max=64"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=32"`
}

type AddressInput struct {
	AddressName    string  `json:"address_name" binding:"required,max=64"`
	FirstName      string  `json:"first_name" binding:"required,max=64"`
	LastName       string  `json:"last_name" binding:"required,max=64"`
	CompanyName    *string `json:"company_name" binding:"omitempty,max=64"`
	PhoneNumber    *string `json:"phone_number" binding:"omitempty,max=32"`
	StreetAddress1 string  `json:"street_address_1" binding:"required,max=256"`
	StreetAddress2 *string `json:"street_address_2" binding:"omitempty,max=256"`
	PostalCode     string  `json:"postal_code" binding:"required,max=32"`
	City           string  `json:"city" binding:"required,max=64"`
	CityArea       string  `json:"city_area" binding:"required,max=64"`
	CountryCode    *string `json:"country_code" binding:"omitempty,iso3166_1_alpha2"`
}

type SetDefaultAddressInput struct {
	AddressID string `json:"address_id" binding:"required"`
}

type UpdateSellerInput struct {
	CompanyName string  `json:"company_name" binding:"required,max=128"`
	Description *string `json:"description"`
	WebsiteURL  *string `json:"website_url" binding:"omitempty,url,max=200"`
}

// SellerLabelInput carries the label a new slug or code is derived from.
type SellerLabelInput struct {
	Label string `json:"label" binding:"required,max=128"`
}

type SellerContactInput struct {
	PhoneNumber       *string `json:"phone_number" binding:"omitempty,max=32"`
	PublicPhoneNumber *string `json:"public_phone_number" binding:"omitempty,max=32"`
	PublicEmail       *string `json:"public_email" binding:"omitempty,email"`
	FaxNumber         *string `json:"fax_number" binding:"omitempty,max=32"`
}

type SellerLocationInput struct {
	StreetAddress1 *string          `json:"street_address_1" binding:"omitempty,max=256"`
	StreetAddress2 *string          `json:"street_address_2" binding:"omitempty,max=256"`
	PostalCode     *string          `json:"postal_code" binding:"omitempty,max=32"`
	City           *string          `json:"city" binding:"omitempty,max=64"`
	CityArea       *string          `json:"city_area" binding:"omitempty,max=64"`
	CountryCode    *string          `json:"country_code" binding:"omitempty,iso3166_1_alpha2"`
	Latitude       *decimal.Decimal `json:"latitude"`
	Longitude      *decimal.Decimal `json:"longitude"`
}

type ChangePasswordInput struct {
	OldPassword        string `json:"old_password" binding:"required"`
	NewPassword        string `json:"new_password" binding:"required"`
	NewPasswordConfirm string `json:"new_password_confirm" binding:"required"`
}

type PasswordResetRequestInput struct {
	Email string `json:"email" binding:"required,email"`
}

type PasswordResetInput struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}
