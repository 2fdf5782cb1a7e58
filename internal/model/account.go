package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

type User struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	IsStaff      bool       `db:"is_staff" json:"is_staff"`
	IsSuperuser  bool       `db:"is_superuser" json:"is_superuser"`
	IsCustomer   bool       `db:"is_customer" json:"is_customer"`
	IsSeller     bool       `db:"is_seller" json:"is_seller"`
	DateJoined   time.Time  `db:"date_joined" json:"date_joined"`
	LastLogin    *time.Time `db:"last_login" json:"last_login"`
}

// Role picks the single role carried in the bearer token.
func (u *User) Role() string {
	switch {
	case u.IsStaff || u.IsSuperuser:
		return RoleAdmin
	case u.IsSeller:
		return RoleSeller
	default:
		return RoleCustomer
	}
}

type Customer struct {
	UserID                   string  `db:"user_id" json:"user_id"`
	FirstName                string  `db:"first_name" json:"first_name"`
	LastName                 string  `db:"last_name" json:"last_name"`
	PhoneNumber              *string `db:"phone_number" json:"phone_number"`
	DefaultShippingAddressID *string `db:"default_shipping_address_id" json:"default_shipping_address_id"`
	Note                     *string `db:"note" json:"note"`
}

type Address struct {
	BaseModel
	CustomerID     string  `db:"customer_id" json:"customer_id"`
	AddressName    string  `db:"address_name" json:"address_name"`
	FirstName      string  `db:"first_name" json:"first_name"`
	LastName       string  `db:"last_name" json:"last_name"`
	CompanyName    *string `db:"company_name" json:"company_name"`
	PhoneNumber    *string `db:"phone_number" json:"phone_number"`
	StreetAddress1 string  `db:"street_address_1" json:"street_address_1"`
	StreetAddress2 *string `db:"street_address_2" json:"street_address_2"`
	PostalCode     string  `db:"postal_code" json:"postal_code"`
	City           string  `db:"city" json:"city"`
	CityArea       string  `db:"city_area" json:"city_area"`
	CountryCode    *string `db:"country_code" json:"country_code"`
}

type Seller struct {
	UserID            string              `db:"user_id" json:"user_id"`
	CompanyName       string              `db:"company_name" json:"company_name"`
	SellerSlug        string              `db:"seller_slug" json:"seller_slug"`
	Code              string              `db:"code" json:"code"`
	Description       *string             `db:"description" json:"description"`
	WebsiteURL        *string             `db:"website_url" json:"website_url"`
	PhoneNumber       *string             `db:"phone_number" json:"phone_number"`
	PublicPhoneNumber *string             `db:"public_phone_number" json:"public_phone_number"`
	PublicEmail       *string             `db:"public_email" json:"public_email"`
	FaxNumber         *string             `db:"fax_number" json:"fax_number"`
	StreetAddress1    *string             `db:"street_address_1" json:"street_address_1"`
	StreetAddress2    *string             `db:"street_address_2" json:"street_address_2"`
	PostalCode        *string             `db:"postal_code" json:"postal_code"`
	City              *string             `db:"city" json:"city"`
	CityArea          *string             `db:"city_area" json:"city_area"`
	CountryCode       *string             `db:"country_code" json:"country_code"`
	Latitude          decimal.NullDecimal `db:"latitude" json:"latitude"`
	Longitude         decimal.NullDecimal `db:"longitude" json:"longitude"`
	IsVerified        bool                `db:"is_verified" json:"is_verified"`
	CreatedAt         time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time           `db:"updated_at" json:"updated_at"`
}

// Verify recomputes IsVerified: a seller is verified once its postal
// address is complete.
func (s *Seller) Verify() {
	s.IsVerified = present(s.StreetAddress1) && present(s.PostalCode) &&
		present(s.City) && present(s.CityArea) && present(s.CountryCode)
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

type PasswordResetToken struct {
	TokenHash string     `db:"token_hash"`
	UserID    string     `db:"user_id"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}
