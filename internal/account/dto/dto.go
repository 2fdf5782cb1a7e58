package dto

import (
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

type AuthResult struct {
	User        *model.User     `json:"user"`
	Customer    *model.Customer `json:"customer,omitempty"`
	Seller      *model.Seller   `json:"seller,omitempty"`
	AccessToken string          `json:"access_token"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

type Profile struct {
	User      *model.User     `json:"user"`
	Customer  *model.Customer `json:"customer,omitempty"`
	Seller    *model.Seller   `json:"seller,omitempty"`
	Addresses []model.Address `json:"addresses,omitempty"`
}
