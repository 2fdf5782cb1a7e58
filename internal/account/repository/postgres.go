package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/account"
	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

var _ account.Repository = (*PGRepository)(nil)

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// allocated lists the constraints guarding allocator-produced identifiers.
var allocated = map[string]bool{
	"users_username_key":      true,
	"sellers_seller_slug_key": true,
	"sellers_code_key":        true,
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := postgres.UniqueViolation(err); ok {
		if allocated[constraint] {
			return apperror.UniquenessRaceLost(constraint, err)
		}
		if constraint == "users_email_key" {
			return apperror.Conflict("email is already registered")
		}
	}
	return err
}

func (r *PGRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	err := r.DB.GetContext(ctx, &exists, query, arg)
	return exists, err
}

func (r *PGRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *PGRepository) SellerSlugExists(ctx context.Context, slug string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM sellers WHERE seller_slug = $1)`, slug)
}

func (r *PGRepository) SellerCodeExists(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM sellers WHERE code = $1)`, code)
}

const insertUser = `
    INSERT INTO users (id, username, email, password_hash, is_active, is_staff, is_superuser,
                       is_customer, is_seller, date_joined, last_login)
    VALUES (:id, :username, :email, :password_hash, :is_active, :is_staff, :is_superuser,
            :is_customer, :is_seller, :date_joined, :last_login)
`

func (r *PGRepository) CreateCustomer(ctx context.Context, user *model.User, customer *model.Customer) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, insertUser, user); err != nil {
		return classify(err)
	}

	query := `
        INSERT INTO customers (user_id, first_name, last_name, phone_number, default_shipping_address_id, note)
        VALUES (:user_id, :first_name, :last_name, :phone_number, :default_shipping_address_id, :note)
    `
	if _, err := tx.NamedExecContext(ctx, query, customer); err != nil {
		return classify(err)
	}
	return tx.Commit()
}

func (r *PGRepository) CreateSeller(ctx context.Context, user *model.User, seller *model.Seller) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, insertUser, user); err != nil {
		return classify(err)
	}

	query := `
        INSERT INTO sellers (user_id, company_name, seller_slug, code, description, website_url,
                             phone_number, public_phone_number, public_email, fax_number,
                             street_address_1, street_address_2, postal_code, city, city_area,
                             country_code, latitude, longitude, is_verified, created_at, updated_at)
        VALUES (:user_id, :company_name, :seller_slug, :code, :description, :website_url,
                :phone_number, :public_phone_number, :public_email, :fax_number,
                :street_address_1, :street_address_2, :postal_code, :city, :city_area,
                :country_code, :latitude, :longitude, :is_verified, :created_at, :updated_at)
    `
	if _, err := tx.NamedExecContext(ctx, query, seller); err != nil {
		return classify(err)
	}
	return tx.Commit()
}

func (r *PGRepository) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	return r.findUser(ctx, `SELECT * FROM users WHERE id = $1`, id)
}

func (r *PGRepository) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findUser(ctx, `SELECT * FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *PGRepository) findUser(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	if err := r.DB.GetContext(ctx, &u, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *PGRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, userID, at)
	return err
}

func (r *PGRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, passwordHash)
	return err
}

func (r *PGRepository) FindCustomer(ctx context.Context, userID string) (*model.Customer, error) {
	var c model.Customer
	if err := r.DB.GetContext(ctx, &c, `SELECT * FROM customers WHERE user_id = $1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) UpdateCustomer(ctx context.Context, c *model.Customer) error {
	query := `
        UPDATE customers
        SET first_name = :first_name,
            last_name = :last_name,
            phone_number = :phone_number
        WHERE user_id = :user_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *PGRepository) FindSeller(ctx context.Context, userID string) (*model.Seller, error) {
	var s model.Seller
	if err := r.DB.GetContext(ctx, &s, `SELECT * FROM sellers WHERE user_id = $1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) UpdateSeller(ctx context.Context, s *model.Seller) error {
	query := `
        UPDATE sellers
        SET company_name = :company_name,
            seller_slug = :seller_slug,
            code = :code,
            description = :description,
            website_url = :website_url,
            phone_number = :phone_number,
            public_phone_number = :public_phone_number,
            public_email = :public_email,
            fax_number = :fax_number,
            street_address_1 = :street_address_1,
            street_address_2 = :street_address_2,
            postal_code = :postal_code,
            city = :city,
            city_area = :city_area,
            country_code = :country_code,
            latitude = :latitude,
            longitude = :longitude,
            is_verified = :is_verified,
            updated_at = :updated_at
        WHERE user_id = :user_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, s)
	return classify(err)
}

func (r *PGRepository) CreateAddress(ctx context.Context, a *model.Address) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO addresses (id, customer_id, address_name, first_name, last_name, company_name,
                               phone_number, street_address_1, street_address_2, postal_code,
                               city, city_area, country_code, created_at, updated_at)
        VALUES (:id, :customer_id, :address_name, :first_name, :last_name, :company_name,
                :phone_number, :street_address_1, :street_address_2, :postal_code,
                :city, :city_area, :country_code, :created_at, :updated_at)
    `
	if _, err := tx.NamedExecContext(ctx, query, a); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
        UPDATE customers SET default_shipping_address_id = $1
        WHERE user_id = $2 AND default_shipping_address_id IS NULL`, a.ID, a.CustomerID); err != nil {
		return fmt.Errorf("set default address: %w", err)
	}
	return tx.Commit()
}

func (r *PGRepository) FindAddress(ctx context.Context, id string) (*model.Address, error) {
	var a model.Address
	if err := r.DB.GetContext(ctx, &a, `SELECT * FROM addresses WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGRepository) ListAddresses(ctx context.Context, customerID string) ([]model.Address, error) {
	addresses := []model.Address{}
	err := r.DB.SelectContext(ctx, &addresses,
		`SELECT * FROM addresses WHERE customer_id = $1 ORDER BY created_at, id`, customerID)
	return addresses, err
}

func (r *PGRepository) UpdateAddress(ctx context.Context, a *model.Address) error {
	query := `
        UPDATE addresses
        SET address_name = :address_name,
            first_name = :first_name,
            last_name = :last_name,
            company_name = :company_name,
            phone_number = :phone_number,
            street_address_1 = :street_address_1,
            street_address_2 = :street_address_2,
            postal_code = :postal_code,
            city = :city,
            city_area = :city_area,
            country_code = :country_code,
            updated_at = :updated_at
        WHERE id = :id AND customer_id = :customer_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, a)
	return err
}

// DeleteAddress relies on the ON DELETE SET NULL default address reference.
func (r *PGRepository) DeleteAddress(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	return err
}

func (r *PGRepository) SetDefaultAddress(ctx context.Context, customerID, addressID string) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE customers SET default_shipping_address_id = $2
        WHERE user_id = $1
          AND EXISTS (SELECT 1 FROM addresses WHERE id = $2 AND customer_id = $1)`, customerID, addressID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.DanglingReference("address", addressID)
	}
	return nil
}

func (r *PGRepository) CreateResetToken(ctx context.Context, t *model.PasswordResetToken) error {
	query := `
        INSERT INTO password_reset_tokens (token_hash, user_id, expires_at, used_at, created_at)
        VALUES (:token_hash, :user_id, :expires_at, :used_at, :created_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, t)
	return err
}

func (r *PGRepository) FindResetToken(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	if err := r.DB.GetContext(ctx, &t, `SELECT * FROM password_reset_tokens WHERE token_hash = $1`, tokenHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGRepository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, at time.Time) (bool, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var userID string
	err = tx.GetContext(ctx, &userID, `
        UPDATE password_reset_tokens SET used_at = $2
        WHERE token_hash = $1 AND used_at IS NULL
        RETURNING user_id`, tokenHash, at)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, passwordHash); err != nil {
		return false, err
	}
	// Other outstanding tokens of the user die with this one.
	if _, err := tx.ExecContext(ctx, `
        UPDATE password_reset_tokens SET used_at = $2
        WHERE user_id = $1 AND used_at IS NULL`, userID, at); err != nil {
		return false, err
	}
	return true, tx.Commit()
}
