package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"parts-and-service/internal/models"
)

// RepositoryInterface defines the contract for the user repository.
type RepositoryInterface interface {
	CreateUser(ctx context.Context, email, name, role, passwordHash string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, userID string) (*models.User, error)
	CreateProfile(ctx context.Context, userID, kind string) (*models.ProviderProfile, error)
	FindProfileByUserID(ctx context.Context, userID string) (*models.ProviderProfile, error)
	FindProviderProfile(ctx context.Context, userID, kind string) (*models.ProviderProfile, error)
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.ProviderProfile, error)
	SetProfileVerified(ctx context.Context, profileID string, verified bool) error
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new user repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// CreateUser inserts a new user. A duplicate email maps to ErrEmailTaken.
func (r *Repository) CreateUser(ctx context.Context, email, name, role, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (email, name, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, name, role, password_hash, created_at, updated_at`

	user, err := scanUser(r.db.QueryRow(ctx, query, email, name, role, passwordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrEmailTaken
		}
		return nil, fmt.Errorf("repository.CreateUser: %w", err)
	}
	return user, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, name, role, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *Repository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT id, email, name, role, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateProfile inserts an empty provider profile for a new provider account.
func (r *Repository) CreateProfile(ctx context.Context, userID, kind string) (*models.ProviderProfile, error) {
	query := `
		INSERT INTO provider_profiles (user_id, kind)
		VALUES ($1, $2)
		RETURNING id, user_id, kind, business_name, phone, address, city, verified, rating, created_at, updated_at`
	profile, err := scanProfile(r.db.QueryRow(ctx, query, userID, kind))
	if err != nil {
		return nil, fmt.Errorf("repository.CreateProfile: %w", err)
	}
	return profile, nil
}

func (r *Repository) FindProfileByUserID(ctx context.Context, userID string) (*models.ProviderProfile, error) {
	query := `
		SELECT id, user_id, kind, business_name, phone, address, city, verified, rating, created_at, updated_at
		FROM provider_profiles
		WHERE user_id = $1`
	profile, err := scanProfile(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindProfileByUserID: %w", err)
	}
	return profile, nil
}

// FindProviderProfile loads the profile for a user constrained to a kind.
// Used by the bookings module to resolve the acting provider.
func (r *Repository) FindProviderProfile(ctx context.Context, userID, kind string) (*models.ProviderProfile, error) {
	query := `
		SELECT id, user_id, kind, business_name, phone, address, city, verified, rating, created_at, updated_at
		FROM provider_profiles
		WHERE user_id = $1 AND kind = $2`
	profile, err := scanProfile(r.db.QueryRow(ctx, query, userID, kind))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindProviderProfile: %w", err)
	}
	return profile, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.ProviderProfile, error) {
	query := `
		UPDATE provider_profiles
		SET business_name = COALESCE($2, business_name),
		    phone = COALESCE($3, phone),
		    address = COALESCE($4, address),
		    city = COALESCE($5, city),
		    updated_at = NOW()
		WHERE user_id = $1
		RETURNING id, user_id, kind, business_name, phone, address, city, verified, rating, created_at, updated_at`
	profile, err := scanProfile(r.db.QueryRow(ctx, query, userID, req.BusinessName, req.Phone, req.Address, req.City))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.UpdateProfile: %w", err)
	}
	return profile, nil
}

// SetProfileVerified toggles the admin verification flag. The id is compared
// as text because it arrives as an unvalidated path parameter.
func (r *Repository) SetProfileVerified(ctx context.Context, profileID string, verified bool) error {
	query := `
		UPDATE provider_profiles
		SET verified = $2, updated_at = NOW()
		WHERE id::text = $1`
	cmdTag, err := r.db.Exec(ctx, query, profileID, verified)
	if err != nil {
		return fmt.Errorf("repository.SetProfileVerified: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (*models.ProviderProfile, error) {
	var p models.ProviderProfile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Kind,
		&p.BusinessName,
		&p.Phone,
		&p.Address,
		&p.City,
		&p.Verified,
		&p.Rating,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
