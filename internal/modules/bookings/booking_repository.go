package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"parts-and-service/internal/models"
	"parts-and-service/internal/status"
)

// RepositoryInterface defines the contract for the booking repository.
type RepositoryInterface interface {
	Create(ctx context.Context, b *models.Booking) (*models.Booking, error)
	FindByID(ctx context.Context, bookingID string) (*models.Booking, error)
	ListByUser(ctx context.Context, kind, userID string, page, limit int) ([]*models.Booking, int, error)
	ListForProvider(ctx context.Context, kind, providerID string) ([]*models.Booking, error)
	ListAll(ctx context.Context, kind string, page, limit int) ([]*models.Booking, int, error)
	Claim(ctx context.Context, bookingID, providerID string) (*models.Booking, error)
	UpdateStatus(ctx context.Context, bookingID, from, to string) (*models.Booking, error)
	UpdateLocation(ctx context.Context, bookingID, providerID, location string) error
	InsertFeedback(ctx context.Context, bookingID, providerID string, req models.FeedbackRequest) error
	OwnerEmail(ctx context.Context, bookingID string) (string, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new booking repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const bookingColumns = `id, kind, user_id, provider_id, status,
	vehicle_make, vehicle_model, vehicle_year, plate_number, service_type, scheduled_at,
	package_type, weight_kg, package_description, pickup_address, delivery_address,
	delivery_speed, tracking_number, current_location, estimated_price,
	created_at, updated_at`

// Create inserts a new booking of either kind.
func (r *Repository) Create(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	query := `
		INSERT INTO bookings (kind, user_id, status,
			vehicle_make, vehicle_model, vehicle_year, plate_number, service_type, scheduled_at,
			package_type, weight_kg, package_description, pickup_address, delivery_address,
			delivery_speed, tracking_number, current_location, estimated_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		b.Kind, b.UserID, b.Status,
		b.VehicleMake, b.VehicleModel, b.VehicleYear, b.PlateNumber, b.ServiceType, b.ScheduledAt,
		b.PackageType, b.WeightKg, b.PackageDescription, b.PickupAddress, b.DeliveryAddress,
		b.DeliverySpeed, b.TrackingNumber, b.CurrentLocation, b.EstimatedPrice,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateBooking: %w", err)
	}
	return b, nil
}

// FindByID retrieves a single booking with its feedback, if any. The id is
// compared as text because it arrives as an unvalidated path parameter.
func (r *Repository) FindByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id::text = $1`
	booking, err := scanBooking(r.db.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindBookingByID: %w", err)
	}

	feedback, err := r.getFeedbackByBookingID(ctx, booking.ID)
	if err == nil {
		booking.Feedback = feedback
	}
	return booking, nil
}

func (r *Repository) getFeedbackByBookingID(ctx context.Context, bookingID string) (*models.Feedback, error) {
	query := `SELECT id, booking_id, rating, comment, created_at FROM booking_feedback WHERE booking_id = $1`
	var fb models.Feedback
	err := r.db.QueryRow(ctx, query, bookingID).Scan(&fb.ID, &fb.BookingID, &fb.Rating, &fb.Comment, &fb.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no feedback for this booking
		}
		return nil, err
	}
	return &fb, nil
}

// ListByUser retrieves a user's bookings of one kind with pagination.
func (r *Repository) ListByUser(ctx context.Context, kind, userID string, page, limit int) ([]*models.Booking, int, error) {
	offset := (page - 1) * limit
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE kind = $1 AND user_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.Query(ctx, query, kind, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUser.Query: %w", err)
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUser: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM bookings WHERE kind = $1 AND user_id = $2", kind, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUser.Count: %w", err)
	}
	return bookings, total, nil
}

// ListForProvider returns the provider's work queue: bookings assigned to
// them plus the unclaimed PENDING pool for their kind.
func (r *Repository) ListForProvider(ctx context.Context, kind, providerID string) ([]*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE kind = $1 AND (provider_id = $2 OR (provider_id IS NULL AND status = 'PENDING'))
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, kind, providerID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListForProvider.Query: %w", err)
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, fmt.Errorf("repository.ListForProvider: %w", err)
	}
	return bookings, nil
}

// ListAll retrieves bookings for the admin view, optionally filtered by kind.
func (r *Repository) ListAll(ctx context.Context, kind string, page, limit int) ([]*models.Booking, int, error) {
	offset := (page - 1) * limit
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE ($1 = '' OR kind = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, kind, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListAllBookings.Query: %w", err)
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListAllBookings: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM bookings WHERE ($1 = '' OR kind = $1)", kind).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListAllBookings.Count: %w", err)
	}
	return bookings, total, nil
}

// Claim assigns an unclaimed PENDING booking to a provider and confirms it.
// The WHERE clause makes the claim race-safe: the first provider wins, the
// second gets ErrBookingAlreadyClaimed.
func (r *Repository) Claim(ctx context.Context, bookingID, providerID string) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET provider_id = $2, status = $3, updated_at = NOW()
		WHERE id::text = $1 AND provider_id IS NULL AND status = $4
		RETURNING ` + bookingColumns

	booking, err := scanBooking(r.db.QueryRow(ctx, query, bookingID, providerID, status.BookingConfirmed, status.BookingPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Gone, already claimed, or no longer claimable; refetch to tell
			// the cases apart for the caller.
			existing, ferr := r.FindByID(ctx, bookingID)
			if ferr != nil {
				return nil, models.ErrNotFound
			}
			if existing.ProviderID != nil {
				return nil, models.ErrBookingAlreadyClaimed
			}
			return nil, models.ErrInvalidTransition // cancelled before anyone claimed it
		}
		return nil, fmt.Errorf("repository.ClaimBooking: %w", err)
	}
	return booking, nil
}

// UpdateStatus is a compare-and-swap write, same contract as the order
// repository: no-op unless the row is still in the expected state.
func (r *Repository) UpdateStatus(ctx context.Context, bookingID, from, to string) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + bookingColumns

	booking, err := scanBooking(r.db.QueryRow(ctx, query, bookingID, from, to))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("repository.UpdateBookingStatus: %w", err)
	}
	return booking, nil
}

// UpdateLocation records the package's current location, scoped to the
// assigned provider.
func (r *Repository) UpdateLocation(ctx context.Context, bookingID, providerID, location string) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE bookings
		SET current_location = $3, updated_at = NOW()
		WHERE id = $1 AND provider_id = $2`,
		bookingID, providerID, location)
	if err != nil {
		return fmt.Errorf("repository.UpdateLocation: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// InsertFeedback stores the buyer's rating and refreshes the provider's
// denormalized rating in the same transaction.
func (r *Repository) InsertFeedback(ctx context.Context, bookingID, providerID string, req models.FeedbackRequest) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository.InsertFeedback.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO booking_feedback (booking_id, rating, comment)
		VALUES ($1, $2, $3)`,
		bookingID, req.Rating, req.Comment)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrFeedbackAlreadySubmitted
		}
		return fmt.Errorf("repository.InsertFeedback.insert: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE provider_profiles
		SET rating = (
			SELECT COALESCE(AVG(f.rating), 0)
			FROM booking_feedback f
			JOIN bookings b ON b.id = f.booking_id
			WHERE b.provider_id = $1
		), updated_at = NOW()
		WHERE id = $1`,
		providerID)
	if err != nil {
		return fmt.Errorf("repository.InsertFeedback.rating: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository.InsertFeedback.Commit: %w", err)
	}
	return nil
}

// OwnerEmail returns the email address of the user who made the booking.
func (r *Repository) OwnerEmail(ctx context.Context, bookingID string) (string, error) {
	var email string
	err := r.db.QueryRow(ctx, `
		SELECT u.email
		FROM bookings b JOIN users u ON u.id = b.user_id
		WHERE b.id = $1`,
		bookingID).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("repository.BookingOwnerEmail: %w", err)
	}
	return email, nil
}

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID,
		&b.Kind,
		&b.UserID,
		&b.ProviderID,
		&b.Status,
		&b.VehicleMake,
		&b.VehicleModel,
		&b.VehicleYear,
		&b.PlateNumber,
		&b.ServiceType,
		&b.ScheduledAt,
		&b.PackageType,
		&b.WeightKg,
		&b.PackageDescription,
		&b.PickupAddress,
		&b.DeliveryAddress,
		&b.DeliverySpeed,
		&b.TrackingNumber,
		&b.CurrentLocation,
		&b.EstimatedPrice,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]*models.Booking, error) {
	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
