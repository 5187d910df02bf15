package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgxpool.Pool used by the repository; tests inject
// a pgxmock implementation.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores customers and bookings in Postgres.
type PostgresRepository struct {
	db Querier
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a repository backed by a pgx pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("store: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithQuerier allows injecting mocks for tests.
func NewPostgresRepositoryWithQuerier(q Querier) *PostgresRepository {
	return &PostgresRepository{db: q}
}

const customerColumns = "id, name, email, phone, created_at"

func (r *PostgresRepository) GetCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`
	row := r.db.QueryRow(ctx, query, strings.ToLower(email))

	var c Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("store: select customer: %w", err)
	}
	return &c, nil
}

func (r *PostgresRepository) CreateCustomer(ctx context.Context, name, email, phone string) (*Customer, error) {
	email = strings.ToLower(email)
	id := uuid.New().String()
	query := `
		INSERT INTO customers (id, name, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query, id, name, email, phone).Scan(&createdAt); err != nil {
		// Unique violation means a concurrent insert won; fetch that row.
		if isUniqueViolation(err) {
			return r.GetCustomerByEmail(ctx, email)
		}
		return nil, fmt.Errorf("store: insert customer: %w", err)
	}
	return &Customer{ID: id, Name: name, Email: email, Phone: phone, CreatedAt: createdAt}, nil
}

func (r *PostgresRepository) GetOrCreateCustomer(ctx context.Context, name, email, phone string) (*Customer, bool, error) {
	email = strings.ToLower(email)

	existing, err := r.GetCustomerByEmail(ctx, email)
	if err == nil {
		if existing.Name != name || existing.Phone != phone {
			update := `UPDATE customers SET name = $1, phone = $2 WHERE id = $3`
			if _, err := r.db.Exec(ctx, update, name, phone, existing.ID); err != nil {
				return nil, false, fmt.Errorf("store: refresh customer: %w", err)
			}
			existing.Name = name
			existing.Phone = phone
		}
		return existing, false, nil
	}
	if !errors.Is(err, ErrCustomerNotFound) {
		return nil, false, err
	}

	created, err := r.CreateCustomer(ctx, name, email, phone)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

const bookingColumns = `b.id, b.customer_id, b.booking_type, b.booking_date, b.booking_time,
		b.status, b.notes, b.created_at, c.name, c.email`

func (r *PostgresRepository) CreateBooking(ctx context.Context, params CreateBookingParams) (*Booking, error) {
	status := params.Status
	if status == "" {
		status = StatusConfirmed
	}
	id := uuid.New().String()
	query := `
		INSERT INTO bookings (id, customer_id, booking_type, booking_date, booking_time, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		params.CustomerID,
		params.BookingType,
		params.Date,
		params.TimeSlot,
		string(status),
		params.Notes,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("store: insert booking: %w", err)
	}

	return &Booking{
		ID:          id,
		CustomerID:  params.CustomerID,
		BookingType: params.BookingType,
		Date:        params.Date,
		TimeSlot:    params.TimeSlot,
		Status:      status,
		Notes:       params.Notes,
		CreatedAt:   createdAt,
	}, nil
}

func (r *PostgresRepository) GetBookingByID(ctx context.Context, id string) (*Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		WHERE b.id = $1
	`
	row := r.db.QueryRow(ctx, query, id)
	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("store: select booking: %w", err)
	}
	return booking, nil
}

func (r *PostgresRepository) ListBookingsByEmail(ctx context.Context, email string, limit int) ([]*Booking, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		WHERE c.email = $1
		ORDER BY b.booking_date DESC, b.booking_time DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, strings.ToLower(email), limit)
	if err != nil {
		return nil, fmt.Errorf("store: list bookings by email: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *PostgresRepository) ListBookings(ctx context.Context, limit, offset int) ([]*Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		ORDER BY b.created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("store: list bookings: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *PostgresRepository) SearchBookings(ctx context.Context, filter SearchFilter) ([]*Booking, error) {
	var conditions []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.DateFrom != "" {
		conditions = append(conditions, "b.booking_date >= "+arg(filter.DateFrom))
	}
	if filter.DateTo != "" {
		conditions = append(conditions, "b.booking_date <= "+arg(filter.DateTo))
	}
	if filter.Status != "" {
		conditions = append(conditions, "b.status = "+arg(string(filter.Status)))
	}
	if filter.Term != "" {
		pattern := "%" + filter.Term + "%"
		placeholder := arg(pattern)
		conditions = append(conditions,
			"(c.name ILIKE "+placeholder+" OR c.email ILIKE "+placeholder+" OR b.booking_type ILIKE "+placeholder+")")
	}

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY b.booking_date DESC, b.booking_time DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query += " LIMIT " + arg(limit)
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: search bookings: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *PostgresRepository) UpdateBookingStatus(ctx context.Context, id string, status BookingStatus) error {
	if !ValidStatus(status) {
		return fmt.Errorf("store: invalid booking status %q", status)
	}
	tag, err := r.db.Exec(ctx, `UPDATE bookings SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("store: update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *PostgresRepository) BookingStats(ctx context.Context) (*Stats, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("store: booking stats: %w", err)
	}
	defer rows.Close()

	stats := &Stats{ByStatus: make(map[BookingStatus]int)}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("store: scan stats: %w", err)
		}
		stats.ByStatus[BookingStatus(status)] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: stats rows: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*Booking, error) {
	var b Booking
	var status string
	if err := row.Scan(
		&b.ID,
		&b.CustomerID,
		&b.BookingType,
		&b.Date,
		&b.TimeSlot,
		&status,
		&b.Notes,
		&b.CreatedAt,
		&b.CustomerName,
		&b.CustomerEmail,
	); err != nil {
		return nil, err
	}
	b.Status = BookingStatus(status)
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]*Booking, error) {
	var bookings []*Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: booking rows: %w", err)
	}
	return bookings, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
