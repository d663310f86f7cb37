package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// ErrDuplicateTicket is returned by Insert when the ticket_number
// unique constraint rejects the row. The service layer regenerates
// the number and retries; the constraint is the actual uniqueness
// backstop, the generator only makes collisions rare.
var ErrDuplicateTicket = errors.New("duplicate ticket number")

// GrievanceFilter captures admin search parameters.
type GrievanceFilter struct {
	Statuses   []domain.GrievanceStatus
	SearchTerm *string
	Limit      int
	Offset     int
}

// GrievanceRepository encapsulates grievance persistence. It is the
// single source of truth for ticket state; callers never cache ticket
// state across requests.
type GrievanceRepository interface {
	Insert(ctx context.Context, grievance *domain.Grievance) error
	GetByTicketNumber(ctx context.Context, ticketNumber string) (*domain.Grievance, error)
	// UpdateStatusByTicketNumber performs a single conditional write
	// keyed by ticket number and returns the updated row. Concurrent
	// callers race last-write-wins.
	UpdateStatusByTicketNumber(ctx context.Context, ticketNumber string, status domain.GrievanceStatus) (*domain.Grievance, error)
	// LatestForMember returns (nil, nil) when the member has no grievances.
	LatestForMember(ctx context.Context, memberID string) (*domain.Grievance, error)
	ListForMember(ctx context.Context, memberID string, limit, offset int) ([]domain.Grievance, error)
	ListWithFilter(ctx context.Context, filter GrievanceFilter) ([]domain.Grievance, error)
	CountByStatus(ctx context.Context) (map[domain.GrievanceStatus]int64, error)
	CountByTicketNumber(ctx context.Context, ticketNumber string) (int64, error)
}

type grievanceRepository struct {
	pool *pgxpool.Pool
}

// NewGrievanceRepository instantiates repository.
func NewGrievanceRepository(pool *pgxpool.Pool) GrievanceRepository {
	return &grievanceRepository{pool: pool}
}

const grievanceColumns = `id, ticket_number, member_id, category, sub_category, description,
               location_detail, image_url, status, submitted_at, updated_at`

func (r *grievanceRepository) Insert(ctx context.Context, grievance *domain.Grievance) error {
	const query = `
        INSERT INTO grievances (ticket_number, member_id, category, sub_category, description, location_detail, image_url, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, submitted_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		grievance.TicketNumber,
		grievance.MemberID,
		grievance.Category,
		grievance.SubCategory,
		grievance.Description,
		grievance.LocationDetail,
		grievance.ImageURL,
		grievance.Status,
	).Scan(&grievance.ID, &grievance.SubmittedAt, &grievance.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateTicket
	}
	return err
}

func (r *grievanceRepository) GetByTicketNumber(ctx context.Context, ticketNumber string) (*domain.Grievance, error) {
	query := fmt.Sprintf(`SELECT %s FROM grievances WHERE ticket_number=$1`, grievanceColumns)
	return r.fetchSingle(ctx, query, ticketNumber)
}

func (r *grievanceRepository) UpdateStatusByTicketNumber(ctx context.Context, ticketNumber string, status domain.GrievanceStatus) (*domain.Grievance, error) {
	query := fmt.Sprintf(`
        UPDATE grievances SET status=$1, updated_at=NOW()
        WHERE ticket_number=$2
        RETURNING %s`, grievanceColumns)
	return r.fetchSingle(ctx, query, status, ticketNumber)
}

func (r *grievanceRepository) LatestForMember(ctx context.Context, memberID string) (*domain.Grievance, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM grievances
        WHERE member_id=$1
        ORDER BY submitted_at DESC
        LIMIT 1`, grievanceColumns)
	grievance, err := r.fetchSingle(ctx, query, memberID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return grievance, err
}

func (r *grievanceRepository) ListForMember(ctx context.Context, memberID string, limit, offset int) ([]domain.Grievance, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`
        SELECT %s FROM grievances
        WHERE member_id=$1
        ORDER BY submitted_at DESC
        LIMIT %d OFFSET %d`, grievanceColumns, limit, offset)
	rows, err := r.pool.Query(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrievances(rows)
}

func (r *grievanceRepository) ListWithFilter(ctx context.Context, filter GrievanceFilter) ([]domain.Grievance, error) {
	base := fmt.Sprintf(`SELECT %s FROM grievances`, grievanceColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(ticket_number) LIKE %s OR LOWER(category) LIKE %s OR LOWER(description) LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY submitted_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrievances(rows)
}

func (r *grievanceRepository) CountByStatus(ctx context.Context) (map[domain.GrievanceStatus]int64, error) {
	const query = `SELECT status, COUNT(*) FROM grievances GROUP BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.GrievanceStatus]int64)
	for rows.Next() {
		var status domain.GrievanceStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *grievanceRepository) CountByTicketNumber(ctx context.Context, ticketNumber string) (int64, error) {
	const query = `SELECT COUNT(*) FROM grievances WHERE ticket_number=$1`
	var count int64
	if err := r.pool.QueryRow(ctx, query, ticketNumber).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *grievanceRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Grievance, error) {
	var grievance domain.Grievance
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&grievance.ID,
		&grievance.TicketNumber,
		&grievance.MemberID,
		&grievance.Category,
		&grievance.SubCategory,
		&grievance.Description,
		&grievance.LocationDetail,
		&grievance.ImageURL,
		&grievance.Status,
		&grievance.SubmittedAt,
		&grievance.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &grievance, nil
}

func scanGrievances(rows pgx.Rows) ([]domain.Grievance, error) {
	var result []domain.Grievance
	for rows.Next() {
		var grievance domain.Grievance
		if err := rows.Scan(
			&grievance.ID,
			&grievance.TicketNumber,
			&grievance.MemberID,
			&grievance.Category,
			&grievance.SubCategory,
			&grievance.Description,
			&grievance.LocationDetail,
			&grievance.ImageURL,
			&grievance.Status,
			&grievance.SubmittedAt,
			&grievance.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, grievance)
	}
	return result, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
