package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// MemberProfile carries the optional profile fields supplied with a
// submission. Nil fields leave the stored value untouched.
type MemberProfile struct {
	FirstName *string
	LastName  *string
	RegNumber *string
	Email     *string
}

// MemberRepository defines persistence access for members.
type MemberRepository interface {
	// UpsertByPhone creates the member on first verification and
	// merges any newly supplied profile fields on later calls.
	UpsertByPhone(ctx context.Context, phone string, profile MemberProfile) (*domain.Member, error)
	GetByID(ctx context.Context, id string) (*domain.Member, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Member, error)
}

type memberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository returns a Postgres-backed implementation.
func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &memberRepository{pool: pool}
}

const memberColumns = `id, phone, first_name, last_name, reg_number, email, created_at, updated_at`

func (r *memberRepository) UpsertByPhone(ctx context.Context, phone string, profile MemberProfile) (*domain.Member, error) {
	// COALESCE keeps previously stored profile values when the caller
	// supplies nothing new.
	const query = `
        INSERT INTO members (phone, first_name, last_name, reg_number, email)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (phone) DO UPDATE SET
            first_name = COALESCE(EXCLUDED.first_name, members.first_name),
            last_name  = COALESCE(EXCLUDED.last_name, members.last_name),
            reg_number = COALESCE(EXCLUDED.reg_number, members.reg_number),
            email      = COALESCE(EXCLUDED.email, members.email),
            updated_at = NOW()
        RETURNING ` + memberColumns

	return r.scanMember(r.pool.QueryRow(ctx, query,
		phone,
		profile.FirstName,
		profile.LastName,
		profile.RegNumber,
		profile.Email,
	))
}

func (r *memberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	const query = `SELECT ` + memberColumns + ` FROM members WHERE id=$1`
	return r.scanMember(r.pool.QueryRow(ctx, query, id))
}

func (r *memberRepository) GetByPhone(ctx context.Context, phone string) (*domain.Member, error) {
	const query = `SELECT ` + memberColumns + ` FROM members WHERE phone=$1`
	return r.scanMember(r.pool.QueryRow(ctx, query, phone))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *memberRepository) scanMember(row rowScanner) (*domain.Member, error) {
	var member domain.Member
	if err := row.Scan(
		&member.ID,
		&member.Phone,
		&member.FirstName,
		&member.LastName,
		&member.RegNumber,
		&member.Email,
		&member.CreatedAt,
		&member.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &member, nil
}
