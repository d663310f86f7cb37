package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/ticketid"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// ticketAllocationAttempts bounds how often a submission regenerates
// its ticket number after a unique-constraint collision.
const ticketAllocationAttempts = 3

// GrievanceService coordinates submission and the status lifecycle.
type GrievanceService struct {
	members    repository.MemberRepository
	grievances repository.GrievanceRepository
	gate       *CooldownGate
	generator  *ticketid.Generator
	dispatcher events.Dispatcher
	cfg        config.GrievanceConfig
	logger     *zap.Logger
}

// GrievanceDependencies bundles collaborators for the service.
type GrievanceDependencies struct {
	MemberRepo    repository.MemberRepository
	GrievanceRepo repository.GrievanceRepository
	Gate          *CooldownGate
	Generator     *ticketid.Generator
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// SubmitInput describes a grievance submission.
type SubmitInput struct {
	MemberID       string
	Category       string
	SubCategory    string
	Description    string
	LocationDetail string
	ImageURL       string
	Profile        repository.MemberProfile
}

// NewGrievanceService constructs the service.
func NewGrievanceService(cfg config.GrievanceConfig, deps GrievanceDependencies) *GrievanceService {
	return &GrievanceService{
		members:    deps.MemberRepo,
		grievances: deps.GrievanceRepo,
		gate:       deps.Gate,
		generator:  deps.Generator,
		dispatcher: deps.Dispatcher,
		cfg:        cfg,
		logger:     deps.Logger,
	}
}

// Submit creates a grievance for a member: cooldown check, profile
// upsert, ticket allocation with retry, insert, created event.
func (s *GrievanceService) Submit(ctx context.Context, input SubmitInput) (*domain.Grievance, error) {
	if err := s.validateSubmit(&input); err != nil {
		return nil, err
	}

	decision, err := s.gate.CheckAndReserve(ctx, input.MemberID, time.Now())
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, apperrors.NewCooldownActive(decision.RetryAfter)
	}

	member, err := s.members.GetByID(ctx, input.MemberID)
	if err != nil {
		s.gate.Release(ctx, input.MemberID)
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("member", map[string]any{"member_id": input.MemberID})
		}
		return nil, err
	}
	member, err = s.members.UpsertByPhone(ctx, member.Phone, input.Profile)
	if err != nil {
		s.gate.Release(ctx, input.MemberID)
		return nil, err
	}

	grievance := &domain.Grievance{
		MemberID:    member.ID,
		Category:    strings.TrimSpace(input.Category),
		SubCategory: strings.TrimSpace(input.SubCategory),
		Description: strings.TrimSpace(input.Description),
		Status:      s.cfg.InitialStatus,
	}
	if loc := strings.TrimSpace(input.LocationDetail); loc != "" {
		grievance.LocationDetail = &loc
	}
	if img := strings.TrimSpace(input.ImageURL); img != "" {
		grievance.ImageURL = &img
	}

	// The generator only makes collisions rare; the unique constraint
	// on ticket_number is the correctness backstop.
	inserted := false
	for attempt := 0; attempt < ticketAllocationAttempts; attempt++ {
		grievance.TicketNumber = s.generator.Generate()
		err = s.grievances.Insert(ctx, grievance)
		if err == nil {
			inserted = true
			break
		}
		if err != repository.ErrDuplicateTicket {
			s.gate.Release(ctx, input.MemberID)
			return nil, err
		}
		s.logger.Warn("ticket number collision, regenerating",
			zap.String("ticket_number", grievance.TicketNumber),
			zap.Int("attempt", attempt+1))
	}
	if !inserted {
		s.gate.Release(ctx, input.MemberID)
		return nil, apperrors.NewTicketAllocationExhausted(ticketAllocationAttempts)
	}

	s.publish(ctx, events.Event{
		Type:         events.EventGrievanceCreated,
		TicketNumber: grievance.TicketNumber,
		Actor:        events.MemberActor(member.ID),
		Payload: events.GrievanceCreatedPayload{
			MemberID:    member.ID,
			MemberName:  member.DisplayName(),
			MemberPhone: member.Phone,
			RegNumber:   stringOrEmpty(member.RegNumber),
			Category:    grievance.Category,
			SubCategory: grievance.SubCategory,
			Location:    stringOrEmpty(grievance.LocationDetail),
			Description: grievance.Description,
			ImageURL:    stringOrEmpty(grievance.ImageURL),
			Status:      grievance.Status,
		},
	})
	return grievance, nil
}

// Transition applies a status change, whatever channel requested it.
// It re-fetches current state immediately before the write and updates
// by ticket number in a single conditional statement; concurrent
// callers race last-write-wins. Requesting the current status is an
// idempotent no-op that succeeds without emitting an event.
func (s *GrievanceService) Transition(ctx context.Context, ticketNumber string, target domain.GrievanceStatus, actor events.Actor) (*domain.Grievance, error) {
	ticketNumber = ticketid.Normalize(ticketNumber)
	if !domain.IsValidStatus(target) {
		return nil, apperrors.NewValidationError("unknown target status", map[string]any{"status": target})
	}

	// Defensive: the unique constraint makes >1 impossible, but a
	// violated invariant must refuse to mutate rather than pick a row.
	count, err := s.grievances.CountByTicketNumber(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}
	if count > 1 {
		return nil, apperrors.NewAmbiguousTicket(ticketNumber)
	}

	current, err := s.GetByTicketNumber(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}

	if current.Status == target {
		return current, nil
	}
	if s.cfg.LockTerminal && current.Status.IsTerminal() {
		return nil, apperrors.NewInvalidTransition("grievance is closed")
	}

	updated, err := s.grievances.UpdateStatusByTicketNumber(ctx, ticketNumber, target)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("grievance", map[string]any{"ticket_number": ticketNumber})
		}
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:         events.EventGrievanceStatusChanged,
		TicketNumber: updated.TicketNumber,
		Actor:        actor,
		Payload: events.GrievanceStatusChangedPayload{
			OldStatus: current.Status,
			NewStatus: updated.Status,
		},
	})
	return updated, nil
}

// GetByTicketNumber fetches one grievance, mapping missing rows to the
// domain NotFound error.
func (s *GrievanceService) GetByTicketNumber(ctx context.Context, ticketNumber string) (*domain.Grievance, error) {
	ticketNumber = ticketid.Normalize(ticketNumber)
	grievance, err := s.grievances.GetByTicketNumber(ctx, ticketNumber)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("grievance", map[string]any{"ticket_number": ticketNumber})
		}
		return nil, err
	}
	return grievance, nil
}

// ListForMember returns the member's grievances, newest first.
func (s *GrievanceService) ListForMember(ctx context.Context, memberID string, limit, offset int) ([]domain.Grievance, error) {
	return s.grievances.ListForMember(ctx, memberID, limit, offset)
}

// ListWithFilter returns filtered grievances for the admin dashboard.
func (s *GrievanceService) ListWithFilter(ctx context.Context, filter repository.GrievanceFilter) ([]domain.Grievance, error) {
	return s.grievances.ListWithFilter(ctx, filter)
}

// StatusCounts returns per-status totals for the admin dashboard and
// the daily digest.
func (s *GrievanceService) StatusCounts(ctx context.Context) (map[domain.GrievanceStatus]int64, error) {
	return s.grievances.CountByStatus(ctx)
}

func (s *GrievanceService) validateSubmit(input *SubmitInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Category) == "" {
		details["category"] = "required"
	}
	if strings.TrimSpace(input.SubCategory) == "" {
		details["sub_category"] = "required"
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		details["description"] = "required"
	} else if utf8.RuneCountInString(description) > s.cfg.MaxDescriptionRunes {
		details["description"] = "too long"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid grievance submission", details)
	}
	return nil
}

func (s *GrievanceService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func stringOrEmpty(val *string) string {
	if val == nil {
		return ""
	}
	return *val
}
