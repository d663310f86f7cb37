package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
)

// fakeGrievanceRepo is an in-memory repository.GrievanceRepository.
// Insert enforces ticket-number uniqueness like the real table's
// constraint; insertErrs is consumed one entry per Insert call before
// that check, a nil entry meaning no forced error.
type fakeGrievanceRepo struct {
	mu         sync.Mutex
	byTicket   map[string]*domain.Grievance
	latest     *domain.Grievance
	insertErrs []error
	inserted   int
	dupCount   map[string]int64
}

func newFakeGrievanceRepo() *fakeGrievanceRepo {
	return &fakeGrievanceRepo{byTicket: map[string]*domain.Grievance{}}
}

func (f *fakeGrievanceRepo) Insert(ctx context.Context, grievance *domain.Grievance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.insertErrs) > 0 {
		err := f.insertErrs[0]
		f.insertErrs = f.insertErrs[1:]
		if err != nil {
			return err
		}
	}
	if _, exists := f.byTicket[grievance.TicketNumber]; exists {
		return repository.ErrDuplicateTicket
	}
	f.inserted++
	grievance.ID = fmt.Sprintf("id-%d", f.inserted)
	grievance.SubmittedAt = time.Now()
	grievance.UpdatedAt = grievance.SubmittedAt
	stored := *grievance
	f.byTicket[grievance.TicketNumber] = &stored
	return nil
}

func (f *fakeGrievanceRepo) GetByTicketNumber(ctx context.Context, ticketNumber string) (*domain.Grievance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	grievance, ok := f.byTicket[ticketNumber]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *grievance
	return &copied, nil
}

func (f *fakeGrievanceRepo) UpdateStatusByTicketNumber(ctx context.Context, ticketNumber string, status domain.GrievanceStatus) (*domain.Grievance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	grievance, ok := f.byTicket[ticketNumber]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	grievance.Status = status
	grievance.UpdatedAt = time.Now()
	copied := *grievance
	return &copied, nil
}

func (f *fakeGrievanceRepo) LatestForMember(ctx context.Context, memberID string) (*domain.Grievance, error) {
	if f.latest == nil {
		return nil, nil
	}
	copied := *f.latest
	return &copied, nil
}

func (f *fakeGrievanceRepo) ListForMember(ctx context.Context, memberID string, limit, offset int) ([]domain.Grievance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Grievance
	for _, grievance := range f.byTicket {
		if grievance.MemberID == memberID {
			result = append(result, *grievance)
		}
	}
	return result, nil
}

func (f *fakeGrievanceRepo) ListWithFilter(ctx context.Context, filter repository.GrievanceFilter) ([]domain.Grievance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Grievance
	for _, grievance := range f.byTicket {
		result = append(result, *grievance)
	}
	return result, nil
}

func (f *fakeGrievanceRepo) CountByStatus(ctx context.Context) (map[domain.GrievanceStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[domain.GrievanceStatus]int64)
	for _, grievance := range f.byTicket {
		counts[grievance.Status]++
	}
	return counts, nil
}

func (f *fakeGrievanceRepo) CountByTicketNumber(ctx context.Context, ticketNumber string) (int64, error) {
	if f.dupCount != nil {
		if count, ok := f.dupCount[ticketNumber]; ok {
			return count, nil
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byTicket[ticketNumber]; ok {
		return 1, nil
	}
	return 0, nil
}

// fakeMemberRepo is an in-memory repository.MemberRepository.
type fakeMemberRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Member
	byPhone map[string]*domain.Member
}

func newFakeMemberRepo(members ...*domain.Member) *fakeMemberRepo {
	repo := &fakeMemberRepo{byID: map[string]*domain.Member{}, byPhone: map[string]*domain.Member{}}
	for _, member := range members {
		repo.byID[member.ID] = member
		repo.byPhone[member.Phone] = member
	}
	return repo
}

func (f *fakeMemberRepo) UpsertByPhone(ctx context.Context, phone string, profile repository.MemberProfile) (*domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.byPhone[phone]
	if !ok {
		member = &domain.Member{ID: "member-" + phone, Phone: phone}
		f.byID[member.ID] = member
		f.byPhone[phone] = member
	}
	if profile.FirstName != nil {
		member.FirstName = profile.FirstName
	}
	if profile.LastName != nil {
		member.LastName = profile.LastName
	}
	if profile.RegNumber != nil {
		member.RegNumber = profile.RegNumber
	}
	if profile.Email != nil {
		member.Email = profile.Email
	}
	copied := *member
	return &copied, nil
}

func (f *fakeMemberRepo) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *member
	return &copied, nil
}

func (f *fakeMemberRepo) GetByPhone(ctx context.Context, phone string) (*domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.byPhone[phone]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *member
	return &copied, nil
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *recordingDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event{}, d.events...)
}
