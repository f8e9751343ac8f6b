package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/brickdesk/backend/internal/domain/order"
	"github.com/brickdesk/backend/internal/domain/platform"
	"github.com/brickdesk/backend/internal/domain/sync"
)

// MockRunRepository is a mock implementation of sync.RunRepository
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) TryStart(ctx context.Context, run *sync.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) Update(ctx context.Context, run *sync.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*sync.Run, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.Run), args.Error(1)
}

func (m *MockRunRepository) FindRunning(ctx context.Context, userID uuid.UUID, jobType sync.JobType) (*sync.Run, error) {
	args := m.Called(ctx, userID, jobType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.Run), args.Error(1)
}

func (m *MockRunRepository) FindLatest(ctx context.Context, userID uuid.UUID, jobType sync.JobType) (*sync.Run, error) {
	args := m.Called(ctx, userID, jobType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.Run), args.Error(1)
}

func (m *MockRunRepository) List(ctx context.Context, userID uuid.UUID, jobType sync.JobType, filter sync.RunFilter) ([]sync.Run, int64, error) {
	args := m.Called(ctx, userID, jobType, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]sync.Run), args.Get(1).(int64), args.Error(2)
}

func (m *MockRunRepository) FailAbandoned(ctx context.Context, startedBefore time.Time, message string) (int64, error) {
	args := m.Called(ctx, startedBefore, message)
	return args.Get(0).(int64), args.Error(1)
}

// MockCursorRepository is a mock implementation of sync.CursorRepository
type MockCursorRepository struct {
	mock.Mock
}

func (m *MockCursorRepository) Find(ctx context.Context, userID uuid.UUID, jobType sync.JobType) (*sync.Cursor, error) {
	args := m.Called(ctx, userID, jobType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.Cursor), args.Error(1)
}

func (m *MockCursorRepository) Save(ctx context.Context, cursor *sync.Cursor) error {
	args := m.Called(ctx, cursor)
	return args.Error(0)
}

func (m *MockCursorRepository) FindDue(ctx context.Context, now time.Time) ([]sync.Cursor, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sync.Cursor), args.Error(1)
}

// MockCredentialRepository is a mock implementation of
// platform.CredentialRepository
type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) FindByUserAndPlatform(ctx context.Context, userID uuid.UUID, code platform.Code) (*platform.Credential, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.Credential), args.Error(1)
}

func (m *MockCredentialRepository) Save(ctx context.Context, cred *platform.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByNaturalKeys(ctx context.Context, userID uuid.UUID, keys []string) (map[string]*order.Order, error) {
	args := m.Called(ctx, userID, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) ListByStatus(ctx context.Context, userID uuid.UUID, code platform.Code, status order.Status) ([]order.Order, error) {
	args := m.Called(ctx, userID, code, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) History(ctx context.Context, orderID uuid.UUID) ([]order.StatusHistoryEntry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.StatusHistoryEntry), args.Error(1)
}

// MockTransactionRepository is a mock implementation of
// platform.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByNaturalKeys(ctx context.Context, userID uuid.UUID, keys []string) (map[string]*platform.Transaction, error) {
	args := m.Called(ctx, userID, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*platform.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) UpsertBatch(ctx context.Context, userID uuid.UUID, records []*platform.Transaction) error {
	args := m.Called(ctx, userID, records)
	return args.Error(0)
}

// MockSnapshotRepository is a mock implementation of
// platform.PriceSnapshotRepository
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) FindByNaturalKeys(ctx context.Context, userID uuid.UUID, keys []string) (map[string]*platform.PriceSnapshot, error) {
	args := m.Called(ctx, userID, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*platform.PriceSnapshot), args.Error(1)
}

func (m *MockSnapshotRepository) UpsertBatch(ctx context.Context, userID uuid.UUID, records []*platform.PriceSnapshot) error {
	args := m.Called(ctx, userID, records)
	return args.Error(0)
}

// stubSource is a scriptable platform.Source: each FetchPage call pops
// the next scripted page or error
type stubSource struct {
	platform platform.Code
	kind     platform.RecordKind
	pages    []stubPage
	calls    int
	// windows records the window passed to each call
	windows []platform.TimeWindow
	// tokens records the page token passed to each call
	tokens []string
}

type stubPage struct {
	page *platform.Page
	err  error
}

func (s *stubSource) Platform() platform.Code   { return s.platform }
func (s *stubSource) Kind() platform.RecordKind { return s.kind }
func (s *stubSource) MaxPageSize() int          { return 100 }

func (s *stubSource) FetchPage(ctx context.Context, cred *platform.Credential, window platform.TimeWindow, pageToken string, pageSize int) (*platform.Page, error) {
	s.windows = append(s.windows, window)
	s.tokens = append(s.tokens, pageToken)
	if s.calls >= len(s.pages) {
		return &platform.Page{}, nil
	}
	p := s.pages[s.calls]
	s.calls++
	return p.page, p.err
}

// stubNormalizer passes records through a mapping function
type stubNormalizer struct {
	kind platform.RecordKind
	fn   func(raw platform.RawRecord) (platform.CanonicalRecord, error)
}

func (s *stubNormalizer) Kind() platform.RecordKind { return s.kind }

func (s *stubNormalizer) Normalize(raw platform.RawRecord) (platform.CanonicalRecord, error) {
	return s.fn(raw)
}
