package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/lorrc/event-board/internal/core/domain"
	"github.com/lorrc/event-board/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockEventRepository is a mock implementation of ports.EventRepository
type MockEventRepository struct {
	mock.Mock
}

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{}
}

func (m *MockEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Event), args.Error(1)
}

// MockCommentRepository is a mock implementation of ports.CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	args := m.Called(ctx, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*domain.Comment, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Comment), args.Error(1)
}

// MockCommentFeed is a mock implementation of ports.CommentFeed
type MockCommentFeed struct {
	mock.Mock
}

func NewMockCommentFeed() *MockCommentFeed {
	return &MockCommentFeed{}
}

func (m *MockCommentFeed) Subscribe(ctx context.Context, eventID uuid.UUID) (ports.CommentStream, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.CommentStream), args.Error(1)
}

// MockEventService is a mock implementation of ports.EventService
type MockEventService struct {
	mock.Mock
}

func NewMockEventService() *MockEventService {
	return &MockEventService{}
}

func (m *MockEventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Event), args.Error(1)
}

func (m *MockEventService) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventService) CheckPayment(ctx context.Context, id uuid.UUID, amount string) (bool, error) {
	args := m.Called(ctx, id, amount)
	return args.Bool(0), args.Error(1)
}

// MockCommentService is a mock implementation of ports.CommentService
type MockCommentService struct {
	mock.Mock
}

func NewMockCommentService() *MockCommentService {
	return &MockCommentService{}
}

func (m *MockCommentService) ListComments(ctx context.Context, eventID uuid.UUID) ([]*domain.Comment, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Comment), args.Error(1)
}

func (m *MockCommentService) InsertComment(ctx context.Context, params ports.InsertCommentParams) (*domain.Comment, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockCommentService) Subscribe(ctx context.Context, eventID uuid.UUID) (ports.CommentStream, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.CommentStream), args.Error(1)
}

func (m *MockCommentService) Shutdown() {}

// MockSessionService is a mock implementation of ports.SessionService
type MockSessionService struct {
	mock.Mock
}

func NewMockSessionService() *MockSessionService {
	return &MockSessionService{}
}

func (m *MockSessionService) GetCurrentUser(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockNotifier is a mock implementation of ports.Notifier
type MockNotifier struct {
	mock.Mock
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(ctx context.Context, params ports.CommentNotification) {
	m.Called(ctx, params)
}

// FakeCommentStream is a ports.CommentStream driven by the test.
// Push delivers a comment; Close records the release and closes the channel.
// With KeepOpenAfterClose set, Close leaves the channel open so tests can
// simulate a feed that still delivers after the subscriber has left.
type FakeCommentStream struct {
	KeepOpenAfterClose bool

	ch        chan *domain.Comment
	closeOnce sync.Once
	mu        sync.Mutex
	closed    bool
}

func NewFakeCommentStream() *FakeCommentStream {
	return &FakeCommentStream{ch: make(chan *domain.Comment, 64)}
}

func (s *FakeCommentStream) Comments() <-chan *domain.Comment {
	return s.ch
}

// Push delivers a comment unless the stream is closed. It reports whether
// the comment was queued.
func (s *FakeCommentStream) Push(comment *domain.Comment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed && !s.KeepOpenAfterClose {
		return false
	}
	s.ch <- comment
	return true
}

func (s *FakeCommentStream) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		if !s.KeepOpenAfterClose {
			close(s.ch)
		}
		s.mu.Unlock()
	})
	return nil
}

// IsClosed reports whether Close has been called.
func (s *FakeCommentStream) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
