package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"findlost/internal/models"
	"findlost/internal/notifications"
	"findlost/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// itemRepoStub is a stub for repository.ItemRepository.
type itemRepoStub struct {
	listFn    func(context.Context, repository.ItemFilter) ([]models.Item, error)
	getByIDFn func(context.Context, string) (*models.Item, error)
	createFn  func(context.Context, *models.Item) error
	updateFn  func(context.Context, string, repository.ItemPatch) (*models.Item, error)
	deleteFn  func(context.Context, string) error
}

func (s *itemRepoStub) List(ctx context.Context, f repository.ItemFilter) ([]models.Item, error) {
	return s.listFn(ctx, f)
}
func (s *itemRepoStub) GetByID(ctx context.Context, id string) (*models.Item, error) {
	return s.getByIDFn(ctx, id)
}
func (s *itemRepoStub) Create(ctx context.Context, item *models.Item) error {
	return s.createFn(ctx, item)
}
func (s *itemRepoStub) Update(ctx context.Context, id string, p repository.ItemPatch) (*models.Item, error) {
	return s.updateFn(ctx, id, p)
}
func (s *itemRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func noopItemRepo() *itemRepoStub {
	return &itemRepoStub{
		listFn:    func(_ context.Context, _ repository.ItemFilter) ([]models.Item, error) { return []models.Item{}, nil },
		getByIDFn: func(_ context.Context, _ string) (*models.Item, error) { return nil, repository.ErrNotFound },
		createFn: func(_ context.Context, item *models.Item) error {
			item.ID = "item-1"
			return nil
		},
		updateFn: func(_ context.Context, _ string, _ repository.ItemPatch) (*models.Item, error) {
			return nil, repository.ErrNotFound
		},
		deleteFn: func(_ context.Context, _ string) error { return nil },
	}
}

// recoveryRepoStub is a stub for repository.RecoveryRepository.
type recoveryRepoStub struct {
	listFn   func(context.Context, string) ([]models.RecoveredItem, error)
	recordFn func(context.Context, *models.RecoveredItem) error
}

func (s *recoveryRepoStub) List(ctx context.Context, email string) ([]models.RecoveredItem, error) {
	return s.listFn(ctx, email)
}
func (s *recoveryRepoStub) Record(ctx context.Context, rec *models.RecoveredItem) error {
	return s.recordFn(ctx, rec)
}

func noopRecoveryRepo() *recoveryRepoStub {
	return &recoveryRepoStub{
		listFn: func(_ context.Context, _ string) ([]models.RecoveredItem, error) {
			return []models.RecoveredItem{}, nil
		},
		recordFn: func(_ context.Context, _ *models.RecoveredItem) error { return nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	listFn        func(context.Context) ([]models.User, error)
	getByIDFn     func(context.Context, string) (*models.User, error)
	getByEmailFn  func(context.Context, string) (*models.User, error)
	createFn      func(context.Context, *models.User) error
	touchSignInFn func(context.Context, string, time.Time) (*models.User, error)
	updateFn      func(context.Context, string, repository.UserPatch) (*models.User, error)
	deleteFn      func(context.Context, string) error
}

func (s *userRepoStub) List(ctx context.Context) ([]models.User, error) { return s.listFn(ctx) }
func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, u *models.User) error { return s.createFn(ctx, u) }
func (s *userRepoStub) TouchSignIn(ctx context.Context, email string, at time.Time) (*models.User, error) {
	return s.touchSignInFn(ctx, email, at)
}
func (s *userRepoStub) Update(ctx context.Context, email string, p repository.UserPatch) (*models.User, error) {
	return s.updateFn(ctx, email, p)
}
func (s *userRepoStub) Delete(ctx context.Context, id string) error { return s.deleteFn(ctx, id) }

func noopUserRepo() *userRepoStub {
	notFound := func(_ context.Context, _ string) (*models.User, error) { return nil, repository.ErrNotFound }
	return &userRepoStub{
		listFn:       func(_ context.Context) ([]models.User, error) { return []models.User{}, nil },
		getByIDFn:    notFound,
		getByEmailFn: notFound,
		createFn:     func(_ context.Context, _ *models.User) error { return nil },
		touchSignInFn: func(_ context.Context, _ string, _ time.Time) (*models.User, error) {
			return nil, repository.ErrNotFound
		},
		updateFn: func(_ context.Context, _ string, _ repository.UserPatch) (*models.User, error) {
			return nil, repository.ErrNotFound
		},
		deleteFn: func(_ context.Context, _ string) error { return nil },
	}
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []notifications.ItemEvent
	err    error
}

func (p *recordingPublisher) PublishItemEvent(_ context.Context, ev notifications.ItemEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func assertAppErrorCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) *models.AppError {
	t.Helper()
	return assertAppErrorCode(t, err, models.CodeValidation)
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeForbidden)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeNotFound)
}
