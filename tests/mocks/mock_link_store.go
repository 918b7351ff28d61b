package mocks

import (
	"context"

	"github.com/ammu0113/url-shortener/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockLinkStore struct {
	mock.Mock
}

func (m *MockLinkStore) CreateUnique(ctx context.Context, link *domain.Link) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockLinkStore) FindByAlias(ctx context.Context, alias string, withEvents bool) (*domain.Link, error) {
	args := m.Called(ctx, alias, withEvents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockLinkStore) FindAllByOwner(ctx context.Context, owner string) ([]*domain.Link, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Link), args.Error(1)
}

func (m *MockLinkStore) IncrementAndAppendEvent(ctx context.Context, alias string, event domain.ClickEvent) error {
	args := m.Called(ctx, alias, event)
	return args.Error(0)
}

func (m *MockLinkStore) SetActive(ctx context.Context, alias, owner string, active bool) error {
	args := m.Called(ctx, alias, owner, active)
	return args.Error(0)
}

func (m *MockLinkStore) Delete(ctx context.Context, alias, owner string) error {
	args := m.Called(ctx, alias, owner)
	return args.Error(0)
}

func (m *MockLinkStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockClickRecorder struct {
	mock.Mock
}

func (m *MockClickRecorder) Record(alias string, hit domain.Hit) {
	m.Called(alias, hit)
}
