package mocks

import (
	"context"

	"github.com/ammu0113/url-shortener/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockShortenerService struct {
	mock.Mock
}

func (m *MockShortenerService) ShortenURL(ctx context.Context, owner string, req *domain.CreateLinkRequest) (*domain.Link, error) {
	args := m.Called(ctx, owner, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockShortenerService) Resolve(ctx context.Context, alias string, hit domain.Hit) (*domain.Link, error) {
	args := m.Called(ctx, alias, hit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockShortenerService) ListURLs(ctx context.Context, owner string) ([]*domain.Link, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Link), args.Error(1)
}

func (m *MockShortenerService) GetAnalytics(ctx context.Context, owner, alias string) (*domain.Link, error) {
	args := m.Called(ctx, owner, alias)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockShortenerService) ToggleStatus(ctx context.Context, owner, alias string, desired *bool) (bool, error) {
	args := m.Called(ctx, owner, alias, desired)
	return args.Bool(0), args.Error(1)
}

func (m *MockShortenerService) DeleteURL(ctx context.Context, owner, alias string) error {
	args := m.Called(ctx, owner, alias)
	return args.Error(0)
}
