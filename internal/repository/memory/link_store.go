// Package memory holds links in process memory, for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ammu0113/url-shortener/internal/domain"
)

type LinkStore struct {
	mu    sync.RWMutex
	links map[string]*domain.Link
}

func NewLinkStore() *LinkStore {
	return &LinkStore{
		links: make(map[string]*domain.Link),
	}
}

func (s *LinkStore) CreateUnique(ctx context.Context, link *domain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.links[link.Alias]; exists {
		return domain.ErrAliasTaken
	}

	s.links[link.Alias] = clone(link, true)
	return nil
}

func (s *LinkStore) FindByAlias(ctx context.Context, alias string, withEvents bool) (*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, exists := s.links[alias]
	if !exists {
		return nil, domain.ErrNotFound
	}

	return clone(link, withEvents), nil
}

func (s *LinkStore) FindAllByOwner(ctx context.Context, owner string) ([]*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	links := make([]*domain.Link, 0)
	for _, link := range s.links {
		if link.Owner == owner {
			links = append(links, clone(link, false))
		}
	}

	sort.Slice(links, func(i, j int) bool {
		if links[i].CreatedAt.Equal(links[j].CreatedAt) {
			return links[i].Alias < links[j].Alias
		}
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})

	return links, nil
}

func (s *LinkStore) IncrementAndAppendEvent(ctx context.Context, alias string, event domain.ClickEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, exists := s.links[alias]
	if !exists {
		return domain.ErrNotFound
	}

	link.Clicks++
	link.Events = append(link.Events, event)
	return nil
}

func (s *LinkStore) SetActive(ctx context.Context, alias, owner string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, exists := s.links[alias]
	if !exists || link.Owner != owner {
		return domain.ErrNotFound
	}

	link.IsActive = active
	return nil
}

func (s *LinkStore) Delete(ctx context.Context, alias, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, exists := s.links[alias]
	if !exists || link.Owner != owner {
		return domain.ErrNotFound
	}

	delete(s.links, alias)
	return nil
}

func (s *LinkStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// clone copies a link so callers never share the stored record.
func clone(link *domain.Link, withEvents bool) *domain.Link {
	c := *link
	if link.ExpiresAt != nil {
		expires := *link.ExpiresAt
		c.ExpiresAt = &expires
	}
	c.Events = nil
	if withEvents {
		c.Events = make([]domain.ClickEvent, len(link.Events))
		copy(c.Events, link.Events)
	}
	return &c
}
