package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ammu0113/url-shortener/internal/domain"
	"github.com/ammu0113/url-shortener/pkg/generator"
	"github.com/ammu0113/url-shortener/pkg/validator"
)

// LinkStore persists link records. Implementations must enforce alias uniqueness at write
// time and apply IncrementAndAppendEvent as a single atomic update of one record.
// Ownership mismatches are reported as domain.ErrNotFound.
type LinkStore interface {
	CreateUnique(ctx context.Context, link *domain.Link) error
	FindByAlias(ctx context.Context, alias string, withEvents bool) (*domain.Link, error)
	FindAllByOwner(ctx context.Context, owner string) ([]*domain.Link, error)
	IncrementAndAppendEvent(ctx context.Context, alias string, event domain.ClickEvent) error
	SetActive(ctx context.Context, alias, owner string, active bool) error
	Delete(ctx context.Context, alias, owner string) error
	Ping(ctx context.Context) error
}

// ClickRecorder accepts hits for asynchronous persistence. Record must not block.
type ClickRecorder interface {
	Record(alias string, hit domain.Hit)
}

type ShortenerService struct {
	store     LinkStore
	generator *generator.Generator
	recorder  ClickRecorder
	now       func() time.Time
}

func NewShortenerService(store LinkStore, gen *generator.Generator, recorder ClickRecorder) *ShortenerService {
	return &ShortenerService{
		store:     store,
		generator: gen,
		recorder:  recorder,
		now:       time.Now,
	}
}

func (s *ShortenerService) ShortenURL(ctx context.Context, owner string, req *domain.CreateLinkRequest) (*domain.Link, error) {
	if errs := validator.Validate(req); len(errs) > 0 {
		message := "Invalid request"
		if errs[0].Field == "originalUrl" {
			message = "Invalid URL format"
		}
		return nil, domain.NewValidationError(message, errs...)
	}

	now := s.now().UTC()
	link := &domain.Link{
		OriginalURL: req.OriginalURL,
		Owner:       owner,
		IsActive:    true,
		CreatedAt:   now,
	}

	if req.ExpiryHours > 0 {
		expires := now.Add(time.Duration(req.ExpiryHours) * time.Hour)
		link.ExpiresAt = &expires
	}

	if req.CustomAlias != "" {
		alias, err := s.generator.Candidate(req.CustomAlias)
		if err != nil {
			return nil, err
		}

		link.Alias = alias
		if err := s.store.CreateUnique(ctx, link); err != nil {
			if errors.Is(err, domain.ErrAliasTaken) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to create short url: %w", err)
		}
		return link, nil
	}

	maxAttempts := s.generator.MaxAttempts()
	for i := 0; i < maxAttempts; i++ {
		alias, err := s.generator.Candidate("")
		if err != nil {
			return nil, fmt.Errorf("failed to generate short code: %w", err)
		}

		link.Alias = alias
		err = s.store.CreateUnique(ctx, link)
		if err == nil {
			return link, nil
		}

		if errors.Is(err, domain.ErrAliasTaken) {
			continue
		}

		return nil, fmt.Errorf("failed to create short url: %w", err)
	}

	return nil, fmt.Errorf("%w after %d attempts", domain.ErrGenerationExhausted, maxAttempts)
}

// Resolve looks up a public alias and, when the link is live, hands the hit to the
// click recorder before returning. Inactive and expired links return without recording.
func (s *ShortenerService) Resolve(ctx context.Context, alias string, hit domain.Hit) (*domain.Link, error) {
	link, err := s.store.FindByAlias(ctx, alias, false)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get original url: %w", err)
	}

	if err := link.CheckLive(s.now()); err != nil {
		return nil, err
	}

	if hit.At.IsZero() {
		hit.At = s.now().UTC()
	}
	s.recorder.Record(link.Alias, hit)

	return link, nil
}

func (s *ShortenerService) ListURLs(ctx context.Context, owner string) ([]*domain.Link, error) {
	links, err := s.store.FindAllByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list urls: %w", err)
	}
	return links, nil
}

// GetAnalytics returns the link with its full event history. Links owned by someone
// else are reported as not found.
func (s *ShortenerService) GetAnalytics(ctx context.Context, owner, alias string) (*domain.Link, error) {
	link, err := s.store.FindByAlias(ctx, alias, true)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get URL: %w", err)
	}

	if link.Owner != owner {
		return nil, domain.ErrNotFound
	}

	return link, nil
}

// ToggleStatus sets the active flag to desired, or flips it when desired is nil.
func (s *ShortenerService) ToggleStatus(ctx context.Context, owner, alias string, desired *bool) (bool, error) {
	var active bool
	if desired != nil {
		active = *desired
	} else {
		link, err := s.store.FindByAlias(ctx, alias, false)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return false, err
			}
			return false, fmt.Errorf("failed to get URL: %w", err)
		}
		if link.Owner != owner {
			return false, domain.ErrNotFound
		}
		active = !link.IsActive
	}

	if err := s.store.SetActive(ctx, alias, owner, active); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, err
		}
		return false, fmt.Errorf("failed to update url status: %w", err)
	}

	return active, nil
}

func (s *ShortenerService) DeleteURL(ctx context.Context, owner, alias string) error {
	if err := s.store.Delete(ctx, alias, owner); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete url: %w", err)
	}
	return nil
}
