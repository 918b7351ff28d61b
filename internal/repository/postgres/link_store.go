package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ammu0113/url-shortener/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation   = "23505"
	aliasConstraint   = "links_alias_key"
	linkColumns       = "alias, original_url, owner_id, click_count, is_active, expires_at, created_at"
	linkColumnsEvents = linkColumns + ", events"
)

type LinkStore struct {
	db *pgxpool.Pool
}

func NewLinkStore(db *pgxpool.Pool) *LinkStore {
	return &LinkStore{db: db}
}

func (r *LinkStore) CreateUnique(ctx context.Context, link *domain.Link) error {
	query := `
		INSERT INTO links (alias, original_url, owner_id, click_count, is_active, expires_at, created_at)
		VALUES ($1, $2, $3, 0, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query, link.Alias, link.OriginalURL, link.Owner, link.IsActive, link.ExpiresAt, link.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == aliasConstraint {
			return domain.ErrAliasTaken
		}
		return err
	}

	return nil
}

func (r *LinkStore) FindByAlias(ctx context.Context, alias string, withEvents bool) (*domain.Link, error) {
	columns := linkColumns
	if withEvents {
		columns = linkColumnsEvents
	}

	row := r.db.QueryRow(ctx, "SELECT "+columns+" FROM links WHERE alias = $1", alias)

	link, err := scanLink(row, withEvents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return link, nil
}

func (r *LinkStore) FindAllByOwner(ctx context.Context, owner string) ([]*domain.Link, error) {
	query := "SELECT " + linkColumns + " FROM links WHERE owner_id = $1 ORDER BY created_at DESC, alias ASC"

	rows, err := r.db.Query(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]*domain.Link, 0)
	for rows.Next() {
		link, err := scanLink(rows, false)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	return links, rows.Err()
}

// IncrementAndAppendEvent bumps the counter and appends the event in one UPDATE, so the
// row lock serialises concurrent clicks on the same alias.
func (r *LinkStore) IncrementAndAppendEvent(ctx context.Context, alias string, event domain.ClickEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode click event: %w", err)
	}

	query := `
		UPDATE links
		SET click_count = click_count + 1,
		    events = events || jsonb_build_array($2::jsonb)
		WHERE alias = $1
	`

	tag, err := r.db.Exec(ctx, query, alias, string(payload))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *LinkStore) SetActive(ctx context.Context, alias, owner string, active bool) error {
	tag, err := r.db.Exec(ctx, "UPDATE links SET is_active = $3 WHERE alias = $1 AND owner_id = $2", alias, owner, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LinkStore) Delete(ctx context.Context, alias, owner string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM links WHERE alias = $1 AND owner_id = $2", alias, owner)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LinkStore) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func scanLink(row pgx.Row, withEvents bool) (*domain.Link, error) {
	var link domain.Link
	dest := []any{
		&link.Alias,
		&link.OriginalURL,
		&link.Owner,
		&link.Clicks,
		&link.IsActive,
		&link.ExpiresAt,
		&link.CreatedAt,
	}

	var rawEvents []byte
	if withEvents {
		dest = append(dest, &rawEvents)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if withEvents && len(rawEvents) > 0 {
		if err := json.Unmarshal(rawEvents, &link.Events); err != nil {
			return nil, fmt.Errorf("failed to decode events for %s: %w", link.Alias, err)
		}
	}

	return &link, nil
}
