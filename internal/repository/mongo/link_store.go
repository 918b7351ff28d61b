// Package mongo stores each link as one document with its click events embedded.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ammu0113/url-shortener/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Config struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type linkDocument struct {
	ShortID     string              `bson:"shortId"`
	OriginalURL string              `bson:"originalUrl"`
	Owner       string              `bson:"owner"`
	Clicks      int64               `bson:"clicks"`
	IsActive    bool                `bson:"isActive"`
	ExpiresAt   *time.Time          `bson:"expiresAt,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt"`
	Analytics   []domain.ClickEvent `bson:"analytics"`
}

var withoutEvents = bson.M{"analytics": 0}

type LinkStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Connect dials the server and verifies it is reachable before returning.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, nil
}

func NewLinkStore(client *mongo.Client, database, collection string) *LinkStore {
	return &LinkStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
}

// EnsureIndexes creates the unique alias index that CreateUnique relies on.
func (s *LinkStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "shortId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("shortId_unique"),
		},
		{
			Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("owner_createdAt"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (s *LinkStore) CreateUnique(ctx context.Context, link *domain.Link) error {
	doc := linkDocument{
		ShortID:     link.Alias,
		OriginalURL: link.OriginalURL,
		Owner:       link.Owner,
		Clicks:      0,
		IsActive:    link.IsActive,
		ExpiresAt:   link.ExpiresAt,
		CreatedAt:   link.CreatedAt,
		// $push needs an array, and a nil slice would be stored as null.
		Analytics:   []domain.ClickEvent{},
	}

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAliasTaken
		}
		return err
	}

	return nil
}

func (s *LinkStore) FindByAlias(ctx context.Context, alias string, withEvents bool) (*domain.Link, error) {
	opts := options.FindOne()
	if !withEvents {
		opts.SetProjection(withoutEvents)
	}

	var doc linkDocument
	err := s.collection.FindOne(ctx, bson.M{"shortId": alias}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return doc.toDomain(), nil
}

func (s *LinkStore) FindAllByOwner(ctx context.Context, owner string) ([]*domain.Link, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "shortId", Value: 1}}).
		SetProjection(withoutEvents)

	cursor, err := s.collection.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, err
	}

	var docs []linkDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	links := make([]*domain.Link, 0, len(docs))
	for i := range docs {
		links = append(links, docs[i].toDomain())
	}
	return links, nil
}

// IncrementAndAppendEvent applies $inc and $push in one update of one document, which
// MongoDB executes atomically.
func (s *LinkStore) IncrementAndAppendEvent(ctx context.Context, alias string, event domain.ClickEvent) error {
	update := bson.M{
		"$inc":  bson.M{"clicks": 1},
		"$push": bson.M{"analytics": event},
	}

	res, err := s.collection.UpdateOne(ctx, bson.M{"shortId": alias}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *LinkStore) SetActive(ctx context.Context, alias, owner string, active bool) error {
	res, err := s.collection.UpdateOne(ctx,
		bson.M{"shortId": alias, "owner": owner},
		bson.M{"$set": bson.M{"isActive": active}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *LinkStore) Delete(ctx context.Context, alias, owner string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"shortId": alias, "owner": owner})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *LinkStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (d *linkDocument) toDomain() *domain.Link {
	return &domain.Link{
		Alias:       d.ShortID,
		OriginalURL: d.OriginalURL,
		Owner:       d.Owner,
		Clicks:      d.Clicks,
		IsActive:    d.IsActive,
		ExpiresAt:   d.ExpiresAt,
		CreatedAt:   d.CreatedAt,
		Events:      d.Analytics,
	}
}
