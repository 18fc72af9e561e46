// Package mongostore implements storage.Storage on MongoDB. Each entity lives
// in its own collection keyed by string ids; see database.EnsureIndexes for
// the indexes the queries below expect.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"

	"farmdirect/internal/database"
	"farmdirect/internal/storage"
)

const defaultConcurrency = 4

type Store struct {
	client      *mongo.Client
	db          *mongo.Database
	concurrency int
}

var _ storage.Storage = (*Store)(nil)

type Option func(*Store)

func WithConcurrency(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func New(client *mongo.Client, dbName string, opts ...Option) *Store {
	s := &Store{
		client:      client,
		db:          client.Database(dbName),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Database() *mongo.Database {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) users() *mongo.Collection      { return s.db.Collection(database.CollUsers) }
func (s *Store) farmers() *mongo.Collection    { return s.db.Collection(database.CollFarmers) }
func (s *Store) categories() *mongo.Collection { return s.db.Collection(database.CollCategories) }
func (s *Store) products() *mongo.Collection   { return s.db.Collection(database.CollProducts) }
func (s *Store) orders() *mongo.Collection     { return s.db.Collection(database.CollOrders) }
func (s *Store) orderItems() *mongo.Collection { return s.db.Collection(database.CollOrderItems) }
func (s *Store) reviews() *mongo.Collection    { return s.db.Collection(database.CollReviews) }

func (s *Store) group(ctx context.Context) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	return g, gctx
}

var (
	newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
	oldestFirst = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
	topRated    = bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: 1}}
)

func paged(opts *options.FindOptions, page storage.Page) *options.FindOptions {
	if page.Unbounded() {
		return opts
	}
	return opts.SetSkip(int64(page.Start())).SetLimit(int64(page.Limit))
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, op string, filter bson.M, opts ...*options.FindOneOptions) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, filter, opts...).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &doc, nil
}

// findAll drains a cursor into a non-nil slice.
func findAll[T any](ctx context.Context, coll *mongo.Collection, op string, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	docs := make([]T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s decode: %w", op, err)
	}
	return docs, nil
}

func byIDs(ids []string) bson.M {
	return bson.M{"_id": bson.M{"$in": ids}}
}

// findByIDs skips the round trip when there is nothing to fetch.
func findByIDs[T any](ctx context.Context, coll *mongo.Collection, op string, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	return findAll[T](ctx, coll, op, byIDs(ids))
}

func insert(ctx context.Context, coll *mongo.Collection, op string, doc interface{}) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
