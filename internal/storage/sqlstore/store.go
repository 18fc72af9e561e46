// Package sqlstore implements storage.Storage on a relational database
// through gorm. PostgreSQL is the production target; SQLite backs tests and
// local development.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"farmdirect/internal/storage"
)

const defaultConcurrency = 4

type Store struct {
	db          *gorm.DB
	concurrency int
}

var _ storage.Storage = (*Store)(nil)

type Option func(*Store)

// WithConcurrency bounds how many child queries a hydration runs at once.
func WithConcurrency(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, concurrency: defaultConcurrency}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) group(ctx context.Context) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	return g, gctx
}

// findByIDs loads every row of dest's table whose id is in ids.
func (s *Store) findByIDs(ctx context.Context, dest interface{}, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("id IN ?", ids).Find(dest).Error
}

func lookupError(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func newestFirst(q *gorm.DB) *gorm.DB {
	return q.Order("created_at DESC").Order("id ASC")
}

func paged(q *gorm.DB, page storage.Page) *gorm.DB {
	if page.Unbounded() {
		return q
	}
	return q.Limit(page.Limit).Offset(page.Start())
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching query as a literal substring.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
}
