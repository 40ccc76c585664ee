package cache

import (
	"context"
	"errors"
	"time"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// DocumentCache is a read-through cache for document metadata, sitting
// in front of the database on the hot view-start path.
type DocumentCache interface {
	Get(ctx context.Context, documentID string) (*domain.Document, error)
	Set(ctx context.Context, doc *domain.Document, ttl time.Duration) error
	Close() error
}

// Noop always misses. Used when Redis is disabled.
type Noop struct{}

func (Noop) Get(context.Context, string) (*domain.Document, error) {
	return nil, ErrCacheMiss
}

func (Noop) Set(context.Context, *domain.Document, time.Duration) error { return nil }

func (Noop) Close() error { return nil }
