package service

import (
	"context"
	"errors"
	"time"

	"github.com/ArinjayBhola/DocuSend-sub001/pkg/log"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/cache"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/domain"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/repository"
)

var ErrDocumentNotFound = errors.New("document not found")

// documentServiceImpl implements DocumentService with a read-through
// cache in front of the repository.
type documentServiceImpl struct {
	repo     repository.DocumentRepository
	cache    cache.DocumentCache
	cacheTTL time.Duration
}

// NewDocumentService creates a new document service.
func NewDocumentService(repo repository.DocumentRepository, docCache cache.DocumentCache, cacheTTL time.Duration) DocumentService {
	return &documentServiceImpl{
		repo:     repo,
		cache:    docCache,
		cacheTTL: cacheTTL,
	}
}

// GetDocument resolves document metadata, consulting the cache first.
func (s *documentServiceImpl) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	l := log.Ctx(ctx)

	if doc, err := s.cache.Get(ctx, id); err == nil {
		return doc, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		l.Warn().Err(err).Str(log.FieldDocumentID, id).Msg("document cache read failed")
	}

	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, doc, s.cacheTTL); err != nil {
		l.Warn().Err(err).Str(log.FieldDocumentID, id).Msg("document cache write failed")
	}

	return doc, nil
}
