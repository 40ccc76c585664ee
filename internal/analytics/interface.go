package analytics

import (
	"context"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/domain"
)

// Producer exports finished view sessions to the analytics pipeline.
// The presence engine treats export as fire-and-forget; a failed
// publish is logged and never surfaces to the viewer path.
type Producer interface {
	PublishViewSession(ctx context.Context, rec *domain.ViewSessionRecord) error
	Close() error
}

// Noop discards all records. Used when Kafka export is disabled.
type Noop struct{}

func (Noop) PublishViewSession(context.Context, *domain.ViewSessionRecord) error { return nil }
func (Noop) Close() error                                                        { return nil }
