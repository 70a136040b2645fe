package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/veridia/fraudlens/internal/logging"
	"github.com/veridia/fraudlens/internal/models"
)

// AuditSink records pipeline events.
type AuditSink interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
}

// AuditService is the fire-and-forget front to the audit trail. A failed
// write is logged and swallowed so it can never abort the caller's primary
// operation, which matters most when auditing from error-handling paths.
type AuditService struct {
	sink   AuditSink
	logger *logrus.Entry
}

// NewAuditService creates an audit service over the given sink.
func NewAuditService(sink AuditSink) *AuditService {
	return &AuditService{
		sink:   sink,
		logger: logging.WithComponent("audit"),
	}
}

// Record writes one audit entry, swallowing any failure.
func (s *AuditService) Record(ctx context.Context, actorID *string, action, entityType, entityID, details string) {
	entry := &models.AuditEntry{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}
	if err := s.sink.Record(ctx, entry); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"action":    action,
			"entity_id": entityID,
		}).Warn("audit write failed")
	}
}
