package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/backoffice-api/internal/models"
)

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type auditEntry struct {
	actorID    string
	action     string
	resource   string
	resourceID string
	values     map[string]interface{}
	meta       models.RequestMeta
}

// recordAudit writes an audit row. Failures are logged and never surface to the caller.
func recordAudit(ctx context.Context, w auditWriter, logger *zap.Logger, timeout time.Duration, e auditEntry) {
	if w == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	entry := &models.AuditLog{
		Action:    e.action,
		Resource:  e.resource,
		IPAddress: e.meta.IP,
		UserAgent: e.meta.UserAgent,
	}
	if e.actorID != "" {
		entry.UserID = &e.actorID
	}
	if e.resourceID != "" {
		entry.ResourceID = &e.resourceID
	}
	if len(e.values) > 0 {
		entry.NewValues, _ = json.Marshal(e.values)
	}

	if err := w.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("failed to record audit log", zap.String("action", e.action), zap.Error(err))
	}
}
