// Package audit records an audit trail entry for every AI operation.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/daemonXid/daemon-one/models"
	"github.com/daemonXid/daemon-one/repositories"
)

// Service writes audit log entries. Writes are fire-and-forget so they never
// add latency to the request path; a failed write is logged and dropped.
type Service struct {
	repo   repositories.AuditRepository
	logger *zap.Logger

	// writeTimeout bounds the detached insert
	writeTimeout time.Duration
}

// NewService creates a new audit service
func NewService(repo repositories.AuditRepository, logger *zap.Logger) *Service {
	return &Service{
		repo:         repo,
		logger:       logger,
		writeTimeout: 5 * time.Second,
	}
}

// Record persists an audit log entry asynchronously. The caller's context is
// not reused: the write must survive the request ending.
func (s *Service) Record(log *models.AuditLog) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
		defer cancel()

		if err := s.repo.Insert(ctx, log); err != nil {
			s.logger.Error("failed to write audit log",
				zap.String("action", string(log.Action)),
				zap.Error(err))
		}
	}()
}

// List retrieves audit logs with pagination, newest first
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}
