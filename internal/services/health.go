package services

import (
	"context"
	"fmt"

	"github.com/localnerve/medrecords/internal/attachments"
	"github.com/localnerve/medrecords/internal/config"
	"github.com/localnerve/medrecords/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Authorizer   string            `json:"authorizer"`
	Attachments  string            `json:"attachments"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(component, message string, err error) {
	r.Status = "unhealthy"
	r.Details[component+"_error"] = err.Error()
	if r.ErrorMessage != "" {
		r.ErrorMessage += "; "
	}
	r.ErrorMessage += fmt.Sprintf("%s: %v", message, err)
}

// HealthCheck probes the database, the authorizer and the attachment slots.
// A nil store skips the attachment probe.
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, store *attachments.Store, log *zap.Logger) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		result.Database = "unreachable"
		result.fail("database", "Database ping failed", err)
		log.Warn("health check failed", zap.String("component", "database"), zap.Error(err))
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	// Check Authorizer connectivity
	if cfg.AuthzURL == "" {
		result.Authorizer = "not configured"
	} else if err := utils.PingAuthorizer(ctx, cfg.AuthzURL); err != nil {
		result.Authorizer = "unreachable"
		result.fail("authorizer", "Authorizer ping failed", err)
		log.Warn("health check failed", zap.String("component", "authorizer"), zap.Error(err))
	} else {
		result.Authorizer = "ok"
		result.Details["authorizer_url"] = cfg.AuthzURL
	}

	// Check attachment slots accept files
	if store == nil {
		result.Attachments = "skipped"
	} else if err := store.Prepare(ctx); err != nil {
		result.Attachments = "unwritable"
		result.fail("attachments", "Attachment check failed", err)
		log.Warn("health check failed", zap.String("component", "attachments"), zap.Error(err))
	} else {
		result.Attachments = "ok"
		result.Details["attachments_driver"] = cfg.Attachments.Driver
	}

	if result.Status == "healthy" {
		log.Debug("health check passed")
	}
	return result
}
