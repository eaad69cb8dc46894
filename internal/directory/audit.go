package directory

import (
	"context"
	"log/slog"

	"github.com/orivyx/orivyx-backend/internal/models"
)

// AuditReader fetches one bounded page of audit events per call. No local
// retention: every invocation is a fresh fetch. Audit history is advisory,
// so failures degrade to an empty list instead of propagating.
type AuditReader struct {
	client *Client
	log    *slog.Logger
}

// NewAuditReader builds a reader around the given client.
func NewAuditReader(client *Client, log *slog.Logger) *AuditReader {
	if log == nil {
		log = slog.Default()
	}
	return &AuditReader{client: client, log: log}
}

// Logs returns up to one page of audit entries for the user, newest as the
// server orders them. On any failure it returns an empty slice.
func (r *AuditReader) Logs(ctx context.Context, username string) []models.AuditLogEntry {
	entries, err := r.client.AuditLogs(ctx, username)
	if err != nil {
		r.log.Warn("audit fetch failed", "username", username, "error", err)
		return []models.AuditLogEntry{}
	}
	if entries == nil {
		entries = []models.AuditLogEntry{}
	}
	return entries
}
