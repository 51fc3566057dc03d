package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/Ankitaa-Mannaa/task-manager/internal/models"
	"github.com/Ankitaa-Mannaa/task-manager/internal/repository"
)

// AuditRecorder appends history entries for mutating operations. The log is
// observability, not a transactional participant: a failed append never fails
// the parent operation, it is reported on the operator log instead. Appends
// run synchronously, which keeps per-actor insertion order.
type AuditRecorder struct {
	logs repository.LogRepository
}

// NewAuditRecorder creates a new AuditRecorder.
func NewAuditRecorder(logs repository.LogRepository) *AuditRecorder {
	return &AuditRecorder{logs: logs}
}

// Record appends one entry for a completed mutation.
func (a *AuditRecorder) Record(action models.LogAction, actorID uint64, details map[string]interface{}) {
	payload, err := json.Marshal(details)
	if err != nil {
		log.Printf("audit: failed to encode details for %s by user %d: %v", action, actorID, err)
		payload = []byte("{}")
	}

	entry := &models.HistoryLog{
		Action:    action,
		UpdatedBy: actorID,
		UpdatedAt: time.Now().UTC(),
		Details:   string(payload),
	}

	if err := a.logs.Append(entry); err != nil {
		log.Printf("audit: failed to append %s entry for user %d: %v", action, actorID, err)
	}
}

// History returns the actor's own audit trail, oldest to newest.
func (a *AuditRecorder) History(actorID uint64) ([]models.HistoryLog, error) {
	return a.logs.ListByActor(actorID)
}
