package memory

import (
	"context"
	"sync"

	"github.com/mbhbank/account-service/shared/models"
)

type AuditLog struct {
	mu      sync.Mutex
	nextID  int64
	records []models.AuditRecord
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

func (l *AuditLog) Append(ctx context.Context, record *models.AuditRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	record.ID = l.nextID
	l.records = append(l.records, *record)
	return nil
}

func (l *AuditLog) ListByType(ctx context.Context, eventType string) ([]models.AuditRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []models.AuditRecord{}
	for _, record := range l.records {
		if record.Type == eventType {
			out = append(out, record)
		}
	}
	return out, nil
}
