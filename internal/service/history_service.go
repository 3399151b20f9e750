package service

import (
	"context"
	"time"

	"aprobaciones/internal/audit"
	"aprobaciones/internal/model"
)

// HistoryFilter narrows audit event queries from the reporting surface.
type HistoryFilter struct {
	ActorID *uint
	Action  string
	From    *time.Time
	To      *time.Time
}

// HistoryService exposes the audit event log: the append side used by the
// workflow engine and the query side used by reporting. It also satisfies
// EventRecorder.
type HistoryService interface {
	RecordEvent(ctx context.Context, event model.AuditEvent) error
	Query(ctx context.Context, filter HistoryFilter) ([]model.AuditEvent, error)
	EventsForRequest(ctx context.Context, requestID uint) ([]model.AuditEvent, error)
}

type historyService struct {
	store audit.Store
}

// NewHistoryService returns a HistoryService over the given event store.
func NewHistoryService(store audit.Store) HistoryService {
	return &historyService{store: store}
}

func (s *historyService) RecordEvent(ctx context.Context, event model.AuditEvent) error {
	return s.store.Append(ctx, &event)
}

// Query returns events newest first. Without filters it returns the whole
// log; pagination is a presentation concern.
func (s *historyService) Query(ctx context.Context, filter HistoryFilter) ([]model.AuditEvent, error) {
	return s.store.Query(ctx, audit.QueryFilter{
		ActorID: filter.ActorID,
		Action:  filter.Action,
		From:    filter.From,
		To:      filter.To,
	})
}

// EventsForRequest returns one request's events oldest first.
func (s *historyService) EventsForRequest(ctx context.Context, requestID uint) ([]model.AuditEvent, error) {
	return s.store.ByRequest(ctx, requestID)
}
