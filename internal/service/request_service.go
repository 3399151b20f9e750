package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"aprobaciones/internal/model"
	"aprobaciones/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateRequestInput is the already-validated command for creating a
// request. Binding tags reject malformed bodies at the boundary before the
// workflow engine runs.
type CreateRequestInput struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description" binding:"required"`
	RequestTypeID uint   `json:"requestTypeId" binding:"required"`
	ApplicantID   uint   `json:"applicantId" binding:"required"`
	ResponsibleID uint   `json:"responsibleId" binding:"required"`
	Comment       string `json:"comment"`
}

// DecisionInput carries the actor and optional comment of an approve or
// reject call.
type DecisionInput struct {
	ActorID uint   `json:"actorId" binding:"required"`
	Comment string `json:"comment"`
}

// EventRecorder appends one audit event per lifecycle transition. It sits
// outside the transactional boundary; the workflow engine treats failures
// as degradations, never as call failures.
type EventRecorder interface {
	RecordEvent(ctx context.Context, event model.AuditEvent) error
}

// Notifier delivers best-effort emails about lifecycle transitions.
type Notifier interface {
	NotifyNewRequest(ctx context.Context, req *model.Request) error
	NotifyStatusChange(ctx context.Context, req *model.Request, comment *string) error
}

// broadcaster pushes realtime payloads to connected clients (websocket hub).
type broadcaster interface {
	GetBroadcast() chan []byte
}

// RequestService is the workflow engine: it orchestrates request creation
// and status transitions, enforcing the lifecycle invariants and writing
// the transactional store and the audit log.
type RequestService interface {
	CreateRequest(ctx context.Context, in CreateRequestInput) (*model.Request, error)
	ChangeStatus(ctx context.Context, requestID, actorID uint, targetStatus string, comment string) (*model.Request, error)
	List(ctx context.Context, filter repository.RequestFilter) ([]model.Request, error)
	FindByIdentifier(ctx context.Context, identifier string) (*model.Request, error)
	Stats(ctx context.Context, filter repository.RequestFilter) (repository.RequestStats, error)
}

type requestService struct {
	requests repository.RequestRepository
	users    repository.UserRepository
	types    repository.RequestTypeRepository
	recorder EventRecorder
	notifier Notifier
	hub      broadcaster
}

// NewRequestService wires the workflow engine. recorder, notifier and hub
// may be nil; the corresponding side effect is then skipped.
func NewRequestService(
	requests repository.RequestRepository,
	users repository.UserRepository,
	types repository.RequestTypeRepository,
	recorder EventRecorder,
	notifier Notifier,
	hub broadcaster,
) RequestService {
	return &requestService{
		requests: requests,
		users:    users,
		types:    types,
		recorder: recorder,
		notifier: notifier,
		hub:      hub,
	}
}

// newPublicID builds the human-facing request identifier. The millisecond
// timestamp keeps it roughly sortable; the uuid suffix removes the clock
// tick collision window. The unique index on public_id is the final guard.
func newPublicID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("REQ-%d-%s", time.Now().UnixMilli(), suffix)
}

// trimComment normalizes an optional free-text comment: whitespace-only
// becomes nil.
func trimComment(comment string) *string {
	trimmed := strings.TrimSpace(comment)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *requestService) CreateRequest(ctx context.Context, in CreateRequestInput) (*model.Request, error) {
	applicant, err := s.users.GetByID(ctx, in.ApplicantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "applicant"}
		}
		return nil, fmt.Errorf("load applicant: %w", err)
	}

	if _, err := s.users.GetByID(ctx, in.ResponsibleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "responsible"}
		}
		return nil, fmt.Errorf("load responsible: %w", err)
	}

	requestType, err := s.types.GetByID(ctx, in.RequestTypeID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load request type: %w", err)
	}
	if err != nil || !requestType.Active {
		return nil, &InvalidStateError{Reason: "request type inactive or missing"}
	}

	comment := trimComment(in.Comment)
	req := &model.Request{
		PublicID:      newPublicID(),
		Title:         in.Title,
		Description:   in.Description,
		Status:        model.StatusPendiente,
		RequestTypeID: in.RequestTypeID,
		ApplicantID:   in.ApplicantID,
		ResponsibleID: in.ResponsibleID,
	}
	entry := &model.StatusHistoryEntry{
		ActorID:        in.ApplicantID,
		PreviousStatus: nil,
		NewStatus:      model.StatusPendiente,
		Comment:        comment,
	}

	if err := s.requests.CreateWithInitialHistory(ctx, req, entry); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	hydrated, err := s.requests.GetByID(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("reload request: %w", err)
	}

	// Everything below is outside the transactional boundary: degraded
	// audit or notification paths are logged, never surfaced.
	s.recordEvent(ctx, model.AuditEvent{
		RequestID: hydrated.ID,
		Action:    model.AuditActionCreated,
		NewStatus: hydrated.Status,
		ActorID:   applicant.ID,
		Actor:     applicant.NotificationAddress(),
		Role:      model.AuditRoleSolicitante,
		Comment:   comment,
	})
	s.notifyNewRequest(ctx, hydrated)
	s.broadcast("request.created", hydrated)

	return hydrated, nil
}

func (s *requestService) ChangeStatus(ctx context.Context, requestID, actorID uint, targetStatus string, comment string) (*model.Request, error) {
	if targetStatus != model.StatusAprobada && targetStatus != model.StatusRechazada {
		return nil, &InvalidStateError{Reason: "target status must be APROBADA or RECHAZADA"}
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "request"}
		}
		return nil, fmt.Errorf("load request: %w", err)
	}

	// Guard order matters: state first, then actor identity. The state
	// guard is re-checked atomically at write time by DecideIfPending.
	if req.Status != model.StatusPendiente {
		return nil, &InvalidStateError{Reason: "request already processed"}
	}
	if actorID != req.ResponsibleID {
		return nil, &AuthorizationError{Reason: "only the assigned responsible may decide"}
	}

	previous := req.Status
	trimmed := trimComment(comment)
	entry := &model.StatusHistoryEntry{
		ActorID:        actorID,
		PreviousStatus: &previous,
		NewStatus:      targetStatus,
		Comment:        trimmed,
	}

	decided, err := s.requests.DecideIfPending(ctx, requestID, targetStatus, entry)
	if err != nil {
		return nil, fmt.Errorf("decide request: %w", err)
	}
	if !decided {
		// A concurrent decider won the conditional update.
		return nil, &InvalidStateError{Reason: "request already processed"}
	}

	updated, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("reload request: %w", err)
	}

	actor := updated.Responsible
	actorIdentifier := "user-" + strconv.FormatUint(uint64(actorID), 10)
	if actor != nil {
		actorIdentifier = actor.NotificationAddress()
	}

	s.recordEvent(ctx, model.AuditEvent{
		RequestID:      updated.ID,
		Action:         model.AuditActionStatusChanged,
		PreviousStatus: &previous,
		NewStatus:      updated.Status,
		ActorID:        actorID,
		Actor:          actorIdentifier,
		Role:           model.AuditRoleResponsable,
		Comment:        trimmed,
	})
	s.notifyStatusChange(ctx, updated, trimmed)
	s.broadcast("request.status_changed", updated)

	return updated, nil
}

func (s *requestService) List(ctx context.Context, filter repository.RequestFilter) ([]model.Request, error) {
	return s.requests.List(ctx, filter)
}

// FindByIdentifier looks up by internal numeric id first and falls back to
// the public REQ-... identifier.
func (s *requestService) FindByIdentifier(ctx context.Context, identifier string) (*model.Request, error) {
	if id, err := strconv.ParseUint(identifier, 10, 32); err == nil {
		req, err := s.requests.GetByID(ctx, uint(id))
		if err == nil {
			return req, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("load request: %w", err)
		}
	}

	req, err := s.requests.GetByPublicID(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "request"}
		}
		return nil, fmt.Errorf("load request: %w", err)
	}
	return req, nil
}

func (s *requestService) Stats(ctx context.Context, filter repository.RequestFilter) (repository.RequestStats, error) {
	return s.requests.Stats(ctx, filter)
}

// --- best-effort side effects ---

func (s *requestService) recordEvent(ctx context.Context, event model.AuditEvent) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordEvent(ctx, event); err != nil {
		log.Printf("audit event append failed (request=%d action=%s): %v", event.RequestID, event.Action, err)
	}
}

func (s *requestService) notifyNewRequest(ctx context.Context, req *model.Request) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyNewRequest(ctx, req); err != nil {
		log.Printf("new request notification failed (request=%s): %v", req.PublicID, err)
	}
}

func (s *requestService) notifyStatusChange(ctx context.Context, req *model.Request, comment *string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyStatusChange(ctx, req, comment); err != nil {
		log.Printf("status change notification failed (request=%s): %v", req.PublicID, err)
	}
}

func (s *requestService) broadcast(eventType string, req *model.Request) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"type":      eventType,
		"requestId": req.ID,
		"publicId":  req.PublicID,
		"status":    req.Status,
	})
	if err != nil {
		return
	}
	select {
	case s.hub.GetBroadcast() <- payload:
	default:
		// No listener draining the hub; realtime updates are optional.
	}
}
