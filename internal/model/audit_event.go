package model

import (
	"time"
)

// Audit event actions
const (
	AuditActionCreated       = "CREATED"
	AuditActionStatusChanged = "STATUS_CHANGED"
)

// Audit roles describe the actor's role in the context of the recorded
// action, not necessarily their directory role.
const (
	AuditRoleSolicitante = "SOLICITANTE"
	AuditRoleResponsable = "RESPONSABLE"
	AuditRoleAprobador   = "APROBADOR"
	AuditRoleAdmin       = "ADMIN"
)

// AuditEvent is one immutable record in the secondary audit log. It lives in
// redis, not in the relational store: it is a denormalized, eventually
// consistent projection of request lifecycle transitions and must never be
// treated as the source of truth for current status.
type AuditEvent struct {
	ID             int64   `json:"id"` // log-assigned sequence, not a relational key
	RequestID      uint    `json:"requestId"`
	Action         string  `json:"action"` // CREATED, STATUS_CHANGED
	PreviousStatus *string `json:"previousStatus"`
	NewStatus      string  `json:"newStatus"`
	ActorID        uint    `json:"actorId"`
	Actor          string  `json:"actor"` // email or username captured at event time
	Role           string  `json:"role"`
	Comment        *string   `json:"comment"`
	CreatedAt      time.Time `json:"createdAt"` // log-assigned, independent of Request.UpdatedAt
}
