package model

import (
	"time"
)

// Request status constants. PENDIENTE is the initial state; APROBADA and
// RECHAZADA are terminal: once reached, no further transition is legal.
const (
	StatusPendiente = "PENDIENTE"
	StatusAprobada  = "APROBADA"
	StatusRechazada = "RECHAZADA"
)

// TerminalStatus reports whether status permits no further transitions.
func TerminalStatus(status string) bool {
	return status == StatusAprobada || status == StatusRechazada
}

// Request is one instance of the approval workflow. Status and UpdatedAt are
// written exclusively by the workflow engine; applicant, responsible and
// type are set once at creation.
type Request struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	PublicID      string `gorm:"type:varchar(40);uniqueIndex;not null" json:"publicId"`
	Title         string `gorm:"type:varchar(255);not null" json:"title"`
	Description   string `gorm:"type:text;not null" json:"description"`
	Status        string `gorm:"type:varchar(20);not null;default:'PENDIENTE';index" json:"status"`
	RequestTypeID uint   `gorm:"not null;index" json:"requestTypeId"`
	RequestType   *RequestType `gorm:"foreignKey:RequestTypeID" json:"requestType,omitempty"`
	ApplicantID   uint         `gorm:"not null;index" json:"applicantId"`
	Applicant     *User        `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
	ResponsibleID uint         `gorm:"not null;index" json:"responsibleId"`
	Responsible   *User        `gorm:"foreignKey:ResponsibleID" json:"responsible,omitempty"`
	History       []StatusHistoryEntry `gorm:"foreignKey:RequestID" json:"history,omitempty"`
	CreatedAt     time.Time            `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time            `gorm:"autoUpdateTime" json:"updatedAt"`
}

// StatusHistoryEntry is one immutable record of a status transition,
// inserted in the same transaction as the Request write it documents.
// Entries are never updated or deleted; ordering by CreatedAt (and ID as a
// tiebreaker) reconstructs the full lifecycle.
type StatusHistoryEntry struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	RequestID      uint    `gorm:"not null;index" json:"requestId"`
	ActorID        uint    `gorm:"not null;index" json:"actorId"`
	Actor          *User   `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	PreviousStatus *string `gorm:"type:varchar(20)" json:"previousStatus"` // nil only for the creation entry
	NewStatus      string  `gorm:"type:varchar(20);not null" json:"newStatus"`
	Comment        *string `gorm:"type:text" json:"comment"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
