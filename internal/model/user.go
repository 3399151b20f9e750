package model

import (
	"time"
)

// Directory role constants
const (
	RoleSolicitante = "SOLICITANTE"
	RoleAprobador   = "APROBADOR"
	RoleAdmin       = "ADMIN"
)

// User represents an employee in the internal directory. The workflow engine
// only reads users; they come from seeding or admin provisioning.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	DisplayName string    `gorm:"type:varchar(255);not null" json:"displayName"`
	Password    string    `gorm:"type:varchar(255);not null" json:"-"`   // bcrypt hash, never serialized
	Role        string    `gorm:"type:varchar(20);not null" json:"role"` // SOLICITANTE, APROBADOR, ADMIN
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// ValidRole reports whether role is one of the known directory roles.
func ValidRole(role string) bool {
	return role == RoleSolicitante || role == RoleAprobador || role == RoleAdmin
}

// NotificationAddress returns the identifier used when denormalizing the
// actor into audit events and email headers: email when present, else
// username.
func (u *User) NotificationAddress() string {
	if u.Email != "" {
		return u.Email
	}
	return u.Username
}
