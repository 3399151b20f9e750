package database

import (
	"errors"
	"log"

	"aprobaciones/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedDemoData inserts a small user directory and request type catalog so a
// fresh deployment is usable immediately. Existing rows are left untouched;
// the seed is idempotent.
func SeedDemoData(db *gorm.DB) error {
	users := []model.User{
		{Username: "sebastian.daza", Email: "sebastian.daza@example.com", DisplayName: "Sebastián Daza", Role: model.RoleSolicitante},
		{Username: "ana.aprobadora", Email: "ana.aprobadora@example.com", DisplayName: "Ana Aprobadora", Role: model.RoleAprobador},
		{Username: "admin.coordinador", Email: "admin.coordinador@example.com", DisplayName: "Admin Coordinador", Role: model.RoleAdmin},
	}

	for _, u := range users {
		var existing model.User
		err := db.First(&existing, "username = ?", u.Username).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hash)
		if err := db.Create(&u).Error; err != nil {
			return err
		}
		log.Printf("seeded user %s (%s)", u.Username, u.Role)
	}

	types := []model.RequestType{
		{Code: "DESPLIEGUE", Name: "Despliegue", Description: "Solicitud para despliegue de componentes o servicios.", Active: true},
		{Code: "ACCESO", Name: "Acceso", Description: "Solicitud de creación o modificación de accesos.", Active: true},
		{Code: "CAMBIO_TECNICO", Name: "Cambio técnico", Description: "Modificación técnica en sistemas o infraestructura.", Active: true},
		{Code: "OTRO", Name: "Otro", Description: "Otros tipos de solicitud no categorizados.", Active: true},
	}

	for _, rt := range types {
		var existing model.RequestType
		err := db.First(&existing, "code = ?", rt.Code).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&rt).Error; err != nil {
			return err
		}
		log.Printf("seeded request type %s", rt.Code)
	}

	return nil
}
