package service

import (
	"context"
	"testing"

	"aprobaciones/internal/model"

	"gorm.io/gorm"
)

// storingTypeRepo keeps catalog entries in memory.
type storingTypeRepo struct {
	nextID uint
	types  map[uint]model.RequestType
}

func newStoringTypeRepo() *storingTypeRepo {
	return &storingTypeRepo{nextID: 1, types: map[uint]model.RequestType{}}
}

func (m *storingTypeRepo) Create(ctx context.Context, rt *model.RequestType) error {
	rt.ID = m.nextID
	m.nextID++
	m.types[rt.ID] = *rt
	return nil
}
func (m *storingTypeRepo) GetByID(ctx context.Context, id uint) (*model.RequestType, error) {
	if rt, ok := m.types[id]; ok {
		cp := rt
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *storingTypeRepo) List(ctx context.Context) ([]model.RequestType, error) {
	out := make([]model.RequestType, 0, len(m.types))
	for _, rt := range m.types {
		out = append(out, rt)
	}
	return out, nil
}
func (m *storingTypeRepo) Update(ctx context.Context, rt *model.RequestType) error {
	m.types[rt.ID] = *rt
	return nil
}

func TestCreateRequestType_StartsActive(t *testing.T) {
	svc := NewRequestTypeService(newStoringTypeRepo())

	rt, err := svc.Create(context.Background(), CreateRequestTypeInput{Code: "DESPLIEGUE", Name: "Despliegue"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !rt.Active {
		t.Error("new request types must start active")
	}
	if rt.Code != "DESPLIEGUE" || rt.ID == 0 {
		t.Errorf("unexpected type: %+v", rt)
	}
}

func TestUpdateRequestType_PartialFields(t *testing.T) {
	repo := newStoringTypeRepo()
	svc := NewRequestTypeService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequestTypeInput{Code: "ACCESO", Name: "Acceso", Description: "Acceso a sistemas"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Deactivate without touching name or description.
	inactive := false
	updated, err := svc.Update(ctx, created.ID, UpdateRequestTypeInput{Active: &inactive})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Active {
		t.Error("type should be inactive")
	}
	if updated.Name != "Acceso" || updated.Description != "Acceso a sistemas" {
		t.Errorf("untouched fields changed: %+v", updated)
	}
	if updated.Code != "ACCESO" {
		t.Errorf("code must be immutable, got %q", updated.Code)
	}

	name := "Acceso renovado"
	updated, err = svc.Update(ctx, created.ID, UpdateRequestTypeInput{Name: &name})
	if err != nil {
		t.Fatalf("Update name: %v", err)
	}
	if updated.Name != name || updated.Active {
		t.Errorf("unexpected type after rename: %+v", updated)
	}
}

func TestUpdateRequestType_NotFound(t *testing.T) {
	svc := NewRequestTypeService(newStoringTypeRepo())

	name := "x"
	if _, err := svc.Update(context.Background(), 99, UpdateRequestTypeInput{Name: &name}); !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
