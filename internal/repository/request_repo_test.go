package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"aprobaciones/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB creates an in-memory sqlite DB with the workflow schema. The
// pool is pinned to one connection so every test statement sees the same
// in-memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&model.User{}, &model.RequestType{}, &model.Request{}, &model.StatusHistoryEntry{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func seedWorkflowFixtures(t *testing.T, db *gorm.DB) (applicant, responsible model.User, reqType model.RequestType) {
	t.Helper()
	applicant = model.User{Username: "solicitante", Email: "sol@example.com", DisplayName: "Solicitante", Password: "x", Role: model.RoleSolicitante}
	responsible = model.User{Username: "aprobador", Email: "apr@example.com", DisplayName: "Aprobador", Password: "x", Role: model.RoleAprobador}
	if err := db.Create(&applicant).Error; err != nil {
		t.Fatalf("seed applicant: %v", err)
	}
	if err := db.Create(&responsible).Error; err != nil {
		t.Fatalf("seed responsible: %v", err)
	}
	reqType = model.RequestType{Code: "DESPLIEGUE", Name: "Despliegue", Active: true}
	if err := db.Create(&reqType).Error; err != nil {
		t.Fatalf("seed request type: %v", err)
	}
	return applicant, responsible, reqType
}

func makePending(applicant, responsible model.User, reqType model.RequestType, publicID string) *model.Request {
	return &model.Request{
		PublicID:      publicID,
		Title:         "Acceso a base de datos",
		Description:   "Necesito acceso de lectura",
		Status:        model.StatusPendiente,
		RequestTypeID: reqType.ID,
		ApplicantID:   applicant.ID,
		ResponsibleID: responsible.ID,
	}
}

func TestCreateWithInitialHistory(t *testing.T) {
	db := openTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()
	applicant, responsible, reqType := seedWorkflowFixtures(t, db)

	req := makePending(applicant, responsible, reqType, "REQ-1-AAAA0001")
	entry := &model.StatusHistoryEntry{ActorID: applicant.ID, NewStatus: model.StatusPendiente}

	if err := repo.CreateWithInitialHistory(ctx, req, entry); err != nil {
		t.Fatalf("CreateWithInitialHistory: %v", err)
	}
	if req.ID == 0 {
		t.Fatal("request id not assigned")
	}
	if entry.RequestID != req.ID {
		t.Fatalf("entry.RequestID = %d, want %d", entry.RequestID, req.ID)
	}

	got, err := repo.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != model.StatusPendiente {
		t.Errorf("status = %q, want %q", got.Status, model.StatusPendiente)
	}
	if len(got.History) != 1 {
		t.Fatalf("history entries = %d, want 1", len(got.History))
	}
	if got.History[0].PreviousStatus != nil {
		t.Errorf("creation entry previousStatus = %v, want nil", *got.History[0].PreviousStatus)
	}
	if got.History[0].NewStatus != model.StatusPendiente {
		t.Errorf("creation entry newStatus = %q", got.History[0].NewStatus)
	}
	if got.Applicant == nil || got.Applicant.Username != "solicitante" {
		t.Errorf("applicant not preloaded: %+v", got.Applicant)
	}
	if got.RequestType == nil || got.RequestType.Code != "DESPLIEGUE" {
		t.Errorf("request type not preloaded: %+v", got.RequestType)
	}
}

func TestDecideIfPending_SecondDecisionLoses(t *testing.T) {
	db := openTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()
	applicant, responsible, reqType := seedWorkflowFixtures(t, db)

	req := makePending(applicant, responsible, reqType, "REQ-2-AAAA0002")
	if err := repo.CreateWithInitialHistory(ctx, req, &model.StatusHistoryEntry{ActorID: applicant.ID, NewStatus: model.StatusPendiente}); err != nil {
		t.Fatalf("create: %v", err)
	}

	prev := model.StatusPendiente
	approve := &model.StatusHistoryEntry{ActorID: responsible.ID, PreviousStatus: &prev, NewStatus: model.StatusAprobada}
	decided, err := repo.DecideIfPending(ctx, req.ID, model.StatusAprobada, approve)
	if err != nil {
		t.Fatalf("first decision: %v", err)
	}
	if !decided {
		t.Fatal("first decision should win")
	}

	reject := &model.StatusHistoryEntry{ActorID: responsible.ID, PreviousStatus: &prev, NewStatus: model.StatusRechazada}
	decided, err = repo.DecideIfPending(ctx, req.ID, model.StatusRechazada, reject)
	if err != nil {
		t.Fatalf("second decision: %v", err)
	}
	if decided {
		t.Fatal("second decision must lose: request already terminal")
	}

	got, err := repo.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != model.StatusAprobada {
		t.Errorf("status = %q, want %q", got.Status, model.StatusAprobada)
	}
	// The losing decision must not leave a history entry behind.
	if len(got.History) != 2 {
		t.Errorf("history entries = %d, want 2 (creation + approval)", len(got.History))
	}
}

func TestDecideIfPending_ConcurrentSingleWinner(t *testing.T) {
	db := openTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()
	applicant, responsible, reqType := seedWorkflowFixtures(t, db)

	req := makePending(applicant, responsible, reqType, "REQ-3-AAAA0003")
	if err := repo.CreateWithInitialHistory(ctx, req, &model.StatusHistoryEntry{ActorID: applicant.ID, NewStatus: model.StatusPendiente}); err != nil {
		t.Fatalf("create: %v", err)
	}

	const deciders = 8
	var wg sync.WaitGroup
	wins := make(chan string, deciders)
	prev := model.StatusPendiente
	for i := 0; i < deciders; i++ {
		target := model.StatusAprobada
		if i%2 == 1 {
			target = model.StatusRechazada
		}
		wg.Add(1)
		go func(target string) {
			defer wg.Done()
			entry := &model.StatusHistoryEntry{ActorID: responsible.ID, PreviousStatus: &prev, NewStatus: target}
			decided, err := repo.DecideIfPending(ctx, req.ID, target, entry)
			if err != nil {
				t.Errorf("DecideIfPending: %v", err)
				return
			}
			if decided {
				wins <- target
			}
		}(target)
	}
	wg.Wait()
	close(wins)

	var winners []string
	for w := range wins {
		winners = append(winners, w)
	}
	if len(winners) != 1 {
		t.Fatalf("winners = %d (%v), want exactly 1", len(winners), winners)
	}

	got, err := repo.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != winners[0] {
		t.Errorf("final status = %q, winner wrote %q", got.Status, winners[0])
	}
	if len(got.History) != 2 {
		t.Errorf("history entries = %d, want 2", len(got.History))
	}
}

func TestGetByPublicID(t *testing.T) {
	db := openTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()
	applicant, responsible, reqType := seedWorkflowFixtures(t, db)

	req := makePending(applicant, responsible, reqType, "REQ-4-AAAA0004")
	if err := repo.CreateWithInitialHistory(ctx, req, &model.StatusHistoryEntry{ActorID: applicant.ID, NewStatus: model.StatusPendiente}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByPublicID(ctx, "REQ-4-AAAA0004")
	if err != nil {
		t.Fatalf("GetByPublicID: %v", err)
	}
	if got.ID != req.ID {
		t.Errorf("id = %d, want %d", got.ID, req.ID)
	}

	if _, err := repo.GetByPublicID(ctx, "REQ-0-MISSING0"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestListAndStats_Filtered(t *testing.T) {
	db := openTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()
	applicant, responsible, reqType := seedWorkflowFixtures(t, db)

	other := model.User{Username: "otro", Email: "otro@example.com", Password: "x", Role: model.RoleSolicitante}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed other: %v", err)
	}

	mk := func(i int, applicantID uint, status string) {
		r := makePending(applicant, responsible, reqType, fmt.Sprintf("REQ-5-AAAA%04d", i))
		r.ApplicantID = applicantID
		r.Status = status
		if err := repo.CreateWithInitialHistory(ctx, r, &model.StatusHistoryEntry{ActorID: applicantID, NewStatus: model.StatusPendiente}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	mk(1, applicant.ID, model.StatusPendiente)
	mk(2, applicant.ID, model.StatusAprobada)
	mk(3, other.ID, model.StatusRechazada)

	all, err := repo.List(ctx, RequestFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("unfiltered list = %d, want 3", len(all))
	}

	byApplicant, err := repo.List(ctx, RequestFilter{ApplicantID: &applicant.ID})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(byApplicant) != 2 {
		t.Fatalf("filtered list = %d, want 2", len(byApplicant))
	}
	for _, r := range byApplicant {
		if r.ApplicantID != applicant.ID {
			t.Errorf("leaked request %s from applicant %d", r.PublicID, r.ApplicantID)
		}
	}

	stats, err := repo.Stats(ctx, RequestFilter{})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 || stats.Pending != 1 || stats.Approved != 1 || stats.Rejected != 1 {
		t.Errorf("stats = %+v, want total=3 pending=1 approved=1 rejected=1", stats)
	}

	mine, err := repo.Stats(ctx, RequestFilter{ApplicantID: &other.ID})
	if err != nil {
		t.Fatalf("Stats filtered: %v", err)
	}
	if mine.Total != 1 || mine.Rejected != 1 {
		t.Errorf("filtered stats = %+v, want total=1 rejected=1", mine)
	}
}
