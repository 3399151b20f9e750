package repository

import (
	"context"

	"aprobaciones/internal/model"

	"gorm.io/gorm"
)

// RequestFilter narrows request queries by applicant and/or responsible.
// Both set means logical AND; nil means unfiltered.
type RequestFilter struct {
	ApplicantID   *uint
	ResponsibleID *uint
}

// RequestStats holds the read-side aggregation over the request store.
type RequestStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// RequestRepository owns all writes to requests and their status history.
// The two mutating operations are composite on purpose: a status write and
// its history entry commit together or not at all.
type RequestRepository interface {
	// CreateWithInitialHistory inserts the request and its creation history
	// entry in a single transaction.
	CreateWithInitialHistory(ctx context.Context, req *model.Request, entry *model.StatusHistoryEntry) error
	// DecideIfPending moves the request to targetStatus and appends the
	// history entry, in one transaction, only if the request is still
	// PENDIENTE at write time. Returns false when the conditional update
	// matched no row (already decided, likely a lost race).
	DecideIfPending(ctx context.Context, id uint, targetStatus string, entry *model.StatusHistoryEntry) (bool, error)
	GetByID(ctx context.Context, id uint) (*model.Request, error)
	GetByPublicID(ctx context.Context, publicID string) (*model.Request, error)
	List(ctx context.Context, filter RequestFilter) ([]model.Request, error)
	Stats(ctx context.Context, filter RequestFilter) (RequestStats, error)
}

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository returns a gorm-backed RequestRepository.
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) CreateWithInitialHistory(ctx context.Context, req *model.Request, entry *model.StatusHistoryEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(req).Error; err != nil {
			return err
		}
		entry.RequestID = req.ID
		return tx.Create(entry).Error
	})
}

func (r *requestRepository) DecideIfPending(ctx context.Context, id uint, targetStatus string, entry *model.StatusHistoryEntry) (bool, error) {
	decided := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The status guard lives in the WHERE clause so concurrent deciders
		// race on the row update itself: at most one call matches.
		res := tx.Model(&model.Request{}).
			Where("id = ? AND status = ?", id, model.StatusPendiente).
			Update("status", targetStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		decided = true
		entry.RequestID = id
		return tx.Create(entry).Error
	})
	if err != nil {
		return false, err
	}
	return decided, nil
}

// hydrated preloads the relations callers of the workflow API expect: type,
// applicant, responsible and the insertion-ordered history with actors.
func (r *requestRepository) hydrated(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("RequestType").
		Preload("Applicant").
		Preload("Responsible").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc, id asc")
		}).
		Preload("History.Actor")
}

func (r *requestRepository) GetByID(ctx context.Context, id uint) (*model.Request, error) {
	var req model.Request
	if err := r.hydrated(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) GetByPublicID(ctx context.Context, publicID string) (*model.Request, error) {
	var req model.Request
	if err := r.hydrated(ctx).First(&req, "public_id = ?", publicID).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func applyFilter(db *gorm.DB, filter RequestFilter) *gorm.DB {
	if filter.ApplicantID != nil {
		db = db.Where("applicant_id = ?", *filter.ApplicantID)
	}
	if filter.ResponsibleID != nil {
		db = db.Where("responsible_id = ?", *filter.ResponsibleID)
	}
	return db
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]model.Request, error) {
	var requests []model.Request
	q := applyFilter(r.hydrated(ctx), filter)
	if err := q.Order("created_at desc").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) Stats(ctx context.Context, filter RequestFilter) (RequestStats, error) {
	var stats RequestStats

	count := func(status string) (int64, error) {
		var n int64
		q := applyFilter(r.db.WithContext(ctx).Model(&model.Request{}), filter)
		if status != "" {
			q = q.Where("status = ?", status)
		}
		err := q.Count(&n).Error
		return n, err
	}

	var err error
	if stats.Total, err = count(""); err != nil {
		return RequestStats{}, err
	}
	if stats.Pending, err = count(model.StatusPendiente); err != nil {
		return RequestStats{}, err
	}
	if stats.Approved, err = count(model.StatusAprobada); err != nil {
		return RequestStats{}, err
	}
	if stats.Rejected, err = count(model.StatusRechazada); err != nil {
		return RequestStats{}, err
	}
	return stats, nil
}
