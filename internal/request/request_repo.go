package request

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=request_repo.go -destination=mock/request_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, r *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error)
	FindAll(ctx context.Context) ([]LeaveRequest, error)
	FindAllByRequester(ctx context.Context, requesterID string) ([]LeaveRequest, error)
	Update(ctx context.Context, r *LeaveRequest) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, requesterID *string) (total, pending, approved int64, err error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, req *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var req LeaveRequest
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	return &req, err
}

// FindByIDForUpdate locks the request row for the rest of the transaction so
// concurrent transitions on the same request serialize.
func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error) {
	var req LeaveRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error
	return &req, err
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) FindAllByRequester(ctx context.Context, requesterID string) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) Update(ctx context.Context, req *LeaveRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

// Delete is a hard delete; the workflow reverses any balance effect first.
func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&LeaveRequest{}, "id = ?", id).Error
}

func (r *repository) CountByStatus(ctx context.Context, requesterID *string) (int64, int64, int64, error) {
	var total, pending, approved int64

	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&LeaveRequest{})
		if requesterID != nil {
			q = q.Where("requester_id = ?", *requesterID)
		}
		return q
	}

	if err := scoped().Count(&total).Error; err != nil {
		return 0, 0, 0, err
	}
	if err := scoped().Where("status = ?", StatusPending).Count(&pending).Error; err != nil {
		return 0, 0, 0, err
	}
	if err := scoped().Where("status = ?", StatusApproved).Count(&approved).Error; err != nil {
		return 0, 0, 0, err
	}

	return total, pending, approved, nil
}
