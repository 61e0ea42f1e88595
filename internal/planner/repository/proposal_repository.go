package repository

import (
	"context"
	"errors"

	"github.com/camilo-Anthony/PlanDev/internal/planner/entity"
	"gorm.io/gorm"
)

// ProposalRepository 提案仓库
type ProposalRepository struct {
	db *gorm.DB
}

// NewProposalRepository 创建提案仓库
func NewProposalRepository(db *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// FindByProject 查找项目提案
func (r *ProposalRepository) FindByProject(ctx context.Context, projectID string) (*entity.Proposal, error) {
	var proposal entity.Proposal
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		First(&proposal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &proposal, nil
}

// Create 创建提案
func (r *ProposalRepository) Create(ctx context.Context, proposal *entity.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

// Update 更新提案
func (r *ProposalRepository) Update(ctx context.Context, proposal *entity.Proposal) error {
	return r.db.WithContext(ctx).Save(proposal).Error
}

// DeleteByProject 删除项目提案
func (r *ProposalRepository) DeleteByProject(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&entity.Proposal{}).Error
}
