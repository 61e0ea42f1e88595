package repository

import (
	"context"
	"errors"

	"github.com/camilo-Anthony/PlanDev/internal/planner/entity"
	"gorm.io/gorm"
)

// HistoryRepository 计划历史仓库
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository 创建历史仓库
func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// FindByID 根据ID查找历史快照
func (r *HistoryRepository) FindByID(ctx context.Context, id string) (*entity.PlanHistory, error) {
	var h entity.PlanHistory
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&h).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

// ListByProject 按版本倒序列出项目历史，不加载快照内容字段
func (r *HistoryRepository) ListByProject(ctx context.Context, projectID string) ([]entity.PlanHistory, error) {
	var history []entity.PlanHistory
	err := r.db.WithContext(ctx).
		Select("id", "project_id", "version", "schema_version", "total_hours", "total_cost", "note", "created_at").
		Where("project_id = ?", projectID).
		Order("version DESC").
		Find(&history).Error
	return history, err
}

// LastVersion 获取项目最新历史版本号，无历史为0
func (r *HistoryRepository) LastVersion(ctx context.Context, projectID string) (int, error) {
	var h entity.PlanHistory
	err := r.db.WithContext(ctx).
		Select("version").
		Where("project_id = ?", projectID).
		Order("version DESC").
		First(&h).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return h.Version, nil
}

// Create 保存历史快照
func (r *HistoryRepository) Create(ctx context.Context, h *entity.PlanHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}
