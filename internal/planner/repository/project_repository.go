package repository

import (
	"context"
	"errors"

	"github.com/camilo-Anthony/PlanDev/internal/planner/entity"
	"gorm.io/gorm"
)

// ProjectRepository 项目仓库
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository 创建项目仓库
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// FindByID 根据ID查找项目，加载全部关联（模块/任务按顺序）
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*entity.Project, error) {
	var project entity.Project
	err := r.db.WithContext(ctx).
		Preload("Config").
		Preload("Requirement").
		Preload("Technical").
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("modules.sort_order ASC")
		}).
		Preload("Modules.Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tasks.sort_order ASC")
		}).
		Preload("Proposal").
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// FindByShareToken 根据分享令牌查找项目（公开只读访问）
func (r *ProjectRepository) FindByShareToken(ctx context.Context, token string) (*entity.Project, error) {
	var project entity.Project
	err := r.db.WithContext(ctx).
		Preload("Config").
		Preload("Requirement").
		Preload("Technical").
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("modules.sort_order ASC")
		}).
		Preload("Modules.Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tasks.sort_order ASC")
		}).
		Preload("Proposal").
		Where("share_token = ?", token).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// Create 创建项目（含嵌套的配置/需求/技术栈）
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// Update 更新项目
func (r *ProjectRepository) Update(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// UpdateShareToken 设置或清除分享令牌
func (r *ProjectRepository) UpdateShareToken(ctx context.Context, id string, token *string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Project{}).
		Where("id = ?", id).
		Update("share_token", token).Error
}

// Delete 删除项目及其全部子记录
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("module_id IN (?)",
			tx.Model(&entity.Module{}).Select("id").Where("project_id = ?", id),
		).Delete(&entity.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&entity.Module{}).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{
			&entity.Proposal{}, &entity.PlanHistory{},
			&entity.ProjectConfig{}, &entity.Requirement{}, &entity.Technical{},
		} {
			if err := tx.Where("project_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&entity.Project{}).Error
	})
}

// ListByUser 分页获取用户项目，按创建时间倒序，附带提案汇总。
// search 非空时按名称模糊过滤
func (r *ProjectRepository) ListByUser(ctx context.Context, userID string, page, limit int, search string) ([]entity.Project, int64, error) {
	var projects []entity.Project
	var total int64

	base := r.db.WithContext(ctx).Model(&entity.Project{}).Where("user_id = ?", userID)
	if search != "" {
		base = base.Where("name ILIKE ?", "%"+search+"%")
	}
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).
		Preload("Proposal").
		Where("user_id = ?", userID)
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// UpdateConfig 更新项目配置
func (r *ProjectRepository) UpdateConfig(ctx context.Context, cfg *entity.ProjectConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

// FindConfigByProject 查找项目配置
func (r *ProjectRepository) FindConfigByProject(ctx context.Context, projectID string) (*entity.ProjectConfig, error) {
	var cfg entity.ProjectConfig
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}
