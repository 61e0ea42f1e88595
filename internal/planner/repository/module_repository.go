package repository

import (
	"context"
	"errors"

	"github.com/camilo-Anthony/PlanDev/internal/planner/entity"
	"gorm.io/gorm"
)

// ModuleRepository 模块仓库
type ModuleRepository struct {
	db *gorm.DB
}

// NewModuleRepository 创建模块仓库
func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// FindByID 根据ID查找模块
func (r *ModuleRepository) FindByID(ctx context.Context, id string) (*entity.Module, error) {
	var mod entity.Module
	err := r.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tasks.sort_order ASC")
		}).
		Where("id = ?", id).
		First(&mod).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &mod, nil
}

// ListByProject 获取项目模块（含任务，均按顺序）
func (r *ModuleRepository) ListByProject(ctx context.Context, projectID string) ([]entity.Module, error) {
	var modules []entity.Module
	err := r.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tasks.sort_order ASC")
		}).
		Where("project_id = ?", projectID).
		Order("sort_order ASC").
		Find(&modules).Error
	return modules, err
}

// CreateWithTasks 创建模块及其任务
func (r *ModuleRepository) CreateWithTasks(ctx context.Context, mod *entity.Module) error {
	return r.db.WithContext(ctx).Create(mod).Error
}

// Update 更新模块
func (r *ModuleRepository) Update(ctx context.Context, mod *entity.Module) error {
	return r.db.WithContext(ctx).Save(mod).Error
}

// Delete 删除模块及其任务
func (r *ModuleRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("module_id = ?", id).Delete(&entity.Task{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.Module{}).Error
	})
}

// DeleteByProject 删除项目全部模块及其任务（替换计划前调用）
func (r *ModuleRepository) DeleteByProject(ctx context.Context, projectID string) error {
	if err := r.db.WithContext(ctx).Where("module_id IN (?)",
		r.db.Model(&entity.Module{}).Select("id").Where("project_id = ?", projectID),
	).Delete(&entity.Task{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&entity.Module{}).Error
}
