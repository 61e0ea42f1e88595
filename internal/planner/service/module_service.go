package service

import (
	"context"

	"github.com/camilo-Anthony/PlanDev/internal/planner/entity"
	"github.com/camilo-Anthony/PlanDev/internal/planner/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ModuleService 模块服务：生成之外的手工维护
type ModuleService struct {
	repos  *repository.Repositories
	recalc *RecalcService
	logger *zap.Logger
}

// NewModuleService 创建模块服务
func NewModuleService(repos *repository.Repositories, recalc *RecalcService, logger *zap.Logger) *ModuleService {
	return &ModuleService{repos: repos, recalc: recalc, logger: logger}
}

// CreateModuleRequest 创建模块请求
type CreateModuleRequest struct {
	ProjectID   string `json:"projectId" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

// UpdateModuleRequest 更新模块请求
type UpdateModuleRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
}

// Create 手工新增模块
func (s *ModuleService) Create(ctx context.Context, req *CreateModuleRequest) (*entity.Module, error) {
	mod := &entity.Module{
		ID:          uuid.New().String(),
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Description: req.Description,
		Order:       req.Order,
	}
	if err := s.repos.Module.CreateWithTasks(ctx, mod); err != nil {
		return nil, err
	}
	return mod, nil
}

// Update 更新模块字段
func (s *ModuleService) Update(ctx context.Context, id string, req *UpdateModuleRequest) (*entity.Module, error) {
	mod, err := s.repos.Module.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		mod.Name = *req.Name
	}
	if req.Description != nil {
		mod.Description = *req.Description
	}
	if req.Order != nil {
		mod.Order = *req.Order
	}

	if err := s.repos.Module.Update(ctx, mod); err != nil {
		return nil, err
	}
	return mod, nil
}

// Delete 删除模块及其任务，随后重算项目汇总
func (s *ModuleService) Delete(ctx context.Context, id string) error {
	mod, err := s.repos.Module.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repos.Module.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.recalc.RecalculateAfterEdit(ctx, mod.ProjectID); err != nil {
		s.logger.Warn("Recalculation after module delete failed",
			zap.String("project_id", mod.ProjectID), zap.Error(err))
	}
	return nil
}
