package service

import (
	"context"
	"time"

	"github.com/camilo-Anthony/PlanDev/internal/estimation"
	"github.com/camilo-Anthony/PlanDev/internal/planner/entity"
	"github.com/camilo-Anthony/PlanDev/internal/planner/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskService 任务服务：手工增删改，编辑后自动重算项目汇总
type TaskService struct {
	repos  *repository.Repositories
	recalc *RecalcService
	logger *zap.Logger
}

// NewTaskService 创建任务服务
func NewTaskService(repos *repository.Repositories, recalc *RecalcService, logger *zap.Logger) *TaskService {
	return &TaskService{repos: repos, recalc: recalc, logger: logger}
}

// CreateTaskRequest 创建任务请求
type CreateTaskRequest struct {
	ModuleID       string  `json:"moduleId" binding:"required"`
	Name           string  `json:"name" binding:"required"`
	Description    string  `json:"description"`
	Phase          string  `json:"phase"`
	Role           string  `json:"role"`
	EstimatedHours float64 `json:"estimatedHours"`
	Order          int     `json:"order"`
}

// UpdateTaskRequest 更新任务请求，nil 字段保持不变
type UpdateTaskRequest struct {
	Name           *string    `json:"name"`
	Description    *string    `json:"description"`
	Phase          *string    `json:"phase"`
	Role           *string    `json:"role"`
	EstimatedHours *float64   `json:"estimatedHours"`
	ActualHours    *float64   `json:"actualHours"`
	Order          *int       `json:"order"`
	Status         *string    `json:"status"`
	DueDate        *time.Time `json:"dueDate"`
	CompletedAt    *time.Time `json:"completedAt"`
}

// Create 手工新增任务
func (s *TaskService) Create(ctx context.Context, req *CreateTaskRequest) (*entity.Task, error) {
	phase := req.Phase
	if phase == "" {
		phase = string(estimation.PhaseDevelopment)
	}
	role := req.Role
	if role == "" {
		role = string(estimation.RoleDeveloper)
	}
	hours := req.EstimatedHours
	if hours <= 0 {
		hours = 1
	}

	task := &entity.Task{
		ID:             uuid.New().String(),
		ModuleID:       req.ModuleID,
		Name:           req.Name,
		Description:    req.Description,
		Phase:          phase,
		Role:           role,
		EstimatedHours: hours,
		Order:          req.Order,
		Status:         entity.TaskStatusPending,
	}
	if err := s.repos.Task.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update 更新任务，落库后重算所属项目汇总
func (s *TaskService) Update(ctx context.Context, id string, req *UpdateTaskRequest) (*entity.Task, error) {
	task, err := s.repos.Task.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		task.Name = *req.Name
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Phase != nil {
		task.Phase = *req.Phase
	}
	if req.Role != nil {
		task.Role = *req.Role
	}
	if req.EstimatedHours != nil {
		task.EstimatedHours = *req.EstimatedHours
	}
	if req.ActualHours != nil {
		task.ActualHours = req.ActualHours
	}
	if req.Order != nil {
		task.Order = *req.Order
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Status != nil {
		task.Status = *req.Status
		// 标记完成时自动盖时间戳
		if *req.Status == entity.TaskStatusCompleted && task.CompletedAt == nil && req.CompletedAt == nil {
			now := time.Now()
			task.CompletedAt = &now
		}
	}
	if req.CompletedAt != nil {
		task.CompletedAt = req.CompletedAt
	}

	if err := s.repos.Task.Update(ctx, task); err != nil {
		return nil, err
	}

	if task.Module != nil {
		if err := s.recalc.RecalculateAfterEdit(ctx, task.Module.ProjectID); err != nil {
			s.logger.Warn("Recalculation after task update failed",
				zap.String("task_id", id), zap.Error(err))
		}
	}
	return task, nil
}

// Delete 删除任务
func (s *TaskService) Delete(ctx context.Context, id string) error {
	task, err := s.repos.Task.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repos.Task.Delete(ctx, id); err != nil {
		return err
	}
	if task.Module != nil {
		if err := s.recalc.RecalculateAfterEdit(ctx, task.Module.ProjectID); err != nil {
			s.logger.Warn("Recalculation after task delete failed",
				zap.String("task_id", id), zap.Error(err))
		}
	}
	return nil
}
