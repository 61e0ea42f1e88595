package service

import (
	"errors"

	"github.com/camilo-Anthony/PlanDev/internal/config"
	"github.com/camilo-Anthony/PlanDev/internal/planner/repository"
	"github.com/camilo-Anthony/PlanDev/internal/shared/ai"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 错误定义
var (
	// ErrGenerationInProgress 同一项目已有生成在执行中
	ErrGenerationInProgress = errors.New("plan generation already in progress")
	// ErrNoPlan 项目尚无可操作的计划
	ErrNoPlan = errors.New("project has no generated plan")
	// ErrValidation 请求数据非法
	ErrValidation = errors.New("validation failed")
	// ErrForbidden 访问了不属于自己的项目
	ErrForbidden = errors.New("access denied")
)

// Services 服务集合
type Services struct {
	Project *ProjectService
	Plan    *PlanService
	Recalc  *RecalcService
	Module  *ModuleService
	Task    *TaskService
}

// NewServices 创建服务集合
func NewServices(
	repos *repository.Repositories,
	db *gorm.DB,
	rdb *redis.Client,
	adapter *ai.Adapter,
	prompts *ai.PromptCache,
	cfg *config.Config,
	logger *zap.Logger,
) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}

	recalcSvc := NewRecalcService(repos, logger)

	return &Services{
		Project: NewProjectService(repos, logger),
		Plan:    NewPlanService(repos, db, rdb, adapter, prompts, recalcSvc, logger),
		Recalc:  recalcSvc,
		Module:  NewModuleService(repos, recalcSvc, logger),
		Task:    NewTaskService(repos, recalcSvc, logger),
	}
}
