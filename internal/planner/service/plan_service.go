package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/camilo-Anthony/PlanDev/internal/estimation"
	"github.com/camilo-Anthony/PlanDev/internal/planner/entity"
	"github.com/camilo-Anthony/PlanDev/internal/planner/repository"
	"github.com/camilo-Anthony/PlanDev/internal/shared/ai"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 生成锁：同一项目同时只允许一次生成
const (
	generateLockPrefix = "plandev:generate:"
	generateLockTTL    = 5 * time.Minute
)

// PlanService 计划服务：编排AI生成、历史快照与计划落库
type PlanService struct {
	repos   *repository.Repositories
	db      *gorm.DB
	rdb     *redis.Client
	adapter *ai.Adapter
	prompts *ai.PromptCache
	recalc  *RecalcService
	logger  *zap.Logger
}

// NewPlanService 创建计划服务
func NewPlanService(
	repos *repository.Repositories,
	db *gorm.DB,
	rdb *redis.Client,
	adapter *ai.Adapter,
	prompts *ai.PromptCache,
	recalc *RecalcService,
	logger *zap.Logger,
) *PlanService {
	return &PlanService{
		repos:   repos,
		db:      db,
		rdb:     rdb,
		adapter: adapter,
		prompts: prompts,
		recalc:  recalc,
		logger:  logger,
	}
}

// GenerateRequest 生成计划请求
type GenerateRequest struct {
	Note string `json:"note"`
}

// Generate 为项目生成完整计划。流程：
//  1. 获取项目级生成锁（redis SETNX），已占用则拒绝
//  2. 根据名称/描述/功能清单识别项目类型，识别结果驱动提示词
//  3. 调用AI适配器生成计划
//  4. 按配置复杂度上限压缩工时（注意用配置值而非识别值）
//  5. 事务内：快照旧计划、替换模块与任务、写入新提案
func (s *PlanService) Generate(ctx context.Context, projectID, userID string, req *GenerateRequest) (*entity.Project, error) {
	if s.adapter == nil {
		return nil, ai.ErrMissingAPIKey
	}

	if s.rdb != nil {
		lockKey := generateLockPrefix + projectID
		ok, err := s.rdb.SetNX(ctx, lockKey, userID, generateLockTTL).Result()
		if err != nil {
			s.logger.Warn("Generation lock unavailable, continuing without it", zap.Error(err))
		} else if !ok {
			return nil, ErrGenerationInProgress
		} else {
			defer s.rdb.Del(context.WithoutCancel(ctx), lockKey)
		}
	}

	project, err := s.repos.Project.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, ErrForbidden
	}
	if project.Requirement == nil {
		return nil, fmt.Errorf("%w: el proyecto no tiene requisitos definidos", ErrValidation)
	}

	requirement := project.Requirement
	objective := ""
	if requirement.Objective != nil {
		objective = *requirement.Objective
	}

	detected := ai.DetectProjectType(ai.DetectionInput{
		ProjectName:  project.Name,
		Description:  requirement.Description,
		Objective:    objective,
		Features:     requirement.FeatureList(),
		Integrations: requirement.IntegrationList(),
	})
	s.logger.Info("Auto-detected project type",
		zap.String("type", detected.Type),
		zap.String("complexity", detected.Complexity),
		zap.String("confidence", detected.Confidence))

	input := s.buildPlanInput(project, detected)
	plan, err := s.adapter.GeneratePlan(ctx, input)
	if err != nil {
		return nil, err
	}

	// 工时上限按配置的复杂度计算，不用识别出的复杂度：
	// 上限是客户侧约束，识别值只影响提示词
	configComplexity := estimation.ComplexityMedium
	hoursPerWeek, teamSize := capacity(project.Config)
	if project.Config != nil && project.Config.Complexity != "" {
		configComplexity = estimation.Complexity(project.Config.Complexity)
	}
	weeklyCapacity := hoursPerWeek * teamSize
	s.enforceCeiling(plan, configComplexity, weeklyCapacity)

	// 生成流程不留应急储备
	plan.ContingencyPercent = 0
	plan.ContingencyHours = 0
	plan.TotalHours = plan.BaseHours

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepos := s.repos.WithTx(tx)

		if err := s.snapshotCurrentPlan(ctx, txRepos, projectID, optionalString(req.Note)); err != nil {
			return err
		}
		return s.persistPlan(ctx, txRepos, project, plan, weeklyCapacity)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist plan: %w", err)
	}

	return s.repos.Project.FindByID(ctx, projectID)
}

// buildPlanInput 组装适配器输入，缺省值与配置兜底一致
func (s *PlanService) buildPlanInput(project *entity.Project, detected ai.Detection) ai.PlanInput {
	requirement := project.Requirement
	cfg := project.Config
	devRate, qaRate, pmRate := rates(cfg)
	hoursPerWeek, teamSize := capacity(cfg)

	input := ai.PlanInput{
		ProjectName:         project.Name,
		ProjectType:         detected.Type,
		Description:         requirement.Description,
		UserRoles:           requirement.UserRoleList(),
		Features:            requirement.FeatureList(),
		Integrations:        requirement.IntegrationList(),
		Currency:            project.Currency,
		DeveloperRate:       devRate,
		QARate:              qaRate,
		PMRate:              pmRate,
		Complexity:          detected.Complexity,
		ClientType:          "startup",
		Deadline:            "normal",
		Developers:          estimation.DefaultDevelopers,
		QAMembers:           estimation.DefaultQAMembers,
		HoursPerWeek:        hoursPerWeek,
		TeamSize:            teamSize,
		HasPayments:         requirement.HasPayments,
		ScreenCount:         requirement.ScreenCount,
		RequirementsClarity: requirement.RequirementsClarity,
	}
	if requirement.Objective != nil {
		input.Objective = *requirement.Objective
	}
	if cfg != nil {
		input.ClientType = defaultString(cfg.ClientType, "startup")
		input.Deadline = defaultString(cfg.Deadline, "normal")
		input.Developers = defaultInt(cfg.Developers, estimation.DefaultDevelopers)
		input.QAMembers = cfg.QAMembers
		if cfg.BudgetRange != nil {
			input.BudgetRange = *cfg.BudgetRange
		}
	}
	if tech := project.Technical; tech != nil {
		input.Architecture = derefString(tech.Architecture)
		input.Frontend = derefString(tech.Frontend)
		input.Backend = derefString(tech.Backend)
		input.Database = derefString(tech.Database)
		input.Infrastructure = derefString(tech.Infrastructure)
		input.Constraints = derefString(tech.Constraints)
	}
	return input
}

// enforceCeiling 工时上限控制。超限时按比例缩放全部三点估算
// （缩放后每项下限1小时、保留1位小数），期望值重新用PERT公式推导，
// 再从任务明细重算聚合
func (s *PlanService) enforceCeiling(plan *ai.GeneratedPlan, complexity estimation.Complexity, weeklyCapacity int) {
	maxWeeks, ok := estimation.WeekLimits[complexity]
	if !ok {
		maxWeeks = estimation.WeekLimits[estimation.ComplexityMedium]
	}
	maxHours := float64(maxWeeks * weeklyCapacity)

	if plan.TotalHours <= maxHours {
		return
	}

	s.logger.Warn("Plan exceeds complexity ceiling, scaling down",
		zap.Float64("total_hours", plan.TotalHours),
		zap.Float64("max_hours", maxHours))

	factor := maxHours / plan.TotalHours
	var baseHours float64
	for i := range plan.Modules {
		for j := range plan.Modules[i].Tasks {
			task := &plan.Modules[i].Tasks[j]
			scaled := task.Estimate().Scale(factor)
			task.HoursOptimistic = scaled.Optimistic
			task.HoursMostLikely = scaled.MostLikely
			task.HoursPessimistic = scaled.Pessimistic
			task.HoursExpected = scaled.Expected()
			baseHours += task.HoursExpected
		}
	}

	plan.BaseHours = baseHours
	plan.ContingencyHours = 0
	plan.TotalHours = baseHours
}

// snapshotCurrentPlan 把当前计划存入历史。仅当存在完整计划
// （至少一个模块且有提案）时产生快照，版本号单调递增
func (s *PlanService) snapshotCurrentPlan(ctx context.Context, repos *repository.Repositories, projectID string, note *string) error {
	modules, err := repos.Module.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}
	proposal, err := repos.Proposal.FindByProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if len(modules) == 0 {
		return nil
	}

	lastVersion, err := repos.History.LastVersion(ctx, projectID)
	if err != nil {
		return err
	}

	modulesData, err := json.Marshal(modules)
	if err != nil {
		return fmt.Errorf("failed to serialize modules snapshot: %w", err)
	}
	proposalData, err := json.Marshal(proposal)
	if err != nil {
		return fmt.Errorf("failed to serialize proposal snapshot: %w", err)
	}

	snapshot := &entity.PlanHistory{
		ID:            uuid.New().String(),
		ProjectID:     projectID,
		Version:       lastVersion + 1,
		SchemaVersion: entity.PlanHistorySchemaVersion,
		ModulesData:   string(modulesData),
		ProposalData:  string(proposalData),
		TotalHours:    proposal.TotalHours,
		TotalCost:     proposal.TotalCost,
		Note:          note,
	}
	if err := repos.History.Create(ctx, snapshot); err != nil {
		return err
	}

	s.logger.Info("Plan snapshot saved",
		zap.String("project_id", projectID),
		zap.Int("version", snapshot.Version))
	return nil
}

// persistPlan 替换项目计划：删除旧模块与提案后写入新计划。
// 任务保留三点估算精度，estimatedHours 初始等于期望值
func (s *PlanService) persistPlan(ctx context.Context, repos *repository.Repositories, project *entity.Project, plan *ai.GeneratedPlan, weeklyCapacity int) error {
	projectID := project.ID

	if err := repos.Module.DeleteByProject(ctx, projectID); err != nil {
		return err
	}
	if err := repos.Proposal.DeleteByProject(ctx, projectID); err != nil {
		return err
	}

	var totalCost float64
	devRate, qaRate, pmRate := rates(project.Config)

	for i, genMod := range plan.Modules {
		mod := &entity.Module{
			ID:          uuid.New().String(),
			ProjectID:   projectID,
			Name:        genMod.Name,
			Description: genMod.Description,
			Order:       i,
		}
		for j, genTask := range genMod.Tasks {
			mod.Tasks = append(mod.Tasks, entity.Task{
				ID:               uuid.New().String(),
				ModuleID:         mod.ID,
				Name:             genTask.Name,
				Description:      genTask.Description,
				Phase:            string(genTask.Phase),
				Role:             string(genTask.Role),
				Order:            j,
				HoursOptimistic:  genTask.HoursOptimistic,
				HoursMostLikely:  genTask.HoursMostLikely,
				HoursPessimistic: genTask.HoursPessimistic,
				HoursExpected:    genTask.HoursExpected,
				HoursDeviation:   genTask.Estimate().Deviation(),
				EstimatedHours:   genTask.HoursExpected,
				Status:           entity.TaskStatusPending,
			})
			totalCost += genTask.HoursExpected * estimation.RateForRole(genTask.Role, devRate, qaRate, pmRate)
		}
		if err := repos.Module.CreateWithTasks(ctx, mod); err != nil {
			return err
		}
	}

	totalWeeks := int(math.Ceil(math.Round(plan.TotalHours) / float64(weeklyCapacity)))

	proposal := &entity.Proposal{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		Content:    plan.ProposalContent,
		BaseHours:  math.Round(plan.BaseHours),
		TotalHours: math.Round(plan.TotalHours),
		TotalCost:  math.Round(totalCost),
		Duration:   fmt.Sprintf("%d semanas", totalWeeks),
	}
	return repos.Proposal.Create(ctx, proposal)
}

// History 列出项目计划历史，版本倒序
func (s *PlanService) History(ctx context.Context, projectID, userID string) ([]entity.PlanHistory, error) {
	project, err := s.repos.Project.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, ErrForbidden
	}
	return s.repos.History.ListByProject(ctx, projectID)
}

// Restore 恢复历史版本。恢复前先把当前计划自动存档，
// 因此恢复操作本身也可被撤销
func (s *PlanService) Restore(ctx context.Context, projectID, userID, historyID string) (*entity.Project, int, error) {
	project, err := s.repos.Project.FindByID(ctx, projectID)
	if err != nil {
		return nil, 0, err
	}
	if project.UserID != userID {
		return nil, 0, ErrForbidden
	}

	snapshot, err := s.repos.History.FindByID(ctx, historyID)
	if err != nil {
		return nil, 0, err
	}
	if snapshot.ProjectID != projectID {
		return nil, 0, repository.ErrNotFound
	}

	var modules []entity.Module
	if err := json.Unmarshal([]byte(snapshot.ModulesData), &modules); err != nil {
		return nil, 0, fmt.Errorf("corrupt modules snapshot: %w", err)
	}
	var proposal *entity.Proposal
	if snapshot.ProposalData != "" {
		proposal = &entity.Proposal{}
		if err := json.Unmarshal([]byte(snapshot.ProposalData), proposal); err != nil {
			return nil, 0, fmt.Errorf("corrupt proposal snapshot: %w", err)
		}
	}

	autoNote := "[Auto] Guardado antes de restaurar"
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepos := s.repos.WithTx(tx)

		if err := s.snapshotCurrentPlan(ctx, txRepos, projectID, &autoNote); err != nil {
			return err
		}
		if err := txRepos.Module.DeleteByProject(ctx, projectID); err != nil {
			return err
		}
		if err := txRepos.Proposal.DeleteByProject(ctx, projectID); err != nil {
			return err
		}

		for _, mod := range modules {
			restored := mod
			restored.ID = uuid.New().String()
			restored.ProjectID = projectID
			restored.CreatedAt = time.Time{}
			restored.UpdatedAt = time.Time{}
			restored.Tasks = nil
			for _, task := range mod.Tasks {
				t := task
				t.ID = uuid.New().String()
				t.ModuleID = restored.ID
				t.Module = nil
				if t.Status == "" {
					t.Status = entity.TaskStatusPending
				}
				t.CreatedAt = time.Time{}
				t.UpdatedAt = time.Time{}
				restored.Tasks = append(restored.Tasks, t)
			}
			if err := txRepos.Module.CreateWithTasks(ctx, &restored); err != nil {
				return err
			}
		}

		if proposal != nil {
			restored := *proposal
			restored.ID = uuid.New().String()
			restored.ProjectID = projectID
			restored.CreatedAt = time.Time{}
			restored.UpdatedAt = time.Time{}
			return txRepos.Proposal.Create(ctx, &restored)
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to restore plan: %w", err)
	}

	s.logger.Info("Plan restored from history",
		zap.String("project_id", projectID),
		zap.Int("version", snapshot.Version))

	updated, err := s.repos.Project.FindByID(ctx, projectID)
	if err != nil {
		return nil, 0, err
	}
	return updated, snapshot.Version, nil
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
