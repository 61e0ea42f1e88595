package service

import (
	"context"
	"fmt"
	"math"

	"github.com/camilo-Anthony/PlanDev/internal/estimation"
	"github.com/camilo-Anthony/PlanDev/internal/planner/entity"
	"github.com/camilo-Anthony/PlanDev/internal/planner/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecalcService 重算服务：根据当前任务重新计算提案的
// 工时、成本与工期
type RecalcService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewRecalcService 创建重算服务
func NewRecalcService(repos *repository.Repositories, logger *zap.Logger) *RecalcService {
	return &RecalcService{repos: repos, logger: logger}
}

// RecalcResult 重算结果
type RecalcResult struct {
	TotalHours float64                      `json:"total_hours"`
	TotalCost  float64                      `json:"total_cost"`
	Duration   string                       `json:"duration"`
	PhaseHours map[estimation.Phase]float64 `json:"phase_hours"`
}

// CostByRole 按角色费率累计任务成本
func CostByRole(tasks []entity.Task, cfg *entity.ProjectConfig) float64 {
	devRate, qaRate, pmRate := rates(cfg)
	var total float64
	for _, task := range tasks {
		total += task.EstimatedHours * estimation.RateForRole(estimation.Role(task.Role), devRate, qaRate, pmRate)
	}
	return total
}

func rates(cfg *entity.ProjectConfig) (dev, qa, pm float64) {
	dev, qa, pm = estimation.DefaultDeveloperRate, estimation.DefaultQARate, estimation.DefaultPMRate
	if cfg == nil {
		return
	}
	if cfg.DeveloperRate > 0 {
		dev = cfg.DeveloperRate
	}
	if cfg.QARate > 0 {
		qa = cfg.QARate
	}
	if cfg.PMRate > 0 {
		pm = cfg.PMRate
	}
	return
}

func capacity(cfg *entity.ProjectConfig) (hoursPerWeek, teamSize int) {
	hoursPerWeek, teamSize = estimation.DefaultHoursPerWeek, estimation.DefaultTeamSize
	if cfg == nil {
		return
	}
	if cfg.HoursPerWeek > 0 {
		hoursPerWeek = cfg.HoursPerWeek
	}
	if cfg.TeamSize > 0 {
		teamSize = cfg.TeamSize
	}
	return
}

// Recalculate 显式重算：基于 estimatedHours 汇总，强制零应急储备。
// totalHours 四舍五入取整，工期为 totalHours ÷ 周产能向上取整
func (s *RecalcService) Recalculate(ctx context.Context, projectID string) (*RecalcResult, error) {
	project, err := s.repos.Project.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var allTasks []entity.Task
	for _, mod := range project.Modules {
		allTasks = append(allTasks, mod.Tasks...)
	}
	if len(allTasks) == 0 {
		return nil, fmt.Errorf("%w: el proyecto no tiene tareas", ErrNoPlan)
	}

	var baseHours, totalCost float64
	phaseHours := make(map[estimation.Phase]float64)
	devRate, qaRate, pmRate := rates(project.Config)

	for _, task := range allTasks {
		hours := task.EstimatedHours
		baseHours += hours
		phaseHours[estimation.Phase(task.Phase)] += hours
		totalCost += hours * estimation.RateForRole(estimation.Role(task.Role), devRate, qaRate, pmRate)
	}

	totalHours := math.Round(baseHours)
	totalCost = math.Round(totalCost)

	hoursPerWeek, teamSize := capacity(project.Config)
	weeklyCapacity := hoursPerWeek * teamSize
	totalWeeks := int(math.Ceil(totalHours / float64(weeklyCapacity)))
	duration := fmt.Sprintf("%d semanas", totalWeeks)

	if project.Proposal != nil {
		project.Proposal.BaseHours = baseHours
		project.Proposal.ContingencyPercent = 0
		project.Proposal.ContingencyHours = 0
		project.Proposal.TotalHours = totalHours
		project.Proposal.TotalCost = totalCost
		project.Proposal.Duration = duration
		if err := s.repos.Proposal.Update(ctx, project.Proposal); err != nil {
			return nil, err
		}
	} else {
		proposal := &entity.Proposal{
			ID:         uuid.New().String(),
			ProjectID:  projectID,
			Content:    "Propuesta generada automáticamente",
			BaseHours:  baseHours,
			TotalHours: totalHours,
			TotalCost:  totalCost,
			Duration:   duration,
		}
		if err := s.repos.Proposal.Create(ctx, proposal); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Project totals recalculated",
		zap.String("project_id", projectID),
		zap.Float64("total_hours", totalHours),
		zap.Float64("total_cost", totalCost))

	return &RecalcResult{
		TotalHours: totalHours,
		TotalCost:  totalCost,
		Duration:   duration,
		PhaseHours: phaseHours,
	}, nil
}

// RecalculateAfterEdit 任务或模块编辑后的自动重算。与显式重算不同：
// 逐任务取整累计，沿用已有的应急储备比例（提案 > 首个模块 > 0.15），
// 应急工时按开发费率计入成本，工期用阶段时间线推导
func (s *RecalcService) RecalculateAfterEdit(ctx context.Context, projectID string) error {
	project, err := s.repos.Project.FindByID(ctx, projectID)
	if err != nil {
		return err
	}

	var allTasks []entity.Task
	for _, mod := range project.Modules {
		allTasks = append(allTasks, mod.Tasks...)
	}

	var baseHours, totalCost float64
	phaseHours := make(map[estimation.Phase]float64)
	devRate, qaRate, pmRate := rates(project.Config)

	for _, task := range allTasks {
		hours := math.Round(task.EstimatedHours)
		baseHours += hours
		phaseHours[estimation.Phase(task.Phase)] += hours
		totalCost += hours * estimation.RateForRole(estimation.Role(task.Role), devRate, qaRate, pmRate)
	}

	contingencyPercent := 0.15
	if project.Proposal != nil {
		contingencyPercent = project.Proposal.ContingencyPercent
	} else if len(project.Modules) > 0 {
		contingencyPercent = project.Modules[0].ContingencyPercent
	}

	contingencyHours := math.Round(baseHours * contingencyPercent)
	totalHours := baseHours + contingencyHours
	totalCost += contingencyHours * devRate

	hoursPerWeek, teamSize := capacity(project.Config)
	totalWeeks, _ := estimation.CalculateProjectDuration(phaseHours, hoursPerWeek, teamSize)
	duration := fmt.Sprintf("%d semanas", totalWeeks)

	if project.Proposal == nil {
		return nil
	}

	project.Proposal.BaseHours = baseHours
	project.Proposal.ContingencyPercent = contingencyPercent
	project.Proposal.ContingencyHours = contingencyHours
	project.Proposal.TotalHours = totalHours
	project.Proposal.TotalCost = math.Round(totalCost)
	project.Proposal.Duration = duration

	return s.repos.Proposal.Update(ctx, project.Proposal)
}
