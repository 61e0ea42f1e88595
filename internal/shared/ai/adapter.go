package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/camilo-Anthony/PlanDev/internal/estimation"
	"go.uber.org/zap"
)

// Adapter 把结构化的生成请求变成经过校验的 GeneratedPlan：
// 调用外部文本生成提供方，并对响应做防御性解析。
type Adapter struct {
	client  *Client
	prompts *PromptBuilder
	logger  *zap.Logger
}

// NewAdapter 创建计划生成适配器
func NewAdapter(client *Client, prompts *PromptBuilder, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{client: client, prompts: prompts, logger: logger}
}

// GeneratePlan 生成项目计划。流程：
//  1. 组装提示词并发起一次请求
//  2. 清理代码栅栏后解析JSON；失败则按括号计数修复后重试一次
//  3. 修复产物必须通过结构校验（字段类型/取值范围）才被采信
//  4. 用任务明细重算 baseHours，提供方的聚合值偏差超过1小时即覆盖
//
// 解析失败时整体失败，绝不返回部分结果。
func (a *Adapter) GeneratePlan(ctx context.Context, input PlanInput) (*GeneratedPlan, error) {
	systemPrompt, err := a.prompts.SystemPrompt()
	if err != nil {
		return nil, err
	}
	userPrompt := a.prompts.PlanPrompt(input)

	a.logger.Info("Requesting plan generation",
		zap.String("project", input.ProjectName),
		zap.String("type", input.ProjectType),
		zap.String("model", a.client.Model()))

	content, err := a.client.ChatCompletion(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	clean := CleanResponseText(content)

	var plan GeneratedPlan
	if err := json.Unmarshal([]byte(clean), &plan); err != nil {
		a.logger.Warn("Initial parse failed, attempting repair", zap.Error(err))

		repaired := RepairJSON(clean)
		if err := json.Unmarshal([]byte(repaired), &plan); err != nil {
			a.logger.Error("JSON repair failed", zap.String("head", truncate(clean, 500)))
			return nil, fmt.Errorf("%w: la respuesta fue incompleta, intenta con un proyecto más simple", ErrParse)
		}
	}

	if err := validatePlanShape(&plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	a.correctConsistency(&plan)
	return &plan, nil
}

// validatePlanShape 结构校验：解析通过不代表可信，修复后的JSON
// 可能在错误的层级闭合。这里校验字段类型/枚举/数值范围。
func validatePlanShape(plan *GeneratedPlan) error {
	if len(plan.Modules) == 0 {
		return fmt.Errorf("plan has no modules")
	}

	for i, mod := range plan.Modules {
		if mod.Name == "" {
			return fmt.Errorf("module %d has no name", i)
		}
		for j, task := range mod.Tasks {
			if task.Name == "" {
				return fmt.Errorf("module %q task %d has no name", mod.Name, j)
			}
			if task.Phase != "" && !estimation.ValidPhase(task.Phase) {
				return fmt.Errorf("task %q has unknown phase %q", task.Name, task.Phase)
			}
			if task.Role != "" && !estimation.ValidRole(task.Role) {
				return fmt.Errorf("task %q has unknown role %q", task.Name, task.Role)
			}
			for _, h := range []float64{task.HoursOptimistic, task.HoursMostLikely, task.HoursPessimistic, task.HoursExpected} {
				if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
					return fmt.Errorf("task %q has invalid hour value %v", task.Name, h)
				}
			}
		}
	}

	return nil
}

// correctConsistency 用任务明细重算聚合值。提供方上报的 baseHours
// 永远不比它自己的明细之和更可信。
func (a *Adapter) correctConsistency(plan *GeneratedPlan) {
	var calculated float64
	for _, mod := range plan.Modules {
		for _, task := range mod.Tasks {
			calculated += task.HoursExpected
		}
	}

	if math.Abs(plan.BaseHours-calculated) > 1 {
		a.logger.Info("Correcting plan aggregate from task sums",
			zap.Float64("reported", plan.BaseHours),
			zap.Float64("calculated", calculated))

		plan.BaseHours = math.Round(calculated)
		plan.ContingencyHours = math.Round(plan.BaseHours * plan.ContingencyPercent)
		plan.TotalHours = plan.BaseHours + plan.ContingencyHours
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
