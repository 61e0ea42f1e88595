package estimation

import (
	"fmt"
	"math"
)

// PertEstimate 三点估算（乐观/最可能/悲观，单位小时）
type PertEstimate struct {
	Optimistic  float64 `json:"optimistic"`
	MostLikely  float64 `json:"mostLikely"`
	Pessimistic float64 `json:"pessimistic"`
}

// PertResult 三点估算及其派生值
type PertResult struct {
	PertEstimate
	Expected  float64 `json:"expected"`
	Deviation float64 `json:"deviation"`
}

// Expected PERT期望值 E = (O + 4M + P) / 6
func (e PertEstimate) Expected() float64 {
	return (e.Optimistic + 4*e.MostLikely + e.Pessimistic) / 6
}

// Deviation PERT标准差 σ = (P - O) / 6
func (e PertEstimate) Deviation() float64 {
	return (e.Pessimistic - e.Optimistic) / 6
}

// Result 从三点估算计算全部派生值
func (e PertEstimate) Result() PertResult {
	return PertResult{
		PertEstimate: e,
		Expected:     e.Expected(),
		Deviation:    e.Deviation(),
	}
}

// Round 三个值各保留一位小数
func (e PertEstimate) Round() PertEstimate {
	return PertEstimate{
		Optimistic:  math.Round(e.Optimistic*10) / 10,
		MostLikely:  math.Round(e.MostLikely*10) / 10,
		Pessimistic: math.Round(e.Pessimistic*10) / 10,
	}
}

// ApplyMultiplier 按复杂度系数缩放后取一位小数
func (e PertEstimate) ApplyMultiplier(complexity Complexity) PertEstimate {
	m, ok := ComplexityMultipliers[complexity]
	if !ok {
		m = 1.0
	}
	return PertEstimate{
		Optimistic:  e.Optimistic * m,
		MostLikely:  e.MostLikely * m,
		Pessimistic: e.Pessimistic * m,
	}.Round()
}

// Scale 按因子缩放，每个值下限1小时（用于超限计划的等比压缩，
// 避免任务被压缩到0）
func (e PertEstimate) Scale(factor float64) PertEstimate {
	return PertEstimate{
		Optimistic:  math.Max(1, e.Optimistic*factor),
		MostLikely:  math.Max(1, e.MostLikely*factor),
		Pessimistic: math.Max(1, e.Pessimistic*factor),
	}.Round()
}

// ValidationResult 校验结果（仅提示，不阻断）
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Message string   `json:"message,omitempty"`
	Issues  []string `json:"issues,omitempty"`
}

// Validate 校验三点估算一致性：
//   - O >= 0.5h
//   - O <= M <= P
//   - P 不超过 3x O
func (e PertEstimate) Validate() ValidationResult {
	var issues []string

	if e.Optimistic < 0.5 {
		issues = append(issues, "el valor optimista es demasiado bajo (mínimo 0.5h)")
	}
	if e.Optimistic > e.MostLikely {
		issues = append(issues, "el valor optimista no puede ser mayor que el más probable")
	}
	if e.MostLikely > e.Pessimistic {
		issues = append(issues, "el valor más probable no puede ser mayor que el pesimista")
	}
	if e.Pessimistic > e.Optimistic*3 {
		issues = append(issues, "el valor pesimista es muy alto (máximo 3x del optimista)")
	}

	return ValidationResult{Valid: len(issues) == 0, Issues: issues}
}

// SumEstimates 多个三点估算逐项求和后计算派生值。
// 必须先累加原始三元组再求期望/标准差：期望值是线性的，先后无差，
// 但标准差不是，必须从聚合后的真实区间计算。
func SumEstimates(estimates []PertEstimate) PertResult {
	var sum PertEstimate
	for _, e := range estimates {
		sum.Optimistic += e.Optimistic
		sum.MostLikely += e.MostLikely
		sum.Pessimistic += e.Pessimistic
	}
	return sum.Round().Result()
}

// RiskFactors 风险评分输入（每次生成时从需求推导，不落库）
type RiskFactors struct {
	IntegrationsCount   int
	HasPayments         bool
	HasExternalAPIs     bool
	RequirementsClarity RequirementsClarity
}

// DetermineRiskLevel 根据项目特征累加风险分并映射为等级。
// 简单加法启发式，输入相同结果确定。
func DetermineRiskLevel(f RiskFactors) RiskLevel {
	score := 0

	// 集成越多风险越高
	if f.IntegrationsCount >= 5 {
		score += 2
	} else if f.IntegrationsCount >= 2 {
		score += 1
	}

	// 支付属于高风险
	if f.HasPayments {
		score += 2
	}

	// 外部API中等风险
	if f.HasExternalAPIs {
		score += 1
	}

	// 需求模糊属于高风险
	switch f.RequirementsClarity {
	case ClarityVague:
		score += 2
	case ClarityModerate:
		score += 1
	}

	switch {
	case score >= 5:
		return RiskVeryHigh
	case score >= 3:
		return RiskHigh
	case score >= 1:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ContingencyResult 应急储备计算结果
type ContingencyResult struct {
	Level   RiskLevel `json:"level"`
	Percent float64   `json:"percent"`
	Hours   float64   `json:"hours"`
}

// Contingency 按风险等级计算应急储备小时数
func Contingency(baseHours float64, level RiskLevel) ContingencyResult {
	percent := RiskContingency[level]
	return ContingencyResult{
		Level:   level,
		Percent: percent,
		Hours:   math.Round(baseHours * percent),
	}
}

// ContingencyFromFactors 从风险因素直接计算应急储备
func ContingencyFromFactors(baseHours float64, f RiskFactors) ContingencyResult {
	return Contingency(baseHours, DetermineRiskLevel(f))
}

// ValidateTasksConsistency 校验任务工时合计与上报总数的一致性
func ValidateTasksConsistency(reportedTotal float64, taskHours []float64, tolerance float64) ValidationResult {
	var calculated float64
	for _, h := range taskHours {
		calculated += h
	}

	diff := math.Abs(reportedTotal - calculated)
	if diff > tolerance {
		return ValidationResult{
			Valid: false,
			Message: fmt.Sprintf("inconsistencia: total reportado (%.1fh) vs suma de tareas (%.1fh), diferencia: %.2fh",
				reportedTotal, calculated, diff),
		}
	}
	return ValidationResult{Valid: true}
}
