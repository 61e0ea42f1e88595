package estimation

import (
	"fmt"
	"math"
)

// PhaseDistribution 各阶段小时数
type PhaseDistribution map[Phase]int

// PhaseTimelineItem 时间线中的一个阶段
type PhaseTimelineItem struct {
	Phase     Phase `json:"phase"`
	Weeks     int   `json:"weeks"`
	StartWeek int   `json:"startWeek"`
	EndWeek   int   `json:"endWeek"`
}

// DistributeHoursByPhase 按标准占比把总工时分配到各阶段。
// 各值四舍五入为整数，舍入误差全部计入 development，
// 保证五个阶段之和恰好等于 totalHours。
func DistributeHoursByPhase(totalHours int) PhaseDistribution {
	distribution := PhaseDistribution{}

	sum := 0
	for _, phase := range PhaseOrder {
		h := int(math.Round(float64(totalHours) * PhaseDistributionTable[phase]))
		distribution[phase] = h
		sum += h
	}

	// 舍入差额计入 development
	distribution[PhaseDevelopment] += totalHours - sum

	return distribution
}

// CalculatePhaseTimeline 生成严格串行的阶段时间线（阶段之间无重叠，
// 阶段内的并行度已体现在周容量里）。零小时的阶段直接跳过。
func CalculatePhaseTimeline(phaseHours map[Phase]float64, hoursPerWeek, teamSize int) []PhaseTimelineItem {
	weeklyCapacity := float64(hoursPerWeek * teamSize)
	timeline := make([]PhaseTimelineItem, 0, len(PhaseOrder))
	currentWeek := 0

	for _, phase := range PhaseOrder {
		hours := phaseHours[phase]
		if hours <= 0 {
			continue
		}

		weeks := int(math.Ceil(hours / weeklyCapacity))
		item := PhaseTimelineItem{
			Phase:     phase,
			Weeks:     weeks,
			StartWeek: currentWeek,
			EndWeek:   currentWeek + weeks,
		}
		timeline = append(timeline, item)
		currentWeek = item.EndWeek
	}

	return timeline
}

// CalculateTotalDuration 时间线的总周数（最大 endWeek，空时间线为0）
func CalculateTotalDuration(timeline []PhaseTimelineItem) int {
	total := 0
	for _, item := range timeline {
		if item.EndWeek > total {
			total = item.EndWeek
		}
	}
	return total
}

// CalculateProjectDuration 计算完整的项目工期
func CalculateProjectDuration(phaseHours map[Phase]float64, hoursPerWeek, teamSize int) (totalWeeks int, timeline []PhaseTimelineItem) {
	timeline = CalculatePhaseTimeline(phaseHours, hoursPerWeek, teamSize)
	return CalculateTotalDuration(timeline), timeline
}

// ValidatePhaseDistribution 校验实际阶段占比与标准占比的偏差，
// 超出容差的阶段生成提示信息（默认容差 5%）
func ValidatePhaseDistribution(phaseHours map[Phase]float64, totalHours float64, tolerancePercent float64) ValidationResult {
	if totalHours <= 0 {
		return ValidationResult{Valid: false, Message: "las horas totales deben ser mayores a 0"}
	}
	if tolerancePercent <= 0 {
		tolerancePercent = 0.05
	}

	var issues []string
	for _, phase := range PhaseOrder {
		expectedPercent := PhaseDistributionTable[phase]
		actualHours := phaseHours[phase]
		actualPercent := actualHours / totalHours
		deviation := math.Abs(actualPercent - expectedPercent)

		if deviation > tolerancePercent && actualHours > 0 {
			issues = append(issues, fmt.Sprintf(
				"fase %q: %.1f%% (%.0fh) vs esperado %.0f%% (%.0fh)",
				phase, actualPercent*100, actualHours, expectedPercent*100, totalHours*expectedPercent))
		}
	}

	return ValidationResult{Valid: len(issues) == 0, Issues: issues}
}
