package estimation

// Phase 项目阶段
type Phase string

const (
	PhaseAnalysis    Phase = "analysis"
	PhaseDesign      Phase = "design"
	PhaseDevelopment Phase = "development"
	PhaseTesting     Phase = "testing"
	PhaseDeployment  Phase = "deployment"
)

// PhaseOrder 阶段固定顺序（时间线按此顺序串行推进）
var PhaseOrder = []Phase{
	PhaseAnalysis,
	PhaseDesign,
	PhaseDevelopment,
	PhaseTesting,
	PhaseDeployment,
}

// Role 任务角色
type Role string

const (
	RoleDeveloper Role = "developer"
	RoleQA        Role = "qa"
	RolePM        Role = "pm"
)

// Complexity 项目复杂度
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// RiskLevel 风险等级
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "veryHigh"
)

// RequirementsClarity 需求清晰度
type RequirementsClarity string

const (
	ClarityClear    RequirementsClarity = "clear"
	ClarityModerate RequirementsClarity = "moderate"
	ClarityVague    RequirementsClarity = "vague"
)

// WeekLimits 按复杂度限制的最大周数
var WeekLimits = map[Complexity]int{
	ComplexitySimple:  2,
	ComplexityMedium:  5,
	ComplexityComplex: 12,
}

// ComplexityMultipliers 复杂度估算系数
var ComplexityMultipliers = map[Complexity]float64{
	ComplexitySimple:  0.85,
	ComplexityMedium:  1.0,
	ComplexityComplex: 1.25,
}

// RiskContingency 各风险等级对应的应急储备百分比
var RiskContingency = map[RiskLevel]float64{
	RiskLow:      0.10,
	RiskMedium:   0.15,
	RiskHigh:     0.20,
	RiskVeryHigh: 0.30,
}

// PhaseDistributionTable 各阶段工时占比（合计 100%）
var PhaseDistributionTable = map[Phase]float64{
	PhaseAnalysis:    0.10,
	PhaseDesign:      0.15,
	PhaseDevelopment: 0.50,
	PhaseTesting:     0.15,
	PhaseDeployment:  0.10,
}

// 默认时薪（货币无关，展示时乘以项目货币）
const (
	DefaultDeveloperRate = 50.0
	DefaultQARate        = 40.0
	DefaultPMRate        = 60.0
)

// RateForRole 按角色取时薪，未配置时使用默认值
func RateForRole(role Role, developerRate, qaRate, pmRate float64) float64 {
	switch role {
	case RoleQA:
		if qaRate > 0 {
			return qaRate
		}
		return DefaultQARate
	case RolePM:
		if pmRate > 0 {
			return pmRate
		}
		return DefaultPMRate
	default:
		if developerRate > 0 {
			return developerRate
		}
		return DefaultDeveloperRate
	}
}

// 团队默认配置
const (
	DefaultHoursPerWeek = 40
	DefaultTeamSize     = 1
	DefaultDevelopers   = 1
	DefaultQAMembers    = 0
	DefaultHoursPerDay  = 8
)

// DefaultWorkDays 默认工作日（西语缩写：周一至周五）
var DefaultWorkDays = []string{"L", "M", "Mi", "J", "V"}

// ValidPhase 判断是否为合法阶段
func ValidPhase(p Phase) bool {
	_, ok := PhaseDistributionTable[p]
	return ok
}

// ValidRole 判断是否为合法角色
func ValidRole(r Role) bool {
	return r == RoleDeveloper || r == RoleQA || r == RolePM
}
