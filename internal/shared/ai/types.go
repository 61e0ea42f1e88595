package ai

import "github.com/camilo-Anthony/PlanDev/internal/estimation"

// GeneratedTask AI生成的任务
type GeneratedTask struct {
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	Phase            estimation.Phase `json:"phase"`
	Role             estimation.Role  `json:"role"`
	HoursOptimistic  float64          `json:"hoursOptimistic"`
	HoursMostLikely  float64          `json:"hoursMostLikely"`
	HoursPessimistic float64          `json:"hoursPessimistic"`
	HoursExpected    float64          `json:"hoursExpected"`
}

// Estimate 任务的三点估算视图
func (t GeneratedTask) Estimate() estimation.PertEstimate {
	return estimation.PertEstimate{
		Optimistic:  t.HoursOptimistic,
		MostLikely:  t.HoursMostLikely,
		Pessimistic: t.HoursPessimistic,
	}
}

// GeneratedModule AI生成的模块
type GeneratedModule struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Tasks       []GeneratedTask `json:"tasks"`
}

// GeneratedPlan AI生成的完整计划
type GeneratedPlan struct {
	Modules            []GeneratedModule `json:"modules"`
	ProposalContent    string            `json:"proposalContent"`
	BaseHours          float64           `json:"baseHours"`
	ContingencyPercent float64           `json:"contingencyPercent"`
	ContingencyHours   float64           `json:"contingencyHours"`
	TotalHours         float64           `json:"totalHours"`
}

// Tasks 展平所有模块的任务
func (p *GeneratedPlan) Tasks() []GeneratedTask {
	var tasks []GeneratedTask
	for _, m := range p.Modules {
		tasks = append(tasks, m.Tasks...)
	}
	return tasks
}

// PlanInput 计划生成的输入数据
type PlanInput struct {
	ProjectName  string
	ProjectType  string
	Description  string
	Objective    string
	UserRoles    []string
	Features     []string
	Integrations []string

	Architecture   string
	Frontend       string
	Backend        string
	Database       string
	Infrastructure string
	Constraints    string

	Currency      string
	DeveloperRate float64
	QARate        float64
	PMRate        float64

	Complexity  string
	ClientType  string
	Deadline    string
	BudgetRange string

	Developers   int
	QAMembers    int
	HoursPerWeek int
	TeamSize     int

	HasPayments         bool
	ScreenCount         string
	RequirementsClarity string
}
