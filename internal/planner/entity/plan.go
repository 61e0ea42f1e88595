package entity

import (
	"time"
)

// 任务状态
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

// Module 计划模块：一次生成产出的功能分组
type Module struct {
	ID                 string    `json:"id" gorm:"primaryKey;size:36"`
	ProjectID          string    `json:"project_id" gorm:"size:36;not null;index"`
	Name               string    `json:"name" gorm:"size:256;not null"`
	Description        string    `json:"description" gorm:"type:text"`
	Order              int       `json:"order" gorm:"column:sort_order;not null;default:0"`
	ContingencyPercent float64   `json:"contingency_percent" gorm:"not null;default:0"`
	ContingencyHours   float64   `json:"contingency_hours" gorm:"not null;default:0"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// 关联
	Tasks []Task `json:"tasks,omitempty" gorm:"foreignKey:ModuleID"`
}

func (Module) TableName() string {
	return "modules"
}

// Task 计划任务。三点估算字段与 estimatedHours 并存：
// estimatedHours 是当前可编辑值，生成时等于 hoursExpected
type Task struct {
	ID               string     `json:"id" gorm:"primaryKey;size:36"`
	ModuleID         string     `json:"module_id" gorm:"size:36;not null;index"`
	Name             string     `json:"name" gorm:"size:256;not null"`
	Description      string     `json:"description" gorm:"type:text"`
	Phase            string     `json:"phase" gorm:"size:16;not null;default:development"`
	Role             string     `json:"role" gorm:"size:16;not null;default:developer"`
	Order            int        `json:"order" gorm:"column:sort_order;not null;default:0"`
	HoursOptimistic  float64    `json:"hours_optimistic" gorm:"not null;default:0"`
	HoursMostLikely  float64    `json:"hours_most_likely" gorm:"not null;default:0"`
	HoursPessimistic float64    `json:"hours_pessimistic" gorm:"not null;default:0"`
	HoursExpected    float64    `json:"hours_expected" gorm:"not null;default:0"`
	HoursDeviation   float64    `json:"hours_deviation" gorm:"not null;default:0"`
	EstimatedHours   float64    `json:"estimated_hours" gorm:"not null;default:1"`
	ActualHours      *float64   `json:"actual_hours"`
	Status           string     `json:"status" gorm:"size:16;not null;default:pending"`
	UserStory        *string    `json:"user_story" gorm:"type:text"`
	DueDate          *time.Time `json:"due_date"`
	CompletedAt      *time.Time `json:"completed_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// 关联
	Module *Module `json:"module,omitempty" gorm:"foreignKey:ModuleID"`
}

func (Task) TableName() string {
	return "tasks"
}

// Proposal 商业提案：每个项目至多一份，保存聚合结果
type Proposal struct {
	ID                 string    `json:"id" gorm:"primaryKey;size:36"`
	ProjectID          string    `json:"project_id" gorm:"size:36;not null;uniqueIndex"`
	Content            string    `json:"content" gorm:"type:text"`
	BaseHours          float64   `json:"base_hours" gorm:"not null;default:0"`
	ContingencyPercent float64   `json:"contingency_percent" gorm:"not null;default:0"`
	ContingencyHours   float64   `json:"contingency_hours" gorm:"not null;default:0"`
	TotalHours         float64   `json:"total_hours" gorm:"not null;default:0"`
	TotalCost          float64   `json:"total_cost" gorm:"not null;default:0"`
	Duration           string    `json:"duration" gorm:"size:32"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Proposal) TableName() string {
	return "proposals"
}

// PlanHistorySchemaVersion 快照序列化格式版本，格式变更时递增
const PlanHistorySchemaVersion = 1

// PlanHistory 计划历史快照。modulesData/proposalData 保存
// 被替换前完整计划的JSON序列化，总时数/总成本冗余存储便于列表展示
type PlanHistory struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	ProjectID     string    `json:"project_id" gorm:"size:36;not null;index"`
	Version       int       `json:"version" gorm:"not null"`
	SchemaVersion int       `json:"schema_version" gorm:"not null;default:1"`
	ModulesData   string    `json:"modules_data,omitempty" gorm:"type:text;not null"`
	ProposalData  string    `json:"proposal_data,omitempty" gorm:"type:text"`
	TotalHours    float64   `json:"total_hours" gorm:"not null;default:0"`
	TotalCost     float64   `json:"total_cost" gorm:"not null;default:0"`
	Note          *string   `json:"note" gorm:"size:256"`
	CreatedAt     time.Time `json:"created_at"`
}

func (PlanHistory) TableName() string {
	return "plan_histories"
}
