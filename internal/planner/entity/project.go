package entity

import (
	"encoding/json"
	"time"
)

// Project 项目实体。一个项目聚合了配置、需求、技术栈、
// 生成的模块/任务、商业提案与历史快照。
type Project struct {
	ID         string     `json:"id" gorm:"primaryKey;size:36"`
	UserID     string     `json:"user_id" gorm:"size:36;not null;index"`
	Name       string     `json:"name" gorm:"size:128;not null"`
	Type       string     `json:"type" gorm:"size:32;not null;default:web"`
	Currency   string     `json:"currency" gorm:"size:8;not null;default:USD"`
	Language   string     `json:"language" gorm:"size:8;not null;default:es"`
	ShareToken *string    `json:"share_token,omitempty" gorm:"size:64;uniqueIndex"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty" gorm:"index"`

	// 关联
	Config      *ProjectConfig `json:"config,omitempty" gorm:"foreignKey:ProjectID"`
	Requirement *Requirement   `json:"requirements,omitempty" gorm:"foreignKey:ProjectID"`
	Technical   *Technical     `json:"technical,omitempty" gorm:"foreignKey:ProjectID"`
	Modules     []Module       `json:"modules,omitempty" gorm:"foreignKey:ProjectID"`
	Proposal    *Proposal      `json:"proposal,omitempty" gorm:"foreignKey:ProjectID"`
	History     []PlanHistory  `json:"history,omitempty" gorm:"foreignKey:ProjectID"`
}

func (Project) TableName() string {
	return "projects"
}

// ProjectConfig 项目配置：费率、团队规模与复杂度参数
type ProjectConfig struct {
	ID             string     `json:"id" gorm:"primaryKey;size:36"`
	ProjectID      string     `json:"project_id" gorm:"size:36;not null;uniqueIndex"`
	DeveloperRate  float64    `json:"developer_rate" gorm:"not null;default:50"`
	QARate         float64    `json:"qa_rate" gorm:"column:qa_rate;not null;default:40"`
	PMRate         float64    `json:"pm_rate" gorm:"column:pm_rate;not null;default:60"`
	HoursPerWeek   int        `json:"hours_per_week" gorm:"not null;default:40"`
	TeamSize       int        `json:"team_size" gorm:"not null;default:1"`
	Developers     int        `json:"developers" gorm:"not null;default:1"`
	QAMembers      int        `json:"qa_members" gorm:"column:qa_members;not null;default:0"`
	StartDate      *time.Time `json:"start_date" gorm:"type:date"`
	FreelancerName string     `json:"freelancer_name" gorm:"size:128"`
	Complexity     string     `json:"complexity" gorm:"size:16;not null;default:medium"`
	ClientType     string     `json:"client_type" gorm:"size:16;not null;default:startup"`
	Deadline       string     `json:"deadline" gorm:"size:16;not null;default:normal"`
	BudgetRange    *string    `json:"budget_range" gorm:"size:64"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (ProjectConfig) TableName() string {
	return "project_configs"
}

// WeeklyCapacity 每周团队产能（小时）。开发与QA成员计入，PM不计入
func (c *ProjectConfig) WeeklyCapacity() int {
	members := c.Developers + c.QAMembers
	if members < 1 {
		members = 1
	}
	capacity := c.HoursPerWeek * members
	if capacity < 1 {
		return 40
	}
	return capacity
}

// Requirement 项目需求。列表字段以JSON字符串落库
type Requirement struct {
	ID                  string    `json:"id" gorm:"primaryKey;size:36"`
	ProjectID           string    `json:"project_id" gorm:"size:36;not null;uniqueIndex"`
	Description         string    `json:"description" gorm:"type:text"`
	Objective           *string   `json:"objective" gorm:"type:text"`
	UserRoles           string    `json:"user_roles" gorm:"type:text;default:'[]'"`
	Features            string    `json:"features" gorm:"type:text;default:'[]'"`
	Integrations        string    `json:"integrations" gorm:"type:text;default:'[]'"`
	HasPayments         bool      `json:"has_payments" gorm:"not null;default:false"`
	ScreenCount         string    `json:"screen_count" gorm:"size:16;not null;default:medium"`
	RequirementsClarity string    `json:"requirements_clarity" gorm:"size:16;not null;default:moderate"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (Requirement) TableName() string {
	return "requirements"
}

// decodeList 解析JSON列表字段，解析失败返回空列表
func decodeList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{}
	}
	return out
}

func encodeList(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, _ := json.Marshal(items)
	return string(data)
}

func (r *Requirement) FeatureList() []string     { return decodeList(r.Features) }
func (r *Requirement) IntegrationList() []string { return decodeList(r.Integrations) }
func (r *Requirement) UserRoleList() []string    { return decodeList(r.UserRoles) }

func (r *Requirement) SetFeatureList(items []string)     { r.Features = encodeList(items) }
func (r *Requirement) SetIntegrationList(items []string) { r.Integrations = encodeList(items) }
func (r *Requirement) SetUserRoleList(items []string)    { r.UserRoles = encodeList(items) }

// Technical 技术栈说明
type Technical struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	ProjectID      string    `json:"project_id" gorm:"size:36;not null;uniqueIndex"`
	Architecture   *string   `json:"architecture" gorm:"size:256"`
	Frontend       *string   `json:"frontend" gorm:"size:256"`
	Backend        *string   `json:"backend" gorm:"size:256"`
	Database       *string   `json:"database" gorm:"size:256"`
	Infrastructure *string   `json:"infrastructure" gorm:"size:256"`
	Constraints    *string   `json:"constraints" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Technical) TableName() string {
	return "technicals"
}

// StackSummary 汇总非空的技术栈字段，用于提示词组装
func (t *Technical) StackSummary() []string {
	if t == nil {
		return nil
	}
	var parts []string
	for _, p := range []struct {
		label string
		value *string
	}{
		{"Arquitectura", t.Architecture},
		{"Frontend", t.Frontend},
		{"Backend", t.Backend},
		{"Base de datos", t.Database},
		{"Infraestructura", t.Infrastructure},
	} {
		if p.value != nil && *p.value != "" {
			parts = append(parts, p.label+": "+*p.value)
		}
	}
	return parts
}
