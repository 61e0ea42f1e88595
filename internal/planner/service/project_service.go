package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/camilo-Anthony/PlanDev/internal/estimation"
	"github.com/camilo-Anthony/PlanDev/internal/planner/entity"
	"github.com/camilo-Anthony/PlanDev/internal/planner/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProjectService 项目服务
type ProjectService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewProjectService 创建项目服务
func NewProjectService(repos *repository.Repositories, logger *zap.Logger) *ProjectService {
	return &ProjectService{repos: repos, logger: logger}
}

// CreateProjectRequest 创建项目请求。列表字段接受逗号/换行分隔的原始文本
type CreateProjectRequest struct {
	Name                string     `json:"name" binding:"required"`
	Type                string     `json:"type"`
	Currency            string     `json:"currency"`
	Description         string     `json:"description"`
	Objective           string     `json:"objective"`
	UserRoles           string     `json:"userRoles"`
	Features            string     `json:"features"`
	Integrations        string     `json:"integrations"`
	HasPayments         bool       `json:"hasPayments"`
	ScreenCount         string     `json:"screenCount"`
	RequirementsClarity string     `json:"requirementsClarity"`
	DeveloperRate       float64    `json:"developerRate"`
	QARate              float64    `json:"qaRate"`
	PMRate              float64    `json:"pmRate"`
	HoursPerWeek        int        `json:"hoursPerWeek"`
	TeamSize            int        `json:"teamSize"`
	Developers          int        `json:"developers"`
	QAMembers           int        `json:"qaMembers"`
	StartDate           *time.Time `json:"startDate"`
	FreelancerName      string     `json:"freelancerName"`
	Complexity          string     `json:"complexity"`
	ClientType          string     `json:"clientType"`
	Deadline            string     `json:"deadline"`
	BudgetRange         string     `json:"budgetRange"`
	Architecture        string     `json:"architecture"`
	Frontend            string     `json:"frontend"`
	Backend             string     `json:"backend"`
	Database            string     `json:"database"`
	Infrastructure      string     `json:"infrastructure"`
	Constraints         string     `json:"constraints"`
}

// UpdateProjectRequest 更新项目请求
type UpdateProjectRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
}

// UpdateConfigRequest 更新项目配置请求，nil 字段保持不变
type UpdateConfigRequest struct {
	DeveloperRate  *float64   `json:"developerRate"`
	QARate         *float64   `json:"qaRate"`
	PMRate         *float64   `json:"pmRate"`
	HoursPerWeek   *int       `json:"hoursPerWeek"`
	TeamSize       *int       `json:"teamSize"`
	Developers     *int       `json:"developers"`
	QAMembers      *int       `json:"qaMembers"`
	StartDate      *time.Time `json:"startDate"`
	FreelancerName *string    `json:"freelancerName"`
	Complexity     *string    `json:"complexity"`
	ClientType     *string    `json:"clientType"`
	Deadline       *string    `json:"deadline"`
	BudgetRange    *string    `json:"budgetRange"`
}

// splitList 解析逗号或换行分隔的原始文本为去空白列表
func splitList(raw string, sep string) []string {
	if raw == "" {
		return []string{}
	}
	var items []string
	for _, part := range strings.Split(raw, sep) {
		if s := strings.TrimSpace(part); s != "" {
			items = append(items, s)
		}
	}
	if items == nil {
		return []string{}
	}
	return items
}

// Create 创建项目及其配置/需求/技术栈
func (s *ProjectService) Create(ctx context.Context, userID string, req *CreateProjectRequest) (*entity.Project, error) {
	projectID := uuid.New().String()

	complexity := req.Complexity
	// 前端的 "auto" 表示交给检测，落库按 medium 处理
	if complexity == "auto" || complexity == "" {
		complexity = string(estimation.ComplexityMedium)
	}

	project := &entity.Project{
		ID:       projectID,
		UserID:   userID,
		Name:     req.Name,
		Type:     defaultString(req.Type, "web"),
		Currency: defaultString(req.Currency, "USD"),
		Language: "es",
		Config: &entity.ProjectConfig{
			ID:             uuid.New().String(),
			ProjectID:      projectID,
			DeveloperRate:  defaultFloat(req.DeveloperRate, estimation.DefaultDeveloperRate),
			QARate:         defaultFloat(req.QARate, estimation.DefaultQARate),
			PMRate:         defaultFloat(req.PMRate, estimation.DefaultPMRate),
			HoursPerWeek:   defaultInt(req.HoursPerWeek, estimation.DefaultHoursPerWeek),
			TeamSize:       defaultInt(req.TeamSize, estimation.DefaultTeamSize),
			Developers:     defaultInt(req.Developers, estimation.DefaultDevelopers),
			QAMembers:      req.QAMembers,
			StartDate:      req.StartDate,
			FreelancerName: defaultString(req.FreelancerName, "Tu Nombre"),
			Complexity:     complexity,
			ClientType:     defaultString(req.ClientType, "startup"),
			Deadline:       defaultString(req.Deadline, "normal"),
			BudgetRange:    optionalString(req.BudgetRange),
		},
		Requirement: &entity.Requirement{
			ID:                  uuid.New().String(),
			ProjectID:           projectID,
			Description:         req.Description,
			Objective:           optionalString(req.Objective),
			HasPayments:         req.HasPayments,
			ScreenCount:         defaultString(req.ScreenCount, "medium"),
			RequirementsClarity: defaultString(req.RequirementsClarity, "moderate"),
		},
		Technical: &entity.Technical{
			ID:             uuid.New().String(),
			ProjectID:      projectID,
			Architecture:   optionalString(req.Architecture),
			Frontend:       optionalString(req.Frontend),
			Backend:        optionalString(req.Backend),
			Database:       optionalString(req.Database),
			Infrastructure: optionalString(req.Infrastructure),
			Constraints:    optionalString(req.Constraints),
		},
	}

	project.Requirement.SetUserRoleList(splitList(req.UserRoles, ","))
	project.Requirement.SetFeatureList(splitList(req.Features, "\n"))
	project.Requirement.SetIntegrationList(splitList(req.Integrations, ","))

	if err := s.repos.Project.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("Project created",
		zap.String("project_id", projectID),
		zap.String("user_id", userID))
	return project, nil
}

// Get 获取项目详情。非所有者仅在项目开启分享时可读
func (s *ProjectService) Get(ctx context.Context, id, userID string) (*entity.Project, error) {
	project, err := s.repos.Project.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID && project.ShareToken == nil {
		return nil, ErrForbidden
	}
	return project, nil
}

// GetShared 通过分享令牌获取项目（无需认证）
func (s *ProjectService) GetShared(ctx context.Context, token string) (*entity.Project, error) {
	return s.repos.Project.FindByShareToken(ctx, token)
}

// ProjectPage 项目分页结果
type ProjectPage struct {
	Projects   []entity.Project `json:"projects"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	Total      int64            `json:"total"`
	TotalPages int              `json:"total_pages"`
	HasMore    bool             `json:"has_more"`
}

// List 分页列出用户项目
func (s *ProjectService) List(ctx context.Context, userID string, page, limit int, search string) (*ProjectPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	projects, total, err := s.repos.Project.ListByUser(ctx, userID, page, limit, search)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ProjectPage{
		Projects:   projects,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    int64((page-1)*limit+len(projects)) < total,
	}, nil
}

// Update 更新项目基础字段
func (s *ProjectService) Update(ctx context.Context, id, userID string, req *UpdateProjectRequest) (*entity.Project, error) {
	project, err := s.repos.Project.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, ErrForbidden
	}

	if req.Name != "" {
		project.Name = req.Name
	}
	if req.Type != "" {
		project.Type = req.Type
	}
	if req.Currency != "" {
		project.Currency = req.Currency
	}

	if err := s.repos.Project.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete 删除项目
func (s *ProjectService) Delete(ctx context.Context, id, userID string) error {
	project, err := s.repos.Project.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if project.UserID != userID {
		return ErrForbidden
	}
	return s.repos.Project.Delete(ctx, id)
}

// UpdateConfig 更新项目配置，仅覆盖请求中出现的字段
func (s *ProjectService) UpdateConfig(ctx context.Context, projectID, userID string, req *UpdateConfigRequest) (*entity.ProjectConfig, error) {
	project, err := s.repos.Project.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, ErrForbidden
	}

	cfg, err := s.repos.Project.FindConfigByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if req.DeveloperRate != nil {
		cfg.DeveloperRate = *req.DeveloperRate
	}
	if req.QARate != nil {
		cfg.QARate = *req.QARate
	}
	if req.PMRate != nil {
		cfg.PMRate = *req.PMRate
	}
	if req.HoursPerWeek != nil {
		cfg.HoursPerWeek = *req.HoursPerWeek
	}
	if req.TeamSize != nil {
		cfg.TeamSize = *req.TeamSize
	}
	if req.Developers != nil {
		cfg.Developers = *req.Developers
	}
	if req.QAMembers != nil {
		cfg.QAMembers = *req.QAMembers
	}
	if req.StartDate != nil {
		cfg.StartDate = req.StartDate
	}
	if req.FreelancerName != nil {
		cfg.FreelancerName = *req.FreelancerName
	}
	if req.Complexity != nil {
		cfg.Complexity = *req.Complexity
	}
	if req.ClientType != nil {
		cfg.ClientType = *req.ClientType
	}
	if req.Deadline != nil {
		cfg.Deadline = *req.Deadline
	}
	if req.BudgetRange != nil {
		cfg.BudgetRange = req.BudgetRange
	}

	if err := s.repos.Project.UpdateConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Duplicate 复制项目：配置/需求/技术栈/模块/任务/提案全量复制，
// 历史快照与分享令牌不随副本走
func (s *ProjectService) Duplicate(ctx context.Context, id, userID string) (*entity.Project, error) {
	original, err := s.repos.Project.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if original.UserID != userID {
		return nil, ErrForbidden
	}

	newID := uuid.New().String()
	copyProject := &entity.Project{
		ID:       newID,
		UserID:   userID,
		Name:     original.Name + " (copia)",
		Type:     original.Type,
		Currency: original.Currency,
		Language: original.Language,
	}

	if original.Config != nil {
		cfg := *original.Config
		cfg.ID = uuid.New().String()
		cfg.ProjectID = newID
		cfg.CreatedAt = time.Time{}
		cfg.UpdatedAt = time.Time{}
		copyProject.Config = &cfg
	}
	if original.Requirement != nil {
		req := *original.Requirement
		req.ID = uuid.New().String()
		req.ProjectID = newID
		req.CreatedAt = time.Time{}
		req.UpdatedAt = time.Time{}
		copyProject.Requirement = &req
	}
	if original.Technical != nil {
		tech := *original.Technical
		tech.ID = uuid.New().String()
		tech.ProjectID = newID
		tech.CreatedAt = time.Time{}
		tech.UpdatedAt = time.Time{}
		copyProject.Technical = &tech
	}

	for _, mod := range original.Modules {
		newMod := entity.Module{
			ID:                 uuid.New().String(),
			ProjectID:          newID,
			Name:               mod.Name,
			Description:        mod.Description,
			Order:              mod.Order,
			ContingencyPercent: mod.ContingencyPercent,
			ContingencyHours:   mod.ContingencyHours,
		}
		for _, task := range mod.Tasks {
			t := task
			t.ID = uuid.New().String()
			t.ModuleID = newMod.ID
			t.Module = nil
			t.CreatedAt = time.Time{}
			t.UpdatedAt = time.Time{}
			newMod.Tasks = append(newMod.Tasks, t)
		}
		copyProject.Modules = append(copyProject.Modules, newMod)
	}

	if original.Proposal != nil {
		prop := *original.Proposal
		prop.ID = uuid.New().String()
		prop.ProjectID = newID
		prop.CreatedAt = time.Time{}
		prop.UpdatedAt = time.Time{}
		copyProject.Proposal = &prop
	}

	if err := s.repos.Project.Create(ctx, copyProject); err != nil {
		return nil, fmt.Errorf("failed to duplicate project: %w", err)
	}

	s.logger.Info("Project duplicated",
		zap.String("source_id", id),
		zap.String("copy_id", newID))
	return copyProject, nil
}

// Share 生成分享令牌
func (s *ProjectService) Share(ctx context.Context, id, userID string) (string, error) {
	project, err := s.repos.Project.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if project.UserID != userID {
		return "", ErrForbidden
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}
	token := hex.EncodeToString(buf)

	if err := s.repos.Project.UpdateShareToken(ctx, id, &token); err != nil {
		return "", err
	}
	return token, nil
}

// Unshare 撤销分享令牌
func (s *ProjectService) Unshare(ctx context.Context, id, userID string) error {
	project, err := s.repos.Project.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if project.UserID != userID {
		return ErrForbidden
	}
	return s.repos.Project.UpdateShareToken(ctx, id, nil)
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func defaultFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func defaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
