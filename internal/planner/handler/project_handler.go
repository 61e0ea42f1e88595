package handler

import (
	"github.com/camilo-Anthony/PlanDev/internal/planner/service"
	"github.com/gin-gonic/gin"
)

// ProjectHandler 项目处理器
type ProjectHandler struct {
	svc *service.ProjectService
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// Create 创建项目
// POST /api/v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req service.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	project, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, project)
}

// List 分页获取当前用户的项目
// GET /api/v1/projects
func (h *ProjectHandler) List(c *gin.Context) {
	page, limit := GetPagination(c)

	result, err := h.svc.List(c.Request.Context(), GetUserID(c), page, limit, c.Query("search"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, result)
}

// Get 获取项目详情
// GET /api/v1/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.svc.Get(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, project)
}

// Update 更新项目
// PUT /api/v1/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var req service.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	project, err := h.svc.Update(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, project)
}

// Delete 删除项目
// DELETE /api/v1/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"success": true})
}

// UpdateConfig 更新项目配置
// PUT /api/v1/projects/:id/config
func (h *ProjectHandler) UpdateConfig(c *gin.Context) {
	var req service.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	cfg, err := h.svc.UpdateConfig(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, cfg)
}

// Duplicate 复制项目
// POST /api/v1/projects/:id/duplicate
func (h *ProjectHandler) Duplicate(c *gin.Context) {
	copyProject, err := h.svc.Duplicate(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, gin.H{"id": copyProject.ID, "name": copyProject.Name})
}

// Share 生成分享令牌
// POST /api/v1/projects/:id/share
func (h *ProjectHandler) Share(c *gin.Context) {
	token, err := h.svc.Share(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"share_token": token})
}

// Unshare 撤销分享令牌
// DELETE /api/v1/projects/:id/share
func (h *ProjectHandler) Unshare(c *gin.Context) {
	if err := h.svc.Unshare(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"success": true})
}

// GetShared 通过分享令牌公开访问项目
// GET /api/v1/shared/:token
func (h *ProjectHandler) GetShared(c *gin.Context) {
	project, err := h.svc.GetShared(c.Request.Context(), c.Param("token"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, project)
}
