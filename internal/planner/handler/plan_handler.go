package handler

import (
	"fmt"

	"github.com/camilo-Anthony/PlanDev/internal/planner/service"
	"github.com/gin-gonic/gin"
)

// PlanHandler 计划处理器：生成、重算与历史管理
type PlanHandler struct {
	planSvc   *service.PlanService
	recalcSvc *service.RecalcService
}

// NewPlanHandler 创建计划处理器
func NewPlanHandler(planSvc *service.PlanService, recalcSvc *service.RecalcService) *PlanHandler {
	return &PlanHandler{planSvc: planSvc, recalcSvc: recalcSvc}
}

// Generate 为项目生成计划
// POST /api/v1/projects/:id/generate
func (h *PlanHandler) Generate(c *gin.Context) {
	// body 可选，仅携带历史备注
	var req service.GenerateRequest
	_ = c.ShouldBindJSON(&req)

	project, err := h.planSvc.Generate(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, project)
}

// Recalculate 根据当前任务重算提案
// POST /api/v1/projects/:id/recalculate
func (h *PlanHandler) Recalculate(c *gin.Context) {
	result, err := h.recalcSvc.Recalculate(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, result)
}

// History 获取计划历史
// GET /api/v1/projects/:id/history
func (h *PlanHandler) History(c *gin.Context) {
	history, err := h.planSvc.History(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, history)
}

// RestoreRequest 恢复历史版本请求
type RestoreRequest struct {
	HistoryID string `json:"historyId" binding:"required"`
}

// Restore 恢复历史版本
// POST /api/v1/projects/:id/history
func (h *PlanHandler) Restore(c *gin.Context) {
	var req RestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "historyId es requerido")
		return
	}

	project, version, err := h.planSvc.Restore(c.Request.Context(), c.Param("id"), GetUserID(c), req.HistoryID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{
		"message": fmt.Sprintf("Plan v%d restaurado", version),
		"project": project,
	})
}
