package handler

import (
	"errors"
	"strconv"

	"github.com/camilo-Anthony/PlanDev/internal/planner/repository"
	"github.com/camilo-Anthony/PlanDev/internal/planner/service"
	"github.com/camilo-Anthony/PlanDev/internal/shared/ai"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Project *ProjectHandler
	Plan    *PlanHandler
	Module  *ModuleHandler
	Task    *TaskHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Project: NewProjectHandler(svc.Project),
		Plan:    NewPlanHandler(svc.Plan, svc.Recalc),
		Module:  NewModuleHandler(svc.Module),
		Task:    NewTaskHandler(svc.Task),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// Forbidden 禁止访问响应
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// Conflict 资源冲突响应
func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// HandleError 集中式错误到HTTP状态的映射
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "Recurso no encontrado")
	case errors.Is(err, service.ErrForbidden):
		Forbidden(c, "No autorizado")
	case errors.Is(err, service.ErrGenerationInProgress):
		Conflict(c, "Ya hay una generación en curso para este proyecto")
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrNoPlan):
		BadRequest(c, err.Error())
	case errors.Is(err, ai.ErrParse):
		// 生成方返回了无法解析的内容
		Error(c, 42200, err.Error())
	case errors.Is(err, ai.ErrUpstream), errors.Is(err, ai.ErrMissingAPIKey):
		Error(c, 50300, "El servicio de generación no está disponible")
	default:
		InternalError(c, err.Error())
	}
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, limit int) {
	page = 1
	limit = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	return page, limit
}
