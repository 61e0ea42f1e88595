package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/camilo-Anthony/PlanDev/internal/planner/repository"
	"github.com/camilo-Anthony/PlanDev/internal/planner/service"
	"github.com/camilo-Anthony/PlanDev/internal/planner/testutil"
	"github.com/camilo-Anthony/PlanDev/internal/shared/ai"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupPlannerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	return setupPlanner(t, nil)
}

// setupPlannerTestWithAI wires a real adapter against a stub provider
// that always answers with the given content
func setupPlannerTestWithAI(t *testing.T, content string) (*gin.Engine, *gorm.DB) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "AGENT.md"), []byte("Eres un estimador de proyectos."), 0o644); err != nil {
		t.Fatalf("write agent prompt: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "templates"), 0o755); err != nil {
		t.Fatalf("mkdir templates: %v", err)
	}

	client, err := ai.NewClient(ai.ClientConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	adapter := ai.NewAdapter(client, ai.NewPromptBuilder(ai.NewPromptCache(dir, zap.NewNop())), zap.NewNop())

	return setupPlanner(t, adapter)
}

func setupPlanner(t *testing.T, adapter *ai.Adapter) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, db, nil, adapter, nil, nil, zap.NewNop())
	handlers := NewHandlers(services)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")

	router.GET("/api/v1/shared/:token", handlers.Project.GetShared)

	projects := api.Group("/projects")
	projects.GET("", handlers.Project.List)
	projects.POST("", handlers.Project.Create)
	projects.GET("/:id", handlers.Project.Get)
	projects.PUT("/:id", handlers.Project.Update)
	projects.DELETE("/:id", handlers.Project.Delete)
	projects.PUT("/:id/config", handlers.Project.UpdateConfig)
	projects.POST("/:id/duplicate", handlers.Project.Duplicate)
	projects.POST("/:id/share", handlers.Project.Share)
	projects.DELETE("/:id/share", handlers.Project.Unshare)
	projects.POST("/:id/generate", handlers.Plan.Generate)
	projects.POST("/:id/recalculate", handlers.Plan.Recalculate)
	projects.GET("/:id/history", handlers.Plan.History)
	projects.POST("/:id/history", handlers.Plan.Restore)

	modules := api.Group("/modules")
	modules.POST("", handlers.Module.Create)
	modules.PUT("/:id", handlers.Module.Update)
	modules.DELETE("/:id", handlers.Module.Delete)

	tasks := api.Group("/tasks")
	tasks.POST("", handlers.Task.Create)
	tasks.PUT("/:id", handlers.Task.Update)
	tasks.DELETE("/:id", handlers.Task.Delete)

	return router, db
}
