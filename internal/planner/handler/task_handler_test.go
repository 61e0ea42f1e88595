package handler

import (
	"net/http"
	"testing"

	"github.com/camilo-Anthony/PlanDev/internal/planner/entity"
	"github.com/camilo-Anthony/PlanDev/internal/planner/testutil"
)

func TestModuleCreate(t *testing.T) {
	router, _ := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	created := createProject(t, router, token, "Con Módulos")
	id := created["id"].(string)

	w := testutil.DoRequest(router, "POST", "/api/v1/modules", map[string]interface{}{
		"projectId":   id,
		"name":        "Pagos",
		"description": "Integración con Stripe",
		"order":       1,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["name"] != "Pagos" {
		t.Errorf("Expected name 'Pagos', got %v", data["name"])
	}
	if data["project_id"] != id {
		t.Errorf("Expected project_id %s, got %v", id, data["project_id"])
	}
}

func TestModuleUpdate(t *testing.T) {
	router, db := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	created := createProject(t, router, token, "Editar Módulo")
	mod := testutil.SeedPlan(t, db, created["id"].(string))

	w := testutil.DoRequest(router, "PUT", "/api/v1/modules/"+mod.ID,
		map[string]string{"name": "Módulo renombrado"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["name"] != "Módulo renombrado" {
		t.Errorf("Expected renamed module, got %v", data["name"])
	}
}

func TestModuleDeleteRecalculatesProposal(t *testing.T) {
	router, db := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	created := createProject(t, router, token, "Borrar Módulo")
	id := created["id"].(string)
	mod := testutil.SeedPlan(t, db, id)

	w := testutil.DoRequest(router, "DELETE", "/api/v1/modules/"+mod.ID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var proposal entity.Proposal
	if err := db.Where("project_id = ?", id).First(&proposal).Error; err != nil {
		t.Fatalf("Failed to load proposal: %v", err)
	}
	if proposal.TotalHours != 0 {
		t.Errorf("Expected proposal hours 0 after module delete, got %v", proposal.TotalHours)
	}
}

func TestTaskCreateDefaults(t *testing.T) {
	router, db := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	created := createProject(t, router, token, "Crear Tarea")
	mod := testutil.SeedPlan(t, db, created["id"].(string))

	w := testutil.DoRequest(router, "POST", "/api/v1/tasks", map[string]interface{}{
		"moduleId": mod.ID,
		"name":     "Tarea manual",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["phase"] != "development" {
		t.Errorf("Expected default phase development, got %v", data["phase"])
	}
	if data["role"] != "developer" {
		t.Errorf("Expected default role developer, got %v", data["role"])
	}
	if data["estimated_hours"] != 1.0 {
		t.Errorf("Expected default 1h, got %v", data["estimated_hours"])
	}
	if data["status"] != "pending" {
		t.Errorf("Expected status pending, got %v", data["status"])
	}
}

func TestTaskUpdateHoursRecalculatesProposal(t *testing.T) {
	router, db := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	created := createProject(t, router, token, "Editar Horas")
	id := created["id"].(string)
	mod := testutil.SeedPlan(t, db, id)
	taskID := mod.Tasks[0].ID // 8h developer task

	w := testutil.DoRequest(router, "PUT", "/api/v1/tasks/"+taskID,
		map[string]interface{}{"estimatedHours": 20}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var proposal entity.Proposal
	if err := db.Where("project_id = ?", id).First(&proposal).Error; err != nil {
		t.Fatalf("Failed to load proposal: %v", err)
	}
	// 20h dev + 3h qa, no contingency on the seeded proposal
	if proposal.TotalHours != 23 {
		t.Errorf("Expected proposal total 23h, got %v", proposal.TotalHours)
	}
}

func TestTaskCompleteSetsTimestamp(t *testing.T) {
	router, db := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	created := createProject(t, router, token, "Completar Tarea")
	mod := testutil.SeedPlan(t, db, created["id"].(string))
	taskID := mod.Tasks[0].ID

	w := testutil.DoRequest(router, "PUT", "/api/v1/tasks/"+taskID,
		map[string]string{"status": "completed"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["status"] != "completed" {
		t.Errorf("Expected status completed, got %v", data["status"])
	}
	if data["completed_at"] == nil {
		t.Error("Expected completed_at to be set automatically")
	}
}

func TestTaskDelete(t *testing.T) {
	router, db := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	created := createProject(t, router, token, "Borrar Tarea")
	mod := testutil.SeedPlan(t, db, created["id"].(string))
	taskID := mod.Tasks[1].ID

	w := testutil.DoRequest(router, "DELETE", "/api/v1/tasks/"+taskID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&entity.Task{}).Where("id = ?", taskID).Count(&count)
	if count != 0 {
		t.Error("Expected task to be removed")
	}
}

func TestTaskNotFound(t *testing.T) {
	router, _ := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "PUT", "/api/v1/tasks/no-such-task",
		map[string]string{"name": "X"}, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}
}
