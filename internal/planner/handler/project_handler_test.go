package handler

import (
	"net/http"
	"testing"

	"github.com/camilo-Anthony/PlanDev/internal/planner/testutil"
	"github.com/gin-gonic/gin"
)

func createProject(t *testing.T, router *gin.Engine, token, name string) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{
		"name":          name,
		"type":          "web",
		"currency":      "USD",
		"description":   "Plataforma de reservas para restaurantes",
		"objective":     "Digitalizar las reservas",
		"userRoles":     "admin, cliente",
		"features":      "Reservas\nCalendario\nNotificaciones",
		"integrations":  "Stripe, SendGrid",
		"hasPayments":   true,
		"developerRate": 55,
		"hoursPerWeek":  40,
		"teamSize":      1,
		"complexity":    "medium",
	}

	w := testutil.DoRequest(router, "POST", "/api/v1/projects", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return testutil.ParseResponse(w)["data"].(map[string]interface{})
}

func TestProjectCreate(t *testing.T) {
	router, _ := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	project := createProject(t, router, token, "Reservas Online")

	if project["id"] == nil || project["id"] == "" {
		t.Error("Expected non-empty id")
	}
	if project["name"] != "Reservas Online" {
		t.Errorf("Expected name 'Reservas Online', got %v", project["name"])
	}

	cfg := project["config"].(map[string]interface{})
	if cfg["developer_rate"] != 55.0 {
		t.Errorf("Expected developer_rate 55, got %v", cfg["developer_rate"])
	}

	reqs := project["requirements"].(map[string]interface{})
	if reqs["has_payments"] != true {
		t.Error("Expected has_payments true")
	}
}

func TestProjectCreateRequiresName(t *testing.T) {
	router, _ := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/projects",
		map[string]string{"type": "web"}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
}

func TestProjectList(t *testing.T) {
	router, _ := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	createProject(t, router, token, "Proyecto A")
	createProject(t, router, token, "Proyecto B")

	// Another user's project must not show up.
	otherToken := testutil.GenerateTestToken("other-user", "Other", "other@test.com")
	createProject(t, router, otherToken, "Proyecto Ajeno")

	w := testutil.DoRequest(router, "GET", "/api/v1/projects", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["total"] != 2.0 {
		t.Errorf("Expected total 2, got %v", data["total"])
	}
	if data["has_more"] != false {
		t.Errorf("Expected has_more false, got %v", data["has_more"])
	}
}

func TestProjectListSearch(t *testing.T) {
	router, _ := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	createProject(t, router, token, "Tienda Online")
	createProject(t, router, token, "Blog Personal")

	w := testutil.DoRequest(router, "GET", "/api/v1/projects?search=tienda", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["total"] != 1.0 {
		t.Errorf("Expected 1 match, got %v", data["total"])
	}
	projects := data["projects"].([]interface{})
	if len(projects) != 1 || projects[0].(map[string]interface{})["name"] != "Tienda Online" {
		t.Errorf("Expected only 'Tienda Online', got %v", projects)
	}
}

func TestProjectGet(t *testing.T) {
	router, _ := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	created := createProject(t, router, token, "Detalle")
	id := created["id"].(string)

	w := testutil.DoRequest(router, "GET", "/api/v1/projects/"+id, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["name"] != "Detalle" {
		t.Errorf("Expected name 'Detalle', got %v", data["name"])
	}
}

func TestProjectGetForbiddenForOtherUser(t *testing.T) {
	router, _ := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	created := createProject(t, router, token, "Privado")
	id := created["id"].(string)

	otherToken := testutil.GenerateTestToken("intruder", "Intruder", "x@test.com")
	w := testutil.DoRequest(router, "GET", "/api/v1/projects/"+id, nil, otherToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProjectGetNotFound(t *testing.T) {
	router, _ := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "GET", "/api/v1/projects/no-such-id", nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}
}

func TestProjectUpdate(t *testing.T) {
	router, _ := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	created := createProject(t, router, token, "Nombre Viejo")
	id := created["id"].(string)

	w := testutil.DoRequest(router, "PUT", "/api/v1/projects/"+id,
		map[string]string{"name": "Nombre Nuevo"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["name"] != "Nombre Nuevo" {
		t.Errorf("Expected name 'Nombre Nuevo', got %v", data["name"])
	}
}

func TestProjectDelete(t *testing.T) {
	router, _ := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	created := createProject(t, router, token, "Para Borrar")
	id := created["id"].(string)

	w := testutil.DoRequest(router, "DELETE", "/api/v1/projects/"+id, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/projects/"+id, nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 after delete, got %d", w.Code)
	}
}

func TestProjectUpdateConfig(t *testing.T) {
	router, _ := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	created := createProject(t, router, token, "Con Config")
	id := created["id"].(string)

	w := testutil.DoRequest(router, "PUT", "/api/v1/projects/"+id+"/config",
		map[string]interface{}{"developerRate": 75, "teamSize": 2}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["developer_rate"] != 75.0 {
		t.Errorf("Expected developer_rate 75, got %v", data["developer_rate"])
	}
	if data["team_size"] != 2.0 {
		t.Errorf("Expected team_size 2, got %v", data["team_size"])
	}
	// Untouched fields keep their value
	if data["hours_per_week"] != 40.0 {
		t.Errorf("Expected hours_per_week 40, got %v", data["hours_per_week"])
	}
}

func TestProjectDuplicate(t *testing.T) {
	router, db := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	created := createProject(t, router, token, "Original")
	id := created["id"].(string)
	testutil.SeedPlan(t, db, id)

	w := testutil.DoRequest(router, "POST", "/api/v1/projects/"+id+"/duplicate", nil, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["name"] != "Original (copia)" {
		t.Errorf("Expected copy name, got %v", data["name"])
	}
	copyID := data["id"].(string)
	if copyID == id {
		t.Error("Expected a new project id")
	}

	// The copy carries the plan but not the history or share state.
	w = testutil.DoRequest(router, "GET", "/api/v1/projects/"+copyID, nil, token)
	copyData := testutil.ParseResponse(w)["data"].(map[string]interface{})
	modules := copyData["modules"].([]interface{})
	if len(modules) != 1 {
		t.Fatalf("Expected 1 copied module, got %d", len(modules))
	}
	if copyData["share_token"] != nil {
		t.Error("Expected copy without share token")
	}
}

func TestProjectShareFlow(t *testing.T) {
	router, _ := setupPlannerTest(t)
	token := testutil.DefaultTestToken()

	created := createProject(t, router, token, "Compartido")
	id := created["id"].(string)

	w := testutil.DoRequest(router, "POST", "/api/v1/projects/"+id+"/share", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	shareToken, _ := data["share_token"].(string)
	if len(shareToken) != 32 {
		t.Fatalf("Expected 32-char hex token, got %q", shareToken)
	}

	// Public access without auth
	w = testutil.DoRequest(router, "GET", "/api/v1/shared/"+shareToken, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on shared link, got %d: %s", w.Code, w.Body.String())
	}
	shared := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if shared["name"] != "Compartido" {
		t.Errorf("Expected shared project name, got %v", shared["name"])
	}

	// Revoke and verify the link dies
	w = testutil.DoRequest(router, "DELETE", "/api/v1/projects/"+id+"/share", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on unshare, got %d", w.Code)
	}
	w = testutil.DoRequest(router, "GET", "/api/v1/shared/"+shareToken, nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 after unshare, got %d", w.Code)
	}
}

func TestProjectRequiresAuth(t *testing.T) {
	router, _ := setupPlannerTest(t)

	w := testutil.DoRequest(router, "GET", "/api/v1/projects", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
}
