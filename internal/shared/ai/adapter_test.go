package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

// stubProvider serves a canned chat-completions response.
func stubProvider(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 2 {
			t.Errorf("expected system+user messages, got %d", len(req.Messages))
		}

		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":"upstream failure"}`))
			return
		}
		body := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(body)
	}))
}

func newTestAdapter(t *testing.T, serverURL string) *Adapter {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "AGENT.md"), []byte("Eres un estimador de proyectos."), 0o644); err != nil {
		t.Fatalf("write agent prompt: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "templates"), 0o755); err != nil {
		t.Fatalf("mkdir templates: %v", err)
	}

	client, err := NewClient(ClientConfig{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	cache := NewPromptCache(dir, zap.NewNop())
	return NewAdapter(client, NewPromptBuilder(cache), zap.NewNop())
}

func testPlanInput() PlanInput {
	return PlanInput{
		ProjectName:  "Tienda Norte",
		ProjectType:  "ecommerce-basic",
		Description:  "Tienda en línea con catálogo y pagos",
		Features:     []string{"Catálogo", "Carrito"},
		HoursPerWeek: 40,
		TeamSize:     1,
	}
}

const validPlanJSON = `{
  "modules": [
    {
      "name": "Autenticación",
      "description": "Registro y acceso",
      "tasks": [
        {"name": "Registro", "phase": "development", "role": "developer",
         "hoursOptimistic": 4, "hoursMostLikely": 8, "hoursPessimistic": 12, "hoursExpected": 8},
        {"name": "Pruebas de acceso", "phase": "testing", "role": "qa",
         "hoursOptimistic": 2, "hoursMostLikely": 3, "hoursPessimistic": 4, "hoursExpected": 3}
      ]
    }
  ],
  "proposalContent": "Propuesta para Tienda Norte",
  "baseHours": 11,
  "contingencyPercent": 0.15,
  "contingencyHours": 2,
  "totalHours": 13
}`

func TestGeneratePlanParsesValidResponse(t *testing.T) {
	server := stubProvider(t, http.StatusOK, validPlanJSON)
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	plan, err := adapter.GeneratePlan(context.Background(), testPlanInput())
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if len(plan.Modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(plan.Modules))
	}
	if len(plan.Modules[0].Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(plan.Modules[0].Tasks))
	}
	if plan.BaseHours != 11 {
		t.Errorf("BaseHours = %v, want 11", plan.BaseHours)
	}
}

func TestGeneratePlanStripsCodeFences(t *testing.T) {
	server := stubProvider(t, http.StatusOK, "```json\n"+validPlanJSON+"\n```")
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	plan, err := adapter.GeneratePlan(context.Background(), testPlanInput())
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if plan.ProposalContent != "Propuesta para Tienda Norte" {
		t.Errorf("ProposalContent = %q", plan.ProposalContent)
	}
}

func TestGeneratePlanRepairsTruncatedJSON(t *testing.T) {
	// Response cut mid-stream after a complete task object.
	truncated := `{"modules": [{"name": "Núcleo", "tasks": [
		{"name": "Modelo de datos", "phase": "development", "role": "developer",
		 "hoursOptimistic": 4, "hoursMostLikely": 8, "hoursPessimistic": 12, "hoursExpected": 8}`
	server := stubProvider(t, http.StatusOK, truncated)
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	plan, err := adapter.GeneratePlan(context.Background(), testPlanInput())
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if len(plan.Modules) != 1 || len(plan.Modules[0].Tasks) != 1 {
		t.Fatalf("unexpected plan shape after repair: %+v", plan)
	}
	if plan.Modules[0].Tasks[0].HoursExpected != 8 {
		t.Errorf("HoursExpected = %v, want 8", plan.Modules[0].Tasks[0].HoursExpected)
	}
}

func TestGeneratePlanRejectsGarbage(t *testing.T) {
	server := stubProvider(t, http.StatusOK, "Lo siento, no puedo generar el plan en este momento.")
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	_, err := adapter.GeneratePlan(context.Background(), testPlanInput())
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestGeneratePlanRejectsEmptyModules(t *testing.T) {
	server := stubProvider(t, http.StatusOK, `{"modules": [], "baseHours": 0}`)
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	_, err := adapter.GeneratePlan(context.Background(), testPlanInput())
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse for empty modules, got %v", err)
	}
}

func TestGeneratePlanRejectsUnknownPhase(t *testing.T) {
	bad := `{"modules": [{"name": "Núcleo", "tasks": [
		{"name": "Tarea", "phase": "construction", "role": "developer",
		 "hoursOptimistic": 1, "hoursMostLikely": 2, "hoursPessimistic": 3, "hoursExpected": 2}]}]}`
	server := stubProvider(t, http.StatusOK, bad)
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	_, err := adapter.GeneratePlan(context.Background(), testPlanInput())
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse for unknown phase, got %v", err)
	}
}

func TestGeneratePlanRejectsNegativeHours(t *testing.T) {
	bad := `{"modules": [{"name": "Núcleo", "tasks": [
		{"name": "Tarea", "phase": "development", "role": "developer",
		 "hoursOptimistic": -4, "hoursMostLikely": 8, "hoursPessimistic": 12, "hoursExpected": 8}]}]}`
	server := stubProvider(t, http.StatusOK, bad)
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	_, err := adapter.GeneratePlan(context.Background(), testPlanInput())
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse for negative hours, got %v", err)
	}
}

func TestGeneratePlanCorrectsAggregateDrift(t *testing.T) {
	// Reported baseHours drifts far from the task detail: the detail wins.
	drifted := `{
	  "modules": [{"name": "Núcleo", "tasks": [
	    {"name": "A", "phase": "development", "role": "developer",
	     "hoursOptimistic": 8, "hoursMostLikely": 16, "hoursPessimistic": 24, "hoursExpected": 16},
	    {"name": "B", "phase": "development", "role": "developer",
	     "hoursOptimistic": 4, "hoursMostLikely": 8, "hoursPessimistic": 12, "hoursExpected": 8}]}],
	  "baseHours": 100,
	  "contingencyPercent": 0.2,
	  "contingencyHours": 20,
	  "totalHours": 120
	}`
	server := stubProvider(t, http.StatusOK, drifted)
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	plan, err := adapter.GeneratePlan(context.Background(), testPlanInput())
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if plan.BaseHours != 24 {
		t.Errorf("BaseHours = %v, want 24", plan.BaseHours)
	}
	if plan.ContingencyHours != 5 {
		t.Errorf("ContingencyHours = %v, want 5 (24*0.2 rounded)", plan.ContingencyHours)
	}
	if plan.TotalHours != 29 {
		t.Errorf("TotalHours = %v, want 29", plan.TotalHours)
	}
}

func TestGeneratePlanKeepsConsistentAggregate(t *testing.T) {
	server := stubProvider(t, http.StatusOK, validPlanJSON)
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	plan, err := adapter.GeneratePlan(context.Background(), testPlanInput())
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	// Sum of hoursExpected is 11, matching the reported value: untouched.
	if plan.TotalHours != 13 {
		t.Errorf("TotalHours = %v, want 13", plan.TotalHours)
	}
}

func TestGeneratePlanUpstreamError(t *testing.T) {
	server := stubProvider(t, http.StatusInternalServerError, "")
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	_, err := adapter.GeneratePlan(context.Background(), testPlanInput())
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
