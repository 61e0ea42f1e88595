package ai

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestPlanPromptIncludesTemplateAndFacts(t *testing.T) {
	cache := NewPromptCache(setupPromptDir(t), zap.NewNop())
	b := NewPromptBuilder(cache)

	prompt := b.PlanPrompt(PlanInput{
		ProjectName:  "Tienda Norte",
		ProjectType:  "ecommerce-basic",
		Currency:     "USD",
		Complexity:   "medium",
		Description:  "Tienda en línea",
		Objective:    "Vender en línea",
		Features:     []string{"Catálogo", "Carrito"},
		Integrations: []string{"Stripe"},
		Frontend:     "React",
		HoursPerWeek: 40,
		Developers:   2,
		QAMembers:    1,
	})

	for _, want := range []string{
		"Horas base:** 150h",
		"TEMPLATE OBLIGATORIO",
		"**Nombre:** Tienda Norte",
		"**Moneda:** USD",
		"**Complejidad:** medium",
		"### Objetivo Principal\nVender en línea",
		"- Catálogo",
		"- Stripe",
		"- Frontend: React",
		"Responde SOLO con JSON válido.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestPlanPromptWeeklyCapacityCountsQA(t *testing.T) {
	cache := NewPromptCache(setupPromptDir(t), zap.NewNop())
	b := NewPromptBuilder(cache)

	prompt := b.PlanPrompt(PlanInput{
		ProjectName:  "Proyecto",
		ProjectType:  "web-app",
		HoursPerWeek: 40,
		Developers:   2,
		QAMembers:    1,
	})

	if !strings.Contains(prompt, "**Equipo:** 2 dev(s), 1 QA") {
		t.Error("prompt missing team breakdown")
	}
	if !strings.Contains(prompt, "**Capacidad:** 120 horas/semana") {
		t.Error("expected capacity 40h x 3 members")
	}
}

func TestPlanPromptDefaults(t *testing.T) {
	cache := NewPromptCache(setupPromptDir(t), zap.NewNop())
	b := NewPromptBuilder(cache)

	prompt := b.PlanPrompt(PlanInput{
		ProjectName: "Mínimo",
		ProjectType: "web-app",
	})

	for _, want := range []string{
		"**Complejidad:** medium",
		"No especificadas", // features
		"Ninguna",          // integrations
		"- Arquitectura: No especificada",
		"**Equipo:** 1 dev(s), 0 QA",
		"**Capacidad:** 40 horas/semana",
		"**Pantallas UI:** Cantidad media",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing default %q", want)
		}
	}
}

func TestPlanPromptSkipsMissingTemplate(t *testing.T) {
	// Only the ecommerce template exists in the fixture dir.
	cache := NewPromptCache(setupPromptDir(t), zap.NewNop())
	b := NewPromptBuilder(cache)

	prompt := b.PlanPrompt(PlanInput{ProjectName: "X", ProjectType: "saas-mvp"})
	if strings.Contains(prompt, "TEMPLATE OBLIGATORIO") {
		t.Error("expected no template section when template file is missing")
	}
	if !strings.Contains(prompt, "DISTRIBUCIÓN POR FASES") {
		t.Error("phase reference section missing")
	}
}

func TestPhaseReferenceSectionPercentages(t *testing.T) {
	section := phaseReferenceSection()
	for _, want := range []string{
		"Análisis: 10%",
		"Diseño: 15%",
		"Desarrollo: 50%",
		"Testing: 15%",
		"Despliegue: 10%",
	} {
		if !strings.Contains(section, want) {
			t.Errorf("section missing %q", want)
		}
	}
}
