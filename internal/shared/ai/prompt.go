package ai

import (
	"fmt"
	"strings"

	"github.com/camilo-Anthony/PlanDev/internal/estimation"
)

// PromptBuilder 组装生成请求的提示词：主提示词 + 类型模板基线 +
// 项目事实 + 阶段占比参考表
type PromptBuilder struct {
	cache *PromptCache
}

// NewPromptBuilder 创建提示词构造器
func NewPromptBuilder(cache *PromptCache) *PromptBuilder {
	return &PromptBuilder{cache: cache}
}

// SystemPrompt 系统提示词（仅AGENT.md）
func (b *PromptBuilder) SystemPrompt() (string, error) {
	return b.cache.MasterAgent()
}

// PlanPrompt 构造用户提示词
func (b *PromptBuilder) PlanPrompt(input PlanInput) string {
	var sb strings.Builder

	if template, ok := b.cache.EstimationTemplate(input.ProjectType, input.Complexity); ok {
		sb.WriteString(templateSection(template))
	}

	sb.WriteString(projectInfoSection(input))
	sb.WriteString(phaseReferenceSection())
	sb.WriteString("\nResponde SOLO con JSON válido.\n")

	return sb.String()
}

// templateSection 模板段落，附带±5%容差的硬性指令
func templateSection(template string) string {
	return fmt.Sprintf(`
## 🚨 TEMPLATE OBLIGATORIO - ESTO ES UNA ORDEN, NO UNA SUGERENCIA

%s

---

# ⛔ REGLA ABSOLUTA

El template arriba especifica **"Horas base: XXh"**.
**ESE NÚMERO ES TU OBJETIVO EXACTO. NO ES NEGOCIABLE.**

## Tolerancia MÁXIMA: ±5%%

**ANTES de generar:** lee "Horas base" y calcula el rango [base × 0.95, base × 1.05].
**MIENTRAS generas:** mantén un contador del total y ajusta las horas.
**DESPUÉS de generar:** suma TODAS las hoursExpected; si no estás dentro de ±5%%, AJUSTA
(reduce cada tarea proporcionalmente o elimina módulos no esenciales).

**Tu respuesta será RECHAZADA si no cumples ±5%%.**

---
`, template)
}

// projectInfoSection 项目事实段落
func projectInfoSection(input PlanInput) string {
	developers := input.Developers
	if developers <= 0 {
		developers = estimation.DefaultDevelopers
	}
	hoursPerWeek := input.HoursPerWeek
	if hoursPerWeek <= 0 {
		hoursPerWeek = estimation.DefaultHoursPerWeek
	}
	teamSize := developers + input.QAMembers
	weeklyCapacity := hoursPerWeek * teamSize

	complexity := input.Complexity
	if complexity == "" {
		complexity = "medium"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n## INFORMACIÓN DEL PROYECTO\n\n")
	fmt.Fprintf(&sb, "**Nombre:** %s\n", input.ProjectName)
	fmt.Fprintf(&sb, "**Tipo:** %s\n", input.ProjectType)
	fmt.Fprintf(&sb, "**Moneda:** %s\n", input.Currency)
	fmt.Fprintf(&sb, "**Complejidad:** %s\n", complexity)

	fmt.Fprintf(&sb, "\n### Descripción\n%s\n", input.Description)

	if input.Objective != "" {
		fmt.Fprintf(&sb, "\n### Objetivo Principal\n%s\n", input.Objective)
	}

	fmt.Fprintf(&sb, "\n### Funcionalidades Clave\n%s\n", bulletList(input.Features, "No especificadas"))
	fmt.Fprintf(&sb, "\n### Integraciones Externas\n%s\n", bulletList(input.Integrations, "Ninguna"))

	fmt.Fprintf(&sb, "\n### Stack Técnico\n")
	fmt.Fprintf(&sb, "- Arquitectura: %s\n", orDefault(input.Architecture, "No especificada"))
	fmt.Fprintf(&sb, "- Frontend: %s\n", orDefault(input.Frontend, "No especificado"))
	fmt.Fprintf(&sb, "- Backend: %s\n", orDefault(input.Backend, "No especificado"))
	fmt.Fprintf(&sb, "- Base de datos: %s\n", orDefault(input.Database, "No especificada"))

	fmt.Fprintf(&sb, "\n### Contexto del Equipo\n")
	fmt.Fprintf(&sb, "- **Equipo:** %d dev(s), %d QA\n", developers, input.QAMembers)
	fmt.Fprintf(&sb, "- **Capacidad:** %d horas/semana\n", weeklyCapacity)
	fmt.Fprintf(&sb, "- **Pantallas UI:** %s\n", screenCountLabel(input.ScreenCount))

	return sb.String()
}

// phaseReferenceSection 阶段占比参考表
func phaseReferenceSection() string {
	return fmt.Sprintf(`
## DISTRIBUCIÓN POR FASES (Referencia)
- Análisis: %.0f%%
- Diseño: %.0f%%
- Desarrollo: %.0f%%
- Testing: %.0f%%
- Despliegue: %.0f%%
`,
		estimation.PhaseDistributionTable[estimation.PhaseAnalysis]*100,
		estimation.PhaseDistributionTable[estimation.PhaseDesign]*100,
		estimation.PhaseDistributionTable[estimation.PhaseDevelopment]*100,
		estimation.PhaseDistributionTable[estimation.PhaseTesting]*100,
		estimation.PhaseDistributionTable[estimation.PhaseDeployment]*100)
}

func bulletList(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- " + item)
	}
	return sb.String()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func screenCountLabel(screenCount string) string {
	switch screenCount {
	case "few":
		return "Pocas"
	case "many":
		return "Muchas"
	default:
		return "Cantidad media"
	}
}
