package ai

import "strings"

// Detection 项目类型自动识别结果
type Detection struct {
	Type       string `json:"type"`
	Complexity string `json:"complexity"`
	Confidence string `json:"confidence"`
}

// DetectionInput 类型识别的输入文本来源
type DetectionInput struct {
	ProjectName  string
	Description  string
	Objective    string
	Features     []string
	Integrations []string
}

// 各类型的关键词表（含西语/英语写法），匹配顺序即优先级
var (
	landingKeywords  = []string{"landing", "aterrizaje", "campaña"}
	internalKeywords = []string{
		"hotel", "reservas", "gestión", "gestion", "sistema", "crud",
		"admin", "dashboard", "backoffice", "management",
	}
	portfolioKeywords        = []string{"portfolio", "portafolio"}
	portfolioComplexKeywords = []string{"cms", "blog", "admin", "multi-idioma", "galería dinámica"}
	ecommerceKeywords        = []string{"tienda", "ecommerce", "shop", "carrito", "productos", "checkout"}
	saasKeywords             = []string{"saas", "suscripción", "subscription", "multi-tenant", "planes", "membresías"}
	mobileKeywords           = []string{"móvil", "movil", "mobile", "react native", "ios", "android"}
	webAppKeywords           = []string{"app web", "webapp", "plataforma", "aplicación web"}
)

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// DetectProjectType 基于名称/描述/目标/功能/集成的关键词匹配，
// 按优先级识别项目类型。识别结果只影响本次生成的模板选择，
// 不回写项目的名义类型。
func DetectProjectType(input DetectionInput) Detection {
	fullText := strings.ToLower(strings.Join([]string{
		input.ProjectName,
		input.Description,
		input.Objective,
		strings.Join(input.Features, " "),
		strings.Join(input.Integrations, " "),
	}, " "))

	// 1. Landing page（最具体）
	if containsAny(fullText, landingKeywords) ||
		(strings.Contains(fullText, "página") && strings.Contains(fullText, "marketing")) {
		return Detection{Type: "landing-page", Complexity: "low", Confidence: "high"}
	}

	// 2. 内部系统（需排在泛化的 "app" 之前）
	if containsAny(fullText, internalKeywords) {
		return Detection{Type: "internal-system", Complexity: "medium", Confidence: "high"}
	}

	// 3. Portfolio（区分简单/复杂）
	if containsAny(fullText, portfolioKeywords) {
		if containsAny(fullText, portfolioComplexKeywords) {
			return Detection{Type: "portfolio-complex", Complexity: "high", Confidence: "high"}
		}
		return Detection{Type: "portfolio-simple", Complexity: "low", Confidence: "high"}
	}

	// 4. E-commerce
	if containsAny(fullText, ecommerceKeywords) {
		return Detection{Type: "ecommerce-basic", Complexity: "medium", Confidence: "high"}
	}

	// 5. SaaS
	if containsAny(fullText, saasKeywords) {
		return Detection{Type: "saas-mvp", Complexity: "high", Confidence: "high"}
	}

	// 6. 移动应用
	if containsAny(fullText, mobileKeywords) {
		return Detection{Type: "mobile-app", Complexity: "medium", Confidence: "high"}
	}

	// 7. Web应用（泛化匹配）
	if containsAny(fullText, webAppKeywords) {
		return Detection{Type: "web-app", Complexity: "medium", Confidence: "medium"}
	}

	// 默认：web应用，低置信度
	return Detection{Type: "web-app", Complexity: "medium", Confidence: "low"}
}

// projectTypeTemplates 项目类型到模板文件的直接映射
var projectTypeTemplates = map[string]string{
	"portfolio":         "portfolio-simple.md",
	"portafolio":        "portfolio-simple.md",
	"portfolio-simple":  "portfolio-simple.md",
	"portfolio-complex": "portfolio-complex.md",

	"ecommerce":       "ecommerce-basic.md",
	"ecommerce-basic": "ecommerce-basic.md",
	"tienda":          "ecommerce-basic.md",
	"shop":            "ecommerce-basic.md",

	"saas":     "saas-mvp.md",
	"saas-mvp": "saas-mvp.md",

	"landing":      "landing-page.md",
	"landing-page": "landing-page.md",
	"landing page": "landing-page.md",

	"mobile":     "mobile-app.md",
	"mobile-app": "mobile-app.md",
	"app-movil":  "mobile-app.md",
	"app movil":  "mobile-app.md",

	"internal":        "internal-system.md",
	"internal-system": "internal-system.md",
	"sistema-interno": "internal-system.md",
	"sistema interno": "internal-system.md",
	"sistema":         "internal-system.md",
	"crud":            "internal-system.md",
	"admin":           "internal-system.md",
	"backoffice":      "internal-system.md",
	"back-office":     "internal-system.md",
	"dashboard":       "internal-system.md",
	"gestión":         "internal-system.md",
	"gestion":         "internal-system.md",
	"management":      "internal-system.md",

	"web-app": "web-app.md",
	"webapp":  "web-app.md",
	"app-web": "web-app.md",
	"app web": "web-app.md",
}

// SelectTemplate 根据项目类型和复杂度选择模板文件名。
// 先查直接映射，再按关键词从具体到泛化匹配，兜底 web-app。
func SelectTemplate(projectType, complexity string) string {
	normalized := strings.ToLower(strings.TrimSpace(projectType))

	if name, ok := projectTypeTemplates[normalized]; ok {
		return name
	}

	switch {
	case strings.Contains(normalized, "landing"):
		return "landing-page.md"
	case strings.Contains(normalized, "internal"),
		strings.Contains(normalized, "interno"),
		strings.Contains(normalized, "crud"),
		strings.Contains(normalized, "admin"),
		strings.Contains(normalized, "sistema"),
		strings.Contains(normalized, "gestión"),
		strings.Contains(normalized, "gestion"),
		strings.Contains(normalized, "management"),
		strings.Contains(normalized, "backoffice"),
		strings.Contains(normalized, "dashboard"):
		return "internal-system.md"
	case strings.Contains(normalized, "portfolio"), strings.Contains(normalized, "portafolio"):
		if complexity == "high" {
			return "portfolio-complex.md"
		}
		return "portfolio-simple.md"
	case strings.Contains(normalized, "ecommerce"),
		strings.Contains(normalized, "tienda"),
		strings.Contains(normalized, "shop"):
		return "ecommerce-basic.md"
	case strings.Contains(normalized, "saas"),
		strings.Contains(normalized, "suscripción"),
		strings.Contains(normalized, "subscription"):
		return "saas-mvp.md"
	case strings.Contains(normalized, "mobile"), strings.Contains(normalized, "movil"):
		return "mobile-app.md"
	case strings.Contains(normalized, "app"):
		return "web-app.md"
	}

	return "web-app.md"
}
