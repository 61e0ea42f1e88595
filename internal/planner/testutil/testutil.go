package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/camilo-Anthony/PlanDev/internal/middleware"
	"github.com/camilo-Anthony/PlanDev/internal/planner/entity"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestSchema = "test_plandev"
	JWTSecret  = "plandev-jwt-secret-key-2025"
)

// TestEnv holds test environment resources
type TestEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	T      *testing.T
}

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// loadEnv loads .env from the project root
func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB creates a test database connection using a dedicated test schema.
// Each test gets an isolated schema that is cleaned up after the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "plandev")
	password := getEnv("DB_PASSWORD", "plandev")
	dbname := getEnv("DB_NAME", "plandev")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// Create a unique test schema for isolation
	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	// First: create schema using a temporary connection
	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to database for schema setup: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// Second: open connection with search_path in DSN so ALL pooled connections use test schema
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Migrate test tables
	err = db.AutoMigrate(
		&entity.Project{},
		&entity.ProjectConfig{},
		&entity.Requirement{},
		&entity.Technical{},
		&entity.Module{},
		&entity.Task{},
		&entity.Proposal{},
		&entity.PlanHistory{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	// Cleanup on test completion
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		// Reconnect to drop the schema
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID, name, email string) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"uid":   userID,
		"name":  name,
		"email": email,
		"iss":   "plandev",
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
		"jti":   fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DefaultTestToken returns a token for a default test user
func DefaultTestToken() string {
	return GenerateTestToken("test-user-001", "Test User", "test@plandev.dev")
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a generic map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedProject creates a project with config and requirements for tests
func SeedProject(t *testing.T, db *gorm.DB, userID, name string) *entity.Project {
	t.Helper()

	projectID := uuid.New().String()
	objective := "Probar el flujo completo"
	project := &entity.Project{
		ID:       projectID,
		UserID:   userID,
		Name:     name,
		Type:     "web",
		Currency: "USD",
		Language: "es",
		Config: &entity.ProjectConfig{
			ID:             uuid.New().String(),
			ProjectID:      projectID,
			DeveloperRate:  50,
			QARate:         40,
			PMRate:         60,
			HoursPerWeek:   40,
			TeamSize:       1,
			Developers:     1,
			Complexity:     "medium",
			ClientType:     "startup",
			Deadline:       "normal",
			FreelancerName: "Test Freelancer",
		},
		Requirement: &entity.Requirement{
			ID:                  uuid.New().String(),
			ProjectID:           projectID,
			Description:         "Una plataforma web de gestión de reservas",
			Objective:           &objective,
			UserRoles:           `["admin","cliente"]`,
			Features:            `["Reservas","Calendario","Notificaciones"]`,
			Integrations:        `["Stripe"]`,
			HasPayments:         true,
			ScreenCount:         "medium",
			RequirementsClarity: "moderate",
		},
		Technical: &entity.Technical{
			ID:        uuid.New().String(),
			ProjectID: projectID,
		},
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("Failed to seed project: %v", err)
	}
	return project
}

// SeedPlan creates a module with tasks and a proposal on an existing project
func SeedPlan(t *testing.T, db *gorm.DB, projectID string) *entity.Module {
	t.Helper()

	mod := &entity.Module{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Name:        "Módulo base",
		Description: "Funcionalidad principal",
		Order:       0,
		Tasks: []entity.Task{
			{
				ID:               uuid.New().String(),
				Name:             "Implementar API de reservas",
				Phase:            "development",
				Role:             "developer",
				Order:            0,
				HoursOptimistic:  4,
				HoursMostLikely:  8,
				HoursPessimistic: 12,
				HoursExpected:    8,
				HoursDeviation:   (12.0 - 4.0) / 6.0,
				EstimatedHours:   8,
				Status:           entity.TaskStatusPending,
			},
			{
				ID:               uuid.New().String(),
				Name:             "Pruebas de reservas",
				Phase:            "testing",
				Role:             "qa",
				Order:            1,
				HoursOptimistic:  2,
				HoursMostLikely:  3,
				HoursPessimistic: 4,
				HoursExpected:    3,
				HoursDeviation:   (4.0 - 2.0) / 6.0,
				EstimatedHours:   3,
				Status:           entity.TaskStatusPending,
			},
		},
	}
	for i := range mod.Tasks {
		mod.Tasks[i].ModuleID = mod.ID
	}
	if err := db.Create(mod).Error; err != nil {
		t.Fatalf("Failed to seed module: %v", err)
	}

	proposal := &entity.Proposal{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		Content:    "Propuesta de prueba",
		BaseHours:  11,
		TotalHours: 11,
		TotalCost:  520,
		Duration:   "1 semanas",
	}
	if err := db.Create(proposal).Error; err != nil {
		t.Fatalf("Failed to seed proposal: %v", err)
	}
	return mod
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
