package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carenrueda/api-gestion/db"
	"github.com/carenrueda/api-gestion/internal/ai"
	"github.com/carenrueda/api-gestion/internal/auth"
	"github.com/carenrueda/api-gestion/internal/middleware"
	"github.com/carenrueda/api-gestion/internal/models"
	"github.com/carenrueda/api-gestion/internal/notifier"
	"github.com/carenrueda/api-gestion/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	auth.Init("test-secret")
}

// setupTest points the global connection at a fresh in-memory database
// and returns a router wired the same way main does it.
func setupTest(t *testing.T) *gin.Engine {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.DB = conn

	if err := db.MigrateDatabase(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := db.SeedStates(); err != nil {
		t.Fatalf("failed to seed states: %v", err)
	}
	if err := db.SeedRoles(); err != nil {
		t.Fatalf("failed to seed roles: %v", err)
	}

	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	return testRouter(store)
}

// testRouter mirrors router.NewRouter for the routes these tests touch;
// the router package is not imported here to avoid a cycle.
func testRouter(store *storage.LocalStore) *gin.Engine {
	aiHandler := NewAIHandler(ai.NewClient(""))
	uploads := NewUploadsHandler(store)
	email := NewEmailHandler(notifier.NewSMTPMailer("", 0, "", "", ""))

	r := gin.New()

	api := r.Group("/api")

	api.GET("/uploads/:name", uploads.ServeFile)

	api.POST("/auth/register", Register)
	api.POST("/auth/login", Login)
	api.POST("/auth/refresh", Refresh)

	users := api.Group("/users", middleware.AuthMiddleware())
	users.GET("", middleware.RequireAdmin(), ListUsers)
	users.GET("/profile", GetProfile)
	users.PUT("/profile", UpdateProfile)
	users.POST("/avatar", uploads.UploadAvatar)
	users.DELETE("/avatar", uploads.DeleteAvatar)
	users.DELETE("/:id", middleware.RequireAdmin(), DeleteUser)
	users.PUT("/:id/role", middleware.RequireAdmin(), ChangeRole)

	categories := api.Group("/categories", middleware.AuthMiddleware())
	categories.GET("", ListCategories)
	categories.POST("", middleware.RequireAdmin(), CreateCategory)
	categories.DELETE("/:id", middleware.RequireAdmin(), DeleteCategory)

	states := api.Group("/states", middleware.AuthMiddleware())
	states.GET("", ListStates)
	states.POST("", middleware.RequireAdmin(), CreateState)

	projects := api.Group("/projects", middleware.AuthMiddleware())
	projects.GET("", ListProjects)
	projects.POST("", CreateProject)
	projects.GET("/:id", GetProject)
	projects.PUT("/:id", UpdateProject)
	projects.DELETE("/:id", DeleteProject)
	projects.PATCH("/:id/status", ChangeProjectStatus)
	projects.POST("/:id/members", AddMember)
	projects.DELETE("/:id/members/:userId", RemoveMember)
	projects.GET("/:id/tasks", ListProjectTasks)
	projects.POST("/:id/tasks", CreateTask)
	projects.GET("/:id/comments", ListComments)
	projects.POST("/:id/comments", CreateComment)
	projects.POST("/:id/image", uploads.UploadProjectImage)
	projects.DELETE("/:id/image", uploads.DeleteProjectImage)
	projects.GET("/:id/ai/analyze", aiHandler.AnalyzeProject)

	tasks := api.Group("/tasks", middleware.AuthMiddleware())
	tasks.GET("/my", MyTasks)
	tasks.GET("/:id", GetTask)
	tasks.PUT("/:id", UpdateTask)
	tasks.DELETE("/:id", DeleteTask)
	tasks.PATCH("/:id/status", ChangeTaskStatus)
	tasks.PATCH("/:id/assign", AssignTask)

	comments := api.Group("/comments", middleware.AuthMiddleware())
	comments.PUT("/:id", EditComment)
	comments.DELETE("/:id", DeleteComment)

	api.POST("/email/test", middleware.AuthMiddleware(), middleware.RequireAdmin(), email.SendTestEmail)

	return r
}

func createUser(t *testing.T, email, roleName string) (models.User, string) {
	t.Helper()

	var role models.Role
	if err := db.DB.Where("name = ?", roleName).First(&role).Error; err != nil {
		t.Fatalf("role %q not seeded: %v", roleName, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := models.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: string(hash),
		GlobalRoleID: role.ID,
		IsActive:     true,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	token, err := auth.GenerateJWT(user.ID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	return user, token
}

func dbRole(out *models.Role, name string) error {
	return db.DB.Where("name = ?", name).First(out).Error
}

func createCategory(t *testing.T) models.Category {
	t.Helper()

	category := models.Category{Name: "Category " + uuid.NewString()[:8], Description: "test category", IsActive: true}
	if err := db.DB.Create(&category).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	return category
}

func firstState(t *testing.T, stateType string) models.State {
	t.Helper()

	var state models.State
	if err := db.DB.Where("type = ?", stateType).Order("\"order\"").First(&state).Error; err != nil {
		t.Fatalf("no %s state seeded: %v", stateType, err)
	}
	return state
}

func finalState(t *testing.T, stateType string) models.State {
	t.Helper()

	var state models.State
	if err := db.DB.Where("type = ? AND is_final = ?", stateType, true).Order("\"order\"").First(&state).Error; err != nil {
		t.Fatalf("no final %s state seeded: %v", stateType, err)
	}
	return state
}

func createProject(t *testing.T, owner models.User) models.Project {
	t.Helper()

	project := models.Project{
		Name:        "Project " + uuid.NewString()[:8],
		Description: "test project",
		CategoryID:  createCategory(t).ID,
		OwnerID:     owner.ID,
		StatusID:    firstState(t, models.StateTypeProject).ID,
		Priority:    models.PriorityMedium,
		StartDate:   time.Now(),
		Tags:        encodeTags(nil),
		IsActive:    true,
	}

	if err := db.DB.Create(&project).Error; err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	return project
}

func addMember(t *testing.T, project models.Project, user models.User) {
	t.Helper()

	var role models.Role
	if err := db.DB.Where("name = ?", models.RoleDeveloper).First(&role).Error; err != nil {
		t.Fatalf("Developer role not seeded: %v", err)
	}

	member := models.ProjectMember{
		ProjectID: project.ID,
		UserID:    user.ID,
		RoleID:    role.ID,
		JoinedAt:  time.Now(),
	}
	if err := db.DB.Create(&member).Error; err != nil {
		t.Fatalf("failed to add member: %v", err)
	}
}

func createTask(t *testing.T, project models.Project, creator models.User, assignee *models.User) models.Task {
	t.Helper()

	task := models.Task{
		Title:       "Task " + uuid.NewString()[:8],
		Description: "test task",
		ProjectID:   project.ID,
		CreatedByID: creator.ID,
		StatusID:    firstState(t, models.StateTypeTask).ID,
		Priority:    models.PriorityMedium,
		StartDate:   time.Now(),
		Tags:        encodeTags(nil),
		IsActive:    true,
	}
	if assignee != nil {
		task.AssignedToID = &assignee.ID
	}

	if err := db.DB.Create(&task).Error; err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	return task
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (body %q)", err, recorder.Body.String())
	}
	return body
}
