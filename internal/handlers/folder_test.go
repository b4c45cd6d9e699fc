package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/labebook/backend/internal/middleware"
	"github.com/labebook/backend/internal/models"
	"github.com/labebook/backend/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupFolderTest(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Folder{},
		&models.FolderPermission{},
		&models.Pipeline{},
		&models.Project{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// folderRouter mounts both folder route groups behind a fixed session,
// the way the real router does behind TeamSession.
func folderRouter(db *gorm.DB, sess *services.Session) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextSession, sess)
	})

	pipelineFolders := NewPipelineFolderHandler(db)
	router.POST("/api/folders", pipelineFolders.Create)
	router.PUT("/api/folders/:id", pipelineFolders.Update)

	projectFolders := NewProjectFolderHandler(db)
	router.POST("/api/project-folders", projectFolders.Create)
	router.PUT("/api/project-folders/:id", projectFolders.Update)

	return router
}

func folderTeamWithPI(t *testing.T, db *gorm.DB) (*models.Team, *services.Session) {
	t.Helper()

	user := models.User{Username: "sarah.chen", Email: "sarah.chen@lab.example.com", IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	team := models.Team{Name: "Protein Lab", CreatedBy: user.ID}
	if err := db.Create(&team).Error; err != nil {
		t.Fatalf("failed to create team: %v", err)
	}
	member := models.TeamMember{TeamID: team.ID, UserID: user.ID, Role: models.RolePI}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("failed to create membership: %v", err)
	}
	return &team, &services.Session{UserID: user.ID, TeamID: team.ID}
}

func sendJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestFolderCreate_PipelineFoldersCannotNest(t *testing.T) {
	db := setupFolderTest(t)
	_, sess := folderTeamWithPI(t, db)
	router := folderRouter(db, sess)

	parent := uint(1)
	w := sendJSON(router, "POST", "/api/folders", gin.H{"name": "Blots", "parent_id": parent})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
	}
}

func TestFolderCreate_ParentMustBeSameTeam(t *testing.T) {
	db := setupFolderTest(t)
	_, sess := folderTeamWithPI(t, db)
	router := folderRouter(db, sess)

	otherTeam := models.Team{Name: "Genomics Lab", CreatedBy: 99}
	if err := db.Create(&otherTeam).Error; err != nil {
		t.Fatalf("failed to create other team: %v", err)
	}
	foreign := models.Folder{Name: "Elsewhere", Kind: models.FolderKindProject, TeamID: otherTeam.ID}
	if err := db.Create(&foreign).Error; err != nil {
		t.Fatalf("failed to create foreign folder: %v", err)
	}

	w := sendJSON(router, "POST", "/api/project-folders", gin.H{"name": "Nested", "parent_id": foreign.ID})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.Folder{}).Where("name = ?", "Nested").Count(&count)
	if count != 0 {
		t.Error("folder should not be created with a cross-team parent")
	}
}

func TestFolderCreate_MissingParentRejected(t *testing.T) {
	db := setupFolderTest(t)
	_, sess := folderTeamWithPI(t, db)
	router := folderRouter(db, sess)

	missing := uint(4242)
	w := sendJSON(router, "POST", "/api/project-folders", gin.H{"name": "Orphan", "parent_id": missing})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
	}
}

func TestFolderUpdate_SelfParentRejected(t *testing.T) {
	db := setupFolderTest(t)
	team, sess := folderTeamWithPI(t, db)
	router := folderRouter(db, sess)

	folder := models.Folder{Name: "Assays", Kind: models.FolderKindProject, TeamID: team.ID, CreatedBy: sess.UserID}
	if err := db.Create(&folder).Error; err != nil {
		t.Fatalf("failed to create folder: %v", err)
	}

	path := fmt.Sprintf("/api/project-folders/%d", folder.ID)
	w := sendJSON(router, "PUT", path, gin.H{"name": "Assays", "parent_id": folder.ID})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
	}
}

func TestFolderUpdate_OmittedParentKept(t *testing.T) {
	db := setupFolderTest(t)
	team, sess := folderTeamWithPI(t, db)
	router := folderRouter(db, sess)

	parent := models.Folder{Name: "Q3", Kind: models.FolderKindProject, TeamID: team.ID}
	if err := db.Create(&parent).Error; err != nil {
		t.Fatalf("failed to create parent: %v", err)
	}
	child := models.Folder{Name: "Screens", Kind: models.FolderKindProject, TeamID: team.ID, ParentID: &parent.ID}
	if err := db.Create(&child).Error; err != nil {
		t.Fatalf("failed to create child: %v", err)
	}

	// Rename only. The folder must stay under its parent.
	path := fmt.Sprintf("/api/project-folders/%d", child.ID)
	w := sendJSON(router, "PUT", path, gin.H{"name": "Screens 2026"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var got models.Folder
	if err := db.First(&got, child.ID).Error; err != nil {
		t.Fatalf("failed to reload folder: %v", err)
	}
	if got.Name != "Screens 2026" {
		t.Errorf("Name = %q, expected rename to apply", got.Name)
	}
	if got.ParentID == nil || *got.ParentID != parent.ID {
		t.Errorf("ParentID = %v, expected parent %d to be kept", got.ParentID, parent.ID)
	}
}

func TestFolderUpdate_ZeroParentMovesToRoot(t *testing.T) {
	db := setupFolderTest(t)
	team, sess := folderTeamWithPI(t, db)
	router := folderRouter(db, sess)

	parent := models.Folder{Name: "Q3", Kind: models.FolderKindProject, TeamID: team.ID}
	if err := db.Create(&parent).Error; err != nil {
		t.Fatalf("failed to create parent: %v", err)
	}
	child := models.Folder{Name: "Screens", Kind: models.FolderKindProject, TeamID: team.ID, ParentID: &parent.ID}
	if err := db.Create(&child).Error; err != nil {
		t.Fatalf("failed to create child: %v", err)
	}

	path := fmt.Sprintf("/api/project-folders/%d", child.ID)
	w := sendJSON(router, "PUT", path, gin.H{"name": "Screens", "parent_id": 0})
	if w.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var got models.Folder
	if err := db.First(&got, child.ID).Error; err != nil {
		t.Fatalf("failed to reload folder: %v", err)
	}
	if got.ParentID != nil {
		t.Errorf("ParentID = %v, expected root", got.ParentID)
	}
}
