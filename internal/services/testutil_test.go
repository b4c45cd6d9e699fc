package services

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/labebook/backend/internal/models"
)

// setupTestDB opens a fresh in-memory database for a single test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.UserSession{},
		&models.Team{},
		&models.TeamMember{},
		&models.TeamInvitation{},
		&models.Pipeline{},
		&models.PipelineShare{},
		&models.Folder{},
		&models.FolderPermission{},
		&models.Project{},
		&models.SystemLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// createUser inserts a user named after the given handle.
func createUser(t *testing.T, db *gorm.DB, handle string) *models.User {
	t.Helper()
	user := models.User{
		Username: handle,
		Email:    fmt.Sprintf("%s@lab.example.com", handle),
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", handle, err)
	}
	return &user
}

// createTeam inserts a team without any members.
func createTeam(t *testing.T, db *gorm.DB, name string, createdBy uint) *models.Team {
	t.Helper()
	team := models.Team{Name: name, CreatedBy: createdBy}
	if err := db.Create(&team).Error; err != nil {
		t.Fatalf("failed to create team %s: %v", name, err)
	}
	return &team
}

// addMember inserts a membership record.
func addMember(t *testing.T, db *gorm.DB, teamID, userID uint, role string) {
	t.Helper()
	member := models.TeamMember{
		TeamID:   teamID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now(),
	}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("failed to add member %d to team %d: %v", userID, teamID, err)
	}
}
