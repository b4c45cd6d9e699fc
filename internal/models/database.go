package models

import (
	"fmt"
	"time"

	"github.com/labebook/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&UserSession{},
		&RefreshToken{},
		&Team{},
		&TeamMember{},
		&TeamInvitation{},
		&Pipeline{},
		&PipelineShare{},
		&Folder{},
		&FolderPermission{},
		&Project{},
		&Method{},
		&MethodStep{},
		&MethodParameter{},
		&SystemLog{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates the static seed users, a starter team and the
// protocol catalog if the database is empty.
func SeedDefaultData(passwordHash func(string) (string, error)) error {
	if err := seedUsers(passwordHash); err != nil {
		return err
	}
	if err := seedStarterTeam(); err != nil {
		return err
	}
	return seedMethodCatalog()
}

func seedUsers(passwordHash func(string) (string, error)) error {
	var count int64
	DB.Model(&User{}).Count(&count)
	if count > 0 {
		return nil
	}

	seed := []struct {
		username, email, nickname string
	}{
		{"sarah.chen", "sarah.chen@lab.example.com", "Sarah Chen"},
		{"miguel.torres", "miguel.torres@lab.example.com", "Miguel Torres"},
		{"aisha.patel", "aisha.patel@lab.example.com", "Aisha Patel"},
	}

	for _, s := range seed {
		hash, err := passwordHash("changeme")
		if err != nil {
			return err
		}
		u := User{
			Username: s.username,
			Password: hash,
			Email:    s.email,
			Nickname: s.nickname,
			AuthType: "local",
			IsActive: true,
		}
		if err := DB.Create(&u).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedStarterTeam() error {
	var count int64
	DB.Model(&Team{}).Count(&count)
	if count > 0 {
		return nil
	}

	var creator User
	if err := DB.Order("id").First(&creator).Error; err != nil {
		// No users seeded, nothing to attach the team to.
		return nil
	}

	team := Team{
		Name:        "Protein Lab",
		Description: "Demo workspace seeded at first start",
		CreatedBy:   creator.ID,
	}
	if err := DB.Create(&team).Error; err != nil {
		return err
	}

	member := TeamMember{
		TeamID:   team.ID,
		UserID:   creator.ID,
		Role:     RolePI,
		JoinedAt: time.Now(),
	}
	return DB.Create(&member).Error
}

func seedMethodCatalog() error {
	var count int64
	DB.Model(&Method{}).Count(&count)
	if count > 0 {
		return nil
	}

	methods := []Method{
		{
			Name:     "SDS-PAGE",
			Category: "Electrophoresis",
			Summary:  "Separates proteins by molecular weight in a denaturing polyacrylamide gel.",
			Steps: []MethodStep{
				{Position: 1, Title: "Prepare samples", Instruction: "Mix samples with Laemmli buffer and heat at 95 C.", DurationMin: 10},
				{Position: 2, Title: "Load gel", Instruction: "Load samples and molecular weight marker into wells."},
				{Position: 3, Title: "Run electrophoresis", Instruction: "Run at constant voltage until the dye front reaches the gel bottom.", DurationMin: 60},
				{Position: 4, Title: "Stain", Instruction: "Stain with Coomassie or proceed to transfer.", DurationMin: 30},
			},
			Params: []MethodParameter{
				{Name: "Gel concentration", Unit: "%", Default: 10, Min: 6, Max: 15},
				{Name: "Voltage", Unit: "V", Default: 120, Min: 80, Max: 200},
			},
		},
		{
			Name:     "Western Blot",
			Category: "Immunodetection",
			Summary:  "Transfers separated proteins to a membrane and detects targets with antibodies.",
			Steps: []MethodStep{
				{Position: 1, Title: "Transfer", Instruction: "Transfer proteins from gel to PVDF membrane.", DurationMin: 90},
				{Position: 2, Title: "Block", Instruction: "Block membrane in 5% milk/TBST.", DurationMin: 60},
				{Position: 3, Title: "Primary antibody", Instruction: "Incubate with primary antibody, overnight at 4 C."},
				{Position: 4, Title: "Secondary antibody", Instruction: "Wash and incubate with HRP-conjugated secondary.", DurationMin: 60},
				{Position: 5, Title: "Develop", Instruction: "Apply ECL substrate and image.", DurationMin: 15},
			},
			Params: []MethodParameter{
				{Name: "Transfer current", Unit: "mA", Default: 250, Min: 100, Max: 400},
				{Name: "Primary dilution", Unit: "x", Default: 1000, Min: 200, Max: 10000},
			},
		},
	}

	for i := range methods {
		if err := DB.Create(&methods[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
