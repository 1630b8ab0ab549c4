package database

import (
	"log"
	"os"
	"time"

	"gamestracker/backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Names of the fixed vocabularies seeded at migration time.
var (
	PlatformNames        = []string{"Steam", "GOG", "Epic"}
	OperatingSystemNames = []string{"Windows", "Mac", "Linux"}
)

// Connect initializes the database connection, runs migrations and seeds the
// fixed platform and operating-system vocabularies.
func Connect(dsn string) {
	var err error

	// Configure GORM logger
	customLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             200 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  logger.Warn,            // Log level
			IgnoreRecordNotFoundError: true,                   // Ignore ErrRecordNotFound error for logger
			Colorful:                  true,                   // Enable color
		},
	)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: customLogger,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established.")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database migrated successfully.")
}

// Migrate runs the schema migrations and seeds fixed vocabularies. It is
// separate from Connect so tests can run it against their own database.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Game{},
		&models.GameListing{},
		&models.Platform{},
		&models.Genre{},
		&models.OperatingSystem{},
		&models.Subscriber{},
		&models.User{},
	)
	if err != nil {
		return err
	}

	return seedVocabularies(db)
}

func seedVocabularies(db *gorm.DB) error {
	for _, name := range PlatformNames {
		platform := models.Platform{Name: name}
		err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&platform).Error
		if err != nil {
			return err
		}
	}

	for _, name := range OperatingSystemNames {
		os := models.OperatingSystem{Name: name}
		err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&os).Error
		if err != nil {
			return err
		}
	}

	return nil
}
