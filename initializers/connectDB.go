package initializers

import (
	"fmt"
	"log"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/contractiq/backend/config"
	"github.com/contractiq/backend/models"
)

var DB *gorm.DB // migrations also use this handle

// ConnectDB opens the document store. Postgres is used when DIRECT_URL is
// set; otherwise a local sqlite file keeps development self-contained.
func ConnectDB(cfg *config.Config) error {
	log.Println("Connecting to database")

	var err error
	if cfg.DatabaseURL != "" {
		pgConfig := postgres.Config{
			PreferSimpleProtocol: true, // disable implicit prepared statement usage
			DriverName:           "postgres",
			DSN:                  cfg.DatabaseURL,
		}
		DB, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
			PrepareStmt:          false,
			DisableAutomaticPing: true,
		})
	} else {
		log.Printf("DIRECT_URL not set, falling back to sqlite at %s", cfg.SQLitePath)
		DB, err = gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}

	// The sqlite path has no migration files, so the schema comes from the
	// model directly.
	if cfg.DatabaseURL == "" {
		if err := DB.AutoMigrate(&models.Document{}); err != nil {
			return fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
	}

	log.Println("Database connection successful")
	return nil
}
