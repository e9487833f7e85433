package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/clinic-access/internal/permission"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var seedSQLitePath string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		var db *gorm.DB
		var err error

		if seedSQLitePath != "" {
			// local demo database, no postgres needed
			db, err = gorm.Open(sqlite.Open(seedSQLitePath), &gorm.Config{})
			if err != nil {
				log.Fatalf("failed to open sqlite db: %v", err)
			}
			if err := db.AutoMigrate(&seedUser{}, &permission.Grant{}); err != nil {
				log.Fatalf("failed to migrate sqlite db: %v", err)
			}
		} else {
			cfg, err := loadConfig(".")
			if err != nil {
				log.Fatalf("failed to load config: %v", err)
			}
			db, err = gorm.Open(gormPostgres.Open(cfg.Database.Source), &gorm.Config{})
			if err != nil {
				log.Fatalf("failed to open db: %v", err)
			}
		}

		if clearData {
			for _, table := range []string{"permission_requests", "permission_grants", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Printf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		staff := []struct {
			Email    string
			Name     string
			Position permission.Position
		}{
			{"sari.dokter@klinik.test", "Dr. Sari", permission.PositionDoctor},
			{"rina.perawat@klinik.test", "Rina", permission.PositionNurse},
			{"dewi.resepsionis@klinik.test", "Dewi", permission.PositionReceptionist},
			{"budi.manajer@klinik.test", "Budi", permission.PositionManager},
			{"agus.admin@klinik.test", "Agus", permission.PositionAdmin},
		}

		for _, s := range staff {
			var exists int
			row := db.Raw("SELECT 1 FROM users WHERE email = ?", s.Email).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("user %s already exists, skipping\n", s.Email)
				continue
			}

			if err := db.Exec(
				"INSERT INTO users (email, name, password_hash, position, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, true, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)",
				s.Email, s.Name, string(hash), string(s.Position),
			).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", s.Email, err)
			}
			fmt.Printf("Seeded %s user: %s\n", s.Position, s.Email)
		}

		// sample grant: the nurse covers inventory management while the
		// manager is on leave
		var nurseID, managerID int64
		if err := db.Raw("SELECT id FROM users WHERE email = ?", staff[1].Email).Row().Scan(&nurseID); err != nil {
			log.Fatalf("failed to lookup nurse user id: %v", err)
		}
		if err := db.Raw("SELECT id FROM users WHERE email = ?", staff[3].Email).Row().Scan(&managerID); err != nil {
			log.Fatalf("failed to lookup manager user id: %v", err)
		}

		var exists int
		row := db.Raw("SELECT 1 FROM permission_grants WHERE user_id = ? AND permission = ?", nurseID, string(permission.InventoryManage)).Row()
		if err := row.Scan(&exists); err != nil {
			reason := "covering inventory while procurement lead is on leave"
			if err := db.Exec(
				"INSERT INTO permission_grants (user_id, permission, granted, granted_by, granted_at, reason, created_at) VALUES (?, ?, true, ?, CURRENT_TIMESTAMP, ?, CURRENT_TIMESTAMP)",
				nurseID, string(permission.InventoryManage), managerID, reason,
			).Error; err != nil {
				log.Fatalf("failed to insert sample grant: %v", err)
			}
			fmt.Println("Seeded sample inventory grant for nurse user")
		}

		fmt.Println("Seeding complete")
	},
}

// seedUser mirrors the users table for sqlite AutoMigrate in demo mode.
type seedUser struct {
	ID           int64  `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex"`
	Name         string
	PasswordHash string
	Position     string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (seedUser) TableName() string { return "users" }

func init() {
	seedCmd.Flags().StringVar(&seedSQLitePath, "sqlite", "", "Seed a local sqlite database at the given path instead of postgres")
}
