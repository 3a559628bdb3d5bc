package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ctrlfund/ctrlfund/internal/identity"
	"github.com/ctrlfund/ctrlfund/internal/permission"
	"github.com/ctrlfund/ctrlfund/internal/transaction"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample accounts and transactions for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := gorm.Open(gormpostgres.Open(cfg.Database.Source), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			log.Fatalf("failed to open db: %v", err)
		}

		if clearData {
			if err := db.Exec("DELETE FROM transactions").Error; err != nil {
				log.Fatalf("failed to clear transactions: %v", err)
			}
			if err := db.Exec("DELETE FROM identities").Error; err != nil {
				log.Fatalf("failed to clear identities: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}

		adminID := seedIdentity(db, identity.Identity{
			Email:        identity.DefaultAdminEmail,
			Name:         identity.DefaultAdminName,
			Role:         permission.RoleAdmin,
			IsActive:     true,
			IsProtected:  true,
			PasswordHash: string(hash),
		})

		memberHash, err := bcrypt.GenerateFromPassword([]byte("member123"), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}

		memberID := seedIdentity(db, identity.Identity{
			Email:        "sarah@ctrlfund.com",
			Name:         "Sarah Chen",
			Role:         permission.RoleMember,
			IsActive:     true,
			PasswordHash: string(memberHash),
		})

		seedTransactions(db, adminID, memberID)

		fmt.Println("Seed complete")
	},
}

// seedIdentity inserts the account if the email is not taken and
// returns the row's id either way.
func seedIdentity(db *gorm.DB, ident identity.Identity) string {
	var existing identity.Identity
	err := db.Where("email = ?", ident.Email).First(&existing).Error
	if err == nil {
		fmt.Printf("Identity already exists: %s\n", ident.Email)
		return existing.ID
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("failed to look up identity %s: %v", ident.Email, err)
	}

	ident.ID = uuid.New().String()
	ident.SetOverrides(permission.Defaults(ident.Role))
	ident.CreatedAt = time.Now()

	if err := db.Create(&ident).Error; err != nil {
		log.Fatalf("failed to insert identity %s: %v", ident.Email, err)
	}

	fmt.Printf("Seeded identity: %s (%s)\n", ident.Email, ident.Role)
	return ident.ID
}

func seedTransactions(db *gorm.DB, adminID, memberID string) {
	fixtures := []transaction.Transaction{
		{ID: "1", UserID: adminID, Title: "Office Supplies", Amount: 150.0, Category: "Office", Date: "2024-01-15", Description: "Pens, paper, and folders"},
		{ID: "2", UserID: adminID, Title: "Team Lunch", Amount: 85.5, Category: "Food", Date: "2024-01-14", Description: "Monthly team lunch"},
		{ID: "3", UserID: memberID, Title: "Software License", Amount: 299.99, Category: "Software", Date: "2024-01-13", Description: "Annual subscription"},
	}

	for _, tx := range fixtures {
		var count int64
		if err := db.Model(&transaction.Transaction{}).Where("id = ?", tx.ID).Count(&count).Error; err != nil {
			log.Fatalf("failed to look up transaction %s: %v", tx.ID, err)
		}
		if count > 0 {
			continue
		}

		tx.CreatedAt = time.Now()
		tx.UpdatedAt = tx.CreatedAt
		if err := db.Create(&tx).Error; err != nil {
			log.Fatalf("failed to insert transaction %s: %v", tx.Title, err)
		}
		fmt.Printf("Seeded transaction: %s\n", tx.Title)
	}
}
