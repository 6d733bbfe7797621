package seeds

import (
	"log"

	"gorm.io/gorm"

	settings "library_backend/internals/seeds/settings"
)

func RunAllSeeds(db *gorm.DB) error {
	//* Loan policies
	if err := settings.SeedDefaultSettings(db); err != nil {
		return err
	}
	log.Println("[SEED] done")
	return nil
}
