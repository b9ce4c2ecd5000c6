package database

import (
	"log"

	"gorm.io/gorm"
)

// RunMigrations runs custom data migrations after schema changes.
func RunMigrations(db *gorm.DB) error {
	if err := normalizeRarityValues(db); err != nil {
		return err
	}
	if err := cleanupDuplicateReports(db); err != nil {
		return err
	}
	return nil
}

// normalizeRarityValues backfills a default rarity on rows imported
// before the rarity column existed.
func normalizeRarityValues(db *gorm.DB) error {
	if !db.Migrator().HasColumn("cards", "rarity") {
		return nil
	}
	result := db.Exec(`UPDATE cards SET rarity = 'Unknown' WHERE rarity IS NULL OR rarity = ''`)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("Normalized rarity on %d cards", result.RowsAffected)
	}
	return nil
}

// cleanupDuplicateReports removes duplicate cached price reports
// before the unique (card_name, set_name) constraint is enforced,
// keeping the most recently written row.
func cleanupDuplicateReports(db *gorm.DB) error {
	if !db.Migrator().HasTable("cached_reports") {
		return nil
	}

	result := db.Exec(`
		DELETE FROM cached_reports
		WHERE id NOT IN (
			SELECT MAX(id)
			FROM cached_reports
			GROUP BY card_name, set_name
		)
	`)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("Cleaned up %d duplicate cached reports", result.RowsAffected)
	}
	return nil
}
