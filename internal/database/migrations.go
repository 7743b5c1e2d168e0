package database

import (
	"github.com/phuslu/log"
	"gorm.io/gorm"
)

// cleanupDuplicateSnapshots removes rows that would violate the one-per-day
// unique indexes on price and portfolio snapshots, keeping the newest row.
// Runs before AutoMigrate.
func cleanupDuplicateSnapshots(db *gorm.DB) error {
	tables := []struct {
		name    string
		groupBy string
	}{
		{"card_price_snapshots", "card_id, date(as_of_date)"},
		{"portfolio_value_snapshots", "user_id, date(snapshot_date)"},
	}

	for _, t := range tables {
		if !db.Migrator().HasTable(t.name) {
			continue
		}
		result := db.Exec(`
			DELETE FROM ` + t.name + `
			WHERE id NOT IN (
				SELECT MAX(id)
				FROM ` + t.name + `
				GROUP BY ` + t.groupBy + `
			)
		`)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			log.Info().Str("table", t.name).Int64("rows", result.RowsAffected).Msg("removed duplicate snapshots")
		}
	}
	return nil
}

// RunMigrations runs data fixes that AutoMigrate cannot express. Safe to run
// repeatedly.
func RunMigrations(db *gorm.DB) error {
	if err := migrateFinishValues(db); err != nil {
		return err
	}
	return migrateWatchDefaults(db)
}

// migrateFinishValues upper-cases finish values written by older clients and
// maps anything unrecognised to NONFOIL.
func migrateFinishValues(db *gorm.DB) error {
	if !db.Migrator().HasColumn("collection_entries", "finish") {
		return nil
	}

	result := db.Exec(`UPDATE collection_entries SET finish = UPPER(TRIM(finish)) WHERE finish <> UPPER(TRIM(finish))`)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Info().Int64("rows", result.RowsAffected).Msg("normalized collection finish casing")
	}

	result = db.Exec(`UPDATE collection_entries SET finish = 'NONFOIL' WHERE finish IS NULL OR finish NOT IN ('NONFOIL', 'FOIL', 'ETCHED')`)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Warn().Int64("rows", result.RowsAffected).Msg("reset unknown collection finishes to NONFOIL")
	}
	return nil
}

func migrateWatchDefaults(db *gorm.DB) error {
	if !db.Migrator().HasColumn("price_watches", "price_type") {
		return nil
	}
	result := db.Exec(`UPDATE price_watches SET price_type = 'USD' WHERE price_type IS NULL OR price_type = ''`)
	if result.Error != nil {
		log.Warn().Err(result.Error).Msg("failed to default watch price types")
	}
	return nil
}
