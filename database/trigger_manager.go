package database

import (
	"os"
	"strings"

	"github.com/yeremiapane/popup-pos/utils"
	"gorm.io/gorm"
)

// ExecuteTriggers installs the row-change triggers that feed db_changes.
// MySQL only; SQLite setups (dev, tests) run without the change feed.
func ExecuteTriggers(db *gorm.DB) error {
	triggerSQL, err := os.ReadFile("database/migrations/triggers.sql")
	if err != nil {
		return err
	}

	// The file uses DELIMITER blocks with // terminators; the driver wants
	// one statement at a time.
	for _, block := range strings.Split(string(triggerSQL), "DELIMITER") {
		if strings.TrimSpace(block) == "" {
			continue
		}
		for _, stmt := range strings.Split(block, "//") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" || stmt == ";" {
				continue
			}
			if err := db.Exec(stmt).Error; err != nil {
				utils.ErrorLogger.Printf("execute trigger statement: %v", err)
				continue
			}
		}
	}

	var triggers []struct {
		TriggerName string
		EventType   string
		TableName   string
		Timing      string
	}
	db.Raw(`
        SELECT
            TRIGGER_NAME as trigger_name,
            EVENT_MANIPULATION as event_type,
            EVENT_OBJECT_TABLE as table_name,
            ACTION_TIMING as timing
        FROM information_schema.triggers
        WHERE TRIGGER_SCHEMA = DATABASE()
    `).Scan(&triggers)

	for _, t := range triggers {
		utils.InfoLogger.Printf("Trigger verified: %s (%s %s on %s)",
			t.TriggerName, t.Timing, t.EventType, t.TableName)
	}

	return nil
}
