package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddIndexes adds composite indexes used by the scoped list queries
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns []string
	}{
		// Task listing within a project
		{"tasks", "idx_tasks_project_created", []string{"project_id", "created_at"}},

		// Comment listing within a task
		{"comments", "idx_comments_task_created", []string{"task_id", "created_at"}},

		// Member listing within a project
		{"project_members", "idx_project_members_project_role", []string{"project_id", "role"}},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			log.Debug("index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		columns := make([]interface{}, len(idx.columns))
		for i, name := range idx.columns {
			columns[i] = clause.Column{Name: name}
		}

		err := db.Exec("CREATE INDEX ? ON ? ?",
			clause.Table{Name: idx.name},
			clause.Table{Name: idx.table},
			columns,
		).Error
		if err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", zap.String("index", idx.name), zap.String("table", idx.table))
	}

	return nil
}
