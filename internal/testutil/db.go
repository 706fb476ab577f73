// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/Wahidu1/projects-tech-foring/internal/database"
	"github.com/Wahidu1/projects-tech-foring/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database that lives for the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db, zap.NewNop()))
	return db
}

// CreateUser inserts a user whose password is "password".
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    username,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateSuperuser inserts a superuser whose password is "password".
func CreateSuperuser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := CreateUser(t, db, username)
	user.IsStaff = true
	user.IsSuperuser = true
	require.NoError(t, db.Save(user).Error)
	return user
}

func CreateProject(t *testing.T, db *gorm.DB, name string, ownerID uint64) *models.Project {
	t.Helper()

	project := &models.Project{
		Name:        name,
		Description: name + " description",
		OwnerID:     ownerID,
	}
	require.NoError(t, db.Omit("Owner").Create(project).Error)
	return project
}

func CreateMember(t *testing.T, db *gorm.DB, projectID, userID uint64, role models.ProjectRole) *models.ProjectMember {
	t.Helper()

	member := &models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}
	require.NoError(t, db.Omit("Project", "User").Create(member).Error)
	return member
}

func CreateTask(t *testing.T, db *gorm.DB, title string, projectID uint64, assignedToID *uint64) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:        title,
		Description:  title + " description",
		Status:       models.TaskStatusTodo,
		Priority:     models.TaskPriorityMedium,
		ProjectID:    projectID,
		AssignedToID: assignedToID,
	}
	require.NoError(t, db.Omit("AssignedTo", "Project").Create(task).Error)
	return task
}

func CreateComment(t *testing.T, db *gorm.DB, content string, taskID, userID uint64) *models.Comment {
	t.Helper()

	comment := &models.Comment{
		Content: content,
		TaskID:  taskID,
		UserID:  userID,
	}
	require.NoError(t, db.Omit("User", "Task").Create(comment).Error)
	return comment
}

// Count returns the number of rows of model matching the optional condition.
func Count(t *testing.T, db *gorm.DB, model any, conds ...any) int64 {
	t.Helper()

	var n int64
	query := db.Model(model)
	if len(conds) > 0 {
		query = query.Where(conds[0], conds[1:]...)
	}
	require.NoError(t, query.Count(&n).Error)
	return n
}
