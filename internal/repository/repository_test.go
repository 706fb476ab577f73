package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Wahidu1/projects-tech-foring/internal/models"
	"github.com/Wahidu1/projects-tech-foring/internal/testutil"
	"github.com/Wahidu1/projects-tech-foring/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestProjectRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProjectRepository(db)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	roadmap := testutil.CreateProject(t, db, "Roadmap", alice.ID)
	testutil.CreateMember(t, db, roadmap.ID, bob.ID, models.RoleMember)
	task := testutil.CreateTask(t, db, "Plan", roadmap.ID, &bob.ID)
	testutil.CreateComment(t, db, "first", task.ID, bob.ID)

	other := testutil.CreateProject(t, db, "Other", bob.ID)
	otherTask := testutil.CreateTask(t, db, "Keep", other.ID, nil)
	testutil.CreateComment(t, db, "kept", otherTask.ID, alice.ID)

	require.NoError(t, repo.Delete(roadmap.ID))

	assert.Equal(t, int64(0), testutil.Count(t, db, &models.Project{}, "id = ?", roadmap.ID))
	assert.Equal(t, int64(0), testutil.Count(t, db, &models.ProjectMember{}, "project_id = ?", roadmap.ID))
	assert.Equal(t, int64(0), testutil.Count(t, db, &models.Task{}, "project_id = ?", roadmap.ID))
	assert.Equal(t, int64(0), testutil.Count(t, db, &models.Comment{}, "task_id = ?", task.ID))

	assert.Equal(t, int64(1), testutil.Count(t, db, &models.Project{}, "id = ?", other.ID))
	assert.Equal(t, int64(1), testutil.Count(t, db, &models.Comment{}, "task_id = ?", otherTask.ID))
}

func TestProjectRepository_DeleteMissing(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProjectRepository(db)

	err := repo.Delete(404)

	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProjectRepository_UpdateKeepsNewOwner(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProjectRepository(db)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	project := testutil.CreateProject(t, db, "Roadmap", alice.ID)

	loaded, err := repo.FindByID(project.ID, "Owner")
	require.NoError(t, err)
	require.Equal(t, alice.ID, loaded.Owner.ID)

	// the preloaded Owner must not win over the new foreign key
	loaded.OwnerID = bob.ID
	require.NoError(t, repo.Update(loaded))

	reloaded, err := repo.FindByID(project.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, reloaded.OwnerID)
}

func TestUserRepository_DeleteCascadesAndUnassigns(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	owned := testutil.CreateProject(t, db, "Owned", alice.ID)
	ownedTask := testutil.CreateTask(t, db, "Owned task", owned.ID, nil)
	testutil.CreateComment(t, db, "bob on alice project", ownedTask.ID, bob.ID)

	shared := testutil.CreateProject(t, db, "Shared", bob.ID)
	testutil.CreateMember(t, db, shared.ID, alice.ID, models.RoleAdmin)
	assigned := testutil.CreateTask(t, db, "Assigned", shared.ID, &alice.ID)
	testutil.CreateComment(t, db, "alice comment", assigned.ID, alice.ID)

	require.NoError(t, repo.Delete(alice.ID))

	_, err := repo.FindByID(alice.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.Equal(t, int64(0), testutil.Count(t, db, &models.Project{}, "owner_id = ?", alice.ID))
	assert.Equal(t, int64(0), testutil.Count(t, db, &models.Task{}, "project_id = ?", owned.ID))
	assert.Equal(t, int64(0), testutil.Count(t, db, &models.Comment{}, "task_id = ?", ownedTask.ID))
	assert.Equal(t, int64(0), testutil.Count(t, db, &models.ProjectMember{}, "user_id = ?", alice.ID))
	assert.Equal(t, int64(0), testutil.Count(t, db, &models.Comment{}, "user_id = ?", alice.ID))

	var task models.Task
	require.NoError(t, db.First(&task, assigned.ID).Error)
	assert.Nil(t, task.AssignedToID)
	assert.Equal(t, int64(1), testutil.Count(t, db, &models.Project{}, "id = ?", shared.ID))
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)

	testutil.CreateUser(t, db, "alice")

	err := repo.Create(&models.User{
		Username:     "alice",
		Email:        "other@example.com",
		PasswordHash: "hash",
		IsActive:     true,
	})

	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestMemberRepository_UniquePerProject(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMemberRepository(db)

	alice := testutil.CreateUser(t, db, "alice")
	project := testutil.CreateProject(t, db, "Roadmap", alice.ID)
	testutil.CreateMember(t, db, project.ID, alice.ID, models.RoleAdmin)

	err := repo.Create(&models.ProjectMember{ProjectID: project.ID, UserID: alice.ID, Role: models.RoleMember})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	member, err := repo.FindByProjectAndUser(project.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, member.Role)
}

func TestTaskRepository_ListFilters(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTaskRepository(db)

	alice := testutil.CreateUser(t, db, "alice")
	project := testutil.CreateProject(t, db, "Roadmap", alice.ID)
	other := testutil.CreateProject(t, db, "Other", alice.ID)

	testutil.CreateTask(t, db, "one", project.ID, &alice.ID)
	done := testutil.CreateTask(t, db, "two", project.ID, nil)
	done.Status = models.TaskStatusDone
	require.NoError(t, repo.Update(done))
	testutil.CreateTask(t, db, "elsewhere", other.ID, nil)

	all, total, err := repo.List(TaskFilter{ProjectID: project.ID, Pagination: utils.NewPaginationParams(1, 20)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	status := models.TaskStatusDone
	filtered, total, err := repo.List(TaskFilter{ProjectID: project.ID, Status: &status, Pagination: utils.NewPaginationParams(1, 20)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, filtered, 1)
	assert.Equal(t, "two", filtered[0].Title)

	mine, _, err := repo.List(TaskFilter{ProjectID: project.ID, AssignedToID: &alice.ID, Pagination: utils.NewPaginationParams(1, 20)})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].AssignedTo)
	assert.Equal(t, "alice", mine[0].AssignedTo.Username)

	paged, total, err := repo.List(TaskFilter{ProjectID: project.ID, Pagination: utils.NewPaginationParams(2, 1)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, paged, 1)
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return db, mock
}

func TestProjectRepository_DeleteRunsInOneTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `comments` WHERE task_id IN \\(SELECT `id` FROM `tasks`").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM `tasks` WHERE project_id IN \\(SELECT `id` FROM `projects`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `project_members` WHERE project_id IN").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `projects` WHERE `projects`.`id` = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(7))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_DeleteRollsBackWhenMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `comments`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `tasks`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `project_members`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `projects`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(7)

	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
