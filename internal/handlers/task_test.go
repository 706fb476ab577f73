package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/Wahidu1/projects-tech-foring/internal/dto"
	apierrors "github.com/Wahidu1/projects-tech-foring/internal/errors"
	"github.com/Wahidu1/projects-tech-foring/internal/models"
	"github.com/Wahidu1/projects-tech-foring/internal/services"
	"github.com/Wahidu1/projects-tech-foring/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TaskHandlerTestSuite struct {
	suite.Suite
	env     handlerTestEnv
	alice   *models.User
	bob     *models.User
	project *models.Project
}

func (suite *TaskHandlerTestSuite) SetupTest() {
	suite.env = setupHandlerTestEnv(suite.T(), nil)
	suite.alice = testutil.CreateUser(suite.T(), suite.env.db, "alice")
	suite.bob = testutil.CreateUser(suite.T(), suite.env.db, "bob")
	suite.project = testutil.CreateProject(suite.T(), suite.env.db, "Roadmap", suite.alice.ID)
}

func (suite *TaskHandlerTestSuite) as(user *models.User) string {
	return suite.env.accessToken(suite.T(), user)
}

func (suite *TaskHandlerTestSuite) tasksPath() string {
	return "/projects/" + itoa(suite.project.ID) + "/tasks"
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	w := suite.env.do(suite.T(), http.MethodPost, suite.tasksPath(), map[string]any{
		"title":       "Write docs",
		"description": "API reference",
		"status":      "To Do",
		"priority":    "High",
		"assigned_to": suite.bob.ID,
	}, suite.as(suite.alice))
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	task := decode[dto.TaskDTO](suite.T(), w)
	suite.Equal("Write docs", task.Title)
	suite.Equal(models.TaskPriorityHigh, task.Priority)
	suite.Equal(suite.project.ID, task.ProjectID)
	suite.Require().NotNil(task.AssignedTo)
	suite.Equal(suite.bob.ID, *task.AssignedTo)
	suite.Require().NotNil(task.Assignee)
	suite.Equal("bob", task.Assignee.Username)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidEnums() {
	w := suite.env.do(suite.T(), http.MethodPost, suite.tasksPath(), map[string]any{
		"title":       "Write docs",
		"description": "API reference",
		"status":      "Blocked",
		"priority":    "Urgent",
	}, suite.as(suite.alice))

	apiErr := requireAPIError(suite.T(), w, http.StatusBadRequest, apierrors.ErrCodeValidation)
	suite.Contains(apiErr.Details, "status")
	suite.Contains(apiErr.Details, "priority")
	suite.Zero(testutil.Count(suite.T(), suite.env.db, &models.Task{}))
}

func (suite *TaskHandlerTestSuite) TestCreateTask_UnknownAssignee() {
	w := suite.env.do(suite.T(), http.MethodPost, suite.tasksPath(), map[string]any{
		"title":       "Write docs",
		"description": "API reference",
		"status":      "To Do",
		"priority":    "Low",
		"assigned_to": 9999,
	}, suite.as(suite.alice))

	apiErr := requireAPIError(suite.T(), w, http.StatusBadRequest, apierrors.ErrCodeValidation)
	suite.Contains(apiErr.Details, "assigned_to")
}

func (suite *TaskHandlerTestSuite) TestCreateTask_UnknownProject() {
	w := suite.env.do(suite.T(), http.MethodPost, "/projects/9999/tasks", map[string]any{
		"title": "Orphan",
	}, suite.as(suite.alice))

	requireAPIError(suite.T(), w, http.StatusNotFound, apierrors.ErrCodeNotFound)
}

func (suite *TaskHandlerTestSuite) TestListTasks_Filters() {
	bobID := suite.bob.ID
	testutil.CreateTask(suite.T(), suite.env.db, "Assigned", suite.project.ID, &bobID)
	testutil.CreateTask(suite.T(), suite.env.db, "Open", suite.project.ID, nil)
	other := testutil.CreateProject(suite.T(), suite.env.db, "Other", suite.alice.ID)
	testutil.CreateTask(suite.T(), suite.env.db, "Elsewhere", other.ID, &bobID)

	w := suite.env.do(suite.T(), http.MethodGet, suite.tasksPath(), nil, suite.as(suite.bob))
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal(int64(2), decode[dto.ListResponse[dto.TaskDTO]](suite.T(), w).Pagination.Total)

	w = suite.env.do(suite.T(), http.MethodGet, suite.tasksPath()+"?assigned_to="+itoa(bobID), nil, suite.as(suite.bob))
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	response := decode[dto.ListResponse[dto.TaskDTO]](suite.T(), w)
	suite.Require().Len(response.Items, 1)
	suite.Equal("Assigned", response.Items[0].Title)

	w = suite.env.do(suite.T(), http.MethodGet, suite.tasksPath()+"?status=Done", nil, suite.as(suite.bob))
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Empty(decode[dto.ListResponse[dto.TaskDTO]](suite.T(), w).Items)
}

func (suite *TaskHandlerTestSuite) TestListTasks_InvalidFilters() {
	w := suite.env.do(suite.T(), http.MethodGet, suite.tasksPath()+"?assigned_to=bob", nil, suite.as(suite.bob))
	requireAPIError(suite.T(), w, http.StatusBadRequest, apierrors.ErrCodeValidation)

	w = suite.env.do(suite.T(), http.MethodGet, suite.tasksPath()+"?priority=Urgent", nil, suite.as(suite.bob))
	requireAPIError(suite.T(), w, http.StatusBadRequest, apierrors.ErrCodeValidation)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_PatchAndClearAssignee() {
	bobID := suite.bob.ID
	task := testutil.CreateTask(suite.T(), suite.env.db, "Assigned", suite.project.ID, &bobID)
	path := "/tasks/" + itoa(task.ID)

	w := suite.env.do(suite.T(), http.MethodPatch, path, map[string]any{
		"status": "In Progress",
	}, suite.as(suite.bob))
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	updated := decode[dto.TaskDTO](suite.T(), w)
	suite.Equal(models.TaskStatusInProgress, updated.Status)
	suite.Require().NotNil(updated.AssignedTo)

	w = suite.env.do(suite.T(), http.MethodPatch, path, map[string]any{
		"assigned_to": nil,
	}, suite.as(suite.bob))
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	updated = decode[dto.TaskDTO](suite.T(), w)
	suite.Nil(updated.AssignedTo)
	suite.Nil(updated.Assignee)
	suite.Equal(models.TaskStatusInProgress, updated.Status)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_PutRequiresAllFields() {
	task := testutil.CreateTask(suite.T(), suite.env.db, "Open", suite.project.ID, nil)

	w := suite.env.do(suite.T(), http.MethodPut, "/tasks/"+itoa(task.ID), map[string]any{
		"title": "Renamed",
	}, suite.as(suite.alice))

	apiErr := requireAPIError(suite.T(), w, http.StatusBadRequest, apierrors.ErrCodeValidation)
	suite.Contains(apiErr.Details, "status")
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_RemovesComments() {
	task := testutil.CreateTask(suite.T(), suite.env.db, "Open", suite.project.ID, nil)
	testutil.CreateComment(suite.T(), suite.env.db, "first", task.ID, suite.bob.ID)

	w := suite.env.do(suite.T(), http.MethodDelete, "/tasks/"+itoa(task.ID), nil, suite.as(suite.bob))
	suite.Require().Equal(http.StatusNoContent, w.Code, w.Body.String())

	suite.Zero(testutil.Count(suite.T(), suite.env.db, &models.Task{}))
	suite.Zero(testutil.Count(suite.T(), suite.env.db, &models.Comment{}))
}

func (suite *TaskHandlerTestSuite) TestComments_Lifecycle() {
	task := testutil.CreateTask(suite.T(), suite.env.db, "Open", suite.project.ID, nil)
	commentsPath := "/tasks/" + itoa(task.ID) + "/comments"

	w := suite.env.do(suite.T(), http.MethodPost, commentsPath, map[string]any{
		"content": "Looks good",
		"user":    suite.alice.ID,
	}, suite.as(suite.bob))
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	comment := decode[dto.CommentDTO](suite.T(), w)
	suite.Equal(suite.bob.ID, comment.UserID, "author is always the caller")
	suite.Equal(task.ID, comment.TaskID)

	path := "/comments/" + itoa(comment.ID)
	w = suite.env.do(suite.T(), http.MethodPatch, path, map[string]string{"content": "Ship it"}, suite.as(suite.bob))
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal("Ship it", decode[dto.CommentDTO](suite.T(), w).Content)

	w = suite.env.do(suite.T(), http.MethodGet, commentsPath, nil, suite.as(suite.alice))
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Len(decode[dto.ListResponse[dto.CommentDTO]](suite.T(), w).Items, 1)

	w = suite.env.do(suite.T(), http.MethodDelete, path, nil, suite.as(suite.alice))
	suite.Equal(http.StatusNoContent, w.Code)

	w = suite.env.do(suite.T(), http.MethodGet, path, nil, suite.as(suite.alice))
	requireAPIError(suite.T(), w, http.StatusNotFound, apierrors.ErrCodeNotFound)
}

func (suite *TaskHandlerTestSuite) TestComments_BlankContent() {
	task := testutil.CreateTask(suite.T(), suite.env.db, "Open", suite.project.ID, nil)

	w := suite.env.do(suite.T(), http.MethodPost, "/tasks/"+itoa(task.ID)+"/comments", map[string]any{
		"content": "",
	}, suite.as(suite.bob))

	requireAPIError(suite.T(), w, http.StatusBadRequest, apierrors.ErrCodeValidation)
}

func (suite *TaskHandlerTestSuite) TestGenerateTasks_NotConfigured() {
	w := suite.env.do(suite.T(), http.MethodPost, suite.tasksPath()+"/generate", map[string]string{
		"text": "Plan the launch",
	}, suite.as(suite.alice))

	requireAPIError(suite.T(), w, http.StatusServiceUnavailable, apierrors.ErrCodeServiceUnavailable)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}

type fakeDrafter struct {
	drafts []services.GeneratedTask
	text   string
}

func (f *fakeDrafter) DraftTasks(_ context.Context, _ string, text string) ([]services.GeneratedTask, error) {
	f.text = text
	return f.drafts, nil
}

func TestGenerateTasks_ReturnsDrafts(t *testing.T) {
	drafter := &fakeDrafter{drafts: []services.GeneratedTask{
		{Title: "Draft outline", Description: "first pass", Priority: models.TaskPriorityHigh},
		{Title: "  ", Description: "dropped"},
		{Title: "Review", Priority: "Whenever"},
	}}
	env := setupHandlerTestEnv(t, drafter)
	alice := testutil.CreateUser(t, env.db, "alice")
	project := testutil.CreateProject(t, env.db, "Roadmap", alice.ID)

	w := env.do(t, http.MethodPost, "/projects/"+itoa(project.ID)+"/tasks/generate", map[string]string{
		"text": "  Plan the launch  ",
	}, env.accessToken(t, alice))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	response := decode[dto.TaskDraftsResponse](t, w)
	require.Len(t, response.Tasks, 2)
	assert.Equal(t, "Draft outline", response.Tasks[0].Title)
	assert.Equal(t, models.TaskPriorityMedium, response.Tasks[1].Priority)
	assert.Equal(t, "Plan the launch", drafter.text)
	assert.Zero(t, testutil.Count(t, env.db, &models.Task{}), "drafts are not persisted")
}

func TestGenerateTasks_BlankText(t *testing.T) {
	env := setupHandlerTestEnv(t, &fakeDrafter{})
	alice := testutil.CreateUser(t, env.db, "alice")
	project := testutil.CreateProject(t, env.db, "Roadmap", alice.ID)

	w := env.do(t, http.MethodPost, "/projects/"+itoa(project.ID)+"/tasks/generate", map[string]string{
		"text": "   ",
	}, env.accessToken(t, alice))

	apiErr := requireAPIError(t, w, http.StatusBadRequest, apierrors.ErrCodeValidation)
	assert.Contains(t, apiErr.Details, "text")
}
