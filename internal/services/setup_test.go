package services

import (
	"testing"
	"time"

	"github.com/Wahidu1/projects-tech-foring/internal/repository"
	"github.com/Wahidu1/projects-tech-foring/internal/testutil"
	"github.com/Wahidu1/projects-tech-foring/internal/token"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type serviceEnv struct {
	db       *gorm.DB
	clock    *testClock
	users    *UserService
	auth     *AuthService
	projects *ProjectService
	members  *MemberService
	tasks    *TaskService
	comments *CommentService
}

func setupServiceEnv(t *testing.T) serviceEnv {
	return setupServiceEnvWithDrafter(t, nil)
}

func setupServiceEnvWithDrafter(t *testing.T, drafter TaskDrafter) serviceEnv {
	t.Helper()

	db := testutil.NewDB(t)
	clock := &testClock{now: time.Now()}

	tokens, err := token.NewManager(token.Config{
		Secret:     []byte("test-secret"),
		Issuer:     "test",
		AccessTTL:  5 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		Now:        clock.Now,
	})
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	users := NewUserService(userRepo, NewBcryptHasher(bcrypt.MinCost))

	return serviceEnv{
		db:       db,
		clock:    clock,
		users:    users,
		auth:     NewAuthService(users, tokens),
		projects: NewProjectService(projectRepo, userRepo),
		members:  NewMemberService(memberRepo, projectRepo, userRepo),
		tasks:    NewTaskService(taskRepo, projectRepo, userRepo, drafter),
		comments: NewCommentService(commentRepo, taskRepo),
	}
}

func ptr[T any](v T) *T {
	return &v
}
