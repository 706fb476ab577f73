package services

import (
	"testing"

	"github.com/Wahidu1/projects-tech-foring/internal/models"
	"github.com/Wahidu1/projects-tech-foring/internal/policy"
	"github.com/Wahidu1/projects-tech-foring/internal/testutil"
	"github.com/Wahidu1/projects-tech-foring/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberService_OwnerWithoutAdminRowCannotAdd(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	project := testutil.CreateProject(t, env.db, "Roadmap", alice.ID)

	_, err := env.members.AddMember(policy.IdentityOf(alice), project.ID, AddMemberInput{UserID: bob.ID, Role: models.RoleMember})

	require.ErrorIs(t, err, policy.ErrPermissionDenied)
	assert.Equal(t, int64(0), testutil.Count(t, env.db, &models.ProjectMember{}))
}

func TestMemberService_SuperuserBootstrapsAdmin(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	root := testutil.CreateSuperuser(t, env.db, "root")
	project := testutil.CreateProject(t, env.db, "Roadmap", alice.ID)

	admin, err := env.members.AddMember(policy.IdentityOf(root), project.ID, AddMemberInput{UserID: alice.ID, Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "alice", admin.User.Username)

	member, err := env.members.AddMember(policy.IdentityOf(alice), project.ID, AddMemberInput{UserID: bob.ID, Role: models.RoleMember})
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, member.Role)

	members, total, err := env.members.ListMembers(policy.IdentityOf(bob), project.ID, utils.NewPaginationParams(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, members, 2)
}

func TestMemberService_MemberRoleCannotManage(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	carol := testutil.CreateUser(t, env.db, "carol")
	project := testutil.CreateProject(t, env.db, "Roadmap", alice.ID)
	adminRow := testutil.CreateMember(t, env.db, project.ID, alice.ID, models.RoleAdmin)
	testutil.CreateMember(t, env.db, project.ID, bob.ID, models.RoleMember)

	bobID := policy.IdentityOf(bob)

	_, err := env.members.AddMember(bobID, project.ID, AddMemberInput{UserID: carol.ID, Role: models.RoleMember})
	assert.ErrorIs(t, err, policy.ErrPermissionDenied)

	_, err = env.members.UpdateMember(bobID, adminRow.ID, MemberPatch{Role: ptr(models.RoleMember)}, false)
	assert.ErrorIs(t, err, policy.ErrPermissionDenied)

	err = env.members.RemoveMember(bobID, adminRow.ID)
	assert.ErrorIs(t, err, policy.ErrPermissionDenied)

	assert.Equal(t, int64(2), testutil.Count(t, env.db, &models.ProjectMember{}, "project_id = ?", project.ID))
}

func TestMemberService_SuperuserWithMemberRoleCannotManage(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	carol := testutil.CreateUser(t, env.db, "carol")
	root := testutil.CreateSuperuser(t, env.db, "root")
	project := testutil.CreateProject(t, env.db, "Roadmap", alice.ID)
	adminRow := testutil.CreateMember(t, env.db, project.ID, alice.ID, models.RoleAdmin)
	testutil.CreateMember(t, env.db, project.ID, root.ID, models.RoleMember)

	rootID := policy.IdentityOf(root)

	_, err := env.members.AddMember(rootID, project.ID, AddMemberInput{UserID: carol.ID, Role: models.RoleMember})
	assert.ErrorIs(t, err, policy.ErrPermissionDenied)

	err = env.members.RemoveMember(rootID, adminRow.ID)
	assert.ErrorIs(t, err, policy.ErrPermissionDenied)

	assert.Equal(t, int64(2), testutil.Count(t, env.db, &models.ProjectMember{}, "project_id = ?", project.ID))
}

func TestMemberService_AdminOfAnotherProjectIsDenied(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	roadmap := testutil.CreateProject(t, env.db, "Roadmap", alice.ID)
	other := testutil.CreateProject(t, env.db, "Other", bob.ID)
	testutil.CreateMember(t, env.db, other.ID, bob.ID, models.RoleAdmin)

	_, err := env.members.AddMember(policy.IdentityOf(bob), roadmap.ID, AddMemberInput{UserID: bob.ID, Role: models.RoleAdmin})

	assert.ErrorIs(t, err, policy.ErrPermissionDenied)
}

func TestMemberService_AddMemberValidation(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	project := testutil.CreateProject(t, env.db, "Roadmap", alice.ID)
	testutil.CreateMember(t, env.db, project.ID, alice.ID, models.RoleAdmin)
	actor := policy.IdentityOf(alice)

	_, err := env.members.AddMember(actor, project.ID, AddMemberInput{UserID: bob.ID, Role: "Owner"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "role")

	_, err = env.members.AddMember(actor, project.ID, AddMemberInput{UserID: 9999, Role: models.RoleMember})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "user")

	_, err = env.members.AddMember(actor, project.ID, AddMemberInput{UserID: alice.ID, Role: models.RoleMember})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.members.AddMember(actor, 9999, AddMemberInput{UserID: bob.ID, Role: models.RoleMember})
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestMemberService_UpdateAndRemove(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	project := testutil.CreateProject(t, env.db, "Roadmap", alice.ID)
	testutil.CreateMember(t, env.db, project.ID, alice.ID, models.RoleAdmin)
	bobRow := testutil.CreateMember(t, env.db, project.ID, bob.ID, models.RoleMember)
	actor := policy.IdentityOf(alice)

	_, err := env.members.UpdateMember(actor, bobRow.ID, MemberPatch{Role: ptr(models.RoleAdmin)}, true)
	require.ErrorIs(t, err, ErrValidation)

	updated, err := env.members.UpdateMember(actor, bobRow.ID, MemberPatch{Role: ptr(models.RoleAdmin)}, false)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	require.NoError(t, env.members.RemoveMember(actor, bobRow.ID))

	_, err = env.members.GetMember(actor, bobRow.ID)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}
