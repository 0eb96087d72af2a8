package services

import (
	"community_tool_share/apperr"
	"community_tool_share/models"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "alice")
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Equal(t, PointsRegister, f.points(t, u.ID))
	assert.NotEqual(t, "secret123", u.PasswordHash)

	_, err := f.svc.Users.Register(ctx, RegisterInput{Username: "alice", Password: "another1"})
	requireKind(t, err, apperr.KindBusinessRule)
	_, err = f.svc.Users.Register(ctx, RegisterInput{Username: "bo", Password: "another1"})
	requireKind(t, err, apperr.KindValidation)
	_, err = f.svc.Users.Register(ctx, RegisterInput{Username: "carol", Password: "123"})
	requireKind(t, err, apperr.KindValidation)

	got, err := f.svc.Users.Login(ctx, "alice", "secret123", "127.0.0.1", "test")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.svc.Users.Login(ctx, "alice", "wrong", "", "")
	requireKind(t, err, apperr.KindUnauthorized)
	_, err = f.svc.Users.Login(ctx, "nobody", "secret123", "", "")
	requireKind(t, err, apperr.KindUnauthorized)

	p, err := f.svc.Users.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, p.LoginCount)
	assert.NotNil(t, p.LastLoginAt)
}

func TestDisabledUserCannotLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "mallory")

	require.NoError(t, f.svc.Users.SetStatus(ctx, f.admin, u.ID, models.UserStatusDisabled))
	_, err := f.svc.Users.Login(ctx, "mallory", "secret123", "", "")
	requireKind(t, err, apperr.KindForbidden)
	_, err = f.svc.Users.ActiveUser(ctx, u.ID)
	requireKind(t, err, apperr.KindForbidden)

	err = f.svc.Users.SetStatus(ctx, f.admin, f.admin.ID, models.UserStatusDisabled)
	requireKind(t, err, apperr.KindBusinessRule)
	err = f.svc.Users.SetStatus(ctx, f.admin, "missing", models.UserStatusActive)
	requireKind(t, err, apperr.KindNotFound)
	err = f.svc.Users.SetStatus(ctx, f.admin, u.ID, 7)
	requireKind(t, err, apperr.KindValidation)

	require.NoError(t, f.svc.Users.SetStatus(ctx, f.admin, u.ID, models.UserStatusActive))
	_, err = f.svc.Users.Login(ctx, "mallory", "secret123", "", "")
	require.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "dave")

	nick, phone := "Dave D", "555-0100"
	got, err := f.svc.Users.UpdateProfile(ctx, u.ID, ProfilePatch{DisplayName: &nick, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Dave D", got.DisplayName)
	assert.Equal(t, "555-0100", got.Phone)

	empty := " "
	_, err = f.svc.Users.UpdateProfile(ctx, u.ID, ProfilePatch{DisplayName: &empty})
	requireKind(t, err, apperr.KindValidation)
}

func TestBootstrapAdmins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "erin")

	n, err := f.svc.Users.BootstrapAdmins(ctx, []string{" erin ", "", "ghost"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// 已是管理员不重复计数
	n, err = f.svc.Users.BootstrapAdmins(ctx, []string{"erin", "root"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	res, err := f.svc.Users.List(ctx, "eri", 1, 10)
	require.NoError(t, err)
	require.Len(t, res.Users, 1)
	assert.True(t, res.Users[0].IsAdmin())
}
