package services

import (
	"community_tool_share/apperr"
	"community_tool_share/db"
	"community_tool_share/models"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/logger"
)

type fixture struct {
	svc   *Services
	repo  *db.Repo
	admin Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "svc_test.db"), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	repo := db.NewRepo(conn)
	f := &fixture{svc: New(repo, Options{BcryptCost: bcrypt.MinCost}), repo: repo}
	admin := f.user(t, "root")
	_, err = f.svc.Users.BootstrapAdmins(context.Background(), []string{"root"})
	require.NoError(t, err)
	f.admin = Actor{ID: admin.ID, Username: admin.Username}
	return f
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := f.svc.Users.Register(context.Background(), RegisterInput{
		Username: username, Password: "secret123", DisplayName: username + "-nick",
	})
	require.NoError(t, err)
	return u
}

// availableTool 发布并审核通过
func (f *fixture) availableTool(t *testing.T, ownerID, name string) *db.ToolRow {
	t.Helper()
	ctx := context.Background()
	tool, err := f.svc.Tools.Publish(ctx, ownerID, ToolInput{Name: name, Category: "hand"})
	require.NoError(t, err)
	tool, err = f.svc.Tools.Audit(ctx, f.admin, tool.ID, models.AuditApprove)
	require.NoError(t, err)
	require.Equal(t, models.ToolAvailable, tool.Status)
	return tool
}

func (f *fixture) points(t *testing.T, userID string) int {
	t.Helper()
	bal, ledger, err := f.svc.Points.Reconcile(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, ledger, bal, "balance drifted from ledger")
	return bal
}

func (f *fixture) toolStatus(t *testing.T, id string) models.ToolStatus {
	t.Helper()
	tool, err := f.repo.FindToolByID(context.Background(), id)
	require.NoError(t, err)
	return tool.Status
}

func requireKind(t *testing.T, err error, k apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, k, apperr.KindOf(err), "got %v", err)
}
