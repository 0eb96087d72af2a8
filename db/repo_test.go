package db

import (
	"community_tool_share/models"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	conn, err := OpenSQLite(filepath.Join(t.TempDir(), "tools_test.db"), logger.Silent)
	require.NoError(t, err, "open db")
	require.NoError(t, Migrate(conn), "migrate")
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewRepo(conn)
}

func seedUser(t *testing.T, r *Repo, username string) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.NewString(), Username: username, PasswordHash: "x", DisplayName: username + "-nick", Role: models.RoleUser, Status: models.UserStatusActive}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func seedTool(t *testing.T, r *Repo, ownerID string, status models.ToolStatus) *models.Tool {
	t.Helper()
	tool := &models.Tool{ID: uuid.NewString(), OwnerID: ownerID, Name: "Cordless Drill", Category: "power", Status: status}
	require.NoError(t, r.CreateTool(context.Background(), tool))
	return tool
}

func newBorrow(toolID, borrowerID, ownerID string) *models.BorrowRecord {
	return &models.BorrowRecord{
		ID: uuid.NewString(), ToolID: toolID, BorrowerID: borrowerID, OwnerID: ownerID,
		Status: models.BorrowApplied, ApplyTime: time.Now().UTC(),
	}
}

func TestActiveBorrowUniqueIndex(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	owner := seedUser(t, r, "owner")
	borrower := seedUser(t, r, "borrower")
	tool := seedTool(t, r, owner.ID, models.ToolAvailable)

	first := newBorrow(tool.ID, borrower.ID, owner.ID)
	require.NoError(t, r.CreateBorrowRecord(ctx, first))

	err := r.CreateBorrowRecord(ctx, newBorrow(tool.ID, borrower.ID, owner.ID))
	assert.ErrorIs(t, err, ErrDuplicateActiveBorrow)

	// 结束后的记录不占索引
	require.NoError(t, r.TransitionBorrow(ctx, first.ID, models.BorrowApplied, models.BorrowRejected, "", time.Time{}))
	assert.NoError(t, r.CreateBorrowRecord(ctx, newBorrow(tool.ID, borrower.ID, owner.ID)))

	// 其他借用人不受影响
	other := seedUser(t, r, "other")
	assert.NoError(t, r.CreateBorrowRecord(ctx, newBorrow(tool.ID, other.ID, owner.ID)))
}

func TestTransitionBorrowIsConditional(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	owner := seedUser(t, r, "owner")
	borrower := seedUser(t, r, "borrower")
	tool := seedTool(t, r, owner.ID, models.ToolAvailable)
	rec := newBorrow(tool.ID, borrower.ID, owner.ID)
	require.NoError(t, r.CreateBorrowRecord(ctx, rec))

	at := time.Now().UTC()
	require.NoError(t, r.TransitionBorrow(ctx, rec.ID, models.BorrowApplied, models.BorrowApproved, "approve_time", at))
	err := r.TransitionBorrow(ctx, rec.ID, models.BorrowApplied, models.BorrowApproved, "approve_time", at)
	assert.ErrorIs(t, err, ErrStaleTransition)

	got, err := r.FindBorrowByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BorrowApproved, got.Status)
	require.NotNil(t, got.ApproveTime)
	assert.Nil(t, got.PickupTime)
}

func TestAddPointsKeepsLedgerAndBalanceInSync(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	u := seedUser(t, r, "alice")

	for _, d := range []int{10, 2, 3, -1} {
		_, err := r.AddPoints(ctx, u.ID, d, models.PointBonus, "test")
		require.NoError(t, err)
	}
	got, err := r.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	sum, err := r.LedgerBalance(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 14, got.Points)
	assert.Equal(t, got.Points, sum)

	_, err = r.AddPoints(ctx, uuid.NewString(), 5, models.PointBonus, "ghost")
	assert.True(t, IsNotFound(err))
}

func TestAddPointsRollsBackWithTransaction(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	u := seedUser(t, r, "bob")

	err := r.Transaction(ctx, func(tx *Repo) error {
		if _, err := tx.AddPoints(ctx, u.ID, 5, models.PointBonus, "rolled back"); err != nil {
			return err
		}
		_, err := tx.AddPoints(ctx, uuid.NewString(), 5, models.PointBonus, "missing user")
		return err
	})
	require.Error(t, err)

	recs, err := r.ListPointRecords(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, recs)
	got, _ := r.FindUserByID(ctx, u.ID)
	assert.Equal(t, 0, got.Points)
}

func TestRankUsersOrdersByPointsThenArrival(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	a := seedUser(t, r, "a")
	time.Sleep(2 * time.Millisecond)
	b := seedUser(t, r, "b")
	time.Sleep(2 * time.Millisecond)
	c := seedUser(t, r, "c")
	_, _ = r.AddPoints(ctx, a.ID, 5, models.PointBonus, "")
	_, _ = r.AddPoints(ctx, b.ID, 7, models.PointBonus, "")
	_, _ = r.AddPoints(ctx, c.ID, 5, models.PointBonus, "")
	require.NoError(t, r.SetUserStatus(ctx, c.ID, models.UserStatusDisabled))

	ranked, err := r.RankUsers(ctx, 50)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, b.ID, ranked[0].ID)
	assert.Equal(t, a.ID, ranked[1].ID)
}

func TestSwapToolStatus(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	owner := seedUser(t, r, "owner")
	tool := seedTool(t, r, owner.ID, models.ToolAvailable)

	ok, err := r.SwapToolStatus(ctx, tool.ID, []models.ToolStatus{models.ToolAvailable}, models.ToolBorrowed)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.SwapToolStatus(ctx, tool.ID, []models.ToolStatus{models.ToolAvailable}, models.ToolBorrowed)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListToolRowsFiltersAndEnriches(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	owner := seedUser(t, r, "owner")
	seedTool(t, r, owner.ID, models.ToolAvailable)
	seedTool(t, r, owner.ID, models.ToolPendingReview)
	ladder := &models.Tool{ID: uuid.NewString(), OwnerID: owner.ID, Name: "Step Ladder", Category: "hand", Status: models.ToolAvailable}
	require.NoError(t, r.CreateTool(ctx, ladder))

	rows, err := r.ListToolRows(ctx, ToolFilter{Statuses: []models.ToolStatus{models.ToolAvailable}})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, "owner-nick", row.OwnerName)
	}

	rows, err = r.ListToolRows(ctx, ToolFilter{Statuses: []models.ToolStatus{models.ToolAvailable}, Keyword: "LADDER"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ladder.ID, rows[0].ID)

	rows, err = r.ListToolRows(ctx, ToolFilter{Category: "power"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = r.GetToolRow(ctx, uuid.NewString())
	assert.True(t, IsNotFound(err))
}

func TestReviewUniquePerBorrow(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	borrowID := uuid.NewString()
	rv := func() *models.Review {
		return &models.Review{ID: uuid.NewString(), BorrowRecordID: borrowID, ReviewerID: uuid.NewString(), ToolID: uuid.NewString(), Rating: 5}
	}
	require.NoError(t, r.CreateReview(ctx, rv()))
	assert.ErrorIs(t, r.CreateReview(ctx, rv()), ErrDuplicateReview)
}
