package services

import (
	"community_tool_share/apperr"
	"community_tool_share/models"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBorrowLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	borrower := f.user(t, "borrower")
	tool := f.availableTool(t, owner.ID, "Ladder")

	ownerStart := f.points(t, owner.ID)
	borrowerStart := f.points(t, borrower.ID)

	// 申请：记录 APPLIED，工具不变，借用人 +2，物主收到一条通知
	rec, err := f.svc.Borrows.Apply(ctx, borrower.ID, tool.ID, "weekend project")
	require.NoError(t, err)
	assert.Equal(t, models.BorrowApplied, rec.Status)
	assert.Equal(t, owner.ID, rec.OwnerID)
	assert.Equal(t, "Ladder", rec.ToolName)
	assert.Equal(t, models.ToolAvailable, f.toolStatus(t, tool.ID))
	assert.Equal(t, borrowerStart+PointsApply, f.points(t, borrower.ID))

	notes, err := f.svc.Notifications.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotifyBorrowApply, notes[0].Type)
	assert.Equal(t, "borrower-nick wants to borrow your tool: Ladder", notes[0].Content)
	assert.Equal(t, rec.ID, notes[0].RelatedID)

	// 批准
	rec, err = f.svc.Borrows.Approve(ctx, owner.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BorrowApproved, rec.Status)
	require.NotNil(t, rec.ApproveTime)
	assert.Equal(t, ownerStart+PointsLend, f.points(t, owner.ID))

	_, err = f.svc.Borrows.Approve(ctx, owner.ID, rec.ID)
	requireKind(t, err, apperr.KindBusinessRule)
	assert.Equal(t, ownerStart+PointsLend, f.points(t, owner.ID))

	unread, err := f.svc.Notifications.UnreadCount(ctx, borrower.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	// 取件
	rec, err = f.svc.Borrows.ConfirmPickup(ctx, borrower.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BorrowPickedUp, rec.Status)
	require.NotNil(t, rec.PickupTime)
	assert.Equal(t, models.ToolBorrowed, f.toolStatus(t, tool.ID))

	// 归还（物主确认也可以）
	rec, err = f.svc.Borrows.ConfirmReturn(ctx, owner.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BorrowReturned, rec.Status)
	require.NotNil(t, rec.ReturnTime)
	assert.Equal(t, models.ToolAvailable, f.toolStatus(t, tool.ID))
	assert.Equal(t, borrowerStart+PointsApply+PointsReturn, f.points(t, borrower.ID))

	assert.False(t, rec.ApproveTime.After(*rec.PickupTime))
	assert.False(t, rec.PickupTime.After(*rec.ReturnTime))
	assert.False(t, rec.ApplyTime.After(*rec.ApproveTime))
}

func TestApplyRequiresAvailableTool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	borrower := f.user(t, "borrower")

	pending, err := f.svc.Tools.Publish(ctx, owner.ID, ToolInput{Name: "Saw"})
	require.NoError(t, err)

	before := f.points(t, borrower.ID)
	_, err = f.svc.Borrows.Apply(ctx, borrower.ID, pending.ID, "")
	requireKind(t, err, apperr.KindBusinessRule)
	assert.Equal(t, before, f.points(t, borrower.ID))

	_, err = f.svc.Borrows.Apply(ctx, borrower.ID, "missing-tool", "")
	requireKind(t, err, apperr.KindNotFound)

	tool := f.availableTool(t, owner.ID, "Hammer")
	_, err = f.svc.Borrows.Apply(ctx, owner.ID, tool.ID, "")
	requireKind(t, err, apperr.KindBusinessRule)
}

func TestApplyRejectsSecondActiveRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	borrower := f.user(t, "borrower")
	tool := f.availableTool(t, owner.ID, "Drill")

	first, err := f.svc.Borrows.Apply(ctx, borrower.ID, tool.ID, "")
	require.NoError(t, err)
	_, err = f.svc.Borrows.Apply(ctx, borrower.ID, tool.ID, "")
	requireKind(t, err, apperr.KindBusinessRule)
	assert.Equal(t, "You already have an active borrow request for this tool", err.Error())

	// 被拒后可以重新申请
	_, err = f.svc.Borrows.Reject(ctx, owner.ID, first.ID)
	require.NoError(t, err)
	_, err = f.svc.Borrows.Apply(ctx, borrower.ID, tool.ID, "")
	require.NoError(t, err)
}

func TestConcurrentApplyOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	borrower := f.user(t, "borrower")
	tool := f.availableTool(t, owner.ID, "Jigsaw")
	before := f.points(t, borrower.ID)

	const n = 2
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Borrows.Apply(context.Background(), borrower.ID, tool.ID, "")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		requireKind(t, err, apperr.KindBusinessRule)
	}
	assert.Equal(t, 1, ok)

	mine, err := f.svc.Borrows.ListMine(context.Background(), borrower.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.Equal(t, before+PointsApply, f.points(t, borrower.ID))
}

func TestTransitionsEnforceActor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	borrower := f.user(t, "borrower")
	stranger := f.user(t, "stranger")
	tool := f.availableTool(t, owner.ID, "Sander")

	rec, err := f.svc.Borrows.Apply(ctx, borrower.ID, tool.ID, "")
	require.NoError(t, err)

	_, err = f.svc.Borrows.Approve(ctx, borrower.ID, rec.ID)
	requireKind(t, err, apperr.KindBusinessRule)
	_, err = f.svc.Borrows.Reject(ctx, stranger.ID, rec.ID)
	requireKind(t, err, apperr.KindBusinessRule)

	_, err = f.svc.Borrows.Approve(ctx, owner.ID, rec.ID)
	require.NoError(t, err)
	_, err = f.svc.Borrows.ConfirmPickup(ctx, owner.ID, rec.ID)
	requireKind(t, err, apperr.KindBusinessRule)
	_, err = f.svc.Borrows.ConfirmPickup(ctx, borrower.ID, rec.ID)
	require.NoError(t, err)

	// 第三方确认归还：失败且无状态变化
	_, err = f.svc.Borrows.ConfirmReturn(ctx, stranger.ID, rec.ID)
	requireKind(t, err, apperr.KindBusinessRule)
	assert.Equal(t, "Only the borrower or the tool owner can confirm return", err.Error())
	got, err := f.svc.Borrows.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BorrowPickedUp, got.Status)
	assert.Nil(t, got.ReturnTime)
	assert.Equal(t, models.ToolBorrowed, f.toolStatus(t, tool.ID))

	_, err = f.svc.Borrows.Approve(ctx, owner.ID, "nope")
	requireKind(t, err, apperr.KindNotFound)
}

func TestRejectNotifiesBorrower(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	borrower := f.user(t, "borrower")
	tool := f.availableTool(t, owner.ID, "Clamp")

	rec, err := f.svc.Borrows.Apply(ctx, borrower.ID, tool.ID, "")
	require.NoError(t, err)
	rec, err = f.svc.Borrows.Reject(ctx, owner.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BorrowRejected, rec.Status)
	assert.Nil(t, rec.ApproveTime)

	notes, err := f.svc.Notifications.List(ctx, borrower.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotifyBorrowRejected, notes[0].Type)

	_, err = f.svc.Borrows.ConfirmPickup(ctx, borrower.ID, rec.ID)
	requireKind(t, err, apperr.KindBusinessRule)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, canTransition(models.BorrowApplied, models.BorrowApproved))
	assert.True(t, canTransition(models.BorrowApplied, models.BorrowRejected))
	assert.True(t, canTransition(models.BorrowApproved, models.BorrowPickedUp))
	assert.True(t, canTransition(models.BorrowPickedUp, models.BorrowReturned))

	assert.False(t, canTransition(models.BorrowApproved, models.BorrowRejected))
	assert.False(t, canTransition(models.BorrowReturned, models.BorrowApplied))
	assert.False(t, canTransition(models.BorrowApplied, models.BorrowPickedUp))
}

func TestBorrowCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	a := f.user(t, "alice")
	b := f.user(t, "bob")
	tool := f.availableTool(t, owner.ID, "Router")

	ra, err := f.svc.Borrows.Apply(ctx, a.ID, tool.ID, "")
	require.NoError(t, err)
	_, err = f.svc.Borrows.Apply(ctx, b.ID, tool.ID, "")
	require.NoError(t, err)
	_, err = f.svc.Borrows.Reject(ctx, owner.ID, ra.ID)
	require.NoError(t, err)

	active, err := f.svc.Borrows.ActiveCount(ctx)
	require.NoError(t, err)
	total, err := f.svc.Borrows.TotalCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, active)
	assert.EqualValues(t, 2, total)

	received, err := f.svc.Borrows.ListReceived(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, received, 2)
}

func TestPickupRequiresToolInHand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	tool := f.availableTool(t, owner.ID, "Chainsaw")

	recA, err := f.svc.Borrows.Apply(ctx, alice.ID, tool.ID, "")
	require.NoError(t, err)
	recB, err := f.svc.Borrows.Apply(ctx, bob.ID, tool.ID, "")
	require.NoError(t, err)
	_, err = f.svc.Borrows.Approve(ctx, owner.ID, recA.ID)
	require.NoError(t, err)
	_, err = f.svc.Borrows.Approve(ctx, owner.ID, recB.ID)
	require.NoError(t, err)

	_, err = f.svc.Borrows.ConfirmPickup(ctx, alice.ID, recA.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ToolBorrowed, f.toolStatus(t, tool.ID))

	_, err = f.svc.Borrows.ConfirmPickup(ctx, bob.ID, recB.ID)
	requireKind(t, err, apperr.KindBusinessRule)
	assert.Equal(t, "Tool is not available for pickup", err.Error())
	got, err := f.svc.Borrows.Get(ctx, recB.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BorrowApproved, got.Status)
	assert.Nil(t, got.PickupTime)

	_, err = f.svc.Borrows.ConfirmReturn(ctx, alice.ID, recA.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ToolAvailable, f.toolStatus(t, tool.ID))

	got, err = f.svc.Borrows.ConfirmPickup(ctx, bob.ID, recB.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BorrowPickedUp, got.Status)
	assert.Equal(t, models.ToolBorrowed, f.toolStatus(t, tool.ID))
}
