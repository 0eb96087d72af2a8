package services

import (
	"community_tool_share/apperr"
	"community_tool_share/db"
	"community_tool_share/models"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type BorrowService struct{ base }

var errDuplicateBorrow = apperr.Business("You already have an active borrow request for this tool")

// step 描述一次状态迁移：谁可以做、从哪到哪、写哪个时间戳
type step struct {
	name        string
	from, to    models.BorrowStatus
	stampColumn string
	allowed     func(rec *models.BorrowRecord, actorID string) bool
	actorMsg    string
	stateMsg    string
}

func ownerOnly(rec *models.BorrowRecord, actorID string) bool    { return rec.OwnerID == actorID }
func borrowerOnly(rec *models.BorrowRecord, actorID string) bool { return rec.BorrowerID == actorID }
func eitherParty(rec *models.BorrowRecord, actorID string) bool {
	return rec.BorrowerID == actorID || rec.OwnerID == actorID
}

var (
	approveStep = step{
		name: "approve", from: models.BorrowApplied, to: models.BorrowApproved, stampColumn: "approve_time",
		allowed: ownerOnly, actorMsg: "Only the tool owner can approve borrow requests",
		stateMsg: "Only applied borrow requests can be approved",
	}
	rejectStep = step{
		name: "reject", from: models.BorrowApplied, to: models.BorrowRejected,
		allowed: ownerOnly, actorMsg: "Only the tool owner can reject borrow requests",
		stateMsg: "Only applied borrow requests can be rejected",
	}
	pickupStep = step{
		name: "pickup", from: models.BorrowApproved, to: models.BorrowPickedUp, stampColumn: "pickup_time",
		allowed: borrowerOnly, actorMsg: "Only the borrower can confirm pickup",
		stateMsg: "Only approved borrow requests can be picked up",
	}
	returnStep = step{
		name: "return", from: models.BorrowPickedUp, to: models.BorrowReturned, stampColumn: "return_time",
		allowed: eitherParty, actorMsg: "Only the borrower or the tool owner can confirm return",
		stateMsg: "Only picked-up items can be returned",
	}
)

// canTransition 合法迁移表，APPLIED 由 Apply 创建
func canTransition(from, to models.BorrowStatus) bool {
	for _, st := range []step{approveStep, rejectStep, pickupStep, returnStep} {
		if st.from == from && st.to == to {
			return true
		}
	}
	return false
}

// Apply 申请借用：工具必须 AVAILABLE，同一借用人对同一工具不能有进行中的申请
func (s *BorrowService) Apply(ctx context.Context, borrowerID, toolID, remark string) (*db.BorrowRow, error) {
	var recID string
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		borrower, err := tx.FindUserByID(ctx, borrowerID)
		if err != nil {
			return lookupErr(err, "User", "id", borrowerID)
		}
		tool, err := tx.LockToolByID(ctx, toolID)
		if err != nil {
			return lookupErr(err, "Tool", "id", toolID)
		}
		if tool.Status != models.ToolAvailable {
			return apperr.Business("Tool is not available for borrowing")
		}
		if tool.OwnerID == borrower.ID {
			return apperr.Business("You cannot borrow your own tool")
		}
		active, err := tx.HasActiveBorrow(ctx, tool.ID, borrower.ID)
		if err != nil {
			return apperr.Wrap(err, "check active borrow")
		}
		if active {
			return errDuplicateBorrow
		}

		rec := &models.BorrowRecord{
			ID:         uuid.NewString(),
			ToolID:     tool.ID,
			BorrowerID: borrower.ID,
			OwnerID:    tool.OwnerID,
			Status:     models.BorrowApplied,
			Remark:     remark,
			ApplyTime:  s.now(),
		}
		if err := tx.CreateBorrowRecord(ctx, rec); err != nil {
			if errors.Is(err, db.ErrDuplicateActiveBorrow) {
				return errDuplicateBorrow
			}
			return apperr.Wrap(err, "create borrow record")
		}

		if _, err := tx.CreateNotification(ctx, tool.OwnerID,
			"New Borrow Request",
			fmt.Sprintf("%s wants to borrow your tool: %s", borrower.DisplayName, tool.Name),
			models.NotifyBorrowApply, rec.ID,
		); err != nil {
			return apperr.Wrap(err, "notify owner")
		}
		if _, err := tx.AddPoints(ctx, borrower.ID, PointsApply, models.PointBorrow,
			"Points for applying to borrow tool: "+tool.Name); err != nil {
			return apperr.Wrap(err, "award apply points")
		}
		recID = rec.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("borrow applied", "record", recID, "tool", toolID, "borrower", borrowerID)
	return s.Get(ctx, recID)
}

func (s *BorrowService) Approve(ctx context.Context, actorID, recordID string) (*db.BorrowRow, error) {
	return s.run(ctx, actorID, recordID, approveStep, func(tx *db.Repo, rec *models.BorrowRecord) error {
		if _, err := tx.CreateNotification(ctx, rec.BorrowerID,
			"Borrow Request Approved",
			"Your borrow request has been approved. Please arrange pickup.",
			models.NotifyBorrowApproved, rec.ID,
		); err != nil {
			return apperr.Wrap(err, "notify borrower")
		}
		if _, err := tx.AddPoints(ctx, rec.OwnerID, PointsLend, models.PointLend, "Points for lending tool"); err != nil {
			return apperr.Wrap(err, "award lend points")
		}
		return nil
	})
}

func (s *BorrowService) Reject(ctx context.Context, actorID, recordID string) (*db.BorrowRow, error) {
	return s.run(ctx, actorID, recordID, rejectStep, func(tx *db.Repo, rec *models.BorrowRecord) error {
		if _, err := tx.CreateNotification(ctx, rec.BorrowerID,
			"Borrow Request Rejected",
			"Your borrow request has been rejected.",
			models.NotifyBorrowRejected, rec.ID,
		); err != nil {
			return apperr.Wrap(err, "notify borrower")
		}
		return nil
	})
}

// ConfirmPickup 记录与工具状态在同一事务里更新，工具必须仍是 AVAILABLE
func (s *BorrowService) ConfirmPickup(ctx context.Context, actorID, recordID string) (*db.BorrowRow, error) {
	return s.run(ctx, actorID, recordID, pickupStep, func(tx *db.Repo, rec *models.BorrowRecord) error {
		ok, err := tx.SwapToolStatus(ctx, rec.ToolID, []models.ToolStatus{models.ToolAvailable}, models.ToolBorrowed)
		if err != nil {
			return apperr.Wrap(err, "mark tool borrowed")
		}
		if !ok {
			return apperr.Business("Tool is not available for pickup")
		}
		return nil
	})
}

func (s *BorrowService) ConfirmReturn(ctx context.Context, actorID, recordID string) (*db.BorrowRow, error) {
	return s.run(ctx, actorID, recordID, returnStep, func(tx *db.Repo, rec *models.BorrowRecord) error {
		tool, err := tx.FindToolByID(ctx, rec.ToolID)
		if err != nil {
			return lookupErr(err, "Tool", "id", rec.ToolID)
		}
		ok, err := tx.SwapToolStatus(ctx, tool.ID, []models.ToolStatus{models.ToolBorrowed}, models.ToolAvailable)
		if err != nil {
			return apperr.Wrap(err, "mark tool available")
		}
		if !ok {
			s.log.Warn("returned tool was not BORROWED, status left as is", "tool", tool.ID, "status", tool.Status)
		}
		if _, err := tx.AddPoints(ctx, rec.BorrowerID, PointsReturn, models.PointReturn,
			"Points for returning tool: "+tool.Name); err != nil {
			return apperr.Wrap(err, "award return points")
		}
		return nil
	})
}

func (s *BorrowService) run(ctx context.Context, actorID, recordID string, st step, effects func(tx *db.Repo, rec *models.BorrowRecord) error) (*db.BorrowRow, error) {
	if !canTransition(st.from, st.to) {
		return nil, apperr.Wrap(fmt.Errorf("illegal transition %s -> %s", st.from, st.to), st.name)
	}
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		if _, err := tx.FindUserByID(ctx, actorID); err != nil {
			return lookupErr(err, "User", "id", actorID)
		}
		rec, err := tx.LockBorrowByID(ctx, recordID)
		if err != nil {
			return lookupErr(err, "BorrowRecord", "id", recordID)
		}
		if !st.allowed(rec, actorID) {
			return apperr.Business(st.actorMsg)
		}
		if rec.Status != st.from {
			return apperr.Business(st.stateMsg)
		}
		if err := tx.TransitionBorrow(ctx, rec.ID, st.from, st.to, st.stampColumn, s.now()); err != nil {
			if errors.Is(err, db.ErrStaleTransition) {
				return apperr.Business(st.stateMsg)
			}
			return apperr.Wrap(err, "update borrow record")
		}
		rec.Status = st.to
		if effects == nil {
			return nil
		}
		return effects(tx, rec)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("borrow transition", "step", st.name, "record", recordID, "from", st.from, "to", st.to, "actor", actorID)
	return s.Get(ctx, recordID)
}

func (s *BorrowService) Get(ctx context.Context, recordID string) (*db.BorrowRow, error) {
	row, err := s.repo.GetBorrowRow(ctx, recordID)
	if err != nil {
		return nil, lookupErr(err, "BorrowRecord", "id", recordID)
	}
	return row, nil
}

func (s *BorrowService) ListMine(ctx context.Context, userID string) ([]db.BorrowRow, error) {
	rows, err := s.repo.ListBorrowRows(ctx, db.BorrowFilter{BorrowerID: userID})
	if err != nil {
		return nil, apperr.Wrap(err, "list my borrows")
	}
	return rows, nil
}

func (s *BorrowService) ListReceived(ctx context.Context, userID string) ([]db.BorrowRow, error) {
	rows, err := s.repo.ListBorrowRows(ctx, db.BorrowFilter{OwnerID: userID})
	if err != nil {
		return nil, apperr.Wrap(err, "list received borrows")
	}
	return rows, nil
}

func (s *BorrowService) ActiveCount(ctx context.Context) (int64, error) {
	n, err := s.repo.CountBorrows(ctx, models.ActiveBorrowStatuses)
	if err != nil {
		return 0, apperr.Wrap(err, "count active borrows")
	}
	return n, nil
}

func (s *BorrowService) TotalCount(ctx context.Context) (int64, error) {
	n, err := s.repo.CountBorrows(ctx, nil)
	if err != nil {
		return 0, apperr.Wrap(err, "count borrows")
	}
	return n, nil
}
