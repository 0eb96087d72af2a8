package controllers

import (
	"community_tool_share/app"
	"community_tool_share/db"
	"context"

	"github.com/gin-gonic/gin"
)

type borrowReq struct {
	ToolID string `json:"toolId" binding:"required"`
	Remark string `json:"remark" binding:"max=500"`
}

func (s *Srv) ApplyBorrow(c *gin.Context) {
	var in borrowReq
	if !bind(c, &in) {
		return
	}
	rec, err := s.Svc.Borrows.Apply(c.Request.Context(), app.UserID(c), in.ToolID, in.Remark)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Borrow request submitted", rec)
}

func (s *Srv) MyBorrows(c *gin.Context) {
	rows, err := s.Svc.Borrows.ListMine(c.Request.Context(), app.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", rows)
}

func (s *Srv) ReceivedBorrows(c *gin.Context) {
	rows, err := s.Svc.Borrows.ListReceived(c.Request.Context(), app.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "", rows)
}

type transitionFunc func(ctx context.Context, actorID, recordID string) (*db.BorrowRow, error)

// transition 四个状态迁移接口共用
func (s *Srv) transition(fn transitionFunc, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := fn(c.Request.Context(), app.UserID(c), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, msg, rec)
	}
}

func (s *Srv) ApproveBorrow() gin.HandlerFunc {
	return s.transition(s.Svc.Borrows.Approve, "Borrow request approved")
}

func (s *Srv) RejectBorrow() gin.HandlerFunc {
	return s.transition(s.Svc.Borrows.Reject, "Borrow request rejected")
}

func (s *Srv) ConfirmPickup() gin.HandlerFunc {
	return s.transition(s.Svc.Borrows.ConfirmPickup, "Pickup confirmed")
}

func (s *Srv) ConfirmReturn() gin.HandlerFunc {
	return s.transition(s.Svc.Borrows.ConfirmReturn, "Return confirmed")
}
