package services

import (
	"community_tool_share/apperr"
	"community_tool_share/db"
	"community_tool_share/models"
	"context"
	"strings"

	"github.com/google/uuid"
)

type ToolService struct{ base }

type ToolInput struct {
	Name        string
	Description string
	Category    string
	Images      string
	Condition   string
	Location    string
}

// ToolPatch nil 字段不修改；状态不能通过这里改
type ToolPatch struct {
	Name        *string
	Description *string
	Category    *string
	Images      *string
	Condition   *string
	Location    *string
}

func (p ToolPatch) fields() map[string]any {
	m := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			m[col] = strings.TrimSpace(*v)
		}
	}
	set("name", p.Name)
	set("description", p.Description)
	set("category", p.Category)
	set("images", p.Images)
	set("tool_condition", p.Condition)
	set("location", p.Location)
	return m
}

// ParseAuditAction 大小写不敏感，未知动作是校验错误
func ParseAuditAction(s string) (models.AuditAction, error) {
	switch a := models.AuditAction(strings.ToLower(strings.TrimSpace(s))); a {
	case models.AuditApprove, models.AuditReject:
		return a, nil
	}
	return "", apperr.Validation("action must be approve or reject")
}

var auditableStatuses = []models.ToolStatus{models.ToolPendingReview, models.ToolRejected, models.ToolOffline}

func (s *ToolService) Publish(ctx context.Context, ownerID string, in ToolInput) (*db.ToolRow, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	var toolID string
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		if _, err := tx.FindUserByID(ctx, ownerID); err != nil {
			return lookupErr(err, "User", "id", ownerID)
		}
		t := &models.Tool{
			ID:          uuid.NewString(),
			OwnerID:     ownerID,
			Name:        name,
			Description: strings.TrimSpace(in.Description),
			Category:    strings.TrimSpace(in.Category),
			Images:      in.Images,
			Condition:   strings.TrimSpace(in.Condition),
			Location:    strings.TrimSpace(in.Location),
			Status:      models.ToolPendingReview,
		}
		if err := tx.CreateTool(ctx, t); err != nil {
			return apperr.Wrap(err, "create tool")
		}
		if _, err := tx.AddPoints(ctx, ownerID, PointsPublish, models.PointPublish, "Points for publishing tool: "+t.Name); err != nil {
			return apperr.Wrap(err, "award publish points")
		}
		toolID = t.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("tool published", "tool", toolID, "owner", ownerID)
	return s.Get(ctx, toolID)
}

func (s *ToolService) ListAvailable(ctx context.Context, keyword, category string) ([]db.ToolRow, error) {
	return s.list(ctx, db.ToolFilter{
		Statuses: []models.ToolStatus{models.ToolAvailable},
		Keyword:  keyword,
		Category: category,
	})
}

func (s *ToolService) ListMine(ctx context.Context, ownerID string) ([]db.ToolRow, error) {
	return s.list(ctx, db.ToolFilter{OwnerID: ownerID})
}

// ListAll 管理端，可按状态过滤
func (s *ToolService) ListAll(ctx context.Context, status string) ([]db.ToolRow, error) {
	f := db.ToolFilter{}
	if status = strings.ToUpper(strings.TrimSpace(status)); status != "" {
		f.Statuses = []models.ToolStatus{models.ToolStatus(status)}
	}
	return s.list(ctx, f)
}

func (s *ToolService) list(ctx context.Context, f db.ToolFilter) ([]db.ToolRow, error) {
	rows, err := s.repo.ListToolRows(ctx, f)
	if err != nil {
		return nil, apperr.Wrap(err, "list tools")
	}
	return rows, nil
}

func (s *ToolService) Get(ctx context.Context, id string) (*db.ToolRow, error) {
	row, err := s.repo.GetToolRow(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Tool", "id", id)
	}
	return row, nil
}

func (s *ToolService) Update(ctx context.Context, ownerID, id string, p ToolPatch) (*db.ToolRow, error) {
	fields := p.fields()
	if v, ok := fields["name"]; ok && v == "" {
		return nil, apperr.Validation("name must not be empty")
	}
	t, err := s.repo.FindToolByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Tool", "id", id)
	}
	if t.OwnerID != ownerID {
		return nil, apperr.Business("You can only update your own tools")
	}
	if err := s.repo.UpdateToolFields(ctx, id, fields); err != nil {
		return nil, lookupErr(err, "Tool", "id", id)
	}
	return s.Get(ctx, id)
}

func (s *ToolService) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.Transaction(ctx, func(tx *db.Repo) error {
		t, err := tx.LockToolByID(ctx, id)
		if err != nil {
			return lookupErr(err, "Tool", "id", id)
		}
		if t.OwnerID != ownerID {
			return apperr.Business("You can only delete your own tools")
		}
		active, err := tx.ListBorrowsForTool(ctx, id, models.ActiveBorrowStatuses)
		if err != nil {
			return apperr.Wrap(err, "check borrows")
		}
		if len(active) > 0 {
			return apperr.Business("Tool has active borrow requests and cannot be deleted")
		}
		if err := tx.DeleteTool(ctx, id); err != nil {
			return apperr.Wrap(err, "delete tool")
		}
		s.log.Info("tool deleted", "tool", id, "owner", ownerID)
		return nil
	})
}

// Audit approve -> AVAILABLE，reject -> REJECTED
func (s *ToolService) Audit(ctx context.Context, admin Actor, id string, action models.AuditAction) (*db.ToolRow, error) {
	to := models.ToolRejected
	if action == models.AuditApprove {
		to = models.ToolAvailable
	}
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		t, err := tx.LockToolByID(ctx, id)
		if err != nil {
			return lookupErr(err, "Tool", "id", id)
		}
		ok, err := tx.SwapToolStatus(ctx, t.ID, auditableStatuses, to)
		if err != nil {
			return apperr.Wrap(err, "update tool status")
		}
		if !ok {
			return apperr.Businessf("Tool in status %s cannot be audited", t.Status)
		}
		_, err = tx.LogAdminAction(ctx, db.AdminAction{
			ActorID:       admin.ID,
			ActorUsername: admin.Username,
			Action:        "tool." + string(action),
			TargetType:    "tool",
			TargetID:      t.ID,
		})
		if err != nil {
			return apperr.Wrap(err, "audit log")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("tool audited", "tool", id, "action", action, "admin", admin.Username)
	return s.Get(ctx, id)
}

// ForceOffline 借出中或已批准未取的工具不能下架；待审批的申请一并拒绝
func (s *ToolService) ForceOffline(ctx context.Context, admin Actor, id, reason string) (*db.ToolRow, error) {
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		t, err := tx.LockToolByID(ctx, id)
		if err != nil {
			return lookupErr(err, "Tool", "id", id)
		}
		if t.Status == models.ToolOffline {
			return apperr.Business("Tool is already offline")
		}
		busy, err := tx.ListBorrowsForTool(ctx, id, []models.BorrowStatus{models.BorrowApproved, models.BorrowPickedUp})
		if err != nil {
			return apperr.Wrap(err, "check borrows")
		}
		if len(busy) > 0 {
			return apperr.Business("Tool has borrows in progress and cannot be taken offline")
		}

		pending, err := tx.ListBorrowsForTool(ctx, id, []models.BorrowStatus{models.BorrowApplied})
		if err != nil {
			return apperr.Wrap(err, "list pending borrows")
		}
		now := s.now()
		for _, rec := range pending {
			if err := tx.TransitionBorrow(ctx, rec.ID, models.BorrowApplied, models.BorrowRejected, "", now); err != nil {
				return apperr.Wrap(err, "reject pending borrow")
			}
			if _, err := tx.CreateNotification(ctx, rec.BorrowerID,
				"Borrow Request Rejected",
				"Your borrow request has been rejected.",
				models.NotifyBorrowRejected, rec.ID,
			); err != nil {
				return apperr.Wrap(err, "notify borrower")
			}
		}

		if _, err := tx.SwapToolStatus(ctx, id, []models.ToolStatus{t.Status}, models.ToolOffline); err != nil {
			return apperr.Wrap(err, "take tool offline")
		}
		var why *string
		if r := strings.TrimSpace(reason); r != "" {
			why = &r
		}
		if _, err := tx.LogAdminAction(ctx, db.AdminAction{
			ActorID:       admin.ID,
			ActorUsername: admin.Username,
			Action:        "tool.offline",
			TargetType:    "tool",
			TargetID:      id,
			Reason:        why,
		}); err != nil {
			return apperr.Wrap(err, "audit log")
		}
		s.log.Info("tool forced offline", "tool", id, "rejected", len(pending), "admin", admin.Username)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
