package services

import (
	"community_tool_share/apperr"
	"community_tool_share/models"
	"context"
)

type AdminService struct{ base }

type Dashboard struct {
	TotalUsers    int64 `json:"totalUsers"`
	TotalTools    int64 `json:"totalTools"`
	PendingTools  int64 `json:"pendingAuditCount"`
	ActiveBorrows int64 `json:"activeBorrows"`
	TotalBorrows  int64 `json:"totalBorrows"`
}

func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	var err error
	if d.TotalUsers, err = s.repo.CountUsers(ctx); err != nil {
		return nil, apperr.Wrap(err, "count users")
	}
	if d.TotalTools, err = s.repo.CountTools(ctx, ""); err != nil {
		return nil, apperr.Wrap(err, "count tools")
	}
	if d.PendingTools, err = s.repo.CountTools(ctx, models.ToolPendingReview); err != nil {
		return nil, apperr.Wrap(err, "count pending tools")
	}
	if d.ActiveBorrows, err = s.repo.CountBorrows(ctx, models.ActiveBorrowStatuses); err != nil {
		return nil, apperr.Wrap(err, "count active borrows")
	}
	if d.TotalBorrows, err = s.repo.CountBorrows(ctx, nil); err != nil {
		return nil, apperr.Wrap(err, "count borrows")
	}
	return &d, nil
}

func (s *AdminService) AuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	logs, err := s.repo.ListAuditLogs(ctx, limit)
	if err != nil {
		return nil, apperr.Wrap(err, "list audit logs")
	}
	return logs, nil
}
