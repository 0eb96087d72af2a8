package db

import (
	"community_tool_share/models"
	"context"
	"fmt"

	"github.com/google/uuid"
)

type AdminAction struct {
	ActorID       string
	ActorUsername string
	Action        string
	TargetType    string
	TargetID      string
	Reason        *string
}

func (r *Repo) LogAdminAction(ctx context.Context, a AdminAction) (*models.AuditLog, error) {
	entry := &models.AuditLog{
		ID:            uuid.NewString(),
		ActorID:       a.ActorID,
		ActorUsername: a.ActorUsername,
		Action:        a.Action,
		TargetType:    a.TargetType,
		TargetID:      a.TargetID,
		Reason:        a.Reason,
	}
	if err := r.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("insert audit log: %w", err)
	}
	return entry, nil
}

func (r *Repo) ListAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	logs := make([]models.AuditLog, 0)
	err := r.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
