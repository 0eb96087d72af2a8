package db

import (
	"community_tool_share/models"
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ToolRow 工具 + 发布者显示名
type ToolRow struct {
	models.Tool
	OwnerName string `json:"ownerNickname"`
}

type ToolFilter struct {
	Statuses []models.ToolStatus
	OwnerID  string
	Keyword  string // 名称模糊匹配，大小写不敏感
	Category string
}

func (r *Repo) CreateTool(ctx context.Context, t *models.Tool) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *Repo) FindToolByID(ctx context.Context, id string) (*models.Tool, error) {
	var t models.Tool
	if err := r.DB.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// LockToolByID 事务内使用：SELECT ... FOR UPDATE
func (r *Repo) LockToolByID(ctx context.Context, id string) (*models.Tool, error) {
	var t models.Tool
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) toolRows(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Table(models.ToolTable + " t").
		Select("t.*, COALESCE(u.display_name, '') AS owner_name").
		Joins("LEFT JOIN " + models.UserTable + " u ON u.id = t.owner_id")
}

func (r *Repo) ListToolRows(ctx context.Context, f ToolFilter) ([]ToolRow, error) {
	q := r.toolRows(ctx)
	if len(f.Statuses) > 0 {
		q = q.Where("t.status IN ?", f.Statuses)
	}
	if f.OwnerID != "" {
		q = q.Where("t.owner_id = ?", f.OwnerID)
	}
	if s := strings.TrimSpace(f.Keyword); s != "" {
		q = q.Where("LOWER(t.name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		q = q.Where("t.category = ?", c)
	}
	rows := make([]ToolRow, 0)
	if err := q.Order("t.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repo) GetToolRow(ctx context.Context, id string) (*ToolRow, error) {
	var rows []ToolRow
	if err := r.toolRows(ctx).Where("t.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *Repo) UpdateToolFields(ctx context.Context, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	res := r.DB.WithContext(ctx).Model(&models.Tool{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SwapToolStatus 条件更新：仅当当前状态在 from 中才改为 to，返回是否命中
func (r *Repo) SwapToolStatus(ctx context.Context, id string, from []models.ToolStatus, to models.ToolStatus) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Tool{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repo) DeleteTool(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Delete(&models.Tool{}, "id = ?", id).Error
}

// CountTools status 为空时统计全部
func (r *Repo) CountTools(ctx context.Context, status models.ToolStatus) (int64, error) {
	var n int64
	q := r.DB.WithContext(ctx).Model(&models.Tool{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&n).Error
	return n, err
}
