package db

import (
	"community_tool_share/models"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrDuplicateActiveBorrow = errors.New("active borrow already exists for this tool and borrower")
	// ErrStaleTransition 条件更新没命中：状态已被并发请求改走
	ErrStaleTransition = errors.New("borrow record status changed concurrently")
)

// BorrowRow 借用记录 + 工具名 + 双方显示名
type BorrowRow struct {
	models.BorrowRecord
	ToolName     string `json:"toolName"`
	BorrowerName string `json:"borrowerNickname"`
	OwnerName    string `json:"ownerNickname"`
}

type BorrowFilter struct {
	BorrowerID string
	OwnerID    string
	ToolID     string
	Statuses   []models.BorrowStatus
}

// CreateBorrowRecord 依赖部分唯一索引兜底并发重复申请
func (r *Repo) CreateBorrowRecord(ctx context.Context, rec *models.BorrowRecord) error {
	if err := r.DB.WithContext(ctx).Create(rec).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicateActiveBorrow
		}
		return err
	}
	return nil
}

func (r *Repo) HasActiveBorrow(ctx context.Context, toolID, borrowerID string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.BorrowRecord{}).
		Where("tool_id = ? AND borrower_id = ? AND status IN ?", toolID, borrowerID, models.ActiveBorrowStatuses).
		Count(&n).Error
	return n > 0, err
}

func (r *Repo) FindBorrowByID(ctx context.Context, id string) (*models.BorrowRecord, error) {
	var rec models.BorrowRecord
	if err := r.DB.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repo) LockBorrowByID(ctx context.Context, id string) (*models.BorrowRecord, error) {
	var rec models.BorrowRecord
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// TransitionBorrow UPDATE ... WHERE id=? AND status=from；stampColumn 非空时同时写时间戳
func (r *Repo) TransitionBorrow(ctx context.Context, id string, from, to models.BorrowStatus, stampColumn string, at time.Time) error {
	fields := map[string]any{"status": to, "updated_at": time.Now().UTC()}
	if stampColumn != "" {
		fields[stampColumn] = at
	}
	res := r.DB.WithContext(ctx).Model(&models.BorrowRecord{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleTransition
	}
	return nil
}

func (r *Repo) ListBorrowsForTool(ctx context.Context, toolID string, statuses []models.BorrowStatus) ([]models.BorrowRecord, error) {
	var recs []models.BorrowRecord
	q := r.DB.WithContext(ctx).Where("tool_id = ?", toolID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("apply_time ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *Repo) borrowRows(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Table(models.BorrowTable + " b").
		Select(`
			b.*,
			COALESCE(t.name, '')          AS tool_name,
			COALESCE(bu.display_name, '') AS borrower_name,
			COALESCE(ou.display_name, '') AS owner_name
		`).
		Joins("LEFT JOIN " + models.ToolTable + " t ON t.id = b.tool_id").
		Joins("LEFT JOIN " + models.UserTable + " bu ON bu.id = b.borrower_id").
		Joins("LEFT JOIN " + models.UserTable + " ou ON ou.id = b.owner_id")
}

func (r *Repo) ListBorrowRows(ctx context.Context, f BorrowFilter) ([]BorrowRow, error) {
	q := r.borrowRows(ctx)
	if f.BorrowerID != "" {
		q = q.Where("b.borrower_id = ?", f.BorrowerID)
	}
	if f.OwnerID != "" {
		q = q.Where("b.owner_id = ?", f.OwnerID)
	}
	if f.ToolID != "" {
		q = q.Where("b.tool_id = ?", f.ToolID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("b.status IN ?", f.Statuses)
	}
	rows := make([]BorrowRow, 0)
	if err := q.Order("b.apply_time DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repo) GetBorrowRow(ctx context.Context, id string) (*BorrowRow, error) {
	var rows []BorrowRow
	if err := r.borrowRows(ctx).Where("b.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// CountBorrows statuses 为空时统计全部
func (r *Repo) CountBorrows(ctx context.Context, statuses []models.BorrowStatus) (int64, error) {
	var n int64
	q := r.DB.WithContext(ctx).Model(&models.BorrowRecord{})
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Count(&n).Error
	return n, err
}
