package models

import "time"

const BorrowTable = "ts_borrow_records"

type BorrowStatus string

const (
	BorrowApplied  BorrowStatus = "APPLIED"
	BorrowApproved BorrowStatus = "APPROVED"
	BorrowRejected BorrowStatus = "REJECTED"
	BorrowPickedUp BorrowStatus = "PICKED_UP"
	BorrowReturned BorrowStatus = "RETURNED"
)

// ActiveBorrowStatuses 未结束的借用状态
var ActiveBorrowStatuses = []BorrowStatus{BorrowApplied, BorrowApproved, BorrowPickedUp}

func (s BorrowStatus) Active() bool {
	for _, a := range ActiveBorrowStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// BorrowRecord 借用记录；OwnerID 在申请时从工具快照，之后不变
type BorrowRecord struct {
	ID          string       `gorm:"type:uuid;primaryKey" json:"id"`
	ToolID      string       `gorm:"type:uuid;index;not null" json:"toolId"`
	BorrowerID  string       `gorm:"type:uuid;index;not null" json:"borrowerId"`
	OwnerID     string       `gorm:"type:uuid;index;not null" json:"ownerId"`
	Status      BorrowStatus `gorm:"size:20;not null;index" json:"status"`
	Remark      string       `gorm:"size:500" json:"remark,omitempty"`
	ApplyTime   time.Time    `gorm:"not null" json:"applyTime"`
	ApproveTime *time.Time   `json:"approveTime,omitempty"`
	PickupTime  *time.Time   `json:"pickupTime,omitempty"`
	ReturnTime  *time.Time   `json:"returnTime,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (BorrowRecord) TableName() string { return BorrowTable }
