package models

import (
	"time"
)

const UserTable = "ts_users"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	UserStatusDisabled = 0
	UserStatusActive   = 1
)

// User 的 ID 是 UUID 字符串，WebAuthn userHandle 用时再转 []byte
type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Username     string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	DisplayName  string `gorm:"size:50;not null" json:"displayName"`
	Avatar       string `gorm:"size:500" json:"avatar,omitempty"`
	Phone        string `gorm:"size:20" json:"phone,omitempty"`
	Role         string `gorm:"size:10;not null;default:'USER'" json:"role"`
	Points       int    `gorm:"not null;default:0;index" json:"points"` // 冗余列：积分余额，随流水累加
	Status       int    `gorm:"not null;default:1" json:"status"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`
	LastLoginIP string     `gorm:"size:45" json:"-"`
	LastLoginUA string     `gorm:"size:255" json:"-"`

	CreatedAt   time.Time    `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Credentials []Credential `json:"-"`
}

func (User) TableName() string { return UserTable }

func (u *User) IsAdmin() bool  { return u.Role == RoleAdmin }
func (u *User) IsActive() bool { return u.Status == UserStatusActive }

// Credential 为每个注册的 Passkey 存档
// CredentialID / PublicKey / AAGUID 均为二进制
type Credential struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"type:uuid;index" json:"userId"`
	CredentialID    []byte    `gorm:"uniqueIndex" json:"credentialId"`
	PublicKey       []byte    `json:"-"`
	AttestationType string    `gorm:"size:64" json:"attestationType"`
	AAGUID          []byte    `json:"aaguid"`
	SignCount       uint32    `json:"signCount"`
	CloneWarning    bool      `json:"cloneWarning"`
	BackupEligible  bool      `json:"backupEligible"`
	BackupState     bool      `json:"backupState"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	LastUsedAt *time.Time `gorm:"index" json:"lastUsedAt,omitempty"`
}

func (Credential) TableName() string { return "ts_credentials" }
