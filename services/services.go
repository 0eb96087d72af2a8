// Package services 业务层：所有写操作在一个 gorm 事务里完成，
// 调用方身份（userID）由控制器显式传入。
package services

import (
	"community_tool_share/apperr"
	"community_tool_share/db"
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// 积分规则
const (
	PointsRegister = 10
	PointsPublish  = 5
	PointsApply    = 2
	PointsLend     = 3
	PointsReturn   = 2
	PointsReview   = 2

	RankingSize = 50
)

type Options struct {
	Logger     *slog.Logger
	Now        func() time.Time
	BcryptCost int
}

type Services struct {
	Borrows       *BorrowService
	Tools         *ToolService
	Reviews       *ReviewService
	Points        *PointService
	Notifications *NotificationService
	Users         *UserService
	Announcements *AnnouncementService
	Admin         *AdminService
}

type base struct {
	repo *db.Repo
	log  *slog.Logger
	now  func() time.Time
}

func New(repo *db.Repo, opts Options) *Services {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	b := base{repo: repo, log: opts.Logger, now: opts.Now}
	return &Services{
		Borrows:       &BorrowService{base: b},
		Tools:         &ToolService{base: b},
		Reviews:       &ReviewService{base: b},
		Points:        &PointService{base: b},
		Notifications: &NotificationService{base: b},
		Users:         &UserService{base: b, bcryptCost: opts.BcryptCost},
		Announcements: &AnnouncementService{base: b},
		Admin:         &AdminService{base: b},
	}
}

// Actor 管理员操作需要写审计日志，带上用户名
type Actor struct {
	ID       string
	Username string
}

// lookupErr 把 gorm 的 not found 翻译成 NotFound，其余视为意外错误
func lookupErr(err error, resource, field string, value any) error {
	if db.IsNotFound(err) {
		return apperr.NotFound(resource, field, value)
	}
	return apperr.Wrap(err, "load "+resource)
}
