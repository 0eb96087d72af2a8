package db

import (
	"community_tool_share/models"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options 数据库连接参数；Driver 为 "postgres"（默认）或 "sqlite"
type Options struct {
	Driver     string
	Host       string
	User       string
	Password   string
	Name       string
	Port       string
	SQLitePath string
	LogLevel   logger.LogLevel
}

func (o Options) postgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		o.Host, o.User, o.Password, o.Name, o.Port,
	)
}

func gormConfig(level logger.LogLevel) *gorm.Config {
	if level == 0 {
		level = logger.Warn
	}
	return &gorm.Config{
		// 唯一索引冲突翻译成 gorm.ErrDuplicatedKey
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// ConnectDB 打开数据库并执行迁移
func ConnectDB(o Options) (*gorm.DB, error) {
	var (
		conn *gorm.DB
		err  error
	)
	switch strings.ToLower(o.Driver) {
	case "sqlite":
		conn, err = OpenSQLite(o.SQLitePath, o.LogLevel)
	case "", "postgres":
		conn, err = gorm.Open(postgres.Open(o.postgresDSN()), gormConfig(o.LogLevel))
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", o.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	slog.Info("database connected", "driver", o.Driver)
	return conn, nil
}

// OpenSQLite 本地开发和测试用；单连接，写操作天然串行
func OpenSQLite(path string, level logger.LogLevel) (*gorm.DB, error) {
	dsn := path + "?_busy_timeout=5000&_foreign_keys=on"
	conn, err := gorm.Open(sqlite.Open(dsn), gormConfig(level))
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{}, &models.Credential{},
		&models.Tool{}, &models.BorrowRecord{},
		&models.PointRecord{}, &models.Notification{},
		&models.Review{}, &models.Announcement{}, &models.AuditLog{},
	); err != nil {
		return err
	}

	// 同一借用人对同一工具最多一条进行中的借用记录
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_active_per_borrower
	  ON %s (tool_id, borrower_id)
	  WHERE status IN ('APPLIED', 'APPROVED', 'PICKED_UP');
	`, models.BorrowTable, models.BorrowTable)).Error; err != nil {
		return err
	}

	// 按工具查进行中的借用
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_active_tool
	  ON %s (tool_id, apply_time DESC)
	  WHERE status IN ('APPLIED', 'APPROVED', 'PICKED_UP');
	`, models.BorrowTable, models.BorrowTable)).Error; err != nil {
		return err
	}

	return nil
}
