package app

import (
	"community_tool_share/db"
	"community_tool_share/services"
	"community_tool_share/session"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router   *gin.Engine
	DB       *gorm.DB
	RDB      *redis.Client
	WA       *webauthn.WebAuthn
	Config   Config
	Log      *slog.Logger
	Repo     *db.Repo
	Services *services.Services

	AppSessions *session.AppSessionStore
	Ceremonies  *session.CeremonyStore
}

// Config 从环境变量读取
type Config struct {
	Port           string
	DB             db.Options
	RedisAddr      string
	RedisPwd       string
	WebOrigin      string
	RPID           string
	RPOrigins      []string
	SessionTTL     time.Duration // WebAuthn 挑战有效期
	AppSessionTTL  time.Duration // 登录会话有效期
	AdminUsernames []string
	LogLevel       slog.Level
	GinMode        string
}

// SecureCookie 前端走 https 时 Cookie 加 Secure
func (c Config) SecureCookie() bool { return strings.HasPrefix(c.WebOrigin, "https://") }

func MustNew() *App {
	cfg := LoadConfig()
	a, err := New(cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	return a
}

func New(cfg Config) (*App, error) {
	log := NewLogger(cfg.LogLevel)
	slog.SetDefault(log)

	// --- DB ---
	dbConn, err := db.ConnectDB(cfg.DB)
	if err != nil {
		return nil, err
	}
	repo := db.NewRepo(dbConn)

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	// --- WebAuthn RP ---
	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: "Community Tool Share",
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("webauthn: %w", err)
	}

	// --- Gin ---
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))
	useCORS(r, cfg.RPOrigins, cfg.WebOrigin)

	a := &App{
		Router: r, DB: dbConn, RDB: rdb, WA: wa, Config: cfg, Log: log, Repo: repo,
		Services:    services.New(repo, services.Options{Logger: log}),
		AppSessions: session.NewAppSessionStore(rdb, cfg.AppSessionTTL),
		Ceremonies:  session.NewCeremonyStore(rdb, cfg.SessionTTL),
	}
	BootstrapAdmins(ctx, cfg, a.Services.Users)
	return a, nil
}

func (a *App) Close() {
	_ = a.RDB.Close()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func LoadConfig() Config {
	get := func(k, def string) string {
		v := strings.TrimSpace(os.Getenv(k))
		if v == "" {
			return def
		}
		return v
	}
	seconds := func(k string, def time.Duration) time.Duration {
		if n, err := strconv.Atoi(get(k, "")); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
		return def
	}
	hours := func(k string, def time.Duration) time.Duration {
		if n, err := strconv.Atoi(get(k, "")); err == nil && n > 0 {
			return time.Duration(n) * time.Hour
		}
		return def
	}

	webOrigin := get("WEB_ORIGIN", "http://localhost:5173")
	return Config{
		Port: get("PORT", "3001"),
		DB: db.Options{
			Driver:     get("DB_DRIVER", "postgres"),
			Host:       get("DB_HOST", "127.0.0.1"),
			User:       get("DB_USER", "postgres"),
			Password:   os.Getenv("DB_PASSWORD"),
			Name:       get("DB_NAME", "tool_share"),
			Port:       get("DB_PORT", "5432"),
			SQLitePath: get("SQLITE_PATH", "tool_share.db"),
			LogLevel:   logger.Warn,
		},
		RedisAddr:      get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:       os.Getenv("REDIS_PASSWORD"),
		WebOrigin:      webOrigin,
		RPID:           get("RP_ID", "localhost"),
		RPOrigins:      splitCSV(get("RP_ORIGINS", webOrigin)),
		SessionTTL:     seconds("SESSION_TTL_SECONDS", 10*time.Minute),
		AppSessionTTL:  hours("APP_SESSION_TTL_HOURS", 24*time.Hour),
		AdminUsernames: splitCSV(os.Getenv("ADMIN_USERNAMES")),
		LogLevel:       parseLevel(get("LOG_LEVEL", "info")),
		GinMode:        os.Getenv("GIN_MODE"),
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
