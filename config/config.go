package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv 读取 .env（可用 ENV_FILE 指定路径），文件不存在时只打日志
func LoadEnv() {
	path := strings.TrimSpace(os.Getenv("ENV_FILE"))
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		slog.Info("no env file loaded, using process environment", "path", path)
	}
}
