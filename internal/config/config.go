package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-transactions-service/internal/app/core/adapter/out/accounts"
	"github.com/JoeShih716/go-transactions-service/pkg/logger"
)

const (
	DefaultPath     = "config/config.yaml"
	defaultHTTPAddr = ":8082"
	defaultGRPCAddr = ":50052"
)

// Config 服務的完整配置
type Config struct {
	HTTP     ServerConfig    `yaml:"http"`
	GRPC     ServerConfig    `yaml:"grpc"`
	Accounts accounts.Config `yaml:"accounts"`
	Log      logger.Config   `yaml:"log"`
}

// ServerConfig 監聽位址
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load 讀取 yaml 設定檔，套用環境變數覆寫並補全預設值
// 檔案不存在時只使用預設值與環境變數
//
// 參數:
//
//	path: 設定檔路徑
//
// 回傳:
//
//	Config: 設定
//	error: 檔案格式錯誤或設定不合法
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg = cfg.withDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv 環境變數覆寫
func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("ACCOUNTS_SERVICE_URL")); v != "" {
		cfg.Accounts.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("ACCOUNTS_SERVICE_TIMEOUT")); v != "" {
		timeout, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("invalid ACCOUNTS_SERVICE_TIMEOUT %q: %w", v, err)
		}
		cfg.Accounts.Timeout = timeout
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("GRPC_ADDR")); v != "" {
		cfg.GRPC.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

// parseSeconds 接受 "5"、"2.5" (秒) 或 "1500ms" 這類 duration 字串
func parseSeconds(v string) (time.Duration, error) {
	if seconds, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(seconds * float64(time.Second)), nil
	}
	return time.ParseDuration(v)
}

func (c Config) withDefaults() Config {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = defaultHTTPAddr
	}
	if c.GRPC.Addr == "" {
		c.GRPC.Addr = defaultGRPCAddr
	}
	c.Accounts = c.Accounts.WithDefaults()
	return c
}

// Validate 檢查設定
func (c Config) Validate() error {
	if strings.TrimSpace(c.Accounts.BaseURL) == "" {
		return errors.New("accounts.base_url is required")
	}
	if c.Accounts.Timeout <= 0 {
		return fmt.Errorf("accounts.timeout must be positive, got %s", c.Accounts.Timeout)
	}
	if _, _, err := net.SplitHostPort(c.HTTP.Addr); err != nil {
		return fmt.Errorf("invalid http.addr %q: %w", c.HTTP.Addr, err)
	}
	if _, _, err := net.SplitHostPort(c.GRPC.Addr); err != nil {
		return fmt.Errorf("invalid grpc.addr %q: %w", c.GRPC.Addr, err)
	}
	return nil
}
