package accounts

import "time"

// Config 定義 accounts service client 的配置
type Config struct {
	BaseURL string        `yaml:"base_url"` // accounts service 位址 (e.g., "http://localhost:8081")
	Timeout time.Duration `yaml:"timeout"`  // 單次請求的逾時時間，超過視為連線失敗

	// Circuit Breaker 設定 (預設關閉)
	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig 定義 circuit breaker 的配置
// 只有連線失敗與無法分類的回應會被計為失敗，業務錯誤 (如餘額不足) 不會觸發跳脫
type BreakerConfig struct {
	Enabled             bool          `yaml:"enabled"`
	MaxRequests         uint32        `yaml:"max_requests"`         // half-open 狀態允許通過的請求數
	Interval            time.Duration `yaml:"interval"`             // closed 狀態下計數重置週期
	OpenTimeout         time.Duration `yaml:"open_timeout"`         // open 狀態持續多久後進入 half-open
	ConsecutiveFailures uint32        `yaml:"consecutive_failures"` // 連續失敗幾次後跳脫
}

const (
	DefaultBaseURL = "http://localhost:8081"
	DefaultTimeout = 5 * time.Second
)

// WithDefaults 補全未設定的欄位
func (c Config) WithDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Breaker.MaxRequests == 0 {
		c.Breaker.MaxRequests = 1
	}
	if c.Breaker.OpenTimeout == 0 {
		c.Breaker.OpenTimeout = 30 * time.Second
	}
	if c.Breaker.ConsecutiveFailures == 0 {
		c.Breaker.ConsecutiveFailures = 5
	}
	return c
}
