// internal/config/config.go
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 存储应用配置
type Config struct {
	Port        string
	PersonaPath string
	LogDir      string
	DebugMode   bool

	// 评估策略: static / llm / hybrid
	DirectorMode string

	// RAG 相关开关
	RAGEnabled    bool
	InjectEnabled bool

	// 混合策略: 静态 RETRY 时是否跳过 LLM 调用
	SkipLLMOnStaticRetry bool

	// LLM 相关配置
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	// 阈值覆盖
	Thresholds ThresholdConfig
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// 尝试加载.env文件（可选）
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		PersonaPath:          getEnv("PERSONA_RULES_PATH", filepath.Join("configs", "persona_rules.yaml")),
		LogDir:               getEnv("LOG_DIR", "logs"),
		DebugMode:            getEnvBool("DEBUG_MODE", false),
		DirectorMode:         getEnv("DIRECTOR_MODE", "hybrid"),
		RAGEnabled:           getEnvBool("RAG_ENABLED", true),
		InjectEnabled:        getEnvBool("INJECT_ENABLED", false),
		SkipLLMOnStaticRetry: getEnvBool("SKIP_LLM_ON_STATIC_RETRY", true),
		LLMBaseURL:           getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:            getEnv("LLM_API_KEY", ""),
		LLMModel:             getEnv("LLM_MODEL", "gpt-4o-mini"),
		Thresholds: ThresholdConfig{
			RetryOverall:      getEnvFloat("THRESHOLD_RETRY_OVERALL", defaultRetryOverall),
			RetryCharacter:    getEnvFloat("THRESHOLD_RETRY_CHARACTER", defaultRetryCharacter),
			RetryRelationship: getEnvFloat("THRESHOLD_RETRY_RELATIONSHIP", defaultRetryRelationship),
			WarnOverall:       getEnvFloat("THRESHOLD_WARN_OVERALL", defaultWarnOverall),
		},
	}

	return cfg, nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvBool 获取布尔类型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// getEnvFloat 获取浮点类型环境变量
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}
