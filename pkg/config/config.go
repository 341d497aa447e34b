package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config 分析引擎配置结构体
type Config struct {
	Weight    WeightConfig      `yaml:"weight"`
	Keyword   KeywordConfig     `yaml:"keyword"`
	Platforms []PlatformConfig  `yaml:"platforms"`
	LLM       LLMConfig         `yaml:"llm"`
	Log       LogConfig         `yaml:"log"`
	Limit     ConcurrencyConfig `yaml:"concurrency"`
}

// WeightConfig 新闻权重系数配置
type WeightConfig struct {
	RankWeight      float64 `yaml:"rank_weight"`
	FrequencyWeight float64 `yaml:"frequency_weight"`
	HotnessWeight   float64 `yaml:"hotness_weight"`
	RankThreshold   int     `yaml:"rank_threshold"`
}

// KeywordConfig 分词相关配置
type KeywordConfig struct {
	MinLength int      `yaml:"min_length"`
	Stopwords []string `yaml:"stopwords"`
}

// PlatformConfig 支持的平台配置
type PlatformConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// LLMConfig LLM 相关配置（可选，未配置时不执行情感分析提示词）
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig LLM 限流配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// DefaultWeight 与原 config.yaml 保持一致的权重默认值
func DefaultWeight() WeightConfig {
	return WeightConfig{
		RankWeight:      0.6,
		FrequencyWeight: 0.3,
		HotnessWeight:   0.1,
		RankThreshold:   5,
	}
}

// LoadConfig 从指定路径加载配置
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults 填充未配置项的默认值
func (c *Config) ApplyDefaults() {
	if c.Weight.RankWeight == 0 && c.Weight.FrequencyWeight == 0 && c.Weight.HotnessWeight == 0 {
		c.Weight = DefaultWeight()
	}
	if c.Weight.RankThreshold == 0 {
		c.Weight.RankThreshold = 5
	}
	if c.Keyword.MinLength == 0 {
		c.Keyword.MinLength = 2
	}
	if c.Limit.QPS == 0 {
		c.Limit.QPS = 1
	}
	if c.Limit.RPM == 0 {
		c.Limit.RPM = 30
	}
}
