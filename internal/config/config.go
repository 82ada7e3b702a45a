package config

import (
	"log"

	"github.com/BurntSushi/toml"
)

type MainConfig struct {
	AppName string `toml:"appName"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

type LogConfig struct {
	LogPath string `toml:"logPath"`
}

type JwtConfig struct {
	Key         string `toml:"key"`
	ExpireHours int    `toml:"expireHours"`
	Issuer      string `toml:"issuer"`
}

type RedisConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	PoolSize     int    `toml:"poolSize"`
	MinIdleConns int    `toml:"minIdleConns"`
}

type AIEmbeddingConfig struct {
	Provider       string `toml:"provider"`
	APIKey         string `toml:"apiKey"`
	BaseURL        string `toml:"baseURL"`
	Model          string `toml:"model"`
	Dimensions     int    `toml:"dimensions"`
	TimeoutSeconds int    `toml:"timeoutSeconds"`
}

type AIConfig struct {
	Embedding AIEmbeddingConfig `toml:"embedding"`
}

// GmsConfig 生成模型网关（GMS 代理）配置
//
// provider 决定响应信封的解析形状：openai（choices[0].message.content）
// 或 gemini（candidates[0].content.parts[0].text）。
type GmsConfig struct {
	BaseURL        string `toml:"baseURL"`
	APIKey         string `toml:"apiKey"`
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeoutSeconds"`
}

// RerankConfig 交叉编码重排服务配置（FastAPI 侧服务）
type RerankConfig struct {
	BaseURL               string `toml:"baseURL"`
	ConnectTimeoutSeconds int    `toml:"connectTimeoutSeconds"`
	ReadTimeoutSeconds    int    `toml:"readTimeoutSeconds"`
}

// ChatbotConfig 语义召回参数
type ChatbotConfig struct {
	Namespace      string  `toml:"namespace"`
	TopK           int     `toml:"topK"`
	ScoreThreshold float64 `toml:"scoreThreshold"`
	HistoryLimit   int     `toml:"historyLimit"`
	ScanCount      int64   `toml:"scanCount"`
}

type Config struct {
	MainConfig    `toml:"mainConfig"`
	MysqlConfig   `toml:"mysqlConfig"`
	JwtConfig     `toml:"jwtConfig"`
	RedisConfig   `toml:"redisConfig"`
	AIConfig      `toml:"aiConfig"`
	GmsConfig     `toml:"gmsConfig"`
	RerankConfig  `toml:"rerankConfig"`
	ChatbotConfig `toml:"chatbotConfig"`
	LogConfig     `toml:"logConfig"`
}

var config *Config

func LoadConfig() error {
	configPath := "configs/config_local.toml"
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		log.Printf("加载配置文件失败: %v, 尝试使用默认设置", err)
		return err
	}
	return nil
}

func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig()
	}
	return config
}
