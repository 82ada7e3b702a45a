package embedding

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"PensionChat/internal/config"

	openaIEmbed "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"
)

type EmbedderMeta struct {
	Provider string
	Model    string
	Dim      int
}

// NewEmbedderFromConfig 按配置创建向量化组件。
//
// openai provider 走 GMS 代理（OpenAI 兼容 /embeddings 端点），
// baseURL 未配置时回退到 gmsConfig.baseURL。
func NewEmbedderFromConfig(ctx context.Context, conf *config.Config) (embedding.Embedder, EmbedderMeta, error) {
	if conf == nil {
		return nil, EmbedderMeta{}, fmt.Errorf("nil config")
	}

	dim := conf.AIConfig.Embedding.Dimensions
	provider := strings.ToLower(strings.TrimSpace(conf.AIConfig.Embedding.Provider))
	model := strings.TrimSpace(conf.AIConfig.Embedding.Model)

	switch provider {
	case "", "mock":
		if model == "" {
			model = "mock"
		}
		if dim <= 0 {
			dim = 1536
		}
		return NewMockEmbedder(dim), EmbedderMeta{Provider: "mock", Model: model, Dim: dim}, nil
	case "openai":
		apiKey := strings.TrimSpace(conf.AIConfig.Embedding.APIKey)
		if apiKey == "" {
			apiKey = strings.TrimSpace(conf.GmsConfig.APIKey)
		}
		if apiKey == "" {
			apiKey = strings.TrimSpace(os.Getenv("GMS_API_KEY"))
		}
		if model == "" {
			model = "text-embedding-3-small"
		}
		baseURL := strings.TrimSpace(conf.AIConfig.Embedding.BaseURL)
		if baseURL == "" {
			baseURL = strings.TrimSpace(conf.GmsConfig.BaseURL)
		}
		if apiKey == "" || baseURL == "" {
			return nil, EmbedderMeta{}, fmt.Errorf("openai embedding missing apiKey/baseURL")
		}

		timeout := 30 * time.Second
		if conf.AIConfig.Embedding.TimeoutSeconds > 0 {
			timeout = time.Duration(conf.AIConfig.Embedding.TimeoutSeconds) * time.Second
		}

		cfg := &openaIEmbed.EmbeddingConfig{
			APIKey:  apiKey,
			Model:   model,
			BaseURL: baseURL,
			Timeout: timeout,
		}
		if dim > 0 {
			localDim := dim
			cfg.Dimensions = &localDim
		} else {
			dim = 1536
		}
		em, err := openaIEmbed.NewEmbedder(ctx, cfg)
		if err != nil {
			return nil, EmbedderMeta{}, err
		}
		return em, EmbedderMeta{Provider: "openai", Model: model, Dim: dim}, nil
	default:
		return nil, EmbedderMeta{}, fmt.Errorf("unknown embedding provider: %s", provider)
	}
}
