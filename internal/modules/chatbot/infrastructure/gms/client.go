package gms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"PensionChat/internal/config"
)

// ErrGeneration 生成服务调用失败或响应信封无法识别，对本次请求致命
var ErrGeneration = errors.New("generation service call failed")

// Shape 生成服务响应信封形状（由配置选择，不做运行时嗅探）
type Shape string

const (
	// ShapeOpenAI choices[0].message.content
	ShapeOpenAI Shape = "openai"
	// ShapeGemini candidates[0].content.parts[0].text
	ShapeGemini Shape = "gemini"
)

// Message 角色标注的对话消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client GMS 生成网关客户端。
//
// 网关暴露 OpenAI 兼容的 /chat/completions 端点，但背后可能挂接
// 不同供应商，响应信封形状由 provider 配置决定并使用对应的
// 类型化抽取器——不按响应内容猜测形状。
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	shape      Shape
}

// NewClientFromConfig 按配置创建生成客户端
func NewClientFromConfig(conf *config.GmsConfig) (*Client, error) {
	shape := Shape(strings.ToLower(strings.TrimSpace(conf.Provider)))
	switch shape {
	case "":
		shape = ShapeOpenAI
	case ShapeOpenAI, ShapeGemini:
	default:
		return nil, fmt.Errorf("unknown gms provider: %s", conf.Provider)
	}

	timeout := 5 * time.Minute
	if conf.TimeoutSeconds > 0 {
		timeout = time.Duration(conf.TimeoutSeconds) * time.Second
	}
	model := strings.TrimSpace(conf.Model)
	if model == "" {
		model = "gpt-5-nano"
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(conf.BaseURL, "/"),
		apiKey:     conf.APIKey,
		model:      model,
		shape:      shape,
	}, nil
}

type chatCompletionsRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// GenerateAnswer 以固定人设指令 + 组装好的用户内容调用生成服务，
// 返回按配置形状抽取出的回答文本。
func (c *Client) GenerateAnswer(ctx context.Context, userContent string) (string, error) {
	body, err := json.Marshal(chatCompletionsRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "developer", Content: developerPrompt},
			{Role: "user", Content: userContent},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrGeneration, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return ExtractAnswerText(c.shape, raw)
}

// ExtractAnswerText 按形状从响应信封中抽取回答文本
func ExtractAnswerText(shape Shape, raw []byte) (string, error) {
	switch shape {
	case ShapeOpenAI:
		return extractOpenAI(raw)
	case ShapeGemini:
		return extractGemini(raw)
	default:
		return "", fmt.Errorf("%w: unknown response shape %q", ErrGeneration, shape)
	}
}

type openAIEnvelope struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func extractOpenAI(raw []byte) (string, error) {
	var env openAIEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if len(env.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrGeneration)
	}
	return env.Choices[0].Message.Content, nil
}

type geminiEnvelope struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func extractGemini(raw []byte) (string, error) {
	var env geminiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if len(env.Candidates) == 0 || len(env.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty candidates", ErrGeneration)
	}
	return env.Candidates[0].Content.Parts[0].Text, nil
}
