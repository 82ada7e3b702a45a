package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"PensionChat/internal/config"
	"PensionChat/internal/modules/chatbot/domain/chatbot"
)

// ErrRerank 重排服务调用失败（传输错误或非 2xx），对本次请求致命
var ErrRerank = errors.New("rerank service call failed")

// Client 交叉编码重排服务客户端。
//
// 服务本身可能在高负载下响应缓慢，所以读超时放得很宽（默认 300s，
// 连接 60s）。传输失败没有本地兜底排序——直接让整次请求失败。
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClientFromConfig 按配置创建重排客户端
func NewClientFromConfig(conf *config.RerankConfig) *Client {
	connectTimeout := 60 * time.Second
	if conf.ConnectTimeoutSeconds > 0 {
		connectTimeout = time.Duration(conf.ConnectTimeoutSeconds) * time.Second
	}
	readTimeout := 300 * time.Second
	if conf.ReadTimeoutSeconds > 0 {
		readTimeout = time.Duration(conf.ReadTimeoutSeconds) * time.Second
	}
	return &Client{
		baseURL: conf.BaseURL,
		httpClient: &http.Client{
			Timeout: readTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
		},
	}
}

type rerankRequest struct {
	Question      string                 `json:"question"`
	CandidateList []chatbot.AnswerRecord `json:"candidateList"`
}

type rerankResponse struct {
	Results []chatbot.AnswerRecord `json:"results"`
}

// Rerank 将问题与候选答案交给外部服务联合打分。
//
// 返回服务端筛选后的子集（相关性降序）；空结果是合法的非错误结果，
// 表示"没有足够相关的候选"。
func (c *Client) Rerank(ctx context.Context, question string, candidates []chatbot.AnswerRecord) ([]chatbot.AnswerRecord, error) {
	body, err := json.Marshal(rerankRequest{Question: question, CandidateList: candidates})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRerank, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/server/compare", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRerank, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRerank, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrRerank, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRerank, err)
	}
	var parsed rerankResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRerank, err)
	}
	return parsed.Results, nil
}
