package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/go-shiori/go-readability"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/trend_radar/pkg/config"
	"github.com/iWorld-y/trend_radar/pkg/logger"
)

// chatGenerator 是 Execute 依赖的最小模型接口
type chatGenerator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Client 封装 LLM 调用，带限流和 429 重试
type Client struct {
	chatModel chatGenerator
	limiter   *rate.Limiter
	backoff   time.Duration
}

// NewClient 创建 LLM 客户端；未配置 api_key 时返回 nil 表示禁用
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.LLM.APIKey == "" {
		return nil, nil
	}

	ctx := context.Background()
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}

	limit := rate.Limit(float64(cfg.Limit.RPM) / 60.0)
	limiter := rate.NewLimiter(limit, cfg.Limit.QPS)

	logger.Log.Infof("LLM 客户端已启用: model=%s", cfg.LLM.Model)
	return &Client{chatModel: chatModel, limiter: limiter, backoff: 2 * time.Second}, nil
}

// Execute 发送提示词并返回模型输出
func (c *Client) Execute(ctx context.Context, prompt string) (string, error) {
	maxRetries := 3
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		messages := []*schema.Message{
			{Role: schema.User, Content: prompt},
		}

		resp, err := c.chatModel.Generate(ctx, messages)
		if err != nil {
			if strings.Contains(err.Error(), "429") || strings.Contains(strings.ToLower(err.Error()), "too many requests") {
				lastErr = err
				if i < maxRetries {
					delay := c.backoff * time.Duration(1<<i)
					logger.Log.Warnf("LLM 请求被限流，%v 后重试 (%d/%d): %v", delay, i+1, maxRetries, err)
					time.Sleep(delay)
					continue
				}
				logger.Log.Errorf("LLM 重试 %d 次后仍被限流: %v", maxRetries, err)
			}
			return "", err
		}

		content := strings.TrimSpace(resp.Content)
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		return strings.TrimSpace(content), nil
	}
	return "", lastErr
}

// FetchArticleText 抓取并提取新闻正文，用于需要原文上下文的分析
func FetchArticleText(url string, limit int) (string, error) {
	article, err := readability.FromURL(url, 30*time.Second)
	if err != nil {
		logger.Log.Warnf("抓取正文失败 [%s]: %v", url, err)
		return "", err
	}
	text := article.TextContent
	if limit > 0 && len(text) > limit {
		text = text[:limit]
	}
	return text, nil
}
