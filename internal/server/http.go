package server

import (
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/trend_radar/internal/conf"
	"github.com/iWorld-y/trend_radar/internal/service"
)

// NewHTTPServer 创建 HTTP 服务并注册全部路由
func NewHTTPServer(c *conf.Server, s *service.NewsService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Http.Addr != "" {
		opts = append(opts, http.Address(c.Http.Addr))
	}
	if c.Http.Timeout != "" {
		if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
			opts = append(opts, http.Timeout(d))
		}
	}

	srv := http.NewServer(opts...)

	// 查询类接口
	srv.HandleFunc("/api/v1/news/latest", s.HandleLatestNews)
	srv.HandleFunc("/api/v1/news/by-date", s.HandleNewsByDate)
	srv.HandleFunc("/api/v1/status", s.HandleStatus)
	srv.HandleFunc("/api/v1/config", s.HandleConfig)

	// 搜索类接口
	srv.HandleFunc("/api/v1/search", s.HandleSearch)
	srv.HandleFunc("/api/v1/search/history", s.HandleRelatedHistory)

	// 分析类接口
	srv.HandleFunc("/api/v1/analysis/trend", s.HandleTrendAnalysis)
	srv.HandleFunc("/api/v1/analysis/insight", s.HandleInsightAnalysis)
	srv.HandleFunc("/api/v1/analysis/sentiment", s.HandleSentimentAnalysis)
	srv.HandleFunc("/api/v1/analysis/similar", s.HandleFindSimilar)
	srv.HandleFunc("/api/v1/analysis/entity", s.HandleEntitySearch)
	srv.HandleFunc("/api/v1/analysis/report", s.HandleSummaryReport)

	return srv
}
