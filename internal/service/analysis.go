package service

import (
	"fmt"
	"net/http"

	"github.com/iWorld-y/trend_radar/internal/biz"
)

// TrendAnalysisRequest 话题趋势分析请求
type TrendAnalysisRequest struct {
	Topic               string     `json:"topic"`
	AnalysisType        string     `json:"analysis_type"`
	DateRange           *DateRange `json:"date_range"`
	Granularity         string     `json:"granularity"`
	Threshold           float64    `json:"threshold"`
	TimeWindow          int        `json:"time_window"`
	LookaheadHours      int        `json:"lookahead_hours"`
	ConfidenceThreshold float64    `json:"confidence_threshold"`
}

// HandleTrendAnalysis 统一话题趋势分析入口，按 analysis_type 分发
func (s *NewsService) HandleTrendAnalysis(w http.ResponseWriter, r *http.Request) {
	var req TrendAnalysisRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.AnalysisType == "" {
		req.AnalysisType = "trend"
	}

	start, end := req.DateRange.bounds()
	ctx := r.Context()

	switch req.AnalysisType {
	case "trend":
		result, err := s.uc.AnalyzeTopicTrend(ctx, req.Topic, start, end, req.Granularity)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeSuccess(w, result)
	case "lifecycle":
		result, err := s.uc.AnalyzeTopicLifecycle(ctx, req.Topic, start, end)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeSuccess(w, result)
	case "viral":
		result, err := s.uc.DetectViralTopics(ctx, req.Threshold, req.TimeWindow)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeSuccess(w, result)
	case "predict":
		result, err := s.uc.PredictTrendingTopics(ctx, req.LookaheadHours, req.ConfidenceThreshold)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeSuccess(w, result)
	default:
		s.writeError(w, invalidEnum("analysis_type", req.AnalysisType, "trend, lifecycle, viral, predict"))
	}
}

// InsightRequest 数据洞察分析请求
type InsightRequest struct {
	InsightType  string     `json:"insight_type"`
	Topic        string     `json:"topic"`
	DateRange    *DateRange `json:"date_range"`
	MinFrequency int        `json:"min_frequency"`
	TopN         int        `json:"top_n"`
}

// HandleInsightAnalysis 统一数据洞察入口，按 insight_type 分发
func (s *NewsService) HandleInsightAnalysis(w http.ResponseWriter, r *http.Request) {
	var req InsightRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.InsightType == "" {
		req.InsightType = "platform_compare"
	}

	start, end := req.DateRange.bounds()
	ctx := r.Context()

	switch req.InsightType {
	case "platform_compare":
		result, err := s.uc.ComparePlatforms(ctx, req.Topic, start, end)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeSuccess(w, result)
	case "platform_activity":
		result, err := s.uc.GetPlatformActivityStats(ctx, start, end)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeSuccess(w, result)
	case "keyword_cooccur":
		result, err := s.uc.AnalyzeKeywordCooccurrence(ctx, req.MinFrequency, req.TopN)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeSuccess(w, result)
	default:
		s.writeError(w, invalidEnum("insight_type", req.InsightType, "platform_compare, platform_activity, keyword_cooccur"))
	}
}

// SentimentRequest 情感分析请求
type SentimentRequest struct {
	Topic        string     `json:"topic"`
	Platforms    []string   `json:"platforms"`
	DateRange    *DateRange `json:"date_range"`
	Limit        int        `json:"limit"`
	SortByWeight *bool      `json:"sort_by_weight"`
	IncludeURL   bool       `json:"include_url"`
	Execute      bool       `json:"execute"`
}

// HandleSentimentAnalysis 情感分析提示词生成
func (s *NewsService) HandleSentimentAnalysis(w http.ResponseWriter, r *http.Request) {
	var req SentimentRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	start, end := req.DateRange.bounds()
	result, err := s.uc.AnalyzeSentiment(r.Context(), req.Topic, req.Platforms, start, end,
		req.Limit, boolOrDefault(req.SortByWeight, true), req.IncludeURL, req.Execute)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, result)
}

// SimilarRequest 相似新闻查找请求
type SimilarRequest struct {
	ReferenceTitle string  `json:"reference_title"`
	Threshold      float64 `json:"threshold"`
	Limit          int     `json:"limit"`
	IncludeURL     bool    `json:"include_url"`
}

// HandleFindSimilar 相似新闻查找
func (s *NewsService) HandleFindSimilar(w http.ResponseWriter, r *http.Request) {
	var req SimilarRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	result, err := s.uc.FindSimilarNews(r.Context(), req.ReferenceTitle, req.Threshold, req.Limit, req.IncludeURL)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, result)
}

// EntityRequest 实体搜索请求
type EntityRequest struct {
	Entity       string `json:"entity"`
	EntityType   string `json:"entity_type"`
	Limit        int    `json:"limit"`
	SortByWeight *bool  `json:"sort_by_weight"`
}

// HandleEntitySearch 实体搜索
func (s *NewsService) HandleEntitySearch(w http.ResponseWriter, r *http.Request) {
	var req EntityRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	result, err := s.uc.SearchByEntity(r.Context(), req.Entity, req.EntityType, req.Limit,
		boolOrDefault(req.SortByWeight, true))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, result)
}

// ReportRequest 摘要报告请求
type ReportRequest struct {
	ReportType string     `json:"report_type"`
	DateRange  *DateRange `json:"date_range"`
}

// HandleSummaryReport 生成摘要报告
func (s *NewsService) HandleSummaryReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	start, end := req.DateRange.bounds()
	result, err := s.uc.GenerateSummaryReport(r.Context(), req.ReportType, start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, result)
}

func invalidEnum(field, value, supported string) error {
	return biz.ErrInvalidParameter(
		fmt.Sprintf("无效的 %s: %s", field, value),
		"支持的取值: "+supported)
}
