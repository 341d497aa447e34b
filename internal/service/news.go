package service

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/iWorld-y/trend_radar/internal/biz"
)

// parsePlatformsQuery 解析逗号分隔的平台过滤参数
func parsePlatformsQuery(r *http.Request) []string {
	raw := r.URL.Query().Get("platforms")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	platforms := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			platforms = append(platforms, p)
		}
	}
	return platforms
}

func parseIntQuery(r *http.Request, key string) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func parseBoolQuery(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}

// HandleLatestNews 获取最新一批新闻
func (s *NewsService) HandleLatestNews(w http.ResponseWriter, r *http.Request) {
	result, err := s.uc.GetLatestNews(r.Context(),
		parsePlatformsQuery(r),
		parseIntQuery(r, "limit"),
		parseBoolQuery(r, "include_url"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, result)
}

// HandleNewsByDate 按日期查询新闻
func (s *NewsService) HandleNewsByDate(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		s.writeError(w, biz.ErrInvalidParameter("缺少 date 参数", "日期格式应为 YYYY-MM-DD"))
		return
	}
	date, err := biz.ValidateDate(dateStr, "date")
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.uc.GetNewsByDate(r.Context(), date,
		parsePlatformsQuery(r),
		parseIntQuery(r, "limit"),
		parseBoolQuery(r, "include_url"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, result)
}

// StatusResult 系统状态
type StatusResult struct {
	Health  string       `json:"health"`
	Version string       `json:"version,omitempty"`
	Storage string       `json:"storage"`
	Data    *StatusData  `json:"data"`
	Engine  StatusEngine `json:"engine"`
}

// StatusData 数据可用性信息
type StatusData struct {
	EarliestRecord string `json:"earliest_record,omitempty"`
	LatestRecord   string `json:"latest_record,omitempty"`
	HasData        bool   `json:"has_data"`
}

// StatusEngine 引擎配置摘要
type StatusEngine struct {
	Platforms  int  `json:"platforms"`
	LLMEnabled bool `json:"llm_enabled"`
}

// HandleStatus 系统状态查询
func (s *NewsService) HandleStatus(w http.ResponseWriter, r *http.Request) {
	earliest, latest, ok, err := s.uc.AvailableDateRange(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	data := &StatusData{HasData: ok}
	if ok {
		data.EarliestRecord = earliest.Format("2006-01-02")
		data.LatestRecord = latest.Format("2006-01-02")
	}

	s.writeSuccess(w, &StatusResult{
		Health:  "healthy",
		Version: s.version,
		Storage: s.storage,
		Data:    data,
		Engine: StatusEngine{
			Platforms:  len(s.cfg.Platforms),
			LLMEnabled: s.cfg.LLM.APIKey != "",
		},
	})
}

// ConfigResult 当前配置摘要，不包含任何密钥
type ConfigResult struct {
	Weights   WeightsConfigView    `json:"weights"`
	Keyword   KeywordConfigView    `json:"keyword"`
	Platforms []PlatformConfigView `json:"platforms"`
}

// WeightsConfigView 权重配置视图
type WeightsConfigView struct {
	RankWeight      float64 `json:"rank_weight"`
	FrequencyWeight float64 `json:"frequency_weight"`
	HotnessWeight   float64 `json:"hotness_weight"`
	RankThreshold   int     `json:"rank_threshold"`
}

// KeywordConfigView 分词配置视图
type KeywordConfigView struct {
	MinLength int      `json:"min_length"`
	Stopwords []string `json:"stopwords,omitempty"`
}

// PlatformConfigView 平台配置视图
type PlatformConfigView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HandleConfig 当前配置查询
func (s *NewsService) HandleConfig(w http.ResponseWriter, r *http.Request) {
	platforms := make([]PlatformConfigView, 0, len(s.cfg.Platforms))
	for _, p := range s.cfg.Platforms {
		platforms = append(platforms, PlatformConfigView{ID: p.ID, Name: p.Name})
	}

	s.writeSuccess(w, &ConfigResult{
		Weights: WeightsConfigView{
			RankWeight:      s.cfg.Weight.RankWeight,
			FrequencyWeight: s.cfg.Weight.FrequencyWeight,
			HotnessWeight:   s.cfg.Weight.HotnessWeight,
			RankThreshold:   s.cfg.Weight.RankThreshold,
		},
		Keyword: KeywordConfigView{
			MinLength: s.cfg.Keyword.MinLength,
			Stopwords: s.cfg.Keyword.Stopwords,
		},
		Platforms: platforms,
	})
}
