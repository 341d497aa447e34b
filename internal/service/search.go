package service

import "net/http"

// SearchRequest 统一搜索请求
type SearchRequest struct {
	Query      string     `json:"query"`
	SearchMode string     `json:"search_mode"`
	DateRange  *DateRange `json:"date_range"`
	Platforms  []string   `json:"platforms"`
	Limit      int        `json:"limit"`
	SortBy     string     `json:"sort_by"`
	Threshold  float64    `json:"threshold"`
	IncludeURL bool       `json:"include_url"`
}

// HandleSearch 统一新闻搜索
func (s *NewsService) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	start, end := req.DateRange.bounds()
	result, err := s.uc.SearchNews(r.Context(), req.Query, req.SearchMode, start, end,
		req.Platforms, req.Limit, req.SortBy, req.Threshold, req.IncludeURL)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, result)
}

// RelatedHistoryRequest 历史相关新闻搜索请求
type RelatedHistoryRequest struct {
	ReferenceText string  `json:"reference_text"`
	TimePreset    string  `json:"time_preset"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Threshold     float64 `json:"threshold"`
	Limit         int     `json:"limit"`
	IncludeURL    bool    `json:"include_url"`
}

// HandleRelatedHistory 历史相关新闻搜索
func (s *NewsService) HandleRelatedHistory(w http.ResponseWriter, r *http.Request) {
	var req RelatedHistoryRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	result, err := s.uc.SearchRelatedHistory(r.Context(), req.ReferenceText, req.TimePreset,
		req.StartDate, req.EndDate, req.Threshold, req.Limit, req.IncludeURL)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, result)
}
