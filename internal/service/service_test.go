package service

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/trend_radar/internal/biz"
	"github.com/iWorld-y/trend_radar/pkg/config"
)

// mockTitleRepo 固定返回 2025-01-07 单日数据的仓库
type mockTitleRepo struct{}

var mockDay = time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)

func (m *mockTitleRepo) ReadTitlesForDate(ctx context.Context, date time.Time, platformIDs []string) (*biz.TitleSnapshot, error) {
	if date.Format("2006-01-02") != "2025-01-07" {
		return nil, biz.ErrDataNotFound("未找到该日期的新闻数据", "")
	}
	return &biz.TitleSnapshot{
		TitlesByPlatform: map[string]map[string]biz.TitleInfo{
			"weibo": {
				"量子计算迎来重大突破": {Ranks: []int{1}},
			},
		},
		PlatformNames:  map[string]string{"weibo": "微博"},
		FileTimestamps: map[string]time.Time{},
	}, nil
}

func (m *mockTitleRepo) AvailableDateRange(ctx context.Context) (time.Time, time.Time, bool, error) {
	return mockDay, mockDay, true, nil
}

func newTestService() *NewsService {
	cfg := &config.Config{
		Platforms: []config.PlatformConfig{{ID: "weibo", Name: "微博"}},
	}
	cfg.ApplyDefaults()
	uc := biz.NewNewsUseCase(&mockTitleRepo{}, cfg, nil, log.DefaultLogger).
		WithClock(func() time.Time { return time.Date(2025, 1, 7, 12, 0, 0, 0, time.UTC) })
	return NewNewsService(uc, cfg, "file", "test", log.DefaultLogger)
}

func decodeResponse(t *testing.T, body string) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("invalid response json: %v\n%s", err, body)
	}
	return payload
}

func TestHandleSearchSuccess(t *testing.T) {
	svc := newTestService()
	req := httptest.NewRequest("POST", "/api/v1/search",
		strings.NewReader(`{"query": "量子"}`))
	w := httptest.NewRecorder()

	svc.HandleSearch(w, req)

	payload := decodeResponse(t, w.Body.String())
	if payload["success"] != true {
		t.Fatalf("success = %v, want true\n%s", payload["success"], w.Body.String())
	}
	results, ok := payload["results"].([]interface{})
	if !ok || len(results) != 1 {
		t.Errorf("results = %v, want 1 match", payload["results"])
	}
}

func TestHandleSearchInvalidBody(t *testing.T) {
	svc := newTestService()
	req := httptest.NewRequest("POST", "/api/v1/search", strings.NewReader(`{bad json`))
	w := httptest.NewRecorder()

	svc.HandleSearch(w, req)

	payload := decodeResponse(t, w.Body.String())
	if payload["success"] != false {
		t.Fatalf("success = %v, want false", payload["success"])
	}
	errObj := payload["error"].(map[string]interface{})
	if errObj["code"] != "INVALID_PARAMETER" {
		t.Errorf("error code = %v, want INVALID_PARAMETER", errObj["code"])
	}
}

func TestHandleSearchEmptyQuery(t *testing.T) {
	svc := newTestService()
	req := httptest.NewRequest("POST", "/api/v1/search", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	svc.HandleSearch(w, req)

	payload := decodeResponse(t, w.Body.String())
	if payload["success"] != false {
		t.Errorf("empty query should fail, got %s", w.Body.String())
	}
}

func TestHandleSearchEmptyBody(t *testing.T) {
	svc := newTestService()
	req := httptest.NewRequest("POST", "/api/v1/search", strings.NewReader(""))
	w := httptest.NewRecorder()

	svc.HandleSearch(w, req)

	payload := decodeResponse(t, w.Body.String())
	errObj, ok := payload["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("response = %s", w.Body.String())
	}
	// 空请求体按空对象处理，应报缺少关键词而非 JSON 解析失败
	if msg, _ := errObj["message"].(string); !strings.Contains(msg, "keyword") {
		t.Errorf("error message = %q, want missing-keyword error", msg)
	}
}

func TestHandleTrendAnalysisDispatch(t *testing.T) {
	svc := newTestService()
	req := httptest.NewRequest("POST", "/api/v1/analysis/trend",
		strings.NewReader(`{"topic": "量子", "analysis_type": "unknown"}`))
	w := httptest.NewRecorder()

	svc.HandleTrendAnalysis(w, req)

	payload := decodeResponse(t, w.Body.String())
	errObj, ok := payload["error"].(map[string]interface{})
	if !ok || errObj["code"] != "INVALID_PARAMETER" {
		t.Errorf("unknown analysis_type should fail with INVALID_PARAMETER, got %s", w.Body.String())
	}
}

func TestHandleStatus(t *testing.T) {
	svc := newTestService()
	req := httptest.NewRequest("GET", "/api/v1/status", nil)
	w := httptest.NewRecorder()

	svc.HandleStatus(w, req)

	payload := decodeResponse(t, w.Body.String())
	if payload["success"] != true || payload["health"] != "healthy" {
		t.Fatalf("status = %s", w.Body.String())
	}
	data := payload["data"].(map[string]interface{})
	if data["latest_record"] != "2025-01-07" {
		t.Errorf("latest_record = %v, want 2025-01-07", data["latest_record"])
	}
}

func TestHandleConfigHidesSecrets(t *testing.T) {
	svc := newTestService()
	svc.cfg.LLM.APIKey = "sk-secret"
	req := httptest.NewRequest("GET", "/api/v1/config", nil)
	w := httptest.NewRecorder()

	svc.HandleConfig(w, req)

	if strings.Contains(w.Body.String(), "sk-secret") {
		t.Errorf("config response must not leak the api key")
	}
	payload := decodeResponse(t, w.Body.String())
	if payload["success"] != true {
		t.Errorf("success = %v, want true", payload["success"])
	}
}

func TestHandleLatestNews(t *testing.T) {
	svc := newTestService()
	req := httptest.NewRequest("GET", "/api/v1/news/latest?limit=10", nil)
	w := httptest.NewRecorder()

	svc.HandleLatestNews(w, req)

	payload := decodeResponse(t, w.Body.String())
	if payload["success"] != true {
		t.Fatalf("response = %s", w.Body.String())
	}
	if payload["total"] != float64(1) {
		t.Errorf("total = %v, want 1", payload["total"])
	}
}
