package biz

import (
	"context"
	"testing"
)

func TestSearchNewsLatestFallback(t *testing.T) {
	// 不传日期时退回最新有数据的日期，而不是日历上的今天
	uc := newTestUseCase(map[string]*TitleSnapshot{
		"2025-01-05": snapshotOf("weibo", "微博", map[string][]int{
			"量子计算新突破": {3},
		}),
	})

	result, err := uc.SearchNews(context.Background(), "量子", "", "", "", nil, 0, "", 0, false)
	if err != nil {
		t.Fatalf("SearchNews() error = %v", err)
	}
	if result.Summary.TotalFound != 1 {
		t.Fatalf("TotalFound = %d, want 1", result.Summary.TotalFound)
	}
	match := result.Results[0]
	if match.Date != "2025-01-05" {
		t.Errorf("Date = %s, want 2025-01-05", match.Date)
	}
	if match.SimilarityScore != 1.0 {
		t.Errorf("SimilarityScore = %v, want 1.0", match.SimilarityScore)
	}
	if match.Rank != 3 {
		t.Errorf("Rank = %d, want 3", match.Rank)
	}
}

func TestSearchNewsNoDataAvailable(t *testing.T) {
	uc := newTestUseCase(map[string]*TitleSnapshot{})

	_, err := uc.SearchNews(context.Background(), "量子", "", "", "", nil, 0, "", 0, false)
	be := AsError(err)
	if be.Code != CodeNoDataAvailable {
		t.Errorf("error code = %s, want NO_DATA_AVAILABLE", be.Code)
	}
}

func TestSearchNewsEmptyMatchesIsSuccess(t *testing.T) {
	uc := newTestUseCase(map[string]*TitleSnapshot{
		"2025-01-05": snapshotOf("weibo", "微博", map[string][]int{
			"体育赛事收官": {1},
		}),
	})

	result, err := uc.SearchNews(context.Background(), "量子", "", "", "", nil, 0, "", 0, false)
	if err != nil {
		t.Fatalf("SearchNews() error = %v", err)
	}
	if len(result.Results) != 0 {
		t.Errorf("Results = %v, want empty", result.Results)
	}
	if result.Message == "" {
		t.Errorf("empty search should carry a message")
	}
}

func TestSearchNewsEntityModeCaseSensitive(t *testing.T) {
	uc := newTestUseCase(map[string]*TitleSnapshot{
		"2025-01-07": snapshotOf("weibo", "微博", map[string][]int{
			"Apple 发布新品": {1},
			"apple 价格下调": {2},
		}),
	})

	result, err := uc.SearchNews(context.Background(), "Apple", "entity", "2025-01-07", "2025-01-07", nil, 0, "", 0, false)
	if err != nil {
		t.Fatalf("SearchNews() error = %v", err)
	}
	if result.Summary.TotalFound != 1 || result.Results[0].Title != "Apple 发布新品" {
		t.Errorf("entity mode should match case sensitively, got %+v", result.Results)
	}
}

func TestSearchNewsInvalidMode(t *testing.T) {
	uc := newTestUseCase(map[string]*TitleSnapshot{})

	_, err := uc.SearchNews(context.Background(), "量子", "regex", "", "", nil, 0, "", 0, false)
	be := AsError(err)
	if be.Code != CodeInvalidParameter {
		t.Errorf("error code = %s, want INVALID_PARAMETER", be.Code)
	}
}

func TestSearchRelatedHistory(t *testing.T) {
	// yesterday 预设只查 2025-01-06
	uc := newTestUseCase(map[string]*TitleSnapshot{
		"2025-01-06": snapshotOf("weibo", "微博", map[string][]int{
			"人工智能 医疗应用落地": {2},
			"体育赛事收官":      {9},
		}),
	})

	result, err := uc.SearchRelatedHistory(context.Background(), "人工智能 医疗应用", "", "", "", 0.3, 0, false)
	if err != nil {
		t.Fatalf("SearchRelatedHistory() error = %v", err)
	}
	if len(result.Results) != 1 {
		t.Fatalf("Results = %+v, want 1 match", result.Results)
	}
	item := result.Results[0]
	if item.Title != "人工智能 医疗应用落地" || item.Date != "2025-01-06" {
		t.Errorf("item = %+v", item)
	}
	if item.KeywordOverlap <= 0 || item.SimilarityScore <= 0 {
		t.Errorf("scores = (%v, %v), want positive", item.KeywordOverlap, item.SimilarityScore)
	}
	if result.Statistics.PlatformDistribution["weibo"] != 1 {
		t.Errorf("PlatformDistribution = %v", result.Statistics.PlatformDistribution)
	}
}

func TestSearchRelatedHistoryInvalidPreset(t *testing.T) {
	uc := newTestUseCase(map[string]*TitleSnapshot{})

	_, err := uc.SearchRelatedHistory(context.Background(), "人工智能", "last_year", "", "", 0, 0, false)
	be := AsError(err)
	if be.Code != CodeInvalidParameter {
		t.Errorf("error code = %s, want INVALID_PARAMETER", be.Code)
	}
}

func TestSearchRelatedHistoryNoMatches(t *testing.T) {
	uc := newTestUseCase(map[string]*TitleSnapshot{})

	result, err := uc.SearchRelatedHistory(context.Background(), "人工智能", "last_week", "", "", 0, 0, false)
	if err != nil {
		t.Fatalf("SearchRelatedHistory() error = %v", err)
	}
	if result.Message == "" || len(result.Results) != 0 {
		t.Errorf("result = %+v, want empty with message", result)
	}
}
