package biz

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestDetectViralTopicsNewKeyword(t *testing.T) {
	// 昨天无数据，今天 quantum 出现 5 次、rocket 出现 4 次:
	// 新话题门槛为 5 次，只有 quantum 应被检出
	uc := newTestUseCase(map[string]*TitleSnapshot{
		"2025-01-07": snapshotOf("weibo", "微博", map[string][]int{
			"quantum rocket alpha":  {1},
			"quantum rocket beta":   {2},
			"quantum rocket gamma":  {3},
			"quantum rocket delta":  {4},
			"quantum epsilon sigma": {5},
		}),
	})

	result, err := uc.DetectViralTopics(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("DetectViralTopics() error = %v", err)
	}
	if result.TotalDetected != 1 {
		t.Fatalf("TotalDetected = %d, want 1", result.TotalDetected)
	}
	topic := result.ViralTopics[0]
	if topic.Keyword != "quantum" || topic.CurrentCount != 5 || topic.PreviousCount != 0 {
		t.Errorf("topic = %+v", topic)
	}
	if !topic.GrowthRate.IsNew {
		t.Errorf("GrowthRate.IsNew = false, want true")
	}
	if topic.AlertLevel != "high" {
		t.Errorf("AlertLevel = %s, want high", topic.AlertLevel)
	}
	if len(topic.SampleTitles) != 3 {
		t.Errorf("SampleTitles = %v, want 3 entries", topic.SampleTitles)
	}
}

func TestDetectViralTopicsGrowthRate(t *testing.T) {
	uc := newTestUseCase(map[string]*TitleSnapshot{
		"2025-01-06": snapshotOf("weibo", "微博", map[string][]int{
			"fusion zero": {1},
		}),
		"2025-01-07": snapshotOf("weibo", "微博", map[string][]int{
			"fusion one":   {1},
			"fusion two":   {2},
			"fusion three": {3},
		}),
	})

	result, err := uc.DetectViralTopics(context.Background(), 3.0, 0)
	if err != nil {
		t.Fatalf("DetectViralTopics() error = %v", err)
	}
	if result.TotalDetected != 1 {
		t.Fatalf("TotalDetected = %d, want 1", result.TotalDetected)
	}
	topic := result.ViralTopics[0]
	if topic.Keyword != "fusion" || topic.CurrentCount != 3 || topic.PreviousCount != 1 {
		t.Errorf("topic = %+v", topic)
	}
	if topic.GrowthRate.IsNew || topic.GrowthRate.Value != 3.0 {
		t.Errorf("GrowthRate = %+v, want 3.0", topic.GrowthRate)
	}
	if topic.AlertLevel != "medium" {
		t.Errorf("AlertLevel = %s, want medium", topic.AlertLevel)
	}
}

func TestDetectViralTopicsNoResult(t *testing.T) {
	uc := newTestUseCase(map[string]*TitleSnapshot{
		"2025-01-07": snapshotOf("weibo", "微博", map[string][]int{
			"fusion one": {1},
		}),
	})

	result, err := uc.DetectViralTopics(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("DetectViralTopics() error = %v", err)
	}
	if result.TotalDetected != 0 || result.Message == "" {
		t.Errorf("result = %+v, want empty list with message", result)
	}
}

func TestDetectViralTopicsInvalidThreshold(t *testing.T) {
	uc := newTestUseCase(map[string]*TitleSnapshot{})

	_, err := uc.DetectViralTopics(context.Background(), 0.5, 0)
	be := AsError(err)
	if be.Code != CodeInvalidParameter {
		t.Errorf("error code = %s, want INVALID_PARAMETER", be.Code)
	}
}

func TestGrowthRateMarshalJSON(t *testing.T) {
	newRate, _ := json.Marshal(GrowthRate{IsNew: true})
	if string(newRate) != `"new"` {
		t.Errorf("marshal new = %s, want \"new\"", newRate)
	}
	numeric, _ := json.Marshal(GrowthRate{Value: 3.456})
	if string(numeric) != "3.46" {
		t.Errorf("marshal numeric = %s, want 3.46", numeric)
	}
}

// solarSnapshots 构造最近 4 天 solar 频次为 counts 的快照序列
func solarSnapshots(counts []int) map[string]*TitleSnapshot {
	dates := []string{"2025-01-04", "2025-01-05", "2025-01-06", "2025-01-07"}
	snaps := make(map[string]*TitleSnapshot)
	for i, count := range counts {
		titles := make(map[string][]int)
		for n := 0; n < count; n++ {
			titles["solar surge "+dates[i]+string(rune('a'+n))] = []int{n + 1}
		}
		snaps[dates[i]] = snapshotOf("weibo", "微博", titles)
	}
	return snaps
}

func TestPredictTrendingTopicsMonotone(t *testing.T) {
	uc := newTestUseCase(solarSnapshots([]int{1, 2, 3, 4}))

	result, err := uc.PredictTrendingTopics(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("PredictTrendingTopics() error = %v", err)
	}

	var solar *PredictedTopic
	for i := range result.PredictedTopics {
		if result.PredictedTopics[i].Keyword == "solar" {
			solar = &result.PredictedTopics[i]
			break
		}
	}
	if solar == nil {
		t.Fatalf("solar not predicted, got %+v", result.PredictedTopics)
	}
	// 单调递增序列: 置信度 0.9，增长率 (4-3)/3 = 33.33%
	if solar.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", solar.Confidence)
	}
	if solar.GrowthRate != 33.33 {
		t.Errorf("GrowthRate = %v, want 33.33", solar.GrowthRate)
	}
	if len(solar.TrendData) != 4 || solar.TrendData[3] != 4 {
		t.Errorf("TrendData = %v, want [1 2 3 4]", solar.TrendData)
	}
}

func TestPredictTrendingTopicsNoToday(t *testing.T) {
	uc := newTestUseCase(map[string]*TitleSnapshot{
		"2025-01-06": snapshotOf("weibo", "微博", map[string][]int{
			"solar surge": {1},
		}),
	})

	_, err := uc.PredictTrendingTopics(context.Background(), 0, 0)
	if !IsDataNotFound(err) {
		t.Errorf("error = %v, want DATA_NOT_FOUND", err)
	}
	if !strings.Contains(err.Error(), "今天") {
		t.Errorf("error message = %v", err)
	}
}
