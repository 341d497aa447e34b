package biz

import (
	"context"
	"testing"
)

// aiSnapshots 构造 2025-01-01 至 2025-01-07 每天含 counts[i] 条 "AI" 标题的快照
func aiSnapshots(counts []int) map[string]*TitleSnapshot {
	dates := []string{
		"2025-01-01", "2025-01-02", "2025-01-03", "2025-01-04",
		"2025-01-05", "2025-01-06", "2025-01-07",
	}
	snaps := make(map[string]*TitleSnapshot)
	for i, count := range counts {
		titles := make(map[string][]int)
		for n := 0; n < count; n++ {
			titles["AI 新闻 "+dates[i]+string(rune('a'+n))] = []int{n + 1}
		}
		titles["无关话题 "+dates[i]] = []int{count + 1}
		snaps[dates[i]] = snapshotOf("weibo", "微博", titles)
	}
	return snaps
}

func TestAnalyzeTopicTrendRising(t *testing.T) {
	uc := newTestUseCase(aiSnapshots([]int{1, 1, 2, 2, 3, 3, 3}))

	result, err := uc.AnalyzeTopicTrend(context.Background(), "AI", "2025-01-01", "2025-01-07", "")
	if err != nil {
		t.Fatalf("AnalyzeTopicTrend() error = %v", err)
	}
	if result.Statistics.TotalMentions != 15 {
		t.Errorf("TotalMentions = %d, want 15", result.Statistics.TotalMentions)
	}
	// (3-1)/1*100 = 200
	if result.Statistics.ChangeRate != 200.0 {
		t.Errorf("ChangeRate = %v, want 200.0", result.Statistics.ChangeRate)
	}
	if result.TrendDirection != "up" {
		t.Errorf("TrendDirection = %s, want up", result.TrendDirection)
	}
	if result.Statistics.PeakCount != 3 {
		t.Errorf("PeakCount = %d, want 3", result.Statistics.PeakCount)
	}
	if result.Statistics.PeakTime == nil || *result.Statistics.PeakTime != "2025-01-05" {
		t.Errorf("PeakTime = %v, want 2025-01-05", result.Statistics.PeakTime)
	}
	if len(result.TrendData) != 7 {
		t.Errorf("TrendData length = %d, want 7", len(result.TrendData))
	}
}

func TestAnalyzeTopicTrendAllZero(t *testing.T) {
	// 整个区间都没有数据: 趋势点全零，峰值时间为空，变化率为 0
	uc := newTestUseCase(map[string]*TitleSnapshot{})

	result, err := uc.AnalyzeTopicTrend(context.Background(), "AI", "2025-01-01", "2025-01-07", "day")
	if err != nil {
		t.Fatalf("AnalyzeTopicTrend() error = %v", err)
	}
	if result.Statistics.ChangeRate != 0.0 {
		t.Errorf("ChangeRate = %v, want 0.0", result.Statistics.ChangeRate)
	}
	if result.Statistics.PeakTime != nil {
		t.Errorf("PeakTime = %v, want nil", *result.Statistics.PeakTime)
	}
	if result.Statistics.PeakCount != 0 {
		t.Errorf("PeakCount = %d, want 0", result.Statistics.PeakCount)
	}
	if result.TrendDirection != "flat" {
		t.Errorf("TrendDirection = %s, want flat", result.TrendDirection)
	}
}

func TestAnalyzeTopicTrendInvalidGranularity(t *testing.T) {
	uc := newTestUseCase(map[string]*TitleSnapshot{})

	_, err := uc.AnalyzeTopicTrend(context.Background(), "AI", "", "", "hour")
	be := AsError(err)
	if be.Code != CodeInvalidParameter {
		t.Errorf("error code = %s, want INVALID_PARAMETER", be.Code)
	}
}

func TestAnalyzeTopicLifecycleLateStart(t *testing.T) {
	// 话题在区间后半段才出现并逐日衰退: [0,0,0,5,3,2,1]
	uc := newTestUseCase(aiSnapshots([]int{0, 0, 0, 5, 3, 2, 1}))

	result, err := uc.AnalyzeTopicLifecycle(context.Background(), "AI", "2025-01-01", "2025-01-07")
	if err != nil {
		t.Fatalf("AnalyzeTopicLifecycle() error = %v", err)
	}
	if result.Analysis.LifecycleStage != "declining" {
		t.Errorf("LifecycleStage = %s, want declining", result.Analysis.LifecycleStage)
	}
	if result.Analysis.FirstAppearance != "2025-01-04" {
		t.Errorf("FirstAppearance = %s, want 2025-01-04", result.Analysis.FirstAppearance)
	}
	if result.Analysis.ActiveDays != 4 {
		t.Errorf("ActiveDays = %d, want 4", result.Analysis.ActiveDays)
	}
	if result.Analysis.PeakDate != "2025-01-04" || result.Analysis.PeakCount != 5 {
		t.Errorf("Peak = (%s, %d), want (2025-01-04, 5)", result.Analysis.PeakDate, result.Analysis.PeakCount)
	}
}

func TestAnalyzeTopicLifecycleNotFound(t *testing.T) {
	uc := newTestUseCase(map[string]*TitleSnapshot{})

	_, err := uc.AnalyzeTopicLifecycle(context.Background(), "AI", "2025-01-01", "2025-01-07")
	if !IsDataNotFound(err) {
		t.Errorf("error = %v, want DATA_NOT_FOUND", err)
	}
}

func TestAnalyzeTopicLifecycleSustained(t *testing.T) {
	uc := newTestUseCase(aiSnapshots([]int{3, 3, 3, 2, 2, 2, 2}))

	result, err := uc.AnalyzeTopicLifecycle(context.Background(), "AI", "2025-01-01", "2025-01-07")
	if err != nil {
		t.Fatalf("AnalyzeTopicLifecycle() error = %v", err)
	}
	if result.Analysis.TopicType != "sustained" {
		t.Errorf("TopicType = %s, want sustained", result.Analysis.TopicType)
	}
	if result.Analysis.LifecycleStage != "stable" {
		t.Errorf("LifecycleStage = %s, want stable", result.Analysis.LifecycleStage)
	}
}
