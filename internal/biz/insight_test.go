package biz

import (
	"context"
	"testing"
	"time"
)

func TestAnalyzeKeywordCooccurrence(t *testing.T) {
	uc := newTestUseCase(map[string]*TitleSnapshot{
		"2025-01-07": snapshotOf("weibo", "微博", map[string][]int{
			"AI breakthrough hits":  {1},
			"AI breakthrough rises": {2},
		}),
	})

	result, err := uc.AnalyzeKeywordCooccurrence(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("AnalyzeKeywordCooccurrence() error = %v", err)
	}
	if result.TotalPairs != 1 {
		t.Fatalf("TotalPairs = %d, want 1", result.TotalPairs)
	}
	pair := result.CooccurrencePairs[0]
	// 词对按字典序规范化
	if pair.Keyword1 != "ai" || pair.Keyword2 != "breakthrough" {
		t.Errorf("pair = (%s, %s), want (ai, breakthrough)", pair.Keyword1, pair.Keyword2)
	}
	if pair.CooccurrenceCount != 2 {
		t.Errorf("CooccurrenceCount = %d, want 2", pair.CooccurrenceCount)
	}
	if len(pair.SampleTitles) != 2 {
		t.Errorf("SampleTitles = %v, want both titles", pair.SampleTitles)
	}
	if result.MinFrequency != 2 {
		t.Errorf("MinFrequency = %d, want 2", result.MinFrequency)
	}
}

func TestComparePlatformsCoverage(t *testing.T) {
	snap := &TitleSnapshot{
		TitlesByPlatform: map[string]map[string]TitleInfo{
			"weibo": {
				"AI 重磅进展": {Ranks: []int{1}},
				"体育赛事结束": {Ranks: []int{2}},
			},
			"zhihu": {
				"AI 行业讨论": {Ranks: []int{1}},
			},
		},
		PlatformNames: map[string]string{"weibo": "微博", "zhihu": "知乎"},
	}
	uc := newTestUseCase(map[string]*TitleSnapshot{"2025-01-07": snap})

	result, err := uc.ComparePlatforms(context.Background(), "AI", "2025-01-07", "2025-01-07")
	if err != nil {
		t.Fatalf("ComparePlatforms() error = %v", err)
	}
	if result.TotalPlatforms != 2 {
		t.Fatalf("TotalPlatforms = %d, want 2", result.TotalPlatforms)
	}

	weibo := result.PlatformStats["微博"]
	if weibo.TotalNews != 2 || weibo.TopicMentions != 1 {
		t.Errorf("微博 stats = %+v", weibo)
	}
	if weibo.CoverageRate != 50.0 {
		t.Errorf("微博 CoverageRate = %v, want 50.0", weibo.CoverageRate)
	}
	zhihu := result.PlatformStats["知乎"]
	if zhihu.CoverageRate != 100.0 {
		t.Errorf("知乎 CoverageRate = %v, want 100.0", zhihu.CoverageRate)
	}
}

func TestGetPlatformActivityStats(t *testing.T) {
	snap := snapshotOf("weibo", "微博", map[string][]int{
		"新闻一": {1},
		"新闻二": {2},
	})
	snap.FileTimestamps = map[string]time.Time{
		"0930.txt": time.Date(2025, 1, 7, 9, 30, 0, 0, time.UTC),
		"1430.txt": time.Date(2025, 1, 7, 14, 30, 0, 0, time.UTC),
	}
	uc := newTestUseCase(map[string]*TitleSnapshot{"2025-01-07": snap})

	result, err := uc.GetPlatformActivityStats(context.Background(), "2025-01-07", "2025-01-07")
	if err != nil {
		t.Fatalf("GetPlatformActivityStats() error = %v", err)
	}
	if result.MostActivePlatform != "微博" {
		t.Errorf("MostActivePlatform = %s, want 微博", result.MostActivePlatform)
	}
	activity := result.PlatformActivity[0]
	if activity.TotalUpdates != 2 || activity.NewsCount != 2 || activity.DaysActive != 1 {
		t.Errorf("activity = %+v", activity)
	}
	if len(activity.MostActiveHours) != 2 {
		t.Fatalf("MostActiveHours = %v, want 2 entries", activity.MostActiveHours)
	}
	// 次数相同按小时字符串升序
	if activity.MostActiveHours[0].Hour != "09:00" {
		t.Errorf("first hour = %s, want 09:00", activity.MostActiveHours[0].Hour)
	}
}
