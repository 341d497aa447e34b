package biz

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// KeywordCount 关键词及其频次
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// topKeywordCounts 按频次降序取前 n 个关键词，频次相同按字典序
func topKeywordCounts(freq map[string]int, n int) []KeywordCount {
	list := make([]KeywordCount, 0, len(freq))
	for kw, count := range freq {
		list = append(list, KeywordCount{Keyword: kw, Count: count})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Keyword < list[j].Keyword
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}

// PlatformCompareStats 单个平台的对比统计
type PlatformCompareStats struct {
	TotalNews     int            `json:"total_news"`
	TopicMentions int            `json:"topic_mentions"`
	UniqueTitles  int            `json:"unique_titles"`
	CoverageRate  float64        `json:"coverage_rate"`
	TopKeywords   []KeywordCount `json:"top_keywords"`
}

// PlatformCompareResult 平台对比分析结果
type PlatformCompareResult struct {
	Topic          string                          `json:"topic,omitempty"`
	DateRange      DateRangeInfo                   `json:"date_range"`
	PlatformStats  map[string]PlatformCompareStats `json:"platform_stats"`
	UniqueTopics   map[string][]string             `json:"unique_topics"`
	TotalPlatforms int                             `json:"total_platforms"`
}

type platformAccumulator struct {
	totalNews     int
	topicMentions int
	uniqueTitles  map[string]struct{}
	keywordFreq   map[string]int
}

func newPlatformAccumulator() *platformAccumulator {
	return &platformAccumulator{
		uniqueTitles: make(map[string]struct{}),
		keywordFreq:  make(map[string]int),
	}
}

// ComparePlatforms 平台对比分析：对比各平台对话题的关注度与关键词分布
func (uc *NewsUseCase) ComparePlatforms(ctx context.Context, topic, startStr, endStr string) (*PlatformCompareResult, error) {
	var err error
	if topic != "" {
		topic, err = ValidateKeyword(topic)
		if err != nil {
			return nil, err
		}
	}
	start, end, err := uc.resolveDateRange(startStr, endStr, 0)
	if err != nil {
		return nil, err
	}

	topicLower := strings.ToLower(topic)
	stats := make(map[string]*platformAccumulator)

	err = eachDay(start, end, func(day time.Time) error {
		snap, err := uc.repo.ReadTitlesForDate(ctx, day, nil)
		if err != nil {
			if IsDataNotFound(err) {
				return nil
			}
			return err
		}
		for _, platformID := range sortedPlatformIDs(snap) {
			name := platformDisplayName(snap, platformID)
			acc, ok := stats[name]
			if !ok {
				acc = newPlatformAccumulator()
				stats[name] = acc
			}
			for _, title := range sortedTitles(snap.TitlesByPlatform[platformID]) {
				acc.totalNews++
				acc.uniqueTitles[title] = struct{}{}
				if topic != "" && strings.Contains(strings.ToLower(title), topicLower) {
					acc.topicMentions++
				}
				for _, kw := range uc.tok.Tokens(title) {
					acc.keywordFreq[kw]++
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resultStats := make(map[string]PlatformCompareStats, len(stats))
	for name, acc := range stats {
		coverage := 0.0
		if acc.totalNews > 0 {
			coverage = float64(acc.topicMentions) / float64(acc.totalNews) * 100
		}
		resultStats[name] = PlatformCompareStats{
			TotalNews:     acc.totalNews,
			TopicMentions: acc.topicMentions,
			UniqueTitles:  len(acc.uniqueTitles),
			CoverageRate:  round2(coverage),
			TopKeywords:   topKeywordCounts(acc.keywordFreq, 5),
		}
	}

	return &PlatformCompareResult{
		Topic:          topic,
		DateRange:      DateRangeInfo{Start: formatDate(start), End: formatDate(end)},
		PlatformStats:  resultStats,
		UniqueTopics:   findUniqueTopics(stats),
		TotalPlatforms: len(resultStats),
	}, nil
}

// findUniqueTopics 找出只在单一平台 TOP10 关键词中出现的话题，每平台最多 5 个
func findUniqueTopics(stats map[string]*platformAccumulator) map[string][]string {
	topSets := make(map[string]map[string]struct{}, len(stats))
	for name, acc := range stats {
		set := make(map[string]struct{})
		for _, kc := range topKeywordCounts(acc.keywordFreq, 10) {
			set[kc.Keyword] = struct{}{}
		}
		topSets[name] = set
	}

	unique := make(map[string][]string)
	for name, keywords := range topSets {
		var own []string
		for kw := range keywords {
			foundElsewhere := false
			for other, otherSet := range topSets {
				if other == name {
					continue
				}
				if _, ok := otherSet[kw]; ok {
					foundElsewhere = true
					break
				}
			}
			if !foundElsewhere {
				own = append(own, kw)
			}
		}
		if len(own) > 0 {
			sort.Strings(own)
			if len(own) > 5 {
				own = own[:5]
			}
			unique[name] = own
		}
	}
	return unique
}

var snapshotFilePattern = regexp.MustCompile(`^(\d{2})(\d{2})\.txt`)

// HourCount 某小时的更新次数
type HourCount struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}

// PlatformActivity 单个平台的活跃度统计
type PlatformActivity struct {
	Platform        string      `json:"platform"`
	TotalUpdates    int         `json:"total_updates"`
	NewsCount       int         `json:"news_count"`
	DaysActive      int         `json:"days_active"`
	AvgNewsPerDay   float64     `json:"avg_news_per_day"`
	MostActiveHours []HourCount `json:"most_active_hours"`
	ActivityScore   float64     `json:"activity_score"`
}

// PlatformActivityResult 平台活跃度统计结果，已按活跃度降序排列
type PlatformActivityResult struct {
	DateRange          DateRangeInfo      `json:"date_range"`
	PlatformActivity   []PlatformActivity `json:"platform_activity"`
	MostActivePlatform string             `json:"most_active_platform,omitempty"`
	TotalPlatforms     int                `json:"total_platforms"`
}

type activityAccumulator struct {
	totalUpdates int
	newsCount    int
	activeDays   map[string]struct{}
	hourlyDist   map[int]int
}

// GetPlatformActivityStats 平台活跃度统计：发布频率与活跃时间段
func (uc *NewsUseCase) GetPlatformActivityStats(ctx context.Context, startStr, endStr string) (*PlatformActivityResult, error) {
	start, end, err := uc.resolveDateRange(startStr, endStr, 0)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]*activityAccumulator)

	err = eachDay(start, end, func(day time.Time) error {
		snap, err := uc.repo.ReadTitlesForDate(ctx, day, nil)
		if err != nil {
			if IsDataNotFound(err) {
				return nil
			}
			return err
		}
		for _, platformID := range sortedPlatformIDs(snap) {
			name := platformDisplayName(snap, platformID)
			acc, ok := stats[name]
			if !ok {
				acc = &activityAccumulator{
					activeDays: make(map[string]struct{}),
					hourlyDist: make(map[int]int),
				}
				stats[name] = acc
			}
			acc.newsCount += len(snap.TitlesByPlatform[platformID])
			acc.activeDays[formatDate(day)] = struct{}{}
			acc.totalUpdates += len(snap.FileTimestamps)

			// 文件名形如 1430.txt，前两位为小时
			for filename := range snap.FileTimestamps {
				if m := snapshotFilePattern.FindStringSubmatch(filename); m != nil {
					hour, _ := strconv.Atoi(m[1])
					acc.hourlyDist[hour]++
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	activities := make([]PlatformActivity, 0, len(stats))
	for name, acc := range stats {
		daysCount := len(acc.activeDays)
		avgPerDay := 0.0
		if daysCount > 0 {
			avgPerDay = float64(acc.newsCount) / float64(daysCount)
		}

		hours := make([]HourCount, 0, len(acc.hourlyDist))
		for hour, count := range acc.hourlyDist {
			hours = append(hours, HourCount{Hour: padHour(hour), Count: count})
		}
		sort.Slice(hours, func(i, j int) bool {
			if hours[i].Count != hours[j].Count {
				return hours[i].Count > hours[j].Count
			}
			return hours[i].Hour < hours[j].Hour
		})
		if len(hours) > 3 {
			hours = hours[:3]
		}

		activities = append(activities, PlatformActivity{
			Platform:        name,
			TotalUpdates:    acc.totalUpdates,
			NewsCount:       acc.newsCount,
			DaysActive:      daysCount,
			AvgNewsPerDay:   round2(avgPerDay),
			MostActiveHours: hours,
			ActivityScore:   round2(avgPerDay),
		})
	}

	sort.Slice(activities, func(i, j int) bool {
		if activities[i].ActivityScore != activities[j].ActivityScore {
			return activities[i].ActivityScore > activities[j].ActivityScore
		}
		return activities[i].Platform < activities[j].Platform
	})

	mostActive := ""
	if len(activities) > 0 {
		mostActive = activities[0].Platform
	}

	return &PlatformActivityResult{
		DateRange:          DateRangeInfo{Start: formatDate(start), End: formatDate(end)},
		PlatformActivity:   activities,
		MostActivePlatform: mostActive,
		TotalPlatforms:     len(activities),
	}, nil
}

func padHour(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// CooccurrencePair 一对共现关键词
type CooccurrencePair struct {
	Keyword1          string   `json:"keyword1"`
	Keyword2          string   `json:"keyword2"`
	CooccurrenceCount int      `json:"cooccurrence_count"`
	SampleTitles      []string `json:"sample_titles"`
}

// CooccurrenceResult 关键词共现分析结果
type CooccurrenceResult struct {
	CooccurrencePairs []CooccurrencePair `json:"cooccurrence_pairs"`
	TotalPairs        int                `json:"total_pairs"`
	MinFrequency      int                `json:"min_frequency"`
	GeneratedAt       string             `json:"generated_at"`
}

type keywordPair struct {
	first, second string
}

// AnalyzeKeywordCooccurrence 关键词共现分析，只统计今天的数据
func (uc *NewsUseCase) AnalyzeKeywordCooccurrence(ctx context.Context, minFrequency, topN int) (*CooccurrenceResult, error) {
	minFrequency, err := ValidateLimit(minFrequency, 3, 100)
	if err != nil {
		return nil, err
	}
	topN, err = ValidateTopN(topN, 20, 100)
	if err != nil {
		return nil, err
	}

	snap, err := uc.repo.ReadTitlesForDate(ctx, uc.today(), nil)
	if err != nil {
		return nil, err
	}

	cooccurrence := make(map[keywordPair]int)
	keywordTitles := make(map[string][]string)

	for _, platformID := range sortedPlatformIDs(snap) {
		for _, title := range sortedTitles(snap.TitlesByPlatform[platformID]) {
			keywords := uc.tok.UniqueTokens(title)
			for _, kw := range keywords {
				keywordTitles[kw] = append(keywordTitles[kw], title)
			}
			// 无序对统一排序作为键，(x,y) 与 (y,x) 只计一次
			for i := 0; i < len(keywords); i++ {
				for j := i + 1; j < len(keywords); j++ {
					pair := keywordPair{keywords[i], keywords[j]}
					if pair.first > pair.second {
						pair.first, pair.second = pair.second, pair.first
					}
					cooccurrence[pair]++
				}
			}
		}
	}

	type pairCount struct {
		pair  keywordPair
		count int
	}
	filtered := make([]pairCount, 0, len(cooccurrence))
	for pair, count := range cooccurrence {
		if count >= minFrequency {
			filtered = append(filtered, pairCount{pair, count})
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].count != filtered[j].count {
			return filtered[i].count > filtered[j].count
		}
		if filtered[i].pair.first != filtered[j].pair.first {
			return filtered[i].pair.first < filtered[j].pair.first
		}
		return filtered[i].pair.second < filtered[j].pair.second
	})
	if len(filtered) > topN {
		filtered = filtered[:topN]
	}

	pairs := make([]CooccurrencePair, 0, len(filtered))
	for _, pc := range filtered {
		var samples []string
		for _, title := range keywordTitles[pc.pair.first] {
			if _, ok := uc.tok.Extract(title)[pc.pair.second]; ok {
				samples = append(samples, title)
				if len(samples) == 3 {
					break
				}
			}
		}
		pairs = append(pairs, CooccurrencePair{
			Keyword1:          pc.pair.first,
			Keyword2:          pc.pair.second,
			CooccurrenceCount: pc.count,
			SampleTitles:      samples,
		})
	}

	return &CooccurrenceResult{
		CooccurrencePairs: pairs,
		TotalPairs:        len(pairs),
		MinFrequency:      minFrequency,
		GeneratedAt:       formatDateTime(uc.now()),
	}, nil
}
