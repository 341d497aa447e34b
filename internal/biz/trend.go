package biz

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DateRangeInfo 分析覆盖的日期区间
type DateRangeInfo struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	TotalDays int    `json:"total_days,omitempty"`
}

// TrendPoint 单日话题热度
type TrendPoint struct {
	Date         string   `json:"date"`
	Count        int      `json:"count"`
	SampleTitles []string `json:"sample_titles"`
}

// TrendStatistics 趋势统计指标
type TrendStatistics struct {
	TotalMentions   int     `json:"total_mentions"`
	AverageMentions float64 `json:"average_mentions"`
	PeakCount       int     `json:"peak_count"`
	PeakTime        *string `json:"peak_time"`
	ChangeRate      float64 `json:"change_rate"`
}

// TrendResult 热度趋势分析结果
type TrendResult struct {
	Topic          string          `json:"topic"`
	DateRange      DateRangeInfo   `json:"date_range"`
	Granularity    string          `json:"granularity"`
	TrendData      []TrendPoint    `json:"trend_data"`
	Statistics     TrendStatistics `json:"statistics"`
	TrendDirection string          `json:"trend_direction"`
}

// resolveDateRange 解析可选的日期区间；两个参数均为空时退回默认区间
// [today-defaultDaysBack, today]。
func (uc *NewsUseCase) resolveDateRange(startStr, endStr string, defaultDaysBack int) (start, end time.Time, err error) {
	if startStr == "" && endStr == "" {
		end = uc.today()
		start = end.AddDate(0, 0, -defaultDaysBack)
		return start, end, nil
	}
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, ErrInvalidParameter(
			"date_range 必须同时包含 start 和 end", "请同时提供 start_date 与 end_date")
	}
	return ValidateDateRange(startStr, endStr, uc.now())
}

// countTopicMentions 统计单个快照中包含话题的标题数，附带样本标题。
// 匹配为大小写不敏感的子串包含。
func countTopicMentions(snap *TitleSnapshot, topic string, sampleLimit int) (int, []string) {
	topicLower := strings.ToLower(topic)
	count := 0
	var samples []string
	for _, platformID := range sortedPlatformIDs(snap) {
		for _, title := range sortedTitles(snap.TitlesByPlatform[platformID]) {
			if strings.Contains(strings.ToLower(title), topicLower) {
				count++
				if len(samples) < sampleLimit {
					samples = append(samples, title)
				}
			}
		}
	}
	return count, samples
}

// AnalyzeTopicTrend 热度趋势分析：追踪话题在日期区间内的每日提及量
func (uc *NewsUseCase) AnalyzeTopicTrend(ctx context.Context, topic, startStr, endStr, granularity string) (*TrendResult, error) {
	topic, err := ValidateKeyword(topic)
	if err != nil {
		return nil, err
	}
	if granularity == "" {
		granularity = "day"
	}
	if granularity != "day" {
		return nil, ErrInvalidParameter(
			fmt.Sprintf("不支持的粒度参数: %s", granularity),
			"底层数据按天聚合，当前仅支持 day 粒度")
	}
	start, end, err := uc.resolveDateRange(startStr, endStr, 6)
	if err != nil {
		return nil, err
	}

	var points []TrendPoint
	err = eachDay(start, end, func(day time.Time) error {
		snap, err := uc.repo.ReadTitlesForDate(ctx, day, nil)
		if err != nil {
			if IsDataNotFound(err) {
				points = append(points, TrendPoint{Date: formatDate(day), Count: 0, SampleTitles: []string{}})
				return nil
			}
			return err
		}
		count, samples := countTopicMentions(snap, topic, 3)
		if samples == nil {
			samples = []string{}
		}
		points = append(points, TrendPoint{Date: formatDate(day), Count: count, SampleTitles: samples})
		return nil
	})
	if err != nil {
		return nil, err
	}

	counts := make([]int, len(points))
	total := 0
	for i, p := range points {
		counts[i] = p.Count
		total += p.Count
	}
	totalDays := len(points)

	var changeRate float64
	var peakTime *string
	maxCount := 0
	if len(counts) >= 2 && total > 0 {
		firstNonZero := 0
		for _, c := range counts {
			if c > 0 {
				firstNonZero = c
				break
			}
		}
		last := counts[len(counts)-1]
		if firstNonZero > 0 {
			changeRate = float64(last-firstNonZero) / float64(firstNonZero) * 100
		}
		peakIndex := 0
		for i, c := range counts {
			if c > maxCount {
				maxCount = c
				peakIndex = i
			}
		}
		peak := points[peakIndex].Date
		peakTime = &peak
	}

	avg := 0.0
	if len(counts) > 0 {
		avg = round2(float64(total) / float64(len(counts)))
	}

	direction := "flat"
	if changeRate > 10 {
		direction = "up"
	} else if changeRate < -10 {
		direction = "down"
	}

	return &TrendResult{
		Topic:       topic,
		DateRange:   DateRangeInfo{Start: formatDate(start), End: formatDate(end), TotalDays: totalDays},
		Granularity: granularity,
		TrendData:   points,
		Statistics: TrendStatistics{
			TotalMentions:   total,
			AverageMentions: avg,
			PeakCount:       maxCount,
			PeakTime:        peakTime,
			ChangeRate:      round2(changeRate),
		},
		TrendDirection: direction,
	}, nil
}

// LifecyclePoint 单日话题出现次数
type LifecyclePoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// LifecycleAnalysis 生命周期分析指标
type LifecycleAnalysis struct {
	FirstAppearance  string  `json:"first_appearance"`
	LastAppearance   string  `json:"last_appearance"`
	PeakDate         string  `json:"peak_date"`
	PeakCount        int     `json:"peak_count"`
	ActiveDays       int     `json:"active_days"`
	AvgDailyMentions float64 `json:"avg_daily_mentions"`
	LifecycleStage   string  `json:"lifecycle_stage"`
	TopicType        string  `json:"topic_type"`
}

// LifecycleResult 话题生命周期分析结果
type LifecycleResult struct {
	Topic         string            `json:"topic"`
	DateRange     DateRangeInfo     `json:"date_range"`
	LifecycleData []LifecyclePoint  `json:"lifecycle_data"`
	Analysis      LifecycleAnalysis `json:"analysis"`
}

// AnalyzeTopicLifecycle 话题生命周期分析：从出现到消退的完整轨迹
func (uc *NewsUseCase) AnalyzeTopicLifecycle(ctx context.Context, topic, startStr, endStr string) (*LifecycleResult, error) {
	topic, err := ValidateKeyword(topic)
	if err != nil {
		return nil, err
	}
	start, end, err := uc.resolveDateRange(startStr, endStr, 6)
	if err != nil {
		return nil, err
	}

	var points []LifecyclePoint
	err = eachDay(start, end, func(day time.Time) error {
		snap, err := uc.repo.ReadTitlesForDate(ctx, day, nil)
		if err != nil {
			if IsDataNotFound(err) {
				points = append(points, LifecyclePoint{Date: formatDate(day), Count: 0})
				return nil
			}
			return err
		}
		count, _ := countTopicMentions(snap, topic, 0)
		points = append(points, LifecyclePoint{Date: formatDate(day), Count: count})
		return nil
	})
	if err != nil {
		return nil, err
	}

	counts := make([]int, len(points))
	total := 0
	for i, p := range points {
		counts[i] = p.Count
		total += p.Count
	}
	if total == 0 {
		return nil, ErrDataNotFound(
			fmt.Sprintf("在 %s 内未找到话题 '%s'", describeRange(start, end), topic),
			"请尝试其他话题或扩大时间范围")
	}

	firstIdx, lastIdx := -1, -1
	for i, c := range counts {
		if c > 0 {
			if firstIdx == -1 {
				firstIdx = i
			}
			lastIdx = i
		}
	}

	maxCount, peakIdx := 0, 0
	for i, c := range counts {
		if c > maxCount {
			maxCount = c
			peakIdx = i
		}
	}

	activeDays := 0
	nonZeroSum := 0
	for _, c := range counts {
		if c > 0 {
			activeDays++
			nonZeroSum += c
		}
	}
	avgNonZero := float64(nonZeroSum) / float64(activeDays)

	totalDays := len(counts)
	stage := classifyLifecycleStage(counts, firstIdx, maxCount)
	topicType := classifyTopicType(activeDays, totalDays, maxCount, avgNonZero)

	return &LifecycleResult{
		Topic:         topic,
		DateRange:     DateRangeInfo{Start: formatDate(start), End: formatDate(end), TotalDays: totalDays},
		LifecycleData: points,
		Analysis: LifecycleAnalysis{
			FirstAppearance:  points[firstIdx].Date,
			LastAppearance:   points[lastIdx].Date,
			PeakDate:         points[peakIdx].Date,
			PeakCount:        maxCount,
			ActiveDays:       activeDays,
			AvgDailyMentions: round2(avgNonZero),
			LifecycleStage:   stage,
			TopicType:        topicType,
		},
	}, nil
}

// classifyLifecycleStage 判定生命周期阶段。
// 常规窗口为区间首尾各 3 天；当前 3 天全为零时，
// 早期窗口重锚定到首次出现日起的 3 天，并改用严格比较判定衰退。
func classifyLifecycleStage(counts []int, firstIdx, maxCount int) string {
	n := len(counts)
	recentFrom := n - 3
	if recentFrom < 0 {
		recentFrom = 0
	}
	recentSum := sumInts(counts[recentFrom:])

	earlyTo := 3
	if earlyTo > n {
		earlyTo = n
	}
	earlySum := sumInts(counts[:earlyTo])

	reanchored := false
	if earlySum == 0 {
		reanchored = true
		anchorTo := firstIdx + 3
		if anchorTo > n {
			anchorTo = n
		}
		earlySum = sumInts(counts[firstIdx:anchorTo])
	}

	maxInRecent := false
	for _, c := range counts[recentFrom:] {
		if c == maxCount {
			maxInRecent = true
			break
		}
	}

	switch {
	case recentSum > earlySum:
		return "rising"
	case reanchored && recentSum < earlySum:
		return "declining"
	case !reanchored && float64(recentSum) < 0.5*float64(earlySum):
		return "declining"
	case maxInRecent:
		return "bursting"
	default:
		return "stable"
	}
}

// classifyTopicType 区分昙花一现、持续热点与周期性热点
func classifyTopicType(activeDays, totalDays, maxCount int, avgNonZero float64) string {
	if activeDays <= 2 && float64(maxCount) > avgNonZero*2 {
		return "flash"
	}
	if float64(activeDays) >= float64(totalDays)*0.6 {
		return "sustained"
	}
	return "cyclical"
}

func sumInts(nums []int) int {
	s := 0
	for _, n := range nums {
		s += n
	}
	return s
}
