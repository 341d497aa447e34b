package biz

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// GrowthRate 关键词热度增长倍数。基线为零的新话题没有有限倍数，
// 序列化为字符串 "new"，排序时视为无穷大。
type GrowthRate struct {
	IsNew bool
	Value float64
}

// MarshalJSON 实现 json.Marshaler
func (g GrowthRate) MarshalJSON() ([]byte, error) {
	if g.IsNew {
		return json.Marshal("new")
	}
	return []byte(strconv.FormatFloat(round2(g.Value), 'f', -1, 64)), nil
}

// ViralTopic 检出的爆发话题
type ViralTopic struct {
	Keyword       string     `json:"keyword"`
	CurrentCount  int        `json:"current_count"`
	PreviousCount int        `json:"previous_count"`
	GrowthRate    GrowthRate `json:"growth_rate"`
	SampleTitles  []string   `json:"sample_titles"`
	AlertLevel    string     `json:"alert_level"`
}

// ViralResult 异常热度检测结果
type ViralResult struct {
	ViralTopics   []ViralTopic `json:"viral_topics"`
	TotalDetected int          `json:"total_detected"`
	Threshold     float64      `json:"threshold,omitempty"`
	TimeWindow    int          `json:"time_window,omitempty"`
	DetectionTime string       `json:"detection_time,omitempty"`
	Message       string       `json:"message,omitempty"`
}

// keywordFrequency 统计快照中关键词出现频次，重复词按次计入；
// 同时记录每个关键词对应的标题样本（遍历顺序已排序，结果稳定）。
func (uc *NewsUseCase) keywordFrequency(snap *TitleSnapshot, collectTitles bool) (map[string]int, map[string][]string) {
	freq := make(map[string]int)
	var titlesByKeyword map[string][]string
	if collectTitles {
		titlesByKeyword = make(map[string][]string)
	}
	for _, platformID := range sortedPlatformIDs(snap) {
		for _, title := range sortedTitles(snap.TitlesByPlatform[platformID]) {
			tokens := uc.tok.Tokens(title)
			for _, kw := range tokens {
				freq[kw]++
			}
			if collectTitles {
				seen := make(map[string]struct{}, len(tokens))
				for _, kw := range tokens {
					if _, ok := seen[kw]; ok {
						continue
					}
					seen[kw] = struct{}{}
					titlesByKeyword[kw] = append(titlesByKeyword[kw], title)
				}
			}
		}
	}
	return freq, titlesByKeyword
}

// DetectViralTopics 异常热度检测：用昨日频次做基线识别爆发关键词
func (uc *NewsUseCase) DetectViralTopics(ctx context.Context, threshold float64, timeWindow int) (*ViralResult, error) {
	if threshold == 0 {
		threshold = 3.0
	}
	if threshold < 1.0 {
		return nil, ErrInvalidParameter("threshold 必须大于等于 1.0", "推荐值：2.0-5.0")
	}
	timeWindow, err := ValidateLimit(timeWindow, 24, 72)
	if err != nil {
		return nil, err
	}

	today := uc.today()
	currentSnap, err := uc.repo.ReadTitlesForDate(ctx, today, nil)
	if err != nil {
		return nil, err
	}

	var previousFreq map[string]int
	previousSnap, err := uc.repo.ReadTitlesForDate(ctx, today.AddDate(0, 0, -1), nil)
	if err != nil {
		if !IsDataNotFound(err) {
			return nil, err
		}
		previousFreq = map[string]int{}
	} else {
		previousFreq, _ = uc.keywordFrequency(previousSnap, false)
	}

	currentFreq, currentTitles := uc.keywordFrequency(currentSnap, true)

	var topics []ViralTopic
	for kw, current := range currentFreq {
		previous := previousFreq[kw]

		var growth GrowthRate
		if previous == 0 {
			// 新话题至少出现 5 次才视为爆发
			if current < 5 {
				continue
			}
			growth = GrowthRate{IsNew: true}
		} else {
			rate := float64(current) / float64(previous)
			if rate < threshold {
				continue
			}
			growth = GrowthRate{Value: rate}
		}

		alert := "medium"
		if growth.IsNew || growth.Value > threshold*2 {
			alert = "high"
		}

		samples := currentTitles[kw]
		if len(samples) > 3 {
			samples = samples[:3]
		}
		topics = append(topics, ViralTopic{
			Keyword:       kw,
			CurrentCount:  current,
			PreviousCount: previous,
			GrowthRate:    growth,
			SampleTitles:  samples,
			AlertLevel:    alert,
		})
	}

	// 新话题排在最前按当前频次降序，其余按增长倍数降序
	sort.Slice(topics, func(i, j int) bool {
		a, b := topics[i], topics[j]
		if a.GrowthRate.IsNew != b.GrowthRate.IsNew {
			return a.GrowthRate.IsNew
		}
		if a.GrowthRate.IsNew {
			if a.CurrentCount != b.CurrentCount {
				return a.CurrentCount > b.CurrentCount
			}
			return a.Keyword < b.Keyword
		}
		if a.GrowthRate.Value != b.GrowthRate.Value {
			return a.GrowthRate.Value > b.GrowthRate.Value
		}
		return a.Keyword < b.Keyword
	})

	if len(topics) == 0 {
		return &ViralResult{
			ViralTopics:   []ViralTopic{},
			TotalDetected: 0,
			Message:       fmt.Sprintf("未检测到热度增长超过 %.1f 倍的话题", threshold),
		}, nil
	}

	return &ViralResult{
		ViralTopics:   topics,
		TotalDetected: len(topics),
		Threshold:     threshold,
		TimeWindow:    timeWindow,
		DetectionTime: formatDateTime(uc.now()),
	}, nil
}

// PredictedTopic 预测的潜力话题
type PredictedTopic struct {
	Keyword      string   `json:"keyword"`
	CurrentCount int      `json:"current_count"`
	GrowthRate   float64  `json:"growth_rate"`
	Confidence   float64  `json:"confidence"`
	TrendData    []int    `json:"trend_data"`
	Prediction   string   `json:"prediction"`
	SampleTitles []string `json:"sample_titles"`
}

// PredictResult 话题预测结果
type PredictResult struct {
	PredictedTopics     []PredictedTopic `json:"predicted_topics"`
	TotalPredicted      int              `json:"total_predicted"`
	LookaheadHours      int              `json:"lookahead_hours"`
	ConfidenceThreshold float64          `json:"confidence_threshold"`
	PredictionTime      string           `json:"prediction_time"`
	Note                string           `json:"note"`
}

// PredictTrendingTopics 基于最近 3 天加今天的频次序列预测潜力话题
func (uc *NewsUseCase) PredictTrendingTopics(ctx context.Context, lookaheadHours int, confidenceThreshold float64) (*PredictResult, error) {
	lookaheadHours, err := ValidateLimit(lookaheadHours, 6, 48)
	if err != nil {
		return nil, err
	}
	if confidenceThreshold == 0 {
		confidenceThreshold = 0.7
	}
	if confidenceThreshold < 0 || confidenceThreshold > 1 {
		return nil, ErrInvalidParameter("confidence_threshold 必须在 0 到 1 之间", "推荐值：0.6-0.8")
	}

	today := uc.today()
	trends := make(map[string][]int)

	for daysAgo := 3; daysAgo >= 1; daysAgo-- {
		snap, err := uc.repo.ReadTitlesForDate(ctx, today.AddDate(0, 0, -daysAgo), nil)
		if err != nil {
			if IsDataNotFound(err) {
				continue
			}
			return nil, err
		}
		freq, _ := uc.keywordFrequency(snap, false)
		for kw, count := range freq {
			trends[kw] = append(trends[kw], count)
		}
	}

	todaySnap, err := uc.repo.ReadTitlesForDate(ctx, today, nil)
	if err != nil {
		if IsDataNotFound(err) {
			return nil, ErrDataNotFound("未找到今天的数据", "请等待爬虫任务完成")
		}
		return nil, err
	}
	todayFreq, todayTitles := uc.keywordFrequency(todaySnap, true)
	for kw, count := range todayFreq {
		trends[kw] = append(trends[kw], count)
	}

	keywords := make([]string, 0, len(trends))
	for kw := range trends {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	var predicted []PredictedTopic
	for _, kw := range keywords {
		trendData := trends[kw]
		if len(trendData) < 2 {
			continue
		}

		recent := trendData[len(trendData)-1]
		previous := trendData[len(trendData)-2]

		var growth float64
		if previous == 0 {
			if recent < 3 {
				continue
			}
			growth = 1.0
		} else {
			growth = float64(recent-previous) / float64(previous)
		}
		if growth <= 0.3 {
			continue
		}

		var confidence float64
		if len(trendData) >= 3 {
			consistent := true
			for i := 0; i < len(trendData)-1; i++ {
				if trendData[i] > trendData[i+1] {
					consistent = false
					break
				}
			}
			if consistent {
				confidence = 0.9
			} else {
				confidence = 0.7
			}
		} else {
			confidence = 0.6
		}
		if confidence < confidenceThreshold {
			continue
		}

		samples := todayTitles[kw]
		if len(samples) > 3 {
			samples = samples[:3]
		}
		if samples == nil {
			samples = []string{}
		}
		predicted = append(predicted, PredictedTopic{
			Keyword:      kw,
			CurrentCount: recent,
			GrowthRate:   round2(growth * 100),
			Confidence:   round2(confidence),
			TrendData:    trendData,
			Prediction:   "上升趋势，可能成为热点",
			SampleTitles: samples,
		})
	}

	sort.SliceStable(predicted, func(i, j int) bool {
		a, b := predicted[i], predicted[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.GrowthRate != b.GrowthRate {
			return a.GrowthRate > b.GrowthRate
		}
		return a.Keyword < b.Keyword
	})

	totalPredicted := len(predicted)
	if len(predicted) > 20 {
		predicted = predicted[:20]
	}
	if predicted == nil {
		predicted = []PredictedTopic{}
	}

	return &PredictResult{
		PredictedTopics:     predicted,
		TotalPredicted:      totalPredicted,
		LookaheadHours:      lookaheadHours,
		ConfidenceThreshold: confidenceThreshold,
		PredictionTime:      formatDateTime(uc.now()),
		Note:                "预测基于历史趋势，实际结果可能有偏差",
	}, nil
}
