package biz

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// SearchMatch 统一搜索命中的新闻
type SearchMatch struct {
	Title           string  `json:"title"`
	Platform        string  `json:"platform"`
	PlatformName    string  `json:"platform_name"`
	Date            string  `json:"date"`
	SimilarityScore float64 `json:"similarity_score"`
	Ranks           []int   `json:"ranks"`
	Count           int     `json:"count"`
	Rank            int     `json:"rank"`
	URL             string  `json:"url,omitempty"`
	MobileURL       string  `json:"mobileUrl,omitempty"`
}

// SearchSummary 搜索的统计信息
type SearchSummary struct {
	TotalFound     int      `json:"total_found"`
	ReturnedCount  int      `json:"returned_count"`
	RequestedLimit int      `json:"requested_limit"`
	SearchMode     string   `json:"search_mode"`
	Query          string   `json:"query"`
	Platforms      []string `json:"platforms,omitempty"`
	TimeRange      string   `json:"time_range"`
	SortBy         string   `json:"sort_by"`
	Threshold      float64  `json:"threshold,omitempty"`
}

// SearchResult 统一搜索结果。无命中时 success 依然为真，
// Results 为空并携带 Message。
type SearchResult struct {
	Summary    *SearchSummary `json:"summary,omitempty"`
	Results    []SearchMatch  `json:"results"`
	Total      int            `json:"total,omitempty"`
	Query      string         `json:"query,omitempty"`
	SearchMode string         `json:"search_mode,omitempty"`
	TimeRange  string         `json:"time_range,omitempty"`
	Message    string         `json:"message,omitempty"`
	Note       string         `json:"note,omitempty"`
}

// SearchNews 统一新闻搜索。mode 为 keyword（大小写不敏感子串）、
// fuzzy（三级模糊匹配）或 entity（大小写敏感子串）。
// 未指定日期时退回最新的有数据日期；仓库完全为空时返回 NO_DATA_AVAILABLE。
func (uc *NewsUseCase) SearchNews(ctx context.Context, query, mode, startStr, endStr string, platforms []string, limit int, sortBy string, threshold float64, includeURL bool) (*SearchResult, error) {
	query, err := ValidateKeyword(query)
	if err != nil {
		return nil, err
	}
	if mode == "" {
		mode = "keyword"
	}
	if mode != "keyword" && mode != "fuzzy" && mode != "entity" {
		return nil, ErrInvalidParameter(
			fmt.Sprintf("无效的搜索模式: %s", mode),
			"支持的模式: keyword, fuzzy, entity")
	}
	if sortBy == "" {
		sortBy = "relevance"
	}
	if sortBy != "relevance" && sortBy != "weight" && sortBy != "date" {
		return nil, ErrInvalidParameter(
			fmt.Sprintf("无效的排序方式: %s", sortBy),
			"支持的排序: relevance, weight, date")
	}
	platforms, err = ValidatePlatforms(platforms)
	if err != nil {
		return nil, err
	}
	limit, err = ValidateLimit(limit, 50, 1000)
	if err != nil {
		return nil, err
	}
	if threshold == 0 {
		threshold = 0.6
	}
	threshold = clamp01(threshold)

	var start, end time.Time
	if startStr == "" && endStr == "" {
		// 没有日期时用最新可用数据日期，而不是日历上的今天
		_, latest, ok, err := uc.repo.AvailableDateRange(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNoDataAvailable(
				"数据目录下没有可用的新闻数据",
				"请先运行爬虫生成数据，或检查数据目录")
		}
		start, end = latest, latest
	} else {
		start, end, err = uc.resolveDateRange(startStr, endStr, 0)
		if err != nil {
			return nil, err
		}
	}

	var matches []SearchMatch
	err = eachDay(start, end, func(day time.Time) error {
		snap, err := uc.repo.ReadTitlesForDate(ctx, day, platforms)
		if err != nil {
			if IsDataNotFound(err) {
				return nil
			}
			return err
		}
		matches = append(matches, uc.matchSnapshot(snap, query, mode, day, threshold, includeURL)...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	timeRange := uc.describeSearchRange(start, end)

	if len(matches) == 0 {
		message := fmt.Sprintf("未找到匹配的新闻（查询范围: %s）", timeRange)
		if earliest, latest, ok, err := uc.repo.AvailableDateRange(ctx); err == nil && ok {
			message = fmt.Sprintf("未找到匹配的新闻（查询范围: %s，可用数据: %s）",
				timeRange, describeRange(earliest, latest))
		}
		return &SearchResult{
			Results:    []SearchMatch{},
			Total:      0,
			Query:      query,
			SearchMode: mode,
			TimeRange:  timeRange,
			Message:    message,
		}, nil
	}

	switch sortBy {
	case "relevance":
		sort.SliceStable(matches, func(i, j int) bool {
			if matches[i].SimilarityScore != matches[j].SimilarityScore {
				return matches[i].SimilarityScore > matches[j].SimilarityScore
			}
			return matches[i].Title < matches[j].Title
		})
	case "weight":
		sort.SliceStable(matches, func(i, j int) bool {
			wi := NewsWeight(matches[i].Ranks, uc.weight)
			wj := NewsWeight(matches[j].Ranks, uc.weight)
			if wi != wj {
				return wi > wj
			}
			return matches[i].Title < matches[j].Title
		})
	case "date":
		sort.SliceStable(matches, func(i, j int) bool {
			if matches[i].Date != matches[j].Date {
				return matches[i].Date > matches[j].Date
			}
			return matches[i].Title < matches[j].Title
		})
	}

	totalFound := len(matches)
	results := matches
	if len(results) > limit {
		results = results[:limit]
	}

	summary := &SearchSummary{
		TotalFound:     totalFound,
		ReturnedCount:  len(results),
		RequestedLimit: limit,
		SearchMode:     mode,
		Query:          query,
		Platforms:      platforms,
		TimeRange:      timeRange,
		SortBy:         sortBy,
	}
	result := &SearchResult{Summary: summary, Results: results}
	if mode == "fuzzy" {
		summary.Threshold = threshold
		if totalFound < limit {
			result.Note = fmt.Sprintf("模糊搜索模式下，相似度阈值 %.2f 仅匹配到 %d 条结果", threshold, totalFound)
		}
	}
	return result, nil
}

// matchSnapshot 在单日快照中按模式筛选标题
func (uc *NewsUseCase) matchSnapshot(snap *TitleSnapshot, query, mode string, day time.Time, threshold float64, includeURL bool) []SearchMatch {
	queryLower := strings.ToLower(query)
	var matches []SearchMatch
	for _, platformID := range sortedPlatformIDs(snap) {
		name := platformDisplayName(snap, platformID)
		for _, title := range sortedTitles(snap.TitlesByPlatform[platformID]) {
			var matched bool
			score := 1.0
			switch mode {
			case "keyword":
				matched = strings.Contains(strings.ToLower(title), queryLower)
			case "entity":
				matched = strings.Contains(title, query)
			case "fuzzy":
				var sim float64
				matched, sim = uc.tok.FuzzyMatch(query, title, threshold)
				score = round4(sim)
			}
			if !matched {
				continue
			}
			info := snap.TitlesByPlatform[platformID][title]
			item := SearchMatch{
				Title:           title,
				Platform:        platformID,
				PlatformName:    name,
				Date:            formatDate(day),
				SimilarityScore: score,
				Ranks:           append([]int(nil), info.Ranks...),
				Count:           len(info.Ranks),
				Rank:            firstRank(info.Ranks, 999),
			}
			if includeURL {
				item.URL = info.URL
				item.MobileURL = info.MobileURL
			}
			matches = append(matches, item)
		}
	}
	return matches
}

func (uc *NewsUseCase) describeSearchRange(start, end time.Time) string {
	if start.Equal(end) && start.Equal(uc.today()) {
		return "今天"
	}
	return describeRange(start, end)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// RelatedNewsItem 历史相关新闻条目
type RelatedNewsItem struct {
	Title           string   `json:"title"`
	Platform        string   `json:"platform"`
	PlatformName    string   `json:"platform_name"`
	Date            string   `json:"date"`
	SimilarityScore float64  `json:"similarity_score"`
	KeywordOverlap  float64  `json:"keyword_overlap"`
	TextSimilarity  float64  `json:"text_similarity"`
	CommonKeywords  []string `json:"common_keywords"`
	Rank            int      `json:"rank"`
	URL             string   `json:"url,omitempty"`
	MobileURL       string   `json:"mobileUrl,omitempty"`
}

// RelatedSearchSummary 历史相关搜索的统计信息
type RelatedSearchSummary struct {
	TotalFound        int           `json:"total_found"`
	ReturnedCount     int           `json:"returned_count"`
	RequestedLimit    int           `json:"requested_limit"`
	Threshold         float64       `json:"threshold"`
	ReferenceText     string        `json:"reference_text"`
	ReferenceKeywords []string      `json:"reference_keywords"`
	TimePreset        string        `json:"time_preset"`
	DateRange         DateRangeInfo `json:"date_range"`
}

// RelatedSearchStatistics 命中分布统计
type RelatedSearchStatistics struct {
	PlatformDistribution map[string]int `json:"platform_distribution"`
	DateDistribution     map[string]int `json:"date_distribution"`
	AvgSimilarity        float64        `json:"avg_similarity"`
}

// RelatedSearchResult 历史相关新闻搜索结果
type RelatedSearchResult struct {
	Summary    *RelatedSearchSummary    `json:"summary,omitempty"`
	Results    []RelatedNewsItem        `json:"results"`
	Statistics *RelatedSearchStatistics `json:"statistics,omitempty"`
	Total      int                      `json:"total,omitempty"`
	Query      string                   `json:"query,omitempty"`
	TimePreset string                   `json:"time_preset,omitempty"`
	DateRange  *DateRangeInfo           `json:"date_range,omitempty"`
	Message    string                   `json:"message,omitempty"`
	Note       string                   `json:"note,omitempty"`
}

// SearchRelatedHistory 在历史数据中搜索与参考文本相关的新闻。
// 综合得分 = 0.7 × 关键词重合度 + 0.3 × 文本相似度。
func (uc *NewsUseCase) SearchRelatedHistory(ctx context.Context, referenceText, timePreset, startStr, endStr string, threshold float64, limit int, includeURL bool) (*RelatedSearchResult, error) {
	referenceText, err := ValidateKeyword(referenceText)
	if err != nil {
		return nil, err
	}
	threshold = clamp01(threshold)
	if threshold == 0 {
		threshold = 0.4
	}
	limit, err = ValidateLimit(limit, 50, 1000)
	if err != nil {
		return nil, err
	}

	today := uc.today()
	var searchStart, searchEnd time.Time
	if timePreset == "" {
		timePreset = "yesterday"
	}
	switch timePreset {
	case "yesterday":
		searchStart = today.AddDate(0, 0, -1)
		searchEnd = searchStart
	case "last_week":
		searchStart = today.AddDate(0, 0, -7)
		searchEnd = today.AddDate(0, 0, -1)
	case "last_month":
		searchStart = today.AddDate(0, 0, -30)
		searchEnd = today.AddDate(0, 0, -1)
	case "custom":
		if startStr == "" || endStr == "" {
			return nil, ErrInvalidParameter(
				"自定义时间范围需要提供 start_date 和 end_date",
				"请提供 start_date 和 end_date 参数")
		}
		searchStart, searchEnd, err = ValidateDateRange(startStr, endStr, uc.now())
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidParameter(
			fmt.Sprintf("不支持的时间范围: %s", timePreset),
			"请使用 yesterday, last_week, last_month 或 custom")
	}

	referenceKeywords := uc.tok.UniqueTokens(referenceText)
	if len(referenceKeywords) == 0 {
		return nil, ErrInvalidParameter(
			"无法从参考文本中提取关键词", "请提供更详细的文本内容")
	}
	referenceSet := uc.tok.Extract(referenceText)

	var related []RelatedNewsItem
	err = eachDay(searchStart, searchEnd, func(day time.Time) error {
		snap, err := uc.repo.ReadTitlesForDate(ctx, day, nil)
		if err != nil {
			if IsDataNotFound(err) {
				return nil
			}
			// 单日读取失败不终止整体搜索
			uc.log.Warnf("处理日期 %s 时出错: %v", formatDate(day), err)
			return nil
		}
		for _, platformID := range sortedPlatformIDs(snap) {
			name := platformDisplayName(snap, platformID)
			for _, title := range sortedTitles(snap.TitlesByPlatform[platformID]) {
				titleSimilarity := TextSimilarity(referenceText, title)
				titleSet := uc.tok.Extract(title)
				overlap := jaccard(referenceSet, titleSet)
				combined := overlap*0.7 + titleSimilarity*0.3
				if combined < threshold {
					continue
				}

				var common []string
				for kw := range referenceSet {
					if _, ok := titleSet[kw]; ok {
						common = append(common, kw)
					}
				}
				sort.Strings(common)

				info := snap.TitlesByPlatform[platformID][title]
				item := RelatedNewsItem{
					Title:           title,
					Platform:        platformID,
					PlatformName:    name,
					Date:            formatDate(day),
					SimilarityScore: round4(combined),
					KeywordOverlap:  round4(overlap),
					TextSimilarity:  round4(titleSimilarity),
					CommonKeywords:  common,
					Rank:            firstRank(info.Ranks, 0),
				}
				if includeURL {
					item.URL = info.URL
					item.MobileURL = info.MobileURL
				}
				related = append(related, item)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rangeInfo := DateRangeInfo{Start: formatDate(searchStart), End: formatDate(searchEnd)}
	if len(related) == 0 {
		return &RelatedSearchResult{
			Results:    []RelatedNewsItem{},
			Total:      0,
			Query:      referenceText,
			TimePreset: timePreset,
			DateRange:  &rangeInfo,
			Message:    "未找到相关新闻",
		}, nil
	}

	sort.SliceStable(related, func(i, j int) bool {
		if related[i].SimilarityScore != related[j].SimilarityScore {
			return related[i].SimilarityScore > related[j].SimilarityScore
		}
		return related[i].Title < related[j].Title
	})

	totalFound := len(related)
	results := related
	if len(results) > limit {
		results = results[:limit]
	}

	platformDist := make(map[string]int)
	dateDist := make(map[string]int)
	sumScore := 0.0
	for _, item := range related {
		platformDist[item.Platform]++
		dateDist[item.Date]++
		sumScore += item.SimilarityScore
	}

	result := &RelatedSearchResult{
		Summary: &RelatedSearchSummary{
			TotalFound:        totalFound,
			ReturnedCount:     len(results),
			RequestedLimit:    limit,
			Threshold:         threshold,
			ReferenceText:     referenceText,
			ReferenceKeywords: referenceKeywords,
			TimePreset:        timePreset,
			DateRange:         rangeInfo,
		},
		Results: results,
		Statistics: &RelatedSearchStatistics{
			PlatformDistribution: platformDist,
			DateDistribution:     dateDist,
			AvgSimilarity:        round4(sumScore / float64(totalFound)),
		},
	}
	if totalFound < limit {
		result.Note = fmt.Sprintf("相关性阈值 %.2f 下仅找到 %d 条相关新闻", threshold, totalFound)
	}
	return result, nil
}
