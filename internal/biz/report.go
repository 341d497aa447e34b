package biz

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// SimilarNewsItem 相似新闻条目
type SimilarNewsItem struct {
	Title        string  `json:"title"`
	Platform     string  `json:"platform"`
	PlatformName string  `json:"platform_name"`
	Similarity   float64 `json:"similarity"`
	Rank         int     `json:"rank"`
	URL          string  `json:"url,omitempty"`
}

// SimilarNewsSummary 相似搜索的统计信息
type SimilarNewsSummary struct {
	TotalFound     int     `json:"total_found"`
	ReturnedCount  int     `json:"returned_count"`
	RequestedLimit int     `json:"requested_limit"`
	Threshold      float64 `json:"threshold"`
	ReferenceTitle string  `json:"reference_title"`
}

// SimilarNewsResult 相似新闻查找结果
type SimilarNewsResult struct {
	Summary     SimilarNewsSummary `json:"summary"`
	SimilarNews []SimilarNewsItem  `json:"similar_news"`
	Note        string             `json:"note,omitempty"`
}

// FindSimilarNews 在今天的数据中查找与参考标题相似的新闻
func (uc *NewsUseCase) FindSimilarNews(ctx context.Context, referenceTitle string, threshold float64, limit int, includeURL bool) (*SimilarNewsResult, error) {
	referenceTitle, err := ValidateKeyword(referenceTitle)
	if err != nil {
		return nil, err
	}
	threshold, err = ValidateThreshold(threshold, 0.6)
	if err != nil {
		return nil, err
	}
	limit, err = ValidateLimit(limit, 50, 1000)
	if err != nil {
		return nil, err
	}

	snap, err := uc.repo.ReadTitlesForDate(ctx, uc.today(), nil)
	if err != nil {
		return nil, err
	}

	var items []SimilarNewsItem
	for _, platformID := range sortedPlatformIDs(snap) {
		name := platformDisplayName(snap, platformID)
		for _, title := range sortedTitles(snap.TitlesByPlatform[platformID]) {
			if title == referenceTitle {
				continue
			}
			similarity := TextSimilarity(referenceTitle, title)
			if similarity < threshold {
				continue
			}
			info := snap.TitlesByPlatform[platformID][title]
			item := SimilarNewsItem{
				Title:        title,
				Platform:     platformID,
				PlatformName: name,
				Similarity:   roundN(similarity, 3),
				Rank:         firstRank(info.Ranks, 0),
			}
			if includeURL {
				item.URL = info.URL
			}
			items = append(items, item)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Similarity != items[j].Similarity {
			return items[i].Similarity > items[j].Similarity
		}
		return items[i].Title < items[j].Title
	})

	totalFound := len(items)
	if len(items) > limit {
		items = items[:limit]
	}
	if len(items) == 0 {
		return nil, ErrDataNotFound(
			fmt.Sprintf("未找到相似度超过 %.2f 的新闻", threshold),
			"请降低相似度阈值或尝试其他标题")
	}

	result := &SimilarNewsResult{
		Summary: SimilarNewsSummary{
			TotalFound:     totalFound,
			ReturnedCount:  len(items),
			RequestedLimit: limit,
			Threshold:      threshold,
			ReferenceTitle: referenceTitle,
		},
		SimilarNews: items,
	}
	if totalFound < limit {
		result.Note = fmt.Sprintf("相似度阈值 %.2f 下仅找到 %d 条相似新闻", threshold, totalFound)
	}
	return result, nil
}

// EntityNewsItem 实体搜索命中的新闻
type EntityNewsItem struct {
	Title        string `json:"title"`
	Platform     string `json:"platform"`
	PlatformName string `json:"platform_name"`
	URL          string `json:"url"`
	MobileURL    string `json:"mobileUrl"`
	Ranks        []int  `json:"ranks"`
	Count        int    `json:"count"`
	Rank         int    `json:"rank"`
}

// EntitySearchResult 实体搜索结果
type EntitySearchResult struct {
	Entity          string           `json:"entity"`
	EntityType      string           `json:"entity_type"`
	RelatedNews     []EntityNewsItem `json:"related_news"`
	TotalFound      int              `json:"total_found"`
	ReturnedCount   int              `json:"returned_count"`
	SortedByWeight  bool             `json:"sorted_by_weight"`
	RelatedKeywords []KeywordCount   `json:"related_keywords"`
}

// SearchByEntity 实体搜索：大小写敏感的子串匹配，附带共现关键词
func (uc *NewsUseCase) SearchByEntity(ctx context.Context, entity, entityType string, limit int, sortByWeight bool) (*EntitySearchResult, error) {
	entity, err := ValidateKeyword(entity)
	if err != nil {
		return nil, err
	}
	limit, err = ValidateLimit(limit, 50, 1000)
	if err != nil {
		return nil, err
	}
	if entityType != "" && entityType != "person" && entityType != "location" && entityType != "organization" {
		return nil, ErrInvalidParameter(
			fmt.Sprintf("无效的实体类型: %s", entityType),
			"支持的类型: person, location, organization")
	}

	snap, err := uc.repo.ReadTitlesForDate(ctx, uc.today(), nil)
	if err != nil {
		return nil, err
	}

	var related []EntityNewsItem
	contextFreq := make(map[string]int)

	for _, platformID := range sortedPlatformIDs(snap) {
		name := platformDisplayName(snap, platformID)
		for _, title := range sortedTitles(snap.TitlesByPlatform[platformID]) {
			if !strings.Contains(title, entity) {
				continue
			}
			info := snap.TitlesByPlatform[platformID][title]
			related = append(related, EntityNewsItem{
				Title:        title,
				Platform:     platformID,
				PlatformName: name,
				URL:          info.URL,
				MobileURL:    info.MobileURL,
				Ranks:        append([]int(nil), info.Ranks...),
				Count:        len(info.Ranks),
				Rank:         firstRank(info.Ranks, 999),
			})
			for _, kw := range uc.tok.Tokens(title) {
				contextFreq[kw]++
			}
		}
	}

	if len(related) == 0 {
		return nil, ErrDataNotFound(
			fmt.Sprintf("未找到包含实体 '%s' 的新闻", entity),
			"请尝试其他实体名称")
	}

	// 实体自身不算共现词
	delete(contextFreq, strings.ToLower(entity))

	if sortByWeight {
		sort.SliceStable(related, func(i, j int) bool {
			wi := NewsWeight(related[i].Ranks, uc.weight)
			wj := NewsWeight(related[j].Ranks, uc.weight)
			if wi != wj {
				return wi > wj
			}
			return related[i].Title < related[j].Title
		})
	} else {
		sort.SliceStable(related, func(i, j int) bool {
			if related[i].Rank != related[j].Rank {
				return related[i].Rank < related[j].Rank
			}
			return related[i].Title < related[j].Title
		})
	}

	totalFound := len(related)
	if len(related) > limit {
		related = related[:limit]
	}

	resolvedType := entityType
	if resolvedType == "" {
		resolvedType = "auto"
	}

	return &EntitySearchResult{
		Entity:          entity,
		EntityType:      resolvedType,
		RelatedNews:     related,
		TotalFound:      totalFound,
		ReturnedCount:   len(related),
		SortedByWeight:  sortByWeight,
		RelatedKeywords: topKeywordCounts(contextFreq, 10),
	}, nil
}

// ReportStatistics 摘要报告的统计信息
type ReportStatistics struct {
	TotalNews      int           `json:"total_news"`
	PlatformsCount int           `json:"platforms_count"`
	KeywordsCount  int           `json:"keywords_count"`
	TopKeyword     *KeywordCount `json:"top_keyword"`
}

// ReportResult 摘要报告结果
type ReportResult struct {
	ReportType     string           `json:"report_type"`
	DateRange      DateRangeInfo    `json:"date_range"`
	MarkdownReport string           `json:"markdown_report"`
	Statistics     ReportStatistics `json:"statistics"`
}

type reportTitle struct {
	title    string
	platform string
	date     string
}

// GenerateSummaryReport 生成每日或每周热点摘要（Markdown 格式）
func (uc *NewsUseCase) GenerateSummaryReport(ctx context.Context, reportType, startStr, endStr string) (*ReportResult, error) {
	if reportType == "" {
		reportType = "daily"
	}
	if reportType != "daily" && reportType != "weekly" {
		return nil, ErrInvalidParameter(
			fmt.Sprintf("无效的报告类型: %s", reportType),
			"支持的类型: daily, weekly")
	}

	defaultBack := 0
	if reportType == "weekly" {
		defaultBack = 6
	}
	start, end, err := uc.resolveDateRange(startStr, endStr, defaultBack)
	if err != nil {
		return nil, err
	}

	keywordFreq := make(map[string]int)
	platformNews := make(map[string]int)
	var allTitles []reportTitle

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
			titles := snap.TitlesByPlatform[platformID]
			platformNews[name] += len(titles)
			for _, title := range sortedTitles(titles) {
				allTitles = append(allTitles, reportTitle{title: title, platform: name, date: formatDate(day)})
				for _, kw := range uc.tok.Tokens(title) {
					keywordFreq[kw]++
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	topKeywords := topKeywordCounts(keywordFreq, 10)
	markdown := uc.renderReportMarkdown(reportType, start, end, allTitles, platformNews, topKeywords, len(keywordFreq))

	var topKeyword *KeywordCount
	if len(topKeywords) > 0 {
		topKeyword = &topKeywords[0]
	}

	return &ReportResult{
		ReportType:     reportType,
		DateRange:      DateRangeInfo{Start: formatDate(start), End: formatDate(end)},
		MarkdownReport: markdown,
		Statistics: ReportStatistics{
			TotalNews:      len(allTitles),
			PlatformsCount: len(platformNews),
			KeywordsCount:  len(keywordFreq),
			TopKeyword:     topKeyword,
		},
	}, nil
}

func (uc *NewsUseCase) renderReportMarkdown(reportType string, start, end time.Time, allTitles []reportTitle, platformNews map[string]int, topKeywords []KeywordCount, keywordsCount int) string {
	var b strings.Builder

	title := "每日新闻热点摘要"
	dateStr := formatDate(start)
	if reportType == "weekly" {
		title = "每周新闻热点摘要"
		dateStr = describeRange(start, end)
	}

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "**报告日期**: %s\n", dateStr)
	fmt.Fprintf(&b, "**生成时间**: %s\n\n", formatDateTime(uc.now()))
	b.WriteString("---\n\n")

	b.WriteString("## 📊 数据概览\n\n")
	fmt.Fprintf(&b, "- **总新闻数**: %d\n", len(allTitles))
	fmt.Fprintf(&b, "- **覆盖平台**: %d\n", len(platformNews))
	fmt.Fprintf(&b, "- **热门关键词数**: %d\n\n", keywordsCount)

	b.WriteString("## 🔥 TOP 10 热门话题\n\n")
	for i, kc := range topKeywords {
		fmt.Fprintf(&b, "%d. **%s** - 出现 %d 次\n", i+1, kc.Keyword, kc.Count)
	}

	b.WriteString("\n## 📱 平台活跃度\n\n")
	type platformCount struct {
		name  string
		count int
	}
	platforms := make([]platformCount, 0, len(platformNews))
	for name, count := range platformNews {
		platforms = append(platforms, platformCount{name, count})
	}
	sort.Slice(platforms, func(i, j int) bool {
		if platforms[i].count != platforms[j].count {
			return platforms[i].count > platforms[j].count
		}
		return platforms[i].name < platforms[j].name
	})
	for _, p := range platforms {
		fmt.Fprintf(&b, "- **%s**: %d 条新闻\n", p.name, p.count)
	}

	if reportType == "weekly" {
		b.WriteString("\n## 📈 趋势分析\n\n")
		b.WriteString("本周热度持续的话题（样本数据）：\n\n")
		persisting := topKeywords
		if len(persisting) > 5 {
			persisting = persisting[:5]
		}
		for _, kc := range persisting {
			fmt.Fprintf(&b, "- **%s**: 持续热门\n", kc.Keyword)
		}
	}

	b.WriteString("\n## 📰 精选新闻样本\n\n")
	if len(allTitles) > 0 {
		// 按包含的热门关键词频次打分，同分按标题字典序，保证输出确定
		type scoredTitle struct {
			item  reportTitle
			score int
		}
		scored := make([]scoredTitle, 0, len(allTitles))
		for _, item := range allTitles {
			score := 0
			titleLower := strings.ToLower(item.title)
			for _, kc := range topKeywords {
				if strings.Contains(titleLower, strings.ToLower(kc.Keyword)) {
					score += kc.Count
				}
			}
			scored = append(scored, scoredTitle{item: item, score: score})
		}
		sort.SliceStable(scored, func(i, j int) bool {
			if scored[i].score != scored[j].score {
				return scored[i].score > scored[j].score
			}
			return scored[i].item.title < scored[j].item.title
		})
		samples := scored
		if len(samples) > 5 {
			samples = samples[:5]
		}
		for _, s := range samples {
			fmt.Fprintf(&b, "- [%s] %s\n", s.item.platform, s.item.title)
		}
	}

	b.WriteString("\n---\n\n*本报告由 TrendRadar 自动生成*\n")
	return b.String()
}
