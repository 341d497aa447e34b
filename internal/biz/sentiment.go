package biz

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// SentimentNewsItem 参与情感分析的单条新闻
type SentimentNewsItem struct {
	Platform  string `json:"platform"`
	Title     string `json:"title"`
	Ranks     []int  `json:"ranks"`
	Count     int    `json:"count"`
	Date      string `json:"date"`
	URL       string `json:"url,omitempty"`
	MobileURL string `json:"mobileUrl,omitempty"`
}

// SentimentSummary 收集阶段的统计信息
type SentimentSummary struct {
	TotalFound        int      `json:"total_found"`
	ReturnedCount     int      `json:"returned_count"`
	RequestedLimit    int      `json:"requested_limit"`
	DuplicatesRemoved int      `json:"duplicates_removed"`
	Topic             string   `json:"topic,omitempty"`
	TimeRange         string   `json:"time_range"`
	Platforms         []string `json:"platforms"`
	SortedByWeight    bool     `json:"sorted_by_weight"`
}

// SentimentResult 情感分析结果。核心产物是 AIPrompt，
// Analysis 仅在请求执行且配置了模型时填充。
type SentimentResult struct {
	Method     string              `json:"method"`
	Summary    SentimentSummary    `json:"summary"`
	AIPrompt   string              `json:"ai_prompt"`
	NewsSample []SentimentNewsItem `json:"news_sample"`
	UsageNote  string              `json:"usage_note"`
	Note       string              `json:"note,omitempty"`
	Analysis   string              `json:"analysis,omitempty"`
}

// AnalyzeSentiment 收集新闻并生成情感分析提示词。
// execute 为 true 且注入了提示词执行器时，顺带执行提示词并返回模型结论。
func (uc *NewsUseCase) AnalyzeSentiment(ctx context.Context, topic string, platforms []string, startStr, endStr string, limit int, sortByWeight, includeURL, execute bool) (*SentimentResult, error) {
	var err error
	if topic != "" {
		topic, err = ValidateKeyword(topic)
		if err != nil {
			return nil, err
		}
	}
	platforms, err = ValidatePlatforms(platforms)
	if err != nil {
		return nil, err
	}
	limit, err = ValidateLimit(limit, 50, 100)
	if err != nil {
		return nil, err
	}
	start, end, err := uc.resolveDateRange(startStr, endStr, 0)
	if err != nil {
		return nil, err
	}

	topicLower := strings.ToLower(topic)
	var collected []SentimentNewsItem

	err = eachDay(start, end, func(day time.Time) error {
		snap, err := uc.repo.ReadTitlesForDate(ctx, day, platforms)
		if err != nil {
			if IsDataNotFound(err) {
				return nil
			}
			return err
		}
		for _, platformID := range sortedPlatformIDs(snap) {
			name := platformDisplayName(snap, platformID)
			for _, title := range sortedTitles(snap.TitlesByPlatform[platformID]) {
				if topic != "" && !strings.Contains(strings.ToLower(title), topicLower) {
					continue
				}
				info := snap.TitlesByPlatform[platformID][title]
				item := SentimentNewsItem{
					Platform: name,
					Title:    title,
					Ranks:    append([]int(nil), info.Ranks...),
					Count:    len(info.Ranks),
					Date:     formatDate(day),
				}
				if includeURL {
					item.URL = info.URL
					item.MobileURL = info.MobileURL
				}
				collected = append(collected, item)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(collected) == 0 {
		return nil, ErrDataNotFound(
			fmt.Sprintf("未找到相关新闻（%s）", describeRange(start, end)),
			"请尝试其他话题、日期范围或平台")
	}

	// 同平台同标题跨天去重，排名序列合并
	type dedupeEntry struct {
		index int
	}
	seen := make(map[string]dedupeEntry)
	var deduplicated []SentimentNewsItem
	for _, item := range collected {
		key := item.Platform + "::" + item.Title
		if entry, ok := seen[key]; ok {
			existing := &deduplicated[entry.index]
			existing.Ranks = append(existing.Ranks, item.Ranks...)
			existing.Count = len(existing.Ranks)
			continue
		}
		seen[key] = dedupeEntry{index: len(deduplicated)}
		deduplicated = append(deduplicated, item)
	}

	if sortByWeight {
		sort.SliceStable(deduplicated, func(i, j int) bool {
			wi := NewsWeight(deduplicated[i].Ranks, uc.weight)
			wj := NewsWeight(deduplicated[j].Ranks, uc.weight)
			if wi != wj {
				return wi > wj
			}
			return deduplicated[i].Title < deduplicated[j].Title
		})
	}

	selected := deduplicated
	if len(selected) > limit {
		selected = selected[:limit]
	}

	prompt := buildSentimentPrompt(selected, topic)

	platformSet := make(map[string]struct{})
	for _, item := range selected {
		platformSet[item.Platform] = struct{}{}
	}
	platformNames := make([]string, 0, len(platformSet))
	for name := range platformSet {
		platformNames = append(platformNames, name)
	}
	sort.Strings(platformNames)

	result := &SentimentResult{
		Method: "ai_prompt_generation",
		Summary: SentimentSummary{
			TotalFound:        len(deduplicated),
			ReturnedCount:     len(selected),
			RequestedLimit:    limit,
			DuplicatesRemoved: len(collected) - len(deduplicated),
			Topic:             topic,
			TimeRange:         describeRange(start, end),
			Platforms:         platformNames,
			SortedByWeight:    sortByWeight,
		},
		AIPrompt:   prompt,
		NewsSample: selected,
		UsageNote:  "请将 ai_prompt 字段的内容发送给 AI 进行情感分析",
	}

	if len(selected) < limit && len(deduplicated) >= limit {
		result.Note = "返回数量少于请求数量是因为去重逻辑（同一标题在同一平台只保留一次）"
	} else if len(deduplicated) < limit {
		result.Note = fmt.Sprintf("在指定时间范围内仅找到 %d 条匹配的新闻", len(deduplicated))
	}

	if execute && uc.llm != nil {
		executePrompt := prompt
		if uc.fetcher != nil {
			if article := uc.fetchTopArticle(selected); article != "" {
				executePrompt += "\n\n权重最高新闻的正文节选：\n" + article
			}
		}
		analysis, err := uc.llm.Execute(ctx, executePrompt)
		if err != nil {
			uc.log.Warnf("情感分析提示词执行失败: %v", err)
		} else {
			result.Analysis = analysis
		}
	}

	return result, nil
}

// fetchTopArticle 抓取样本中第一条带链接新闻的正文节选
func (uc *NewsUseCase) fetchTopArticle(items []SentimentNewsItem) string {
	for _, item := range items {
		url := item.URL
		if url == "" {
			url = item.MobileURL
		}
		if url == "" {
			continue
		}
		text, err := uc.fetcher(url, 2000)
		if err != nil {
			uc.log.Warnf("抓取新闻正文失败 [%s]: %v", url, err)
			return ""
		}
		return text
	}
	return ""
}

// buildSentimentPrompt 组装情感分析提示词：任务说明、数据概览、
// 按平台分组的标题列表与输出格式要求
func buildSentimentPrompt(news []SentimentNewsItem, topic string) string {
	byPlatform := make(map[string][]SentimentNewsItem)
	for _, item := range news {
		byPlatform[item.Platform] = append(byPlatform[item.Platform], item)
	}
	platforms := make([]string, 0, len(byPlatform))
	for name := range byPlatform {
		platforms = append(platforms, name)
	}
	sort.Strings(platforms)

	var b strings.Builder

	if topic != "" {
		fmt.Fprintf(&b, "请分析以下关于「%s」的新闻标题的情感倾向。\n", topic)
	} else {
		b.WriteString("请分析以下新闻标题的情感倾向。\n")
	}
	b.WriteString("\n")
	b.WriteString("分析要求：\n")
	b.WriteString("1. 识别每条新闻的情感倾向（正面/负面/中性）\n")
	b.WriteString("2. 统计各情感类别的数量和百分比\n")
	b.WriteString("3. 分析不同平台的情感差异\n")
	b.WriteString("4. 总结整体情感趋势\n")
	b.WriteString("5. 列举典型的正面和负面新闻样本\n")
	b.WriteString("\n")

	b.WriteString("数据概览：\n")
	fmt.Fprintf(&b, "- 总新闻数：%d\n", len(news))
	fmt.Fprintf(&b, "- 覆盖平台：%d\n", len(byPlatform))

	dateSet := make(map[string]struct{})
	for _, item := range news {
		if item.Date != "" {
			dateSet[item.Date] = struct{}{}
		}
	}
	if len(dateSet) > 0 {
		dates := make([]string, 0, len(dateSet))
		for d := range dateSet {
			dates = append(dates, d)
		}
		sort.Strings(dates)
		if len(dates) == 1 {
			fmt.Fprintf(&b, "- 时间范围：%s\n", dates[0])
		} else {
			fmt.Fprintf(&b, "- 时间范围：%s 至 %s\n", dates[0], dates[len(dates)-1])
		}
	}
	b.WriteString("\n")

	b.WriteString("新闻列表（按平台分类，已按重要性排序）：\n")
	b.WriteString("\n")
	for _, platform := range platforms {
		items := byPlatform[platform]
		fmt.Fprintf(&b, "【%s】(%d 条)\n", platform, len(items))
		for i, item := range items {
			if item.Date != "" {
				fmt.Fprintf(&b, "%d. %s [%s]\n", i+1, item.Title, item.Date)
			} else {
				fmt.Fprintf(&b, "%d. %s\n", i+1, item.Title)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("请按以下格式输出分析结果：\n")
	b.WriteString("\n")
	b.WriteString("## 情感分布统计\n")
	b.WriteString("- 正面：XX条 (XX%)\n")
	b.WriteString("- 负面：XX条 (XX%)\n")
	b.WriteString("- 中性：XX条 (XX%)\n")
	b.WriteString("\n")
	b.WriteString("## 平台情感对比\n")
	b.WriteString("[各平台的情感倾向差异]\n")
	b.WriteString("\n")
	b.WriteString("## 整体情感趋势\n")
	b.WriteString("[总体分析和关键发现]\n")
	b.WriteString("\n")
	b.WriteString("## 典型样本\n")
	b.WriteString("正面新闻样本：\n")
	b.WriteString("[列举3-5条]\n")
	b.WriteString("\n")
	b.WriteString("负面新闻样本：\n")
	b.WriteString("[列举3-5条]")

	return b.String()
}
