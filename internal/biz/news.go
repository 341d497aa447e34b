package biz

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/trend_radar/pkg/config"
)

// TitleInfo 单条标题在某一天内的元数据
type TitleInfo struct {
	Ranks     []int
	URL       string
	MobileURL string
}

// TitleSnapshot 某一天的全部标题数据
type TitleSnapshot struct {
	// TitlesByPlatform 平台ID -> 标题 -> 元数据
	TitlesByPlatform map[string]map[string]TitleInfo
	// PlatformNames 平台ID -> 平台名称
	PlatformNames map[string]string
	// FileTimestamps 来源文件名 -> 抓取时间
	FileTimestamps map[string]time.Time
}

// TitleRepo 标题快照仓库接口
type TitleRepo interface {
	// ReadTitlesForDate 读取指定日期的标题数据，platformIDs 为空表示全部平台。
	// 该日期没有快照时返回 DATA_NOT_FOUND 业务错误。
	ReadTitlesForDate(ctx context.Context, date time.Time, platformIDs []string) (*TitleSnapshot, error)
	// AvailableDateRange 返回实际可用的日期范围；无任何数据时 ok 为 false
	AvailableDateRange(ctx context.Context) (earliest, latest time.Time, ok bool, err error)
}

// PromptExecutor 可选的提示词执行器（由 pkg/llm 提供实现）
type PromptExecutor interface {
	Execute(ctx context.Context, prompt string) (string, error)
}

// NewsUseCase 新闻洞察业务逻辑。除持有仓库引用外无状态，
// 单次调用内的聚合数据均为局部变量，可安全并发调用。
type NewsUseCase struct {
	repo    TitleRepo
	tok     *Tokenizer
	weight  WeightParams
	llm     PromptExecutor
	fetcher ArticleFetcher
	now     func() time.Time
	log     *log.Helper
}

// ArticleFetcher 抓取新闻正文，limit 为截断长度
type ArticleFetcher func(url string, limit int) (string, error)

// NewNewsUseCase 创建业务逻辑实例。executor 可为 nil（不执行情感分析提示词）。
func NewNewsUseCase(repo TitleRepo, cfg *config.Config, executor PromptExecutor, logger log.Logger) *NewsUseCase {
	tok := NewTokenizer(cfg.Keyword.MinLength, cfg.Keyword.Stopwords)
	return &NewsUseCase{
		repo:   repo,
		tok:    tok,
		weight: WeightParamsFromConfig(cfg.Weight),
		llm:    executor,
		now:    time.Now,
		log:    log.NewHelper(logger),
	}
}

// WithClock 注入时钟，测试用
func (uc *NewsUseCase) WithClock(now func() time.Time) *NewsUseCase {
	uc.now = now
	return uc
}

// WithArticleFetcher 注入正文抓取器，执行情感分析时用于补充原文上下文
func (uc *NewsUseCase) WithArticleFetcher(fetcher ArticleFetcher) *NewsUseCase {
	uc.fetcher = fetcher
	return uc
}

// Tokenizer 暴露共享分词器，搜索与分析共用同一实例
func (uc *NewsUseCase) Tokenizer() *Tokenizer { return uc.tok }

// today 返回当前日期（去掉时分秒）
func (uc *NewsUseCase) today() time.Time {
	return dateOnly(uc.now())
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// eachDay 按时间顺序遍历 [start, end] 闭区间内的每一天。
// fn 返回错误时立即终止遍历。
func eachDay(start, end time.Time, fn func(day time.Time) error) error {
	for day := dateOnly(start); !day.After(dateOnly(end)); day = day.AddDate(0, 0, 1) {
		if err := fn(day); err != nil {
			return err
		}
	}
	return nil
}

// NewsItem 对外返回的单条新闻
type NewsItem struct {
	Title        string  `json:"title"`
	Platform     string  `json:"platform"`
	PlatformName string  `json:"platform_name"`
	Rank         int     `json:"rank"`
	AvgRank      float64 `json:"avg_rank,omitempty"`
	Count        int     `json:"count,omitempty"`
	Date         string  `json:"date,omitempty"`
	Timestamp    string  `json:"timestamp,omitempty"`
	URL          string  `json:"url,omitempty"`
	MobileURL    string  `json:"mobileUrl,omitempty"`
}

// LatestNewsResult 最新一批新闻
type LatestNewsResult struct {
	News      []NewsItem `json:"news"`
	Total     int        `json:"total"`
	FetchTime string     `json:"fetch_time"`
}

// GetLatestNews 获取最新一批爬取的新闻，按首个排名升序
func (uc *NewsUseCase) GetLatestNews(ctx context.Context, platforms []string, limit int, includeURL bool) (*LatestNewsResult, error) {
	limit, err := ValidateLimit(limit, 50, 1000)
	if err != nil {
		return nil, err
	}

	snap, err := uc.repo.ReadTitlesForDate(ctx, uc.today(), platforms)
	if err != nil {
		return nil, err
	}

	// 以最新文件时间作为抓取时间
	fetchTime := uc.now()
	if len(snap.FileTimestamps) > 0 {
		var latest time.Time
		for _, ts := range snap.FileTimestamps {
			if ts.After(latest) {
				latest = ts
			}
		}
		fetchTime = latest
	}

	var items []NewsItem
	for platformID, titles := range snap.TitlesByPlatform {
		name := platformDisplayName(snap, platformID)
		for title, info := range titles {
			item := NewsItem{
				Title:        title,
				Platform:     platformID,
				PlatformName: name,
				Rank:         firstRank(info.Ranks, 0),
				Timestamp:    formatDateTime(fetchTime),
			}
			if includeURL {
				item.URL = info.URL
				item.MobileURL = info.MobileURL
			}
			items = append(items, item)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Rank != items[j].Rank {
			return items[i].Rank < items[j].Rank
		}
		return items[i].Title < items[j].Title
	})
	if len(items) > limit {
		items = items[:limit]
	}

	return &LatestNewsResult{News: items, Total: len(items), FetchTime: formatDateTime(fetchTime)}, nil
}

// NewsByDateResult 按日期查询的新闻
type NewsByDateResult struct {
	News  []NewsItem `json:"news"`
	Total int        `json:"total"`
	Date  string     `json:"date"`
}

// GetNewsByDate 按指定日期获取新闻，附带平均排名与出现次数
func (uc *NewsUseCase) GetNewsByDate(ctx context.Context, date time.Time, platforms []string, limit int, includeURL bool) (*NewsByDateResult, error) {
	limit, err := ValidateLimit(limit, 50, 1000)
	if err != nil {
		return nil, err
	}

	day := dateOnly(date)
	snap, err := uc.repo.ReadTitlesForDate(ctx, day, platforms)
	if err != nil {
		return nil, err
	}

	var items []NewsItem
	for platformID, titles := range snap.TitlesByPlatform {
		name := platformDisplayName(snap, platformID)
		for title, info := range titles {
			item := NewsItem{
				Title:        title,
				Platform:     platformID,
				PlatformName: name,
				Rank:         firstRank(info.Ranks, 0),
				AvgRank:      avgRank(info.Ranks),
				Count:        len(info.Ranks),
				Date:         formatDate(day),
			}
			if includeURL {
				item.URL = info.URL
				item.MobileURL = info.MobileURL
			}
			items = append(items, item)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Rank != items[j].Rank {
			return items[i].Rank < items[j].Rank
		}
		return items[i].Title < items[j].Title
	})
	if len(items) > limit {
		items = items[:limit]
	}

	return &NewsByDateResult{News: items, Total: len(items), Date: formatDate(day)}, nil
}

// AvailableDateRange 返回实际可用的数据日期范围
func (uc *NewsUseCase) AvailableDateRange(ctx context.Context) (earliest, latest time.Time, ok bool, err error) {
	return uc.repo.AvailableDateRange(ctx)
}

func platformDisplayName(snap *TitleSnapshot, platformID string) string {
	if name, found := snap.PlatformNames[platformID]; found && name != "" {
		return name
	}
	return platformID
}

// firstRank 取首个排名；排名缺失时返回 fallback
func firstRank(ranks []int, fallback int) int {
	if len(ranks) == 0 {
		return fallback
	}
	return ranks[0]
}

func avgRank(ranks []int) float64 {
	if len(ranks) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ranks {
		sum += r
	}
	return round2(float64(sum) / float64(len(ranks)))
}

func round2(v float64) float64 {
	return roundN(v, 2)
}

func round4(v float64) float64 {
	return roundN(v, 4)
}

func roundN(v float64, n int) float64 {
	pow := 1.0
	for i := 0; i < n; i++ {
		pow *= 10
	}
	if v < 0 {
		return float64(int64(v*pow-0.5)) / pow
	}
	return float64(int64(v*pow+0.5)) / pow
}

// sortedPlatformIDs 返回按字典序排序的平台 ID，保证遍历顺序稳定
func sortedPlatformIDs(snap *TitleSnapshot) []string {
	ids := make([]string, 0, len(snap.TitlesByPlatform))
	for id := range snap.TitlesByPlatform {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// sortedTitles 返回按字典序排序的标题列表
func sortedTitles(titles map[string]TitleInfo) []string {
	list := make([]string, 0, len(titles))
	for t := range titles {
		list = append(list, t)
	}
	sort.Strings(list)
	return list
}

func describeRange(start, end time.Time) string {
	if start.Equal(end) {
		return formatDate(start)
	}
	return fmt.Sprintf("%s 至 %s", formatDate(start), formatDate(end))
}
