package biz

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	urlPattern     = regexp.MustCompile(`https?://\S+`)
	bracketPattern = regexp.MustCompile(`\[[^\]]*\]`)
	tokenPattern   = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

// defaultStopwords 中文高频虚词表，分词后直接丢弃
var defaultStopwords = []string{
	"的", "了", "在", "是", "我", "有", "和", "就",
	"不", "人", "都", "一", "一个", "上", "也", "很",
	"到", "说", "要", "去", "你", "会", "着", "没有",
	"看", "好", "自己", "这", "那", "他", "她", "它",
	"们", "与", "及", "或", "被", "把", "为", "对",
}

// Tokenizer 标题分词器。分词结果供关键词统计、模糊匹配与相似推荐共用，
// 全仓库只构造一个实例以保证口径一致。
type Tokenizer struct {
	minLength int
	stopwords map[string]struct{}
}

// NewTokenizer 创建分词器。minLength 为保留词的最小字符数（按 rune 计），
// extra 为配置追加的停用词。
func NewTokenizer(minLength int, extra []string) *Tokenizer {
	if minLength <= 0 {
		minLength = 2
	}
	stop := make(map[string]struct{}, len(defaultStopwords)+len(extra))
	for _, w := range defaultStopwords {
		stop[w] = struct{}{}
	}
	for _, w := range extra {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			stop[w] = struct{}{}
		}
	}
	return &Tokenizer{minLength: minLength, stopwords: stop}
}

// Tokens 从文本中抽取关键词序列。先剥离 URL 与方括号片段，
// 再按 Unicode 字母数字连续段切词，过滤停用词与过短词。
// 保持原文出现顺序，重复词保留。
func (t *Tokenizer) Tokens(text string) []string {
	cleaned := urlPattern.ReplaceAllString(text, " ")
	cleaned = bracketPattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.ToLower(cleaned)

	var tokens []string
	for _, token := range tokenPattern.FindAllString(cleaned, -1) {
		if utf8.RuneCountInString(token) < t.minLength {
			continue
		}
		if _, stopped := t.stopwords[token]; stopped {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// UniqueTokens 按首次出现顺序返回去重后的关键词序列
func (t *Tokenizer) UniqueTokens(text string) []string {
	seen := make(map[string]struct{})
	var unique []string
	for _, token := range t.Tokens(text) {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		unique = append(unique, token)
	}
	return unique
}

// Extract 返回文本的关键词集合
func (t *Tokenizer) Extract(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range t.Tokens(text) {
		set[token] = struct{}{}
	}
	return set
}

// KeywordOverlap 计算两段文本关键词集合的 Jaccard 重合度。
// 任一集合为空时返回 0.0。
func (t *Tokenizer) KeywordOverlap(a, b string) float64 {
	setA := t.Extract(a)
	setB := t.Extract(b)
	return jaccard(setA, setB)
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}

// intersectCount 交集大小
func intersectCount(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
