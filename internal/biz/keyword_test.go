package biz

import (
	"reflect"
	"testing"
)

func TestTokensFiltering(t *testing.T) {
	tok := NewTokenizer(2, nil)
	// URL 与方括号片段剥离，停用词和过短词过滤，英文转小写
	got := tok.Tokens("[爆] OpenAI 发布 GPT 模型 的 a https://example.com/news")
	want := []string{"openai", "发布", "gpt", "模型"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}
}

func TestTokensKeepDuplicates(t *testing.T) {
	tok := NewTokenizer(2, nil)
	got := tok.Tokens("量子 突破 量子")
	want := []string{"量子", "突破", "量子"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}
}

func TestUniqueTokens(t *testing.T) {
	tok := NewTokenizer(2, nil)
	got := tok.UniqueTokens("量子 突破 量子")
	want := []string{"量子", "突破"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UniqueTokens() = %v, want %v", got, want)
	}
}

func TestTokensExtraStopwords(t *testing.T) {
	tok := NewTokenizer(2, []string{"新闻"})
	got := tok.Tokens("量子 新闻 突破")
	want := []string{"量子", "突破"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}
}

func TestKeywordOverlapIdentical(t *testing.T) {
	tok := NewTokenizer(2, nil)
	if got := tok.KeywordOverlap("人工智能 医疗", "医疗 人工智能"); got != 1.0 {
		t.Errorf("KeywordOverlap(same sets) = %v, want 1.0", got)
	}
}

func TestKeywordOverlapEmpty(t *testing.T) {
	tok := NewTokenizer(2, nil)
	if got := tok.KeywordOverlap("", "人工智能"); got != 0.0 {
		t.Errorf("KeywordOverlap(empty) = %v, want 0.0", got)
	}
}

func TestKeywordOverlapPartial(t *testing.T) {
	tok := NewTokenizer(2, nil)
	// 交集 {医疗}，并集 {医疗, 人工智能, 教育}: 1/3
	got := tok.KeywordOverlap("人工智能 医疗", "医疗 教育")
	if got <= 0.33 || got >= 0.34 {
		t.Errorf("KeywordOverlap(partial) = %v, want 1/3", got)
	}
}
