package biz

import "strings"

// TextSimilarity 计算两段文本的 Ratcliff/Obershelp 相似度，
// 忽略大小写，按 rune 比较。两串均为空时视为完全相同返回 1.0。
func TextSimilarity(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}
	matched := matchingChars(ra, rb)
	return 2.0 * float64(matched) / float64(len(ra)+len(rb))
}

// matchingChars 递归统计匹配字符数：找到最长公共子串后，
// 对其左右两侧分别递归。
func matchingChars(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingChars(a[:ai], b[:bi])
	total += matchingChars(a[ai+size:], b[bi+size:])
	return total
}

// longestCommonSubstring 返回 a、b 中最长公共子串的起点与长度
func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// lengths[j] 表示以 a[i-1]、b[j-1] 结尾的公共后缀长度
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}

// FuzzyMatch 三级模糊匹配：子串包含、文本相似度、关键词重合依次判定。
// 返回是否命中与用于排序的相似度分值。
func (t *Tokenizer) FuzzyMatch(query, title string, threshold float64) (bool, float64) {
	q := strings.ToLower(query)
	ti := strings.ToLower(title)

	// 一级：大小写不敏感的子串包含
	if q != "" && strings.Contains(ti, q) {
		return true, 1.0
	}

	// 二级：整体文本相似度
	sim := TextSimilarity(query, title)
	if sim >= threshold {
		return true, sim
	}

	// 三级：查询关键词在标题中的覆盖比例
	qKeywords := t.Extract(query)
	tKeywords := t.Extract(title)
	if len(qKeywords) == 0 || len(tKeywords) == 0 {
		return false, 0.0
	}
	coverage := float64(intersectCount(qKeywords, tKeywords)) / float64(len(qKeywords))
	if coverage >= 0.5 {
		return true, coverage
	}
	return false, sim
}
