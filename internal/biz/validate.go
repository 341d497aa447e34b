package biz

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const maxKeywordLength = 100

// ValidateKeyword 校验查询关键词：去掉首尾空白后必须非空且不超长
func ValidateKeyword(keyword string) (string, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return "", ErrInvalidParameter("keyword 不能为空", "请提供非空的查询关键词")
	}
	if utf8.RuneCountInString(keyword) > maxKeywordLength {
		return "", ErrInvalidParameter(
			fmt.Sprintf("keyword 长度超过 %d 字符上限", maxKeywordLength),
			"请缩短查询关键词")
	}
	return keyword, nil
}

// ValidateLimit 校验返回条数。0 取默认值，负数报错，超过上限时收敛到上限。
func ValidateLimit(limit, def, max int) (int, error) {
	if limit == 0 {
		return def, nil
	}
	if limit < 0 {
		return 0, ErrInvalidParameter("limit 必须为正整数", "请传入大于 0 的 limit")
	}
	if limit > max {
		return max, nil
	}
	return limit, nil
}

// ValidateTopN 校验 top_n，规则与 ValidateLimit 相同
func ValidateTopN(topN, def, max int) (int, error) {
	if topN == 0 {
		return def, nil
	}
	if topN < 0 {
		return 0, ErrInvalidParameter("top_n 必须为正整数", "请传入大于 0 的 top_n")
	}
	if topN > max {
		return max, nil
	}
	return topN, nil
}

// ValidateThreshold 校验相似度阈值，0 取默认值，必须落在 (0, 1] 区间
func ValidateThreshold(threshold, def float64) (float64, error) {
	if threshold == 0 {
		return def, nil
	}
	if threshold < 0 || threshold > 1 {
		return 0, ErrInvalidParameter("threshold 必须在 0 到 1 之间", "请传入 (0, 1] 范围内的阈值")
	}
	return threshold, nil
}

// ValidateDate 解析 YYYY-MM-DD 格式的日期
func ValidateDate(value, field string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, ErrInvalidParameter(
			fmt.Sprintf("%s 格式无效: %s", field, value),
			"日期格式应为 YYYY-MM-DD")
	}
	return t, nil
}

// ValidateDateRange 解析并校验日期区间：起止均为 YYYY-MM-DD，
// 起始不得晚于结束，结束不得晚于今天（以注入时钟为准）。
func ValidateDateRange(startStr, endStr string, now time.Time) (start, end time.Time, err error) {
	start, err = ValidateDate(startStr, "start_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = ValidateDate(endStr, "end_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, ErrInvalidParameter(
			"start_date 不能晚于 end_date", "请调整日期区间")
	}
	today := dateOnly(now)
	if end.After(today) {
		return time.Time{}, time.Time{}, ErrInvalidParameter(
			"end_date 不能晚于今天", "查询范围不能包含未来日期")
	}
	return start, end, nil
}

// ValidatePlatforms 校验平台 ID 列表，剔除空白项
func ValidatePlatforms(platforms []string) ([]string, error) {
	cleaned := make([]string, 0, len(platforms))
	for _, p := range platforms {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, ErrInvalidParameter("platforms 包含空的平台 ID", "请移除空白平台项")
		}
		cleaned = append(cleaned, p)
	}
	return cleaned, nil
}
