package biz

import "github.com/iWorld-y/trend_radar/pkg/config"

// WeightParams 权重计算参数。三个系数之和应为 1，
// RankThreshold 为计入高位占比的排名上限。
type WeightParams struct {
	RankWeight      float64
	FrequencyWeight float64
	HotnessWeight   float64
	RankThreshold   int
}

// WeightParamsFromConfig 从配置构造权重参数，未配置项取默认值
func WeightParamsFromConfig(cfg config.WeightConfig) WeightParams {
	if cfg.RankWeight == 0 && cfg.FrequencyWeight == 0 && cfg.HotnessWeight == 0 {
		cfg = config.DefaultWeight()
	}
	if cfg.RankThreshold == 0 {
		cfg.RankThreshold = 5
	}
	return WeightParams{
		RankWeight:      cfg.RankWeight,
		FrequencyWeight: cfg.FrequencyWeight,
		HotnessWeight:   cfg.HotnessWeight,
		RankThreshold:   cfg.RankThreshold,
	}
}

// NewsWeight 计算单条新闻的综合权重分。
// 排名分取 11 减排名（超过 10 的排名按 10 算）的均值；
// 频次分为出现次数乘 10，封顶 100；
// 高位分为排名不超过阈值的次数占比乘 100。
// 排名序列为空时直接返回 0.0。
func NewsWeight(ranks []int, p WeightParams) float64 {
	if len(ranks) == 0 {
		return 0.0
	}

	rankSum := 0.0
	highCount := 0
	for _, r := range ranks {
		clamped := r
		if clamped > 10 {
			clamped = 10
		}
		rankSum += float64(11 - clamped)
		if r <= p.RankThreshold {
			highCount++
		}
	}
	rankScore := rankSum / float64(len(ranks))

	freq := len(ranks)
	if freq > 10 {
		freq = 10
	}
	frequencyScore := float64(freq) * 10.0

	hotnessScore := float64(highCount) / float64(len(ranks)) * 100.0

	return p.RankWeight*rankScore + p.FrequencyWeight*frequencyScore + p.HotnessWeight*hotnessScore
}
