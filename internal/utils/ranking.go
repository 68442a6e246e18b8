package utils

import (
	"math"
	"time"
)

type RankConfig struct {
	Gravity        float64 // 时间重力 (1.5)
	WeightBookmark float64 // 3.0
	WeightComment  float64 // 2.0
	WeightLike     float64 // 1.0
	WeightView     float64 // 0.01
	ScaleFactor    float64 // 放大系数 (100)
}

var DefaultConfig = RankConfig{
	Gravity:        1.5,
	WeightBookmark: 3.0,
	WeightComment:  2.0,
	WeightLike:     1.0,
	WeightView:     0.01,
	ScaleFactor:    100.0,
}

// HotScore "热门" tab 的排序分，输入是数据库里的权威计数
func HotScore(createdAt time.Time, likes, bookmarks, comments, views int64) float64 {
	return hotScoreAt(time.Now(), createdAt, likes, bookmarks, comments, views)
}

func hotScoreAt(now, createdAt time.Time, likes, bookmarks, comments, views int64) float64 {
	hours := now.Sub(createdAt).Hours()
	if hours < 0 {
		hours = 0
	}

	// View 数量级太大，只给极小权重
	weightedSum := float64(likes)*DefaultConfig.WeightLike +
		float64(comments)*DefaultConfig.WeightComment +
		float64(bookmarks)*DefaultConfig.WeightBookmark +
		float64(views)*DefaultConfig.WeightView
	if weightedSum < 0 {
		weightedSum = 0
	}

	// log10(sum + 1) 保证 sum=0 时结果为 0
	numerator := math.Log10(weightedSum+1) * DefaultConfig.ScaleFactor
	decay := math.Pow(hours+2, DefaultConfig.Gravity)
	return numerator / decay
}
