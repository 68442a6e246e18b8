package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHotScore(t *testing.T) {
	now := time.Now()

	assert.Equal(t, 0.0, hotScoreAt(now, now, 0, 0, 0, 0))

	fresh := hotScoreAt(now, now.Add(-time.Hour), 10, 2, 3, 100)
	stale := hotScoreAt(now, now.Add(-72*time.Hour), 10, 2, 3, 100)
	assert.Greater(t, fresh, stale)

	// 收藏权重高于点赞
	assert.Greater(t,
		hotScoreAt(now, now, 0, 5, 0, 0),
		hotScoreAt(now, now, 5, 0, 0, 0))
}
