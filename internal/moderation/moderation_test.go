package moderation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplace(t *testing.T) {
	f := New([]string{"垃圾", " ", "spam"})

	assert.Equal(t, "这是**评论", f.Replace("这是垃圾评论"))
	assert.Equal(t, "buy **** now", f.Replace("buy spam now"))
	assert.Equal(t, "正常内容", f.Replace("正常内容"))
}

func TestValidate(t *testing.T) {
	f := New([]string{"垃圾"})

	ok, word := f.Validate("垃圾评论")
	assert.False(t, ok)
	assert.Equal(t, "垃圾", word)

	ok, _ = f.Validate("好评论")
	assert.True(t, ok)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("广告\n"), 0o644))

	f := New(nil)
	require.NoError(t, f.LoadFile(path))
	assert.Equal(t, "**链接", f.Replace("广告链接"))
}
