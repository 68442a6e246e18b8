package utils

import (
	"strings"
)

const SummaryRunes = 200

var markdownStripper = strings.NewReplacer(
	"#", "", "*", "", "`", "", "[", "", "]", "", "(", "", ")", "",
	"\r\n", " ", "\n", " ",
)

// GenerateSummary 去掉常见 Markdown 符号、换行转空格，截取前 200 个字符
func GenerateSummary(content string) string {
	plain := markdownStripper.Replace(content)
	runes := []rune(plain)
	if len(runes) > SummaryRunes {
		runes = runes[:SummaryRunes]
	}
	return strings.TrimSpace(string(runes))
}

// NormalizeTags 去空白、去重，保持原顺序
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
