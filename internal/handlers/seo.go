package handlers

import (
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	sitemapLimit = 500
	rssLimit     = 20
)

// 块级元素: <p>, <div>, <h1-6>, <ul>, <ol>, <blockquote>, <pre>
var blockRe = regexp.MustCompile(`(?s)(<(?:p|div|h[1-6]|ul|ol|blockquote|pre)[^>]*>.*?</(?:p|div|h[1-6]|ul|ol|blockquote|pre)>)`)

type SEOHandler struct {
	Deps
}

func NewSEOHandler(d Deps) *SEOHandler {
	return &SEOHandler{Deps: d}
}

func (h *SEOHandler) siteURL() string {
	return strings.TrimRight(h.SiteURL, "/")
}

// RobotsTxt robots.txt
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

# 禁止爬取API端点
Disallow: /api/

Sitemap: %s/sitemap.xml
`, h.siteURL())

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

// SitemapXML 首页、搜索页和最近的文章
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	posts, err := h.Articles.Recent(c.Request.Context(), sitemapLimit)
	if err != nil {
		abortJSON(c, err)
		return
	}

	siteURL := h.siteURL()
	now := time.Now().Format("2006-01-02")

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
`)
	writeURL(&b, siteURL+"/", now, "daily", 1.0)
	writeURL(&b, siteURL+"/?tab=hot", now, "hourly", 0.9)
	writeURL(&b, siteURL+"/search", now, "weekly", 0.7)

	for _, a := range posts {
		// 根据文章新旧程度调整优先级
		days := time.Since(a.CreatedAt).Hours() / 24
		priority, freq := 0.6, "weekly"
		if days < 7 {
			priority, freq = 0.8, "daily"
		} else if days < 30 {
			priority = 0.7
		}
		writeURL(&b, siteURL+"/a/"+a.ID, a.UpdatedAt.Format("2006-01-02"), freq, priority)
	}
	b.WriteString(`</urlset>`)

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, b.String())
}

func writeURL(b *strings.Builder, loc, lastmod, freq string, priority float64) {
	fmt.Fprintf(b, `  <url>
    <loc>%s</loc>
    <lastmod>%s</lastmod>
    <changefreq>%s</changefreq>
    <priority>%.1f</priority>
  </url>
`, escapeXML(loc), lastmod, freq, priority)
}

// RSSFeed 最新文章的 RSS 2.0 feed
func (h *SEOHandler) RSSFeed(c *gin.Context) {
	posts, err := h.Articles.Recent(c.Request.Context(), rssLimit)
	if err != nil {
		abortJSON(c, err)
		return
	}

	siteURL := h.siteURL()
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">
  <channel>
    <title>Inkwell</title>
    <link>` + siteURL + `</link>
    <description>Inkwell 最新文章</description>
    <language>zh-CN</language>
    <lastBuildDate>` + time.Now().Format(time.RFC1123Z) + `</lastBuildDate>
    <atom:link href="` + siteURL + `/feed.xml" rel="self" type="application/rss+xml"/>
`)
	for i := range posts {
		writeItem(&b, siteURL, &posts[i])
	}
	b.WriteString(`  </channel>
</rss>`)

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.String(http.StatusOK, b.String())
}

func writeItem(b *strings.Builder, siteURL string, a *models.Article) {
	link := siteURL + "/a/" + a.ID
	content := truncateByParagraph(string(utils.RenderMarkdown(a.Content)), 3)
	content += fmt.Sprintf(`<p><a href="%s">阅读全文与评论 →</a></p>`, link)

	b.WriteString(`    <item>
      <title>` + escapeXML(a.Title) + `</title>
      <link>` + link + `</link>
      <description><![CDATA[` + content + `]]></description>
      <author>` + escapeXML(a.AuthorName) + `</author>
      <category>` + escapeXML(a.Category) + `</category>
      <pubDate>` + a.CreatedAt.Format(time.RFC1123Z) + `</pubDate>
      <guid isPermaLink="true">` + link + `</guid>
    </item>
`)
}

// escapeXML html.EscapeString 能正确处理中文
func escapeXML(s string) string {
	return html.EscapeString(s)
}

// truncateByParagraph 按段落截取HTML，保留前几个完整块级元素
func truncateByParagraph(content string, maxBlocks int) string {
	matches := blockRe.FindAllString(content, maxBlocks)
	if len(matches) == 0 {
		runes := []rune(utils.PlainText(content))
		if len(runes) > 300 {
			return string(runes[:300]) + "..."
		}
		return content
	}
	return strings.Join(matches, "\n")
}
