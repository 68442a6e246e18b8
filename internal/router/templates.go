package router

import (
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
	"time"

	"inkwell/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

var funcMap = template.FuncMap{
	"dict": func(values ...interface{}) (map[string]interface{}, error) {
		if len(values)%2 != 0 {
			return nil, fmt.Errorf("invalid dict call")
		}
		dict := make(map[string]interface{}, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict keys must be strings")
			}
			dict[key] = values[i+1]
		}
		return dict, nil
	},
	"add": func(a, b int) int {
		return a + b
	},
	"join":     strings.Join,
	"markdown": utils.RenderMarkdown,
	"timeAgo":  timeAgo,
}

func timeAgo(t time.Time) string {
	seconds := int(time.Since(t).Seconds())
	switch {
	case seconds < 60:
		return "刚刚"
	case seconds < 3600:
		return fmt.Sprintf("%d分钟前", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%d小时前", seconds/3600)
	case seconds < 2592000:
		return fmt.Sprintf("%d天前", seconds/86400)
	case seconds < 31536000:
		return fmt.Sprintf("%d个月前", seconds/2592000)
	}
	return fmt.Sprintf("%d年前", seconds/31536000)
}

// views 模板名 -> views 目录下的文件，模板名与 handler 中使用的一致
var views = []string{
	"article/list.html",
	"article/detail.html",
	"user/profile.html",
	"search.html",
	"error.html",
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(filepath.Join(templatesDir, "layouts", "*.html"))
	if err != nil {
		panic(err)
	}

	for _, name := range views {
		files := append(append([]string{}, layouts...), filepath.Join(templatesDir, "views", name))
		r.AddFromFilesFuncs(name, funcMap, files...)
	}
	return r
}
