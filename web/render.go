// Package web embeds the HTML templates and static assets.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/gin-contrib/multitemplate"

	"todayiwatched/internal/logging"
	"todayiwatched/internal/models"
	"todayiwatched/internal/services"
)

//go:embed templates static
var files embed.FS

// NeutralColor is used for categories missing from the registry.
const NeutralColor = "#44403c"

// MaxTextLength mirrors the submission limit for the character counter.
const MaxTextLength = 250

// Static returns the static asset tree, served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// FuncMap 模板函数
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"dict":          dict,
		"categoryColor": CategoryColor,
		"imdbID":        services.ExtractIMDbID,
		"upper":         strings.ToUpper,
		"remaining": func(text string) int {
			return MaxTextLength - utf8.RuneCountInString(text)
		},
	}
}

// dict pairs up key, value arguments so a component can take several named
// inputs, e.g. {{template "item.html" (dict "Item" . "Pending" false)}}.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 == 1 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[k] = pairs[i+1]
	}
	return m, nil
}

// CategoryColor returns the registry color for name, falling back to
// NeutralColor and logging when the name is unknown.
func CategoryColor(name string) string {
	cat, err := models.LookupCategory(name)
	if err != nil {
		logging.Warn().Str("category", name).Msg("no color for category")
		return NeutralColor
	}
	return cat.Color
}

var pages = []string{"index.html", "error.html"}

var partials = []string{"app.html", "feed.html", "item.html", "poster.html"}

// Renderer 构建 multitemplate 渲染器
// 页面以 layouts/base.html 为根，局部模板以组件文件本身为根
func Renderer() (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	components, err := fs.Glob(files, "templates/components/*.html")
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		patterns := append([]string{"templates/layouts/base.html"}, components...)
		patterns = append(patterns, path.Join("templates/views", page))
		tmpl, err := template.New("base.html").Funcs(FuncMap()).ParseFS(files, patterns...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.Add(page, tmpl)
	}

	for _, name := range partials {
		tmpl, err := template.New(name).Funcs(FuncMap()).ParseFS(files, components...)
		if err != nil {
			return nil, fmt.Errorf("parse partial %s: %w", name, err)
		}
		r.Add("partials/"+name, tmpl)
	}

	return r, nil
}
