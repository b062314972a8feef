// Package markdown renders post content to sanitized HTML.
package markdown

import (
	"bytes"
	gohtml "html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/quillpress/quill/shared/logger"
	"github.com/quillpress/quill/shared/utils"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Cache stores rendered HTML by key. Misses are not errors.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

type TextProcessor struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	strict *bluemonday.Policy
	cache  Cache
}

func New(cache Cache) *TextProcessor {
	md := goldmark.New(
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithHardWraps()),
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify, extension.Table),
	)

	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &TextProcessor{md: md, policy: policy, strict: bluemonday.StrictPolicy(), cache: cache}
}

func cacheKey(text string) string {
	return "md:" + utils.ContentHash(text)
}

// Render converts markdown to HTML that is safe to embed in a page.
func (tp *TextProcessor) Render(text string) template.HTML {
	key := cacheKey(text)
	if tp.cache != nil {
		if cached, ok := tp.cache.Get(key); ok {
			return template.HTML(cached)
		}
	}

	var buf bytes.Buffer
	if err := tp.md.Convert([]byte(text), &buf); err != nil {
		logger.Log.Error("rendering markdown", "error", err)
		return template.HTML(template.HTMLEscapeString(text))
	}
	safe := tp.policy.SanitizeBytes(buf.Bytes())

	if tp.cache != nil {
		tp.cache.Set(key, safe)
	}
	return template.HTML(safe)
}

// Plain reduces markdown to its text with whitespace collapsed, for card
// excerpts. The result is unescaped; templates escape it again.
func (tp *TextProcessor) Plain(text string) string {
	var buf bytes.Buffer
	if err := tp.md.Convert([]byte(text), &buf); err != nil {
		logger.Log.Error("rendering markdown", "error", err)
		buf.Reset()
		buf.WriteString(text)
	}
	stripped := gohtml.UnescapeString(tp.strict.Sanitize(buf.String()))
	return strings.Join(strings.Fields(stripped), " ")
}
