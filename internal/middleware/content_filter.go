package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"skillnest_backend/internal/util"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

const abusiveMessage = "The post contains abusive word"

// ContentFilter 敏感词过滤，词表可在运行时替换
type ContentFilter struct {
	mu    sync.RWMutex
	words []string
}

func NewContentFilter(words []string) *ContentFilter {
	f := &ContentFilter{}
	f.SetWords(words)
	return f
}

func (f *ContentFilter) SetWords(words []string) {
	normalized := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			normalized = append(normalized, w)
		}
	}
	f.mu.Lock()
	f.words = normalized
	f.mu.Unlock()
}

// Contains 大小写不敏感的子串匹配
func (f *ContentFilter) Contains(text string) bool {
	text = strings.ToLower(text)
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, w := range f.words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Middleware 检查 JSON 请求体中的 title/body，读取后恢复请求体供后续绑定
func (f *ContentFilter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil {
			c.Next()
			return
		}

		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			util.BadRequest(c, "Invalid request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))

		var payload struct {
			Title string `json:"title"`
			Body  string `json:"body"`
		}
		// 非法 JSON 交给后续的绑定逻辑报错
		if err := json.Unmarshal(raw, &payload); err == nil {
			if f.Contains(payload.Title + " " + payload.Body) {
				util.Error(c, http.StatusBadRequest, abusiveMessage)
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
