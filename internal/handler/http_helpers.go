package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const dateFormat = "2006-01-02"

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// parseDateQuery 读取查询参数里的日期，缺省时落到今天。
// 解析失败时已写入 400 响应，调用方直接 return 即可。
func parseDateQuery(c *gin.Context, key string) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), true
	}

	t, err := time.ParseInLocation(dateFormat, raw, time.Local)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return time.Time{}, false
	}
	return t, true
}

// parseDateField 解析请求体里的日期字符串，空值视为缺失。
func parseDateField(value string) (time.Time, bool) {
	t, err := time.ParseInLocation(dateFormat, strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// combineClock 把 15:04 形式的时刻叠加到指定日期上，空串返回 nil。
func combineClock(date time.Time, value string) (*time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, true
	}

	t, err := time.ParseInLocation("15:04", value, time.Local)
	if err != nil {
		return nil, false
	}

	combined := time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
	return &combined, true
}

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}
