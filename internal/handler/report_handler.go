package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/locale"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/schedule"
	"github.com/gin-gonic/gin"
)

// GetWeeklyReport 生成一周日记报告。
// start 缺省时取本周周一；语言按 查询参数 > 应用设置 > Accept-Language 取值。
func (a *API) GetWeeklyReport(c *gin.Context) {
	var weekStart time.Time
	if raw := strings.TrimSpace(c.Query("start")); raw != "" {
		parsed, ok := parseDateField(raw)
		if !ok {
			respondError(c, http.StatusBadRequest, "无效的起始日期")
			return
		}
		weekStart = parsed
	} else {
		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		weekStart = today.AddDate(0, 0, -schedule.WeekdayIndex(today))
	}

	settings, err := a.settings.GetSettings()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "读取应用设置失败")
		return
	}
	language := locale.Resolve(c.Query("lang"), settings.Language, c.GetHeader("Accept-Language"))

	report, err := a.reports.WeeklyReport(weekStart, language)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "生成周报失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": gin.H{
		"week_start": report.WeekStart.Format(dateFormat),
		"week_end":   report.WeekEnd.Format(dateFormat),
		"language":   report.Language,
		"markdown":   report.Markdown,
		"html":       report.HTML,
	}})
}
