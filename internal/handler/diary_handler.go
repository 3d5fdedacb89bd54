package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type waterPayload struct {
	LogDate  string `json:"log_date"`
	LogTime  string `json:"log_time"`
	AmountML int    `json:"amount_ml"`
}

type symptomPayload struct {
	LogDate  string `json:"log_date"`
	LogTime  string `json:"log_time"`
	Symptom  string `json:"symptom"`
	Severity int    `json:"severity"`
	Note     string `json:"note"`
}

type bowelMovementPayload struct {
	LogDate     string `json:"log_date"`
	LogTime     string `json:"log_time"`
	BristolType int    `json:"bristol_type"`
	Note        string `json:"note"`
}

type treatmentPayload struct {
	LogDate string `json:"log_date"`
	LogTime string `json:"log_time"`
	Name    string `json:"name"`
	Dose    string `json:"dose"`
	Note    string `json:"note"`
}

// AddWater 记录一次饮水
func (a *API) AddWater(c *gin.Context) {
	var payload waterPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	date, logTime, ok := parseDiaryDate(c, payload.LogDate, payload.LogTime)
	if !ok {
		return
	}

	record, err := a.diary.AddWater(service.WaterInput{LogDate: date, LogTime: logTime, AmountML: payload.AmountML})
	if err != nil {
		handleDiaryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"water": waterToPayload(*record)})
}

// ListWater 返回某天的饮水记录与总量
func (a *API) ListWater(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	records, err := a.diary.ListWater(date)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取饮水记录失败")
		return
	}

	total, err := a.diary.DailyWaterML(date)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "统计饮水量失败")
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, record := range records {
		items = append(items, waterToPayload(record))
	}

	c.JSON(http.StatusOK, gin.H{"water": items, "total_ml": total})
}

// DeleteWater 删除一条饮水记录
func (a *API) DeleteWater(c *gin.Context) {
	a.deleteDiaryEntry(c, a.diary.DeleteWater)
}

// AddSymptom 记录一次症状
func (a *API) AddSymptom(c *gin.Context) {
	var payload symptomPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	date, logTime, ok := parseDiaryDate(c, payload.LogDate, payload.LogTime)
	if !ok {
		return
	}

	record, err := a.diary.AddSymptom(service.SymptomInput{
		LogDate:  date,
		LogTime:  logTime,
		Symptom:  payload.Symptom,
		Severity: payload.Severity,
		Note:     payload.Note,
	})
	if err != nil {
		handleDiaryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"symptom": symptomToPayload(*record)})
}

// ListSymptoms 返回某天的症状记录
func (a *API) ListSymptoms(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	records, err := a.diary.ListSymptoms(date)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取症状记录失败")
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, record := range records {
		items = append(items, symptomToPayload(record))
	}

	c.JSON(http.StatusOK, gin.H{"symptoms": items})
}

// DeleteSymptom 删除一条症状记录
func (a *API) DeleteSymptom(c *gin.Context) {
	a.deleteDiaryEntry(c, a.diary.DeleteSymptom)
}

// AddBowelMovement 记录一次排便
func (a *API) AddBowelMovement(c *gin.Context) {
	var payload bowelMovementPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	date, logTime, ok := parseDiaryDate(c, payload.LogDate, payload.LogTime)
	if !ok {
		return
	}

	record, err := a.diary.AddBowelMovement(service.BowelMovementInput{
		LogDate:     date,
		LogTime:     logTime,
		BristolType: payload.BristolType,
		Note:        payload.Note,
	})
	if err != nil {
		handleDiaryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bowel_movement": bowelMovementToPayload(*record)})
}

// ListBowelMovements 返回某天的排便记录
func (a *API) ListBowelMovements(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	records, err := a.diary.ListBowelMovements(date)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取排便记录失败")
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, record := range records {
		items = append(items, bowelMovementToPayload(record))
	}

	c.JSON(http.StatusOK, gin.H{"bowel_movements": items})
}

// DeleteBowelMovement 删除一条排便记录
func (a *API) DeleteBowelMovement(c *gin.Context) {
	a.deleteDiaryEntry(c, a.diary.DeleteBowelMovement)
}

// AddTreatment 记录一次用药或补剂
func (a *API) AddTreatment(c *gin.Context) {
	var payload treatmentPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	date, logTime, ok := parseDiaryDate(c, payload.LogDate, payload.LogTime)
	if !ok {
		return
	}

	record, err := a.diary.AddTreatment(service.TreatmentInput{
		LogDate: date,
		LogTime: logTime,
		Name:    payload.Name,
		Dose:    payload.Dose,
		Note:    payload.Note,
	})
	if err != nil {
		handleDiaryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"treatment": treatmentToPayload(*record)})
}

// ListTreatments 返回某天的用药记录
func (a *API) ListTreatments(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	records, err := a.diary.ListTreatments(date)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取用药记录失败")
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, record := range records {
		items = append(items, treatmentToPayload(record))
	}

	c.JSON(http.StatusOK, gin.H{"treatments": items})
}

// DeleteTreatment 删除一条用药记录
func (a *API) DeleteTreatment(c *gin.Context) {
	a.deleteDiaryEntry(c, a.diary.DeleteTreatment)
}

// GetDaySummary 返回某天日记各维度的汇总
func (a *API) GetDaySummary(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	summary, err := a.diary.DaySummary(date)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "生成当日汇总失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": gin.H{
		"date":                 summary.Date.Format(dateFormat),
		"water_total_ml":       summary.WaterTotalML,
		"meal_count":           summary.MealCount,
		"symptom_count":        summary.SymptomCount,
		"max_symptom_severity": summary.MaxSymptomSeverity,
		"bowel_movement_count": summary.BowelMovementCount,
		"treatment_count":      summary.TreatmentCount,
		"activity_minutes":     summary.ActivityMinutes,
		"planned_count":        summary.PlannedCount,
		"completed_count":      summary.CompletedCount,
		"skipped_count":        summary.SkippedCount,
		"partial_count":        summary.PartialCount,
		"pending_count":        summary.PendingCount,
		"plan_issue_count":     summary.PlanIssueCount,
	}})
}

// parseDiaryDate 解析日记条目的日期与可选时刻，出错时已写好响应。
func parseDiaryDate(c *gin.Context, dateStr, timeStr string) (time.Time, *time.Time, bool) {
	date, ok := parseDateField(dateStr)
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return time.Time{}, nil, false
	}

	logTime, ok := combineClock(date, timeStr)
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的时间")
		return time.Time{}, nil, false
	}

	return date, logTime, true
}

func (a *API) deleteDiaryEntry(c *gin.Context, remove func(uint) error) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的记录ID")
		return
	}

	if err := remove(id); err != nil {
		handleDiaryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func waterToPayload(record db.WaterIntake) gin.H {
	item := gin.H{
		"id":        record.ID,
		"log_date":  record.LogDate.Format(dateFormat),
		"amount_ml": record.AmountML,
	}
	if record.LogTime != nil {
		item["log_time"] = record.LogTime.Format(time.RFC3339)
	}
	return item
}

func symptomToPayload(record db.SymptomEntry) gin.H {
	item := gin.H{
		"id":       record.ID,
		"log_date": record.LogDate.Format(dateFormat),
		"symptom":  record.Symptom,
		"severity": record.Severity,
		"note":     record.Note,
	}
	if record.LogTime != nil {
		item["log_time"] = record.LogTime.Format(time.RFC3339)
	}
	return item
}

func bowelMovementToPayload(record db.BowelMovement) gin.H {
	item := gin.H{
		"id":           record.ID,
		"log_date":     record.LogDate.Format(dateFormat),
		"bristol_type": record.BristolType,
		"note":         record.Note,
	}
	if record.LogTime != nil {
		item["log_time"] = record.LogTime.Format(time.RFC3339)
	}
	return item
}

func treatmentToPayload(record db.TreatmentEntry) gin.H {
	item := gin.H{
		"id":       record.ID,
		"log_date": record.LogDate.Format(dateFormat),
		"name":     record.Name,
		"dose":     record.Dose,
		"note":     record.Note,
	}
	if record.LogTime != nil {
		item["log_time"] = record.LogTime.Format(time.RFC3339)
	}
	return item
}

func handleDiaryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDiaryEntryNotFound):
		respondError(c, http.StatusNotFound, "记录不存在")
	case errors.Is(err, service.ErrDiaryEntryInvalid):
		respondError(c, http.StatusBadRequest, "记录不合法")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
