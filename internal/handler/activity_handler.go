package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/db"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/schedule"
	"github.com/jfranmatheu/EverydayFODMAP-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type activityTypePayload struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type scheduledActivityPayload struct {
	ActivityTypeID  uint   `json:"activity_type_id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	FrequencyType   string `json:"frequency_type"`
	FrequencyValue  string `json:"frequency_value"`
	StartDate       string `json:"start_date"`
	ReminderEnabled bool   `json:"reminder_enabled"`
	ReminderTime    string `json:"reminder_time"`
	IsActive        *bool  `json:"is_active"`
}

type activityStatusPayload struct {
	ScheduledActivityID   uint   `json:"scheduled_activity_id"`
	Date                  string `json:"date"`
	Status                string `json:"status"`
	ActualDurationMinutes int    `json:"actual_duration_minutes"`
}

type activityLogPayload struct {
	ActivityTypeID   uint   `json:"activity_type_id"`
	ActivityTypeName string `json:"activity_type_name"` // 无 ID 时按名称匹配，新名称自动建类型
	DurationMinutes  int    `json:"duration_minutes"`
	Intensity        string `json:"intensity"`
	LogDate          string `json:"log_date"` // 2006-01-02
	LogTime          string `json:"log_time"` // 15:04，可选
	Note             string `json:"note"`
}

// ListActivityTypes 返回活动类型列表，热度高的排在前面
func (a *API) ListActivityTypes(c *gin.Context) {
	types, err := a.activityTypes.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取活动类型失败")
		return
	}

	items := make([]gin.H, 0, len(types))
	for _, t := range types {
		items = append(items, activityTypeToPayload(t))
	}

	c.JSON(http.StatusOK, gin.H{"activity_types": items})
}

// CreateActivityType 创建自定义活动类型
func (a *API) CreateActivityType(c *gin.Context) {
	var payload activityTypePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	created, err := a.activityTypes.Create(service.ActivityTypeInput{
		Name:  payload.Name,
		Icon:  payload.Icon,
		Color: payload.Color,
	})
	if err != nil {
		handleActivityTypeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity_type": activityTypeToPayload(*created)})
}

// UpdateActivityType 更新活动类型
func (a *API) UpdateActivityType(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的活动类型ID")
		return
	}

	var payload activityTypePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	updated, err := a.activityTypes.Update(id, service.ActivityTypeInput{
		Name:  payload.Name,
		Icon:  payload.Icon,
		Color: payload.Color,
	})
	if err != nil {
		handleActivityTypeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity_type": activityTypeToPayload(*updated)})
}

// DeleteActivityType 删除活动类型
func (a *API) DeleteActivityType(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的活动类型ID")
		return
	}

	if err := a.activityTypes.Delete(id); err != nil {
		handleActivityTypeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ListScheduledActivities 返回活动计划列表
func (a *API) ListScheduledActivities(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "1" || c.Query("include_inactive") == "true"

	plans, err := a.plans.List(includeInactive)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取活动计划失败")
		return
	}

	items := make([]gin.H, 0, len(plans))
	for _, plan := range plans {
		items = append(items, scheduledActivityToPayload(plan))
	}

	c.JSON(http.StatusOK, gin.H{"scheduled_activities": items})
}

// GetScheduledActivity 返回单个活动计划
func (a *API) GetScheduledActivity(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的计划ID")
		return
	}

	plan, err := a.plans.Get(id)
	if err != nil {
		handleScheduledActivityError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"scheduled_activity": scheduledActivityToPayload(*plan)})
}

// CreateScheduledActivity 创建活动计划
func (a *API) CreateScheduledActivity(c *gin.Context) {
	input, ok := parseScheduledActivityInput(c)
	if !ok {
		return
	}

	plan, err := a.plans.Create(input)
	if err != nil {
		handleScheduledActivityError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"scheduled_activity": scheduledActivityToPayload(*plan)})
}

// UpdateScheduledActivity 更新活动计划
func (a *API) UpdateScheduledActivity(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的计划ID")
		return
	}

	input, ok := parseScheduledActivityInput(c)
	if !ok {
		return
	}

	plan, err := a.plans.Update(id, input)
	if err != nil {
		handleScheduledActivityError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"scheduled_activity": scheduledActivityToPayload(*plan)})
}

// SetScheduledActivityActive 启用或停用活动计划
func (a *API) SetScheduledActivityActive(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的计划ID")
		return
	}

	var payload struct {
		Active bool `json:"active"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	plan, err := a.plans.SetActive(id, payload.Active)
	if err != nil {
		handleScheduledActivityError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"scheduled_activity": scheduledActivityToPayload(*plan)})
}

// DeleteScheduledActivity 删除活动计划及其打卡记录
func (a *API) DeleteScheduledActivity(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的计划ID")
		return
	}

	if err := a.plans.Delete(id); err != nil {
		handleScheduledActivityError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetDayPlan 返回指定日期应执行的活动清单
func (a *API) GetDayPlan(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	plan, err := a.dayPlans.ResolveDay(date)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "解析当日计划失败")
		return
	}

	c.JSON(http.StatusOK, dayPlanToPayload(plan))
}

// SetActivityStatus 更新某计划在某天的完成状态
func (a *API) SetActivityStatus(c *gin.Context) {
	var payload activityStatusPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	date, ok := parseDateField(payload.Date)
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	logEntry, err := a.dayPlans.SetStatus(payload.ScheduledActivityID, date, payload.Status, payload.ActualDurationMinutes)
	if err != nil {
		handleDayPlanError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": gin.H{
		"scheduled_activity_id":   logEntry.ScheduledActivityID,
		"date":                    logEntry.LogDate.Format(dateFormat),
		"status":                  logEntry.Status,
		"actual_duration_minutes": logEntry.ActualDurationMinutes,
	}})
}

// ClearActivityStatus 清除打卡状态，当日恢复为待完成
func (a *API) ClearActivityStatus(c *gin.Context) {
	var payload struct {
		ScheduledActivityID uint   `json:"scheduled_activity_id"`
		Date                string `json:"date"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	date, ok := parseDateField(payload.Date)
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	if err := a.dayPlans.ClearStatus(payload.ScheduledActivityID, date); err != nil {
		handleDayPlanError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// ListActivityLogs 返回活动流水，支持单日或日期区间查询
func (a *API) ListActivityLogs(c *gin.Context) {
	startStr := c.Query("start")
	endStr := c.Query("end")

	var logs []db.ActivityLog
	var err error

	if startStr != "" || endStr != "" {
		start, ok := parseDateField(startStr)
		if !ok {
			respondError(c, http.StatusBadRequest, "无效的开始日期")
			return
		}
		end, ok := parseDateField(endStr)
		if !ok {
			respondError(c, http.StatusBadRequest, "无效的结束日期")
			return
		}
		logs, err = a.activityLogs.ListBetween(start, end)
	} else {
		var date time.Time
		var ok bool
		if date, ok = parseDateQuery(c, "date"); !ok {
			return
		}
		logs, err = a.activityLogs.ListByDate(date)
	}

	if err != nil {
		handleActivityLogError(c, err)
		return
	}

	items := make([]gin.H, 0, len(logs))
	for _, logEntry := range logs {
		items = append(items, activityLogToPayload(logEntry))
	}

	c.JSON(http.StatusOK, gin.H{"activity_logs": items})
}

// CreateActivityLog 记录一次计划外活动
func (a *API) CreateActivityLog(c *gin.Context) {
	var payload activityLogPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	date, ok := parseDateField(payload.LogDate)
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	logTime, ok := combineClock(date, payload.LogTime)
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的时间")
		return
	}

	logEntry, err := a.activityLogs.Log(service.ActivityLogInput{
		ActivityTypeID:   payload.ActivityTypeID,
		ActivityTypeName: payload.ActivityTypeName,
		DurationMinutes:  payload.DurationMinutes,
		Intensity:        payload.Intensity,
		LogDate:          date,
		LogTime:          logTime,
		Note:             payload.Note,
	})
	if err != nil {
		handleActivityLogError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity_log": activityLogToPayload(*logEntry)})
}

// DeleteActivityLog 删除一条活动流水
func (a *API) DeleteActivityLog(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的记录ID")
		return
	}

	if err := a.activityLogs.Delete(id); err != nil {
		handleActivityLogError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func parseScheduledActivityInput(c *gin.Context) (service.ScheduledActivityInput, bool) {
	var payload scheduledActivityPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return service.ScheduledActivityInput{}, false
	}

	startDate, ok := parseDateField(payload.StartDate)
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的开始日期")
		return service.ScheduledActivityInput{}, false
	}

	return service.ScheduledActivityInput{
		ActivityTypeID:  payload.ActivityTypeID,
		Name:            payload.Name,
		DurationMinutes: payload.DurationMinutes,
		FrequencyType:   payload.FrequencyType,
		FrequencyValue:  payload.FrequencyValue,
		StartDate:       startDate,
		ReminderEnabled: payload.ReminderEnabled,
		ReminderTime:    payload.ReminderTime,
		IsActive:        payload.IsActive,
	}, true
}

func activityTypeToPayload(t db.ActivityType) gin.H {
	return gin.H{
		"id":          t.ID,
		"name":        t.Name,
		"icon":        t.Icon,
		"color":       t.Color,
		"is_default":  t.IsDefault,
		"usage_count": t.UsageCount,
	}
}

func scheduledActivityToPayload(plan db.ScheduledActivity) gin.H {
	item := gin.H{
		"id":               plan.ID,
		"activity_type_id": plan.ActivityTypeID,
		"name":             plan.Name,
		"duration_minutes": plan.DurationMinutes,
		"frequency_type":   plan.FrequencyType,
		"frequency_value":  plan.FrequencyValue,
		"start_date":       plan.StartDate.Format(dateFormat),
		"reminder_enabled": plan.ReminderEnabled,
		"reminder_time":    plan.ReminderTime,
		"is_active":        plan.IsActive,
	}

	if plan.ActivityType.ID != 0 {
		item["activity_type"] = activityTypeToPayload(plan.ActivityType)
	}

	return item
}

func dayPlanToPayload(plan *service.DayPlan) gin.H {
	items := make([]gin.H, 0, len(plan.Items))
	for _, item := range plan.Items {
		items = append(items, gin.H{
			"plan":                    scheduledActivityToPayload(item.Plan),
			"status":                  item.Status,
			"actual_duration_minutes": item.ActualDurationMinutes,
		})
	}

	issues := make([]gin.H, 0, len(plan.Issues))
	for _, issue := range plan.Issues {
		issues = append(issues, gin.H{
			"scheduled_activity_id": issue.ScheduledActivityID,
			"name":                  issue.Name,
			"reason":                issue.Reason,
		})
	}

	return gin.H{
		"date":   plan.Date.Format(dateFormat),
		"items":  items,
		"issues": issues,
	}
}

func activityLogToPayload(logEntry db.ActivityLog) gin.H {
	item := gin.H{
		"id":               logEntry.ID,
		"activity_type_id": logEntry.ActivityTypeID,
		"duration_minutes": logEntry.DurationMinutes,
		"intensity":        logEntry.Intensity,
		"log_date":         logEntry.LogDate.Format(dateFormat),
		"note":             logEntry.Note,
	}

	if logEntry.ScheduledActivityID != nil {
		item["scheduled_activity_id"] = *logEntry.ScheduledActivityID
	}
	if logEntry.LogTime != nil {
		item["log_time"] = logEntry.LogTime.Format(time.RFC3339)
	}
	if logEntry.ActivityType.ID != 0 {
		item["activity_type"] = activityTypeToPayload(logEntry.ActivityType)
	}

	return item
}

func handleActivityTypeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrActivityTypeNotFound):
		respondError(c, http.StatusNotFound, "活动类型不存在")
	case errors.Is(err, service.ErrActivityTypeExists):
		respondError(c, http.StatusBadRequest, "活动类型已存在")
	case errors.Is(err, service.ErrActivityTypeInvalid):
		respondError(c, http.StatusBadRequest, "活动类型配置无效")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}

func handleScheduledActivityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduledActivityNotFound):
		respondError(c, http.StatusNotFound, "活动计划不存在")
	case errors.Is(err, service.ErrActivityTypeNotFound):
		respondError(c, http.StatusBadRequest, "活动类型不存在")
	case errors.Is(err, schedule.ErrInvalidRule):
		respondError(c, http.StatusBadRequest, "频率配置无效")
	case errors.Is(err, service.ErrScheduledActivityInvalid):
		respondError(c, http.StatusBadRequest, "计划配置无效")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}

func handleDayPlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidActivityStatus):
		respondError(c, http.StatusBadRequest, "无效的完成状态")
	case errors.Is(err, service.ErrScheduledActivityNotFound):
		respondError(c, http.StatusNotFound, "活动计划不存在")
	case errors.Is(err, service.ErrScheduledActivityInvalid):
		respondError(c, http.StatusBadRequest, "计划配置无效")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}

func handleActivityLogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrActivityLogNotFound):
		respondError(c, http.StatusNotFound, "活动记录不存在")
	case errors.Is(err, service.ErrActivityTypeNotFound):
		respondError(c, http.StatusBadRequest, "活动类型不存在")
	case errors.Is(err, service.ErrActivityTypeInvalid):
		respondError(c, http.StatusBadRequest, "活动类型不合法")
	case errors.Is(err, service.ErrActivityLogInvalid):
		respondError(c, http.StatusBadRequest, "活动记录不合法")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
