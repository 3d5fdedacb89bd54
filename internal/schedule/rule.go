package schedule

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Frequency 表示周期计划的触发频率类型
type Frequency string

const (
	// FrequencyDaily 每天触发
	FrequencyDaily Frequency = "daily"
	// FrequencyWeekly 每周触发（与开始日期同一星期几）
	FrequencyWeekly Frequency = "weekly"
	// FrequencySpecificDays 在指定的星期几触发，值为逗号分隔的索引（周一=0..周日=6）
	FrequencySpecificDays Frequency = "specific_days"
	// FrequencyInterval 每隔 N 天触发，N 来自规则值
	FrequencyInterval Frequency = "interval"
	// FrequencyMonthly 每月在开始日期的同一天触发，短月份收敛到月末
	FrequencyMonthly Frequency = "monthly"
)

// ErrInvalidRule 在频率类型未知或规则值缺失/不可解析时返回
var ErrInvalidRule = errors.New("invalid frequency rule")

// Rule 描述一条周期计划的触发规则。
// Value 的语义取决于 Frequency：specific_days 为逗号分隔的星期索引，
// interval 为正整数天数，其余类型忽略该字段。
type Rule struct {
	Frequency Frequency
	Value     string
	StartDate time.Time
}

// IsDue 判断规则在给定日期是否应当触发。
// 早于开始日期的日期永远返回 false；规则本身非法时返回 ErrInvalidRule。
func (r Rule) IsDue(date time.Time) (bool, error) {
	day := toDay(date)
	start := toDay(r.StartDate)

	if day.Before(start) {
		return false, nil
	}

	switch r.Frequency {
	case FrequencyDaily:
		return true, nil
	case FrequencyWeekly:
		return day.Weekday() == start.Weekday(), nil
	case FrequencySpecificDays:
		days, err := ParseWeekdays(r.Value)
		if err != nil {
			return false, err
		}
		return slices.Contains(days, WeekdayIndex(day)), nil
	case FrequencyInterval:
		interval, err := parseInterval(r.Value)
		if err != nil {
			return false, err
		}
		return daysBetween(start, day)%interval == 0, nil
	case FrequencyMonthly:
		// 开始日在短月份不存在时收敛到该月最后一天，例如 31 号在四月落到 30 号
		target := start.Day()
		if last := lastDayOfMonth(day); target > last {
			target = last
		}
		return day.Day() == target, nil
	default:
		return false, fmt.Errorf("%w: unknown frequency type %q", ErrInvalidRule, r.Frequency)
	}
}

// Validate 校验规则配置本身是否合法，供写入前检查复用。
func (r Rule) Validate() error {
	switch r.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return nil
	case FrequencySpecificDays:
		_, err := ParseWeekdays(r.Value)
		return err
	case FrequencyInterval:
		_, err := parseInterval(r.Value)
		return err
	default:
		return fmt.Errorf("%w: unknown frequency type %q", ErrInvalidRule, r.Frequency)
	}
}

// ParseWeekdays 解析逗号分隔的星期索引，周一=0..周日=6。
func ParseWeekdays(value string) ([]int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: frequency value is required for specific_days", ErrInvalidRule)
	}

	parts := strings.Split(trimmed, ",")
	days := make([]int, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		day, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("%w: weekday %q is not a number", ErrInvalidRule, token)
		}
		if day < 0 || day > 6 {
			return nil, fmt.Errorf("%w: weekday index %d out of range", ErrInvalidRule, day)
		}
		if !slices.Contains(days, day) {
			days = append(days, day)
		}
	}

	if len(days) == 0 {
		return nil, fmt.Errorf("%w: frequency value is required for specific_days", ErrInvalidRule)
	}

	slices.Sort(days)
	return days, nil
}

// FormatWeekdays 将星期索引序列化回存储形式。
func FormatWeekdays(days []int) string {
	parts := make([]string, 0, len(days))
	for _, day := range days {
		parts = append(parts, strconv.Itoa(day))
	}
	return strings.Join(parts, ",")
}

// WeekdayIndex 返回移动端约定的星期索引，周一=0..周日=6。
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func parseInterval(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: frequency value is required for interval", ErrInvalidRule)
	}

	interval, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: interval %q is not a number", ErrInvalidRule, trimmed)
	}
	if interval < 1 {
		return 0, fmt.Errorf("%w: interval must be at least 1 day", ErrInvalidRule)
	}

	return interval, nil
}

// toDay 将时间归一化到 UTC 零点，保证跨时区/夏令时的天数运算稳定。
func toDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
