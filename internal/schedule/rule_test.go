package schedule

import (
	"errors"
	"testing"
	"time"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

func mustDue(t *testing.T, rule Rule, day time.Time) bool {
	t.Helper()
	due, err := rule.IsDue(day)
	if err != nil {
		t.Fatalf("IsDue(%s) returned error: %v", day.Format("2006-01-02"), err)
	}
	return due
}

func TestIsDueBeforeStartDate(t *testing.T) {
	start := date(2024, time.March, 15)
	before := date(2024, time.March, 14)

	rules := []Rule{
		{Frequency: FrequencyDaily, StartDate: start},
		{Frequency: FrequencyWeekly, StartDate: start},
		{Frequency: FrequencySpecificDays, Value: "0,1,2,3,4,5,6", StartDate: start},
		{Frequency: FrequencyInterval, Value: "1", StartDate: start},
		{Frequency: FrequencyMonthly, StartDate: start},
	}

	for _, rule := range rules {
		if mustDue(t, rule, before) {
			t.Fatalf("%s rule should never be due before start date", rule.Frequency)
		}
	}
}

func TestIsDueDaily(t *testing.T) {
	rule := Rule{Frequency: FrequencyDaily, StartDate: date(2024, time.January, 1)}

	for i := 0; i < 30; i++ {
		day := date(2024, time.January, 1).AddDate(0, 0, i)
		if !mustDue(t, rule, day) {
			t.Fatalf("daily rule should be due on %s", day.Format("2006-01-02"))
		}
	}
}

func TestIsDueWeekly(t *testing.T) {
	// 2024-01-03 是周三
	rule := Rule{Frequency: FrequencyWeekly, StartDate: date(2024, time.January, 3)}

	cases := []struct {
		day  time.Time
		want bool
	}{
		{day: date(2024, time.January, 3), want: true},
		{day: date(2024, time.January, 4), want: false},
		{day: date(2024, time.January, 10), want: true},
		{day: date(2024, time.January, 17), want: true},
		{day: date(2024, time.January, 16), want: false},
	}

	for _, tc := range cases {
		if got := mustDue(t, rule, tc.day); got != tc.want {
			t.Fatalf("weekly IsDue(%s) = %v, want %v", tc.day.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestIsDueSpecificDays(t *testing.T) {
	// "0,2,4" = 周一/周三/周五；2024-01-01 是周一
	rule := Rule{
		Frequency: FrequencySpecificDays,
		Value:     "0,2,4",
		StartDate: date(2024, time.January, 1),
	}

	start := date(2024, time.January, 1)
	for i := 0; i < 21; i++ {
		day := start.AddDate(0, 0, i)
		idx := WeekdayIndex(day)
		want := idx == 0 || idx == 2 || idx == 4
		if got := mustDue(t, rule, day); got != want {
			t.Fatalf("specific_days IsDue(%s, weekday %d) = %v, want %v",
				day.Format("2006-01-02"), idx, got, want)
		}
	}
}

func TestIsDueInterval(t *testing.T) {
	rule := Rule{
		Frequency: FrequencyInterval,
		Value:     "3",
		StartDate: date(2024, time.January, 1),
	}

	cases := []struct {
		day  time.Time
		want bool
	}{
		{day: date(2024, time.January, 1), want: true},
		{day: date(2024, time.January, 2), want: false},
		{day: date(2024, time.January, 3), want: false},
		{day: date(2024, time.January, 4), want: true},
		{day: date(2024, time.January, 5), want: false},
		{day: date(2024, time.January, 6), want: false},
		{day: date(2024, time.January, 7), want: true},
		{day: date(2024, time.February, 12), want: true}, // 42 天后
	}

	for _, tc := range cases {
		if got := mustDue(t, rule, tc.day); got != tc.want {
			t.Fatalf("interval IsDue(%s) = %v, want %v", tc.day.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestIsDueMonthlyClampsShortMonths(t *testing.T) {
	rule := Rule{Frequency: FrequencyMonthly, StartDate: date(2024, time.January, 31)}

	cases := []struct {
		day  time.Time
		want bool
	}{
		{day: date(2024, time.January, 31), want: true},
		{day: date(2024, time.February, 28), want: false},
		{day: date(2024, time.February, 29), want: true}, // 闰年二月末
		{day: date(2024, time.March, 31), want: true},
		{day: date(2024, time.April, 30), want: true},
		{day: date(2024, time.April, 29), want: false},
		{day: date(2023, time.February, 28), want: false}, // 早于开始日期
	}

	for _, tc := range cases {
		if got := mustDue(t, rule, tc.day); got != tc.want {
			t.Fatalf("monthly IsDue(%s) = %v, want %v", tc.day.Format("2006-01-02"), got, tc.want)
		}
	}

	plain := Rule{Frequency: FrequencyMonthly, StartDate: date(2024, time.January, 15)}
	if !mustDue(t, plain, date(2024, time.February, 15)) {
		t.Fatal("monthly rule should be due on the same day of month")
	}
	if mustDue(t, plain, date(2024, time.February, 14)) {
		t.Fatal("monthly rule should not be due on other days")
	}
}

func TestIsDueInvalidRules(t *testing.T) {
	cases := []Rule{
		{Frequency: FrequencyInterval, Value: "", StartDate: date(2024, time.January, 1)},
		{Frequency: FrequencyInterval, Value: "abc", StartDate: date(2024, time.January, 1)},
		{Frequency: FrequencyInterval, Value: "0", StartDate: date(2024, time.January, 1)},
		{Frequency: FrequencySpecificDays, Value: "", StartDate: date(2024, time.January, 1)},
		{Frequency: FrequencySpecificDays, Value: "1,7", StartDate: date(2024, time.January, 1)},
		{Frequency: FrequencySpecificDays, Value: "mon", StartDate: date(2024, time.January, 1)},
		{Frequency: Frequency("yearly"), StartDate: date(2024, time.January, 1)},
	}

	for _, rule := range cases {
		if _, err := rule.IsDue(date(2024, time.June, 1)); !errors.Is(err, ErrInvalidRule) {
			t.Fatalf("expected ErrInvalidRule for %s value %q, got %v", rule.Frequency, rule.Value, err)
		}
		if err := rule.Validate(); !errors.Is(err, ErrInvalidRule) {
			t.Fatalf("expected Validate to fail for %s value %q", rule.Frequency, rule.Value)
		}
	}
}

func TestValidateAcceptsWellFormedRules(t *testing.T) {
	cases := []Rule{
		{Frequency: FrequencyDaily},
		{Frequency: FrequencyWeekly},
		{Frequency: FrequencyMonthly},
		{Frequency: FrequencySpecificDays, Value: "1,3"},
		{Frequency: FrequencyInterval, Value: "14"},
	}

	for _, rule := range cases {
		if err := rule.Validate(); err != nil {
			t.Fatalf("Validate(%s %q) returned error: %v", rule.Frequency, rule.Value, err)
		}
	}
}

func TestParseWeekdays(t *testing.T) {
	days, err := ParseWeekdays(" 4, 0,2 ,4")
	if err != nil {
		t.Fatalf("ParseWeekdays returned error: %v", err)
	}
	if len(days) != 3 || days[0] != 0 || days[1] != 2 || days[2] != 4 {
		t.Fatalf("unexpected weekday set: %v", days)
	}

	if got := FormatWeekdays(days); got != "0,2,4" {
		t.Fatalf("FormatWeekdays = %q, want %q", got, "0,2,4")
	}
}

func TestWeekdayIndexMondayFirst(t *testing.T) {
	cases := []struct {
		day  time.Time
		want int
	}{
		{day: date(2024, time.January, 1), want: 0}, // 周一
		{day: date(2024, time.January, 2), want: 1},
		{day: date(2024, time.January, 6), want: 5},
		{day: date(2024, time.January, 7), want: 6}, // 周日
	}

	for _, tc := range cases {
		if got := WeekdayIndex(tc.day); got != tc.want {
			t.Fatalf("WeekdayIndex(%s) = %d, want %d", tc.day.Format("2006-01-02"), got, tc.want)
		}
	}
}
