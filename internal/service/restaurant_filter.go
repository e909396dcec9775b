package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dinelog/internal/db"
)

// SeatingRange 是座位数解析后的区间，Max 为 +Inf 表示没有上限。
type SeatingRange struct {
	Min float64
	Max float64
}

var unboundedSeating = SeatingRange{Min: 0, Max: math.Inf(1)}

// ParseSeatingCapacity 解析 "N+"、"A-B"、"N" 三种格式，无法解析时返回 [0, +Inf]。
func ParseSeatingCapacity(raw string) SeatingRange {
	value := strings.TrimSpace(raw)
	if value == "" {
		return unboundedSeating
	}

	if strings.HasSuffix(value, "+") {
		min, ok := parseSeatingNumber(strings.TrimSuffix(value, "+"))
		if !ok {
			return unboundedSeating
		}
		return SeatingRange{Min: min, Max: math.Inf(1)}
	}

	if parts := strings.SplitN(value, "-", 2); len(parts) == 2 {
		min, okMin := parseSeatingNumber(parts[0])
		max, okMax := parseSeatingNumber(parts[1])
		if !okMin || !okMax {
			return unboundedSeating
		}
		return SeatingRange{Min: min, Max: max}
	}

	n, ok := parseSeatingNumber(value)
	if !ok {
		return unboundedSeating
	}
	return SeatingRange{Min: n, Max: n}
}

func parseSeatingNumber(raw string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// SeatingAllows reports whether a party fits; partySize <= 0 means no constraint.
func SeatingAllows(capacity string, partySize int) bool {
	if partySize <= 0 {
		return true
	}
	return float64(partySize) <= ParseSeatingCapacity(capacity).Max
}

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// parseClock converts HH:MM into minutes after midnight. 24:00 is accepted as end of day.
func parseClock(raw string) (int, bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if minute > 59 || hour > 24 || (hour == 24 && minute != 0) {
		return 0, false
	}
	return hour*60 + minute, true
}

var weekdayAliases = map[time.Weekday][]string{
	time.Sunday:    {"sunday", "sun", "星期日", "星期天", "週日", "周日"},
	time.Monday:    {"monday", "mon", "星期一", "週一", "周一"},
	time.Tuesday:   {"tuesday", "tue", "tues", "星期二", "週二", "周二"},
	time.Wednesday: {"wednesday", "wed", "星期三", "週三", "周三"},
	time.Thursday:  {"thursday", "thu", "thur", "thurs", "星期四", "週四", "周四"},
	time.Friday:    {"friday", "fri", "星期五", "週五", "周五"},
	time.Saturday:  {"saturday", "sat", "星期六", "週六", "周六"},
}

func matchesWeekday(day string, weekday time.Weekday) bool {
	normalized := strings.ToLower(strings.TrimSpace(day))
	for _, alias := range weekdayAliases[weekday] {
		if normalized == alias {
			return true
		}
	}
	return false
}

// IsOpenAt 判断餐厅在指定星期的 clock 时刻是否营业。
// 结束时间早于开始时间表示跨夜营业，此时对跨过午夜的时刻加 24 小时再比较。
func IsOpenAt(hours []db.BusinessHour, weekday time.Weekday, clock string) bool {
	at, ok := parseClock(clock)
	if !ok {
		return false
	}

	for _, entry := range hours {
		if !matchesWeekday(entry.Day, weekday) {
			continue
		}
		if !entry.IsOpen {
			return false
		}
		start, okStart := parseClock(entry.StartTime)
		end, okEnd := parseClock(entry.EndTime)
		if !okStart || !okEnd {
			return false
		}
		if start == end {
			return true
		}
		if end < start {
			end += 24 * 60
			if at < start {
				at += 24 * 60
			}
		}
		return at >= start && at < end
	}
	return false
}

// containsAll implements facet semantics: every requested value must be present.
func containsAll(values, required []string) bool {
	if len(required) == 0 {
		return true
	}
	present := make(map[string]struct{}, len(values))
	for _, value := range values {
		present[value] = struct{}{}
	}
	for _, want := range required {
		if _, ok := present[want]; !ok {
			return false
		}
	}
	return true
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

// matchesText 对中英文名称、分类与完整地址做不区分大小写的子串匹配。
func matchesText(restaurant db.Restaurant, search string) bool {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return true
	}
	for _, field := range []string{restaurant.Name.EN, restaurant.Name.ZhTW, restaurant.Category, restaurant.Address()} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
