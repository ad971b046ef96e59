package nlu

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const weekdayAlternation = "月曜日|火曜日|水曜日|木曜日|金曜日|土曜日|日曜日|月曜|火曜|水曜|木曜|金曜|土曜|日曜"

// dayOfWeek maps Japanese weekday names to a Monday-based index.
var dayOfWeek = map[string]int{
	"月曜日": 0, "火曜日": 1, "水曜日": 2, "木曜日": 3, "金曜日": 4, "土曜日": 5, "日曜日": 6,
	"月曜": 0, "火曜": 1, "水曜": 2, "木曜": 3, "金曜": 4, "土曜": 5, "日曜": 6,
}

var relativeDayOffset = map[string]int{
	"今日":  0,
	"明日":  1,
	"明後日": 2,
}

var monthOffset = map[string]int{
	"先月":  -1,
	"今月":  0,
	"来月":  1,
	"再来月": 2,
}

var eraStartYear = map[string]struct{ start, end int }{
	"昭和": {1926, 1989},
	"平成": {1989, 2019},
	"令和": {2019, 9999},
}

var (
	reRelativeMonthWeek = regexp.MustCompile(`(先月|今月|来月|再来月)の?([1-5１-５])週目の?(` + weekdayAlternation + `)`)
	reRelativeDay       = regexp.MustCompile(`一昨日|昨日|今日|明日|明後日`)
	reRelativeWeek      = regexp.MustCompile(`(先々週|先週|今週|来週|再来週|次)の?(` + weekdayAlternation + `)`)
	reRelativeMonthDay  = regexp.MustCompile(`(先月|今月|来月|再来月)の?(\d{1,2})日?`)
	reEraDate           = regexp.MustCompile(`(昭和|平成|令和)(元|\d{1,2})年の?(\d{1,2})月の?(\d{1,2})日`)
	reWesternDate       = regexp.MustCompile(`(\d{4})年の?(\d{1,2})月の?(\d{1,2})日`)
	reAbsoluteMonthDay  = regexp.MustCompile(`(\d{1,2}|` + kanjiNumberAlternation + `)月の?(\d{1,2}|` + kanjiNumberAlternation + `)日?`)
	reWeekdayOnly       = regexp.MustCompile(weekdayAlternation)
)

// pyWeekday converts time.Weekday (Sunday=0) to a Monday-based index.
func pyWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func formatMonthDay(t time.Time) string {
	return fmt.Sprintf("%02d/%02d", int(t.Month()), t.Day())
}

// NormalizeDates finds Japanese date expressions in text and maps each
// original span to its normalized MM/DD form, relative to now.
func (n *Normalizer) NormalizeDates(text string) map[string]string {
	now := n.now()
	results := map[string]string{}

	for _, m := range reRelativeMonthWeek.FindAllStringSubmatch(text, -1) {
		offset := monthOffset[m[1]]
		week, ok := parseNumber(normalizeWidth(m[2]))
		if !ok {
			continue
		}
		firstDay := now.AddDate(0, 0, offset*30)
		firstDay = time.Date(firstDay.Year(), firstDay.Month(), 1, 0, 0, 0, 0, firstDay.Location())
		target := dayOfWeek[m[3]]
		daysUntilFirst := (target - pyWeekday(firstDay) + 7) % 7
		date := firstDay.AddDate(0, 0, daysUntilFirst+(week-1)*7)
		results[m[0]] = formatMonthDay(date)
	}

	for _, m := range reRelativeWeek.FindAllStringSubmatch(text, -1) {
		target, ok := dayOfWeek[m[2]]
		if !ok {
			continue
		}
		current := pyWeekday(now)
		var days int
		switch m[1] {
		case "来週":
			days = 7 + target - current
		case "再来週":
			days = 14 + target - current
		case "先週", "先々週":
			continue // past dates are not reservation targets
		default: // 今週, 次
			days = (target - current + 7) % 7
		}
		results[m[0]] = formatMonthDay(now.AddDate(0, 0, days))
	}

	for _, orig := range reRelativeDay.FindAllString(text, -1) {
		offset, ok := relativeDayOffset[orig]
		if !ok {
			continue
		}
		results[orig] = formatMonthDay(now.AddDate(0, 0, offset))
	}

	for _, m := range reRelativeMonthDay.FindAllStringSubmatch(text, -1) {
		if coveredBy(results, m[0]) {
			continue
		}
		day, ok := parseNumber(m[2])
		if !ok {
			continue
		}
		base := now.AddDate(0, 0, monthOffset[m[1]]*30)
		date := time.Date(base.Year(), base.Month(), day, 0, 0, 0, 0, base.Location())
		if date.Day() != day || date.Before(now) {
			continue
		}
		results[m[0]] = formatMonthDay(date)
	}

	for _, m := range reEraDate.FindAllStringSubmatch(text, -1) {
		year := 1
		if m[2] != "元" {
			year, _ = parseNumber(m[2])
		}
		rng, ok := eraStartYear[m[1]]
		if !ok {
			continue
		}
		western := rng.start + year - 1
		if western > rng.end {
			continue
		}
		month, _ := parseNumber(m[3])
		day, _ := parseNumber(m[4])
		if !validMonthDay(western, month, day) {
			continue
		}
		results[m[0]] = fmt.Sprintf("%02d/%02d", month, day)
	}

	for _, m := range reWesternDate.FindAllStringSubmatch(text, -1) {
		year, _ := parseNumber(m[1])
		month, _ := parseNumber(m[2])
		day, _ := parseNumber(m[3])
		if !validMonthDay(year, month, day) {
			continue
		}
		results[m[0]] = fmt.Sprintf("%02d/%02d", month, day)
	}

	for _, m := range reAbsoluteMonthDay.FindAllStringSubmatch(text, -1) {
		if _, seen := results[m[0]]; seen {
			continue
		}
		if coveredBy(results, m[0]) {
			continue
		}
		month, ok1 := parseNumber(m[1])
		day, ok2 := parseNumber(m[2])
		if !ok1 || !ok2 {
			continue
		}
		date := time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, now.Location())
		if int(date.Month()) != month || date.Day() != day {
			continue
		}
		if date.Before(now) {
			date = date.AddDate(1, 0, 0)
		}
		results[m[0]] = formatMonthDay(date)
	}

	for _, orig := range reWeekdayOnly.FindAllString(text, -1) {
		if coveredBy(results, orig) {
			continue
		}
		target := dayOfWeek[orig]
		days := (target - pyWeekday(now) + 7) % 7
		results[orig] = formatMonthDay(now.AddDate(0, 0, days))
	}

	return results
}

// coveredBy reports whether span already appears inside a longer matched span,
// e.g. 土曜日 inside 来週の土曜日.
func coveredBy(results map[string]string, span string) bool {
	for matched := range results {
		if len(matched) > len(span) && strings.Contains(matched, span) {
			return true
		}
	}
	return false
}

func validMonthDay(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return int(d.Month()) == month && d.Day() == day
}

var fullWidthDigits = map[rune]rune{'０': '0', '１': '1', '２': '2', '３': '3', '４': '4', '５': '5', '６': '6', '７': '7', '８': '8', '９': '9'}

func normalizeWidth(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if half, ok := fullWidthDigits[r]; ok {
			r = half
		}
		out = append(out, r)
	}
	return string(out)
}
