package nlu

import (
	"fmt"
	"regexp"
)

const timeOfDayAlternation = "朝|午前|昼|午後|夕方|夜|深夜"

var (
	reSpecialTime = regexp.MustCompile(`正午|深夜零時|深夜12時|零時|〇時`)
	reHalfHour    = regexp.MustCompile(`(?:(` + timeOfDayAlternation + `)の?)?(\d{1,2}|` + kanjiNumberAlternation + `)時半`)
	reHourMinute  = regexp.MustCompile(`(?:(` + timeOfDayAlternation + `)の?)?(\d{1,2}|` + kanjiNumberAlternation + `)時(?:(\d{1,2}|` + kanjiNumberAlternation + `)分)?`)
)

var specialTimes = map[string]string{
	"正午":    "12:00",
	"深夜零時":  "00:00",
	"深夜12時": "00:00",
	"零時":    "00:00",
	"〇時":    "00:00",
}

// NormalizeTimes finds Japanese time expressions in text and maps each
// original span to its normalized 24-hour HH:MM form.
func (n *Normalizer) NormalizeTimes(text string) map[string]string {
	results := map[string]string{}

	for _, orig := range reSpecialTime.FindAllString(text, -1) {
		results[orig] = specialTimes[orig]
	}

	for _, m := range reHalfHour.FindAllStringSubmatch(text, -1) {
		hour, ok := parseNumber(m[2])
		if !ok {
			continue
		}
		results[m[0]] = fmt.Sprintf("%02d:30", inferActualHour(hour, m[1]))
	}

	for _, m := range reHourMinute.FindAllStringSubmatch(text, -1) {
		if _, seen := results[m[0]]; seen {
			continue
		}
		if coveredBy(results, m[0]) {
			continue
		}
		hour, ok := parseNumber(m[2])
		if !ok {
			continue
		}
		minute := 0
		if m[3] != "" {
			minute, ok = parseNumber(m[3])
			if !ok {
				continue
			}
		}
		results[m[0]] = fmt.Sprintf("%02d:%02d", inferActualHour(hour, m[1]), minute)
	}

	return results
}

// inferActualHour resolves a 12-hour clock reading against the time-of-day word.
func inferActualHour(hour int, timeOfDay string) int {
	switch timeOfDay {
	case "午後", "夕方", "夜":
		if hour < 12 {
			hour += 12
		}
	case "深夜":
		if hour == 12 {
			hour = 0
		}
	case "朝", "午前":
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}
