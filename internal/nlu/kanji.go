package nlu

import (
	"sort"
	"strings"
)

// kanjiNumbers maps kanji numerals 0-31, the range needed for dates,
// hours, and small person counts.
var kanjiNumbers = map[string]int{
	"〇": 0, "零": 0,
	"一": 1, "壱": 1,
	"二": 2, "弐": 2,
	"三": 3, "参": 3,
	"四": 4, "五": 5, "六": 6,
	"七": 7, "八": 8, "九": 9,
	"十": 10, "十一": 11, "十二": 12,
	"十三": 13, "十四": 14, "十五": 15,
	"十六": 16, "十七": 17, "十八": 18,
	"十九": 19, "二十": 20, "二十一": 21,
	"二十二": 22, "二十三": 23, "二十四": 24,
	"二十五": 25, "二十六": 26, "二十七": 27,
	"二十八": 28, "二十九": 29, "三十": 30,
	"三十一": 31,
}

// sortedKanjiNumbers holds the numeral spellings longest-first so that
// 二十三 matches before 二十 and 三.
var sortedKanjiNumbers = func() []string {
	keys := make([]string, 0, len(kanjiNumbers))
	for k := range kanjiNumbers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// kanjiNumberAlternation is the regexp alternation over all known numerals.
var kanjiNumberAlternation = func() string {
	pat := ""
	for i, k := range sortedKanjiNumbers {
		if i > 0 {
			pat += "|"
		}
		pat += k
	}
	return pat
}()

// kanjiToNumber converts a kanji numeral to its value, matching the longest
// spelling contained in text. Returns 0 when no numeral is found.
func kanjiToNumber(text string) int {
	for _, k := range sortedKanjiNumbers {
		if strings.Contains(text, k) {
			return kanjiNumbers[k]
		}
	}
	return 0
}

// parseNumber reads either ASCII digits or a kanji numeral.
func parseNumber(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if isDigits(s) {
		n := 0
		for _, c := range s {
			n = n*10 + int(c-'0')
		}
		return n, true
	}
	if v, ok := kanjiNumbers[s]; ok {
		return v, true
	}
	if v := kanjiToNumber(s); v > 0 || s == "〇" || s == "零" {
		return v, true
	}
	return 0, false
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
