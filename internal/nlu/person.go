package nlu

import (
	"fmt"
	"regexp"
	"strings"
)

var rePersonCount = regexp.MustCompile(`([0-9一二三四五六七八九十壱弐参]+)[人名]`)

// specialPersonCounts covers spellings the numeral regexp cannot reach.
var specialPersonCounts = map[string]int{
	"ひとり": 1,
	"ふたり": 2,
	"独り":  1,
}

// NormalizePersonCounts finds person-count expressions in text and maps each
// original span to its normalized N人 form.
func (n *Normalizer) NormalizePersonCounts(text string) map[string]string {
	results := map[string]string{}

	for _, m := range rePersonCount.FindAllStringSubmatch(text, -1) {
		count, ok := parseNumber(m[1])
		if !ok || count <= 0 {
			continue
		}
		results[m[0]] = fmt.Sprintf("%d人", count)
	}

	for word, count := range specialPersonCounts {
		if strings.Contains(text, word) {
			if _, seen := results[word]; !seen {
				results[word] = fmt.Sprintf("%d人", count)
			}
		}
	}

	return results
}
