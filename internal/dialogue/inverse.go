package dialogue

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	reDateValue = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)
	reTimeValue = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	reDateInStr = regexp.MustCompile(`(\d{1,2})/(\d{1,2})`)
	reTimeInStr = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// InverseNormalizeDate converts MM/DD into spoken 1月15日 form.
// Values that are not normalized dates pass through unchanged.
func InverseNormalizeDate(value string) string {
	m := reDateValue.FindStringSubmatch(value)
	if m == nil {
		return value
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%d月%d日", month, day)
}

// InverseNormalizeTime converts HH:MM into spoken form: 19時, 19時半,
// or 19時45分.
func InverseNormalizeTime(value string) string {
	m := reTimeValue.FindStringSubmatch(value)
	if m == nil {
		return value
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	switch minute {
	case 0:
		return fmt.Sprintf("%d時", hour)
	case 30:
		return fmt.Sprintf("%d時半", hour)
	default:
		return fmt.Sprintf("%d時%d分", hour, minute)
	}
}

// InverseNormalize formats a slot value for speech output.
func InverseNormalize(slot Slot, value string) string {
	switch slot {
	case SlotDate:
		return InverseNormalizeDate(value)
	case SlotTime:
		return InverseNormalizeTime(value)
	}
	return value
}

// SpeakableText rewrites any embedded MM/DD and HH:MM spans in free text
// into their spoken forms; used before synthesis.
func SpeakableText(text string) string {
	text = reDateInStr.ReplaceAllStringFunc(text, InverseNormalizeDate)
	text = reTimeInStr.ReplaceAllStringFunc(text, InverseNormalizeTime)
	return text
}
