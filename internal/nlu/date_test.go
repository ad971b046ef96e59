package nlu

import (
	"testing"
	"time"
)

// referenceToday pins the normalizer clock: Wednesday 2024-10-23.
func referenceToday() time.Time {
	return time.Date(2024, 10, 23, 10, 0, 0, 0, time.Local)
}

func testNormalizer() *Normalizer {
	return &Normalizer{Now: referenceToday}
}

func TestNormalizeDates(t *testing.T) {
	n := testNormalizer()

	cases := []struct {
		text string
		span string
		want string
	}{
		{"来週の土曜日はどうですか", "来週の土曜日", "11/02"},
		{"明日の午前中にお願いします", "明日", "10/24"},
		{"明後日に行きます", "明後日", "10/25"},
		{"今週の金曜日に", "今週の金曜日", "10/25"},
		{"再来週の水曜日でお願いします", "再来週の水曜日", "11/06"},
		{"来月の15日に予定があります", "来月の15日", "11/15"},
		{"11月29日に予約したい", "11月29日", "11/29"},
		{"三月の三日でお願いします", "三月の三日", "03/03"},
		{"来月の1週目の水曜日はあいてますか", "来月の1週目の水曜日", "11/06"},
		{"令和6年12月25日です", "令和6年12月25日", "12/25"},
		{"2024年12月31日です", "2024年12月31日", "12/31"},
	}

	for _, tc := range cases {
		got := n.NormalizeDates(tc.text)
		if got[tc.span] != tc.want {
			t.Errorf("%q: want %s=%s, got %v", tc.text, tc.span, tc.want, got)
		}
	}
}

func TestNormalizeDatesPastRollsForward(t *testing.T) {
	n := testNormalizer()
	// 1月15日 already passed in 2024; it must resolve to next January.
	got := n.NormalizeDates("1月15日に3人で会食をしましょう")
	if got["1月15日"] != "01/15" {
		t.Errorf("want 01/15, got %v", got)
	}
}

func TestNormalizeDatesRejectsInvalid(t *testing.T) {
	n := testNormalizer()
	got := n.NormalizeDates("2月31日でお願いします")
	if _, ok := got["2月31日"]; ok {
		t.Errorf("February 31 must be rejected, got %v", got)
	}
}

func TestNormalizeDatesWeekdayOnly(t *testing.T) {
	n := testNormalizer()
	// Next Saturday from Wednesday 10/23 is 10/26.
	got := n.NormalizeDates("土曜日は空いてますか")
	if got["土曜日"] != "10/26" {
		t.Errorf("want 10/26, got %v", got)
	}
}
