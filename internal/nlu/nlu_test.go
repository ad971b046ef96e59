package nlu

import (
	"testing"

	"github.com/kaiwa-ai/reserve-gateway/internal/dialogue"
)

func testAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(testNormalizer(), dialogue.AllSlots)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	return a
}

func TestProcessExtractsAllSlots(t *testing.T) {
	a := testAnalyzer(t)

	res := a.Process("来週の土曜日、19時から3名で、山田です")

	want := dialogue.SlotMap{
		dialogue.SlotDate:    "11/02",
		dialogue.SlotTime:    "19:00",
		dialogue.SlotPersons: "3",
		dialogue.SlotName:    "山田",
	}
	for slot, value := range want {
		if res.SlotStates[slot] != value {
			t.Errorf("slot %s: want %q, got %q", slot, value, res.SlotStates[slot])
		}
	}
	if !res.GotEntity {
		t.Error("GotEntity must be true")
	}
	if !res.IsSlotFilled {
		t.Error("IsSlotFilled must be true with all four slots")
	}
}

func TestProcessPartialSlots(t *testing.T) {
	a := testAnalyzer(t)

	res := a.Process("明日の18時に2名でお願いします")

	if res.SlotStates[dialogue.SlotDate] != "10/24" {
		t.Errorf("date: got %q", res.SlotStates[dialogue.SlotDate])
	}
	if res.SlotStates[dialogue.SlotTime] != "18:00" {
		t.Errorf("time: got %q", res.SlotStates[dialogue.SlotTime])
	}
	if res.SlotStates[dialogue.SlotPersons] != "2" {
		t.Errorf("persons: got %q", res.SlotStates[dialogue.SlotPersons])
	}
	if res.IsSlotFilled {
		t.Error("IsSlotFilled must be false without a name")
	}
	if !res.GotEntity {
		t.Error("GotEntity must be true")
	}
}

func TestProcessIdempotent(t *testing.T) {
	a := testAnalyzer(t)
	text := "明日の朝10時に6人で予約できますか"

	first := a.Process(text)
	second := a.Process(text)

	for slot, value := range first.SlotStates {
		if second.SlotStates[slot] != value {
			t.Errorf("slot %s differs across runs: %q vs %q", slot, value, second.SlotStates[slot])
		}
	}
	if first.GotTerminalForms != second.GotTerminalForms ||
		first.GotEntity != second.GotEntity ||
		first.IsSlotFilled != second.IsSlotFilled {
		t.Error("flags differ across runs")
	}
}

func TestTerminalFormDetection(t *testing.T) {
	a := testAnalyzer(t)

	cases := []struct {
		text string
		want bool
	}{
		{"予約したいです", true},
		{"予約をお願いします", true},
		{"予約したいですが", false},       // 接続助詞 cancels the terminal form
		{"予約したいですが明日の都合は", false}, // and more tokens keep it stale
		{"明日の", false},
	}
	for _, tc := range cases {
		res := a.Process(tc.text)
		if res.GotTerminalForms != tc.want {
			t.Errorf("%q: terminal form want %v, got %v", tc.text, tc.want, res.GotTerminalForms)
		}
	}
}

func TestHearingItem(t *testing.T) {
	a := testAnalyzer(t)

	cases := []struct {
		text string
		want dialogue.Slot
	}{
		{"時間を変えたいです", dialogue.SlotTime},
		{"日付を変更したい", dialogue.SlotDate},
		{"人数が違います", dialogue.SlotPersons},
		{"名前を直してください", dialogue.SlotName},
		{"はい", ""},
	}
	for _, tc := range cases {
		res := a.Process(tc.text)
		if res.HearingItem != tc.want {
			t.Errorf("%q: hearing item want %q, got %q", tc.text, tc.want, res.HearingItem)
		}
	}
}

func TestProcessEmptyText(t *testing.T) {
	a := testAnalyzer(t)
	res := a.Process("")
	if res.GotEntity || res.IsSlotFilled || res.GotTerminalForms {
		t.Error("empty text must produce no signals")
	}
}

func TestProcessInvalidValuesRejected(t *testing.T) {
	a := testAnalyzer(t)
	// 25時 normalizes to 25:00, which fails validation; the slot stays empty.
	res := a.Process("25時にお願いします")
	if res.SlotStates[dialogue.SlotTime] != "" {
		t.Errorf("invalid time must be rejected, got %q", res.SlotStates[dialogue.SlotTime])
	}
}
