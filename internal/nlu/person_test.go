package nlu

import "testing"

func TestNormalizePersonCounts(t *testing.T) {
	n := testNormalizer()

	cases := []struct {
		text string
		span string
		want string
	}{
		{"三名でお願いします", "三名", "3人"},
		{"5人で予約したい", "5人", "5人"},
		{"二名です", "二名", "2人"},
		{"ふたりです", "ふたり", "2人"},
		{"一人でお願いします", "一人", "1人"},
		{"十人になります", "十人", "10人"},
	}

	for _, tc := range cases {
		got := n.NormalizePersonCounts(tc.text)
		if got[tc.span] != tc.want {
			t.Errorf("%q: want %s=%s, got %v", tc.text, tc.span, tc.want, got)
		}
	}
}

func TestNormalizePersonCountsNoMatch(t *testing.T) {
	n := testNormalizer()
	got := n.NormalizePersonCounts("駐車場はありますか")
	if len(got) != 0 {
		t.Errorf("want no matches, got %v", got)
	}
}
