package nlu

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/kaiwa-ai/reserve-gateway/internal/dialogue"
)

// maxTokensPostTerminal is how many tokens may follow a terminal verb form
// before it stops counting as an end-of-utterance signal.
const maxTokensPostTerminal = 2

var (
	reNormalizedDate   = regexp.MustCompile(`\d{2}/\d{2}`)
	reNormalizedTime   = regexp.MustCompile(`\d{2}:\d{2}`)
	reNormalizedPerson = regexp.MustCompile(`(\d+)人`)
)

// Result is the observable output of one Process call.
type Result struct {
	SlotStates       dialogue.SlotMap
	GotEntity        bool // any slot non-empty this call
	IsSlotFilled     bool // every requested slot filled this call
	GotTerminalForms bool
	HearingItem      dialogue.Slot // slot named in the transcript, for corrections
	Normalized       string
}

// Analyzer extracts slots and terminal verb forms from a transcript.
// It holds no state across calls; the tracker owns slot persistence.
type Analyzer struct {
	norm     *Normalizer
	tok      *tokenizer.Tokenizer
	slotKeys []dialogue.Slot
}

// NewAnalyzer builds an analyzer over the IPA dictionary for the given slots.
func NewAnalyzer(norm *Normalizer, slotKeys []dialogue.Slot) (*Analyzer, error) {
	tok, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("nlu tokenizer: %w", err)
	}
	if len(slotKeys) == 0 {
		slotKeys = dialogue.AllSlots
	}
	return &Analyzer{norm: norm, tok: tok, slotKeys: slotKeys}, nil
}

// Process normalizes text, extracts slot values and terminal forms, and
// returns the full result. Running it twice on the same transcript yields
// the same result.
func (a *Analyzer) Process(text string) Result {
	res := Result{SlotStates: dialogue.SlotMap{}}
	for _, k := range a.slotKeys {
		res.SlotStates[k] = ""
	}
	if text == "" {
		return res
	}

	res.Normalized = a.norm.Apply(text)
	tokens := a.tok.Tokenize(res.Normalized)

	a.extractEntities(&res, tokens)
	res.GotTerminalForms = detectTerminalForm(tokens)
	res.HearingItem = hearingItem(text, a.slotKeys)

	filled := 0
	for _, k := range a.slotKeys {
		if res.SlotStates[k] != "" {
			filled++
			res.GotEntity = true
		}
	}
	res.IsSlotFilled = filled == len(a.slotKeys)
	return res
}

func (a *Analyzer) extractEntities(res *Result, tokens []tokenizer.Token) {
	a.setSlot(res, dialogue.SlotDate, lastValid(reNormalizedDate.FindAllString(res.Normalized, -1), ValidateDate))
	a.setSlot(res, dialogue.SlotTime, lastValid(reNormalizedTime.FindAllString(res.Normalized, -1), ValidateTime))

	if m := reNormalizedPerson.FindAllStringSubmatch(res.Normalized, -1); len(m) > 0 {
		count := m[len(m)-1][1]
		if ValidatePersonCount(count) {
			a.setSlot(res, dialogue.SlotPersons, count)
		}
	}

	a.setSlot(res, dialogue.SlotName, personName(tokens))
}

func (a *Analyzer) setSlot(res *Result, slot dialogue.Slot, value string) {
	if value == "" {
		return
	}
	if _, requested := res.SlotStates[slot]; !requested {
		return
	}
	res.SlotStates[slot] = value
}

func lastValid(values []string, valid func(string) bool) string {
	for i := len(values) - 1; i >= 0; i-- {
		if valid(values[i]) {
			return values[i]
		}
	}
	return ""
}

// personName returns the last proper-noun person token in the transcript.
func personName(tokens []tokenizer.Token) string {
	name := ""
	for _, tk := range tokens {
		pos := tk.POS()
		if len(pos) >= 3 && pos[0] == "名詞" && pos[1] == "固有名詞" && pos[2] == "人名" {
			name = tk.Surface
		}
	}
	return name
}

// detectTerminalForm scans for a committed terminal verb form (終止形).
// A form is discarded when the token immediately after it is a 接続助詞
// ("…ですが"), and goes stale once more tokens follow it.
func detectTerminalForm(tokens []tokenizer.Token) bool {
	live := false
	tokensAfter := 0
	for _, tk := range tokens {
		if live {
			tokensAfter++
			if tokensAfter == 1 && isConnectiveParticle(tk) {
				live = false
				tokensAfter = 0
				continue
			}
		}
		if isTerminalForm(tk) {
			live = true
			tokensAfter = 0
		}
	}
	return live && tokensAfter < maxTokensPostTerminal
}

func isTerminalForm(tk tokenizer.Token) bool {
	features := tk.Features()
	if len(features) < 6 {
		return false
	}
	switch features[0] {
	case "動詞", "助動詞", "形容詞":
	default:
		return false
	}
	return features[5] == "基本形"
}

func isConnectiveParticle(tk tokenizer.Token) bool {
	pos := tk.POS()
	return len(pos) >= 2 && pos[0] == "助詞" && pos[1] == "接続助詞"
}

// hearingItem detects which slot the caller's wording targets by substring
// match of the slot name, e.g. 時間を19時に.
func hearingItem(text string, slots []dialogue.Slot) dialogue.Slot {
	aliases := map[dialogue.Slot][]string{
		dialogue.SlotDate:    {"日付", "日にち"},
		dialogue.SlotTime:    {"時間"},
		dialogue.SlotPersons: {"人数"},
		dialogue.SlotName:    {"名前"},
	}
	for _, slot := range slots {
		for _, alias := range aliases[slot] {
			if strings.Contains(text, alias) {
				return slot
			}
		}
	}
	return ""
}
