package dialogue

import "testing"

func TestLoadIntentPatternsEmbedded(t *testing.T) {
	p, err := LoadIntentPatterns("")
	if err != nil {
		t.Fatalf("LoadIntentPatterns: %v", err)
	}
	if len(p.GlobalIntents[IntentNewReservation]) == 0 {
		t.Error("NEW_RESERVATION phrase examples missing")
	}
	if len(p.ConfirmationIntents[IntentCancelReservation][IntentNo]) == 0 {
		t.Error("CANCEL_RESERVATION local NO examples missing")
	}
}

func TestLabelsForContext(t *testing.T) {
	p, err := LoadIntentPatterns("")
	if err != nil {
		t.Fatalf("LoadIntentPatterns: %v", err)
	}

	global := p.LabelsFor(StateStart, IntentNone)
	if _, ok := global[IntentNewReservation]; !ok {
		t.Error("START must offer global intents")
	}

	local := p.LabelsFor(StateWaitingConfirmation, IntentNewReservation)
	if _, ok := local[IntentConfirm]; !ok {
		t.Error("confirmation must offer local CONFIRM")
	}
	if _, ok := local[IntentAskAboutStore]; ok {
		t.Error("confirmation label set must not include unrelated globals")
	}
}
