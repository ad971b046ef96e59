package dialogue

import (
	"log/slog"
)

// Tracker is the rule-based dialogue state tracker. It owns the current
// intent, the slot map, and the dialogue state. Exactly one goroutine (the
// session orchestrator) may mutate it; everyone else sees Snapshot copies.
type Tracker struct {
	templates        *Templates
	intent           Intent
	state            SlotMap
	previous         SlotMap
	dialogueState    State
	correctionTarget Slot
	lastCorrected    Slot
	log              *slog.Logger
}

// NewTracker creates a tracker in the START state.
func NewTracker(templates *Templates, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	t := &Tracker{templates: templates, log: log}
	t.Reset()
	return t
}

// Reset returns the tracker to its initial state.
func (t *Tracker) Reset() {
	t.intent = IntentNone
	t.state = t.templates.InitialState.Clone()
	t.previous = nil
	t.dialogueState = StateStart
	t.correctionTarget = ""
	t.lastCorrected = ""
}

// Intent returns the current scene intent.
func (t *Tracker) Intent() Intent { return t.intent }

// DialogueState returns the current machine state.
func (t *Tracker) DialogueState() State { return t.dialogueState }

// SetDialogueState forces the machine state; used by the orchestrator when a
// confirmation prompt has been issued.
func (t *Tracker) SetDialogueState(s State) {
	t.dialogueState = s
}

// SetCorrectionTarget marks a slot for re-elicitation and enters CORRECTION.
func (t *Tracker) SetCorrectionTarget(slot Slot) {
	t.correctionTarget = slot
	t.dialogueState = StateCorrection
	t.log.Info("correction target set", "slot", string(slot))
}

// CanTransitionTo reports whether an incoming intent is admissible from the
// current state: global intents always, local intents only while a
// confirmation is pending.
func (t *Tracker) CanTransitionTo(intent Intent) bool {
	if intent.IsGlobal() {
		return true
	}
	if intent.IsLocal() {
		return t.dialogueState == StateWaitingConfirmation
	}
	return false
}

// MissingSlots returns the unfilled required slots; during a correction the
// correction target is the only missing slot.
func (t *Tracker) MissingSlots() []Slot {
	if t.dialogueState == StateCorrection && t.correctionTarget != "" {
		return []Slot{t.correctionTarget}
	}
	var missing []Slot
	for _, slot := range t.templates.RequiredSlots(t.intent) {
		if t.state[slot] == "" {
			missing = append(missing, slot)
		}
	}
	return missing
}

// UpdatedSlots returns the slots whose value changed on the last update.
func (t *Tracker) UpdatedSlots() []Slot {
	var updated []Slot
	for _, slot := range AllSlots {
		value := t.state[slot]
		if value == "" {
			continue
		}
		if t.previous == nil || value != t.previous[slot] {
			updated = append(updated, slot)
		}
	}
	return updated
}

// FillSlots merges non-empty values without running a state transition.
// Used by the orchestrator to back-fill optional slots from the reservation
// backend before a confirmation prompt.
func (t *Tracker) FillSlots(slots SlotMap) {
	t.mergeSlots(slots)
}

// mergeSlots merges non-empty values only; a filled slot is never cleared by
// an empty NLU value.
func (t *Tracker) mergeSlots(slots SlotMap) {
	for slot, value := range slots {
		if value != "" {
			t.state[slot] = value
		}
	}
}

// routingResult classifies the intent carried by one turn.
type routingResult int

const (
	routeNoIntent routingResult = iota
	routeIntentChanged
	routeIntentUnchanged
	routeConfirm
	routeChange
	routeCancel
	routeYes
	routeNo
)

func (t *Tracker) routeIntent(intent Intent) routingResult {
	if intent == IntentNone {
		return routeNoIntent
	}

	if t.dialogueState == StateWaitingConfirmation {
		switch intent {
		case IntentConfirm:
			return routeConfirm
		case IntentChange:
			return routeChange
		case IntentCancel:
			return routeCancel
		case IntentYes:
			return routeYes
		case IntentNo:
			return routeNo
		}
	}

	if intent.IsGlobal() && intent != t.intent {
		t.log.Info("intent changed", "from", string(t.intent), "to", string(intent))
		t.intent = intent
		return routeIntentChanged
	}
	return routeIntentUnchanged
}

// UpdateState applies one committed turn. Slot merge happens before intent
// routing, so a turn that both switches intent and supplies values lands the
// values in the new scene.
func (t *Tracker) UpdateState(n NLUResult) State {
	t.previous = t.state.Clone()
	t.mergeSlots(n.Slots)

	route := t.routeIntent(n.Intent)

	if t.dialogueState == StateWaitingConfirmation {
		switch route {
		case routeConfirm:
			t.dialogueState = StateComplete
			return t.dialogueState
		case routeYes:
			// YES resolves a pending cancellation the same way CONFIRM does.
			t.dialogueState = StateComplete
			return t.dialogueState
		case routeChange:
			t.dialogueState = StateCorrection
			return t.dialogueState
		case routeCancel:
			t.dialogueState = StateCancelled
			return t.dialogueState
		case routeNo:
			// Revoked confirmation: stay put, await a new instruction.
			return t.dialogueState
		}
		if route == routeNoIntent || route == routeIntentUnchanged {
			// Slot-like utterances during confirmation are corrections.
			if target := t.correctionCandidate(n); target != "" {
				t.SetCorrectionTarget(target)
				return t.dialogueState
			}
			t.dialogueState = StateError
			return t.dialogueState
		}
	}

	if t.dialogueState == StateCorrection {
		if t.correctionTarget == "" {
			// CHANGE without a named item: wait for the caller to name one.
			if target := t.correctionCandidate(n); target != "" {
				t.correctionTarget = target
			}
		}
		if t.correctionTarget != "" && t.state[t.correctionTarget] != "" && n.Slots[t.correctionTarget] != "" {
			t.dialogueState = StateWaitingConfirmation
			t.lastCorrected = t.correctionTarget
			t.correctionTarget = ""
		}
		return t.dialogueState
	}

	switch route {
	case routeIntentChanged:
		t.dialogueState = StateIntentChanged
	case routeNoIntent:
		if t.intent == IntentNone {
			t.dialogueState = StateError
			return t.dialogueState
		}
		t.applySlotProgress()
	default:
		t.applySlotProgress()
	}
	return t.dialogueState
}

func (t *Tracker) applySlotProgress() {
	if len(t.templates.RequiredSlots(t.intent)) > 0 && len(t.MissingSlots()) == 0 {
		t.dialogueState = StateSlotsFilled
		return
	}
	t.dialogueState = StateContinue
}

// correctionCandidate picks the correction target for a slot-bearing turn
// during confirmation: the first changed slot wins, then the hearing item.
func (t *Tracker) correctionCandidate(n NLUResult) Slot {
	for _, slot := range AllSlots {
		value := n.Slots[slot]
		if value != "" && value != t.previous[slot] {
			return slot
		}
	}
	return n.HearingItem
}

// Snapshot returns an immutable copy of the full tracker state.
func (t *Tracker) Snapshot() Snapshot {
	var prev SlotMap
	if t.previous != nil {
		prev = t.previous.Clone()
	}
	return Snapshot{
		Intent:           t.intent,
		State:            t.state.Clone(),
		PreviousState:    prev,
		DialogueState:    t.dialogueState,
		MissingSlots:     t.MissingSlots(),
		UpdatedSlots:     t.UpdatedSlots(),
		RequiredSlots:    t.templates.RequiredSlots(t.intent),
		OptionalSlots:    t.templates.OptionalSlots(t.intent),
		CorrectionTarget: t.correctionTarget,
		LastCorrected:    t.lastCorrected,
	}
}
