package session

import (
	"strconv"

	"github.com/kaiwa-ai/reserve-gateway/internal/dialogue"
	"github.com/kaiwa-ai/reserve-gateway/internal/reservation"
)

// respond translates the tracker state after a turn into the ordered
// utterance envelope. localIntent is the in-confirmation intent that drove
// the transition, if any.
func (s *Session) respond(snap dialogue.Snapshot, localIntent dialogue.Intent) []string {
	switch snap.DialogueState {
	case dialogue.StateIntentChanged:
		return s.respondIntentChanged(snap)
	case dialogue.StateContinue:
		return s.respondContinue(snap)
	case dialogue.StateSlotsFilled:
		return s.respondSlotsFilled(snap)
	case dialogue.StateWaitingConfirmation:
		return s.respondBackToConfirmation(snap)
	case dialogue.StateCorrection:
		return s.respondCorrection(snap)
	case dialogue.StateComplete:
		return s.respondComplete(snap, localIntent)
	case dialogue.StateCancelled:
		return s.respondCancelled(snap, localIntent)
	case dialogue.StateError:
		return s.respondError()
	}
	return []string{s.nlg.GetFallbackMessage(dialogue.FallbackDefault)}
}

func (s *Session) respondIntentChanged(snap dialogue.Snapshot) []string {
	out := []string{s.nlg.GetSceneInitialResponse(snap.Intent)}

	switch snap.Intent {
	case dialogue.IntentChangeReservation:
		// Changes are handed to staff; the intro says so and the scene ends.
		s.dst.SetDialogueState(dialogue.StateComplete)
		return out
	case dialogue.IntentAskAboutStore:
		s.dst.SetDialogueState(dialogue.StateContinue)
		return out
	}

	if conf := s.nlg.GetImplicitConfirmation(snap.Intent, snap.UpdatedValues()); conf != "" {
		out = append(out, conf)
	}
	if len(snap.MissingSlots) > 0 {
		out = append(out, s.nlg.GetNextQuestion(snap.Intent, snap.MissingSlots[0]))
		return out
	}
	// The intent-opening turn already supplied every slot.
	return append(out, s.confirmationPrompt(snap)...)
}

func (s *Session) respondContinue(snap dialogue.Snapshot) []string {
	var out []string
	if conf := s.nlg.GetImplicitConfirmation(snap.Intent, snap.UpdatedValues()); conf != "" {
		out = append(out, conf)
	}
	if len(snap.MissingSlots) > 0 {
		out = append(out, s.nlg.GetNextQuestion(snap.Intent, snap.MissingSlots[0]))
	}
	return out
}

func (s *Session) respondSlotsFilled(snap dialogue.Snapshot) []string {
	s.backfillFromReservation(snap)
	snap = s.dst.Snapshot()

	var out []string
	if conf := s.nlg.GetImplicitConfirmation(snap.Intent, snap.UpdatedValues()); conf != "" {
		out = append(out, conf)
	}
	return append(out, s.confirmationPrompt(snap)...)
}

// respondBackToConfirmation handles the return from CORRECTION: echo the
// corrected value and re-ask the final confirmation.
func (s *Session) respondBackToConfirmation(snap dialogue.Snapshot) []string {
	updated := snap.UpdatedValues()
	if len(updated) == 0 && snap.LastCorrected != "" {
		// The caller restated the same value; echo it anyway.
		updated = dialogue.SlotMap{snap.LastCorrected: snap.State[snap.LastCorrected]}
	}
	var out []string
	if conf := s.nlg.GetImplicitConfirmation(snap.Intent, updated); conf != "" {
		out = append(out, conf)
	}
	return append(out, s.confirmationPrompt(snap)...)
}

func (s *Session) respondCorrection(snap dialogue.Snapshot) []string {
	if snap.CorrectionTarget != "" {
		return []string{s.nlg.GetCorrectionPrompt(snap.Intent, snap.CorrectionTarget)}
	}
	return []string{dialogue.LabelNewReservationChange}
}

func (s *Session) respondComplete(snap dialogue.Snapshot, localIntent dialogue.Intent) []string {
	var out []string
	if localIntent != dialogue.IntentNone {
		if resp := s.nlg.GetFinalConfirmationResponse(snap.Intent, localIntent); resp != "" {
			out = append(out, resp)
		}
	}

	switch snap.Intent {
	case dialogue.IntentNewReservation:
		s.createReservation(snap)
		out = append(out, s.nlg.GetIntentResponse(snap.Intent, snap.State, "COMPLETE"))
	case dialogue.IntentCancelReservation:
		s.cancelReservation(snap)
		out = append(out, s.nlg.GetIntentResponse(snap.Intent, snap.State, "COMPLETE"))
	case dialogue.IntentConfirmReservation:
		out = append(out, s.nlg.GetIntentResponse(snap.Intent, snap.State, "COMPLETE"))
	}

	return append(out, s.nlg.GetSceneCompleteResponse(snap.Intent))
}

func (s *Session) respondCancelled(snap dialogue.Snapshot, localIntent dialogue.Intent) []string {
	if snap.Intent == dialogue.IntentConfirmReservation {
		// Cancelling a reservation check ends the call with the cancellation
		// scene's closing line.
		return []string{s.nlg.GetSceneCompleteResponse(dialogue.IntentCancelReservation)}
	}
	if localIntent == dialogue.IntentNone {
		localIntent = dialogue.IntentCancel
	}
	var out []string
	if resp := s.nlg.GetFinalConfirmationResponse(snap.Intent, localIntent); resp != "" {
		out = append(out, resp)
	}
	if len(out) == 0 {
		out = append(out, s.nlg.GetSceneCompleteResponse(snap.Intent))
	}
	return out
}

func (s *Session) respondError() []string {
	if s.unrecognizedStreak >= 2 {
		return []string{s.nlg.GetFallbackMessage(dialogue.FallbackInvalidIntent)}
	}
	return []string{s.nlg.GetFallbackMessage(dialogue.FallbackNoIntent)}
}

// confirmationPrompt renders the final confirmation and moves the tracker
// into WAITING_CONFIRMATION. The prompt text joins the barge-in allow-list.
func (s *Session) confirmationPrompt(snap dialogue.Snapshot) []string {
	prompt := s.nlg.GetConfirmationPrompt(snap.Intent, snap.State)
	if prompt == "" {
		return nil
	}
	s.dst.SetDialogueState(dialogue.StateWaitingConfirmation)
	s.allowBargeIn[prompt] = true
	return []string{prompt}
}

// backfillFromReservation fills optional slots for lookup scenes from the
// booking backend so the confirmation prompt can read back a full record.
func (s *Session) backfillFromReservation(snap dialogue.Snapshot) {
	if s.cfg.Reservations == nil {
		return
	}
	if snap.Intent != dialogue.IntentConfirmReservation && snap.Intent != dialogue.IntentCancelReservation {
		return
	}
	rec, ok := s.cfg.Reservations.Find(snap.State[dialogue.SlotName], snap.State[dialogue.SlotDate])
	if !ok {
		return
	}
	s.dst.FillSlots(dialogue.SlotMap{
		dialogue.SlotDate:    rec.Date,
		dialogue.SlotTime:    rec.Time,
		dialogue.SlotPersons: strconv.Itoa(rec.NumPeople),
	})
}

func (s *Session) createReservation(snap dialogue.Snapshot) {
	if s.cfg.Reservations == nil {
		return
	}
	numPeople, _ := strconv.Atoi(snap.State[dialogue.SlotPersons])
	_, status := s.cfg.Reservations.Create(
		snap.State[dialogue.SlotName],
		snap.State[dialogue.SlotDate],
		snap.State[dialogue.SlotTime],
		numPeople,
	)
	if status != reservation.StatusSuccess {
		s.log.Warn("reservation backend rejected booking", "status", string(status))
	}
}

func (s *Session) cancelReservation(snap dialogue.Snapshot) {
	if s.cfg.Reservations == nil {
		return
	}
	status := s.cfg.Reservations.Cancel(snap.State[dialogue.SlotName], snap.State[dialogue.SlotDate])
	if status != reservation.StatusSuccess {
		s.log.Warn("reservation backend cancel failed", "status", string(status))
	}
}
