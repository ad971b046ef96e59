package dialogue

import (
	"strings"
)

// NLG selects response utterances from the template tables. Every method
// returns either a label (resolvable through Templates.Text and the TTS
// cache) or already-formatted text.
type NLG struct {
	templates *Templates
}

// NewNLG creates a generator over the given tables.
func NewNLG(templates *Templates) *NLG {
	return &NLG{templates: templates}
}

// GetSceneInitialResponse returns the scene-opening utterance on
// INTENT_CHANGED.
func (g *NLG) GetSceneInitialResponse(intent Intent) string {
	return g.templates.SceneInitial[intent]
}

// GetSceneCompleteResponse returns the closing utterance for a scene.
func (g *NLG) GetSceneCompleteResponse(intent Intent) string {
	return g.templates.SceneComplete[intent]
}

// GetNextQuestion returns the prompt label for a missing slot.
func (g *NLG) GetNextQuestion(intent Intent, slot Slot) string {
	scene, ok := g.templates.Scenes[intent]
	if !ok {
		return ""
	}
	return scene.Prompts[slot]
}

// GetImplicitConfirmation echoes the just-filled slot values. The multi-slot
// template keyed on the updated slot set wins; a set that includes the name
// is then tried without it; otherwise the first updated slot (in AllSlots
// order) that has a single-slot template is echoed on its own.
func (g *NLG) GetImplicitConfirmation(intent Intent, updated SlotMap) string {
	if len(updated) == 0 {
		return ""
	}
	scene, ok := g.templates.Scenes[intent]
	if !ok {
		return ""
	}

	slots := make([]Slot, 0, len(updated))
	for slot := range updated {
		slots = append(slots, slot)
	}
	if tmpl, ok := scene.ImplicitConfirmation[slotSetKey(slots)]; ok {
		return interpolate(tmpl, updated)
	}
	// A set containing the name falls back to the date/time/persons subset;
	// the name is confirmed by the completion response anyway.
	if _, hasName := updated[SlotName]; hasName && len(updated) > 1 {
		subset := updated.Clone()
		delete(subset, SlotName)
		keys := make([]Slot, 0, len(subset))
		for slot := range subset {
			keys = append(keys, slot)
		}
		if tmpl, ok := scene.ImplicitConfirmation[slotSetKey(keys)]; ok {
			return interpolate(tmpl, subset)
		}
	}
	for _, slot := range AllSlots {
		if _, changed := updated[slot]; !changed {
			continue
		}
		if tmpl, ok := scene.ImplicitConfirmation[SlotSetKey(slot)]; ok {
			return interpolate(tmpl, SlotMap{slot: updated[slot]})
		}
	}
	return ""
}

// GetConfirmationPrompt returns the final confirmation question on
// SLOTS_FILLED.
func (g *NLG) GetConfirmationPrompt(intent Intent, state SlotMap) string {
	scene, ok := g.templates.Scenes[intent]
	if !ok || scene.FinalConfirmationPrompt == "" {
		return ""
	}
	return interpolate(scene.FinalConfirmationPrompt, state)
}

// GetFinalConfirmationResponse returns the utterance for the local intent
// that resolved the confirmation (CONFIRM, CANCEL, CHANGE, YES).
func (g *NLG) GetFinalConfirmationResponse(intent, local Intent) string {
	scene, ok := g.templates.Scenes[intent]
	if !ok {
		return ""
	}
	return scene.FinalConfirmationResponses[local]
}

// GetCorrectionPrompt returns the re-elicitation prompt for a slot.
func (g *NLG) GetCorrectionPrompt(intent Intent, slot Slot) string {
	scene, ok := g.templates.Scenes[intent]
	if !ok {
		return ""
	}
	return scene.Correction[slot]
}

// GetIntentResponse interpolates a scene response of the given kind
// (COMPLETE, NOT_FOUND, FOUND) with the current state.
func (g *NLG) GetIntentResponse(intent Intent, state SlotMap, kind string) string {
	scene, ok := g.templates.Scenes[intent]
	if !ok {
		return ""
	}
	tmpl, ok := scene.Responses[kind]
	if !ok {
		return ""
	}
	return interpolate(tmpl, state)
}

// GetFallbackMessage returns the fallback label for an error kind.
func (g *NLG) GetFallbackMessage(kind FallbackKind) string {
	if label, ok := g.templates.Fallback[kind]; ok {
		return label
	}
	return g.templates.Fallback[FallbackDefault]
}

// interpolate substitutes {slot} placeholders with inverse-normalized values.
func interpolate(tmpl string, values SlotMap) string {
	out := tmpl
	for slot, value := range values {
		out = strings.ReplaceAll(out, "{"+string(slot)+"}", InverseNormalize(slot, value))
	}
	return out
}
