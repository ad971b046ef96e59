package dialogue

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed patterns/intents.json
var patternFS embed.FS

// IntentPatterns holds the example phrases shown to the LLM intent
// classifier. The label set is context-dependent: global intents from any
// state, per-scene local intents inside WAITING_CONFIRMATION.
type IntentPatterns struct {
	GlobalIntents       map[Intent][]string            `json:"global_intents"`
	ConfirmationIntents map[Intent]map[Intent][]string `json:"confirmation_intents"`
}

// LoadIntentPatterns reads the pattern file at path, falling back to the
// embedded defaults when path is empty.
func LoadIntentPatterns(path string) (*IntentPatterns, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = patternFS.ReadFile("patterns/intents.json")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read intent patterns: %w", err)
	}

	var p IntentPatterns
	if err = json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse intent patterns: %w", err)
	}
	return &p, nil
}

// LabelsFor returns the candidate label set for the current dialogue
// position: inside a confirmation the scene's local intents, otherwise the
// global intents.
func (p *IntentPatterns) LabelsFor(state State, intent Intent) map[Intent][]string {
	if state == StateWaitingConfirmation {
		if local, ok := p.ConfirmationIntents[intent]; ok {
			return local
		}
	}
	return p.GlobalIntents
}
