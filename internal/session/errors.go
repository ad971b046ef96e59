package session

// ErrorKind names the failure classes the session maps worker errors into.
// Nothing propagates out of a worker without being classified as one of
// these; the orchestrator always either advances the tracker or emits a
// fallback utterance.
type ErrorKind string

const (
	ErrAsrTransient  ErrorKind = "AsrTransient"
	ErrAsrFatal      ErrorKind = "AsrFatal"
	ErrTtsSynth      ErrorKind = "TtsSynth"
	ErrTtsWrite      ErrorKind = "TtsWrite"
	ErrLlmTimeout    ErrorKind = "LlmTimeout"
	ErrLlmEmpty      ErrorKind = "LlmEmpty"
	ErrNluMalformed  ErrorKind = "NluMalformed"
	ErrIntentUnknown ErrorKind = "IntentUnknown"
	ErrCarrierClosed ErrorKind = "CarrierClosed"
	ErrLoggerIo      ErrorKind = "LoggerIo"
)
