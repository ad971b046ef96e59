package session

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kaiwa-ai/reserve-gateway/internal/asr"
	"github.com/kaiwa-ai/reserve-gateway/internal/audio"
	"github.com/kaiwa-ai/reserve-gateway/internal/carrier"
	"github.com/kaiwa-ai/reserve-gateway/internal/convlog"
	"github.com/kaiwa-ai/reserve-gateway/internal/dialogue"
	"github.com/kaiwa-ai/reserve-gateway/internal/llm"
	"github.com/kaiwa-ai/reserve-gateway/internal/metrics"
	"github.com/kaiwa-ai/reserve-gateway/internal/nlu"
	"github.com/kaiwa-ai/reserve-gateway/internal/reservation"
	"github.com/kaiwa-ai/reserve-gateway/internal/tts"
)

const (
	inboundFrameBuffer = 64
	outboundBuffer     = 16
)

// Transport is the carrier connection surface the session drives.
type Transport interface {
	ReadFrame() (carrier.Frame, error)
	WriteFrame(carrier.Frame) error
	Close() error
}

// Config wires the per-call components into a session.
type Config struct {
	Templates    *dialogue.Templates
	Patterns     *dialogue.IntentPatterns
	Analyzer     *nlu.Analyzer
	LLM          *llm.Client // nil disables LLM intent/FAQ routing
	ASRVendor    asr.Vendor
	ASRConfig    asr.Config
	TTS          *tts.Bridge
	VADConfig    audio.VADConfig
	Reservations reservation.Manager
	LogStore     *convlog.Store
	Subdomain    string
	Project      string
	CallerPhone  string
	Options      Options
	Log          *slog.Logger
}

// Session runs one call: it owns the workers, the dialogue state tracker,
// and the bot_speaking flag. All state transitions happen on the
// orchestrator goroutine; every other worker communicates over channels.
type Session struct {
	cfg  Config
	conn Transport
	log  *slog.Logger

	dst      *dialogue.Tracker
	nlg      *dialogue.NLG
	detector *Detector

	runCtx    context.Context
	cancel    context.CancelFunc
	asrClient *asr.Client

	streamSid      string
	callSid        string
	conversationID string
	startedAt      time.Time

	botSpeaking  atomic.Bool
	playingLabel string
	allowBargeIn map[string]bool

	outbound chan carrier.Frame
	convLog  *convlog.Logger

	unrecognizedStreak int
	backchannelSent    bool
	finishSent         bool
	finishRequested    atomic.Bool
	started            bool
}

// New creates a session over an accepted carrier connection.
func New(cfg Config, conn Transport) *Session {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	s := &Session{
		cfg:      cfg,
		conn:     conn,
		log:      log,
		nlg:      dialogue.NewNLG(cfg.Templates),
		dst:      dialogue.NewTracker(cfg.Templates, log),
		detector: NewDetector(cfg.VADConfig, cfg.Analyzer),
		outbound: make(chan carrier.Frame, outboundBuffer),
		allowBargeIn: map[string]bool{
			dialogue.LabelDate1:    true,
			dialogue.LabelTime1:    true,
			dialogue.LabelNPerson1: true,
			dialogue.LabelName1:    true,
		},
	}
	return s
}

// ConversationID returns the identifier derived from the carrier call SID.
// Empty until the start event arrives.
func (s *Session) ConversationID() string { return s.conversationID }

// Run drives the session until the carrier stops, either side closes, or
// the dialogue completes and the audio queue drains.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.runCtx = ctx
	s.cancel = cancel
	defer cancel()

	metrics.CallsActive.Inc()
	metrics.CallsTotal.Inc()
	defer metrics.CallsActive.Dec()

	frames := make(chan carrier.Frame, inboundFrameBuffer)

	g, gctx := errgroup.WithContext(ctx)

	// Closing the connection on cancellation unblocks the reader; a blocked
	// ReadFrame would otherwise stall shutdown forever.
	go func() {
		<-gctx.Done()
		s.conn.Close()
	}()

	g.Go(func() error {
		defer close(frames)
		for {
			frame, err := s.conn.ReadFrame()
			if err != nil {
				// CarrierClosed: orderly shutdown, no error surfaced.
				s.log.Info("carrier connection closed", "error", err)
				return nil
			}
			select {
			case frames <- frame:
			case <-gctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		err := s.cfg.TTS.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		s.writeLoop(gctx)
		return nil
	})

	g.Go(func() error {
		s.orchestrate(gctx, frames)
		return nil
	})

	err := g.Wait()
	s.teardown()
	return err
}

// writeLoop is the sole WebSocket writer. On shutdown it flushes remaining
// frames only when a finish was requested.
func (s *Session) writeLoop(ctx context.Context) {
	for {
		select {
		case frame := <-s.outbound:
			if err := s.conn.WriteFrame(frame); err != nil {
				// TtsWrite policy: drop the envelope, keep the dialogue alive.
				s.log.Warn("carrier write failed", "event", frame.Event, "error", err)
				metrics.Errors.WithLabelValues("writer", string(ErrTtsWrite)).Inc()
			}
		case <-ctx.Done():
			if s.finishRequested.Load() {
				s.flushOutbound()
			}
			return
		}
	}
}

func (s *Session) flushOutbound() {
	for {
		select {
		case frame := <-s.outbound:
			if err := s.conn.WriteFrame(frame); err != nil {
				return
			}
		default:
			return
		}
	}
}

// orchestrate is the single consumer of inbound frames and the sole writer
// of the tracker and bot_speaking.
func (s *Session) orchestrate(ctx context.Context, frames <-chan carrier.Frame) {
	defer s.cancel()
	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if done := s.handleFrame(ctx, frame); done {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// handleFrame dispatches one carrier frame; returns true to shut down.
func (s *Session) handleFrame(ctx context.Context, frame carrier.Frame) bool {
	switch frame.Event {
	case carrier.EventConnected:
		// Acknowledged then discarded.
		return false
	case carrier.EventStart:
		s.handleStart(ctx, frame.Start)
	case carrier.EventMedia:
		if s.started && frame.Media != nil {
			s.handleMedia(ctx, frame.Media.Payload)
		}
	case carrier.EventMark:
		if frame.Mark != nil && frame.Mark.Name == carrier.MarkFinish {
			return true
		}
		if frame.Mark != nil && frame.Mark.Name == carrier.MarkContinue {
			s.handleMarkContinue()
		}
	case carrier.EventStop:
		return true
	}
	return false
}

func (s *Session) handleStart(ctx context.Context, start *carrier.StartInfo) {
	if start == nil || s.started {
		return
	}
	s.started = true
	s.streamSid = start.StreamSid
	s.callSid = start.CallSid
	s.conversationID = convlog.ConversationID(start.CallSid)
	s.startedAt = time.Now()
	s.log = s.log.With("conversation_id", s.conversationID)
	s.dst = dialogue.NewTracker(s.cfg.Templates, s.log)

	s.log.Info("call started", "stream_sid", s.streamSid, "call_sid", s.callSid)

	if s.cfg.LogStore != nil {
		storagePath := convlog.StoragePath(s.cfg.Subdomain, s.cfg.Project, s.cfg.CallerPhone, s.conversationID)
		s.convLog = convlog.NewLogger(s.cfg.LogStore, s.conversationID, storagePath, s.startedAt, s.log)
	}

	s.startASR(ctx)

	s.enqueueResponses([]string{dialogue.LabelInitial, dialogue.LabelSelect})
}

func (s *Session) handleMedia(ctx context.Context, payload string) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		s.log.Warn("bad media payload", "error", err)
		return
	}
	metrics.AudioFrames.Inc()

	samples := audio.DecodeUlaw(data)
	s.detector.VADStep(samples)
	s.asrClient.Push(data)

	update := s.asrClient.Snapshot()
	s.detector.NLUStep(update.Transcript)

	switch s.turnStatus() {
	case StatusEndOfTurn:
		s.handleEndOfTurn(ctx)
	case StatusBackchannel:
		s.handleBackchannel()
	}

	s.afterFrame()
}

// turnStatus applies the configured turn-taking mode.
func (s *Session) turnStatus() TurnTakingStatus {
	asrEnded := s.asrClient.Ended()
	if s.cfg.Options.TurnTaking == TurnTakingASRStability {
		if asrEnded {
			return StatusEndOfTurn
		}
		return StatusContinue
	}
	return s.detector.Status(asrEnded)
}

func (s *Session) handleBackchannel() {
	if !s.cfg.Options.Backchannel || s.backchannelSent || s.botSpeaking.Load() {
		return
	}
	s.backchannelSent = true
	s.enqueueResponses([]string{dialogue.LabelFiller})
}

func (s *Session) handleEndOfTurn(ctx context.Context) {
	if s.botSpeaking.Load() {
		// The caller is hearing bot audio; anything transcribed is echo.
		s.asrClient.Reset()
		return
	}

	transcript := strings.TrimSpace(s.detector.Transcript())
	failed := s.asrClient.Failed()
	if transcript == "" {
		if failed {
			// AsrFatal: treat the turn as empty and apologize.
			metrics.Errors.WithLabelValues("asr", string(ErrAsrFatal)).Inc()
			s.enqueueResponses([]string{dialogue.LabelApologize})
		}
		s.nextTurn(ctx)
		return
	}

	s.log.Info("customer utterance", "transcript", transcript)
	start := time.Now()
	s.handleTurn(ctx, transcript, s.detector.Result())
	metrics.TurnDuration.Observe(time.Since(start).Seconds())

	s.nextTurn(ctx)
}

// nextTurn terminates the current ASR client, starts a fresh one, and
// clears the per-turn detector state.
func (s *Session) nextTurn(ctx context.Context) {
	s.asrClient.Terminate()
	s.startASR(ctx)
	s.detector.Reset()
	s.backchannelSent = false
}

func (s *Session) startASR(ctx context.Context) {
	s.asrClient = asr.NewClient(s.cfg.ASRVendor, s.cfg.ASRConfig, s.botSpeaking.Load, s.log)
	s.asrClient.Start(ctx)
}

// handleTurn runs NLU → DST → NLG → TTS in program order.
func (s *Session) handleTurn(ctx context.Context, transcript string, res nlu.Result) {
	metrics.TurnsTotal.Inc()

	intent := s.classifyIntent(ctx, transcript)

	// A slot-bearing opening turn with no recognizable intent starts the
	// default reservation scene.
	if intent == dialogue.IntentNone && s.dst.Intent() == dialogue.IntentNone && res.GotEntity {
		intent = dialogue.IntentNewReservation
	}

	if s.isFAQTurn(intent, res, transcript) {
		s.handleFAQ(ctx, transcript)
		return
	}

	localIntent := dialogue.IntentNone
	if intent.IsLocal() {
		localIntent = intent
	}

	prevState := s.dst.DialogueState()
	newState := s.dst.UpdateState(dialogue.NLUResult{
		Intent:      intent,
		Slots:       res.SlotStates,
		HearingItem: res.HearingItem,
	})

	if newState == dialogue.StateError {
		s.unrecognizedStreak++
		metrics.Errors.WithLabelValues("dst", string(ErrIntentUnknown)).Inc()
	} else {
		s.unrecognizedStreak = 0
	}

	responses := s.respond(s.dst.Snapshot(), localIntent)

	if newState == dialogue.StateError {
		// After the fallback the conversation resumes where it was; a pending
		// confirmation stays pending.
		s.dst.SetDialogueState(prevState)
	}

	snap := s.dst.Snapshot()
	s.convLog.Customer(transcript, &snap)
	s.enqueueResponses(responses)
}

// classifyIntent routes to the LLM when the rule layer cannot decide,
// mirroring when a scene boundary may be crossed.
func (s *Session) classifyIntent(ctx context.Context, transcript string) dialogue.Intent {
	if intent := s.ruleIntent(transcript); intent != dialogue.IntentNone {
		return intent
	}
	if s.cfg.LLM == nil || s.cfg.Patterns == nil || !s.needClassification() {
		return dialogue.IntentNone
	}
	labels := s.cfg.Patterns.LabelsFor(s.dst.DialogueState(), s.dst.Intent())
	intent, kind := s.cfg.LLM.ClassifyIntent(ctx, transcript, labels)
	if kind != llm.ResultOk || intent == dialogue.IntentOther {
		return dialogue.IntentNone
	}
	if !s.dst.CanTransitionTo(intent) {
		return dialogue.IntentNone
	}
	return intent
}

// needClassification mirrors the scene-boundary rule: classification runs
// when no scene is active or while a confirmation can change the scene.
func (s *Session) needClassification() bool {
	if s.dst.Intent() == dialogue.IntentNone {
		return true
	}
	state := s.dst.DialogueState()
	return state == dialogue.StateStart || state == dialogue.StateWaitingConfirmation
}

// ruleIntent is the deterministic keyword layer in front of the LLM.
func (s *Session) ruleIntent(transcript string) dialogue.Intent {
	inConfirmation := s.dst.DialogueState() == dialogue.StateWaitingConfirmation

	if inConfirmation {
		cancelScene := s.dst.Intent() == dialogue.IntentCancelReservation
		switch {
		case strings.Contains(transcript, "はい"), strings.Contains(transcript, "お願いします"),
			strings.Contains(transcript, "大丈夫"), strings.Contains(transcript, "確定"):
			if cancelScene {
				return dialogue.IntentYes
			}
			return dialogue.IntentConfirm
		case strings.Contains(transcript, "やめます"), strings.Contains(transcript, "キャンセル"),
			strings.Contains(transcript, "取り消し"):
			if cancelScene {
				return dialogue.IntentNo
			}
			return dialogue.IntentCancel
		case strings.Contains(transcript, "変更"), strings.Contains(transcript, "修正"),
			strings.Contains(transcript, "違います"):
			return dialogue.IntentChange
		case strings.Contains(transcript, "いいえ"):
			return dialogue.IntentNo
		}
		return dialogue.IntentNone
	}

	hasReservationWord := strings.Contains(transcript, "予約")
	switch {
	case hasReservationWord && (strings.Contains(transcript, "キャンセル") || strings.Contains(transcript, "取り消し")):
		return dialogue.IntentCancelReservation
	case hasReservationWord && (strings.Contains(transcript, "変更") || strings.Contains(transcript, "修正")):
		return dialogue.IntentChangeReservation
	case hasReservationWord && strings.Contains(transcript, "確認"):
		return dialogue.IntentConfirmReservation
	case hasReservationWord && s.dst.Intent() == dialogue.IntentNone:
		return dialogue.IntentNewReservation
	}
	return dialogue.IntentNone
}

// isFAQTurn: no extractable slots, no intent, and not a yes/no.
func (s *Session) isFAQTurn(intent dialogue.Intent, res nlu.Result, transcript string) bool {
	if intent != dialogue.IntentNone || res.GotEntity || res.HearingItem != "" {
		return false
	}
	if isYesNo(transcript) {
		return false
	}
	return s.cfg.LLM != nil
}

func isYesNo(transcript string) bool {
	return strings.Contains(transcript, "はい") || strings.Contains(transcript, "いいえ")
}

// handleFAQ plays a filler while the LLM answers from the knowledge list.
func (s *Session) handleFAQ(ctx context.Context, transcript string) {
	s.enqueueResponses([]string{dialogue.LabelFiller})

	answer, kind := s.cfg.LLM.AnswerFAQ(ctx, transcript)
	if kind != llm.ResultOk || answer == "" {
		// LlmTimeout and LlmEmpty collapse into the same apology.
		s.enqueueResponses([]string{dialogue.LabelApologize})
		return
	}

	responses := []string{answer}
	snap := s.dst.Snapshot()
	switch {
	case len(snap.MissingSlots) > 0:
		responses = append(responses, s.nlg.GetNextQuestion(snap.Intent, snap.MissingSlots[0]))
	case snap.Intent == dialogue.IntentAskAboutStore || snap.Intent == dialogue.IntentNone:
		responses = append(responses, s.nlg.GetSceneCompleteResponse(dialogue.IntentAskAboutStore))
	}

	s.convLog.Customer(transcript, &snap)
	s.enqueueResponses(responses)
}

func (s *Session) enqueueResponses(responses []string) {
	for _, r := range responses {
		if r == "" {
			continue
		}
		if !s.cfg.TTS.AddResponse(r) {
			s.log.Warn("tts queue full, dropping response", "response", r)
		}
	}
}

// afterFrame drains at most one synthesized envelope to the carrier, then
// applies barge-in.
func (s *Session) afterFrame() {
	select {
	case env := <-s.cfg.TTS.Ready():
		s.botSpeaking.Store(true)
		s.playingLabel = env.Label
		text := s.cfg.Templates.Text(env.Label)
		s.log.Info("bot utterance", "label", env.Label)
		s.convLog.Bot(text, nil)
		s.send(carrier.MediaFrame(s.streamSid, env.Payload))
		s.send(carrier.MarkFrame(s.streamSid, carrier.MarkContinue))
	default:
	}

	s.maybeBargeIn()
}

// maybeBargeIn interrupts bot playback when the caller has been speaking
// over an interruptible utterance.
func (s *Session) maybeBargeIn() {
	if s.cfg.Options.BargeIn != BargeInConfirmationOnly || !s.botSpeaking.Load() {
		return
	}
	if !s.bargeInAllowed() {
		return
	}
	if s.detector.SpeechChunks() < s.cfg.Options.BargeInThreshold {
		return
	}

	s.log.Info("barge-in detected", "label", s.playingLabel)
	metrics.BargeIns.Inc()
	s.send(carrier.ClearFrame(s.streamSid))
	s.botSpeaking.Store(false)
	s.playingLabel = ""
	s.detector.Reset()
	if s.asrClient != nil {
		s.asrClient.Reset()
	}
}

// bargeInAllowed: only while a confirmation utterance plays or a
// confirmation is pending.
func (s *Session) bargeInAllowed() bool {
	if s.allowBargeIn[s.playingLabel] {
		return true
	}
	return s.dst.DialogueState() == dialogue.StateWaitingConfirmation
}

// handleMarkContinue acknowledges the carrier finishing one utterance.
func (s *Session) handleMarkContinue() {
	s.botSpeaking.Store(false)
	s.playingLabel = ""

	if s.dst.DialogueState().Terminal() && s.cfg.TTS.IsEmpty() && !s.finishSent {
		s.finishSent = true
		s.finishRequested.Store(true)
		s.send(carrier.MarkFrame(s.streamSid, carrier.MarkFinish))
	}
}

func (s *Session) send(frame carrier.Frame) {
	select {
	case s.outbound <- frame:
	case <-s.runCtx.Done():
	}
}

func (s *Session) teardown() {
	if s.asrClient != nil {
		s.asrClient.Terminate()
	}
	s.convLog.Close()
	s.conn.Close()
	if s.started {
		s.log.Info("call ended", "duration", time.Since(s.startedAt).String())
	}
}
