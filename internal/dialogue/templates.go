package dialogue

import (
	"sort"
	"strings"
)

// Label identifies a pre-written utterance. Labels double as TTS cache keys;
// anything without an entry in the label→text map is treated as literal text.
type Label = string

const (
	LabelSelect    Label = "SELECT"
	LabelInitial   Label = "INITIAL"
	LabelFiller    Label = "FILLER"
	LabelApologize Label = "APOLOGIZE"

	LabelDate1    Label = "DATE_1"
	LabelTime1    Label = "TIME_1"
	LabelNPerson1 Label = "N_PERSON_1"
	LabelName1    Label = "NAME_1"

	LabelDate2    Label = "DATE_2"
	LabelTime2    Label = "TIME_2"
	LabelNPerson2 Label = "N_PERSON_2"
	LabelName2    Label = "NAME_2"

	LabelNewReservationIntro    Label = "NEW_RESERVATION_INTRO"
	LabelNewReservationComplete Label = "NEW_RESERVATION_COMPLETE"
	LabelNewReservationCancel   Label = "NEW_RESERVATION_CANCEL"
	LabelNewReservationChange   Label = "NEW_RESERVATION_CHANGE"

	LabelConfirmReservationIntro    Label = "CONFIRM_RESERVATION_INTRO"
	LabelConfirmReservationComplete Label = "CONFIRM_RESERVATION_COMPLETE"
	LabelConfirmReservationName     Label = "CONFIRM_RESERVATION_NAME"
	LabelConfirmReservationDate     Label = "CONFIRM_RESERVATION_DATE"
	LabelConfirmReservationConfirm  Label = "CONFIRM_RESERVATION_CONFIRM"
	LabelConfirmReservationCancel   Label = "CONFIRM_RESERVATION_CANCEL"

	LabelCancelReservationIntro    Label = "CANCEL_RESERVATION_INTRO"
	LabelCancelReservationComplete Label = "CANCEL_RESERVATION_COMPLETE"
	LabelCancelReservationConfirm  Label = "CANCEL_RESERVATION_CONFIRM"
	LabelCancelReservationCancel   Label = "CANCEL_RESERVATION_CANCEL"
	LabelCancelReservationName     Label = "CANCEL_RESERVATION_NAME"

	LabelStoreInfoIntro    Label = "STORE_INFO_INTRO"
	LabelStoreInfoComplete Label = "STORE_INFO_COMPLETE"
	LabelStoreInfoNotFound Label = "STORE_INFO_NOT_FOUND"

	LabelChangeReservationIntro Label = "CHANGE_RESERVATION_INTRO"

	LabelFallbackInvalidIntent     Label = "FALLBACK_INVALID_INTENT"
	LabelFallbackNoIntent          Label = "FALLBACK_NO_INTENT"
	LabelFallbackConversationError Label = "FALLBACK_CONVERSATION_ERROR"
	LabelFallbackDefault           Label = "FALLBACK_DEFAULT"

	LabelAskOtherQuestions Label = "ASK_OTHER_QUESTIONS"
	LabelThanksForQuestion Label = "THANKS_FOR_QUESTION"
)

// FallbackKind selects the fallback utterance on an ERROR transition.
type FallbackKind string

const (
	FallbackInvalidIntent     FallbackKind = "INVALID_INTENT"
	FallbackNoIntent          FallbackKind = "NO_INTENT"
	FallbackConversationError FallbackKind = "CONVERSATION_ERROR"
	FallbackDefault           FallbackKind = "DEFAULT"
)

// Scene holds the per-intent slot requirements and response templates.
type Scene struct {
	RequiredSlots []Slot
	OptionalSlots []Slot
	Prompts       map[Slot]Label
	// Responses by kind: COMPLETE, NOT_FOUND, FOUND. Values are templates
	// interpolated with {slot} placeholders.
	Responses map[string]string
	// ImplicitConfirmation keyed by slotSetKey of the updated slots.
	ImplicitConfirmation map[string]string
	// FinalConfirmationPrompt is a template or a label.
	FinalConfirmationPrompt string
	// FinalConfirmationResponses keyed by the local intent that resolved
	// the confirmation.
	FinalConfirmationResponses map[Intent]Label
	Correction                 map[Slot]Label
}

// Templates is the process-global, read-only response table set.
type Templates struct {
	LabelText     map[Label]string
	Scenes        map[Intent]*Scene
	Fallback      map[FallbackKind]Label
	SceneInitial  map[Intent]Label
	SceneComplete map[Intent]Label
	InitialState  SlotMap
}

// slotSetKey canonicalizes a slot set for implicit-confirmation lookup.
func slotSetKey(slots []Slot) string {
	names := make([]string, len(slots))
	for i, s := range slots {
		names[i] = string(s)
	}
	sort.Strings(names)
	return strings.Join(names, "+")
}

// SlotSetKey builds the lookup key for a slot combination.
func SlotSetKey(slots ...Slot) string {
	return slotSetKey(slots)
}

// DefaultTemplates returns the built-in restaurant reservation table set.
func DefaultTemplates() *Templates {
	return &Templates{
		LabelText: map[Label]string{
			LabelSelect:    "ご用件をお話しください。",
			LabelInitial:   "お電話ありがとうございます。SHIFT渋谷店です。",
			LabelFiller:    "確認いたします",
			LabelApologize: "申し訳ございません、うまく聞き取れませんでした",

			LabelDate1:    "ご希望の日付をお伺いしてもよろしいでしょうか？",
			LabelTime1:    "ご希望の時間をお伺いしてもよろしいでしょうか？",
			LabelNPerson1: "ご来店人数をお伺いしてもよろしいでしょうか？",
			LabelName1:    "ご来店される代表者のお名前をお伺いしてもよろしいでしょうか？",

			LabelDate2:    "ご希望の日付を改めてお伺いいたします。",
			LabelTime2:    "ご希望の時間を改めてお伺いいたします。",
			LabelNPerson2: "ご来店人数を改めてお伺いいたします。",
			LabelName2:    "代表者のお名前を改めてお伺いいたします。",

			LabelNewReservationIntro:    "ご予約ですね。承知いたしました。",
			LabelNewReservationComplete: "ご予約ありがとうございました。当日のご来店をお待ちしております。",
			LabelNewReservationCancel:   "新規のご予約をキャンセルいたします。またのご利用をお待ちしております。",
			LabelNewReservationChange:   "日付、時間、人数、名前、どの項目を変更しますか？",

			LabelConfirmReservationIntro:    "ご予約の確認ですね。",
			LabelConfirmReservationComplete: "ご予約内容のご確認は以上です。",
			LabelConfirmReservationName:     "ご予約者のお名前をお伺いできますでしょうか？",
			LabelConfirmReservationDate:     "ご予約の日付は分かりますでしょうか？",
			LabelConfirmReservationConfirm:  "ご予約内容を確認いたしました。当日のご来店を心よりお待ちしております。",
			LabelConfirmReservationCancel:   "申し訳ございません。もう一度最初から予約内容の確認をさせていただきます。",

			LabelCancelReservationIntro:    "ご予約のキャンセルですね。",
			LabelCancelReservationComplete: "ご予約のキャンセルが完了いたしました。またのご利用をお待ちしております。",
			LabelCancelReservationConfirm:  "ご予約をキャンセルいたしました。またのご利用をお待ちしております。",
			LabelCancelReservationCancel:   "かしこまりました。ご来店お待ちしております。",
			LabelCancelReservationName:     "ご予約いただいたお名前をお伺いできますでしょうか？",

			LabelStoreInfoIntro:    "店舗についてのご質問ですね。",
			LabelStoreInfoComplete: "またのご利用をお待ちしております。",
			LabelStoreInfoNotFound: "申し訳ございませんが、その件についてはお手伝いできる情報がありません。何か他にご質問はございますか？",

			LabelChangeReservationIntro: "ご予約の変更は店舗スタッフが承ります。ただいま店舗へお繋ぎいたしますので、少々お待ちください。",

			LabelFallbackInvalidIntent:     "申し訳ございません。ご要件を理解できませんでした。",
			LabelFallbackNoIntent:          "申し訳ございません。もう一度ご要件をお聞かせください。",
			LabelFallbackConversationError: "申し訳ございません。対応できない状況が発生しました。",
			LabelFallbackDefault:           "申し訳ございません。もう一度お話しいただけますか？",

			LabelAskOtherQuestions: "他にご用件はございますか？",
			LabelThanksForQuestion: "ご質問ありがとうございます。",
		},
		Scenes: map[Intent]*Scene{
			IntentNewReservation: {
				RequiredSlots: []Slot{SlotDate, SlotTime, SlotPersons, SlotName},
				Prompts: map[Slot]Label{
					SlotDate:    LabelDate1,
					SlotTime:    LabelTime1,
					SlotPersons: LabelNPerson1,
					SlotName:    LabelName1,
				},
				Responses: map[string]string{
					"COMPLETE": "承知いたしました。{日付}の{時間}に{人数}名様で{名前}様のご予約を承りました。",
				},
				ImplicitConfirmation: map[string]string{
					SlotSetKey(SlotDate, SlotTime, SlotPersons): "{日付}の{時間}に{人数}名様ですね。",
					SlotSetKey(SlotDate, SlotTime):              "{日付}の{時間}ですね。",
					SlotSetKey(SlotDate, SlotPersons):           "{日付}に{人数}名様ですね。",
					SlotSetKey(SlotTime, SlotPersons):           "{時間}に{人数}名様ですね。",
					SlotSetKey(SlotName):                        "{名前}様ですね。",
					SlotSetKey(SlotDate):                        "{日付}ですね。",
					SlotSetKey(SlotTime):                        "{時間}ですね。",
					SlotSetKey(SlotPersons):                     "{人数}名様ですね。",
				},
				FinalConfirmationPrompt: "{日付}の{時間}に{人数}名様でご予約をお取りしてもよろしいでしょうか？",
				FinalConfirmationResponses: map[Intent]Label{
					IntentCancel: LabelNewReservationCancel,
					IntentChange: LabelNewReservationChange,
				},
				Correction: map[Slot]Label{
					SlotDate:    LabelDate2,
					SlotTime:    LabelTime2,
					SlotPersons: LabelNPerson2,
					SlotName:    LabelName2,
				},
			},
			IntentConfirmReservation: {
				RequiredSlots: []Slot{SlotName},
				OptionalSlots: []Slot{SlotDate, SlotTime, SlotPersons},
				Prompts: map[Slot]Label{
					SlotName: LabelConfirmReservationName,
					SlotDate: LabelConfirmReservationDate,
				},
				Responses: map[string]string{
					"COMPLETE":  "{日付}の{時間}から{人数}名様でご予約いただいております。ご来店をお待ちしております。",
					"NOT_FOUND": "申し訳ございません。{名前}様のご予約は見つかりませんでした。",
				},
				ImplicitConfirmation: map[string]string{
					SlotSetKey(SlotName): "{名前}様ですね。",
					SlotSetKey(SlotDate): "{日付}ですね。",
				},
				FinalConfirmationPrompt: "{日付}の{時間}から{人数}名様で{名前}様のご予約いただいております。ご来店をお待ちしております。",
				FinalConfirmationResponses: map[Intent]Label{
					IntentConfirm: LabelConfirmReservationConfirm,
					IntentCancel:  LabelConfirmReservationCancel,
				},
			},
			IntentCancelReservation: {
				RequiredSlots: []Slot{SlotName},
				OptionalSlots: []Slot{SlotDate, SlotTime, SlotPersons},
				Prompts: map[Slot]Label{
					SlotName: LabelCancelReservationName,
				},
				Responses: map[string]string{
					"COMPLETE":  "{名前}様のご予約をキャンセルいたしました。",
					"NOT_FOUND": "申し訳ございません。{名前}様のご予約は見つかりませんでした。",
					"FOUND":     "{日付}の{時間}から{人数}名様で{名前}様のご予約を確認いたしました。",
				},
				ImplicitConfirmation: map[string]string{
					SlotSetKey(SlotName): "{名前}様ですね。",
				},
				FinalConfirmationPrompt: "{日付}の{時間}から{人数}名様でご予約いただいております。キャンセルしてもよろしいでしょうか？",
				FinalConfirmationResponses: map[Intent]Label{
					IntentYes:    LabelCancelReservationConfirm,
					IntentCancel: LabelCancelReservationCancel,
				},
			},
			IntentChangeReservation: {},
			IntentAskAboutStore: {
				Responses: map[string]string{
					"COMPLETE": "ご質問を伺ってもよろしいでしょうか。",
					"CONTINUE": "ご用件を伺います。",
				},
				FinalConfirmationPrompt: LabelAskOtherQuestions,
				FinalConfirmationResponses: map[Intent]Label{
					IntentCancel:  LabelStoreInfoComplete,
					IntentConfirm: LabelThanksForQuestion,
				},
			},
		},
		Fallback: map[FallbackKind]Label{
			FallbackInvalidIntent:     LabelFallbackInvalidIntent,
			FallbackNoIntent:          LabelFallbackNoIntent,
			FallbackConversationError: LabelFallbackConversationError,
			FallbackDefault:           LabelFallbackDefault,
		},
		SceneInitial: map[Intent]Label{
			IntentNewReservation:     LabelNewReservationIntro,
			IntentConfirmReservation: LabelConfirmReservationIntro,
			IntentCancelReservation:  LabelCancelReservationIntro,
			IntentAskAboutStore:      LabelStoreInfoIntro,
			IntentChangeReservation:  LabelChangeReservationIntro,
		},
		SceneComplete: map[Intent]Label{
			IntentNewReservation:     LabelNewReservationComplete,
			IntentConfirmReservation: LabelConfirmReservationComplete,
			IntentCancelReservation:  LabelCancelReservationComplete,
			IntentAskAboutStore:      LabelStoreInfoComplete,
		},
		InitialState: SlotMap{
			SlotName:    "",
			SlotDate:    "",
			SlotTime:    "",
			SlotPersons: "",
		},
	}
}

// RequiredSlots returns the required slots for an intent, nil for local
// intents and unknown scenes.
func (t *Templates) RequiredSlots(intent Intent) []Slot {
	scene, ok := t.Scenes[intent]
	if !ok {
		return nil
	}
	return scene.RequiredSlots
}

// OptionalSlots returns the optional slots for an intent.
func (t *Templates) OptionalSlots(intent Intent) []Slot {
	scene, ok := t.Scenes[intent]
	if !ok {
		return nil
	}
	return scene.OptionalSlots
}

// Text resolves a label to its utterance text. Unknown labels are returned
// unchanged so callers can pass through literal text.
func (t *Templates) Text(label Label) string {
	if text, ok := t.LabelText[label]; ok {
		return text
	}
	return label
}
