package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kaiwa-ai/reserve-gateway/internal/dialogue"
)

// IntentClassificationPrompt builds the system prompt for picking exactly
// one intent label out of the context-dependent candidate set.
func IntentClassificationPrompt(labels map[dialogue.Intent][]string) string {
	names := make([]string, 0, len(labels))
	for intent := range labels {
		names = append(names, string(intent))
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("以下のフレーズに対応する意図を選択してください。\n")
	for _, name := range names {
		phrases := labels[dialogue.Intent(name)]
		fmt.Fprintf(&b, "- %s: %s\n", name, strings.Join(phrases, ", "))
	}
	fmt.Fprintf(&b, "回答は必ず%sのいずれかにしてください。\n", strings.Join(names, ", "))
	b.WriteString(`回答はJSON形式で {"intent": "<label>"} のみを返してください。`)
	return b.String()
}

// FAQPrompt is the fixed shop description plus the knowledge list the model
// may answer from. Questions outside the list must produce an empty string.
const FAQPrompt = `あなたは飲食店の店員です。
ユーザーからのメッセージに対して、以下のFAQリストを参照し、該当する質問に関連していれば、その質問に対応する回答を返してください。
もし、関連する質問がない場合は、空文字を返してください。

# FAQリスト:
質問: 営業時間について知りたい
回答: 土日祝日ともに11:00から23:00まで営業しております。

質問: 駐車場の利用について知りたい
回答: 駐車場はございませんが、近隣にコインパーキングがございます。

質問: 個室や特別な席の利用について
回答: 個室はございません。車いす・ベビーカー対応の席は一部店舗でご用意しております。ご利用の際は事前予約をお勧めいたします。

質問: 各種支払い方法について
回答: ジェフグルメ券は全店でご使用可能です。その他のギフト券やキャッシュレス決済については、各店舗にお問い合わせください。

質問: アレルギー情報について
回答: 最新のアレルギー情報はホームページでご確認いただけます。記載のない項目については、2週間程度の調査期間が必要となります。
`
