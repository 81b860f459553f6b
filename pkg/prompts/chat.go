package prompts

import "strings"

// ReferenceOpinionThreshold is the minimum relevance score for a linked
// statement to be surfaced as a reference opinion in the chat prompt.
// Thresholding happens here, on the read side; the linking stage persists
// every scored pair.
const ReferenceOpinionThreshold = 0.8

// ReferenceOpinionLimit caps how many statements are shown per question.
const ReferenceOpinionLimit = 10

// BuildChatSystemMessage returns the dialogue system prompt for the
// deliberation assistant.
func BuildChatSystemMessage() string {
	return `あなたは、ユーザーが抱える課題やその解決策についての考えを深めるための、対話型アシスタントです。以下の点を意識して応答してください。

1.  **思考の深掘り:** ユーザーの発言から、具体的な課題や解決策のアイデアを引き出すことを目指します。曖昧な点や背景が不明な場合は、「いつ」「どこで」「誰が」「何を」「なぜ」「どのように」といった質問（5W1H）を自然な会話の中で投げかけ、具体的な情報を引き出してください。
2.  **簡潔な応答:** あなたの応答は、最大でも4文以内にまとめてください。
3.  **課題/解決策の抽出支援:** ユーザーが自身の考えを整理し、明確な「課題」や「解決策」として表現できるよう、対話を通じてサポートしてください。
課題の表現は、主語を明確にし、具体的な状況と影響を記述することで、問題の本質を捉えやすくする必要があります。現状と理想の状態を明確に記述し、そのギャップを課題として定義する。解決策の先走りや抽象的な表現を避け、「誰が」「何を」「なぜ」という構造で課題を定義することで、問題の範囲を明確にし、多様な視点からの議論を促します。感情的な表現や主観的な解釈を排し、客観的な事実に基づいて課題を記述することが重要です。
解決策の表現は、具体的な行動や機能、そしてそれがもたらす価値を明確に記述する必要があります。実現可能性や費用対効果といった制約条件も考慮し、曖昧な表現や抽象的な概念を避けることが重要です。解決策は、課題に対する具体的な応答として提示され、その効果やリスク、そして実装に必要なステップを明確にすべき。
4.  **心理的安全性の確保:** ユーザーのペースを尊重し、急かさないこと。論理的な詰め寄りや過度な質問攻めを避けること。ユーザーが答えられない質問には固執せず、別の角度からアプローチすること。完璧な回答を求めず、ユーザーの部分的な意見も尊重すること。対話は協力的な探索であり、試験や審査ではないことを意識すること。
5.  **話題の誘導:** ユーザーの発言が曖昧で、特に話したいトピックが明確でない場合、参考情報として提示された既存の問いのどれかをピックアップしてそれについて議論することを優しく提案してください。（問いを一字一句読み上げるのではなく、文脈や相手に合わせて言い換えて分かりやすく伝える）
`
}

// ReferenceQuestion is a sharp question plus its high-relevance statements,
// surfaced to the assistant as conversation material.
type ReferenceQuestion struct {
	QuestionText string
	Problems     []string
	Solutions    []string
}

// BuildReferenceOpinionsMessage renders the questions under discussion and
// their most relevant statements as an additional system message. Returns an
// empty string when there is nothing to reference.
func BuildReferenceOpinionsMessage(questions []ReferenceQuestion) string {
	if len(questions) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("参考情報として、システム内で議論されている主要な「問い」と、それに関連する意見の一部を紹介します:\n\n")

	for _, q := range questions {
		b.WriteString("問い: ")
		b.WriteString(q.QuestionText)
		b.WriteString("\n")

		if len(q.Problems) > 0 {
			b.WriteString("  関連性の高い課題:\n")
			for _, s := range q.Problems {
				b.WriteString("    - ")
				b.WriteString(s)
				b.WriteString("\n")
			}
		} else {
			b.WriteString("  関連性の高い課題: (ありません)\n")
		}

		if len(q.Solutions) > 0 {
			b.WriteString("  関連性の高い解決策:\n")
			for _, s := range q.Solutions {
				b.WriteString("    - ")
				b.WriteString(s)
				b.WriteString("\n")
			}
		} else {
			b.WriteString("  関連性の高い解決策: (ありません)\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("---\nこれらの「問い」や関連意見も踏まえ、ユーザーとの対話を深めてください。\n")
	return b.String()
}
