package prompts

import "strings"

// BuildDigestSystemMessage returns the system message for digest generation:
// rewrite a policy draft into a short piece that citizens without a policy
// background can read.
func BuildDigestSystemMessage() string {
	return `あなたはAIアシスタントです。専門的な政策文書を、政策の予備知識がない市民にも読みやすいダイジェストに書き直す任務を負っています。

- 元の文書の趣旨（どのような意見が寄せられ、何が提案されているか）を保ってください。
- 専門用語を避け、平易な日本語で記述してください。
- 合意点と意見の相違点の両方に触れてください。
- 全体で1000〜2000文字程度に収めてください。

応答は、"title"（文字列）と "content"（文字列、Markdown形式）のキーを含むJSONオブジェクトのみで行ってください。JSON構造外に他のテキストを含めないでください。`
}

// BuildDigestUserMessage renders the question and the policy draft to be
// rewritten.
func BuildDigestUserMessage(questionText, draftTitle, draftContent string) string {
	var b strings.Builder

	b.WriteString("次の政策文書を市民向けダイジェストに書き直してください。\n\n問い: ")
	b.WriteString(questionText)
	b.WriteString("\n\n# ")
	b.WriteString(draftTitle)
	b.WriteString("\n\n")
	b.WriteString(draftContent)
	b.WriteString("\n\nPlease provide the output as a JSON object with \"title\" and \"content\" keys.")

	return b.String()
}
