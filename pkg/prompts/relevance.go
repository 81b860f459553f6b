package prompts

import (
	"fmt"
	"strings"
)

// RelevanceBatchSize is how many items are scored per LLM call. Batching
// bounds cost: one call scores a chunk of statements instead of one call per
// (question, item) pair.
const RelevanceBatchSize = 10

// RelevanceItem is a statement to be scored against a question.
type RelevanceItem struct {
	ID        string
	Statement string
}

// BuildRelevanceSystemMessage returns the system message for relevance
// scoring. The model returns one score per item id; scores need not be
// symmetric or transitive across questions.
func BuildRelevanceSystemMessage() string {
	return `あなたは「問い」と市民意見の関連度を評価するAIアシスタントです。

与えられた問いに対して、各ステートメントがどの程度関連しているかを0.0から1.0の数値で評価してください。1.0は問いの核心に直接関わることを、0.0は無関係であることを意味します。すべてのステートメントを評価してください。

応答は次の形式のJSONオブジェクトのみで行ってください:
{"scores": [{"id": "...", "score": 0.0}]}
JSON構造外に他のテキストを含めないでください。`
}

// BuildRelevanceUserMessage renders the question and the batch of statements
// to score.
func BuildRelevanceUserMessage(questionText string, items []RelevanceItem) string {
	var b strings.Builder

	b.WriteString("問い: ")
	b.WriteString(questionText)
	b.WriteString("\n\nステートメント:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- [%s] %s\n", item.ID, item.Statement)
	}
	b.WriteString("\n各ステートメントの関連度を評価し、\"scores\" 配列を持つJSONオブジェクトとして返してください。")

	return b.String()
}
