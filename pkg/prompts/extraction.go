// Package prompts builds the LLM prompts for every pipeline stage. Prompt
// text is kept here, away from stage logic, so the stages stay testable with
// mocked completions.
package prompts

import (
	"fmt"
	"strings"
)

// ExistingStatement is an already-extracted statement shown to the model so
// it can mark a candidate as a restatement instead of a new insight.
type ExistingStatement struct {
	ID        string
	Statement string
}

// BuildExtractionSystemMessage returns the system message for the extraction
// stage. The model must answer with a JSON object containing problem and
// solution candidates, each carrying the verbatim snippets that substantiate
// it, and echo the id of an existing statement when the candidate merely
// restates or refines it.
func BuildExtractionSystemMessage() string {
	return `あなたは市民の対話や投稿から「課題」と「解決策」を抽出するAIアシスタントです。

課題は、主語を明確にし、現状と理想の状態のギャップとして客観的に記述してください。解決策は、具体的な行動や機能と、それがもたらす価値を明確に記述してください。感情的な表現や主観的な解釈は排してください。入力に課題や解決策が含まれない場合は空の配列を返してください。

既存の抽出済みステートメントの一覧が与えられます。新しい候補が既存のステートメントと同じ内容の言い換え・補強である場合は、新規として出力せず、その既存IDを "existingId" に設定した上で、改善したステートメント文と根拠となる発言断片を返してください。

応答は次のキーを持つJSONオブジェクトのみで行ってください:
{"problems": [{"statement": "...", "snippets": ["..."], "existingId": null}], "solutions": [{"statement": "...", "snippets": ["..."], "existingId": null}]}
"snippets" には抽出の根拠となったユーザー発言の断片を原文のまま含めてください。JSON構造外に他のテキストを含めないでください。`
}

// BuildExtractionUserMessage renders the source material plus the existing
// statements for the theme.
func BuildExtractionUserMessage(content string, existingProblems, existingSolutions []ExistingStatement) string {
	var b strings.Builder

	b.WriteString("以下の入力から課題と解決策を抽出してください。\n\n")
	b.WriteString("## 入力\n")
	b.WriteString(content)
	b.WriteString("\n\n## 既存の課題\n")
	writeExistingStatements(&b, existingProblems)
	b.WriteString("\n## 既存の解決策\n")
	writeExistingStatements(&b, existingSolutions)
	b.WriteString("\nPlease provide the output as a JSON object with \"problems\" and \"solutions\" arrays.")

	return b.String()
}

func writeExistingStatements(b *strings.Builder, statements []ExistingStatement) {
	if len(statements) == 0 {
		b.WriteString("(ありません)\n")
		return
	}
	for _, s := range statements {
		fmt.Fprintf(b, "- [%s] %s\n", s.ID, s.Statement)
	}
}
