package prompts

import "strings"

// BuildPolicyDraftSystemMessage returns the formatting contract for policy
// draft generation: a citizen-opinion report followed by a policy proposal,
// delimited by Markdown headers, surfacing both consensus and disagreement.
func BuildPolicyDraftSystemMessage() string {
	return `あなたはAIアシスタントです。中心的な問い（「私たちはどのようにして...できるか？」）、関連する問題点のリスト、そして市民からの意見を通じて特定された潜在的な解決策のリストに基づいて、政策文書を作成する任務を負っています。
あなたの出力は、'content'フィールド内に明確に2つのパートで構成されなければなりません。

Part 1: 市民意見のレポート
- 提供された問題点と解決策を分析し、統合してください。
- 類似したアイデアやテーマをグループ化してください。
- 考慮された問題点と解決策の数を明確に述べてください。
- **市民の意見の中での主要な合意点（コンセンサス）と意見の相違点（発散または異なる視点）を特定してください。** できる限り具体性が高く、生の声（引用など）を取り入れてください。
- 特定された合意点と相違点を反映し、市民から提起された主要な懸念事項と提案を要約してください。これには、異なる意見間のトレードオフの分析も含めてください。
- このセクションは、合意点と対立点を含む市民の視点を理解しようとする政策立案者にとって、情報価値の高いレポートとなるべきです。箇条書きではなく、しっかりとした文章で記述してください。
- 目標文字数：約7000文字

Part 2: 政策提案
- Part 1の分析に*直接*基づいて、一貫性があり実行可能な政策提案を策定してください。
- 政策が対処しようとしている問題点を明確に述べ、要約された市民の意見を参照してください（例：「Xに関して提起されたN個の懸念に対処するため...」）。
- 提案された解決策を論理的に構成してください。
- 提案が市民のフィードバックに基づいていることを示すために、市民の意見からの特定のテーマや提案の数を参照してください（例：「Yに関するM個の提案に基づいて...」）。
- 現実的で具体的な初期草案を作成することに焦点を当ててください。異なる選択肢間のトレードオフも考慮に入れてください。
- 箇条書きではなく、しっかりとした文章で記述してください。
- 目標文字数：約7000文字

応答は、"title"（文字列、文書全体に適したタイトル）と "content"（文字列、'市民意見のレポート'と'政策提案'の両セクションを含み、Markdownヘッダー（例：## 市民意見のレポート、## 政策提案）などを使用して明確に区切られ、フォーマットされたもの）のキーを含むJSONオブジェクトのみで行ってください。JSON構造外に他のテキストや説明を含めないでください。`
}

// BuildPolicyDraftUserMessage enumerates the question and its related
// statements, already sorted by relevance so earlier items carry more weight.
func BuildPolicyDraftUserMessage(questionText string, problemStatements, solutionStatements []string) string {
	var b strings.Builder

	b.WriteString("Generate a report for the following question:\nQuestion: ")
	b.WriteString(questionText)
	b.WriteString("\n\nRelated Problems (sorted by relevance - higher items are more relevant to the question):\n")
	writeStatementList(&b, problemStatements)
	b.WriteString("\n\nRelated Solutions (sorted by relevance - higher items are more relevant to the question):\n")
	writeStatementList(&b, solutionStatements)
	b.WriteString("\n\nPlease provide the output as a JSON object with \"title\" and \"content\" keys. When considering the problems and solutions, prioritize those listed at the top as they are more relevant to the question.")

	return b.String()
}

func writeStatementList(b *strings.Builder, statements []string) {
	if len(statements) == 0 {
		b.WriteString("- None provided")
		return
	}
	for i, s := range statements {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(s)
	}
}
