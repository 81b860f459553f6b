package prompts

import (
	"fmt"
	"strings"
)

// QuestionBatchSize is the number of questions requested per synthesis run.
// A run sends every problem statement in the theme in one completion and asks
// for this many questions back.
const QuestionBatchSize = 5

// BuildQuestionSynthesisSystemMessage returns the system message for the
// question synthesis stage. Questions must describe both the current and the
// desired state without prescribing a solution; this is a content contract
// the model is asked to honor, the stage itself only validates that the
// response parses as a non-empty string array.
func BuildQuestionSynthesisSystemMessage() string {
	return `You are an AI assistant specialized in synthesizing problem statements into insightful "How Might We..." (HMW) questions based on Design Thinking principles. Your goal is to generate concise, actionable, and thought-provoking questions that capture the essence of the underlying challenges presented in the input problem statements. Consolidate similar problems into broader HMW questions where appropriate.

IMPORTANT: When generating questions, focus exclusively on describing both the current state ("現状はこう") and the desired state ("それをこうしたい") with high detail. Do NOT suggest or imply any specific means, methods, or solutions in the questions. The questions should keep the problem space open for creative solutions rather than narrowing the range of possible answers.

Generate all questions in Japanese language, using the format "〜にはどうすればいいだろうか？" instead of "How Might We...". Respond ONLY with a JSON object containing a single key "questions" which holds an array of strings, where each string is a generated question in Japanese.

Generate ` + fmt.Sprint(QuestionBatchSize) + ` questions. 50-100字以内程度。`
}

// BuildQuestionSynthesisUserMessage enumerates the theme's problem statements.
func BuildQuestionSynthesisUserMessage(problemStatements []string) string {
	var b strings.Builder

	b.WriteString("Based on the following problem statements, please generate relevant questions in Japanese using the format \"How Might We...\":\n\n")
	b.WriteString(strings.Join(problemStatements, "\n- "))
	b.WriteString("\n\nFor each question, clearly describe both the current state (\"現状はこう\") and the desired state (\"それをこうしたい\") with high detail. Focus exclusively on describing these states without suggesting any specific means, methods, or solutions that could narrow the range of possible answers.\n\nPlease provide the output as a JSON object with a \"questions\" array containing Japanese questions only.")

	return b.String()
}
