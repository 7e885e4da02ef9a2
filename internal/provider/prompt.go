package provider

import (
	"fmt"
	"strings"

	"github.com/abiraja/quizforge/internal/question"
)

const systemPrompt = `You are an expert educational content creator. You write assessment questions grounded strictly in the source material you are given.

Rules:
- Every question must be answerable from the source content alone. Do not invent facts.
- Question text must be clear, self-contained, and free of references like "the passage above".
- Provide a confidence score between 0.0 and 1.0 reflecting how well the source supports the question.
- Match the requested difficulty level.
- Return exactly the requested number of questions.`

// typeInstructions maps each question type to its generation
// instruction. The payload shape is enforced separately through the
// structured-output schema; the instruction steers content quality.
var typeInstructions = map[question.Type]string{
	question.TypeMCQ: `Write multiple choice questions. Give each question at least 4 options keyed "a", "b", "c", "d". Exactly one option is correct; set correct_answer to its key. Distractors should be plausible misreadings of the source, not random values. Include a one-sentence explanation.`,

	question.TypeShortAnswer: `Write short answer questions requiring a brief, specific response. Set correct_answer to the expected response and list reasonable phrasings in alternative_answers. Put the essential terms in keywords.`,

	question.TypeFillBlank: `Write fill-in-the-blank questions. Mark each gap in the question text with "______". For each gap add a blank with its 1-based position, the correct answer, and acceptable alternatives.`,

	question.TypeTrueFalse: `Write true/false statements about the source content. Set correct_answer to the literal string "true" or "false" and include a one-sentence explanation.`,
}

// buildUserMessage constructs the generation prompt from the request.
func buildUserMessage(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate %d %s difficulty %s questions from the content below.\n\n", req.Count, req.Difficulty, req.Type)
	b.WriteString(typeInstructions[req.Type])
	b.WriteString("\n\nContent:\n")
	b.WriteString(req.Content)

	return b.String()
}
