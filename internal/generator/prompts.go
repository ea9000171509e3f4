package generator

import (
	"fmt"
	"strings"

	"github.com/kruai/backend/internal/models"
)

var styleInstructions = map[models.SummaryStyle]string{
	models.StyleShort: `
LENGTH (SHORT):
- summaryContent is 3-4 short paragraphs told like a story
- Keep only what a student needs for the test`,

	models.StyleDetailed: `
LENGTH (DETAILED):
- summaryContent is 5-7 paragraphs
- Add one everyday example for every main idea
- If the material is thin, add the background knowledge a student at this level is expected to know`,
}

// SummarySystemPrompt frames the model as a friendly primary-school teacher.
func SummarySystemPrompt(language string) string {
	return fmt.Sprintf(`You are "Kru Jai Dee", a kind teaching assistant for primary school students in grades 4-6 (ages 10-12).

Your job:
1. Read the attached material. If only a file name is given, write a lesson that fits that file name.
2. Summarise it so it is very easy to understand, in a warm tone, like an older sibling teaching a younger one.
3. If the material is too short, add the knowledge a student needs for exams at this grade.
4. Lay it out so it is pleasant to read.

Write every field in %s.

OUTPUT FORMAT:
Respond with ONLY a JSON object, no prose before or after:
{
  "originalTopic": "main topic of the material",
  "summaryContent": "the simplified summary told as a story",
  "keyPoints": ["3 to 5 short bullet points that are easy to remember"]
}`, language)
}

// QuizSystemPrompt is shared by every quiz request.
func QuizSystemPrompt() string {
	return `You write knowledge-check quizzes for primary school students in grades 4-6.

RULES:
- Every question is clear and unambiguous
- Every question has exactly 4 options
- Exactly one option is correct and the answer key is accurate
- correctAnswerIndex is the 0-based index of the correct option (0-3)
- explanation is a short, encouraging sentence telling the student why the answer is right
- hint nudges the student toward the answer without giving it away

OUTPUT FORMAT:
Respond with ONLY a JSON object, no prose before or after:
{
  "questions": [
    {
      "question": "...",
      "options": ["...", "...", "...", "..."],
      "correctAnswerIndex": 0,
      "explanation": "...",
      "hint": "..."
    }
  ]
}`
}

// ChatSystemPrompt grounds the teacher chat in a generated summary.
func ChatSystemPrompt(summary models.SummaryData, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are "Kru Jai Dee", a friendly teacher chatting with a grade 4-6 student about the lesson below.
Answer in %s, in at most 3 short paragraphs. Stay on the lesson topic; if the student drifts, gently bring them back.
Never hand out answers to quiz questions directly; guide the student to think instead.

LESSON TOPIC: %s

LESSON SUMMARY:
%s
`, language, summary.OriginalTopic, summary.SummaryContent)
	if len(summary.KeyPoints) > 0 {
		b.WriteString("\nKEY POINTS:\n")
		for _, p := range summary.KeyPoints {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	return b.String()
}

// BuildSummaryUserPrompt embeds the material, cut to maxChars runes.
func BuildSummaryUserPrompt(content, fileName string, style models.SummaryStyle, maxChars int) string {
	var b strings.Builder
	b.WriteString("Summarise this material for the student.\n")
	if instr, ok := styleInstructions[style]; ok {
		b.WriteString(instr)
		b.WriteString("\n")
	}
	b.WriteString("\nINPUT:\n")
	if fileName != "" {
		fmt.Fprintf(&b, "File name: %s\n", fileName)
	}
	content = truncateRunes(strings.TrimSpace(content), maxChars)
	if content == "" {
		b.WriteString("Content: (none, build the lesson from the file name)\n")
	} else {
		fmt.Fprintf(&b, "Content: \"%s\"\n", content)
	}
	return b.String()
}

// BuildQuizUserPrompt asks for count questions about summary.
func BuildQuizUserPrompt(summary models.SummaryData, count int) string {
	return fmt.Sprintf(`From the lesson "%s" and this summary:
"%s"

Write a quiz of exactly %d questions for grade 4-6 students, in the same language as the summary.`,
		summary.OriginalTopic, summary.SummaryContent, count)
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
