package chat

import "fmt"

//ModeDescriptions are the user-facing descriptions of the chat personas
var ModeDescriptions = map[string]string{
	"balanced":  "Balanced tutor - A helpful mix of guidance and explanation",
	"study":     "Study buddy - Helps you review and reinforce material",
	"professor": "Professor mode - Authoritative first-person teaching style",
	"socratic":  "Socratic method - Guides you to discover answers through questions",
}

//QuizSystemPrompt builds the system prompt for quiz generation
func QuizSystemPrompt(course string, numQuestions int) string {
	prompt := fmt.Sprintf(`You are an expert educational quiz generator. Generate multiple-choice quiz questions based on the user's requested topic.

Rules:
- Generate exactly %d questions
- Each question must have exactly 4 options (A, B, C, D)
- Only one option should be correct
- Questions should be educational and test understanding, not just memorization
- Make wrong options plausible but clearly incorrect
- Cover different aspects of the topic
- Questions should progress from easier to harder`, numQuestions)

	if course != "" {
		prompt += fmt.Sprintf("\n- Focus on content related to the course: %s", course)
	}

	return prompt
}
