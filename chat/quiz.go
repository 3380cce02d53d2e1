package chat

import (
	"context"
	"encoding/json"
	"fmt"
)

//QuizQuestion is one multiple-choice question
type QuizQuestion struct {
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"` //keys A-D
	CorrectAnswer string            `json:"correctAnswer"`
	Explanation   string            `json:"explanation"`
}

//Quiz is a generated quiz
type Quiz struct {
	Title     string          `json:"title"`
	Questions []*QuizQuestion `json:"questions"`
}

//quizTool is the function tool the model is forced to call so the quiz comes
//back as structured arguments instead of prose
func quizTool() Tool {
	option := map[string]interface{}{"type": "string"}
	return Tool{
		Type: "function",
		Function: ToolFunction{
			Name:        "generate_quiz",
			Description: "Generate a structured quiz with multiple choice questions",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title": map[string]interface{}{
						"type":        "string",
						"description": "A short title for the quiz (e.g., 'Machine Learning Fundamentals')",
					},
					"questions": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"question": map[string]interface{}{
									"type":        "string",
									"description": "The question text",
								},
								"options": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"A": option, "B": option, "C": option, "D": option,
									},
									"required":             []string{"A", "B", "C", "D"},
									"additionalProperties": false,
								},
								"correctAnswer": map[string]interface{}{
									"type":        "string",
									"enum":        []string{"A", "B", "C", "D"},
									"description": "The correct option letter",
								},
								"explanation": map[string]interface{}{
									"type":        "string",
									"description": "Brief explanation of why this answer is correct",
								},
							},
							"required":             []string{"question", "options", "correctAnswer", "explanation"},
							"additionalProperties": false,
						},
					},
				},
				"required":             []string{"title", "questions"},
				"additionalProperties": false,
			},
		},
	}
}

//GenerateQuiz asks the gateway for a quiz on the given topic. course and
//numQuestions shape the system prompt; numQuestions defaults to 10.
func GenerateQuiz(ctx context.Context, client *GatewayClient, model, topic, course string, numQuestions int) (*Quiz, error) {
	if numQuestions <= 0 {
		numQuestions = 10
	}

	choice := &ToolChoice{Type: "function"}
	choice.Function.Name = "generate_quiz"

	resp, err := client.Complete(ctx, &CompletionRequest{
		Model: model,
		Messages: []RequestMessage{
			{Role: "system", Content: QuizSystemPrompt(course, numQuestions)},
			{Role: "user", Content: fmt.Sprintf("Generate a quiz about: %s", topic)},
		},
		Tools:      []Tool{quizTool()},
		ToolChoice: choice,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("quiz response contained no tool call")
	}

	quiz := new(Quiz)
	arguments := resp.Choices[0].Message.ToolCalls[0].Function.Arguments
	if err := json.Unmarshal([]byte(arguments), quiz); err != nil {
		return nil, fmt.Errorf("could not unmarshal quiz arguments: %w", err)
	}

	if quiz.Title == "" || len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("quiz response was empty")
	}

	return quiz, nil
}
