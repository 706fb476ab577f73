package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Wahidu1/projects-tech-foring/internal/constants"
	"github.com/Wahidu1/projects-tech-foring/internal/models"
	"github.com/sashabaranov/go-openai"
)

// AIService drafts tasks with the OpenAI chat completion API.
type AIService struct {
	client *openai.Client
	model  string
}

// GeneratedTask is a draft task proposed by the model.
type GeneratedTask struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
}

type draftResponse struct {
	Tasks []GeneratedTask `json:"tasks"`
}

func NewAIService(apiKey, model string) *AIService {
	return NewAIServiceWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewAIServiceWithConfig allows pointing the client at another base URL.
func NewAIServiceWithConfig(cfg openai.ClientConfig, model string) *AIService {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// DraftTasks splits text into draft tasks for the named project.
func (s *AIService) DraftTasks(ctx context.Context, projectName, text string) ([]GeneratedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`You extract actionable tasks for the project %q from the text below.

Text:
%s

Answer with a JSON object of this shape:
{
  "tasks": [
    {
      "title": "short task title",
      "description": "what has to be done",
      "priority": "Low" | "Medium" | "High"
    }
  ]
}

Rules:
- return {"tasks": []} when the text contains no tasks
- return at most %d tasks
- answer with JSON only`, projectName, text, constants.MaxAIDraftedTasks)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	var parsed draftResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	return parsed.Tasks, nil
}
