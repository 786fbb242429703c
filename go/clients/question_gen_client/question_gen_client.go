package question_gen_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/popqiz/popqiz/go/clients"
	"github.com/popqiz/popqiz/go/internal/models"
	"github.com/popqiz/popqiz/go/internal/question"
)

const (
	BaseURL = "https://api.openai.com/v1/"

	completionsEndpoint = "chat/completions"
	model               = "gpt-4o-mini"

	// generatedQualityScore is the default quality for fresh LLM
	// questions; skip feedback adjusts it from there.
	generatedQualityScore = 80
)

// ageDescriptions steers vocabulary and topics per band.
var ageDescriptions = map[models.AgeBand]string{
	models.AgeBandKids:   "ages 6-9, simple vocabulary, fun topics",
	models.AgeBandTweens: "ages 10-13, slightly more complex, engaging topics",
	models.AgeBandFamily: "all ages, accessible to both kids and adults",
	models.AgeBandAdults: "adult-level knowledge, various topics",
}

type QuestionGenClient struct {
	*clients.BaseClient
}

func NewQuestionGenClient(apiKey string) *QuestionGenClient {
	client := &QuestionGenClient{
		BaseClient: clients.NewBaseClient(BaseURL),
	}

	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")

	return client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type generatedQuestion struct {
	Question     string   `json:"question"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

type generatedBatch struct {
	Questions []generatedQuestion `json:"questions"`
}

// GenerateQuestions asks the model for count questions in the band.
// Malformed entries are dropped rather than failing the batch; callers
// validate again before caching.
func (c *QuestionGenClient) GenerateQuestions(ctx context.Context, band models.AgeBand, count int) ([]question.Candidate, error) {
	desc, ok := ageDescriptions[band]
	if !ok {
		return nil, fmt.Errorf("unknown age band %q", band)
	}

	req := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: `You are a trivia question generator. Always return valid JSON with a "questions" array.`,
			},
			{
				Role:    "user",
				Content: buildPrompt(desc, count),
			},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	body, err := c.Post(ctx, completionsEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal completion response: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("completion response had no choices")
	}

	var batch generatedBatch
	if err := json.Unmarshal([]byte(response.Choices[0].Message.Content), &batch); err != nil {
		return nil, fmt.Errorf("failed to parse generated questions: %w", err)
	}

	candidates := make([]question.Candidate, 0, len(batch.Questions))
	for _, q := range batch.Questions {
		var explanation *string
		if q.Explanation != "" {
			e := q.Explanation
			explanation = &e
		}
		candidate := question.Candidate{
			Prompt:       q.Question,
			Choices:      q.Choices,
			CorrectIndex: q.CorrectIndex,
			Explanation:  explanation,
			QualityScore: generatedQualityScore,
			Source:       models.QuestionSourceGenerated,
		}
		if err := candidate.Validate(); err != nil {
			continue
		}
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

func buildPrompt(ageDescription string, count int) string {
	return fmt.Sprintf(`Generate %d trivia questions suitable for %s.

Each question must:
- Have exactly 3 answer choices
- Have one clearly correct answer
- Be appropriate for the age group
- Be engaging and fun
- Cover diverse topics (science, history, pop culture, geography, etc.)

Return ONLY a JSON object with a "questions" array of objects with this exact structure:
{
  "questions": [
    {
      "question": "The question text",
      "choices": ["Choice A", "Choice B", "Choice C"],
      "correct_index": 0,
      "explanation": "Brief explanation (optional)"
    }
  ]
}

Make sure correct_index is 0, 1, or 2 corresponding to the correct choice.`, count, ageDescription)
}
