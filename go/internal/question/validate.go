package question

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/popqiz/popqiz/go/internal/models"
)

// Candidate is a question fetched from a source, before validation.
type Candidate struct {
	Prompt       string
	Choices      []string
	CorrectIndex int
	Explanation  *string
	QualityScore int
	Source       models.QuestionSource
}

const (
	minChoices   = 2
	maxChoices   = 4
	minPromptLen = 10
	maxPromptLen = 200
)

// Validate rejects malformed candidates before they reach the cache.
func (c Candidate) Validate() error {
	prompt := strings.TrimSpace(c.Prompt)
	if len(prompt) <= minPromptLen || len(prompt) >= maxPromptLen {
		return fmt.Errorf("%w: prompt length %d out of range", ErrInvalidQuestion, len(prompt))
	}
	if len(c.Choices) < minChoices || len(c.Choices) > maxChoices {
		return fmt.Errorf("%w: %d choices", ErrInvalidQuestion, len(c.Choices))
	}
	seen := make(map[string]bool, len(c.Choices))
	for _, choice := range c.Choices {
		trimmed := strings.TrimSpace(choice)
		if trimmed == "" {
			return fmt.Errorf("%w: empty choice", ErrInvalidQuestion)
		}
		if seen[trimmed] {
			return fmt.Errorf("%w: duplicate choice %q", ErrInvalidQuestion, trimmed)
		}
		seen[trimmed] = true
	}
	if c.CorrectIndex < 0 || c.CorrectIndex >= len(c.Choices) {
		return fmt.Errorf("%w: correct index %d out of range", ErrInvalidQuestion, c.CorrectIndex)
	}
	return nil
}

// NewCacheRequest validates a candidate and prepares it for insertion,
// trimming whitespace and deriving the dedup key.
func NewCacheRequest(band models.AgeBand, c Candidate) (CreateQuestionRequest, error) {
	if !models.ValidAgeBand(band) {
		return CreateQuestionRequest{}, fmt.Errorf("%w: unknown age band %q", ErrInvalidQuestion, band)
	}
	if err := c.Validate(); err != nil {
		return CreateQuestionRequest{}, err
	}

	prompt := strings.TrimSpace(c.Prompt)
	choices := make([]string, len(c.Choices))
	for i, choice := range c.Choices {
		choices[i] = strings.TrimSpace(choice)
	}
	var explanation *string
	if c.Explanation != nil {
		if trimmed := strings.TrimSpace(*c.Explanation); trimmed != "" {
			explanation = &trimmed
		}
	}
	quality := c.QualityScore
	if quality == 0 {
		quality = models.MinQualityScore
	}
	source := c.Source
	if source == "" {
		source = models.QuestionSourceManual
	}

	return CreateQuestionRequest{
		ID:           uuid.New(),
		AgeBand:      band,
		Prompt:       prompt,
		Choices:      choices,
		CorrectIndex: c.CorrectIndex,
		Explanation:  explanation,
		DedupKey:     DedupKey(prompt, choices),
		QualityScore: quality,
		Source:       source,
	}, nil
}
