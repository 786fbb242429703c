package opentdb_client

import (
	"html"

	"github.com/jmcvetta/randutil"

	"github.com/popqiz/popqiz/go/internal/models"
	"github.com/popqiz/popqiz/go/internal/question"
)

// OpenTDB API response structures
type TDBQuestion struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type TDBQuestionsResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []TDBQuestion `json:"results"`
}

// qualityByDifficulty maps API difficulty onto a cache quality score.
// Hard material is kept but scored below the default selection floor.
var qualityByDifficulty = map[string]int{
	DifficultyEasy:   85,
	DifficultyMedium: 75,
	DifficultyHard:   60,
}

// ToCandidate converts an API question into a cache candidate. The API
// HTML-escapes all text and always lists the correct answer
// separately, so choices are unescaped and shuffled here.
func (q TDBQuestion) ToCandidate() (question.Candidate, error) {
	choices := make([]string, 0, len(q.IncorrectAnswers)+1)
	choices = append(choices, html.UnescapeString(q.CorrectAnswer))
	for _, a := range q.IncorrectAnswers {
		choices = append(choices, html.UnescapeString(a))
	}

	correctIndex := 0
	for i := len(choices) - 1; i > 0; i-- {
		j, err := randutil.IntRange(0, i+1)
		if err != nil {
			return question.Candidate{}, err
		}
		choices[i], choices[j] = choices[j], choices[i]
		switch correctIndex {
		case i:
			correctIndex = j
		case j:
			correctIndex = i
		}
	}

	quality, ok := qualityByDifficulty[q.Difficulty]
	if !ok {
		quality = models.MinQualityScore
	}

	return question.Candidate{
		Prompt:       html.UnescapeString(q.Question),
		Choices:      choices,
		CorrectIndex: correctIndex,
		QualityScore: quality,
		Source:       models.QuestionSourceOpenTDB,
	}, nil
}
