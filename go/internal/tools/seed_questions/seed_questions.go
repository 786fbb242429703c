package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/popqiz/popqiz/go/clients/opentdb_client"
	"github.com/popqiz/popqiz/go/clients/question_gen_client"
	"github.com/popqiz/popqiz/go/internal/dbconfig"
	"github.com/popqiz/popqiz/go/internal/models"
	"github.com/popqiz/popqiz/go/internal/question"
)

// openTDBRateLimit is the API's 5 second request limit plus a buffer.
const openTDBRateLimit = 6 * time.Second

func main() {
	var (
		band   = flag.String("band", "adults", "age band to seed (kids|tweens|family|adults)")
		count  = flag.Int("count", 30, "target number of new questions")
		source = flag.String("source", "opentdb", "question source (opentdb|generated|file)")
		file   = flag.String("file", "", "JSON file of questions when source=file")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load .env file: %v\n", err)
	}

	ageBand := models.AgeBand(*band)
	if !models.ValidAgeBand(ageBand) {
		fmt.Fprintf(os.Stderr, "invalid age band: %s\n", *band)
		os.Exit(1)
	}

	ctx := context.Background()

	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := question.NewRepository(pool)

	var candidates []question.Candidate
	switch *source {
	case "opentdb":
		candidates, err = fetchOpenTDB(ctx, *count)
	case "generated":
		candidates, err = generate(ctx, ageBand, *count)
	case "file":
		candidates, err = loadFile(*file)
	default:
		err = fmt.Errorf("unknown source: %s", *source)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to fetch questions: %v\n", err)
		os.Exit(1)
	}

	var (
		total    = len(candidates)
		inserted int
		skipped  int
		errs     int
	)

	for _, c := range candidates {
		req, err := question.NewCacheRequest(ageBand, c)
		if err != nil {
			errs++
			continue
		}
		fresh, err := repo.Insert(ctx, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting question: %v\n", err)
			errs++
			continue
		}
		if fresh {
			inserted++
		} else {
			skipped++
		}
	}

	fmt.Printf(
		"Questions seed complete: %d fetched, %d inserted, %d duplicates skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
}

// fetchOpenTDB pulls batches across categories until the target count
// is reached, respecting the API rate limit between requests.
func fetchOpenTDB(ctx context.Context, target int) ([]question.Candidate, error) {
	client := opentdb_client.NewOpenTDBClient()

	token, err := client.RequestSessionToken(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: continuing without session token: %v\n", err)
	}

	var candidates []question.Candidate
	difficulties := []string{opentdb_client.DifficultyEasy, opentdb_client.DifficultyMedium}

	requests := 0
	for _, difficulty := range difficulties {
		for _, category := range opentdb_client.Categories {
			if len(candidates) >= target {
				return candidates, nil
			}
			if requests > 0 {
				time.Sleep(openTDBRateLimit)
			}
			requests++

			results, err := client.FetchQuestions(ctx, opentdb_client.FetchRequest{
				Amount:     50,
				Difficulty: difficulty,
				Category:   category,
				Token:      token,
			})
			if errors.Is(err, opentdb_client.ErrTokenExhausted) {
				token = ""
				continue
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "fetch failed (difficulty=%s category=%d): %v\n", difficulty, category, err)
				continue
			}

			for _, q := range results {
				candidate, err := q.ToCandidate()
				if err != nil {
					continue
				}
				candidates = append(candidates, candidate)
			}
		}
	}
	return candidates, nil
}

func generate(ctx context.Context, band models.AgeBand, count int) ([]question.Candidate, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}
	client := question_gen_client.NewQuestionGenClient(apiKey)
	return client.GenerateQuestions(ctx, band, count)
}

type fileQuestion struct {
	Prompt       string   `json:"prompt"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

func loadFile(path string) ([]question.Candidate, error) {
	if path == "" {
		return nil, fmt.Errorf("-file is required when source=file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read JSON: %w", err)
	}
	var questions []fileQuestion
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}

	candidates := make([]question.Candidate, 0, len(questions))
	for _, q := range questions {
		var explanation *string
		if q.Explanation != "" {
			e := q.Explanation
			explanation = &e
		}
		candidates = append(candidates, question.Candidate{
			Prompt:       q.Prompt,
			Choices:      q.Choices,
			CorrectIndex: q.CorrectIndex,
			Explanation:  explanation,
			Source:       models.QuestionSourceManual,
		})
	}
	return candidates, nil
}
