package opentdb_client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/popqiz/popqiz/go/clients"
)

// ErrTokenExhausted indicates the session token has served every
// question it can; request a fresh one to keep fetching.
var ErrTokenExhausted = errors.New("opentdb session token exhausted")

// ErrRateLimited indicates the API enforced its one request per five
// seconds limit.
var ErrRateLimited = errors.New("opentdb rate limited")

type OpenTDBClient struct {
	*clients.BaseClient
}

func NewOpenTDBClient() *OpenTDBClient {
	client := &OpenTDBClient{
		BaseClient: clients.NewBaseClient(BaseURL),
	}

	client.SetHeader(JsonHeader, JsonContentType)

	return client
}

type tokenResponse struct {
	ResponseCode int    `json:"response_code"`
	Token        string `json:"token"`
}

// RequestSessionToken fetches a session token. Tokens keep the API
// from serving the same question twice within a session.
func (c *OpenTDBClient) RequestSessionToken(ctx context.Context) (string, error) {
	body, err := c.Get(ctx, tokenEndpoint+"?command=request")
	if err != nil {
		return "", fmt.Errorf("failed to request session token: %w", err)
	}

	var response tokenResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to unmarshal token response: %w, raw response: %s", err, string(body))
	}
	if response.ResponseCode != responseCodeSuccess {
		return "", fmt.Errorf("token request returned response code %d", response.ResponseCode)
	}

	return response.Token, nil
}

// FetchRequest parameterizes a question fetch.
type FetchRequest struct {
	Amount     int
	Difficulty string // empty for any
	Category   int    // 0 for any
	Token      string // empty for none
}

// FetchQuestions retrieves multiple-choice questions from the API.
func (c *OpenTDBClient) FetchQuestions(ctx context.Context, req FetchRequest) ([]TDBQuestion, error) {
	params := url.Values{}
	params.Set("amount", fmt.Sprintf("%d", req.Amount))
	params.Set("type", "multiple")
	if req.Difficulty != "" {
		params.Set("difficulty", req.Difficulty)
	}
	if req.Category != 0 {
		params.Set("category", fmt.Sprintf("%d", req.Category))
	}
	if req.Token != "" {
		params.Set("token", req.Token)
	}

	body, err := c.Get(ctx, questionsEndpoint+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}

	var response TDBQuestionsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions response: %w, raw response: %s", err, string(body))
	}

	switch response.ResponseCode {
	case responseCodeSuccess:
		return response.Results, nil
	case responseCodeNoResults:
		return nil, nil
	case responseCodeTokenNotFound, responseCodeTokenExhausted:
		return nil, ErrTokenExhausted
	case responseCodeRateLimited:
		return nil, ErrRateLimited
	default:
		return nil, fmt.Errorf("questions request returned response code %d", response.ResponseCode)
	}
}
