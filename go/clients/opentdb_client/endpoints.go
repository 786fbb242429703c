package opentdb_client

const (
	// Base URL for the Open Trivia Database API
	BaseURL = "https://opentdb.com/"

	// Paths
	questionsEndpoint = "api.php"
	tokenEndpoint     = "api_token.php"

	// Response codes, per https://opentdb.com/api_config.php
	responseCodeSuccess        = 0
	responseCodeNoResults      = 1
	responseCodeInvalidParam   = 2
	responseCodeTokenNotFound  = 3
	responseCodeTokenExhausted = 4
	responseCodeRateLimited    = 5

	JsonHeader      = "accept"
	JsonContentType = "application/json"
)

// Difficulty levels accepted by the API.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Category ids worth rotating through for variety.
// See https://opentdb.com/api_category.php for the full list.
var Categories = []int{
	9,  // General Knowledge
	10, // Entertainment: Books
	11, // Entertainment: Film
	12, // Entertainment: Music
	17, // Science & Nature
	18, // Science: Computers
	22, // Geography
	23, // History
}
