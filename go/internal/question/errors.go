package question

import "errors"

var (
	// ErrNoQuestionsAvailable indicates the age band has no questions at
	// all, even after widening selection. A room cannot open or advance
	// without one; seed the cache first.
	ErrNoQuestionsAvailable = errors.New("no questions available for age band")

	// ErrQuestionNotFound indicates no cached question matches the id.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrInvalidQuestion indicates a candidate failed validation and was
	// not cached.
	ErrInvalidQuestion = errors.New("invalid question")
)
