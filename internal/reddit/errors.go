package reddit

import "fmt"

// AuthError reports a rejected or expired credential (401/403).
type AuthError struct {
	Status int
	Msg    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("reddit auth failed: HTTP %d: %s", e.Status, e.Msg)
}

// RateLimitError reports a 429 from the submit API. The poll loop halts the
// batch and lets the next scheduled tick retry instead of hammering the API.
type RateLimitError struct {
	Msg string
}

func (e *RateLimitError) Error() string {
	return "reddit rate limited: " + e.Msg
}

// SubmissionError reports an API-level rejection inside the JSON envelope
// (bad flair, subreddit rules, and so on) or an unexpected status.
type SubmissionError struct {
	Code string
	Msg  string
}

func (e *SubmissionError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("reddit submission rejected: %s: %s", e.Code, e.Msg)
	}
	return "reddit submission rejected: " + e.Msg
}
