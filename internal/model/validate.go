package model

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Review score bounds, enforced at both the request layer and the store
// layer (the CHECK constraint on reviews.score).
const (
	MinScore = 1
	MaxScore = 10
)

// ErrScoreOutOfRange is returned for scores outside [MinScore, MaxScore].
var ErrScoreOutOfRange = fmt.Errorf("score must be between %d and %d", MinScore, MaxScore)

// Year bound violations carry distinct messages per bound.
var (
	ErrYearNegative = errors.New("year must not be negative")
	ErrYearInFuture = errors.New("year must not be in the future")
)

var usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)

// ValidateYear checks 0 <= year <= current calendar year.
func ValidateYear(year int64) error {
	if year < 0 {
		return ErrYearNegative
	}
	if year > int64(time.Now().Year()) {
		return ErrYearInFuture
	}
	return nil
}

// ValidateScore checks MinScore <= score <= MaxScore.
func ValidateScore(score int64) error {
	if score < MinScore || score > MaxScore {
		return ErrScoreOutOfRange
	}
	return nil
}

// ValidateUsername checks the username charset, length and the reserved
// "me" name.
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if username == ReservedUsername {
		return errors.New("username 'me' is reserved")
	}
	if len(username) > 150 {
		return errors.New("username must be at most 150 characters")
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("username may contain only letters, digits and @/./+/-/_")
	}
	return nil
}
