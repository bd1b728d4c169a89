package model

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateYear(t *testing.T) {
	currentYear := int64(time.Now().Year())

	tests := []struct {
		name    string
		year    int64
		wantErr error
	}{
		{"zero", 0, nil},
		{"current year", currentYear, nil},
		{"past year", 1927, nil},
		{"next year", currentYear + 1, ErrYearInFuture},
		{"negative", -1, ErrYearNegative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateYear(tt.year)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateYear(%d) = %v, want %v", tt.year, err, tt.wantErr)
			}
		})
	}
}

func TestValidateScore(t *testing.T) {
	for _, score := range []int64{1, 5, 10} {
		if err := ValidateScore(score); err != nil {
			t.Errorf("ValidateScore(%d) = %v, want nil", score, err)
		}
	}
	// The request layer uses the same 1..10 bound as the store constraint:
	// 0 and 11 are rejected.
	for _, score := range []int64{0, 11, -3, 100} {
		if err := ValidateScore(score); !errors.Is(err, ErrScoreOutOfRange) {
			t.Errorf("ValidateScore(%d) = %v, want ErrScoreOutOfRange", score, err)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"simple", "reader42", false},
		{"with allowed punctuation", "user.name+tag@host-1_x", false},
		{"empty", "", true},
		{"reserved me", "me", true},
		{"spaces", "two words", true},
		{"too long", strings.Repeat("a", 151), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}
