package model

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePostContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"valid content", "hello world", nil},
		{"exactly 280 runes", strings.Repeat("a", 280), nil},
		{"281 runes rejected", strings.Repeat("a", 281), ErrContentTooLong},
		{"281 multibyte runes rejected", strings.Repeat("é", 281), ErrContentTooLong},
		{"280 multibyte runes accepted", strings.Repeat("é", 280), nil},
		{"empty rejected", "", ErrContentRequired},
		{"whitespace only rejected", "   \n\t ", ErrContentRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePostContent(tt.content)
			if !errors.Is(err, tt.wantErr) && err != tt.wantErr {
				t.Errorf("ValidatePostContent() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCommentContent(t *testing.T) {
	if err := ValidateCommentContent("nice post"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := ValidateCommentContent(strings.Repeat("a", 200)); err != nil {
		t.Errorf("expected nil for 200 runes, got %v", err)
	}
	if err := ValidateCommentContent(strings.Repeat("a", 201)); !errors.Is(err, ErrCommentTooLong) {
		t.Errorf("expected ErrCommentTooLong for 201 runes, got %v", err)
	}
	if err := ValidateCommentContent("  "); !errors.Is(err, ErrContentRequired) {
		t.Errorf("expected ErrContentRequired, got %v", err)
	}
}
