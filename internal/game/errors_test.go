package game

import (
	"errors"
	"fmt"
	"testing"
)

func TestGameErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ErrRoomFull has correct message", ErrRoomFull, "room is full"},
		{"ErrGameAlreadyStarted has correct message", ErrGameAlreadyStarted, "game has already started"},
		{"ErrNotEnoughPlayers has correct message", ErrNotEnoughPlayers, "not enough players to start"},
		{"ErrRoomNotFound has correct message", ErrRoomNotFound, "room not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Error message = %v, want %v", tt.err.Error(), tt.expected)
			}
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	errorList := []error{
		ErrRoomNotFound,
		ErrPlayerNotFound,
		ErrNotHost,
		ErrRoomFull,
		ErrGameAlreadyStarted,
		ErrNotEnoughPlayers,
		ErrAlreadyAnswered,
	}

	for i := 0; i < len(errorList); i++ {
		for j := i + 1; j < len(errorList); j++ {
			if errors.Is(errorList[i], errorList[j]) {
				t.Errorf("Error %v should not be equal to %v", errorList[i], errorList[j])
			}
		}
	}
}

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrRoomNotFound, CodeNotFound},
		{ErrPlayerNotFound, CodeNotFound},
		{ErrNotHost, CodeForbidden},
		{ErrCannotKickHost, CodeForbidden},
		{ErrRoomFull, CodeBadRequest},
		{ErrAlreadyAnswered, CodeBadRequest},
		{ErrStaleQuestion, CodeBadRequest},
		{fmt.Errorf("submit answer: %w", ErrWrongPhase), CodeBadRequest},
		{errors.New("disk full"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	wrapped := fmt.Errorf("join room 123456: %w", ErrRoomFull)

	if !errors.Is(wrapped, ErrRoomFull) {
		t.Error("wrapped error should match ErrRoomFull")
	}
	if !errors.Is(wrapped, ErrBadRequest) {
		t.Error("wrapped error should match its category")
	}
	if errors.Is(wrapped, ErrForbidden) {
		t.Error("wrapped error should not match another category")
	}
}
