package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestBridgeError_Error(t *testing.T) {
	tests := []struct {
		name      string
		err       *BridgeError
		wantParts []string
	}{
		{
			name:      "with cause",
			err:       Wrap(RefactoringFailed, "rename rejected", errors.New("conflict in scope")),
			wantParts: []string{"REFACTORING_FAILED", "rename rejected", "conflict in scope"},
		},
		{
			name:      "without cause",
			err:       New(ProjectNotFound, "no open codebase matched 'web'"),
			wantParts: []string{"PROJECT_NOT_FOUND", "no open codebase matched 'web'"},
		},
		{
			name:      "formatted",
			err:       Newf(LocationOutOfBounds, "line %d outside [1, %d]", 99, 40),
			wantParts: []string{"LOCATION_OUT_OF_BOUNDS", "line 99 outside [1, 40]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want it to contain %q", got, part)
				}
			}
		})
	}
}

func TestBridgeError_Unwrap(t *testing.T) {
	cause := errors.New("disk gone")
	err := Wrap(FileNotFound, "cannot stat file", cause)

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false, want true")
	}
}

func TestInternal_RedactsCause(t *testing.T) {
	err := Internal(errors.New("/home/user/secret/path: permission denied"))

	if err.Code != InternalError {
		t.Errorf("Code = %v, want %v", err.Code, InternalError)
	}
	if strings.Contains(err.Message, "secret") {
		t.Errorf("Message = %q leaks cause text", err.Message)
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"bridge error", New(IndexingInProgress, "indexing"), IndexingInProgress},
		{"wrapped bridge error", fmt.Errorf("outer: %w", New(InvalidInput, "bad limit")), InvalidInput},
		{"timeout", &TimeoutError{Label: "Rename", Timeout: time.Second}, ErrorCode("TIMEOUT")},
		{"plain error", errors.New("boom"), InternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsTimeout(t *testing.T) {
	te := &TimeoutError{Label: "Move", Timeout: 30 * time.Second}

	if !IsTimeout(te) {
		t.Errorf("IsTimeout(TimeoutError) = false, want true")
	}
	if !IsTimeout(fmt.Errorf("wrapped: %w", te)) {
		t.Errorf("IsTimeout(wrapped TimeoutError) = false, want true")
	}
	if IsTimeout(New(RefactoringFailed, "failed")) {
		t.Errorf("IsTimeout(BridgeError) = true, want false")
	}
	if !strings.Contains(te.Error(), "Move") || !strings.Contains(te.Error(), "30s") {
		t.Errorf("Error() = %q, want label and timeout in message", te.Error())
	}
}
