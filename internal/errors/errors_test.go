package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "simple error", err: stderrors.New("something went wrong"), expected: "Error: something went wrong"},
		{name: "validation error", err: NewValidation("name", "must not be empty"), expected: "Error: invalid name: must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Format(tt.err); result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestValidationErrorMatching(t *testing.T) {
	err := fmt.Errorf("create habit: %w", NewValidation("name", "must not be empty"))
	if !stderrors.Is(err, ErrValidation) {
		t.Error("wrapped ValidationError should match ErrValidation")
	}
	if stderrors.Is(err, ErrPersistence) {
		t.Error("ValidationError should not match ErrPersistence")
	}

	var ve *ValidationError
	if !stderrors.As(err, &ve) || ve.Field != "name" {
		t.Errorf("errors.As() did not recover the ValidationError: %v", ve)
	}
}

func TestPersistenceErrorMatching(t *testing.T) {
	cause := stderrors.New("disk full")
	err := &PersistenceError{Op: "save", Key: "habits", Err: cause}

	if !stderrors.Is(err, ErrPersistence) {
		t.Error("PersistenceError should match ErrPersistence")
	}
	if !stderrors.Is(err, cause) {
		t.Error("PersistenceError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), `"habits"`) {
		t.Errorf("Error() = %q, want the key in the message", err.Error())
	}
}

func TestNotFoundf(t *testing.T) {
	err := NotFoundf("badge %q", "nope")
	if !stderrors.Is(err, ErrNotFound) {
		t.Error("NotFoundf should wrap ErrNotFound")
	}
	if err.Error() != `badge "nope": not found` {
		t.Errorf("Error() = %q", err.Error())
	}
}

// TestFatal tests the Fatal function using exec helper process
func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		Fatal(stderrors.New("test error"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		if e.ExitCode() != 1 {
			t.Errorf("Fatal() exit code = %d, want 1", e.ExitCode())
		}
		if !strings.Contains(stderr.String(), "Error: test error") {
			t.Errorf("Fatal() stderr = %q, want to contain %q", stderr.String(), "Error: test error")
		}
	} else {
		t.Errorf("Fatal() did not exit with error: %v", err)
	}
}

// TestFatal_NilError tests that Fatal does nothing when passed a nil error
func TestFatal_NilError(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal_NilError")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL_NIL=1")
	if err := cmd.Run(); err != nil {
		t.Errorf("Fatal(nil) should not exit, but got error: %v", err)
	}
}
