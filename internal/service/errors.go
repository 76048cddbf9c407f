package service

import (
	"errors"
	"fmt"
)

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrIncompleteProfile = errors.New("profile is incomplete")
	ErrLLMService        = errors.New("llm service failed")
	ErrProgramNotFound   = errors.New("training program not found")
	ErrExportUnavailable = errors.New("program export is not configured")
)

// LLMServiceError wraps a generation gateway failure. It matches ErrLLMService.
type LLMServiceError struct {
	Message string
	Err     error
}

func (e *LLMServiceError) Error() string {
	return fmt.Sprintf("llm service error: %s", e.Message)
}

func (e *LLMServiceError) Is(target error) bool {
	return target == ErrLLMService
}

func (e *LLMServiceError) Unwrap() error {
	return e.Err
}
