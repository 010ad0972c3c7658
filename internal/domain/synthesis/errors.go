package synthesis

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownVocabularyValue is matched by every *UnknownVocabularyValueError.
	ErrUnknownVocabularyValue = errors.New("unknown vocabulary value")

	ErrSelectionNotFound   = errors.New("selected code not in registry")
	ErrUnresolvedReference = errors.New("coding does not resolve in registry")
	ErrForeignSystem       = errors.New("coding uses an unknown code system")
)

// UnknownVocabularyValueError reports a severity or clinical status outside
// its fixed vocabulary. The enclosing document is not produced.
type UnknownVocabularyValueError struct {
	Field string
	Value string
}

func (e *UnknownVocabularyValueError) Error() string {
	return fmt.Sprintf("unknown %s value %q", e.Field, e.Value)
}

func (e *UnknownVocabularyValueError) Is(target error) bool {
	return target == ErrUnknownVocabularyValue
}
