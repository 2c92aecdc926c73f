package port

import "docgen/internal/domain"

// MethodParser finds method boundaries in a source file.
type MethodParser interface {
	Parse(content []byte) ([]domain.MethodUnit, error)

	Language() string
}
