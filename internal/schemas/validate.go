// Package schemas validates the JSON artifacts that cross the tool's
// boundaries: candidate batches coming in, bias reports going out. Schemas
// are embedded at compile time.
package schemas

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed *.schema.json
var schemaFiles embed.FS

// Embedded schema names.
const (
	CandidatesSchema = "candidates.schema.json"
	BiasReportSchema = "bias_report.schema.json"
)

// FieldError is a single validation error at a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates the field errors of one failed validation.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError reports a schema that could not be loaded or parsed, as
// opposed to a document that failed validation.
type SchemaLoadError struct {
	Name  string
	Cause error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("failed to load schema %s: %v", e.Name, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error { return e.Cause }

// ValidateCandidates validates a candidate batch document.
func ValidateCandidates(document []byte) error {
	return validate(CandidatesSchema, document)
}

// ValidateCandidatesFile validates a candidate batch file on disk.
func ValidateCandidatesFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read candidates file %s: %w", path, err)
	}
	return ValidateCandidates(data)
}

// ValidateBiasReport validates a serialized bias report.
func ValidateBiasReport(document []byte) error {
	return validate(BiasReportSchema, document)
}

func validate(schemaName string, document []byte) error {
	schemaData, err := schemaFiles.ReadFile(schemaName)
	if err != nil {
		// Embedded schemas are part of the build; missing means a packaging bug.
		return &SchemaLoadError{Name: schemaName, Cause: err}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaData),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return &SchemaLoadError{Name: schemaName, Cause: err}
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
