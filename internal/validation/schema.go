package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-fieldkit/internal/schema"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("structure schema invalid")
	ErrSchemaValidation = errors.New("structure validation failed")
)

// ValidationIssue captures a single validation failure.
type ValidationIssue struct {
	Location string
	Message  string
}

// PayloadValidationError surfaces validation issues with their JSON pointer
// locations.
type PayloadValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) && payloadErr != nil {
		return payloadErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectValidationIssues(validationErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

// Compiler compiles structure schemas once and reuses them. The zero value
// is ready to use and safe for concurrent callers.
type Compiler struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// Compile checks the keyword subset and compiles schema with draft 2020-12.
func (c *Compiler) Compile(def map[string]any) (*jsonschema.Schema, error) {
	if len(def) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	key := string(encoded)

	c.mu.RLock()
	cached, ok := c.compiled[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	if err := schema.ValidateStructureSubset(def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	compiled, err := compileSchema(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}

	c.mu.Lock()
	if c.compiled == nil {
		c.compiled = make(map[string]*jsonschema.Schema)
	}
	c.compiled[key] = compiled
	c.mu.Unlock()
	return compiled, nil
}

// ValidatePayload validates payload against def. A nil or empty schema
// accepts everything.
func (c *Compiler) ValidatePayload(def map[string]any, payload any) error {
	compiled, err := c.Compile(def)
	if err != nil {
		return err
	}
	if compiled == nil {
		return nil
	}
	if err := compiled.Validate(normalizePayload(payload)); err != nil {
		return &PayloadValidationError{Issues: Issues(err), Cause: err}
	}
	return nil
}

// ValidateSchema ensures the schema can be compiled.
func ValidateSchema(def map[string]any) error {
	var c Compiler
	_, err := c.Compile(def)
	return err
}

// normalizePayload round trips payload through encoding/json so nested Go
// numeric and typed slice values match what the validator expects.
func normalizePayload(payload any) any {
	switch payload.(type) {
	case nil, string, bool, float64:
		return payload
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return payload
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return payload
	}
	return out
}

func compileSchema(encoded []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
