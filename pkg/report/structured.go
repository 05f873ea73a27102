package report

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var tableSetSchema []byte

// ErrSchemaViolation is returned when an encoded table set does not match the
// published report schema.
var ErrSchemaViolation = errors.New("report does not match schema")

// YAMLSink encodes the table set as YAML.
type YAMLSink struct {
	W io.Writer
}

// Write implements Sink.
func (s *YAMLSink) Write(_ context.Context, set *TableSet) error {
	enc := yaml.NewEncoder(s.W)
	enc.SetIndent(2)

	err := enc.Encode(set)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("flush yaml: %w", err)
	}

	return nil
}

// JSONSink encodes the table set as indented JSON after validating it
// against the embedded report schema.
type JSONSink struct {
	W io.Writer
}

// Write implements Sink.
func (s *JSONSink) Write(_ context.Context, set *TableSet) error {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	err = ValidateJSON(data)
	if err != nil {
		return err
	}

	var buf bytes.Buffer

	buf.Write(data)
	buf.WriteByte('\n')

	_, err = buf.WriteTo(s.W)
	if err != nil {
		return fmt.Errorf("write json: %w", err)
	}

	return nil
}

// ValidateJSON checks an encoded table set against the report schema.
func ValidateJSON(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(tableSetSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validate json: %w", err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		msgs = append(msgs, verr.String())
	}

	return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(msgs, "; "))
}
