package sink

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-diagnostic/pkg/session"
)

// FormNameField is the field hosted form backends use to route submissions.
const FormNameField = "form-name"

// DefaultOperationID names the submission operation in the bundled contract.
const DefaultOperationID = "submitDiagnostic"

//go:embed contracts/session0.yaml
var defaultContract []byte

var contractMediaTypes = []string{"multipart/form-data", "application/x-www-form-urlencoded"}

// Contract validates submissions against the request body schema of one
// OpenAPI operation.
type Contract struct {
	OperationID string
	Method      string
	Path        string
	MediaType   string

	schema *openapi3.Schema
}

// ContractError wraps schema violations found by Contract.Validate.
type ContractError struct {
	OperationID string
	Err         error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("sink: payload violates %s contract: %v", e.OperationID, e.Err)
}

func (e *ContractError) Unwrap() error { return e.Err }

// DefaultContract loads the bundled Session 0 contract.
func DefaultContract(ctx context.Context) (*Contract, error) {
	return LoadContract(ctx, defaultContract, DefaultOperationID)
}

// LoadContract parses an OpenAPI document and selects the operation whose
// request body describes the submission.
func LoadContract(ctx context.Context, raw []byte, operationID string) (*Contract, error) {
	if len(raw) == 0 {
		return nil, errors.New("sink: contract document is empty")
	}
	if strings.TrimSpace(operationID) == "" {
		return nil, errors.New("sink: contract operation id is required")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("sink: load contract: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("sink: validate contract: %w", err)
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("sink: contract does not contain any paths")
	}

	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil || op.OperationID != operationID {
				continue
			}
			mediaType, schema, err := requestSchema(op)
			if err != nil {
				return nil, fmt.Errorf("sink: operation %s: %w", operationID, err)
			}
			return &Contract{
				OperationID: operationID,
				Method:      strings.ToUpper(method),
				Path:        path,
				MediaType:   mediaType,
				schema:      schema,
			}, nil
		}
	}
	return nil, fmt.Errorf("sink: operation %q not found in contract", operationID)
}

func requestSchema(op *openapi3.Operation) (string, *openapi3.Schema, error) {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return "", nil, errors.New("missing request body")
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range contractMediaTypes {
		mt, ok := content[mediaType]
		if !ok || mt == nil || mt.Schema == nil || mt.Schema.Value == nil {
			continue
		}
		return mediaType, mt.Schema.Value, nil
	}
	return "", nil, errors.New("request body has no form media type")
}

// Validate checks the submission, including the form name, against the
// operation schema.
func (c *Contract) Validate(formName string, entries session.Entries) error {
	if c == nil || c.schema == nil {
		return nil
	}
	payload := entries.Map()
	payload[FormNameField] = formName
	if err := c.schema.VisitJSON(payload, openapi3.MultiErrors()); err != nil {
		return &ContractError{OperationID: c.OperationID, Err: err}
	}
	return nil
}

// Fields lists the properties the contract declares, sorted by name.
func (c *Contract) Fields() []string {
	if c == nil || c.schema == nil {
		return nil
	}
	out := make([]string, 0, len(c.schema.Properties))
	for name := range c.schema.Properties {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
