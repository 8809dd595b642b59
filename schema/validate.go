package schema

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/eino-contrib/jsonschema"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/favbox/promptflow/internal/jsonvalue"
)

// ValidationError 参数未通过 JSON Schema 校验。
type ValidationError struct {
	// Issues 每一项校验失败，形如 "path: reason"
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("arguments do not match schema: %s", strings.Join(e.Issues, "; "))
}

// ValidateArgs 用 JSON Schema 校验参数，收集全部失败项而不是遇到第一个就返回。
// sc 为 nil 时不做校验。
func ValidateArgs(sc *jsonschema.Schema, args any) error {
	if sc == nil {
		return nil
	}

	oas, err := toOpenAPISchema(sc)
	if err != nil {
		return err
	}

	value, err := jsonvalue.Normalize(args)
	if err != nil {
		return err
	}
	if value == nil {
		value = map[string]any{}
	}

	if err = oas.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return &ValidationError{Issues: collectIssues(err)}
	}

	return nil
}

func toOpenAPISchema(sc *jsonschema.Schema) (*openapi3.Schema, error) {
	data, err := sonic.Marshal(sc)
	if err != nil {
		return nil, fmt.Errorf("marshal json schema: %w", err)
	}

	oas := &openapi3.Schema{}
	if err = oas.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("convert json schema: %w", err)
	}

	return oas, nil
}

func collectIssues(err error) []string {
	switch e := err.(type) {
	case openapi3.MultiError:
		var issues []string
		for _, sub := range e {
			issues = append(issues, collectIssues(sub)...)
		}
		return issues
	case *openapi3.SchemaError:
		path := strings.Join(e.JSONPointer(), ".")
		if path == "" {
			return []string{e.Reason}
		}
		return []string{path + ": " + e.Reason}
	default:
		return []string{err.Error()}
	}
}
