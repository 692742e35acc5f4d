package llmstream

import (
	"errors"
	"fmt"
)

// FunctionDetails represents the function definition within a tool (OpenAI
// format). This matches the universal standard used by OpenAI and OpenRouter
// and cleanly converts to Anthropic's input_schema form.
type FunctionDetails struct {
	Name        string         `json:"name"`                  // Function name (required)
	Description string         `json:"description,omitempty"` // What the function does
	Parameters  map[string]any `json:"parameters"`            // JSON Schema for parameters
}

// Tool represents a function tool (OpenAI universal format).
type Tool struct {
	Type     string          `json:"type"`     // Always "function" for function tools
	Function FunctionDetails `json:"function"` // Function definition
}

// Validate checks the tool definition.
func (t *Tool) Validate() error {
	if t.Type != "function" {
		return fmt.Errorf("tool type must be 'function', got '%s'", t.Type)
	}
	if t.Function.Name == "" {
		return errors.New("tool function name is required")
	}
	return nil
}

// StrictParameters returns the tool's parameter schema rewritten for a
// strict-mode vendor. The tool itself is not modified.
func (t *Tool) StrictParameters() map[string]any {
	return TranslateStrictSchema(t.Function.Parameters)
}

// NewSearchTool creates a web search tool (OpenAI format). Providers convert
// it to their native web-search form when one exists.
func NewSearchTool() (*Tool, error) {
	return NewCustomTool(
		"search",
		"Search the web for current information",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query",
				},
			},
			"required": []string{"query"},
		},
	)
}

// NewCustomTool creates a custom function tool (OpenAI format).
//
// Example parameters:
//
//	map[string]any{
//	  "type": "object",
//	  "properties": map[string]any{
//	    "location": map[string]any{
//	      "type": "string",
//	      "description": "The city and state, e.g. San Francisco, CA",
//	    },
//	  },
//	  "required": []string{"location"},
//	}
func NewCustomTool(name, description string, parameters map[string]any) (*Tool, error) {
	if name == "" {
		return nil, errors.New("tool name is required")
	}
	if description == "" {
		return nil, errors.New("tool description is required")
	}
	if parameters == nil {
		return nil, errors.New("parameters are required")
	}

	tool := &Tool{
		Type: "function",
		Function: FunctionDetails{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}

	if err := tool.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create custom tool: %w", err)
	}
	return tool, nil
}
