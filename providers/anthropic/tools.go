package anthropic

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/kestrelai/kestrel-llm-go"
)

// convertTools converts library Tool format to Anthropic SDK format.
// Anthropic is not a strict-mode vendor, so original parameter schemas pass
// through unmodified.
func convertTools(tools []llmstream.Tool) ([]anthropic.ToolUnionParam, error) {
	if len(tools) == 0 {
		return nil, nil
	}

	result := make([]anthropic.ToolUnionParam, 0, len(tools))

	for i, tool := range tools {
		var anthropicTool anthropic.ToolUnionParam
		var err error

		switch tool.Function.Name {
		case "search":
			// Anthropic search is server-side executed web search.
			anthropicTool, err = convertSearchTool(&tool)
		default:
			anthropicTool, err = convertCustomTool(&tool)
		}

		if err != nil {
			return nil, fmt.Errorf("tool %d (%s): %w", i, tool.Function.Name, err)
		}

		result = append(result, anthropicTool)
	}

	return result, nil
}

// convertSearchTool converts the search tool to Anthropic web_search format.
func convertSearchTool(tool *llmstream.Tool) (anthropic.ToolUnionParam, error) {
	if tool.Function.Name != "search" {
		return anthropic.ToolUnionParam{}, fmt.Errorf("expected search tool, got %s", tool.Function.Name)
	}

	return anthropic.ToolUnionParam{
		OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{
			// Name and Type have default values and will auto-marshal
		},
	}, nil
}

// convertCustomTool converts a custom function tool to Anthropic's
// input_schema format. The OpenAI-format schema (tool.Function.Parameters)
// is split into Properties/Required plus ExtraFields.
func convertCustomTool(tool *llmstream.Tool) (anthropic.ToolUnionParam, error) {
	if err := tool.Validate(); err != nil {
		return anthropic.ToolUnionParam{}, err
	}

	properties := tool.Function.Parameters["properties"]

	schema := anthropic.ToolInputSchemaParam{
		Properties:  properties,
		ExtraFields: make(map[string]any),
	}

	switch required := tool.Function.Parameters["required"].(type) {
	case []string:
		schema.Required = required
	case []any:
		schema.Required = make([]string, 0, len(required))
		for _, v := range required {
			if str, ok := v.(string); ok {
				schema.Required = append(schema.Required, str)
			}
		}
	}

	for key, value := range tool.Function.Parameters {
		if key != "type" && key != "properties" && key != "required" {
			schema.ExtraFields[key] = value
		}
	}

	toolParam := anthropic.ToolUnionParamOfTool(schema, tool.Function.Name)

	if tool.Function.Description != "" {
		if toolParam.OfTool == nil {
			toolParam.OfTool = &anthropic.ToolParam{}
		}
		toolParam.OfTool.Description = anthropic.String(tool.Function.Description)
	}

	return toolParam, nil
}
