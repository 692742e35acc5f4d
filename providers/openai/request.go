package openai

import (
	"fmt"

	"github.com/kestrelai/kestrel-llm-go"
)

// responsesRequest is the POST /responses payload.
type responsesRequest struct {
	Model             string         `json:"model"`
	Input             []any          `json:"input"`
	Instructions      string         `json:"instructions,omitempty"`
	Tools             []responseTool `json:"tools,omitempty"`
	MaxOutputTokens   *int           `json:"max_output_tokens,omitempty"`
	Temperature       *float64       `json:"temperature,omitempty"`
	TopP              *float64       `json:"top_p,omitempty"`
	ParallelToolCalls *bool          `json:"parallel_tool_calls,omitempty"`
	Reasoning         *reasoningOpts `json:"reasoning,omitempty"`
	Stream            bool           `json:"stream"`
}

// responseTool is the Responses API flat function tool shape (no nested
// "function" object, unlike chat completions).
type responseTool struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
	Strict      bool           `json:"strict"`
}

type reasoningOpts struct {
	Effort  string `json:"effort,omitempty"`
	Summary string `json:"summary,omitempty"`
}

type inputMessage struct {
	Role    string         `json:"role"`
	Content []inputContent `json:"content"`
}

type inputContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type functionCallItem struct {
	Type      string `json:"type"`
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type functionCallOutputItem struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"`
	Output string `json:"output"`
}

// buildResponsesRequest converts a canonical request to the Responses API
// payload. Tool schemas go through the strict-mode rewrite; the originals
// are never modified.
func buildResponsesRequest(req *llmstream.GenerateRequest) (*responsesRequest, error) {
	out := &responsesRequest{
		Model:  req.Model,
		Stream: true,
	}

	if req.Agent != nil {
		out.Instructions = req.Agent.SystemPrompt
	}

	for _, tool := range req.Agent.ToolList() {
		if err := tool.Validate(); err != nil {
			return nil, fmt.Errorf("openai: invalid tool: %w", err)
		}
		out.Tools = append(out.Tools, responseTool{
			Type:        "function",
			Name:        tool.Function.Name,
			Description: tool.Function.Description,
			Parameters:  tool.StrictParameters(),
			Strict:      true,
		})
	}

	params := req.Agent.RequestParamsOrDefault()
	out.MaxOutputTokens = params.MaxTokens
	out.Temperature = params.Temperature
	out.TopP = params.TopP
	out.ParallelToolCalls = params.ParallelToolCalls
	if params.ThinkingRequested() {
		effort := "medium"
		if params.ThinkingLevel != nil {
			effort = *params.ThinkingLevel
		}
		out.Reasoning = &reasoningOpts{Effort: effort, Summary: "auto"}
	}

	input, err := convertMessages(req.Messages)
	if err != nil {
		return nil, err
	}
	out.Input = input

	return out, nil
}

// convertMessages translates conversation history to Responses API input
// items. Tool use and tool result blocks become top-level function_call and
// function_call_output items; everything else folds into role messages.
func convertMessages(messages []llmstream.Message) ([]any, error) {
	var input []any

	for i, msg := range messages {
		var content []inputContent

		flushContent := func() {
			if len(content) > 0 {
				input = append(input, inputMessage{Role: msg.Role, Content: content})
				content = nil
			}
		}

		for _, block := range msg.Blocks {
			switch block.BlockType {
			case llmstream.BlockTypeText:
				content = append(content, inputContent{
					Type: textContentType(msg.Role),
					Text: block.Text(),
				})

			case llmstream.BlockTypeImage:
				mediaType, _ := block.Content["media_type"].(string)
				data, _ := block.Content["base64"].(string)
				content = append(content, inputContent{
					Type:     "input_image",
					ImageURL: fmt.Sprintf("data:%s;base64,%s", mediaType, data),
				})

			case llmstream.BlockTypeToolUse:
				callID, ok := block.CallID()
				if !ok {
					return nil, fmt.Errorf("openai: tool_use block in message %d has no call_id", i)
				}
				name, _ := block.ToolName()
				flushContent()
				input = append(input, functionCallItem{
					Type:      "function_call",
					CallID:    callID,
					Name:      name,
					Arguments: block.ToolArguments(),
				})

			case llmstream.BlockTypeToolResult:
				callID, ok := block.CallID()
				if !ok {
					return nil, fmt.Errorf("openai: tool_result block in message %d has no call_id", i)
				}
				flushContent()
				input = append(input, functionCallOutputItem{
					Type:   "function_call_output",
					CallID: callID,
					Output: block.ToolOutput(),
				})

			case llmstream.BlockTypeThinking:
				// Reasoning is not replayed to the Responses API.
			}
		}

		flushContent()
	}

	return input, nil
}

func textContentType(role string) string {
	if role == "assistant" {
		return "output_text"
	}
	return "input_text"
}
