package openrouter

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kestrelai/kestrel-llm-go"
)

// buildChatCompletionRequest converts a canonical request to the OpenAI
// chat completions dialect OpenRouter speaks.
func buildChatCompletionRequest(req *llmstream.GenerateRequest) (openai.ChatCompletionRequest, error) {
	out := openai.ChatCompletionRequest{
		Model:  req.Model,
		Stream: true,
		StreamOptions: &openai.StreamOptions{
			IncludeUsage: true,
		},
	}

	if req.Agent != nil && req.Agent.SystemPrompt != "" {
		out.Messages = append(out.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.Agent.SystemPrompt,
		})
	}

	messages, err := convertMessages(req.Messages)
	if err != nil {
		return openai.ChatCompletionRequest{}, err
	}
	out.Messages = append(out.Messages, messages...)

	for _, tool := range req.Agent.ToolList() {
		if err := tool.Validate(); err != nil {
			return openai.ChatCompletionRequest{}, fmt.Errorf("openrouter: invalid tool: %w", err)
		}
		out.Tools = append(out.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
			},
		})
	}

	params := req.Agent.RequestParamsOrDefault()
	if params.MaxTokens != nil {
		out.MaxCompletionTokens = *params.MaxTokens
	}
	if params.Temperature != nil {
		out.Temperature = float32(*params.Temperature)
	}
	if params.TopP != nil {
		out.TopP = float32(*params.TopP)
	}
	if len(params.Stop) > 0 {
		out.Stop = params.Stop
	}
	if params.ParallelToolCalls != nil {
		out.ParallelToolCalls = *params.ParallelToolCalls
	}

	return out, nil
}

// convertMessages flattens block-structured history into chat messages.
// Assistant tool_use blocks become tool_calls on the assistant message;
// tool_result blocks become tool-role messages keyed by call id. Image
// blocks become data-URL image parts; chat completions allow either a plain
// string or multi-part content, so a message with images carries its text as
// parts too.
func convertMessages(messages []llmstream.Message) ([]openai.ChatCompletionMessage, error) {
	var result []openai.ChatCompletionMessage

	for i, msg := range messages {
		var texts []string
		var parts []openai.ChatMessagePart
		var toolCalls []openai.ToolCall
		hasImage := false

		for j, block := range msg.Blocks {
			switch block.BlockType {
			case llmstream.BlockTypeText:
				texts = append(texts, block.Text())
				parts = append(parts, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeText,
					Text: block.Text(),
				})

			case llmstream.BlockTypeImage:
				mediaType, _ := block.Content["media_type"].(string)
				data, _ := block.Content["base64"].(string)
				hasImage = true
				parts = append(parts, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    fmt.Sprintf("data:%s;base64,%s", mediaType, data),
						Detail: openai.ImageURLDetailAuto,
					},
				})

			case llmstream.BlockTypeToolUse:
				callID, ok := block.CallID()
				if !ok || callID == "" {
					return nil, fmt.Errorf("message %d, block %d: tool_use block missing call_id", i, j)
				}
				name, _ := block.ToolName()
				toolCalls = append(toolCalls, openai.ToolCall{
					ID:   callID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      name,
						Arguments: block.ToolArguments(),
					},
				})

			case llmstream.BlockTypeToolResult:
				callID, ok := block.CallID()
				if !ok || callID == "" {
					return nil, fmt.Errorf("message %d, block %d: tool_result block missing call_id", i, j)
				}
				result = append(result, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    block.ToolOutput(),
					ToolCallID: callID,
				})

			case llmstream.BlockTypeThinking:
				// Reasoning is not replayed through the gateway.
			}
		}

		if len(texts) == 0 && len(toolCalls) == 0 && !hasImage {
			continue
		}

		role := msg.Role
		if role == "tool" {
			// Tool results were already emitted above.
			continue
		}

		message := openai.ChatCompletionMessage{
			Role:      role,
			ToolCalls: toolCalls,
		}
		if hasImage {
			// Content and MultiContent are mutually exclusive in the dialect.
			message.MultiContent = parts
		} else {
			message.Content = strings.Join(texts, "\n")
		}
		result = append(result, message)
	}

	return result, nil
}
