package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/kestrelai/kestrel-llm-go"
)

// maxImageSegmentBytes is the per-segment budget handed to the image
// preprocessor. Anthropic rejects single image blocks beyond ~5MB.
const maxImageSegmentBytes = 4 * 1024 * 1024

// convertMessages converts library messages to Anthropic SDK format. When an
// image preprocessor is configured, replayed image blocks are split into
// per-segment blocks first; a nil preprocessor replays them as-is.
func convertMessages(ctx context.Context, messages []llmstream.Message, pre llmstream.ImagePreprocessor) ([]anthropic.MessageParam, error) {
	result := make([]anthropic.MessageParam, 0, len(messages))

	for i, msg := range messages {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Blocks))

		for j, block := range msg.Blocks {
			switch block.BlockType {
			case llmstream.BlockTypeText:
				if block.TextContent == nil {
					return nil, fmt.Errorf("message %d, block %d: text block missing text_content", i, j)
				}
				blocks = append(blocks, anthropic.NewTextBlock(*block.TextContent))

			case llmstream.BlockTypeToolUse:
				callID, ok := block.CallID()
				if !ok || callID == "" {
					return nil, fmt.Errorf("message %d, block %d: tool_use block missing call_id", i, j)
				}
				name, ok := block.ToolName()
				if !ok || name == "" {
					return nil, fmt.Errorf("message %d, block %d: tool_use block missing name", i, j)
				}

				// Arguments are stored as the JSON string the model
				// produced; Anthropic wants the decoded object.
				input := make(map[string]any)
				if args := block.ToolArguments(); args != "" {
					if err := json.Unmarshal([]byte(args), &input); err != nil {
						return nil, fmt.Errorf("message %d, block %d: malformed tool arguments: %w", i, j, err)
					}
				}

				blocks = append(blocks, anthropic.NewToolUseBlock(callID, input, name))

			case llmstream.BlockTypeToolResult:
				callID, ok := block.CallID()
				if !ok || callID == "" {
					return nil, fmt.Errorf("message %d, block %d: tool_result block missing call_id", i, j)
				}

				isError := false
				if errFlag, ok := block.Content["is_error"].(bool); ok {
					isError = errFlag
				}

				blocks = append(blocks, anthropic.NewToolResultBlock(callID, block.ToolOutput(), isError))

			case llmstream.BlockTypeImage:
				segments, err := llmstream.SplitImageBlock(ctx, pre, block, maxImageSegmentBytes)
				if err != nil {
					return nil, fmt.Errorf("message %d, block %d: image preprocessing failed: %w", i, j, err)
				}
				for _, segment := range segments {
					mediaType, _ := segment.Content["media_type"].(string)
					data, _ := segment.Content["base64"].(string)
					blocks = append(blocks, anthropic.NewImageBlockBase64(mediaType, data))
				}

			case llmstream.BlockTypeThinking:
				// Unsigned thinking cannot be replayed; skip it.

			default:
				// Skip unsupported block types.
			}
		}

		if len(blocks) == 0 {
			continue
		}

		var message anthropic.MessageParam
		switch msg.Role {
		case "user", "tool":
			// Tool results travel in user-role messages on Anthropic.
			message = anthropic.NewUserMessage(blocks...)
		case "assistant":
			message = anthropic.NewAssistantMessage(blocks...)
		default:
			return nil, fmt.Errorf("message %d: unsupported role '%s'", i, msg.Role)
		}

		result = append(result, message)
	}

	return result, nil
}

// countImageBlocks counts the image blocks a request replays, for the
// image_count field on the usage record.
func countImageBlocks(messages []llmstream.Message) int {
	count := 0
	for _, msg := range messages {
		for _, block := range msg.Blocks {
			if block.BlockType == llmstream.BlockTypeImage {
				count++
			}
		}
	}
	return count
}
