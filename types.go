package llmstream

// Block type constants for conversation items.
const (
	BlockTypeText       = "text"
	BlockTypeThinking   = "thinking"
	BlockTypeToolUse    = "tool_use"
	BlockTypeToolResult = "tool_result"
	BlockTypeImage      = "image"
)

// Block is one content block of a prior conversation item. Provider adapters
// translate blocks into their vendor's wire format when replaying history.
//
// The Content field stores block-type-specific structured data:
//   - text:        empty (text in TextContent)
//   - thinking:    empty (text in TextContent)
//   - tool_use:    {"call_id": "...", "name": "...", "arguments": "..."}
//   - tool_result: {"call_id": "...", "output": "...", "is_error": bool}
//   - image:       {"media_type": "...", "base64": "..."}
type Block struct {
	BlockType   string         `json:"block_type"`
	TextContent *string        `json:"text_content,omitempty"`
	Content     map[string]any `json:"content,omitempty"`
}

// IsToolBlock returns true for tool_use and tool_result blocks.
func (b *Block) IsToolBlock() bool {
	return b.BlockType == BlockTypeToolUse || b.BlockType == BlockTypeToolResult
}

// CallID returns the call id from a tool_use or tool_result block.
func (b *Block) CallID() (string, bool) {
	if !b.IsToolBlock() {
		return "", false
	}
	id, ok := b.Content["call_id"].(string)
	return id, ok
}

// ToolName returns the function name from a tool_use block.
func (b *Block) ToolName() (string, bool) {
	if b.BlockType != BlockTypeToolUse {
		return "", false
	}
	name, ok := b.Content["name"].(string)
	return name, ok
}

// ToolArguments returns the argument JSON string from a tool_use block.
func (b *Block) ToolArguments() string {
	if b.BlockType != BlockTypeToolUse {
		return ""
	}
	args, _ := b.Content["arguments"].(string)
	return args
}

// ToolOutput returns the output text from a tool_result block.
func (b *Block) ToolOutput() string {
	if b.BlockType != BlockTypeToolResult {
		return ""
	}
	out, _ := b.Content["output"].(string)
	return out
}

// Text returns the text content or "".
func (b *Block) Text() string {
	if b.TextContent == nil {
		return ""
	}
	return *b.TextContent
}

// NewTextBlock builds a text block.
func NewTextBlock(text string) *Block {
	return &Block{BlockType: BlockTypeText, TextContent: &text}
}

// NewToolUseBlock builds a tool_use block for replaying an assistant turn.
func NewToolUseBlock(callID, name, arguments string) *Block {
	return &Block{
		BlockType: BlockTypeToolUse,
		Content: map[string]any{
			"call_id":   callID,
			"name":      name,
			"arguments": arguments,
		},
	}
}

// NewToolResultBlock builds a tool_result block for replaying a tool output.
func NewToolResultBlock(callID, output string, isError bool) *Block {
	return &Block{
		BlockType: BlockTypeToolResult,
		Content: map[string]any{
			"call_id":  callID,
			"output":   output,
			"is_error": isError,
		},
	}
}

// NewImageBlock builds an image block from base64 data.
func NewImageBlock(mediaType, base64Data string) *Block {
	return &Block{
		BlockType: BlockTypeImage,
		Content: map[string]any{
			"media_type": mediaType,
			"base64":     base64Data,
		},
	}
}
