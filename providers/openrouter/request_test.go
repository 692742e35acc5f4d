package openrouter

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kestrelai/kestrel-llm-go"
)

func TestBuildChatCompletionRequest(t *testing.T) {
	tool, err := llmstream.NewCustomTool("lookup", "Look things up", map[string]any{
		"type":       "object",
		"properties": map[string]any{"q": map[string]any{"type": "string"}},
	})
	if err != nil {
		t.Fatalf("NewCustomTool: %v", err)
	}

	maxTokens := 256
	temp := 0.7
	req := &llmstream.GenerateRequest{
		Model: "anthropic/claude-sonnet-4",
		Messages: []llmstream.Message{
			{Role: "user", Blocks: []*llmstream.Block{llmstream.NewTextBlock("hello")}},
		},
		Agent: &llmstream.AgentDefinition{
			SystemPrompt: "Be brief.",
			Tools:        []llmstream.Tool{*tool},
			Params: &llmstream.RequestParams{
				MaxTokens:   &maxTokens,
				Temperature: &temp,
				Stop:        []string{"END"},
			},
		},
	}

	out, err := buildChatCompletionRequest(req)
	if err != nil {
		t.Fatalf("buildChatCompletionRequest: %v", err)
	}

	if !out.Stream || out.StreamOptions == nil || !out.StreamOptions.IncludeUsage {
		t.Error("streaming with usage reporting must always be on")
	}
	if out.Model != "anthropic/claude-sonnet-4" {
		t.Errorf("Model = %q", out.Model)
	}
	if out.MaxCompletionTokens != 256 || out.Temperature != 0.7 {
		t.Errorf("params = (%d, %f)", out.MaxCompletionTokens, out.Temperature)
	}

	if len(out.Messages) != 2 {
		t.Fatalf("messages = %d, want system + user", len(out.Messages))
	}
	if out.Messages[0].Role != openai.ChatMessageRoleSystem || out.Messages[0].Content != "Be brief." {
		t.Errorf("messages[0] = %+v", out.Messages[0])
	}
	if out.Messages[1].Role != "user" || out.Messages[1].Content != "hello" {
		t.Errorf("messages[1] = %+v", out.Messages[1])
	}

	if len(out.Tools) != 1 || out.Tools[0].Function.Name != "lookup" {
		t.Fatalf("tools = %+v", out.Tools)
	}
}

func TestConvertMessages_ToolRoundTrip(t *testing.T) {
	messages := []llmstream.Message{
		{Role: "assistant", Blocks: []*llmstream.Block{
			llmstream.NewTextBlock("Let me check."),
			llmstream.NewToolUseBlock("call_9", "lookup", `{"q":"go"}`),
		}},
		{Role: "tool", Blocks: []*llmstream.Block{
			llmstream.NewToolResultBlock("call_9", "found it", false),
		}},
	}

	out, err := convertMessages(messages)
	if err != nil {
		t.Fatalf("convertMessages: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("messages = %d, want assistant + tool", len(out))
	}

	assistant := out[0]
	if assistant.Role != "assistant" || assistant.Content != "Let me check." {
		t.Errorf("assistant = %+v", assistant)
	}
	if len(assistant.ToolCalls) != 1 {
		t.Fatalf("tool calls = %d", len(assistant.ToolCalls))
	}
	tc := assistant.ToolCalls[0]
	if tc.ID != "call_9" || tc.Function.Name != "lookup" || tc.Function.Arguments != `{"q":"go"}` {
		t.Errorf("tool call = %+v", tc)
	}

	result := out[1]
	if result.Role != openai.ChatMessageRoleTool || result.ToolCallID != "call_9" || result.Content != "found it" {
		t.Errorf("tool result = %+v", result)
	}
}

func TestConvertMessages_MultipleTextBlocksJoined(t *testing.T) {
	messages := []llmstream.Message{
		{Role: "user", Blocks: []*llmstream.Block{
			llmstream.NewTextBlock("first"),
			llmstream.NewTextBlock("second"),
		}},
	}

	out, err := convertMessages(messages)
	if err != nil {
		t.Fatalf("convertMessages: %v", err)
	}
	if len(out) != 1 || out[0].Content != "first\nsecond" {
		t.Errorf("out = %+v, want text blocks joined with newline", out)
	}
}

func TestConvertMessages_ImageBlock(t *testing.T) {
	messages := []llmstream.Message{
		{Role: "user", Blocks: []*llmstream.Block{
			llmstream.NewTextBlock("what is this?"),
			llmstream.NewImageBlock("image/png", "ZGF0YQ=="),
		}},
	}

	out, err := convertMessages(messages)
	if err != nil {
		t.Fatalf("convertMessages: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("messages = %d, want 1", len(out))
	}

	msg := out[0]
	if msg.Content != "" {
		t.Errorf("Content = %q, want empty when multi-part content is used", msg.Content)
	}
	if len(msg.MultiContent) != 2 {
		t.Fatalf("parts = %d, want text + image", len(msg.MultiContent))
	}
	if msg.MultiContent[0].Type != openai.ChatMessagePartTypeText || msg.MultiContent[0].Text != "what is this?" {
		t.Errorf("parts[0] = %+v", msg.MultiContent[0])
	}
	img := msg.MultiContent[1]
	if img.Type != openai.ChatMessagePartTypeImageURL || img.ImageURL == nil {
		t.Fatalf("parts[1] = %+v, want an image part", img)
	}
	if img.ImageURL.URL != "data:image/png;base64,ZGF0YQ==" {
		t.Errorf("image URL = %q", img.ImageURL.URL)
	}
}

func TestConvertMessages_MissingCallID(t *testing.T) {
	messages := []llmstream.Message{
		{Role: "assistant", Blocks: []*llmstream.Block{
			{BlockType: llmstream.BlockTypeToolUse, Content: map[string]any{"name": "x"}},
		}},
	}
	if _, err := convertMessages(messages); err == nil {
		t.Error("tool_use without call_id must fail")
	}
}

func TestConvertMessages_EmptySkipped(t *testing.T) {
	thought := "hidden"
	messages := []llmstream.Message{
		{Role: "assistant", Blocks: []*llmstream.Block{
			{BlockType: llmstream.BlockTypeThinking, TextContent: &thought},
		}},
		{Role: "user", Blocks: []*llmstream.Block{llmstream.NewTextBlock("visible")}},
	}

	out, err := convertMessages(messages)
	if err != nil {
		t.Fatalf("convertMessages: %v", err)
	}
	if len(out) != 1 || out[0].Content != "visible" {
		t.Errorf("out = %+v, want thinking-only message dropped", out)
	}
}
