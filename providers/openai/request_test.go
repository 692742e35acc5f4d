package openai

import (
	"strings"
	"testing"

	"github.com/kestrelai/kestrel-llm-go"
)

func TestBuildResponsesRequest(t *testing.T) {
	tool, err := llmstream.NewCustomTool("get_weather", "Get the weather", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"location": map[string]any{"type": "string"},
			"unit":     map[string]any{"type": "string", "optional": true},
		},
		"required": []string{"location"},
	})
	if err != nil {
		t.Fatalf("NewCustomTool: %v", err)
	}

	maxTokens := 100
	temp := 0.5
	enabled := true
	level := "low"
	req := &llmstream.GenerateRequest{
		Model:    "gpt-4o",
		Messages: []llmstream.Message{{Role: "user", Blocks: []*llmstream.Block{llmstream.NewTextBlock("hi")}}},
		Agent: &llmstream.AgentDefinition{
			SystemPrompt: "You are terse.",
			Tools:        []llmstream.Tool{*tool},
			Params: &llmstream.RequestParams{
				MaxTokens:       &maxTokens,
				Temperature:     &temp,
				ThinkingEnabled: &enabled,
				ThinkingLevel:   &level,
			},
		},
	}

	out, err := buildResponsesRequest(req)
	if err != nil {
		t.Fatalf("buildResponsesRequest: %v", err)
	}

	if !out.Stream {
		t.Error("Stream must always be true")
	}
	if out.Instructions != "You are terse." {
		t.Errorf("Instructions = %q", out.Instructions)
	}
	if out.MaxOutputTokens == nil || *out.MaxOutputTokens != 100 {
		t.Errorf("MaxOutputTokens = %v", out.MaxOutputTokens)
	}
	if out.Temperature == nil || *out.Temperature != 0.5 {
		t.Errorf("Temperature = %v", out.Temperature)
	}
	if out.Reasoning == nil || out.Reasoning.Effort != "low" || out.Reasoning.Summary != "auto" {
		t.Errorf("Reasoning = %+v", out.Reasoning)
	}

	if len(out.Tools) != 1 {
		t.Fatalf("Tools = %d, want 1", len(out.Tools))
	}
	rt := out.Tools[0]
	if rt.Type != "function" || rt.Name != "get_weather" || !rt.Strict {
		t.Errorf("tool = %+v, want flat strict function shape", rt)
	}
	if rt.Parameters["additionalProperties"] != false {
		t.Error("strict parameters must close the object")
	}
	required, ok := rt.Parameters["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "location" {
		t.Errorf("strict required = %v, want the originally required property only", rt.Parameters["required"])
	}
	// Strict rewrite works on a copy.
	if _, still := tool.Function.Parameters["additionalProperties"]; still {
		t.Error("original tool schema was mutated")
	}
}

func TestBuildResponsesRequest_NoAgent(t *testing.T) {
	req := &llmstream.GenerateRequest{
		Model:    "gpt-4o-mini",
		Messages: []llmstream.Message{{Role: "user", Blocks: []*llmstream.Block{llmstream.NewTextBlock("hi")}}},
	}
	out, err := buildResponsesRequest(req)
	if err != nil {
		t.Fatalf("buildResponsesRequest: %v", err)
	}
	if len(out.Tools) != 0 || out.Instructions != "" || out.Reasoning != nil {
		t.Errorf("nil agent request = %+v, want bare defaults", out)
	}
}

func TestConvertMessages(t *testing.T) {
	messages := []llmstream.Message{
		{Role: "user", Blocks: []*llmstream.Block{llmstream.NewTextBlock("What is the weather?")}},
		{Role: "assistant", Blocks: []*llmstream.Block{
			llmstream.NewTextBlock("Checking."),
			llmstream.NewToolUseBlock("call_1", "get_weather", `{"location":"Oslo"}`),
		}},
		{Role: "tool", Blocks: []*llmstream.Block{llmstream.NewToolResultBlock("call_1", "12C, cloudy", false)}},
		{Role: "user", Blocks: []*llmstream.Block{
			llmstream.NewImageBlock("image/png", "aGVsbG8="),
		}},
	}

	input, err := convertMessages(messages)
	if err != nil {
		t.Fatalf("convertMessages: %v", err)
	}
	if len(input) != 5 {
		t.Fatalf("input items = %d, want 5 (user msg, assistant msg, call, output, image msg)", len(input))
	}

	user, ok := input[0].(inputMessage)
	if !ok || user.Role != "user" || user.Content[0].Type != "input_text" {
		t.Errorf("input[0] = %+v", input[0])
	}

	assistant, ok := input[1].(inputMessage)
	if !ok || assistant.Role != "assistant" || assistant.Content[0].Type != "output_text" {
		t.Errorf("input[1] = %+v, want assistant text flushed before the call item", input[1])
	}

	call, ok := input[2].(functionCallItem)
	if !ok || call.Type != "function_call" || call.CallID != "call_1" || call.Name != "get_weather" {
		t.Errorf("input[2] = %+v", input[2])
	}

	output, ok := input[3].(functionCallOutputItem)
	if !ok || output.Type != "function_call_output" || output.CallID != "call_1" || output.Output != "12C, cloudy" {
		t.Errorf("input[3] = %+v", input[3])
	}

	img, ok := input[4].(inputMessage)
	if !ok || img.Content[0].Type != "input_image" || !strings.HasPrefix(img.Content[0].ImageURL, "data:image/png;base64,") {
		t.Errorf("input[4] = %+v", input[4])
	}
}

func TestConvertMessages_ThinkingSkipped(t *testing.T) {
	thought := "internal reasoning"
	messages := []llmstream.Message{
		{Role: "assistant", Blocks: []*llmstream.Block{
			{BlockType: llmstream.BlockTypeThinking, TextContent: &thought},
			llmstream.NewTextBlock("Answer."),
		}},
	}

	input, err := convertMessages(messages)
	if err != nil {
		t.Fatalf("convertMessages: %v", err)
	}
	if len(input) != 1 {
		t.Fatalf("input items = %d, want thinking dropped", len(input))
	}
	msg := input[0].(inputMessage)
	if len(msg.Content) != 1 || msg.Content[0].Text != "Answer." {
		t.Errorf("content = %+v", msg.Content)
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
