package llmstream

import (
	"errors"
	"strings"
	"testing"
)

func validRequest(model string) *GenerateRequest {
	return &GenerateRequest{
		Model: model,
		Messages: []Message{
			{Role: "user", Blocks: []*Block{NewTextBlock("hi")}},
		},
	}
}

func TestValidateRequest_HardErrors(t *testing.T) {
	tests := []struct {
		name  string
		req   *GenerateRequest
		field string
	}{
		{"nil request", nil, "request"},
		{"no messages", &GenerateRequest{Model: "gpt-4o"}, "messages"},
		{"no model", &GenerateRequest{Messages: []Message{{Role: "user", Blocks: []*Block{NewTextBlock("hi")}}}}, "model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateRequest(ProviderOpenAI, tt.req)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Field = %q, want %q", ve.Field, tt.field)
			}
			if !errors.Is(err, ErrInvalidRequest) {
				t.Error("validation errors must wrap ErrInvalidRequest")
			}
		})
	}
}

func TestValidateRequest_BadParams(t *testing.T) {
	req := validRequest("gpt-4o")
	req.Agent = &AgentDefinition{Params: &RequestParams{Temperature: float64Ptr(3.5)}}

	if _, err := ValidateRequest(ProviderOpenAI, req); err == nil {
		t.Error("out-of-range temperature must fail validation")
	}
}

func TestValidateRequest_CleanRequest(t *testing.T) {
	warnings, err := ValidateRequest(ProviderOpenAI, validRequest("gpt-4o"))
	if err != nil {
		t.Fatalf("ValidateRequest: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none for a registry model with no extras", warnings)
	}
}

func TestCapabilityWarnings_UnknownModel(t *testing.T) {
	warnings := CapabilityWarnings(ProviderOpenAI, validRequest("gpt-99-ultra"))
	if len(warnings) != 1 || warnings[0].Field != "model" {
		t.Fatalf("warnings = %v, want single unknown-model warning", warnings)
	}
	if !strings.Contains(warnings[0].String(), "gpt-99-ultra") {
		t.Errorf("warning text = %q", warnings[0].String())
	}
}

func TestCapabilityWarnings_FeatureMismatches(t *testing.T) {
	search, err := NewSearchTool()
	if err != nil {
		t.Fatalf("NewSearchTool: %v", err)
	}
	// gpt-4o: tools yes, thinking no, max output 16384.
	req := validRequest("gpt-4o")
	req.Agent = &AgentDefinition{
		Tools: []Tool{*search},
		Params: &RequestParams{
			ThinkingEnabled: boolPtr(true),
			MaxTokens:       intPtr(99999),
		},
	}

	warnings := CapabilityWarnings(ProviderOpenAI, req)

	fields := make(map[string]bool)
	for _, w := range warnings {
		fields[w.Field] = true
	}
	if fields["tools"] {
		t.Error("tools warning for a tools-capable model")
	}
	if !fields["thinking"] {
		t.Error("missing thinking warning for a non-thinking model")
	}
	if !fields["max_tokens"] {
		t.Error("missing max_tokens warning above the model limit")
	}
}
