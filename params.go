package llmstream

import "fmt"

// RequestParams holds sampling settings shared across providers.
// All fields are optional pointers to distinguish "not set" from "set to
// zero value"; adapters extract what their vendor supports.
type RequestParams struct {
	// MaxTokens sets the maximum number of tokens to generate.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0-2.0).
	Temperature *float64 `json:"temperature,omitempty"`

	// TopP (nucleus sampling) - cumulative probability cutoff (0.0-1.0).
	TopP *float64 `json:"top_p,omitempty"`

	// Stop sequences - generation stops if any of these are generated.
	Stop []string `json:"stop,omitempty"`

	// ThinkingEnabled requests the provider's reasoning channel.
	ThinkingEnabled *bool `json:"thinking_enabled,omitempty"`

	// ThinkingLevel sets the reasoning budget: "low", "medium", "high".
	ThinkingLevel *string `json:"thinking_level,omitempty"`

	// ParallelToolCalls allows the model to invoke several tools at once.
	ParallelToolCalls *bool `json:"parallel_tool_calls,omitempty"`
}

// ValidateRequestParams validates parameter ranges. Nil params are valid.
func ValidateRequestParams(params *RequestParams) error {
	if params == nil {
		return nil
	}

	if params.Temperature != nil {
		if *params.Temperature < 0.0 || *params.Temperature > 2.0 {
			return &ValidationError{
				Field:  "temperature",
				Value:  *params.Temperature,
				Reason: "must be between 0.0 and 2.0",
				Err:    ErrInvalidRequest,
			}
		}
	}

	if params.TopP != nil {
		if *params.TopP < 0.0 || *params.TopP > 1.0 {
			return &ValidationError{
				Field:  "top_p",
				Value:  *params.TopP,
				Reason: "must be between 0.0 and 1.0",
				Err:    ErrInvalidRequest,
			}
		}
	}

	if params.MaxTokens != nil {
		if *params.MaxTokens < 1 {
			return &ValidationError{
				Field:  "max_tokens",
				Value:  *params.MaxTokens,
				Reason: "must be positive",
				Err:    ErrInvalidRequest,
			}
		}
	}

	if params.ThinkingLevel != nil {
		switch *params.ThinkingLevel {
		case "low", "medium", "high":
		default:
			return &ValidationError{
				Field:  "thinking_level",
				Value:  *params.ThinkingLevel,
				Reason: fmt.Sprintf("must be 'low', 'medium', or 'high', got '%s'", *params.ThinkingLevel),
				Err:    ErrInvalidRequest,
			}
		}
	}

	return nil
}

// GetMaxTokens returns max_tokens with default fallback.
func (rp *RequestParams) GetMaxTokens(defaultValue int) int {
	if rp != nil && rp.MaxTokens != nil {
		return *rp.MaxTokens
	}
	return defaultValue
}

// GetTemperature returns temperature with default fallback.
func (rp *RequestParams) GetTemperature(defaultValue float64) float64 {
	if rp != nil && rp.Temperature != nil {
		return *rp.Temperature
	}
	return defaultValue
}

// ThinkingRequested reports whether the reasoning channel was asked for.
func (rp *RequestParams) ThinkingRequested() bool {
	return rp != nil && rp.ThinkingEnabled != nil && *rp.ThinkingEnabled
}

// GetThinkingBudgetTokens converts thinking_level to a token budget:
// low = 2000, medium = 5000, high = 12000.
func (rp *RequestParams) GetThinkingBudgetTokens() int {
	if rp == nil || rp.ThinkingLevel == nil {
		return 0
	}
	switch *rp.ThinkingLevel {
	case "low":
		return 2000
	case "medium":
		return 5000
	case "high":
		return 12000
	default:
		return 0
	}
}
