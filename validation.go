package llmstream

import "fmt"

// ValidationWarning is an informational finding from pre-flight request
// checks. Warnings never block a request; the provider API remains the
// source of truth and may still accept what the registry believes it won't.
type ValidationWarning struct {
	Field   string
	Message string
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

// ValidateRequest runs hard parameter validation plus capability warnings.
// The error covers structurally invalid input (bad ranges, empty messages);
// the warnings cover capability mismatches the provider may reject.
func ValidateRequest(provider ProviderID, req *GenerateRequest) ([]ValidationWarning, error) {
	if req == nil {
		return nil, &ValidationError{Field: "request", Reason: "request is required", Err: ErrInvalidRequest}
	}
	if len(req.Messages) == 0 {
		return nil, &ValidationError{Field: "messages", Reason: "at least one message is required", Err: ErrInvalidRequest}
	}
	if req.Model == "" {
		return nil, &ValidationError{Field: "model", Reason: "model is required", Err: ErrInvalidRequest}
	}
	if req.Agent != nil {
		if err := ValidateRequestParams(req.Agent.Params); err != nil {
			return nil, err
		}
	}
	return CapabilityWarnings(provider, req), nil
}

// CapabilityWarnings checks a request against the capability registry and
// returns everything the registry believes the model cannot do.
func CapabilityWarnings(provider ProviderID, req *GenerateRequest) []ValidationWarning {
	registry := GetCapabilityRegistry()
	var warnings []ValidationWarning

	if !registry.SupportsModel(provider.String(), req.Model) {
		warnings = append(warnings, ValidationWarning{
			Field:   "model",
			Message: fmt.Sprintf("model %s is not in the %s capability registry; capability checks skipped", req.Model, provider),
		})
		return warnings
	}

	if req.Agent == nil {
		return warnings
	}

	if len(req.Agent.ToolList()) > 0 && !registry.SupportsTools(provider.String(), req.Model) {
		warnings = append(warnings, ValidationWarning{
			Field:   "tools",
			Message: fmt.Sprintf("model %s does not support tools", req.Model),
		})
	}

	params := req.Agent.Params
	if params.ThinkingRequested() && !registry.SupportsThinking(provider.String(), req.Model) {
		warnings = append(warnings, ValidationWarning{
			Field:   "thinking",
			Message: fmt.Sprintf("model %s does not support extended thinking", req.Model),
		})
	}

	if params != nil && params.MaxTokens != nil {
		if modelCap, err := registry.GetModelCapability(provider.String(), req.Model); err == nil {
			if modelCap.MaxOutputTokens > 0 && *params.MaxTokens > modelCap.MaxOutputTokens {
				warnings = append(warnings, ValidationWarning{
					Field:   "max_tokens",
					Message: fmt.Sprintf("max_tokens %d exceeds model limit %d", *params.MaxTokens, modelCap.MaxOutputTokens),
				})
			}
		}
	}

	return warnings
}
