package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/kestrelai/kestrel-llm-go"
)

// buildMessageParams constructs Anthropic API parameters from a GenerateRequest.
func buildMessageParams(ctx context.Context, req *llmstream.GenerateRequest, pre llmstream.ImagePreprocessor) (anthropic.MessageNewParams, error) {
	messages, err := convertMessages(ctx, req.Messages, pre)
	if err != nil {
		return anthropic.MessageNewParams{}, fmt.Errorf("failed to convert messages: %w", err)
	}

	params := req.Agent.RequestParamsOrDefault()

	apiParams := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		Messages:  messages,
		MaxTokens: int64(params.GetMaxTokens(4096)),
	}

	if params.Temperature != nil {
		apiParams.Temperature = anthropic.Float(*params.Temperature)
	}
	if params.TopP != nil {
		apiParams.TopP = anthropic.Float(*params.TopP)
	}
	if len(params.Stop) > 0 {
		apiParams.StopSequences = params.Stop
	}

	if req.Agent != nil && req.Agent.SystemPrompt != "" {
		apiParams.System = []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: req.Agent.SystemPrompt,
			},
		}
	}

	tools, err := convertTools(req.Agent.ToolList())
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}
	apiParams.Tools = tools

	// Thinking mode - convert user-friendly level to token budget
	if params.ThinkingRequested() {
		budgetTokens := params.GetThinkingBudgetTokens()
		if budgetTokens == 0 {
			budgetTokens = 5000
		}
		apiParams.Thinking = anthropic.ThinkingConfigParamOfEnabled(int64(budgetTokens))
	}

	return apiParams, nil
}
