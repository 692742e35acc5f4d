package llmstream

// GenerateRequest is the canonical streaming request: the prior conversation,
// a target model, and the agent definition driving the call.
type GenerateRequest struct {
	// Messages contains the ordered prior conversation items.
	Messages []Message

	// Model is the target model identifier (e.g., "claude-sonnet-4-5",
	// "gpt-4o", "lorem-fast").
	Model string

	// Agent defines the tool list and sampling settings for this call.
	// Nil means no tools and provider defaults.
	Agent *AgentDefinition
}

// Message represents a single item in the conversation.
type Message struct {
	// Role is "user", "assistant" or "tool".
	Role string

	// Blocks is the list of content blocks for this item.
	Blocks []*Block
}

// AgentDefinition bundles what a caller configures once and reuses across
// requests: identity, system prompt, tools and sampling parameters.
type AgentDefinition struct {
	// Name identifies the agent in logs.
	Name string

	// SystemPrompt is prepended to every request.
	SystemPrompt string

	// Tools lists the functions the model may call.
	Tools []Tool

	// Params holds sampling settings; nil means provider defaults.
	Params *RequestParams
}

// ToolList returns the agent's tools, tolerating a nil agent.
func (a *AgentDefinition) ToolList() []Tool {
	if a == nil {
		return nil
	}
	return a.Tools
}

// RequestParamsOrDefault returns the agent's params or an empty set.
func (a *AgentDefinition) RequestParamsOrDefault() *RequestParams {
	if a == nil || a.Params == nil {
		return &RequestParams{}
	}
	return a.Params
}
