package llmstream

import "context"

// Response is the fully assembled result of one streamed generation: the
// complete visible content (citation footnotes included), the complete
// reasoning content, every tool call that started, and the terminal error
// if the stream ended on one.
type Response struct {
	Content         string
	ThinkingContent string
	ToolCalls       []*ToolCall
	Err             error
}

// HasToolCalls reports whether the model requested any tool invocations.
func (r *Response) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// CollectStream drains a canonical event stream into a single Response.
// It prefers message_complete content when one arrives and falls back to
// concatenated deltas otherwise, so teardown-flushed streams still yield
// everything that was received. Collection ends when the channel closes or
// ctx is cancelled; on cancellation the partial response is returned with
// ctx's error.
func CollectStream(ctx context.Context, events <-chan StreamEvent) *Response {
	resp := &Response{}
	var deltas, thinkingDeltas string
	sawComplete := false
	sawThinkingComplete := false

	for {
		select {
		case <-ctx.Done():
			if !sawComplete && resp.Content == "" {
				resp.Content = deltas
			}
			if !sawThinkingComplete && resp.ThinkingContent == "" {
				resp.ThinkingContent = thinkingDeltas
			}
			if resp.Err == nil {
				resp.Err = ctx.Err()
			}
			return resp

		case ev, ok := <-events:
			if !ok {
				if !sawComplete {
					resp.Content = deltas
				}
				if !sawThinkingComplete {
					resp.ThinkingContent = thinkingDeltas
				}
				return resp
			}

			switch ev.Type {
			case EventMessageDelta:
				deltas += ev.Content
			case EventMessageComplete:
				sawComplete = true
				resp.Content += ev.Content
			case EventThinkingDelta:
				thinkingDeltas += ev.ThinkingContent
			case EventThinkingComplete:
				sawThinkingComplete = true
				resp.ThinkingContent += ev.ThinkingContent
			case EventToolStart:
				if ev.ToolCall != nil {
					resp.ToolCalls = append(resp.ToolCalls, ev.ToolCall)
				}
			case EventError:
				resp.Err = ev.Err
			}
		}
	}
}
