package llmstream

import "context"

// ImagePreprocessor is the contract of the external image resize/splitting
// utility. Given one base64-encoded image and a size budget in bytes, it
// returns an ordered list of base64 segments, each within the budget.
// The implementation is a black box to this engine.
type ImagePreprocessor interface {
	Split(ctx context.Context, base64Image string, maxSegmentBytes int) ([]string, error)
}

// SplitImageBlock expands an image block into one block per segment the
// preprocessor produces, preserving order and media type. Non-image blocks
// and a nil preprocessor pass through as a single-element list.
func SplitImageBlock(ctx context.Context, pre ImagePreprocessor, block *Block, maxSegmentBytes int) ([]*Block, error) {
	if pre == nil || block == nil || block.BlockType != BlockTypeImage {
		return []*Block{block}, nil
	}

	mediaType, _ := block.Content["media_type"].(string)
	data, _ := block.Content["base64"].(string)

	segments, err := pre.Split(ctx, data, maxSegmentBytes)
	if err != nil {
		return nil, err
	}

	out := make([]*Block, 0, len(segments))
	for _, segment := range segments {
		out = append(out, NewImageBlock(mediaType, segment))
	}
	return out, nil
}
