package llmstream

import (
	"context"
	"errors"
	"testing"
)

// chunkSplitter fakes the external preprocessor by slicing the input into
// fixed-size pieces.
type chunkSplitter struct{}

func (chunkSplitter) Split(_ context.Context, base64Image string, maxSegmentBytes int) ([]string, error) {
	if maxSegmentBytes <= 0 {
		return nil, errors.New("invalid segment budget")
	}
	var segments []string
	for len(base64Image) > maxSegmentBytes {
		segments = append(segments, base64Image[:maxSegmentBytes])
		base64Image = base64Image[maxSegmentBytes:]
	}
	return append(segments, base64Image), nil
}

func TestSplitImageBlock(t *testing.T) {
	block := NewImageBlock("image/png", "abcdefghij")

	out, err := SplitImageBlock(context.Background(), chunkSplitter{}, block, 4)
	if err != nil {
		t.Fatalf("SplitImageBlock: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("segments = %d, want 3", len(out))
	}

	want := []string{"abcd", "efgh", "ij"}
	for i, b := range out {
		if b.BlockType != BlockTypeImage {
			t.Errorf("segment %d: BlockType = %s", i, b.BlockType)
		}
		if mt := b.Content["media_type"]; mt != "image/png" {
			t.Errorf("segment %d: media_type = %v", i, mt)
		}
		if data := b.Content["base64"]; data != want[i] {
			t.Errorf("segment %d: data = %v, want %q", i, data, want[i])
		}
	}
}

func TestSplitImageBlock_Passthrough(t *testing.T) {
	text := NewTextBlock("not an image")
	out, err := SplitImageBlock(context.Background(), chunkSplitter{}, text, 4)
	if err != nil || len(out) != 1 || out[0] != text {
		t.Errorf("non-image block must pass through: (%v, %v)", out, err)
	}

	img := NewImageBlock("image/png", "abcd")
	out, err = SplitImageBlock(context.Background(), nil, img, 2)
	if err != nil || len(out) != 1 || out[0] != img {
		t.Errorf("nil preprocessor must pass through: (%v, %v)", out, err)
	}
}

func TestSplitImageBlock_Error(t *testing.T) {
	img := NewImageBlock("image/png", "abcd")
	if _, err := SplitImageBlock(context.Background(), chunkSplitter{}, img, 0); err == nil {
		t.Error("preprocessor error must propagate")
	}
}
