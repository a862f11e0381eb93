package onnx

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/ppapman1/OpenUtau/phonemizer"
)

// Linguistic wraps the phrase-level linguistic encoder model.
type Linguistic struct {
	path    string
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
}

// NewLinguistic opens the linguistic model at path. The model must expose
// tokens/word_div/word_dur inputs and encoder_out/x_masks outputs; anything
// else fails session creation or the first Encode.
func NewLinguistic(path string) (*Linguistic, error) {
	session, err := ort.NewDynamicAdvancedSession(path,
		[]string{"tokens", "word_div", "word_dur"},
		[]string{"encoder_out", "x_masks"},
		nil)
	if err != nil {
		return nil, fmt.Errorf("create linguistic session %s: %w", path, err)
	}
	return &Linguistic{path: path, session: session}, nil
}

// Encode runs the encoder on a single batched sequence.
func (l *Linguistic) Encode(ctx context.Context, tokens, wordDiv, wordDur []int64) (*phonemizer.Encoding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inputs := make([]ort.Value, 0, 3)
	defer func() { destroyAll(inputs) }()
	for _, data := range [][]int64{tokens, wordDiv, wordDur} {
		t, err := ort.NewTensor(ort.NewShape(1, int64(len(data))), data)
		if err != nil {
			return nil, fmt.Errorf("linguistic model %s: create input tensor: %w", l.path, err)
		}
		inputs = append(inputs, t)
	}

	// Output shapes depend on the model's hidden size, so let ORT allocate.
	outputs := []ort.Value{nil, nil}
	l.mu.Lock()
	err := l.session.Run(inputs, outputs)
	l.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("run linguistic model %s: %w", l.path, err)
	}
	defer destroyAll(outputs)

	encOut, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("linguistic model %s: encoder_out is not a float32 tensor", l.path)
	}
	masks, ok := outputs[1].(*ort.Tensor[bool])
	if !ok {
		return nil, fmt.Errorf("linguistic model %s: x_masks is not a bool tensor", l.path)
	}
	shape := cloneShape(encOut.GetShape())
	if len(shape) != 3 || shape[0] != 1 || shape[1] != int64(len(tokens)) {
		return nil, fmt.Errorf("linguistic model %s: encoder_out shape %v does not match %d tokens", l.path, shape, len(tokens))
	}
	return &phonemizer.Encoding{
		Data:      append([]float32(nil), encOut.GetData()...),
		Shape:     shape,
		Mask:      append([]bool(nil), masks.GetData()...),
		MaskShape: cloneShape(masks.GetShape()),
	}, nil
}

// Close releases the session.
func (l *Linguistic) Close() {
	if l.session != nil {
		l.session.Destroy()
		l.session = nil
	}
}
