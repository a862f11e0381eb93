package onnx

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/ppapman1/OpenUtau/phonemizer"
)

// Duration wraps the frame-duration predictor model.
type Duration struct {
	path         string
	multiSpeaker bool
	mu           sync.Mutex
	session      *ort.DynamicAdvancedSession
}

// NewDuration opens the duration model at path. Multi-speaker singers ship
// models with an extra spk_embed input, so the input set is fixed at session
// creation.
func NewDuration(path string, multiSpeaker bool) (*Duration, error) {
	inputs := []string{"encoder_out", "x_masks", "ph_midi"}
	if multiSpeaker {
		inputs = append(inputs, "spk_embed")
	}
	session, err := ort.NewDynamicAdvancedSession(path, inputs, []string{"ph_dur"}, nil)
	if err != nil {
		return nil, fmt.Errorf("create duration session %s: %w", path, err)
	}
	return &Duration{path: path, multiSpeaker: multiSpeaker, session: session}, nil
}

// Predict returns one frame-unit duration per symbol.
func (d *Duration) Predict(ctx context.Context, enc *phonemizer.Encoding, phMidi []int64, spkEmbed []float32) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var inputs []ort.Value
	defer func() { destroyAll(inputs) }()

	encTensor, err := ort.NewTensor(ort.NewShape(enc.Shape...), enc.Data)
	if err != nil {
		return nil, fmt.Errorf("duration model %s: encoder_out tensor: %w", d.path, err)
	}
	inputs = append(inputs, encTensor)
	maskTensor, err := ort.NewTensor(ort.NewShape(enc.MaskShape...), enc.Mask)
	if err != nil {
		return nil, fmt.Errorf("duration model %s: x_masks tensor: %w", d.path, err)
	}
	inputs = append(inputs, maskTensor)
	midiTensor, err := ort.NewTensor(ort.NewShape(1, int64(len(phMidi))), phMidi)
	if err != nil {
		return nil, fmt.Errorf("duration model %s: ph_midi tensor: %w", d.path, err)
	}
	inputs = append(inputs, midiTensor)

	if d.multiSpeaker {
		n := len(phMidi)
		if len(spkEmbed) == 0 || n == 0 || len(spkEmbed)%n != 0 {
			return nil, fmt.Errorf("duration model %s: speaker embedding length %d does not cover %d symbols", d.path, len(spkEmbed), n)
		}
		embTensor, err := ort.NewTensor(ort.NewShape(1, int64(n), int64(len(spkEmbed)/n)), spkEmbed)
		if err != nil {
			return nil, fmt.Errorf("duration model %s: spk_embed tensor: %w", d.path, err)
		}
		inputs = append(inputs, embTensor)
	}

	outputs := []ort.Value{nil}
	d.mu.Lock()
	err = d.session.Run(inputs, outputs)
	d.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("run duration model %s: %w", d.path, err)
	}
	defer destroyAll(outputs)

	durTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("duration model %s: ph_dur is not a float32 tensor", d.path)
	}
	data := durTensor.GetData()
	if len(data) != len(phMidi) {
		return nil, fmt.Errorf("duration model %s: ph_dur has %d values for %d symbols", d.path, len(data), len(phMidi))
	}
	return append([]float32(nil), data...), nil
}

// Close releases the session.
func (d *Duration) Close() {
	if d.session != nil {
		d.session.Destroy()
		d.session = nil
	}
}
