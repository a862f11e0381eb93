package phonemizer

import (
	"errors"
	"fmt"
)

// ErrZeroDurationWindow reports a stretch window whose predicted durations
// sum to zero, leaving the rescale ratio undefined.
var ErrZeroDurationWindow = errors.New("predicted durations sum to zero in stretch window")

// alignPhrase maps the model's per-symbol frame durations onto the phrase's
// fixed anchor timeline and returns an absolute millisecond start position
// per symbol. Each inter-anchor window is rescaled so its symbols start
// exactly on the window's start anchor and close exactly on the end anchor;
// inside a window the relative timing follows the prediction proportionally.
// The leading window keeps ratio 1: the synthetic pause is translated to end
// on the first real anchor, never stretched.
func alignPhrase(anchors []Anchor, durations []float32, frameMs float64) ([]float64, error) {
	if len(anchors) < 2 {
		return nil, errors.New("phrase has no alignment window")
	}
	total := anchors[len(anchors)-1].SymbolIndex
	if len(durations) != total {
		return nil, fmt.Errorf("got %d durations for %d symbols", len(durations), total)
	}

	positions := make([]float64, 0, total)
	positions = append(positions,
		stretchWindow(durations[anchors[0].SymbolIndex:anchors[1].SymbolIndex], frameMs, anchors[1].Ms)...)

	for i := 1; i+1 < len(anchors); i++ {
		a, b := anchors[i], anchors[i+1]
		window := durations[a.SymbolIndex:b.SymbolIndex]
		sum := frameSum(window)
		if sum <= 0 {
			return nil, fmt.Errorf("window [%d,%d): %w", a.SymbolIndex, b.SymbolIndex, ErrZeroDurationWindow)
		}
		ratio := (b.Ms - a.Ms) / (sum * frameMs)
		positions = append(positions, stretchWindow(window, ratio*frameMs, b.Ms)...)
	}
	return positions, nil
}

// stretchWindow walks the window's durations at scaleMs per frame, anchored
// so the cumulative end lands exactly on endMs. It returns one start
// position per duration; the final cumulative value is dropped, it is the
// next window's start.
func stretchWindow(durations []float32, scaleMs, endMs float64) []float64 {
	pos := endMs - frameSum(durations)*scaleMs
	out := make([]float64, 0, len(durations))
	for _, d := range durations {
		out = append(out, pos)
		pos += float64(d) * scaleMs
	}
	return out
}

func frameSum(durations []float32) float64 {
	var sum float64
	for _, d := range durations {
		sum += float64(d)
	}
	return sum
}
