package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentValidate(t *testing.T) {
	assert.NoError(t, Segment{Start: 0, End: 1.5, Text: "hi"}.Validate())
	assert.Error(t, Segment{Start: 2, End: 2, Text: "zero"}.Validate())
	assert.Error(t, Segment{Start: 3, End: 1, Text: "negative"}.Validate())
	assert.Error(t, Segment{Start: -0.5, End: 1, Text: "before zero"}.Validate())
}

func TestSegmentValidateRejectsNonFinite(t *testing.T) {
	assert.Error(t, Segment{Start: math.NaN(), End: 1}.Validate())
	assert.Error(t, Segment{Start: 0, End: math.NaN()}.Validate())
	assert.Error(t, Segment{Start: 0, End: math.Inf(1)}.Validate())
	assert.Error(t, Segment{Start: math.Inf(-1), End: 1}.Validate())
}

func TestSegmentDuration(t *testing.T) {
	assert.InDelta(t, 1.25, Segment{Start: 0.5, End: 1.75}.Duration(), 1e-9)
}
