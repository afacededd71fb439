package merge

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

func labelsOf(labeled []models.LabeledSegment) []string {
	out := make([]string, len(labeled))
	for i, seg := range labeled {
		out[i] = seg.Speaker
	}
	return out
}

func TestOverlap(t *testing.T) {
	assert.Equal(t, 1.0, Overlap(2, 4, 0, 3))
	assert.Equal(t, 0.0, Overlap(0, 1, 1, 2))
	assert.Equal(t, 0.0, Overlap(0, 1, 5, 6))
	assert.Equal(t, 2.0, Overlap(1, 3, 0, 10))
}

func TestAssignSpeakersTieBreakPrefersEarlierSpan(t *testing.T) {
	segments := []models.Segment{
		{Start: 0.0, End: 2.0, Text: "hello"},
		{Start: 2.0, End: 4.0, Text: "world"},
	}
	spans := []models.DiarizationSpan{
		{Start: 0.0, End: 3.0, Speaker: "A"},
		{Start: 3.0, End: 4.0, Speaker: "B"},
	}

	labeled, err := AssignSpeakers(segments, spans)
	require.NoError(t, err)
	// 第二段与A、B各重叠1秒，取开始更早的A
	assert.Equal(t, []string{"A", "A"}, labelsOf(labeled))
}

func TestAssignSpeakersTieBreakIgnoresInputOrder(t *testing.T) {
	segments := []models.Segment{{Start: 2.0, End: 4.0, Text: "world"}}
	spans := []models.DiarizationSpan{
		{Start: 3.0, End: 4.0, Speaker: "B"},
		{Start: 0.0, End: 3.0, Speaker: "A"},
	}

	labeled, err := AssignSpeakers(segments, spans)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, labelsOf(labeled))
}

func TestAssignSpeakersTieBreakToleratesFloatError(t *testing.T) {
	// 两段重叠都是0.2秒，但浮点计算结果相差几个ulp
	segments := []models.Segment{{Start: 2.1, End: 2.5, Text: "x"}}
	a := models.DiarizationSpan{Start: 1.0, End: 2.3, Speaker: "A"}
	b := models.DiarizationSpan{Start: 2.3, End: 3.0, Speaker: "B"}
	require.NotEqual(t, Overlap(2.1, 2.5, a.Start, a.End), Overlap(2.1, 2.5, b.Start, b.End))

	for _, spans := range [][]models.DiarizationSpan{{a, b}, {b, a}} {
		labeled, err := AssignSpeakers(segments, spans)
		require.NoError(t, err)
		assert.Equal(t, []string{"A"}, labelsOf(labeled))
	}

	// 明显更长的重叠仍然胜出
	labeled, err := AssignSpeakers(segments, []models.DiarizationSpan{
		{Start: 1.0, End: 2.2, Speaker: "A"},
		{Start: 2.2, End: 3.0, Speaker: "B"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, labelsOf(labeled))
}

func TestAssignSpeakersTieWithSameStartKeepsFirst(t *testing.T) {
	segments := []models.Segment{{Start: 0, End: 1, Text: "x"}}
	spans := []models.DiarizationSpan{
		{Start: 0, End: 2, Speaker: "FIRST"},
		{Start: 0, End: 2, Speaker: "SECOND"},
	}

	labeled, err := AssignSpeakers(segments, spans)
	require.NoError(t, err)
	assert.Equal(t, "FIRST", labeled[0].Speaker)
}

func TestAssignSpeakersNoSpans(t *testing.T) {
	labeled, err := AssignSpeakers([]models.Segment{{Start: 0.0, End: 1.0, Text: "hi"}}, nil)
	require.NoError(t, err)
	require.Len(t, labeled, 1)
	assert.Equal(t, models.UnknownSpeaker, labeled[0].Speaker)
	assert.Equal(t, "hi", labeled[0].Text)
}

func TestAssignSpeakersEmptyInput(t *testing.T) {
	labeled, err := AssignSpeakers(nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, labeled)
	assert.Empty(t, labeled)
}

func TestAssignSpeakersMaxOverlapWins(t *testing.T) {
	segments := []models.Segment{
		{Start: 0, End: 10, Text: "long"},
		{Start: 10, End: 11, Text: "gap"},
		{Start: 12, End: 14, Text: "late"},
	}
	spans := []models.DiarizationSpan{
		{Start: 0, End: 3, Speaker: "SPEAKER_00"},
		{Start: 3, End: 10, Speaker: "SPEAKER_01"},
		{Start: 11.5, End: 20, Speaker: "SPEAKER_00"},
	}

	labeled, err := AssignSpeakers(segments, spans)
	require.NoError(t, err)
	assert.Equal(t, []string{"SPEAKER_01", models.UnknownSpeaker, "SPEAKER_00"}, labelsOf(labeled))
}

func TestAssignSpeakersOverlappingSpeakers(t *testing.T) {
	// 不同说话人的区间可以互相重叠
	segments := []models.Segment{{Start: 1, End: 5, Text: "crosstalk"}}
	spans := []models.DiarizationSpan{
		{Start: 0, End: 3, Speaker: "A"},
		{Start: 2, End: 6, Speaker: "B"},
	}

	labeled, err := AssignSpeakers(segments, spans)
	require.NoError(t, err)
	assert.Equal(t, "B", labeled[0].Speaker)
}

func TestAssignSpeakersSkipsDegenerateSpans(t *testing.T) {
	segments := []models.Segment{{Start: 0, End: 2, Text: "x"}}
	spans := []models.DiarizationSpan{
		{Start: 1, End: 1, Speaker: "EMPTY"},
		{Start: 2, End: 0, Speaker: "BACKWARDS"},
	}

	labeled, err := AssignSpeakers(segments, spans)
	require.NoError(t, err)
	assert.Equal(t, models.UnknownSpeaker, labeled[0].Speaker)
}

func TestAssignSpeakersPreservesOrderAndLength(t *testing.T) {
	segments := []models.Segment{
		{Start: 5, End: 6, Text: "c"},
		{Start: 0, End: 1, Text: "a"},
		{Start: 2, End: 3, Text: "b"},
	}
	spans := []models.DiarizationSpan{{Start: 0, End: 10, Speaker: "A"}}

	labeled, err := AssignSpeakers(segments, spans)
	require.NoError(t, err)
	require.Len(t, labeled, len(segments))
	for i := range segments {
		assert.Equal(t, segments[i], labeled[i].Segment)
	}
}

func TestAssignSpeakersRejectsInvalidSegment(t *testing.T) {
	segments := []models.Segment{
		{Start: 0, End: 1, Text: "ok"},
		{Start: 3, End: 3, Text: "zero length"},
	}

	labeled, err := AssignSpeakers(segments, nil)
	require.Error(t, err)
	assert.Nil(t, labeled)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
	assert.Contains(t, err.Error(), "第 2 个片段")

	_, err = AssignSpeakers([]models.Segment{{Start: math.NaN(), End: 1, Text: "nan"}}, nil)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestSpeakerStats(t *testing.T) {
	labeled := []models.LabeledSegment{
		{Segment: models.Segment{Start: 0, End: 2}, Speaker: "A"},
		{Segment: models.Segment{Start: 2, End: 3}, Speaker: "B"},
		{Segment: models.Segment{Start: 3, End: 4.5}, Speaker: "A"},
	}

	counts, durations := SpeakerStats(labeled)
	assert.Equal(t, map[string]int{"A": 2, "B": 1}, counts)
	assert.InDelta(t, 3.5, durations["A"], 1e-9)
	assert.InDelta(t, 1.0, durations["B"], 1e-9)
}

func TestAssignSpeakersNonOverlappingSpansProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 200; iter++ {
		// 构造首尾相接但互不重叠的说话人区间，中间随机留空
		var spans []models.DiarizationSpan
		cursor := 0.0
		for i := 0; i < 1+rng.Intn(6); i++ {
			cursor += rng.Float64() * 2
			length := 0.1 + rng.Float64()*3
			spans = append(spans, models.DiarizationSpan{
				Start:   cursor,
				End:     cursor + length,
				Speaker: fmt.Sprintf("S%d", i),
			})
			cursor += length
		}

		var segments []models.Segment
		for i := 0; i < 1+rng.Intn(8); i++ {
			start := rng.Float64() * (cursor + 2)
			segments = append(segments, models.Segment{Start: start, End: start + 0.05 + rng.Float64()*2})
		}

		labeled, err := AssignSpeakers(segments, spans)
		require.NoError(t, err)
		require.Len(t, labeled, len(segments))

		for i, seg := range labeled {
			best := 0.0
			for _, span := range spans {
				best = math.Max(best, Overlap(seg.Start, seg.End, span.Start, span.End))
			}
			if best == 0 {
				assert.Equal(t, models.UnknownSpeaker, seg.Speaker, "segment %d", i)
				continue
			}
			var chosen float64
			for _, span := range spans {
				if span.Speaker == seg.Speaker {
					chosen = Overlap(seg.Start, seg.End, span.Start, span.End)
				}
			}
			assert.Equal(t, best, chosen, "segment %d", i)
		}
	}
}
