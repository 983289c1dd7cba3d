package optimizer

import (
	"math"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
)

// Default scales of the stage fractions.
const (
	DefaultStageScale = 50
	DefaultFeedScale  = 51
)

// Encoding maps the continuous stage fractions onto integer stages. The
// scale caps the reachable stage number.
type Encoding struct {
	StageScale int `json:"stage_scale" toml:"stage_scale"`
	FeedScale  int `json:"feed_scale" toml:"feed_scale"`
}

// SetDefaults fills zero scales.
func (e *Encoding) SetDefaults() {
	if e.StageScale == 0 {
		e.StageScale = DefaultStageScale
	}
	if e.FeedScale == 0 {
		e.FeedScale = DefaultFeedScale
	}
}

// Stages decodes a stage-count fraction.
func (e Encoding) Stages(x float64) int {
	return int(math.Round(x * float64(e.StageScale)))
}

// Feed decodes a feed-stage fraction.
func (e Encoding) Feed(x float64) int {
	return int(math.Round(x * float64(e.FeedScale)))
}

// StageFraction encodes a stage count.
func (e Encoding) StageFraction(n int) float64 {
	return float64(n) / float64(e.StageScale)
}

// FeedFraction encodes a feed stage.
func (e Encoding) FeedFraction(f int) float64 {
	return float64(f) / float64(e.FeedScale)
}

// Decode returns the stage count and feed stage for a pair of fractions.
// A pair that does not describe a column is an INVALID_CONFIG error; inside
// the search it is an infeasible trial like any other.
func (e Encoding) Decode(stageFrac, feedFrac float64) (stages, feed int, err error) {
	stages, feed = e.Stages(stageFrac), e.Feed(feedFrac)
	if stages < 3 {
		return stages, feed, errors.New(errors.ErrCodeInvalidConfig, "stage fraction %.4g decodes to %d stages", stageFrac, stages)
	}
	if feed <= 1 || feed >= stages {
		return stages, feed, errors.New(errors.ErrCodeInvalidConfig, "feed fraction %.4g decodes to stage %d outside (1, %d)", feedFrac, feed, stages)
	}
	return stages, feed, nil
}
