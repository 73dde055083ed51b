package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolutionStats_RecordAndMerge(t *testing.T) {
	var first, second ResolutionStats
	first.Record(RuleMatchResult{Source: SourceManual})
	first.Record(RuleMatchResult{Source: SourceNone})
	second.Record(RuleMatchResult{Source: SourceAutoRule})
	second.Record(RuleMatchResult{Source: SourceProductDefault})

	var total ResolutionStats
	total.Merge(first)
	total.Merge(second)

	assert.Equal(t, ResolutionStats{Total: 4, Manual: 1, AutoRule: 1, ProductDefault: 1, Unassigned: 1}, total)
	assert.Equal(t, 3, total.Assigned())
	assert.InDelta(t, 75.0, total.GetCoverageRate(), 0.001)
	assert.Zero(t, ResolutionStats{}.GetCoverageRate())
}
