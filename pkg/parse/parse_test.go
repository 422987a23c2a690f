package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormed = `Some preamble the model added.
<TITLE_BLOCK>
1. Mastering Goroutine Lifecycles | Goroutines
2. Channel Patterns That Scale | Channels
3. Profiling Memory Allocations | Profiling
</TITLE_BLOCK>
<TITLE_OVERVIEW>
A practical tour of Go concurrency and performance.
</TITLE_OVERVIEW>`

func TestTitlesWellFormed(t *testing.T) {
	entries, err := Titles(wellFormed)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "Mastering Goroutine Lifecycles", entries[0].Full)
	assert.Equal(t, "Goroutines", entries[0].Short)
	assert.Equal(t, "Profiling", entries[2].Short)
}

func TestTitlesShortFallsBackToFull(t *testing.T) {
	entries, err := Titles("<TITLE_BLOCK>1. Only A Full Title |   </TITLE_BLOCK>")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Only A Full Title", entries[0].Short)
}

func TestTitlesSkipsNonMatchingLines(t *testing.T) {
	block := `<TITLE_BLOCK>
Here are your titles:
1. First Title | First
- a stray bullet
2. Second Title | Second
</TITLE_BLOCK>`
	entries, err := Titles(block)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestTitlesMissingBlockFails(t *testing.T) {
	_, err := Titles("the model refused to cooperate")
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Reason, "no <TITLE_BLOCK>")
}

func TestTitlesEmptyBlockFails(t *testing.T) {
	_, err := Titles("<TITLE_BLOCK>\nnothing numbered here\n</TITLE_BLOCK>")
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Reason, "no title entries")
}

func TestTitlesCaseInsensitiveTags(t *testing.T) {
	entries, err := Titles("<title_block>1. Lowercase Tags | Tags</title_block>")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestOverviewWellFormed(t *testing.T) {
	overview, repaired, missing := Overview(wellFormed)
	assert.Equal(t, "A practical tour of Go concurrency and performance.", overview)
	assert.False(t, repaired)
	assert.False(t, missing)
}

func TestOverviewRepairsMissingCloseTag(t *testing.T) {
	overview, repaired, missing := Overview("<TITLE_OVERVIEW>\nTruncated by the model")
	assert.Equal(t, "Truncated by the model", overview)
	assert.True(t, repaired)
	assert.False(t, missing)
}

func TestOverviewMissingOpenTag(t *testing.T) {
	overview, repaired, missing := Overview("no overview tags at all")
	assert.Empty(t, overview)
	assert.False(t, repaired)
	assert.True(t, missing)
}
