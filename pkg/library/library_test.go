package library

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/billscan/pkg/complexity"
)

func sampleBill() string {
	return strings.Join([]string{
		"SECTION 1.  Section 124.002(a), Government Code, is amended to read as follows:",
		"(a)  The commission shall adopt rules.",
		"SECTION 2.  This Act takes effect September 1, 2027.",
	}, "\n")
}

func TestIngestAndGet(t *testing.T) {
	lib, err := Init(t.TempDir(), nil)
	require.NoError(t, err)

	entry, err := lib.Ingest("HB-1234", sampleBill())
	require.NoError(t, err)
	assert.Equal(t, 2, entry.SectionCount)
	assert.Equal(t, complexity.LevelSimple, entry.Complexity)

	analysis, err := lib.Get("HB-1234")
	require.NoError(t, err)
	assert.Equal(t, "HB-1234", analysis.BillID)
	assert.Empty(t, analysis.Articles)
	require.Len(t, analysis.References, 1)
	assert.Equal(t, "Government Code", analysis.References[0].Code)
	assert.True(t, analysis.Consistency.Passed)
}

func TestIngest_ReplacesPriorResults(t *testing.T) {
	lib, err := Init(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = lib.Ingest("HB-1", sampleBill())
	require.NoError(t, err)

	// Amended bill text: re-ingest must replace, not merge.
	_, err = lib.Ingest("HB-1", "SECTION 1.  Section 29.001, Education Code, is repealed.")
	require.NoError(t, err)

	require.Len(t, lib.List(), 1)

	analysis, err := lib.Get("HB-1")
	require.NoError(t, err)
	require.Len(t, analysis.References, 1)
	assert.Equal(t, "Education Code", analysis.References[0].Code)
	assert.Equal(t, 1, analysis.Complexity.SectionCount)
}

func TestOpen_RoundTripsManifest(t *testing.T) {
	dir := t.TempDir()

	lib, err := Init(dir, nil)
	require.NoError(t, err)
	_, err = lib.Ingest("SB-99", sampleBill())
	require.NoError(t, err)

	reopened, err := Open(dir, nil)
	require.NoError(t, err)

	entries := reopened.List()
	require.Len(t, entries, 1)
	assert.Equal(t, "SB-99", entries[0].BillID)
}

func TestOpenOrInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lib")

	lib, err := OpenOrInit(dir, nil)
	require.NoError(t, err)
	_, err = lib.Ingest("HB-1", sampleBill())
	require.NoError(t, err)

	again, err := OpenOrInit(dir, nil)
	require.NoError(t, err)
	assert.Len(t, again.List(), 1)
}

func TestRemove(t *testing.T) {
	lib, err := Init(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = lib.Ingest("HB-1", sampleBill())
	require.NoError(t, err)
	require.NoError(t, lib.Remove("HB-1"))

	assert.Empty(t, lib.List())
	_, err = lib.Get("HB-1")
	assert.Error(t, err)
}

func TestIngest_EmptyTextIsValid(t *testing.T) {
	lib, err := Init(t.TempDir(), nil)
	require.NoError(t, err)

	entry, err := lib.Ingest("HB-0", "")
	require.NoError(t, err)
	assert.Equal(t, 0, entry.SectionCount)
	assert.Equal(t, complexity.LevelSimple, entry.Complexity)
}

func TestValidateBillID(t *testing.T) {
	lib, err := Init(t.TempDir(), nil)
	require.NoError(t, err)

	for _, id := range []string{"", "a/b", `a\b`, ".", ".."} {
		_, err := lib.Ingest(id, "text")
		assert.Error(t, err, "bill ID %q", id)
	}
}
