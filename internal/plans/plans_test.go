package plans

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	tbl := Default()

	assert.Equal(t, 2, tbl.Get("free").MaxLevel)
	assert.Equal(t, 4, tbl.Get("pro").MaxLevel)
	assert.Equal(t, 5, tbl.Get("unlimited").MaxLevel)

	assert.False(t, tbl.HasFeature("free", FeatureBlindSpots))
	assert.True(t, tbl.HasFeature("pro", FeatureBlindSpots))
	assert.True(t, tbl.IsPaid("unlimited"))
	assert.Equal(t, []string{"pro", "unlimited"}, tbl.KeysWithFeature(FeatureWeeklyReports))
	assert.True(t, tbl.HasFeature(UpgradePlan, FeatureBlindSpots))
}

func TestUnknownPlanFallsBackToDefault(t *testing.T) {
	tbl := Default()
	assert.Equal(t, "free", tbl.Get("enterprise-trial").Key)
	assert.Equal(t, "pro", tbl.Get(" PRO ").Key)
}

func TestParseRejectsInvalidTables(t *testing.T) {
	_, err := Parse([]byte("default: gold\nplans:\n  free:\n    max_level: 2\n"))
	require.Error(t, err)

	_, err = Parse([]byte("default: free\nplans:\n  free:\n    max_level: 9\n"))
	require.Error(t, err)

	_, err = Parse([]byte("plans: {}\n"))
	require.Error(t, err)
}
