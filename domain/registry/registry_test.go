package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-hub/domain/model"
)

func testConfigs() []model.PlatformConfig {
	return []model.PlatformConfig{
		{ID: "youtube", DisplayName: "YouTube"},
		{ID: "facebook", DisplayName: "Facebook"},
		{ID: "x", DisplayName: "X"},
	}
}

func TestRegistry_Lookup(t *testing.T) {
	reg, err := New(testConfigs())
	require.NoError(t, err)

	cfg, err := reg.Lookup("youtube")
	require.NoError(t, err)
	assert.Equal(t, "YouTube", cfg.DisplayName)

	_, err = reg.Lookup("myspace")
	assert.True(t, errors.Is(err, model.ErrUnsupportedPlatform))
}

func TestRegistry_RejectsDuplicatesAndEmptyIDs(t *testing.T) {
	_, err := New([]model.PlatformConfig{{ID: "x"}, {ID: "x"}})
	assert.Error(t, err)

	_, err = New([]model.PlatformConfig{{ID: ""}})
	assert.Error(t, err)
}

func TestRegistry_AllIsSorted(t *testing.T) {
	reg, err := New(testConfigs())
	require.NoError(t, err)

	all := reg.All()
	require.Len(t, all, 3)
	assert.Equal(t, "facebook", all[0].ID)
	assert.Equal(t, "x", all[1].ID)
	assert.Equal(t, "youtube", all[2].ID)

	assert.True(t, reg.Supported("facebook"))
	assert.False(t, reg.Supported("tiktok"))
}
