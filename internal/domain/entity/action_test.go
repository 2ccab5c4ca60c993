package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKnownActions_Unique(t *testing.T) {
	seen := make(map[Action]bool)
	for _, a := range KnownActions() {
		require.False(t, seen[a], "duplicate action %s", a)
		seen[a] = true
	}
	require.Len(t, seen, 24)
}

func TestResizeTargets_FixedTable(t *testing.T) {
	require.Equal(t, Size{7680, 4320}, ResizeTargets[ActionResize8K])
	require.Equal(t, Size{3840, 2160}, ResizeTargets[ActionResize4K])
	require.Equal(t, Size{1920, 1080}, ResizeTargets[ActionResize1080p])
	require.Equal(t, Size{1280, 720}, ResizeTargets[ActionResize720p])
	require.Equal(t, Size{720, 1280}, ResizeTargets[ActionResizeMobile])
}

func TestActionIsKnown(t *testing.T) {
	require.True(t, ActionCropPortrait.IsKnown())
	require.False(t, Action("resize_16k").IsKnown())
}

func TestLargestVariant(t *testing.T) {
	_, ok := LargestVariant(nil)
	require.False(t, ok)

	v, ok := LargestVariant([]PhotoVariant{
		{FileID: "s", Width: 90, Height: 60},
		{FileID: "l", Width: 1280, Height: 853},
		{FileID: "m", Width: 320, Height: 213},
	})
	require.True(t, ok)
	require.Equal(t, "l", v.FileID)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JPG")
	require.NoError(t, err)
	require.Equal(t, FormatJPEG, f)
	require.Equal(t, "jpg", f.Ext())

	_, err = ParseFormat("tiff")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	require.True(t, IsUserInput(err))
}
