package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePrefersLinkerValues(t *testing.T) {
	read := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{Version: "v0.9.0"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "ffffffffffffffff"},
				{Key: "vcs.time", Value: "2026-01-01T00:00:00Z"},
			},
		}, true
	}

	info := resolve("v1.2.3", "abc", "", read)
	require.Equal(t, "v1.2.3", info.Version)
	require.Equal(t, "abc", info.Commit)
	require.Equal(t, "2026-01-01T00:00:00Z", info.BuildTime)
	require.NotEmpty(t, info.GoVersion)
}

func TestResolveFallsBackToBuildInfo(t *testing.T) {
	read := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main:     debug.Module{Version: "v0.9.0"},
			Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789abcdef"}},
		}, true
	}

	info := resolve("", "", "", read)
	require.Equal(t, "v0.9.0", info.Version)
	require.Equal(t, "0123456789abcdef", info.Commit)
}

func TestResolveDevelBuild(t *testing.T) {
	read := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
	}
	require.Equal(t, "dev", resolve("", "", "", read).Version)

	none := func() (*debug.BuildInfo, bool) { return nil, false }
	require.Equal(t, "dev", resolve("", "", "", none).Version)
}

func TestShortCommit(t *testing.T) {
	require.Equal(t, "abc", shortCommit("abc"))
	require.Equal(t, "0123456789ab", shortCommit("0123456789abcdef"))
}
