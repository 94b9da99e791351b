package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	info := Info{
		Version:       "0.1.0",
		GitCommit:     "0123456789abcdef",
		GitCommitTime: "2026-01-02T03:04:05Z",
		GitTreeDirty:  true,
		GoVersion:     "go1.23.3",
	}

	assert.Equal(t, "0123456", info.ShortCommit())
	assert.Equal(t, "0.1.0+0123456-dirty", info.Short())
	assert.Equal(t, "2026-01-02 03:04:05 UTC", info.FormattedTime())
	assert.Equal(t, "abiharness version 0.1.0\n"+
		"  Commit:     0123456-dirty\n"+
		"  Built:      2026-01-02 03:04:05 UTC\n"+
		"  Go version: go1.23.3\n", info.String())

	bare := Info{Version: "0.1.0", GoVersion: "go1.23.3"}
	assert.Equal(t, "0.1.0", bare.Short())
	assert.Equal(t, "unknown", bare.FormattedTime())
	assert.Equal(t, "abiharness version 0.1.0\n  Go version: go1.23.3\n", bare.String())
}

func TestApplyBuildSettings(t *testing.T) {
	commit, commitTime, dirty := GitCommit, GitCommitTime, GitTreeDirty
	t.Cleanup(func() {
		GitCommit, GitCommitTime, GitTreeDirty = commit, commitTime, dirty
	})

	// Values set at link time are kept
	GitCommit, GitCommitTime, GitTreeDirty = "linked", "", ""
	applyBuildSettings([]debug.BuildSetting{
		{Key: "vcs.revision", Value: "fromvcs"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		{Key: "vcs.modified", Value: "true"},
		{Key: "GOOS", Value: "linux"},
	})
	assert.Equal(t, "linked", GitCommit)
	assert.Equal(t, "2026-01-02T03:04:05Z", GitCommitTime)
	assert.True(t, GetInfo().GitTreeDirty)
}
