package cmd

import (
	"path/filepath"
	"testing"

	"github.com/crytic/abiharness/cmd/exitcodes"
	"github.com/crytic/abiharness/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runTestBuild runs the build command over the given ABI directory and returns the resulting exit code.
func runTestBuild(t *testing.T, abiDirectory string) int {
	globalLogger := logging.GlobalLogger
	t.Cleanup(func() { logging.GlobalLogger = globalLogger })

	cmd := newTestBuildCmd(t)
	require.NoError(t, cmd.Flags().Set("out", t.TempDir()))
	_, exitCode := exitcodes.GetInnerErrorAndExitCode(cmdRunBuild(cmd, []string{abiDirectory}))
	return exitCode
}

// TestBuildExitCodes ensures build failures map to the exit code of their cause.
func TestBuildExitCodes(t *testing.T) {
	testDataPath := func(elem ...string) string {
		return filepath.Join(append([]string{"..", "testdata"}, elem...)...)
	}

	assert.Equal(t, exitcodes.ExitCodeSuccess, runTestBuild(t, testDataPath("abi")))
	assert.Equal(t, exitcodes.ExitCodeCompilationFailed, runTestBuild(t, testDataPath("duplicates")))
	assert.Equal(t, exitcodes.ExitCodeHandledError, runTestBuild(t, testDataPath("malformed")))
}
