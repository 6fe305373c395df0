//nolint:paralleltest // Tests modify package-level session log state, cannot run in parallel
package xbee

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cleanupSessionLog(t *testing.T) {
	t.Helper()
	if sessionLogFile != nil {
		_ = sessionLogFile.Close()
	}
	sessionLogFile = nil
	sessionLogPath = ""
	sessionLogWriter = nil
}

func TestInitSessionLogIn_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { cleanupSessionLog(t) })

	path, err := InitSessionLogIn(dir)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "log file should exist")
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Regexp(t, regexp.MustCompile(`^xbee_\d{8}_\d{6}\.log$`), filepath.Base(path))
}

func TestInitSessionLog_CurrentDirectory(t *testing.T) {
	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() {
		cleanupSessionLog(t)
		_ = os.Chdir(origDir)
	})

	path, err := InitSessionLog()
	require.NoError(t, err)
	assert.Regexp(t, `^xbee_\d{8}_\d{6}\.log$`, path)
}

func TestSessionLog_HeaderBodyFooter(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { cleanupSessionLog(t) })

	path, err := InitSessionLogIn(dir)
	require.NoError(t, err)

	Warnf("abandoned %d buffered bytes", 7)
	require.NoError(t, CloseSessionLog())

	content, err := os.ReadFile(path) //nolint:gosec // path is from InitSessionLogIn
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, "=== XBee API Session Log ===")
	assert.Contains(t, text, "PID:")
	assert.Contains(t, text, "Command Line:")
	assert.Contains(t, text, "WARN: abandoned 7 buffered bytes")
	assert.Contains(t, text, "=== Session ended ===")
}

func TestCloseSessionLog_NilFile(t *testing.T) {
	t.Cleanup(func() { cleanupSessionLog(t) })
	cleanupSessionLog(t)

	assert.NoError(t, CloseSessionLog())
}

func TestGetSessionLogPath_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { cleanupSessionLog(t) })

	assert.Empty(t, GetSessionLogPath())

	path, err := InitSessionLogIn(dir)
	require.NoError(t, err)
	assert.Equal(t, path, GetSessionLogPath())

	require.NoError(t, CloseSessionLog())
	assert.Empty(t, GetSessionLogPath())
}

func TestInitSessionLogIn_MissingDirectory(t *testing.T) {
	t.Cleanup(func() { cleanupSessionLog(t) })

	_, err := InitSessionLogIn(filepath.Join(t.TempDir(), "does", "not", "exist"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create session log")
	assert.Empty(t, GetSessionLogPath())
}
