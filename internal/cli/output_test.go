package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError(t *testing.T) {
	e := NewExitError(ExitFailure, "save failed")
	assert.Equal(t, "save failed", e.Error())
	assert.Equal(t, ExitFailure, GetExitCode(e))

	inner := errors.New("disk detached")
	w := WrapExitError(ExitCommandError, "open data dir", inner)
	assert.Equal(t, "open data dir: disk detached", w.Error())
	assert.Equal(t, ExitCommandError, GetExitCode(w))
	assert.ErrorIs(t, w, inner)
}

func TestGetExitCode_PlainError(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
}

func TestGetExitCode_WrappedExitError(t *testing.T) {
	e := NewExitError(ExitCommandError, "bad flag")
	wrapped := fmt.Errorf("run: %w", e)
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestOutputFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	require.NoError(t, f.JSON(map[string]int{"totalScore": 25}))
	assert.JSONEq(t, `{"status":"ok","data":{"totalScore":25}}`, buf.String())
}

func TestOutputFormatter_ErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	require.NoError(t, f.Error("storage_failure", "could not save", nil))
	assert.JSONEq(t, `{"status":"error","error":{"code":"storage_failure","message":"could not save"}}`, buf.String())
}

func TestOutputFormatter_ErrorText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}
	require.NoError(t, f.Error("storage_failure", "could not save", nil))
	assert.Equal(t, "Error [storage_failure]: could not save\n", buf.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &out, ErrWriter: &errOut}

	f.VerboseLog("quiet %d", 1)
	assert.Empty(t, errOut.String())

	f.Verbose = true
	f.VerboseLog("loud %d", 2)
	assert.Equal(t, "loud 2\n", errOut.String())
	assert.Empty(t, out.String())
}
