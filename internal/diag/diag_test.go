package diag

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailure(t *testing.T) {
	f := Failure{Path: "a.json", Err: fs.ErrNotExist}

	assert.Equal(t, "a.json: file does not exist", f.Error())
	assert.ErrorIs(t, f, fs.ErrNotExist)
}

func TestJoin(t *testing.T) {
	assert.NoError(t, Join(nil))

	err := Join([]Failure{
		{Path: "a.zip", Err: errors.New("zip: not a valid zip file")},
		{Path: "b.json", Err: fs.ErrPermission},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Contains(t, err.Error(), "a.zip")
	assert.Contains(t, err.Error(), "b.json")
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	Log(logger, "json parse failed", []Failure{{Path: "x.json", Err: errors.New("unexpected EOF")}})

	out := buf.String()
	assert.Contains(t, out, "json parse failed")
	assert.Contains(t, out, "path=x.json")
	assert.Contains(t, out, `err="unexpected EOF"`)
}
