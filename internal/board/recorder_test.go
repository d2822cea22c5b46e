package board

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ToggleCycle(t *testing.T) {
	rec := NewRecorder()
	rec.now = func() time.Time { return time.Unix(1700000000, 0) }

	_, done, err := rec.Toggle()
	require.NoError(t, err)
	assert.False(t, done)
	assert.True(t, rec.IsRecording())

	require.NoError(t, rec.Append([]byte("ab")))
	require.NoError(t, rec.Append(nil))
	require.NoError(t, rec.Append([]byte("cd")))

	f, done, err := rec.Toggle()
	require.NoError(t, err)
	assert.True(t, done)
	assert.False(t, rec.IsRecording())
	assert.Equal(t, "recording-1700000000.webm", f.Name)
	assert.Equal(t, RecordingContentType, f.ContentType)
	assert.EqualValues(t, 4, f.Size)

	data, err := io.ReadAll(f.Reader)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(data))
}

func TestRecorder_Errors(t *testing.T) {
	rec := NewRecorder()

	assert.ErrorIs(t, rec.Append([]byte("x")), ErrNotRecording)
	_, err := rec.Stop()
	assert.ErrorIs(t, err, ErrNotRecording)

	require.NoError(t, rec.Start())
	assert.ErrorIs(t, rec.Start(), ErrAlreadyRecording)

	_, err = rec.Stop()
	assert.ErrorIs(t, err, ErrEmptyRecording)
	assert.False(t, rec.IsRecording())
}

func TestRecorder_CopiesChunks(t *testing.T) {
	rec := NewRecorder()
	require.NoError(t, rec.Start())

	chunk := []byte("xy")
	require.NoError(t, rec.Append(chunk))
	chunk[0] = 'z'

	f, err := rec.Stop()
	require.NoError(t, err)
	data, _ := io.ReadAll(f.Reader)
	assert.Equal(t, "xy", string(data))
}
