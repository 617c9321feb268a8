package stream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passEncoder struct{}

func (passEncoder) Encode(pcm []int16, _, _ int) ([]byte, error) {
	out := make([]byte, 2)
	binary.LittleEndian.PutUint16(out, uint16(pcm[0]))
	return out, nil
}

func frames(n int, sample int16) []byte {
	buf := make([]byte, n*FrameSize*Channels*2)
	for i := 0; i < len(buf); i += 2 {
		binary.LittleEndian.PutUint16(buf[i:], uint16(sample))
	}
	return buf
}

func TestScale(t *testing.T) {
	t.Parallel()

	s := []int16{1000, -1000, 30000, -30000}
	Scale(s, 0.5)
	assert.Equal(t, []int16{500, -500, 15000, -15000}, s)

	s = []int16{30000, -30000}
	Scale(s, 2)
	assert.Equal(t, []int16{32767, -32768}, s)

	s = []int16{123}
	Scale(s, 0)
	assert.Equal(t, []int16{0}, s)
}

func TestPlaybackStreamsAllFramesWithVolume(t *testing.T) {
	t.Parallel()

	out := make(chan []byte, 10)
	p := Start(io.NopCloser(bytes.NewReader(frames(3, 1000))), passEncoder{}, out, 0.5)

	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("playback did not finish")
	}
	require.NoError(t, p.Err())
	require.Len(t, out, 3)
	assert.Equal(t, int16(500), int16(binary.LittleEndian.Uint16(<-out)))
}

func TestPlaybackPauseResumeStop(t *testing.T) {
	t.Parallel()

	out := make(chan []byte)
	p := Start(io.NopCloser(bytes.NewReader(frames(50, 1))), passEncoder{}, out, 1)

	<-out
	p.Pause()
	assert.True(t, p.Paused())

	// One frame may already be past the pause check.
	select {
	case <-out:
	case <-time.After(50 * time.Millisecond):
	}
	select {
	case <-out:
		t.Fatal("frame sent while paused")
	case <-time.After(50 * time.Millisecond):
	}

	p.Resume()
	select {
	case <-out:
	case <-time.After(2 * time.Second):
		t.Fatal("playback did not resume")
	}

	p.Stop()
	p.Stop()
	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("playback did not stop")
	}
}

func TestPlaybackStopWhilePaused(t *testing.T) {
	t.Parallel()

	out := make(chan []byte, 100)
	p := Start(io.NopCloser(bytes.NewReader(frames(50, 1))), passEncoder{}, out, 1)
	p.Pause()
	p.Stop()

	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("playback did not stop")
	}
}

type brokenReader struct {
	data []byte
	err  error
}

func (b *brokenReader) Read(p []byte) (int, error) {
	if len(b.data) == 0 {
		return 0, b.err
	}
	n := copy(p, b.data)
	b.data = b.data[n:]
	return n, nil
}

func (b *brokenReader) Close() error { return nil }

func TestRecoveryStreamReopensAtPosition(t *testing.T) {
	t.Parallel()

	var seeks []float64
	opener := func(_ string, seek float64) (io.ReadCloser, error) {
		seeks = append(seeks, seek)
		if len(seeks) == 1 {
			return &brokenReader{data: make([]byte, bytesPerSecond), err: errors.New("connection reset")}, nil
		}
		return io.NopCloser(bytes.NewReader(make([]byte, 100))), nil
	}

	rs := NewRecoveryStream(opener, "https://example.com/a", zerolog.Nop())
	require.NoError(t, rs.Open())

	data, err := io.ReadAll(rs)
	require.NoError(t, err)
	assert.Len(t, data, bytesPerSecond+100)
	assert.Equal(t, []float64{0, 1}, seeks)
}

func TestRecoveryStreamGivesUp(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	opens := 0
	opener := func(string, float64) (io.ReadCloser, error) {
		opens++
		return &brokenReader{err: cause}, nil
	}

	rs := NewRecoveryStream(opener, "u", zerolog.Nop())
	require.NoError(t, rs.Open())

	_, err := io.ReadAll(rs)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1+maxRecoveryAttempts, opens)
}

func TestFFmpegArgs(t *testing.T) {
	t.Parallel()

	args := ffmpegArgs("https://example.com/a", 0)
	assert.NotContains(t, args, "-ss")
	assert.Equal(t, "pipe:1", args[len(args)-1])
	assert.Contains(t, args, "s16le")

	args = ffmpegArgs("https://example.com/a", 12.5)
	assert.Equal(t, []string{"-ss", "12.500"}, args[:2])
}

func TestTailBufferKeepsEnd(t *testing.T) {
	t.Parallel()

	b := &tailBuffer{limit: 5}
	_, _ = b.Write([]byte("hello "))
	_, _ = b.Write([]byte("world"))
	assert.Equal(t, "world", b.String())
}
