package stream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

const (
	Channels   = 2
	SampleRate = 48000
	FrameSize  = 960 // 20ms at 48kHz

	bytesPerSecond = SampleRate * Channels * 2
)

// Opener starts decoding url as raw PCM from seekSec on.
type Opener func(url string, seekSec float64) (io.ReadCloser, error)

// FFmpeg returns an Opener backed by the ffmpeg binary at path.
func FFmpeg(path string) Opener {
	if path == "" {
		path = "ffmpeg"
	}
	return func(url string, seekSec float64) (io.ReadCloser, error) {
		return openFFmpeg(path, url, seekSec)
	}
}

func ffmpegArgs(url string, seekSec float64) []string {
	var args []string
	if seekSec > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.3f", seekSec))
	}
	return append(args,
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", url,
		"-vn",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-ac", fmt.Sprintf("%d", Channels),
		"-loglevel", "warning",
		"pipe:1",
	)
}

func openFFmpeg(path, url string, seekSec float64) (io.ReadCloser, error) {
	cmd := exec.Command(path, ffmpegArgs(url, seekSec)...)

	stderr := &tailBuffer{limit: 2048}
	cmd.Stderr = stderr

	reader, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("command start error: %w", err)
	}

	return &pcmReader{cmd: cmd, out: reader, stderr: stderr}, nil
}

// pcmReader turns a failed ffmpeg exit into a read error instead of a
// plain io.EOF, so callers can tell a broken stream from a finished one.
type pcmReader struct {
	cmd    *exec.Cmd
	out    io.ReadCloser
	stderr *tailBuffer

	waitOnce sync.Once
	waitErr  error
	closed   bool
	mu       sync.Mutex
}

func (r *pcmReader) Read(p []byte) (int, error) {
	n, err := r.out.Read(p)
	if errors.Is(err, io.EOF) {
		if werr := r.wait(); werr != nil && !r.isClosed() {
			msg := strings.TrimSpace(r.stderr.String())
			if msg != "" {
				return n, fmt.Errorf("ffmpeg: %w: %s", werr, msg)
			}
			return n, fmt.Errorf("ffmpeg: %w", werr)
		}
	}
	return n, err
}

func (r *pcmReader) wait() error {
	r.waitOnce.Do(func() { r.waitErr = r.cmd.Wait() })
	return r.waitErr
}

func (r *pcmReader) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *pcmReader) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	if r.cmd.Process != nil {
		_ = r.cmd.Process.Kill()
	}
	_ = r.wait()
	return nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Write(p)
	if over := b.buf.Len() - b.limit; over > 0 {
		b.buf.Next(over)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
