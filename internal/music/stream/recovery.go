package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

const maxRecoveryAttempts = 3

// RecoveryStream reopens a source that broke mid-song, seeking back to
// where it stopped. A clean EOF ends the song as usual.
type RecoveryStream struct {
	open    Opener
	url     string
	src     io.ReadCloser
	read    int64
	retries int
	log     zerolog.Logger
}

func NewRecoveryStream(open Opener, url string, logger zerolog.Logger) *RecoveryStream {
	return &RecoveryStream{
		open: open,
		url:  url,
		log:  logger,
	}
}

// Open starts the first decode.
func (rs *RecoveryStream) Open() error {
	src, err := rs.open(rs.url, 0)
	if err != nil {
		return err
	}
	rs.src = src
	return nil
}

func (rs *RecoveryStream) Read(p []byte) (int, error) {
	if rs.src == nil {
		return 0, errors.New("stream not opened")
	}

	n, err := rs.src.Read(p)
	rs.read += int64(n)
	if err == nil || errors.Is(err, io.EOF) {
		return n, err
	}
	if n > 0 {
		// The error comes back on the next call.
		return n, nil
	}
	return rs.recover(p, err)
}

func (rs *RecoveryStream) recover(p []byte, cause error) (int, error) {
	if rs.retries >= maxRecoveryAttempts {
		rs.log.Warn().Err(cause).Str("url", rs.url).Msg("Max recovery attempts reached")
		return 0, cause
	}
	rs.retries++

	seek := rs.Position()
	rs.log.Warn().Err(cause).Int("attempt", rs.retries).Float64("seek", seek).Msg("Stream ended prematurely, reopening")

	_ = rs.src.Close()
	src, err := rs.open(rs.url, seek)
	if err != nil {
		return 0, fmt.Errorf("recovery failed: %w", err)
	}
	rs.src = src
	return rs.Read(p)
}

// Position is how many seconds of audio have been read so far.
func (rs *RecoveryStream) Position() float64 {
	return float64(rs.read) / bytesPerSecond
}

func (rs *RecoveryStream) Close() error {
	if rs.src != nil {
		return rs.src.Close()
	}
	return nil
}
