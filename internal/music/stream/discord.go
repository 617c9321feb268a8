package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"layeh.com/gopus"
)

// Encoder compresses one PCM frame. *gopus.Encoder satisfies it.
type Encoder interface {
	Encode(pcm []int16, frameSize, maxDataBytes int) ([]byte, error)
}

// NewOpusEncoder returns the encoder used for Discord voice.
func NewOpusEncoder() (Encoder, error) {
	enc, err := gopus.NewEncoder(SampleRate, Channels, gopus.Audio)
	if err != nil {
		return nil, fmt.Errorf("encoder error: %w", err)
	}
	return enc, nil
}

// Playback pumps one PCM source into an Opus packet channel until the
// source ends or Stop is called.
type Playback struct {
	src io.ReadCloser
	enc Encoder
	out chan<- []byte

	volume atomic.Uint64

	mu     sync.Mutex
	paused bool
	resume chan struct{}

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	err      error
}

// Start begins streaming src to out in a new goroutine.
func Start(src io.ReadCloser, enc Encoder, out chan<- []byte, volume float64) *Playback {
	p := &Playback{
		src:  src,
		enc:  enc,
		out:  out,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	p.SetVolume(volume)
	go p.run()
	return p
}

func (p *Playback) run() {
	defer close(p.done)
	defer p.src.Close()

	pcmBuf := make([]byte, FrameSize*Channels*2)
	intBuf := make([]int16, FrameSize*Channels)

	for {
		if !p.waitIfPaused() {
			return
		}

		select {
		case <-p.stop:
			return
		default:
		}

		_, err := io.ReadFull(p.src, pcmBuf)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return
			}
			p.err = fmt.Errorf("read error: %w", err)
			return
		}

		for i := range intBuf {
			intBuf[i] = int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2]))
		}
		Scale(intBuf, p.Volume())

		opus, err := p.enc.Encode(intBuf, FrameSize, len(pcmBuf))
		if err != nil {
			p.err = fmt.Errorf("encode error: %w", err)
			return
		}

		select {
		case p.out <- opus:
		case <-p.stop:
			return
		}
	}
}

// waitIfPaused blocks while paused. It returns false once stopped.
func (p *Playback) waitIfPaused() bool {
	p.mu.Lock()
	if !p.paused {
		p.mu.Unlock()
		return true
	}
	resume := p.resume
	p.mu.Unlock()

	select {
	case <-resume:
		return true
	case <-p.stop:
		return false
	}
}

func (p *Playback) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		return
	}
	p.paused = true
	p.resume = make(chan struct{})
}

func (p *Playback) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused {
		return
	}
	p.paused = false
	close(p.resume)
}

func (p *Playback) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Stop ends playback. Safe to call more than once.
func (p *Playback) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

// Done is closed once the goroutine has exited.
func (p *Playback) Done() <-chan struct{} {
	return p.done
}

// Err reports why playback ended early. Only valid after Done.
func (p *Playback) Err() error {
	return p.err
}

func (p *Playback) SetVolume(v float64) {
	p.volume.Store(math.Float64bits(v))
}

func (p *Playback) Volume() float64 {
	return math.Float64frombits(p.volume.Load())
}

// Scale multiplies every sample by v, clamping to the int16 range.
func Scale(samples []int16, v float64) {
	if v == 1 {
		return
	}
	for i, s := range samples {
		scaled := float64(s) * v
		switch {
		case scaled > math.MaxInt16:
			scaled = math.MaxInt16
		case scaled < math.MinInt16:
			scaled = math.MinInt16
		}
		samples[i] = int16(scaled)
	}
}
