package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
)

// Link runs the register protocol over a byte stream. Every FrameSize-byte
// frame gets a PayloadSize-byte reply: the register value for readable
// opcodes, an On acknowledgement for accepted writes and Off for rejected
// frames.
type Link struct {
	gw  *Gateway
	rw  io.ReadWriter
	buf [FrameSize]byte
	n   int
}

// NewLink binds gw to rw.
func NewLink(gw *Gateway, rw io.ReadWriter) *Link {
	return &Link{gw: gw, rw: rw}
}

// Run serves frames until ctx is done or the stream ends. A read that
// returns no data and no error is treated as a timeout: any partial frame
// is discarded so the next frame starts on an opcode byte.
func (l *Link) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		n, err := l.rw.Read(l.buf[l.n:])
		if n == 0 && err == nil && l.n > 0 {
			log.Printf("gateway: dropped partial frame % X", l.buf[:l.n])
			l.n = 0
			continue
		}
		l.n += n
		if l.n == FrameSize {
			l.n = 0
			if werr := l.serve(l.buf[:]); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}
	}
}

func (l *Link) serve(frame []byte) error {
	resp, ok, err := l.gw.Exchange(frame)
	switch {
	case err != nil:
		log.Printf("gateway: frame % X: %v", frame, err)
		resp = [PayloadSize]byte{Off}
	case !ok:
		resp = [PayloadSize]byte{On}
	}
	if _, err := l.rw.Write(resp[:]); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
