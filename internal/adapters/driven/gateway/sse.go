package gateway

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

// FrameDecoder reads "data: <json>" frames from a chat event stream.
// Lines are read whole regardless of how the transport splits the body,
// so a frame divided across reads is reassembled before decoding.
type FrameDecoder struct {
	r    *bufio.Reader
	done bool
}

// NewFrameDecoder creates a decoder over an event stream body.
func NewFrameDecoder(r io.Reader) *FrameDecoder {
	return &FrameDecoder{r: bufio.NewReaderSize(r, 32<<10)}
}

// Next returns the next frame. It returns io.EOF when the body ends or
// after the [DONE] sentinel has been returned. A malformed frame yields an
// error matching domain.ErrStreamDecode; the caller may keep reading.
func (d *FrameDecoder) Next() (domain.StreamFrame, error) {
	for {
		if d.done {
			return domain.StreamFrame{}, io.EOF
		}

		line, err := d.r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return domain.StreamFrame{}, fmt.Errorf("reading stream: %w", err)
		}
		atEOF := errors.Is(err, io.EOF)
		if atEOF && line == "" {
			d.done = true
			return domain.StreamFrame{}, io.EOF
		}
		if atEOF {
			d.done = true
		}

		payload, ok := dataPayload(line)
		if !ok {
			continue
		}

		frame, err := domain.ParseStreamFrame(payload)
		if err != nil {
			return domain.StreamFrame{}, err
		}
		if frame.Done {
			d.done = true
		}
		return frame, nil
	}
}

// dataPayload extracts the payload of a data line. Comments, event names,
// ids and blank separators are ignored.
func dataPayload(line string) (string, bool) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, "data:") {
		return "", false
	}
	payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if payload == "" {
		return "", false
	}
	return payload, true
}
