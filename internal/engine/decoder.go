// Package engine implements the streaming session engine: it consumes the
// turn stream protocol, folds frames into transcript messages, and drives the
// play-session state machine.
package engine

import (
	"bufio"
	"encoding/json"
	"io"
	"log"
	"strings"

	"github.com/nvwa-games/storycade/internal/model/story"
)

// Frame types carried on the turn stream.
const (
	FrameContent = "content"
	FrameOptions = "options"
	FrameEnd     = "end"
)

// Frame is one decoded unit of the stream protocol.
type Frame struct {
	Type    string                 `json:"type"`
	Content string                 `json:"content,omitempty"`
	Options []story.GameplayOption `json:"options,omitempty"`
}

// framePrefix marks lines that carry a JSON payload; everything else on the
// stream is ignored.
const framePrefix = "data: "

// Decoder turns a raw byte stream into an ordered sequence of frames.
//
// Lines are scanned across chunk boundaries, so a frame split between two
// transport reads is still decoded whole. A line whose payload fails to parse
// is dropped and logged; decoding continues.
type Decoder struct {
	sc *bufio.Scanner
}

// NewDecoder wraps a readable byte stream, typically a response body.
// Closing the underlying reader stops decoding; Next then reports the
// reader's error instead of emitting further frames.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 16*1024), 1024*1024)
	return &Decoder{sc: sc}
}

// Next returns the next frame in arrival order. It returns io.EOF once the
// transport reports completion, or the transport's own error if the stream
// breaks mid-turn.
func (d *Decoder) Next() (Frame, error) {
	for d.sc.Scan() {
		line := d.sc.Text()
		if !strings.HasPrefix(line, framePrefix) {
			continue
		}

		var frame Frame
		if err := json.Unmarshal([]byte(line[len(framePrefix):]), &frame); err != nil {
			log.Printf("[engine] dropping malformed frame: %v", err)
			continue
		}
		return frame, nil
	}

	if err := d.sc.Err(); err != nil {
		return Frame{}, err
	}
	return Frame{}, io.EOF
}
