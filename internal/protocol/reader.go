package protocol

import (
	"bytes"
	"io"
)

const maxEmptyReads = 100

// ResponseTerminator is the trailing content of the last line of every response frame.
var ResponseTerminator = []byte("</" + responseEnvelope + ">")

// Transport is the byte channel to the peer.
type Transport interface {
	io.ReadWriter
	IsOpen() bool
}

// Reader assembles response frames out of the line-oriented byte stream.
//
// It reads one byte at a time, so it never consumes bytes that belong to the
// next frame. Content read before a failure is kept and the next ReadFrame
// continues from it.
//
// A frame ends as soon as its line ends with the terminator, so a peer that
// omits the final newline does not stall the reader. The newline, when it does
// arrive, is read as a blank line before the next frame.
//
// There is no deadline of its own: a peer that never sends the terminator
// blocks ReadFrame until the transport gives up.
type Reader struct {
	transport Transport

	buf   [1]byte
	line  []byte
	frame []byte
}

func NewReader(transport Transport) *Reader {
	return &Reader{transport: transport}
}

// ReadFrame returns the next complete frame: the concatenation of its lines with
// line terminators removed.
func (that *Reader) ReadFrame() (Frame, error) {
	if !that.transport.IsOpen() {
		return nil, ErrNotConnected
	}

	emptyReads := 0

	for {
		n, err := that.transport.Read(that.buf[:])
		if n > 0 {
			emptyReads = 0

			if that.buf[0] == '\n' {
				if that.completeLine() {
					return that.takeFrame(), nil
				}
				continue
			}

			that.line = append(that.line, that.buf[0])

			if that.buf[0] == '>' && bytes.HasSuffix(that.line, ResponseTerminator) {
				that.completeLine()
				return that.takeFrame(), nil
			}
		}

		if err != nil {
			// A final line that already carries the terminator does not need its newline.
			if bytes.HasSuffix(bytes.TrimRight(that.line, " \t\r"), ResponseTerminator) {
				that.completeLine()
				return that.takeFrame(), nil
			}
			return nil, &TransportError{Op: "read", Err: err}
		}

		if n == 0 {
			emptyReads++
			if emptyReads >= maxEmptyReads {
				return nil, &TransportError{Op: "read", Err: io.ErrNoProgress}
			}
		}
	}
}

// completeLine moves the current line into the frame and reports whether it ended the frame.
func (that *Reader) completeLine() bool {
	content := bytes.TrimRight(that.line, "\r")
	if len(that.frame) == 0 {
		content = bytes.TrimLeft(content, " \t\r")
	}
	that.frame = append(that.frame, content...)
	that.line = that.line[:0]

	return bytes.HasSuffix(bytes.TrimRight(content, " \t"), ResponseTerminator)
}

func (that *Reader) takeFrame() Frame {
	frame := make(Frame, len(that.frame))
	copy(frame, that.frame)
	that.frame = that.frame[:0]

	return frame
}
