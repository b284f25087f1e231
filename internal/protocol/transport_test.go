package protocol

import (
	"bytes"
	"io"
)

// step is either a chunk of bytes delivered by the peer or a read failure.
type step struct {
	data string
	err  error
}

type scriptedTransport struct {
	steps   []step
	closed  bool
	written bytes.Buffer
	reads   int
}

func newScriptedTransport(steps ...step) *scriptedTransport {
	return &scriptedTransport{steps: steps}
}

func chunks(parts ...string) []step {
	steps := make([]step, 0, len(parts))
	for _, part := range parts {
		steps = append(steps, step{data: part})
	}
	return steps
}

func (that *scriptedTransport) Read(p []byte) (int, error) {
	that.reads++

	for len(that.steps) > 0 {
		current := &that.steps[0]
		if current.err != nil {
			err := current.err
			that.steps = that.steps[1:]
			return 0, err
		}
		if current.data == "" {
			that.steps = that.steps[1:]
			continue
		}

		n := copy(p, current.data)
		current.data = current.data[n:]
		return n, nil
	}

	return 0, io.EOF
}

func (that *scriptedTransport) Write(p []byte) (int, error) {
	return that.written.Write(p)
}

func (that *scriptedTransport) IsOpen() bool {
	return !that.closed
}
