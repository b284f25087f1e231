package protocol

import (
	"fmt"
	"log/slog"
)

// Link is the only user of the transport: it sends requests and receives
// responses one at a time.
type Link struct {
	logger    *slog.Logger
	transport Transport
	reader    *Reader
}

func NewLink(logger *slog.Logger, transport Transport) *Link {
	return &Link{
		logger:    logger.With("component", "link"),
		transport: transport,
		reader:    NewReader(transport),
	}
}

// Send encodes and writes one request.
func (that *Link) Send(request Request) error {
	if !that.transport.IsOpen() {
		return ErrNotConnected
	}

	frame, err := EncodeRequest(request)
	if err != nil {
		return err
	}

	if _, err = that.transport.Write(frame); err != nil {
		return &TransportError{Op: "write", Err: err}
	}

	that.logger.Debug("sent frame", "frame", string(frame[:len(frame)-1]))

	return nil
}

// Receive blocks for exactly one frame and decodes it. Transport errors and
// decode errors are returned as they are; a frame that fails to decode is dropped.
func (that *Link) Receive() (Response, error) {
	frame, err := that.reader.ReadFrame()
	if err != nil {
		return nil, err
	}

	that.logger.Debug("received frame", "frame", string(frame))

	response, err := DecodeResponse(frame)
	if err != nil {
		that.logger.Warn("dropped frame", "frame", string(frame), "error", err)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return response, nil
}
