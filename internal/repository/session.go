package repository

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

var ErrSessionNotFound = errors.New("saved session not found")

func marshalSnapshot(snapshot entity.Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(xml.Header)

	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")

	if err := encoder.Encode(snapshot); err != nil {
		return nil, fmt.Errorf("could not marshal session: %w", err)
	}

	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

func unmarshalSnapshot(data []byte) (entity.Snapshot, error) {
	var snapshot entity.Snapshot

	if err := xml.Unmarshal(data, &snapshot); err != nil {
		return entity.Snapshot{}, fmt.Errorf("%w: %w", entity.ErrInvalidSnapshot, err)
	}

	return snapshot, nil
}
