package protocol

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

const (
	requestEnvelope  = "request"
	responseEnvelope = "response"

	// statementSeparator ends every outgoing frame.
	statementSeparator = '\n'
)

type nameElement struct {
	Name string `xml:"name,attr"`
}

type moveElement struct {
	X string `xml:"x,attr"`
	Y string `xml:"y,attr"`
}

type requestDocument struct {
	XMLName xml.Name     `xml:"request"`
	Type    string       `xml:"type,attr"`
	Mode    *nameElement `xml:"mode,omitempty"`
	Player  *nameElement `xml:"player,omitempty"`
	Move    *moveElement `xml:"move,omitempty"`
}

// inboundRequest accepts any root so a wrong envelope can be told apart from bad XML.
type inboundRequest struct {
	XMLName xml.Name
	Type    string       `xml:"type,attr"`
	Mode    *nameElement `xml:"mode"`
	Player  *nameElement `xml:"player"`
	Move    *moveElement `xml:"move"`
}

type responseDocument struct {
	XMLName xml.Name
	Type    string       `xml:"type,attr"`
	Text    string       `xml:",chardata"`
	Mode    *nameElement `xml:"mode"`
	Status  *nameElement `xml:"status"`
	Move    *moveElement `xml:"move"`
}

// EncodeRequest renders a request as a single wire frame ending in a newline.
func EncodeRequest(request Request) (Frame, error) {
	doc := requestDocument{Type: request.requestType()}

	switch req := request.(type) {
	case ModeRequest:
		if !req.Mode.IsValid() {
			return nil, fmt.Errorf("%w: mode %q", ErrInvalidRequest, req.Mode)
		}
		doc.Mode = &nameElement{Name: string(req.Mode)}
	case MoveRequest:
		if !req.Player.IsPlayer() {
			return nil, fmt.Errorf("%w: player %q", ErrInvalidRequest, req.Player)
		}
		if !entity.InBounds(req.X, req.Y) {
			return nil, fmt.Errorf("%w: move (%d, %d)", ErrInvalidRequest, req.X, req.Y)
		}
		doc.Player = &nameElement{Name: string(req.Player)}
		doc.Move = &moveElement{X: strconv.Itoa(req.X), Y: strconv.Itoa(req.Y)}
	}

	data, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", doc.Type, err)
	}

	return append(data, statementSeparator), nil
}

// DecodeResponse parses one frame. Unknown response types are returned as Unknown,
// not as an error.
func DecodeResponse(frame Frame) (Response, error) {
	var doc responseDocument
	if err := xml.Unmarshal(frame, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if doc.XMLName.Local != responseEnvelope {
		return nil, fmt.Errorf("%w: <%s>", ErrWrongEnvelope, doc.XMLName.Local)
	}

	switch doc.Type {
	case TypeMode:
		return decodeModeAck(&doc)
	case TypeMove:
		return decodeMoveResult(&doc)
	case TypeGameOver:
		return decodeGameOver(&doc)
	case TypeError:
		message := strings.TrimSpace(doc.Text)
		if message == "" {
			message = defaultErrorMessage
		}
		return ProtocolError{Message: message}, nil
	default:
		return Unknown{Type: doc.Type}, nil
	}
}

func decodeModeAck(doc *responseDocument) (Response, error) {
	if doc.Mode == nil {
		return nil, &BadFieldError{Field: "mode"}
	}

	mode, err := entity.ParseGameMode(doc.Mode.Name)
	if err != nil {
		return nil, &BadFieldError{Field: "mode", Value: doc.Mode.Name}
	}

	return ModeAck{Mode: mode}, nil
}

func decodeMoveResult(doc *responseDocument) (Response, error) {
	status, err := decodeStatus(doc)
	if err != nil {
		return nil, err
	}

	if doc.Move == nil {
		return nil, &BadFieldError{Field: "move"}
	}

	x, err := decodeCoordinate("x", doc.Move.X)
	if err != nil {
		return nil, err
	}

	y, err := decodeCoordinate("y", doc.Move.Y)
	if err != nil {
		return nil, err
	}

	return MoveResult{Status: status, X: x, Y: y}, nil
}

func decodeGameOver(doc *responseDocument) (Response, error) {
	status, err := decodeStatus(doc)
	if err != nil {
		return nil, err
	}

	if !status.IsTerminal() {
		return nil, &BadFieldError{Field: "status", Value: string(status)}
	}

	return GameOver{Status: status}, nil
}

func decodeStatus(doc *responseDocument) (Status, error) {
	if doc.Status == nil {
		return "", &BadFieldError{Field: "status"}
	}

	status, err := ParseStatus(doc.Status.Name)
	if err != nil {
		return "", &BadFieldError{Field: "status", Value: doc.Status.Name}
	}

	return status, nil
}

func decodeCoordinate(field, raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 || value >= entity.BoardSize {
		return 0, &BadFieldError{Field: field, Value: raw}
	}

	return value, nil
}

// DecodeRequest parses a request frame as the board firmware would. It is used by
// the emulated peer.
func DecodeRequest(frame Frame) (Request, error) {
	var doc inboundRequest
	if err := xml.Unmarshal(frame, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if doc.XMLName.Local != requestEnvelope {
		return nil, fmt.Errorf("%w: <%s>", ErrWrongEnvelope, doc.XMLName.Local)
	}

	switch doc.Type {
	case TypeMode:
		if doc.Mode == nil {
			return nil, &BadFieldError{Field: "mode"}
		}

		mode, err := entity.ParseGameMode(doc.Mode.Name)
		if err != nil {
			return nil, &BadFieldError{Field: "mode", Value: doc.Mode.Name}
		}

		return ModeRequest{Mode: mode}, nil
	case TypeMove:
		if doc.Player == nil {
			return nil, &BadFieldError{Field: "player"}
		}

		player, err := entity.ParsePlayer(doc.Player.Name)
		if err != nil {
			return nil, &BadFieldError{Field: "player", Value: doc.Player.Name}
		}

		if doc.Move == nil {
			return nil, &BadFieldError{Field: "move"}
		}

		x, err := decodeCoordinate("x", doc.Move.X)
		if err != nil {
			return nil, err
		}

		y, err := decodeCoordinate("y", doc.Move.Y)
		if err != nil {
			return nil, err
		}

		return MoveRequest{Player: player, X: x, Y: y}, nil
	default:
		return nil, &BadFieldError{Field: "type", Value: doc.Type}
	}
}

// EncodeResponse renders a response the way the board prints it: one element per
// line, the closing tag last.
func EncodeResponse(response Response) (Frame, error) {
	doc := responseDocument{
		XMLName: xml.Name{Local: responseEnvelope},
		Type:    response.Discriminant(),
	}

	switch resp := response.(type) {
	case ModeAck:
		doc.Mode = &nameElement{Name: string(resp.Mode)}
	case MoveResult:
		doc.Status = &nameElement{Name: string(resp.Status)}
		doc.Move = &moveElement{X: strconv.Itoa(resp.X), Y: strconv.Itoa(resp.Y)}
	case GameOver:
		doc.Status = &nameElement{Name: string(resp.Status)}
	case ProtocolError:
		doc.Text = resp.Message
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s response: %w", doc.Type, err)
	}

	return append(data, statementSeparator), nil
}
