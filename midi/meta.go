package midi

import (
	"fmt"
	"math"

	"gitlab.com/gomidi/midi/v2/smf"
)

// Meta commands the editor decodes.
const (
	MetaTrackName     byte = 0x03
	MetaEndOfTrack    byte = 0x2F
	MetaTempo         byte = 0x51
	MetaTimeSignature byte = 0x58
)

const (
	tempoPayloadLen   = 3
	timeSigPayloadLen = 4
)

// PayloadError reports a meta event whose payload cannot be decoded.
type PayloadError struct {
	Command byte
	Want    int
	Got     int
	Reason  string
}

func (e *PayloadError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("meta 0x%02X: %s", e.Command, e.Reason)
	}
	return fmt.Sprintf("meta 0x%02X: payload is %d bytes, want %d", e.Command, e.Got, e.Want)
}

// MetaPayload splits a meta message into its command byte and payload.
// ok is false for anything that is not a meta message.
func MetaPayload(msg smf.Message) (command byte, data []byte, ok bool) {
	if len(msg) < 3 || msg[0] != 0xFF {
		return 0, nil, false
	}
	length, n := readVarLen(msg[2:])
	data = msg[2+n:]
	if length < len(data) {
		data = data[:length]
	}
	return msg[1], data, true
}

// DecodeTempo converts a 3-byte big-endian microseconds-per-quarter payload
// to whole beats per minute. Values that do not fit in a uint16 saturate.
func DecodeTempo(data []byte) (uint16, error) {
	if len(data) != tempoPayloadLen {
		return 0, &PayloadError{Command: MetaTempo, Want: tempoPayloadLen, Got: len(data)}
	}
	usec := uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2])
	if usec == 0 {
		return 0, &PayloadError{Command: MetaTempo, Want: tempoPayloadLen, Got: len(data), Reason: "zero microseconds per quarter note"}
	}
	bpm := 60_000_000 / usec
	if bpm > math.MaxUint16 {
		bpm = math.MaxUint16
	}
	return uint16(bpm), nil
}

// DecodeTimeSignature reads numerator and denominator from a 4-byte time
// signature payload. The denominator is stored as a power of two.
func DecodeTimeSignature(data []byte) (numerator, denominator uint8, err error) {
	if len(data) != timeSigPayloadLen {
		return 0, 0, &PayloadError{Command: MetaTimeSignature, Want: timeSigPayloadLen, Got: len(data)}
	}
	if data[1] > 7 {
		return 0, 0, &PayloadError{Command: MetaTimeSignature, Want: timeSigPayloadLen, Got: len(data),
			Reason: fmt.Sprintf("denominator exponent %d out of range", data[1])}
	}
	return data[0], 1 << data[1], nil
}

// TrackName returns the text of a track-name meta event.
func TrackName(msg smf.Message) (string, bool) {
	cmd, data, ok := MetaPayload(msg)
	if !ok || cmd != MetaTrackName {
		return "", false
	}
	return string(data), true
}

// readVarLen reads a variable-length quantity. It returns the value and the
// number of bytes consumed.
func readVarLen(data []byte) (int, int) {
	value := 0
	n := 0
	for i := 0; i < len(data) && i < 4; i++ {
		n++
		value = (value << 7) | int(data[i]&0x7F)
		if data[i]&0x80 == 0 {
			break
		}
	}
	return value, n
}
