package protocol

import (
	"encoding/binary"
	"errors"
	"io"
)

const (
	MagicNumber = 0x43

	OpAdd       = 0x01 // Value = encoded contact
	OpDel       = 0x02 // Key = name or phone
	OpFindName  = 0x03 // Key = prefix
	OpFindPhone = 0x04 // Key = prefix
	OpList      = 0x05
	OpStat      = 0x06
	OpSave      = 0x07

	RespOK  = 0x00
	RespErr = 0xFF
	RespVal = 0x01
)

// Error codes carried in the first byte of a RespErr value.
const (
	ErrCodeInternal   = 0x00
	ErrCodeValidation = 0x01
	ErrCodeDuplicate  = 0x02
	ErrCodeNotFound   = 0x03
	ErrCodeBadRequest = 0x04
)

// Frame limits. Keys carry a 2-byte length; values are capped well below
// their 4-byte length so a bad header cannot force a huge allocation.
const (
	MaxKeySize   = 0xFFFF
	MaxValueSize = 64 << 20
)

var (
	ErrInvalidMagic  = errors.New("invalid magic number")
	ErrFrameTooLarge = errors.New("frame exceeds size limit")
)

type Packet struct {
	Op    byte
	Key   []byte
	Value []byte
}

// Encode writes one frame in a single Write.
func Encode(w io.Writer, op byte, key []byte, value []byte) error {
	if len(key) > MaxKeySize || len(value) > MaxValueSize {
		return ErrFrameTooLarge
	}
	frame := make([]byte, 8, 8+len(key)+len(value))
	frame[0] = MagicNumber
	frame[1] = op
	binary.BigEndian.PutUint16(frame[2:4], uint16(len(key)))
	binary.BigEndian.PutUint32(frame[4:8], uint32(len(value)))
	frame = append(frame, key...)
	frame = append(frame, value...)

	_, err := w.Write(frame)
	return err
}

func Decode(r io.Reader) (*Packet, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	if header[0] != MagicNumber {
		return nil, ErrInvalidMagic
	}

	op := header[1]
	kLen := binary.BigEndian.Uint16(header[2:4])
	vLen := binary.BigEndian.Uint32(header[4:8])
	if vLen > MaxValueSize {
		return nil, ErrFrameTooLarge
	}

	key := make([]byte, kLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}

	val := make([]byte, vLen)
	if _, err := io.ReadFull(r, val); err != nil {
		return nil, err
	}

	return &Packet{Op: op, Key: key, Value: val}, nil
}

// EncodeError builds a RespErr value: [Code 1B][Message].
func EncodeError(code byte, msg string) []byte {
	return append([]byte{code}, msg...)
}

func DecodeError(value []byte) (byte, string) {
	if len(value) == 0 {
		return ErrCodeInternal, ""
	}
	return value[0], string(value[1:])
}

func EncodeCount(n int) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(n))
	return b
}

func DecodeCount(b []byte) (int, error) {
	if len(b) < 4 {
		return 0, io.ErrUnexpectedEOF
	}
	return int(binary.BigEndian.Uint32(b)), nil
}
