package transport

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	frameHeaderSize = 4

	// DefaultMaxFrameSize acota el payload aceptado desde el broker.
	DefaultMaxFrameSize = 16 << 20

	// DefaultMaxLineSize acota una línea recibida desde el engine.
	DefaultMaxLineSize = 1 << 20
)

var (
	// ErrFrameTooLarge indica un prefijo de longitud por encima del máximo.
	ErrFrameTooLarge = errors.New("frame exceeds maximum size")

	// ErrLineTooLong indica una línea sin '\n' dentro del máximo permitido.
	ErrLineTooLong = errors.New("line exceeds maximum size")
)

// AppendFrame agrega a dst el prefijo de longitud big-endian seguido del payload.
func AppendFrame(dst, payload []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(payload)))
	return append(dst, payload...)
}

// WriteFrame escribe un frame completo con una única llamada a Write.
func WriteFrame(w io.Writer, payload []byte) error {
	buf := AppendFrame(make([]byte, 0, frameHeaderSize+len(payload)), payload)
	_, err := w.Write(buf)
	return err
}

// ReadFrame lee un frame completo. Las lecturas parciales se completan con io.ReadFull.
func ReadFrame(r io.Reader, maxSize int) ([]byte, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(header[:])
	if maxSize > 0 && int64(size) > int64(maxSize) {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, size, maxSize)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}

// ReadLine lee hasta '\n'. Retorna (nil, nil) para líneas vacías.
//
// bufio.Reader conserva los fragmentos parciales entre lecturas del socket.
// Una línea de más de maxSize bytes, sin contar el '\n', falla con
// ErrLineTooLong sin terminar de leerse; maxSize <= 0 no acota.
func ReadLine(r *bufio.Reader, maxSize int) ([]byte, error) {
	var line []byte
	for {
		chunk, err := r.ReadSlice('\n')
		line = append(line, chunk...)
		if maxSize > 0 && len(bytes.TrimSuffix(line, []byte{'\n'})) > maxSize {
			return nil, fmt.Errorf("%w: more than %d bytes", ErrLineTooLong, maxSize)
		}
		if err == nil {
			break
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			return nil, err
		}
	}
	line = bytes.TrimRight(line, "\r\n")
	if len(bytes.TrimSpace(line)) == 0 {
		return nil, nil
	}
	return line, nil
}
