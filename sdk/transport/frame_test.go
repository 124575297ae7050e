package transport

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTripWithFragmentedReads(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte("first")))
	require.NoError(t, WriteFrame(&buf, nil))
	require.NoError(t, WriteFrame(&buf, bytes.Repeat([]byte{0xAB}, 300)))

	assert.Equal(t, []byte{0, 0, 0, 5, 'f', 'i', 'r', 's', 't'}, buf.Bytes()[:9])

	r := iotest.OneByteReader(&buf)

	got, err := ReadFrame(r, DefaultMaxFrameSize)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)

	got, err = ReadFrame(r, DefaultMaxFrameSize)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ReadFrame(r, DefaultMaxFrameSize)
	require.NoError(t, err)
	assert.Len(t, got, 300)

	_, err = ReadFrame(r, DefaultMaxFrameSize)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadFrameRejectsOversizedPrefix(t *testing.T) {
	frame := AppendFrame(nil, make([]byte, 64))
	_, err := ReadFrame(bytes.NewReader(frame), 32)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	frame := AppendFrame(nil, []byte("abcdef"))
	_, err := ReadFrame(bytes.NewReader(frame[:7]), 0)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadLineSkipsEmptyAndJoinsFragments(t *testing.T) {
	src := strings.NewReader("{\"status\":\"ack\"}\n\n\r\n{\"status\":\"error\"}\r\npartial")
	r := bufio.NewReader(iotest.OneByteReader(src))

	var lines []string
	for {
		line, err := ReadLine(r, DefaultMaxLineSize)
		if err != nil {
			assert.ErrorIs(t, err, io.EOF)
			break
		}
		if line != nil {
			lines = append(lines, string(line))
		}
	}

	assert.Equal(t, []string{`{"status":"ack"}`, `{"status":"error"}`}, lines)
}

func TestReadLineRejectsOversizedLine(t *testing.T) {
	src := strings.NewReader("{\"a\":1}\r\n" + strings.Repeat("x", 64) + "\n")
	// Buffer mínimo de bufio para forzar varias lecturas por línea.
	r := bufio.NewReaderSize(src, 16)

	line, err := ReadLine(r, 8)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(line))

	_, err = ReadLine(r, 8)
	assert.ErrorIs(t, err, ErrLineTooLong)

	exact := bufio.NewReader(strings.NewReader("12345678\n"))
	line, err = ReadLine(exact, 8)
	require.NoError(t, err)
	assert.Equal(t, "12345678", string(line))
}

func TestEngineDialerSchemes(t *testing.T) {
	_, err := EngineDialer("127.0.0.1:9000", 0)
	assert.NoError(t, err)
	_, err = EngineDialer("tcp://127.0.0.1:9000", 0)
	assert.NoError(t, err)
	_, err = EngineDialer("udp://127.0.0.1:9000", 0)
	assert.Error(t, err)
	_, err = EngineDialer("tcp://", 0)
	assert.Error(t, err)
}
