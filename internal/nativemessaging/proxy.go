package nativemessaging

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// ReadFrame reads one browser native messaging frame: a native-endian uint32
// length followed by that many bytes of JSON.
func ReadFrame(r io.Reader) ([]byte, error) {
	var size uint32
	if err := binary.Read(r, binary.NativeEndian, &size); err != nil {
		return nil, err
	}
	if size > maxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit", size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return buf, nil
}

// WriteFrame writes payload as one native messaging frame.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > maxFrameSize {
		return fmt.Errorf("frame of %d bytes exceeds limit", len(payload))
	}
	if err := binary.Write(w, binary.NativeEndian, uint32(len(payload))); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// IsProxyInvocation reports whether args look like a browser launching the
// native messaging host: chromium passes the caller origin, firefox passes the
// manifest path followed by the extension id.
func IsProxyInvocation(args []string) bool {
	for _, arg := range args {
		if strings.HasPrefix(arg, "chrome-extension://") {
			return true
		}
	}
	return len(args) == 2 && strings.HasSuffix(args[0], ".json") && strings.Contains(args[1], "@")
}

// RunProxy relays frames read from in to the host listening on endpoint, one
// JSON document per line, until in is exhausted or ctx is canceled.
func RunProxy(ctx context.Context, endpoint string, in io.Reader) error {
	d := &net.Dialer{Timeout: 5 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return fmt.Errorf("connect to host at %s: %w", endpoint, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		frame, err := ReadFrame(in)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		var line bytes.Buffer
		if err := json.Compact(&line, frame); err != nil {
			continue
		}
		line.WriteByte('\n')
		if _, err := conn.Write(line.Bytes()); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("relay frame: %w", err)
		}
	}
}
