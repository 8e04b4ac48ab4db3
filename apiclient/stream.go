package apiclient

import (
	"bufio"
	"context"
	"encoding"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// DeviceStream is the bidirectional channel of one device: input reports
// go in, device feedback (keyboard LEDs) comes out.
type DeviceStream struct {
	conn   net.Conn
	BusID  uint32
	DevID  string
	closed atomic.Bool

	readCancel context.CancelFunc
	readMu     sync.Mutex
}

// OpenStream connects to the stream of a device that already exists.
func (c *Client) OpenStream(ctx context.Context, busID uint32, devID string) (*DeviceStream, error) {
	if c.transport.mock != nil {
		return nil, fmt.Errorf("stream connections not supported with mock transport")
	}

	conn, err := c.transport.dial(ctx)
	if err != nil {
		return nil, err
	}
	// streams are long lived; only the handshake is bounded
	_ = conn.SetWriteDeadline(time.Time{})

	streamPath := fmt.Sprintf("bus/%d/%s\x00", busID, devID)
	if _, err := conn.Write([]byte(streamPath)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write stream path: %w", err)
	}
	return &DeviceStream{conn: conn, BusID: busID, DevID: devID}, nil
}

func (s *DeviceStream) Write(data []byte) (int, error) {
	if s.closed.Load() {
		return 0, fmt.Errorf("stream closed")
	}
	return s.conn.Write(data)
}

// WriteBinary marshals v and sends it, e.g. a keyboard.InputState.
func (s *DeviceStream) WriteBinary(v encoding.BinaryMarshaler) error {
	if s.closed.Load() {
		return fmt.Errorf("stream closed")
	}
	data, err := v.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	_, err = s.conn.Write(data)
	return err
}

func (s *DeviceStream) Read(buf []byte) (int, error) {
	if s.closed.Load() {
		return 0, fmt.Errorf("stream closed")
	}
	return s.conn.Read(buf)
}

// StartReading reads device feedback in the background. decode must read
// exactly one message from r.
//
// Example (keyboard LEDs, one byte):
//
//	ledCh, errCh := stream.StartReading(ctx, 4, func(r *bufio.Reader) (encoding.BinaryUnmarshaler, error) {
//	    b, err := r.ReadByte()
//	    if err != nil { return nil, err }
//	    led := new(keyboard.LEDState)
//	    return led, led.UnmarshalBinary([]byte{b})
//	})
func (s *DeviceStream) StartReading(ctx context.Context, chSize int, decode func(r *bufio.Reader) (encoding.BinaryUnmarshaler, error)) (<-chan encoding.BinaryUnmarshaler, <-chan error) {
	s.readMu.Lock()
	defer s.readMu.Unlock()

	if s.readCancel != nil {
		panic("StartReading called twice on the same stream")
	}

	msgCh := make(chan encoding.BinaryUnmarshaler, chSize)
	errCh := make(chan error, 1)

	readCtx, cancel := context.WithCancel(ctx)
	s.readCancel = cancel

	go func() {
		defer close(msgCh)
		defer close(errCh)
		defer cancel()

		r := bufio.NewReader(s.conn)
		for {
			if err := readCtx.Err(); err != nil {
				errCh <- err
				return
			}
			if s.closed.Load() {
				errCh <- io.EOF
				return
			}

			msg, err := decode(r)
			if err != nil {
				errCh <- err
				return
			}

			select {
			case msgCh <- msg:
			case <-readCtx.Done():
				errCh <- readCtx.Err()
				return
			}
		}
	}()

	return msgCh, errCh
}

func (s *DeviceStream) SetReadDeadline(t time.Time) error {
	return s.conn.SetReadDeadline(t)
}

// Close closes the connection and stops background reading.
func (s *DeviceStream) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.readMu.Lock()
	if s.readCancel != nil {
		s.readCancel()
	}
	s.readMu.Unlock()

	return s.conn.Close()
}
