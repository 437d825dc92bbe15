package udp

import (
	"errors"
	"net"
	"syscall"
)

// PacketSocket defines the socket surface a transport endpoint needs.
// This abstraction enables unit testing without real network connections.
type PacketSocket interface {
	// Write sends b as a single datagram to the connected peer.
	Write(b []byte) (n int, err error)

	// ReadNonblock attempts exactly one non-blocking read into b. It returns
	// the size of the received datagram, ErrWouldBlock when nothing is
	// queued, or a hard error for any other failure. n may exceed len(b)
	// when the datagram was larger than the buffer; only len(b) bytes are
	// copied in that case.
	ReadNonblock(b []byte) (n int, err error)

	// SetReadBuffer sets the size of the operating system's receive buffer.
	SetReadBuffer(bytes int) error

	// Close closes the socket.
	Close() error

	// LocalAddr returns the local network address.
	LocalAddr() net.Addr
}

// netSocket implements PacketSocket over *net.UDPConn. Reads go through the
// raw file descriptor so a read with an empty queue returns EAGAIN instead
// of parking the goroutine in the runtime poller.
type netSocket struct {
	conn *net.UDPConn
	raw  syscall.RawConn
}

func newNetSocket(conn *net.UDPConn) (*netSocket, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return nil, err
	}
	return &netSocket{conn: conn, raw: raw}, nil
}

// Write sends b to the connected peer.
func (s *netSocket) Write(b []byte) (int, error) {
	return s.conn.Write(b)
}

// ReadNonblock performs a single recvfrom(2) on the descriptor. The
// descriptor is already in non-blocking mode under the Go runtime; returning
// true from the callback stops the runtime from waiting for readability.
// MSG_TRUNC makes the kernel report the real datagram size even when it is
// larger than b, so callers can reject oversized datagrams instead of
// mistaking a silently truncated read for a full-size one.
func (s *netSocket) ReadNonblock(b []byte) (int, error) {
	var n int
	var readErr error
	err := s.raw.Read(func(fd uintptr) bool {
		n, _, readErr = syscall.Recvfrom(int(fd), b, syscall.MSG_TRUNC)
		return true
	})
	if err != nil {
		return 0, err
	}
	if readErr != nil {
		if errors.Is(readErr, syscall.EAGAIN) || errors.Is(readErr, syscall.EWOULDBLOCK) {
			return 0, ErrWouldBlock
		}
		return 0, readErr
	}
	return n, nil
}

// SetReadBuffer sets the receive buffer size.
func (s *netSocket) SetReadBuffer(bytes int) error {
	return s.conn.SetReadBuffer(bytes)
}

// Close closes the UDP connection.
func (s *netSocket) Close() error {
	return s.conn.Close()
}

// LocalAddr returns the local network address.
func (s *netSocket) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// MockSocket implements PacketSocket for testing with a scripted sequence
// of read results.
type MockSocket struct {
	// Reads holds the results to return from successive ReadNonblock calls.
	Reads []MockRead
	// ReadIndex tracks the current position in Reads. Once the script is
	// exhausted, ReadNonblock returns ErrWouldBlock.
	ReadIndex int
	// Writes records every payload passed to Write.
	Writes [][]byte
	// WriteErr is returned by Write if set.
	WriteErr error
	// Closed indicates whether Close was called.
	Closed bool
	// ReadBufferSize holds the value set by SetReadBuffer.
	ReadBufferSize int
	// LocalAddress is returned by LocalAddr.
	LocalAddress *net.UDPAddr
}

// MockRead is one scripted ReadNonblock result.
type MockRead struct {
	Data []byte
	Err  error
}

// NewMockSocket creates a MockSocket returning the given reads in order and
// ErrWouldBlock after the script runs out.
func NewMockSocket(reads []MockRead) *MockSocket {
	return &MockSocket{
		Reads: reads,
		LocalAddress: &net.UDPAddr{
			IP:   net.ParseIP("127.0.0.1"),
			Port: 59200,
		},
	}
}

// Write records the payload.
func (m *MockSocket) Write(b []byte) (int, error) {
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	payload := make([]byte, len(b))
	copy(payload, b)
	m.Writes = append(m.Writes, payload)
	return len(b), nil
}

// ReadNonblock returns the next scripted result. Like the real socket it
// reports the full datagram size even when only len(b) bytes fit.
func (m *MockSocket) ReadNonblock(b []byte) (int, error) {
	if m.Closed {
		return 0, net.ErrClosed
	}
	if m.ReadIndex >= len(m.Reads) {
		return 0, ErrWouldBlock
	}
	r := m.Reads[m.ReadIndex]
	m.ReadIndex++
	if r.Err != nil {
		return 0, r.Err
	}
	copy(b, r.Data)
	return len(r.Data), nil
}

// SetReadBuffer records the buffer size.
func (m *MockSocket) SetReadBuffer(bytes int) error {
	m.ReadBufferSize = bytes
	return nil
}

// Close marks the socket as closed.
func (m *MockSocket) Close() error {
	m.Closed = true
	return nil
}

// LocalAddr returns the mock local address.
func (m *MockSocket) LocalAddr() net.Addr {
	return m.LocalAddress
}
