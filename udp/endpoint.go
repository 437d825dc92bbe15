// Package udp provides the transport endpoints for a robolink control link:
// a fire-and-forget Sender and a non-blocking Receiver, each owning exactly
// one UDP/IPv4 socket bound or connected to a fixed address and port.
//
// Endpoints never block the calling thread and carry no internal
// synchronisation: a single endpoint must not be shared across goroutines,
// but independent endpoints (one Sender plus one Receiver per peer) may be
// driven concurrently since each owns a distinct socket.
package udp

import (
	"fmt"
	"net"
	"strconv"

	"github.com/banshee-data/robolink/internal/netinit"
)

// Sender owns one connected non-blocking UDP socket to a fixed remote
// address and port.
type Sender struct {
	sock PacketSocket
	addr string
	port int
}

// NewSender resolves addr (numeric IPv4 or hostname) for UDP/IPv4 and
// connects a datagram socket to it. Any failure returns an *InitError and
// releases whatever was set up before the failure.
func NewSender(addr string, port int) (*Sender, error) {
	raddr, err := resolveIPv4(addr, port)
	if err != nil {
		return nil, &InitError{Op: "resolve", Addr: addr, Port: port, Err: err}
	}

	if err := netinit.Acquire(); err != nil {
		return nil, &InitError{Op: "netinit", Addr: addr, Port: port, Err: err}
	}

	conn, err := net.DialUDP("udp4", nil, raddr)
	if err != nil {
		netinit.Release()
		return nil, &InitError{Op: "dial", Addr: addr, Port: port, Err: err}
	}

	sock, err := newNetSocket(conn)
	if err != nil {
		conn.Close()
		netinit.Release()
		return nil, &InitError{Op: "nonblock", Addr: addr, Port: port, Err: err}
	}

	return &Sender{sock: sock, addr: addr, port: port}, nil
}

// NewSenderFromSocket wraps an already constructed socket. Intended for
// tests that script the socket behaviour.
func NewSenderFromSocket(sock PacketSocket) *Sender {
	return &Sender{sock: sock}
}

// Send enqueues payload as a single datagram to the configured peer. It is a
// single fire attempt: size mismatches or partial sends are not retried.
func (s *Sender) Send(payload []byte) (int, error) {
	return s.sock.Write(payload)
}

// Addr returns the remote address the sender was constructed with.
func (s *Sender) Addr() string { return s.addr }

// Port returns the remote port the sender was constructed with.
func (s *Sender) Port() int { return s.port }

// Close releases the socket and deregisters from the network subsystem.
func (s *Sender) Close() error {
	err := s.sock.Close()
	netinit.Release()
	return err
}

// Receiver owns one non-blocking UDP socket bound to a fixed local address
// and port.
type Receiver struct {
	sock PacketSocket
	addr string
	port int
}

// NewReceiver resolves addr for UDP/IPv4 and binds a datagram socket to it.
// Any failure returns an *InitError with no leaked OS handles.
func NewReceiver(addr string, port int) (*Receiver, error) {
	laddr, err := resolveIPv4(addr, port)
	if err != nil {
		return nil, &InitError{Op: "resolve", Addr: addr, Port: port, Err: err}
	}

	if err := netinit.Acquire(); err != nil {
		return nil, &InitError{Op: "netinit", Addr: addr, Port: port, Err: err}
	}

	conn, err := net.ListenUDP("udp4", laddr)
	if err != nil {
		netinit.Release()
		return nil, &InitError{Op: "listen", Addr: addr, Port: port, Err: err}
	}

	sock, err := newNetSocket(conn)
	if err != nil {
		conn.Close()
		netinit.Release()
		return nil, &InitError{Op: "nonblock", Addr: addr, Port: port, Err: err}
	}

	return &Receiver{sock: sock, addr: addr, port: port}, nil
}

// NewReceiverFromSocket wraps an already constructed socket. Intended for
// tests that script the socket behaviour.
func NewReceiverFromSocket(sock PacketSocket) *Receiver {
	return &Receiver{sock: sock}
}

// Receive attempts exactly one non-blocking read into buf. It returns the
// size of the received datagram (which exceeds len(buf) when the datagram
// was truncated), ErrWouldBlock when no datagram is queued, or a hard error
// for any other failure.
func (r *Receiver) Receive(buf []byte) (int, error) {
	return r.sock.ReadNonblock(buf)
}

// SetReadBuffer sets the size of the operating system's receive buffer for
// the bound socket.
func (r *Receiver) SetReadBuffer(bytes int) error {
	return r.sock.SetReadBuffer(bytes)
}

// LocalAddr returns the bound local address.
func (r *Receiver) LocalAddr() net.Addr {
	return r.sock.LocalAddr()
}

// Addr returns the local address the receiver was constructed with.
func (r *Receiver) Addr() string { return r.addr }

// Port returns the local port the receiver was constructed with.
func (r *Receiver) Port() int { return r.port }

// Close releases the socket and deregisters from the network subsystem.
func (r *Receiver) Close() error {
	err := r.sock.Close()
	netinit.Release()
	return err
}

// resolveIPv4 resolves host:port for UDP over IPv4 only. Only the first
// resolved address is used. Port 0 binds an ephemeral port on a Receiver.
func resolveIPv4(addr string, port int) (*net.UDPAddr, error) {
	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("port %d out of range", port)
	}
	return net.ResolveUDPAddr("udp4", net.JoinHostPort(addr, strconv.Itoa(port)))
}
