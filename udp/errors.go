package udp

import (
	"errors"
	"fmt"
)

// ErrWouldBlock is returned by Receiver.Receive when the socket has no
// datagram queued. It is a normal flow-control signal, not a fault: the
// freshest-packet poll loop discriminates it from hard errors to decide
// whether the queue has been drained.
var ErrWouldBlock = errors.New("udp: no data available")

// InitError reports a failure while constructing a transport endpoint:
// address resolution, socket creation, non-blocking configuration, or bind.
// An endpoint whose constructor returned an InitError holds no OS resources.
type InitError struct {
	Op   string // resolve, dial, listen, nonblock, netinit
	Addr string
	Port int
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("udp: %s %s:%d: %v", e.Op, e.Addr, e.Port, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }
