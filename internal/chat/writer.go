package chat

import (
	"net"
	"sync"
)

// outbox is the outbound byte queue of one session. The reactor pushes into
// it without blocking; a writer goroutine drains it into the socket.
type outbox struct {
	mu     sync.Mutex
	buf    []byte
	limit  int
	closed bool
	notify chan struct{}
}

func newOutbox(limit int) *outbox {
	return &outbox{
		limit:  limit,
		notify: make(chan struct{}, 1),
	}
}

func (o *outbox) push(line string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrOutboxClosed
	}
	if o.limit > 0 && len(o.buf)+len(line)+1 > o.limit {
		return ErrOutboundOverflow
	}
	o.buf = append(o.buf, line...)
	o.buf = append(o.buf, '\n')
	o.signal()
	return nil
}

// next blocks until there is queued data or the outbox is closed and empty.
func (o *outbox) next() ([]byte, bool) {
	for {
		o.mu.Lock()
		if len(o.buf) > 0 {
			data := o.buf
			o.buf = nil
			o.mu.Unlock()
			return data, true
		}
		if o.closed {
			o.mu.Unlock()
			return nil, false
		}
		o.mu.Unlock()
		<-o.notify
	}
}

// close stops accepting lines. Already queued bytes are still delivered.
func (o *outbox) close() {
	o.mu.Lock()
	o.closed = true
	o.signal()
	o.mu.Unlock()
}

// abort closes the outbox and drops whatever is still queued.
func (o *outbox) abort() {
	o.mu.Lock()
	o.closed = true
	o.buf = nil
	o.signal()
	o.mu.Unlock()
}

func (o *outbox) queued() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.buf)
}

func (o *outbox) signal() {
	select {
	case o.notify <- struct{}{}:
	default:
	}
}

// StartOutboundWriter drains the session's outbox into conn until the outbox
// is closed, then closes conn. onFail is called once if a write fails.
func StartOutboundWriter(conn net.Conn, out *outbox, onFail func(error)) {
	go func() {
		defer func() {
			_ = conn.Close()
		}()
		for {
			data, ok := out.next()
			if !ok {
				return
			}
			if _, err := conn.Write(data); err != nil {
				out.abort()
				if onFail != nil {
					onFail(err)
				}
				return
			}
		}
	}()
}
