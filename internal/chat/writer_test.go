package chat

import (
	"bufio"
	"errors"
	"net"
	"testing"
	"time"
)

func TestOutbox_LimitAndClose(t *testing.T) {
	o := newOutbox(10)

	if err := o.push("hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := o.push("world"); !errors.Is(err, ErrOutboundOverflow) {
		t.Fatalf("expected ErrOutboundOverflow, got %v", err)
	}
	if o.queued() != len("hello\n") {
		t.Fatalf("unexpected queued size %d", o.queued())
	}

	o.close()
	if err := o.push("late"); !errors.Is(err, ErrOutboxClosed) {
		t.Fatalf("expected ErrOutboxClosed, got %v", err)
	}
	data, ok := o.next()
	if !ok || string(data) != "hello\n" {
		t.Fatalf("queued data lost on close: %q %v", data, ok)
	}
	if _, ok := o.next(); ok {
		t.Fatalf("expected closed outbox to report done")
	}
}

func TestOutboundWriter_FlushesThenCloses(t *testing.T) {
	server, client := net.Pipe()
	o := newOutbox(0)
	StartOutboundWriter(server, o, nil)

	o.push("OK")
	o.push("BYE")
	o.close()

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	r := bufio.NewReader(client)
	for _, want := range []string{"OK\n", "BYE\n"} {
		line, err := r.ReadString('\n')
		if err != nil || line != want {
			t.Fatalf("got %q %v, want %q", line, err, want)
		}
	}
	if _, err := r.ReadString('\n'); err == nil {
		t.Fatalf("expected connection to be closed")
	}
}

func TestOutboundWriter_ReportsFailure(t *testing.T) {
	server, client := net.Pipe()
	_ = client.Close()

	failed := make(chan error, 1)
	o := newOutbox(0)
	StartOutboundWriter(server, o, func(err error) { failed <- err })
	o.push("OK")

	select {
	case err := <-failed:
		if err == nil {
			t.Fatalf("expected a write error")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("write failure not reported")
	}
	if err := o.push("more"); !errors.Is(err, ErrOutboxClosed) {
		t.Fatalf("outbox should be closed after failure, got %v", err)
	}
}
