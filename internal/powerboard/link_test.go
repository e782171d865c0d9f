// SPDX-License-Identifier: BSD-3-Clause

package powerboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakePort is a scripted serialPort: every reply is queued up front and
// served back-to-back regardless of what was written, while every write is
// recorded so a test can assert on the exact bytes sent.
type fakePort struct {
	mu      sync.Mutex
	reader  *strings.Reader
	writes  []string
	closed  bool
}

func newFakePort(replies ...string) *fakePort {
	return &fakePort{reader: strings.NewReader(strings.Join(replies, ""))}
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes = append(p.writes, string(b))
	return len(b), nil
}

func (p *fakePort) Read(b []byte) (int, error) {
	return p.reader.Read(b)
}

func (p *fakePort) SetReadTimeout(time.Duration) error { return nil }

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePort) sent() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.writes...)
}

func TestLinkInitializeSequence(t *testing.T) {
	// V: -> hw 2.1, fw 2.1, location 1
	// P: -> wire bytes (p1,p2,p3) = (128,64,32) -> logical row1=p3=32B,
	//       row2=p1=128B, row3=p2=64B.
	port := newFakePort("2.1,2.1,1\n", "128,64,32\n", "ack\n")
	link := newLink(port, nil)

	if err := link.initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	meta := link.Meta()
	if meta.Hardware != "2.1" || meta.Firmware != "2.1" || meta.Location != "1" {
		t.Fatalf("Meta() = %+v, want hw=2.1 fw=2.1 loc=1", meta)
	}

	writes := port.sent()
	if len(writes) != 3 {
		t.Fatalf("expected 3 writes (V:, P:, U:), got %d: %v", len(writes), writes)
	}
	if writes[0] != "V:\n" {
		t.Fatalf("first write = %q, want %q", writes[0], "V:\n")
	}
	if writes[1] != "P:\n" {
		t.Fatalf("second write = %q, want %q", writes[1], "P:\n")
	}
	// Logical rows from wire (128,64,32) are (row1=32B,row2=128B,row3=64B);
	// the U: re-apply transmits them once reordered as (row2,row3,row1),
	// i.e. the percentages of 128B, 64B and 32B in that order.
	if !strings.HasPrefix(writes[2], "U:") {
		t.Fatalf("third write = %q, want a U: command", writes[2])
	}
}

func TestLinkMalformedReplyDoesNotAdvanceState(t *testing.T) {
	port := newFakePort("2.1,2.1,1\n", "not,enough\n")
	link := newLink(port, nil)

	err := link.initialize(context.Background())
	if err == nil {
		t.Fatal("expected error from malformed P: reply")
	}

	var linkErr *LinkError
	if !errors.As(err, &linkErr) {
		t.Fatalf("expected *LinkError, got %T: %v", err, err)
	}

	if link.lastPWM != ([3]int{}) {
		t.Fatalf("lastPWM should be untouched after malformed reply, got %v", link.lastPWM)
	}
}

func TestLinkReadTach(t *testing.T) {
	port := newFakePort("10,20,30\n")
	link := newLink(port, nil)

	rpm1, rpm2, rpm3, err := link.ReadTach(context.Background())
	if err != nil {
		t.Fatalf("ReadTach: %v", err)
	}
	if rpm1 != 300 || rpm2 != 600 || rpm3 != 900 {
		t.Fatalf("ReadTach = (%d,%d,%d), want (300,600,900)", rpm1, rpm2, rpm3)
	}
}

func TestLinkReadWattageAndSections(t *testing.T) {
	port := newFakePort("5,10,15,20\n")
	link := newLink(port, nil)
	link.meta = Metadata{Hardware: "2.0"}

	w, err := link.ReadWattage(context.Background())
	if err != nil {
		t.Fatalf("ReadWattage: %v", err)
	}

	section12, section34 := Sections(w)
	wantSection12 := w[2] + w[3]
	wantSection34 := w[0] + w[1]
	if section12 != wantSection12 || section34 != wantSection34 {
		t.Fatalf("Sections = (%v,%v), want (%v,%v)", section12, section34, wantSection12, wantSection34)
	}
}

func TestLinkJumperState(t *testing.T) {
	port := newFakePort("1\n")
	link := newLink(port, nil)

	boardPWM, err := link.JumperState(context.Background())
	if err != nil {
		t.Fatalf("JumperState: %v", err)
	}
	if !boardPWM {
		t.Fatal("JumperState = false, want true for wire value 1")
	}
}

func TestLinkInvalidPWMRejected(t *testing.T) {
	port := newFakePort()
	link := newLink(port, nil)

	if err := link.SetFanSpeed(context.Background(), 30, 60, 150); err == nil {
		t.Fatal("expected error for out-of-range pwm percentage")
	}
	if len(port.sent()) != 0 {
		t.Fatal("invalid pwm request should never reach the wire")
	}
}

// TestLinkSerializesRequests asserts the binary-mutex contract: concurrent
// callers never interleave a write from one request with the read of
// another.
func TestLinkSerializesRequests(t *testing.T) {
	port := newFakePort(strings.Repeat("10,20,30\n", 50))
	link := newLink(port, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _, err := link.ReadTach(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent ReadTach: %v", err)
		}
	}
}
