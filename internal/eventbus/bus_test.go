// SPDX-License-Identifier: BSD-3-Clause

package eventbus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/wandercone/hakofoundry/internal/scheduler"
)

func TestBusStartPublishSubscribe(t *testing.T) {
	b := New(WithServerName("test-bus"))
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer b.Close()

	got := make(chan string, 1)
	sub, err := b.Subscribe(SubjectSensorPrefix+"CPU:Package", func(msg *nats.Msg) {
		got <- string(msg.Data)
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	if err := b.PublishSensor("CPU:Package", 55.4); err != nil {
		t.Fatalf("PublishSensor: %v", err)
	}

	select {
	case v := <-got:
		if v != "55.4" {
			t.Fatalf("payload = %q, want 55.4", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published sensor reading")
	}
}

func TestBusPublishBeforeStartFails(t *testing.T) {
	b := New()
	if err := b.PublishSensor("CPU:Package", 1); err == nil {
		t.Fatal("expected an error publishing before Start")
	}
}

func TestPublishDebounceDroppedDoesNotPanicWhenNotRunning(t *testing.T) {
	b := New()
	b.PublishDebounceDropped(scheduler.DebounceDrop{WallID: 1, DroppedValue: 42, Reason: scheduler.ReasonUpdateInFlight}) // must not panic
}

func TestPublishDebounceDroppedCarriesStructPayload(t *testing.T) {
	b := New(WithServerName("test-bus-debounce"))
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer b.Close()

	got := make(chan []byte, 1)
	sub, err := b.Subscribe(SubjectDebounceDropped, func(msg *nats.Msg) {
		got <- msg.Data
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	drop := scheduler.DebounceDrop{WallID: 2, DroppedValue: 77, Reason: scheduler.ReasonUpdateInFlight}
	b.PublishDebounceDropped(drop)

	select {
	case payload := <-got:
		var decoded scheduler.DebounceDrop
		if err := json.Unmarshal(payload, &decoded); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if decoded != drop {
			t.Fatalf("decoded = %+v, want %+v", decoded, drop)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published debounce drop")
	}
}

func TestPublishLinkStatePublishesLiteralState(t *testing.T) {
	b := New(WithServerName("test-bus-linkstate"))
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer b.Close()

	got := make(chan string, 1)
	sub, err := b.Subscribe("thermal.link.A.state", func(msg *nats.Msg) {
		got <- string(msg.Data)
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	if err := b.PublishLinkState("A", "degraded"); err != nil {
		t.Fatalf("PublishLinkState: %v", err)
	}

	select {
	case v := <-got:
		if v != "degraded" {
			t.Fatalf("payload = %q, want degraded", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published link state")
	}
}
