package events_test

import (
	"testing"

	"github.com/ardanlabs/powchain/foundation/events"
)

func Test_Events(t *testing.T) {
	evts := events.New()

	ch1 := evts.Acquire("one")
	ch2 := evts.Acquire("two")

	if evts.Acquire("one") != ch1 {
		t.Fatalf("Should get back the same channel for the same id.")
	}

	evts.Send("viewer: block")

	for _, ch := range []<-chan string{ch1, ch2} {
		if msg := <-ch; msg != "viewer: block" {
			t.Logf("got: %s", msg)
			t.Fatalf("Should receive the event.")
		}
	}

	if err := evts.Release("one"); err != nil {
		t.Fatalf("Should be able to release a channel: %s", err)
	}

	if _, ok := <-ch1; ok {
		t.Fatalf("Should close the released channel.")
	}

	if err := evts.Release("one"); err == nil {
		t.Fatalf("Should not be able to release a channel twice.")
	}

	// A receiver that isn't reading must not block the sender.
	for range 200 {
		evts.Send("flood")
	}

	evts.Shutdown()
	if evts.Count() != 0 {
		t.Fatalf("Should remove every channel on shutdown.")
	}
}
