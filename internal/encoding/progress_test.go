package encoding

import (
	"strings"
	"testing"
	"time"
)

func TestParseProgressBatches(t *testing.T) {
	stream := strings.Join([]string{
		"frame=24",
		"fps=23.98",
		"out_time_us=1000000",
		"speed=1.5x",
		"progress=continue",
		"out_time_us=2000000",
		"speed=N/A",
		"progress=continue",
		"out_time_us=3000000",
		"speed=2.0x",
		"progress=end",
	}, "\n")

	var events []Event
	if err := parseProgress(strings.NewReader(stream), func(e Event) { events = append(events, e) }); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Type != EventProgress || events[0].OutTime != time.Second || events[0].Speed != 1.5 {
		t.Fatalf("unexpected first event %+v", events[0])
	}
	if events[1].Speed > 0 {
		t.Fatalf("N/A speed should stay unknown, got %+v", events[1])
	}
	if events[2].Type != EventEnd || events[2].OutTime != 3*time.Second {
		t.Fatalf("unexpected end event %+v", events[2])
	}
}

func TestParseProgressPrefersMicrosecondField(t *testing.T) {
	stream := strings.Join([]string{
		"out_time_us=5000000",
		"out_time_ms=5000000",
		"out_time=00:00:05.000000",
		"progress=continue",
	}, "\n")
	var events []Event
	if err := parseProgress(strings.NewReader(stream), func(e Event) { events = append(events, e) }); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(events) != 1 || events[0].OutTime != 5*time.Second {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestParseProgressClockFallback(t *testing.T) {
	stream := "out_time=01:02:03.500000\nprogress=continue\n"
	var got Event
	if err := parseProgress(strings.NewReader(stream), func(e Event) { got = e }); err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Hour + 2*time.Minute + 3*time.Second + 500*time.Millisecond
	if got.OutTime != want {
		t.Fatalf("expected %s, got %s", want, got.OutTime)
	}
}

func TestParseProgressSkipsGarbage(t *testing.T) {
	stream := strings.Join([]string{
		"not a key value line",
		"out_time_us=abc",
		"out_time=99",
		"speed=fast",
		"progress=continue",
	}, "\n")
	var events []Event
	if err := parseProgress(strings.NewReader(stream), func(e Event) { events = append(events, e) }); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].OutTime >= 0 || events[0].Speed > 0 {
		t.Fatalf("expected unknown fields, got %+v", events[0])
	}
}

func TestParseClockTime(t *testing.T) {
	if _, ok := parseClockTime("nope"); ok {
		t.Fatal("expected failure for malformed value")
	}
	if _, ok := parseClockTime("-1:00:00"); ok {
		t.Fatal("expected failure for negative hours")
	}
	d, ok := parseClockTime("00:00:01.250000")
	if !ok || d != 1250*time.Millisecond {
		t.Fatalf("unexpected %s ok=%v", d, ok)
	}
}
