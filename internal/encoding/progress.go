package encoding

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// EventType distinguishes in-flight progress batches from the terminal
// marker ffmpeg emits once the encode finishes.
type EventType string

const (
	EventProgress EventType = "progress"
	EventEnd      EventType = "end"
)

// Event is one decoded batch from the ffmpeg -progress stream.
type Event struct {
	Type EventType
	// OutTime is the elapsed media time encoded so far. Negative when
	// the batch carried no usable time field.
	OutTime time.Duration
	// Speed is the realtime multiplier, or <= 0 when unknown.
	Speed float64
}

// parseProgress consumes the key=value stream produced by
// `ffmpeg -progress pipe:1` and delivers one Event per batch. Batches
// are terminated by a `progress=continue` or `progress=end` line.
// Unparsable lines are skipped; parsing is a boundary concern and must
// never fail the encode.
func parseProgress(r io.Reader, emit func(Event)) error {
	scanner := bufio.NewScanner(r)
	// ffmpeg metadata lines can exceed the default 64KB token limit.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	batch := Event{OutTime: -1}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if key == "progress" {
			if value == "end" {
				batch.Type = EventEnd
			} else {
				batch.Type = EventProgress
			}
			if emit != nil {
				emit(batch)
			}
			batch = Event{OutTime: -1}
			continue
		}

		switch key {
		case "out_time_us":
			if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
				batch.OutTime = time.Duration(us) * time.Microsecond
			}
		case "out_time_ms":
			// Despite the name ffmpeg reports microseconds here too.
			if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 && batch.OutTime < 0 {
				batch.OutTime = time.Duration(us) * time.Microsecond
			}
		case "out_time":
			if d, ok := parseClockTime(value); ok && batch.OutTime < 0 {
				batch.OutTime = d
			}
		case "speed":
			if multiplier, err := strconv.ParseFloat(strings.TrimSuffix(value, "x"), 64); err == nil && multiplier > 0 {
				batch.Speed = multiplier
			}
		}
	}
	return scanner.Err()
}

// parseClockTime parses ffmpeg's HH:MM:SS.micros elapsed format.
func parseClockTime(value string) (time.Duration, bool) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 {
		return 0, false
	}
	total := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second))
	return total, true
}
