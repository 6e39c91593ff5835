package logging

import "testing"

func TestProgressSamplerEmitsOnBucketBoundaries(t *testing.T) {
	sampler := NewProgressSampler(5)
	if !sampler.ShouldLog(0, "encoding") {
		t.Fatal("first event should log")
	}
	if sampler.ShouldLog(1, "encoding") {
		t.Fatal("same bucket should be suppressed")
	}
	if sampler.ShouldLog(4.9, "encoding") {
		t.Fatal("still same bucket")
	}
	if !sampler.ShouldLog(5, "encoding") {
		t.Fatal("next bucket should log")
	}
	if !sampler.ShouldLog(100, "encoding") {
		t.Fatal("completion should log")
	}
	if sampler.ShouldLog(100, "encoding") {
		t.Fatal("repeated completion suppressed")
	}
}

func TestProgressSamplerEmitsOnStageChange(t *testing.T) {
	sampler := NewProgressSampler(5)
	sampler.ShouldLog(50, "analyze")
	if !sampler.ShouldLog(50, "encoding") {
		t.Fatal("stage change should log")
	}
}

func TestProgressSamplerUnknownPercent(t *testing.T) {
	sampler := NewProgressSampler(5)
	if !sampler.ShouldLog(-1, "encoding") {
		t.Fatal("stage introduction should log")
	}
	if sampler.ShouldLog(-1, "encoding") {
		t.Fatal("unknown percent repeat suppressed")
	}
}

func TestProgressSamplerReset(t *testing.T) {
	sampler := NewProgressSampler(5)
	sampler.ShouldLog(90, "encoding")
	sampler.Reset()
	if !sampler.ShouldLog(0, "encoding") {
		t.Fatal("reset should allow the stage to log again")
	}
}

func TestNilSamplerAlwaysLogs(t *testing.T) {
	var sampler *ProgressSampler
	if !sampler.ShouldLog(10, "encoding") {
		t.Fatal("nil sampler must not suppress")
	}
	sampler.Reset()
}
