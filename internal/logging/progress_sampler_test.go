package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize int
		wantSize   int
	}{
		{"default bucket size for zero", 0, 10},
		{"default bucket size for negative", -1, 10},
		{"custom bucket size", 25, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSampler_NilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "writer") {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset()
}

func TestProgressSampler_StageChange(t *testing.T) {
	s := NewProgressSampler(10)

	if !s.ShouldLog(0, "writer") {
		t.Error("first stage should log")
	}
	if s.ShouldLog(0, "writer") {
		t.Error("same stage and percent should not log again")
	}
	if !s.ShouldLog(0, " reviewer ") {
		t.Error("different stage should log")
	}
	if s.lastStage != "reviewer" {
		t.Errorf("lastStage = %q, want reviewer", s.lastStage)
	}
}

func TestProgressSampler_PercentBuckets(t *testing.T) {
	s := NewProgressSampler(10)

	if !s.ShouldLog(0, "") {
		t.Error("0% should log")
	}
	if s.ShouldLog(5, "") {
		t.Error("5% is in the same bucket and should not log")
	}
	if !s.ShouldLog(10, "") {
		t.Error("10% crosses a bucket and should log")
	}
	if s.ShouldLog(8, "") {
		t.Error("regressing percent should not log")
	}
	if !s.ShouldLog(150, "") {
		t.Error("values above 100 clamp to the final bucket and should log")
	}
	if s.ShouldLog(-1, "") {
		t.Error("unknown percent without stage change should not log")
	}
}

func TestProgressSampler_Reset(t *testing.T) {
	s := NewProgressSampler(10)
	s.ShouldLog(40, "formatter")
	s.Reset()
	if !s.ShouldLog(40, "formatter") {
		t.Error("expected log after reset")
	}
}
