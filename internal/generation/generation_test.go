package generation_test

import (
	"errors"
	"strings"
	"testing"

	"mewai/internal/generation"
	"mewai/internal/services"
)

func TestNewSettingsNormalizes(t *testing.T) {
	s := generation.NewSettings("  Go tips ", []string{" Blog", "TWITTER"}, " Casual", "MEDIUM ", true)
	if s.Topic != "Go tips" {
		t.Fatalf("unexpected topic %q", s.Topic)
	}
	if len(s.Platforms) != 2 || s.Platforms[0] != generation.PlatformBlog || s.Platforms[1] != generation.PlatformTwitter {
		t.Fatalf("unexpected platforms %v", s.Platforms)
	}
	if s.Tone != generation.ToneCasual || s.Length != generation.LengthMedium {
		t.Fatalf("unexpected tone/length %q/%q", s.Tone, s.Length)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("expected valid settings, got %v", err)
	}
}

func TestSettingsValidate(t *testing.T) {
	valid := generation.NewSettings("topic", []string{"blog"}, "formal", "short", false)
	tests := []struct {
		name    string
		mutate  func(*generation.Settings)
		message string
	}{
		{"empty topic", func(s *generation.Settings) { s.Topic = "  " }, "topic is required"},
		{"no platforms", func(s *generation.Settings) { s.Platforms = nil }, "at least one platform"},
		{"duplicate platform", func(s *generation.Settings) {
			s.Platforms = []generation.Platform{generation.PlatformBlog, generation.PlatformBlog}
		}, "duplicate platform"},
		{"unknown platform", func(s *generation.Settings) { s.Platforms = []generation.Platform{"myspace"} }, "unknown platform"},
		{"unknown tone", func(s *generation.Settings) { s.Tone = "snarky" }, "unknown tone"},
		{"unknown length", func(s *generation.Settings) { s.Length = "epic" }, "unknown length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid.Clone()
			tt.mutate(&s)
			err := s.Validate()
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Fatalf("expected %q in %q", tt.message, err.Error())
			}
		})
	}
}

func TestSettingsCloneIsIndependent(t *testing.T) {
	s := generation.NewSettings("topic", []string{"blog", "twitter"}, "casual", "medium", true)
	c := s.Clone()
	c.Platforms[0] = generation.PlatformLinkedIn
	if s.Platforms[0] != generation.PlatformBlog {
		t.Fatal("clone shares platform storage with original")
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in       string
		want     generation.Status
		ok       bool
		terminal bool
	}{
		{"pending", generation.StatusPending, true, false},
		{" IN_PROGRESS ", generation.StatusInProgress, true, false},
		{"completed", generation.StatusCompleted, true, true},
		{"error", generation.StatusError, true, true},
		{"running", "", false, false},
	}
	for _, tt := range tests {
		got, ok := generation.ParseStatus(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseStatus(%q) = %q, %v", tt.in, got, ok)
		}
		if got.IsTerminal() != tt.terminal {
			t.Errorf("%q IsTerminal = %v, want %v", got, got.IsTerminal(), tt.terminal)
		}
	}
}

func TestClampProgress(t *testing.T) {
	for in, want := range map[int]int{-5: 0, 0: 0, 55: 55, 100: 100, 140: 100} {
		if got := generation.ClampProgress(in); got != want {
			t.Errorf("ClampProgress(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestResultIsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		result *generation.Result
		empty  bool
	}{
		{"nil", nil, true},
		{"zero", &generation.Result{}, true},
		{"topic only", &generation.Result{Topic: "go"}, true},
		{"blank images", &generation.Result{Images: []string{" "}}, true},
		{"reviewed blog", &generation.Result{BlogReviewed: "x"}, false},
		{"social only", &generation.Result{SocialMedia: generation.SocialMedia{Twitter: "tweet"}}, false},
		{"image only", &generation.Result{Images: []string{"https://img"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.IsEmpty(); got != tt.empty {
				t.Fatalf("IsEmpty = %v, want %v", got, tt.empty)
			}
		})
	}
}

func TestResultAccessors(t *testing.T) {
	r := &generation.Result{BlogRaw: "draft", SocialMedia: generation.SocialMedia{LinkedIn: "post"}, Images: []string{"a"}}
	if r.Blog() != "draft" {
		t.Fatalf("expected raw fallback, got %q", r.Blog())
	}
	r.BlogReviewed = "final"
	if r.Social(generation.PlatformBlog) != "final" {
		t.Fatalf("expected reviewed blog, got %q", r.Social(generation.PlatformBlog))
	}
	if r.Social(generation.PlatformLinkedIn) != "post" {
		t.Fatalf("unexpected linkedin text %q", r.Social(generation.PlatformLinkedIn))
	}
	clone := r.Clone()
	clone.Images[0] = "b"
	if r.Images[0] != "a" {
		t.Fatal("clone shares image storage")
	}
}
