package generation

import (
	"fmt"
	"strings"

	"mewai/internal/services"
)

// Tone selects the writing register requested from the service.
type Tone string

const (
	ToneFormal    Tone = "formal"
	ToneCasual    Tone = "casual"
	ToneTechnical Tone = "technical"
)

// Length selects the target content length.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Platform identifies a publishing target.
type Platform string

const (
	PlatformBlog      Platform = "blog"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
)

// Tones lists the accepted tone values.
func Tones() []Tone { return []Tone{ToneFormal, ToneCasual, ToneTechnical} }

// Lengths lists the accepted length values.
func Lengths() []Length { return []Length{LengthShort, LengthMedium, LengthLong} }

// Platforms lists the accepted platform identifiers in display order.
func Platforms() []Platform {
	return []Platform{PlatformBlog, PlatformInstagram, PlatformTwitter, PlatformLinkedIn}
}

// Settings is the immutable input for one generation job.
type Settings struct {
	Topic          string     `json:"topic"`
	Platforms      []Platform `json:"platforms"`
	Tone           Tone       `json:"tone"`
	Length         Length     `json:"length"`
	GenerateImages bool       `json:"generate_images"`
}

// NewSettings builds settings from loosely formatted input. Values are
// trimmed and lowercased; call Validate before submitting.
func NewSettings(topic string, platforms []string, tone, length string, generateImages bool) Settings {
	normalized := make([]Platform, 0, len(platforms))
	for _, p := range platforms {
		normalized = append(normalized, Platform(strings.ToLower(strings.TrimSpace(p))))
	}
	return Settings{
		Topic:          strings.TrimSpace(topic),
		Platforms:      normalized,
		Tone:           Tone(strings.ToLower(strings.TrimSpace(tone))),
		Length:         Length(strings.ToLower(strings.TrimSpace(length))),
		GenerateImages: generateImages,
	}
}

// Clone returns a copy that shares no memory with s.
func (s Settings) Clone() Settings {
	out := s
	out.Platforms = append([]Platform(nil), s.Platforms...)
	return out
}

// Validate reports the first problem that would make the service reject the
// settings. Failures carry services.ErrValidation.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.Topic) == "" {
		return invalid("topic is required")
	}
	if len(s.Platforms) == 0 {
		return invalid("at least one platform is required")
	}
	seen := make(map[Platform]struct{}, len(s.Platforms))
	for _, p := range s.Platforms {
		if !p.Valid() {
			return invalid(fmt.Sprintf("unknown platform %q", p))
		}
		if _, dup := seen[p]; dup {
			return invalid(fmt.Sprintf("duplicate platform %q", p))
		}
		seen[p] = struct{}{}
	}
	if !s.Tone.Valid() {
		return invalid(fmt.Sprintf("unknown tone %q", s.Tone))
	}
	if !s.Length.Valid() {
		return invalid(fmt.Sprintf("unknown length %q", s.Length))
	}
	return nil
}

// Valid reports whether t is an accepted tone.
func (t Tone) Valid() bool {
	switch t {
	case ToneFormal, ToneCasual, ToneTechnical:
		return true
	}
	return false
}

// Valid reports whether l is an accepted length.
func (l Length) Valid() bool {
	switch l {
	case LengthShort, LengthMedium, LengthLong:
		return true
	}
	return false
}

// Valid reports whether p is an accepted platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformBlog, PlatformInstagram, PlatformTwitter, PlatformLinkedIn:
		return true
	}
	return false
}

func invalid(message string) error {
	return services.Wrap(services.ErrValidation, "generation", "validate settings", message, nil)
}
