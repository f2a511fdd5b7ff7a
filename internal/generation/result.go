package generation

import "strings"

// SocialMedia carries per-platform post text.
type SocialMedia struct {
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
}

// Result is the content produced by a completed job. The tracking core treats
// it as opaque and hands it to consumers unchanged.
type Result struct {
	BlogRaw      string      `json:"blog_raw,omitempty"`
	BlogReviewed string      `json:"blog_reviewed,omitempty"`
	SocialMedia  SocialMedia `json:"social_media"`
	Images       []string    `json:"images,omitempty"`
	Topic        string      `json:"topic,omitempty"`
}

// IsEmpty reports whether r carries no generated content. Topic alone does
// not count as content.
func (r *Result) IsEmpty() bool {
	if r == nil {
		return true
	}
	if strings.TrimSpace(r.BlogRaw) != "" || strings.TrimSpace(r.BlogReviewed) != "" {
		return false
	}
	if strings.TrimSpace(r.SocialMedia.Instagram) != "" ||
		strings.TrimSpace(r.SocialMedia.Twitter) != "" ||
		strings.TrimSpace(r.SocialMedia.LinkedIn) != "" {
		return false
	}
	for _, img := range r.Images {
		if strings.TrimSpace(img) != "" {
			return false
		}
	}
	return true
}

// Blog returns the reviewed blog body, falling back to the raw draft.
func (r *Result) Blog() string {
	if r == nil {
		return ""
	}
	if strings.TrimSpace(r.BlogReviewed) != "" {
		return r.BlogReviewed
	}
	return r.BlogRaw
}

// Social returns the post text for platform p, or "" when absent.
func (r *Result) Social(p Platform) string {
	if r == nil {
		return ""
	}
	switch p {
	case PlatformInstagram:
		return r.SocialMedia.Instagram
	case PlatformTwitter:
		return r.SocialMedia.Twitter
	case PlatformLinkedIn:
		return r.SocialMedia.LinkedIn
	case PlatformBlog:
		return r.Blog()
	}
	return ""
}

// Clone returns a deep copy of r.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := *r
	out.Images = append([]string(nil), r.Images...)
	return &out
}
