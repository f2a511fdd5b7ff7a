package devserver

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"mewai/internal/generation"
)

// FailureMessage is reported for jobs whose topic asks for a failure.
const FailureMessage = "simulated failure"

// progressSteps lists the in_progress values reported after the initial 10.
var progressSteps = []int{20, 40, 60, 80}

type job struct {
	id        string
	settings  generation.Settings
	createdAt time.Time
	fail      bool
}

type jobStore struct {
	mu   sync.RWMutex
	jobs map[string]*job
}

func newJobStore() *jobStore {
	return &jobStore{jobs: make(map[string]*job)}
}

func (s *jobStore) add(j *job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.id] = j
}

func (s *jobStore) get(id string) (*job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	return j, ok
}

func (s *jobStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// statusPayload mirrors the backend's task record.
type statusPayload struct {
	ID       string              `json:"id"`
	Status   generation.Status   `json:"status"`
	Progress int                 `json:"progress"`
	Topic    string              `json:"topic"`
	Settings generation.Settings `json:"settings"`
	Result   *generation.Result  `json:"result"`
	Error    string              `json:"error,omitempty"`
}

// snapshot derives the job state after elapsed time with one phase per step.
// A non-positive step finishes the job immediately.
func (j *job) snapshot(now time.Time, step time.Duration) statusPayload {
	payload := statusPayload{
		ID:       j.id,
		Status:   generation.StatusPending,
		Topic:    j.settings.Topic,
		Settings: j.settings,
	}

	phase := len(progressSteps) + 2
	if step > 0 {
		phase = int(now.Sub(j.createdAt) / step)
	}

	switch {
	case phase <= 0:
		return payload
	case phase == 1:
		payload.Status = generation.StatusInProgress
		payload.Progress = 10
	case phase-2 < len(progressSteps):
		payload.Status = generation.StatusInProgress
		payload.Progress = progressSteps[phase-2]
	case j.fail:
		payload.Status = generation.StatusError
		payload.Progress = progressSteps[len(progressSteps)-1]
		payload.Error = FailureMessage
	default:
		payload.Status = generation.StatusCompleted
		payload.Progress = 100
		payload.Result = cannedResult(j.settings)
	}
	return payload
}

func cannedResult(settings generation.Settings) *generation.Result {
	topic := settings.Topic
	result := &generation.Result{Topic: topic}
	for _, platform := range settings.Platforms {
		switch platform {
		case generation.PlatformBlog:
			result.BlogRaw = fmt.Sprintf("# %s\n\nDraft article about %s.", topic, topic)
			result.BlogReviewed = fmt.Sprintf("# %s\n\nA %s, %s-length article about %s.", topic, settings.Tone, settings.Length, topic)
		case generation.PlatformInstagram:
			result.SocialMedia.Instagram = fmt.Sprintf("Everything you need to know about %s #%s", topic, hashtag(topic))
		case generation.PlatformTwitter:
			result.SocialMedia.Twitter = fmt.Sprintf("New post: %s #%s", topic, hashtag(topic))
		case generation.PlatformLinkedIn:
			result.SocialMedia.LinkedIn = fmt.Sprintf("Sharing some thoughts on %s.", topic)
		}
	}
	if settings.GenerateImages {
		result.Images = []string{fmt.Sprintf("https://images.example.invalid/%s.png", hashtag(topic))}
	}
	return result
}

func hashtag(topic string) string {
	fields := strings.Fields(strings.ToLower(topic))
	if len(fields) == 0 {
		return "mewai"
	}
	return strings.Join(fields, "")
}
