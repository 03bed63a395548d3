package bootstrap

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"cosurvival/pkg/platform/sentinel"
)

// Loader reads its Source at most once and memoises the result. A missing or
// malformed payload yields an empty Payload; Load never fails.
type Loader struct {
	source Source
	logger *slog.Logger

	once    sync.Once
	payload Payload
}

// Option configures a Loader.
type Option func(*Loader)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader over source.
func NewLoader(source Source, opts ...Option) *Loader {
	l := &Loader{source: source, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the payload snapshot, reading the source on first call only.
func (l *Loader) Load() Payload {
	l.once.Do(func() {
		l.payload = l.read()
	})
	return l.payload
}

func (l *Loader) read() Payload {
	if l.source == nil {
		return Payload{}
	}
	raw, err := l.source()
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			l.logger.Warn("bootstrap payload unavailable", "error", err)
		}
		return Payload{}
	}
	var w wirePayload
	if err := json.Unmarshal(raw, &w); err != nil {
		l.logger.Warn("bootstrap payload malformed, using defaults", "error", err)
		return Payload{}
	}
	p := Payload{
		CSRFToken:   w.CSRFToken,
		CurrentUser: w.CurrentUser,
		UserRole:    w.UserRole,
	}
	if w.LastPipelineRun != nil && *w.LastPipelineRun != "" {
		if t, ok := parseTime(*w.LastPipelineRun); ok {
			p.LastPipelineRun = &t
		} else {
			l.logger.Warn("bootstrap lastPipelineRun not a timestamp, ignoring", "value", *w.LastPipelineRun)
		}
	}
	return p
}

// wirePayload accepts lastPipelineRun as null, empty or any of the
// timestamp layouts the backend has emitted.
type wirePayload struct {
	CSRFToken       string  `json:"csrfToken"`
	CurrentUser     string  `json:"currentUser"`
	UserRole        string  `json:"userRole"`
	LastPipelineRun *string `json:"lastPipelineRun"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

func parseTime(v string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var (
	defaultMu     sync.Mutex
	defaultLoader *Loader
)

// Default returns the process-wide loader reading EnvVar. It is created on
// first use and lives for the rest of the process.
func Default() *Loader {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLoader == nil {
		defaultLoader = NewLoader(FromEnv(EnvVar))
	}
	return defaultLoader
}

// SetDefault installs the process-wide loader. It only takes effect before
// the first call to Default, so the embedded payload is read exactly once.
func SetDefault(l *Loader) bool {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLoader != nil {
		return false
	}
	defaultLoader = l
	return true
}

// Load reads the process-wide payload.
func Load() Payload {
	return Default().Load()
}
