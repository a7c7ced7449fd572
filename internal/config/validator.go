package config

import (
	"fmt"
	"strings"

	"github.com/vyrodovalexey/statportal/internal/table"
	"github.com/vyrodovalexey/statportal/internal/util"
)

// ValidationError is one rejected configuration value.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors collects every rejected value of a document.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, e[i].Error())
	}
	return sb.String()
}

// Is makes errors.Is(err, util.ErrConfigInvalid) hold.
func (e ValidationErrors) Is(target error) bool {
	return target == util.ErrConfigInvalid
}

// HasErrors reports whether any error was recorded.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates a PortalConfig.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateConfig validates cfg and returns ValidationErrors when it is
// rejected.
func ValidateConfig(cfg *PortalConfig) error {
	return NewValidator().Validate(cfg)
}

// Validate checks every section and returns all problems at once.
func (v *Validator) Validate(cfg *PortalConfig) error {
	v.errors = nil

	if cfg == nil {
		v.addError("", "configuration is nil")
		return v.errors
	}

	v.validateServer(&cfg.Server)
	v.validateUpstream(&cfg.Upstream)
	v.validateSession(&cfg.Session)
	v.validateCache(&cfg.Cache)
	v.validateSearch(&cfg.Search)
	v.validateTable(&cfg.Table)
	v.validateObservability(&cfg.Observability)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}

func (v *Validator) check(path string, err error) {
	if err != nil {
		v.addError(path, err.Error())
	}
}

func (v *Validator) validateServer(s *ServerConfig) {
	v.check("server.port", util.ValidatePort(s.Port))
	if s.MaxBodySize <= 0 {
		v.addError("server.maxBodySize", "must be positive")
	}
	if s.RateLimit.Enabled {
		if s.RateLimit.RequestsPerSecond <= 0 {
			v.addError("server.rateLimit.requestsPerSecond", "must be positive")
		}
		if s.RateLimit.Burst <= 0 {
			v.addError("server.rateLimit.burst", "must be positive")
		}
	}
}

func (v *Validator) validateUpstream(u *UpstreamConfig) {
	v.check("upstream.baseURL", util.ValidateURL(u.BaseURL))
	v.check("upstream.timeout", util.ValidatePositiveDuration(u.Timeout.Duration()))
	if u.CircuitBreaker.Enabled && u.CircuitBreaker.FailureThreshold == 0 {
		v.addError("upstream.circuitBreaker.failureThreshold", "must be positive")
	}
}

func (v *Validator) validateStore(path, kind string, redis *RedisConfig) {
	switch kind {
	case StoreMemory, "":
	case StoreRedis:
		v.check(path+".redis.address", util.ValidateNonEmpty(redis.Address, "address"))
	default:
		v.addError(path+".type", fmt.Sprintf("unknown store type %q", kind))
	}
}

func (v *Validator) validateSession(s *SessionConfig) {
	v.validateStore("session", s.Type, &s.Redis)
	v.check("session.ttl", util.ValidatePositiveDuration(s.TTL.Duration()))
	v.check("session.cookieName", util.ValidateNonEmpty(s.CookieName, "cookie name"))
}

func (v *Validator) validateCache(c *CacheConfig) {
	if !c.Enabled {
		return
	}
	v.validateStore("cache", c.Type, &c.Redis)
	v.check("cache.ttl", util.ValidatePositiveDuration(c.TTL.Duration()))
	if c.Type != StoreRedis && c.MaxEntries <= 0 {
		v.addError("cache.maxEntries", "must be positive for the memory cache")
	}
}

func (v *Validator) validateSearch(s *SearchConfig) {
	if s.Debounce < 0 {
		v.addError("search.debounce", "cannot be negative")
	}
	if s.MinQueryLength < 1 {
		v.addError("search.minQueryLength", "must be at least 1")
	}
	if s.PreviewSize < 1 {
		v.addError("search.previewSize", "must be at least 1")
	}
}

func (v *Validator) validateTable(t *TableConfig) {
	for i, y := range t.CensusYears {
		if y < 1000 || y > 9999 {
			v.addError(fmt.Sprintf("table.censusYears[%d]", i), "must be a four-digit year")
		}
	}

	l := &t.Layout
	v.validateClamp("table.layout.firstColumn", l.FirstColumn)
	v.validateClamp("table.layout.secondColumn", l.SecondColumn)
	if l.DataMinWidth <= 0 {
		v.addError("table.layout.dataMinWidth", "must be positive")
	}
	if l.ColumnSpacing < 0 {
		v.addError("table.layout.columnSpacing", "cannot be negative")
	}
	if l.ScrollRatio <= 0 || l.ScrollRatio > 1 {
		v.addError("table.layout.scrollRatio", "must be in (0, 1]")
	}
}

func (v *Validator) validateClamp(path string, c table.ClampWidth) {
	if c.Min <= 0 || c.Max < c.Min {
		v.addError(path, "requires 0 < min <= max")
	}
	if c.VW <= 0 || c.VW > 100 {
		v.addError(path+".vw", "must be in (0, 100]")
	}
}

func (v *Validator) validateObservability(o *ObservabilityConfig) {
	switch o.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		v.addError("observability.logLevel", fmt.Sprintf("unknown level %q", o.LogLevel))
	}
	switch o.LogFormat {
	case "json", "console":
	default:
		v.addError("observability.logFormat", fmt.Sprintf("unknown format %q", o.LogFormat))
	}
	if o.Tracing.Enabled {
		v.check("observability.tracing.samplingRate", util.ValidateRatio(o.Tracing.SamplingRate))
	}
}
