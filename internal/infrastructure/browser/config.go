package browser

import (
	"strings"
	"time"
)

const (
	defaultViewportWidth     = 1366
	defaultViewportHeight    = 768
	defaultLocale            = "it-IT"
	defaultNavigationTimeout = 30 * time.Second
	defaultEvalTimeout       = 15 * time.Second
	readyStatePollInterval   = 100 * time.Millisecond
)

type Config struct {
	Headless          bool
	ChromePath        string
	UserAgent         string
	Locale            string
	ViewportWidth     int
	ViewportHeight    int
	NavigationTimeout time.Duration
	EvalTimeout       time.Duration
}

func (c Config) withDefaults() Config {
	c.ChromePath = strings.TrimSpace(c.ChromePath)
	c.UserAgent = strings.TrimSpace(c.UserAgent)
	if strings.TrimSpace(c.Locale) == "" {
		c.Locale = defaultLocale
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		c.ViewportWidth = defaultViewportWidth
		c.ViewportHeight = defaultViewportHeight
	}
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = defaultNavigationTimeout
	}
	if c.EvalTimeout <= 0 {
		c.EvalTimeout = defaultEvalTimeout
	}
	return c
}

// acceptLanguage turns "it-IT" into "it-IT,it;q=0.9,en;q=0.8".
func acceptLanguage(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = defaultLocale
	}
	parts := []string{locale}
	if base, _, ok := strings.Cut(locale, "-"); ok && base != "" {
		parts = append(parts, base+";q=0.9")
		if !strings.EqualFold(base, "en") {
			parts = append(parts, "en;q=0.8")
		}
	} else if !strings.EqualFold(locale, "en") {
		parts = append(parts, "en;q=0.8")
	}
	return strings.Join(parts, ",")
}
