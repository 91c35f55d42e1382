package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// Attempt is one named step of a best-effort lookup chain
type Attempt struct {
	Name string
	Fn   func(ctx context.Context) (string, error)
}

// FirstOf runs attempts in order and returns the first non-blank result.
// Failures are logged and skipped; fallback is returned when every attempt
// fails.
func FirstOf(ctx context.Context, logger logrus.FieldLogger, fallback string, attempts ...Attempt) string {
	for _, a := range attempts {
		value, err := a.Fn(ctx)
		if err != nil {
			logger.WithError(err).WithField("attempt", a.Name).Warn("lookup failed")
			continue
		}
		if strings.TrimSpace(value) == "" {
			logger.WithField("attempt", a.Name).Warn("lookup returned empty result")
			continue
		}
		return value
	}
	return fallback
}
