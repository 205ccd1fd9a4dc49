// Package erase runs the single-pass zero-fill against a whole disk with an
// escalating remediation policy.
package erase

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/diskutil"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/telemetry"
)

type Executor struct {
	provider   diskutil.Provider
	strategies []Strategy
}

// NewExecutor uses DefaultStrategies. Extra strategies beyond MaxTiers are ignored.
func NewExecutor(p diskutil.Provider, strategies ...Strategy) *Executor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	if len(strategies) > MaxTiers {
		strategies = strategies[:MaxTiers]
	}
	return &Executor{provider: p, strategies: strategies}
}

// Erase applies each tier in order and stops at the first success.
func (e *Executor) Erase(ctx context.Context, id string) Outcome {
	ctx, span := telemetry.Start(ctx, "erase.Erase", attribute.String("disk", id))
	defer span.End()
	logger := otelzap.Ctx(ctx)

	outcome := Outcome{}
	for i, strategy := range e.strategies {
		tier := i + 1
		started := time.Now()
		attempt := e.attempt(ctx, id, tier, strategy)
		outcome.Attempts = append(outcome.Attempts, attempt)
		telemetry.M().EraseAttempt(ctx, tier, attempt.Outcome == AttemptSuccess, time.Since(started))

		if attempt.Outcome == AttemptSuccess {
			outcome.Succeeded = true
			logger.Info("Zero-fill erase succeeded",
				zap.String("disk", id),
				zap.Int("tier", tier),
				zap.String("strategy", strategy.Name))
			break
		}

		logger.Warn("Zero-fill erase tier failed",
			zap.String("disk", id),
			zap.Int("tier", tier),
			zap.String("strategy", strategy.Name),
			zap.String("detail", attempt.Detail))
	}

	span.SetAttributes(
		attribute.Bool("succeeded", outcome.Succeeded),
		attribute.Int("attempts", len(outcome.Attempts)))
	if !outcome.Succeeded {
		logger.Error("All erase tiers exhausted",
			zap.String("disk", id),
			zap.Int("attempts", len(outcome.Attempts)))
	}
	return outcome
}

func (e *Executor) attempt(ctx context.Context, id string, tier int, s Strategy) Attempt {
	attempt := Attempt{DiskID: id, Tier: tier, Outcome: AttemptFailure}

	var prepErr error
	if s.Prepare != nil {
		prepErr = s.Prepare(ctx, e.provider, id)
		if prepErr != nil {
			otelzap.Ctx(ctx).Warn("Erase preparation failed, attempting zero-fill anyway",
				zap.String("disk", id),
				zap.Int("tier", tier),
				zap.Error(prepErr))
		}
	}

	eraseErr := e.provider.ZeroErase(ctx, id)
	switch {
	case eraseErr == nil && prepErr == nil:
		attempt.Outcome = AttemptSuccess
		attempt.Detail = s.Name
	case eraseErr == nil:
		attempt.Outcome = AttemptSuccess
		attempt.Detail = fmt.Sprintf("%s (preparation failed: %v)", s.Name, prepErr)
	case prepErr == nil:
		attempt.Detail = fmt.Sprintf("%s: %v", s.Name, eraseErr)
	default:
		attempt.Detail = fmt.Sprintf("%s: preparation failed: %v; erase failed: %v", s.Name, prepErr, eraseErr)
	}
	return attempt
}
