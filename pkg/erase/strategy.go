package erase

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/diskutil"
)

// MaxTiers bounds the number of attempts recorded per disk.
const MaxTiers = 3

// Strategy is one remediation tier: an optional preparation step followed by
// a zero-fill. A failed preparation is reported but does not skip the erase.
type Strategy struct {
	Name    string
	Prepare func(ctx context.Context, p diskutil.Provider, id string) error
}

// DefaultStrategies returns the escalation policy in tier order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "zero-fill"},
		{
			Name: "force-unmount then zero-fill",
			Prepare: func(ctx context.Context, p diskutil.Provider, id string) error {
				return p.Unmount(ctx, id, true)
			},
		},
		{
			Name: "repair volume then zero-fill",
			Prepare: func(ctx context.Context, p diskutil.Provider, id string) error {
				return p.RepairVolume(ctx, id)
			},
		},
	}
}
