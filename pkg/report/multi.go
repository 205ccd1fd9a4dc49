package report

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/session"
)

// Multi fans a record out to every reporter and collects all failures.
type Multi []session.CompletionReporter

func (m Multi) Report(ctx context.Context, rec session.Record) error {
	var result *multierror.Error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Report(ctx, rec); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
