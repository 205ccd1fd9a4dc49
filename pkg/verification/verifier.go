// Package verification decides whether a zero-filled disk is actually empty.
package verification

import (
	"context"
	"strings"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/diskutil"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/telemetry"
)

// erasedMarkers are alternatives: any one of them on the partition map scheme
// line of verifyDisk output means no partition map survived. diskutil prints
// them together as "Nonexistent, unknown, or damaged partition map scheme".
var erasedMarkers = []string{"Nonexistent", "unknown", "damaged"}

const schemeLineMarker = "partition map scheme"

// Verifier runs the four read-only post-erase checks.
type Verifier struct {
	provider diskutil.Provider
}

func NewVerifier(p diskutil.Provider) *Verifier {
	return &Verifier{provider: p}
}

// Verify never returns an error: a check whose query fails is recorded as
// failed.
func (v *Verifier) Verify(ctx context.Context, id string) Result {
	ctx, span := telemetry.Start(ctx, "verification.Verify", attribute.String("disk", id))
	defer span.End()
	logger := otelzap.Ctx(ctx)

	checks := map[CheckName]bool{
		CheckVerifyDisk:  v.verifyDisk(ctx, id),
		CheckContentType: v.contentType(ctx, id),
	}
	checks[CheckWholeDiskPartition], checks[CheckMountedVolumes] = v.listing(ctx, id)

	result := NewResult(id, checks)
	span.SetAttributes(attribute.Bool("overall", result.Overall))

	fields := []zap.Field{zap.String("disk", id), zap.Bool("overall", result.Overall)}
	for _, name := range AllChecks {
		fields = append(fields, zap.Bool(string(name), result.Checks[name]))
	}
	if result.Overall {
		logger.Info("Erase verified", fields...)
	} else {
		logger.Warn("Erase verification failed", append(fields, zap.Strings("failed", result.Failed()))...)
	}
	return result
}

func (v *Verifier) verifyDisk(ctx context.Context, id string) bool {
	logger := otelzap.Ctx(ctx)

	out, err := v.provider.VerifyDisk(ctx, id)
	if err != nil {
		// verifyDisk exits non-zero on a disk without a partition map; the
		// text is still what is being judged.
		cmdOut, ok := diskutil.OutputOf(err)
		if !ok {
			logger.Warn("verifyDisk could not run", zap.String("disk", id), zap.Error(err))
			return false
		}
		out = cmdOut
	}

	line, found := schemeLine(out)
	matched := matchedMarkers(line)
	logger.Debug("verifyDisk output evaluated",
		zap.String("disk", id),
		zap.Bool("scheme_line_found", found),
		zap.Strings("markers_matched", matched),
		zap.Bool("legacy_first_marker_match", containsMarker(matched, erasedMarkers[0])),
		zap.String("semantics", "any-of"))
	return len(matched) > 0
}

func (v *Verifier) contentType(ctx context.Context, id string) bool {
	info, err := v.provider.Info(ctx, id)
	if err != nil {
		otelzap.Ctx(ctx).Warn("Content type query failed", zap.String("disk", id), zap.Error(err))
		return false
	}
	return info.Content == ""
}

func (v *Verifier) listing(ctx context.Context, id string) (singleEntry, noVolumes bool) {
	list, err := v.provider.ListDisk(ctx, id)
	if err != nil {
		otelzap.Ctx(ctx).Warn("Disk listing failed", zap.String("disk", id), zap.Error(err))
		return false, false
	}
	return len(list.AllDisks) == 1, len(list.VolumesFromDisks) == 0
}

// schemeLine returns the first line of out that mentions the partition map
// scheme. Markers elsewhere in the output, such as an unrelated "unknown
// error", do not count.
func schemeLine(out string) (string, bool) {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(strings.ToLower(line), schemeLineMarker) {
			return line, true
		}
	}
	return "", false
}

func matchedMarkers(out string) []string {
	var matched []string
	for _, m := range erasedMarkers {
		if strings.Contains(out, m) {
			matched = append(matched, m)
		}
	}
	return matched
}

func containsMarker(matched []string, marker string) bool {
	for _, m := range matched {
		if m == marker {
			return true
		}
	}
	return false
}
