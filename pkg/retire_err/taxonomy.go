package retire_err

import (
	cerr "github.com/cockroachdb/errors"
)

// Sentinels for the erasure error taxonomy. Concrete errors are tagged with
// cerr.Mark so callers test membership with cerr.Is and keep the original
// message and cause chain.
var (
	// ErrPrecondition aborts a session before any disk is touched.
	ErrPrecondition = cerr.New("precondition failed")
	// ErrDiscovery means disk enumeration or topology inspection is unreliable.
	ErrDiscovery = cerr.New("disk discovery failed")
	// ErrCoreStorage is recovered locally; the disk still proceeds to erase.
	ErrCoreStorage = cerr.New("corestorage teardown failed")
	// ErrEraseTierExhausted records that every remediation tier failed for one disk.
	ErrEraseTierExhausted = cerr.New("erase tiers exhausted")
	// ErrVerificationMismatch records that at least one post-erase check failed.
	ErrVerificationMismatch = cerr.New("erase verification mismatch")
)

// Precondition builds a precondition failure with an operator hint.
func Precondition(hint, format string, args ...interface{}) error {
	err := cerr.Mark(cerr.Newf(format, args...), ErrPrecondition)
	if hint != "" {
		err = cerr.WithHint(err, hint)
	}
	return err
}

// Discovery tags err as a discovery failure.
func Discovery(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return cerr.Mark(cerr.Wrapf(err, format, args...), ErrDiscovery)
}

// CoreStorage tags err as a recoverable CoreStorage failure.
func CoreStorage(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return cerr.Mark(cerr.Wrapf(err, format, args...), ErrCoreStorage)
}

// EraseTierExhausted records exhaustion of all tiers for diskID.
func EraseTierExhausted(diskID string, tiers int) error {
	return cerr.Mark(cerr.Newf("all %d erase tiers failed for %s", tiers, diskID), ErrEraseTierExhausted)
}

// VerificationMismatch records the checks that failed for diskID.
func VerificationMismatch(diskID string, failedChecks []string) error {
	return cerr.Mark(cerr.Newf("verification failed for %s: %v", diskID, failedChecks), ErrVerificationMismatch)
}

// Hint returns the operator hints attached anywhere in err's chain.
func Hint(err error) string {
	if err == nil {
		return ""
	}
	return cerr.FlattenHints(err)
}
