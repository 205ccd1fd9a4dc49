package diskutil

import (
	"context"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
	"howett.net/plist"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/execute"
)

const (
	DefaultDiskutilPath    = "/usr/sbin/diskutil"
	DefaultMetadataTimeout = 30 * time.Second
)

// Provider is the typed boundary over the OS disk utility. Metadata queries
// return parsed records; mutating operations return only an error.
type Provider interface {
	List(ctx context.Context) (*DiskList, error)
	ListDisk(ctx context.Context, id string) (*DiskList, error)
	Info(ctx context.Context, id string) (*DiskInfo, error)
	CoreStorageInfo(ctx context.Context, id string) (*CoreStorageInfo, error)
	VerifyDisk(ctx context.Context, id string) (string, error)
	Unmount(ctx context.Context, id string, force bool) error
	RepairVolume(ctx context.Context, id string) error
	DeleteLVG(ctx context.Context, lvgID string) error
	ZeroErase(ctx context.Context, id string) error
}

// ProviderConfig locates the utility and bounds metadata queries.
type ProviderConfig struct {
	DiskutilPath    string
	MetadataTimeout time.Duration
}

// CommandProvider implements Provider by running diskutil.
type CommandProvider struct {
	runner execute.Runner
	cfg    ProviderConfig
}

var _ Provider = (*CommandProvider)(nil)

func NewCommandProvider(runner execute.Runner, cfg ProviderConfig) *CommandProvider {
	if cfg.DiskutilPath == "" {
		cfg.DiskutilPath = DefaultDiskutilPath
	}
	if cfg.MetadataTimeout <= 0 {
		cfg.MetadataTimeout = DefaultMetadataTimeout
	}
	return &CommandProvider{runner: runner, cfg: cfg}
}

func (p *CommandProvider) List(ctx context.Context) (*DiskList, error) {
	var out DiskList
	if err := p.query(ctx, &out, "list", "-plist"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *CommandProvider) ListDisk(ctx context.Context, id string) (*DiskList, error) {
	var out DiskList
	if err := p.query(ctx, &out, "list", "-plist", id); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *CommandProvider) Info(ctx context.Context, id string) (*DiskInfo, error) {
	var out DiskInfo
	if err := p.query(ctx, &out, "info", "-plist", id); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *CommandProvider) CoreStorageInfo(ctx context.Context, id string) (*CoreStorageInfo, error) {
	var out CoreStorageInfo
	if err := p.query(ctx, &out, "cs", "info", "-plist", id); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyDisk returns the utility's text. A non-zero exit still yields the
// output, since an erased disk is usually reported as an error.
func (p *CommandProvider) VerifyDisk(ctx context.Context, id string) (string, error) {
	return p.run(ctx, 0, false, "verifyDisk", id)
}

func (p *CommandProvider) Unmount(ctx context.Context, id string, force bool) error {
	args := []string{"unmountDisk"}
	if force {
		args = append(args, "force")
	}
	_, err := p.run(ctx, 0, true, append(args, id)...)
	return err
}

func (p *CommandProvider) RepairVolume(ctx context.Context, id string) error {
	_, err := p.run(ctx, 0, true, "repairVolume", id)
	return err
}

func (p *CommandProvider) DeleteLVG(ctx context.Context, lvgID string) error {
	_, err := p.run(ctx, 0, true, "cs", "delete", lvgID)
	return err
}

// ZeroErase performs a single-pass zero fill. Once launched it is not
// cancelled with ctx and has no timeout.
func (p *CommandProvider) ZeroErase(ctx context.Context, id string) error {
	_, err := p.run(context.WithoutCancel(ctx), 0, true, "secureErase", "0", id)
	return err
}

func (p *CommandProvider) query(ctx context.Context, v interface{}, args ...string) error {
	out, err := p.run(ctx, p.cfg.MetadataTimeout, false, args...)
	if err != nil {
		return err
	}
	if strings.TrimSpace(out) == "" {
		return cerr.Newf("diskutil %s: empty output", strings.Join(args, " "))
	}
	if _, err := plist.Unmarshal([]byte(out), v); err != nil {
		return cerr.Wrapf(err, "parse diskutil %s output", strings.Join(args, " "))
	}
	return nil
}

func (p *CommandProvider) run(ctx context.Context, timeout time.Duration, destructive bool, args ...string) (string, error) {
	out, err := p.runner.Run(ctx, execute.Options{
		Command:     p.cfg.DiskutilPath,
		Args:        args,
		Timeout:     timeout,
		Destructive: destructive,
	})
	if err != nil {
		return out, &CommandError{
			Command: "diskutil " + strings.Join(args, " "),
			Output:  out,
			Err:     err,
		}
	}
	return out, nil
}
