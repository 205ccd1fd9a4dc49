package diskutil

import (
	"context"
	"sync"

	cerr "github.com/cockroachdb/errors"
)

// Operation names recorded by FakeProvider.
const (
	OpList            = "list"
	OpInfo            = "info"
	OpCoreStorageInfo = "cs info"
	OpVerifyDisk      = "verifyDisk"
	OpUnmount         = "unmountDisk"
	OpRepairVolume    = "repairVolume"
	OpDeleteLVG       = "cs delete"
	OpZeroErase       = "secureErase"
)

// ErasedVerifyOutput is what verifyDisk prints for a disk with no partition map.
const ErasedVerifyOutput = "Started partition map verification on disk\n" +
	"Error: -69802: Nonexistent, unknown, or damaged partition map scheme\n"

// HealthyVerifyOutput is what verifyDisk prints for an intact GPT disk.
const HealthyVerifyOutput = "Started partition map verification on disk\n" +
	"Checking prerequisites\nChecking the partition list\n" +
	"The partition map appears to be OK\nFinished partition map verification on disk\n"

// FakeDisk is the scripted state of one whole disk.
type FakeDisk struct {
	ID               string
	Internal         bool
	CoreStorageGroup string
	Content          string
	Partitions       []string
	Volumes          []string
	VerifyOutput     string

	// ResistsErase makes zero-fill report success without changing state.
	ResistsErase bool
}

// Call is one recorded provider invocation.
type Call struct {
	Op     string
	Target string
}

// FakeProvider is a deterministic in-memory Provider. Zero-fill clears a disk's
// partitions, volumes, content and CoreStorage membership; deleting an LVG
// replaces its member disks with AfterDelete[lvg], or with the same disks
// stripped of their group when no replacement is scripted.
type FakeProvider struct {
	mu    sync.Mutex
	disks map[string]*FakeDisk
	order []string
	calls []Call

	// EraseFailures is the number of leading zero-fill failures per disk.
	EraseFailures map[string]int
	UnmountErr    map[string]error
	RepairErr     map[string]error
	DeleteErr     map[string]error
	InfoErr       map[string]error
	// CoreStorageErr fails cs info with an error that is not "not a CoreStorage disk".
	CoreStorageErr map[string]error
	AfterDelete    map[string][]FakeDisk
	ListErr        error
}

var _ Provider = (*FakeProvider)(nil)

func NewFakeProvider(disks ...FakeDisk) *FakeProvider {
	f := &FakeProvider{
		disks:          make(map[string]*FakeDisk),
		EraseFailures:  make(map[string]int),
		UnmountErr:     make(map[string]error),
		RepairErr:      make(map[string]error),
		DeleteErr:      make(map[string]error),
		InfoErr:        make(map[string]error),
		CoreStorageErr: make(map[string]error),
		AfterDelete:    make(map[string][]FakeDisk),
	}
	for _, d := range disks {
		f.add(d)
	}
	return f
}

// Calls returns a copy of every recorded invocation, in order.
func (f *FakeProvider) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsFor returns the targets of every invocation of op, in order.
func (f *FakeProvider) CallsFor(op string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var targets []string
	for _, c := range f.calls {
		if c.Op == op {
			targets = append(targets, c.Target)
		}
	}
	return targets
}

// Disk returns a copy of the current state of id.
func (f *FakeProvider) Disk(id string) (FakeDisk, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.disks[id]
	if !ok {
		return FakeDisk{}, false
	}
	return *d, true
}

func (f *FakeProvider) List(_ context.Context) (*DiskList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(OpList, "")
	if f.ListErr != nil {
		return nil, f.fail("list -plist", f.ListErr)
	}

	out := &DiskList{}
	for _, id := range f.order {
		d := f.disks[id]
		out.WholeDisks = append(out.WholeDisks, id)
		out.AllDisks = append(out.AllDisks, id)
		out.AllDisks = append(out.AllDisks, d.Partitions...)
		out.VolumesFromDisks = append(out.VolumesFromDisks, d.Volumes...)
	}
	return out, nil
}

func (f *FakeProvider) ListDisk(_ context.Context, id string) (*DiskList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(OpList, id)
	if f.ListErr != nil {
		return nil, f.fail("list -plist "+id, f.ListErr)
	}
	d, err := f.lookup("list -plist", id)
	if err != nil {
		return nil, err
	}
	return &DiskList{
		AllDisks:         append([]string{id}, d.Partitions...),
		VolumesFromDisks: append([]string(nil), d.Volumes...),
		WholeDisks:       []string{id},
	}, nil
}

func (f *FakeProvider) Info(_ context.Context, id string) (*DiskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(OpInfo, id)
	if err := f.InfoErr[id]; err != nil {
		return nil, f.fail("info -plist "+id, err)
	}
	d, err := f.lookup("info -plist", id)
	if err != nil {
		return nil, err
	}
	return &DiskInfo{
		Content:                        d.Content,
		DeviceIdentifier:               d.ID,
		Internal:                       d.Internal,
		RemovableMediaOrExternalDevice: !d.Internal,
		WholeDisk:                      true,
	}, nil
}

func (f *FakeProvider) CoreStorageInfo(_ context.Context, id string) (*CoreStorageInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(OpCoreStorageInfo, id)
	if err := f.CoreStorageErr[id]; err != nil {
		return nil, f.fail("cs info -plist "+id, err)
	}
	d, err := f.lookup("cs info -plist", id)
	if err != nil {
		return nil, err
	}
	if d.CoreStorageGroup == "" {
		return nil, &CommandError{
			Command: "diskutil cs info -plist " + id,
			Output:  id + " is not a CoreStorage disk\n",
			Err:     cerr.New("exit status 1"),
		}
	}
	return &CoreStorageInfo{
		MemberOfCoreStorageLogicalVolumeGroup: d.CoreStorageGroup,
		CoreStorageRole:                       "PV",
	}, nil
}

func (f *FakeProvider) VerifyDisk(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(OpVerifyDisk, id)
	d, err := f.lookup("verifyDisk", id)
	if err != nil {
		return "", err
	}
	return d.VerifyOutput, nil
}

func (f *FakeProvider) Unmount(_ context.Context, id string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(OpUnmount, id)
	if err := f.UnmountErr[id]; err != nil {
		return f.fail("unmountDisk force "+id, err)
	}
	d, err := f.lookup("unmountDisk force", id)
	if err != nil {
		return err
	}
	d.Volumes = nil
	return nil
}

func (f *FakeProvider) RepairVolume(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(OpRepairVolume, id)
	if err := f.RepairErr[id]; err != nil {
		return f.fail("repairVolume "+id, err)
	}
	_, err := f.lookup("repairVolume", id)
	return err
}

func (f *FakeProvider) DeleteLVG(_ context.Context, lvgID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(OpDeleteLVG, lvgID)
	if err := f.DeleteErr[lvgID]; err != nil {
		return f.fail("cs delete "+lvgID, err)
	}

	var members []string
	for _, id := range f.order {
		if f.disks[id].CoreStorageGroup == lvgID {
			members = append(members, id)
		}
	}
	if len(members) == 0 {
		return f.fail("cs delete "+lvgID, cerr.Newf("no logical volume group %s", lvgID))
	}

	replacements, scripted := f.AfterDelete[lvgID]
	if !scripted {
		for _, id := range members {
			f.disks[id].CoreStorageGroup = ""
			f.disks[id].Volumes = nil
		}
		return nil
	}
	for _, id := range members {
		f.remove(id)
	}
	for _, d := range replacements {
		f.add(d)
	}
	return nil
}

func (f *FakeProvider) ZeroErase(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(OpZeroErase, id)
	if n := f.EraseFailures[id]; n > 0 {
		f.EraseFailures[id] = n - 1
		return f.fail("secureErase 0 "+id, cerr.New("exit status 1"))
	}
	d, err := f.lookup("secureErase 0", id)
	if err != nil {
		return err
	}
	if d.ResistsErase {
		return nil
	}
	d.Content = ""
	d.Partitions = nil
	d.Volumes = nil
	d.CoreStorageGroup = ""
	d.VerifyOutput = ErasedVerifyOutput
	return nil
}

func (f *FakeProvider) add(d FakeDisk) {
	if _, exists := f.disks[d.ID]; !exists {
		f.order = append(f.order, d.ID)
	}
	cp := d
	cp.Partitions = append([]string(nil), d.Partitions...)
	cp.Volumes = append([]string(nil), d.Volumes...)
	f.disks[d.ID] = &cp
}

func (f *FakeProvider) remove(id string) {
	delete(f.disks, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			return
		}
	}
}

func (f *FakeProvider) record(op, target string) {
	f.calls = append(f.calls, Call{Op: op, Target: target})
}

func (f *FakeProvider) lookup(command, id string) (*FakeDisk, error) {
	d, ok := f.disks[id]
	if !ok {
		return nil, &CommandError{
			Command: "diskutil " + command + " " + id,
			Output:  "Could not find disk: " + id + "\n",
			Err:     cerr.New("exit status 1"),
		}
	}
	return d, nil
}

func (f *FakeProvider) fail(command string, err error) error {
	return &CommandError{Command: "diskutil " + command, Output: err.Error() + "\n", Err: err}
}
