package diskutil

// Disk is a whole disk as seen by one inventory query. Identifiers can shift
// after CoreStorage deletion, so a Disk is only valid until the next topology
// change.
type Disk struct {
	ID                 string `json:"id" yaml:"id"`
	Internal           bool   `json:"internal" yaml:"internal"`
	CoreStorageGroupID string `json:"core_storage_group_id,omitempty" yaml:"core_storage_group_id,omitempty"`
}

// IsCoreStorageMember reports whether the disk still backs a logical volume group.
func (d Disk) IsCoreStorageMember() bool {
	return d.CoreStorageGroupID != ""
}

// DiskList mirrors the output format of "diskutil list -plist [disk]".
type DiskList struct {
	AllDisks         []string `plist:"AllDisks"`
	VolumesFromDisks []string `plist:"VolumesFromDisks"`
	WholeDisks       []string `plist:"WholeDisks"`
}

// DiskInfo mirrors the subset of "diskutil info -plist <disk>" used here.
type DiskInfo struct {
	Content                        string `plist:"Content"`
	DeviceIdentifier               string `plist:"DeviceIdentifier"`
	Internal                       bool   `plist:"Internal"`
	MediaName                      string `plist:"MediaName"`
	RemovableMediaOrExternalDevice bool   `plist:"RemovableMediaOrExternalDevice"`
	Size                           uint64 `plist:"Size"`
	WholeDisk                      bool   `plist:"WholeDisk"`
}

// CoreStorageInfo mirrors "diskutil cs info -plist <disk>" for a physical volume.
type CoreStorageInfo struct {
	MemberOfCoreStorageLogicalVolumeGroup string `plist:"MemberOfCoreStorageLogicalVolumeGroup"`
	CoreStorageUUID                       string `plist:"CoreStorageUUID"`
	CoreStorageRole                       string `plist:"CoreStorageRole"`
}
