package fatfs

import (
	"fmt"

	"github.com/gofatfs/fatfs/checkpoint"
)

// Variant distinguishes the two root-directory / FAT-entry-width
// strategies a BPB can select. It is decided once, at load time, from
// RootEntryCount and never re-derived afterward.
type Variant int

const (
	Fat16Style Variant = iota
	Fat32Style
)

func (v Variant) String() string {
	if v == Fat32Style {
		return "FAT32"
	}
	return "FAT16"
}

// BPB holds the BIOS Parameter Block fields needed by the layers above
// it. Fields that only exist for one variant are zero on the other.
type BPB struct {
	BytesPerSector      uint16
	SectorsPerCluster   uint8
	ReservedSectorCount uint16
	NumFATs             uint8
	RootEntryCount      uint16
	TotalSectors16      uint16
	TotalSectors32      uint32
	FATSize16           uint16
	FATSize32           uint32 // FAT32 only
	RootCluster         uint32 // FAT32 only
	VolumeLabel         [11]byte

	FAT32SpecificData FAT32SpecificData // FAT32 only

	Variant Variant
}

// FAT32SpecificData carries the FAT32-only extended BPB fields this
// module has no present use for, the way the teacher's model.go keeps
// its own FAT32SpecificData around: decoded, not dropped, so a future
// consumer (FSInfo-sector repair, drive-number-aware tooling) isn't
// blocked on re-parsing the image.
type FAT32SpecificData struct {
	ExtFlags         uint16
	FSVersion        uint16
	FSInfo           uint16
	BkBootSector     uint16
	Reserved         [12]byte
	BSDriveNumber    byte
	BSBootSig        byte
	BSVolumeID       uint32
	BSFileSystemType [8]byte
}

// ClusterLength is BytesPerSector * SectorsPerCluster, the size in
// bytes of one allocation unit.
func (b BPB) ClusterLength() uint32 {
	return uint32(b.BytesPerSector) * uint32(b.SectorsPerCluster)
}

// TotalSectors resolves whichever of TotalSectors16/32 is nonzero.
func (b BPB) TotalSectors() uint32 {
	if b.TotalSectors16 != 0 {
		return uint32(b.TotalSectors16)
	}
	return b.TotalSectors32
}

// FATSizeSectors resolves whichever of FATSize16/32 is nonzero.
func (b BPB) FATSizeSectors() uint32 {
	if b.FATSize16 != 0 {
		return uint32(b.FATSize16)
	}
	return b.FATSize32
}

// rootDirSectors is the number of sectors occupied by a fixed-size
// (FAT16-style) root directory region; zero for FAT32.
func (b BPB) rootDirSectors() uint32 {
	return (uint32(b.RootEntryCount)*32 + uint32(b.BytesPerSector) - 1) / uint32(b.BytesPerSector)
}

// fatRegionStart is the sector offset of the first FAT.
func (b BPB) fatRegionStart() uint32 {
	return uint32(b.ReservedSectorCount)
}

// rootRegionStart is the sector offset of the FAT16 fixed root region;
// meaningless (and unused) on FAT32.
func (b BPB) rootRegionStart() uint32 {
	return b.fatRegionStart() + uint32(b.NumFATs)*b.FATSizeSectors()
}

// dataRegionStart is the sector offset of cluster 2, the first data
// cluster, immediately after the FAT(s) and, for FAT16, the root region.
func (b BPB) dataRegionStart() uint32 {
	return b.rootRegionStart() + b.rootDirSectors()
}

func isPowerOfTwo(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}

// parseBPB decodes the BIOS Parameter Block at the image's start.
// Bytes 0..10 (jump instruction, OEM name) are skipped; bytes 11..35
// hold the common fields, bytes 36..89 hold variant-specific fields
// selected by the FAT32Style/FAT16Style discriminator.
func parseBPB(img Image) (BPB, error) {
	c := newCursor(img)

	var b BPB
	var err error

	if b.BytesPerSector, err = c.u16(11); err != nil {
		return BPB{}, checkpoint.Wrap(err, ErrInvalidBPB)
	}
	spc, err := c.u8(13)
	if err != nil {
		return BPB{}, checkpoint.Wrap(err, ErrInvalidBPB)
	}
	b.SectorsPerCluster = spc
	if b.ReservedSectorCount, err = c.u16(14); err != nil {
		return BPB{}, checkpoint.Wrap(err, ErrInvalidBPB)
	}
	numFATs, err := c.u8(16)
	if err != nil {
		return BPB{}, checkpoint.Wrap(err, ErrInvalidBPB)
	}
	b.NumFATs = numFATs
	if b.RootEntryCount, err = c.u16(17); err != nil {
		return BPB{}, checkpoint.Wrap(err, ErrInvalidBPB)
	}
	if b.TotalSectors16, err = c.u16(19); err != nil {
		return BPB{}, checkpoint.Wrap(err, ErrInvalidBPB)
	}
	if b.FATSize16, err = c.u16(22); err != nil {
		return BPB{}, checkpoint.Wrap(err, ErrInvalidBPB)
	}
	if b.TotalSectors32, err = c.u32(32); err != nil {
		return BPB{}, checkpoint.Wrap(err, ErrInvalidBPB)
	}

	if b.RootEntryCount == 0 {
		b.Variant = Fat32Style
		if b.FATSize32, err = c.u32(36); err != nil {
			return BPB{}, checkpoint.Wrap(err, ErrInvalidBPB)
		}
		if b.FAT32SpecificData.ExtFlags, err = c.u16(40); err != nil {
			return BPB{}, checkpoint.Wrap(err, ErrInvalidBPB)
		}
		if b.FAT32SpecificData.FSVersion, err = c.u16(42); err != nil {
			return BPB{}, checkpoint.Wrap(err, ErrInvalidBPB)
		}
		if b.RootCluster, err = c.u32(44); err != nil {
			return BPB{}, checkpoint.Wrap(err, ErrInvalidBPB)
		}
		if b.FAT32SpecificData.FSInfo, err = c.u16(48); err != nil {
			return BPB{}, checkpoint.Wrap(err, ErrInvalidBPB)
		}
		if b.FAT32SpecificData.BkBootSector, err = c.u16(50); err != nil {
			return BPB{}, checkpoint.Wrap(err, ErrInvalidBPB)
		}
		if reserved, err := c.readAt(52, 12); err == nil {
			copy(b.FAT32SpecificData.Reserved[:], reserved)
		}
		if b.FAT32SpecificData.BSDriveNumber, err = c.u8(64); err != nil {
			return BPB{}, checkpoint.Wrap(err, ErrInvalidBPB)
		}
		if b.FAT32SpecificData.BSBootSig, err = c.u8(66); err != nil {
			return BPB{}, checkpoint.Wrap(err, ErrInvalidBPB)
		}
		if b.FAT32SpecificData.BSVolumeID, err = c.u32(67); err != nil {
			return BPB{}, checkpoint.Wrap(err, ErrInvalidBPB)
		}
		if label, err := c.readAt(71, 11); err == nil {
			copy(b.VolumeLabel[:], label)
		}
		if fsType, err := c.readAt(82, 8); err == nil {
			copy(b.FAT32SpecificData.BSFileSystemType[:], fsType)
		}
	} else {
		b.Variant = Fat16Style
		if label, err := c.readAt(43, 11); err == nil {
			copy(b.VolumeLabel[:], label)
		}
	}

	if err := b.validate(); err != nil {
		return BPB{}, err
	}

	return b, nil
}

func (b BPB) validate() error {
	if b.BytesPerSector == 0 || !isPowerOfTwo(uint32(b.BytesPerSector)) {
		return checkpoint.From(fmt.Errorf("%w: bytes per sector %d is not a nonzero power of two", ErrInvalidBPB, b.BytesPerSector))
	}
	if b.SectorsPerCluster == 0 || !isPowerOfTwo(uint32(b.SectorsPerCluster)) {
		return checkpoint.From(fmt.Errorf("%w: sectors per cluster %d is not a nonzero power of two", ErrInvalidBPB, b.SectorsPerCluster))
	}
	if b.NumFATs == 0 {
		return checkpoint.From(fmt.Errorf("%w: num FATs is zero", ErrInvalidBPB))
	}
	if (b.RootEntryCount == 0) != (b.Variant == Fat32Style) {
		return checkpoint.From(fmt.Errorf("%w: root entry count %d inconsistent with variant %v", ErrInvalidBPB, b.RootEntryCount, b.Variant))
	}
	if b.TotalSectors16 == 0 && b.TotalSectors32 == 0 {
		return checkpoint.From(fmt.Errorf("%w: no total sector count encoded", ErrInvalidBPB))
	}
	return nil
}
