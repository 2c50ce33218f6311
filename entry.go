package fatfs

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/gofatfs/fatfs/checkpoint"
)

// slot is the decoded shape of one 32-byte directory slot: exactly one
// of the four concrete types below.
type slot interface {
	isSlot()
}

type endOfDirectorySlot struct{}

func (endOfDirectorySlot) isSlot() {}

type deletedSlot struct{}

func (deletedSlot) isSlot() {}

// lfnFragmentSlot carries the 13 UTF-16 code units of one LFN
// fragment, on-disk order (the assembler is responsible for ordering
// fragments across a run).
type lfnFragmentSlot struct {
	sequence  byte // low 5 bits: 1-based position within the run
	isLast    bool // the 0x40 bit: first fragment encountered in a forward scan
	codeUnits [13]uint16
	checksum  byte
}

func (lfnFragmentSlot) isSlot() {}

// shortEntrySlot is a live 8.3 directory entry (file, directory, or
// volume label).
type shortEntrySlot struct {
	raw  shortEntryRaw
	name string // 8.3-reconstructed name; may be overridden by an LFN
}

func (shortEntrySlot) isSlot() {}

// EntryFlags mirrors the attribute bits a consumer cares about.
type EntryFlags struct {
	ReadOnly    bool
	Hidden      bool
	System      bool
	VolumeLabel bool
	Directory   bool
}

func flagsFromAttribute(attr byte) EntryFlags {
	return EntryFlags{
		ReadOnly:    attr&AttrReadOnly != 0,
		Hidden:      attr&AttrHidden != 0,
		System:      attr&AttrSystem != 0,
		VolumeLabel: attr&AttrVolumeLabel != 0,
		Directory:   attr&AttrDirectory != 0,
	}
}

// decodeSlot decodes a single 32-byte directory slot. It is stateless:
// LFN-run reassembly is the assembler's job (lfn.go), not the
// decoder's.
func decodeSlot(data []byte) (slot, error) {
	if len(data) != 32 {
		return nil, checkpoint.From(ErrImage)
	}

	switch data[0] {
	case slotEndOfDirectory:
		return endOfDirectorySlot{}, nil
	case slotDeleted:
		return deletedSlot{}, nil
	}

	attribute := data[11]
	if attribute&AttrLongName == AttrLongName {
		return decodeLfnFragment(data)
	}
	return decodeShortEntry(data)
}

func decodeLfnFragment(data []byte) (slot, error) {
	var raw lfnFragmentRaw
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &raw); err != nil {
		return nil, checkpoint.Wrap(err, ErrImage)
	}

	var units [13]uint16
	copy(units[0:5], raw.First[:])
	copy(units[5:11], raw.Second[:])
	copy(units[11:13], raw.Third[:])

	return lfnFragmentSlot{
		sequence:  raw.Sequence & lfnSequenceMask,
		isLast:    raw.Sequence&lfnLastFragmentBit != 0,
		codeUnits: units,
		checksum:  raw.Checksum,
	}, nil
}

func decodeShortEntry(data []byte) (slot, error) {
	var raw shortEntryRaw
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &raw); err != nil {
		return nil, checkpoint.Wrap(err, ErrImage)
	}

	// An initial byte of the true 0xE5 is escaped to 0x05 on disk so it
	// is not confused with the deleted-slot marker.
	if raw.Name[0] == slotEscapedE5 {
		raw.Name[0] = slotDeleted
	}

	return shortEntrySlot{raw: raw, name: shortName(raw)}, nil
}

// shortName reconstructs the 8.3 name from a short entry's
// space-padded filename and extension fields.
func shortName(raw shortEntryRaw) string {
	name := strings.TrimRight(string(raw.Name[:]), " ")
	ext := strings.TrimRight(string(raw.Extension[:]), " ")

	flags := flagsFromAttribute(raw.Attribute)
	if flags.Directory || flags.VolumeLabel {
		return name + ext
	}
	return name + "." + ext
}

// startCluster combines the high and low cluster-number words. The
// high word is decoded from disk on both variants and used as-is;
// FAT16 volumes normally store zero there.
func startCluster(raw shortEntryRaw) uint32 {
	return uint32(raw.FirstClusterHI)<<16 | uint32(raw.FirstClusterLO)
}
