package fatfs

import (
	"encoding/binary"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/text/encoding/unicode"
)

// Entry is the assembled, host-friendly view of a short entry plus
// whatever long-filename run preceded it. It is what Directory Readers
// emit; RawFlags is never exposed, only the decoded EntryFlags.
type Entry struct {
	Name         string
	StartCluster uint32
	Size         uint32
	Flags        EntryFlags
	CreateTime   time.Time
	WriteTime    time.Time
	AccessTime   time.Time
}

// lfnAssembler is the stateful long-filename reducer: it accumulates code units across a contiguous run of LFN fragments
// and attaches the resulting name to the next short entry. The
// accumulator is always empty at the boundary after an emitted entry;
// the decoder (entry.go) never sees or touches this state.
type lfnAssembler struct {
	units     []uint16
	fragments []lfnFragmentSlot
}

func newLfnAssembler() *lfnAssembler {
	return &lfnAssembler{}
}

func (a *lfnAssembler) reset() {
	a.units = nil
	a.fragments = nil
}

// feedFragment prepends the fragment's 13 code units, because
// fragments are stored on disk highest-sequence-first and this
// assembler is driven by a forward scan: the first fragment
// encountered is the tail of the name.
func (a *lfnAssembler) feedFragment(f lfnFragmentSlot) {
	prefixed := make([]uint16, 0, len(f.codeUnits)+len(a.units))
	prefixed = append(prefixed, f.codeUnits[:]...)
	prefixed = append(prefixed, a.units...)
	a.units = prefixed
	a.fragments = append(a.fragments, f)
}

// emit finalizes the short entry `s`, attaching any accumulated LFN
// name in place of the 8.3 reconstruction, and resets the accumulator.
// A non-fatal warning is returned (never a fatal error) when the LFN
// checksum doesn't match the short entry it precedes, or when a
// timestamp field is out of range; in both cases the policy is to
// substitute a sane default and keep going.
func (a *lfnAssembler) emit(s shortEntrySlot) (Entry, error) {
	defer a.reset()

	name := s.name
	var warnings error

	if len(a.units) > 0 {
		if !validLfnChecksum(a.fragments, s.raw) {
			warnings = multierror.Append(warnings, ErrLfnChecksumMismatch)
		} else {
			name = decodeLfnUnits(a.units)
		}
	}

	entry := Entry{
		Name:         name,
		StartCluster: startCluster(s.raw),
		Size:         s.raw.FileSize,
		Flags:        flagsFromAttribute(s.raw.Attribute),
	}

	if create, err := parseTimestamp(s.raw.CreateDate, s.raw.CreateTime, s.raw.CreateTimeTenth); err != nil {
		warnings = multierror.Append(warnings, err)
	} else {
		entry.CreateTime = create
	}

	if write, err := parseTimestamp(s.raw.WriteDate, s.raw.WriteTime, 0); err != nil {
		warnings = multierror.Append(warnings, err)
	} else {
		entry.WriteTime = write
	}

	if access, err := parseAccessDate(s.raw.LastAccessDate); err != nil {
		warnings = multierror.Append(warnings, err)
	} else {
		entry.AccessTime = access
	}

	return entry, warnings
}

// validLfnChecksum recomputes the FAT checksum over the short entry's
// raw 11-byte name+extension and compares it against every fragment in
// the run; the run is only trusted if every fragment agrees.
func validLfnChecksum(fragments []lfnFragmentSlot, short shortEntryRaw) bool {
	var name11 [11]byte
	copy(name11[0:8], short.Name[:])
	copy(name11[8:11], short.Extension[:])

	var checksum byte
	for _, b := range name11 {
		checksum = (checksum<<7 | checksum>>1) + b
	}

	for _, f := range fragments {
		if f.checksum != checksum {
			return false
		}
	}
	return true
}

// lfnDecoder turns the UTF-16LE bytes an LFN fragment run carries into
// UTF-8, including surrogate-pair handling, the same x/text decoder
// soypat/fat uses for its own long-name support.
var lfnDecoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()

// decodeLfnUnits decodes the assembled UTF-16LE code units into a Go
// string, trimming trailing 0xFFFF padding and stopping at the first
// 0x0000 terminator.
func decodeLfnUnits(units []uint16) string {
	raw := make([]byte, 0, len(units)*2)
	for _, u := range units {
		if u == 0x0000 {
			break
		}
		if u == 0xFFFF {
			continue
		}
		raw = binary.LittleEndian.AppendUint16(raw, u)
	}

	decoded, err := lfnDecoder.Bytes(raw)
	if err != nil {
		// Malformed surrogate pairs: fall back to a best-effort decode
		// rather than losing the name entirely.
		return string(raw)
	}
	return string(decoded)
}
