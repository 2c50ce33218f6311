package fatfs

import "github.com/hashicorp/go-multierror"

// slotSource supplies successive 32-byte directory slots to a
// DirectoryReader, abstracting over the two root-directory strategies
// (fixed-count region vs. cluster chain) behind one protocol.
type slotSource interface {
	// next returns the next slot's 32 raw bytes. ok is false once the
	// source is exhausted (not an error); err is non-nil only on a
	// genuine I/O or chain failure.
	next() (data []byte, ok bool, err error)
}

// chainSlotSource walks 32-byte slots across a cluster chain, crossing
// cluster boundaries transparently so an LFN run spanning two clusters
// is handled by the caller's assembler without any special casing here.
type chainSlotSource struct {
	it  *chainIterator
	buf []byte
	pos int
}

func (s *chainSlotSource) next() ([]byte, bool, error) {
	for s.pos+32 > len(s.buf) {
		payload, err := s.it.Next()
		if err != nil {
			return nil, false, err
		}
		if payload == nil {
			return nil, false, nil
		}
		s.buf = payload
		s.pos = 0
	}
	data := s.buf[s.pos : s.pos+32]
	s.pos += 32
	return data, true, nil
}

// fixedRootSlotSource walks exactly RootEntryCount slots at a fixed
// offset, the FAT16 root-directory strategy.
type fixedRootSlotSource struct {
	c         cursor
	remaining uint16
}

func (s *fixedRootSlotSource) next() ([]byte, bool, error) {
	if s.remaining == 0 {
		return nil, false, nil
	}
	data, err := s.c.read(32)
	if err != nil {
		return nil, false, err
	}
	s.c = s.c.plus(32)
	s.remaining--
	return data, true, nil
}

// DirectoryReader enumerates a directory as an ordered, pull-based
// sequence of assembled entries. Each call to newClusterChainDirectoryReader
// or newFixedRootDirectoryReader returns a fresh reader with its own LFN
// accumulator;
// readers never share state, so enumerating the same directory twice
// yields identical sequences (idempotent under re-scan).
type DirectoryReader struct {
	src       slotSource
	assembler *lfnAssembler
	done      bool
}

func newClusterChainDirectoryReader(storage clusterStorage, fat table, head uint32, maxDataClusters uint32) *DirectoryReader {
	return &DirectoryReader{
		src:       &chainSlotSource{it: newChainIterator(storage, fat, head, maxDataClusters)},
		assembler: newLfnAssembler(),
	}
}

func newFixedRootDirectoryReader(img Image, bpb BPB) *DirectoryReader {
	c := newCursor(img).plus(int64(bpb.rootRegionStart()) * int64(bpb.BytesPerSector))
	return &DirectoryReader{
		src:       &fixedRootSlotSource{c: c, remaining: bpb.RootEntryCount},
		assembler: newLfnAssembler(),
	}
}

// Next returns the next assembled entry. It returns (nil, nil) once
// enumeration is exhausted (end-of-directory marker or source
// exhaustion). A non-nil entry may come paired with a non-nil,
// non-fatal warning (LFN checksum mismatch, an out-of-range
// timestamp); a nil entry paired with a non-nil error is fatal
// (corrupt chain, image I/O failure) and enumeration must stop.
func (r *DirectoryReader) Next() (*Entry, error) {
	if r.done {
		return nil, nil
	}

	for {
		data, ok, err := r.src.next()
		if err != nil {
			r.done = true
			return nil, err
		}
		if !ok {
			r.done = true
			return nil, nil
		}

		s, err := decodeSlot(data)
		if err != nil {
			r.done = true
			return nil, err
		}

		switch v := s.(type) {
		case endOfDirectorySlot:
			r.done = true
			return nil, nil
		case deletedSlot:
			r.assembler.reset()
			continue
		case lfnFragmentSlot:
			r.assembler.feedFragment(v)
			continue
		case shortEntrySlot:
			entry, warn := r.assembler.emit(v)
			return &entry, warn
		default:
			continue
		}
	}
}

// ReadAll drains the reader, collecting every emitted entry. Non-fatal
// per-entry warnings are accumulated into a single multierror rather
// than aborting the scan; a fatal error (ErrCorruptChain, ErrImage)
// stops enumeration immediately and is returned alongside whatever was
// already collected.
func (r *DirectoryReader) ReadAll() ([]Entry, error) {
	var entries []Entry
	var warnings error

	for {
		entry, err := r.Next()
		if entry == nil {
			if err != nil {
				return entries, err
			}
			return entries, warnings
		}
		if err != nil {
			warnings = multierror.Append(warnings, err)
		}
		entries = append(entries, *entry)
	}
}
