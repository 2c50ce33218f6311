package fatfs

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// This file builds small, fully synthetic FAT16 and FAT32 images in
// memory so the rest of the suite can exercise the real decode path
// end to end without needing binary fixture files on disk (none were
// available to carry over from the upstream test corpus).

func name83(base, ext string) [11]byte {
	var out [11]byte
	for i := range out {
		out[i] = ' '
	}
	copy(out[0:8], []byte(base))
	copy(out[8:11], []byte(ext))
	return out
}

func encodeDate(year, month, day int) uint16 {
	return uint16(day) | uint16(month)<<5 | uint16(year-1980)<<9
}

func encodeTime(hour, minute, second int) uint16 {
	return uint16(second/2) | uint16(minute)<<5 | uint16(hour)<<11
}

func rawShortEntrySlot(base, ext string, attr byte, cluster, size uint32) []byte {
	full := name83(base, ext)
	var nameField [8]byte
	var extField [3]byte
	copy(nameField[:], full[0:8])
	copy(extField[:], full[8:11])

	raw := shortEntryRaw{
		Name:           nameField,
		Extension:      extField,
		Attribute:      attr,
		CreateDate:     encodeDate(2024, 1, 15),
		CreateTime:     encodeTime(10, 30, 0),
		LastAccessDate: encodeDate(2024, 1, 15),
		WriteDate:      encodeDate(2024, 1, 15),
		WriteTime:      encodeTime(10, 30, 0),
		FirstClusterHI: uint16(cluster >> 16),
		FirstClusterLO: uint16(cluster & 0xFFFF),
		FileSize:       size,
	}

	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, raw); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// rawLfnSlots returns the on-disk slots for a long-filename run
// preceding a short entry, highest sequence number first, matching
// real FAT layout.
func rawLfnSlots(long, shortBase, shortExt string) [][]byte {
	name11 := name83(shortBase, shortExt)
	checksum := lfnChecksumForTest(name11)

	units := utf16.Encode([]rune(long))
	units = append(units, 0x0000)
	for len(units)%13 != 0 {
		units = append(units, 0xFFFF)
	}
	fragCount := len(units) / 13

	var slots [][]byte
	for i := fragCount; i >= 1; i-- {
		seq := byte(i)
		if i == fragCount {
			seq |= lfnLastFragmentBit
		}
		chunk := units[(i-1)*13 : i*13]

		raw := lfnFragmentRaw{
			Sequence:  seq,
			Attribute: AttrLongName,
			Checksum:  checksum,
		}
		copy(raw.First[:], chunk[0:5])
		copy(raw.Second[:], chunk[5:11])
		copy(raw.Third[:], chunk[11:13])

		buf := &bytes.Buffer{}
		if err := binary.Write(buf, binary.LittleEndian, raw); err != nil {
			panic(err)
		}
		slots = append(slots, buf.Bytes())
	}
	return slots
}

func lfnChecksumForTest(name11 [11]byte) byte {
	var sum byte
	for _, b := range name11 {
		sum = (sum<<7 | sum>>1) + b
	}
	return sum
}

func deletedSlotBytes() []byte {
	data := rawShortEntrySlot("OLDNAME", "TXT", AttrArchive, 0, 0)
	data[0] = slotDeleted
	return data
}

// fat16Fixture is the BPB shared by the FAT16 test image: 512-byte
// sectors, 1 sector per cluster, exactly 4085 data clusters (the
// smallest count Load accepts; fewer identify a FAT12 volume).
func fat16FixtureBPB() BPB {
	return BPB{
		BytesPerSector:      512,
		SectorsPerCluster:   1,
		ReservedSectorCount: 1,
		NumFATs:             1,
		RootEntryCount:      16,
		TotalSectors16:      4103,
		FATSize16:           16,
		VolumeLabel:         name83("TESTVOL", ""),
		Variant:             Fat16Style,
	}
}

func writeBPBHeader(img []byte, b BPB) {
	binary.LittleEndian.PutUint16(img[11:13], b.BytesPerSector)
	img[13] = b.SectorsPerCluster
	binary.LittleEndian.PutUint16(img[14:16], b.ReservedSectorCount)
	img[16] = b.NumFATs
	binary.LittleEndian.PutUint16(img[17:19], b.RootEntryCount)
	binary.LittleEndian.PutUint16(img[19:21], b.TotalSectors16)
	binary.LittleEndian.PutUint16(img[22:24], b.FATSize16)
	binary.LittleEndian.PutUint32(img[32:36], b.TotalSectors32)
	if b.Variant == Fat32Style {
		binary.LittleEndian.PutUint32(img[36:40], b.FATSize32)
		binary.LittleEndian.PutUint16(img[40:42], b.FAT32SpecificData.ExtFlags)
		binary.LittleEndian.PutUint16(img[42:44], b.FAT32SpecificData.FSVersion)
		binary.LittleEndian.PutUint32(img[44:48], b.RootCluster)
		binary.LittleEndian.PutUint16(img[48:50], b.FAT32SpecificData.FSInfo)
		binary.LittleEndian.PutUint16(img[50:52], b.FAT32SpecificData.BkBootSector)
		copy(img[52:64], b.FAT32SpecificData.Reserved[:])
		img[64] = b.FAT32SpecificData.BSDriveNumber
		img[66] = b.FAT32SpecificData.BSBootSig
		binary.LittleEndian.PutUint32(img[67:71], b.FAT32SpecificData.BSVolumeID)
		copy(img[71:82], b.VolumeLabel[:])
		copy(img[82:90], b.FAT32SpecificData.BSFileSystemType[:])
	} else {
		copy(img[43:54], b.VolumeLabel[:])
	}
}

func writeFatEntry(img []byte, b BPB, cluster uint32, value uint32) {
	base := int(b.fatRegionStart()) * int(b.BytesPerSector)
	if b.Variant == Fat32Style {
		off := base + int(cluster)*4
		binary.LittleEndian.PutUint32(img[off:off+4], value&0x0FFFFFFF)
		return
	}
	off := base + int(cluster)*2
	binary.LittleEndian.PutUint16(img[off:off+2], uint16(value))
}

func writeCluster(img []byte, b BPB, cluster uint32, data []byte) {
	off := int(b.dataRegionStart())*int(b.BytesPerSector) + int(cluster-2)*int(b.ClusterLength())
	copy(img[off:], data)
}

func writeRootDir(img []byte, b BPB, slots [][]byte) {
	off := int(b.rootRegionStart()) * int(b.BytesPerSector)
	for _, s := range slots {
		copy(img[off:], s)
		off += 32
	}
}

func concatSlots(groups ...[][]byte) [][]byte {
	var out [][]byte
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

const longFileName = "a-very-long-name.txt"

// newFat16Fixture builds:
//
//	/HELLO.TXT          - "hello", single cluster
//	/SUBDIR/            - directory
//	/SUBDIR/A.TXT        - "A", single cluster
//	/a-very-long-name.txt (short name LONGFI~1.TXT) - 600 bytes, two clusters
//	/LOOP.TXT           - a two-cluster FAT cycle, never reaches end-of-chain;
//	                      its declared 4 MiB exceeds the 4085 clusters
//	                      (4085*512 bytes) a reader may visit before
//	                      ErrCorruptChain
//
// plus a deleted slot between HELLO.TXT and SUBDIR that a correct
// reader must skip.
func newFat16Fixture() *FileSystem {
	b := fat16FixtureBPB()
	total := int(b.TotalSectors()) * int(b.BytesPerSector)
	img := make([]byte, total)
	writeBPBHeader(img, b)

	rootSlots := concatSlots(
		[][]byte{rawShortEntrySlot("HELLO", "TXT", AttrArchive, 2, 5)},
		[][]byte{deletedSlotBytes()},
		[][]byte{rawShortEntrySlot("SUBDIR", "", AttrDirectory, 3, 0)},
		rawLfnSlots(longFileName, "LONGFI~1", "TXT"),
		[][]byte{rawShortEntrySlot("LONGFI~1", "TXT", AttrArchive, 5, 600)},
		[][]byte{rawShortEntrySlot("LOOP", "TXT", AttrArchive, 100, 4<<20)},
	)
	writeRootDir(img, b, rootSlots)

	writeCluster(img, b, 2, []byte("hello"))
	writeFatEntry(img, b, 2, 0xFFFF)

	subdirSlots := concatSlots([][]byte{rawShortEntrySlot("A", "TXT", AttrArchive, 4, 1)})
	subdirBuf := make([]byte, b.ClusterLength())
	off := 0
	for _, s := range subdirSlots {
		copy(subdirBuf[off:], s)
		off += 32
	}
	writeCluster(img, b, 3, subdirBuf)
	writeFatEntry(img, b, 3, 0xFFFF)

	writeCluster(img, b, 4, []byte("A"))
	writeFatEntry(img, b, 4, 0xFFFF)

	writeCluster(img, b, 5, bytes.Repeat([]byte("X"), 512))
	writeFatEntry(img, b, 5, 6)
	writeCluster(img, b, 6, bytes.Repeat([]byte("Y"), 88))
	writeFatEntry(img, b, 6, 0xFFFF)

	// LOOP.TXT: clusters 100 and 101 point at each other forever.
	writeFatEntry(img, b, 100, 101)
	writeFatEntry(img, b, 101, 100)

	fs, err := Load(NewImageFromBytes(img))
	if err != nil {
		panic(err)
	}
	return fs
}

// newFat32Fixture builds a minimal FAT32 volume whose root directory
// is itself a one-cluster chain rooted at BPB.RootCluster:
//
//	/FILE32.TXT - "fat32data"
func newFat32Fixture() *FileSystem {
	b := BPB{
		BytesPerSector:      512,
		SectorsPerCluster:   1,
		ReservedSectorCount: 1,
		NumFATs:             1,
		TotalSectors32:      4118,
		FATSize32:           32,
		RootCluster:         2,
		VolumeLabel:         name83("FAT32VOL", ""),
		Variant:             Fat32Style,
	}

	total := int(b.TotalSectors()) * int(b.BytesPerSector)
	img := make([]byte, total)
	writeBPBHeader(img, b)

	rootSlots := [][]byte{rawShortEntrySlot("FILE32", "TXT", AttrArchive, 3, 9)}
	rootBuf := make([]byte, b.ClusterLength())
	off := 0
	for _, s := range rootSlots {
		copy(rootBuf[off:], s)
		off += 32
	}
	writeCluster(img, b, 2, rootBuf)
	writeFatEntry(img, b, 2, 0x0FFFFFFF)

	writeCluster(img, b, 3, []byte("fat32data"))
	writeFatEntry(img, b, 3, 0x0FFFFFFF)

	fs, err := Load(NewImageFromBytes(img))
	if err != nil {
		panic(err)
	}
	return fs
}
