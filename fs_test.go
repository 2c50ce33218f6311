package fatfs

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRejectsTooSmallAVolume(t *testing.T) {
	b := fat16FixtureBPB()
	b.TotalSectors16 = uint16(int(b.ReservedSectorCount) + int(b.NumFATs)*int(b.FATSize16) + int(b.rootDirSectors()) + 1)
	img := make([]byte, int(b.TotalSectors())*int(b.BytesPerSector))
	writeBPBHeader(img, b)

	_, err := Load(NewImageFromBytes(img))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotSupported))
}

func TestLoadRejectsInvalidBPB(t *testing.T) {
	_, err := Load(NewImageFromBytes(make([]byte, 512)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidBPB))
}

func TestFileSystemVariantAndLabel(t *testing.T) {
	fs16 := newFat16Fixture()
	assert.Equal(t, Fat16Style, fs16.Variant())
	assert.Equal(t, "TESTVOL", fs16.Label())

	fs32 := newFat32Fixture()
	assert.Equal(t, Fat32Style, fs32.Variant())
	assert.Equal(t, "FAT32VOL", fs32.Label())
}

func TestFindResolvesNestedPathEitherSeparator(t *testing.T) {
	fs := newFat16Fixture()

	forward, err := fs.Find("SUBDIR/A.TXT", fs.Root())
	require.NoError(t, err)
	assert.Equal(t, "A.TXT", forward.Name)

	backward, err := fs.Find(`SUBDIR\A.TXT`, fs.Root())
	require.NoError(t, err)
	assert.Equal(t, "A.TXT", backward.Name)
}

func TestFindIsCaseInsensitive(t *testing.T) {
	fs := newFat16Fixture()
	entry, err := fs.Find("hello.txt", fs.Root())
	require.NoError(t, err)
	assert.Equal(t, "HELLO.TXT", entry.Name)
}

func TestFindReportsNotFound(t *testing.T) {
	fs := newFat16Fixture()
	_, err := fs.Find("NOPE.TXT", fs.Root())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFindReportsNotADirectoryForNonTerminalFileComponent(t *testing.T) {
	fs := newFat16Fixture()
	_, err := fs.Find("HELLO.TXT/X", fs.Root())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotADirectory))
}

func TestFindRejectsEmptyPath(t *testing.T) {
	fs := newFat16Fixture()
	_, err := fs.Find("", fs.Root())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPath))
}

func TestListFiltersVolumeLabel(t *testing.T) {
	b := fat16FixtureBPB()
	total := int(b.TotalSectors()) * int(b.BytesPerSector)
	img := make([]byte, total)
	writeBPBHeader(img, b)

	rootSlots := concatSlots(
		[][]byte{rawShortEntrySlot("TESTVOL", "", AttrVolumeLabel, 0, 0)},
		[][]byte{rawShortEntrySlot("HELLO", "TXT", AttrArchive, 2, 5)},
	)
	writeRootDir(img, b, rootSlots)
	writeCluster(img, b, 2, []byte("hello"))
	writeFatEntry(img, b, 2, 0xFFFF)

	fs, err := Load(NewImageFromBytes(img))
	require.NoError(t, err)

	// The raw reader still surfaces the volume label, on-disk order
	// preserved.
	raw, err := fs.Root().ReadAll()
	require.NoError(t, err)
	require.Len(t, raw, 2)
	assert.True(t, raw[0].Flags.VolumeLabel)

	// List hides it.
	listed, err := fs.List(fs.Root())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "HELLO.TXT", listed[0].Name)
}

func TestCopyOutStreamsFullContent(t *testing.T) {
	fs := newFat16Fixture()
	entry, err := fs.Find("a-very-long-name.txt", fs.Root())
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := fs.CopyOut(entry, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(600), n)
	assert.Equal(t, 600, buf.Len())
}
