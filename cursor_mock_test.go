package fatfs

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseBPBSurfacesImageReadFailure mirrors aligator-GoFAT's own
// gomock-based file_test.go style: a mocked reader injects an I/O
// failure so the test exercises the wrapping path independent of any
// real backing store.
func TestParseBPBSurfacesImageReadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("disk pulled")
	img := NewMockImage(ctrl)
	img.EXPECT().ReadAt(gomock.Any(), gomock.Any()).Return(0, boom).AnyTimes()

	_, err := parseBPB(img)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidBPB))
	assert.True(t, errors.Is(err, ErrImage))
}

// TestCursorReadSurfacesTruncatedRead covers the short-read branch,
// where ReadAt succeeds but returns fewer bytes than requested.
func TestCursorReadSurfacesTruncatedRead(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	img := NewMockImage(ctrl)
	img.EXPECT().
		ReadAt(gomock.Any(), int64(0)).
		DoAndReturn(func(p []byte, off int64) (int, error) {
			return len(p) - 1, nil
		})

	c := newCursor(img)
	_, err := c.read(4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrImage))
}
