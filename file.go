package fatfs

// FileReader exposes a directory entry's content as a finite,
// pull-based sequence of byte slices truncated to the entry's declared
// size. The last slice is shorter than a full cluster unless size is
// an exact multiple of the cluster length. A size of zero never
// dereferences the head cluster at all.
type FileReader struct {
	it            *chainIterator
	remaining     int64
	clusterLength int64
}

func newFileReader(storage clusterStorage, fat table, head uint32, size uint32, maxDataClusters uint32) *FileReader {
	return &FileReader{
		it:            newChainIterator(storage, fat, head, maxDataClusters),
		remaining:     int64(size),
		clusterLength: int64(storage.clusterLength),
	}
}

// Next returns the next slice of file content, or (nil, nil) once
// exactly `size` bytes have been yielded. Clusters beyond the declared
// size are never fetched.
func (r *FileReader) Next() ([]byte, error) {
	if r.remaining <= 0 {
		return nil, nil
	}

	payload, err := r.it.Next()
	if err != nil {
		return nil, err
	}
	if payload == nil {
		// The chain ended before the declared size was reached; the
		// volume disagrees with its own directory entry. Report what
		// exists rather than fabricate zero bytes.
		r.remaining = 0
		return nil, nil
	}

	if int64(len(payload)) > r.remaining {
		payload = payload[:r.remaining]
	}
	r.remaining -= int64(len(payload))
	return payload, nil
}

// ReadAll drains the reader into a single contiguous buffer.
func (r *FileReader) ReadAll() ([]byte, error) {
	var out []byte
	for {
		chunk, err := r.Next()
		if err != nil {
			return out, err
		}
		if chunk == nil {
			return out, nil
		}
		out = append(out, chunk...)
	}
}
