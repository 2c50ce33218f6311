package fatfs

import "github.com/gofatfs/fatfs/checkpoint"

// clusterStorage maps a cluster number to the raw bytes of that
// cluster within the data region. Cluster numbering starts at 2;
// clusters 0 and 1 are reserved and must not be fetched.
type clusterStorage struct {
	c             cursor
	clusterLength uint32
}

func newClusterStorage(img Image, bpb BPB) clusterStorage {
	dataStart := int64(bpb.dataRegionStart()) * int64(bpb.BytesPerSector)
	return clusterStorage{
		c:             newCursor(img).plus(dataStart),
		clusterLength: bpb.ClusterLength(),
	}
}

// fetch returns the bytes of cluster n. n < 2 is a programmer error.
func (s clusterStorage) fetch(n uint32) ([]byte, error) {
	if n < 2 {
		return nil, checkpoint.From(ErrInvalidCluster)
	}
	offset := int64(n-2) * int64(s.clusterLength)
	b, err := s.c.plus(offset).read(int(s.clusterLength))
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrInvalidCluster)
	}
	return b, nil
}

// chainIterator yields successive cluster payloads starting from a
// head cluster until the FAT's end-of-chain sentinel is reached. It is
// pull-based: Next advances one step per call, and a fresh iterator
// can always be created from the same head (restartability).
type chainIterator struct {
	storage clusterStorage
	fat     table
	maxHops uint32

	current uint32
	hops    uint32
	done    bool
	started bool
}

// newChainIterator bounds iteration by maxDataClusters, the total
// number of data clusters on the volume, so a cycle caused by a
// damaged FAT is reported as ErrCorruptChain instead of looping
// forever.
func newChainIterator(storage clusterStorage, fat table, head uint32, maxDataClusters uint32) *chainIterator {
	return &chainIterator{
		storage: storage,
		fat:     fat,
		maxHops: maxDataClusters,
		current: head,
	}
}

// Next returns the next cluster's payload, or (nil, nil) once the
// chain is exhausted. It reports ErrCorruptChain if more clusters are
// visited than exist on the volume.
func (it *chainIterator) Next() ([]byte, error) {
	if it.done {
		return nil, nil
	}

	if !it.started {
		it.started = true
		payload, err := it.storage.fetch(it.current)
		if err != nil {
			return nil, err
		}
		return payload, nil
	}

	if it.hops >= it.maxHops {
		return nil, checkpoint.From(ErrCorruptChain)
	}

	next, err := it.fat.next(it.current)
	if err != nil {
		return nil, err
	}
	if it.fat.isEnd(next) {
		it.done = true
		return nil, nil
	}

	it.current = next
	it.hops++

	payload, err := it.storage.fetch(it.current)
	if err != nil {
		return nil, err
	}
	return payload, nil
}
