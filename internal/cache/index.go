package cache

import "sort"

// Neighbor is one nearest-neighbor hit: the slot of the stored vector
// and its squared Euclidean distance from the query.
type Neighbor struct {
	Slot     int
	Distance float32
}

// flatIndex stores fixed-dimension vectors and answers nearest-neighbor
// queries by squared Euclidean distance with a linear scan. Slots are
// append-only: a vector's slot is permanent for the lifetime of the
// in-memory structure. Correctness, not speed, is the contract; stores
// are expected to hold at most a few thousand vectors.
type flatIndex struct {
	dimensions int
	vectors    [][]float32
}

func newFlatIndex(dimensions int) *flatIndex {
	return &flatIndex{dimensions: dimensions}
}

// Size returns the number of stored vectors.
func (idx *flatIndex) Size() int {
	return len(idx.vectors)
}

// Insert appends a vector and returns its slot.
func (idx *flatIndex) Insert(vec []float32) int {
	idx.vectors = append(idx.vectors, vec)
	return len(idx.vectors) - 1
}

// Query returns up to k nearest vectors to the query, ascending by
// distance. Ties keep insertion order. The caller must clamp k to the
// index size; an empty index returns an empty result.
func (idx *flatIndex) Query(query []float32, k int) []Neighbor {
	if len(idx.vectors) == 0 || k <= 0 {
		return nil
	}

	neighbors := make([]Neighbor, len(idx.vectors))
	for i, vec := range idx.vectors {
		neighbors[i] = Neighbor{Slot: i, Distance: squaredDistance(query, vec)}
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})

	if k < len(neighbors) {
		neighbors = neighbors[:k]
	}
	return neighbors
}

// squaredDistance computes the squared Euclidean distance between two
// vectors. Skipping the square root preserves ordering and avoids the
// extra work on every comparison.
func squaredDistance(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
