// Package dataset loads image sets for VAE training and serves them as
// batches of [0, 1] intensities.
package dataset

import (
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/born-ml/vae/internal/vae"
)

// DefaultValidationSize is the number of training images held out for
// validation by Load.
const DefaultValidationSize = 10000

// MNIST image file names, looked up with and without a .gz suffix.
const (
	trainImages = "train-images-idx3-ubyte"
	testImages  = "t10k-images-idx3-ubyte"
)

// Set is an in-memory collection of equally sized examples.
type Set struct {
	n    int
	dim  int
	data []float64 // row-major [n, dim]
}

func newSet(n, dim int) *Set {
	return &Set{n: n, dim: dim, data: make([]float64, n*dim)}
}

// FromMatrix wraps a copy of m as a set.
func FromMatrix(m *vae.Matrix) *Set {
	s := newSet(m.Rows, m.Cols)
	copy(s.data, m.Data)
	return s
}

// Len returns the number of examples.
func (s *Set) Len() int { return s.n }

// Dim returns the size of one example.
func (s *Set) Dim() int { return s.dim }

// Example returns a view of example i.
func (s *Set) Example(i int) []float64 {
	return s.data[i*s.dim : (i+1)*s.dim]
}

// Slice returns a view of examples [lo, hi).
func (s *Set) Slice(lo, hi int) *Set {
	return &Set{n: hi - lo, dim: s.dim, data: s.data[lo*s.dim : hi*s.dim]}
}

// Matrix copies examples [lo, hi) into a batch.
func (s *Set) Matrix(lo, hi int) *vae.Matrix {
	m := vae.NewMatrix(hi-lo, s.dim)
	copy(m.Data, s.data[lo*s.dim:hi*s.dim])
	return m
}

// Batches yields full batches of size examples in an order shuffled by rng.
// A trailing partial batch is dropped. A nil rng keeps the stored order.
func (s *Set) Batches(size int, rng *rand.Rand) iter.Seq[*vae.Matrix] {
	return func(yield func(*vae.Matrix) bool) {
		if size <= 0 {
			return
		}
		order := make([]int, s.n)
		for i := range order {
			order[i] = i
		}
		if rng != nil {
			rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		for lo := 0; lo+size <= s.n; lo += size {
			m := vae.NewMatrix(size, s.dim)
			for r, idx := range order[lo : lo+size] {
				copy(m.Row(r), s.Example(idx))
			}
			if !yield(m) {
				return
			}
		}
	}
}

// Chunks yields the set in stored order in batches of at most size
// examples; the last chunk may be smaller.
func (s *Set) Chunks(size int) iter.Seq[*vae.Matrix] {
	return func(yield func(*vae.Matrix) bool) {
		if size <= 0 {
			return
		}
		for lo := 0; lo < s.n; lo += size {
			if !yield(s.Matrix(lo, min(lo+size, s.n))) {
				return
			}
		}
	}
}

// Splits holds disjoint train, validation and test sets.
type Splits struct {
	Train      *Set
	Validation *Set
	Test       *Set
}

// Load reads the MNIST training and test image files from dir and holds out
// the last validationSize training images for validation. Files may be
// gzip-compressed with a .gz suffix.
func Load(dir string, validationSize int) (*Splits, error) {
	train, err := ReadIDXImages(locate(dir, trainImages))
	if err != nil {
		return nil, fmt.Errorf("failed to load training images: %w", err)
	}
	test, err := ReadIDXImages(locate(dir, testImages))
	if err != nil {
		return nil, fmt.Errorf("failed to load test images: %w", err)
	}
	return Split(train, test, validationSize)
}

// Split carves the last validationSize examples of train into a
// validation set.
func Split(train, test *Set, validationSize int) (*Splits, error) {
	if validationSize < 0 || validationSize >= train.Len() {
		return nil, fmt.Errorf("dataset: validation size %d out of range for %d training examples", validationSize, train.Len())
	}
	if train.Dim() != test.Dim() {
		return nil, fmt.Errorf("dataset: train dim %d != test dim %d", train.Dim(), test.Dim())
	}
	cut := train.Len() - validationSize
	return &Splits{
		Train:      train.Slice(0, cut),
		Validation: train.Slice(cut, train.Len()),
		Test:       test,
	}, nil
}

// locate prefers the uncompressed file and falls back to name.gz.
func locate(dir, name string) string {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if _, gzErr := os.Stat(path + ".gz"); gzErr == nil {
			return path + ".gz"
		}
	}
	return path
}

// Synthetic generates n images of dim pixels: a bright bar of random
// position and length over a faint background. Identical seeds give
// identical sets.
func Synthetic(n, dim int, rng *rand.Rand) *Set {
	s := newSet(n, dim)
	for i := 0; i < n; i++ {
		row := s.Example(i)
		for j := range row {
			row[j] = 0.05 * rng.Float64()
		}
		length := max(1, dim/8+rng.IntN(max(1, dim/4)))
		start := rng.IntN(max(1, dim-length+1))
		for j := start; j < min(start+length, dim); j++ {
			row[j] = 0.8 + 0.2*rng.Float64()
		}
	}
	return s
}

// SyntheticSplits builds train, validation and test sets with Synthetic.
func SyntheticSplits(train, validation, test, dim int, rng *rand.Rand) *Splits {
	return &Splits{
		Train:      Synthetic(train, dim, rng),
		Validation: Synthetic(validation, dim, rng),
		Test:       Synthetic(test, dim, rng),
	}
}
