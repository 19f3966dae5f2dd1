package stats

import (
	"math"

	"golang.org/x/exp/constraints"
)

type number interface {
	constraints.Integer | constraints.Float
}

// Stats accumulates samples and lazily maintains their mean, variance,
// minimum and maximum. Derived values are memoized on the sample count and
// only recomputed on the first read after a push.
type Stats[T number] struct {
	data []T

	lastMeanCount     int
	lastVarianceCount int
	lastMinMaxCount   int

	mean     T
	variance T
	min      T
	max      T
}

func New[T number]() *Stats[T] {
	return &Stats[T]{}
}

func (s *Stats[T]) Push(sample T) {
	s.data = append(s.data, sample)
}

func (s *Stats[T]) Count() int {
	return len(s.data)
}

func (s *Stats[T]) Mean() T {
	if len(s.data) == 0 {
		return 0
	}
	if s.lastMeanCount != len(s.data) {
		s.lastMeanCount = len(s.data)
		var sum T
		for _, sample := range s.data {
			sum += sample
		}
		s.mean = sum / T(len(s.data))
	}
	return s.mean
}

func (s *Stats[T]) Variance() T {
	if len(s.data) == 0 {
		return 0
	}
	if s.lastVarianceCount != len(s.data) {
		s.lastVarianceCount = len(s.data)
		mean := s.Mean()
		s.variance = 0
		for _, sample := range s.data {
			diff := sample - mean
			s.variance += diff * diff
		}
		s.variance /= T(len(s.data))
	}
	return s.variance
}

func (s *Stats[T]) StdDev() float64 {
	return math.Sqrt(float64(s.Variance()))
}

func (s *Stats[T]) Min() T {
	s.refreshMinMax()
	return s.min
}

func (s *Stats[T]) Max() T {
	s.refreshMinMax()
	return s.max
}

func (s *Stats[T]) refreshMinMax() {
	if s.lastMinMaxCount == len(s.data) {
		return
	}
	s.lastMinMaxCount = len(s.data)
	s.min = 0
	s.max = 0
	if len(s.data) == 0 {
		return
	}
	s.min = s.data[0]
	s.max = s.data[0]
	for _, sample := range s.data[1:] {
		s.min = min(s.min, sample)
		s.max = max(s.max, sample)
	}
}
