// Package flatarray provides FlatArray, a flattened two-dimensional
// container: one contiguous data slice plus a row-limit index. It is a
// compact alternative to [][]T when many small rows are built
// incrementally, e.g. per-partition result buckets filled by pool tasks.
//
// FlatArray is plain data with no concurrency behavior. When shared
// between tasks, each task must own disjoint rows or the caller must
// synchronize externally.
package flatarray

// FlatArray stores rows back to back in one slice. limits[i] is the
// start offset of row i; limits always has one more entry than there
// are rows, and limits[len(limits)-1] == len(data).
type FlatArray[T any] struct {
	data   []T
	limits []int
}

// New returns an empty FlatArray with zero rows.
func New[T any]() *FlatArray[T] {
	return &FlatArray[T]{limits: []int{0}}
}

// PushBack appends one element to the current (last) row.
func (f *FlatArray[T]) PushBack(x T) {
	f.data = append(f.data, x)
	f.limits[len(f.limits)-1]++
}

// PushBackRow appends a whole new row copied from row.
func (f *FlatArray[T]) PushBackRow(row []T) {
	f.data = append(f.data, row...)
	f.limits = append(f.limits, f.limits[len(f.limits)-1]+len(row))
}

// Next starts a new empty row; subsequent PushBack calls fill it.
func (f *FlatArray[T]) Next() {
	f.limits = append(f.limits, f.limits[len(f.limits)-1])
}

// PopBack removes the last row. Panics if the array has no rows.
func (f *FlatArray[T]) PopBack() {
	f.limits = f.limits[:len(f.limits)-1]
	f.data = f.data[:f.limits[len(f.limits)-1]]
}

// Clear removes all rows and data, keeping capacity.
func (f *FlatArray[T]) Clear() {
	f.data = f.data[:0]
	f.limits = append(f.limits[:0], 0)
}

// Len returns the number of rows.
func (f *FlatArray[T]) Len() int {
	return len(f.limits) - 1
}

// DataLen returns the total number of stored elements across all rows.
func (f *FlatArray[T]) DataLen() int {
	return len(f.data)
}

// Row returns row i as a subslice sharing the backing array. The slice
// is invalidated by any subsequent append to the FlatArray.
func (f *FlatArray[T]) Row(i int) []T {
	return f.data[f.limits[i]:f.limits[i+1]]
}

// Count returns the number of elements in row i.
func (f *FlatArray[T]) Count(i int) int {
	return f.limits[i+1] - f.limits[i]
}

// Reserve grows the backing storage to hold at least rows rows and
// dataLen total elements without reallocating.
func (f *FlatArray[T]) Reserve(rows, dataLen int) {
	if cap(f.data) < dataLen {
		d := make([]T, len(f.data), dataLen)
		copy(d, f.data)
		f.data = d
	}
	if cap(f.limits) < rows+1 {
		l := make([]int, len(f.limits), rows+1)
		copy(l, f.limits)
		f.limits = l
	}
}
