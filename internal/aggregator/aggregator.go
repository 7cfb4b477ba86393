package aggregator

import (
	"sort"

	"github.com/aclements/go-moremath/stats"

	"enforcement-insights-go/internal/types"
)

// Reducer selects how one numeric field of a group is reduced.
type Reducer int

const (
	Sum Reducer = iota
	Mean
)

// Reduction picks a reducer per counted field.
type Reduction struct {
	Fines   Reducer
	Arrests Reducer
	Charges Reducer
}

var (
	SumAll  = Reduction{Fines: Sum, Arrests: Sum, Charges: Sum}
	MeanAll = Reduction{Fines: Mean, Arrests: Mean, Charges: Mean}
)

// Bucket is the reduction of every record sharing one Key.
type Bucket struct {
	Key            Key     `json:"key"`
	Count          int     `json:"count"`
	Fines          float64 `json:"fines"`
	Arrests        float64 `json:"arrests"`
	Charges        float64 `json:"charges"`
	ArrestsPerFine float64 `json:"arrests_per_fine"`
	ChargesPerFine float64 `json:"charges_per_fine"`
	SevereShare    float64 `json:"severe_share"`
	FinesShare     float64 `json:"fines_share"`
}

func (b Bucket) Severe() float64 {
	return b.Arrests + b.Charges
}

func (b Bucket) Total() float64 {
	return b.Fines + b.Arrests + b.Charges
}

// Ratio divides num by den; a zero denominator yields 0 so views stay renderable.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Buckets is an insertion-ordered, read-only mapping from Key to Bucket.
type Buckets struct {
	order   []Key
	byKey   map[Key]Bucket
	members map[Key][]int
	skipped int
}

func (b *Buckets) Len() int {
	return len(b.order)
}

// Keys returns keys in order of first occurrence.
func (b *Buckets) Keys() []Key {
	return append([]Key(nil), b.order...)
}

func (b *Buckets) Get(k Key) (Bucket, bool) {
	v, ok := b.byKey[k]
	return v, ok
}

// All returns buckets in order of first occurrence.
func (b *Buckets) All() []Bucket {
	out := make([]Bucket, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, b.byKey[k])
	}
	return out
}

// Sorted returns a copy of the buckets ordered by less; ties keep insertion order.
func (b *Buckets) Sorted(less func(a, c Bucket) bool) []Bucket {
	out := b.All()
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Members returns the input indexes that were reduced into k.
func (b *Buckets) Members(k Key) []int {
	return append([]int(nil), b.members[k]...)
}

// Skipped is the number of input records the key function declined to key.
func (b *Buckets) Skipped() int {
	return b.skipped
}

// Totals reduces every bucket into one, summing the bucket values.
func (b *Buckets) Totals() Bucket {
	var t Bucket
	for _, k := range b.order {
		v := b.byKey[k]
		t.Count += v.Count
		t.Fines += v.Fines
		t.Arrests += v.Arrests
		t.Charges += v.Charges
	}
	withRatios(&t)
	return t
}

type accumulator struct {
	idx                     []int
	fines, arrests, charges []float64
}

// Aggregate groups records by keyFn and reduces each group with red.
// Records keyFn declines are counted in Skipped and belong to no bucket.
func Aggregate(records []types.EnforcementRecord, keyFn KeyFunc, red Reduction) *Buckets {
	out := &Buckets{
		byKey:   map[Key]Bucket{},
		members: map[Key][]int{},
	}
	accs := map[Key]*accumulator{}
	for i, r := range records {
		k, ok := keyFn(r)
		if !ok {
			out.skipped++
			continue
		}
		acc, seen := accs[k]
		if !seen {
			acc = &accumulator{}
			accs[k] = acc
			out.order = append(out.order, k)
		}
		acc.idx = append(acc.idx, i)
		acc.fines = append(acc.fines, float64(r.Fines))
		acc.arrests = append(acc.arrests, float64(r.Arrests))
		acc.charges = append(acc.charges, float64(r.Charges))
	}
	for _, k := range out.order {
		acc := accs[k]
		b := Bucket{
			Key:     k,
			Count:   len(acc.idx),
			Fines:   reduce(red.Fines, acc.fines),
			Arrests: reduce(red.Arrests, acc.arrests),
			Charges: reduce(red.Charges, acc.charges),
		}
		withRatios(&b)
		out.byKey[k] = b
		out.members[k] = acc.idx
	}
	return out
}

func reduce(r Reducer, xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	if r == Mean {
		return stats.Mean(xs)
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func withRatios(b *Bucket) {
	b.ArrestsPerFine = Ratio(b.Arrests, b.Fines)
	b.ChargesPerFine = Ratio(b.Charges, b.Fines)
	b.SevereShare = Ratio(b.Severe(), b.Total())
	b.FinesShare = Ratio(b.Fines, b.Total())
}
