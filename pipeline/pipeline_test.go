package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"testing"

	lqerrors "github.com/kbukum/lazyq/errors"
)

func TestFromSlice_Collect(t *testing.T) {
	p := FromSlice([]int{1, 2, 3})
	got, err := Collect(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{1, 2, 3}
	if !intSliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFromSlice_Empty(t *testing.T) {
	p := FromSlice([]int{})
	got, err := Collect(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestFromSlice_Restartable(t *testing.T) {
	p := Map(FromSlice([]int{1, 2}), func(_ context.Context, n int) (int, error) { return n + 1, nil })
	ctx := context.Background()
	first, _ := Collect(ctx, p)
	second, _ := Collect(ctx, p)
	if !intSliceEqual(first, second) || !intSliceEqual(first, []int{2, 3}) {
		t.Errorf("traversals differ: %v vs %v", first, second)
	}
}

func TestFrom_Iterator(t *testing.T) {
	it := &sliceIter[string]{items: []string{"a", "b"}}
	p := From[string](it)
	got, err := Collect(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got %v, want [a b]", got)
	}
}

func TestGenerate(t *testing.T) {
	p := Generate(func() func(context.Context) (int, bool, error) {
		n := 0
		return func(context.Context) (int, bool, error) {
			n++
			return n, n <= 3, nil
		}
	})
	ctx := context.Background()
	for range 2 {
		got, err := Collect(ctx, p)
		if err != nil {
			t.Fatal(err)
		}
		if !intSliceEqual(got, []int{1, 2, 3}) {
			t.Errorf("got %v, want [1 2 3]", got)
		}
	}
}

func TestGenerate_StopsAfterEnd(t *testing.T) {
	calls := 0
	p := Generate(func() func(context.Context) (int, bool, error) {
		return func(context.Context) (int, bool, error) {
			calls++
			return 0, false, nil
		}
	})
	ctx := context.Background()
	it := p.Iter(ctx)
	defer it.Close()
	for range 3 {
		if _, ok, err := it.Next(ctx); ok || err != nil {
			t.Fatalf("expected exhaustion, got ok=%v err=%v", ok, err)
		}
	}
	if calls != 1 {
		t.Errorf("step called %d times after end, want 1", calls)
	}
}

func TestGenerate_Error(t *testing.T) {
	boom := errors.New("boom")
	p := Generate(func() func(context.Context) (int, bool, error) {
		return func(context.Context) (int, bool, error) { return 0, false, boom }
	})
	_, err := Collect(context.Background(), p)
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestFromSeq(t *testing.T) {
	produced := 0
	var seq iter.Seq[int] = func(yield func(int) bool) {
		for i := 1; i <= 100; i++ {
			produced++
			if !yield(i) {
				return
			}
		}
	}
	got, err := Collect(context.Background(), Take(FromSeq(seq), 2))
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{1, 2}) {
		t.Errorf("got %v, want [1 2]", got)
	}
	if produced != 2 {
		t.Errorf("sequence produced %d values, want 2", produced)
	}
}

func TestMap(t *testing.T) {
	p := FromSlice([]int{1, 2, 3})
	doubled := Map(p, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})
	got, err := Collect(context.Background(), doubled)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{2, 4, 6}
	if !intSliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMap_Error(t *testing.T) {
	bad := errors.New("bad value")
	p := FromSlice([]int{1, 2, 3})
	fail := Map(p, func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, bad
		}
		return n, nil
	})
	got, err := Collect(context.Background(), fail)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, bad) {
		t.Errorf("expected cause to be preserved, got %v", err)
	}
	appErr, ok := lqerrors.AsAppError(err)
	if !ok || appErr.Code != lqerrors.ErrCodeStageFailed {
		t.Fatalf("expected STAGE_FAILED, got %v", err)
	}
	if appErr.Details["stage"] != StageMap || appErr.Details["index"] != 1 {
		t.Errorf("unexpected details %v", appErr.Details)
	}
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("expected [1] before error, got %v", got)
	}
}

func TestMap_TypeConversion(t *testing.T) {
	p := FromSlice([]int{1, 2, 3})
	strs := Map(p, func(_ context.Context, n int) (string, error) {
		return fmt.Sprintf("#%d", n), nil
	})
	got, err := Collect(context.Background(), strs)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"#1", "#2", "#3"}
	if !strSliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFlatMap(t *testing.T) {
	p := FromSlice([]int{1, 2, 3})
	expanded := FlatMap(p, func(_ context.Context, n int) (*Pipeline[int], error) {
		return FromSlice([]int{n, n * 10}), nil
	})
	got, err := Collect(context.Background(), expanded)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{1, 10, 2, 20, 3, 30}
	if !intSliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFlatMap_EmptyInner(t *testing.T) {
	p := FromSlice([]int{1, 2, 3})
	expanded := FlatMap(p, func(_ context.Context, n int) (*Pipeline[int], error) {
		if n == 2 {
			return FromSlice[int](nil), nil
		}
		return FromSlice([]int{n}), nil
	})
	got, err := Collect(context.Background(), expanded)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{1, 3}
	if !intSliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFlatMap_Error(t *testing.T) {
	p := FromSlice([]int{1, 2})
	expanded := FlatMap(p, func(_ context.Context, n int) (*Pipeline[int], error) {
		return nil, errors.New("no inner")
	})
	_, err := Collect(context.Background(), expanded)
	if !lqerrors.IsCode(err, lqerrors.ErrCodeStageFailed) {
		t.Errorf("expected STAGE_FAILED, got %v", err)
	}
}

func TestFilter(t *testing.T) {
	p := FromSlice([]int{1, 2, 3, 4, 5, 6})
	evens := Where(p, func(n int) bool { return n%2 == 0 })
	got, err := Collect(context.Background(), evens)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{2, 4, 6}
	if !intSliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFilter_None(t *testing.T) {
	p := FromSlice([]int{1, 3, 5})
	evens := Where(p, func(n int) bool { return n%2 == 0 })
	got, err := Collect(context.Background(), evens)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestTap(t *testing.T) {
	var tapped []int
	p := FromSlice([]int{1, 2, 3})
	observed := Tap(p, func(_ context.Context, n int) error {
		tapped = append(tapped, n)
		return nil
	})
	got, err := Collect(context.Background(), observed)
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{1, 2, 3}) {
		t.Errorf("values should pass through unchanged, got %v", got)
	}
	if !intSliceEqual(tapped, []int{1, 2, 3}) {
		t.Errorf("tap should see all values, got %v", tapped)
	}
}

func TestTap_Error(t *testing.T) {
	p := FromSlice([]int{1, 2, 3})
	failing := Tap(p, func(_ context.Context, n int) error {
		if n == 2 {
			return errors.New("tap failed")
		}
		return nil
	})
	_, err := Collect(context.Background(), failing)
	if err == nil || !strings.Contains(err.Error(), "tap failed") {
		t.Errorf("expected tap error, got %v", err)
	}
}

func TestSkip(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want []int
	}{
		{"skip none", 0, []int{1, 2, 3}},
		{"skip header", 1, []int{2, 3}},
		{"skip all", 3, []int{}},
		{"skip past end", 10, []int{}},
		{"negative", -1, []int{1, 2, 3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Collect(context.Background(), Skip(FromSlice([]int{1, 2, 3}), tc.n))
			if err != nil {
				t.Fatal(err)
			}
			if !intSliceEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestReduce(t *testing.T) {
	p := FromSlice([]int{1, 2, 3, 4, 5})
	sum := Reduce(p, 0, func(acc, n int) int { return acc + n })
	got, err := Collect(context.Background(), sum)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != 15 {
		t.Errorf("expected [15], got %v", got)
	}
}

func TestReduce_Empty(t *testing.T) {
	p := FromSlice([]int{})
	sum := Reduce(p, 42, func(acc, n int) int { return acc + n })
	got, err := Collect(context.Background(), sum)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != 42 {
		t.Errorf("expected [42] (initial value), got %v", got)
	}
}

func TestConcat(t *testing.T) {
	a := FromSlice([]int{1, 2})
	b := FromSlice([]int{3, 4})
	c := FromSlice([]int{5})
	combined := Concat(a, b, c)
	got, err := Collect(context.Background(), combined)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{1, 2, 3, 4, 5}
	if !intSliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestConcat_LazySecondSource(t *testing.T) {
	var src countingSource[int]
	combined := Concat(FromSlice([]int{1}), src.pipeline([]int{2, 3}))
	got, err := Collect(context.Background(), Take(combined, 1))
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{1}) {
		t.Errorf("got %v, want [1]", got)
	}
	if src.opened != 0 || src.pulls != 0 {
		t.Errorf("second source touched: opened=%d pulls=%d", src.opened, src.pulls)
	}
}

func TestDrain_Run(t *testing.T) {
	var collected []int
	p := FromSlice([]int{1, 2, 3})
	r := Drain(p, func(_ context.Context, n int) error {
		collected = append(collected, n)
		return nil
	})
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(collected, []int{1, 2, 3}) {
		t.Errorf("got %v, want [1 2 3]", collected)
	}
}

func TestForEach(t *testing.T) {
	var sum int
	p := FromSlice([]int{1, 2, 3})
	err := ForEach(context.Background(), p, func(_ context.Context, n int) error {
		sum += n
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if sum != 6 {
		t.Errorf("sum = %d, want 6", sum)
	}
}

func TestCount_TraversesEachCall(t *testing.T) {
	var src countingSource[int]
	p := Where(src.pipeline([]int{2005, 1980, 2010}), func(y int) bool { return y > 2000 })
	ctx := context.Background()
	for range 2 {
		n, err := Count(ctx, p)
		if err != nil {
			t.Fatal(err)
		}
		if n != 2 {
			t.Errorf("count = %d, want 2", n)
		}
	}
	if src.pulls != 6 {
		t.Errorf("pulls = %d, want 6 (two full traversals)", src.pulls)
	}
}

func TestFirst(t *testing.T) {
	var src countingSource[int]
	val, ok, err := First(context.Background(), src.pipeline([]int{7, 8, 9}))
	if err != nil || !ok || val != 7 {
		t.Errorf("First = %d, %v, %v", val, ok, err)
	}
	if src.pulls != 1 {
		t.Errorf("pulls = %d, want 1", src.pulls)
	}
	_, ok, err = First(context.Background(), FromSlice([]int{}))
	if ok || err != nil {
		t.Errorf("First on empty: ok=%v err=%v", ok, err)
	}
}

func TestAny(t *testing.T) {
	isEven := func(_ context.Context, n int) (bool, error) { return n%2 == 0, nil }
	tests := []struct {
		name      string
		items     []int
		want      bool
		wantPulls int
	}{
		{"stops at first match", []int{1, 3, 4, 5, 6}, true, 3},
		{"no match", []int{1, 3, 5}, false, 3},
		{"empty", nil, false, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var src countingSource[int]
			got, err := Any(context.Background(), src.pipeline(tc.items), isEven)
			if err != nil || got != tc.want {
				t.Fatalf("Any = %v, %v; want %v", got, err, tc.want)
			}
			if src.pulls != tc.wantPulls {
				t.Errorf("pulls = %d, want %d", src.pulls, tc.wantPulls)
			}
		})
	}
}

func TestEvery(t *testing.T) {
	positive := func(_ context.Context, n int) (bool, error) { return n > 0, nil }
	tests := []struct {
		name      string
		items     []int
		want      bool
		wantPulls int
	}{
		{"stops at first miss", []int{4, 2, -1, 7, 9}, false, 3},
		{"all match", []int{1, 2, 3}, true, 3},
		{"empty", nil, true, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var src countingSource[int]
			got, err := Every(context.Background(), src.pipeline(tc.items), positive)
			if err != nil || got != tc.want {
				t.Fatalf("Every = %v, %v; want %v", got, err, tc.want)
			}
			if src.pulls != tc.wantPulls {
				t.Errorf("pulls = %d, want %d", src.pulls, tc.wantPulls)
			}
		})
	}
}

func TestAnyEvery_PredicateError(t *testing.T) {
	boom := errors.New("boom")
	failOnThird := func(_ context.Context, n int) (bool, error) {
		if n == 3 {
			return false, boom
		}
		return false, nil
	}
	p := FromSlice([]int{1, 2, 3, 4})

	if got, err := Any(context.Background(), p, failOnThird); got || !errors.Is(err, boom) {
		t.Errorf("Any = %v, %v; want false and the predicate error", got, err)
	}
	_, err := Every(context.Background(), p, func(ctx context.Context, n int) (bool, error) {
		ok, err := failOnThird(ctx, n)
		return !ok, err
	})
	appErr, ok := lqerrors.AsAppError(err)
	if !ok || appErr.Code != lqerrors.ErrCodeStageFailed || appErr.Details["stage"] != StageEvery || appErr.Details["index"] != 2 {
		t.Errorf("expected STAGE_FAILED at every/2, got %v", err)
	}
}

func TestSources_HonorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sources := map[string]*Pipeline[int]{
		"slice": FromSlice([]int{1, 2}),
		"generate": Generate(func() func(context.Context) (int, bool, error) {
			return func(context.Context) (int, bool, error) { return 1, true, nil }
		}),
		"seq": FromSeq(func(yield func(int) bool) { yield(1) }),
	}
	for name, p := range sources {
		t.Run(name, func(t *testing.T) {
			got, err := Collect(ctx, p)
			if !errors.Is(err, context.Canceled) || len(got) != 0 {
				t.Errorf("Collect = %v, %v; want context.Canceled", got, err)
			}
		})
	}
}

func TestAll(t *testing.T) {
	var got []int
	for v, err := range All(context.Background(), FromSlice([]int{1, 2, 3})) {
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v)
		if v == 2 {
			break
		}
	}
	if !intSliceEqual(got, []int{1, 2}) {
		t.Errorf("got %v, want [1 2]", got)
	}
}

func TestAll_YieldsError(t *testing.T) {
	p := Filter(FromSlice([]int{1}), func(context.Context, int) (bool, error) {
		return false, errors.New("nope")
	})
	var errs int
	for _, err := range All(context.Background(), p) {
		if err != nil {
			errs++
		}
	}
	if errs != 1 {
		t.Errorf("expected exactly one error, got %d", errs)
	}
}

func TestIter(t *testing.T) {
	p := FromSlice([]int{1, 2})
	ctx := context.Background()
	it := p.Iter(ctx)
	defer it.Close()

	v1, ok, err := it.Next(ctx)
	if err != nil || !ok || v1 != 1 {
		t.Errorf("first Next: val=%d ok=%v err=%v", v1, ok, err)
	}
	v2, ok, err := it.Next(ctx)
	if err != nil || !ok || v2 != 2 {
		t.Errorf("second Next: val=%d ok=%v err=%v", v2, ok, err)
	}
	_, ok, err = it.Next(ctx)
	if err != nil || ok {
		t.Errorf("third Next should be exhausted: ok=%v err=%v", ok, err)
	}
}

func TestChained_Pipeline(t *testing.T) {
	// Full pipeline: source → map → filter → tap → reduce
	var tapped []int
	p := FromSlice([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	doubled := Map(p, func(_ context.Context, n int) (int, error) { return n * 2, nil })
	evens := Where(doubled, func(n int) bool { return n%4 == 0 })
	observed := Tap(evens, func(_ context.Context, n int) error {
		tapped = append(tapped, n)
		return nil
	})
	sum := Reduce(observed, 0, func(acc, n int) int { return acc + n })

	got, err := Collect(context.Background(), sum)
	if err != nil {
		t.Fatal(err)
	}
	// Input doubled: 2,4,6,8,10,12,14,16,18,20 → filter %4==0: 4,8,12,16,20 → sum: 60
	if len(got) != 1 || got[0] != 60 {
		t.Errorf("expected [60], got %v", got)
	}
	if !intSliceEqual(tapped, []int{4, 8, 12, 16, 20}) {
		t.Errorf("tapped = %v, want [4 8 12 16 20]", tapped)
	}
}

// --- helpers ---

// countingSource builds pipelines over a slice and records how many
// traversals were opened and how many values were read.
type countingSource[T any] struct {
	opened int
	pulls  int
}

func (c *countingSource[T]) pipeline(items []T) *Pipeline[T] {
	return FromFunc(func(context.Context) Iterator[T] {
		c.opened++
		return &countingIter[T]{items: items, src: c}
	})
}

type countingIter[T any] struct {
	items []T
	pos   int
	src   *countingSource[T]
}

func (it *countingIter[T]) Next(context.Context) (T, bool, error) {
	if it.pos >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	it.src.pulls++
	val := it.items[it.pos]
	it.pos++
	return val, true, nil
}

func (it *countingIter[T]) Close() error { return nil }

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func strSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
