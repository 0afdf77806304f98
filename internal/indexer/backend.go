package indexer

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
	"golang.org/x/sync/errgroup"
)

// Backend executes the indexer's two passes over one dispatch-sized chunk:
// pass 1 computes per-workgroup quote-byte parity, pass 2 scans each
// workgroup for unescaped separators given its entry quote state (already
// resolved by indexer.go's host prefix-XOR step). Only cpuBackend ships;
// the interface exists so a real GPU backend (WebGPU/CUDA via cgo) could
// be dropped in later without touching the host-side code.
type Backend interface {
	Name() string
	Available() bool
	MaxDispatchBytes() int
	WorkgroupSize() int
	Pass1(data []byte, quotation byte) (parity []bool, err error)
	Pass2(data []byte, entryQuote []bool, delimiter, quotation byte) (packed []uint32, endInQuote bool, err error)
}

const defaultMaxDispatchBytes = 16 * 1024 * 1024

// cpuBackend simulates the GPU's workgroup-parallel scan with a goroutine
// per workgroup, bounded to GOMAXPROCS concurrent workgroups at a time.
// Workgroup width follows spec §5's AVX2-width-vs-scalar split: 32 bytes
// when the CPU supports AVX2 (mirroring a vector register's lane count),
// 256 bytes (spec §4.4's default) otherwise. Grounded on the teacher's
// internal/fastparser/simd two-stage bitmask scanner, generalized from a
// fixed 64-byte chunk to the spec's variable workgroup width.
type cpuBackend struct {
	workgroupSize int
	maxDispatch   int
	concurrency   int
}

// NewDefaultBackend returns the CPU workgroup-simulation backend, for
// callers (e.g. pkg/csvengine's DevicePool constructor) that want a
// Backend handle without going through New/NewWithBackend.
func NewDefaultBackend() Backend {
	return newCPUBackend()
}

func newCPUBackend() *cpuBackend {
	w := 256
	if cpuid.CPU.Supports(cpuid.AVX2) {
		w = 32
	}
	return &cpuBackend{
		workgroupSize: w,
		maxDispatch:   defaultMaxDispatchBytes,
		concurrency:   runtime.GOMAXPROCS(0),
	}
}

func (b *cpuBackend) Name() string         { return "cpu" }
func (b *cpuBackend) Available() bool      { return true }
func (b *cpuBackend) MaxDispatchBytes() int { return b.maxDispatch }
func (b *cpuBackend) WorkgroupSize() int   { return b.workgroupSize }

func (b *cpuBackend) workgroupCount(n int) int {
	if n == 0 {
		return 0
	}
	return (n + b.workgroupSize - 1) / b.workgroupSize
}

func (b *cpuBackend) bounds(i, n int) (start, end int) {
	start = i * b.workgroupSize
	end = start + b.workgroupSize
	if end > n {
		end = n
	}
	return start, end
}

// Pass1 computes the XOR-parity of quotation-byte counts within each
// workgroup, dispatched across a bounded goroutine pool.
func (b *cpuBackend) Pass1(data []byte, quotation byte) ([]bool, error) {
	g := b.workgroupCount(len(data))
	parity := make([]bool, g)
	return pass1Dispatch(data, quotation, b.workgroupSize, b.concurrency, parity), nil
}

func pass1Dispatch(data []byte, quotation byte, workgroupSize, concurrency int, parity []bool) []bool {
	var wg errgroup.Group
	wg.SetLimit(concurrency)
	for i := range parity {
		i := i
		wg.Go(func() error {
			start := i * workgroupSize
			end := start + workgroupSize
			if end > len(data) {
				end = len(data)
			}
			count := 0
			for _, c := range data[start:end] {
				if c == quotation {
					count++
				}
			}
			parity[i] = count%2 == 1
			return nil
		})
	}
	_ = wg.Wait()
	return parity
}

// Pass2 scans each workgroup for unescaped delimiter/LF bytes, given its
// resolved entry quote state, and packs the results. Workgroups are
// offset-disjoint and concatenated in index order, so the merged packed
// array is already sorted ascending by offset without an explicit sort.
func (b *cpuBackend) Pass2(data []byte, entryQuote []bool, delimiter, quotation byte) ([]uint32, bool, error) {
	g := len(entryQuote)
	results := make([][]uint32, g)
	endStates := make([]bool, g)

	var wg errgroup.Group
	wg.SetLimit(b.concurrency)
	for i := 0; i < g; i++ {
		i := i
		wg.Go(func() error {
			start, end := b.bounds(i, len(data))
			inQuote := entryQuote[i]
			var local []uint32
			for off := start; off < end; off++ {
				c := data[off]
				if c == quotation {
					inQuote = !inQuote
					continue
				}
				if inQuote {
					continue
				}
				switch c {
				case delimiter:
					local = append(local, pack(uint32(off), SepField))
				case '\n':
					local = append(local, pack(uint32(off), SepRecord))
				}
			}
			results[i] = local
			endStates[i] = inQuote
			return nil
		})
	}
	_ = wg.Wait()

	var packed []uint32
	for _, r := range results {
		packed = append(packed, r...)
	}
	endInQuote := false
	if g > 0 {
		endInQuote = endStates[g-1]
	}
	return packed, endInQuote, nil
}
