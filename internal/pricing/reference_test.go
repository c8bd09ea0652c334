package pricing_test

import (
	"regexp"
	"sync"
	"testing"

	"meetpay/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceGenerator_Format(t *testing.T) {
	testCases := []struct {
		desc    string
		prefix  string
		pattern string
	}{
		{
			desc:    "PaymentPrefix",
			prefix:  pricing.PaymentReferencePrefix,
			pattern: `^PAY-\d{14}-[0-9A-F]{8}$`,
		},
		{
			desc:    "PayoutPrefix",
			prefix:  pricing.PayoutReferencePrefix,
			pattern: `^PO-\d{14}-[0-9A-F]{8}$`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			gen, err := pricing.NewReferenceGenerator(tc.prefix)
			require.NoError(t, err)

			ref := gen.Next()
			assert.Regexp(t, regexp.MustCompile(tc.pattern), ref)
		})
	}
}

func TestReferenceGenerator_Distinct(t *testing.T) {
	const refCount = 10_000

	gen, err := pricing.NewReferenceGenerator(pricing.PaymentReferencePrefix)
	require.NoError(t, err)

	seen := make(map[string]struct{}, refCount)
	for range refCount {
		ref := gen.Next()
		_, dup := seen[ref]
		require.False(t, dup, "duplicate reference %s", ref)
		seen[ref] = struct{}{}
	}
}

func TestReferenceGenerator_DistinctConcurrent(t *testing.T) {
	const (
		workers       = 8
		refsPerWorker = 1_000
	)

	gen, err := pricing.NewReferenceGenerator(pricing.PayoutReferencePrefix)
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*refsPerWorker)
		wg   sync.WaitGroup
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			refs := make([]string, 0, refsPerWorker)
			for range refsPerWorker {
				refs = append(refs, gen.Next())
			}

			mu.Lock()
			defer mu.Unlock()
			for _, ref := range refs {
				seen[ref] = struct{}{}
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*refsPerWorker)
}

func TestNewReferenceGenerator_EmptyPrefix(t *testing.T) {
	_, err := pricing.NewReferenceGenerator("")
	require.Error(t, err)
}
