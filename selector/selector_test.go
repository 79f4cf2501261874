package selector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ntppool.org/imagerotate/catalog"
	"go.ntppool.org/imagerotate/testutil"
)

func TestSelectBasicPick(t *testing.T) {
	cat := catalog.New(catalog.Image{URL: "a.jpg", ShowsLeft: 1, Categories: catalog.NewCategories("cat")})
	sl := newTestSelector(t, cat)

	img, err := sl.Select(context.Background(), catalog.NewCategories())
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", img.URL)
	assert.Equal(t, []string{"cat"}, img.Categories.Sorted())
	assert.Equal(t, 0, cat.Get("a.jpg").ShowsLeft)
	assert.Equal(t, []string{"a.jpg"}, sl.Recent())
}

func TestSelectExhaustionAndReset(t *testing.T) {
	cat := catalog.New(catalog.Image{URL: "a.jpg", ShowsLeft: 0})
	sl := newTestSelector(t, cat)

	img, err := sl.Select(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", img.URL)
	assert.Equal(t, 0, cat.Get("a.jpg").ShowsLeft)
}

func TestSelectCategoryMiss(t *testing.T) {
	cat := catalog.New(catalog.Image{URL: "a.jpg", ShowsLeft: 1, Categories: catalog.NewCategories("dog")})
	sl := newTestSelector(t, cat)

	_, err := sl.Select(context.Background(), catalog.NewCategories("cat"))
	assert.True(t, errors.Is(err, ErrNoEligibleImage), "got %v", err)
	assert.Equal(t, 1, cat.Get("a.jpg").ShowsLeft, "a miss must not touch quotas")
	assert.Empty(t, sl.Recent())
}

func TestSelectEmptyCatalog(t *testing.T) {
	sl := newTestSelector(t, catalog.New())

	_, err := sl.Select(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrNoEligibleImage))
}

func TestSelectRecencyNotRelaxedByReset(t *testing.T) {
	cat := catalog.New(
		catalog.Image{URL: "a.jpg", ShowsLeft: 5},
		catalog.Image{URL: "b.jpg", ShowsLeft: 5},
	)
	sl := newTestSelector(t, cat)
	ctx := context.Background()

	first, err := sl.Select(ctx, nil)
	require.NoError(t, err)
	second, err := sl.Select(ctx, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.URL, second.URL)

	// both images are in the window and have quota left; resetting
	// quotas can't help
	_, err = sl.Select(ctx, nil)
	assert.True(t, errors.Is(err, ErrNoEligibleImage))
}

func TestSelectCategoryFilter(t *testing.T) {
	cat := catalog.New(
		catalog.Image{URL: "cat1.jpg", ShowsLeft: 1000, Categories: catalog.NewCategories("cat")},
		catalog.Image{URL: "cat2.jpg", ShowsLeft: 1000, Categories: catalog.NewCategories("cat", "sun")},
		catalog.Image{URL: "dog1.jpg", ShowsLeft: 1000, Categories: catalog.NewCategories("dog")},
		catalog.Image{URL: "sun1.jpg", ShowsLeft: 1000, Categories: catalog.NewCategories("sun")},
		catalog.Image{URL: "none.jpg", ShowsLeft: 1000},
	)
	sl := newTestSelector(t, cat, WithRecencySize(0))
	ctx := context.Background()

	requested := catalog.NewCategories("cat", "sun")
	seen := map[string]bool{}

	for i := 0; i < 200; i++ {
		img, err := sl.Select(ctx, requested)
		require.NoError(t, err)
		assert.True(t, requested.Intersects(img.Categories), "%s does not match %v", img.URL, requested.Sorted())
		seen[img.URL] = true
	}
	assert.Len(t, seen, 3)

	seen = map[string]bool{}
	for i := 0; i < 200; i++ {
		img, err := sl.Select(ctx, nil)
		require.NoError(t, err)
		seen[img.URL] = true
	}
	assert.Len(t, seen, 5, "an empty request matches everything")
}

func TestSelectRecencyWindow(t *testing.T) {
	images := []catalog.Image{}
	for i := 0; i < 6; i++ {
		images = append(images, catalog.Image{URL: fmt.Sprintf("%d.jpg", i), ShowsLeft: 100})
	}
	sl := newTestSelector(t, catalog.New(images...))
	ctx := context.Background()

	picks := []string{}
	for i := 0; i < 30; i++ {
		img, err := sl.Select(ctx, nil)
		require.NoError(t, err)

		from := max(0, len(picks)-DefaultRecencySize)
		assert.NotContains(t, picks[from:], img.URL, "pick %d repeated within the window", i)

		picks = append(picks, img.URL)

		recent := sl.Recent()
		assert.LessOrEqual(t, len(recent), DefaultRecencySize)
		assert.Equal(t, picks[max(0, len(picks)-DefaultRecencySize):], recent, "window is the last picks in order")
	}

	// with six images and a window of five the only candidate is the image
	// that just left the window
	for i := 6; i < len(picks); i++ {
		assert.Equal(t, picks[i-6], picks[i])
	}
}

func TestSelectQuotaMonotonicity(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	images := []catalog.Image{}
	for i := 0; i < 8; i++ {
		images = append(images, catalog.Image{
			URL:        fmt.Sprintf("%d.jpg", i),
			ShowsLeft:  r.IntN(3),
			Categories: catalog.NewCategories(fmt.Sprintf("tag%d", i%3)),
		})
	}
	cat := catalog.New(images...)
	sl := newTestSelector(t, cat)
	ctx := context.Background()

	requests := []catalog.Categories{
		nil,
		catalog.NewCategories("tag0"),
		catalog.NewCategories("tag1", "tag2"),
	}

	prev := quotas(cat)
	for i := 0; i < 300; i++ {
		_, err := sl.Select(ctx, requests[i%len(requests)])
		if err != nil {
			require.True(t, errors.Is(err, ErrNoEligibleImage), "unexpected error %v", err)
		}

		cur := quotas(cat)
		for url, q := range cur {
			require.GreaterOrEqual(t, q, 0, "%s went negative", url)
			if prev[url] > 0 {
				assert.LessOrEqual(t, q, prev[url], "%s increased without a reset", url)
			} else {
				assert.LessOrEqual(t, q, 1, "%s was reset above one", url)
			}
		}
		prev = cur
	}
}

func TestSelectConcurrentNoDoubleShow(t *testing.T) {
	const n = 50

	images := []catalog.Image{}
	for i := 0; i < n; i++ {
		images = append(images, catalog.Image{URL: fmt.Sprintf("%d.jpg", i), ShowsLeft: 1})
	}
	cat := catalog.New(images...)
	sl := NewSelector(cat, slog.Default(), nil, WithRecencySize(0))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[string]int{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := sl.Select(context.Background(), nil)
			if err != nil {
				t.Errorf("select: %v", err)
				return
			}
			mu.Lock()
			seen[img.URL]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
	for url, count := range seen {
		assert.Equal(t, 1, count, "%s shown more than once", url)
	}
	for _, img := range cat.Snapshot() {
		assert.Equal(t, 0, img.ShowsLeft)
	}
}

func TestSetCatalog(t *testing.T) {
	sl := newTestSelector(t, catalog.New(catalog.Image{URL: "a.jpg", ShowsLeft: 3}))
	ctx := context.Background()

	_, err := sl.Select(ctx, nil)
	require.NoError(t, err)
	require.Len(t, sl.Recent(), 1)

	sl.SetCatalog(catalog.New(catalog.Image{URL: "b.jpg", ShowsLeft: 1}))
	assert.Empty(t, sl.Recent())

	img, err := sl.Select(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "b.jpg", img.URL)

	status := sl.Status()
	require.Len(t, status.Images, 1)
	assert.Equal(t, 0, status.Images[0].ShowsLeft)
	assert.Equal(t, []string{"b.jpg"}, status.Recent)
	assert.Equal(t, DefaultRecencySize, status.Capacity)
}

func TestSelectReturnsCopy(t *testing.T) {
	cat := catalog.New(catalog.Image{URL: "a.jpg", ShowsLeft: 2, Categories: catalog.NewCategories("cat")})
	sl := newTestSelector(t, cat)

	img, err := sl.Select(context.Background(), nil)
	require.NoError(t, err)

	img.ShowsLeft = 50
	img.Categories["dog"] = struct{}{}

	assert.Equal(t, 1, cat.Get("a.jpg").ShowsLeft)
	assert.False(t, cat.Get("a.jpg").Categories.Contains("dog"))
}

// Helper functions
func newTestSelector(t *testing.T, cat *catalog.Catalog, opts ...Option) *Selector {
	t.Helper()
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	return NewSelector(cat, testutil.NewTestLogger(t).Logger(), nil, opts...)
}

func quotas(cat *catalog.Catalog) map[string]int {
	r := map[string]int{}
	for _, img := range cat.Snapshot() {
		r[img.URL] = img.ShowsLeft
	}
	return r
}
