package render

import (
	"sync"
	"testing"
)

func TestCacheKey(t *testing.T) {
	base := DefaultOptions()

	if cacheKey(base) != cacheKey(DefaultOptions()) {
		t.Error("same options should produce the same key")
	}
	if cacheKey(base) == cacheKey(base.WithWidth(100)) {
		t.Error("different widths should produce different keys")
	}
	if cacheKey(base) == cacheKey(base.WithStyle(StyleLight)) {
		t.Error("different styles should produce different keys")
	}
	if cacheKey(base) == cacheKey(base.WithEmoji(false)) {
		t.Error("different emoji settings should produce different keys")
	}
}

func TestPoolGetAndPut(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions()

	r1, err := globalPool.get(opts)
	if err != nil {
		t.Fatalf("get() error = %v", err)
	}
	globalPool.put(opts, r1)

	if CacheSize() != 1 {
		t.Errorf("CacheSize() = %d, want 1", CacheSize())
	}

	r2, err := globalPool.get(opts.WithWidth(40))
	if err != nil {
		t.Fatalf("get() error = %v", err)
	}
	globalPool.put(opts.WithWidth(40), r2)

	if CacheSize() != 2 {
		t.Errorf("CacheSize() = %d, want 2", CacheSize())
	}

	globalPool.put(opts, nil)
}

func TestPoolConcurrency(t *testing.T) {
	ClearCache()
	defer ClearCache()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			opts := DefaultOptions().WithWidth(60 + i%3)
			if _, err := Markdown("**bold** answer", opts); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Markdown() error = %v", err)
	}
	if CacheSize() != 3 {
		t.Errorf("CacheSize() = %d, want 3", CacheSize())
	}
}

func TestCreateRenderer_Styles(t *testing.T) {
	for _, style := range []string{"", StyleDark, StyleLight, StyleNoTTY, StyleTokyoNight} {
		if _, err := createRenderer(DefaultOptions().WithStyle(style)); err != nil {
			t.Errorf("createRenderer(%q) error = %v", style, err)
		}
	}
}
