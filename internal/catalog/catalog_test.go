package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-matcher/internal/evaluator"
)

type stubSource struct {
	catalog  string
	err      error
	template *evaluator.Template
	calls    atomic.Int32
	release  chan struct{}
	onList   func()
}

func (s *stubSource) GetTemplates(context.Context) (*evaluator.Catalog, error) {
	if s.onList != nil {
		s.onList()
	}
	if s.err != nil {
		return nil, s.err
	}

	catalog := &evaluator.Catalog{}
	if err := json.Unmarshal([]byte(s.catalog), &catalog.Templates); err != nil {
		return nil, err
	}
	catalog.Templates.Range(func(key string, t *evaluator.Template) bool {
		t.Key = key
		return true
	})
	return catalog, nil
}

func (s *stubSource) GetTemplate(_ context.Context, key string) (*evaluator.Template, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	t := *s.template
	t.Key = key
	return &t, nil
}

func existingSelector() *Selector {
	return &Selector{
		Options: []Option{
			{Value: "", Label: "Pick a role"},
			{Value: "old", Label: "Old Role"},
		},
		Value: "old",
	}
}

func TestLoadEmptyCatalogLeavesSelectorUntouched(t *testing.T) {
	core, observed := observer.New(zapcore.ErrorLevel)
	loader := NewLoader(&stubSource{catalog: `{}`}, NewCache(), "", zap.New(core))

	sel := existingSelector()
	before := *sel
	before.Options = append([]Option(nil), sel.Options...)

	err := loader.Load(context.Background(), sel)

	var loadErr *CatalogLoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected catalog load error, got %v", err)
	}
	if !errors.Is(err, evaluator.ErrEmptyCatalog) {
		t.Fatalf("expected empty catalog error, got %v", err)
	}

	if !reflect.DeepEqual(sel.Options, before.Options) || sel.Value != before.Value {
		t.Fatalf("selector changed: %+v", sel)
	}
	if sel.Disabled {
		t.Fatalf("selector must be enabled after load")
	}
	if loader.Cache().Len() != 0 {
		t.Fatalf("cache must stay empty")
	}
	if observed.Len() != 1 {
		t.Fatalf("expected failure to be logged, got %d entries", observed.Len())
	}
}

func TestLoadNetworkErrorLeavesSelectorUntouched(t *testing.T) {
	loader := NewLoader(&stubSource{err: &evaluator.NetworkError{Op: "get templates", StatusCode: 500}}, NewCache(), "", zap.NewNop())

	sel := existingSelector()
	err := loader.Load(context.Background(), sel)

	var netErr *evaluator.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected wrapped network error, got %v", err)
	}
	if len(sel.Options) != 2 || sel.Value != "old" {
		t.Fatalf("selector changed: %+v", sel)
	}
}

func TestLoadBuildsOptionsAndSeedsCache(t *testing.T) {
	src := &stubSource{catalog: `{
		"software_engineer": {"title": "Software Engineer"},
		"data_scientist": {},
		"product_manager": {"title": "  "}
	}`}
	loader := NewLoader(src, NewCache(), "", zap.NewNop())

	sel := &Selector{}
	src.onList = func() {
		if !sel.Disabled {
			t.Errorf("selector must be disabled while loading")
		}
	}

	if err := loader.Load(context.Background(), sel); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Option{
		{Value: "", Label: DefaultPlaceholder},
		{Value: "software_engineer", Label: "Software Engineer"},
		{Value: "data_scientist", Label: "Data Scientist"},
		{Value: "product_manager", Label: "Product Manager"},
	}
	if !reflect.DeepEqual(sel.Options, want) {
		t.Fatalf("unexpected options:\n%+v", sel.Options)
	}
	if sel.Options[0].Value != "" {
		t.Fatalf("placeholder must have an empty value")
	}
	if sel.Disabled {
		t.Fatalf("selector must be enabled after load")
	}

	cache := loader.Cache()
	if cache.Len() != 3 {
		t.Fatalf("expected 3 cache entries, got %d", cache.Len())
	}
	for _, key := range []string{"software_engineer", "data_scientist", "product_manager"} {
		if _, ok := cache.Get(key); !ok {
			t.Fatalf("expected %s in cache", key)
		}
	}
}

func TestLoadRestoresPreviousSelectionAndPlaceholder(t *testing.T) {
	loader := NewLoader(&stubSource{catalog: `{"old": {"title": "Old"}, "new": {}}`}, NewCache(), "", zap.NewNop())

	sel := existingSelector()
	if err := loader.Load(context.Background(), sel); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sel.Value != "old" {
		t.Fatalf("expected previous selection restored, got %q", sel.Value)
	}
	if sel.Options[0].Label != "Pick a role" || sel.Placeholder != "Pick a role" {
		t.Fatalf("expected first option label to become placeholder, got %+v", sel.Options[0])
	}
}

func TestLoadDropsSelectionThatNoLongerExists(t *testing.T) {
	loader := NewLoader(&stubSource{catalog: `{"new": {}}`}, NewCache(), "Choose", zap.NewNop())

	sel := existingSelector()
	if err := loader.Load(context.Background(), sel); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sel.Value != "" {
		t.Fatalf("expected placeholder selection, got %q", sel.Value)
	}
	if sel.Options[0].Label != "Choose" {
		t.Fatalf("expected configured placeholder, got %q", sel.Options[0].Label)
	}
}

func TestFetchUsesCacheThenAPI(t *testing.T) {
	src := &stubSource{template: &evaluator.Template{Title: "Remote"}}
	cache := NewCache()
	cache.Put("cached", &evaluator.Template{Key: "cached", Title: "Cached"})
	loader := NewLoader(src, cache, "", zap.NewNop())

	got, err := loader.Fetch(context.Background(), "cached")
	if err != nil || got.Title != "Cached" {
		t.Fatalf("expected cached template, got %+v, %v", got, err)
	}
	if src.calls.Load() != 0 {
		t.Fatalf("expected no api call on cache hit")
	}

	got, err = loader.Fetch(context.Background(), "remote")
	if err != nil || got.Title != "Remote" {
		t.Fatalf("expected remote template, got %+v, %v", got, err)
	}
	if _, ok := cache.Get("remote"); !ok {
		t.Fatalf("expected fetched template to be cached")
	}

	refreshed, err := loader.Refresh(context.Background(), "cached")
	if err != nil || refreshed.Title != "Remote" {
		t.Fatalf("expected refresh to overwrite, got %+v, %v", refreshed, err)
	}
	if cur, _ := cache.Get("cached"); cur.Title != "Remote" {
		t.Fatalf("expected last write to win, got %q", cur.Title)
	}
}

func TestFetchCollapsesConcurrentMisses(t *testing.T) {
	src := &stubSource{template: &evaluator.Template{Title: "Remote"}, release: make(chan struct{})}
	loader := NewLoader(src, NewCache(), "", zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := loader.Fetch(context.Background(), "k"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	// Let the goroutines pile up behind the first call.
	time.Sleep(50 * time.Millisecond)
	close(src.release)
	wg.Wait()

	if n := src.calls.Load(); n < 1 || n > 5 {
		t.Fatalf("unexpected call count %d", n)
	}
	if loader.Cache().Len() != 1 {
		t.Fatalf("expected one cache entry")
	}
}

func TestFetchErrorIsWrapped(t *testing.T) {
	src := &stubSource{err: &evaluator.NetworkError{Op: "get template", StatusCode: 404}}
	loader := NewLoader(src, NewCache(), "", zap.NewNop())

	_, err := loader.Fetch(context.Background(), "missing")
	var netErr *evaluator.NetworkError
	if !errors.As(err, &netErr) || netErr.StatusCode != 404 {
		t.Fatalf("expected wrapped 404, got %v", err)
	}
	if loader.Cache().Len() != 0 {
		t.Fatalf("failed fetch must not populate cache")
	}
}

func TestCacheLastWriteWinsAndReset(t *testing.T) {
	c := NewCache()
	c.Put("k", &evaluator.Template{Title: "first"})
	c.Put("k", &evaluator.Template{Title: "second"})
	c.Put("nil", nil)

	if got, _ := c.Get("k"); got.Title != "second" {
		t.Fatalf("expected last write to win, got %q", got.Title)
	}
	if c.Len() != 1 || len(c.Keys()) != 1 {
		t.Fatalf("unexpected size %d", c.Len())
	}

	c.Reset()
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected empty cache after reset")
	}
}

func TestFormatLabels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{name: "key", fn: FormatKey, in: "software_engineer", want: "Software Engineer"},
		{name: "key keeps rest", fn: FormatKey, in: "ml_ops_iOS", want: "Ml Ops IOS"},
		{name: "key empty", fn: FormatKey, in: "", want: ""},
		{name: "key double underscore", fn: FormatKey, in: "a__b", want: "A  B"},
		{name: "category", fn: FormatCategory, in: "skills_match", want: "Skills Match"},
		{name: "category hyphen", fn: FormatCategory, in: "ats_score-v2", want: "Ats Score-V2"},
		{name: "category already spaced", fn: FormatCategory, in: "overall impact", want: "Overall Impact"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.fn(tt.in); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSelectorSelect(t *testing.T) {
	sel := existingSelector()
	if err := sel.Select("missing"); err == nil {
		t.Fatalf("expected error for unknown option")
	}
	if err := sel.Select(""); err != nil || sel.Value != "" {
		t.Fatalf("expected placeholder to be selectable")
	}
	if got := sel.Choices(); len(got) != 1 || got[0].Value != "old" {
		t.Fatalf("unexpected choices: %+v", got)
	}

	snapshot := func() Selector { return *existingSelector() }
	if !snapshot().Has("old") || len(snapshot().Choices()) != 1 {
		t.Fatalf("expected read methods on a selector value")
	}
}
