// Package catalog keeps the job template catalog: the session cache, the
// template picker model and the loader that fills both from the API.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spigell/resume-matcher/internal/evaluator"
)

// CatalogLoadError wraps every failure of a catalog load.
type CatalogLoadError struct {
	Err error
}

func (e *CatalogLoadError) Error() string {
	return fmt.Sprintf("loading templates: %s", e.Err)
}

func (e *CatalogLoadError) Unwrap() error { return e.Err }

type templateSource interface {
	GetTemplates(ctx context.Context) (*evaluator.Catalog, error)
	GetTemplate(ctx context.Context, key string) (*evaluator.Template, error)
}

type Loader struct {
	api         templateSource
	cache       *Cache
	placeholder string
	logger      *zap.Logger
	group       singleflight.Group
}

func NewLoader(api templateSource, cache *Cache, placeholder string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = NewCache()
	}

	return &Loader{
		api:         api,
		cache:       cache,
		placeholder: strings.TrimSpace(placeholder),
		logger:      logger,
	}
}

func (l *Loader) Cache() *Cache { return l.cache }

// Load fetches the catalog and rebuilds sel. On failure sel keeps its options and value.
func (l *Loader) Load(ctx context.Context, sel *Selector) error {
	sel.Disabled = true
	defer func() { sel.Disabled = false }()

	catalog, err := l.api.GetTemplates(ctx)
	if err != nil {
		l.logger.Error("loading templates", zap.Error(err))
		return &CatalogLoadError{Err: err}
	}

	if catalog.Len() == 0 {
		l.logger.Error("loading templates", zap.Error(evaluator.ErrEmptyCatalog))
		return &CatalogLoadError{Err: evaluator.ErrEmptyCatalog}
	}

	placeholder := sel.placeholderLabel(l.placeholder)

	options := make([]Option, 0, catalog.Len()+1)
	options = append(options, Option{Value: "", Label: placeholder})
	catalog.Templates.Range(func(key string, t *evaluator.Template) bool {
		label := strings.TrimSpace(t.Title)
		if label == "" {
			label = FormatKey(key)
		}
		options = append(options, Option{Value: key, Label: label})
		l.cache.Put(key, t)
		return true
	})

	previous := sel.Value
	sel.Placeholder = placeholder
	sel.Options = options
	sel.Value = ""
	if previous != "" && catalog.Templates.Has(previous) {
		sel.Value = previous
	}

	l.logger.Info("loaded templates",
		zap.Int("count", catalog.Len()),
		zap.String("selected", sel.Value),
	)

	return nil
}

// Fetch returns the cached template for key, asking the API on a miss.
func (l *Loader) Fetch(ctx context.Context, key string) (*evaluator.Template, error) {
	if t, ok := l.cache.Get(key); ok {
		return t, nil
	}
	return l.fetch(ctx, key)
}

// Refresh always asks the API and replaces the cached entry.
func (l *Loader) Refresh(ctx context.Context, key string) (*evaluator.Template, error) {
	return l.fetch(ctx, key)
}

func (l *Loader) fetch(ctx context.Context, key string) (*evaluator.Template, error) {
	v, err, shared := l.group.Do(key, func() (any, error) {
		t, err := l.api.GetTemplate(ctx, key)
		if err != nil {
			return nil, err
		}
		l.cache.Put(key, t)
		return t, nil
	})
	if err != nil {
		var validation *evaluator.ValidationError
		if errors.As(err, &validation) {
			return nil, err
		}
		l.logger.Warn("loading template", zap.String("template", key), zap.Error(err))
		return nil, fmt.Errorf("loading template %s: %w", key, err)
	}

	l.logger.Debug("loaded template", zap.String("template", key), zap.Bool("shared", shared))

	return v.(*evaluator.Template), nil
}
