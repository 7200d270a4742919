package catalog

import (
	"context"
	"sync"

	"storefront-admin/promotion"
	"storefront-admin/upstream"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Loader fetches the rule, action, calculator and product catalogs for one
// builder session. Catalogs load once per session; an unreachable catalog is
// logged and stays empty, which the builder renders as "no options" rather
// than an error.
type Loader struct {
	client *upstream.Client
	log    zerolog.Logger

	mu              sync.Mutex
	loaded          bool
	ruleKinds       []promotion.Kind
	actionKinds     []promotion.Kind
	calculatorKinds []promotion.Kind
	products        []upstream.ProductSummary
	calcKeys        map[string]string
}

// NewLoader returns an unloaded loader bound to the given client.
func NewLoader(client *upstream.Client, log zerolog.Logger) *Loader {
	return &Loader{
		client:   client,
		log:      log,
		calcKeys: make(map[string]string),
	}
}

// EnsureLoaded fetches all four catalogs on the first call and is a no-op
// afterwards. The fetches are independent and run concurrently; no ordering
// applies between them and each failure only empties its own catalog.
func (l *Loader) EnsureLoaded(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded {
		return
	}

	var g errgroup.Group
	g.Go(func() error {
		kinds, err := l.client.ListRuleKinds(ctx)
		if err != nil {
			l.log.Error().Err(err).Msg("rule kinds unavailable")
			return nil
		}
		l.ruleKinds = kinds
		return nil
	})
	g.Go(func() error {
		kinds, err := l.client.ListActionKinds(ctx)
		if err != nil {
			l.log.Error().Err(err).Msg("action kinds unavailable")
			return nil
		}
		l.actionKinds = kinds
		return nil
	})
	g.Go(func() error {
		kinds, err := l.client.ListCalculatorKinds(ctx)
		if err != nil {
			l.log.Error().Err(err).Msg("calculator kinds unavailable")
			return nil
		}
		l.calculatorKinds = kinds
		return nil
	})
	g.Go(func() error {
		products, err := l.client.ListProducts(ctx)
		if err != nil {
			l.log.Error().Err(err).Msg("product catalog unavailable")
			return nil
		}
		l.products = products
		return nil
	})
	_ = g.Wait()

	l.loaded = true
}

// RuleKinds returns the loaded rule catalog; empty until EnsureLoaded runs.
func (l *Loader) RuleKinds() []promotion.Kind {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ruleKinds
}

// ActionKinds returns the loaded action catalog.
func (l *Loader) ActionKinds() []promotion.Kind {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.actionKinds
}

// CalculatorKinds returns the loaded calculator catalog.
func (l *Loader) CalculatorKinds() []promotion.Kind {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calculatorKinds
}

// Products returns the loaded product catalog.
func (l *Loader) Products() []upstream.ProductSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.products
}

// FindKind looks up a catalog entry by module across the three kind
// catalogs.
func (l *Loader) FindKind(module string) (promotion.Kind, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, kinds := range [][]promotion.Kind{l.ruleKinds, l.actionKinds, l.calculatorKinds} {
		for _, k := range kinds {
			if k.Module == module {
				return k, true
			}
		}
	}
	return promotion.Kind{}, false
}

// ResolveCalculatorKey returns the preference key the given calculator
// expects, fetching it from the backend on first use. Failure propagates so
// the amount field stays unrendered until a later attempt succeeds.
func (l *Loader) ResolveCalculatorKey(ctx context.Context, module string) (string, error) {
	l.mu.Lock()
	if key, ok := l.calcKeys[module]; ok {
		l.mu.Unlock()
		return key, nil
	}
	l.mu.Unlock()

	key, err := l.client.ResolveCalculatorPreferenceSchema(ctx, module)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	l.calcKeys[module] = key
	l.mu.Unlock()
	return key, nil
}
