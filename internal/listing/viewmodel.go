// Package listing holds the state behind the shop list screen: search
// results, the featured subset and the user's favorites.
package listing

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"coffeeshop/internal/activity"
	"coffeeshop/internal/models"
)

// NoResultsMessage is shown when a search returns nothing.
const NoResultsMessage = "No coffee shops found.\n Try searching again with a different name or keyword"

// Repository is the part of the shop API the listing needs.
type Repository interface {
	ListShops(ctx context.Context) ([]models.Shop, error)
	SearchShops(ctx context.Context, query string) ([]models.Shop, error)
	SetFavorite(ctx context.Context, id string, favorite bool) error
}

type Option func(*ViewModel)

func WithLogger(l *zap.Logger) Option {
	return func(vm *ViewModel) {
		if l != nil {
			vm.logger = l
		}
	}
}

func WithActivity(s activity.Sink) Option {
	return func(vm *ViewModel) {
		if s != nil {
			vm.sink = s
		}
	}
}

// WithDefaultImage sets the image used by cards of shops without one.
func WithDefaultImage(url string) Option {
	return func(vm *ViewModel) { vm.defaultImage = url }
}

// ViewModel is safe for concurrent use.
//
// Favorites live only as long as the ViewModel. Toggling is optimistic: the
// local flag changes first and the remote write is fire-and-forget, with no
// rollback when it fails.
type ViewModel struct {
	repo         Repository
	logger       *zap.Logger
	sink         activity.Sink
	defaultImage string

	mu        sync.RWMutex
	allShops  []models.Shop
	featured  []models.Shop
	favorites map[string]bool
	query     string
	lastError error
	noResults string
	// issued counts Search calls, applied is the newest one whose response,
	// success or failure, was taken. Older responses arriving late are dropped.
	issued  uint64
	applied uint64

	writes sync.WaitGroup
}

func New(repo Repository, opts ...Option) *ViewModel {
	vm := &ViewModel{
		repo:      repo,
		logger:    zap.NewNop(),
		sink:      activity.Discard,
		favorites: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Search fetches the shops for query (all shops when empty) and replaces both
// lists. On failure the previous lists are kept and the error is recorded in
// LastError and returned.
func (vm *ViewModel) Search(ctx context.Context, query string) error {
	vm.mu.Lock()
	vm.query = query
	vm.issued++
	seq := vm.issued
	vm.mu.Unlock()

	var (
		shops []models.Shop
		err   error
	)
	if query == "" {
		shops, err = vm.repo.ListShops(ctx)
	} else {
		shops, err = vm.repo.SearchShops(ctx, query)
	}

	vm.mu.Lock()
	if seq < vm.applied {
		vm.mu.Unlock()
		vm.logger.Debug("dropping stale search response", zap.String("query", query), zap.Uint64("seq", seq))
		return nil
	}
	vm.applied = seq
	if err != nil {
		vm.lastError = err
		vm.mu.Unlock()
		vm.logger.Error("failed to fetch shops", zap.String("query", query), zap.Error(err))
		return err
	}

	all, featured := Rank(shops, query)
	vm.overlay(all)
	vm.overlay(featured)
	vm.allShops = all
	vm.featured = featured
	vm.lastError = nil
	if len(shops) == 0 {
		vm.noResults = NoResultsMessage
	} else {
		vm.noResults = ""
	}
	vm.mu.Unlock()

	vm.logger.Info("shops loaded",
		zap.String("query", query), zap.Int("total", len(all)), zap.Int("featured", len(featured)))

	e := activity.NewEvent(activity.Search)
	e.Query = query
	e.ResultCount = len(all)
	vm.sink.Record(ctx, e)
	return nil
}

// overlay must be called with mu held.
func (vm *ViewModel) overlay(shops []models.Shop) {
	for i := range shops {
		shops[i].IsFavorite = vm.favorites[shops[i].ID]
	}
}

// ToggleFavorite flips the favorite flag of id in both lists and returns the
// new value. The remote write happens in the background; see Wait.
func (vm *ViewModel) ToggleFavorite(ctx context.Context, id string) bool {
	vm.mu.Lock()
	favorite := !vm.favorites[id]
	vm.favorites[id] = favorite
	setFavorite(vm.allShops, id, favorite)
	setFavorite(vm.featured, id, favorite)
	vm.mu.Unlock()

	e := activity.NewEvent(activity.FavoriteToggled)
	e.ShopID = id
	e.Favorite = &favorite
	vm.sink.Record(ctx, e)

	// The write must outlive the caller's context, e.g. a closed screen.
	writeCtx := context.WithoutCancel(ctx)
	vm.writes.Add(1)
	go func() {
		defer vm.writes.Done()
		if err := vm.repo.SetFavorite(writeCtx, id, favorite); err != nil {
			vm.logger.Warn("failed to update favorite",
				zap.String("shop_id", id), zap.Bool("favorite", favorite), zap.Error(err))
			return
		}
		vm.logger.Debug("favorite updated", zap.String("shop_id", id), zap.Bool("favorite", favorite))
	}()
	return favorite
}

func setFavorite(shops []models.Shop, id string, favorite bool) {
	for i := range shops {
		if shops[i].ID == id {
			shops[i].IsFavorite = favorite
		}
	}
}

// Wait blocks until every pending favorite write has finished.
func (vm *ViewModel) Wait() {
	vm.writes.Wait()
}

func (vm *ViewModel) AllShops() []models.Shop {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return cloneShops(vm.allShops)
}

func (vm *ViewModel) FeaturedShops() []models.Shop {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return cloneShops(vm.featured)
}

func (vm *ViewModel) IsFavorite(id string) bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.favorites[id]
}

func (vm *ViewModel) Query() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.query
}

func (vm *ViewModel) LastError() error {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.lastError
}

// NoResultsMessage is empty unless the last applied response was empty.
func (vm *ViewModel) NoResultsMessage() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.noResults
}

// FeaturedCards renders the featured list.
func (vm *ViewModel) FeaturedCards() []Card {
	return vm.cards(vm.FeaturedShops())
}

// AllCards renders the full list.
func (vm *ViewModel) AllCards() []Card {
	return vm.cards(vm.AllShops())
}

func (vm *ViewModel) cards(shops []models.Shop) []Card {
	out := make([]Card, 0, len(shops))
	for _, s := range shops {
		out = append(out, NewCard(s, vm.defaultImage))
	}
	return out
}

func cloneShops(shops []models.Shop) []models.Shop {
	if shops == nil {
		return nil
	}
	out := make([]models.Shop, len(shops))
	for i, s := range shops {
		out[i] = s.Clone()
	}
	return out
}
