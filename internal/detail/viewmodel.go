// Package detail holds the state behind the shop detail screen: the shop with
// its products narrowed to one category, and the shop's map location.
package detail

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"coffeeshop/internal/activity"
	"coffeeshop/internal/enrich"
	"coffeeshop/internal/models"
)

// EmptyCategoryMessage is shown when the selected category has no products.
const EmptyCategoryMessage = "Sorry, No items in this category"

// DefaultCategory is selected when the screen opens.
const DefaultCategory = models.CategoryCoffee

// ErrNoShop is returned by SelectCategory before any Load.
var ErrNoShop = errors.New("no shop loaded")

// Repository is the part of the shop API the detail screen needs.
type Repository interface {
	GetShop(ctx context.Context, id string) (*models.Shop, error)
	ProductsByCategory(ctx context.Context, id, category string) ([]models.Product, error)
}

// Geocoder resolves an address to candidate locations, best first.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]models.GeoResult, error)
}

// LocationProvider reports the device position. It returns an error when
// permission is denied.
type LocationProvider interface {
	CurrentLocation(ctx context.Context) (models.Coordinates, error)
}

// MapIntent asks the platform to open a map at a point.
type MapIntent struct {
	Lat float64
	Lng float64
	URL string
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

func WithLocationProvider(p LocationProvider) Option {
	return func(vm *ViewModel) { vm.locator = p }
}

// ViewModel is safe for concurrent use. A nil Shop means the screen is
// still loading, whether because the request is slow or because it failed.
type ViewModel struct {
	repo     Repository
	geocoder Geocoder
	locator  LocationProvider
	logger   *zap.Logger
	sink     activity.Sink
	pipeline *enrich.Pipeline[loadJob]

	mu            sync.RWMutex
	shopID        string
	shop          *models.Shop
	selected      string
	categoryEmpty bool
	geo           *models.GeoResult
	userLocation  *models.Coordinates
}

// loadJob carries one Load through the pipeline.
type loadJob struct {
	id   string
	shop *models.Shop
}

func New(repo Repository, geocoder Geocoder, opts ...Option) *ViewModel {
	vm := &ViewModel{
		repo:     repo,
		geocoder: geocoder,
		logger:   zap.NewNop(),
		sink:     activity.Discard,
		selected: DefaultCategory,
	}
	for _, opt := range opts {
		opt(vm)
	}
	vm.pipeline = enrich.NewPipeline(vm.logger,
		enrich.NewStage(vm.fetchShop).Named("fetch"),
		enrich.NewStage(vm.applyProducts, vm.resolveLocation).Named("shape"),
	)
	return vm
}

// Load fetches the shop, narrows its products to the selected category and
// resolves its address. Only a failure to fetch the shop is returned; it
// leaves Shop unset.
func (vm *ViewModel) Load(ctx context.Context, shopID string) error {
	vm.mu.Lock()
	if vm.shopID != shopID {
		vm.shop = nil
		vm.geo = nil
		vm.categoryEmpty = false
	}
	vm.shopID = shopID
	vm.mu.Unlock()

	job := &loadJob{id: shopID}
	if complete, errs := vm.pipeline.Run(ctx, job); !complete {
		err := errors.Join(errs...)
		vm.logger.Error("failed to load shop", zap.String("shop_id", shopID), zap.Error(err))
		return err
	}

	e := activity.NewEvent(activity.ShopViewed)
	e.ShopID = shopID
	vm.sink.Record(ctx, e)
	return nil
}

func (vm *ViewModel) fetchShop(ctx context.Context, job *loadJob) error {
	shop, err := vm.repo.GetShop(ctx, job.id)
	if err != nil {
		return fmt.Errorf("fetching shop %s: %w: %w", job.id, enrich.ErrHalt, err)
	}
	job.shop = shop
	return nil
}

func (vm *ViewModel) applyProducts(_ context.Context, job *loadJob) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.shopID != job.id {
		return nil
	}
	shop := job.shop.Clone()
	shop.Products = models.FilterByCategory(job.shop.Products, vm.selected)
	vm.shop = &shop
	vm.categoryEmpty = len(shop.Products) == 0
	return nil
}

// resolveLocation never fails: any lookup problem or an empty answer selects
// models.FallbackLocation.
func (vm *ViewModel) resolveLocation(ctx context.Context, job *loadJob) error {
	geo := models.FallbackLocation
	results, err := vm.geocoder.Geocode(ctx, job.shop.Address)
	switch {
	case err != nil:
		vm.logger.Warn("geocoding failed, using fallback location",
			zap.String("address", job.shop.Address), zap.Error(err))
	case len(results) == 0:
		vm.logger.Info("no geocoding results, using fallback location", zap.String("address", job.shop.Address))
	default:
		geo = results[0]
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.shopID == job.id {
		vm.geo = &geo
	}
	return nil
}

// SelectCategory switches the category and fetches its products from the
// category endpoint. The selection changes even if the fetch fails, in which
// case the previous products and empty flag are kept.
func (vm *ViewModel) SelectCategory(ctx context.Context, category string) error {
	vm.mu.Lock()
	vm.selected = category
	id := vm.shopID
	vm.mu.Unlock()

	if id == "" {
		return ErrNoShop
	}

	products, err := vm.repo.ProductsByCategory(ctx, id, category)
	if err != nil {
		vm.logger.Error("failed to fetch products",
			zap.String("shop_id", id), zap.String("category", category), zap.Error(err))
		return err
	}
	if products == nil {
		products = []models.Product{}
	}

	vm.mu.Lock()
	if vm.shopID != id || vm.selected != category {
		vm.mu.Unlock()
		vm.logger.Debug("dropping stale products response", zap.String("shop_id", id), zap.String("category", category))
		return nil
	}
	if vm.shop != nil {
		vm.shop.Products = products
	}
	vm.categoryEmpty = len(products) == 0
	vm.mu.Unlock()

	e := activity.NewEvent(activity.CategorySelected)
	e.ShopID = id
	e.Category = category
	e.ResultCount = len(products)
	vm.sink.Record(ctx, e)
	return nil
}

// OpenInMaps returns the intent to open the shop location in Google Maps. It
// reports false while the location is unresolved.
func (vm *ViewModel) OpenInMaps() (MapIntent, bool) {
	vm.mu.RLock()
	geo := vm.geo
	vm.mu.RUnlock()

	if geo == nil {
		vm.logger.Info("no map data available")
		return MapIntent{}, false
	}
	lat, lng := geo.Location.Lat, geo.Location.Lng
	return MapIntent{
		Lat: lat,
		Lng: lng,
		URL: "https://www.google.com/maps/search/?api=1&query=" +
			strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64),
	}, true
}

// LocateUser asks for the device location once. A denial is logged and leaves
// UserLocation unset.
func (vm *ViewModel) LocateUser(ctx context.Context) {
	if vm.locator == nil {
		return
	}
	coords, err := vm.locator.CurrentLocation(ctx)
	if err != nil {
		vm.logger.Info("user location unavailable", zap.Error(err))
		return
	}
	vm.mu.Lock()
	vm.userLocation = &coords
	vm.mu.Unlock()
}

// Shop returns a copy of the loaded shop, or nil while loading.
func (vm *ViewModel) Shop() *models.Shop {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if vm.shop == nil {
		return nil
	}
	s := vm.shop.Clone()
	return &s
}

func (vm *ViewModel) Loading() bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.shop == nil
}

func (vm *ViewModel) SelectedCategory() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.selected
}

func (vm *ViewModel) CategoryEmpty() bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.categoryEmpty
}

func (vm *ViewModel) Geo() *models.GeoResult {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if vm.geo == nil {
		return nil
	}
	g := *vm.geo
	return &g
}

func (vm *ViewModel) UserLocation() *models.Coordinates {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if vm.userLocation == nil {
		return nil
	}
	c := *vm.userLocation
	return &c
}
