package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"slices"

	"go.uber.org/zap"

	"coffeeshop/internal/activity"
	"coffeeshop/internal/config"
	"coffeeshop/internal/detail"
	"coffeeshop/internal/listing"
	"coffeeshop/internal/models"
	"coffeeshop/internal/storage"
	"coffeeshop/pkg/graceful"
	"coffeeshop/pkg/kafkaclient"
	"coffeeshop/pkg/location"
	"coffeeshop/pkg/logger"
	"coffeeshop/pkg/shopapi"
)

func main() {
	configPath := flag.String("config", "storefront.yaml", "optional YAML config file")
	query := flag.String("q", "", "search query, empty lists every shop")
	shopID := flag.String("shop", "", "open the detail view for this shop id")
	category := flag.String("category", "", "product category for the detail view")
	favorite := flag.String("favorite", "", "toggle the favorite flag of this shop id")
	snapshot := flag.Bool("snapshot", false, "store the listed shops in the asset bucket")
	fromSnapshot := flag.Bool("from-snapshot", false, "read the detail view from the stored snapshot instead of the API")
	near := flag.String("near", "", "device location as lat,lng; location access is off without it")
	flag.Parse()

	hasEnv := config.LoadEnv()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Must(logger.Options{Development: cfg.Development(), Level: cfg.LogLevel, File: cfg.LogFile})
	defer func() { _ = log.Sync() }()
	if !hasEnv {
		log.Debug("no .env file found, assuming environment variables are set directly")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	if !validCategory(*category) {
		log.Fatal("unknown category", zap.String("category", *category), zap.Strings("categories", models.Categories))
	}
	device, err := parseNear(*near)
	if err != nil {
		log.Fatal("invalid -near", zap.Error(err))
	}

	ctx, cancel := graceful.Context(context.Background(), log)
	defer cancel()

	api := shopapi.NewClient(cfg.APIURL,
		shopapi.WithTimeout(cfg.HTTPTimeout),
		shopapi.WithRateLimit(cfg.APIRateLimit),
		shopapi.WithLogger(log.Named("shopapi")),
	)
	geocoder := location.NewCachedGeocoder(
		location.NewClient(cfg.GoogleMapsAPIKey, &http.Client{Timeout: cfg.HTTPTimeout}, log.Named("geocode")),
	)

	sink := activity.Discard
	if cfg.Kafka.Enabled() {
		producer := kafkaclient.NewKafkaProducer(cfg.Kafka.Topic, cfg.Kafka.Broker, log.Named("kafka"))
		defer func() {
			if err := producer.Close(); err != nil {
				log.Warn("closing kafka producer", zap.Error(err))
			}
		}()
		sink = activity.NewPublisher(producer, log.Named("activity"))
	}

	defaultImage := cfg.DefaultImageURL
	var assets *storage.AssetStore
	if cfg.Minio.Enabled() {
		assets, err = storage.NewAssetStore(cfg.Minio, log.Named("assets"))
		if err != nil {
			log.Fatal("failed to configure asset store", zap.Error(err))
		}
		if u, err := assets.DefaultImageURL(ctx); err != nil {
			log.Warn("using bundled default image", zap.Error(err))
		} else {
			defaultImage = u
		}
	}

	shops := listing.New(api,
		listing.WithLogger(log.Named("listing")),
		listing.WithActivity(sink),
		listing.WithDefaultImage(defaultImage),
	)
	if err := shops.Search(ctx, *query); err != nil {
		log.Error("search failed", zap.Error(err))
	}
	if *favorite != "" {
		now := shops.ToggleFavorite(ctx, *favorite)
		log.Info("favorite toggled", zap.String("shop_id", *favorite), zap.Bool("favorite", now))
	}
	printListing(shops)

	if *snapshot {
		if assets == nil {
			log.Error("snapshot requested but the asset store is not configured")
		} else {
			storeSnapshot(ctx, assets, shops.AllShops(), log)
		}
	}

	if *shopID != "" {
		var repo detail.Repository = api
		if *fromSnapshot {
			if assets == nil {
				log.Fatal("snapshot reads need the asset store to be configured")
			}
			repo = assets
		}
		vm := detail.New(repo, geocoder,
			detail.WithLogger(log.Named("detail")),
			detail.WithActivity(sink),
			detail.WithLocationProvider(device),
		)
		showDetail(ctx, vm, *shopID, *category)
	}

	shops.Wait()
}

func printListing(vm *listing.ViewModel) {
	if msg := vm.NoResultsMessage(); msg != "" {
		fmt.Println(msg)
		return
	}
	fmt.Println("Featured")
	for _, c := range vm.FeaturedCards() {
		fmt.Println(formatCard(c))
	}
	fmt.Println("\nAll shops")
	for _, c := range vm.AllCards() {
		fmt.Println(formatCard(c))
	}
}

func formatCard(c listing.Card) string {
	fav := " "
	if c.Favorite {
		fav = "*"
	}
	badge := ""
	if c.Featured {
		badge = " [featured]"
	}
	return fmt.Sprintf("%s %-30s %.1f (%s reviews) %s mi  %v%s", fav, c.Name, c.Rating, c.ReviewsLabel, c.DistanceLabel, c.Categories, badge)
}

// validCategory accepts an empty flag, which keeps the default category.
func validCategory(c string) bool {
	return c == "" || slices.Contains(models.Categories, c)
}

func storeSnapshot(ctx context.Context, assets *storage.AssetStore, shops []models.Shop, log *zap.Logger) {
	if err := assets.EnsureBucket(ctx); err != nil {
		log.Error("asset bucket unavailable", zap.Error(err))
		return
	}
	ch := make(chan models.Shop)
	go func() {
		defer close(ch)
		for _, s := range shops {
			select {
			case ch <- s:
			case <-ctx.Done():
				return
			}
		}
	}()
	n := assets.StoreShops(ctx, ch)
	fmt.Printf("\nstored %d shop snapshots\n", n)
}

func showDetail(ctx context.Context, vm *detail.ViewModel, id, category string) {
	vm.LocateUser(ctx)
	if err := vm.Load(ctx, id); err != nil {
		return
	}
	if category != "" && category != vm.SelectedCategory() {
		_ = vm.SelectCategory(ctx, category)
	}

	shop := vm.Shop()
	fmt.Printf("\n%s\n%s\n\n[%s]\n", shop.Name, shop.Address, vm.SelectedCategory())
	if vm.CategoryEmpty() {
		fmt.Println(detail.EmptyCategoryMessage)
	}
	for _, p := range shop.Products {
		fmt.Printf("  %-30s %8.2f\n", p.Name, p.Price)
	}
	if intent, ok := vm.OpenInMaps(); ok {
		fmt.Printf("\nmap: %s\n", intent.URL)
	}
	if here := vm.UserLocation(); here != nil {
		fmt.Printf("you are at %.4f,%.4f\n", here.Lat, here.Lng)
	}
}
