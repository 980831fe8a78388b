// cmd/tools/provider-indexer/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"mentor-match/internal/common/config"
	"mentor-match/internal/common/database"
	"mentor-match/internal/common/logger"
	"mentor-match/internal/models"
	"mentor-match/internal/repository"
)

// providerIndex is the write side of the search index.
type providerIndex interface {
	IndexProvider(ctx context.Context, p *models.Provider, refresh bool) error
}

// poolCache drops cached pool entries once the index changes.
type poolCache interface {
	InvalidateProviders(ctx context.Context, ids ...string) error
}

func main() {
	syncCmd := flag.NewFlagSet("sync", flag.ExitOnError)
	indexCmd := flag.NewFlagSet("index", flag.ExitOnError)
	searchCmd := flag.NewFlagSet("search", flag.ExitOnError)

	// Sync command flags
	approvedOnly := syncCmd.Bool("approved-only", false, "Index approved providers only")
	dryRun := syncCmd.Bool("dry-run", false, "List what would be indexed without writing")

	// Index command flags
	idIndex := indexCmd.String("id", "", "Provider ID to (re)index")

	// Search command flags
	text := searchCmd.String("q", "", "Free text query")
	specialization := searchCmd.String("specialization", "", "Service type filter (e.g., essay_review)")
	limit := searchCmd.Int("limit", 10, "Maximum results")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	switch os.Args[1] {
	case "sync":
		syncCmd.Parse(os.Args[2:])
		env := mustConnect(true)
		defer env.close()

		n, err := syncProviders(ctx, env.pgStore, env.searchStore, env.cache(), *approvedOnly, *dryRun)
		if err != nil {
			fmt.Printf("Error syncing providers: %v\n", err)
			os.Exit(1)
		}
		if *dryRun {
			fmt.Printf("Dry run: %d providers would be indexed.\n", n)
			return
		}
		fmt.Printf("Indexed %d providers into %s.\n", n, env.cfg.Database.Elasticsearch.ProviderIndex)

	case "index":
		indexCmd.Parse(os.Args[2:])
		if *idIndex == "" {
			fmt.Println("Error: id is required for index.")
			indexCmd.Usage()
			os.Exit(1)
		}
		env := mustConnect(true)
		defer env.close()

		p, err := env.pgStore.GetProvider(ctx, *idIndex)
		if err != nil {
			fmt.Printf("Error loading provider %s: %v\n", *idIndex, err)
			os.Exit(1)
		}
		if err := env.searchStore.IndexProvider(ctx, p, true); err != nil {
			fmt.Printf("Error indexing provider %s: %v\n", *idIndex, err)
			os.Exit(1)
		}
		if err := invalidate(ctx, env.cache(), p.ID); err != nil {
			fmt.Printf("Error invalidating cache for %s: %v\n", *idIndex, err)
			os.Exit(1)
		}
		fmt.Printf("Indexed provider: %s\n", *idIndex)

	case "search":
		searchCmd.Parse(os.Args[2:])
		env := mustConnect(false)
		defer env.close()

		found, err := env.searchStore.SearchProviders(ctx, repository.ProviderQuery{
			Text:           *text,
			Specialization: *specialization,
			Limit:          *limit,
		})
		if err != nil {
			fmt.Printf("Search failed: %v\n", err)
			os.Exit(1)
		}
		out, _ := json.MarshalIndent(found, "", "  ")
		fmt.Println(string(out))

	case "help":
		fallthrough
	default:
		help()
	}
}

// syncProviders copies the Postgres pool into the search index and returns
// how many providers were (or would be) written. The cached pool is dropped
// after a write so the service reloads it; cache may be nil.
func syncProviders(ctx context.Context, src repository.ProviderStore, dst providerIndex, cache poolCache, approvedOnly, dryRun bool) (int, error) {
	pool, err := src.ListProviders(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load providers: %w", err)
	}

	selected := make([]*models.Provider, 0, len(pool))
	for _, p := range pool {
		if approvedOnly && !p.IsApproved() {
			continue
		}
		selected = append(selected, p)
	}

	if dryRun {
		for _, p := range selected {
			fmt.Printf("  %s (%s, %.1f)\n", p.ID, p.Status, p.Rating)
		}
		return len(selected), nil
	}

	n := 0
	ids := make([]string, 0, len(selected))
	for i, p := range selected {
		// Refresh once at the end so the batch becomes searchable together.
		if err := dst.IndexProvider(ctx, p, i == len(selected)-1); err != nil {
			return n, errors.Join(
				fmt.Errorf("failed to index provider %s: %w", p.ID, err),
				invalidate(ctx, cache, ids...),
			)
		}
		ids = append(ids, p.ID)
		n++
	}
	return n, invalidate(ctx, cache, ids...)
}

func invalidate(ctx context.Context, cache poolCache, ids ...string) error {
	if cache == nil {
		return nil
	}
	if err := cache.InvalidateProviders(ctx, ids...); err != nil {
		return fmt.Errorf("failed to invalidate provider cache: %w", err)
	}
	return nil
}

type toolEnv struct {
	cfg         *config.Config
	pg          *database.PostgresClient
	pgStore     *repository.PostgresStore
	searchStore *repository.SearchStore
	redis       *database.RedisClient
	cachedStore *repository.CachedStore
}

// cache returns nil when Redis is not configured.
func (e *toolEnv) cache() poolCache {
	if e.cachedStore == nil {
		return nil
	}
	return e.cachedStore
}

func (e *toolEnv) close() {
	if e.redis != nil {
		_ = e.redis.Close()
	}
	if e.pg != nil {
		_ = e.pg.Close()
	}
}

func mustConnect(withPostgres bool) *toolEnv {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Database.Elasticsearch.Enabled() {
		fmt.Println("Error: database.elasticsearch.url is not configured.")
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, "console")
	env := &toolEnv{cfg: cfg}

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
	if err != nil {
		fmt.Printf("Error connecting to elasticsearch: %v\n", err)
		os.Exit(1)
	}
	env.searchStore = repository.NewSearchStore(es, cfg.Database.Elasticsearch.ProviderIndex, log)

	if withPostgres {
		env.pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			fmt.Printf("Error connecting to postgres: %v\n", err)
			os.Exit(1)
		}
		env.pgStore = repository.NewPostgresStore(env.pg, log)

		if cfg.Database.Redis.Enabled() {
			env.redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				fmt.Printf("Error connecting to redis: %v\n", err)
				os.Exit(1)
			}
			env.cachedStore = repository.NewCachedStore(env.pgStore, env.pgStore, env.redis, repository.CacheTTLs{
				User:     time.Duration(cfg.Database.Redis.UserTTL) * time.Second,
				Provider: time.Duration(cfg.Database.Redis.ProviderTTL) * time.Second,
			}, log)
		}
	}
	return env
}

func help() {
	fmt.Print(`
Usage: provider-indexer <command> [flags]

Commands:
  sync    Copy every provider from Postgres into the search index
  index   Reindex a single provider
  search  Query the provider index
  help    Show this help message

Examples:
  provider-indexer sync -approved-only
  provider-indexer sync -dry-run
  provider-indexer index -id 5b0c9b8e-0b7e-4c55-9f7f-2b8f6f1b8f11
  provider-indexer search -q duke -specialization essay_review -limit 5

Use 'provider-indexer <command> -h' for more information about a command.
` + "\n")
}
