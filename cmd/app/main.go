package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/glebarez/sqlite"
	finance_client "github.com/refina/finance_client"
	"github.com/refina/finance_client/configs"
	"github.com/refina/finance_client/finance_api"
	"github.com/refina/finance_client/netcache"
	"github.com/refina/finance_client/ware_cache"
	"gorm.io/gorm"
)

func NewCache(cfg *configs.AppConfig) (ware_cache.Cache, error) {
	return ware_cache.NewBadgerCache(cfg.CacheDir)
}

func NewRetryQueue(cfg *configs.AppConfig) (*netcache.RetryQueue, error) {
	return netcache.NewRetryQueue(cfg.QueueDir, nil)
}

func NewHTTPClient(
	cfg *configs.AppConfig,
	cache ware_cache.Cache,
	queue *netcache.RetryQueue,
) *http.Client {
	transport := netcache.NewTransport(nil, cache, queue, &netcache.Config{
		NetworkFirstPrefixes: []string{
			"/categories",
			"/users/wallets",
			"/transactions/user-summary",
			"/transactions/user-monthly-summary",
			"/transactions/user-most-expenses",
			"/transactions/user-wallet-daily-summary",
		},
		QueuePrefixes: []string{
			"/transactions",
		},
	})

	return &http.Client{Transport: transport}
}

func NewDatabase(cfg *configs.AppConfig) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(cfg.MirrorDSN), &gorm.Config{})
}

func NewClients(
	cfg *configs.AppConfig,
	httpClient *http.Client,
	db *gorm.DB,
) *finance_client.ClientSet {
	return finance_client.NewClientSet(cfg.BaseURL, httpClient, db)
}

type App struct {
	Run func() error
}

// NewApp builds the headless sync agent: migrate the mirror, sign in, warm
// the local snapshots, then keep the dashboard and retry queue running until
// signaled.
func NewApp(
	cfg *configs.AppConfig,
	clients *finance_client.ClientSet,
	queue *netcache.RetryQueue,
	migrate finance_client.MigrationHandler,
) *App {
	return &App{
		Run: func() error {
			ctx := context.Background()

			err := migrate()
			if err != nil {
				return err
			}

			token, err := clients.API.Login(ctx, &finance_api.LoginPayload{
				Email:    cfg.Email,
				Password: cfg.Password,
			})
			if err != nil {
				return err
			}
			clients.Session.SetToken(token)
			log.Println("signed in as", cfg.Email)

			warmMirror(ctx, clients)

			_, err = clients.Dashboard.Refresh(ctx)
			if err != nil {
				log.Println("initial dashboard refresh failed:", err)
			}

			err = clients.Dashboard.StartRefresher(cfg.RefreshSchedule)
			if err != nil {
				return err
			}
			err = queue.StartFlusher(cfg.QueueFlushSchedule)
			if err != nil {
				return err
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
			<-stop
			log.Println("shutting down")

			clients.Dashboard.Stop()
			return queue.Close()
		},
	}
}

func warmMirror(ctx context.Context, clients *finance_client.ClientSet) {
	if clients.Mirror == nil {
		return
	}

	wallets, err := clients.API.Wallets(ctx)
	if err == nil {
		err = clients.Mirror.SaveWallets(ctx, wallets)
	}
	if err != nil {
		log.Println("wallet mirror warmup failed:", err)
	}

	types := []finance_api.TransactionType{
		finance_api.TypeIncome,
		finance_api.TypeExpense,
		finance_api.TypeTransfer,
	}
	for _, typ := range types {
		groups, err := clients.API.CategoriesByType(ctx, typ)
		if err == nil {
			err = clients.Mirror.SaveCategories(ctx, typ, groups)
		}
		if err != nil {
			log.Println("category mirror warmup failed:", err)
		}
	}
}

func main() {
	app, err := InitializeApp()
	if err != nil {
		panic(err)
	}

	err = app.Run()
	if err != nil {
		panic(err)
	}
}
