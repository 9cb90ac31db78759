package finance_client

import (
	"log"
	"net/http"

	"github.com/refina/finance_client/dashboard"
	"github.com/refina/finance_client/editor"
	"github.com/refina/finance_client/finance_api"
	"github.com/refina/finance_client/local_store"
	"github.com/refina/finance_client/session"
	"gorm.io/gorm"
)

type MigrationHandler func() error

func NewMigrationHandler(
	db *gorm.DB,
) MigrationHandler {
	return func() error {
		log.Println("migrating local mirror")
		return local_store.NewMirror(db).Migrate()
	}
}

// ClientSet bundles the fully wired client surface: API client, session,
// editor panel and dashboard service over one HTTP stack.
type ClientSet struct {
	Session   *session.Session
	API       *finance_api.Client
	Panel     *editor.Panel
	Dashboard dashboard.DashboardService
	Mirror    *local_store.Mirror
}

func NewClientSet(
	baseURL string,
	httpClient *http.Client,
	db *gorm.DB,
) *ClientSet {
	sess := session.NewSession()
	api := finance_api.NewClient(baseURL, httpClient, sess)

	var mirror *local_store.Mirror
	if db != nil {
		mirror = local_store.NewMirror(db)
	}

	return &ClientSet{
		Session:   sess,
		API:       api,
		Panel:     editor.NewPanel(api, api, api, api),
		Dashboard: dashboard.NewDashboardService(api, mirror),
		Mirror:    mirror,
	}
}
