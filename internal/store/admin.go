package store

import (
	"net/http"

	"github.com/tailscale/tailsql/server/tailsql"

	"github.com/trackside-data/pitchclip/internal/monitoring"
)

// AttachAdminRoutes mounts a tailSQL console over the live database under
// /debug/tailsql/ for ad-hoc inspection of the registry and render history.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) error {
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		return err
	}
	tsql.SetDB("sqlite://pitchclip.db", db.DB, &tailsql.DBOptions{
		Label: "Clip DB",
	})

	mux.Handle("/debug/tailsql/", tsql.NewMux())
	monitoring.Logf("store: tailsql console mounted at /debug/tailsql/")
	return nil
}
