package account

import (
	"net/http"

	"github.com/louisbranch/agencysite/internal/services/site/web/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.AppPrefix+"{$}", h.redirectProfile)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppProfile, h.handleProfile)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppProfile, h.handleProfileUpdate)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppPassword, h.handlePasswordChange)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppUpgrade, h.handleUpgrade)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppMessages, h.handleMessages)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppMessageRead, h.handleMessageRead)
	mux.HandleFunc(routepath.AppPrefix+"{rest...}", h.handleNotFound)
}
