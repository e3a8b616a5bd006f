package web

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/louisbranch/agencysite/internal/platform/requestctx"
	"github.com/louisbranch/agencysite/internal/services/site/domain/accounts"
	chatdomain "github.com/louisbranch/agencysite/internal/services/site/domain/chat"
	"github.com/louisbranch/agencysite/internal/services/site/domain/inbox"
	"github.com/louisbranch/agencysite/internal/services/site/web/module"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/httpx"
	"github.com/louisbranch/agencysite/internal/services/site/web/platform/sessioncookie"
)

type requestPrincipalState struct {
	userOnce   sync.Once
	user       accounts.User
	userOK     bool
	viewerOnce sync.Once
	viewer     module.Viewer
}

type requestPrincipalStateKey struct{}

type principalResolver struct {
	sessions *accounts.Sessions
	accounts *accounts.Service
	inbox    *inbox.Service
	chat     *chatdomain.Service
	logger   *zap.Logger
}

func newPrincipalResolver(deps module.Dependencies) principalResolver {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return principalResolver{
		sessions: deps.Sessions,
		accounts: deps.Accounts,
		inbox:    deps.Inbox,
		chat:     deps.Chat,
		logger:   logger,
	}
}

func withRequestPrincipalState() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := &requestPrincipalState{}
			ctx := context.WithValue(r.Context(), requestPrincipalStateKey{}, state)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestPrincipalStateFromRequest(r *http.Request) *requestPrincipalState {
	if r == nil {
		return nil
	}
	state, _ := r.Context().Value(requestPrincipalStateKey{}).(*requestPrincipalState)
	return state
}

func (p principalResolver) resolveUserUncached(r *http.Request) (accounts.User, bool) {
	if p.sessions == nil || p.accounts == nil {
		return accounts.User{}, false
	}
	token, ok := sessioncookie.Read(r)
	if !ok {
		return accounts.User{}, false
	}
	email, err := p.sessions.Parse(token)
	if err != nil {
		return accounts.User{}, false
	}
	// A deleted account invalidates its outstanding sessions.
	user, err := p.accounts.User(r.Context(), email)
	if err != nil {
		return accounts.User{}, false
	}
	requestctx.SetUserEmail(r.Context(), user.Email)
	return user, true
}

func (p principalResolver) resolveUser(r *http.Request) (accounts.User, bool) {
	if state := requestPrincipalStateFromRequest(r); state != nil {
		state.userOnce.Do(func() {
			state.user, state.userOK = p.resolveUserUncached(r)
		})
		return state.user, state.userOK
	}
	return p.resolveUserUncached(r)
}

func (p principalResolver) resolveViewerUncached(r *http.Request) module.Viewer {
	user, ok := p.resolveUser(r)
	if !ok {
		return module.Viewer{}
	}
	viewer := module.Viewer{
		Email:     user.Email,
		Name:      user.Name,
		Username:  user.Username,
		AvatarURL: user.Avatar,
		Plan:      user.Plan,
		IsAdmin:   user.IsAdmin(),
	}
	ctx := r.Context()
	if p.inbox != nil {
		unread, err := p.inbox.UnreadCount(ctx, user.Email)
		if err != nil {
			p.logger.Warn("count unread messages", zap.String("user", user.Email), zap.Error(err))
		}
		viewer.UnreadMessages = unread
	}
	if p.chat != nil {
		var unread int
		var err error
		if viewer.IsAdmin {
			unread, err = p.chat.TotalUnreadForSupport(ctx)
		} else {
			unread, err = p.chat.UnreadFor(ctx, user.Email, chatdomain.SenderUser)
		}
		if err != nil {
			p.logger.Warn("count unread chat", zap.String("user", user.Email), zap.Error(err))
		}
		viewer.UnreadChat = unread
	}
	return viewer
}

func (p principalResolver) resolveViewer(r *http.Request) module.Viewer {
	if state := requestPrincipalStateFromRequest(r); state != nil {
		state.viewerOnce.Do(func() {
			state.viewer = p.resolveViewerUncached(r)
		})
		return state.viewer
	}
	return p.resolveViewerUncached(r)
}
