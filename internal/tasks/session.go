package tasks

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/session"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/desertthunder/mrx/internal/store"
	"golang.org/x/oauth2"
)

// SessionBridge keeps the in-memory auth slice and the credential store in step.
//
// It is the memory token source and the session handler of the request
// pipeline: refreshed tokens land in both places, and an unrecoverable 401
// clears both.
type SessionBridge struct {
	store   *store.Store
	storage *session.Storage
	logger  *log.Logger
}

// NewSessionBridge links st and storage.
func NewSessionBridge(st *store.Store, storage *session.Storage, logger *log.Logger) *SessionBridge {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &SessionBridge{store: st, storage: storage, logger: logger.With("component", "session")}
}

// Token returns the pair held in memory.
func (b *SessionBridge) Token() (*oauth2.Token, error) {
	auth := b.store.State().Auth
	if auth.AccessToken == "" && auth.RefreshToken == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return session.NewToken(auth.AccessToken, auth.RefreshToken), nil
}

// Storage returns the persistent credential store.
func (b *SessionBridge) Storage() *session.Storage { return b.storage }

// TokensRefreshed writes the new pair to disk, then to memory.
func (b *SessionBridge) TokensRefreshed(tok *oauth2.Token) {
	b.storage.UpdateTokens(tok.AccessToken, tok.RefreshToken)
	b.store.Dispatch(store.TokensRefreshed{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken})
	b.logger.Debug("tokens refreshed")
}

// SessionExpired signs the user out everywhere.
func (b *SessionBridge) SessionExpired() {
	b.storage.Clear()
	b.store.Dispatch(store.LoggedOut{})
	b.logger.Info("session expired")
}

// Hydrate loads the stored session into the auth slice.
func (b *SessionBridge) Hydrate() models.Session {
	sess := b.storage.Read()
	b.store.Dispatch(store.Hydrated{Session: sess})
	return sess
}

func (b *SessionBridge) signIn(access, refresh string, user *models.User) {
	b.storage.Save(access, refresh, user)
}

func (b *SessionBridge) signOut() {
	b.storage.Clear()
}
