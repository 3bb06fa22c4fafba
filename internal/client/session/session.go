// Package session owns login and logout.
//
// Both transitions wipe every cached resource in one transaction and then
// call Reset on each registered component, so no data from one account is
// ever shown to another.
package session

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"

	"github.com/dmitrijs2005/legaltrack/internal/client/repositories/cache"
	"github.com/dmitrijs2005/legaltrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/legaltrack/internal/dbx"
	"github.com/dmitrijs2005/legaltrack/internal/logging"
)

var (
	ErrEmptyToken = errors.New("token is empty")
	ErrNoSession  = errors.New("not logged in")
)

// Resetter drops in-memory state. Controllers, the feed, the prefetcher and
// the read-state store implement it.
type Resetter interface {
	Reset()
}

// Purger removes state kept outside the cache database, e.g. documents.
type Purger interface {
	Purge(ctx context.Context) error
}

type API interface {
	SetToken(token string)
	Logout(ctx context.Context) error
}

// Account identifies who the local data belongs to.
type Account struct {
	ID        string
	Subject   string
	ExpiresAt time.Time
}

// Fingerprint derives an account id from a token without verifying it: the
// JWT subject when the token is a JWT, otherwise a BLAKE2b hash.
func Fingerprint(token string) Account {
	var acc Account

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if sub, err := claims.GetSubject(); err == nil {
			acc.Subject = sub
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			acc.ExpiresAt = exp.Time
		}
	}

	if acc.Subject != "" {
		acc.ID = "sub:" + acc.Subject
	} else {
		sum := blake2b.Sum256([]byte(token))
		acc.ID = "h:" + hex.EncodeToString(sum[:8])
	}
	return acc
}

type Manager struct {
	db  DB
	api API
	log logging.Logger

	mu         sync.Mutex
	components []Resetter
	purgers    []Purger
	afterLogin []func(ctx context.Context) error
}

// DB is what the manager needs from *sql.DB.
type DB interface {
	dbx.DBTX
	dbx.TxBeginner
}

func NewManager(db DB, api API, log logging.Logger) *Manager {
	return &Manager{db: db, api: api, log: log.With("component", "session")}
}

// Register adds components to reset on every login and logout.
func (m *Manager) Register(rs ...Resetter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, rs...)
}

func (m *Manager) RegisterPurger(ps ...Purger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purgers = append(m.purgers, ps...)
}

// OnLogin adds a hook run after a successful login. Hook errors are logged.
func (m *Manager) OnLogin(fn func(ctx context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.afterLogin = append(m.afterLogin, fn)
}

func (m *Manager) Login(ctx context.Context, token string) (Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Account{}, ErrEmptyToken
	}
	acc := Fingerprint(token)

	// stop the old session's in-flight writes before the wipe
	m.resetComponents()

	err := dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := wipe(ctx, tx); err != nil {
			return err
		}
		meta := metadata.NewSQLiteRepository(tx)
		if err := meta.Set(ctx, metadata.KeyToken, token); err != nil {
			return err
		}
		return meta.Set(ctx, metadata.KeyAccount, acc.ID)
	})
	if err != nil {
		return Account{}, fmt.Errorf("login: %w", err)
	}

	m.api.SetToken(token)
	m.purge(ctx)
	m.log.Info(ctx, "logged in", "account", acc.ID)

	m.mu.Lock()
	hooks := append([]func(context.Context) error(nil), m.afterLogin...)
	m.mu.Unlock()
	for _, h := range hooks {
		if err := h(ctx); err != nil {
			m.log.Warn(ctx, "after-login hook failed", "error", err)
		}
	}
	return acc, nil
}

// Logout tells the backend (best effort) and wipes local state.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.api.Logout(ctx); err != nil {
		m.log.Warn(ctx, "remote logout failed, clearing local session anyway", "error", err)
	}
	m.api.SetToken("")
	m.resetComponents()

	err := dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return wipe(ctx, tx)
	})
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	m.purge(ctx)
	m.log.Info(ctx, "logged out")
	return nil
}

// wipe clears all resource keys and the session rows. The installation id
// and the push subscriber id belong to the device and stay.
func wipe(ctx context.Context, tx dbx.DBTX) error {
	if err := cache.NewSQLiteRepository(tx).Clear(ctx); err != nil {
		return err
	}
	return metadata.NewSQLiteRepository(tx).Delete(ctx, metadata.SessionKeys()...)
}

// resetComponents cancels in-flight loads and drops in-memory state, so
// nothing from the old session reaches the cache after the wipe.
func (m *Manager) resetComponents() {
	m.mu.Lock()
	components := append([]Resetter(nil), m.components...)
	m.mu.Unlock()

	for _, c := range components {
		c.Reset()
	}
}

func (m *Manager) purge(ctx context.Context) {
	m.mu.Lock()
	purgers := append([]Purger(nil), m.purgers...)
	m.mu.Unlock()

	for _, p := range purgers {
		if err := p.Purge(ctx); err != nil {
			m.log.Warn(ctx, "purge failed", "error", err)
		}
	}
}

// Restore reapplies a saved token at startup.
func (m *Manager) Restore(ctx context.Context) (Account, error) {
	token, err := metadata.NewSQLiteRepository(m.db).Get(ctx, metadata.KeyToken)
	if err != nil {
		return Account{}, err
	}
	if token == "" {
		return Account{}, ErrNoSession
	}
	m.api.SetToken(token)
	return Fingerprint(token), nil
}
