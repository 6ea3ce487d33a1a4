// Package session tracks the signed-in user and tells observers when the
// identity changes.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/log"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptyUser    = errors.New("empty user id")
	ErrInvalidToken = errors.New("invalid session token")
	ErrNoSecret     = errors.New("session secret not configured")
)

type EventKind int

const (
	SignedIn EventKind = iota + 1
	SignedOut
)

func (k EventKind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	}
	return "unknown"
}

type Event struct {
	Kind   EventKind
	UserID string
}

// Handler receives identity changes synchronously, in subscription order.
type Handler func(ctx context.Context, e Event)

type Binding struct {
	secret []byte
	logger *log.Logger

	mu     sync.RWMutex
	user   string
	nextID int
	subs   map[int]Handler
	order  []int
}

// New creates an empty binding. secret verifies and signs HS256 tokens; it
// may be nil when only SignIn is used.
func New(secret []byte, logger *log.Logger) *Binding {
	if logger == nil {
		logger = log.Discard()
	}
	return &Binding{
		secret: secret,
		logger: logger.WithComponent(log.ComponentSession),
		subs:   map[int]Handler{},
	}
}

// CurrentUser returns the signed-in user id.
func (b *Binding) CurrentUser() (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.user, b.user != ""
}

// SignIn switches the identity to userID. A different user that was signed
// in is signed out first.
func (b *Binding) SignIn(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrEmptyUser
	}
	b.mu.Lock()
	prev := b.user
	b.user = userID
	b.mu.Unlock()

	if prev != "" && prev != userID {
		b.emit(ctx, Event{Kind: SignedOut, UserID: prev})
	}
	b.logger.InfoContext(ctx, "User signed in", log.FieldOperation, log.OpSignIn, log.FieldUserID, userID)
	b.emit(ctx, Event{Kind: SignedIn, UserID: userID})
	return nil
}

// SignInWithToken verifies an HS256 token and signs in its subject.
func (b *Binding) SignInWithToken(ctx context.Context, token string) (string, error) {
	if len(b.secret) == 0 {
		return "", ErrNoSecret
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return b.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		b.logger.WarnContext(ctx, "Rejected session token",
			log.FieldOperation, log.OpSignIn, log.FieldError, err)
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if err := b.SignIn(ctx, claims.Subject); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// IssueToken signs a token for userID valid for ttl.
func (b *Binding) IssueToken(userID string, ttl time.Duration) (string, error) {
	if len(b.secret) == 0 {
		return "", ErrNoSecret
	}
	if userID == "" {
		return "", ErrEmptyUser
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	s, err := token.SignedString(b.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// SignOut clears the identity. Signing out twice notifies once.
func (b *Binding) SignOut(ctx context.Context) {
	b.mu.Lock()
	prev := b.user
	b.user = ""
	b.mu.Unlock()
	if prev == "" {
		return
	}
	b.logger.InfoContext(ctx, "User signed out", log.FieldOperation, log.OpSignOut, log.FieldUserID, prev)
	b.emit(ctx, Event{Kind: SignedOut, UserID: prev})
}

// Subscribe registers h and returns a function that removes it.
func (b *Binding) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[id] = h
	b.order = append(b.order, id)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i:i], b.order[i+1:]...)
				break
			}
		}
	}
}

func (b *Binding) emit(ctx context.Context, e Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.RUnlock()
	for _, h := range handlers {
		h(ctx, e)
	}
}
