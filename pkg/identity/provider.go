package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"campusconnect/internal/entity"
	"campusconnect/pkg/jwt"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrTokenRevoked    = errors.New("token has been revoked")
)

type claimsKeyType struct{}

var claimsKey = claimsKeyType{}

// AuthStateFunc is called with signedIn=false when the user signs out and
// signedIn=true when a new token is issued.
type AuthStateFunc func(userId string, signedIn bool)

// Provider answers "who is calling" for the use cases and owns sign-out.
type Provider struct {
	tokens      *jwt.JWTManager
	revocations Revocations

	mu        sync.Mutex
	listeners map[string]map[int64]AuthStateFunc
	nextId    int64
}

func NewProvider(tokens *jwt.JWTManager, revocations Revocations) *Provider {
	return &Provider{
		tokens:      tokens,
		revocations: revocations,
		listeners:   make(map[string]map[int64]AuthStateFunc),
	}
}

// Authenticate validates a bearer token and rejects revoked ones.
func (p *Provider) Authenticate(ctx context.Context, token string) (*entity.TokenClaims, error) {
	claims, err := p.tokens.ValidateAccessToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	revoked, err := p.revocations.IsRevoked(ctx, claims.TokenId)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, ErrTokenRevoked)
	}
	return claims, nil
}

// IssueToken signs a token for userId and notifies listeners.
func (p *Provider) IssueToken(userId, email string) (string, error) {
	token, err := p.tokens.GenerateAccessToken(userId, email)
	if err != nil {
		return "", err
	}
	p.notify(userId, true)
	return token, nil
}

func ContextWithClaims(ctx context.Context, claims *entity.TokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) (*entity.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*entity.TokenClaims)
	return claims, ok && claims != nil
}

func (p *Provider) CurrentUserID(ctx context.Context) (string, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok || claims.UserId == "" {
		return "", ErrUnauthenticated
	}
	return claims.UserId, nil
}

// SignOut revokes the calling token until it would have expired anyway.
func (p *Provider) SignOut(ctx context.Context) error {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if err := p.revocations.Revoke(ctx, claims.TokenId, claims.ExpiresAt); err != nil {
		return err
	}
	p.notify(claims.UserId, false)
	return nil
}

// OnAuthStateChanged registers fn for userId's sign-in and sign-out events.
func (p *Provider) OnAuthStateChanged(userId string, fn AuthStateFunc) (unsubscribe func()) {
	p.mu.Lock()
	p.nextId++
	id := p.nextId
	if p.listeners[userId] == nil {
		p.listeners[userId] = make(map[int64]AuthStateFunc)
	}
	p.listeners[userId][id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.listeners[userId], id)
			if len(p.listeners[userId]) == 0 {
				delete(p.listeners, userId)
			}
		})
	}
}

func (p *Provider) notify(userId string, signedIn bool) {
	p.mu.Lock()
	fns := make([]AuthStateFunc, 0, len(p.listeners[userId]))
	for _, fn := range p.listeners[userId] {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(userId, signedIn)
	}
}
