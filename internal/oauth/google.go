package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"placement/portal/internal/apperr"
	"placement/portal/internal/crypto"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// StateStore keeps one-time login states until the provider redirects back.
type StateStore interface {
	Save(ctx context.Context, state string, ttl time.Duration) error
	Consume(ctx context.Context, state string) (bool, error)
}

type RedisStateStore struct {
	client *redis.Client
}

func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client}
}

func stateKey(state string) string {
	return "oauth:state:" + crypto.HashToken(state)
}

func (s *RedisStateStore) Save(ctx context.Context, state string, ttl time.Duration) error {
	return s.client.Set(ctx, stateKey(state), "1", ttl).Err()
}

// Consume deletes the state and reports whether it existed.
func (s *RedisStateStore) Consume(ctx context.Context, state string) (bool, error) {
	deleted, err := s.client.Del(ctx, stateKey(state)).Result()
	if err != nil {
		return false, err
	}
	return deleted == 1, nil
}

type Profile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

type Google struct {
	config      *oauth2.Config
	states      StateStore
	stateTTL    time.Duration
	userInfoURL string
}

func NewGoogle(clientID, clientSecret, redirectURL string, states StateStore, stateTTL time.Duration) *Google {
	return &Google{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: google.Endpoint,
		},
		states:      states,
		stateTTL:    stateTTL,
		userInfoURL: googleUserInfoURL,
	}
}

// LoginURL issues a fresh state and returns the consent page URL.
func (g *Google) LoginURL(ctx context.Context) (string, error) {
	state, err := crypto.NewStateToken()
	if err != nil {
		return "", err
	}
	if err := g.states.Save(ctx, state, g.stateTTL); err != nil {
		return "", fmt.Errorf("save oauth state: %w", err)
	}
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Exchange validates the returned state, trades the code for a token and
// fetches the Google profile.
func (g *Google) Exchange(ctx context.Context, state, code string) (Profile, error) {
	if state == "" || code == "" {
		return Profile{}, apperr.Validation("Missing state or code")
	}
	ok, err := g.states.Consume(ctx, state)
	if err != nil {
		return Profile{}, apperr.Internal("consume oauth state", err)
	}
	if !ok {
		return Profile{}, apperr.Unauthorized("Invalid or expired login state")
	}

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return Profile{}, apperr.Unauthorized("Google sign-in failed")
	}

	resp, err := g.config.Client(ctx, token).Get(g.userInfoURL)
	if err != nil {
		return Profile{}, apperr.Internal("fetch google profile", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Profile{}, apperr.Internal("fetch google profile", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return Profile{}, apperr.Internal("decode google profile", err)
	}
	profile.Email = strings.ToLower(strings.TrimSpace(profile.Email))
	if profile.Email == "" || !profile.VerifiedEmail {
		return Profile{}, apperr.Unauthorized("Google account email is not verified")
	}
	return profile, nil
}
