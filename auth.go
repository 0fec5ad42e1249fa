package gapy

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
)

const (
	// OAuth2 scopes for Analytics API access.
	ScopeFull     = "https://www.googleapis.com/auth/analytics"
	ScopeReadOnly = "https://www.googleapis.com/auth/analytics.readonly"

	// Out-of-band redirect used by the installed-application consent flow.
	redirectURI = "urn:ietf:wg:oauth:2.0:oob"
)

// KeyConfig configures a service-account client. Either PrivateKey or
// PrivateKeyPath must be set, and either Storage or StoragePath.
type KeyConfig struct {
	AccountName    string // service account identifier (usually its email)
	PrivateKey     []byte // PEM key material
	PrivateKeyPath string // read when PrivateKey is empty

	Storage     Storage
	StoragePath string // file storage, used when Storage is nil

	ReadOnly   bool         // request the read-only scope
	HTTPClient *http.Client // overrides the default transport
	Hook       Hook
}

// SecretsConfig configures an installed/web application client built from a
// client secrets file. Either Storage or StoragePath must be set.
type SecretsConfig struct {
	Storage     Storage
	StoragePath string

	ReadOnly   bool
	HTTPClient *http.Client
	Hook       Hook

	// Authorize turns a consent URL into an authorization code during the
	// interactive flow. Defaults to printing the URL and reading the code
	// from stdin.
	Authorize func(authURL string) (code string, err error)
}

// FromPrivateKey creates a client for a service account. Fails with
// ErrConfig before any network call when key material or a storage target
// is missing.
func FromPrivateKey(ctx context.Context, cfg KeyConfig) (*Client, error) {
	key := cfg.PrivateKey
	if len(key) == 0 {
		if cfg.PrivateKeyPath == "" {
			return nil, fmt.Errorf("%w: must provide either a private key or a private key path", ErrConfig)
		}
		var err error
		key, err = os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key: %w", err)
		}
	}

	store, err := resolveStorage(cfg.Storage, cfg.StoragePath)
	if err != nil {
		return nil, err
	}

	conf := &jwt.Config{
		Email:      cfg.AccountName,
		PrivateKey: key,
		Scopes:     []string{scope(cfg.ReadOnly)},
		TokenURL:   google.JWTTokenURL,
	}

	return newAuthorizedClient(ctx, conf.TokenSource(ctx), store, cfg.HTTPClient, cfg.Hook), nil
}

// FromSecretsFile creates a client for a web or installed application from
// a client secrets file (downloadable from the Google API Console). A valid
// stored credential is reused; otherwise the interactive consent flow runs
// and the resulting token is persisted.
func FromSecretsFile(ctx context.Context, path string, cfg SecretsConfig) (*Client, error) {
	store, err := resolveStorage(cfg.Storage, cfg.StoragePath)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read client secrets: %w", err)
	}
	conf, err := google.ConfigFromJSON(b, scope(cfg.ReadOnly))
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secrets: %w", err)
	}
	conf.RedirectURL = redirectURI

	tok, err := store.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load stored credential: %w", err)
	}
	if tok == nil || (!tok.Valid() && tok.RefreshToken == "") {
		tok, err = runConsentFlow(ctx, conf, cfg.Authorize)
		if err != nil {
			return nil, err
		}
		if err := store.Put(tok); err != nil {
			return nil, fmt.Errorf("failed to store credential: %w", err)
		}
	}

	return newAuthorizedClient(ctx, conf.TokenSource(ctx, tok), store, cfg.HTTPClient, cfg.Hook), nil
}

// newAuthorizedClient layers token persistence over src and builds the
// service handle. The external oauth2 library refreshes tokens
// transparently; refreshed tokens are written back to store.
func newAuthorizedClient(ctx context.Context, src oauth2.TokenSource, store Storage, base *http.Client, hook Hook) *Client {
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	persisted := &savingTokenSource{src: src, store: store}
	return NewClient(oauth2.NewClient(ctx, persisted), hook)
}

func runConsentFlow(ctx context.Context, conf *oauth2.Config, authorize func(string) (string, error)) (*oauth2.Token, error) {
	if authorize == nil {
		authorize = promptAuthCode
	}

	code, err := authorize(conf.AuthCodeURL("state", oauth2.AccessTypeOffline))
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return tok, nil
}

func promptAuthCode(authURL string) (string, error) {
	fmt.Printf("Visit the following URL to authorize this application:\n\n  %s\n\nEnter the authorization code: ", authURL)
	code, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read authorization code: %w", err)
	}
	return strings.TrimSpace(code), nil
}

func scope(readonly bool) string {
	if readonly {
		return ScopeReadOnly
	}
	return ScopeFull
}
