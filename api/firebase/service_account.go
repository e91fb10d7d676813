package firebase

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"occupancy-forecaster/api"
	"occupancy-forecaster/util"
)

const (
	FIREBASE_SCOPES   = "https://www.googleapis.com/auth/firebase.database https://www.googleapis.com/auth/userinfo.email"
	JWT_BEARER_GRANT  = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	ASSERTION_TTL     = time.Hour
	DEFAULT_TOKEN_URI = "https://oauth2.googleapis.com/token"
)

// ServiceAccount holds the fields of a Google service account key file that
// token exchange needs.
type ServiceAccount struct {
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`
}

// LoadServiceAccount reads a service account key file.
func LoadServiceAccount(path string) (*ServiceAccount, error) {
	var account ServiceAccount
	if err := util.ReadJSONFile(path, &account); err != nil {
		return nil, err
	}
	if account.ClientEmail == "" || account.PrivateKey == "" {
		return nil, fmt.Errorf("service account %q is missing client_email or private_key", path)
	}
	if account.TokenURI == "" {
		account.TokenURI = DEFAULT_TOKEN_URI
	}
	return &account, nil
}

type assertionClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// ServiceAccountTokenSource trades a signed JWT assertion for an access token.
type ServiceAccountTokenSource struct {
	account *ServiceAccount
	key     *rsa.PrivateKey
	client  *api.HTTPClient
}

func NewServiceAccountTokenSource(account *ServiceAccount) (*ServiceAccountTokenSource, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(account.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account private key: %w", err)
	}
	return &ServiceAccountTokenSource{
		account: account,
		key:     key,
		client:  api.NewHTTPClient(account.TokenURI),
	}, nil
}

// Assertion signs the RS256 JWT presented to the token endpoint.
func (s *ServiceAccountTokenSource) Assertion(now time.Time) (string, error) {
	claims := assertionClaims{
		Scope: FIREBASE_SCOPES,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.account.ClientEmail,
			Subject:   s.account.ClientEmail,
			Audience:  jwt.ClaimStrings{s.account.TokenURI},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ASSERTION_TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if s.account.PrivateKeyID != "" {
		token.Header["kid"] = s.account.PrivateKeyID
	}
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign assertion: %w", err)
	}
	return signed, nil
}

func (s *ServiceAccountTokenSource) Exchange(ctx context.Context, now time.Time) (Credential, error) {
	assertion, err := s.Assertion(now)
	if err != nil {
		return Credential{}, err
	}

	form := url.Values{}
	form.Set("grant_type", JWT_BEARER_GRANT)
	form.Set("assertion", assertion)

	body, err := s.client.RequestRaw(ctx, "POST", "", map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	}, strings.NewReader(form.Encode()))
	if err != nil {
		return Credential{}, fmt.Errorf("token exchange failed: %w", err)
	}
	var res tokenResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return Credential{}, fmt.Errorf("token exchange failed: %w", err)
	}
	if res.AccessToken == "" {
		return Credential{}, fmt.Errorf("token exchange failed: empty access token")
	}

	ttl := ASSERTION_TTL
	if res.ExpiresIn > 0 {
		ttl = time.Duration(res.ExpiresIn) * time.Second
	}
	return Credential{Token: res.AccessToken, ExpiresAt: now.Add(ttl)}, nil
}
