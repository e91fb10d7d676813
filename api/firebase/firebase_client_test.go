package firebase

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls int
	err   error
}

func (s *countingSource) Exchange(ctx context.Context, now time.Time) (Credential, error) {
	s.calls++
	if s.err != nil {
		return Credential{}, s.err
	}
	return Credential{Token: "tok-" + now.Format("150405"), ExpiresAt: now.Add(time.Hour)}, nil
}

func TestRefresh(t *testing.T) {
	now := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	source := &countingSource{}

	fresh, err := Refresh(context.Background(), Credential{}, now, source)
	require.NoError(t, err)
	assert.Equal(t, "tok-090000", fresh.Token)
	assert.Equal(t, 1, source.calls)

	same, err := Refresh(context.Background(), fresh, now.Add(30*time.Minute), source)
	require.NoError(t, err)
	assert.Equal(t, fresh, same)
	assert.Equal(t, 1, source.calls)

	// inside the expiry skew
	renewed, err := Refresh(context.Background(), fresh, now.Add(59*time.Minute+30*time.Second), source)
	require.NoError(t, err)
	assert.NotEqual(t, fresh.Token, renewed.Token)
	assert.Equal(t, 2, source.calls)
}

func TestRefresh_ErrorKeepsNothing(t *testing.T) {
	boom := errors.New("boom")
	_, err := Refresh(context.Background(), Credential{}, time.Now(), &countingSource{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestCredential_Valid(t *testing.T) {
	now := time.Now()
	assert.False(t, Credential{}.Valid(now))
	assert.False(t, Credential{Token: "x", ExpiresAt: now.Add(30 * time.Second)}.Valid(now))
	assert.True(t, Credential{Token: "x", ExpiresAt: now.Add(2 * time.Minute)}.Valid(now))
}

func TestClient_RequestsCarryTokenAndPaths(t *testing.T) {
	type call struct {
		method, path, token, body string
	}
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, call{r.Method, r.URL.Path, r.URL.Query().Get("access_token"), string(body)})
		switch r.URL.Path {
		case "/rs_data/data/2026-10-05.json":
			w.Write([]byte(`[{"0900":20}]`))
		default:
			w.Write([]byte("null"))
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	client := NewClient(srv.URL+"/", "rs_data", StaticTokenSource{Token: "secret"}, 0, zerolog.Nop())

	_, _, err := client.Get(ctx, "data/2026-10-05")
	assert.ErrorIs(t, err, ErrNoCredential)

	require.NoError(t, client.Authenticate(ctx))

	doc, ok, err := client.Get(ctx, "data/2026-10-05")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"0900":20}]`, string(doc))

	_, ok, err = client.Get(ctx, "data/2026-09-28")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, client.Set(ctx, "prediction/2026-10-12/0", json.RawMessage(`{"0900":31}`)))
	require.NoError(t, client.Update(ctx, "/data/2026-10-12/0/", json.RawMessage(`{"0910":44}`)))

	assert.Equal(t, []call{
		{"GET", "/rs_data/data/2026-10-05.json", "secret", ""},
		{"GET", "/rs_data/data/2026-09-28.json", "secret", ""},
		{"PUT", "/rs_data/prediction/2026-10-12/0.json", "secret", `{"0900":31}`},
		{"PATCH", "/rs_data/data/2026-10-12/0.json", "secret", `{"0910":44}`},
	}, calls)
}

func TestClient_ServerErrorIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "rs_data", StaticTokenSource{Token: "expired"}, 0, zerolog.Nop())
	require.NoError(t, client.Authenticate(context.Background()))
	err := client.Set(context.Background(), "latest/schedule", json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func writeServiceAccount(t *testing.T, tokenURI string) (string, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	data, err := json.Marshal(ServiceAccount{
		ProjectID:    "occupancy",
		PrivateKeyID: "kid-1",
		PrivateKey:   string(keyPEM),
		ClientEmail:  "tracker@occupancy.iam.gserviceaccount.com",
		TokenURI:     tokenURI,
	})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "service_account.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path, key
}

func TestServiceAccountTokenSource_Exchange(t *testing.T) {
	var tokenURI string
	var key *rsa.PrivateKey
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseForm()) {
			return
		}
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, JWT_BEARER_GRANT, r.PostForm.Get("grant_type"))

		claims := &assertionClaims{}
		parsed, err := jwt.ParseWithClaims(r.PostForm.Get("assertion"), claims, func(tok *jwt.Token) (interface{}, error) {
			return &key.PublicKey, nil
		}, jwt.WithValidMethods([]string{"RS256"}), jwt.WithAudience(tokenURI))
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.True(t, parsed.Valid)
		assert.Equal(t, "kid-1", parsed.Header["kid"])
		assert.Equal(t, FIREBASE_SCOPES, claims.Scope)
		assert.Equal(t, "tracker@occupancy.iam.gserviceaccount.com", claims.Issuer)
		assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))

		w.Write([]byte(`{"access_token":"ya29.token","expires_in":1800,"token_type":"Bearer"}`))
	}))
	defer srv.Close()
	tokenURI = srv.URL

	path, generated := writeServiceAccount(t, tokenURI)
	key = generated

	account, err := LoadServiceAccount(path)
	require.NoError(t, err)
	source, err := NewServiceAccountTokenSource(account)
	require.NoError(t, err)

	now := time.Now().Truncate(time.Second)
	credential, err := source.Exchange(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "ya29.token", credential.Token)
	assert.Equal(t, now.Add(30*time.Minute), credential.ExpiresAt)
}

func TestLoadServiceAccount_Incomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"client_email":"a@b"}`), 0o600))
	_, err := LoadServiceAccount(path)
	assert.Error(t, err)
}
