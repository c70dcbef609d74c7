package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientMissingCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "no url", cfg: Config{Key: "k"}, want: "SUPABASE_URL"},
		{name: "no key", cfg: Config{URL: "https://x.supabase.co"}, want: "SUPABASE_KEY"},
		{name: "blank key", cfg: Config{URL: "https://x.supabase.co", Key: "  "}, want: "SUPABASE_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			require.ErrorIs(t, err, ErrMissingCredential)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewClientInvalidURL(t *testing.T) {
	for _, raw := range []string{"x.supabase.co", "ftp://x.supabase.co", "https://"} {
		_, err := NewClient(Config{URL: raw, Key: "k"})
		require.Error(t, err, raw)
		assert.False(t, errors.Is(err, ErrMissingCredential), raw)
	}
}

func TestCount(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Range", "0-24/573")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient(Config{URL: srv.URL + "/", Key: "secret", Schema: "trading"}, WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	res, err := c.Count(context.Background(), "trades", "id")
	require.NoError(t, err)

	assert.Equal(t, int64(573), res.Count)
	assert.Equal(t, "trades", res.Table)
	assert.Equal(t, "0-24/573", res.ContentRange)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodHead, got.Method)
	assert.Equal(t, "/rest/v1/trades", got.URL.Path)
	assert.Equal(t, "id", got.URL.Query().Get("select"))
	assert.Equal(t, "secret", got.Header.Get("apikey"))
	assert.Equal(t, "Bearer secret", got.Header.Get("Authorization"))
	assert.Equal(t, "count=exact", got.Header.Get("Prefer"))
	assert.Equal(t, "trading", got.Header.Get("Accept-Profile"))
}

func TestCountWithFilters(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Header().Set("Content-Range", "*/3")
	}))
	defer srv.Close()

	c, err := NewClient(Config{URL: srv.URL, Key: "k"})
	require.NoError(t, err)

	res, err := c.Count(context.Background(), "trades", "id",
		Filter{Column: "symbol", Op: Eq, Value: "what da dog doing"},
		Filter{Column: "price", Op: Gt, Value: "100"},
		Filter{Column: "side", Op: In, Value: "buy,sell"},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Count)

	assert.Equal(t, "id", query.Get("select"))
	assert.Equal(t, "eq.what da dog doing", query.Get("symbol"))
	assert.Equal(t, "gt.100", query.Get("price"))
	assert.Equal(t, "in.(buy,sell)", query.Get("side"))
}

func TestCountRejectsInvalidFilter(t *testing.T) {
	c, err := NewClient(Config{URL: "https://x.supabase.co", Key: "k"})
	require.NoError(t, err)

	_, err = c.Count(context.Background(), "trades", "id", Filter{Column: "price", Op: "between", Value: "1"})
	require.Error(t, err)
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{in: "price=gt.100", want: Filter{Column: "price", Op: Gt, Value: "100"}},
		{in: "note=eq.a.b", want: Filter{Column: "note", Op: Eq, Value: "a.b"}},
		{in: "symbol=in.BTC,ETH", want: Filter{Column: "symbol", Op: In, Value: "BTC,ETH"}},
		{in: "price>100", wantErr: true},
		{in: "price=100", wantErr: true},
		{in: "price=like.1%", wantErr: true},
		{in: "=eq.1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFilter(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCountStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := NewClient(Config{URL: srv.URL, Key: "bad"})
	require.NoError(t, err)

	_, err = c.Count(context.Background(), "trades", "id")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "trades", statusErr.Table)
}

func TestCountRequiresTable(t *testing.T) {
	c, err := NewClient(Config{URL: "https://x.supabase.co", Key: "k"})
	require.NoError(t, err)

	_, err = c.Count(context.Background(), "", "id")
	require.Error(t, err)
}

func TestParseContentRange(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "0-24/573", want: 573},
		{in: "*/0", want: 0},
		{in: "items 0-9/42", want: 42},
		{in: "", wantErr: true},
		{in: "0-24", wantErr: true},
		{in: "0-24/*", wantErr: true},
		{in: "0-24/-1", wantErr: true},
		{in: "0-24/lots", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseContentRange(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
