package onemap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/atharv3903/roamer/internal/logger"
	"github.com/atharv3903/roamer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOneMap struct {
	tokens    atomic.Int32
	routes    atomic.Int32
	rejectTok string
}

func (f *fakeOneMap) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/privateapi/auth/post/getToken", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		n := f.tokens.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok" + string(rune('0'+n))})
	})
	mux.HandleFunc("/privateapi/routingsvc/route", func(w http.ResponseWriter, r *http.Request) {
		f.routes.Add(1)
		q := r.URL.Query()
		if q.Get("token") == f.rejectTok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "1.3,103.8", q.Get("start"))
		assert.Equal(t, "1.31,103.81", q.Get("end"))
		assert.Equal(t, "cycle", q.Get("routeType"))
		_, _ = w.Write([]byte(`{"route_summary":{"total_time":390}}`))
	})
	return mux
}

var a, b = model.Coord{Lat: 1.3, Lng: 103.8}, model.Coord{Lat: 1.31, Lng: 103.81}

func TestEstimate(t *testing.T) {
	f := &fakeOneMap{}
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()

	c := New(srv.URL, "me@example.com", "secret", WithLogger(logger.Nop()), WithRateLimit(100, 2))
	for i := 0; i < 3; i++ {
		mins, err := c.Estimate(context.Background(), a, b, "cycle")
		require.NoError(t, err)
		assert.InDelta(t, 6.5, mins, 1e-9)
	}
	assert.Equal(t, int32(1), f.tokens.Load(), "token is reused")
}

func TestEstimateRefreshesRejectedToken(t *testing.T) {
	f := &fakeOneMap{rejectTok: "tok1"}
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()

	c := New(srv.URL, "me@example.com", "secret", WithLogger(logger.Nop()))
	mins, err := c.Estimate(context.Background(), a, b, "cycle")
	require.NoError(t, err)
	assert.InDelta(t, 6.5, mins, 1e-9)
	assert.Equal(t, int32(2), f.tokens.Load())
	assert.Equal(t, int32(2), f.routes.Load())
}

func TestEstimateBadCredentials(t *testing.T) {
	srv := httptest.NewServer((&fakeOneMap{}).handler(t))
	defer srv.Close()

	c := New(srv.URL, "me@example.com", "wrong", WithLogger(logger.Nop()))
	_, err := c.Estimate(context.Background(), a, b, "cycle")
	assert.ErrorIs(t, err, ErrAuth)
}

func TestEstimateMissingSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/privateapi/auth/post/getToken" {
			_, _ = w.Write([]byte(`{"access_token":"t"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status_message":"Found route between points"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", "", WithLogger(logger.Nop()))
	_, err := c.Estimate(context.Background(), a, b, "cycle")
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var c model.Coord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&c))
		assert.Equal(t, a, c)
		_, _ = w.Write([]byte(`{"address":"1 Fusionopolis Way"}`))
	}))
	defer srv.Close()

	g := NewGeocoder(srv.URL)
	g.Logger = logger.Nop()
	addr, err := g.ReverseGeocode(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "1 Fusionopolis Way", addr)
}

func TestGeocoderStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewGeocoder(srv.URL)
	g.Logger = logger.Nop()
	_, err := g.ReverseGeocode(context.Background(), a)
	assert.ErrorIs(t, err, ErrBadResponse)
}
