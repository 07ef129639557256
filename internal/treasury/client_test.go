package treasury

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskFreeRate(t *testing.T) {
	t.Run("fetches and converts percent to decimal", func(t *testing.T) {
		var requests int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.Write([]byte(`{"data":[{"record_date":"2026-07-31","avg_interest_rate_amt":"3.983"}]}`))
		}))
		defer srv.Close()

		c := NewClientWithBaseURL(0.045, srv.URL)
		assert.InDelta(t, 0.03983, c.RiskFreeRate(context.Background()), 1e-9)
		assert.Equal(t, 1, requests)
	})

	t.Run("caches within the refresh window", func(t *testing.T) {
		var requests int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.Write([]byte(`{"data":[{"record_date":"2026-07-31","avg_interest_rate_amt":"4.100"}]}`))
		}))
		defer srv.Close()

		c := NewClientWithBaseURL(0.045, srv.URL)
		first := c.RiskFreeRate(context.Background())
		second := c.RiskFreeRate(context.Background())
		assert.Equal(t, first, second)
		assert.Equal(t, 1, requests)
	})

	t.Run("falls back on server failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := NewClientWithBaseURL(0.045, srv.URL)
		assert.Equal(t, 0.045, c.RiskFreeRate(context.Background()))
	})

	t.Run("falls back on malformed payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":[{"avg_interest_rate_amt":"not-a-number"}]}`))
		}))
		defer srv.Close()

		c := NewClientWithBaseURL(0.045, srv.URL)
		assert.Equal(t, 0.045, c.RiskFreeRate(context.Background()))
	})

	t.Run("falls back on empty data", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":[]}`))
		}))
		defer srv.Close()

		c := NewClientWithBaseURL(0.045, srv.URL)
		assert.Equal(t, 0.045, c.RiskFreeRate(context.Background()))
	})
}
