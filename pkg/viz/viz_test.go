package viz

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestPulsePlotterWindow(t *testing.T) {
	p := NewPulsePlotter("pulses", 4, 200)
	for _, w := range []float64{100, 110, 240, 120, 238, 236} {
		p.Append(w)
	}

	shortMean, shortStd, longMean, longStd := p.Stats()
	require.InDelta(t, 120, shortMean, 1e-9)
	require.Zero(t, shortStd)
	require.InDelta(t, 238, longMean, 1e-9)
	require.InDelta(t, 2, longStd, 1e-9)
	require.Equal(t, 6, p.Count())
	require.Contains(t, p.Summary(), "6 pulses")
}

func TestPulsePlotterImage(t *testing.T) {
	p := NewPulsePlotter("pulses", 16, 200)

	img, err := p.GetImage()
	require.NoError(t, err)
	require.Nil(t, img)

	for i := 0; i < 16; i++ {
		p.Append(119 + float64(i%2)*119)
	}
	img, err = p.GetImage()
	require.NoError(t, err)
	require.Equal(t, "pulses", img.Name())
	require.True(t, bytes.HasPrefix(img.Data(), pngMagic))
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestServerRoutes(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "fdxb_test_total", Help: "test"})
	registry.MustRegister(counter)
	counter.Add(3)

	s := NewServer(0, time.Second, WithGatherer(registry), WithServerLogger(zerolog.Nop()))
	p := NewPulsePlotter("pulses", 8, 200)
	for i := 0; i < 8; i++ {
		p.Append(238)
	}
	s.Register(p)
	s.Handle("/ws", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, _ := get(t, srv.URL+"/img/pulses")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	s.Refresh()

	resp, body := get(t, srv.URL+"/img/pulses")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	require.True(t, bytes.HasPrefix(body, pngMagic))

	resp, body = get(t, srv.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `/img/pulses`)
	require.Contains(t, string(body), "8 pulses")

	resp, body = get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "fdxb_test_total 3")

	resp, _ = get(t, srv.URL+"/ws")
	require.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestServerWithoutGatherer(t *testing.T) {
	srv := httptest.NewServer(NewServer(0, time.Second).Handler())
	defer srv.Close()

	resp, _ := get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
