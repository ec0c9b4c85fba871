package onemap

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/atharv3903/roamer/internal/logger"
	"github.com/atharv3903/roamer/internal/model"
)

// Geocoder resolves coordinates through the address backend, which takes
// {"lat","lng"} and answers {"address"}.
type Geocoder struct {
	URL     string
	HTTP    *http.Client
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

func NewGeocoder(u string) *Geocoder {
	return &Geocoder{URL: u, HTTP: &http.Client{Timeout: 5 * time.Second}, Logger: logger.L()}
}

func (g *Geocoder) ReverseGeocode(ctx context.Context, c model.Coord) (string, error) {
	body, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	var out struct {
		Address string `json:"address"`
	}
	status, err := send(ctx, g.HTTP, g.Limiter, g.Logger, "geocode", http.MethodPost, g.URL, body, &out)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: geocode status %d", ErrBadResponse, status)
	}
	return out.Address, nil
}
