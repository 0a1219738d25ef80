package geocode

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/i474232898/weather-probability/internal/weather"
)

const (
	NominatimEndpoint = "https://nominatim.openstreetmap.org"
	nominatimTimeout  = 10 * time.Second
	userAgent         = "weather-probability/1.0 (+https://github.com/i474232898/weather-probability)"
)

// NominatimResolver geocodes free text with the OpenStreetMap Nominatim search API.
type NominatimResolver struct {
	client *resty.Client
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		Country string `json:"country"`
	} `json:"address"`
}

func NewNominatimResolver(baseURL string) *NominatimResolver {
	if baseURL == "" {
		baseURL = NominatimEndpoint
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(nominatimTimeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
	return &NominatimResolver{client: client}
}

func (n *NominatimResolver) Resolve(ctx context.Context, location string) (weather.Coordinates, error) {
	places, err := n.Search(ctx, location, 1)
	if err != nil {
		return weather.Coordinates{}, err
	}
	if len(places) == 0 {
		return weather.Coordinates{}, fmt.Errorf("%w: %q", weather.ErrLocationNotFound, location)
	}
	return weather.Coordinates{Latitude: places[0].Latitude, Longitude: places[0].Longitude}, nil
}

// Search returns up to limit matches in Nominatim's ranking order.
func (n *NominatimResolver) Search(ctx context.Context, query string, limit int) ([]weather.Place, error) {
	if limit < 1 {
		limit = 1
	}
	var results []nominatimResult

	resp, err := n.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"format":         "jsonv2",
			"q":              query,
			"limit":          strconv.Itoa(limit),
			"addressdetails": "1",
		}).
		ForceContentType("application/json").
		SetResult(&results).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("nominatim search %q: %w", query, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("nominatim search %q: status %d", query, resp.StatusCode())
	}

	places := make([]weather.Place, 0, len(results))
	for _, r := range results {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse latitude from Nominatim response: %w", err)
		}
		lon, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse longitude from Nominatim response: %w", err)
		}
		name := r.DisplayName
		if name == "" {
			name = query
		}
		places = append(places, weather.Place{
			Name:      name,
			Country:   r.Address.Country,
			Latitude:  lat,
			Longitude: lon,
		})
	}
	return places, nil
}
