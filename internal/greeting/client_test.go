package greeting

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newUpstreams starts one test server playing all three providers,
// distinguished by path.
func newUpstreams(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		IPInfoURL:   srv.URL,
		IPInfoToken: "ipinfo-token",
		GeocodeURL:  srv.URL,
		GeocodeKey:  "geocode-key",
		WeatherURL:  srv.URL,
		WeatherKey:  "weather-key",
	})
}

func happyUpstreams(t *testing.T) *Client {
	return newUpstreams(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/8.8.8.8/geo":
			if r.URL.Query().Get("token") != "ipinfo-token" {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"loc":"37.386,-122.0838"}`))
		case "/maps/api/geocode/json":
			if r.URL.Query().Get("latlng") != "37.386,-122.0838" {
				http.Error(w, "bad latlng", http.StatusBadRequest)
				return
			}
			w.Write([]byte(`{"results":[{"address_components":[
				{"long_name":"Mountain View","types":["locality"]},
				{"long_name":"California","types":["administrative_area_level_1","political"]}
			]}]}`))
		case "/data/2.5/weather":
			if r.URL.Query().Get("units") != "metric" {
				http.Error(w, "bad units", http.StatusBadRequest)
				return
			}
			w.Write([]byte(`{"main":{"temp":11.5}}`))
		default:
			http.NotFound(w, r)
		}
	})
}

func TestGreet(t *testing.T) {
	client := happyUpstreams(t)

	g, err := client.Greet(context.Background(), "8.8.8.8", "Mark")
	if err != nil {
		t.Fatalf("Greet() error: %v", err)
	}

	if g.ClientIP != "8.8.8.8" {
		t.Errorf("client_ip = %q", g.ClientIP)
	}
	if g.Location != "California" {
		t.Errorf("location = %q, want California", g.Location)
	}
	want := "Hello, Mark!, the temperature is 11.5 degrees Celsius in California"
	if g.Greeting != want {
		t.Errorf("greeting = %q, want %q", g.Greeting, want)
	}
}

func TestGreetWholeDegreeFormatting(t *testing.T) {
	client := newUpstreams(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/8.8.8.8/geo":
			w.Write([]byte(`{"loc":"51.5,-0.12"}`))
		case "/maps/api/geocode/json":
			w.Write([]byte(`{"results":[{"address_components":[
				{"long_name":"England","types":["administrative_area_level_1"]}
			]}]}`))
		case "/data/2.5/weather":
			w.Write([]byte(`{"main":{"temp":11}}`))
		default:
			http.NotFound(w, r)
		}
	})

	g, err := client.Greet(context.Background(), "8.8.8.8", "Guest")
	if err != nil {
		t.Fatalf("Greet() error: %v", err)
	}

	// Whole numbers render without a trailing ".0".
	want := "Hello, Guest!, the temperature is 11 degrees Celsius in England"
	if g.Greeting != want {
		t.Errorf("greeting = %q, want %q", g.Greeting, want)
	}
}

func TestGreetUpstreamFailures(t *testing.T) {
	tests := []struct {
		name string
		fail string
	}{
		{"geolocation down", "/8.8.8.8/geo"},
		{"geocoder down", "/maps/api/geocode/json"},
		{"weather down", "/data/2.5/weather"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newUpstreams(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == tt.fail {
					http.Error(w, "boom", http.StatusInternalServerError)
					return
				}
				switch r.URL.Path {
				case "/8.8.8.8/geo":
					w.Write([]byte(`{"loc":"37.386,-122.0838"}`))
				case "/maps/api/geocode/json":
					w.Write([]byte(`{"results":[{"address_components":[
						{"long_name":"California","types":["administrative_area_level_1"]}
					]}]}`))
				case "/data/2.5/weather":
					w.Write([]byte(`{"main":{"temp":11.5}}`))
				}
			})

			if _, err := client.Greet(context.Background(), "8.8.8.8", "Mark"); err == nil {
				t.Fatal("expected error when upstream fails")
			}
		})
	}
}

func TestGreetMalformedLocation(t *testing.T) {
	client := newUpstreams(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"loc":"no-comma-here"}`))
	})

	if _, err := client.Greet(context.Background(), "8.8.8.8", "Mark"); err == nil {
		t.Fatal("expected error for malformed loc field")
	}
}

func TestGreetNoAdministrativeArea(t *testing.T) {
	client := newUpstreams(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/8.8.8.8/geo":
			w.Write([]byte(`{"loc":"0,0"}`))
		case "/maps/api/geocode/json":
			w.Write([]byte(`{"results":[]}`))
		default:
			w.Write([]byte(`{}`))
		}
	})

	if _, err := client.Greet(context.Background(), "8.8.8.8", "Mark"); err == nil {
		t.Fatal("expected error when no region can be resolved")
	}
}
