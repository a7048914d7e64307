// pkg/provider/mock_client.go

package provider

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// mockClient serves deterministic synthetic data for keyless dev boots
// and for tests.
type mockClient struct {
	mu       sync.Mutex
	polygons map[string]string // name -> id
	next     int
}

func NewMock() Client { return &mockClient{polygons: map[string]string{}} }

func (m *mockClient) Configured() bool { return true }

func (m *mockClient) CreatePolygon(_ context.Context, name string, _ []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.polygons[name]; ok {
		return id, nil
	}
	m.next++
	id := fmt.Sprintf("mock-poly-%d", m.next)
	m.polygons[name] = id
	return id, nil
}

func (m *mockClient) SearchImages(_ context.Context, polygonID string, from, to time.Time) ([]Image, error) {
	var out []Image
	for d := from.Truncate(24 * time.Hour); !d.After(to); d = d.AddDate(0, 0, 3) {
		// gentle sine wave around 0.5 so the dashboard has something to draw
		v := 0.5 + 0.2*math.Sin(float64(d.YearDay())/15.0)
		out = append(out, Image{
			Date:          d,
			MeanIndex:     v,
			MinIndex:      v - 0.1,
			MaxIndex:      v + 0.1,
			CloudCoverPct: float64((d.YearDay() * 7) % 40),
			DataCoverPct:  100,
			Source:        "mock",
		})
	}
	return out, nil
}
