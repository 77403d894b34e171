package routing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"lot-dispatch-service/internal/domain"
)

// TourCacheKey identifies a routing request by profile and point list.
// Coordinates are rounded to 6 decimals (~0.1 m) so float noise does not split entries.
func TourCacheKey(profile string, points []domain.Coordinates) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|", profile)
	for _, p := range points {
		fmt.Fprintf(h, "%.6f,%.6f;", p.Lon, p.Lat)
	}
	return "tour:" + profile + ":" + hex.EncodeToString(h.Sum(nil))
}
