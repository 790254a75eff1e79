package pipeline

import (
	"sort"

	"github.com/golang/geo/s2"

	"github.com/jengzang/epidash-backend-go/internal/models"
	"github.com/jengzang/epidash-backend-go/internal/spatial"
)

// Geocoder resolves a country name to a coordinate
type Geocoder interface {
	Lookup(name string) (s2.LatLng, bool)
}

// JoinCoordinates returns a copy of records with latitude and longitude
// taken from the geocoder. Unknown countries keep nil coordinates.
func JoinCoordinates(records []models.OutbreakRecord, geo Geocoder) []models.OutbreakRecord {
	out := make([]models.OutbreakRecord, len(records))
	for i, r := range records {
		r.Latitude, r.Longitude = nil, nil
		if ll, ok := geo.Lookup(r.Country); ok {
			lat, lon := ll.Lat.Degrees(), ll.Lng.Degrees()
			r.Latitude, r.Longitude = &lat, &lon
		}
		out[i] = r
	}
	return out
}

// MapPoints builds the point map from joined records. Rows without
// coordinates are excluded and their countries listed as unmapped.
func MapPoints(records []models.OutbreakRecord) models.PointMap {
	out := models.PointMap{Points: []models.MapPoint{}, Unmapped: []string{}}

	unmapped := make(map[string]struct{})
	var pts []spatial.Point
	for _, r := range records {
		if !r.HasCoordinates() {
			unmapped[r.Country] = struct{}{}
			continue
		}
		out.Points = append(out.Points, models.MapPoint{
			Country: r.Country,
			Year:    r.Year,
			Lat:     *r.Latitude,
			Lon:     *r.Longitude,
			Cases:   r.Cases,
		})
		pts = append(pts, spatial.Point{Lat: *r.Latitude, Lon: *r.Longitude})
	}
	out.Count = len(out.Points)

	for c := range unmapped {
		out.Unmapped = append(out.Unmapped, c)
	}
	sort.Strings(out.Unmapped)

	if len(pts) > 0 {
		center := spatial.Centroid(pts)
		minLat, minLon, maxLat, maxLon := spatial.BoundingBox(pts)
		out.Viewport = &models.MapViewport{
			CenterLat: center.Lat,
			CenterLon: center.Lon,
			MinLat:    minLat,
			MaxLat:    maxLat,
			MinLon:    minLon,
			MaxLon:    maxLon,
			RadiusM:   spatial.MaxDistanceFrom(center, pts),
		}
	}
	return out
}
