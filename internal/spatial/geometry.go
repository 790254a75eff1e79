package spatial

import (
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
)

// Point represents a 2D point with latitude and longitude in degrees
type Point struct {
	Lat float64
	Lon float64
}

// Centroid calculates the spherical centroid of a set of points.
// Antipodal sets with no defined centroid fall back to the planar mean.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}

	var sum r3.Vector
	for _, p := range points {
		sum = sum.Add(s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon)).Vector)
	}
	if sum.Norm() < 1e-12 {
		return planarMean(points)
	}

	ll := s2.LatLngFromPoint(s2.Point{Vector: sum.Normalize()})
	return Point{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()}
}

func planarMean(points []Point) Point {
	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p.Lat
		sumLon += p.Lon
	}
	return Point{
		Lat: sumLat / float64(len(points)),
		Lon: sumLon / float64(len(points)),
	}
}

// BoundingBox calculates the bounding box of a set of points
// Returns (minLat, minLon, maxLat, maxLon)
func BoundingBox(points []Point) (float64, float64, float64, float64) {
	if len(points) == 0 {
		return 0, 0, 0, 0
	}

	rect := s2.EmptyRect()
	for _, p := range points {
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Lon))
	}

	lo, hi := rect.Lo(), rect.Hi()
	return lo.Lat.Degrees(), lo.Lng.Degrees(), hi.Lat.Degrees(), hi.Lng.Degrees()
}

// MaxDistanceFrom returns the largest great-circle distance in meters from
// center to any of the points
func MaxDistanceFrom(center Point, points []Point) float64 {
	var max float64
	for _, p := range points {
		if d := HaversineDistance(center.Lat, center.Lon, p.Lat, p.Lon); d > max {
			max = d
		}
	}
	return max
}
