package spatial

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/golang/geo/s2"
	"gopkg.in/yaml.v3"
)

//go:embed data/coordinates.yaml
var defaultCoordinates []byte

// CoordinateEntry is one named location in a coordinate file
type CoordinateEntry struct {
	Name string  `yaml:"name" json:"name"`
	Lat  float64 `yaml:"lat" json:"lat"`
	Lon  float64 `yaml:"lon" json:"lon"`
}

type coordinateFile struct {
	Countries []CoordinateEntry `yaml:"countries"`
}

// CoordinateTable maps country names to a representative coordinate.
// It is immutable after construction and safe for concurrent use.
type CoordinateTable struct {
	byName map[string]s2.LatLng
}

// DefaultCoordinates returns the embedded table
func DefaultCoordinates() *CoordinateTable {
	t, err := ParseCoordinates(strings.NewReader(string(defaultCoordinates)))
	if err != nil {
		panic(fmt.Sprintf("embedded coordinates: %v", err))
	}
	return t
}

// LoadCoordinates reads a YAML coordinate file. An empty path yields the
// embedded table.
func LoadCoordinates(path string) (*CoordinateTable, error) {
	if path == "" {
		return DefaultCoordinates(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open coordinates: %w", err)
	}
	defer f.Close()

	return ParseCoordinates(f)
}

// ParseCoordinates decodes and validates a YAML coordinate document
func ParseCoordinates(r io.Reader) (*CoordinateTable, error) {
	var doc coordinateFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode coordinates: %w", err)
	}

	t := &CoordinateTable{byName: make(map[string]s2.LatLng, len(doc.Countries))}
	for i, e := range doc.Countries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("coordinates entry %d: empty name", i)
		}
		ll := s2.LatLngFromDegrees(e.Lat, e.Lon)
		if !ll.IsValid() || e.Lon < -180 || e.Lon > 180 {
			return nil, fmt.Errorf("coordinates entry %q: lat/lon out of range (%v, %v)", name, e.Lat, e.Lon)
		}
		if _, dup := t.byName[name]; dup {
			return nil, fmt.Errorf("coordinates entry %q: duplicate name", name)
		}
		t.byName[name] = ll
	}
	return t, nil
}

// Lookup returns the coordinate for a country name
func (t *CoordinateTable) Lookup(name string) (s2.LatLng, bool) {
	ll, ok := t.byName[strings.TrimSpace(name)]
	return ll, ok
}

// Len returns the number of entries
func (t *CoordinateTable) Len() int {
	return len(t.byName)
}

// Entries returns every entry sorted by name
func (t *CoordinateTable) Entries() []CoordinateEntry {
	out := make([]CoordinateEntry, 0, len(t.byName))
	for name, ll := range t.byName {
		out = append(out, CoordinateEntry{Name: name, Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
