package geo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"

	"enforcement-insights-go/internal/resolver"
)

// ErrUnavailable wraps every failure to produce a feature collection.
var ErrUnavailable = errors.New("geography unavailable")

// UnavailableMessage is shown in place of a map when the geography cannot be loaded.
const UnavailableMessage = "Map file not found. Place a TopoJSON or GeoJSON of Australian states " +
	"(for example data/australia_states.json) at the configured GEO_PATH."

// MatchProperty is the feature property Annotate writes the matched key to.
const MatchProperty = "_match"

func Load(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return Decode(data)
}

// Decode accepts a TopoJSON Topology or a GeoJSON FeatureCollection.
func Decode(data []byte) (*geojson.FeatureCollection, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	switch head.Type {
	case "Topology":
		return decodeTopology(data)
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return fc, nil
	}
	return nil, fmt.Errorf("%w: unsupported type %q", ErrUnavailable, head.Type)
}

type topoGeometry struct {
	Type       string                 `json:"type"`
	ID         interface{}            `json:"id"`
	Properties map[string]interface{} `json:"properties"`
	Geometries []topoGeometry         `json:"geometries"`
}

// decodeTopology keeps ids and properties of the first object in document
// order. Arcs are not decoded: the browser draws the map, the server only
// matches it.
func decodeTopology(data []byte) (*geojson.FeatureCollection, error) {
	var topo struct {
		Objects json.RawMessage `json:"objects"`
	}
	if err := json.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	obj, err := firstObject(topo.Objects)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	geoms := obj.Geometries
	if obj.Type != "GeometryCollection" {
		geoms = []topoGeometry{obj}
	}
	fc := geojson.NewFeatureCollection()
	for _, g := range geoms {
		f := geojson.NewFeature(nil)
		f.ID = g.ID
		for k, v := range g.Properties {
			f.Properties[k] = v
		}
		fc.Append(f)
	}
	return fc, nil
}

// firstObject decodes the first member of the objects map. A Go map would
// lose the order, so the members are walked as a token stream.
func firstObject(raw json.RawMessage) (topoGeometry, error) {
	var obj topoGeometry
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return obj, fmt.Errorf("topology objects: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return obj, errors.New("topology objects is not an object")
	}
	if !dec.More() {
		return obj, errors.New("topology has no objects")
	}
	if _, err := dec.Token(); err != nil {
		return obj, fmt.Errorf("topology objects: %w", err)
	}
	if err := dec.Decode(&obj); err != nil {
		return obj, fmt.Errorf("topology object: %w", err)
	}
	return obj, nil
}

// Clone copies the collection and each feature's properties so a view can
// annotate its own copy. Geometries are shared.
func Clone(fc *geojson.FeatureCollection) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		c := *f
		c.Properties = make(geojson.Properties, len(f.Properties)+1)
		for k, v := range f.Properties {
			c.Properties[k] = v
		}
		out.Append(&c)
	}
	return out
}

// Match records what one feature resolved to.
type Match struct {
	Index   int         `json:"index"`
	ID      interface{} `json:"id,omitempty"`
	Key     string      `json:"key,omitempty"`
	Label   string      `json:"label"`
	Matched bool        `json:"matched"`
}

// Annotate resolves every feature and writes the key (or nil) to MatchProperty.
// Unmatched features keep a display label but never borrow another jurisdiction's key.
func Annotate(fc *geojson.FeatureCollection, r *resolver.Resolver) []Match {
	out := make([]Match, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Properties == nil {
			f.Properties = geojson.Properties{}
		}
		m := Match{Index: i, ID: f.ID}
		if key, ok := r.Resolve(f.Properties); ok {
			m.Key, m.Label, m.Matched = key, key, true
			f.Properties[MatchProperty] = key
		} else {
			m.Label = label(f)
			f.Properties[MatchProperty] = nil
		}
		out = append(out, m)
	}
	return out
}

func label(f *geojson.Feature) string {
	for _, name := range []string{"STATE_NAME", "STATE", "name", "NAME"} {
		if v, ok := resolver.Property(f.Properties, name); ok {
			return v
		}
	}
	if f.ID != nil {
		return fmt.Sprint(f.ID)
	}
	return "Unknown"
}
