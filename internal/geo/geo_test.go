package geo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enforcement-insights-go/internal/resolver"
)

const featureCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": 1, "properties": {"STATE_NAME": "New South Wales"},
     "geometry": {"type": "Polygon", "coordinates": [[[150,-33],[151,-33],[151,-34],[150,-33]]]}},
    {"type": "Feature", "id": 2, "properties": {"STATE_NAME": "Victoria", "STATE_ABBR": "VIC"},
     "geometry": {"type": "Polygon", "coordinates": [[[144,-37],[145,-37],[145,-38],[144,-37]]]}},
    {"type": "Feature", "id": 9, "properties": {"name": "Unknown Territory"},
     "geometry": {"type": "Polygon", "coordinates": [[[130,-12],[131,-12],[131,-13],[130,-12]]]}}
  ]
}`

const topology = `{
  "type": "Topology",
  "arcs": [[[0,0],[1,1]]],
  "objects": {
    "states": {
      "type": "GeometryCollection",
      "geometries": [
        {"type": "Polygon", "arcs": [[0]], "id": "a", "properties": {"STE_CODE": "NSW"}},
        {"type": "Polygon", "arcs": [[0]], "id": "b", "properties": {"STATE": "Queensland"}}
      ]
    },
    "z_coast": {"type": "LineString", "arcs": [0], "properties": {"name": "coast"}}
  }
}`

func TestDecode_FeatureCollection(t *testing.T) {
	fc, err := Decode([]byte(featureCollection))

	require.NoError(t, err)
	require.Len(t, fc.Features, 3)
	assert.Equal(t, "New South Wales", fc.Features[0].Properties["STATE_NAME"])
}

func TestDecode_TopologyUsesFirstObject(t *testing.T) {
	fc, err := Decode([]byte(topology))

	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "a", fc.Features[0].ID)
	assert.Equal(t, "NSW", fc.Features[0].Properties["STE_CODE"])
	assert.Equal(t, "Queensland", fc.Features[1].Properties["STATE"])
}

func TestDecode_TopologyFollowsDocumentOrder(t *testing.T) {
	body := `{
  "type": "Topology",
  "objects": {
    "states": {"type": "GeometryCollection", "geometries": [
      {"type": "Polygon", "arcs": [[0]], "id": "nsw", "properties": {"STATE_NAME": "New South Wales"}}
    ]},
    "coastline": {"type": "LineString", "arcs": [0], "properties": {"kind": "coast"}}
  }
}`

	fc, err := Decode([]byte(body))

	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "nsw", fc.Features[0].ID)
	assert.Equal(t, "New South Wales", fc.Features[0].Properties["STATE_NAME"])
}

func TestDecode_Unavailable(t *testing.T) {
	tests := map[string]string{
		"not json":      "<html>",
		"wrong type":    `{"type": "Point", "coordinates": [0, 0]}`,
		"empty objects": `{"type": "Topology", "objects": {}}`,
		"no objects":    `{"type": "Topology"}`,
		"objects array": `{"type": "Topology", "objects": []}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(body))
			assert.True(t, errors.Is(err, ErrUnavailable))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "australia_states.json"))

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLoad_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "states.geojson")
	require.NoError(t, os.WriteFile(path, []byte(featureCollection), 0o644))

	fc, err := Load(path)

	require.NoError(t, err)
	assert.Len(t, fc.Features, 3)
}

func TestAnnotate(t *testing.T) {
	fc, err := Decode([]byte(featureCollection))
	require.NoError(t, err)

	matches := Annotate(fc, resolver.New([]string{"NSW", "VIC"}))

	require.Len(t, matches, 3)
	assert.Equal(t, Match{Index: 0, ID: float64(1), Key: "NSW", Label: "NSW", Matched: true}, matches[0])
	assert.Equal(t, "VIC", matches[1].Key)
	assert.False(t, matches[2].Matched)
	assert.Empty(t, matches[2].Key)
	assert.Equal(t, "Unknown Territory", matches[2].Label)

	assert.Equal(t, "NSW", fc.Features[0].Properties[MatchProperty])
	assert.Nil(t, fc.Features[2].Properties[MatchProperty])
	assert.Equal(t, "New South Wales", fc.Features[0].Properties["STATE_NAME"], "annotation keeps existing properties")
}

func TestClone_IsolatesAnnotations(t *testing.T) {
	fc, err := Decode([]byte(featureCollection))
	require.NoError(t, err)

	c := Clone(fc)
	Annotate(c, resolver.New([]string{"NSW"}))

	_, annotated := fc.Features[0].Properties[MatchProperty]
	assert.False(t, annotated)
	assert.Equal(t, "NSW", c.Features[0].Properties[MatchProperty])
	assert.Len(t, c.Features, len(fc.Features))
}
