package mapdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLayerVisible(t *testing.T) {
	layers := []MapLayer{
		{ID: "shown", Visible: true},
		{ID: "hidden", Visible: false},
	}

	tests := []struct {
		name    string
		layerID string
		layers  []MapLayer
		want    bool
	}{
		{"no layer id is global", "", layers, true},
		{"no layer id with no layers", "", nil, true},
		{"visible layer", "shown", layers, true},
		{"invisible layer", "hidden", layers, false},
		{"dangling id resolves hidden", "missing", layers, false},
		{"dangling id with empty layers", "missing", []MapLayer{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLayerVisible(tt.layerID, tt.layers))
		})
	}
}
