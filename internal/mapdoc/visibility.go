package mapdoc

// IsLayerVisible resolves whether an object assigned to the given layer is
// currently shown.
//
// An empty layerID means the object is global and always visible. A layerID
// that matches a layer follows that layer's Visible flag. A layerID that
// matches nothing resolves to hidden: deleting a layer must not suddenly
// expose the annotations that were attached to it.
func IsLayerVisible(layerID string, layers []MapLayer) bool {
	if layerID == "" {
		return true
	}
	for i := range layers {
		if layers[i].ID == layerID {
			return layers[i].Visible
		}
	}
	return false
}
