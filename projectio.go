package main

import (
	"encoding/json"
	"errors"
	"fmt"
)

var errInvalidProject = errors.New("invalid project format")

type rawObject map[string]json.RawMessage

// decoder collects the fields it had to drop while merging a document onto
// defaults.
type decoder struct {
	dropped []string
}

func (d *decoder) drop(path, reason string) {
	d.dropped = append(d.dropped, path+": "+reason)
}

// field decodes obj[key] into dst. Missing keys and nulls keep dst; a value
// of the wrong type keeps dst and is recorded.
func field[T any](d *decoder, obj rawObject, path, key string, dst *T) {
	raw, ok := obj[key]
	if !ok || string(raw) == "null" {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		d.drop(path+key, "wrong type")
		return
	}
	*dst = v
}

func asObject(raw json.RawMessage) (rawObject, bool) {
	var obj rawObject
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func asList(raw json.RawMessage) ([]json.RawMessage, bool) {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil || list == nil {
		return nil, false
	}
	return list, true
}

// decodeProject parses a project document and merges it onto defaults.
// The document must be a JSON object whose "frames" member is a list; any
// other member that is missing or mistyped keeps its default and is listed
// in dropped. A falsy name becomes "Untitled", the image library is cut to
// its maximum size and the frame count is kept as given.
func decodeProject(data []byte) (p Project, dropped []string, err error) {
	obj, ok := asObject(data)
	if !ok {
		return Project{}, nil, errInvalidProject
	}
	rawFrames, ok := obj["frames"]
	if !ok {
		return Project{}, nil, fmt.Errorf("%w: missing frames", errInvalidProject)
	}
	frameList, ok := asList(rawFrames)
	if !ok {
		return Project{}, nil, fmt.Errorf("%w: frames is not a list", errInvalidProject)
	}

	d := &decoder{}
	p = newEmptyProject("")
	field(d, obj, "", "name", &p.Name)
	field(d, obj, "", "canvasSize", &p.CanvasSize)
	field(d, obj, "", "backgroundColor", &p.BackgroundColor)
	field(d, obj, "", "nodeSize", &p.NodeSize)
	field(d, obj, "", "nodeSizeMultiplier", &p.NodeSizeMultiplier)
	field(d, obj, "", "nodeColor", &p.NodeColor)
	field(d, obj, "", "freehandSpacing", &p.FreehandSpacing)
	field(d, obj, "", "drawMode", &p.DrawMode)
	field(d, obj, "", "imageShuffleType", &p.ImageShuffleType)
	field(d, obj, "", "imageLibrary", &p.ImageLibrary)
	field(d, obj, "", "currentFrameIndex", &p.CurrentFrameIndex)
	field(d, obj, "", "animationSpeed", &p.AnimationSpeed)
	field(d, obj, "", "isPlaying", &p.IsPlaying)
	field(d, obj, "", "exportQualityGIF", &p.ExportQualityGIF)
	field(d, obj, "", "exportQualityVideo", &p.ExportQualityVideo)
	field(d, obj, "", "showImages", &p.ShowImages)
	field(d, obj, "", "clipMode", &p.ClipMode)
	field(d, obj, "", "clipBackgroundImage", &p.ClipBackgroundImage)

	p.Frames = make([]Frame, len(frameList))
	for i, rf := range frameList {
		p.Frames[i] = d.frame(rf, fmt.Sprintf("frames[%d].", i))
	}

	if p.Name == "" {
		p.Name = untitledName
	}
	if p.ImageLibrary == nil {
		p.ImageLibrary = []string{}
	}
	if n := len(p.ImageLibrary); n > maxLibrarySize {
		p.ImageLibrary = p.ImageLibrary[:maxLibrarySize]
		d.drop("imageLibrary", fmt.Sprintf("truncated from %d to %d images", n, maxLibrarySize))
	}
	return p, d.dropped, nil
}

func (d *decoder) frame(raw json.RawMessage, path string) Frame {
	f := newFrame("")
	obj, ok := asObject(raw)
	if !ok {
		d.drop(path[:len(path)-1], "not an object")
		return f
	}
	field(d, obj, path, "id", &f.ID)
	field(d, obj, path, "referenceImage", &f.ReferenceImage)
	field(d, obj, path, "referenceOpacity", &f.ReferenceOpacity)

	rawNodes, ok := obj["nodes"]
	if !ok || string(rawNodes) == "null" {
		return f
	}
	nodeList, ok := asList(rawNodes)
	if !ok {
		d.drop(path+"nodes", "not a list")
		return f
	}
	for i, rn := range nodeList {
		nodePath := fmt.Sprintf("%snodes[%d].", path, i)
		nobj, ok := asObject(rn)
		if !ok {
			d.drop(nodePath[:len(nodePath)-1], "not an object")
			continue
		}
		var n Node
		field(d, nobj, nodePath, "id", &n.ID)
		field(d, nobj, nodePath, "x", &n.X)
		field(d, nobj, nodePath, "y", &n.Y)
		field(d, nobj, nodePath, "size", &n.Size)
		field(d, nobj, nodePath, "imageIndex", &n.ImageIndex)
		f.Nodes = append(f.Nodes, n)
	}
	return f
}

// encodeProject serializes the full project. decodeProject reads it back
// without loss.
func encodeProject(p Project) ([]byte, error) {
	if p.Frames == nil {
		p.Frames = []Frame{}
	}
	if p.ImageLibrary == nil {
		p.ImageLibrary = []string{}
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode project: %w", err)
	}
	return data, nil
}
