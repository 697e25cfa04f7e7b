package extras

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Bounding box keys.
const (
	keyMinX    = "minX"
	keyMinY    = "minY"
	keyMinZ    = "minZ"
	keyMaxX    = "maxX"
	keyMaxY    = "maxY"
	keyMaxZ    = "maxZ"
	keyLookAtX = "lookAtX"
	keyLookAtY = "lookAtY"
	keyLookAtZ = "lookAtZ"
	keyLookAtR = "lookAtR"
)

// field binds an extras key to a string or bool field of a record.
type field struct {
	key  string
	str  *string
	flag *bool
}

func refFields(prefix string, r *Ref, withMaterial bool) []field {
	fs := []field{
		{key: prefix + "Name", str: &r.Name},
		{key: prefix + "Handle", str: &r.Handle},
	}
	if withMaterial {
		fs = append(fs, field{key: prefix + "MaterialName", str: &r.MaterialName})
	}
	return fs
}

func (n *NodeExtras) fields() []field {
	fs := []field{
		{key: "handle", str: &n.Handle},
		{key: "name", str: &n.Name},
		{key: "surfaceType", str: &n.SurfaceType},
		{key: "surfaceTypeMaterialName", str: &n.SurfaceTypeMaterialName},
	}
	fs = append(fs, refFields("construction", &n.Construction, true)...)
	fs = append(fs, refFields("surface", &n.Surface, false)...)
	fs = append(fs, refFields("subSurface", &n.SubSurface, false)...)
	fs = append(fs, refFields("space", &n.Space, false)...)
	fs = append(fs, refFields("shading", &n.Shading, false)...)
	fs = append(fs, refFields("thermalZone", &n.ThermalZone, true)...)
	fs = append(fs, refFields("spaceType", &n.SpaceType, true)...)
	fs = append(fs, refFields("buildingStory", &n.BuildingStory, true)...)
	fs = append(fs, refFields("buildingUnit", &n.BuildingUnit, true)...)
	fs = append(fs, refFields("constructionSet", &n.ConstructionSet, true)...)
	fs = append(fs,
		field{key: "outsideBoundaryCondition", str: &n.OutsideBoundaryCondition},
	)
	fs = append(fs, refFields("outsideBoundaryConditionObject", &n.OutsideBoundaryConditionObject, false)...)
	fs = append(fs,
		field{key: "boundaryMaterialName", str: &n.BoundaryMaterialName},
		field{key: "coincidentWithOutsideObject", flag: &n.CoincidentWithOutsideObject},
		field{key: "sunExposure", str: &n.SunExposure},
		field{key: "windExposure", str: &n.WindExposure},
		field{key: "airWall", flag: &n.AirWall},
	)
	return fs
}

// ToMap converts the record to the extras tree of a node.
func (n NodeExtras) ToMap() map[string]any {
	out := make(map[string]any)
	for _, f := range n.fields() {
		if f.str != nil {
			out[f.key] = *f.str
		} else {
			out[f.key] = *f.flag
		}
	}
	if n.IlluminanceSetpoint != nil {
		out["illuminanceSetpoint"] = *n.IlluminanceSetpoint
	}

	loops := make([]any, 0, len(n.AirLoopHVACs))
	for _, l := range n.AirLoopHVACs {
		loops = append(loops, map[string]any{
			"name":         l.Name,
			"handle":       l.Handle,
			"materialName": l.MaterialName,
		})
	}
	out["airLoopHVACs"] = loops
	return out
}

// ParseNodeExtras reads a node extras tree. Missing keys are logged at
// debug level, mistyped ones at warn level; both keep their zero value.
func ParseNodeExtras(v any, log *zap.Logger) NodeExtras {
	var n NodeExtras
	r, ok := newReader(v, log)
	if !ok {
		return n
	}

	for _, f := range n.fields() {
		if f.str != nil {
			r.string(f.key, f.str)
		} else {
			r.bool(f.key, f.flag)
		}
	}
	n.IlluminanceSetpoint = r.optFloat("illuminanceSetpoint")

	for _, obj := range r.objects("airLoopHVACs") {
		lr := r.sub(obj)
		var l Ref
		lr.string("name", &l.Name)
		lr.string("handle", &l.Handle)
		lr.string("materialName", &l.MaterialName)
		n.AirLoopHVACs = append(n.AirLoopHVACs, l)
	}
	return n
}

// ToMap converts the box to its extras tree.
func (b BoundingBox) ToMap() map[string]any {
	return map[string]any{
		keyMinX:    b.MinX,
		keyMinY:    b.MinY,
		keyMinZ:    b.MinZ,
		keyMaxX:    b.MaxX,
		keyMaxY:    b.MaxY,
		keyMaxZ:    b.MaxZ,
		keyLookAtX: b.LookAtX,
		keyLookAtY: b.LookAtY,
		keyLookAtZ: b.LookAtZ,
		keyLookAtR: b.LookAtR,
	}
}

func parseBoundingBox(r reader) BoundingBox {
	var b BoundingBox
	r.float(keyMinX, &b.MinX)
	r.float(keyMinY, &b.MinY)
	r.float(keyMinZ, &b.MinZ)
	r.float(keyMaxX, &b.MaxX)
	r.float(keyMaxY, &b.MaxY)
	r.float(keyMaxZ, &b.MaxZ)
	r.float(keyLookAtX, &b.LookAtX)
	r.float(keyLookAtY, &b.LookAtY)
	r.float(keyLookAtZ, &b.LookAtZ)
	r.float(keyLookAtR, &b.LookAtR)
	return b
}

// ToMap converts the metadata record to its extras tree.
func (m ObjectMetadata) ToMap() map[string]any {
	out := map[string]any{
		"color":         m.Color,
		"handle":        m.Handle,
		"iddObjectType": m.IddObjectType,
		"name":          m.Name,
	}
	if m.NominalZ != nil {
		out["nominal_z_coordinate"] = *m.NominalZ
	}
	if m.NominalFloorCeilingHeight != nil {
		out["nominal_floorCeiling_Height"] = *m.NominalFloorCeilingHeight
	}
	if m.Multiplier != nil {
		out["multiplier"] = float64(*m.Multiplier)
	}
	return out
}

func parseObjectMetadata(r reader) ObjectMetadata {
	var m ObjectMetadata
	r.string("color", &m.Color)
	r.string("handle", &m.Handle)
	r.string("iddObjectType", &m.IddObjectType)
	r.string("name", &m.Name)
	m.NominalZ = r.optFloat("nominal_z_coordinate")
	m.NominalFloorCeilingHeight = r.optFloat("nominal_floorCeiling_Height")
	m.Multiplier = r.optInt("multiplier")
	return m
}

// ToMap converts the scene record to its extras tree.
func (s SceneExtras) ToMap() map[string]any {
	stories := make([]any, 0, len(s.BuildingStoryNames))
	for _, name := range s.BuildingStoryNames {
		stories = append(stories, name)
	}
	objects := make([]any, 0, len(s.ModelObjectMetadata))
	for _, m := range s.ModelObjectMetadata {
		objects = append(objects, m.ToMap())
	}
	return map[string]any{
		"generator":           s.Generator,
		"type":                s.Type,
		"version":             s.Version,
		"northAxis":           s.NorthAxis,
		"boundingBox":         s.BoundingBox.ToMap(),
		"buildingStoryNames":  stories,
		"modelObjectMetadata": objects,
	}
}

// ParseSceneExtras reads a scene extras tree with the same leniency as
// ParseNodeExtras.
func ParseSceneExtras(v any, log *zap.Logger) SceneExtras {
	var s SceneExtras
	r, ok := newReader(v, log)
	if !ok {
		return s
	}

	r.string("generator", &s.Generator)
	r.string("type", &s.Type)
	r.string("version", &s.Version)
	r.float("northAxis", &s.NorthAxis)
	if box, ok := r.object("boundingBox"); ok {
		s.BoundingBox = parseBoundingBox(r.sub(box))
	}
	s.BuildingStoryNames = r.strings("buildingStoryNames")
	for _, obj := range r.objects("modelObjectMetadata") {
		s.ModelObjectMetadata = append(s.ModelObjectMetadata, parseObjectMetadata(r.sub(obj)))
	}
	return s
}

// reader checks presence and type of each key it is asked for.
type reader struct {
	obj map[string]any
	log *zap.Logger
}

func newReader(v any, log *zap.Logger) (reader, bool) {
	if log == nil {
		log = zap.NewNop()
	}
	obj, ok := toObject(v)
	if !ok {
		if v == nil {
			log.Debug("no extras")
		} else {
			log.Warn("extras is not an object", zap.String("type", fmt.Sprintf("%T", v)))
		}
		return reader{log: log}, false
	}
	return reader{obj: obj, log: log}, true
}

// toObject accepts a decoded JSON object or its raw encoding.
func toObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case json.RawMessage:
		var obj map[string]any
		if err := json.Unmarshal(t, &obj); err != nil {
			return nil, false
		}
		return obj, obj != nil
	default:
		return nil, false
	}
}

func (r reader) sub(obj map[string]any) reader {
	return reader{obj: obj, log: r.log}
}

func (r reader) value(key string) (any, bool) {
	v, ok := r.obj[key]
	if !ok {
		r.log.Debug("missing extras key", zap.String("key", key))
	}
	return v, ok
}

func (r reader) mistyped(key, want string, v any) {
	r.log.Warn("mistyped extras key",
		zap.String("key", key),
		zap.String("want", want),
		zap.String("got", fmt.Sprintf("%T", v)))
}

func (r reader) string(key string, dst *string) {
	v, ok := r.value(key)
	if !ok {
		return
	}
	s, ok := v.(string)
	if !ok {
		r.mistyped(key, "string", v)
		return
	}
	*dst = s
}

func (r reader) bool(key string, dst *bool) {
	v, ok := r.value(key)
	if !ok {
		return
	}
	b, ok := v.(bool)
	if !ok {
		r.mistyped(key, "bool", v)
		return
	}
	*dst = b
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func (r reader) float(key string, dst *float64) {
	v, ok := r.value(key)
	if !ok {
		return
	}
	f, ok := number(v)
	if !ok {
		r.mistyped(key, "number", v)
		return
	}
	*dst = f
}

func (r reader) optFloat(key string) *float64 {
	v, ok := r.obj[key]
	if !ok {
		return nil
	}
	f, ok := number(v)
	if !ok {
		r.mistyped(key, "number", v)
		return nil
	}
	return &f
}

func (r reader) optInt(key string) *int {
	f := r.optFloat(key)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

func (r reader) object(key string) (map[string]any, bool) {
	v, ok := r.value(key)
	if !ok {
		return nil, false
	}
	obj, ok := toObject(v)
	if !ok {
		r.mistyped(key, "object", v)
	}
	return obj, ok
}

func (r reader) list(key string) []any {
	v, ok := r.value(key)
	if !ok {
		return nil
	}
	l, ok := v.([]any)
	if !ok {
		r.mistyped(key, "array", v)
	}
	return l
}

func (r reader) strings(key string) []string {
	var out []string
	for i, v := range r.list(key) {
		s, ok := v.(string)
		if !ok {
			r.mistyped(fmt.Sprintf("%s[%d]", key, i), "string", v)
			continue
		}
		out = append(out, s)
	}
	return out
}

func (r reader) objects(key string) []map[string]any {
	var out []map[string]any
	for i, v := range r.list(key) {
		obj, ok := toObject(v)
		if !ok {
			r.mistyped(fmt.Sprintf("%s[%d]", key, i), "object", v)
			continue
		}
		out = append(out, obj)
	}
	return out
}
