package model

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrNotInFile is returned by WriteColors for an owner the model file does
// not list by name.
var ErrNotInFile = errors.New("owner not in model file")

// colorSections maps owner types to the top-level list holding them.
var colorSections = map[string]string{
	TypeConstruction:            "constructions",
	TypeConstructionAirBoundary: "constructions",
	TypeThermalZone:             "thermal_zones",
	TypeSpaceType:               "space_types",
	TypeBuildingStory:           "building_stories",
	TypeBuildingUnit:            "building_units",
	TypeAirLoopHVAC:             "air_loops",
	TypeDefaultConstructionSet:  "construction_sets",
	TypeSpace:                   "spaces",
	TypeShadingSurfaceGroup:     "shading_groups",
}

// WriteColors sets the color of each assigned owner in a model file and
// returns the edited file. Comments and key order survive the edit.
func WriteColors(data []byte, assignments []ColorAssignment) ([]byte, error) {
	if len(assignments) == 0 {
		return data, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("model file is not a mapping")
	}
	root := doc.Content[0]

	for _, a := range assignments {
		typ, name := a.Owner.IddObjectType(), a.Owner.Name()
		section, ok := colorSections[typ]
		if !ok {
			return nil, fmt.Errorf("%s %q: %w", typ, name, ErrNotInFile)
		}
		obj := findNamed(mappingValue(root, section), name)
		if obj == nil {
			return nil, fmt.Errorf("%s %q: %w", typ, name, ErrNotInFile)
		}
		setString(obj, "color", a.Color.Hex())
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func findNamed(seq *yaml.Node, name string) *yaml.Node {
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil
	}
	for _, item := range seq.Content {
		if n := mappingValue(item, "name"); n != nil && n.Value == name {
			return item
		}
	}
	return nil
}

// setString replaces or appends key in m. The value is double quoted
// since a bare # would start a comment.
func setString(m *yaml.Node, key, value string) {
	v := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: yaml.DoubleQuotedStyle}
	if old := mappingValue(m, key); old != nil {
		*old = *v
		return
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		v)
}
