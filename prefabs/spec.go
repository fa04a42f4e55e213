package prefabs

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultChain is the prefab loaded when no other chain is named.
const DefaultChain = "chain.yaml"

// LoadSpec decodes a prefab as TOML when the name ends in .toml and as
// YAML otherwise.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	unmarshal := yaml.Unmarshal
	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		unmarshal = toml.Unmarshal
	}
	if err := unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// ChainSpec describes an articulated chain: a root anchor and links in
// declaration order. A link's parent must be declared before it.
type ChainSpec struct {
	Name     string     `yaml:"name" toml:"name"`
	Gravity  *Vec3Spec  `yaml:"gravity" toml:"gravity"`
	RayColor *YAMLColor `yaml:"ray_color" toml:"ray_color"`
	Camera   CameraSpec `yaml:"camera" toml:"camera"`
	Root     RootSpec   `yaml:"root" toml:"root"`
	Links    []LinkSpec `yaml:"links" toml:"links"`
}

func LoadChainSpec(filename string) (*ChainSpec, error) {
	if filename == "" {
		filename = DefaultChain
	}
	spec, err := LoadSpec[ChainSpec](filename)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// CameraSpec frames the chain. Target names a link to follow.
type CameraSpec struct {
	Center     Vec3Spec `yaml:"center" toml:"center"`
	Zoom       float64  `yaml:"zoom" toml:"zoom"`
	Target     string   `yaml:"target" toml:"target"`
	Smoothness float64  `yaml:"smoothness" toml:"smoothness"`
}

// RootSpec is the chain's anchor body. Script is only valid on a kinematic
// root.
type RootSpec struct {
	Name     string       `yaml:"name" toml:"name"`
	Kind     string       `yaml:"kind" toml:"kind"`
	Position Vec3Spec     `yaml:"position" toml:"position"`
	Shape    *CapsuleSpec `yaml:"shape" toml:"shape"`
	Script   string       `yaml:"script" toml:"script"`
}

type LinkSpec struct {
	Name   string      `yaml:"name" toml:"name"`
	Parent string      `yaml:"parent" toml:"parent"`
	Body   string      `yaml:"body" toml:"body"`
	Shape  CapsuleSpec `yaml:"shape" toml:"shape"`
	Joint  JointSpec   `yaml:"joint" toml:"joint"`
}

type CapsuleSpec struct {
	HalfLength float64 `yaml:"half_length" toml:"half_length"`
	Radius     float64 `yaml:"radius" toml:"radius"`
}

// JointSpec configures the joint attaching a link to its parent. Angular
// limits and motor targets are in degrees, linear ones in metres.
type JointSpec struct {
	Type string `yaml:"type" toml:"type"`
	// Kind is "impulse" or "multibody". Empty picks impulse for links
	// attached to the root and multibody otherwise.
	Kind         string                `yaml:"kind" toml:"kind"`
	Axis         string                `yaml:"axis" toml:"axis"`
	Locked       []string              `yaml:"locked" toml:"locked"`
	AnchorParent *Vec3Spec             `yaml:"anchor_parent" toml:"anchor_parent"`
	AnchorChild  *Vec3Spec             `yaml:"anchor_child" toml:"anchor_child"`
	Limits       map[string][2]float64 `yaml:"limits" toml:"limits"`
	Motor        *MotorSpec            `yaml:"motor" toml:"motor"`
	Contacts     bool                  `yaml:"contacts" toml:"contacts"`
}

type MotorSpec struct {
	Axis      string  `yaml:"axis" toml:"axis"`
	TargetPos float64 `yaml:"target_pos" toml:"target_pos"`
	TargetVel float64 `yaml:"target_vel" toml:"target_vel"`
	Stiffness float64 `yaml:"stiffness" toml:"stiffness"`
	Damping   float64 `yaml:"damping" toml:"damping"`
	MaxForce  float64 `yaml:"max_force" toml:"max_force"`
	Model     string  `yaml:"model" toml:"model"`
}

// Vec3Spec is written as a [x, y, z] sequence. Missing trailing components
// are zero.
type Vec3Spec [3]float64

func (v *Vec3Spec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("vector must be a sequence, line %d", value.Line)
	}
	if len(value.Content) > 3 {
		return fmt.Errorf("vector has %d components, line %d", len(value.Content), value.Line)
	}
	var out Vec3Spec
	for i, n := range value.Content {
		f, err := strconv.ParseFloat(strings.TrimSpace(n.Value), 64)
		if err != nil {
			return fmt.Errorf("vector component %d: %w", i, err)
		}
		out[i] = f
	}
	*v = out
	return nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	return c.UnmarshalText([]byte(value.Value))
}

// UnmarshalText parses #rrggbb or #rrggbbaa. TOML prefabs decode through it.
func (c *YAMLColor) UnmarshalText(text []byte) error {
	raw := string(text)
	s := strings.TrimPrefix(raw, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", raw)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
