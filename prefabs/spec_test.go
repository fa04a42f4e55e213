package prefabs

import (
	"image/color"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestLoadDefaultChain(t *testing.T) {
	spec, err := LoadChainSpec("")
	if err != nil {
		t.Fatalf("load default chain: %v", err)
	}
	if spec.Root.Name != "anchor" {
		t.Fatalf("root = %q, want anchor", spec.Root.Name)
	}
	if len(spec.Links) != 2 {
		t.Fatalf("links = %d, want 2", len(spec.Links))
	}

	arm := spec.Links[1]
	if arm.Parent != "torso" || arm.Joint.Type != "spherical" {
		t.Fatalf("unexpected upper arm: %+v", arm)
	}
	if arm.Shape.HalfLength != 0.25 || arm.Shape.Radius != 0.05 {
		t.Fatalf("upper arm shape = %+v", arm.Shape)
	}
	if got := arm.Joint.Limits["ang_z"]; got != [2]float64{15, 165} {
		t.Fatalf("ang_z limits = %v", got)
	}
	if arm.Joint.Contacts {
		t.Fatalf("contacts should default to off")
	}
	if spec.RayColor == nil {
		t.Fatalf("missing ray color")
	}
	if got := color.NRGBAModel.Convert(spec.RayColor.Color); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("ray color = %v", got)
	}
}

func TestLoadSwingChainHasScriptedRoot(t *testing.T) {
	spec, err := LoadChainSpec("swing.yaml")
	if err != nil {
		t.Fatalf("load swing chain: %v", err)
	}
	if spec.Root.Kind != "kinematic" || spec.Root.Script == "" {
		t.Fatalf("root = %+v", spec.Root)
	}
	if _, err := LoadScript(spec.Root.Script); err != nil {
		t.Fatalf("load script %s: %v", spec.Root.Script, err)
	}
	forearm := spec.Links[2]
	if forearm.Joint.Motor == nil || forearm.Joint.Motor.TargetPos != -90 {
		t.Fatalf("forearm motor = %+v", forearm.Joint.Motor)
	}
}

func TestLoadTOMLChain(t *testing.T) {
	spec, err := LoadChainSpec("arm.toml")
	if err != nil {
		t.Fatalf("load arm.toml: %v", err)
	}
	if spec.Name != "arm" || spec.Root.Kind != "fixed" {
		t.Fatalf("spec = %+v", spec)
	}
	if spec.Root.Position != (Vec3Spec{0, 0.4, 0}) {
		t.Fatalf("root position = %v", spec.Root.Position)
	}
	if len(spec.Links) != 3 {
		t.Fatalf("links = %d, want 3", len(spec.Links))
	}
	arm := spec.Links[1]
	if arm.Shape != (CapsuleSpec{HalfLength: 0.25, Radius: 0.05}) {
		t.Fatalf("upper arm shape = %+v", arm.Shape)
	}
	if got := arm.Joint.Limits["ang_z"]; got != [2]float64{15, 165} {
		t.Fatalf("ang_z limits = %v", got)
	}
	forearm := spec.Links[2]
	if forearm.Joint.Motor == nil || forearm.Joint.Motor.Model != "force" || forearm.Joint.Motor.TargetPos != -60 {
		t.Fatalf("forearm motor = %+v", forearm.Joint.Motor)
	}
	if spec.RayColor == nil || spec.RayColor.Color != (color.NRGBA{G: 255, B: 255, A: 255}) {
		t.Fatalf("ray color = %+v", spec.RayColor)
	}
}

func TestVec3Spec(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Vec3Spec
		wantErr string
	}{
		{name: "full", in: "[1, 2, 3]", want: Vec3Spec{1, 2, 3}},
		{name: "short", in: "[0, 0.5]", want: Vec3Spec{0, 0.5, 0}},
		{name: "scalar", in: "1", wantErr: "sequence"},
		{name: "too long", in: "[1, 2, 3, 4]", wantErr: "4 components"},
		{name: "not a number", in: "[1, x]", wantErr: "component 1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var v Vec3Spec
			err := yaml.Unmarshal([]byte(tc.in), &v)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("err = %v, want containing %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v != tc.want {
				t.Fatalf("got %v, want %v", v, tc.want)
			}
		})
	}
}

func TestYAMLColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{in: `"#ff8000"`, want: color.NRGBA{R: 255, G: 128, A: 255}, ok: true},
		{in: `"10203040"`, want: color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40}, ok: true},
		{in: `"#fff"`},
		{in: `[1, 2]`},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			var c YAMLColor
			err := yaml.Unmarshal([]byte(tc.in), &c)
			if !tc.ok {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Color != tc.want {
				t.Fatalf("got %v, want %v", c.Color, tc.want)
			}
		})
	}
}

func TestCleanScriptPath(t *testing.T) {
	for _, in := range []string{"root_sway.tengo", "scripts/root_sway.tengo", "prefabs/scripts/root_sway.tengo"} {
		if got := cleanScriptPath(in); got != "scripts/root_sway.tengo" {
			t.Fatalf("cleanScriptPath(%q) = %q", in, got)
		}
	}
}
