package entity

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/jointlab/ecs"
	"github.com/milk9111/jointlab/ecs/component"
	"github.com/milk9111/jointlab/ecs/render"
	"github.com/milk9111/jointlab/ecs/system"
	"github.com/milk9111/jointlab/physics"
	"github.com/milk9111/jointlab/physics/chipmunk"
	"github.com/milk9111/jointlab/prefabs"
)

func shoulderSpec() *prefabs.ChainSpec {
	zero := prefabs.Vec3Spec{}
	return &prefabs.ChainSpec{
		Name: "shoulder",
		Root: prefabs.RootSpec{Name: "anchor"},
		Links: []prefabs.LinkSpec{
			{
				Name:   "torso",
				Parent: "anchor",
				Shape:  prefabs.CapsuleSpec{HalfLength: 0.45, Radius: 0.05},
				Joint:  prefabs.JointSpec{Type: "fixed", AnchorParent: &zero, AnchorChild: &zero},
			},
			{
				Name:   "upper_arm",
				Parent: "torso",
				Shape:  prefabs.CapsuleSpec{HalfLength: 0.25, Radius: 0.05},
				Joint: prefabs.JointSpec{
					Type:   "spherical",
					Limits: map[string][2]float64{"ang_z": {15, 165}},
				},
			},
		},
	}
}

func TestBuildChainShoulderScenario(t *testing.T) {
	eng := physics.NewWorld()
	w := ecs.NewWorld()

	chain, err := BuildChain(w, eng, shoulderSpec())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(chain.Links) != 3 || len(chain.Joints) != 2 {
		t.Fatalf("links = %d joints = %d, want 3 and 2", len(chain.Links), len(chain.Joints))
	}
	if !chain.Pin.Valid() {
		t.Fatalf("dynamic root is not pinned")
	}
	if chain.Joints[0].Kind != JointImpulse || chain.Joints[1].Kind != JointMultibody {
		t.Fatalf("joint kinds = %s, %s", chain.Joints[0].Kind, chain.Joints[1].Kind)
	}

	shoulder, ok := chain.JointTo("upper_arm")
	if !ok {
		t.Fatalf("no joint to upper_arm")
	}
	mb, idx, ok := eng.MultibodyJoint(shoulder.Multibody)
	if !ok {
		t.Fatalf("shoulder handle does not resolve")
	}
	if mb.NumLinks() != 2 || idx != 1 {
		t.Fatalf("multibody links = %d, joint link = %d", mb.NumLinks(), idx)
	}
	link, _ := mb.Link(idx)
	if got := link.Joint.LocalAnchor1(); got != (mgl64.Vec3{0, 0.5, 0}) {
		t.Fatalf("anchor on torso = %v", got)
	}
	if got := link.Joint.LocalAnchor2(); got != (mgl64.Vec3{0, 0.3, 0}) {
		t.Fatalf("anchor on arm = %v", got)
	}
	lim, ok := link.Joint.Limit(physics.AngZ)
	if !ok || !mgl64.FloatEqualThreshold(lim.Min, 15*mgl64.DegToRad(1), 1e-12) || !mgl64.FloatEqualThreshold(lim.Max, mgl64.DegToRad(165), 1e-12) {
		t.Fatalf("ang_z limits = %+v", lim)
	}

	gizmos := render.NewGizmos()
	sched := ecs.NewScheduler(
		system.NewRaySystem(gizmos),
		system.NewPhysicsStepSystem(eng, system.DefaultTimeStep),
		system.NewJointInspectorSystem(eng, gizmos),
	)
	for tick := 0; tick < 3; tick++ {
		sched.Update(w)
		if got := len(gizmos.Rays()); got != 1 {
			t.Fatalf("tick %d: rays = %d, want 1", tick, got)
		}
		if !link.Joint.LocalFrame1.Rotation.ApproxEqual(mgl64.QuatIdent()) {
			t.Fatalf("tick %d: frame not reset", tick)
		}
	}
}

func TestBuildChainDisablesContactsBetweenJointedLinks(t *testing.T) {
	engines := map[string]physics.Engine{
		"reference": physics.NewWorld(),
		"chipmunk":  chipmunk.NewEngine(),
	}
	for name, eng := range engines {
		t.Run(name, func(t *testing.T) {
			chain, err := BuildChain(ecs.NewWorld(), eng, shoulderSpec())
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			for _, j := range chain.Joints {
				a, b := chain.Links[j.Parent].Body, chain.Links[j.Child].Body
				if eng.ContactsEnabled(a, b) {
					t.Fatalf("contacts enabled between %s and %s", chain.Links[j.Parent].Name, chain.Links[j.Child].Name)
				}
			}
		})
	}
}

func TestBuildChainContactsOptIn(t *testing.T) {
	spec := shoulderSpec()
	spec.Links[1].Joint.Contacts = true
	eng := physics.NewWorld()

	chain, err := BuildChain(ecs.NewWorld(), eng, spec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	torso, _ := chain.Link("torso")
	arm, _ := chain.Link("upper_arm")
	if !eng.ContactsEnabled(torso.Body, arm.Body) {
		t.Fatalf("contacts: true was ignored")
	}
}

func TestBuildChainSpawnsLinkEntities(t *testing.T) {
	w := ecs.NewWorld()
	chain, err := BuildChain(w, physics.NewWorld(), shoulderSpec())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	for i, l := range chain.Links {
		cl, ok := ecs.Get(w, l.Entity, component.ChainLinkComponent.Kind())
		if !ok {
			t.Fatalf("%s has no chain link", l.Name)
		}
		if cl.Index != i || cl.Name != l.Name || cl.Parent != l.Parent || cl.Chain != "shoulder" {
			t.Fatalf("%s chain link = %+v", l.Name, cl)
		}
		if !ecs.Has(w, l.Entity, component.RigidBodyComponent.Kind()) || !ecs.Has(w, l.Entity, component.TransformComponent.Kind()) {
			t.Fatalf("%s is missing body components", l.Name)
		}
		if got := ecs.Has(w, l.Entity, component.ColliderComponent.Kind()); got != l.HasShape {
			t.Fatalf("%s collider = %v, want %v", l.Name, got, l.HasShape)
		}
	}

	torso, _ := chain.Link("torso")
	if !ecs.Has(w, torso.Entity, component.ImpulseJointHandleComponent.Kind()) {
		t.Fatalf("torso has no impulse joint handle")
	}
	arm, _ := chain.Link("upper_arm")
	jh, ok := ecs.Get(w, arm.Entity, component.MultibodyJointHandleComponent.Kind())
	if !ok || jh.Handle != chain.Joints[1].Multibody {
		t.Fatalf("arm joint handle = %+v", jh)
	}
}

func TestBuildChainFromPrefabs(t *testing.T) {
	tests := []struct {
		file   string
		links  int
		driven bool
	}{
		{file: prefabs.DefaultChain, links: 3},
		{file: "swing.yaml", links: 4, driven: true},
		{file: "arm.toml", links: 4},
	}

	for _, tc := range tests {
		t.Run(tc.file, func(t *testing.T) {
			spec, err := prefabs.LoadChainSpec(tc.file)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			w := ecs.NewWorld()
			chain, err := BuildChain(w, physics.NewWorld(), spec)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if len(chain.Links) != tc.links {
				t.Fatalf("links = %d, want %d", len(chain.Links), tc.links)
			}
			if got := ecs.Has(w, chain.Links[0].Entity, component.RootDriverComponent.Kind()); got != tc.driven {
				t.Fatalf("root driver = %v, want %v", got, tc.driven)
			}
			if chain.Pin.Valid() != (chain.Links[0].Kind == physics.BodyDynamic) {
				t.Fatalf("%s root pinned = %v", chain.Links[0].Kind, chain.Pin.Valid())
			}
		})
	}
}

func TestBuildChainRejectsInconsistentSpecs(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*prefabs.ChainSpec)
		wantConfig bool
		contains   string
	}{
		{
			name:       "motor on locked axis",
			mutate:     func(s *prefabs.ChainSpec) { s.Links[0].Joint.Motor = &prefabs.MotorSpec{Axis: "ang_z", Stiffness: 1} },
			wantConfig: true,
			contains:   "link torso",
		},
		{
			name:       "limits on locked axis",
			mutate:     func(s *prefabs.ChainSpec) { s.Links[1].Joint.Limits = map[string][2]float64{"lin_x": {0, 1}} },
			wantConfig: true,
		},
		{
			name:       "min above max",
			mutate:     func(s *prefabs.ChainSpec) { s.Links[1].Joint.Limits = map[string][2]float64{"ang_z": {90, 10}} },
			wantConfig: true,
		},
		{
			name:       "unknown axis",
			mutate:     func(s *prefabs.ChainSpec) { s.Links[1].Joint.Limits = map[string][2]float64{"ang_w": {0, 1}} },
			wantConfig: true,
		},
		{
			name:       "unknown joint type",
			mutate:     func(s *prefabs.ChainSpec) { s.Links[1].Joint.Type = "ball" },
			wantConfig: true,
		},
		{
			name:       "unknown joint kind",
			mutate:     func(s *prefabs.ChainSpec) { s.Links[1].Joint.Kind = "soft" },
			wantConfig: true,
		},
		{
			name:       "zero radius",
			mutate:     func(s *prefabs.ChainSpec) { s.Links[1].Shape.Radius = 0 },
			wantConfig: true,
		},
		{
			name:       "script on dynamic root",
			mutate:     func(s *prefabs.ChainSpec) { s.Root.Script = "root_sway.tengo" },
			wantConfig: true,
			contains:   "root",
		},
		{
			name:     "parent declared later",
			mutate:   func(s *prefabs.ChainSpec) { s.Links[0], s.Links[1] = s.Links[1], s.Links[0] },
			contains: "not declared",
		},
		{
			name:     "duplicate name",
			mutate:   func(s *prefabs.ChainSpec) { s.Links[1].Name = "torso" },
			contains: "duplicate",
		},
		{
			name:     "unnamed link",
			mutate:   func(s *prefabs.ChainSpec) { s.Links[1].Name = "" },
			contains: "no name",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec := shoulderSpec()
			tc.mutate(spec)

			_, err := BuildChain(ecs.NewWorld(), physics.NewWorld(), spec)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if got := errors.Is(err, physics.ErrInvalidConfig); got != tc.wantConfig {
				t.Fatalf("errors.Is(ErrInvalidConfig) = %v for %v", got, err)
			}
			if tc.contains != "" && !strings.Contains(err.Error(), tc.contains) {
				t.Fatalf("error %q does not mention %q", err, tc.contains)
			}
		})
	}
}

func TestBuildChainRevoluteMotorInRadians(t *testing.T) {
	spec := shoulderSpec()
	spec.Links[1].Joint = prefabs.JointSpec{
		Type:   "revolute",
		Limits: map[string][2]float64{"ang_z": {-90, 90}},
		Motor:  &prefabs.MotorSpec{TargetPos: 45, TargetVel: 180, Stiffness: 2, Damping: 0.5, Model: "force", MaxForce: 10},
	}
	eng := physics.NewWorld()

	chain, err := BuildChain(ecs.NewWorld(), eng, spec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	mb, idx, _ := eng.MultibodyJoint(chain.Joints[1].Multibody)
	link, _ := mb.Link(idx)
	m, ok := link.Joint.Motor(physics.AngZ)
	if !ok {
		t.Fatalf("no motor on ang_z")
	}
	if !mgl64.FloatEqualThreshold(m.TargetPos, mgl64.DegToRad(45), 1e-12) || !mgl64.FloatEqualThreshold(m.TargetVel, mgl64.DegToRad(180), 1e-12) {
		t.Fatalf("motor targets = %v, %v", m.TargetPos, m.TargetVel)
	}
	if m.Model != physics.MotorForceBased || m.MaxForce != 10 {
		t.Fatalf("motor = %+v", m)
	}
	if !link.Joint.LockedAxes.Locked(physics.AngX) || link.Joint.LockedAxes.Locked(physics.AngZ) {
		t.Fatalf("locked axes = %s", link.Joint.LockedAxes)
	}
}
