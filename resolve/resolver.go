// Package resolve picks the left and right port for each routing role,
// combining override variables with ports discovered in the graph.
package resolve

import (
	"github.com/opd-ai/jackroute/catalog"
	"github.com/sirupsen/logrus"
)

// Origin records where an endpoint name came from.
type Origin int

const (
	// OriginUnset marks an unresolved endpoint.
	OriginUnset Origin = iota
	// OriginOverride marks a name taken from an override variable.
	OriginOverride
	// OriginDiscovered marks a name taken from the graph.
	OriginDiscovered
)

// String returns a lowercase label for the origin.
func (o Origin) String() string {
	switch o {
	case OriginOverride:
		return "override"
	case OriginDiscovered:
		return "discovered"
	default:
		return "unset"
	}
}

// Endpoint is one side of a role. Name is the normalized display name and is
// empty when the side is unresolved. Raw is the graph's own name for a
// discovered port.
type Endpoint struct {
	Name   string
	Raw    string
	Origin Origin
}

// IsSet reports whether the endpoint resolved to a name.
func (e Endpoint) IsSet() bool {
	return e.Name != ""
}

func overridden(name string) Endpoint {
	if name == "" {
		return Endpoint{}
	}
	return Endpoint{Name: name, Origin: OriginOverride}
}

func discovered(p catalog.Port) Endpoint {
	return Endpoint{Name: p.Name, Raw: p.Raw, Origin: OriginDiscovered}
}

// Pair is the stereo assignment of one role.
type Pair struct {
	Left  Endpoint
	Right Endpoint
}

// Role identifies one of the four endpoint pairs.
type Role int

const (
	RolePhysicalIn Role = iota
	RolePhysicalOut
	RoleAppIn
	RoleAppOut
)

// Roles lists every role in connection order.
var Roles = []Role{RolePhysicalIn, RoleAppIn, RoleAppOut, RolePhysicalOut}

// String returns a lowercase label for the role.
func (r Role) String() string {
	switch r {
	case RolePhysicalIn:
		return "physical-in"
	case RolePhysicalOut:
		return "physical-out"
	case RoleAppIn:
		return "app-in"
	case RoleAppOut:
		return "app-out"
	default:
		return "unknown"
	}
}

// Resolution holds the final endpoints of an activation.
type Resolution struct {
	PhysicalIn  Pair
	PhysicalOut Pair
	AppIn       Pair
	AppOut      Pair
}

// Pair returns the pair for role.
func (r *Resolution) Pair(role Role) Pair {
	switch role {
	case RolePhysicalIn:
		return r.PhysicalIn
	case RolePhysicalOut:
		return r.PhysicalOut
	case RoleAppIn:
		return r.AppIn
	default:
		return r.AppOut
	}
}

// Resolve computes the four pairs. For each group, overrides win outright:
// if any variable of the group is set, only the variables are used and
// unset sides stay unresolved. Otherwise the first two discovered ports, in
// server order, become left and right.
func Resolve(overrides OverrideSet, snap *catalog.Snapshot) Resolution {
	if snap == nil {
		snap = &catalog.Snapshot{}
	}

	var res Resolution

	if overrides.PhysicalInputSet() {
		res.PhysicalIn = Pair{Left: overridden(overrides.PhysInputL), Right: overridden(overrides.PhysInputR)}
	} else {
		res.PhysicalIn = firstTwo(snap.PhysicalInputs)
	}

	if overrides.PhysicalOutputSet() {
		res.PhysicalOut = Pair{Left: overridden(overrides.PhysOutputL), Right: overridden(overrides.PhysOutputR)}
	} else {
		res.PhysicalOut = firstTwo(snap.PhysicalOutputs)
	}

	if overrides.ApplicationSet() {
		res.AppIn = Pair{Left: overridden(overrides.GameInL), Right: overridden(overrides.GameInR)}
		res.AppOut = Pair{Left: overridden(overrides.GameOutL), Right: overridden(overrides.GameOutR)}
	} else {
		res.AppIn = firstTwo(snap.AppInputs)
		res.AppOut = firstTwo(snap.AppOutputs)
	}

	logrus.WithFields(logrus.Fields{
		"function":              "Resolve",
		"physical_in_override":  overrides.PhysicalInputSet(),
		"physical_out_override": overrides.PhysicalOutputSet(),
		"app_override":          overrides.ApplicationSet(),
		"physical_in":           describe(res.PhysicalIn),
		"physical_out":          describe(res.PhysicalOut),
		"app_in":                describe(res.AppIn),
		"app_out":               describe(res.AppOut),
	}).Info("Resolved routing endpoints")

	return res
}

func firstTwo(ports []catalog.Port) Pair {
	var p Pair
	if len(ports) > 0 {
		p.Left = discovered(ports[0])
	}
	if len(ports) > 1 {
		p.Right = discovered(ports[1])
	}
	return p
}

func describe(p Pair) [2]string {
	return [2]string{p.Left.Name, p.Right.Name}
}
