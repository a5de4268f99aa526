package resolve

import "os"

// Override variables. Physical-side names pick hardware ports; game-side
// names pick the application's own ports.
const (
	EnvPhysInputL  = "RS_PHYS_INPUT_L"
	EnvPhysInputR  = "RS_PHYS_INPUT_R"
	EnvPhysOutputL = "RS_PHYS_OUTPUT_L"
	EnvPhysOutputR = "RS_PHYS_OUTPUT_R"
	EnvGameInL     = "RS_GAME_IN_L"
	EnvGameInR     = "RS_GAME_IN_R"
	EnvGameOutL    = "RS_GAME_OUT_L"
	EnvGameOutR    = "RS_GAME_OUT_R"
)

// LookupFunc reads one environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// MapLookup returns a LookupFunc backed by a map.
func MapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// OverrideSet holds the override variables read at the start of one
// activation. An empty string means unset.
type OverrideSet struct {
	PhysInputL  string
	PhysInputR  string
	PhysOutputL string
	PhysOutputR string
	GameInL     string
	GameInR     string
	GameOutL    string
	GameOutR    string
}

// ReadOverrides reads all eight variables once. A nil lookup reads the
// process environment.
func ReadOverrides(lookup LookupFunc) OverrideSet {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	return OverrideSet{
		PhysInputL:  get(EnvPhysInputL),
		PhysInputR:  get(EnvPhysInputR),
		PhysOutputL: get(EnvPhysOutputL),
		PhysOutputR: get(EnvPhysOutputR),
		GameInL:     get(EnvGameInL),
		GameInR:     get(EnvGameInR),
		GameOutL:    get(EnvGameOutL),
		GameOutR:    get(EnvGameOutR),
	}
}

// PhysicalInputSet reports whether any physical-input variable is set.
func (o OverrideSet) PhysicalInputSet() bool {
	return o.PhysInputL != "" || o.PhysInputR != ""
}

// PhysicalOutputSet reports whether any physical-output variable is set.
func (o OverrideSet) PhysicalOutputSet() bool {
	return o.PhysOutputL != "" || o.PhysOutputR != ""
}

// ApplicationSet reports whether any of the four game variables is set.
// The game variables form a single group.
func (o OverrideSet) ApplicationSet() bool {
	return o.GameInL != "" || o.GameInR != "" || o.GameOutL != "" || o.GameOutR != ""
}

// Entry is one variable and its value.
type Entry struct {
	Key   string
	Value string
}

// Entries lists the variables in a fixed order, physical group first.
func (o OverrideSet) Entries() []Entry {
	return []Entry{
		{EnvPhysInputL, o.PhysInputL},
		{EnvPhysInputR, o.PhysInputR},
		{EnvPhysOutputL, o.PhysOutputL},
		{EnvPhysOutputR, o.PhysOutputR},
		{EnvGameInL, o.GameInL},
		{EnvGameInR, o.GameInR},
		{EnvGameOutL, o.GameOutL},
		{EnvGameOutR, o.GameOutR},
	}
}
