package surface

import (
	"fmt"
)

// Role is a command a layout can attach to a button
type Role int

const (
	RoleNone Role = iota
	RolePlay
	RoleStop
	RoleRecord
	RoleOverdub
	RoleShift
	RoleSelect
	RoleDelete
	RoleDuplicate
	RoleMetronome
	RoleTapTempo
	RoleUndo
	RoleRedo
	RoleModeCycle
	RoleViewCycle
	RoleUp
	RoleDown
	RoleLeft
	RoleRight
	RoleBankLeft
	RoleBankRight
	RoleMute
	RoleSolo
	RoleArm
	RoleCustom
)

var roleNames = [...]string{
	RoleNone:      "none",
	RolePlay:      "play",
	RoleStop:      "stop",
	RoleRecord:    "record",
	RoleOverdub:   "overdub",
	RoleShift:     "shift",
	RoleSelect:    "select",
	RoleDelete:    "delete",
	RoleDuplicate: "duplicate",
	RoleMetronome: "metronome",
	RoleTapTempo:  "tap-tempo",
	RoleUndo:      "undo",
	RoleRedo:      "redo",
	RoleModeCycle: "mode-cycle",
	RoleViewCycle: "view-cycle",
	RoleUp:        "up",
	RoleDown:      "down",
	RoleLeft:      "left",
	RoleRight:     "right",
	RoleBankLeft:  "bank-left",
	RoleBankRight: "bank-right",
	RoleMute:      "mute",
	RoleSolo:      "solo",
	RoleArm:       "arm",
	RoleCustom:    "custom",
}

func (r Role) String() string {
	if r >= 0 && int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// ParseRole looks a role up by its layout name
func ParseRole(name string) (Role, error) {
	for i, n := range roleNames {
		if n == name && Role(i) != RoleNone {
			return Role(i), nil
		}
	}
	return RoleNone, fmt.Errorf("unknown role %q", name)
}

// Roles lists every assignable role
func Roles() []Role {
	out := make([]Role, 0, len(roleNames)-1)
	for i := range roleNames {
		if Role(i) != RoleNone {
			out = append(out, Role(i))
		}
	}
	return out
}
