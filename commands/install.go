// Package commands binds a surface to the stand-in DAW model: transport and
// track commands on role buttons, mixer modes on the knobs and the session
// launcher on the pad grid.
package commands

import (
	"time"

	"go-surface/control"
	"go-surface/daw"
	"go-surface/mode"
	"go-surface/surface"
)

// Install registers the modes and views on s, binds every role the layout
// assigns and activates the default pages. It returns the surface's bank.
func Install(s *surface.Surface, model *daw.Model) *Bank {
	bank := &Bank{Model: model, Sched: s.Scheduler()}
	modes, views := s.Modes(), s.Views()
	settings := s.Settings()

	modes.Register(ModeVolume, NewVolumeMode(bank))
	modes.Register(ModePan, NewPanMode(bank))

	del, _ := s.RoleButton(surface.RoleDelete)
	dup, _ := s.RoleButton(surface.RoleDuplicate)
	views.Register(ViewSession, NewSessionView(bank, s.Colors(), s.Scheduler(), Modifiers{Delete: del, Duplicate: dup}))
	views.Register(ViewShift, NewShiftView(bank, modes, s.Colors()))

	shift, _ := s.RoleButton(surface.RoleShift)
	if shift != nil {
		mode.Temporary[mode.ID](views, ViewShift).Attach(shift)
	}

	s.BindRole(surface.RolePlay, &Play{Model: model, Settings: settings})
	s.BindRole(surface.RoleStop, &Stop{Model: model, Settings: settings})
	s.BindRole(surface.RoleRecord, &Record{Model: model, Settings: settings, Shift: shift})
	s.BindRole(surface.RoleOverdub, &Overdub{Model: model})
	s.BindRole(surface.RoleMetronome, &Metronome{Model: model})
	s.BindRole(surface.RoleTapTempo, &TapTempo{Model: model, Sched: s.Scheduler()})
	s.BindRole(surface.RoleUndo, &Undo{Model: model})
	s.BindRole(surface.RoleRedo, &Undo{Model: model, Redo: true})

	s.BindRole(surface.RoleBankLeft, &BankScroll{Bank: bank, Delta: -1})
	s.BindRole(surface.RoleBankRight, &BankScroll{Bank: bank, Delta: 1})
	s.BindRole(surface.RoleLeft, &SelectStep{Model: model, Delta: -1})
	s.BindRole(surface.RoleRight, &SelectStep{Model: model, Delta: 1})
	s.BindRole(surface.RoleUp, &TempoStep{Model: model, Delta: 1})
	s.BindRole(surface.RoleDown, &TempoStep{Model: model, Delta: -1})

	s.BindRole(surface.RoleMute, &TrackToggle{Model: model, Flag: FlagMute})
	s.BindRole(surface.RoleSolo, &TrackToggle{Model: model, Flag: FlagSolo})
	s.BindRole(surface.RoleArm, &TrackToggle{Model: model, Flag: FlagArm})

	s.BindRole(surface.RoleModeCycle, mode.NewCycle[mode.ID](modes, ModeVolume, ModePan))
	s.BindRole(surface.RoleViewCycle, mode.NewCycle[mode.ID](views, ViewSession, ViewShift))

	// single click returns to the previous mode, double click jumps to the
	// first track of the bank
	sel := control.NewDoubleClick(s.Scheduler(),
		modes.ActivatePrevious,
		func() { model.Select(bank.Offset()) },
	)
	if ms := s.Layout().Timing.DoubleClickMS; ms > 0 {
		sel.Window = time.Duration(ms) * time.Millisecond
	}
	s.BindRole(surface.RoleSelect, sel)

	modes.SetActive(ModeVolume)
	views.SetActive(ViewSession)
	return bank
}
