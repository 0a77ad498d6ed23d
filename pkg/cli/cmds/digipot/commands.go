// Package digipot provides shell commands for digipot controllers.
package digipot

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/digipot.go/pkg/cli/sh"
	"github.com/robotalks/digipot.go/pkg/digipot/msgs"
)

var (
	// StatusCmd exposes StatusQuery command.
	StatusCmd = ishell.Cmd{
		Name:    "pot.status",
		Aliases: []string{"ps"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.StatusQuery{})
		}),
	}

	// SetCmd exposes SetResistance command.
	SetCmd = ishell.Cmd{
		Name:    "pot.set",
		Aliases: []string{"pset"},
		Help:    "RESISTANCE",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("RESISTANCE required"))
				return
			}
			val, err := strconv.ParseUint(c.Args[0], 0, 16)
			if err != nil {
				c.Err(fmt.Errorf("invalid RESISTANCE: %v", err))
				return
			}
			sh.DoCommand(c, &msgs.SetResistance{Resistance: uint32(val)})
		}),
	}

	// CmdCmd exposes SendCommand command.
	CmdCmd = ishell.Cmd{
		Name:    "pot.cmd",
		Aliases: []string{"pc"},
		Help:    "ADDRESS write|inc|dec|read|lock|unlock [DATA]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			msg, err := ParseSendCommand(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, msg)
		}),
	}

	// ReadCmd exposes ReadRegister command.
	ReadCmd = ishell.Cmd{
		Name:    "pot.read",
		Aliases: []string{"pr"},
		Help:    "ADDRESS",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("ADDRESS required"))
				return
			}
			sh.DoCommand(c, &msgs.ReadRegister{Address: c.Args[0]})
		}),
	}

	// SweepCmd exposes SweepStart command.
	SweepCmd = ishell.Cmd{
		Name:    "pot.sweep",
		Aliases: []string{"psw"},
		Help:    "[STEPS [STEP_SIZE [once]]]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			msg, err := ParseSweepStart(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, msg)
		}),
	}

	// StopCmd exposes SweepStop command.
	StopCmd = ishell.Cmd{
		Name:    "pot.stop",
		Aliases: []string{"pst"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.SweepStop{})
		}),
	}
)

// ParseSendCommand parses arguments of pot.cmd. Names are validated by the
// controller.
func ParseSendCommand(args []string) (*msgs.SendCommand, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("ADDRESS and COMMAND required")
	}
	msg := &msgs.SendCommand{Address: args[0], Command: args[1]}
	if len(args) > 2 {
		val, err := strconv.ParseUint(args[2], 0, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid DATA: %v", err)
		}
		msg.Data, msg.HasData = uint32(val), true
	}
	return msg, nil
}

// ParseSweepStart parses arguments of pot.sweep.
func ParseSweepStart(args []string) (*msgs.SweepStart, error) {
	var msg msgs.SweepStart
	if len(args) > 0 {
		val, err := strconv.ParseUint(args[0], 0, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid STEPS: %v", err)
		}
		msg.Steps = uint32(val)
	}
	if len(args) > 1 {
		val, err := strconv.ParseUint(args[1], 0, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid STEP_SIZE: %v", err)
		}
		msg.StepSize = uint32(val)
	}
	if len(args) > 2 {
		if args[2] != "once" {
			return nil, fmt.Errorf("unexpected %q", args[2])
		}
		msg.Once = true
	}
	return &msg, nil
}

func init() {
	sh.AddCmds(
		&StatusCmd,
		&SetCmd,
		&CmdCmd,
		&ReadCmd,
		&SweepCmd,
		&StopCmd,
	)
}
