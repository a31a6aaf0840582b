package console

import (
	"strconv"

	"periph.io/x/conn/v3/physic"

	"pmic-go/errcode"
	"pmic-go/internal/dm"
	"pmic-go/types"
)

const infoWidth = 12

func (s *Session) current() (dm.Handle, dm.Info, error) {
	if s.cur == dm.NoHandle {
		return dm.NoHandle, dm.Info{}, errcode.New(errcode.NotFound, "regulator", "no current device, use regulator dev")
	}
	in, err := s.reg.Info(s.cur)
	return s.cur, in, err
}

// parseMicroVolts accepts plain µV ("1800000", "0x1B7740") or a value
// with a unit ("1.8V", "1800mV").
func parseMicroVolts(arg string) (int, error) {
	if v, err := strconv.ParseInt(arg, 0, 32); err == nil {
		return int(v), nil
	}
	var p physic.ElectricPotential
	if err := p.Set(arg); err != nil {
		return 0, &errcode.E{C: errcode.InvalidParams, Op: "regulator", Msg: "voltage " + arg, Err: err}
	}
	return int(p / physic.MicroVolt), nil
}

// parseMicroAmps is parseMicroVolts for currents ("300000", "300mA").
func parseMicroAmps(arg string) (int, error) {
	if v, err := strconv.ParseInt(arg, 0, 32); err == nil {
		return int(v), nil
	}
	var c physic.ElectricCurrent
	if err := c.Set(arg); err != nil {
		return 0, &errcode.E{C: errcode.InvalidParams, Op: "regulator", Msg: "current " + arg, Err: err}
	}
	return int(c / physic.MicroAmpere), nil
}

func volts(uV int) string   { return (physic.ElectricPotential(uV) * physic.MicroVolt).String() }
func amperes(uA int) string { return (physic.ElectricCurrent(uA) * physic.MicroAmpere).String() }

func limit(v int) string {
	if v == types.Unset {
		return "-"
	}
	return strconv.Itoa(v)
}

func regList(s *Session, args []string) error {
	if err := maxArgs(args, 0, "regulator list"); err != nil {
		return err
	}
	s.printf("| %-3s | %-24s | %-6s | %-8s | %s\n", "Dev", "Name", "Type", "State", "Parent")
	for _, h := range s.reg.List(types.CategoryRegulator) {
		in, err := s.reg.Info(h)
		if err != nil {
			return err
		}
		parent := "-"
		if in.Parent != dm.NoHandle {
			p, _ := s.reg.Info(in.Parent)
			parent = p.Name + " @ pmic"
		}
		s.printf("| %3d | %-24s | %-6s | %-8s | %s\n", h, in.Name, in.Kind, in.State, parent)
	}
	return nil
}

func regDev(s *Session, args []string) error {
	if err := maxArgs(args, 1, "regulator dev"); err != nil {
		return err
	}
	if len(args) == 1 {
		h, err := s.resolve(args[0])
		if err != nil {
			return err
		}
		in, _ := s.reg.Info(h)
		if in.Category != types.CategoryRegulator {
			return errcode.New(errcode.WrongCategory, "regulator dev", in.Name+" is not a regulator")
		}
		s.cur = h
	}
	h, in, err := s.current()
	if err != nil {
		return err
	}
	s.printf("dev: %d @ %s\n", h, in.Name)
	return nil
}

func regInfo(s *Session, args []string) error {
	if err := maxArgs(args, 0, "regulator info"); err != nil {
		return err
	}
	h, in, err := s.current()
	if err != nil {
		return err
	}
	d, err := s.reg.Descriptor(h)
	if err != nil {
		return err
	}
	parent := "-"
	if in.Parent != dm.NoHandle {
		p, _ := s.reg.Info(in.Parent)
		parent = p.Name
	}
	s.printf("Regulator dev %d info:\n", h)
	s.printf("%-*s %s\n", infoWidth, "* parent:", parent)
	s.printf("%-*s %s\n", infoWidth, "* dev name:", in.Name)
	s.printf("%-*s %s%d\n", infoWidth, "* output:", d.Type, d.Number)
	s.printf("%-*s %s\n", infoWidth, "* min uV:", limit(d.MinUV))
	s.printf("%-*s %s\n", infoWidth, "* max uV:", limit(d.MaxUV))
	s.printf("%-*s %s\n", infoWidth, "* min uA:", limit(d.MinUA))
	s.printf("%-*s %s\n", infoWidth, "* max uA:", limit(d.MaxUA))
	s.printf("%-*s %t\n", infoWidth, "* always on:", d.AlwaysOn)
	s.printf("%-*s %t\n", infoWidth, "* boot on:", d.BootOn)

	modes, err := s.reg.Modes(h)
	if err != nil {
		return err
	}
	s.printf("* operation modes:\n")
	for _, m := range modes {
		s.printf("  - mode %d (%s)\n", m.ID, m.Name)
	}
	return nil
}

func regStatus(s *Session, args []string) error {
	if err := maxArgs(args, 0, "regulator status"); err != nil {
		return err
	}
	h, _, err := s.current()
	if err != nil {
		return err
	}
	uV, err := s.reg.GetValue(h)
	if err != nil {
		return err
	}
	mode := "-"
	if id, err := s.reg.GetMode(h); err == nil {
		modes, _ := s.reg.Modes(h)
		mode = strconv.Itoa(int(id)) + " (" + types.ModeName(modes, id) + ")"
	}
	on, err := s.reg.GetEnable(h)
	if err != nil {
		return err
	}
	s.printf("Regulator dev %d status:\n", h)
	s.printf("%-*s %d uV (%s)\n", infoWidth, " * value:", uV, volts(uV))
	s.printf("%-*s %s\n", infoWidth, " * mode:", mode)
	s.printf("%-*s %t\n", infoWidth, " * enabled:", on)
	return nil
}

func regValue(s *Session, args []string) error {
	if err := maxArgs(args, 2, "regulator value"); err != nil {
		return err
	}
	h, _, err := s.current()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		uV, err := s.reg.GetValue(h)
		if err != nil {
			return err
		}
		s.printf("%d uV (%s)\n", uV, volts(uV))
		return nil
	}
	force := false
	if len(args) == 2 {
		if args[1] != "-f" {
			return usage("regulator value <uV> [-f]")
		}
		force = true
	}
	uV, err := parseMicroVolts(args[0])
	if err != nil {
		return err
	}
	return s.reg.SetValue(h, uV, force)
}

func regCurrent(s *Session, args []string) error {
	if err := maxArgs(args, 1, "regulator current"); err != nil {
		return err
	}
	h, _, err := s.current()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		uA, err := s.reg.GetCurrent(h)
		if err != nil {
			return err
		}
		s.printf("%d uA (%s)\n", uA, amperes(uA))
		return nil
	}
	uA, err := parseMicroAmps(args[0])
	if err != nil {
		return err
	}
	return s.reg.SetCurrent(h, uA)
}

func regMode(s *Session, args []string) error {
	if err := maxArgs(args, 1, "regulator mode"); err != nil {
		return err
	}
	h, _, err := s.current()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		id, err := s.reg.GetMode(h)
		if err != nil {
			return err
		}
		s.printf("mode id: %d\n", id)
		return nil
	}
	id, err := parseInt(args[0])
	if err != nil {
		return err
	}
	if id < 0 {
		return errcode.New(errcode.UnsupportedMode, "regulator mode", "negative mode id")
	}
	return s.reg.SetMode(h, types.ModeID(id))
}

func regEnable(s *Session, args []string) error  { return setEnable(s, args, true) }
func regDisable(s *Session, args []string) error { return setEnable(s, args, false) }

func setEnable(s *Session, args []string, on bool) error {
	if err := maxArgs(args, 0, "regulator enable"); err != nil {
		return err
	}
	h, _, err := s.current()
	if err != nil {
		return err
	}
	return s.reg.SetEnable(h, on)
}
