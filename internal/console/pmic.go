package console

import (
	"fmt"
	"strings"

	"pmic-go/errcode"
	"pmic-go/internal/dm"
	"pmic-go/types"
	"pmic-go/x/conv"
)

const dumpCols = 16

func (s *Session) currentPMIC() (dm.Handle, error) {
	if s.pmic == dm.NoHandle {
		return dm.NoHandle, errcode.New(errcode.NotFound, "pmic", "no current device, use pmic dev")
	}
	return s.pmic, nil
}

func pmicList(s *Session, args []string) error {
	if err := maxArgs(args, 0, "pmic list"); err != nil {
		return err
	}
	s.printf("| %-3s | %-20s | %-10s | %-8s | %s\n", "Dev", "Name", "Driver", "State", "Bus")
	for _, h := range s.reg.List(types.CategoryPMIC) {
		in, err := s.reg.Info(h)
		if err != nil {
			return err
		}
		s.printf("| %3d | %-20s | %-10s | %-8s | %s\n", h, in.Name, in.Driver, in.State, busString(in))
	}
	return nil
}

func busString(in dm.Info) string {
	switch in.Interface {
	case types.IfaceI2C:
		return fmt.Sprintf("%s@0x%02x", in.Bus, in.Addr)
	case types.IfaceSPI:
		return fmt.Sprintf("%s cs%d", in.Bus, in.CS)
	default:
		return "-"
	}
}

func hex2(v byte) string {
	var b [2]byte
	return string(conv.Hex(b[:], uint32(v), 2))
}

func pmicDev(s *Session, args []string) error {
	if err := maxArgs(args, 1, "pmic dev"); err != nil {
		return err
	}
	if len(args) == 1 {
		h, err := s.resolve(args[0])
		if err != nil {
			return err
		}
		in, _ := s.reg.Info(h)
		if in.Category != types.CategoryPMIC {
			return errcode.New(errcode.WrongCategory, "pmic dev", in.Name+" is not a pmic")
		}
		s.pmic = h
	}
	h, err := s.currentPMIC()
	if err != nil {
		return err
	}
	in, _ := s.reg.Info(h)
	s.printf("dev: %d @ %s\n", h, in.Name)
	return nil
}

func pmicDump(s *Session, args []string) error {
	if err := maxArgs(args, 0, "pmic dump"); err != nil {
		return err
	}
	h, err := s.currentPMIC()
	if err != nil {
		return err
	}
	regs, err := s.reg.Dump(h)
	if err != nil {
		return err
	}
	in, _ := s.reg.Info(h)
	s.printf("Dump pmic: %s registers\n", in.Name)
	var line strings.Builder
	for i, v := range regs {
		if i%dumpCols == 0 {
			if i > 0 {
				s.printf("%s\n", line.String())
				line.Reset()
			}
			line.WriteString("0x" + hex2(byte(i)) + ":")
		}
		line.WriteString(" " + hex2(v))
	}
	if line.Len() > 0 {
		s.printf("%s\n", line.String())
	}
	return nil
}

func pmicRead(s *Session, args []string) error {
	if len(args) != 1 {
		return usage("pmic read <reg>")
	}
	h, err := s.currentPMIC()
	if err != nil {
		return err
	}
	off, err := parseInt(args[0])
	if err != nil {
		return err
	}
	v, err := s.reg.RawRead(h, off)
	if err != nil {
		return err
	}
	s.printf("0x%02x: 0x%02x\n", off, v)
	return nil
}

func pmicWrite(s *Session, args []string) error {
	if len(args) != 2 {
		return usage("pmic write <reg> <value>")
	}
	h, err := s.currentPMIC()
	if err != nil {
		return err
	}
	off, err := parseInt(args[0])
	if err != nil {
		return err
	}
	v, err := parseInt(args[1])
	if err != nil {
		return err
	}
	if v < 0 || v > 0xFF {
		return errcode.New(errcode.OutOfRange, "pmic write", "value must fit one register")
	}
	return s.reg.RawWrite(h, off, byte(v))
}
