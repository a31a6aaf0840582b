package dm

import (
	"testing"

	. "github.com/onsi/gomega"
	"periph.io/x/conn/v3/gpio"

	"pmic-go/bus"
	"pmic-go/drivers/max77686"
	"pmic-go/drivers/sandbox"
	"pmic-go/errcode"
	"pmic-go/internal/transport"
	"pmic-go/types"
)

func trats2() types.BoardConfig {
	return types.BoardConfig{
		Chips: []types.ChipConfig{{
			Name:       "max77686_pmic@09",
			Compatible: max77686.Compatible,
			Interface:  "i2c",
			Bus:        "i2c7",
			Outputs: []types.OutputConfig{
				{Type: "ldo", Number: 1, Name: "VALIVE_1.0V", MinUV: types.Int(800_000), MaxUV: types.Int(3_950_000)},
				{Type: "ldo", Number: 21, Name: "VTF_2.8V", MinUV: types.Int(2_800_000), MaxUV: types.Int(2_800_000), BootOn: true},
				{Type: "buck", Number: 1, Name: "VDD_MIF_1.0V", MinUV: types.Int(850_000), MaxUV: types.Int(1_100_000)},
				{Type: "buck", Number: 2, Name: "VDD_ARM_1.0V"},
				{Type: "buck", Number: 8},
			},
		}},
		Fixed: []types.FixedConfig{{
			Name: "VMMC2_2.8V", GPIO: "GPK0_2", MinUV: types.Int(2_800_000), MaxUV: types.Int(2_800_000),
			EnableActiveHigh: true, AlwaysOn: true,
		}},
	}
}

func newBoard(t *testing.T, opts ...Option) (*Registry, *transport.Sim, *sandbox.Chip) {
	t.Helper()
	g := NewWithT(t)
	board := trats2()
	sim := transport.SimBoard(board)
	r := New(sim, opts...)
	g.Expect(r.BindBoard(board)).To(Succeed())
	chip, ok := sim.Chip("i2c7", max77686.AddressDefault)
	g.Expect(ok).To(BeTrue())
	return r, sim, chip
}

func mustLookup(t *testing.T, r *Registry, name string) Handle {
	t.Helper()
	h, err := r.Lookup(name)
	if err != nil {
		t.Fatalf("lookup %s: %v", name, err)
	}
	return h
}

func TestBindAndList(t *testing.T) {
	g := NewWithT(t)
	r, _, chip := newBoard(t)

	pmics := r.List(types.CategoryPMIC)
	g.Expect(pmics).To(HaveLen(1))
	regs := r.List(types.CategoryRegulator)
	g.Expect(regs).To(HaveLen(6))

	names := make([]string, 0, len(regs))
	for _, h := range regs {
		in, err := r.Info(h)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(in.State).To(Equal(types.StateBound))
		names = append(names, in.Name)
	}
	g.Expect(names).To(Equal([]string{"VALIVE_1.0V", "VTF_2.8V", "VDD_MIF_1.0V", "VDD_ARM_1.0V", "max77686_pmic@09.BUCK8", "VMMC2_2.8V"}))

	in, err := r.Info(pmics[0])
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(in.Addr).To(Equal(max77686.AddressDefault))
	g.Expect(in.RegCount).To(Equal(max77686.RegCount))
	g.Expect(in.Interface).To(Equal(types.IfaceI2C))

	kids, err := r.Children(pmics[0])
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(kids).To(Equal(regs[:5]))

	// Bind never touches the bus.
	g.Expect(chip.Transactions()).To(Equal(0))
}

func TestNotReadyBeforeProbe(t *testing.T) {
	g := NewWithT(t)
	r, _, chip := newBoard(t)
	ldo1 := mustLookup(t, r, "VALIVE_1.0V")

	_, err := r.GetValue(ldo1)
	g.Expect(errcode.Of(err)).To(Equal(errcode.NotReady))
	_, err = r.Descriptor(ldo1)
	g.Expect(errcode.Of(err)).To(Equal(errcode.NotReady))
	_, err = r.RawRead(r.List(types.CategoryPMIC)[0], 0)
	g.Expect(errcode.Of(err)).To(Equal(errcode.NotReady))
	g.Expect(chip.Transactions()).To(Equal(0))

	// Probing an output probes its parent first.
	g.Expect(r.Probe(ldo1)).To(Succeed())
	in, _ := r.Info(r.List(types.CategoryPMIC)[0])
	g.Expect(in.State).To(Equal(types.StateProbed))
	uV, err := r.GetValue(ldo1)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(uV).To(Equal(1_200_000))
}

func TestUnknownHandle(t *testing.T) {
	g := NewWithT(t)
	r, _, _ := newBoard(t)
	_, err := r.GetValue(Handle(99))
	g.Expect(errcode.Of(err)).To(Equal(errcode.NotFound))
	_, err = r.Info(NoHandle)
	g.Expect(errcode.Of(err)).To(Equal(errcode.NotFound))
	_, err = r.Lookup("nope")
	g.Expect(errcode.Of(err)).To(Equal(errcode.NotFound))
}

func TestWrongCategory(t *testing.T) {
	g := NewWithT(t)
	r, _, chip := newBoard(t)
	g.Expect(r.ProbeAll()).To(Succeed())
	before := chip.Transactions()

	pmic := r.List(types.CategoryPMIC)[0]
	err := r.SetMode(pmic, types.ModeOn)
	g.Expect(errcode.Of(err)).To(Equal(errcode.WrongCategory))
	_, err = r.GetValue(pmic)
	g.Expect(errcode.Of(err)).To(Equal(errcode.WrongCategory))

	ldo1 := mustLookup(t, r, "VALIVE_1.0V")
	_, err = r.RawRead(ldo1, 0)
	g.Expect(errcode.Of(err)).To(Equal(errcode.WrongCategory))
	_, err = r.Children(ldo1)
	g.Expect(errcode.Of(err)).To(Equal(errcode.WrongCategory))

	g.Expect(chip.Transactions()).To(Equal(before))
}

func TestControlScenarios(t *testing.T) {
	g := NewWithT(t)
	r, _, chip := newBoard(t)
	g.Expect(r.ProbeAll()).To(Succeed())

	ldo1 := mustLookup(t, r, "VALIVE_1.0V")
	g.Expect(r.SetValue(ldo1, 1_800_000, false)).To(Succeed())
	g.Expect(chip.Reg(0x40) & 0x3F).To(BeEquivalentTo(40))
	g.Expect(r.GetValue(ldo1)).To(Equal(1_800_000))

	buck1 := mustLookup(t, r, "VDD_MIF_1.0V")
	err := r.SetValue(buck1, 1_300_000, false)
	g.Expect(errcode.Of(err)).To(Equal(errcode.OutOfConstraint))
	g.Expect(r.GetValue(buck1)).To(Equal(1_100_000))
	g.Expect(r.SetValue(buck1, 1_300_000, true)).To(Succeed())
	g.Expect(r.GetValue(buck1)).To(Equal(1_300_000))

	buck2 := mustLookup(t, r, "VDD_ARM_1.0V")
	err = r.SetValue(buck2, 1_000_000, false)
	g.Expect(errcode.Of(err)).To(Equal(errcode.UnsupportedFeature))

	g.Expect(r.SetMode(buck1, types.ModeStandby)).To(Succeed())
	g.Expect(r.GetMode(buck1)).To(Equal(types.ModeStandby))
	err = r.SetMode(buck1, types.ModeLPM)
	g.Expect(errcode.Of(err)).To(Equal(errcode.UnsupportedMode))
	g.Expect(r.GetMode(buck1)).To(Equal(types.ModeStandby))

	buck8 := mustLookup(t, r, "max77686_pmic@09.BUCK8")
	g.Expect(r.GetEnable(buck8)).To(BeFalse())
	g.Expect(r.SetEnable(buck8, true)).To(Succeed())
	g.Expect(r.GetEnable(buck8)).To(BeTrue())

	modes, err := r.Modes(buck1)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(modes).To(HaveLen(3))

	d, err := r.Descriptor(ldo1)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(d.MaxUV).To(Equal(3_950_000))
	g.Expect(d.MinUA).To(Equal(types.Unset))
}

func TestRawAccess(t *testing.T) {
	g := NewWithT(t)
	r, _, chip := newBoard(t)
	g.Expect(r.ProbeAll()).To(Succeed())
	pmic := r.List(types.CategoryPMIC)[0]

	g.Expect(r.RawWrite(pmic, 0x7E, 0x5A)).To(Succeed())
	g.Expect(r.RawRead(pmic, 0x7E)).To(BeEquivalentTo(0x5A))

	before := chip.Transactions()
	_, err := r.RawRead(pmic, max77686.RegCount)
	g.Expect(errcode.Of(err)).To(Equal(errcode.OutOfRange))
	err = r.RawWrite(pmic, max77686.RegCount, 1)
	g.Expect(errcode.Of(err)).To(Equal(errcode.OutOfRange))
	g.Expect(chip.Transactions()).To(Equal(before))

	dump, err := r.Dump(pmic)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(dump).To(HaveLen(max77686.RegCount))
	g.Expect(dump[0x7E]).To(BeEquivalentTo(0x5A))

	g.Expect(r.WriteValue(pmic, 0x70, 0xAB)).To(Succeed())
	g.Expect(r.ReadValue(pmic, 0x70)).To(BeEquivalentTo(0xAB))

	h, err := r.FindChip("i2c7", max77686.AddressDefault)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(h).To(Equal(pmic))
}

func TestSPIChipWindow(t *testing.T) {
	g := NewWithT(t)
	board := types.BoardConfig{
		Chips: []types.ChipConfig{
			{
				Name: "pmic0", Compatible: max77686.Compatible, Interface: "spi", Bus: "spi1",
				Outputs: []types.OutputConfig{{Type: "ldo", Number: 3, Name: "LDO3_0"}, {Type: "buck", Number: 1, Name: "BUCK1_0"}},
			},
			{
				Name: "pmic1", Compatible: max77686.Compatible, Interface: "spi", Bus: "spi1", CS: 1,
				Outputs: []types.OutputConfig{{Type: "buck", Number: 5, Name: "BUCK5_1"}},
			},
		},
	}
	sim := transport.SimBoard(board)
	r := New(sim)
	g.Expect(r.BindBoard(board)).To(Succeed())
	g.Expect(r.ProbeAll()).To(Succeed())
	chip0, _ := sim.SPIChip("spi1", 0)
	chip1, _ := sim.SPIChip("spi1", 1)
	pmic0 := mustLookup(t, r, "pmic0")

	in, err := r.Info(pmic0)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(in.RegCount).To(Equal(0x40))

	before := chip0.Transactions()
	_, err = r.RawRead(pmic0, 0x40)
	g.Expect(errcode.Of(err)).To(Equal(errcode.OutOfRange))
	_, err = r.GetValue(mustLookup(t, r, "LDO3_0"))
	g.Expect(errcode.Of(err)).To(Equal(errcode.OutOfRange))
	g.Expect(chip0.Transactions()).To(Equal(before))

	g.Expect(r.GetValue(mustLookup(t, r, "BUCK1_0"))).To(Equal(1_100_000))
	g.Expect(r.Dump(pmic0)).To(HaveLen(0x40))

	g.Expect(r.SetEnable(mustLookup(t, r, "BUCK5_1"), false)).To(Succeed())
	g.Expect(chip1.Reg(0x30) & 0x03).To(BeEquivalentTo(0))
	g.Expect(chip0.Reg(0x30) & 0x03).To(BeEquivalentTo(3))

	h, err := r.FindChip("spi1", 1)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(h).To(Equal(mustLookup(t, r, "pmic1")))
}

func TestIOErrorNotRetried(t *testing.T) {
	g := NewWithT(t)
	r, _, chip := newBoard(t)
	g.Expect(r.ProbeAll()).To(Succeed())
	ldo1 := mustLookup(t, r, "VALIVE_1.0V")

	chip.Fail(sandbox.ErrFault)
	before := chip.Transactions()
	_, err := r.GetValue(ldo1)
	g.Expect(errcode.Of(err)).To(Equal(errcode.IOError))
	g.Expect(err).To(MatchError(sandbox.ErrFault))
	g.Expect(chip.Transactions()).To(Equal(before + 1))
}

func TestProbeMissingChip(t *testing.T) {
	g := NewWithT(t)
	board := trats2()
	r := New(transport.NewSim())
	g.Expect(r.BindBoard(board)).To(Succeed())
	err := r.Probe(r.List(types.CategoryPMIC)[0])
	g.Expect(errcode.Of(err)).To(Equal(errcode.NotFound))

	sim := transport.NewSim()
	sim.AddI2C("i2c7", 0x66, sandbox.NewMAX77686()) // nothing at 0x09
	r = New(sim)
	g.Expect(r.BindBoard(board)).To(Succeed())
	err = r.Probe(r.List(types.CategoryPMIC)[0])
	g.Expect(errcode.Of(err)).To(Equal(errcode.IOError))
}

func TestBindRejects(t *testing.T) {
	g := NewWithT(t)
	r := New(transport.NewSim())

	_, err := r.Bind(types.ChipConfig{Compatible: "acme,unknown"})
	g.Expect(errcode.Of(err)).To(Equal(errcode.NotFound))

	_, err = r.Bind(types.ChipConfig{Compatible: max77686.Compatible, Interface: "can"})
	g.Expect(errcode.Of(err)).To(Equal(errcode.InvalidParams))

	_, err = r.Bind(types.ChipConfig{Compatible: max77686.Compatible, Interface: "i2c",
		Outputs: []types.OutputConfig{{Type: "ldo", Number: 27}}})
	g.Expect(errcode.Of(err)).To(Equal(errcode.OutOfRange))

	_, err = r.Bind(types.ChipConfig{Compatible: max77686.Compatible, Interface: "i2c",
		Outputs: []types.OutputConfig{{Type: "ldo", Number: 1, MinUV: types.Int(3), MaxUV: types.Int(2)}}})
	g.Expect(errcode.Of(err)).To(Equal(errcode.InvalidParams))

	_, err = r.Bind(types.ChipConfig{Compatible: max77686.Compatible, Interface: "i2c", Bus: "i2c0"})
	g.Expect(err).NotTo(HaveOccurred())
	_, err = r.Bind(types.ChipConfig{Compatible: max77686.Compatible, Interface: "i2c", Bus: "i2c1"})
	g.Expect(errcode.Of(err)).To(Equal(errcode.InvalidParams)) // same default name
}

func TestFixedAndBootOn(t *testing.T) {
	g := NewWithT(t)
	r, sim, chip := newBoard(t)
	g.Expect(r.ProbeAll()).To(Succeed())

	vmmc := mustLookup(t, r, "VMMC2_2.8V")
	g.Expect(r.GetValue(vmmc)).To(Equal(2_800_000))
	err := r.SetValue(vmmc, 3_300_000, true)
	g.Expect(errcode.Of(err)).To(Equal(errcode.UnsupportedFeature))

	g.Expect(r.ApplyBootOn()).To(Succeed())
	pin, _ := sim.GPIO("GPK0_2")
	g.Expect(pin.Read()).To(Equal(gpio.High))
	g.Expect(r.GetEnable(vmmc)).To(BeTrue())

	// LDO21 is boot-on.
	g.Expect(chip.Reg(0x40+20) >> 6).To(BeEquivalentTo(3))
	in, _ := r.Info(vmmc)
	g.Expect(in.Driver).To(Equal("regulator-fixed"))
}

func TestEventsPublished(t *testing.T) {
	g := NewWithT(t)
	events := bus.NewBus(8)
	r, _, _ := newBoard(t, WithEvents(events))
	g.Expect(r.ProbeAll()).To(Succeed())

	buck1 := mustLookup(t, r, "VDD_MIF_1.0V")
	// 1.075 V is between steps and is stored as 1.05 V.
	g.Expect(r.SetValue(buck1, 1_075_000, false)).To(Succeed())
	m, ok := events.Retained(bus.T(TopicRegulator, "VDD_MIF_1.0V", TopicValue))
	g.Expect(ok).To(BeTrue())
	g.Expect(m.Payload).To(Equal(types.RegulatorValue{MicroV: 1_050_000}))

	g.Expect(r.SetMode(buck1, types.ModeStandby)).To(Succeed())
	m, ok = events.Retained(bus.T(TopicRegulator, "VDD_MIF_1.0V", TopicMode))
	g.Expect(ok).To(BeTrue())
	g.Expect(m.Payload).To(Equal(types.RegulatorMode{Mode: types.ModeStandby, Name: "ON/OFF"}))

	g.Expect(r.SetEnable(buck1, false)).To(Succeed())
	m, _ = events.Retained(bus.T(TopicRegulator, "VDD_MIF_1.0V", TopicEnable))
	g.Expect(m.Payload).To(Equal(types.RegulatorEnable{On: false}))
}

func TestDuplicateDriverPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	RegisterDriver(Driver{Compatible: max77686.Compatible})
}
