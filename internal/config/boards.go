package config

// Built-in boards, keyed by board name. Values are YAML in the same form
// Load accepts.

const boardTrats2 = `
chips:
  - name: max77686_pmic@09
    compatible: maxim,max77686
    interface: i2c
    bus: i2c7
    addr: 0x09
    outputs:
      - {type: ldo, number: 1, name: VALIVE_1.0V, min_uV: 1000000, max_uV: 1000000, always_on: true}
      - {type: ldo, number: 2, name: VM1M2_1.2V, min_uV: 1200000, max_uV: 1200000, always_on: true}
      - {type: ldo, number: 3, name: VCC_1.8V_AP, min_uV: 1800000, max_uV: 1800000, always_on: true}
      - {type: ldo, number: 5, name: VCC_1.8V_IO, min_uV: 1800000, max_uV: 1800000, always_on: true}
      - {type: ldo, number: 21, name: VTF_2.8V, min_uV: 2800000, max_uV: 2800000}
      - {type: ldo, number: 23, name: TSP_AVDD_3.3V, min_uV: 3300000, max_uV: 3300000}
      - {type: ldo, number: 24, name: TSP_VDD_1.8V, min_uV: 1800000, max_uV: 1800000}
      - {type: buck, number: 1, name: VDD_MIF, min_uV: 850000, max_uV: 1100000, always_on: true, boot_on: true}
      - {type: buck, number: 2, name: VDD_ARM, min_uV: 850000, max_uV: 1500000, always_on: true, boot_on: true}
      - {type: buck, number: 3, name: VDD_INT, min_uV: 850000, max_uV: 1150000, always_on: true, boot_on: true}
      - {type: buck, number: 5, name: VMEM_1.2V, min_uV: 1200000, max_uV: 1200000, always_on: true}
      - {type: buck, number: 9, name: CAM_ISP_CORE_1.2V, min_uV: 1000000, max_uV: 1200000}
fixed:
  - name: VMMC2_2.8V
    gpio: GPK0_2
    min_uV: 2800000
    max_uV: 2800000
    enable_active_high: true
    startup_delay_us: 200
`

const boardSandbox = `
chips:
  - name: sandbox_pmic
    compatible: maxim,max77686
    interface: i2c
    bus: i2c0
    outputs:
      - {type: ldo, number: 1, name: VDD_EMMC_1.8V, min_uV: 1750000, max_uV: 1850000}
      - {type: ldo, number: 3, name: VDD_LCD_3.3V, min_uV: 1800000, max_uV: 3300000, max_uA: 300000}
      - {type: buck, number: 1, name: SUPPLY_1.2V, min_uV: 800000, max_uV: 1300000}
      - {type: buck, number: 5, name: SUPPLY_1.5V, min_uV: 1100000, max_uV: 1500000, boot_on: true}
fixed:
  - name: VDD_SDCARD_3.3V
    gpio: GPIO5
    min_uV: 3300000
    max_uV: 3300000
    enable_active_high: true
`

var embeddedBoards = map[string][]byte{
	"trats2":  []byte(boardTrats2),
	"sandbox": []byte(boardSandbox),
}
