package product

// FallbackCatalog is the static catalog used when neither the backend nor the
// local store has products. Callers get a fresh copy on every call.
func FallbackCatalog() []Product {
	return []Product{
		{
			ID:          "panel-mono-450",
			Name:        "Monocrystalline Solar Panel 450W",
			Price:       18900,
			OldPrice:    21500,
			Category:    "panels",
			Description: "Half-cut cell mono PERC module, 21.3% efficiency, suited to 24V and 48V string designs.",
			Specs:       map[string]string{"power": "450W", "voc": "49.5V", "weight": "24kg"},
			Status:      StatusActive,
		},
		{
			ID:          "panel-poly-150",
			Name:        "Polycrystalline Solar Panel 150W",
			Price:       7400,
			Category:    "panels",
			Description: "Compact module for 12V off-grid kits, cabins and RVs.",
			Specs:       map[string]string{"power": "150W", "voc": "22.4V"},
			Status:      StatusActive,
		},
		{
			ID:          "battery-lifepo4-12-100",
			Name:        "LiFePO4 Battery 12V 100Ah",
			Price:       32900,
			Category:    "batteries",
			Description: "Deep-cycle lithium iron phosphate battery with built-in BMS, 4000+ cycles.",
			Specs:       map[string]string{"capacity": "1.28kWh", "cycles": "4000"},
			Status:      StatusActive,
		},
		{
			ID:          "battery-lifepo4-48-100",
			Name:        "LiFePO4 Rack Battery 48V 100Ah",
			Price:       124900,
			Category:    "batteries",
			Description: "Server-rack lithium module for whole-home storage, CAN/RS485 communication.",
			Specs:       map[string]string{"capacity": "5.12kWh", "cycles": "6000"},
			Status:      StatusActive,
		},
		{
			ID:          "inverter-hybrid-5k",
			Name:        "Hybrid Inverter 5kW",
			Price:       89900,
			Category:    "inverters",
			Description: "Pure sine wave hybrid inverter with 100A MPPT, 48V battery bank.",
			Specs:       map[string]string{"output": "5000W", "mppt": "100A"},
			Status:      StatusActive,
		},
		{
			ID:          "inverter-offgrid-2k",
			Name:        "Off-Grid Inverter 2kW",
			Price:       34900,
			Category:    "inverters",
			Description: "Pure sine wave inverter for 24V systems with integrated AC charger.",
			Specs:       map[string]string{"output": "2000W"},
			Status:      StatusActive,
		},
		{
			ID:          "controller-mppt-40",
			Name:        "MPPT Charge Controller 40A",
			Price:       15900,
			Category:    "controllers",
			Description: "Auto-detecting 12V/24V MPPT controller with LCD and Bluetooth monitoring.",
			Specs:       map[string]string{"current": "40A", "pv_max": "100V"},
			Status:      StatusActive,
		},
		{
			ID:          "cable-kit-pv",
			Name:        "PV Cable & Connector Kit",
			Price:       3900,
			Category:    "accessories",
			Description: "10m of 6mm² solar cable with MC4 connectors and crimping tool.",
			Status:      StatusActive,
		},
	}
}
