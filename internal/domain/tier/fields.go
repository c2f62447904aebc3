package tier

// Field describes one form control of the collecting UI. Ranges are advisory;
// the pipeline does not enforce them.
type Field struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Group   string  `json:"group"`
	Kind    string  `json:"kind"` // "int", "float" or "bool"
	Min     float64 `json:"min,omitempty"`
	Max     float64 `json:"max,omitempty"`
	Step    float64 `json:"step,omitempty"`
	Default any     `json:"default"`
	Help    string  `json:"help,omitempty"`
}

// Fields returns the form descriptors in display order.
func Fields() []Field {
	return []Field{
		{Name: "battery_power", Label: "Battery Power (mAh)", Group: "battery", Kind: "int", Min: 500, Max: 7000, Step: 1, Default: 3500, Help: "Total energy storage capacity"},
		{Name: "int_memory", Label: "Internal Memory (GB)", Group: "battery", Kind: "int", Min: 2, Max: 1024, Step: 1, Default: 128},
		{Name: "ram", Label: "RAM (MB)", Group: "battery", Kind: "int", Min: 500, Max: 16000, Step: 1, Default: 4000},
		{Name: "px_height", Label: "Pixel Height", Group: "display", Kind: "int", Min: 0, Max: 3000, Step: 1, Default: 1440},
		{Name: "px_width", Label: "Pixel Width", Group: "display", Kind: "int", Min: 0, Max: 4000, Step: 1, Default: 2560},
		{Name: "sc_h", Label: "Screen Height (cm)", Group: "display", Kind: "int", Min: 5, Max: 25, Step: 1, Default: 15},
		{Name: "sc_w", Label: "Screen Width (cm)", Group: "display", Kind: "int", Min: 5, Max: 15, Step: 1, Default: 8},
		{Name: "pc", Label: "Primary Camera (MP)", Group: "display", Kind: "int", Min: 0, Max: 200, Step: 1, Default: 48},
		{Name: "fc", Label: "Front Camera (MP)", Group: "display", Kind: "int", Min: 0, Max: 100, Step: 1, Default: 16},
		{Name: "clock_speed", Label: "Clock Speed (GHz)", Group: "connectivity", Kind: "float", Min: 0.5, Max: 5.0, Step: 0.1, Default: 2.5},
		{Name: "n_cores", Label: "Processor Cores", Group: "connectivity", Kind: "int", Min: 1, Max: 16, Step: 1, Default: 8},
		{Name: "mobile_wt", Label: "Weight (g)", Group: "connectivity", Kind: "int", Min: 80, Max: 300, Step: 1, Default: 180},
		{Name: "talk_time", Label: "Talk Time (hours)", Group: "connectivity", Kind: "int", Min: 2, Max: 40, Step: 1, Default: 18},
		{Name: "blue", Label: "Bluetooth", Group: "connectivity", Kind: "bool", Default: true},
		{Name: "dual_sim", Label: "Dual SIM", Group: "connectivity", Kind: "bool", Default: true},
		{Name: "four_g", Label: "4G", Group: "connectivity", Kind: "bool", Default: true},
		{Name: "three_g", Label: "3G", Group: "connectivity", Kind: "bool", Default: true},
		{Name: "touch_screen", Label: "Touch Screen", Group: "connectivity", Kind: "bool", Default: true},
		{Name: "wifi", Label: "WiFi", Group: "connectivity", Kind: "bool", Default: true},
	}
}
