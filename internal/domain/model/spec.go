// Package model contains domain models passed between layers.
package model

// RawSpec is the complete set of user-provided smartphone attributes.
// JSON names follow the column names the classifier was trained on.
type RawSpec struct {
	BatteryPower int     `json:"battery_power"` // mAh
	Blue         bool    `json:"blue"`          // Bluetooth present
	ClockSpeed   float64 `json:"clock_speed"`   // GHz
	DualSim      bool    `json:"dual_sim"`
	FC           int     `json:"fc"` // front camera, MP
	FourG        bool    `json:"four_g"`
	IntMemory    int     `json:"int_memory"` // GB
	MobileWt     int     `json:"mobile_wt"`  // grams
	NCores       int     `json:"n_cores"`
	PC           int     `json:"pc"`   // primary camera, MP
	RAM          int     `json:"ram"`  // MB
	ScH          int     `json:"sc_h"` // screen height, cm
	ScW          int     `json:"sc_w"` // screen width, cm
	TalkTime     int     `json:"talk_time"`
	ThreeG       bool    `json:"three_g"`
	TouchScreen  bool    `json:"touch_screen"`
	WiFi         bool    `json:"wifi"`
	PxHeight     int     `json:"px_height"`
	PxWidth      int     `json:"px_width"`
}

// Derived holds the composite features computed from a RawSpec.
type Derived struct {
	PixelDensity int `json:"pixel_density"` // px_width * px_height
	ScreenArea   int `json:"screen_area"`   // sc_w * sc_h
	CameraTotal  int `json:"camera_total"`  // pc + fc
}

// Prediction is the outcome of one inference call.
type Prediction struct {
	Tier          int       `json:"tier"`
	Label         string    `json:"label"`
	Probabilities []float64 `json:"probabilities"`
	Confidence    float64   `json:"confidence"`
	Derived       Derived   `json:"derived"`
}
