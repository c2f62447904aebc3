package model

// Readiness describes whether the service can serve predictions.
type Readiness struct {
	Ready      bool   `json:"ready"`
	Classifier string `json:"classifier"`
	Scaler     string `json:"scaler"`
	Workers    int    `json:"workers"`
}
