package sensor

// Calibration holds the conversion constants for both sensor paths.
type Calibration struct {
	ADCMax float64 `yaml:"adc_max"` // full-scale ADC code
	VRef   float64 `yaml:"vref"`    // ADC reference voltage

	// PT1000 in a divider against RRef.
	RRef  float64 `yaml:"pt1000_rref"`
	R0    float64 `yaml:"pt1000_r0"`
	Alpha float64 `yaml:"pt1000_alpha"` // ohm per °C

	// Kulite strain gauge behind an amplifier.
	KuliteGain      float64 `yaml:"kulite_gain"`
	KuliteFullScale float64 `yaml:"kulite_full_scale"` // percent of the 100 bar reference range

	// Digital sensor: S spans ±SCounts over 0..SRange bar.
	SCounts float64 `yaml:"s_counts"`
	SRange  float64 `yaml:"s_range"`

	// Digital sensor: T_out = T·TSlope/TCounts + TOffset.
	TSlope  float64 `yaml:"t_slope"`
	TCounts float64 `yaml:"t_counts"`
	TOffset float64 `yaml:"t_offset"`
}

// DefaultCalibration returns the bench calibration: 12-bit ADC at 3.3 V,
// PT1000 against 1.1 kΩ and a ±16000 count digital sensor over 0–100 bar.
func DefaultCalibration() Calibration {
	return Calibration{
		ADCMax:          4095,
		VRef:            3.3,
		RRef:            1100,
		R0:              1000,
		Alpha:           3.85,
		KuliteGain:      33,
		KuliteFullScale: 100,
		SCounts:         16000,
		SRange:          100,
		TSlope:          82.5,
		TCounts:         16000,
		TOffset:         42.5,
	}
}

// Volts converts a raw ADC code.
func (c Calibration) Volts(raw int) float64 {
	return float64(raw) / c.ADCMax * c.VRef
}

// PT1000Celsius converts a raw ADC code from the PT1000 divider.
// A reading at or above VRef means an open sensor and yields 0.
func (c Calibration) PT1000Celsius(raw int) float64 {
	v := c.Volts(raw)
	if v >= c.VRef {
		return 0
	}
	r := v * c.RRef / (c.VRef - v)
	return (r - c.R0) / c.Alpha
}

// KuliteBar converts a raw ADC code from the strain-gauge amplifier.
func (c Calibration) KuliteBar(raw int) float64 {
	vSensor := c.Volts(raw) / c.KuliteGain
	return vSensor * 1000 * (c.KuliteFullScale / 100)
}

// DigitalBar maps the digital sensor S word to bar.
func (c Calibration) DigitalBar(s int16) float64 {
	return (float64(s) + c.SCounts) * c.SRange / (2 * c.SCounts)
}

// DigitalCelsius maps the digital sensor T word to °C.
func (c Calibration) DigitalCelsius(t int16) float64 {
	return float64(t)*c.TSlope/c.TCounts + c.TOffset
}
