package hsr

// Element is a combat element in Honkai: Star Rail, as spelled in the API.
type Element string

const (
	ElementPhysical  Element = "Physical"
	ElementFire      Element = "Fire"
	ElementIce       Element = "Ice"
	ElementThunder   Element = "Thunder"
	ElementWind      Element = "Wind"
	ElementQuantum   Element = "Quantum"
	ElementImaginary Element = "Imaginary"
)
