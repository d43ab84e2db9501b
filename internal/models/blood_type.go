package models

type BloodType string

const (
	APositive  BloodType = "A+"
	ANegative  BloodType = "A-"
	BPositive  BloodType = "B+"
	BNegative  BloodType = "B-"
	OPositive  BloodType = "O+"
	ONegative  BloodType = "O-"
	ABPositive BloodType = "AB+"
	ABNegative BloodType = "AB-"
)

// BloodTypes lists every accepted blood type in display order.
var BloodTypes = []BloodType{
	APositive, ANegative, BPositive, BNegative,
	OPositive, ONegative, ABPositive, ABNegative,
}

func (b BloodType) Valid() bool {
	for _, t := range BloodTypes {
		if t == b {
			return true
		}
	}
	return false
}
