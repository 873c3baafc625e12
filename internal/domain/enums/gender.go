package enums

type Gender string

const (
	GenderFemale    Gender = "female"
	GenderMale      Gender = "male"
	GenderNonBinary Gender = "nonbinary"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderFemale, GenderMale, GenderNonBinary:
		return true
	}
	return false
}

type SexualOrientation string

const (
	OrientationNotChosen    SexualOrientation = ""
	OrientationHeterosexual SexualOrientation = "heterosexual"
	OrientationHomosexual   SexualOrientation = "homosexual"
	OrientationBisexual     SexualOrientation = "bisexual"
	OrientationAsexual      SexualOrientation = "asexual"
)

func (o SexualOrientation) Valid() bool {
	switch o {
	case OrientationNotChosen, OrientationHeterosexual, OrientationHomosexual, OrientationBisexual, OrientationAsexual:
		return true
	}
	return false
}
