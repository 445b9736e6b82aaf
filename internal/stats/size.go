package stats

// Size is a creature size category.
type Size uint8

const (
	SizeFine Size = iota
	SizeDiminutive
	SizeTiny
	SizeSmall
	SizeMedium
	SizeLarge
	SizeHuge
	SizeGargantuan
	SizeColossal
)

var sizeModifiers = [...]int{8, 4, 2, 1, 0, -1, -2, -4, -8}

var sizeNames = [...]string{
	"fine", "diminutive", "tiny", "small", "medium",
	"large", "huge", "gargantuan", "colossal",
}

// Modifier is the size bonus applied to armor class.
func (s Size) Modifier() int {
	if int(s) >= len(sizeModifiers) {
		return 0
	}
	return sizeModifiers[s]
}

func (s Size) String() string {
	if int(s) >= len(sizeNames) {
		return "unknown"
	}
	return sizeNames[s]
}
