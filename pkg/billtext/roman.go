package billtext

// romanValues is the standard I/V/X/L/C/D/M table.
var romanValues = map[byte]int{
	'I': 1,
	'V': 5,
	'X': 10,
	'L': 50,
	'C': 100,
	'D': 500,
	'M': 1000,
}

// RomanToInt converts a Roman numeral to its integer value using subtractive
// notation (IV=4, IX=9, XL=40, ...). Lowercase input is accepted. Returns
// false for an empty string or any character outside the numeral alphabet.
func RomanToInt(numeral string) (int, bool) {
	if numeral == "" {
		return 0, false
	}

	total := 0
	prev := 0
	for i := len(numeral) - 1; i >= 0; i-- {
		ch := numeral[i]
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		val, ok := romanValues[ch]
		if !ok {
			return 0, false
		}
		if val < prev {
			total -= val
		} else {
			total += val
			prev = val
		}
	}
	return total, true
}
