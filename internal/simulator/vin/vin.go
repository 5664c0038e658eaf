// Package vin generates Vehicle Identification Numbers in the SAE 17-character
// format with a verifiable mod-11 check digit.
package vin

import (
	"math/rand"
)

// Alphabet is the set of characters valid in a VIN: digits plus the latin
// letters excluding I, O and Q, which are banned to avoid confusion with
// 1 and 0.
const Alphabet = "ABCDEFGHJKLMNPRSTUVWXYZ0123456789"

// DefaultWMI is used when the manufacturer is unknown.
const DefaultWMI = "5YJ"

// wmiCodes maps manufacturer names to their World Manufacturer Identifier
// prefix.
var wmiCodes = map[string]string{
	"TESLA":      "5YJ",
	"FORD":       "1FA",
	"GM":         "1G1",
	"TOYOTA":     "5TD",
	"HONDA":      "1HG",
	"VOLKSWAGEN": "WVW",
	"BMW":        "WBA",
	"MERCEDES":   "WDD",
}

// weights is the positional weight vector over the full 17-character VIN.
// Position 9 (index 8) is the check digit itself and carries weight 0.
var weights = [17]int{8, 7, 6, 5, 4, 3, 2, 10, 0, 9, 8, 7, 6, 5, 4, 3, 2}

// transliteration maps VIN letters to their numeric value. The excluded
// letters I, O and Q have no entry; the 1-9 cycle wraps twice across the
// remaining alphabet.
var transliteration = map[byte]int{
	'A': 1, 'B': 2, 'C': 3, 'D': 4, 'E': 5, 'F': 6, 'G': 7, 'H': 8,
	'J': 1, 'K': 2, 'L': 3, 'M': 4, 'N': 5, 'P': 7, 'R': 9, 'S': 2,
	'T': 3, 'U': 4, 'V': 5, 'W': 6, 'X': 7, 'Y': 8, 'Z': 9,
}

// charValue returns the numeric value of a single VIN character.
// Characters outside the alphabet count as zero rather than failing;
// the function is total.
func charValue(c byte) int {
	if c >= '0' && c <= '9' {
		return int(c - '0')
	}
	return transliteration[c]
}

// CheckDigit computes the check digit for the 16 non-check characters of a
// VIN (the full VIN with position 9 removed). The result is '0'-'9', or 'X'
// when the mod-11 remainder is ten. Pure and deterministic: the same input
// always yields the same digit.
func CheckDigit(vinWithoutCheck string) byte {
	total := 0
	for i := 0; i < len(vinWithoutCheck) && i < 16; i++ {
		w := weights[i]
		if i >= 8 {
			// Skip over the check-digit position in the weight vector.
			w = weights[i+1]
		}
		total += charValue(vinWithoutCheck[i]) * w
	}

	r := total % 11
	if r == 10 {
		return 'X'
	}
	return byte('0' + r)
}

// Generate produces a 17-character VIN for the given manufacturer, drawing
// random sections from rng. Unknown manufacturers fall back to DefaultWMI.
//
// Layout: WMI (3) + descriptor (5) + check digit (1) + model-year (1) +
// plant code (1) + serial (6).
func Generate(manufacturer string, rng *rand.Rand) string {
	wmi, ok := wmiCodes[manufacturer]
	if !ok {
		wmi = DefaultWMI
	}

	buf := make([]byte, 0, 17)
	buf = append(buf, wmi...)
	for i := 0; i < 5; i++ { // descriptor section
		buf = append(buf, Alphabet[rng.Intn(len(Alphabet))])
	}
	buf = append(buf, Alphabet[rng.Intn(len(Alphabet))]) // model-year code
	buf = append(buf, Alphabet[rng.Intn(len(Alphabet))]) // plant code
	for i := 0; i < 6; i++ {                             // serial
		buf = append(buf, byte('0'+rng.Intn(10)))
	}

	check := CheckDigit(string(buf))

	out := make([]byte, 0, 17)
	out = append(out, buf[:8]...)
	out = append(out, check)
	out = append(out, buf[8:]...)
	return string(out)
}

// Verify reports whether the VIN's embedded check digit matches a fresh
// recomputation. Only 17-character strings can verify.
func Verify(v string) bool {
	if len(v) != 17 {
		return false
	}
	return CheckDigit(v[:8]+v[9:]) == v[8]
}
