package domain

import "strings"

const (
	DocumentTypeCPF  = "cpf"
	DocumentTypeCNPJ = "cnpj"
)

// NormalizeDocument strips formatting punctuation from a tax document.
func NormalizeDocument(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ClassifyDocument validates a normalized document and reports its type.
// 11 digits are checked as CPF, 14 as CNPJ; anything else is invalid.
func ClassifyDocument(digits string) (string, bool) {
	switch len(digits) {
	case 11:
		return DocumentTypeCPF, validCPF(digits)
	case 14:
		return DocumentTypeCNPJ, validCNPJ(digits)
	default:
		return "", false
	}
}

func validCPF(digits string) bool {
	if allSameDigit(digits) {
		return false
	}
	for _, pos := range []int{9, 10} {
		sum := 0
		for i := 0; i < pos; i++ {
			sum += int(digits[i]-'0') * (pos + 1 - i)
		}
		check := (sum * 10) % 11
		if check == 10 {
			check = 0
		}
		if check != int(digits[pos]-'0') {
			return false
		}
	}
	return true
}

func validCNPJ(digits string) bool {
	if allSameDigit(digits) {
		return false
	}
	first := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	second := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	return cnpjCheckDigit(digits, first) == int(digits[12]-'0') &&
		cnpjCheckDigit(digits, second) == int(digits[13]-'0')
}

func cnpjCheckDigit(digits string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
