package ident

import (
	"crypto/rand"
	"math/big"
)

const (
	idAlphabet  = "1234567890abcdefghijklmnopqrstuvwxyz"
	otpAlphabet = "1234567890"

	// IDLength — длина непрозрачного идентификатора сущности.
	IDLength = 20
	// OtpLength — длина одноразового кода.
	OtpLength = 6
)

// NewID генерирует непрозрачный идентификатор из 20 строчных
// латинских букв и цифр.
func NewID() string {
	return randomString(idAlphabet, IDLength)
}

// NewOtp генерирует равномерно случайный 6-значный цифровой код.
// Уникальность не гарантируется: защитой от коллизий служат
// пространство 10^6 и часовой срок жизни кода.
func NewOtp() string {
	return randomString(otpAlphabet, OtpLength)
}

// randomString собирает строку указанной длины из символов алфавита,
// используя криптографический источник случайности.
func randomString(alphabet string, length int) string {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand на поддерживаемых платформах не возвращает ошибок;
			// если источник энтропии недоступен, продолжать бессмысленно.
			panic(err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out)
}
