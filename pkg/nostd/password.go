package nostd

import (
	"net/mail"

	"golang.org/x/crypto/bcrypt"
)

func BcryptEncode(password []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
}

func BcryptMatch(hashedPassword, password []byte) error {
	return bcrypt.CompareHashAndPassword(hashedPassword, password)
}

// IsEmail 宽松的邮箱格式校验
func IsEmail(address string) bool {
	_, err := mail.ParseAddress(address)
	return err == nil
}
