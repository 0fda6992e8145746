package hash

import "golang.org/x/crypto/bcrypt"

// dummyHash is compared against when no user matched, so a miss costs
// about as much as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("library-dummy-password"), bcrypt.DefaultCost)

func HashPassword(password string) (string, error) {
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashbytes), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnCompare runs a comparison whose result is discarded.
func BurnCompare(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
