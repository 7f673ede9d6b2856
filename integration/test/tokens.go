package test

import (
	"github.com/golang-jwt/jwt/v4"
	. "github.com/onsi/gomega"
)

const gatewaySecret = "integration-test"

// Token returns a bearer token as issued by the identity provider. Claims are
// not verified by the service.
func Token(claims jwt.MapClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(gatewaySecret))
	Expect(err).ToNot(HaveOccurred())
	return token
}

func LabToken(clinicId string) string {
	return Token(jwt.MapClaims{
		"sub":              "integration-lab",
		"cognito:groups":   []string{"lab"},
		"custom:clinic_id": clinicId,
	})
}

func HealthcareToken() string {
	return Token(jwt.MapClaims{
		"sub":            "integration-healthcare",
		"cognito:groups": []string{"healthcare"},
	})
}

func AdminToken() string {
	return Token(jwt.MapClaims{
		"sub":            "integration-admin",
		"cognito:groups": []string{"admin"},
	})
}
