package auth_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/medisys-health/diagnostics/auth"
	"github.com/medisys-health/diagnostics/errors"
)

var _ = Describe("Resolve", func() {
	DescribeTable("resolves the effective access context",
		func(claims auth.Claims, expected auth.AccessContext) {
			access, err := auth.Resolve(claims)
			Expect(err).ToNot(HaveOccurred())
			Expect(access).To(Equal(expected))
		},
		Entry("admin group",
			auth.Claims{Groups: []string{"admin"}},
			auth.AccessContext{Role: auth.RoleAdmin},
		),
		Entry("admin wins over lab regardless of order",
			auth.Claims{Groups: []string{"lab", "admin"}, ClinicId: "clinic-a"},
			auth.AccessContext{Role: auth.RoleAdmin},
		),
		Entry("healthcare wins over lab",
			auth.Claims{Groups: []string{"lab", "healthcare"}, ClinicId: "clinic-a"},
			auth.AccessContext{Role: auth.RoleHealthcare},
		),
		Entry("lab keeps its clinic",
			auth.Claims{Groups: []string{"lab"}, ClinicId: " clinic-a "},
			auth.AccessContext{Role: auth.RoleLab, ClinicId: "clinic-a"},
		),
		Entry("group names are trimmed",
			auth.Claims{Groups: []string{" healthcare "}},
			auth.AccessContext{Role: auth.RoleHealthcare},
		),
		Entry("custom role fallback",
			auth.Claims{Groups: []string{"other"}, CustomRole: "healthcare"},
			auth.AccessContext{Role: auth.RoleHealthcare},
		),
		Entry("groups take precedence over the custom role",
			auth.Claims{Groups: []string{"healthcare"}, CustomRole: "admin"},
			auth.AccessContext{Role: auth.RoleHealthcare},
		),
		Entry("admin drops the clinic",
			auth.Claims{CustomRole: "admin", ClinicId: "clinic-a"},
			auth.AccessContext{Role: auth.RoleAdmin},
		),
	)

	It("is deterministic", func() {
		claims := auth.Claims{Groups: []string{"lab", "healthcare", "admin"}, ClinicId: "clinic-a"}
		first, err := auth.Resolve(claims)
		Expect(err).ToNot(HaveOccurred())
		for i := 0; i < 20; i++ {
			Expect(auth.Resolve(claims)).To(Equal(first))
		}
	})

	It("matches group names case sensitively", func() {
		_, err := auth.Resolve(auth.Claims{Groups: []string{"Admin"}})
		Expect(err).To(MatchError(auth.ErrInsufficientPermissions))
		Expect(errors.StatusCode(err)).To(Equal(403))
	})

	It("rejects users without a recognized role", func() {
		_, err := auth.Resolve(auth.Claims{CustomRole: "superuser"})
		Expect(err).To(MatchError(auth.ErrInsufficientPermissions))
	})

	It("rejects lab users without a clinic", func() {
		_, err := auth.Resolve(auth.Claims{Groups: []string{"lab"}, ClinicId: "  "})
		Expect(err).To(MatchError(auth.ErrAccountMisconfigured))
		Expect(errors.StatusCode(err)).To(Equal(400))
	})
})

var _ = Describe("DecodeClaims", func() {
	It("decodes groups from a list", func() {
		claims, err := auth.DecodeClaims(map[string]interface{}{
			"cognito:groups":   []interface{}{"lab", "healthcare"},
			"custom:clinic_id": "clinic-a",
			"sub":              "1234",
			"email":            "lab@clinic.example",
			"cognito:username": "lab-user",
			"exp":              float64(1700000000),
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(claims).To(Equal(auth.Claims{
			Groups:   []string{"lab", "healthcare"},
			ClinicId: "clinic-a",
			Subject:  "1234",
			Email:    "lab@clinic.example",
			Username: "lab-user",
		}))
	})

	It("decodes groups from a comma separated string", func() {
		claims, err := auth.DecodeClaims(map[string]interface{}{
			"cognito:groups": "[lab, healthcare,]",
			"custom:role":    "lab",
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(claims.Groups).To(Equal([]string{"lab", "healthcare"}))
		Expect(claims.CustomRole).To(Equal("lab"))
	})

	It("returns an empty group list when the claim is missing", func() {
		claims, err := auth.DecodeClaims(map[string]interface{}{"sub": "1234"})
		Expect(err).ToNot(HaveOccurred())
		Expect(claims.Groups).To(BeEmpty())
	})
})
