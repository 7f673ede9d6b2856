package users_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/errors"
	"github.com/medisys-health/diagnostics/users"
	usersTest "github.com/medisys-health/diagnostics/users/test"
)

var _ = Describe("Users Service", func() {
	var ctrl *gomock.Controller
	var directory *usersTest.MockDirectory
	var service *users.Service

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		directory = usersTest.NewMockDirectory(ctrl)
		service = users.NewService(directory, zap.NewNop().Sugar())
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	Describe("Create", func() {
		It("creates a user with a temporary password and assigns the role group", func() {
			var password string
			directory.EXPECT().
				CreateUser(gomock.Any(), users.NewUser{Email: "tech@lab.example", Name: "Lab Tech", Role: "lab", ClinicId: "clinic-a"}, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ users.NewUser, temporaryPassword string) (*users.DirectoryUser, error) {
					password = temporaryPassword
					return &users.DirectoryUser{Username: "tech@lab.example", Sub: "7f6b"}, nil
				})
			directory.EXPECT().AddUserToGroup(gomock.Any(), "tech@lab.example", "lab").Return(nil)

			created, err := service.Create(context.Background(), users.NewUser{
				Email:    " tech@lab.example ",
				Name:     "Lab Tech",
				Role:     "lab",
				ClinicId: "clinic-a",
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(created.Username).To(Equal("tech@lab.example"))
			Expect(created.UserSub).To(Equal("7f6b"))
			Expect(created.TemporaryPassword).To(Equal(password))
			Expect(created.GroupAssigned).To(BeTrue())
			Expect(users.IsStrongPassword(created.TemporaryPassword)).To(BeTrue())
		})

		It("drops the clinic of non lab users", func() {
			directory.EXPECT().
				CreateUser(gomock.Any(), users.NewUser{Email: "dr@clinic.example", Name: "Doctor", Role: "healthcare"}, gomock.Any()).
				Return(&users.DirectoryUser{Username: "dr@clinic.example"}, nil)
			directory.EXPECT().AddUserToGroup(gomock.Any(), "dr@clinic.example", "healthcare").Return(nil)

			created, err := service.Create(context.Background(), users.NewUser{
				Email:    "dr@clinic.example",
				Name:     "Doctor",
				Role:     "healthcare",
				ClinicId: "clinic-a",
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(created.UserSub).To(Equal("dr@clinic.example"))
		})

		It("succeeds when the group assignment fails", func() {
			directory.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(&users.DirectoryUser{Username: "root@medisys.example"}, nil)
			directory.EXPECT().AddUserToGroup(gomock.Any(), gomock.Any(), "admin").Return(fmt.Errorf("group not found"))

			created, err := service.Create(context.Background(), users.NewUser{Email: "root@medisys.example", Name: "Root", Role: "admin"})
			Expect(err).ToNot(HaveOccurred())
			Expect(created.GroupAssigned).To(BeFalse())
		})

		It("returns a conflict for existing users", func() {
			directory.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, users.ErrUserExists)

			_, err := service.Create(context.Background(), users.NewUser{Email: "dr@clinic.example", Name: "Doctor", Role: "healthcare"})
			Expect(err).To(MatchError(errors.Conflict))
		})

		DescribeTable("rejects invalid users without calling the directory",
			func(user users.NewUser, message string) {
				_, err := service.Create(context.Background(), user)
				Expect(err).To(MatchError(errors.BadRequest))
				Expect(err).To(MatchError(ContainSubstring(message)))
			},
			Entry("missing email", users.NewUser{Name: "Doctor", Role: "healthcare"}, "missing required field: email"),
			Entry("invalid email", users.NewUser{Email: "doctor", Name: "Doctor", Role: "healthcare"}, "invalid email"),
			Entry("missing name", users.NewUser{Email: "dr@clinic.example", Name: "  ", Role: "healthcare"}, "missing required field: name"),
			Entry("missing role", users.NewUser{Email: "dr@clinic.example", Name: "Doctor"}, "missing required field: role"),
			Entry("unknown role", users.NewUser{Email: "dr@clinic.example", Name: "Doctor", Role: "nurse"}, "invalid role"),
			Entry("lab without clinic", users.NewUser{Email: "tech@lab.example", Name: "Tech", Role: "lab"}, "missing required field: clinic_id"),
		)
	})
})

var _ = Describe("GenerateTemporaryPassword", func() {
	It("generates strong 12 character passwords", func() {
		seen := map[string]struct{}{}
		for i := 0; i < 50; i++ {
			password, err := users.GenerateTemporaryPassword()
			Expect(err).ToNot(HaveOccurred())
			Expect(password).To(HaveLen(12))
			Expect(password).To(MatchRegexp(`^[a-zA-Z0-9!@#$%^&*]+$`))
			Expect(users.IsStrongPassword(password)).To(BeTrue())
			seen[password] = struct{}{}
		}
		Expect(len(seen)).To(BeNumerically(">", 45))
	})

	DescribeTable("IsStrongPassword",
		func(password string, expected bool) {
			Expect(users.IsStrongPassword(password)).To(Equal(expected))
		},
		Entry("all classes", "aB3!aaaaaaaa", true),
		Entry("no symbol", "aB3aaaaaaaaa", false),
		Entry("no digit", "aB!aaaaaaaaa", false),
		Entry("no upper", "ab3!aaaaaaaa", false),
		Entry("no lower", "AB3!AAAAAAAA", false),
	)
})
