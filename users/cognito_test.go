package users_test

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/config"
	"github.com/medisys-health/diagnostics/errors"
	"github.com/medisys-health/diagnostics/users"
)

type fakeCognito struct {
	created     *cip.AdminCreateUserInput
	password    *cip.AdminSetUserPasswordInput
	createErr   error
	groupPages  [][]types.UserType
	listedPages int
}

func (f *fakeCognito) AdminCreateUser(_ context.Context, params *cip.AdminCreateUserInput, _ ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = params
	return &cip.AdminCreateUserOutput{User: &types.UserType{
		Username: params.Username,
		Attributes: []types.AttributeType{
			{Name: aws.String("sub"), Value: aws.String("3c1e-sub")},
		},
	}}, nil
}

func (f *fakeCognito) AdminSetUserPassword(_ context.Context, params *cip.AdminSetUserPasswordInput, _ ...func(*cip.Options)) (*cip.AdminSetUserPasswordOutput, error) {
	f.password = params
	return &cip.AdminSetUserPasswordOutput{}, nil
}

func (f *fakeCognito) AdminAddUserToGroup(_ context.Context, _ *cip.AdminAddUserToGroupInput, _ ...func(*cip.Options)) (*cip.AdminAddUserToGroupOutput, error) {
	return &cip.AdminAddUserToGroupOutput{}, nil
}

func (f *fakeCognito) ListUsersInGroup(_ context.Context, params *cip.ListUsersInGroupInput, _ ...func(*cip.Options)) (*cip.ListUsersInGroupOutput, error) {
	page := f.listedPages
	f.listedPages++
	out := &cip.ListUsersInGroupOutput{Users: f.groupPages[page]}
	if page+1 < len(f.groupPages) {
		out.NextToken = aws.String("next")
	}
	return out, nil
}

func userWithEmail(email string) types.UserType {
	attributes := []types.AttributeType{{Name: aws.String("sub"), Value: aws.String(email + "-sub")}}
	if email != "" {
		attributes = append(attributes, types.AttributeType{Name: aws.String("email"), Value: aws.String(email)})
	}
	return types.UserType{Attributes: attributes}
}

var _ = Describe("Cognito Directory", func() {
	var client *fakeCognito
	var directory *users.CognitoDirectory

	BeforeEach(func() {
		client = &fakeCognito{}
		cfg := config.New()
		cfg.UserPoolId = "us-east-1_pool"
		directory = users.NewCognitoDirectory(client, cfg, zap.NewNop().Sugar())
	})

	It("creates suppressed users with a non permanent password", func() {
		created, err := directory.CreateUser(context.Background(), users.NewUser{
			Email:    "tech@lab.example",
			Name:     "Lab Tech",
			Role:     "lab",
			ClinicId: "clinic-a",
		}, "aB3!aaaaaaaa")
		Expect(err).ToNot(HaveOccurred())
		Expect(created.Username).To(Equal("tech@lab.example"))
		Expect(created.Sub).To(Equal("3c1e-sub"))

		Expect(aws.ToString(client.created.UserPoolId)).To(Equal("us-east-1_pool"))
		Expect(client.created.MessageAction).To(Equal(types.MessageActionTypeSuppress))
		Expect(client.created.UserAttributes).To(ContainElement(types.AttributeType{Name: aws.String("custom:clinic_id"), Value: aws.String("clinic-a")}))
		Expect(client.password.Permanent).To(BeFalse())
		Expect(aws.ToString(client.password.Password)).To(Equal("aB3!aaaaaaaa"))
	})

	It("maps existing usernames to a conflict", func() {
		client.createErr = &types.UsernameExistsException{Message: aws.String("exists")}
		_, err := directory.CreateUser(context.Background(), users.NewUser{Email: "dr@clinic.example", Name: "Doctor", Role: "healthcare"}, "aB3!aaaaaaaa")
		Expect(err).To(MatchError(users.ErrUserExists))
		Expect(err).To(MatchError(errors.Conflict))
	})

	It("lists the emails of every page of group members", func() {
		client.groupPages = [][]types.UserType{
			{userWithEmail("a@clinic.example"), userWithEmail("")},
			{userWithEmail("b@clinic.example")},
		}
		emails, err := directory.ListGroupEmails(context.Background(), "healthcare")
		Expect(err).ToNot(HaveOccurred())
		Expect(emails).To(Equal([]string{"a@clinic.example", "b@clinic.example"}))
		Expect(client.listedPages).To(Equal(2))
	})
})
