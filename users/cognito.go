package users

import (
	"context"
	errs "errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/config"
)

const (
	attributeEmail         = "email"
	attributeEmailVerified = "email_verified"
	attributeGivenName     = "given_name"
	attributeRole          = "custom:role"
	attributeClinicId      = "custom:clinic_id"
	attributeSub           = "sub"
)

// CognitoClient is the subset of the user pool admin API used by the directory
type CognitoClient interface {
	AdminCreateUser(ctx context.Context, params *cip.AdminCreateUserInput, optFns ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error)
	AdminSetUserPassword(ctx context.Context, params *cip.AdminSetUserPasswordInput, optFns ...func(*cip.Options)) (*cip.AdminSetUserPasswordOutput, error)
	AdminAddUserToGroup(ctx context.Context, params *cip.AdminAddUserToGroupInput, optFns ...func(*cip.Options)) (*cip.AdminAddUserToGroupOutput, error)
	ListUsersInGroup(ctx context.Context, params *cip.ListUsersInGroupInput, optFns ...func(*cip.Options)) (*cip.ListUsersInGroupOutput, error)
}

func NewCognitoClient(cfg aws.Config) CognitoClient {
	return cip.NewFromConfig(cfg)
}

type CognitoDirectory struct {
	client     CognitoClient
	userPoolId string
	logger     *zap.SugaredLogger
}

var _ Directory = &CognitoDirectory{}

func NewCognitoDirectory(client CognitoClient, cfg *config.Config, logger *zap.SugaredLogger) *CognitoDirectory {
	return &CognitoDirectory{
		client:     client,
		userPoolId: cfg.UserPoolId,
		logger:     logger,
	}
}

func (c *CognitoDirectory) CreateUser(ctx context.Context, user NewUser, temporaryPassword string) (*DirectoryUser, error) {
	attributes := []types.AttributeType{
		{Name: aws.String(attributeEmail), Value: aws.String(user.Email)},
		{Name: aws.String(attributeEmailVerified), Value: aws.String("true")},
		{Name: aws.String(attributeGivenName), Value: aws.String(user.Name)},
		{Name: aws.String(attributeRole), Value: aws.String(user.Role)},
	}
	if user.ClinicId != "" {
		attributes = append(attributes, types.AttributeType{Name: aws.String(attributeClinicId), Value: aws.String(user.ClinicId)})
	}

	out, err := c.client.AdminCreateUser(ctx, &cip.AdminCreateUserInput{
		UserPoolId:             aws.String(c.userPoolId),
		Username:               aws.String(user.Email),
		UserAttributes:         attributes,
		TemporaryPassword:      aws.String(temporaryPassword),
		MessageAction:          types.MessageActionTypeSuppress,
		DesiredDeliveryMediums: []types.DeliveryMediumType{types.DeliveryMediumTypeEmail},
	})
	var exists *types.UsernameExistsException
	if errs.As(err, &exists) {
		return nil, ErrUserExists
	} else if err != nil {
		return nil, fmt.Errorf("%w: unable to create user: %w", ErrDirectory, err)
	}

	_, err = c.client.AdminSetUserPassword(ctx, &cip.AdminSetUserPasswordInput{
		UserPoolId: aws.String(c.userPoolId),
		Username:   aws.String(user.Email),
		Password:   aws.String(temporaryPassword),
		Permanent:  false,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: unable to set temporary password: %w", ErrDirectory, err)
	}

	created := &DirectoryUser{Username: user.Email}
	if out.User != nil {
		created.Username = aws.ToString(out.User.Username)
		created.Sub = attributeValue(out.User.Attributes, attributeSub)
	}
	return created, nil
}

func (c *CognitoDirectory) AddUserToGroup(ctx context.Context, username string, group string) error {
	_, err := c.client.AdminAddUserToGroup(ctx, &cip.AdminAddUserToGroupInput{
		UserPoolId: aws.String(c.userPoolId),
		Username:   aws.String(username),
		GroupName:  aws.String(group),
	})
	if err != nil {
		return fmt.Errorf("%w: unable to add %s to group %s: %w", ErrDirectory, username, group, err)
	}
	return nil
}

func (c *CognitoDirectory) ListGroupEmails(ctx context.Context, group string) ([]string, error) {
	emails := make([]string, 0)
	var nextToken *string
	for {
		out, err := c.client.ListUsersInGroup(ctx, &cip.ListUsersInGroupInput{
			UserPoolId: aws.String(c.userPoolId),
			GroupName:  aws.String(group),
			NextToken:  nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: unable to list users in group %s: %w", ErrDirectory, group, err)
		}
		for _, user := range out.Users {
			if email := attributeValue(user.Attributes, attributeEmail); email != "" {
				emails = append(emails, email)
			}
		}
		if aws.ToString(out.NextToken) == "" {
			return emails, nil
		}
		nextToken = out.NextToken
	}
}

func attributeValue(attributes []types.AttributeType, name string) string {
	for _, attribute := range attributes {
		if aws.ToString(attribute.Name) == name {
			return aws.ToString(attribute.Value)
		}
	}
	return ""
}
