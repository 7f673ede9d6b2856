package authz

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fatih/structs"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/labstack/echo/v4"
	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"
	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/auth"
	internalErrs "github.com/medisys-health/diagnostics/errors"
)

var (
	//go:embed policy.rego
	authzPolicy string

	ErrUnauthorized = fmt.Errorf("%w: the subject is not authorized for the requested action", internalErrs.Forbidden)
)

type RequestAuthorizer interface {
	Authorize(context.Context, *openapi3filter.AuthenticationInput) error
	EvaluatePolicy(context.Context, map[string]interface{}) error
}

// PolicyInput is the document the entitlement policy is evaluated against
type PolicyInput struct {
	Method   string   `structs:"method"`
	Path     []string `structs:"path"`
	Role     string   `structs:"role"`
	ClinicId string   `structs:"clinicId"`
}

func NewRequestAuthorizer(logger *zap.SugaredLogger) (RequestAuthorizer, error) {
	compiler, err := ast.CompileModules(map[string]string{
		"policy.rego": authzPolicy,
	})
	if err != nil {
		return nil, err
	}

	return &embeddedOpaAuthorizer{
		logger: logger,
		policy: compiler,
	}, nil
}

type embeddedOpaAuthorizer struct {
	logger *zap.SugaredLogger
	policy *ast.Compiler
}

func (e *embeddedOpaAuthorizer) Authorize(ctx context.Context, input *openapi3filter.AuthenticationInput) error {
	request := input.RequestValidationInput.Request
	data := auth.GetAuthData(request.Context())
	if data == nil {
		return &echo.HTTPError{Code: http.StatusUnauthorized, Message: auth.ErrUnauthenticated.Error()}
	}

	in := structs.New(PolicyInput{
		Method:   strings.ToUpper(request.Method),
		Path:     SplitPath(request.URL.Path),
		Role:     data.Access.Role.String(),
		ClinicId: data.Access.ClinicId,
	}).Map()

	err := e.EvaluatePolicy(ctx, in)
	if errors.Is(err, ErrUnauthorized) {
		// The request validator only passes echo errors through unchanged
		return &echo.HTTPError{Code: http.StatusForbidden, Message: err.Error(), Internal: err}
	}
	return err
}

func (e *embeddedOpaAuthorizer) EvaluatePolicy(ctx context.Context, input map[string]interface{}) error {
	r := rego.New(
		rego.Package("http.authz.medisys"),
		rego.Query("allow"),
		rego.Compiler(e.policy),
		rego.Input(input),
	)

	results, err := r.Eval(ctx)
	if err != nil {
		return fmt.Errorf("unable to evaluate authorization policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return fmt.Errorf("evaluating authorization policy returned no results")
	}

	val, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return fmt.Errorf("unexpected authorization result: %v", results[0].Expressions[0].Value)
	}

	e.logger.Debugw("authorization policy eval", zap.Any("input", input), zap.Bool("allow", val))

	if !val {
		return ErrUnauthorized
	}

	return nil
}

func SplitPath(path string) []string {
	parts := strings.Split(strings.TrimSuffix(path, "/"), "/")
	if len(parts) > 0 && parts[0] == "" {
		parts = parts[1:]
	}
	return parts
}
