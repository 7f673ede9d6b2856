package auth

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Claims are the identity attributes of a gateway-verified token
type Claims struct {
	Groups     []string `mapstructure:"cognito:groups"`
	CustomRole string   `mapstructure:"custom:role"`
	ClinicId   string   `mapstructure:"custom:clinic_id"`
	Subject    string   `mapstructure:"sub"`
	Email      string   `mapstructure:"email"`
	Username   string   `mapstructure:"cognito:username"`
}

func DecodeClaims(raw map[string]interface{}) (Claims, error) {
	claims := Claims{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: groupsHook,
		Result:     &claims,
	})
	if err != nil {
		return claims, err
	}
	if err := decoder.Decode(raw); err != nil {
		return claims, fmt.Errorf("unable to decode claims: %w", err)
	}
	return claims, nil
}

// groupsHook accepts groups as a list or as a comma separated string, optionally
// wrapped in brackets
func groupsHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
		return data, nil
	}

	value := strings.TrimSpace(data.(string))
	value = strings.TrimSuffix(strings.TrimPrefix(value, "["), "]")

	groups := make([]string, 0)
	for _, group := range strings.Split(value, ",") {
		if group = strings.TrimSpace(group); group != "" {
			groups = append(groups, group)
		}
	}
	return groups, nil
}
