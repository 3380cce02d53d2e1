package api

import "fmt"

//ValidateString returns an error if the given value is not within the parameters
func ValidateString(field, value string, max int) error {
	if value == "" {
		return fmt.Errorf("%s must not be empty", field)
	} else if len(value) > max {
		return fmt.Errorf("%s length (%d) was more than maximum allowed (%d)", field, len(value), max)
	}
	return nil
}

//ValidateRole returns an error if the given role is not a valid message role
func ValidateRole(role string) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("role (%s) must be %q or %q", role, RoleUser, RoleAssistant)
	}
	return nil
}

//ValidateMode returns an error if the given mode is not a valid chat mode
func ValidateMode(mode string) error {
	for _, m := range Modes {
		if mode == m {
			return nil
		}
	}
	return fmt.Errorf("mode (%s) must be a valid chat mode", mode)
}
