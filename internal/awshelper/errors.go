package awshelper

import "fmt"

// ProfileMismatchError is returned when the account alias differs from the profile.
type ProfileMismatchError struct {
	Profile string
	Alias   string
}

func (err ProfileMismatchError) Error() string {
	return fmt.Sprintf("AWS profile %q does not match the account alias %q", err.Profile, err.Alias)
}
