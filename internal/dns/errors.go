package dns

import "fmt"

// ZoneNotFoundError is returned when no public hosted zone has the domain name.
type ZoneNotFoundError struct {
	Domain string
}

func (err ZoneNotFoundError) Error() string {
	return fmt.Sprintf("No public Route 53 hosted zone found for %q", err.Domain)
}
