package chaintest

import "fmt"

var errAlreadyReceived = fmt.Errorf("chaintest: packet already received")

func errNotFound(kind, id string) error {
	if id == "" {
		return fmt.Errorf("chaintest: %s not found", kind)
	}
	return fmt.Errorf("chaintest: %s %q not found", kind, id)
}
