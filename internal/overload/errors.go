package overload

import "fmt"

// ExistsError is raised when an insert collides exactly with an existing
// path. The trie is left unchanged.
type ExistsError struct {
	Signature string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("overload already registered for %s", e.Signature)
}

// MissingError is raised when a removal or throwing lookup finds nothing.
type MissingError struct {
	What string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("no overload found: %s", e.What)
}

// BadArgumentsError is raised when a runtime key fails validation against
// the base formal list.
type BadArgumentsError struct {
	Reason string
}

func (e *BadArgumentsError) Error() string {
	return fmt.Sprintf("arguments do not match the formal list: %s", e.Reason)
}

// InvalidKeyError is raised when a candidate signature cannot implement the
// base signature.
type InvalidKeyError struct {
	Reason string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid overload key: %s", e.Reason)
}
