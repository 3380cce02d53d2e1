package api

import "fmt"

//ErrorType are APIError types
type ErrorType int

//ErrorTypes
const (
	ErrorTypeUser ErrorType = iota
	ErrorTypeServer
	ErrorTypeDuplicate
)

//Error wraps errors in the API
type Error struct {
	Description string
	Type        ErrorType
	Err         error

	//DuplicateID is the id of the already existing record when Type is ErrorTypeDuplicate
	DuplicateID int64
}

func (e *Error) Error() string {
	switch e.Type {
	case ErrorTypeUser:
		return fmt.Sprintf("User Error: %s: %v", e.Description, e.Err)
	case ErrorTypeDuplicate:
		return fmt.Sprintf("Duplicate Error: %s (duplicate: %d): %v", e.Description, e.DuplicateID, e.Err)
	}
	return fmt.Sprintf("Server Error: %s: %v", e.Description, e.Err)
}
