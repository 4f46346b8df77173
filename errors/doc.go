// Package errors provides the structured error taxonomy used by tasklist.
//
// # Error Categories
//
//   - Validation: rejected user input; the operation changed nothing
//   - Permanent: the request cannot succeed as given (unknown id, ambiguous prefix)
//   - Storage: the persistence backend failed or returned undecodable data
//   - Internal: unexpected errors indicating bugs
//
// Validation and permanent errors carry a message meant for the user.
// Storage and internal errors are logged; [UserMessage] maps them to a
// short description instead of leaking backend details.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeEmptyText, "A task cannot be empty.")
//
//	if errors.IsValidation(err) {
//	    fmt.Println(errors.UserMessage(err))
//	}
//
//	wrapped := errors.Wrap(err, "saving tasks")
//	errors.Code(wrapped) // ErrCodeEmptyText
package errors
