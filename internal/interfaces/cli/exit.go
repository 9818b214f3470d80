package cli

import (
	"errors"
	"fmt"
)

// Códigos de salida.
const (
	ExitSuccess      = 0
	ExitRejected     = 1 // algún documento rechazado o la publicación falló
	ExitCommandError = 2 // argumentos, configuración o backends
)

// ExitError error con código de salida propio.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

func commandError(message string, err error) *ExitError {
	return &ExitError{Code: ExitCommandError, Message: message, Err: err}
}

// ExitCode código para os.Exit. Un error sin código propio es ExitCommandError.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}
