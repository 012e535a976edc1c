package privilege

import "fmt"

// HostsWriteError reports that neither a direct write nor an elevated
// commit could replace the hosts file
type HostsWriteError struct {
	Path string
	Err  error
}

func (e *HostsWriteError) Error() string {
	return fmt.Sprintf("unable to write %s, requires elevated privileges: %v", e.Path, e.Err)
}

func (e *HostsWriteError) Unwrap() error {
	return e.Err
}

// HelperInvocationError reports that the elevation helper could not be launched
type HelperInvocationError struct {
	Via string
	Err error
}

func (e *HelperInvocationError) Error() string {
	return fmt.Sprintf("failed to launch elevated helper via %s: %v", e.Via, e.Err)
}

func (e *HelperInvocationError) Unwrap() error {
	return e.Err
}

// HelperExitError reports a helper run that did not end with HelperSuccessCode
type HelperExitError struct {
	Code int
}

func (e *HelperExitError) Error() string {
	return fmt.Sprintf("elevated helper exited with code %d", e.Code)
}
