package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
)

// LoadError wraps a failed write for one property. Row-level failures let
// the batch continue; connectivity failures abort the run since no
// further writes can succeed.
type LoadError struct {
	PropertyKey  string
	Connectivity bool
	Err          error
}

func (e *LoadError) Error() string {
	kind := "row"
	if e.Connectivity {
		kind = "connectivity"
	}
	return fmt.Sprintf("load %s failure for property %s: %v", kind, e.PropertyKey, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsConnectivity reports whether err is a connectivity-class load failure.
func IsConnectivity(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Connectivity
}

// wrapLoadError classifies and wraps a store write error.
func wrapLoadError(key string, err error) error {
	if err == nil {
		return nil
	}
	return &LoadError{PropertyKey: key, Connectivity: isConnectivityErr(err), Err: err}
}

func isConnectivityErr(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
