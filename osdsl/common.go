package osdsl

import (
	"errors"
)

var ErrConnectionNotConfigured = errors.New("no connection configured under this name")
var ErrNilConnectionSupplied = errors.New("nil connection supplied")
