// Package util provides logging, error kinds and address helpers shared by
// the fabric planner, builder and CLIs.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every typed error below unwraps to one of these so callers
// can branch with errors.Is without caring about the context fields.
var (
	ErrInvalidConfig          = errors.New("invalid configuration")
	ErrInvalidSubnet          = errors.New("invalid subnet")
	ErrSubnetExhausted        = errors.New("subnet exhausted")
	ErrMissingMgmtAddress     = errors.New("missing management address")
	ErrIncompleteInterfaceMap = errors.New("incomplete interface map")
	ErrValidationFailed       = errors.New("validation failed")
)

// InvalidConfigError reports a bad count, mode or field value.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *InvalidConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// NewInvalidConfigError creates an invalid configuration error
func NewInvalidConfigError(field, format string, args ...interface{}) *InvalidConfigError {
	return &InvalidConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvalidSubnetError reports a malformed, overlapping or undersized CIDR.
// Subnet names the role of the subnet (e.g. "spine_loopback_subnet").
type InvalidSubnetError struct {
	Subnet string
	CIDR   string
	Reason string
}

func (e *InvalidSubnetError) Error() string {
	return fmt.Sprintf("invalid subnet %s %q: %s", e.Subnet, e.CIDR, e.Reason)
}

func (e *InvalidSubnetError) Unwrap() error {
	return ErrInvalidSubnet
}

// NewInvalidSubnetError creates an invalid subnet error
func NewInvalidSubnetError(subnet, cidr, format string, args ...interface{}) *InvalidSubnetError {
	return &InvalidSubnetError{Subnet: subnet, CIDR: cidr, Reason: fmt.Sprintf(format, args...)}
}

// SubnetExhaustedError reports an interconnect pool that ran out of host
// addresses before every spine-leaf pair was assigned.
type SubnetExhaustedError struct {
	CIDR      string
	Needed    uint64
	Available uint64
}

func (e *SubnetExhaustedError) Error() string {
	return fmt.Sprintf("subnet %s exhausted: need %d host addresses, only %d usable", e.CIDR, e.Needed, e.Available)
}

func (e *SubnetExhaustedError) Unwrap() error {
	return ErrSubnetExhausted
}

// MissingMgmtAddressError reports a hostname with no manual management address.
type MissingMgmtAddressError struct {
	Hostname string
}

func (e *MissingMgmtAddressError) Error() string {
	return fmt.Sprintf("no management address supplied for %s", e.Hostname)
}

func (e *MissingMgmtAddressError) Unwrap() error {
	return ErrMissingMgmtAddress
}

// IncompleteInterfaceMapError reports an explicit interface list that is
// shorter than the device needs.
type IncompleteInterfaceMapError struct {
	Hostname string
	Want     int
	Got      int
}

func (e *IncompleteInterfaceMapError) Error() string {
	return fmt.Sprintf("interface map for %s has %d entries, need %d", e.Hostname, e.Got, e.Want)
}

func (e *IncompleteInterfaceMapError) Unwrap() error {
	return ErrIncompleteInterfaceMap
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}
