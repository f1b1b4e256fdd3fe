package services

import (
	"fmt"
	"regexp"

	"github.com/EdProwise/beawar-school-sub001/internal/common"
)

var (
	tableNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)
	fieldNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// ValidateTable rejects names that are not lower-case identifiers.
func ValidateTable(name string) error {
	if !tableNameRe.MatchString(name) {
		return fmt.Errorf("%w: invalid table name %q", common.ErrorValidation, name)
	}
	return nil
}

// ValidateField rejects field names that are not identifiers.
func ValidateField(name string) error {
	if !fieldNameRe.MatchString(name) {
		return fmt.Errorf("%w: invalid field name %q", common.ErrorValidation, name)
	}
	return nil
}
