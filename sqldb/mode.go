package sqldb

import (
	"strings"

	"github.com/pkg/errors"
)

// TableMode tells WriteTable what to do with the target table.
type TableMode string

const (
	MODE_CREATE          TableMode = "create"
	MODE_DELETE_ALL      TableMode = "delete-all"
	MODE_TRUNCATE        TableMode = "truncate"
	MODE_DROP_AND_CREATE TableMode = "drop-and-create"
	MODE_TABLE_AS_IS     TableMode = "as-is"
)

var Modes = []TableMode{
	MODE_CREATE,
	MODE_DELETE_ALL,
	MODE_TRUNCATE,
	MODE_DROP_AND_CREATE,
	MODE_TABLE_AS_IS,
}

// ModeNames lists the mode names for flag help.
func ModeNames() []string {
	names := make([]string, len(Modes))
	for i, mode := range Modes {
		names[i] = string(mode)
	}
	return names
}

// ParseTableMode parses a mode name. An empty name means as-is.
func ParseTableMode(s string) (TableMode, error) {
	if s == "" {
		return MODE_TABLE_AS_IS, nil
	}
	for _, mode := range Modes {
		if string(mode) == s {
			return mode, nil
		}
	}
	return "", errors.Errorf("unsupported table mode %s. Available are: %s", s, strings.Join(ModeNames(), ", "))
}

func (this TableMode) CreateIfMissing() bool {
	return this == MODE_CREATE
}

func (this TableMode) DropAndCreateIfExists() bool {
	return this == MODE_DROP_AND_CREATE
}

func (this TableMode) DeletePrevious() bool {
	return this == MODE_DELETE_ALL
}

func (this TableMode) TruncatePrevious() bool {
	return this == MODE_TRUNCATE
}
