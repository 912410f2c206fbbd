package mvar

import (
	"curldeck/pkg/idwrap"
)

// Var is one name -> value binding, either collected from a request file's
// `@name = value` lines or supplied by the caller.
type Var struct {
	ID          idwrap.IDWrap
	VarKey      string
	Value       string
	Description string
	Enabled     bool
}

func (v Var) IsEnabled() bool {
	return v.Enabled
}
