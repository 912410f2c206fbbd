package massert

import (
	"curldeck/pkg/idwrap"
)

// Assert is one response assertion: an expr-lang expression evaluated against
// the decoded response environment.
type Assert struct {
	ID         idwrap.IDWrap
	Expression string
	Enabled    bool
}

func (a Assert) IsEnabled() bool {
	return a.Enabled
}

type AssertResult struct {
	ID       idwrap.IDWrap
	AssertID idwrap.IDWrap
	Success  bool
}
